package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/panbanda/accessorlint/internal/output"
	"github.com/panbanda/accessorlint/pkg/config"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}

	validateCmd := &cobra.Command{
		Use:   "validate [dir]",
		Short: "Validate a configuration file",
		Args:  cobra.MaximumNArgs(1),
		Long: `Validates an accessorlint configuration file against its schema.

Examples:
  accessorlint config validate                        # Validates default config locations
  accessorlint config validate -c accessorlint.toml   # Validates specific file
  accessorlint config validate services/billing       # Searches another project directory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigValidate(cmd, root, firstArg(args))
		},
	}

	showCmd := &cobra.Command{
		Use:   "show [dir]",
		Short: "Show the effective configuration",
		Args:  cobra.MaximumNArgs(1),
		Long: `Shows the merged configuration from defaults and config file.
--format selects toml (default), yaml or json.

Examples:
  accessorlint config show              # Show effective config as TOML
  accessorlint config show -f yaml      # Show effective config as YAML`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, root, firstArg(args))
		},
	}

	cmd.AddCommand(validateCmd, showCmd)
	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func runConfigValidate(cmd *cobra.Command, root *rootOptions, dir string) error {
	f := output.NewWriterFormatter(output.FormatText, cmd.OutOrStdout(), isTerminal(cmd.OutOrStdout()))

	result, err := root.loadConfig(dir)
	if err != nil {
		f.Error("Configuration validation failed:")
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", err)
		return err
	}

	if result.Source != "" {
		f.Success("Configuration valid: %s", result.Source)
	} else {
		f.Warning("No config file found. Default configuration is valid.")
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, root *rootOptions, dir string) error {
	result, err := root.loadConfig(dir)
	if err != nil {
		return err
	}

	content, err := marshalConfig(result.Config, root.format)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	comment := "#"
	if strings.EqualFold(root.format, "json") {
		comment = ""
	}
	if comment != "" {
		if result.Source != "" {
			fmt.Fprintf(w, "%s Configuration from: %s\n\n", comment, result.Source)
		} else {
			fmt.Fprintf(w, "%s Default configuration (no config file found)\n\n", comment)
		}
	}
	fmt.Fprint(w, content)
	return nil
}

func marshalConfig(cfg *config.Config, format string) (string, error) {
	switch strings.ToLower(format) {
	case "", "text", "toml":
		out, err := toml.Marshal(cfg)
		if err != nil {
			return "", fmt.Errorf("failed to marshal config: %w", err)
		}
		return string(out), nil
	case "yaml", "yml":
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return "", fmt.Errorf("failed to marshal config: %w", err)
		}
		return string(out), nil
	case "json":
		out, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal config: %w", err)
		}
		return string(out) + "\n", nil
	default:
		return "", fmt.Errorf("unknown config format %q (want toml, yaml or json)", format)
	}
}
