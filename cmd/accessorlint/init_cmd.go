package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/panbanda/accessorlint/internal/output"
	"github.com/panbanda/accessorlint/pkg/config"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var (
		path  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new accessorlint configuration file",
		Long: `Creates a new accessorlint.toml configuration file in the current directory
with sensible defaults. Use --path to specify a different location.

Examples:
  accessorlint init                                    # Creates accessorlint.toml
  accessorlint init -p .accessorlint/accessorlint.toml # Creates config in .accessorlint
  accessorlint init --force                            # Overwrite existing config file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, path, force)
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "accessorlint.toml", "Config file path")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config file")
	return cmd
}

func runInit(cmd *cobra.Command, outputPath string, force bool) error {
	if _, err := os.Stat(outputPath); err == nil && !force {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig()
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	f := output.NewWriterFormatter(output.FormatText, cmd.OutOrStdout(), isTerminal(cmd.OutOrStdout()))
	f.Success("Created %s", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "Edit this file to customize analysis settings.")
	return nil
}

func generateDefaultConfig() (string, error) {
	content, err := toml.Marshal(config.DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# accessorlint configuration\n")
	buf.WriteString("# Checks that Java getters and setters refer to the field their name implies.\n\n")
	buf.Write(content)
	return buf.String(), nil
}
