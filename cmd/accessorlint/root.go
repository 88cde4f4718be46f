package main

import (
	"github.com/charmbracelet/log"
	"github.com/panbanda/accessorlint/internal/logging"
	"github.com/panbanda/accessorlint/pkg/config"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	format     string
	output     string
	verbose    bool
	noCache    bool
	noProgress bool

	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "accessorlint",
		Short: "Find Java getters and setters that use the wrong field",
		Long: `accessorlint reports Java accessors whose body never refers to the field
their name implies: a getX that returns y, or a setX that assigns y.

A method named getFoo, isFoo or setFoo is checked when its class declares or
inherits a private or protected field named foo.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = logging.New(cmd.ErrOrStderr(), logging.Options{Verbose: opts.verbose})
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	flags.StringVarP(&opts.format, "format", "f", "", "Output format: text, json, markdown, toon")
	flags.StringVarP(&opts.output, "output", "o", "", "Write output to file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&opts.noCache, "no-cache", false, "Disable the result cache")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "Disable progress bars")

	cmd.AddCommand(
		newCheckCmd(opts),
		newInitCmd(),
		newConfigCmd(opts),
		newCacheCmd(opts),
	)
	return cmd
}

// loadConfig loads --config, or the first config file found under dir (the
// working directory when empty), or defaults.
func (o *rootOptions) loadConfig(dir ...string) (*config.LoadResult, error) {
	var lopts []config.LoadOption
	if len(dir) > 0 && dir[0] != "" {
		lopts = append(lopts, config.WithDir(dir[0]))
	}
	if o.configPath != "" {
		lopts = append(lopts, config.WithPath(o.configPath))
	}
	result, err := config.LoadConfig(lopts...)
	if err != nil {
		return nil, err
	}
	if result.Source != "" {
		o.logger.Debug("Loaded config", "path", result.Source)
	}
	return result, nil
}
