package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/panbanda/accessorlint/internal/output"
	"github.com/panbanda/accessorlint/pkg/config"
	"github.com/spf13/cobra"
)

// getPaths returns paths from args, defaulting to ["."]
func getPaths(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}

// resolveFormat picks the --format flag over the configured format and
// rejects unknown names.
func resolveFormat(flag, configured string) (output.Format, error) {
	if flag != "" {
		return output.ParseFormat(flag)
	}
	return output.ParseFormat(configured)
}

// newFormatter writes to --output when set, otherwise to the command's
// stdout. Color is used only on a terminal and when enabled in config.
func newFormatter(cmd *cobra.Command, root *rootOptions, format output.Format, cfg *config.Config) (*output.Formatter, error) {
	colored := cfg.Output.Color && !color.NoColor && isTerminal(cmd.OutOrStdout())
	if root.output != "" {
		return output.NewFormatter(format, root.output, false)
	}
	return output.NewWriterFormatter(format, cmd.OutOrStdout(), colored), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
