package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/panbanda/accessorlint/internal/output"
	"github.com/panbanda/accessorlint/internal/progress"
	"github.com/panbanda/accessorlint/internal/remote"
	"github.com/panbanda/accessorlint/internal/service/analysis"
	"github.com/panbanda/accessorlint/pkg/analyzer/accessors"
	"github.com/panbanda/accessorlint/pkg/config"
	"github.com/panbanda/accessorlint/pkg/watch"
	"github.com/spf13/cobra"
)

// errFindings signals a successful run that found issues with
// --fail-on-findings set.
var errFindings = errors.New("accessor findings reported")

type checkOptions struct {
	ref            string
	workers        int
	includeTests   bool
	noGetters      bool
	noSetters      bool
	failOnFindings bool
	watch          bool
	shallow        bool
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Check Java sources for accessors that use the wrong field",
		Long: `Scans the given files and directories (default: current directory) for
Java sources and reports getters and setters that never refer to the field
their name implies.

Examples:
  accessorlint check                         # Check the current directory
  accessorlint check src/main/java           # Check one source root
  accessorlint check --ref HEAD~1            # Check a git revision
  accessorlint check apache/commons-lang     # Clone and check a GitHub repository
  accessorlint check --watch src             # Re-check on every change
  accessorlint check -f json --fail-on-findings`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, root, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.ref, "ref", "", "Analyze a git revision instead of the working tree")
	flags.IntVarP(&opts.workers, "workers", "j", 0, "Number of parallel workers (0 = config or 2x CPUs)")
	flags.BoolVar(&opts.includeTests, "include-tests", false, "Include test sources")
	flags.BoolVar(&opts.noGetters, "no-getters", false, "Skip getter checks")
	flags.BoolVar(&opts.noSetters, "no-setters", false, "Skip setter checks")
	flags.BoolVar(&opts.failOnFindings, "fail-on-findings", false, "Exit with status 1 when findings are reported")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "Re-run the check when Java sources change")
	flags.BoolVar(&opts.shallow, "shallow", true, "Shallow-clone remote repositories")
	return cmd
}

func runCheck(cmd *cobra.Command, root *rootOptions, opts *checkOptions, args []string) error {
	loaded, err := root.loadConfig()
	if err != nil {
		return err
	}
	cfg := loaded.Config

	format, err := resolveFormat(root.format, cfg.Output.Format)
	if err != nil {
		return err
	}

	kinds, err := selectKinds(cfg, opts.noGetters, opts.noSetters)
	if err != nil {
		return err
	}

	paths, cleanup, err := resolveRemotes(cmd, root, opts, getPaths(args))
	defer cleanup()
	if err != nil {
		return err
	}

	svcOpts := []analysis.Option{
		analysis.WithConfig(cfg),
		analysis.WithLogger(root.logger),
	}
	if !root.noCache {
		c, err := analysis.NewCache(cfg)
		if err != nil {
			root.logger.Warn("Cache disabled", "err", err)
		} else {
			svcOpts = append(svcOpts, analysis.WithCache(c))
		}
	}
	svc := analysis.New(svcOpts...)

	checkOpts := analysis.CheckOptions{
		Ref:          opts.ref,
		Workers:      opts.workers,
		IncludeTests: opts.includeTests,
		Kinds:        kinds,
		NoCache:      root.noCache,
	}

	run := func(ctx context.Context) (*accessors.Analysis, error) {
		var bars *progress.Phases
		if !root.noProgress && isTerminal(cmd.ErrOrStderr()) {
			bars = progress.NewPhases(cmd.ErrOrStderr())
			checkOpts.OnProgress = bars.Callback()
		}

		result, err := svc.Check(ctx, paths, checkOpts)
		if bars != nil {
			bars.Finish()
		}
		if err != nil {
			return nil, err
		}

		formatter, err := newFormatter(cmd, root, format, cfg)
		if err != nil {
			return nil, err
		}
		defer formatter.Close()

		if err := formatter.Output(output.NewFindingsReport(result)); err != nil {
			return nil, fmt.Errorf("writing report: %w", err)
		}
		return result, nil
	}

	if opts.watch {
		return watchCheck(cmd, opts, cfg, paths, run)
	}

	result, err := run(cmd.Context())
	if err != nil {
		return err
	}
	if opts.failOnFindings && result.Summary.TotalFindings > 0 {
		return errFindings
	}
	return nil
}

// resolveRemotes clones every argument that names a remote repository and
// substitutes the clone directory for it. The returned cleanup removes the
// clones and is safe to call even when an error is returned.
func resolveRemotes(cmd *cobra.Command, root *rootOptions, opts *checkOptions, paths []string) ([]string, func(), error) {
	var clones []*remote.Source
	cleanup := func() {
		for _, src := range clones {
			if err := src.Cleanup(); err != nil {
				root.logger.Warn("Removing clone", "dir", src.CloneDir, "err", err)
			}
		}
	}

	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		src, err := remote.Parse(p)
		if err != nil {
			return nil, cleanup, err
		}
		if src == nil {
			resolved = append(resolved, p)
			continue
		}
		if opts.watch {
			return nil, cleanup, fmt.Errorf("cannot watch remote repository %s", p)
		}

		var progressOut io.Writer = io.Discard
		var spinner *progress.Tracker
		if !root.noProgress && isTerminal(cmd.ErrOrStderr()) {
			spinner = progress.NewSpinner(cmd.ErrOrStderr(), "Cloning "+src.URL)
			progressOut = spinner
		}
		root.logger.Info("Cloning", "url", src.URL, "ref", src.Ref)
		clones = append(clones, src)
		// A --ref revision may be anywhere in history.
		err = src.Clone(cmd.Context(), progressOut, opts.shallow && opts.ref == "")
		if spinner != nil {
			if err != nil {
				spinner.FinishError(err)
			} else {
				spinner.FinishSuccess()
			}
		}
		if err != nil {
			return nil, cleanup, err
		}
		resolved = append(resolved, src.CloneDir)
	}
	return resolved, cleanup, nil
}

// watchCheck runs the check once and again after every batch of changes
// until the command's context is cancelled. Failed runs are reported and
// watching continues.
func watchCheck(cmd *cobra.Command, opts *checkOptions, cfg *config.Config, paths []string, run func(context.Context) (*accessors.Analysis, error)) error {
	if opts.ref != "" {
		return errors.New("--watch cannot be combined with --ref")
	}
	if len(paths) != 1 {
		return errors.New("--watch takes a single directory")
	}

	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()
	report := func() {
		if _, err := run(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(stderr, "%s %v\n", color.RedString("Error:"), err)
		}
	}

	w, err := watch.NewWatcher(paths[0], cfg, 0)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Stop()
	w.SetOutput(stderr)
	w.SetCallback(func([]string) { report() })

	report()
	if err := w.Start(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// selectKinds applies the --no-getters and --no-setters flags to the
// configured rules. A nil result keeps the configured kinds.
func selectKinds(cfg *config.Config, noGetters, noSetters bool) ([]accessors.Kind, error) {
	if !noGetters && !noSetters {
		return nil, nil
	}
	var kinds []accessors.Kind
	if cfg.Rules.Getters && !noGetters {
		kinds = append(kinds, accessors.KindGetter)
	}
	if cfg.Rules.Setters && !noSetters {
		kinds = append(kinds, accessors.KindSetter)
	}
	if len(kinds) == 0 {
		return nil, analysis.ErrNoKinds
	}
	return kinds, nil
}
