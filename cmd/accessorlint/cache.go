package main

import (
	"fmt"
	"time"

	"github.com/panbanda/accessorlint/internal/output"
	"github.com/panbanda/accessorlint/internal/service/analysis"
	"github.com/spf13/cobra"
)

func newCacheCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Result cache commands",
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClear(cmd, root)
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheStats(cmd, root)
		},
	}

	cmd.AddCommand(clearCmd, statsCmd)
	return cmd
}

func runCacheClear(cmd *cobra.Command, root *rootOptions) error {
	loaded, err := root.loadConfig()
	if err != nil {
		return err
	}
	f := output.NewWriterFormatter(output.FormatText, cmd.OutOrStdout(), isTerminal(cmd.OutOrStdout()))
	if !loaded.Config.Cache.Enabled {
		f.Warning("Cache is disabled in configuration")
		return nil
	}

	c, err := analysis.NewCache(loaded.Config)
	if err != nil {
		return err
	}
	if err := c.Clear(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	f.Success("Cleared %s", loaded.Config.Cache.Dir)
	return nil
}

func runCacheStats(cmd *cobra.Command, root *rootOptions) error {
	loaded, err := root.loadConfig()
	if err != nil {
		return err
	}
	format, err := resolveFormat(root.format, loaded.Config.Output.Format)
	if err != nil {
		return err
	}

	c, err := analysis.NewCache(loaded.Config)
	if err != nil {
		return err
	}
	stats, err := c.GetStats()
	if err != nil {
		return fmt.Errorf("reading cache: %w", err)
	}

	formatter, err := newFormatter(cmd, root, format, loaded.Config)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.NewTable(
		"Cache",
		[]string{"Entries", "Size (bytes)", "Oldest", "Newest"},
		[][]string{{
			fmt.Sprint(stats.Entries),
			fmt.Sprint(stats.TotalSize),
			stats.OldestAge.Round(time.Second).String(),
			stats.NewestAge.Round(time.Second).String(),
		}},
		stats,
	))
}
