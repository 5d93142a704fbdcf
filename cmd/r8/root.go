package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/weg2020/r8/internal/log"
	"github.com/weg2020/r8/options"
)

// rootCmd mirrors the teacher's main.go: a bare root command with
// subcommands registered in init(), no Run of its own.
var rootCmd = &cobra.Command{
	Use:          "r8 [subcommand]",
	Short:        "r8 — a developer harness around the whole-program rewriting engine",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var (
	workers   *int
	ceiling   *int
	verbose   *bool
)

func init() {
	workers = rootCmd.PersistentFlags().IntP("workers", "w", 0, "bound the driver's worker pool (0 = unbounded)")
	ceiling = rootCmd.PersistentFlags().IntP("inliner-size-ceiling", "c", 40, "class inliner per-candidate instruction budget")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging for every pass section")

	rootCmd.AddCommand(d8Cmd)
	rootCmd.AddCommand(r8Cmd)
	rootCmd.AddCommand(retraceCmd)
}

// optionsFromFlags builds an options.Options from the persistent flags
// common to d8 and r8, per spec §6's "single entry point with subcommands".
func optionsFromFlags() options.Options {
	if *verbose {
		log.SetEnabledSections([]string{"driver", "merge", "inline"})
	} else {
		log.SetEnabledSections(nil)
	}

	opts := options.Default()
	opts.Workers = *workers
	opts.InlinerSizeCeiling = *ceiling
	return opts
}

func logCommandStart(name string, opts options.Options) {
	log.DefaultLogger.Info("starting run",
		slog.String("section", "driver"),
		slog.String("command", name),
		slog.Int("workers", opts.Workers),
		slog.Int("inlinerSizeCeiling", opts.InlinerSizeCeiling))
}
