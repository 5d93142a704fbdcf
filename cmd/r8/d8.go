package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/driver"
	"github.com/weg2020/r8/keep"
)

// d8Cmd mirrors the real d8's "no shrinking" contract: the driver runs with
// every step's Pass left nil, so nothing is tree-shaken, merged, or
// inlined — this is the pass-order skeleton with every slot unfilled, per
// spec §6's CLI sketch ("d8 (no shrinking)").
var d8Cmd = &cobra.Command{
	Use:          "d8",
	Short:        "run the driver with shrinking disabled, against the built-in sample program",
	RunE:         runD8,
	SilenceUsage: true,
}

func runD8(cmd *cobra.Command, args []string) error {
	opts := optionsFromFlags()
	logCommandStart("d8", opts)

	pool, program, rules := buildSampleProgram()
	oracle := keep.NewOracle(opts, rules)
	view := classdef.NewApplicationView(pool, program, nil)

	d := driver.NewDriver(opts, oracle, nil, nil, nil, nil, nil, nil, nil)
	final, sink, timings, err := d.Run(view)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), writeSummary(final))
	fmt.Fprintf(cmd.OutOrStdout(), "total: %s, diagnostics: %d\n", timings.Total(), len(sink.Diagnostics()))
	return nil
}
