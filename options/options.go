// Package options defines the engine-wide configuration bag. An Options
// value is constructed once by the caller and threaded explicitly through
// every pass and oracle that needs it — per spec §9's "Global mutable state
// of the symbol interner" design note, nothing in this module reaches for
// ambient/process-wide configuration.
package options

// Options configures a single compilation run.
type Options struct {
	// Minify enables the minification pass (spec §4.5 step 7).
	Minify bool

	// TargetAPILevel gates desugaring and format-limit checks the writer
	// collaborator enforces; the core only threads it through to oracles
	// that need to know the target runtime.
	TargetAPILevel int

	// MainDexRulesPath names the main-dex keep-rule file. Nothing in this
	// module reads it: merge.NewPass builds its MainDexCompatible policy over
	// merge.NoMainDexPartitions, which puts every class in partition 0.
	MainDexRulesPath string

	// Desugar enables the desugaring layer. The desugaring layer itself is
	// an external collaborator (spec §1); this flag only participates in
	// pass enable/disable decisions within this module.
	Desugar bool

	// DisabledPasses lists pass names (matching driver.Pass.Name) to skip
	// entirely, for tests and bisection.
	DisabledPasses map[string]bool

	// Workers bounds the driver's worker pool (spec §5). Zero means
	// unbounded (one goroutine per work-item).
	Workers int

	// InlinerSizeCeiling is the class inliner's per-candidate combined
	// inlined-instruction-count budget (spec §4.4 "Size budget").
	InlinerSizeCeiling int

	// DebugStacks mirrors the teacher's enableDebugErrorPrinting. Nothing in
	// this module reads it; whether diagnostics print their captured stack
	// trace is set by diag's enableDebugStacks constant.
	DebugStacks bool
}

// Default returns a conservative Options value: no minification, no
// desugaring, an unbounded worker pool, and a generous inliner budget.
func Default() Options {
	return Options{
		Minify:             false,
		TargetAPILevel:     21,
		Desugar:            false,
		DisabledPasses:     map[string]bool{},
		Workers:            0,
		InlinerSizeCeiling: 40,
		DebugStacks:        false,
	}
}

func (o Options) PassEnabled(name string) bool {
	return !o.DisabledPasses[name]
}
