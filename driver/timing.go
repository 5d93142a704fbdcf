package driver

import (
	"log/slog"
	"time"

	"github.com/weg2020/r8/internal/log"
)

// Timings records one phase-timing entry per driver step, grounded on the
// teacher corpus's convention of timing significant phases and logging them
// as structured fields rather than a dedicated telemetry type (spec §9,
// "Timing.java supplements the ambient stack").
type Timings struct {
	entries []timingEntry
}

type timingEntry struct {
	step     string
	duration time.Duration
}

// Record times fn under name and appends the result.
func (t *Timings) Record(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	t.entries = append(t.entries, timingEntry{step: name, duration: time.Since(start)})
	return err
}

// Log emits every recorded entry as a structured debug record.
func (t *Timings) Log() {
	for _, e := range t.entries {
		log.DefaultLogger.Debug("pass timing",
			slog.String("section", "driver"),
			slog.String("step", e.step),
			slog.Duration("elapsed", e.duration))
	}
}

func (t *Timings) Total() time.Duration {
	var total time.Duration
	for _, e := range t.entries {
		total += e.duration
	}
	return total
}
