package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestMergeGroupDiscardedIsNeverFatal guards spec §4.3's failure semantics:
// "discarding a group never fails the compilation." A driver that aborts on
// sink.HasFatal() must never abort because one merge group failed to fuse.
func TestMergeGroupDiscardedIsNeverFatal(t *testing.T) {
	sink := NewSink()
	sink.Report(New(NewMergeGroupDiscarded{Target: "Lapp/A;", Reason: "boom"}))

	assert.False(t, sink.HasFatal(), "a discarded merge group must not be reported as fatal")
	assert.False(t, sink.HasError(), "a discarded merge group is a warning, not an error")
}
