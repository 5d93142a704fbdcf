package lens

import "github.com/weg2020/r8/symbol"

// PrototypeChange is the structured edit to a method's signature described
// in spec §3: which argument slots were removed, which argument types were
// rewritten, the return-type rewrite, and how many trailing null parameters
// were appended for signature-collision avoidance.
type PrototypeChange struct {
	// RemovedArgs holds the original argument indices that no longer exist
	// in the post-change signature.
	RemovedArgs []int
	// RewrittenArgs maps an original argument index to its new type, for
	// arguments that survive but change type (e.g. enum unboxing).
	RewrittenArgs map[int]symbol.Type
	// ReturnRewrite is the new return type, or the zero Type if the return
	// type is unchanged.
	ReturnRewrite symbol.Type
	// ExtraNullParams counts trailing null parameters appended to avoid a
	// signature collision with an existing method.
	ExtraNullParams int

	// AppendedClassID is non-nil when a trailing int parameter was appended
	// carrying a fixed, non-null class-id value — the horizontal merger's
	// dispatcher constructors (spec §4.3 step 2, "prototype-change
	// descriptions for constructors that gained the class-id parameter").
	// Callers rewriting a call site through this change must pass this
	// literal value as the trailing argument, unlike ExtraNullParams.
	AppendedClassID *int
}

func (c *PrototypeChange) IsEmpty() bool {
	return c == nil || (len(c.RemovedArgs) == 0 && len(c.RewrittenArgs) == 0 &&
		c.ReturnRewrite.IsZero() && c.ExtraNullParams == 0 && c.AppendedClassID == nil)
}

// Merge combines two non-conflicting PrototypeChanges into one. It is only
// ever invoked by a single pass building up a single lens's own change for
// one method: the stack-composition rule (spec §4.1) forbids two different
// lenses from both carrying a change for the same method, so Stack never
// calls this across lens boundaries.
func (c *PrototypeChange) Merge(other *PrototypeChange) *PrototypeChange {
	if c == nil {
		return other
	}
	if other == nil {
		return c
	}
	merged := &PrototypeChange{
		RemovedArgs:     append(append([]int{}, c.RemovedArgs...), other.RemovedArgs...),
		RewrittenArgs:   map[int]symbol.Type{},
		ReturnRewrite:   c.ReturnRewrite,
		ExtraNullParams: c.ExtraNullParams + other.ExtraNullParams,
		AppendedClassID: other.AppendedClassID,
	}
	if merged.AppendedClassID == nil {
		merged.AppendedClassID = c.AppendedClassID
	}
	for k, v := range c.RewrittenArgs {
		merged.RewrittenArgs[k] = v
	}
	for k, v := range other.RewrittenArgs {
		merged.RewrittenArgs[k] = v
	}
	if !other.ReturnRewrite.IsZero() {
		merged.ReturnRewrite = other.ReturnRewrite
	}
	return merged
}
