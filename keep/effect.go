package keep

// Effect is the oracle's answer for one symbol: Pinned subsumes every
// weaker constraint, but a symbol may carry only the weaker ones.
type Effect struct {
	Pinned       bool
	IdentityOnly bool
	NoMerge      bool
	NoInline     bool
	DontWarn     bool
}

func (e Effect) or(other Rule) Effect {
	return Effect{
		Pinned:       e.Pinned || other.Pinned,
		IdentityOnly: e.IdentityOnly || other.IdentityOnly,
		NoMerge:      e.NoMerge || other.NoMerge,
		NoInline:     e.NoInline || other.NoInline,
		DontWarn:     e.DontWarn || other.DontWarn,
	}
}

// MayRename reports whether the symbol may be given a different name.
func (e Effect) MayRename() bool { return !e.Pinned && !e.IdentityOnly }

// MayRemove reports whether the symbol may be removed as dead.
func (e Effect) MayRemove() bool { return !e.Pinned }

// MayMerge reports whether the symbol's class may participate in
// horizontal (or vertical) class merging.
func (e Effect) MayMerge() bool { return !e.Pinned && !e.NoMerge }

// MayInline reports whether allocations of the symbol's class may be
// eliminated by the class inliner, or whether the method may be the target
// of a force-inline.
func (e Effect) MayInline() bool { return !e.Pinned && !e.NoInline }

// MayChangePrototype reports whether the method's signature may be
// rewritten (argument removal, type rewrite, return-type rewrite).
func (e Effect) MayChangePrototype() bool { return !e.Pinned }
