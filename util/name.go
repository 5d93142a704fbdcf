package util

import "strconv"

// FreshDescriptor returns base itself when it is not in taken; otherwise it
// returns a deterministic name derived from base that is guaranteed not to
// be in taken, by appending "$" + k for the smallest k >= 1 for which the
// result is free.
//
// This is the collision-avoidance scheme used whenever a rename would
// otherwise collide with an existing post-rename symbol: deterministic so
// that repeated compilations of the same input produce the same output.
func FreshDescriptor(base string, taken func(candidate string) bool) string {
	if !taken(base) {
		return base
	}
	for k := 1; ; k++ {
		candidate := base + "$" + strconv.Itoa(k)
		if !taken(candidate) {
			return candidate
		}
	}
}
