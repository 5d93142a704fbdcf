package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/weg2020/r8/classdef"
)

// writeSummary is the in-memory stand-in for the writer collaborator (spec
// §6, "serialize(view, mapping) → bytes"): it renders the final application
// view as plain text rather than dex bytes, since producing a real dex file
// is this module's explicit out-of-scope boundary.
func writeSummary(view *classdef.ApplicationView) string {
	classes := view.ProgramClasses()
	sort.Slice(classes, func(i, j int) bool { return classes[i].Type.Descriptor() < classes[j].Type.Descriptor() })

	var b strings.Builder
	fmt.Fprintf(&b, "%d program classes\n", len(classes))
	for _, c := range classes {
		fmt.Fprintf(&b, "  %s (fields=%d, methods=%d)\n", c.Type.Descriptor(), len(c.Fields), len(c.Methods))
		for _, m := range c.Methods {
			instructionCount := 0
			if m.Body != nil {
				instructionCount = m.Body.InstructionCount()
			}
			fmt.Fprintf(&b, "    %s (instructions=%d)\n", m.Ref.MethodSignature.String(), instructionCount)
		}
	}
	return b.String()
}

// writeMappingFile writes the residual mapping's text rendering to path,
// wrapping any filesystem error with github.com/pkg/errors the way the
// teacher wraps collaborator failures at its own outermost boundary.
func writeMappingFile(path, contents string) error {
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return errors.Wrapf(err, "writing residual mapping to %s", path)
	}
	return nil
}
