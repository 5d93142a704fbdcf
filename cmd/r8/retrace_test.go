package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleMapping = `app.Point -> p:
    int x -> c
    int y -> d
    int getX() -> getX
app.Shape1 -> s:
    int value -> e
    int area() -> area
`

func TestParseMappingReplacements_BuildsObfuscatedToOriginalTable(t *testing.T) {
	replacements := parseMappingReplacements(sampleMapping)
	assert.Equal(t, "app.Point", replacements["p"])
	assert.Equal(t, "app.Shape1", replacements["s"])
	assert.Equal(t, "x", replacements["c"])
	assert.Equal(t, "getX", replacements["getX"])
	assert.Equal(t, "area", replacements["area"])
}

func TestApplyReplacements_SubstitutesLongestNamesFirst(t *testing.T) {
	trace := "at a.getX(a.java:1)"
	replacements := map[string]string{"a": "app.Point", "getX": "getX"}
	out := applyReplacements(trace, replacements)
	assert.Equal(t, "at app.Point.getX(app.Point.java:1)", out)
}
