package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSampleProgram_HasFiveClasses(t *testing.T) {
	_, program, rules := buildSampleProgram()
	require.Len(t, program, 5)

	for _, descriptor := range []string{"Lapp/Point;", "Lapp/Shape1;", "Lapp/Shape2;", "Lapp/Dead;", "Lapp/Main;"} {
		found := false
		for classType := range program {
			if classType.Descriptor() == descriptor {
				found = true
			}
		}
		assert.True(t, found, "expected %s in sample program", descriptor)
	}

	require.Len(t, rules.Rules, 1)
	assert.True(t, rules.Rules[0].Matcher("Lapp/Main;"))
	assert.False(t, rules.Rules[0].Matcher("Lapp/Dead;"))
}
