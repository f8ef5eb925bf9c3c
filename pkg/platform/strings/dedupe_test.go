package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{name: "trims whitespace", input: []string{"  foo  ", "bar  ", "  baz"}, expected: []string{"foo", "bar", "baz"}},
		{name: "removes duplicates preserving order", input: []string{"foo", "bar", "foo", "baz", "bar"}, expected: []string{"foo", "bar", "baz"}},
		{name: "drops blanks", input: []string{"", "   ", "foo"}, expected: []string{"foo"}},
		{name: "case sensitive", input: []string{"Foo", "foo"}, expected: []string{"Foo", "foo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestDedupeAndTrimUpper(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "uppercases category codes", input: []string{"b", " c1e "}, expected: []string{"B", "C1E"}},
		{name: "collapses case variants", input: []string{"d", "D", " d "}, expected: []string{"D"}},
		{name: "drops blanks", input: []string{" ", "g"}, expected: []string{"G"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrimUpper(tt.input))
		})
	}
}
