package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitPositional(t *testing.T) {
	tests := []struct {
		name string
		args []string
		pos  []string
		rest []string
	}{
		{"empty", nil, nil, nil},
		{"only positionals", []string{"Sentinels", "Fnatic"}, []string{"Sentinels", "Fnatic"}, []string{}},
		{"flags after positionals", []string{"Sentinels", "Fnatic", "-game", "cs2"}, []string{"Sentinels", "Fnatic"}, []string{"-game", "cs2"}},
		{"flags only", []string{"-game", "cs2"}, nil, []string{"-game", "cs2"}},
		{"empty string is a positional", []string{"", "-game", "cs2"}, []string{""}, []string{"-game", "cs2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, rest := splitPositional(tt.args)
			assert.Equal(t, tt.pos, pos)
			assert.Equal(t, tt.rest, rest)
		})
	}
}
