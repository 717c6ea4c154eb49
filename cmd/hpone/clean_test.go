package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanFlagsSuffix(t *testing.T) {
	tests := []struct {
		name  string
		flags cleanFlags
		want  string
	}{
		{"none", cleanFlags{}, ""},
		{"data only", cleanFlags{Data: true}, " + data"},
		{"image only", cleanFlags{Image: true}, " + images"},
		{"volume only", cleanFlags{Volume: true}, " + volumes"},
		{"all", cleanFlags{Data: true, Image: true, Volume: true}, " + data + images + volumes"},
		{"data and volume", cleanFlags{Data: true, Volume: true}, " + data + volumes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.flags.suffix())
		})
	}
}
