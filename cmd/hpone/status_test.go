package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalContainerPort(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2222", "2222/tcp"},
		{"514/udp", "514/udp"},
		{"8080/tcp", "8080/tcp"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, canonicalContainerPort(tt.in), "input %q", tt.in)
	}
}

func TestSortPortRows_Numeric(t *testing.T) {
	rows := [][]string{
		{"8080", "80/tcp", "web"},
		{"22", "22/tcp", "cowrie"},
		{"514", "514/udp", "syslog"},
	}

	sortPortRows(rows)

	assert.Equal(t, "22", rows[0][0])
	assert.Equal(t, "514", rows[1][0])
	assert.Equal(t, "8080", rows[2][0])
}

func TestSortPortRows_NonNumericLast(t *testing.T) {
	rows := [][]string{
		{"dynamic", "0/tcp", "odd"},
		{"80", "80/tcp", "web"},
		{"21-23", "21/tcp", "range"},
	}

	sortPortRows(rows)

	assert.Equal(t, "80", rows[0][0])
	// Non-numeric hosts keep their relative order after the numeric ones.
	assert.Equal(t, "dynamic", rows[1][0])
	assert.Equal(t, "21-23", rows[2][0])
}

func TestSortPortRows_ProtoSuffixIgnored(t *testing.T) {
	rows := [][]string{
		{"9000/udp", "9000/udp", "b"},
		{"53/udp", "53/udp", "a"},
	}

	sortPortRows(rows)

	assert.Equal(t, "53/udp", rows[0][0])
}
