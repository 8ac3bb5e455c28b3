package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrimLower(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, nil},
		{"empty", []string{}, []string{}},
		{"mixed case addresses", []string{"0xC0FFEE", " 0xc0ffee ", "0xabc"}, []string{"0xc0ffee", "0xabc"}},
		{"blank entries dropped", []string{"", "  ", "0x01"}, []string{"0x01"}},
		{"order of first occurrence", []string{"b", "a", "B"}, []string{"b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrimLower(tt.in))
		})
	}
}
