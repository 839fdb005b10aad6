package nepsereport

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		raw  string
		want Symbol
	}{
		{"nabil", "NABIL"},
		{"  Nabil\t", "NABIL"},
		{"nica-p", "NICA-P"},
		{"0abc", "0ABC"},
		{"ngpl/b", "NGPL/B"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSymbol(tt.raw), "raw %q", tt.raw)
	}
}

func TestNormalizeSymbolIdempotent(t *testing.T) {
	f := func(s string) bool {
		once := NormalizeSymbol(s)
		return NormalizeSymbol(once.String()) == once
	}
	assert.NoError(t, quick.Check(f, nil))
}
