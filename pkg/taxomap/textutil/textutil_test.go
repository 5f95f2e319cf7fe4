package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "trims whitespace", in: "  BTW \t", want: "BTW"},
		{name: "strips bom", in: "\ufeffURL", want: "URL"},
		{name: "composes accents", in: "cafe\u0301", want: "caf\u00e9"},
		{name: "empty stays empty", in: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanCell(tt.in))
		})
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "btw-aangifte", Fold("BTW-Aangifte"))
	assert.Equal(t, "überweisung", Fold("ÜBERWEISUNG"))
	assert.Equal(t, "vaste activa", FoldTrim("  Vaste Activa "))
}
