package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{name: "contained", a: "btw", b: "btw-aangifte", want: 100},
		{name: "contained reversed operands", a: "btw-aangifte", b: "btw", want: 100},
		{name: "identical", a: "factuur", b: "factuur", want: 100},
		{name: "contained suffix", a: "facturen", b: "verkoopfacturen", want: 100},
		{name: "near miss", a: "factuur", b: "facturatieproces", want: 86},
		{name: "typo", a: "bankafschrift", b: "bankafscrift", want: 92},
		{name: "no overlap", a: "xyz", b: "abc", want: 0},
		{name: "empty operand", a: "", b: "abc", want: 0},
		{name: "both empty", a: "", b: "", want: 0},
		{name: "partial overlap", a: "belasting", b: "btw-aangifte", want: 44},
		{name: "weak overlap", a: "belasting", b: "btw-tarieven", want: 33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PartialRatio(tt.a, tt.b))
		})
	}
}

func TestPartialRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"betaling", "bankbetalingen"},
		{"klanten", "relatiebeheer"},
		{"jaarrekening", "jaarafsluiting"},
	}
	for _, p := range pairs {
		assert.Equal(t, PartialRatio(p[0], p[1]), PartialRatio(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestPartialRatioRunes(t *testing.T) {
	assert.Equal(t, 100, PartialRatio("überweisung", "sepa-überweisung"))
	assert.Equal(t, 80, PartialRatio("éabcd", "xabcd"))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 100, Ratio("btw", "btw"))
	assert.Equal(t, 0, Ratio("", ""))
	assert.Equal(t, 0, Ratio("abc", ""))
	// lcs("btw", "btw-aangifte") = 3 -> 6/15
	assert.Equal(t, 40, Ratio("btw", "btw-aangifte"))
}

func TestPercentRoundsHalfToEven(t *testing.T) {
	assert.Equal(t, 12, percent(1, 8)) // 12.5
	assert.Equal(t, 38, percent(3, 8)) // 37.5
	assert.Equal(t, 67, percent(2, 3)) // 66.67
}
