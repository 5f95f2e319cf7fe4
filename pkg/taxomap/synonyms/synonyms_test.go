package synonyms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dutchTable() *Table {
	return New(map[string][]string{
		"bankzaken":    {"bank", "banken", "bankafschriften", "bankrekeningen", "bankenmodule"},
		"betalen":      {"betaling", "betalingen"},
		"incasseren":   {"incasso"},
		"facturatie":   {"facturen", "factuur", "facturering"},
		"btw":          {"belasting", "belastingaangifte"},
		"vaste activa": {"activa", "activum"},
	})
}

func TestExpand(t *testing.T) {
	tab := dutchTable()

	tests := []struct {
		name    string
		keyword string
		want    []string
	}{
		{name: "no trigger yields keyword only", keyword: "grootboek", want: []string{"grootboek"}},
		{name: "normalizes case and whitespace", keyword: "  Grootboek ", want: []string{"grootboek"}},
		{name: "exact trigger", keyword: "btw", want: []string{"btw", "belasting", "belastingaangifte"}},
		{name: "trigger as substring", keyword: "BTW-aangifte doen", want: []string{"btw-aangifte doen", "belasting", "belastingaangifte"}},
		{name: "multi word trigger", keyword: "vaste activa register", want: []string{"vaste activa register", "activa", "activum"}},
		{
			name:    "two triggers in one keyword",
			keyword: "btw betalen",
			want:    []string{"btw betalen", "betaling", "betalingen", "belasting", "belastingaangifte"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tab.Expand(tt.keyword))
		})
	}
}

func TestExpandNoDuplicates(t *testing.T) {
	tab := New(map[string][]string{
		"bank":   {"banken", "bankzaken"},
		"banken": {"bankzaken", "bank"},
	})
	got := tab.Expand("banken")
	assert.Equal(t, []string{"banken", "bankzaken", "bank"}, got)
}

func TestExpandEmptyTable(t *testing.T) {
	var nilTable *Table
	assert.Equal(t, []string{"btw"}, nilTable.Expand("BTW"))
	assert.Equal(t, []string{"btw"}, New(nil).Expand("BTW"))
}

func TestNewNormalizesEntries(t *testing.T) {
	tab := New(map[string][]string{
		" BTW ": {"Belasting", "", "  "},
		"btw":   {"belasting", "fiscus"},
		"":      {"ignored"},
	})
	assert.Equal(t, []string{"btw"}, tab.Triggers())
	assert.Equal(t, []string{"belasting", "fiscus"}, tab.Synonyms("Btw"))
	assert.Nil(t, tab.Synonyms("unknown"))
	assert.Equal(t, 1, tab.Len())
}

func TestStats(t *testing.T) {
	stats := dutchTable().Stats()
	assert.Equal(t, 6, stats.Triggers)
	assert.Equal(t, 15, stats.Synonyms)
	assert.Equal(t, 5, stats.MaxExpansion)
}

func TestParseJSONAndYAML(t *testing.T) {
	jsonDoc := "{\n\t\"synonyms\": {\n\t\t\"btw\": [\"belasting\"]\n\t}\n}\n"
	tab, err := Parse([]byte(jsonDoc))
	require.NoError(t, err)
	assert.Equal(t, []string{"belasting"}, tab.Synonyms("btw"))

	yamlDoc := "synonyms:\n  betalen: [betaling, betalingen]\n"
	tab, err = Parse([]byte(yamlDoc))
	require.NoError(t, err)
	assert.Equal(t, []string{"betaling", "betalingen"}, tab.Synonyms("betalen"))

	tab, err = Parse([]byte("  \n"))
	require.NoError(t, err)
	assert.Equal(t, 0, tab.Len())

	_, err = Parse([]byte("{\"synonyms\": [}"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"synonyms": {"facturatie": ["factuur"]}}`), 0o644))

	tab, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"facturatie", "factuur"}, tab.Expand("Facturatie"))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
