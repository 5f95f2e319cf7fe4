package synonyms

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/taxomap/pkg/taxomap/textutil"
)

// Table maps trigger phrases to the synonyms they unlock. A keyword that
// contains a trigger anywhere inside it is expanded with every synonym of
// that trigger.
//
// Tables are per language/locale and are built once per run. Expand may be
// called from several goroutines; the underlying automaton is guarded.
//
// Example file (JSON or YAML):
//
//	{"synonyms": {"btw": ["belasting", "belastingaangifte"],
//	              "betalen": ["betaling", "betalingen"]}}
type Table struct {
	// trigger -> synonyms, both lower-cased
	synonyms map[string][]string

	// triggers sorted; index positions match the automaton dictionary
	triggers []string

	mu      sync.Mutex
	matcher *ahocorasick.Matcher
}

// New builds a table from a raw trigger -> synonyms mapping. Triggers and
// synonyms are trimmed and lower-cased. Blank triggers and blank synonyms are
// dropped, and triggers that collapse to the same lower-case form are merged
// in lexicographic order of their raw spelling.
func New(raw map[string][]string) *Table {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := &Table{synonyms: make(map[string][]string)}
	for _, k := range keys {
		trigger := textutil.FoldTrim(k)
		if trigger == "" {
			continue
		}
		t.add(trigger, raw[k])
	}

	t.triggers = make([]string, 0, len(t.synonyms))
	for trigger := range t.synonyms {
		t.triggers = append(t.triggers, trigger)
	}
	sort.Strings(t.triggers)

	if len(t.triggers) > 0 {
		t.matcher = ahocorasick.NewStringMatcher(t.triggers)
	}
	return t
}

func (t *Table) add(trigger string, values []string) {
	existing := t.synonyms[trigger]
	seen := make(map[string]bool, len(existing)+len(values))
	for _, v := range existing {
		seen[v] = true
	}
	for _, v := range values {
		v = textutil.FoldTrim(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		existing = append(existing, v)
	}
	t.synonyms[trigger] = existing
}

// Expand returns the keyword variants to score. The lower-cased, trimmed
// keyword is always first; synonyms of every trigger found inside it follow
// in trigger order with duplicates removed. A nil or empty table yields the
// keyword alone.
//
// Examples with {"btw": ["belasting"]}:
//   - Expand("BTW aangifte") -> ["btw aangifte", "belasting"]
//   - Expand("factuur")      -> ["factuur"]
func (t *Table) Expand(keyword string) []string {
	normalized := textutil.FoldTrim(keyword)
	out := []string{normalized}
	if t == nil || t.matcher == nil || normalized == "" {
		return out
	}

	seen := map[string]bool{normalized: true}
	for _, idx := range t.hits(normalized) {
		for _, syn := range t.synonyms[t.triggers[idx]] {
			if seen[syn] {
				continue
			}
			seen[syn] = true
			out = append(out, syn)
		}
	}
	return out
}

// hits returns the sorted dictionary indexes of all triggers contained in s.
func (t *Table) hits(s string) []int {
	t.mu.Lock()
	idx := t.matcher.Match([]byte(s))
	t.mu.Unlock()

	sort.Ints(idx)
	return idx
}

// Triggers returns the trigger phrases in lexicographic order.
func (t *Table) Triggers() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.triggers))
	copy(out, t.triggers)
	return out
}

// Synonyms returns the synonyms registered for trigger, or nil.
func (t *Table) Synonyms(trigger string) []string {
	if t == nil {
		return nil
	}
	syns := t.synonyms[textutil.FoldTrim(trigger)]
	if syns == nil {
		return nil
	}
	out := make([]string, len(syns))
	copy(out, syns)
	return out
}

// Len reports the number of triggers.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.triggers)
}

// Stats returns statistics about the table contents.
func (t *Table) Stats() Stats {
	s := Stats{}
	if t == nil {
		return s
	}
	s.Triggers = len(t.triggers)
	for _, syns := range t.synonyms {
		s.Synonyms += len(syns)
		if len(syns) > s.MaxExpansion {
			s.MaxExpansion = len(syns)
		}
	}
	return s
}

// Stats holds statistics about a synonym table.
type Stats struct {
	Triggers     int // Number of trigger phrases
	Synonyms     int // Total synonyms across all triggers
	MaxExpansion int // Largest synonym list of a single trigger
}

type fileFormat struct {
	Synonyms map[string][]string `json:"synonyms" yaml:"synonyms"`
}

// Parse decodes a synonyms document. Documents starting with '{' are read as
// JSON (tab indentation is legal there but not in YAML), anything else as YAML.
func Parse(data []byte) (*Table, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return New(nil), nil
	}
	var doc fileFormat
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode synonyms json: %w", err)
		}
		return New(doc.Synonyms), nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode synonyms yaml: %w", err)
	}
	return New(doc.Synonyms), nil
}

// LoadFile reads a synonyms file from disk.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
