package taxonomy

import (
	"fmt"
	"strings"

	"github.com/cognicore/taxomap/pkg/taxomap/internalerr"
	"github.com/cognicore/taxomap/pkg/taxomap/sheet"
)

// Column names of a taxonomy table.
const (
	ColumnProduct = "Product"
	ColumnDomain  = "Domain"
	ColumnSegment = "Segment"
	TopicPrefix   = "Topic"
)

// Entry is one searchable (product, domain, segment, topic) tuple.
type Entry struct {
	Product string
	Domain  string
	Segment string
	Topic   string
}

// Schema is the column layout discovered from a taxonomy header. Missing
// Product/Domain/Segment columns have index -1 and read as "".
type Schema struct {
	Product    int
	Domain     int
	Segment    int
	Topics     []int    // header indexes of the topic columns, in header order
	TopicNames []string // header names matching Topics
}

// DiscoverSchema locates the fixed columns and every column whose name starts
// with "Topic". Callers may add or remove topic columns freely; at least one
// is required.
func DiscoverSchema(header []string) (Schema, error) {
	s := Schema{Product: -1, Domain: -1, Segment: -1}
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		switch {
		case strings.EqualFold(name, ColumnProduct):
			s.Product = i
		case strings.EqualFold(name, ColumnDomain):
			s.Domain = i
		case strings.EqualFold(name, ColumnSegment):
			s.Segment = i
		case strings.HasPrefix(name, TopicPrefix):
			s.Topics = append(s.Topics, i)
			s.TopicNames = append(s.TopicNames, name)
		}
	}
	if len(s.Topics) == 0 {
		return s, fmt.Errorf("%w: taxonomy has no %q columns", internalerr.ErrInvalidInput, TopicPrefix)
	}
	return s, nil
}

// Flatten emits one entry per row and non-blank topic cell, in row order and
// then topic-column order. That order is the tie-break for equal scores
// downstream.
func (s Schema) Flatten(rows [][]string) []Entry {
	var entries []Entry
	for _, row := range rows {
		product := strings.TrimSpace(sheet.Cell(row, s.Product))
		domain := strings.TrimSpace(sheet.Cell(row, s.Domain))
		segment := strings.TrimSpace(sheet.Cell(row, s.Segment))
		for _, col := range s.Topics {
			topic := strings.TrimSpace(sheet.Cell(row, col))
			if topic == "" {
				continue
			}
			entries = append(entries, Entry{
				Product: product,
				Domain:  domain,
				Segment: segment,
				Topic:   topic,
			})
		}
	}
	return entries
}

// Taxonomy is the flattened, read-only entry list for one run.
type Taxonomy struct {
	schema  Schema
	rows    int
	entries []Entry
}

// FromTable discovers the schema of t and flattens its rows.
func FromTable(t sheet.Table) (*Taxonomy, error) {
	schema, err := DiscoverSchema(t.Header)
	if err != nil {
		return nil, err
	}
	return &Taxonomy{
		schema:  schema,
		rows:    len(t.Rows),
		entries: schema.Flatten(t.Rows),
	}, nil
}

// Load reads a taxonomy file (xlsx, csv or tsv) and flattens it.
func Load(path string) (*Taxonomy, error) {
	t, err := sheet.Read(path)
	if err != nil {
		return nil, err
	}
	return FromTable(t)
}

// New wraps an already flattened entry list.
func New(entries []Entry) *Taxonomy {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return &Taxonomy{entries: out}
}

// Entries returns a copy of the flattened entries.
func (t *Taxonomy) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// TopicColumns returns the detected topic column names.
func (t *Taxonomy) TopicColumns() []string {
	out := make([]string, len(t.schema.TopicNames))
	copy(out, t.schema.TopicNames)
	return out
}

// Stats summarises the taxonomy.
func (t *Taxonomy) Stats() Stats {
	segments := make(map[[3]string]struct{})
	domains := make(map[string]struct{})
	for _, e := range t.entries {
		domains[e.Domain] = struct{}{}
		if e.Segment != "" {
			segments[[3]string{e.Product, e.Domain, e.Segment}] = struct{}{}
		}
	}
	return Stats{
		Rows:         t.rows,
		TopicColumns: len(t.schema.Topics),
		Entries:      len(t.entries),
		Domains:      len(domains),
		Segments:     len(segments),
	}
}

// Stats holds counts about a flattened taxonomy.
type Stats struct {
	Rows         int
	TopicColumns int
	Entries      int
	Domains      int
	Segments     int
}
