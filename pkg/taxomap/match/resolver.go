package match

import (
	"sort"

	"github.com/cognicore/taxomap/pkg/taxomap/fuzzy"
	"github.com/cognicore/taxomap/pkg/taxomap/synonyms"
	"github.com/cognicore/taxomap/pkg/taxomap/taxonomy"
	"github.com/cognicore/taxomap/pkg/taxomap/textutil"
)

// UnmappedDomain marks the fallback row of a record without any match.
const UnmappedDomain = "UNMAPPED"

// ResultRow is one (url, taxonomy position) classification. Score and Keyword
// are diagnostics and are not part of the row identity.
type ResultRow struct {
	URL     string
	Product string
	Domain  string
	Segment string
	Topic   string

	Score    int    // best similarity that produced the row
	Keyword  string // input keyword that produced it; empty for promotions
	Promoted bool   // synthesized segment row (Topic == Segment)
}

// Key returns the row's dedup identity.
func (r ResultRow) Key() Key {
	return Key{URL: r.URL, Product: r.Product, Domain: r.Domain, Segment: r.Segment, Topic: r.Topic}
}

// Unmapped reports whether r is a fallback row.
func (r ResultRow) Unmapped() bool {
	return r.Domain == UnmappedDomain
}

// UnmappedRow returns the fallback row for url.
func UnmappedRow(url string) ResultRow {
	return ResultRow{URL: url, Domain: UnmappedDomain}
}

// Key identifies a result row. No two rows of one run share a key.
type Key struct {
	URL     string
	Product string
	Domain  string
	Segment string
	Topic   string
}

// Seen is the run-wide set of emitted keys. It is threaded through every
// Resolve call of a run and must not be shared between concurrent runs.
type Seen struct {
	keys map[Key]struct{}
}

// NewSeen returns an empty key set.
func NewSeen() *Seen {
	return &Seen{keys: make(map[Key]struct{})}
}

// Add records k and reports whether it was new.
func (s *Seen) Add(k Key) bool {
	if _, ok := s.keys[k]; ok {
		return false
	}
	s.keys[k] = struct{}{}
	return true
}

// Has reports whether k was recorded.
func (s *Seen) Has(k Key) bool {
	_, ok := s.keys[k]
	return ok
}

// Len returns the number of recorded keys.
func (s *Seen) Len() int {
	return len(s.keys)
}

// Candidate is an entry that scored at or above the threshold for a keyword.
type Candidate struct {
	Entry taxonomy.Entry
	Score int
}

// Resolver scores keywords against a fixed entry list.
type Resolver struct {
	entries   []taxonomy.Entry
	topics    []string // lower-cased topics, parallel to entries
	synonyms  *synonyms.Table
	threshold int
	score     fuzzy.Scorer
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithScorer replaces the default fuzzy.PartialRatio scorer.
func WithScorer(s fuzzy.Scorer) Option {
	return func(r *Resolver) {
		if s != nil {
			r.score = s
		}
	}
}

// NewResolver prepares entries for matching. The threshold is used as given;
// range validation belongs to the caller. syn may be nil.
func NewResolver(entries []taxonomy.Entry, syn *synonyms.Table, threshold int, opts ...Option) *Resolver {
	r := &Resolver{
		entries:   make([]taxonomy.Entry, len(entries)),
		topics:    make([]string, len(entries)),
		synonyms:  syn,
		threshold: threshold,
		score:     fuzzy.PartialRatio,
	}
	copy(r.entries, entries)
	for i, e := range entries {
		r.topics[i] = textutil.Fold(e.Topic)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Threshold returns the minimum accepted score.
func (r *Resolver) Threshold() int {
	return r.threshold
}

// Candidates expands keyword with synonyms and returns every entry whose best
// variant score reaches the threshold, highest score first. Equal scores keep
// taxonomy order.
func (r *Resolver) Candidates(keyword string) []Candidate {
	variants := r.synonyms.Expand(keyword)

	var out []Candidate
	for i, topic := range r.topics {
		best := 0
		for _, v := range variants {
			if s := r.score(v, topic); s > best {
				best = s
				if best >= 100 {
					break
				}
			}
		}
		if best >= r.threshold {
			out = append(out, Candidate{Entry: r.entries[i], Score: best})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Resolution is the outcome of one record.
type Resolution struct {
	Rows []ResultRow

	// Matched is true when the record produced at least one new topic row.
	// Rows suppressed by earlier records of the run do not count.
	Matched bool
}

type segmentKey struct {
	product, domain, segment string
}

// Resolve classifies one record. Keywords are evaluated independently, in
// order; rows already in seen are skipped. Each segment touched by a new
// row is then promoted to a row of its own with Topic == Segment. A record
// with no match at all yields the UNMAPPED fallback row.
func (r *Resolver) Resolve(rec KeywordRecord, seen *Seen) Resolution {
	var (
		res      Resolution
		segments []segmentKey
		best     = make(map[segmentKey]int)
	)

	for _, kw := range rec.Keywords {
		for _, c := range r.Candidates(kw) {
			row := ResultRow{
				URL:     rec.URL,
				Product: c.Entry.Product,
				Domain:  c.Entry.Domain,
				Segment: c.Entry.Segment,
				Topic:   c.Entry.Topic,
				Score:   c.Score,
				Keyword: kw,
			}
			if !seen.Add(row.Key()) {
				continue
			}
			res.Rows = append(res.Rows, row)
			res.Matched = true

			if row.Segment == "" {
				continue
			}
			sk := segmentKey{row.Product, row.Domain, row.Segment}
			prev, ok := best[sk]
			if !ok {
				segments = append(segments, sk)
			}
			if !ok || c.Score > prev {
				best[sk] = c.Score
			}
		}
	}

	for _, sk := range segments {
		row := ResultRow{
			URL:      rec.URL,
			Product:  sk.product,
			Domain:   sk.domain,
			Segment:  sk.segment,
			Topic:    sk.segment,
			Score:    best[sk],
			Promoted: true,
		}
		if seen.Add(row.Key()) {
			res.Rows = append(res.Rows, row)
		}
	}

	if !res.Matched {
		fallback := UnmappedRow(rec.URL)
		if seen.Add(fallback.Key()) {
			res.Rows = append(res.Rows, fallback)
		}
	}
	return res
}
