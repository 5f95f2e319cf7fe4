package taxomap

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"

	"github.com/cognicore/taxomap/pkg/taxomap/consolidate"
	"github.com/cognicore/taxomap/pkg/taxomap/fuzzy"
	"github.com/cognicore/taxomap/pkg/taxomap/internalerr"
	"github.com/cognicore/taxomap/pkg/taxomap/match"
	"github.com/cognicore/taxomap/pkg/taxomap/sheet"
	"github.com/cognicore/taxomap/pkg/taxomap/store"
	"github.com/cognicore/taxomap/pkg/taxomap/synonyms"
	"github.com/cognicore/taxomap/pkg/taxomap/taxonomy"
)

const (
	MinThreshold = 50
	MaxThreshold = 100

	// progressEvery controls how often a progress line is logged.
	progressEvery = 50
)

// Engine is the batch matching facade. An Engine holds read-only state and
// may run several batches; each Run owns its own dedup set.
type Engine struct {
	resolver    *match.Resolver
	tax         *taxonomy.Taxonomy
	consolidate bool
	country     string
	log         zerolog.Logger
	progress    func(done, total int)
	store       store.Store

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures an Engine.
type Options struct {
	Taxonomy    *taxonomy.Taxonomy
	Synonyms    *synonyms.Table // nil means literal matching only
	Threshold   int             // used as given; see ValidateThreshold
	Consolidate bool
	Country     string // recorded on stored runs

	// Scorer replaces fuzzy.PartialRatio when set.
	Scorer fuzzy.Scorer

	Logger zerolog.Logger

	// Progress is called after every record with the number of records done.
	Progress func(done, total int)

	// Store receives the run after the pass when set.
	Store store.Store
}

// New creates an Engine from opts.
func New(opts Options) *Engine {
	tax := opts.Taxonomy
	if tax == nil {
		tax = taxonomy.New(nil)
	}
	var ropts []match.Option
	if opts.Scorer != nil {
		ropts = append(ropts, match.WithScorer(opts.Scorer))
	}
	return &Engine{
		resolver:    match.NewResolver(tax.Entries(), opts.Synonyms, opts.Threshold, ropts...),
		tax:         tax,
		consolidate: opts.Consolidate,
		country:     opts.Country,
		log:         opts.Logger,
		progress:    opts.Progress,
		store:       opts.Store,
		entropy:     ulid.Monotonic(rand.Reader, 0),
	}
}

// ValidateThreshold rejects thresholds outside [MinThreshold, MaxThreshold].
// The engine itself uses any integer literally.
func ValidateThreshold(threshold int) error {
	if threshold < MinThreshold || threshold > MaxThreshold {
		return fmt.Errorf("%w: %d not in [%d, %d]", internalerr.ErrThresholdRange, threshold, MinThreshold, MaxThreshold)
	}
	return nil
}

// Report is the outcome of one batch.
type Report struct {
	RunID      string
	Country    string
	StartedAt  time.Time
	FinishedAt time.Time
	Threshold  int

	// Rows is the row-per-match output in emission order.
	Rows []match.ResultRow

	// Consolidated is set only when consolidation is enabled.
	Consolidated *consolidate.Result

	Stats Stats
}

// Table renders the report as it should be written: the consolidated view
// when present, the row-per-match view otherwise. diagnostics adds Score and
// Keyword columns to the row-per-match view.
func (r *Report) Table(diagnostics bool) sheet.Table {
	if r.Consolidated != nil {
		return consolidate.Table(*r.Consolidated)
	}
	return match.Table(r.Rows, diagnostics)
}

// Stats are diagnostic counters. They never drive control flow.
type Stats struct {
	TotalRecords     int
	MatchedRecords   int // records with at least one non-fallback match
	UnmappedRecords  int
	OutputRows       int // row-per-match rows, before consolidation
	AvgRowsPerRecord float64

	// Sites breaks coverage down by registrable domain of the record URL.
	Sites map[string]SiteCoverage
}

// SiteCoverage counts records and rows for one site.
type SiteCoverage struct {
	Records int
	Matched int
	Rows    int
}

// MatchedPercent is the share of records with a match, 0 for empty runs.
func (s Stats) MatchedPercent() float64 {
	return percent(s.MatchedRecords, s.TotalRecords)
}

// UnmappedPercent is the share of records without a match.
func (s Stats) UnmappedPercent() float64 {
	return percent(s.UnmappedRecords, s.TotalRecords)
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// Run resolves every record in order against one shared dedup set. The pass
// itself is not interruptible; ctx only bounds persistence. When a store is
// configured and saving fails, the report is returned along with the error.
func (e *Engine) Run(ctx context.Context, records []match.KeywordRecord) (*Report, error) {
	report := &Report{
		RunID:     e.newRunID(),
		Country:   e.country,
		StartedAt: time.Now().UTC(),
		Threshold: e.resolver.Threshold(),
	}

	tstats := e.tax.Stats()
	e.log.Info().
		Str("run", report.RunID).
		Int("records", len(records)).
		Int("entries", tstats.Entries).
		Strs("topic_columns", e.tax.TopicColumns()).
		Int("threshold", report.Threshold).
		Msg("matching started")

	seen := match.NewSeen()
	stats := Stats{TotalRecords: len(records), Sites: make(map[string]SiteCoverage)}
	total := len(records)

	for i, rec := range records {
		res := e.resolver.Resolve(rec, seen)
		report.Rows = append(report.Rows, res.Rows...)

		site := siteOf(rec.URL)
		cov := stats.Sites[site]
		cov.Records++
		cov.Rows += len(res.Rows)
		if res.Matched {
			stats.MatchedRecords++
			cov.Matched++
		}
		stats.Sites[site] = cov

		done := i + 1
		if e.progress != nil {
			e.progress(done, total)
		}
		if done%progressEvery == 0 {
			e.log.Debug().Int("done", done).Int("total", total).Msg("progress")
		}
	}

	stats.UnmappedRecords = stats.TotalRecords - stats.MatchedRecords
	stats.OutputRows = len(report.Rows)
	if stats.TotalRecords > 0 {
		stats.AvgRowsPerRecord = float64(stats.OutputRows) / float64(stats.TotalRecords)
	}
	report.Stats = stats

	if e.consolidate {
		c := consolidate.Consolidate(report.Rows)
		report.Consolidated = &c
		e.log.Debug().Int("rows", len(c.Rows)).Int("topic_columns", c.Width).Msg("consolidated")
	}
	report.FinishedAt = time.Now().UTC()

	e.log.Info().
		Str("run", report.RunID).
		Int("total", stats.TotalRecords).
		Int("matched", stats.MatchedRecords).
		Int("unmapped", stats.UnmappedRecords).
		Int("output_rows", stats.OutputRows).
		Str("avg_rows_per_record", fmt.Sprintf("%.2f", stats.AvgRowsPerRecord)).
		Str("matched_pct", fmt.Sprintf("%.1f", stats.MatchedPercent())).
		Str("unmapped_pct", fmt.Sprintf("%.1f", stats.UnmappedPercent())).
		Msg("matching complete")

	if e.store != nil {
		if err := e.save(ctx, report); err != nil {
			return report, fmt.Errorf("save run: %w", err)
		}
	}
	return report, nil
}

func (e *Engine) save(ctx context.Context, r *Report) error {
	run := store.Run{
		ID:              r.RunID,
		Country:         r.Country,
		Threshold:       r.Threshold,
		Consolidated:    r.Consolidated != nil,
		StartedAt:       r.StartedAt,
		FinishedAt:      r.FinishedAt,
		TotalRecords:    r.Stats.TotalRecords,
		MatchedRecords:  r.Stats.MatchedRecords,
		UnmappedRecords: r.Stats.UnmappedRecords,
		OutputRows:      r.Stats.OutputRows,
	}
	rows := make([]store.Row, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = store.Row{
			URL:      row.URL,
			Product:  row.Product,
			Domain:   row.Domain,
			Segment:  row.Segment,
			Topic:    row.Topic,
			Score:    row.Score,
			Keyword:  row.Keyword,
			Promoted: row.Promoted,
		}
	}
	return e.store.SaveRun(ctx, run, rows)
}

func (e *Engine) newRunID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ulid.MustNew(ulid.Now(), e.entropy).String()
}

// siteOf returns the registrable domain of a record URL, the bare host when
// there is none, or "" when the URL has no host.
func siteOf(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	site, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return site
}
