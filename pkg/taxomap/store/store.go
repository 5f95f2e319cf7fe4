package store

import (
	"context"
	"time"
)

// Store persists completed matching runs and their result rows.
type Store interface {
	Close() error

	// SaveRun stores run metadata and its rows; rows keep their order.
	// Saving an existing run ID replaces it.
	SaveRun(ctx context.Context, run Run, rows []Row) error

	// GetRun returns a run by ID; found is false when it does not exist.
	GetRun(ctx context.Context, id string) (run Run, found bool, err error)

	// ListRuns returns up to limit runs, newest first. limit <= 0 means 20.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// RunRows returns the rows of a run in emission order.
	RunRows(ctx context.Context, id string) ([]Row, error)
}

// Run is the metadata and coverage counters of one batch.
type Run struct {
	ID           string // ULID, sortable by creation time
	Country      string
	Threshold    int
	Consolidated bool
	StartedAt    time.Time
	FinishedAt   time.Time

	TotalRecords    int
	MatchedRecords  int
	UnmappedRecords int
	OutputRows      int
}

// Row is a persisted result row.
type Row struct {
	URL      string
	Product  string
	Domain   string
	Segment  string
	Topic    string
	Score    int
	Keyword  string
	Promoted bool
}

// DefaultListLimit applies when ListRuns gets a non-positive limit.
const DefaultListLimit = 20
