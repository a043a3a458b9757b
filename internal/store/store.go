// Package store persists the dataset provenance journal: one entry per
// dataset load, so operators can see what was ingested and when. Table
// data itself is never persisted; session state is in-memory only.
package store

import (
	"context"
	"time"
)

// Entry records one dataset load.
type Entry struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Rows       int       `json:"rows"`
	Cols       int       `json:"cols"`
	AlertCount int       `json:"alertCount"`
	Generation uint64    `json:"generation"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Journal records dataset loads and lists recent entries.
type Journal interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// NopJournal is the degraded journal used when the backing database
// cannot be opened. Ingestion must never be blocked by journal failures.
type NopJournal struct{}

func (NopJournal) Record(context.Context, Entry) error          { return nil }
func (NopJournal) Recent(context.Context, int) ([]Entry, error) { return nil, nil }
func (NopJournal) Close() error                                 { return nil }
