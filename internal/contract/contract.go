// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/quotagraph/schema"
)

// SampleStore is the historical-data collaborator: it persists readings and
// rollups and hands them back ordered by time.
// This allows the core logic to be tested without a real database.
type SampleStore interface {
	// InsertReadings stores readings, ignoring duplicates by timestamp, and
	// returns how many were new.
	InsertReadings(ctx context.Context, readings []schema.Reading) (int, error)

	// ListReadings returns readings with startMs <= timestamp < endMs ordered by
	// timestamp. A zero bound is open.
	ListReadings(ctx context.Context, startMs, endMs int64) ([]schema.Reading, error)

	// UpsertRollups stores rollup rows keyed by resolution and period start.
	UpsertRollups(ctx context.Context, rollups []schema.Rollup) error

	// ListRollups returns rollups of one resolution ordered by period start.
	ListRollups(ctx context.Context, res schema.Resolution, startMs, endMs int64) ([]schema.Rollup, error)

	// DeleteReadingsBefore removes raw readings older than cutoffMs.
	DeleteReadingsBefore(ctx context.Context, cutoffMs int64) (int64, error)

	// GetStatus returns status information about the store.
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// StoreManager hands out the configured SampleStore.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetSampleStore() SampleStore
}
