// Package store persists run history and caches derived results keyed by the
// fingerprint of the uploaded content, so re-analyzing the same bytes reuses
// the previous computation.
package store

import (
	"context"

	"github.com/sells-group/capital-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Source string          `json:"source,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the analysis pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, source, fingerprint string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, metrics model.RunMetrics) error
	FailRun(ctx context.Context, runID string, cause string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Result cache, keyed by upload content fingerprint
	GetCachedResult(ctx context.Context, fingerprint string) ([]byte, bool, error)
	SetCachedResult(ctx context.Context, fingerprint string, payload []byte) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
