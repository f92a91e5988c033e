package port

import (
	"context"

	"github.com/rl1809/graphql-bench/internal/core/domain"
)

type SnapshotSource interface {
	// Load reads the full dataset, each collection in insertion order
	Load(ctx context.Context) (*domain.Snapshot, error)
}

type SnapshotSink interface {
	// Save replaces the stored dataset with snapshot
	Save(ctx context.Context, snapshot *domain.Snapshot) error
}

type SnapshotRepository interface {
	SnapshotSource
	SnapshotSink
}
