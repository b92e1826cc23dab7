package ports

import (
	"context"

	"queuedremove/internal/domain"
)

// QueueRepository persists the queue state as a single record. Load reports
// ok=false when no record has been saved yet (first run).
type QueueRepository interface {
	Load(ctx context.Context) (domain.QueueState, bool, error)
	Save(ctx context.Context, state domain.QueueState) error
}

// TorrentStore persists the torrents added to the host so they survive a
// restart.
type TorrentStore interface {
	Create(ctx context.Context, record domain.TorrentRecord) error
	List(ctx context.Context) ([]domain.TorrentRecord, error)
	Delete(ctx context.Context, id domain.TorrentID) error
}
