package ports

import (
	"context"

	"queuedremove/internal/domain"
)

// TorrentHost is the capability surface the queue core consumes. The host
// owns the live torrent set; the core only queries it and asks for removals.
type TorrentHost interface {
	// ListTorrents enumerates the live torrent set. Per-id existence checks
	// are map lookups over this enumeration.
	ListTorrents(ctx context.Context) ([]domain.TorrentID, error)
	// FreeSpaceBytes reports free disk space on the download directory.
	FreeSpaceBytes(ctx context.Context) (int64, error)
	// ReclaimableBytes returns an upper-bound estimate of the bytes freed by
	// removing the torrent (wanted data already stored).
	ReclaimableBytes(ctx context.Context, id domain.TorrentID) (int64, error)
	// Remove drops the torrent and, when deleteFiles is set, its data.
	Remove(ctx context.Context, id domain.TorrentID, deleteFiles bool) error
	// OnTorrentRemoved registers a callback fired whenever a torrent leaves
	// the host, regardless of who removed it. Callbacks are dispatched on
	// their own goroutine and must tolerate ids they never saw.
	OnTorrentRemoved(fn func(domain.TorrentID))
}

// TorrentAdder is the half of the host used by torrent management.
type TorrentAdder interface {
	Add(ctx context.Context, magnet string) (domain.TorrentRecord, error)
}

// TorrentRemover removes a torrent from the host and optionally its data.
type TorrentRemover interface {
	Remove(ctx context.Context, id domain.TorrentID, deleteFiles bool) error
}
