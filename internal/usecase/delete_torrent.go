package usecase

import (
	"context"
	"errors"

	"queuedremove/internal/domain"
	"queuedremove/internal/domain/ports"
)

type DeleteTorrent struct {
	Host  ports.TorrentRemover
	Store ports.TorrentStore
}

// Execute removes the torrent from the host and forgets its record. A torrent
// the host no longer tracks is still purged from the store, so deletion is
// idempotent from the caller's point of view.
func (uc DeleteTorrent) Execute(ctx context.Context, id domain.TorrentID, deleteFiles bool) error {
	hostErr := uc.Host.Remove(ctx, id, deleteFiles)
	if hostErr != nil && !errors.Is(hostErr, domain.ErrNotFound) {
		return hostErr
	}

	storeErr := uc.Store.Delete(ctx, id)
	if storeErr != nil && !errors.Is(storeErr, domain.ErrNotFound) {
		return storeErr
	}

	if errors.Is(hostErr, domain.ErrNotFound) && errors.Is(storeErr, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	return nil
}
