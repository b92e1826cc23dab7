package usecase

import (
	"context"
	"errors"

	"queuedremove/internal/domain"
	"queuedremove/internal/domain/ports"
)

type AddTorrent struct {
	Host  ports.TorrentAdder
	Store ports.TorrentStore
}

// Execute registers a magnet with the host and records it in the store.
// Re-adding a torrent the store already knows is not an error; the host
// already deduplicates by info hash.
func (uc AddTorrent) Execute(ctx context.Context, magnet string) (domain.TorrentRecord, error) {
	record, err := uc.Host.Add(ctx, magnet)
	if err != nil {
		return domain.TorrentRecord{}, err
	}

	if err := uc.Store.Create(ctx, record); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
		return domain.TorrentRecord{}, err
	}
	return record, nil
}
