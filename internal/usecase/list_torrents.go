package usecase

import (
	"context"
	"sort"

	"queuedremove/internal/domain"
	"queuedremove/internal/domain/ports"
)

type ListTorrents struct {
	Store ports.TorrentStore
}

// Execute returns the stored torrent records ordered by add time, oldest
// first, with the id as tiebreaker so the order is stable.
func (uc ListTorrents) Execute(ctx context.Context) ([]domain.TorrentRecord, error) {
	records, err := uc.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].AddedAt.Equal(records[j].AddedAt) {
			return records[i].AddedAt.Before(records[j].AddedAt)
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}
