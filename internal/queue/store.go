package queue

import (
	"log/slog"

	"queuedremove/internal/domain"
)

// store owns the ordered priority groups and the derived torrent→rank index.
// It is not safe for concurrent use; Manager serializes access.
type store struct {
	groups domain.RemoveQueue
	ranks  map[domain.TorrentID]int
}

func newStore() *store {
	return &store{ranks: make(map[domain.TorrentID]int)}
}

// rankOf reports the rank of the group containing id. The second return value
// distinguishes rank 0 from "not queued".
func (s *store) rankOf(id domain.TorrentID) (int, bool) {
	rank, ok := s.ranks[id]
	return rank, ok
}

// normalize drops every torrent absent from the live set, then drops groups
// that became empty. Relative order of surviving groups and of surviving
// torrents within a group is preserved.
func (s *store) normalize(live map[domain.TorrentID]struct{}) {
	groups := s.groups[:0]
	for _, group := range s.groups {
		kept := group[:0]
		for _, id := range group {
			if _, ok := live[id]; ok {
				kept = append(kept, id)
			}
		}
		if len(kept) > 0 {
			groups = append(groups, kept)
		}
	}
	s.groups = groups
}

// dropEmptyGroups removes empty groups without consulting the live set. Used
// when the live set is unavailable so a failed host lookup cannot wipe the
// queue.
func (s *store) dropEmptyGroups() {
	groups := s.groups[:0]
	for _, group := range s.groups {
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}
	s.groups = groups
}

// reindex rebuilds the rank index from the groups. Must run after every
// structural change; the index is a read cache and is never mutated directly.
func (s *store) reindex() {
	ranks := make(map[domain.TorrentID]int, len(s.ranks))
	for rank, group := range s.groups {
		for _, id := range group {
			ranks[id] = rank
		}
	}
	s.ranks = ranks
}

// groupsFor resolves ids to the ranks of the groups holding them. Unknown ids
// are logged and skipped. Ranks are deduplicated in first-seen order.
func (s *store) groupsFor(ids []domain.TorrentID, logger *slog.Logger) []int {
	var out []int
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		rank, ok := s.rankOf(id)
		if !ok {
			logger.Warn("torrent is not in the queue", slog.String("torrentId", string(id)))
			continue
		}
		if _, dup := seen[rank]; dup {
			continue
		}
		seen[rank] = struct{}{}
		out = append(out, rank)
	}
	return out
}

func (s *store) snapshot() domain.RemoveQueue {
	return s.groups.Clone()
}
