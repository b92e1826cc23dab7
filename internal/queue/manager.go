package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"queuedremove/internal/domain"
	"queuedremove/internal/domain/ports"
)

// Manager owns the removal queue: the priority groups, the derived rank
// index and the eviction thresholds. Every mutating operation runs under one
// mutex and ends with normalize → reindex → persist. A persistence failure is
// returned to the caller but the in-memory mutation is kept; the next
// successful save persists the accumulated state.
type Manager struct {
	mu     sync.Mutex
	st     *store
	cfg    domain.QueueConfig
	host   ports.TorrentHost
	repo   ports.QueueRepository
	logger *slog.Logger

	// onChange receives a snapshot after every successful mutation and sweep
	// pass, outside the lock. Set once during wiring.
	onChange func(domain.QueueSnapshot)
}

func NewManager(host ports.TorrentHost, repo ports.QueueRepository, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		st:     newStore(),
		cfg:    domain.DefaultQueueConfig(),
		host:   host,
		repo:   repo,
		logger: logger,
	}
}

// SetDefaults overrides the built-in thresholds used when no persisted config
// exists. Must be called before Load.
func (m *Manager) SetDefaults(cfg domain.QueueConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
}

// OnChange registers the snapshot hook. Must be called before the manager is
// shared across goroutines.
func (m *Manager) OnChange(fn func(domain.QueueSnapshot)) {
	m.onChange = fn
}

// Load restores the persisted state. An absent record leaves the defaults in
// place. The first normalize pass prunes torrents that vanished from the host
// while the service was down; the pruned state is written back.
func (m *Manager) Load(ctx context.Context) error {
	state, ok, err := m.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load queue state: %w", err)
	}

	m.mu.Lock()
	if ok {
		m.cfg = state.Config
		m.st.groups = state.Queue.Clone()
	}
	err = m.applyLocked(ctx)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
	return err
}

func (m *Manager) Config() domain.QueueConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// SetConfig replaces the thresholds and persists the full state.
func (m *Manager) SetConfig(ctx context.Context, cfg domain.QueueConfig) error {
	m.mu.Lock()
	m.cfg = cfg
	err := m.persistLocked(ctx)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
	return err
}

// Snapshot returns a read-only copy of the queue, the rank index and the
// thresholds.
func (m *Manager) Snapshot() domain.QueueSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Add enqueues torrents not already tracked. With ascend each new torrent
// gets its own group appended after the current tail, so later ids rank
// strictly lower than earlier ones. Without ascend all new torrents form one
// appended group and are evicted together. Already-tracked ids are skipped
// with a warning naming their rank.
func (m *Manager) Add(ctx context.Context, ids []domain.TorrentID, ascend bool) error {
	m.mu.Lock()
	var grouped []domain.TorrentID
	seen := make(map[domain.TorrentID]struct{}, len(ids))
	for _, id := range ids {
		if rank, ok := m.st.rankOf(id); ok {
			m.logger.Warn("torrent already in the queue",
				slog.String("torrentId", string(id)),
				slog.Int("rank", rank),
			)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if ascend {
			m.st.groups = append(m.st.groups, []domain.TorrentID{id})
		} else {
			grouped = append(grouped, id)
		}
	}
	if len(grouped) > 0 {
		m.st.groups = append(m.st.groups, grouped)
	}
	return m.finish(ctx)
}

// Remove dequeues the given torrents. Untracked ids are skipped with a
// warning, so the operation is idempotent.
func (m *Manager) Remove(ctx context.Context, ids []domain.TorrentID) error {
	m.mu.Lock()
	for _, id := range ids {
		rank, ok := m.st.rankOf(id)
		if !ok {
			m.logger.Warn("torrent is not in the queue", slog.String("torrentId", string(id)))
			continue
		}
		m.st.groups[rank] = deleteID(m.st.groups[rank], id)
		// Empty groups are cleaned up by the normalize pass in finish; the
		// index must not be consulted again before reindex.
		m.st.reindex()
	}
	return m.finish(ctx)
}

// QueueTop moves the whole group of every given torrent to the front,
// preserving the relative order of both moved and unmoved groups.
func (m *Manager) QueueTop(ctx context.Context, ids []domain.TorrentID) error {
	m.mu.Lock()
	selected := rankSet(m.st.groupsFor(ids, m.logger))
	m.st.groups = partitionGroups(m.st.groups, selected, true)
	return m.finish(ctx)
}

// QueueBottom moves the whole group of every given torrent to the tail,
// preserving the relative order of both moved and unmoved groups.
func (m *Manager) QueueBottom(ctx context.Context, ids []domain.TorrentID) error {
	m.mu.Lock()
	selected := rankSet(m.st.groupsFor(ids, m.logger))
	m.st.groups = partitionGroups(m.st.groups, selected, false)
	return m.finish(ctx)
}

// QueueForward swaps each selected group with its predecessor, lowest rank
// first. The head group is a no-op.
func (m *Manager) QueueForward(ctx context.Context, ids []domain.TorrentID) error {
	m.mu.Lock()
	ranks := m.st.groupsFor(ids, m.logger)
	sortInts(ranks, false)
	for _, rank := range ranks {
		if rank == 0 {
			continue
		}
		m.st.groups[rank-1], m.st.groups[rank] = m.st.groups[rank], m.st.groups[rank-1]
	}
	return m.finish(ctx)
}

// QueueBack swaps each selected group with its successor, highest rank first.
// The tail group is a no-op.
func (m *Manager) QueueBack(ctx context.Context, ids []domain.TorrentID) error {
	m.mu.Lock()
	ranks := m.st.groupsFor(ids, m.logger)
	sortInts(ranks, true)
	for _, rank := range ranks {
		if rank == len(m.st.groups)-1 {
			continue
		}
		m.st.groups[rank], m.st.groups[rank+1] = m.st.groups[rank+1], m.st.groups[rank]
	}
	return m.finish(ctx)
}

// QueueSet pulls every given torrent out of its current group and inserts the
// whole set as one new group at position. Position is clamped: negative means
// front, past the end means tail. Ids unknown to the queue are inserted
// anyway; ids unknown to the host are pruned by normalization.
func (m *Manager) QueueSet(ctx context.Context, ids []domain.TorrentID, position int) error {
	m.mu.Lock()
	group := make([]domain.TorrentID, 0, len(ids))
	seen := make(map[domain.TorrentID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		group = append(group, id)
		if rank, ok := m.st.rankOf(id); ok {
			m.st.groups[rank] = deleteID(m.st.groups[rank], id)
			m.st.reindex()
		}
	}

	switch {
	case position < 0:
		m.st.groups = append(domain.RemoveQueue{group}, m.st.groups...)
	case position >= len(m.st.groups):
		m.st.groups = append(m.st.groups, group)
	default:
		rest := append(domain.RemoveQueue{group}, m.st.groups[position:]...)
		m.st.groups = append(m.st.groups[:position:position], rest...)
	}
	return m.finish(ctx)
}

// HandleTorrentRemoved is the host event hook: when a torrent leaves the host
// for any reason, it is dequeued. Idempotent for untracked ids.
func (m *Manager) HandleTorrentRemoved(id domain.TorrentID) {
	m.logger.Debug("torrent removed by host", slog.String("torrentId", string(id)))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.Remove(ctx, []domain.TorrentID{id}); err != nil {
		m.logger.Warn("dequeue after host removal failed",
			slog.String("torrentId", string(id)),
			slog.String("error", err.Error()),
		)
	}
}

// Sweep runs one eviction pass. The manager mutex is held for the whole pass,
// including host size and removal calls: the host is in-process and those
// calls are fast, and holding the lock keeps the queue invariants trivially
// preserved against concurrent mutations.
func (m *Manager) Sweep(ctx context.Context) (domain.SweepResult, error) {
	free, err := m.host.FreeSpaceBytes(ctx)
	if err != nil {
		return domain.SweepResult{}, fmt.Errorf("free space query: %w", err)
	}

	result := domain.SweepResult{FreeBytes: free}

	m.mu.Lock()
	if free > m.cfg.RemoveThresholdBytes {
		m.mu.Unlock()
		m.logger.Debug("free space above remove threshold",
			slog.Int64("freeBytes", free),
			slog.Int64("thresholdBytes", m.cfg.RemoveThresholdBytes),
		)
		return result, nil
	}
	result.Triggered = true

	if len(m.st.groups) == 0 {
		m.mu.Unlock()
		m.logger.Warn("queue empty, nothing to evict", slog.Int64("freeBytes", free))
		return result, nil
	}

	m.logger.Info("free space below remove threshold, evicting queued torrents",
		slog.Int64("freeBytes", free),
		slog.Int64("thresholdBytes", m.cfg.RemoveThresholdBytes),
	)

	// Freed disk space is not observable right away (filesystem recycle
	// latency), so the loop accumulates each torrent's reclaimable size as an
	// upper-bound estimate instead of re-querying free space per removal.
	var hostErr error
	for result.EstimatedFreedBytes < m.cfg.StopThresholdBytes && len(m.st.groups) > 0 {
		group := m.st.groups[0]
		for _, id := range group {
			size, err := m.host.ReclaimableBytes(ctx, id)
			if err != nil {
				m.logger.Warn("reclaimable size query failed",
					slog.String("torrentId", string(id)),
					slog.String("error", err.Error()),
				)
			} else {
				result.EstimatedFreedBytes += size
			}
			if err := m.host.Remove(ctx, id, true); err != nil {
				m.logger.Warn("torrent removal failed",
					slog.String("torrentId", string(id)),
					slog.String("error", err.Error()),
				)
				hostErr = err
				continue
			}
			result.TorrentsEvicted++
			m.logger.Info("evicted torrent",
				slog.String("torrentId", string(id)),
				slog.Int64("estimatedBytes", size),
			)
		}
		// The group is dropped after all its removals were issued, even when
		// one failed, so already-issued removals are not re-issued next tick.
		m.st.groups = m.st.groups[1:]
		result.GroupsEvicted++
		if hostErr != nil {
			break
		}
	}

	persistErr := m.applyLocked(ctx)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
	if hostErr != nil {
		return result, fmt.Errorf("eviction pass aborted: %w", hostErr)
	}
	return result, persistErr
}

// finish completes a mutation: normalize, reindex, persist, release the lock
// and fire the change hook. Callers must hold m.mu.
func (m *Manager) finish(ctx context.Context) error {
	err := m.applyLocked(ctx)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
	return err
}

// applyLocked normalizes against the live torrent set, rebuilds the index and
// persists. If the host enumeration fails, pruning is skipped for this pass
// (a transient host error must not wipe the queue) but empty groups are still
// dropped. Callers must hold m.mu.
func (m *Manager) applyLocked(ctx context.Context) error {
	live, err := m.liveSet(ctx)
	if err != nil {
		m.logger.Warn("live torrent set unavailable, skipping prune", slog.String("error", err.Error()))
		m.st.dropEmptyGroups()
	} else {
		m.st.normalize(live)
	}
	m.st.reindex()
	return m.persistLocked(ctx)
}

func (m *Manager) persistLocked(ctx context.Context) error {
	state := domain.QueueState{Config: m.cfg, Queue: m.st.snapshot()}
	if err := m.repo.Save(ctx, state); err != nil {
		m.logger.Error("queue state save failed", slog.String("error", err.Error()))
		return fmt.Errorf("save queue state: %w", err)
	}
	return nil
}

func (m *Manager) liveSet(ctx context.Context) (map[domain.TorrentID]struct{}, error) {
	ids, err := m.host.ListTorrents(ctx)
	if err != nil {
		return nil, err
	}
	live := make(map[domain.TorrentID]struct{}, len(ids))
	for _, id := range ids {
		live[id] = struct{}{}
	}
	return live, nil
}

func (m *Manager) snapshotLocked() domain.QueueSnapshot {
	ranks := make(map[domain.TorrentID]int, len(m.st.ranks))
	for id, rank := range m.st.ranks {
		ranks[id] = rank
	}
	return domain.QueueSnapshot{
		Groups: m.st.snapshot(),
		Ranks:  ranks,
		Config: m.cfg,
	}
}

func (m *Manager) notify(snap domain.QueueSnapshot) {
	if m.onChange != nil {
		m.onChange(snap)
	}
}

func deleteID(group []domain.TorrentID, id domain.TorrentID) []domain.TorrentID {
	out := group[:0]
	for _, other := range group {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}

func rankSet(ranks []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ranks))
	for _, rank := range ranks {
		set[rank] = struct{}{}
	}
	return set
}

// partitionGroups moves the selected groups to the front (or tail), keeping
// the original relative order within both partitions.
func partitionGroups(groups domain.RemoveQueue, selected map[int]struct{}, toFront bool) domain.RemoveQueue {
	if len(selected) == 0 {
		return groups
	}
	moved := make(domain.RemoveQueue, 0, len(selected))
	rest := make(domain.RemoveQueue, 0, len(groups)-len(selected))
	for rank, group := range groups {
		if _, ok := selected[rank]; ok {
			moved = append(moved, group)
		} else {
			rest = append(rest, group)
		}
	}
	if toFront {
		return append(moved, rest...)
	}
	return append(rest, moved...)
}

func sortInts(values []int, descending bool) {
	sort.Slice(values, func(i, j int) bool {
		if descending {
			return values[i] > values[j]
		}
		return values[i] < values[j]
	})
}
