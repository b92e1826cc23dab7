package domain

// TorrentID identifies a torrent by its info-hash hex string.
type TorrentID string

// RemoveQueue is the ordered sequence of priority groups that defines removal
// order. Group 0 is evicted first. All torrents inside one group share a rank
// and are evicted together; the order inside a group carries no meaning.
type RemoveQueue [][]TorrentID

// Clone returns a deep copy so callers can hand snapshots out without
// exposing internal slices to mutation.
func (q RemoveQueue) Clone() RemoveQueue {
	if q == nil {
		return nil
	}
	out := make(RemoveQueue, len(q))
	for i, group := range q {
		out[i] = append([]TorrentID(nil), group...)
	}
	return out
}

// Torrents returns the total number of queued torrents across all groups.
func (q RemoveQueue) Torrents() int {
	n := 0
	for _, group := range q {
		n += len(group)
	}
	return n
}

const (
	DefaultRemoveThresholdBytes int64 = 100 << 20 // 100 MiB
	DefaultStopThresholdBytes   int64 = 1 << 30   // 1 GiB
)

// QueueConfig holds the eviction thresholds. RemoveThresholdBytes is the
// free-space floor below which a sweep pass starts; StopThresholdBytes is the
// cumulative estimated-bytes-freed target at which a pass stops.
type QueueConfig struct {
	RemoveThresholdBytes int64 `json:"removeThresholdBytes"`
	StopThresholdBytes   int64 `json:"stopThresholdBytes"`
}

func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		RemoveThresholdBytes: DefaultRemoveThresholdBytes,
		StopThresholdBytes:   DefaultStopThresholdBytes,
	}
}

// QueueState is the persisted record: thresholds plus the queue itself.
type QueueState struct {
	Config QueueConfig
	Queue  RemoveQueue
}

// QueueSnapshot is a read-only view of the queue handed to the API layer.
// Ranks contains an entry for every queued torrent and nothing else, so rank 0
// is distinguishable from "not queued".
type QueueSnapshot struct {
	Groups RemoveQueue       `json:"groups"`
	Ranks  map[TorrentID]int `json:"ranks"`
	Config QueueConfig       `json:"config"`
}

// SweepResult summarizes one eviction pass.
type SweepResult struct {
	Triggered           bool  // free space was at or below the remove threshold
	FreeBytes           int64 // free space observed at the start of the pass
	GroupsEvicted       int
	TorrentsEvicted     int
	EstimatedFreedBytes int64 // upper-bound sum of reclaimable sizes
}
