package domain

import "time"

// TorrentRecord is the persisted description of a torrent managed by the
// host, enough to restore it after a restart.
type TorrentRecord struct {
	ID      TorrentID `json:"id"`
	Name    string    `json:"name"`
	Magnet  string    `json:"magnet"`
	AddedAt time.Time `json:"addedAt"`
}
