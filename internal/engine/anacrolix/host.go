package anacrolix

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/anacrolix/torrent"

	"queuedremove/internal/domain"
)

// infoWaitTimeout caps how long Add waits for torrent metadata before
// returning a record with a provisional name. Download setup continues in the
// background once metadata arrives.
const infoWaitTimeout = 5 * time.Second

type Config struct {
	DataDir string
}

// Host wraps an anacrolix torrent client as the capability surface the queue
// core consumes: live torrent set, free space, reclaimable sizes, removal and
// removed-event callbacks.
type Host struct {
	client  *torrent.Client
	dataDir string
	logger  *slog.Logger

	mu       sync.RWMutex
	torrents map[domain.TorrentID]*torrent.Torrent

	fnMu       sync.Mutex
	removedFns []func(domain.TorrentID)
}

func New(cfg Config, logger *slog.Logger) (*Host, error) {
	clientConfig := torrent.NewDefaultClientConfig()
	if cfg.DataDir != "" {
		clientConfig.DataDir = cfg.DataDir
	}

	client, err := torrent.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}
	return NewWithClient(client, cfg.DataDir, logger), nil
}

// NewWithClient wires an existing client; used by tests.
func NewWithClient(client *torrent.Client, dataDir string, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		client:   client,
		dataDir:  filepath.Clean(dataDir),
		logger:   logger,
		torrents: make(map[domain.TorrentID]*torrent.Torrent),
	}
}

// Add registers a magnet link with the client and starts downloading once
// metadata is available. Adding an already-tracked torrent returns its
// existing record.
func (h *Host) Add(ctx context.Context, magnet string) (domain.TorrentRecord, error) {
	magnet = strings.TrimSpace(magnet)
	if !strings.HasPrefix(magnet, "magnet:") {
		return domain.TorrentRecord{}, domain.ErrInvalidSource
	}

	t, err := h.client.AddMagnet(magnet)
	if err != nil {
		return domain.TorrentRecord{}, err
	}
	id := domain.TorrentID(t.InfoHash().HexString())

	h.mu.Lock()
	_, existed := h.torrents[id]
	h.torrents[id] = t
	h.mu.Unlock()

	record := domain.TorrentRecord{
		ID:      id,
		Magnet:  magnet,
		AddedAt: time.Now().UTC(),
	}

	waitCtx, cancel := context.WithTimeout(ctx, infoWaitTimeout)
	defer cancel()
	select {
	case <-t.GotInfo():
		record.Name = t.Name()
		if !existed {
			t.DownloadAll()
		}
	case <-waitCtx.Done():
		record.Name = t.Name() // display name from the magnet, if any
		if !existed {
			go func() {
				<-t.GotInfo()
				t.DownloadAll()
			}()
		}
	}
	return record, nil
}

func (h *Host) ListTorrents(ctx context.Context) ([]domain.TorrentID, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]domain.TorrentID, 0, len(h.torrents))
	for id := range h.torrents {
		ids = append(ids, id)
	}
	return ids, nil
}

func (h *Host) FreeSpaceBytes(ctx context.Context) (int64, error) {
	return diskFreeBytes(h.dataDir)
}

// ReclaimableBytes reports the bytes of wanted data already stored for the
// torrent. This is the upper bound of what its removal frees: pieces shared
// with other torrents on disk are counted in full.
func (h *Host) ReclaimableBytes(ctx context.Context, id domain.TorrentID) (int64, error) {
	h.mu.RLock()
	t, ok := h.torrents[id]
	h.mu.RUnlock()
	if !ok {
		return 0, domain.ErrNotFound
	}
	return t.BytesCompleted(), nil
}

// Remove drops the torrent from the client and, when deleteFiles is set,
// deletes its data from the download directory. Removed-event callbacks are
// dispatched on their own goroutine so a callback may safely call back into
// whatever triggered the removal.
func (h *Host) Remove(ctx context.Context, id domain.TorrentID, deleteFiles bool) error {
	h.mu.Lock()
	t, ok := h.torrents[id]
	if ok {
		delete(h.torrents, id)
	}
	h.mu.Unlock()
	if !ok {
		return domain.ErrNotFound
	}

	var paths []string
	if deleteFiles && torrentInfoReady(t) {
		for _, f := range t.Files() {
			paths = append(paths, f.Path())
		}
	}
	t.Drop()

	for _, path := range paths {
		if err := removeDataFile(h.dataDir, path); err != nil {
			h.logger.Warn("data file removal failed",
				slog.String("torrentId", string(id)),
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}

	h.notifyRemoved(id)
	return nil
}

// OnTorrentRemoved registers a callback fired after every successful Remove.
func (h *Host) OnTorrentRemoved(fn func(domain.TorrentID)) {
	h.fnMu.Lock()
	defer h.fnMu.Unlock()
	h.removedFns = append(h.removedFns, fn)
}

func (h *Host) notifyRemoved(id domain.TorrentID) {
	h.fnMu.Lock()
	fns := append(([]func(domain.TorrentID))(nil), h.removedFns...)
	h.fnMu.Unlock()
	for _, fn := range fns {
		go fn(id)
	}
}

func (h *Host) Close() error {
	if h.client == nil {
		return nil
	}
	errList := h.client.Close()
	if len(errList) > 0 {
		return errList[0]
	}
	return nil
}

func torrentInfoReady(t *torrent.Torrent) bool {
	if t == nil {
		return false
	}
	select {
	case <-t.GotInfo():
		return true
	default:
		return false
	}
}

// removeDataFile deletes one torrent file, refusing paths that escape the
// download directory.
func removeDataFile(baseDir, path string) error {
	if strings.TrimSpace(baseDir) == "" {
		return errors.New("data dir not configured")
	}
	if strings.TrimSpace(path) == "" || filepath.IsAbs(path) {
		return errors.New("invalid file path")
	}

	baseAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return err
	}
	baseAbs = filepath.Clean(baseAbs)

	fullPath := filepath.Clean(filepath.Join(baseAbs, filepath.FromSlash(path)))
	if !strings.HasPrefix(fullPath, baseAbs+string(os.PathSeparator)) {
		return errors.New("invalid file path")
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
