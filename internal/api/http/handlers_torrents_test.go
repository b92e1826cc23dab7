package apihttp

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"queuedremove/internal/domain"
)

type fakeAddTorrent struct {
	record domain.TorrentRecord
	err    error
	magnet string
}

func (f *fakeAddTorrent) Execute(ctx context.Context, magnet string) (domain.TorrentRecord, error) {
	f.magnet = magnet
	return f.record, f.err
}

type fakeListTorrents struct {
	records []domain.TorrentRecord
	err     error
}

func (f *fakeListTorrents) Execute(ctx context.Context) ([]domain.TorrentRecord, error) {
	return f.records, f.err
}

type fakeDeleteTorrent struct {
	err         error
	id          domain.TorrentID
	deleteFiles bool
	called      bool
}

func (f *fakeDeleteTorrent) Execute(ctx context.Context, id domain.TorrentID, deleteFiles bool) error {
	f.called = true
	f.id = id
	f.deleteFiles = deleteFiles
	return f.err
}

func TestAddTorrent(t *testing.T) {
	add := &fakeAddTorrent{record: domain.TorrentRecord{ID: "abc", Name: "movie", AddedAt: time.Now()}}
	srv := newTestServer(&fakeQueue{}, WithAddTorrent(add))
	defer srv.Close()

	rec := doJSON(srv, http.MethodPost, "/torrents", `{"magnet":"magnet:?xt=urn:btih:abc"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if add.magnet != "magnet:?xt=urn:btih:abc" {
		t.Fatalf("magnet = %q", add.magnet)
	}

	var got domain.TorrentRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "abc" {
		t.Fatalf("id = %s", got.ID)
	}
}

func TestAddTorrentInvalidSource(t *testing.T) {
	add := &fakeAddTorrent{err: domain.ErrInvalidSource}
	srv := newTestServer(&fakeQueue{}, WithAddTorrent(add))
	defer srv.Close()

	rec := doJSON(srv, http.MethodPost, "/torrents", `{"magnet":"not-a-magnet"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListTorrentsReturnsEmptyArray(t *testing.T) {
	srv := newTestServer(&fakeQueue{}, WithListTorrents(&fakeListTorrents{}))
	defer srv.Close()

	rec := doJSON(srv, http.MethodGet, "/torrents", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("body = %q, want empty array", body)
	}
}

func TestDeleteTorrent(t *testing.T) {
	del := &fakeDeleteTorrent{}
	srv := newTestServer(&fakeQueue{}, WithDeleteTorrent(del))
	defer srv.Close()

	rec := doJSON(srv, http.MethodDelete, "/torrents/abc", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if del.id != "abc" || !del.deleteFiles {
		t.Fatalf("delete call = %+v", del)
	}
}

func TestDeleteTorrentKeepFiles(t *testing.T) {
	del := &fakeDeleteTorrent{}
	srv := newTestServer(&fakeQueue{}, WithDeleteTorrent(del))
	defer srv.Close()

	rec := doJSON(srv, http.MethodDelete, "/torrents/abc?deleteFiles=false", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if del.deleteFiles {
		t.Fatal("deleteFiles = true, want false")
	}
}

func TestDeleteTorrentNotFound(t *testing.T) {
	del := &fakeDeleteTorrent{err: domain.ErrNotFound}
	srv := newTestServer(&fakeQueue{}, WithDeleteTorrent(del))
	defer srv.Close()

	rec := doJSON(srv, http.MethodDelete, "/torrents/ghost", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteTorrentMissingID(t *testing.T) {
	del := &fakeDeleteTorrent{}
	srv := newTestServer(&fakeQueue{}, WithDeleteTorrent(del))
	defer srv.Close()

	rec := doJSON(srv, http.MethodDelete, "/torrents/", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if del.called {
		t.Fatal("delete use case called without an id")
	}
}
