package apihttp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"queuedremove/internal/domain"
)

// fakeQueue implements QueueController, recording the last call.
type fakeQueue struct {
	snapshot domain.QueueSnapshot
	cfg      domain.QueueConfig
	err      error

	lastOp       string
	lastIDs      []domain.TorrentID
	lastAscend   bool
	lastPosition int
	lastCfg      domain.QueueConfig
}

func (f *fakeQueue) Snapshot() domain.QueueSnapshot { return f.snapshot }
func (f *fakeQueue) Config() domain.QueueConfig     { return f.cfg }

func (f *fakeQueue) SetConfig(ctx context.Context, cfg domain.QueueConfig) error {
	f.lastOp = "set_config"
	f.lastCfg = cfg
	return f.err
}

func (f *fakeQueue) Add(ctx context.Context, ids []domain.TorrentID, ascend bool) error {
	f.lastOp = "add"
	f.lastIDs = ids
	f.lastAscend = ascend
	return f.err
}

func (f *fakeQueue) Remove(ctx context.Context, ids []domain.TorrentID) error {
	f.lastOp = "remove"
	f.lastIDs = ids
	return f.err
}

func (f *fakeQueue) QueueTop(ctx context.Context, ids []domain.TorrentID) error {
	f.lastOp = "top"
	f.lastIDs = ids
	return f.err
}

func (f *fakeQueue) QueueBottom(ctx context.Context, ids []domain.TorrentID) error {
	f.lastOp = "bottom"
	f.lastIDs = ids
	return f.err
}

func (f *fakeQueue) QueueForward(ctx context.Context, ids []domain.TorrentID) error {
	f.lastOp = "forward"
	f.lastIDs = ids
	return f.err
}

func (f *fakeQueue) QueueBack(ctx context.Context, ids []domain.TorrentID) error {
	f.lastOp = "back"
	f.lastIDs = ids
	return f.err
}

func (f *fakeQueue) QueueSet(ctx context.Context, ids []domain.TorrentID, position int) error {
	f.lastOp = "set"
	f.lastIDs = ids
	f.lastPosition = position
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(queue *fakeQueue, opts ...ServerOption) *Server {
	opts = append([]ServerOption{WithLogger(testLogger())}, opts...)
	srv := NewServer(queue, opts...)
	return srv
}

func doJSON(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestGetQueueReturnsSnapshot(t *testing.T) {
	queue := &fakeQueue{
		snapshot: domain.QueueSnapshot{
			Groups: domain.RemoveQueue{{"a", "b"}, {"c"}},
			Ranks:  map[domain.TorrentID]int{"a": 0, "b": 0, "c": 1},
			Config: domain.QueueConfig{RemoveThresholdBytes: 1, StopThresholdBytes: 2},
		},
	}
	srv := newTestServer(queue)
	defer srv.Close()

	rec := doJSON(srv, http.MethodGet, "/queue", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var got domain.QueueSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got.Groups, queue.snapshot.Groups) {
		t.Fatalf("groups = %v", got.Groups)
	}
	if got.Ranks["c"] != 1 {
		t.Fatalf("ranks = %v", got.Ranks)
	}
}

func TestQueueAddPassesIdsAndAscend(t *testing.T) {
	queue := &fakeQueue{}
	srv := newTestServer(queue)
	defer srv.Close()

	rec := doJSON(srv, http.MethodPost, "/queue/add", `{"torrentIds":["a","b"],"ascend":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if queue.lastOp != "add" || !queue.lastAscend {
		t.Fatalf("op = %s, ascend = %v", queue.lastOp, queue.lastAscend)
	}
	if want := []domain.TorrentID{"a", "b"}; !reflect.DeepEqual(queue.lastIDs, want) {
		t.Fatalf("ids = %v, want %v", queue.lastIDs, want)
	}
}

func TestQueueChangeRejectsEmptyIds(t *testing.T) {
	srv := newTestServer(&fakeQueue{})
	defer srv.Close()

	for _, path := range []string{"/queue/add", "/queue/remove", "/queue/top", "/queue/bottom", "/queue/forward", "/queue/back", "/queue/set"} {
		rec := doJSON(srv, http.MethodPost, path, `{"torrentIds":[]}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", path, rec.Code)
		}
	}
}

func TestQueueChangeRejectsInvalidJSON(t *testing.T) {
	srv := newTestServer(&fakeQueue{})
	defer srv.Close()

	rec := doJSON(srv, http.MethodPost, "/queue/remove", `{"torrentIds":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestQueueChangeRejectsGet(t *testing.T) {
	srv := newTestServer(&fakeQueue{})
	defer srv.Close()

	rec := doJSON(srv, http.MethodGet, "/queue/top", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestQueueSetPassesPosition(t *testing.T) {
	queue := &fakeQueue{}
	srv := newTestServer(queue)
	defer srv.Close()

	rec := doJSON(srv, http.MethodPost, "/queue/set", `{"torrentIds":["a"],"position":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if queue.lastOp != "set" || queue.lastPosition != 3 {
		t.Fatalf("op = %s, position = %d", queue.lastOp, queue.lastPosition)
	}
}

func TestQueueSetRejectsNegativePosition(t *testing.T) {
	srv := newTestServer(&fakeQueue{})
	defer srv.Close()

	rec := doJSON(srv, http.MethodPost, "/queue/set", `{"torrentIds":["a"],"position":-1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestQueueMoveEndpointsDispatch(t *testing.T) {
	cases := map[string]string{
		"/queue/remove":  "remove",
		"/queue/top":     "top",
		"/queue/bottom":  "bottom",
		"/queue/forward": "forward",
		"/queue/back":    "back",
	}
	for path, wantOp := range cases {
		queue := &fakeQueue{}
		srv := newTestServer(queue)
		rec := doJSON(srv, http.MethodPost, path, `{"torrentIds":["a"]}`)
		srv.Close()
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", path, rec.Code)
		}
		if queue.lastOp != wantOp {
			t.Fatalf("%s: op = %s, want %s", path, queue.lastOp, wantOp)
		}
	}
}
