package apihttp

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"queuedremove/internal/domain"
)

// dialWS upgrades an httptest.Server to a WebSocket connection.
func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	resp.Body.Close()
	return conn
}

func readWSMessage(t *testing.T, conn *websocket.Conn, timeout time.Duration) wsMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read ws message: %v", err)
	}
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal ws message: %v (raw: %s)", err, data)
	}
	return msg
}

func TestBroadcastQueueReachesClient(t *testing.T) {
	srv := newTestServer(&fakeQueue{})
	defer srv.Close()

	ts := httptest.NewServer(srv)
	defer ts.Close()

	conn := dialWS(t, ts)
	defer conn.Close()

	// Registration is asynchronous; give the hub a moment to pick it up.
	time.Sleep(50 * time.Millisecond)

	snapshot := domain.QueueSnapshot{
		Groups: domain.RemoveQueue{{"a"}},
		Ranks:  map[domain.TorrentID]int{"a": 0},
	}
	srv.BroadcastQueue(snapshot)

	msg := readWSMessage(t, conn, 2*time.Second)
	if msg.Type != "queue" {
		t.Fatalf("type = %s, want queue", msg.Type)
	}

	payload, err := json.Marshal(msg.Data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	var got domain.QueueSnapshot
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(got.Groups) != 1 || got.Groups[0][0] != "a" {
		t.Fatalf("groups = %v", got.Groups)
	}
}

func TestWSClientDisconnectUnregisters(t *testing.T) {
	srv := newTestServer(&fakeQueue{})
	defer srv.Close()

	ts := httptest.NewServer(srv)
	defer ts.Close()

	conn := dialWS(t, ts)
	time.Sleep(50 * time.Millisecond)
	conn.Close()
	time.Sleep(50 * time.Millisecond)

	// Broadcasting after the client left must not panic or block.
	srv.BroadcastQueue(domain.QueueSnapshot{})
}
