package mongo

import (
	"reflect"
	"testing"

	"queuedremove/internal/domain"
)

func TestQueueStateDocRoundTrip(t *testing.T) {
	state := domain.QueueState{
		Config: domain.QueueConfig{
			RemoveThresholdBytes: 100 << 20,
			StopThresholdBytes:   1 << 30,
		},
		Queue: domain.RemoveQueue{{"a"}, {"b", "c"}},
	}

	got := fromDoc(toDoc(state))

	if got.Config != state.Config {
		t.Fatalf("config = %+v, want %+v", got.Config, state.Config)
	}
	if !reflect.DeepEqual(got.Queue, state.Queue) {
		t.Fatalf("queue = %v, want %v", got.Queue, state.Queue)
	}
}

func TestQueueStateDocEmptyQueue(t *testing.T) {
	state := domain.QueueState{Config: domain.DefaultQueueConfig()}

	doc := toDoc(state)
	if doc.ID != queueStateID {
		t.Fatalf("id = %s", doc.ID)
	}
	if len(doc.Queue) != 0 {
		t.Fatalf("queue = %v, want empty", doc.Queue)
	}

	got := fromDoc(doc)
	if len(got.Queue) != 0 {
		t.Fatalf("round-tripped queue = %v, want empty", got.Queue)
	}
}
