package middleware

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/anton-lunev/zustand/inspector"
	"github.com/anton-lunev/zustand/store"
)

type fakeInspector struct {
	mu    sync.Mutex
	sent  []inspector.Message
	inbox chan inspector.Message
}

func newFakeInspector() *fakeInspector {
	return &fakeInspector{inbox: make(chan inspector.Message, 4)}
}

func (f *fakeInspector) Send(msg inspector.Message) error {
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.mu.Unlock()
	return nil
}

func (f *fakeInspector) Receive() <-chan inspector.Message { return f.inbox }

func (f *fakeInspector) Close() error {
	close(f.inbox)
	return nil
}

func (f *fakeInspector) messages() []inspector.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]inspector.Message, len(f.sent))
	copy(out, f.sent)
	return out
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out: %s", msg)
}

func TestDevtools_ReportsMutations(t *testing.T) {
	fake := newFakeInspector()
	defer fake.Close()
	base := counterCreator(counterDoc{Count: 0})

	s := store.New(store.Compose(base, Devtools[counterDoc](fake)))
	s.SetState(map[string]any{"Count": 1}, false)

	msgs := fake.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected one reported mutation, got %d", len(msgs))
	}
	if msgs[0].Type != inspector.TypeAction || msgs[0].Action != "setState" {
		t.Fatalf("unexpected message %+v", msgs[0])
	}
	var snapshot counterDoc
	if err := json.Unmarshal(msgs[0].State, &snapshot); err != nil {
		t.Fatalf("snapshot decode failed: %v", err)
	}
	if snapshot.Count != 1 {
		t.Fatalf("expected snapshot count 1, got %d", snapshot.Count)
	}
}

func TestDevtools_LabelsDispatchedActions(t *testing.T) {
	fake := newFakeInspector()
	defer fake.Close()

	type counter struct{ Count int }
	reducer := func(state counter, action store.Action) (counter, error) {
		state.Count++
		return state, nil
	}

	s := store.New(store.Compose(Redux(reducer, counter{}), Devtools[counter](fake)))
	if err := s.Dispatch(store.Action{Type: "INC"}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	s.SetState(map[string]any{"Count": 10}, false)

	msgs := fake.messages()
	if len(msgs) != 2 {
		t.Fatalf("expected two reported mutations, got %d", len(msgs))
	}
	if msgs[0].Action != "INC" {
		t.Fatalf("expected dispatched label INC, got %q", msgs[0].Action)
	}
	if msgs[1].Action != "setState" {
		t.Fatalf("expected default label after dispatch, got %q", msgs[1].Action)
	}
}

func TestDevtools_TimeTravelIsNotReReported(t *testing.T) {
	fake := newFakeInspector()
	base := counterCreator(counterDoc{Count: 0})

	s := store.New(store.Compose(base, Devtools[counterDoc](fake)))
	s.SetState(map[string]any{"Count": 1}, false)
	reported := len(fake.messages())

	historical, _ := json.Marshal(counterDoc{Count: 9, Label: "then"})
	fake.inbox <- inspector.Message{Type: inspector.TypeState, State: historical}

	eventually(t, func() bool { return s.GetState().Count == 9 }, "time travel not applied")
	if s.GetState().Label != "then" {
		t.Fatalf("expected full replacement, got %+v", s.GetState())
	}
	if got := len(fake.messages()); got != reported {
		t.Fatalf("expected no re-report of the applied state, got %d messages", got)
	}
	fake.Close()
}

func TestDevtools_IgnoresNonStateMessages(t *testing.T) {
	fake := newFakeInspector()
	base := counterCreator(counterDoc{Count: 4})

	s := store.New(store.Compose(base, Devtools[counterDoc](fake)))
	fake.inbox <- inspector.Message{Type: inspector.TypeAction, Action: "noise"}
	fake.Close()

	// Draining the inbox must not disturb the state.
	eventually(t, func() bool {
		_, open := <-fake.Receive()
		return !open
	}, "inbox never drained")
	if got := s.GetState().Count; got != 4 {
		t.Fatalf("expected state untouched, got %d", got)
	}
}
