package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/shfq/lovechat-server/internal/store"
)

// fakeStore is an in-memory store.MessageStore with injectable failures.
type fakeStore struct {
	mu        sync.Mutex
	messages  []*store.Message
	appendErr error
	recentErr error
}

func (f *fakeStore) Append(_ context.Context, text, imageURL, sender string) (*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.appendErr != nil {
		return nil, f.appendErr
	}
	msg := &store.Message{
		ID:        int64(len(f.messages) + 1),
		Text:      text,
		ImageURL:  imageURL,
		Sender:    sender,
		CreatedAt: time.Now().UTC(),
	}
	f.messages = append(f.messages, msg)
	return msg, nil
}

func (f *fakeStore) Recent(_ context.Context, limit int) ([]*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.recentErr != nil {
		return nil, f.recentErr
	}
	start := len(f.messages) - limit
	if start < 0 {
		start = 0
	}
	out := make([]*store.Message, len(f.messages)-start)
	copy(out, f.messages[start:])
	return out, nil
}

func (f *fakeStore) Close() error { return nil }

func startTestRelay(t *testing.T, fs *fakeStore) *Relay {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := zerolog.Nop()
	relay := NewRelay(fs, NewRegistry(), &logger, 50)
	go relay.Run(ctx)

	return relay
}

func TestConnectDeliversHistory(t *testing.T) {
	fs := &fakeStore{}
	for i := 1; i <= 3; i++ {
		_, _ = fs.Append(context.Background(), fmt.Sprintf("m%d", i), "", "alice")
	}

	relay := startTestRelay(t, fs)

	c := NewClient("a", 8)
	relay.Connect(c)

	ev := mustEvent(t, c.Events, EventHistory)
	if len(ev.History) != 3 {
		t.Fatalf("expected 3 history messages, got %d", len(ev.History))
	}
	for i, msg := range ev.History {
		if msg.ID != int64(i+1) {
			t.Fatalf("history out of order: id %d at position %d", msg.ID, i)
		}
	}
}

func TestConnectHistoryWindow(t *testing.T) {
	fs := &fakeStore{}
	for i := 1; i <= 60; i++ {
		_, _ = fs.Append(context.Background(), fmt.Sprintf("m%d", i), "", "alice")
	}

	relay := startTestRelay(t, fs)

	c := NewClient("a", 8)
	relay.Connect(c)

	ev := mustEvent(t, c.Events, EventHistory)
	if len(ev.History) != 50 {
		t.Fatalf("expected 50 history messages, got %d", len(ev.History))
	}
	if ev.History[0].ID != 11 || ev.History[49].ID != 60 {
		t.Fatalf("expected history window 11..60, got %d..%d", ev.History[0].ID, ev.History[49].ID)
	}
}

func TestConnectSurvivesHistoryLoadFailure(t *testing.T) {
	fs := &fakeStore{recentErr: errors.New("store down")}
	relay := startTestRelay(t, fs)

	c := NewClient("a", 8)
	relay.Connect(c)

	ev := mustEvent(t, c.Events, EventHistory)
	if len(ev.History) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(ev.History))
	}

	// The connection is active: clear the failure and it still gets broadcasts.
	fs.mu.Lock()
	fs.recentErr = nil
	fs.mu.Unlock()

	relay.Send(c, "hi", "", "alice")
	msgEv := mustEvent(t, c.Events, EventMessage)
	if msgEv.Message.Text != "hi" {
		t.Fatalf("unexpected message: %+v", msgEv.Message)
	}
}

func TestBroadcastReachesAllIncludingSender(t *testing.T) {
	fs := &fakeStore{}
	relay := startTestRelay(t, fs)

	a := NewClient("a", 8)
	b := NewClient("b", 8)
	relay.Connect(a)
	relay.Connect(b)
	mustEvent(t, a.Events, EventHistory)
	mustEvent(t, b.Events, EventHistory)

	relay.Send(a, "hi", "", "shfq")

	for _, c := range []*Client{a, b} {
		ev := mustEvent(t, c.Events, EventMessage)
		if ev.Message.ID != 1 || ev.Message.Text != "hi" || ev.Message.Sender != "shfq" {
			t.Fatalf("unexpected broadcast for %s: %+v", c.ID, ev.Message)
		}
		if ev.Message.CreatedAt.IsZero() {
			t.Fatalf("expected created_at to be set for %s", c.ID)
		}
	}
}

func TestBroadcastOrderMatchesAppendOrder(t *testing.T) {
	fs := &fakeStore{}
	relay := startTestRelay(t, fs)

	a := NewClient("a", 16)
	b := NewClient("b", 16)
	relay.Connect(a)
	relay.Connect(b)
	mustEvent(t, a.Events, EventHistory)
	mustEvent(t, b.Events, EventHistory)

	for i := 1; i <= 5; i++ {
		relay.Send(a, fmt.Sprintf("m%d", i), "", "alice")
	}

	var lastID int64
	for i := 1; i <= 5; i++ {
		ev := mustEvent(t, b.Events, EventMessage)
		if ev.Message.ID <= lastID {
			t.Fatalf("broadcast out of order: id %d after %d", ev.Message.ID, lastID)
		}
		lastID = ev.Message.ID
	}
	if lastID != 5 {
		t.Fatalf("expected last id 5, got %d", lastID)
	}
}

func TestEmptyMessageRejected(t *testing.T) {
	fs := &fakeStore{}
	relay := startTestRelay(t, fs)

	a := NewClient("a", 8)
	b := NewClient("b", 8)
	relay.Connect(a)
	relay.Connect(b)
	mustEvent(t, a.Events, EventHistory)
	mustEvent(t, b.Events, EventHistory)

	relay.Send(a, "", "", "alice")

	ev := mustEvent(t, a.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeEmptyMessage {
		t.Fatalf("expected empty_message error, got %+v", ev)
	}
	mustNoEvent(t, b.Events, 100*time.Millisecond)
}

func TestMissingSenderRejected(t *testing.T) {
	fs := &fakeStore{}
	relay := startTestRelay(t, fs)

	a := NewClient("a", 8)
	relay.Connect(a)
	mustEvent(t, a.Events, EventHistory)

	relay.Send(a, "hi", "", "")

	ev := mustEvent(t, a.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeBadRequest {
		t.Fatalf("expected bad_request error, got %+v", ev)
	}
}

func TestPersistenceFailureIsolatedToSender(t *testing.T) {
	fs := &fakeStore{appendErr: errors.New("disk full")}
	relay := startTestRelay(t, fs)

	a := NewClient("a", 8)
	b := NewClient("b", 8)
	relay.Connect(a)
	relay.Connect(b)
	mustEvent(t, a.Events, EventHistory)
	mustEvent(t, b.Events, EventHistory)

	relay.Send(a, "hi", "", "alice")

	ev := mustEvent(t, a.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodePersistenceFailed {
		t.Fatalf("expected persistence_failed error, got %+v", ev)
	}
	mustNoEvent(t, b.Events, 100*time.Millisecond)

	// Recovery: the store comes back and both clients get the next message.
	fs.mu.Lock()
	fs.appendErr = nil
	fs.mu.Unlock()

	relay.Send(a, "back", "", "alice")
	mustEvent(t, a.Events, EventMessage)
	mustEvent(t, b.Events, EventMessage)
}

func TestUndeliverableClientDropped(t *testing.T) {
	fs := &fakeStore{}
	relay := startTestRelay(t, fs)

	a := NewClient("a", 8)
	b := NewClient("b", 8)
	stuck := NewClient("stuck", 1)
	relay.Connect(a)
	relay.Connect(b)
	relay.Connect(stuck)
	mustEvent(t, a.Events, EventHistory)
	mustEvent(t, b.Events, EventHistory)
	// stuck never drains: its buffer holds the history event and is now full.

	relay.Send(a, "hi", "", "alice")

	mustEvent(t, a.Events, EventMessage)
	mustEvent(t, b.Events, EventMessage)

	// The stuck client was unregistered and closed: its buffered history event
	// drains first, then the channel reports closed.
	mustEvent(t, stuck.Events, EventHistory)
	if _, ok := <-stuck.Events; ok {
		t.Fatal("expected stuck client's channel to be closed")
	}

	// Later messages still reach the healthy clients.
	relay.Send(b, "again", "", "bob")
	mustEvent(t, a.Events, EventMessage)
	mustEvent(t, b.Events, EventMessage)
}

func TestDisconnectIdempotent(t *testing.T) {
	fs := &fakeStore{}
	relay := startTestRelay(t, fs)

	a := NewClient("a", 8)
	b := NewClient("b", 8)
	relay.Connect(a)
	relay.Connect(b)
	mustEvent(t, a.Events, EventHistory)
	mustEvent(t, b.Events, EventHistory)

	relay.Disconnect(a)
	relay.Disconnect(a)

	relay.Send(b, "still here", "", "bob")
	ev := mustEvent(t, b.Events, EventMessage)
	if ev.Message.Text != "still here" {
		t.Fatalf("unexpected message: %+v", ev.Message)
	}
}
