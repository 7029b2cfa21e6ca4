package telemetry

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"zeno-access/internal/telemetry/domain"
)

// mockEventEmitter implements EventEmitter for tests.
type mockEventEmitter struct {
	mu      sync.Mutex
	events  []*domain.Event
	emitErr error
	done    chan struct{}
}

func (m *mockEventEmitter) Emit(ctx context.Context, event *domain.Event) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	if m.done != nil {
		m.done <- struct{}{}
	}
	return m.emitErr
}

func (m *mockEventEmitter) getEvents() []*domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Event(nil), m.events...)
}

func waitFor(t *testing.T, done chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d emits", i, n)
		}
	}
}

func TestEmitAsync_NilEmitterOrEvent(t *testing.T) {
	EmitAsync(nil, &domain.Event{OrgID: 1})

	emitter := &mockEventEmitter{}
	EmitAsync(emitter, nil)
	time.Sleep(10 * time.Millisecond)
	if n := len(emitter.getEvents()); n != 0 {
		t.Errorf("expected 0 events, got %d", n)
	}
}

func TestEmitAsync_SuccessfulEmit(t *testing.T) {
	emitter := &mockEventEmitter{done: make(chan struct{}, 1)}
	EmitAsync(emitter, &domain.Event{OrgID: 1, UserID: 2, EventType: "test_event", Source: "test"})
	waitFor(t, emitter.done, 1)

	events := emitter.getEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].OrgID != 1 || events[0].UserID != 2 {
		t.Errorf("event ids = %d/%d, want 1/2", events[0].OrgID, events[0].UserID)
	}
}

func TestEmitAsync_ErrorIsSwallowed(t *testing.T) {
	emitter := &mockEventEmitter{emitErr: context.DeadlineExceeded, done: make(chan struct{}, 1)}
	EmitAsync(emitter, &domain.Event{EventType: "test"})
	waitFor(t, emitter.done, 1)
}

func TestEmitAsync_Concurrent(t *testing.T) {
	emitter := &mockEventEmitter{done: make(chan struct{}, 10)}
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			EmitAsync(emitter, &domain.Event{EventType: "test"})
		}()
	}
	wg.Wait()
	waitFor(t, emitter.done, 10)
	if n := len(emitter.getEvents()); n != 10 {
		t.Errorf("expected 10 events, got %d", n)
	}
}

func TestDecisionEvent(t *testing.T) {
	ev := DecisionEvent(Decision{
		OrgID: 1, UserID: 42, SessionID: "s", BusinessID: 10,
		Action: "edit-business", BusinessRole: "staff", Allowed: false, Reason: "requires manager",
	}, "access_service")
	if ev.EventType != domain.EventTypeDecision {
		t.Errorf("EventType = %q, want %q", ev.EventType, domain.EventTypeDecision)
	}
	if ev.OrgID != 1 || ev.UserID != 42 || ev.SessionID != "s" || ev.Source != "access_service" {
		t.Errorf("event = %+v", ev)
	}
	if ev.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	var meta map[string]any
	if err := json.Unmarshal(ev.Metadata, &meta); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta["action"] != "edit-business" || meta["allowed"] != false || meta["business_id"] != float64(10) {
		t.Errorf("metadata = %v", meta)
	}
}
