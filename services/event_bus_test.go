package services

import (
	"sync"
	"testing"
)

type recordedCall struct {
	eventKey   string
	requestID  *uint
	data       map[string]string
	recipients []uint
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakeNotifier) Notify(eventKey string, requestID *uint, eventData map[string]string, recipients []uint) (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{eventKey, requestID, eventData, recipients})
	return 1, 0
}

func (f *fakeNotifier) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func TestEventBusDispatchesStatusChangeWithDerivedKey(t *testing.T) {
	notifier := &fakeNotifier{}
	bus := NewEventBus(8)
	bus.Start(notifier)

	requestID := uint(1)
	bus.Publish(Event{
		Key:       EventStatusChange,
		RequestID: &requestID,
		Data:      map[string]string{"request_number": "ACME-20250115-001", "new_status": "in_transit"},
	})
	bus.Close()

	calls := notifier.recorded()
	if len(calls) != 2 {
		t.Fatalf("expected 2 dispatches, got %d", len(calls))
	}
	if calls[0].eventKey != EventStatusChange {
		t.Errorf("first dispatch key = %q", calls[0].eventKey)
	}
	if calls[1].eventKey != "status_to_in_transit" {
		t.Errorf("derived dispatch key = %q", calls[1].eventKey)
	}
	if calls[1].data["request_number"] != "ACME-20250115-001" {
		t.Error("derived dispatch should carry the original payload")
	}
}

func TestEventBusNonLifecycleEventDispatchesOnce(t *testing.T) {
	notifier := &fakeNotifier{}
	bus := NewEventBus(8)
	bus.Start(notifier)

	bus.Publish(Event{Key: EventNewRequest, Data: map[string]string{"request_number": "X-1"}})
	bus.Close()

	calls := notifier.recorded()
	if len(calls) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(calls))
	}
	if calls[0].eventKey != EventNewRequest {
		t.Errorf("dispatch key = %q", calls[0].eventKey)
	}
}

func TestEventBusCloseDrainsQueue(t *testing.T) {
	notifier := &fakeNotifier{}
	bus := NewEventBus(32)
	bus.Start(notifier)

	for i := 0; i < 10; i++ {
		bus.Publish(Event{Key: EventCommentAdded, Data: map[string]string{}})
	}
	bus.Close()

	if got := len(notifier.recorded()); got != 10 {
		t.Errorf("expected all 10 queued events dispatched before close, got %d", got)
	}
}

func TestEventBusCloseIsIdempotent(t *testing.T) {
	bus := NewEventBus(1)
	bus.Start(&fakeNotifier{})
	bus.Close()
	bus.Close()
}

func TestEventBusRecipientsOverridePassthrough(t *testing.T) {
	notifier := &fakeNotifier{}
	bus := NewEventBus(8)
	bus.Start(notifier)

	bus.Publish(Event{Key: EventCommentAdded, Recipients: []uint{3, 9}})
	bus.Close()

	calls := notifier.recorded()
	if len(calls) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(calls))
	}
	if len(calls[0].recipients) != 2 || calls[0].recipients[0] != 3 || calls[0].recipients[1] != 9 {
		t.Errorf("recipients not passed through: %v", calls[0].recipients)
	}
}
