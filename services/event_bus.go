package services

import (
	"log"
	"sync"
)

// Event keys known at bootstrap. Lifecycle transitions additionally emit
// status_to_<state> keys derived from the new status.
const (
	EventStatusChange        = "status_change"
	EventNewRequest          = "new_request"
	EventRequestApproved     = "request_approved"
	EventRequestRejected     = "request_rejected"
	EventResultsUploaded     = "results_uploaded"
	EventDeadlineApproaching = "deadline_approaching"
	EventCommentAdded        = "comment_added"
)

// Event is an immutable record of something that happened, carrying a typed
// key and a variable payload for template rendering.
type Event struct {
	Key        string
	RequestID  *uint
	Data       map[string]string
	Recipients []uint
}

// Notifier consumes events. Implemented by NotificationService.
type Notifier interface {
	Notify(eventKey string, requestID *uint, eventData map[string]string, recipients []uint) (int, int)
}

// EventBus decouples business transactions from notification delivery. Events
// are published onto a buffered channel and consumed by a worker goroutine;
// delivery is at-least-once, best-effort, and never fails the publisher.
type EventBus struct {
	ch        chan Event
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewEventBus(buffer int) *EventBus {
	if buffer <= 0 {
		buffer = 64
	}
	return &EventBus{ch: make(chan Event, buffer)}
}

// Publish enqueues an event for dispatch. Blocks only when the buffer is full.
func (b *EventBus) Publish(evt Event) {
	b.ch <- evt
}

// Start launches the dispatcher worker. Call once at startup.
func (b *EventBus) Start(n Notifier) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for evt := range b.ch {
			inApp, email := n.Notify(evt.Key, evt.RequestID, evt.Data, evt.Recipients)
			log.Printf("event %s dispatched: %d in-app, %d email", evt.Key, inApp, email)

			// A status change additionally fans out under its state-specific
			// key so rules can target individual states.
			if evt.Key == EventStatusChange && evt.Data["new_status"] != "" {
				derived := "status_to_" + evt.Data["new_status"]
				inApp, email = n.Notify(derived, evt.RequestID, evt.Data, evt.Recipients)
				log.Printf("event %s dispatched: %d in-app, %d email", derived, inApp, email)
			}
		}
	}()
}

// Close drains the queue and stops the worker.
func (b *EventBus) Close() {
	b.closeOnce.Do(func() {
		close(b.ch)
	})
	b.wg.Wait()
}
