package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"lab-request-api/models"
)

// DeadlineSweeper periodically scans open requests whose deadline falls within
// the warning window and publishes one deadline_approaching event per request
// per day.
type DeadlineSweeper struct {
	db       *gorm.DB
	bus      *EventBus
	interval time.Duration
	window   time.Duration

	// requestID -> date (YYYYMMDD) last notified
	notified map[uint]string

	wg sync.WaitGroup
}

func NewDeadlineSweeper(db *gorm.DB, bus *EventBus) *DeadlineSweeper {
	return &DeadlineSweeper{
		db:       db,
		bus:      bus,
		interval: time.Hour,
		window:   72 * time.Hour,
		notified: make(map[uint]string),
	}
}

// Start runs the sweep loop until ctx is cancelled. One sweep runs immediately.
func (s *DeadlineSweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.sweep()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

// Wait blocks until the sweep loop has fully stopped, including any in-flight
// sweep. Call after cancelling the context and before closing the bus, so no
// sweep can publish onto a closed channel.
func (s *DeadlineSweeper) Wait() {
	s.wg.Wait()
}

func (s *DeadlineSweeper) sweep() {
	now := time.Now()
	today := now.Format("20060102")

	var requests []models.LabRequest
	err := s.db.Preload("User").Preload("Company").
		Where("deadline IS NOT NULL AND deadline > ? AND deadline <= ?", now, now.Add(s.window)).
		Where("status NOT IN ?", []string{string(StatusDraft), string(StatusCompleted)}).
		Find(&requests).Error
	if err != nil {
		log.Printf("deadline sweep failed: %v", err)
		return
	}

	for _, req := range requests {
		if s.notified[req.RequestID] == today {
			continue
		}
		s.notified[req.RequestID] = today

		days := daysRemaining(now, *req.Deadline)
		requestID := req.RequestID
		s.bus.Publish(Event{
			Key:       EventDeadlineApproaching,
			RequestID: &requestID,
			Data: map[string]string{
				"request_number": req.RequestNumber,
				"deadline":       req.Deadline.Format("2006-01-02"),
				"days_remaining": fmt.Sprintf("%d", days),
			},
		})
	}
}

// daysRemaining counts calendar days until the deadline, rounding partial days
// up so "tomorrow morning" reads as 1 day, never 0.
func daysRemaining(now, deadline time.Time) int {
	d := deadline.Sub(now)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}
