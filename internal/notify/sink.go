package notify

import (
	"context"
	"sync"
	"time"

	"github.com/treatclock/treatclock/internal/logging"
	"github.com/treatclock/treatclock/internal/model"
)

// Sink is the delivery side of the scheduler: schedule a notification by
// id with a delay, cancel it by id, enumerate what is pending. The OS
// notification service it stands in for is an opaque collaborator.
type Sink interface {
	// Schedule arranges delivery of n after delay under the given id.
	// Scheduling an id that is already pending replaces it.
	Schedule(id string, delay time.Duration, n *model.Notification) error
	// Cancel drops a pending notification. Unknown ids are a no-op.
	Cancel(id string)
	// Pending returns the ids of all scheduled, unfired notifications.
	Pending() []string
}

// Deliverer consumes fired notifications. The webhook Dispatcher
// implements it.
type Deliverer interface {
	Deliver(ctx context.Context, n *model.Notification)
}

// TimerSink is the in-process Sink: one time.AfterFunc per pending
// notification, fired ones handed to a Deliverer.
type TimerSink struct {
	mu        sync.Mutex
	pending   map[string]*time.Timer
	deliverer Deliverer
}

// NewTimerSink creates a sink delivering through d.
func NewTimerSink(d Deliverer) *TimerSink {
	return &TimerSink{
		pending:   make(map[string]*time.Timer),
		deliverer: d,
	}
}

// Schedule arranges delivery of n after delay.
func (s *TimerSink) Schedule(id string, delay time.Duration, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.pending[id]; ok {
		t.Stop()
	}

	s.pending[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()

		logging.Info("notification fired",
			logging.KeyNotificationID, id)
		if s.deliverer != nil {
			s.deliverer.Deliver(context.Background(), n)
		}
	})
	return nil
}

// Cancel drops a pending notification.
func (s *TimerSink) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.pending[id]; ok {
		t.Stop()
		delete(s.pending, id)
	}
}

// Pending returns the ids of all unfired notifications.
func (s *TimerSink) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	return ids
}

// Close cancels everything pending.
func (s *TimerSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
}
