// Package scheduler runs the watch daemon's periodic maintenance jobs.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/treatclock/treatclock/internal/engine"
	"github.com/treatclock/treatclock/internal/logging"
	"github.com/treatclock/treatclock/internal/session"
)

// Scheduler drives periodic reconciliation. The engine's own 1s tick
// handles expiry; these jobs are the slower repair passes.
type Scheduler struct {
	cron      *cron.Cron
	engine    *engine.Engine
	session   *session.Context
	mu        sync.Mutex
	lastCheck time.Time
}

// New creates a scheduler over the given engine and session.
func New(eng *engine.Engine, sess *session.Context) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		engine:  eng,
		session: sess,
	}
}

// Start begins the periodic jobs: a reconcile pass every 30 seconds.
func (s *Scheduler) Start() error {
	s.lastCheck = time.Now()

	_, err := s.cron.AddFunc("*/30 * * * * *", func() {
		s.runReconcile()
	})
	if err != nil {
		return fmt.Errorf("failed to add reconcile job: %w", err)
	}

	s.cron.Start()
	logging.DebugLog("scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	logging.DebugLog("scheduler stopped")
}

// runReconcile repairs the foreground room's timer state against the
// remote record. Skipped after a long gap: the system was asleep and the
// engine's reconcile on wake-up covers it.
func (s *Scheduler) runReconcile() {
	s.mu.Lock()
	elapsed := time.Since(s.lastCheck)
	s.lastCheck = time.Now()
	s.mu.Unlock()

	if elapsed > time.Hour {
		logging.DebugLog("skipping stale reconcile after sleep",
			"elapsed", elapsed.Round(time.Second).String())
		return
	}

	roomID := s.session.CurrentRoomID()
	if roomID == "" {
		return
	}

	if _, err := s.engine.Reconcile(roomID); err != nil {
		logging.Warn("periodic reconcile failed",
			logging.KeyRoom, roomID,
			logging.KeyError, err)
	}
}
