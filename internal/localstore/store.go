package localstore

import (
	"time"

	"github.com/treatclock/treatclock/internal/config"
	"github.com/treatclock/treatclock/internal/logging"
	"github.com/treatclock/treatclock/internal/model"
)

// Store is the Local Timer Store: one active-timer snapshot written
// through every source and loaded from whichever source holds the freshest
// valid record. Read failures fail open to "no timer"; write failures are
// logged and not retried.
type Store struct {
	sources []Source
	limiter *RateLimiter
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the store's clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithDebounce overrides the save debounce window.
func WithDebounce(interval time.Duration) Option {
	return func(s *Store) {
		s.limiter = NewRateLimiter(interval)
	}
}

// New creates a store over the given sources, highest priority first.
func New(sources []Source, opts ...Option) *Store {
	s := &Store{
		sources: sources,
		limiter: NewRateLimiter(config.Global.LocalStore.SaveDebounce),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists the timer to every source. A nil, inactive, or expired
// timer clears every source instead (clears bypass the debounce). A save
// inside the debounce window is dropped.
func (s *Store) Save(timer *model.TreatmentTimer) {
	now := s.now()

	if !timer.IsEffective(now) {
		s.clearAll()
		return
	}

	if !s.limiter.Allow(now) {
		logging.DebugLog("timer save debounced",
			logging.KeyTimerID, timer.ID)
		return
	}

	state := &model.TimerState{Timer: timer}
	for _, src := range s.sources {
		if err := src.Save(state); err != nil {
			logging.Error("timer save failed",
				logging.KeySource, src.Name(),
				logging.KeyError, err)
		}
	}
}

// Load returns the freshest valid timer across all sources, or nil.
// Stale or unreadable records are removed from the source that held them.
func (s *Store) Load() *model.TreatmentTimer {
	now := s.now()
	var winner *model.TreatmentTimer

	for _, src := range s.sources {
		state, err := src.Load()
		if err != nil {
			// Corrupt record: drop it and fail open.
			logging.Warn("timer load failed, clearing source",
				logging.KeySource, src.Name(),
				logging.KeyError, err)
			if cerr := src.Clear(); cerr != nil {
				logging.Error("source clear failed",
					logging.KeySource, src.Name(),
					logging.KeyError, cerr)
			}
			continue
		}
		if state == nil || state.Timer == nil {
			continue
		}

		if !state.Timer.IsEffective(now) {
			// Stale cleanup: the record is data, not an error,
			// but must never be returned as valid.
			if cerr := src.Clear(); cerr != nil {
				logging.Error("stale timer clear failed",
					logging.KeySource, src.Name(),
					logging.KeyError, cerr)
			}
			continue
		}

		// Among valid candidates the later deadline wins.
		if winner == nil || state.Timer.EndTime.After(winner.EndTime) {
			winner = state.Timer
		}
	}

	return winner
}

// Clear removes the snapshot from every source, bypassing the debounce.
func (s *Store) Clear() {
	s.clearAll()
}

func (s *Store) clearAll() {
	for _, src := range s.sources {
		if err := src.Clear(); err != nil {
			logging.Error("timer clear failed",
				logging.KeySource, src.Name(),
				logging.KeyError, err)
		}
	}
}
