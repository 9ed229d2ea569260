// Package engine reconciles treatment timer state across the local
// snapshot, the shared remote record, and scheduled notifications.
package engine

import (
	"context"
	"time"

	"github.com/treatclock/treatclock/internal/activity"
	"github.com/treatclock/treatclock/internal/config"
	apperrors "github.com/treatclock/treatclock/internal/errors"
	"github.com/treatclock/treatclock/internal/localstore"
	"github.com/treatclock/treatclock/internal/logging"
	"github.com/treatclock/treatclock/internal/model"
	"github.com/treatclock/treatclock/internal/notify"
	"github.com/treatclock/treatclock/internal/remote"
	"github.com/treatclock/treatclock/internal/session"
)

// ExpiryEvent is surfaced when the foreground room's timer runs out, so
// the UI layer can react instead of the timer silently disappearing.
type ExpiryEvent struct {
	RoomID string
	Timer  *model.TreatmentTimer
}

// Engine is the single writer of timer state. Every transition — explicit
// commands, remote watch callbacks, log changes, ticks — is serialized
// onto one goroutine, so no two transitions race on the same room.
type Engine struct {
	session  *session.Context
	local    *localstore.Store
	client   remote.Client
	sched    *notify.Scheduler
	display  activity.Display
	presence *activity.Mirror
	now      func() time.Time

	reqs    chan func()
	expired chan ExpiryEvent
	closed  chan struct{}

	// Loop-owned state. Touched only from run.
	active      map[string]*model.TreatmentTimer
	watchRoom   string
	watchCancel remote.CancelFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithDisplay attaches a local progress surface.
func WithDisplay(d activity.Display) Option {
	return func(e *Engine) {
		e.display = d
	}
}

// WithPresence attaches a live activity mirror.
func WithPresence(m *activity.Mirror) Option {
	return func(e *Engine) {
		e.presence = m
	}
}

// WithClock overrides the engine's clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an engine. Call Run to start processing.
func New(sess *session.Context, local *localstore.Store, client remote.Client, sched *notify.Scheduler, opts ...Option) *Engine {
	e := &Engine{
		session: sess,
		local:   local,
		client:  client,
		sched:   sched,
		display: activity.NopDisplay{},
		now:     time.Now,
		reqs:    make(chan func(), 64),
		expired: make(chan ExpiryEvent, 8),
		closed:  make(chan struct{}),
		active:  make(map[string]*model.TreatmentTimer),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run processes transitions until ctx is done. It restores the foreground
// room's timer on entry and tears down the watch on exit.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.closed)
	defer e.teardownWatch()

	if room := e.session.CurrentRoomID(); room != "" {
		e.switchRoomLocked(ctx, room)
	}

	ticker := time.NewTicker(config.Global.Timer.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-e.reqs:
			fn()
		case <-ticker.C:
			e.tickLocked()
		}
	}
}

// Done is closed once Run has returned.
func (e *Engine) Done() <-chan struct{} {
	return e.closed
}

// Expired delivers expiry events for the foreground room.
func (e *Engine) Expired() <-chan ExpiryEvent {
	return e.expired
}

// do runs fn on the engine goroutine and waits for it.
func (e *Engine) do(fn func()) {
	done := make(chan struct{})
	select {
	case e.reqs <- func() { fn(); close(done) }:
	case <-e.closed:
		return
	}
	select {
	case <-done:
	case <-e.closed:
	}
}

// post queues fn without waiting. Used by watch callbacks.
func (e *Engine) post(fn func()) {
	select {
	case e.reqs <- fn:
	case <-e.closed:
	}
}

// Timer returns the engine's view of the room's timer, nil for NoTimer.
func (e *Engine) Timer(roomID string) *model.TreatmentTimer {
	var t *model.TreatmentTimer
	e.do(func() {
		t = e.active[roomID].Clone()
	})
	return t
}

// Start begins a timer in the room. A non-positive duration uses the
// room's effective (override-aware) duration. Starting with no unlogged
// treatment items is refused: there is nothing for the timer to gate.
func (e *Engine) Start(roomID string, duration time.Duration) (*model.TreatmentTimer, error) {
	var (
		timer *model.TreatmentTimer
		err   error
	)
	e.do(func() {
		timer, err = e.startLocked(roomID, duration)
	})
	return timer, err
}

func (e *Engine) startLocked(roomID string, duration time.Duration) (*model.TreatmentTimer, error) {
	now := e.now()

	unlogged, err := e.session.QualifyingItemsForToday(roomID)
	if err != nil {
		return nil, apperrors.NewSystemErrorWithOp("timer start", "failed to read today's logs", err)
	}
	if len(unlogged) == 0 {
		logging.Info("timer start refused, nothing to gate",
			logging.KeyRoom, roomID)
		return nil, apperrors.ErrNoQualifyingItems
	}

	if duration <= 0 {
		duration = e.session.EffectiveDuration(roomID)
	}

	// Replace, never stack: any prior timer's bookkeeping goes first.
	if prev := e.active[roomID]; prev != nil {
		e.sched.CancelForTimer(prev.ID, roomID)
	}

	timer := model.NewTreatmentTimer(now.Add(duration), unlogged, e.session.RoomName(roomID))

	ids, err := e.sched.ScheduleForTimer(timer, roomID, duration)
	if err != nil {
		// A timer without notifications still runs.
		logging.Error("notification scheduling failed",
			logging.KeyRoom, roomID,
			logging.KeyError, err)
	}
	timer.NotificationIDs = ids

	e.writeThrough(roomID, timer)

	logging.Info("timer started",
		logging.KeyRoom, roomID,
		logging.KeyTimerID, timer.ID,
		logging.KeyEndTime, timer.EndTime)
	return timer.Clone(), nil
}

// Snooze extends the room's timer, keeping its identity and associated
// items. A non-positive extra uses the configured snooze duration.
func (e *Engine) Snooze(roomID string, extra time.Duration) (*model.TreatmentTimer, error) {
	var (
		timer *model.TreatmentTimer
		err   error
	)
	e.do(func() {
		timer, err = e.snoozeLocked(roomID, extra)
	})
	return timer, err
}

func (e *Engine) snoozeLocked(roomID string, extra time.Duration) (*model.TreatmentTimer, error) {
	now := e.now()

	timer := e.active[roomID]
	if timer == nil {
		return nil, apperrors.ErrNoActiveTimer
	}

	if extra <= 0 {
		extra = config.Global.Timer.SnoozeDuration
	}

	e.sched.CancelForTimer(timer.ID, roomID)

	// Same id, same associated items: a snooze does not re-scan logs.
	timer.EndTime = now.Add(extra)
	timer.IsActive = true

	ids, err := e.sched.ScheduleForTimer(timer, roomID, extra)
	if err != nil {
		logging.Error("notification rescheduling failed",
			logging.KeyRoom, roomID,
			logging.KeyError, err)
	}
	timer.NotificationIDs = ids

	e.writeThrough(roomID, timer)

	logging.Info("timer snoozed",
		logging.KeyRoom, roomID,
		logging.KeyTimerID, timer.ID,
		logging.KeyEndTime, timer.EndTime)
	return timer.Clone(), nil
}

// Stop cancels the room's timer bookkeeping. With clearRoom the timer is
// gone everywhere: remote record deleted, map entry removed, local
// snapshot and display cleared when foregrounded. Without clearRoom only
// notifications are cancelled — used when navigating away, not
// abandoning the timer. Idempotent either way.
func (e *Engine) Stop(roomID string, clearRoom bool) error {
	e.do(func() {
		e.stopLocked(roomID, clearRoom)
	})
	return nil
}

func (e *Engine) stopLocked(roomID string, clearRoom bool) {
	if timer := e.active[roomID]; timer != nil {
		e.sched.CancelForTimer(timer.ID, roomID)
	}

	if !clearRoom {
		return
	}

	if err := remote.NewTimerMirror(e.client, roomID).Clear(); err != nil {
		logging.Error("remote timer clear failed",
			logging.KeyRoom, roomID,
			logging.KeyError, err)
	}
	delete(e.active, roomID)

	if roomID == e.session.CurrentRoomID() {
		e.local.Clear()
		e.display.ClearTimer()
		if e.presence != nil {
			e.presence.Clear(roomID)
		}
	}

	logging.Info("timer stopped",
		logging.KeyRoom, roomID,
		"clear_room", clearRoom)
}

// Reconcile derives the room's authoritative timer from the local
// snapshot and the remote record, repairing whichever side lost.
func (e *Engine) Reconcile(roomID string) (*model.TreatmentTimer, error) {
	var (
		timer *model.TreatmentTimer
		err   error
	)
	e.do(func() {
		timer, err = e.reconcileLocked(roomID)
	})
	return timer, err
}

func (e *Engine) reconcileLocked(roomID string) (*model.TreatmentTimer, error) {
	now := e.now()
	foreground := roomID == e.session.CurrentRoomID()

	// The local snapshot belongs to the foreground room only.
	var localTimer *model.TreatmentTimer
	if foreground {
		localTimer = e.local.Load()
	}

	mirror := remote.NewTimerMirror(e.client, roomID)
	remoteTimer, err := mirror.Get()
	if err != nil {
		// Transient: reconcile from what we have, repair next pass.
		logging.Warn("remote timer read failed",
			logging.KeyRoom, roomID,
			logging.KeyError, err)
		remoteTimer = nil
	}

	winner := merge(localTimer, remoteTimer, now)
	if winner == nil {
		if prev := e.active[roomID]; prev != nil {
			e.sched.CancelForTimer(prev.ID, roomID)
		}
		delete(e.active, roomID)
		if foreground {
			e.local.Clear()
			e.display.ClearTimer()
		}
		// An expired remote record is garbage other devices would
		// keep resurrecting; delete it while we are here.
		if remoteTimer != nil && !remoteTimer.IsEffective(now) {
			if cerr := mirror.Clear(); cerr != nil {
				logging.Warn("stale remote timer clear failed",
					logging.KeyRoom, roomID,
					logging.KeyError, cerr)
			}
		}
		return nil, nil
	}

	// Repair the losing side.
	if winner == localTimer {
		if remoteTimer == nil || !remoteTimer.EndTime.Equal(winner.EndTime) || remoteTimer.ID != winner.ID {
			if serr := mirror.Set(winner); serr != nil {
				logging.Error("remote timer repair failed",
					logging.KeyRoom, roomID,
					logging.KeyError, serr)
			}
		}
	} else if foreground {
		e.local.Save(winner)
	}

	e.adoptLocked(roomID, winner)
	return winner.Clone(), nil
}

// adoptLocked installs a reconciled timer, rescheduling notifications if
// it is new to this device. Re-adopting the identical timer is a no-op,
// which is what makes echoed writes harmless.
func (e *Engine) adoptLocked(roomID string, timer *model.TreatmentTimer) {
	now := e.now()
	current := e.active[roomID]

	if current != nil && current.ID == timer.ID && current.EndTime.Equal(timer.EndTime) {
		e.active[roomID] = timer
		return
	}

	if current != nil {
		e.sched.CancelForTimer(current.ID, roomID)
	}

	ids, err := e.sched.ScheduleForTimer(timer, roomID, timer.Remaining(now))
	if err != nil {
		logging.Error("notification scheduling failed",
			logging.KeyRoom, roomID,
			logging.KeyError, err)
	}
	timer.NotificationIDs = ids
	e.active[roomID] = timer

	if roomID == e.session.CurrentRoomID() {
		e.display.ShowTimer(timer)
		if e.presence != nil {
			e.presence.Publish(roomID, timer)
		}
	}
}

// SwitchRoom moves the engine's focus: the old room keeps its timer but
// loses this device's notifications and watch; the new room is
// reconciled and watched.
func (e *Engine) SwitchRoom(ctx context.Context, roomID string) error {
	var err error
	e.do(func() {
		err = e.switchRoomLocked(ctx, roomID)
	})
	return err
}

func (e *Engine) switchRoomLocked(ctx context.Context, roomID string) error {
	if e.watchRoom == roomID && e.watchCancel != nil {
		return nil
	}

	e.teardownWatch()

	if prev := e.watchRoom; prev != "" && prev != roomID {
		e.stopLocked(prev, false)
		// The snapshot follows the foreground room.
		e.local.Clear()
	}

	e.watchRoom = roomID
	if roomID == "" {
		return nil
	}

	if _, err := e.reconcileLocked(roomID); err != nil {
		logging.Warn("reconcile on room switch failed",
			logging.KeyRoom, roomID,
			logging.KeyError, err)
	}

	// One watch at a time: established only after the old one is gone.
	cancel, err := remote.NewTimerMirror(e.client, roomID).Watch(ctx, func(t *model.TreatmentTimer) {
		e.post(func() {
			e.onRemoteChangeLocked(roomID, t)
		})
	})
	if err != nil {
		return apperrors.NewSystemErrorWithOp("room switch", "failed to watch remote timer", err)
	}
	e.watchCancel = cancel

	logging.Info("room foregrounded", logging.KeyRoom, roomID)
	return nil
}

// LeaveRoom destroys the room's timer in every store: remote record,
// map entry, and local snapshot. When the left room was foregrounded the
// engine also drops focus entirely.
func (e *Engine) LeaveRoom(ctx context.Context, roomID string) error {
	var err error
	e.do(func() {
		e.stopLocked(roomID, true)
		if e.watchRoom == roomID {
			err = e.switchRoomLocked(ctx, "")
		}
	})
	return err
}

func (e *Engine) teardownWatch() {
	if e.watchCancel != nil {
		e.watchCancel()
		e.watchCancel = nil
	}
}

// onRemoteChangeLocked applies a remote write delivered by the watch.
func (e *Engine) onRemoteChangeLocked(roomID string, remoteTimer *model.TreatmentTimer) {
	if roomID != e.watchRoom {
		// Stale callback from a watch being torn down.
		return
	}
	now := e.now()
	current := e.active[roomID]

	if remoteTimer == nil {
		// Another device stopped the timer.
		if current == nil {
			return
		}
		e.sched.CancelForTimer(current.ID, roomID)
		delete(e.active, roomID)
		if roomID == e.session.CurrentRoomID() {
			e.local.Clear()
			e.display.ClearTimer()
		}
		logging.Info("timer cleared remotely", logging.KeyRoom, roomID)
		return
	}

	if !remoteTimer.IsEffective(now) {
		return
	}

	winner := merge(current, remoteTimer, now)
	if winner == current && current != nil {
		// Our copy outlives the write; push it back so devices converge.
		if remoteTimer.ID != current.ID || !remoteTimer.EndTime.Equal(current.EndTime) {
			if err := remote.NewTimerMirror(e.client, roomID).Set(current); err != nil {
				logging.Error("remote timer repair failed",
					logging.KeyRoom, roomID,
					logging.KeyError, err)
			}
		}
		return
	}

	e.adoptLocked(roomID, winner)
	if roomID == e.session.CurrentRoomID() {
		e.local.Save(winner)
	}
}

// LogsChanged re-evaluates the room after an item's logged state
// changed: nothing left unlogged stops a running timer; something newly
// unlogged while idle starts one with the default duration. Only
// treatment-category items sit in the qualifying set, so changes to any
// other item are ignored; a nil changed item forces a re-evaluation.
func (e *Engine) LogsChanged(roomID string, changed *model.Item) {
	if changed != nil && !changed.IsTreatment() {
		return
	}
	e.do(func() {
		e.logsChangedLocked(roomID)
	})
}

func (e *Engine) logsChangedLocked(roomID string) {
	now := e.now()

	unlogged, err := e.session.QualifyingItemsForToday(roomID)
	if err != nil {
		logging.Error("qualifying item check failed",
			logging.KeyRoom, roomID,
			logging.KeyError, err)
		return
	}

	timer := e.active[roomID]
	running := timer.IsEffective(now)

	switch {
	case running && len(unlogged) == 0:
		logging.Info("all treatment items logged, stopping timer",
			logging.KeyRoom, roomID,
			logging.KeyTimerID, timer.ID)
		e.stopLocked(roomID, true)
	case !running && len(unlogged) > 0:
		if _, err := e.startLocked(roomID, 0); err != nil {
			logging.Error("timer restart failed",
				logging.KeyRoom, roomID,
				logging.KeyError, err)
		}
	}
}

// tickLocked is the periodic expiry check for the foreground room.
func (e *Engine) tickLocked() {
	roomID := e.session.CurrentRoomID()
	if roomID == "" {
		return
	}
	timer := e.active[roomID]
	if timer == nil {
		return
	}

	now := e.now()
	if timer.EndTime.After(now) {
		e.display.UpdateRemaining(timer, timer.Remaining(now))
		return
	}

	expired := timer.Clone()
	e.stopLocked(roomID, true)

	select {
	case e.expired <- ExpiryEvent{RoomID: roomID, Timer: expired}:
	default:
		// Nobody listening; the expiry still happened.
	}
	logging.Info("timer expired",
		logging.KeyRoom, roomID,
		logging.KeyTimerID, expired.ID)
}

// writeThrough installs a timer everywhere it belongs after a start or
// snooze: remote record, in-memory map, and — for the foreground room
// only — local snapshot, display, and presence.
func (e *Engine) writeThrough(roomID string, timer *model.TreatmentTimer) {
	// Optimistic: the map is updated even if the remote write fails;
	// the next reconcile pass repairs the remote side.
	if err := remote.NewTimerMirror(e.client, roomID).Set(timer); err != nil {
		logging.Error("remote timer write failed",
			logging.KeyRoom, roomID,
			logging.KeyError, err)
	}
	e.active[roomID] = timer

	if roomID == e.session.CurrentRoomID() {
		e.local.Save(timer)
		e.display.ShowTimer(timer)
		if e.presence != nil {
			e.presence.Publish(roomID, timer)
		}
	}
}
