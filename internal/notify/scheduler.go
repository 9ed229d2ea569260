package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/treatclock/treatclock/internal/config"
	"github.com/treatclock/treatclock/internal/logging"
	"github.com/treatclock/treatclock/internal/model"
)

// MemberSource supplies the membership of a room. The room repository
// implements it.
type MemberSource interface {
	Members(roomID string) ([]*model.Member, error)
}

// Scheduler fans a timer out into one scheduled notification per room
// member whose per-room preference allows it, and cancels them by timer.
type Scheduler struct {
	sink    Sink
	members MemberSource
}

// NewScheduler creates a scheduler over the given sink and member source.
func NewScheduler(sink Sink, members MemberSource) *Scheduler {
	return &Scheduler{sink: sink, members: members}
}

// ScheduleForTimer schedules the timer's notifications and returns the
// full identifier set. The fan-out completes before returning, so the
// returned ids are exhaustive and later cancellation needs no guesswork.
func (s *Scheduler) ScheduleForTimer(timer *model.TreatmentTimer, roomID string, delay time.Duration) ([]string, error) {
	if delay < config.Global.Timer.MinScheduleDelay {
		// The platform scheduler refuses zero delays.
		delay = config.Global.Timer.MinScheduleDelay
	}

	members, err := s.members.Members(roomID)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, m := range members {
		if !m.NotificationsEnabled {
			continue
		}

		id := NewID(timer.ID, roomID, m.UserID).String()
		n := timerNotification(timer)
		if err := s.sink.Schedule(id, delay, n); err != nil {
			logging.Error("notification schedule failed",
				logging.KeyNotificationID, id,
				logging.KeyError, err)
			continue
		}
		ids = append(ids, id)
	}

	logging.DebugLog("timer notifications scheduled",
		logging.KeyTimerID, timer.ID,
		logging.KeyRoom, roomID,
		logging.KeyCount, len(ids))
	return ids, nil
}

// CancelForTimer cancels every pending notification belonging to the
// timer in the room: structured-id matches by field equality, plus any
// identifier with the timer id as raw prefix, kept for records written by
// older builds. Idempotent.
func (s *Scheduler) CancelForTimer(timerID, roomID string) {
	for _, raw := range s.sink.Pending() {
		if id, ok := ParseID(raw); ok {
			if id.Matches(timerID, roomID) {
				s.sink.Cancel(raw)
			}
			continue
		}
		if strings.HasPrefix(raw, timerID) {
			s.sink.Cancel(raw)
		}
	}
}

// timerNotification builds the delivery payload for a fired timer.
func timerNotification(timer *model.TreatmentTimer) *model.Notification {
	room := timer.RoomName
	if room == "" {
		room = "your room"
	}
	n := model.NewNotification(
		model.NotifyTimerDone,
		"Treatment timer finished",
		fmt.Sprintf("The treatment timer for %s is done. Check for reactions and log observations.", room),
	)
	n.WithField("room", room)
	n.WithField("timer_id", timer.ID)
	return n
}
