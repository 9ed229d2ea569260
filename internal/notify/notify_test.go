package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treatclock/treatclock/internal/model"
)

// fakeSink records schedule and cancel calls.
type fakeSink struct {
	mu        sync.Mutex
	scheduled map[string]time.Duration
	canceled  []string
}

func newFakeSink() *fakeSink {
	return &fakeSink{scheduled: make(map[string]time.Duration)}
}

func (s *fakeSink) Schedule(id string, delay time.Duration, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled[id] = delay
	return nil
}

func (s *fakeSink) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scheduled, id)
	s.canceled = append(s.canceled, id)
}

func (s *fakeSink) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.scheduled))
	for id := range s.scheduled {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// fakeMembers is a static MemberSource.
type fakeMembers map[string][]*model.Member

func (f fakeMembers) Members(roomID string) ([]*model.Member, error) {
	return f[roomID], nil
}

// captureDeliverer records delivered notifications.
type captureDeliverer struct {
	mu        sync.Mutex
	delivered []*model.Notification
}

func (d *captureDeliverer) Deliver(ctx context.Context, n *model.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delivered = append(d.delivered, n)
}

func (d *captureDeliverer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.delivered)
}

// =============================================================================
// ID Tests
// =============================================================================

func TestIDRoundTrip(t *testing.T) {
	id := NewID("t1", "r1", "u1")
	assert.Equal(t, "t1_room_r1_user_u1", id.String())

	parsed, ok := ParseID(id.String())
	require.True(t, ok)
	assert.Equal(t, id, parsed)
}

func TestIDWithStructuredParts(t *testing.T) {
	// UUID-shaped components survive the round trip
	id := NewID("550e8400-e29b-41d4-a716-446655440000", "room-a", "user-b")
	parsed, ok := ParseID(id.String())
	require.True(t, ok)
	assert.Equal(t, id.TimerID, parsed.TimerID)
	assert.Equal(t, id.RoomID, parsed.RoomID)
	assert.Equal(t, id.UserID, parsed.UserID)
}

func TestParseIDRejectsForeignFormats(t *testing.T) {
	for _, s := range []string{
		"",
		"t1",
		"t1_r1_u1",
		"t1_room_r1",
		"_room_r1_user_u1",
		"t1_room__user_u1",
	} {
		_, ok := ParseID(s)
		assert.False(t, ok, "input %q", s)
	}
}

func TestIDMatches(t *testing.T) {
	id := NewID("t1", "r1", "u1")
	assert.True(t, id.Matches("t1", "r1"))
	assert.False(t, id.Matches("t1", "r2"))
	assert.False(t, id.Matches("t2", "r1"))
}

// =============================================================================
// Scheduler Tests
// =============================================================================

func TestScheduleForTimerFansOut(t *testing.T) {
	sink := newFakeSink()
	members := fakeMembers{"r1": {
		{UserID: "u1", NotificationsEnabled: true},
		{UserID: "u2", NotificationsEnabled: true},
		{UserID: "u3", NotificationsEnabled: false},
	}}
	sched := NewScheduler(sink, members)

	timer := model.NewTreatmentTimer(time.Now().Add(time.Minute), nil, "Family")
	ids, err := sched.ScheduleForTimer(timer, "r1", time.Minute)
	require.NoError(t, err)

	// One id per opted-in member, none for the opted-out one
	require.Len(t, ids, 2)
	assert.Contains(t, ids, NewID(timer.ID, "r1", "u1").String())
	assert.Contains(t, ids, NewID(timer.ID, "r1", "u2").String())
	assert.Len(t, sink.Pending(), 2)
}

func TestScheduleForTimerClampsDelay(t *testing.T) {
	sink := newFakeSink()
	members := fakeMembers{"r1": {{UserID: "u1", NotificationsEnabled: true}}}
	sched := NewScheduler(sink, members)

	timer := model.NewTreatmentTimer(time.Now(), nil, "")
	ids, err := sched.ScheduleForTimer(timer, "r1", -5*time.Second)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	assert.GreaterOrEqual(t, sink.scheduled[ids[0]], time.Second)
}

func TestScheduleForTimerEmptyRoom(t *testing.T) {
	sink := newFakeSink()
	sched := NewScheduler(sink, fakeMembers{})

	timer := model.NewTreatmentTimer(time.Now().Add(time.Minute), nil, "")
	ids, err := sched.ScheduleForTimer(timer, "r1", time.Minute)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCancelForTimer(t *testing.T) {
	sink := newFakeSink()
	members := fakeMembers{
		"r1": {{UserID: "u1", NotificationsEnabled: true}},
		"r2": {{UserID: "u1", NotificationsEnabled: true}},
	}
	sched := NewScheduler(sink, members)

	mine := model.NewTreatmentTimer(time.Now().Add(time.Minute), nil, "")
	other := model.NewTreatmentTimer(time.Now().Add(time.Minute), nil, "")

	_, err := sched.ScheduleForTimer(mine, "r1", time.Minute)
	require.NoError(t, err)
	_, err = sched.ScheduleForTimer(other, "r2", time.Minute)
	require.NoError(t, err)

	sched.CancelForTimer(mine.ID, "r1")

	// Only the other timer's notification remains
	pending := sink.Pending()
	require.Len(t, pending, 1)
	parsed, ok := ParseID(pending[0])
	require.True(t, ok)
	assert.Equal(t, other.ID, parsed.TimerID)

	// Idempotent
	sched.CancelForTimer(mine.ID, "r1")
	assert.Len(t, sink.Pending(), 1)
}

func TestCancelForTimerLegacyPrefix(t *testing.T) {
	sink := newFakeSink()
	sched := NewScheduler(sink, fakeMembers{})

	// A record written by an older build: raw timer id prefix, no
	// structured parts
	require.NoError(t, sink.Schedule("t1-legacy-suffix", time.Minute, nil))
	require.NoError(t, sink.Schedule("t2-other", time.Minute, nil))

	sched.CancelForTimer("t1", "r1")

	pending := sink.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "t2-other", pending[0])
}

// =============================================================================
// TimerSink Tests
// =============================================================================

func TestTimerSinkFires(t *testing.T) {
	d := &captureDeliverer{}
	sink := NewTimerSink(d)
	defer sink.Close()

	n := model.NewNotification(model.NotifyTimerDone, "Done", "")
	require.NoError(t, sink.Schedule("n1", 10*time.Millisecond, n))
	assert.Equal(t, []string{"n1"}, sink.Pending())

	require.Eventually(t, func() bool { return d.count() == 1 },
		2*time.Second, 5*time.Millisecond)
	assert.Empty(t, sink.Pending())
}

func TestTimerSinkCancel(t *testing.T) {
	d := &captureDeliverer{}
	sink := NewTimerSink(d)
	defer sink.Close()

	n := model.NewNotification(model.NotifyTimerDone, "Done", "")
	require.NoError(t, sink.Schedule("n1", 50*time.Millisecond, n))
	sink.Cancel("n1")
	assert.Empty(t, sink.Pending())

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, d.count())

	// Unknown ids are a no-op
	sink.Cancel("ghost")
}

func TestTimerSinkRescheduleReplaces(t *testing.T) {
	d := &captureDeliverer{}
	sink := NewTimerSink(d)
	defer sink.Close()

	n := model.NewNotification(model.NotifyTimerDone, "Done", "")
	require.NoError(t, sink.Schedule("n1", 10*time.Millisecond, n))
	require.NoError(t, sink.Schedule("n1", 30*time.Millisecond, n))
	assert.Len(t, sink.Pending(), 1)

	require.Eventually(t, func() bool { return d.count() == 1 },
		2*time.Second, 5*time.Millisecond)

	// The replaced schedule never fires a second delivery
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, d.count())
}

// =============================================================================
// GenericFormatter Tests
// =============================================================================

func TestGenericFormatterDefaultPayload(t *testing.T) {
	n := model.NewNotification(model.NotifyTimerDone, "Done", "Timer finished")
	n.Fields = map[string]string{"room": "Family"}

	data, err := (&GenericFormatter{}).Format(n)
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "timer_done", payload["type"])
	assert.Equal(t, "Done", payload["title"])
	assert.Equal(t, n.Timestamp.UTC().Format(time.RFC3339), payload["timestamp"])
	assert.NotZero(t, payload["color"])
}

func TestGenericFormatterTemplateSeesResolvedColor(t *testing.T) {
	n := model.NewNotification(model.NotifyTimerDone, "Done", "")

	f := &GenericFormatter{Template: `{{.Title}}:{{.Color}}`}
	data, err := f.Format(n)
	require.NoError(t, err)

	// A zero notification color resolves to the type default before the
	// template runs
	assert.Equal(t, fmt.Sprintf("Done:%d", model.DefaultColorForType(model.NotifyTimerDone)), string(data))
}

func TestGenericFormatterBadTemplate(t *testing.T) {
	f := &GenericFormatter{Template: `{{.Title`}
	_, err := f.Format(model.NewNotification(model.NotifyTest, "t", ""))
	assert.Error(t, err)
}
