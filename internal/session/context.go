// Package session supplies the reconciliation engine with its read-only
// inputs: the foregrounded room, each room's qualifying items, and the
// override-aware timer duration.
package session

import (
	"sort"
	"time"

	"github.com/treatclock/treatclock/internal/config"
	"github.com/treatclock/treatclock/internal/model"
	"github.com/treatclock/treatclock/internal/remote"
	"github.com/treatclock/treatclock/internal/storage"
)

// Context answers the engine's questions about rooms and today's logs.
// It owns nothing: mutations go through the repos and the engine only
// reads. Scoped to the process; built on session start, dropped on exit.
type Context struct {
	rooms  *storage.RoomRepo
	items  *storage.ItemRepo
	logs   *storage.DoseLogRepo
	state  *storage.StateRepo
	client remote.Client
	now    func() time.Time
}

// New creates a session context.
func New(rooms *storage.RoomRepo, items *storage.ItemRepo, logs *storage.DoseLogRepo, state *storage.StateRepo, client remote.Client) *Context {
	return &Context{
		rooms:  rooms,
		items:  items,
		logs:   logs,
		state:  state,
		client: client,
		now:    time.Now,
	}
}

// SetClock overrides the context's clock, for tests.
func (c *Context) SetClock(now func() time.Time) {
	c.now = now
}

// Today returns the current day per the session clock.
func (c *Context) Today() time.Time {
	return c.now()
}

// CurrentRoomID returns the foregrounded room id, or "" when none.
func (c *Context) CurrentRoomID() string {
	active, err := c.state.ActiveRoom()
	if err != nil {
		return ""
	}
	return active.RoomID
}

// Room returns the room record.
func (c *Context) Room(roomID string) (*model.Room, error) {
	return c.rooms.Get(roomID)
}

// RoomName returns the room's display name, or the id when unknown.
func (c *Context) RoomName(roomID string) string {
	room, err := c.rooms.Get(roomID)
	if err != nil {
		return roomID
	}
	return room.Name
}

// QualifyingItemsForToday returns the ids of treatment-category items in
// the room that have not been logged today, sorted for stable output.
func (c *Context) QualifyingItemsForToday(roomID string) ([]string, error) {
	treatment, err := c.items.ListTreatment(roomID)
	if err != nil {
		return nil, err
	}

	logged, err := c.logs.LoggedItemIDs(roomID, c.now())
	if err != nil {
		return nil, err
	}

	var unlogged []string
	for _, item := range treatment {
		if !logged[item.ID] {
			unlogged = append(unlogged, item.ID)
		}
	}
	sort.Strings(unlogged)
	return unlogged, nil
}

// EffectiveDuration returns the timer duration for the room: the remote
// override value when enabled, the configured default otherwise. Override
// read failures fall back to the default (a reminder that runs a little
// long beats one that never runs).
func (c *Context) EffectiveDuration(roomID string) time.Duration {
	override, err := remote.NewOverrideMirror(c.client, roomID).Get()
	if err != nil || override == nil {
		return config.Global.Timer.DefaultDuration
	}
	if !override.Enabled {
		return config.Global.Timer.DefaultDuration
	}
	return override.EffectiveDuration()
}
