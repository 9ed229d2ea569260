package model

import (
	"fmt"
	"sort"
	"time"
)

// Member is a user's membership record inside a room.
type Member struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	// NotificationsEnabled is the per-room preference gating whether
	// treatment timer notifications are scheduled for this member.
	NotificationsEnabled bool      `json:"notifications_enabled"`
	SuperAdmin           bool      `json:"super_admin"`
	JoinedAt             time.Time `json:"joined_at"`
}

// Room is a shared collaborative session for one participant's program.
type Room struct {
	Key       string             `json:"key"`
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Members   map[string]*Member `json:"members,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// SetKey sets the database key for this room.
func (r *Room) SetKey(key string) {
	r.Key = key
}

// GetKey returns the database key for this room.
func (r *Room) GetKey() string {
	return r.Key
}

// NewRoom creates a room with the given id and display name.
func NewRoom(id, name string) *Room {
	return &Room{
		Key:       GenerateRoomKey(id),
		ID:        id,
		Name:      name,
		Members:   make(map[string]*Member),
		CreatedAt: time.Now(),
	}
}

// Member returns the membership record for the given user, or nil.
func (r *Room) Member(userID string) *Member {
	if r.Members == nil {
		return nil
	}
	return r.Members[userID]
}

// AddMember adds or replaces a membership record.
func (r *Room) AddMember(m *Member) {
	if r.Members == nil {
		r.Members = make(map[string]*Member)
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	r.Members[m.UserID] = m
}

// RemoveMember removes a member from the room.
func (r *Room) RemoveMember(userID string) {
	delete(r.Members, userID)
}

// IsSuperAdmin returns true if the given user is a super admin of the room.
func (r *Room) IsSuperAdmin(userID string) bool {
	m := r.Member(userID)
	return m != nil && m.SuperAdmin
}

// SortedMembers returns the members ordered by user id for stable output.
func (r *Room) SortedMembers() []*Member {
	members := make([]*Member, 0, len(r.Members))
	for _, m := range r.Members {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].UserID < members[j].UserID
	})
	return members
}

// GenerateRoomKey generates a database key for a room.
func GenerateRoomKey(id string) string {
	return fmt.Sprintf("%s:%s", PrefixRoom, id)
}

// ActiveRoom is a singleton that tracks the currently foregrounded room.
type ActiveRoom struct {
	Key    string `json:"key"`
	RoomID string `json:"room_id,omitempty"`
}

// SetKey sets the database key for this active room record.
func (a *ActiveRoom) SetKey(key string) {
	a.Key = key
}

// GetKey returns the database key for this active room record.
func (a *ActiveRoom) GetKey() string {
	return a.Key
}

// NewActiveRoom creates a new active room singleton.
func NewActiveRoom() *ActiveRoom {
	return &ActiveRoom{Key: KeyActiveRoom}
}

// HasRoom returns true if a room is currently selected.
func (a *ActiveRoom) HasRoom() bool {
	return a.RoomID != ""
}

// Profile is a singleton identifying the local user on this device.
type Profile struct {
	Key    string `json:"key"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// SetKey sets the database key for this profile record.
func (p *Profile) SetKey(key string) {
	p.Key = key
}

// GetKey returns the database key for this profile record.
func (p *Profile) GetKey() string {
	return p.Key
}
