package storage

import (
	"github.com/google/uuid"

	apperrors "github.com/treatclock/treatclock/internal/errors"
	"github.com/treatclock/treatclock/internal/model"
)

// RoomRepo provides operations for Room entities.
type RoomRepo struct {
	db *DB
}

// NewRoomRepo creates a new room repository.
func NewRoomRepo(db *DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// Create creates a new room with a generated id. The creating user becomes
// a super admin with notifications enabled.
func (r *RoomRepo) Create(name, ownerID, ownerName string) (*model.Room, error) {
	room := model.NewRoom(uuid.New().String(), name)
	room.AddMember(&model.Member{
		UserID:               ownerID,
		Name:                 ownerName,
		NotificationsEnabled: true,
		SuperAdmin:           true,
	})
	if err := r.db.Set(room); err != nil {
		return nil, err
	}
	return room, nil
}

// Get retrieves a room by id.
func (r *RoomRepo) Get(roomID string) (*model.Room, error) {
	room := &model.Room{}
	if err := r.db.Get(model.GenerateRoomKey(roomID), room); err != nil {
		if IsErrKeyNotFound(err) {
			return nil, apperrors.ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// Save persists a room.
func (r *RoomRepo) Save(room *model.Room) error {
	if room.Key == "" {
		room.Key = model.GenerateRoomKey(room.ID)
	}
	return r.db.Set(room)
}

// List returns all rooms known to this device.
func (r *RoomRepo) List() ([]*model.Room, error) {
	return GetAllByPrefix(r.db, model.PrefixRoom+":", func() *model.Room {
		return &model.Room{}
	})
}

// Join adds a member to a room.
func (r *RoomRepo) Join(roomID string, member *model.Member) error {
	room, err := r.Get(roomID)
	if err != nil {
		return err
	}
	if room.Member(member.UserID) != nil {
		return apperrors.ErrAlreadyMember
	}
	room.AddMember(member)
	return r.Save(room)
}

// Leave removes a member from a room.
func (r *RoomRepo) Leave(roomID, userID string) error {
	room, err := r.Get(roomID)
	if err != nil {
		return err
	}
	if room.Member(userID) == nil {
		return apperrors.ErrNotMember
	}
	room.RemoveMember(userID)
	return r.Save(room)
}

// Members returns the membership records for a room. Implements the
// notify.MemberSource interface.
func (r *RoomRepo) Members(roomID string) ([]*model.Member, error) {
	room, err := r.Get(roomID)
	if err != nil {
		return nil, err
	}
	return room.SortedMembers(), nil
}

// SetNotificationsEnabled updates a member's per-room notification preference.
func (r *RoomRepo) SetNotificationsEnabled(roomID, userID string, enabled bool) error {
	room, err := r.Get(roomID)
	if err != nil {
		return err
	}
	m := room.Member(userID)
	if m == nil {
		return apperrors.ErrNotMember
	}
	m.NotificationsEnabled = enabled
	return r.Save(room)
}
