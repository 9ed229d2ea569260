package storage

import (
	"github.com/google/uuid"

	"github.com/treatclock/treatclock/internal/model"
)

// StateRepo provides operations for the device-local singletons: the
// user profile and the currently foregrounded room.
type StateRepo struct {
	db *DB
}

// NewStateRepo creates a new state repository.
func NewStateRepo(db *DB) *StateRepo {
	return &StateRepo{db: db}
}

// Profile retrieves the local user profile, creating one on first use.
func (r *StateRepo) Profile() (*model.Profile, error) {
	profile := &model.Profile{}
	err := r.db.Get(model.KeyProfile, profile)
	if err == nil {
		return profile, nil
	}
	if !IsErrKeyNotFound(err) {
		return nil, err
	}

	profile = &model.Profile{
		Key:    model.KeyProfile,
		UserID: uuid.New().String(),
	}
	if err := r.db.Set(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// SaveProfile persists the local user profile.
func (r *StateRepo) SaveProfile(profile *model.Profile) error {
	profile.Key = model.KeyProfile
	return r.db.Set(profile)
}

// ActiveRoom retrieves the active room singleton.
func (r *StateRepo) ActiveRoom() (*model.ActiveRoom, error) {
	active := model.NewActiveRoom()
	err := r.db.Get(model.KeyActiveRoom, active)
	if err != nil {
		if IsErrKeyNotFound(err) {
			return active, nil
		}
		return nil, err
	}
	return active, nil
}

// SetActiveRoom records the given room as foregrounded.
func (r *StateRepo) SetActiveRoom(roomID string) error {
	active, err := r.ActiveRoom()
	if err != nil {
		return err
	}
	active.RoomID = roomID
	return r.db.Set(active)
}

// ClearActiveRoom clears the foregrounded room.
func (r *StateRepo) ClearActiveRoom() error {
	return r.SetActiveRoom("")
}
