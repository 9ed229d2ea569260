package storage

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/treatclock/treatclock/internal/errors"
	"github.com/treatclock/treatclock/internal/model"
)

// ItemRepo provides operations for Item entities.
type ItemRepo struct {
	db *DB
}

// NewItemRepo creates a new item repository.
func NewItemRepo(db *DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// Create creates a new item in a room with a generated id.
func (r *ItemRepo) Create(roomID, name, category string) (*model.Item, error) {
	if !model.ValidCategory(category) {
		return nil, apperrors.ErrInvalidCategory
	}
	item := &model.Item{
		ID:        uuid.New().String(),
		RoomID:    roomID,
		Name:      name,
		Category:  category,
		CreatedAt: time.Now(),
	}
	item.Key = model.GenerateItemKey(roomID, item.ID)
	if err := r.db.Set(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get retrieves an item by room and id.
func (r *ItemRepo) Get(roomID, itemID string) (*model.Item, error) {
	item := &model.Item{}
	if err := r.db.Get(model.GenerateItemKey(roomID, itemID), item); err != nil {
		if IsErrKeyNotFound(err) {
			return nil, apperrors.ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// ListByRoom returns all items in a room.
func (r *ItemRepo) ListByRoom(roomID string) ([]*model.Item, error) {
	return GetAllByPrefix(r.db, model.ItemKeyPrefix(roomID), func() *model.Item {
		return &model.Item{}
	})
}

// ListTreatment returns the treatment-category items in a room.
func (r *ItemRepo) ListTreatment(roomID string) ([]*model.Item, error) {
	items, err := r.ListByRoom(roomID)
	if err != nil {
		return nil, err
	}
	var treatment []*model.Item
	for _, item := range items {
		if item.IsTreatment() {
			treatment = append(treatment, item)
		}
	}
	return treatment, nil
}

// Delete removes an item from a room.
func (r *ItemRepo) Delete(roomID, itemID string) error {
	return r.db.Delete(model.GenerateItemKey(roomID, itemID))
}

// FindByName returns the first item in the room whose name matches, or
// ErrItemNotFound. Names are the CLI-facing handle; ids are internal.
func (r *ItemRepo) FindByName(roomID, name string) (*model.Item, error) {
	items, err := r.ListByRoom(roomID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.Name == name || item.ID == name {
			return item, nil
		}
	}
	return nil, apperrors.ErrItemNotFound
}
