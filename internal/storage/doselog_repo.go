package storage

import (
	"time"

	"github.com/treatclock/treatclock/internal/model"
)

// DoseLogRepo provides operations for DoseLog entities.
type DoseLogRepo struct {
	db *DB
}

// NewDoseLogRepo creates a new dose log repository.
func NewDoseLogRepo(db *DB) *DoseLogRepo {
	return &DoseLogRepo{db: db}
}

// Log records that an item was consumed today. Logging an already-logged
// item overwrites the existing record.
func (r *DoseLogRepo) Log(roomID, itemID, userID string, day time.Time) (*model.DoseLog, error) {
	log := model.NewDoseLog(roomID, itemID, userID, day)
	if err := r.db.Set(log); err != nil {
		return nil, err
	}
	return log, nil
}

// Unlog removes an item's consumption record for the given day.
// Removing a record that does not exist is a no-op.
func (r *DoseLogRepo) Unlog(roomID, itemID string, day time.Time) error {
	key := model.GenerateDoseLogKey(roomID, day.Format(model.DateLayout), itemID)
	return r.db.Delete(key)
}

// LoggedItemIDs returns the set of item ids logged in a room on the given day.
func (r *DoseLogRepo) LoggedItemIDs(roomID string, day time.Time) (map[string]bool, error) {
	prefix := model.DoseLogKeyPrefix(roomID, day.Format(model.DateLayout))
	logs, err := GetAllByPrefix(r.db, prefix, func() *model.DoseLog {
		return &model.DoseLog{}
	})
	if err != nil {
		return nil, err
	}
	logged := make(map[string]bool, len(logs))
	for _, l := range logs {
		logged[l.ItemID] = true
	}
	return logged, nil
}

// IsLogged returns true if the item was logged in the room on the given day.
func (r *DoseLogRepo) IsLogged(roomID, itemID string, day time.Time) (bool, error) {
	key := model.GenerateDoseLogKey(roomID, day.Format(model.DateLayout), itemID)
	return r.db.Exists(key)
}
