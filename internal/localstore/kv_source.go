package localstore

import (
	"encoding/json"

	"github.com/treatclock/treatclock/internal/model"
	"github.com/treatclock/treatclock/internal/storage"
)

// kvStateKey is the database key the fallback snapshot lives under.
const kvStateKey = "treatment_timer_state"

// KVSource persists the timer state under a key in the local database.
// It is the fallback tier: either store may be evicted independently, so
// the snapshot is mirrored in both.
type KVSource struct {
	db *storage.DB
}

// NewKVSource creates a key-value source over the given database.
func NewKVSource(db *storage.DB) *KVSource {
	return &KVSource{db: db}
}

// Name identifies the source in logs.
func (s *KVSource) Name() string {
	return "kv"
}

// Load reads and parses the snapshot record.
func (s *KVSource) Load() (*model.TimerState, error) {
	data, err := s.db.GetBytes(kvStateKey)
	if err != nil {
		if storage.IsErrKeyNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	state := &model.TimerState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Save writes the snapshot record.
func (s *KVSource) Save(state *model.TimerState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.db.SetBytes(kvStateKey, data)
}

// Clear removes the snapshot record.
func (s *KVSource) Clear() error {
	return s.db.Delete(kvStateKey)
}
