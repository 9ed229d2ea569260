package localstore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/treatclock/treatclock/internal/model"
)

// timerFileName is the on-disk name of the timer snapshot.
const timerFileName = "treatment_timer.json"

// FileSource persists the timer state as a JSON file. Writes go through a
// temp file and rename so a crash never leaves a half-written record.
type FileSource struct {
	path string
}

// NewFileSource creates a file source at the given path. An empty path
// uses the default location under the XDG state directory.
func NewFileSource(path string) *FileSource {
	if path == "" {
		path = filepath.Join(xdg.StateHome, "treatclock", timerFileName)
	}
	return &FileSource{path: path}
}

// Name identifies the source in logs.
func (s *FileSource) Name() string {
	return "file"
}

// Path returns the snapshot file path.
func (s *FileSource) Path() string {
	return s.path
}

// Load reads and parses the snapshot file.
func (s *FileSource) Load() (*model.TimerState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
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

// Save writes the snapshot atomically.
func (s *FileSource) Save(state *model.TimerState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), timerFileName+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, s.path)
}

// Clear removes the snapshot file.
func (s *FileSource) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
