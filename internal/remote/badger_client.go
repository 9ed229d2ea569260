package remote

import (
	"context"
	"errors"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/pb"

	"github.com/treatclock/treatclock/internal/logging"
	"github.com/treatclock/treatclock/internal/storage"
)

// BadgerClient implements Client over a Badger database, using Badger's
// Subscribe for watches. Pointed at shared storage it stands in for the
// managed realtime backend; in tests it runs in memory.
type BadgerClient struct {
	db *storage.DB
}

// NewBadgerClient creates a client over the given database.
func NewBadgerClient(db *storage.DB) *BadgerClient {
	return &BadgerClient{db: db}
}

// Get reads the record at path.
func (c *BadgerClient) Get(path string) ([]byte, error) {
	data, err := c.db.GetBytes(path)
	if err != nil {
		if storage.IsErrKeyNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set writes the record at path.
func (c *BadgerClient) Set(path string, value []byte) error {
	return c.db.SetBytes(path, value)
}

// Remove deletes the record at path.
func (c *BadgerClient) Remove(path string) error {
	err := c.db.Delete(path)
	if err != nil && errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

// Watch subscribes to writes on path. Badger delivers this client's own
// writes too, matching the echo behavior of the realtime backend.
func (c *BadgerClient) Watch(ctx context.Context, path string, fn func(value []byte)) (CancelFunc, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		err := c.db.Badger().Subscribe(watchCtx, func(kvs *badger.KVList) error {
			for _, kv := range kvs.Kv {
				if string(kv.Key) != path {
					continue
				}
				if len(kv.Value) == 0 {
					// Tombstone: the record was removed.
					fn(nil)
					continue
				}
				value := make([]byte, len(kv.Value))
				copy(value, kv.Value)
				fn(value)
			}
			return nil
		}, []pb.Match{{Prefix: []byte(path)}})
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error("remote watch ended",
				"path", path,
				logging.KeyError, err)
		}
	}()

	return func() {
		cancel()
		<-done
	}, nil
}
