package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// LockFileName is the name of the lock file in the data directory.
const LockFileName = "treatclock.lock"

// ErrLockHeld is returned when another process has the data directory open.
var ErrLockHeld = errors.New("data directory is locked by another process")

// FileLock is a flock-based single-instance guard for the data
// directory. The watch daemon keeps Badger open for its whole run;
// without the guard a concurrent invocation dies on Badger's own
// directory lock with a raw error. The kernel drops a flock when its
// holder exits, so a crashed holder never wedges the directory; the
// recorded pid is diagnostic only.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a lock for the given data directory.
func NewFileLock(dir string) *FileLock {
	return &FileLock{path: filepath.Join(dir, LockFileName)}
}

// Acquire takes the lock without blocking. When another process holds
// it, the returned error wraps ErrLockHeld and names the holder's pid
// when known.
func (l *FileLock) Acquire() error {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		file.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			if pid := l.holderPID(); pid > 0 {
				return fmt.Errorf("%w (pid %d)", ErrLockHeld, pid)
			}
			return ErrLockHeld
		}
		return err
	}

	if err := file.Truncate(0); err == nil {
		fmt.Fprintf(file, "%d\n", os.Getpid())
		file.Sync()
	}

	l.file = file
	return nil
}

// Release drops the lock and removes the lock file. Releasing an
// unheld lock is a no-op.
func (l *FileLock) Release() error {
	if l.file == nil {
		return nil
	}

	syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	err := l.file.Close()
	l.file = nil

	if rmErr := os.Remove(l.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}

// holderPID reads the pid recorded by the current holder, 0 when
// unknown.
func (l *FileLock) holderPID() int {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0
	}
	return pid
}
