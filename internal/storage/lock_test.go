package storage

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// FileLock Tests
// =============================================================================

func TestFileLockRoundTrip(t *testing.T) {
	dir := t.TempDir()
	lock := NewFileLock(dir)

	require.NoError(t, lock.Acquire())
	_, err := os.Stat(filepath.Join(dir, LockFileName))
	require.NoError(t, err)

	require.NoError(t, lock.Release())
	_, err = os.Stat(filepath.Join(dir, LockFileName))
	assert.True(t, os.IsNotExist(err))
}

func TestFileLockRefusesSecondHolder(t *testing.T) {
	dir := t.TempDir()
	first := NewFileLock(dir)
	require.NoError(t, first.Acquire())
	defer first.Release()

	second := NewFileLock(dir)
	err := second.Acquire()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLockHeld)
	assert.Contains(t, err.Error(), strconv.Itoa(os.Getpid()))
}

func TestFileLockReacquireAfterRelease(t *testing.T) {
	dir := t.TempDir()
	lock := NewFileLock(dir)

	require.NoError(t, lock.Acquire())
	require.NoError(t, lock.Release())
	require.NoError(t, lock.Acquire())
	require.NoError(t, lock.Release())
}

func TestFileLockReleaseWithoutAcquire(t *testing.T) {
	assert.NoError(t, NewFileLock(t.TempDir()).Release())
}
