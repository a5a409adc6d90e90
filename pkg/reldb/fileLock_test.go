package reldb

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_LockTableFile_Acquires_And_Releases(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "students.tbl")

	lock, err := lockTableFile(path, time.Second)
	require.NoError(t, err)
	require.NotNil(t, lock)

	require.NoError(t, lock.unlock())
}

func Test_LockTableFile_Second_Acquirer_Times_Out_While_Held(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "students.tbl")

	held, err := lockTableFile(path, time.Second)
	require.NoError(t, err)

	defer held.unlock()

	_, err = lockTableFile(path, 50*time.Millisecond)
	require.Error(t, err)
	require.True(t, errors.Is(err, errLockTimeout))
}

func Test_LockTableFile_Second_Acquirer_Succeeds_After_Release(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "students.tbl")

	held, err := lockTableFile(path, time.Second)
	require.NoError(t, err)

	released := make(chan struct{})

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = held.unlock()
		close(released)
	}()

	lock, err := lockTableFile(path, time.Second)
	require.NoError(t, err)
	<-released

	require.NoError(t, lock.unlock())
}

func Test_StorageManager_AcquireLock_Respects_LockTimeout(t *testing.T) {
	t.Parallel()

	cat := NewCatalog()
	cfg := DefaultEngineConfig()
	cfg.LockTimeout = 50 * time.Millisecond

	sm := NewStorageManager(cat, cfg)

	schema := studentsSchema(tablePath(t, "students"))
	require.NoError(t, sm.CreateTable(schema))

	held, err := lockTableFile(schema.Path, time.Second)
	require.NoError(t, err)

	defer held.unlock()

	_, err = sm.acquireLock(schema.Path)
	require.Error(t, err)
	require.True(t, errors.Is(err, errLockTimeout))
}
