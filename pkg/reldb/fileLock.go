package reldb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// fileLock provides advisory, inode-verified exclusive locking on a
// table's backing file, trimmed down to the single exclusive-lock
// case the storage manager needs: the engine models a single-threaded
// cooperative core, but still wants to guard against two processes
// racing on the same heap file.
//
// There is no shared/read-lock mode - the locking model here is
// "mutually exclusive", not "readers don't block writers". Unlike a
// plain blocking flock, acquisition is bounded by
// [EngineConfig.LockTimeout]: the call polls with a non-blocking
// flock and a short backoff rather than parking in the kernel
// indefinitely, so a wedged holder surfaces as [errLockTimeout]
// instead of hanging the caller forever.

// tableLock is a held advisory lock. Call [tableLock.unlock] to
// release it.
type tableLock struct {
	file *os.File
}

var (
	errLockInodeMismatch = errors.New("reldb: lock file replaced during acquisition")
	errLockTimeout       = errors.New("reldb: timed out waiting for table lock")
)

// lockTableFile acquires an exclusive advisory lock on path+".lock",
// polling until available or until timeout elapses, verifying the
// lock file's identity was not replaced out from under the
// acquisition. Fails with [errLockTimeout] if the lock is not
// acquired within timeout.
func lockTableFile(path string, timeout time.Duration) (*tableLock, error) {
	lockPath := path + ".lock"
	deadline := time.Now().Add(timeout)
	backoff := time.Millisecond

	const maxBackoff = 25 * time.Millisecond

	for {
		lock, retry, err := tryLockTableFile(lockPath)
		if err != nil {
			return nil, err
		}

		if !retry {
			return lock, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s after %s", errLockTimeout, lockPath, timeout)
		}

		time.Sleep(backoff)

		if backoff < maxBackoff {
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}

// tryLockTableFile makes a single non-blocking acquisition attempt.
// retry is true when the caller should back off and try again -
// either the lock is currently held elsewhere, or the lock file's
// identity changed mid-acquisition.
func tryLockTableFile(lockPath string) (lock *tableLock, retry bool, err error) {
	f, err := openLockFile(lockPath)
	if err != nil {
		return nil, false, newIOError(err, "open lock file %s", lockPath)
	}

	err = flockRetryEINTR(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if err != nil {
		f.Close()

		if errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, true, nil
		}

		return nil, false, newIOError(err, "flock %s", lockPath)
	}

	match, err := inodeMatches(lockPath, f)
	if err != nil {
		_ = flockRetryEINTR(int(f.Fd()), syscall.LOCK_UN)
		f.Close()

		if errors.Is(err, os.ErrNotExist) {
			return nil, true, nil
		}

		return nil, false, newIOError(err, "verify lock identity %s", lockPath)
	}

	if !match {
		_ = flockRetryEINTR(int(f.Fd()), syscall.LOCK_UN)
		f.Close()

		return nil, true, nil
	}

	return &tableLock{file: f}, false, nil
}

// unlock releases the lock and closes the underlying descriptor. Safe
// to call on nil and idempotent.
func (l *tableLock) unlock() error {
	if l == nil || l.file == nil {
		return nil
	}

	fd := int(l.file.Fd())
	unlockErr := flockRetryEINTR(fd, syscall.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	if unlockErr != nil {
		return fmt.Errorf("unlock: %w", unlockErr)
	}

	return closeErr
}

func openLockFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return f, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	return os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
}

func inodeMatches(path string, f *os.File) (bool, error) {
	openInfo, err := f.Stat()
	if err != nil {
		return false, err
	}

	pathInfo, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	openSys, ok := openInfo.Sys().(*syscall.Stat_t)
	if !ok {
		return false, fmt.Errorf("unsupported Stat_t type %T", openInfo.Sys())
	}

	pathSys, ok := pathInfo.Sys().(*syscall.Stat_t)
	if !ok {
		return false, fmt.Errorf("unsupported Stat_t type %T", pathInfo.Sys())
	}

	return openSys.Dev == pathSys.Dev && openSys.Ino == pathSys.Ino, nil
}

// flockRetryEINTR wraps syscall.Flock, retrying on EINTR for
// signal-interrupted blocking syscalls.
func flockRetryEINTR(fd, how int) error {
	const maxRetries = 10000

	var err error

	for range maxRetries {
		err = syscall.Flock(fd, how)
		if err == nil || !errors.Is(err, syscall.EINTR) {
			return err
		}
	}

	return err
}
