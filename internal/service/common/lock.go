//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/go-ps"

	"github.com/oshokin/tauri-release/internal/logger"
)

const (
	// LockFilePrefix starts the name of every release lock in the temporary directory.
	LockFilePrefix = "tauri-release-"

	// FreshLockWindow is how long a lock without a readable owner is honored;
	// a concurrent run may still be writing its PID.
	FreshLockWindow = 10 * time.Second

	lockPermissions = 0o600
)

// ErrReleaseRunning is returned when another release currently holds the lock.
var ErrReleaseRunning = errors.New("another release is running")

// RunLock is an acquired release lock.
type RunLock struct {
	path string
}

// DefaultLockPath returns the lock location for the project in projectDir.
// It lives in the temporary directory, keyed by the absolute project path,
// so it is never part of the working tree.
func DefaultLockPath(projectDir string) (string, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return "", fmt.Errorf("resolve project directory: %w", err)
	}

	key := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(abs)))

	return filepath.Join(os.TempDir(), LockFilePrefix+key.String()+".lock"), nil
}

// AcquireRunLock creates the lock file at path, recording the current PID.
// An empty path means DefaultLockPath of the working directory.
// An existing lock is honored while it is fresh or its owner is a live release
// process; otherwise it is removed and taken over.
func AcquireRunLock(ctx context.Context, path string) (*RunLock, error) {
	if path == "" {
		var err error
		if path, err = DefaultLockPath("."); err != nil {
			return nil, err
		}
	}

	path = filepath.Clean(path)

	logger.DebugKV(ctx, "Checking for a release lock", "path", path)

	if contents, err := os.ReadFile(path); err == nil {
		if held, reason := lockHeld(path, contents); held {
			return nil, fmt.Errorf("%w: %s holds %s", ErrReleaseRunning, reason, path)
		}

		logger.InfoKV(ctx, "Removing stale release lock", "path", path)

		if err = os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale lock: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read lock: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, lockPermissions)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: %s appeared concurrently", ErrReleaseRunning, path)
		}

		return nil, fmt.Errorf("create lock: %w", err)
	}

	_, err = fmt.Fprintf(file, "%d\n%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write lock: %w", err)
	}

	return &RunLock{path: path}, nil
}

// lockHeld decides whether an existing lock still belongs to a running release.
func lockHeld(path string, contents []byte) (bool, string) {
	pid, parsed := lockOwner(contents)
	if !parsed {
		info, err := os.Stat(path)
		if err == nil && time.Since(info.ModTime()) < FreshLockWindow {
			return true, "a release starting right now"
		}

		return false, ""
	}

	if pid == os.Getpid() || !releaseProcessAlive(pid) {
		return false, ""
	}

	return true, "pid " + strconv.Itoa(pid)
}

// Path returns the lock file location.
func (l *RunLock) Path() string {
	return l.path
}

// Release removes the lock file.
func (l *RunLock) Release() error {
	if l == nil {
		return nil
	}

	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}

// lockOwner extracts the PID written on the first line of a lock file.
func lockOwner(contents []byte) (int, bool) {
	fields := strings.Fields(string(contents))
	if len(fields) == 0 {
		return 0, false
	}

	pid, err := strconv.Atoi(fields[0])

	return pid, err == nil
}

// releaseProcessAlive reports whether pid is a live process running the same
// executable as this one, so a PID reused by an unrelated program is not a holder.
func releaseProcessAlive(pid int) bool {
	process, err := ps.FindProcess(pid)
	if err != nil {
		// The process list is unavailable; assume the lock owner still runs.
		return true
	}

	if process == nil {
		return false
	}

	self, err := ps.FindProcess(os.Getpid())
	if err != nil || self == nil {
		return true
	}

	return process.Executable() == self.Executable()
}
