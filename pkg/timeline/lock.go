//go:build !windows

package timeline

import (
	"os"

	"golang.org/x/sys/unix"
)

// withSharedLock opens path, takes a shared (read) advisory lock on it for
// the duration of fn, and releases the lock before returning. This matches
// spec §5's "file contents being chunked are read under a shared lock" rule.
func withSharedLock(path string, fn func(*os.File) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_SH); err != nil {
		return err
	}
	defer unix.Flock(int(f.Fd()), unix.LOCK_UN)

	return fn(f)
}
