//go:build windows

package timeline

import "os"

// withSharedLock on Windows relies on the OS's default share-mode
// semantics for an open-for-read handle; no separate advisory lock call is
// needed or available via the stdlib.
func withSharedLock(path string, fn func(*os.File) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}
