package daemon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	registeredFileName = "registered.json"
	trackedFileName    = "tracked.json"
)

// loadPathSet reads a JSON array of absolute paths from path, returning an
// empty slice if the file does not yet exist.
func loadPathSet(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("daemon: reading %s: %w", path, err)
	}
	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		return nil, fmt.Errorf("daemon: parsing %s: %w", path, err)
	}
	return paths, nil
}

// savePathSet writes paths to path as an indented JSON array, creating any
// missing parent directory.
func savePathSet(path string, paths []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("daemon: creating state directory: %w", err)
	}
	data, err := json.MarshalIndent(paths, "", "  ")
	if err != nil {
		return fmt.Errorf("daemon: marshaling %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("daemon: writing %s: %w", path, err)
	}
	return nil
}
