package curate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoInput is returned by Discover when the directory holds no .json files.
var ErrNoInput = errors.New("no .json files found")

// Discover lists the .json files directly inside dir, in directory-listing
// order. Subdirectories are not descended into.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("curate: read input dir %q: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("curate: input dir %q: %w", dir, ErrNoInput)
	}
	return paths, nil
}
