package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// WalkDirectory walks root and returns every file whose extension is in exts
// (pdf and txt when empty). Hidden files and directories are skipped when
// skipHidden is set. Unreadable entries are counted as failures and the walk
// continues.
func WalkDirectory(root string, exts []string, skipHidden bool) ([]string, DirStats, []FileError, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, nil, errors.New("root_path is required")
	}
	allowed := extSet(exts)

	var (
		paths    []string
		stats    DirStats
		failures []FileError
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			stats.Failed++
			failures = append(failures, FileError{Path: path, Err: walkErr.Error()})
			return nil
		}
		if path != root && skipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			stats.Skipped++
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if !d.Type().IsRegular() || !AllowedExt(path, allowed) {
			stats.Skipped++
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return paths, stats, failures, fmt.Errorf("walk: %w", err)
	}
	return paths, stats, failures, nil
}
