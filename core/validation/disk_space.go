package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"aura_backend/core"
)

// MinFreeBytes is the free space below which the data directory check warns.
const MinFreeBytes = 100 * core.BytesPerMB

// DiskSpaceInfo contains information about disk space.
type DiskSpaceInfo struct {
	Path  string
	Total int64
	Free  int64
}

// DiskSpaceError indicates a disk space problem.
type DiskSpaceError struct {
	Path      string
	Required  int64
	Available int64
}

func (e *DiskSpaceError) Error() string {
	return fmt.Sprintf("insufficient disk space at %s: need %s, have %s free",
		e.Path, core.FormatBytes(e.Required), core.FormatBytes(e.Available))
}

// GetDiskSpace returns disk space for the filesystem holding path. A path
// that does not exist yet is measured at its nearest existing parent.
func GetDiskSpace(path string) (*DiskSpaceInfo, error) {
	dir, err := existingDir(path)
	if err != nil {
		return nil, err
	}
	total, free, err := getDiskSpace(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk space for %s: %w", dir, err)
	}
	return &DiskSpaceInfo{Path: dir, Total: total, Free: free}, nil
}

// CheckDiskSpace returns a *DiskSpaceError when fewer than requiredBytes are free.
func CheckDiskSpace(path string, requiredBytes int64) error {
	info, err := GetDiskSpace(path)
	if err != nil {
		return err
	}
	if info.Free < requiredBytes {
		return &DiskSpaceError{Path: info.Path, Required: requiredBytes, Available: info.Free}
	}
	return nil
}

func existingDir(path string) (string, error) {
	if path == "" {
		path = "."
	}
	path, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	for {
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return path, nil
			}
			return filepath.Dir(path), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("cannot access path %s: %w", path, err)
		}
		parent := filepath.Dir(path)
		if parent == path {
			return "", fmt.Errorf("no existing parent for %s", path)
		}
		path = parent
	}
}
