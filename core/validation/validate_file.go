package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileError describes a file or directory that is missing or unusable.
type FileError struct {
	Path    string
	Message string
}

func (e *FileError) Error() string {
	return e.Message
}

// CheckFileExists returns nil if path is an existing regular file.
func CheckFileExists(path string) error {
	if path == "" {
		return &FileError{Path: path, Message: "file path cannot be empty"}
	}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &FileError{Path: path, Message: fmt.Sprintf("file not found: %s", path)}
	case err != nil:
		return &FileError{Path: path, Message: fmt.Sprintf("error checking file %s: %v", path, err)}
	case info.IsDir():
		return &FileError{Path: path, Message: fmt.Sprintf("path is a directory, not a file: %s", path)}
	}
	return nil
}

// CheckDirWritable creates dir if needed and proves a file can be written
// inside it.
func CheckDirWritable(dir string) error {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &FileError{Path: dir, Message: fmt.Sprintf("cannot create directory %s: %v", dir, err)}
	}
	f, err := os.CreateTemp(dir, ".aura-write-check-*")
	if err != nil {
		return &FileError{Path: dir, Message: fmt.Sprintf("directory %s is not writable: %v", dir, err)}
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return nil
}

// parentDir returns the directory that will hold path.
func parentDir(path string) string {
	return filepath.Dir(path)
}
