package validation

import (
	"errors"
	"fmt"
	"net"

	"aura_backend/core"
	"aura_backend/extraction"
)

// Check is one startup check. Run reports the step status, a short message
// and, for failures, the error.
type Check struct {
	Name string
	Run  func() (StepStatus, string, error)
}

// ConfigCheck validates cfg.
func ConfigCheck(cfg *core.Config) Check {
	return Check{Name: "Configuration", Run: func() (StepStatus, string, error) {
		if err := cfg.Validate(); err != nil {
			return StepFailed, "invalid settings", err
		}
		return StepPassed, cfg.Addr(), nil
	}}
}

// CatalogCheck loads the field catalog at path, or the embedded catalog
// when path is empty.
func CatalogCheck(path string) Check {
	return Check{Name: "Field Catalog", Run: func() (StepStatus, string, error) {
		if path == "" {
			catalog := extraction.DefaultCatalog()
			return StepPassed, fmt.Sprintf("embedded, %d fields", len(catalog.Fields())), nil
		}
		if err := CheckFileExists(path); err != nil {
			return StepFailed, path, err
		}
		catalog, err := extraction.LoadCatalog(path)
		if err != nil {
			return StepFailed, path, err
		}
		return StepPassed, fmt.Sprintf("%s, %d fields", path, len(catalog.Fields())), nil
	}}
}

// HistoryStorageCheck verifies the database directory is writable and warns
// when free space is low. It is skipped when history is disabled.
func HistoryStorageCheck(cfg *core.Config) Check {
	return Check{Name: "History Storage", Run: func() (StepStatus, string, error) {
		if !cfg.HistoryEnabled {
			return StepSkipped, "history disabled", nil
		}
		dir := parentDir(cfg.DatabasePath)
		if err := CheckDirWritable(dir); err != nil {
			return StepFailed, dir, err
		}
		if err := CheckDiskSpace(dir, MinFreeBytes); err != nil {
			var low *DiskSpaceError
			if errors.As(err, &low) {
				return StepWarning, core.FormatBytes(low.Available) + " free", err
			}
			return StepWarning, "could not measure free space", err
		}
		return StepPassed, dir, nil
	}}
}

// ListenCheck verifies addr can be bound.
func ListenCheck(addr string) Check {
	return Check{Name: "Listen Address", Run: func() (StepStatus, string, error) {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return StepFailed, addr, fmt.Errorf("cannot listen on %s: %w", addr, err)
		}
		ln.Close()
		return StepPassed, addr, nil
	}}
}

// StartupChecks returns the checks run before the server starts.
func StartupChecks(cfg *core.Config) []Check {
	return []Check{
		ConfigCheck(cfg),
		CatalogCheck(cfg.CatalogPath),
		HistoryStorageCheck(cfg),
		ListenCheck(cfg.Addr()),
	}
}
