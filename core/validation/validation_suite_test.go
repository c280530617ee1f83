package validation

import (
	"bytes"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aura_backend/core"
)

func staticCheck(name string, status StepStatus, err error) Check {
	return Check{Name: name, Run: func() (StepStatus, string, error) {
		return status, "msg " + name, err
	}}
}

func TestValidationSuite_BuilderPattern(t *testing.T) {
	var buf bytes.Buffer
	suite := NewValidationSuite().WithOutput(&buf).WithShowProgress(false).WithFailFast(true)

	if suite.output != &buf {
		t.Error("WithOutput did not set output correctly")
	}
	if suite.showProgress {
		t.Error("WithShowProgress did not set value correctly")
	}
	if !suite.failFast {
		t.Error("WithFailFast did not set value correctly")
	}
}

func TestValidationSuite_CountsStatuses(t *testing.T) {
	suite := NewValidationSuite(
		staticCheck("a", StepPassed, nil),
		staticCheck("b", StepWarning, errors.New("low")),
		staticCheck("c", StepSkipped, nil),
		staticCheck("d", StepFailed, errors.New("broken")),
	).WithShowProgress(false)

	result := suite.Validate()
	if result.Success {
		t.Error("Success = true, want false")
	}
	if result.TotalSteps != 4 || result.PassedSteps != 1 || result.FailedSteps != 1 || result.Warnings != 1 {
		t.Errorf("unexpected counts: %+v", result)
	}
	if got := result.GetFirstError(); got == nil || got.Error() != "low" {
		t.Errorf("GetFirstError() = %v, want low", got)
	}
	if got := len(result.GetErrors()); got != 2 {
		t.Errorf("GetErrors() returned %d errors, want 2", got)
	}
	if !strings.Contains(result.Summary(), "Validation Failed: 1/4 checks passed, 1 failed, 1 warnings") {
		t.Errorf("Summary() = %q", result.Summary())
	}
}

func TestValidationSuite_FailFastSkipsRemaining(t *testing.T) {
	ran := false
	suite := NewValidationSuite(
		staticCheck("first", StepFailed, errors.New("nope")),
		Check{Name: "second", Run: func() (StepStatus, string, error) {
			ran = true
			return StepPassed, "", nil
		}},
	).WithShowProgress(false).WithFailFast(true)

	result := suite.Validate()
	if ran {
		t.Error("second check ran after failure")
	}
	if result.Steps[1].Status != StepSkipped {
		t.Errorf("second status = %v, want skipped", result.Steps[1].Status)
	}
}

func TestValidationSuite_ProgressOutput(t *testing.T) {
	var buf bytes.Buffer
	NewValidationSuite(staticCheck("Field Catalog", StepPassed, nil)).WithOutput(&buf).Validate()

	out := buf.String()
	for _, want := range []string{"Aura Startup Checks", "Field Catalog", "msg Field Catalog", "Validation Passed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStepStatus_String(t *testing.T) {
	tests := []struct {
		status StepStatus
		want   string
	}{
		{StepPending, "pending"},
		{StepRunning, "running"},
		{StepPassed, "passed"},
		{StepFailed, "failed"},
		{StepWarning, "warning"},
		{StepSkipped, "skipped"},
		{StepStatus(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("StepStatus(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestConfigCheck(t *testing.T) {
	cfg := core.DefaultConfig()
	if status, _, err := ConfigCheck(&cfg).Run(); status != StepPassed || err != nil {
		t.Errorf("default config: status %v err %v", status, err)
	}
	cfg.Port = 0
	status, _, err := ConfigCheck(&cfg).Run()
	if _, ok := core.IsConfigError(err); status != StepFailed || !ok {
		t.Errorf("bad port: status %v err %v", status, err)
	}
}

func TestCatalogCheck(t *testing.T) {
	if status, msg, err := CatalogCheck("").Run(); status != StepPassed || err != nil || !strings.Contains(msg, "embedded") {
		t.Errorf("embedded catalog: %v %q %v", status, msg, err)
	}

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	status, _, err := CatalogCheck(missing).Run()
	var fileErr *FileError
	if status != StepFailed || !errors.As(err, &fileErr) {
		t.Errorf("missing catalog: status %v err %v", status, err)
	}
}

func TestHistoryStorageCheck(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.HistoryEnabled = false
	if status, _, _ := HistoryStorageCheck(&cfg).Run(); status != StepSkipped {
		t.Errorf("disabled history: status %v, want skipped", status)
	}

	cfg.HistoryEnabled = true
	cfg.DatabasePath = filepath.Join(t.TempDir(), "nested", "aura.db")
	status, _, err := HistoryStorageCheck(&cfg).Run()
	if status == StepFailed {
		t.Fatalf("writable temp dir failed: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(cfg.DatabasePath)); err != nil {
		t.Errorf("database directory not created: %v", err)
	}
}

func TestListenCheck(t *testing.T) {
	if status, _, err := ListenCheck("127.0.0.1:0").Run(); status != StepPassed {
		t.Errorf("free port: status %v err %v", status, err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	if status, _, _ := ListenCheck(ln.Addr().String()).Run(); status != StepFailed {
		t.Errorf("busy port: status %v, want failed", status)
	}
}

func TestCheckFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(file, []byte("fields: {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"existing file", file, false},
		{"empty path", "", true},
		{"missing", filepath.Join(dir, "nope"), true},
		{"directory", dir, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckFileExists(tt.path); (err != nil) != tt.wantErr {
				t.Errorf("CheckFileExists(%q) = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestDiskSpace(t *testing.T) {
	dir := t.TempDir()
	info, err := GetDiskSpace(filepath.Join(dir, "not", "yet", "created"))
	if err != nil {
		t.Fatalf("GetDiskSpace() error: %v", err)
	}
	if info.Total <= 0 || info.Free < 0 || info.Free > info.Total {
		t.Errorf("implausible disk space: %+v", info)
	}

	err = CheckDiskSpace(dir, info.Total*2)
	var spaceErr *DiskSpaceError
	if !errors.As(err, &spaceErr) {
		t.Fatalf("CheckDiskSpace() = %v, want *DiskSpaceError", err)
	}
	if spaceErr.Required != info.Total*2 {
		t.Errorf("Required = %d, want %d", spaceErr.Required, info.Total*2)
	}
}
