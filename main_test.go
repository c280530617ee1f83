package main

import (
	"archive/zip"
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"aura_backend/core"
)

// freePort returns a TCP port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

// isolateEnv points every path the service writes at a temp dir.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(core.EnvHost, "127.0.0.1")
	t.Setenv(core.EnvPort, strconv.Itoa(freePort(t)))
	t.Setenv(core.EnvDatabasePath, filepath.Join(dir, "data", "aura.db"))
	t.Setenv(core.EnvLogFile, filepath.Join(dir, "logs", "aura.log"))
	t.Setenv(core.EnvCatalogPath, "")
	return dir
}

// buildDocx packages paragraphs into a minimal Word document.
func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + p + `</w:t></w:r></w:p>`)
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct{ name, content string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`},
		{"word/document.xml", `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body.String() + `</w:body></w:document>`},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write([]byte(p.content))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExecute_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute([]string{"--version"}, &stdout, &stderr)

	if code != core.ExitCodeSuccess {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), version) {
		t.Errorf("output = %q, want version %q", stdout.String(), version)
	}
}

func TestExecute_Check(t *testing.T) {
	isolateEnv(t)

	var stdout, stderr bytes.Buffer
	code := execute([]string{"check"}, &stdout, &stderr)

	if code != core.ExitCodeSuccess {
		t.Fatalf("exit code = %d\nstdout: %s\nstderr: %s", code, stdout.String(), stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{"Aura Startup Checks", "Configuration", "Field Catalog", "Listen Address"} {
		if !strings.Contains(out, want) {
			t.Errorf("check output missing %q:\n%s", want, out)
		}
	}
}

func TestExecute_CheckFailure(t *testing.T) {
	isolateEnv(t)
	t.Setenv(core.EnvCatalogPath, filepath.Join(t.TempDir(), "missing.yaml"))

	var stdout, stderr bytes.Buffer
	code := execute([]string{"check", "--fail-fast"}, &stdout, &stderr)

	if code != core.ExitCodeError {
		t.Errorf("exit code = %d, want %d", code, core.ExitCodeError)
	}
	if !strings.Contains(stderr.String(), "Error:") {
		t.Errorf("stderr = %q, want an error line", stderr.String())
	}
}

func TestExecute_ConfigError(t *testing.T) {
	isolateEnv(t)
	t.Setenv(core.EnvPort, "70000")

	var stdout, stderr bytes.Buffer
	if code := execute([]string{"check"}, &stdout, &stderr); code != core.ExitCodeConfig {
		t.Errorf("exit code = %d, want %d", code, core.ExitCodeConfig)
	}
	for _, want := range []string{"code: " + core.ErrCodeInvalidPort, "exit 2: configuration error"} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("stderr = %q, want %q", stderr.String(), want)
		}
	}
}

func TestExecute_EnvFile(t *testing.T) {
	isolateEnv(t)
	os.Unsetenv(core.EnvPort)
	port := freePort(t)

	envFile := filepath.Join(t.TempDir(), "aura.env")
	if err := os.WriteFile(envFile, []byte(core.EnvPort+"="+strconv.Itoa(port)+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv(core.EnvPort) })

	var stdout, stderr bytes.Buffer
	code := execute([]string{"check", "--env-file", envFile}, &stdout, &stderr)
	if code != core.ExitCodeSuccess {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), ":"+strconv.Itoa(port)) {
		t.Errorf("check output does not show port %d:\n%s", port, stdout.String())
	}

	code = execute([]string{"check", "--env-file", filepath.Join(t.TempDir(), "nope.env")}, &stdout, &stderr)
	if code != core.ExitCodeConfig {
		t.Errorf("missing explicit env file: exit code = %d, want %d", code, core.ExitCodeConfig)
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := execute([]string{"frobnicate"}, &stdout, &stderr); code != core.ExitCodeError {
		t.Errorf("exit code = %d, want %d", code, core.ExitCodeError)
	}
}

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"serve": false, "check": false, "service": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}
