package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/dashgridgo/internal/app"
	"github.com/specialistvlad/dashgridgo/internal/hcl"
	"github.com/specialistvlad/dashgridgo/internal/registry"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcome of building an app from fixtures.
type HarnessResult struct {
	Dir       string
	LogOutput *SafeBuffer
	Err       error
	App       *app.App
}

// WriteFiles writes fixture files, keyed by relative path, into a fresh
// temporary directory and returns it.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// BuildApp writes the HCL files to a temporary directory and builds an app
// from it with the given modules (the core modules when none are given). A
// build error is returned in the result rather than failing the test.
func BuildApp(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	dir := WriteFiles(t, files)
	logBuffer := &SafeBuffer{}
	cfg := &app.Config{
		DashboardPath: dir,
		LogLevel:      "debug",
		LogFormat:     "text",
		Workers:       4,
	}

	a, err := app.NewApp(context.Background(), logBuffer, cfg, hcl.NewLoader(), modules...)
	if a != nil {
		t.Cleanup(func() { _ = a.Close() })
	}

	t.Cleanup(func() {
		if os.Getenv("DASHGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return &HarnessResult{Dir: dir, LogOutput: logBuffer, Err: err, App: a}
}

// MustBuildApp is BuildApp for fixtures expected to be valid.
func MustBuildApp(t *testing.T, files map[string]string, modules ...registry.Module) *app.App {
	t.Helper()
	res := BuildApp(t, files, modules...)
	require.NoError(t, res.Err, "building app failed; logs:\n%s", res.LogOutput.String())
	return res.App
}
