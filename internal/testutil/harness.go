// Package testutil provides a harness that runs the application against
// manifests written to a temporary directory.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/modlink/internal/app"
	"github.com/vk/modlink/internal/config"
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

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Err       error
	App       *app.App
}

// Options tweak a harness run.
type Options struct {
	Output string // config.OutputJSON when empty
	App    []app.Option
}

// Run writes files, keyed by path relative to a temporary manifests
// directory, then runs the application with the given targets.
func Run(t *testing.T, files map[string]string, targets []string, opts Options) *HarnessResult {
	t.Helper()

	modulesDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(modulesDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	output := opts.Output
	if output == "" {
		output = config.OutputJSON
	}
	cfg := &config.Config{
		ModulesPath: modulesDir,
		Targets:     targets,
		LogLevel:    "debug",
		LogFormat:   "text",
		Output:      output,
	}

	out := &SafeBuffer{}
	logs := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(context.Background(), out, logs, cfg, opts.App...)
	}()

	result := &HarnessResult{App: testApp}
	if panicErr != nil {
		result.Err = fmt.Errorf("application startup panicked | %v", panicErr)
	} else {
		result.Err = testApp.Run(context.Background())
	}
	result.Output = out.String()
	result.LogOutput = logs.String()

	if os.Getenv("MODLINK_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
	}
	return result
}
