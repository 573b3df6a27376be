// Package testutil provides testing utilities for isolated test environments.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leefowlercu/analytics-exporter/internal/config"
)

// TestEnv provides an isolated test environment with its own config and output directories.
type TestEnv struct {
	t         *testing.T
	ConfigDir string
	OutputDir string
}

// NewTestEnv creates an isolated test environment.
// It uses environment variables to override all paths, so no test touches
// the user's real config, log file, or working directory.
// Cleanup is automatic via t.Cleanup.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	root := t.TempDir()
	configDir := filepath.Join(root, "config")
	outputDir := filepath.Join(root, "out")
	for _, dir := range []string{configDir, outputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create test dir %s: %v", dir, err)
		}
	}

	// These env vars override viper settings via AutomaticEnv()
	t.Setenv("HOME", root)
	t.Setenv("GAEXPORT_CONFIG_DIR", configDir)
	t.Setenv("GAEXPORT_LOG_FILE", filepath.Join(configDir, "gaexport.log"))
	t.Setenv("GAEXPORT_EXPORT_OUTPUT_DIR", outputDir)

	env := &TestEnv{
		t:         t,
		ConfigDir: configDir,
		OutputDir: outputDir,
	}
	env.Reload()

	t.Cleanup(config.Reset)

	return env
}

// Reload resets and reinitializes config, picking up any file written since.
func (e *TestEnv) Reload() {
	e.t.Helper()

	config.Reset()
	if err := config.Init(); err != nil {
		e.t.Fatalf("failed to initialize test config: %v", err)
	}
}

// WriteConfig writes content as the environment's config.yaml and reloads config.
func (e *TestEnv) WriteConfig(content string) string {
	e.t.Helper()

	path := e.CreateTestFile(e.ConfigDir, "config.yaml", content)
	e.Reload()
	return path
}

// CreateTestFile creates a test file with the given content.
// Returns the absolute path to the created file.
func (e *TestEnv) CreateTestFile(dir, name, content string) string {
	e.t.Helper()

	filePath := filepath.Join(dir, name)
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		e.t.Fatalf("failed to create test file %s: %v", filePath, err)
	}
	return filePath
}
