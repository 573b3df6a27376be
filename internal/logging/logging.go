package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation limits for the log file.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
)

// Manager handles logger lifecycle including bootstrap-to-full mode transitions.
// Components should obtain a logger via Logger() and use it for all logging.
type Manager struct {
	handler    *SwappableHandler
	logger     *slog.Logger
	stderr     io.Writer
	logFile    *lumberjack.Logger
	level      *slog.LevelVar
	maxSizeMB  int
	maxBackups int
	mu         sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithStderr sets the console writer used by both modes.
func WithStderr(w io.Writer) Option {
	return func(m *Manager) { m.stderr = w }
}

// WithRotation sets the size limit in megabytes and the number of rotated
// files kept for the log file. Non-positive values keep the defaults.
func WithRotation(maxSizeMB, maxBackups int) Option {
	return func(m *Manager) { m.setRotation(maxSizeMB, maxBackups) }
}

// NewManager creates a logging manager in bootstrap mode.
// Bootstrap mode writes only to stderr using text format.
// Call Upgrade() after config is available to enable file logging.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		stderr:     os.Stderr,
		level:      new(slog.LevelVar),
		maxSizeMB:  DefaultMaxSizeMB,
		maxBackups: DefaultMaxBackups,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.level.Set(DefaultLevel)

	bootstrap := slog.NewTextHandler(m.stderr, &slog.HandlerOptions{Level: m.level})
	m.handler = NewSwappableHandler(bootstrap)
	m.logger = slog.New(m.handler)

	return m
}

// Logger returns the current logger instance.
// The returned logger is stable across Upgrade calls.
func (m *Manager) Logger() *slog.Logger {
	return m.logger
}

// Upgrade transitions from bootstrap mode (stderr-only) to full mode
// (stderr text + rotated file JSON). Call after config subsystem is initialized.
// Returns error if log file cannot be opened/created.
func (m *Manager) Upgrade(logFilePath string, level slog.Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := filepath.Dir(logFilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %q; %w", dir, err)
	}

	// lumberjack opens lazily; probe now so a bad path fails here
	probe, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %q; %w", logFilePath, err)
	}
	_ = probe.Close()

	if m.logFile != nil {
		_ = m.logFile.Close()
	}
	m.logFile = &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    m.maxSizeMB,
		MaxBackups: m.maxBackups,
	}

	m.level.Set(level)

	opts := &slog.HandlerOptions{Level: m.level}
	m.handler.Swap(slogmulti.Fanout(
		slog.NewTextHandler(m.stderr, opts),
		slog.NewJSONHandler(m.logFile, opts),
	))

	return nil
}

// SetRotation changes the rotation limits applied by the next Upgrade.
// Non-positive size and negative backup counts keep the current values.
func (m *Manager) SetRotation(maxSizeMB, maxBackups int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setRotation(maxSizeMB, maxBackups)
}

func (m *Manager) setRotation(maxSizeMB, maxBackups int) {
	if maxSizeMB > 0 {
		m.maxSizeMB = maxSizeMB
	}
	if maxBackups >= 0 {
		m.maxBackups = maxBackups
	}
}

// SetLevel changes the log level at runtime.
func (m *Manager) SetLevel(level slog.Level) {
	m.level.Set(level)
}

// Close flushes and closes the log file, if any. Safe to call repeatedly.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.logFile == nil {
		return nil
	}
	err := m.logFile.Close()
	m.logFile = nil
	return err
}
