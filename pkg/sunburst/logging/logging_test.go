package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jamesainslie/sunburst/pkg/sunburst/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests share the package-level logger registry and must not run in
// parallel.

func initLogging(t *testing.T, cfg logging.Config) string {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = filepath.Join(t.TempDir(), "test.log")
	}
	require.NoError(t, logging.Init(cfg))
	t.Cleanup(func() { _ = logging.Close() })
	return cfg.Path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, logging.Close())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    logging.Level
		wantErr bool
	}{
		{in: "debug", want: logging.LevelDebug},
		{in: "INFO", want: logging.LevelInfo},
		{in: "warning", want: logging.LevelWarn},
		{in: " error ", want: logging.LevelError},
		{in: "", want: logging.LevelInfo},
		{in: "loud", want: logging.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := logging.ParseLevel(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, logging.ErrInvalidLevel)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "warn", logging.LevelWarn.String())
}

func TestInit_InvalidConfig(t *testing.T) {
	dir := t.TempDir()

	err := logging.Init(logging.Config{Level: "nope", Path: filepath.Join(dir, "a.log")})
	assert.ErrorIs(t, err, logging.ErrInvalidLevel)

	err = logging.Init(logging.Config{
		Level:      "info",
		Path:       filepath.Join(dir, "b.log"),
		Components: map[string]string{"scanner": "nope"},
	})
	assert.ErrorIs(t, err, logging.ErrInvalidLevel)
}

func TestSilentBeforeInit(t *testing.T) {
	require.NoError(t, logging.Close())
	logger := logging.Get("early")
	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Error("dropped", "k", 1) })
}

func TestLoggerWritesLevels(t *testing.T) {
	path := initLogging(t, logging.Config{Level: "warn"})

	logger := logging.Get("scanner")
	logger.Debug("debug hidden")
	logger.Info("info hidden")
	logger.Warn("warn shown", "path", "/tmp/x")
	logger.With("scan", "abc").Error("error shown")

	content := readLog(t, path)
	assert.NotContains(t, content, "debug hidden")
	assert.NotContains(t, content, "info hidden")
	assert.Contains(t, content, "warn shown")
	assert.Contains(t, content, "/tmp/x")
	assert.Contains(t, content, "error shown")
	assert.Contains(t, content, "scan=abc")
	assert.Contains(t, content, "scanner")
}

func TestComponentOverride(t *testing.T) {
	path := initLogging(t, logging.Config{
		Level:      "error",
		Components: map[string]string{"verbose": "debug"},
	})

	logging.Get("quiet").Info("quiet info")
	logging.Get("verbose").Debug("verbose debug")

	content := readLog(t, path)
	assert.NotContains(t, content, "quiet info")
	assert.Contains(t, content, "verbose debug")
}

func TestRecentEntries(t *testing.T) {
	initLogging(t, logging.Config{Level: "info", TUIMode: true})

	logger := logging.Get("tui")
	logger.Debug("below level")
	logger.Info("first")
	logger.Warn("second")

	got := logging.RecentEntries(5)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Message)
	assert.Equal(t, "second", got[1].Message)
	assert.Equal(t, logging.LevelWarn, got[1].Level)
	assert.Equal(t, "tui", got[1].Component)
}

func TestRecentEntries_NotTUIMode(t *testing.T) {
	initLogging(t, logging.Config{Level: "info"})
	logging.Get("x").Info("hello")
	assert.Nil(t, logging.RecentEntries(1))
}

func TestConcurrentWrites(t *testing.T) {
	path := initLogging(t, logging.Config{Level: "info"})

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger := logging.Get("worker")
			for j := range 50 {
				logger.Info("tick", "worker", i, "n", j)
			}
		}()
	}
	wg.Wait()

	content := readLog(t, path)
	assert.Equal(t, 400, strings.Count(content, "tick"))
}

func TestDefaultLogPath(t *testing.T) {
	path := logging.DefaultLogPath()
	assert.Equal(t, "sunburst.log", filepath.Base(path))
	assert.Equal(t, "sunburst", filepath.Base(filepath.Dir(path)))
	assert.Equal(t, path, logging.DefaultConfig().Path)
}

func TestBuffer(t *testing.T) {
	b := logging.NewBuffer(3)
	assert.Equal(t, 0, b.Len())
	assert.Nil(t, b.Last(2))

	for _, msg := range []string{"a", "b", "c", "d"} {
		b.Add(logging.Entry{Message: msg})
	}

	assert.Equal(t, 3, b.Len())
	got := b.Last(10)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].Message)
	assert.Equal(t, "d", got[2].Message)

	last := b.Last(1)
	require.Len(t, last, 1)
	assert.Equal(t, "d", last[0].Message)
}
