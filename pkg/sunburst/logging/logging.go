// Package logging provides component loggers for sunburst.
//
// Loggers are silent until Init is called, so library packages can log
// unconditionally:
//
//	logger := logging.Get("scanner")
//	logger.Info("scan started", "root", root)
//
// After Init every logger writes to a rotating file and, optionally, to
// stderr.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level is a logging severity.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

// String returns the lower-case level name.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

func (l Level) charm() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned by ParseLevel for unknown level names.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a level name. "warning" is accepted for warn.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// Config configures the logging system.
type Config struct {
	// Level is the default level for every component.
	Level string `mapstructure:"level"`

	// Path is the log file. Empty means DefaultLogPath().
	Path string `mapstructure:"path"`

	Rotation RotationConfig `mapstructure:"rotation"`

	// Components overrides Level per component name.
	Components map[string]string `mapstructure:"components"`

	// ConsoleLevel mirrors records at or above this level to stderr.
	// Empty disables console output.
	ConsoleLevel string `mapstructure:"console_level"`

	// TUIMode suppresses console output and keeps recent records in a
	// Buffer for display.
	TUIMode bool `mapstructure:"-"`
}

// DefaultConfig returns info-level logging to DefaultLogPath.
func DefaultConfig() Config {
	return Config{
		Level:    "info",
		Path:     DefaultLogPath(),
		Rotation: DefaultRotationConfig(),
	}
}

// DefaultLogPath returns $XDG_STATE_HOME/sunburst/sunburst.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "sunburst", "sunburst.log")
}

// Entry is one record kept for the TUI.
type Entry struct {
	Time      time.Time
	Level     Level
	Component string
	Message   string
}

// Logger is a component logger.
type Logger struct {
	component string
	file      *log.Logger
	console   *log.Logger
	buffer    *Buffer
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, keyvals ...any) { l.emit(LevelDebug, msg, keyvals) }

// Info logs at info level.
func (l *Logger) Info(msg string, keyvals ...any) { l.emit(LevelInfo, msg, keyvals) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, keyvals ...any) { l.emit(LevelWarn, msg, keyvals) }

// Error logs at error level.
func (l *Logger) Error(msg string, keyvals ...any) { l.emit(LevelError, msg, keyvals) }

// With returns a logger that adds keyvals to every record.
func (l *Logger) With(keyvals ...any) *Logger {
	out := &Logger{
		component: l.component,
		file:      l.file.With(keyvals...),
		buffer:    l.buffer,
	}
	if l.console != nil {
		out.console = l.console.With(keyvals...)
	}
	return out
}

func (l *Logger) emit(level Level, msg string, keyvals []any) {
	l.file.Log(level.charm(), msg, keyvals...)
	if l.console != nil {
		l.console.Log(level.charm(), msg, keyvals...)
	}
	if l.buffer != nil && level.charm() >= l.file.GetLevel() {
		l.buffer.Add(Entry{
			Time:      time.Now(),
			Level:     level,
			Component: l.component,
			Message:   msg,
		})
	}
}

type registry struct {
	mu          sync.RWMutex
	initialized bool
	writer      *RotatingWriter
	level       Level
	components  map[string]Level
	console     bool
	consoleLvl  Level
	buffer      *Buffer
	loggers     map[string]*Logger
}

var global = &registry{
	components: map[string]Level{},
	loggers:    map[string]*Logger{},
}

// Init (re)configures logging. Loggers obtained earlier are rebuilt, so
// cached *Logger values from before Init stay silent; call Get again.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	components := make(map[string]Level, len(cfg.Components))
	for name, raw := range cfg.Components {
		lvl, err := ParseLevel(raw)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", name, err)
		}
		components[name] = lvl
	}

	var consoleLvl Level
	console := cfg.ConsoleLevel != "" && !cfg.TUIMode
	if console {
		if consoleLvl, err = ParseLevel(cfg.ConsoleLevel); err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}
	writer, err := NewRotatingWriter(path, cfg.Rotation)
	if err != nil {
		return fmt.Errorf("creating log writer: %w", err)
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	if global.writer != nil {
		_ = global.writer.Close()
	}
	global.writer = writer
	global.level = level
	global.components = components
	global.console = console
	global.consoleLvl = consoleLvl
	global.buffer = nil
	if cfg.TUIMode {
		global.buffer = NewBuffer(DefaultBufferSize)
	}
	global.initialized = true
	global.loggers = map[string]*Logger{}
	return nil
}

// Get returns the logger for component.
func Get(component string) *Logger {
	global.mu.RLock()
	l, ok := global.loggers[component]
	global.mu.RUnlock()
	if ok {
		return l
	}

	global.mu.Lock()
	defer global.mu.Unlock()
	if l, ok := global.loggers[component]; ok {
		return l
	}
	l = global.newLogger(component)
	global.loggers[component] = l
	return l
}

// newLogger must be called with mu held.
func (r *registry) newLogger(component string) *Logger {
	level := r.level
	if lvl, ok := r.components[component]; ok {
		level = lvl
	}

	if !r.initialized {
		return &Logger{
			component: component,
			file: log.NewWithOptions(io.Discard, log.Options{
				Level:  level.charm(),
				Prefix: component,
			}),
		}
	}

	l := &Logger{
		component: component,
		file: log.NewWithOptions(r.writer, log.Options{
			Level:           level.charm(),
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          component,
		}),
		buffer: r.buffer,
	}
	if r.console {
		l.console = log.NewWithOptions(os.Stderr, log.Options{
			Level:           r.consoleLvl.charm(),
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Prefix:          component,
		})
	}
	return l
}

// RecentEntries returns the buffered records kept in TUI mode, or nil.
func RecentEntries(n int) []Entry {
	global.mu.RLock()
	buf := global.buffer
	global.mu.RUnlock()
	if buf == nil {
		return nil
	}
	return buf.Last(n)
}

// Close flushes the log file and returns logging to its silent state.
func Close() error {
	global.mu.Lock()
	defer global.mu.Unlock()

	if !global.initialized {
		return nil
	}
	global.initialized = false
	global.loggers = map[string]*Logger{}
	global.components = map[string]Level{}
	global.buffer = nil

	w := global.writer
	global.writer = nil
	if w != nil {
		if err := w.Close(); err != nil {
			return fmt.Errorf("closing log writer: %w", err)
		}
	}
	return nil
}
