package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/hylla/shootdesk/internal/config"
	"github.com/hylla/shootdesk/internal/platform"
)

// logTimeFormat keeps console and file timestamps identical so lines can be matched.
const logTimeFormat = time.RFC3339

// runtimeLogger writes each event to the console and, in dev mode, to a daily logfmt file.
type runtimeLogger struct {
	console *charmLog.Logger
	file    *charmLog.Logger
	handle  *os.File
	path    string
	muted   bool
}

// newRuntimeLogger builds the sinks for one process. logDir anchors relative
// dev_file dirs and is used as-is when the dir is empty.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, logDir string, now func() time.Time) (*runtimeLogger, error) {
	level, err := parseLogLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if stderr == nil {
		stderr = io.Discard
	}
	if now == nil {
		now = time.Now
	}

	l := &runtimeLogger{console: newSink(stderr, appName, level, charmLog.TextFormatter)}
	if !devMode || !cfg.DevFile.Enabled {
		return l, nil
	}

	l.path = devLogFilePath(cfg.DevFile.Dir, logDir, appName, now().UTC())
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	l.handle, err = os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}
	l.file = newSink(l.handle, appName, level, charmLog.LogfmtFormatter)
	return l, nil
}

func parseLogLevel(raw string) (charmLog.Level, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return charmLog.InfoLevel, nil
	}
	level, err := charmLog.ParseLevel(name)
	if err != nil {
		return 0, fmt.Errorf("parse logging level %q: %w", raw, err)
	}
	return level, nil
}

func newSink(w io.Writer, prefix string, level charmLog.Level, formatter charmLog.Formatter) *charmLog.Logger {
	return charmLog.NewWithOptions(w, charmLog.Options{
		Level:           level,
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Formatter:       formatter,
	})
}

// DevLogPath returns the dev log file path, or "" when file logging is off.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Close closes the dev log file.
func (l *runtimeLogger) Close() error {
	if l == nil || l.handle == nil {
		return nil
	}
	err := l.handle.Close()
	l.handle, l.file = nil, nil
	return err
}

// SetConsoleEnabled mutes or restores console output. Query commands mute it
// so their stdout stays clean.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l != nil {
		l.muted = !enabled
	}
}

// ConsoleEnabled reports whether console output is live.
func (l *runtimeLogger) ConsoleEnabled() bool {
	return l != nil && !l.muted
}

// ServiceLogger picks the sink handed to the application service. Nil means discard.
func (l *runtimeLogger) ServiceLogger() *charmLog.Logger {
	switch {
	case l == nil:
		return nil
	case !l.muted:
		return l.console
	default:
		return l.file
	}
}

func (l *runtimeLogger) Debug(msg string, keyvals ...any) { l.emit(charmLog.DebugLevel, msg, keyvals) }
func (l *runtimeLogger) Info(msg string, keyvals ...any) { l.emit(charmLog.InfoLevel, msg, keyvals) }
func (l *runtimeLogger) Warn(msg string, keyvals ...any) { l.emit(charmLog.WarnLevel, msg, keyvals) }
func (l *runtimeLogger) Error(msg string, keyvals ...any) { l.emit(charmLog.ErrorLevel, msg, keyvals) }

func (l *runtimeLogger) emit(level charmLog.Level, msg string, keyvals []any) {
	if l == nil {
		return
	}
	if !l.muted {
		l.console.Log(level, msg, keyvals...)
	}
	if l.file != nil {
		l.file.Log(level, msg, keyvals...)
	}
}

// devLogFilePath returns <dir>/<app>-YYYYMMDD.log. Empty dirs use logDir and
// relative dirs nest under it.
func devLogFilePath(dir, logDir, appName string, day time.Time) string {
	dir = strings.TrimSpace(dir)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(logDir, dir)
	}
	name := fmt.Sprintf("%s-%s.log", logFileStem(appName), day.Format("20060102"))
	return filepath.Join(filepath.Clean(dir), name)
}

// logFileStem turns an app name into a single path segment.
func logFileStem(appName string) string {
	stem := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, strings.TrimSpace(appName))
	stem = strings.Trim(stem, "-")
	if stem == "" {
		return platform.DefaultAppName
	}
	return stem
}
