// Package logging builds the charm logger that backs slog.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Settings is the logger configuration read from the environment.
type Settings struct {
	Level  log.Level     // RVDIS_LOG_LEVEL: debug, info, warn or error
	Prefix string        // RVDIS_LOG_PREFIX, "rvdis " when unset
	Format log.Formatter // RVDIS_LOG_FORMAT: text, json or logfmt
	ToFile bool          // RVDIS_LOG_TO_FILE=1
	Dir    string        // RVDIS_LOG_DIR, directory for the log file
}

// SettingsFromEnv reads the RVDIS_LOG_* variables.
func SettingsFromEnv() Settings {
	s := Settings{
		Level:  ParseLevel(os.Getenv("RVDIS_LOG_LEVEL")),
		Prefix: os.Getenv("RVDIS_LOG_PREFIX"),
		Format: ParseFormat(os.Getenv("RVDIS_LOG_FORMAT")),
		ToFile: os.Getenv("RVDIS_LOG_TO_FILE") == "1",
		Dir:    os.Getenv("RVDIS_LOG_DIR"),
	}
	if s.Prefix == "" {
		s.Prefix = "rvdis "
	}
	return s
}

// ParseLevel maps a level name to a level. Unknown names mean info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	}
	return log.InfoLevel
}

// ParseFormat maps a format name to a formatter. Unknown names mean text.
func ParseFormat(s string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	}
	return log.TextFormatter
}

// LoggerCloser is a logger that may own its output file.
type LoggerCloser struct {
	*log.Logger
	closer io.Closer
}

// Close closes the log file, if the logger opened one.
func (lc *LoggerCloser) Close() error {
	if lc.closer == nil {
		return nil
	}
	err := lc.closer.Close()
	lc.closer = nil
	return err
}

// New builds a logger for s writing to w. The logger takes ownership of
// w when it is an io.Closer other than stderr.
func New(w io.Writer, s Settings) *LoggerCloser {
	lg := log.NewWithOptions(w, log.Options{
		Level:           s.Level,
		Prefix:          strings.TrimSpace(s.Prefix),
		Formatter:       s.Format,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	lc := &LoggerCloser{Logger: lg}
	if c, ok := w.(io.Closer); ok && w != io.Writer(os.Stderr) {
		lc.closer = c
	}
	return lc
}

// NewLoggerWithWriter builds a logger for the environment settings that
// writes to w.
func NewLoggerWithWriter(w io.Writer) *LoggerCloser {
	return New(w, SettingsFromEnv())
}

// NewLogger builds a logger for the environment settings. With
// RVDIS_LOG_TO_FILE=1 it appends to rvdis-<timestamp>-debug.log, falling
// back to stderr when the file cannot be created.
func NewLogger() *LoggerCloser {
	s := SettingsFromEnv()
	if !s.ToFile {
		return New(os.Stderr, s)
	}
	f, err := openLogFile(s.Dir, time.Now())
	if err != nil {
		lc := New(os.Stderr, s)
		lc.Warn("Cannot open log file, using stderr", "error", err)
		return lc
	}
	return New(f, s)
}

func openLogFile(dir string, now time.Time) (*os.File, error) {
	name := fmt.Sprintf("rvdis-%s-debug.log", now.Format("20060102-150405"))
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		name = filepath.Join(dir, name)
	}
	return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
}

// IsDebug reports whether RVDIS_LOG_LEVEL selects debug logging.
func IsDebug() bool {
	return ParseLevel(os.Getenv("RVDIS_LOG_LEVEL")) == log.DebugLevel
}
