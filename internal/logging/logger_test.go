package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"DEBUG ", log.DebugLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLoggerWithWriter(t *testing.T) {
	t.Setenv("RVDIS_LOG_LEVEL", "warn")
	t.Setenv("RVDIS_LOG_PREFIX", "test")

	var buf bytes.Buffer
	lg := NewLoggerWithWriter(&buf)
	defer lg.Close()

	lg.Info("hidden")
	lg.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") || !strings.Contains(out, "test") {
		t.Errorf("output = %q", out)
	}
}

func TestIsDebug(t *testing.T) {
	t.Setenv("RVDIS_LOG_LEVEL", "debug")
	if !IsDebug() {
		t.Error("IsDebug() = false")
	}
	t.Setenv("RVDIS_LOG_LEVEL", "info")
	if IsDebug() {
		t.Error("IsDebug() = true")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want log.Formatter
	}{
		{"", log.TextFormatter},
		{"text", log.TextFormatter},
		{"JSON", log.JSONFormatter},
		{"logfmt", log.LogfmtFormatter},
		{"yaml", log.TextFormatter},
	}
	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("RVDIS_LOG_LEVEL", "")
	t.Setenv("RVDIS_LOG_PREFIX", "")
	t.Setenv("RVDIS_LOG_FORMAT", "")
	t.Setenv("RVDIS_LOG_TO_FILE", "")
	t.Setenv("RVDIS_LOG_DIR", "")

	want := Settings{Level: log.InfoLevel, Prefix: "rvdis ", Format: log.TextFormatter}
	if got := SettingsFromEnv(); got != want {
		t.Errorf("defaults = %+v, want %+v", got, want)
	}

	t.Setenv("RVDIS_LOG_LEVEL", "error")
	t.Setenv("RVDIS_LOG_FORMAT", "logfmt")
	t.Setenv("RVDIS_LOG_TO_FILE", "1")
	t.Setenv("RVDIS_LOG_DIR", "/tmp/x")
	want = Settings{Level: log.ErrorLevel, Prefix: "rvdis ", Format: log.LogfmtFormatter, ToFile: true, Dir: "/tmp/x"}
	if got := SettingsFromEnv(); got != want {
		t.Errorf("from env = %+v, want %+v", got, want)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	lg := New(&buf, Settings{Level: log.DebugLevel, Prefix: "rvdis", Format: log.JSONFormatter})
	lg.Debug("decoded", "words", 3)
	out := buf.String()
	if !strings.Contains(out, `"msg":"decoded"`) || !strings.Contains(out, `"words":3`) {
		t.Errorf("json output = %q", out)
	}
}

func TestNewLoggerToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	t.Setenv("RVDIS_LOG_TO_FILE", "1")
	t.Setenv("RVDIS_LOG_DIR", dir)
	t.Setenv("RVDIS_LOG_LEVEL", "info")

	lg := NewLogger()
	lg.Info("to file")
	if err := lg.Close(); err != nil {
		t.Fatal(err)
	}
	if err := lg.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "rvdis-*-debug.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("log files = %v, %v", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file = %q", data)
	}
}
