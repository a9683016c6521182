package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// reset restores the package defaults once a test is done with them.
func reset(t *testing.T) {
	t.Cleanup(func() {
		CloseLogFile()
		Configure(Options{Level: "info", Format: "text", Output: os.Stderr})
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	reset(t)
	var buf bytes.Buffer
	Configure(Options{Level: "warn", Format: "text", Output: &buf})

	Info("hidden %d", 1)
	Warn("shown %d", 2)

	require.NotContains(t, buf.String(), "hidden 1")
	require.Contains(t, buf.String(), "shown 2")
}

func TestSilentOnlyLetsErrorsThrough(t *testing.T) {
	reset(t)
	var buf bytes.Buffer
	Configure(Options{Level: "debug", Output: &buf, Silent: true})

	Debug("debug line")
	Warn("warn line")
	Error(os.ErrPermission)

	out := buf.String()
	require.NotContains(t, out, "debug line")
	require.NotContains(t, out, "warn line")
	require.Contains(t, out, "permission denied")
}

func TestJSONFormat(t *testing.T) {
	reset(t)
	var buf bytes.Buffer
	Configure(Options{Level: "info", Format: "json", Output: &buf})

	Info("building %s", "Foo.app")

	line := strings.TrimSpace(buf.String())
	require.True(t, strings.HasPrefix(line, "{"), "expected json output, got %q", line)
	require.Contains(t, line, `"msg":"building Foo.app"`)
}

func TestSetLogFileReceivesEverything(t *testing.T) {
	reset(t)
	var console bytes.Buffer
	Configure(Options{Level: "info", Output: &console, Silent: true})

	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, SetLogFile("Foo", dir))
	path := GetLogFilePath()
	require.True(t, strings.HasPrefix(filepath.Base(path), "Foo_"))

	Debug("only in the file")
	require.NoError(t, CloseLogFile())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "only in the file")
	require.Empty(t, console.String())
	require.Empty(t, GetLogFilePath())
}
