// Package logger provides the logging system for the bundle builder.
// It wraps log/slog with the builder's conventions: a level chosen by name,
// text or json output, a silent mode that only lets errors through, and an
// optional log file that receives every message alongside the console.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Package-level logger configuration
var (
	mu           sync.Mutex
	logFile      string                     // Path to log file (if logging to file)
	logFileDest  io.WriteCloser             // Open log file (nil if not set)
	consoleDest  io.Writer      = os.Stderr // Console output, stderr so stdout stays clean
	level                       = new(slog.LevelVar)
	outputFormat                = "text"
	silence      bool
	current      = build()
)

// Options configures the package logger in one call.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	Silent bool
	Output io.Writer // console destination, os.Stderr when nil
}

// Configure applies opts and rebuilds the default logger.
// Unknown level names fall back to info; unknown formats fall back to text.
func Configure(opts Options) {
	mu.Lock()
	defer mu.Unlock()

	level.Set(ParseLevel(opts.Level))
	outputFormat = strings.ToLower(opts.Format)
	silence = opts.Silent
	if opts.Output != nil {
		consoleDest = opts.Output
	}
	current = build()
}

// SetSilent enables or disables silent mode.
// When silent mode is enabled, only error messages reach the console. The log
// file, when configured, still receives everything.
func SetSilent(isSilent bool) {
	mu.Lock()
	defer mu.Unlock()
	silence = isSilent
	current = build()
}

// ParseLevel maps a level name onto a slog.Level.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Default returns the configured logger.
func Default() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// build must be called with mu held.
func build() *slog.Logger {
	console := newHandler(consoleDest, level)
	if silence {
		console = newHandler(consoleDest, slog.LevelError)
	}
	if logFileDest == nil {
		return slog.New(console)
	}
	// The file always logs at debug so a silent run still leaves a full trace.
	file := newHandler(logFileDest, slog.LevelDebug)
	return slog.New(teeHandler{console, file})
}

func newHandler(w io.Writer, lvl slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: lvl}
	if outputFormat == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// The following functions log through the default logger. They take a format
// string and optional values, like fmt.Sprintf.

// Debug logs a debug message (detailed information for developers).
func Debug(format string, values ...any) {
	Default().Debug(sprintf(format, values))
}

// Info logs an informational message about what the builder is doing.
func Info(format string, values ...any) {
	Default().Info(sprintf(format, values))
}

// Warn logs something unexpected that does not stop the build.
func Warn(format string, values ...any) {
	Default().Warn(sprintf(format, values))
}

// Error logs an error message. Unlike log.Fatal it does not exit; callers
// return the error and let main decide the exit status.
func Error(err error) {
	Default().Error(err.Error())
}

func sprintf(format string, values []any) string {
	if len(values) == 0 {
		return format
	}
	return fmt.Sprintf(format, values...)
}

// SetLogFile sets up logging to a file in addition to the console.
// The log file will be created with a name based on the application name and current date/time.
// Format: <appName>_YYYY-MM-DD_HH-MM-SS.log
// If logDir is empty, the file will be created in the current directory.
//
// Parameters:
//   - appName: Name of the application (used in filename)
//   - logDir: Directory where the log file should be created (empty string = current directory)
//
// Returns an error if the log file cannot be created or opened.
func SetLogFile(appName string, logDir string) error {
	timeStr := time.Now().Format("2006-01-02_15-04-05")
	fileName := fmt.Sprintf("%s_%s.log", appName, timeStr)

	filePath := fileName
	if logDir != "" {
		filePath = filepath.Join(logDir, fileName)
	}
	return SetLogFileWithPath(filePath)
}

// SetLogFileWithPath sets up logging to a specific file path, replacing any
// previously configured log file. The file is opened in append mode.
func SetLogFileWithPath(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	file, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if logFileDest != nil {
		logFileDest.Close()
	}
	logFile = filePath
	logFileDest = file
	current = build()
	return nil
}

// CloseLogFile flushes and detaches the log file, if any.
func CloseLogFile() error {
	mu.Lock()
	defer mu.Unlock()
	if logFileDest == nil {
		return nil
	}
	err := logFileDest.Close()
	logFileDest = nil
	logFile = ""
	current = build()
	return err
}

// GetLogFilePath returns the current log file path, or empty string if no log file is set.
func GetLogFilePath() string {
	mu.Lock()
	defer mu.Unlock()
	return logFile
}

// teeHandler fans a record out to every handler that accepts its level.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, lvl) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range t {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}
