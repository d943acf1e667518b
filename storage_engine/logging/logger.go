package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	logger   *slog.Logger
	loggerMu sync.RWMutex
	logFile  *os.File
	isInited bool
)

// Config selects level, format and destination of the global logger.
type Config struct {
	Level      string // DEBUG, INFO, WARN, ERROR
	Format     string // "json" or "text"
	OutputPath string // empty for stderr
}

// Init installs the global logger. It fails if a logger is already installed;
// call Close first to reinitialise.
func Init(config Config) error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if isInited {
		return fmt.Errorf("logger already initialized")
	}

	var writer io.Writer = os.Stderr
	if config.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputPath), 0o750); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		writer = file
		logFile = file
	}

	logger = slog.New(newHandler(writer, config.Format, parseLevel(config.Level)))
	isInited = true
	return nil
}

// InitWriter installs a logger writing to w. Tests use it to capture output.
func InitWriter(w io.Writer, level string) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = slog.New(newHandler(w, "text", parseLevel(level)))
	isInited = true
}

// Close drops the global logger and closes its log file, if any.
func Close() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if !isInited {
		return nil
	}
	var err error
	if logFile != nil {
		err = logFile.Close()
		logFile = nil
	}
	logger = nil
	isInited = false
	return err
}

// GetLogger returns the global logger, creating the default one on first use.
func GetLogger() *slog.Logger {
	loggerMu.RLock()
	if isInited {
		l := logger
		loggerMu.RUnlock()
		return l
	}
	loggerMu.RUnlock()

	loggerMu.Lock()
	defer loggerMu.Unlock()
	if !isInited {
		logger = slog.New(newHandler(os.Stderr, "text", slog.LevelInfo))
		isInited = true
	}
	return logger
}

// WithComponent returns a logger tagged with the subsystem name.
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithPage returns a logger tagged with a page id.
func WithPage(pageID int64) *slog.Logger {
	return GetLogger().With("page_id", pageID)
}

// WithIndex returns a logger tagged with an index name.
func WithIndex(name string) *slog.Logger {
	return GetLogger().With("index", name)
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
