package internal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var (
	logLevel = LogLevelInfo
	sink     = &logSink{out: consoleWriter(os.Stderr)}
	logger   = zerolog.New(sink).With().Timestamp().Logger().Level(logLevel.zerologLevel())
)

// logSink forwards to the current output. Loggers handed out by Logger keep
// pointing at the sink, so SetLogOutput reaches them too.
type logSink struct {
	mu  sync.RWMutex
	out io.Writer
}

func (s *logSink) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.out.Write(p)
}

func (s *logSink) set(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = w
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: !isTerminal(w)}
}

func (l LogLevel) zerologLevel() zerolog.Level {
	switch l {
	case LogLevelError:
		return zerolog.ErrorLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelDebug:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLogLevel maps "error", "warn", "info" and "debug" to a LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LogLevelError, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "", "info":
		return LogLevelInfo, nil
	case "debug", "trace":
		return LogLevelDebug, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	logLevel = level
	logger = logger.Level(level.zerologLevel())
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// SetLogOutput redirects log output, e.g. away from the terminal while the TUI owns it.
func SetLogOutput(w io.Writer) {
	sink.set(consoleWriter(w))
}

// Logger returns the shared logger for components that take a zerolog.Logger.
func Logger() zerolog.Logger {
	return logger
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logger.Error().Msgf(format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	logger.Warn().Msgf(format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	logger.Info().Msgf(format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	logger.Debug().Msgf(format, args...)
}
