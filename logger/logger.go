// Package logger provides logging for the harmonia server with dual-backend
// output: console/stderr at the configured level and a debug-level log file.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/harmonia-media/harmonia/config"
	"github.com/op/go-logging"
)

const (
	logFileName = "harmonia.log"
	timeFormat  = "2006/01/02 15:04:05"
)

var (
	// The default backend stays in place until InitLogger swaps it out, so
	// logging is safe before initialization (and in tests).
	logger  = logging.MustGetLogger("harmonia")
	logFile *os.File
)

// InitLogger initializes both logging backends. Console logging uses the
// given level, file logging always records at DEBUG.
func InitLogger(level logging.Level) {
	newLogger := logging.MustGetLogger(config.GetName())
	backends := make([]logging.Backend, 0, 2)

	consoleBackend := logging.NewLogBackend(os.Stderr, "", 0)
	leveledConsole := logging.AddModuleLevel(logging.NewBackendFormatter(consoleBackend, newFormatter(true)))
	leveledConsole.SetLevel(level, config.GetName())
	backends = append(backends, leveledConsole)

	if fileBackend := initFileBackend(); fileBackend != nil {
		leveledFile := logging.AddModuleLevel(fileBackend)
		leveledFile.SetLevel(logging.DEBUG, config.GetName())
		backends = append(backends, leveledFile)
	}

	newLogger.SetBackend(logging.MultiLogger(backends...))
	logger = newLogger
}

// initFileBackend creates the file logging backend. The log file is
// truncated on startup.
func initFileBackend() logging.Backend {
	logDir := config.GetLogFolder()
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log folder %s: %v\n", logDir, err)
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o660)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file %s: %v\n", logPath, err)
		return nil
	}

	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file

	backend := logging.NewLogBackend(file, "", 0)
	return logging.NewBackendFormatter(backend, newFormatter(true))
}

func newFormatter(withTime bool) logging.Formatter {
	format := `%{level} - %{message}`
	if withTime {
		format = `%{time:` + timeFormat + `} %{level} - %{message}`
	}
	return logging.MustStringFormatter(format)
}

// CloseLogger closes the log file. Should be called during shutdown.
func CloseLogger() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

func Debug(args ...any) {
	logger.Debug(args...)
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

func Info(args ...any) {
	logger.Info(args...)
}

func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

func Warning(args ...any) {
	logger.Warning(args...)
}

func Warningf(format string, args ...any) {
	logger.Warningf(format, args...)
}

func Error(args ...any) {
	logger.Error(args...)
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}
