package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  *logrus.Logger
	WarnLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

// InitLoggers sets up the shared loggers. Log files rotate via lumberjack;
// everything is mirrored to stdout/stderr for container logs.
func InitLoggers() {
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	InfoLogger = newLogger(filepath.Join(logDir, "info.log"), logrus.InfoLevel, os.Stdout)
	WarnLogger = newLogger(filepath.Join(logDir, "warn.log"), logrus.WarnLevel, os.Stdout)
	ErrorLogger = newLogger(filepath.Join(logDir, "error.log"), logrus.ErrorLevel, os.Stderr)
}

func newLogger(file string, level logrus.Level, console io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	rotator := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	l.SetOutput(io.MultiWriter(console, rotator))
	return l
}

func init() {
	// Packages log during their own init; make sure the loggers exist even
	// before main calls InitLoggers with the final configuration.
	if InfoLogger == nil {
		InitLoggers()
	}
}
