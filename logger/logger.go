package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  = newLogger(os.Stdout, logrus.InfoLevel)
	ErrorLogger = newLogger(os.Stderr, logrus.InfoLevel)
)

// Options configures the service loggers
type Options struct {
	File  string // rotated log file; empty keeps stdout/stderr only
	Level string
}

// InitLoggers configures InfoLogger and ErrorLogger
func InitLoggers(opts Options) {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}

	infoOut := io.Writer(os.Stdout)
	errorOut := io.Writer(os.Stderr)
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		infoOut = io.MultiWriter(os.Stdout, rotator)
		errorOut = io.MultiWriter(os.Stderr, rotator)
	}

	InfoLogger = newLogger(infoOut, level)
	ErrorLogger = newLogger(errorOut, level)
}

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	return l
}
