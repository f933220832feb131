package logger

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Logger struct {
	*logrus.Entry
}

func New() *Logger {
	base := logrus.New()

	// Local env = pretty console; others = JSON
	env := os.Getenv("ENVIRONMENT")
	if env == "" || env == "local" {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
			ForceColors:     true,
		})
	} else {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}

	// stdout carries result payloads and stderr the error envelope, so logs
	// go to stderr and stay silent unless LOG_LEVEL asks for them.
	base.SetOutput(os.Stderr)

	level := os.Getenv("LOG_LEVEL")
	switch level {
	case "debug":
		base.SetLevel(logrus.DebugLevel)
	case "info":
		base.SetLevel(logrus.InfoLevel)
	case "warn":
		base.SetLevel(logrus.WarnLevel)
	default:
		base.SetLevel(logrus.ErrorLevel)
	}

	return &Logger{Entry: logrus.NewEntry(base)}
}

// WithRun attaches a fresh run id and the invoked command
func (l *Logger) WithRun(command string) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"run_id":  uuid.New().String(),
		"command": command,
	})
}

// WithError standardizes error logging
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}
