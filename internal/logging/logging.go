// Package logging configures structured logging for snapref.
//
// Logging is built on logrus. Configure is called once during startup with
// the values from the observability config; components obtain scoped entries
// through Component.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Configure sets up the global logger from config values and returns it.
// Unknown levels fall back to info; unknown formats fall back to JSON.
func Configure(level, format string) *logrus.Logger {
	logger := logrus.StandardLogger()
	logger.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	switch format {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

// Global returns the global logger.
func Global() *logrus.Logger {
	return logrus.StandardLogger()
}

// Component returns a logger entry scoped to a named component.
func Component(name string) *logrus.Entry {
	return Global().WithField("component", name)
}
