package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureLevel(t *testing.T) {
	logger := Configure("debug", "json")
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger = Configure("warn", "json")
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
}

func TestConfigureUnknownLevelFallsBackToInfo(t *testing.T) {
	logger := Configure("chatty", "json")
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestConfigureFormat(t *testing.T) {
	logger := Configure("info", "text")
	_, ok := logger.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok)

	logger = Configure("info", "json")
	_, ok = logger.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)

	// Unknown formats fall back to JSON.
	logger = Configure("info", "xml")
	_, ok = logger.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)
}

func TestComponent(t *testing.T) {
	entry := Component("refcache")
	require.NotNil(t, entry)
	assert.Equal(t, "refcache", entry.Data["component"])
}
