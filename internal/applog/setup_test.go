package applog

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-export-backend/config"
)

func TestSetup_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	closer, err := Setup(config.LogConfig{Level: "debug", Dir: dir, FileName: "meald"})
	require.NoError(t, err)
	defer log.SetOutput(os.Stderr)

	log.WithField("year", "2024").Info("hello from the test")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "meald.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the test")
	assert.Contains(t, string(data), "year=2024")
	assert.Equal(t, log.DebugLevel, log.GetLevel())
}

func TestSetup_ConsoleOnly(t *testing.T) {
	closer, err := Setup(config.LogConfig{Level: "warn"})
	require.NoError(t, err)
	defer log.SetOutput(os.Stderr)

	assert.NoError(t, closer.Close())
	assert.Equal(t, log.WarnLevel, log.GetLevel())
}

func TestSetup_InvalidLevel(t *testing.T) {
	_, err := Setup(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
