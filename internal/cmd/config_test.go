package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGameConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
game:
  round_duration_seconds: 60
  ping_interval_seconds: 15
`), 0o644))

	cfg, err := loadGameConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Game.RoundDurationSeconds)
	assert.Equal(t, 15, cfg.Game.PingIntervalSeconds)
	assert.Zero(t, cfg.Game.BackendTimeoutSeconds)
}

func TestLoadGameConfigMissingFile(t *testing.T) {
	_, err := loadGameConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSecondsOr(t *testing.T) {
	assert.Equal(t, 45*time.Second, secondsOr(45, time.Minute))
	assert.Equal(t, time.Minute, secondsOr(0, time.Minute))
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("WORDPARTY_TEST_INT", "42")
	assert.Equal(t, 42, getEnvAsInt("WORDPARTY_TEST_INT", 7))

	t.Setenv("WORDPARTY_TEST_INT", "not a number")
	assert.Equal(t, 7, getEnvAsInt("WORDPARTY_TEST_INT", 7))
}
