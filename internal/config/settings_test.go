package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arcade/internal/pin"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, 10, s.DisplayCap)
	assert.Equal(t, pin.DefaultPolicy(), s.PinPolicy())
	assert.Equal(t, time.Duration(0), s.RefreshEvery)

	level, err := s.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadSettings_Env(t *testing.T) {
	t.Setenv("ARCADE_DISPLAY_CAP", "25")
	t.Setenv("ARCADE_PIN_LIMIT", "5")
	t.Setenv("ARCADE_PIN_FALLBACK", "false")
	t.Setenv("ARCADE_REFRESH_EVERY", "30s")
	t.Setenv("ARCADE_LOG_LEVEL", "debug")
	t.Setenv("ARCADE_SNAPSHOT", "/tmp/arcade.db")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, 25, s.DisplayCap)
	assert.Equal(t, pin.Policy{Limit: 5}, s.PinPolicy())
	assert.Equal(t, 30*time.Second, s.RefreshEvery)
	assert.Equal(t, "/tmp/arcade.db", s.Snapshot)

	level, err := s.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadSettings_Errors(t *testing.T) {
	t.Run("not an int", func(t *testing.T) {
		t.Setenv("ARCADE_DISPLAY_CAP", "lots")
		_, err := LoadSettings()
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "parse env:"))
	})
	t.Run("negative cap", func(t *testing.T) {
		t.Setenv("ARCADE_DISPLAY_CAP", "-1")
		_, err := LoadSettings()
		require.Error(t, err)
	})
	t.Run("bad level", func(t *testing.T) {
		_, err := Settings{LogLevel: "loud"}.Level()
		require.Error(t, err)
	})
}
