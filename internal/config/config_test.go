package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // keep a developer .env out of the test
	for _, key := range []string{"DRILLZ_HTTP_ADDR", "DRILLZ_GEMS_LIMIT", "DRILLZ_TIMEZONE", "DRILLZ_ATTEMPT_TTL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, DefaultEconomy(), cfg.Economy)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 24*time.Hour, cfg.AttemptTTL)
	assert.False(t, cfg.OTelEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DRILLZ_GEMS_LIMIT", "3")
	t.Setenv("DRILLZ_QUESTIONS_PER_DRILL", "5")
	t.Setenv("DRILLZ_OTEL_ENABLED", "yes")
	t.Setenv("DRILLZ_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DRILLZ_TIMEZONE", "Europe/Madrid")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Economy.GemsLimit)
	assert.Equal(t, 5, cfg.Economy.QuestionsPerDrill)
	assert.True(t, cfg.OTelEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "Europe/Madrid", cfg.Location().String())
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"zero gems", "DRILLZ_GEMS_LIMIT", "0"},
		{"negative refill", "DRILLZ_POINTS_TO_REFILL", "-1"},
		{"bad timezone", "DRILLZ_TIMEZONE", "Mars/Olympus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestUnparseableIntFallsBack(t *testing.T) {
	t.Setenv("DRILLZ_GEMS_LIMIT", "lots")
	assert.Equal(t, 5, getEnvInt("DRILLZ_GEMS_LIMIT", 5))
}
