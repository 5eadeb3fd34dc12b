package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_URL", "postgres://localhost/contest")
	t.Setenv("ADMIN_PASSWORD", "s3cret")
	t.Setenv("SESSION_SECRET", "0123456789abcdef")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 12*time.Hour, cfg.Admin.SessionTTL)
	assert.Equal(t, "visit-events", cfg.Visits.QueueName)
	assert.Empty(t, cfg.Visits.RabbitMQURL)
	assert.Empty(t, cfg.Votes.RedisAddr)
	assert.Zero(t, cfg.Votes.PerIPLimit)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", ":9999")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("VOTE_LIMIT_PER_IP", "5")
	t.Setenv("VOTE_LIMIT_WINDOW", "10s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Admin.SessionTTL)
	assert.Equal(t, 5, cfg.Votes.PerIPLimit)
	assert.Equal(t, 10*time.Second, cfg.Votes.PerIPWindow)
}

func TestLoadRejectsMissingRequired(t *testing.T) {
	for _, key := range []string{"DB_URL", "ADMIN_PASSWORD", "SESSION_SECRET"} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")

			_, err := Load()
			require.Error(t, err)
		})
	}
}
