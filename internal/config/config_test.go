package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_URL_ANON_KEY", "anon")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "glamour", cfg.MongoDBDatabase)
	assert.Equal(t, 168*time.Hour, cfg.JWTExpires)
	assert.Equal(t, 5*time.Second, cfg.LockWait)
	assert.Equal(t, "@every 6h", cfg.RatingReconcileCron)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.CloudinaryEnabled())
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOCK_WAIT", "750ms")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("RATING_RECONCILE_CRON", "0 3 * * *")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 750*time.Millisecond, cfg.LockWait)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "0 3 * * *", cfg.RatingReconcileCron)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Run("missing mongo", func(t *testing.T) {
		setRequired(t)
		t.Setenv("MONGODB_URI", "")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "MONGODB_URI")
	})
	t.Run("short secret", func(t *testing.T) {
		setRequired(t)
		t.Setenv("JWT_SECRET", "short")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})
	t.Run("password placeholder", func(t *testing.T) {
		setRequired(t)
		t.Setenv("MONGODB_URI", "mongodb+srv://app:<password>@cluster.example.net")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "MONGODB_PASSWORD")
	})
}
