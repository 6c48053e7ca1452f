package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable the tests touch; viper treats empty values as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GROCER_APP_NAME", "GROCER_APP_ENV", "GROCER_APP_PORT",
		"GROCER_DATABASE_HOST", "GROCER_DATABASE_PORT", "GROCER_DATABASE_USER",
		"GROCER_DATABASE_PASSWORD", "GROCER_DATABASE_DBNAME", "GROCER_DATABASE_SSLMODE",
		"GROCER_DATABASE_MAX_OPEN_CONNS", "GROCER_DATABASE_MAX_IDLE_CONNS",
		"GROCER_JWT_SECRET", "GROCER_HTTP_CORS_ALLOW_ORIGINS",
		"GROCER_CHECKOUT_TIMEZONE", "GROCER_STORAGE_ENABLED", "GROCER_STORAGE_ACCESS_KEY",
		"GROCER_STORAGE_SECRET_KEY", "GROCER_TELEMETRY_SAMPLING_RATIO",
		"GROCER_SCHEDULER_COUPON_EXPIRY_BATCH_SIZE", "GROCER_SCHEDULER_WORKERS",
	} {
		t.Setenv(k, "")
	}
}

func setValidProductionBase(t *testing.T) {
	t.Helper()
	t.Setenv("GROCER_APP_ENV", "production")
	t.Setenv("GROCER_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
	t.Setenv("GROCER_DATABASE_PASSWORD", "secure-password")
	t.Setenv("GROCER_DATABASE_SSLMODE", "require")
	t.Setenv("GROCER_HTTP_CORS_ALLOW_ORIGINS", "https://shop.example.in")
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "grocer-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "grocer", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "Asia/Kolkata", cfg.Checkout.Timezone)
		assert.Equal(t, 5*time.Minute, cfg.Checkout.ServiceabilityCacheTTL)
		assert.Equal(t, cfg.JWT.Secret, cfg.JWT.RefreshSecret)
		assert.Equal(t, "grocer-backend", cfg.Telemetry.ServiceName)
		assert.Equal(t, 15*time.Minute, cfg.Scheduler.CouponExpiryInterval)
		assert.Equal(t, 200, cfg.Scheduler.CouponExpiryBatchSize)
	})

	t.Run("loads values from environment variables with GROCER prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GROCER_APP_NAME", "test-app")
		t.Setenv("GROCER_APP_PORT", "9000")
		t.Setenv("GROCER_DATABASE_HOST", "testdb.local")
		t.Setenv("GROCER_DATABASE_PORT", "5433")
		t.Setenv("GROCER_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("GROCER_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("GROCER_CHECKOUT_TIMEZONE", "UTC")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)

		loc, err := cfg.Checkout.Location()
		require.NoError(t, err)
		assert.Equal(t, time.UTC, loc)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GROCER_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("GROCER_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects unknown timezone", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GROCER_CHECKOUT_TIMEZONE", "Mars/Olympus")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checkout.timezone")
	})

	t.Run("rejects sampling ratio out of range", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GROCER_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})

	t.Run("rejects negative coupon expiry batch size", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GROCER_SCHEDULER_COUPON_EXPIRY_BATCH_SIZE", "-50")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "coupon_expiry_batch_size")
	})

	t.Run("rejects negative scheduler workers", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GROCER_SCHEDULER_WORKERS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scheduler.workers")
	})

	t.Run("storage requires credentials when enabled", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GROCER_STORAGE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)

		t.Setenv("GROCER_STORAGE_ACCESS_KEY", "key")
		t.Setenv("GROCER_STORAGE_SECRET_KEY", "secret")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "grocer-kyc", cfg.Storage.Bucket)
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	t.Run("requires long jwt secret", func(t *testing.T) {
		clearEnv(t)
		setValidProductionBase(t)
		t.Setenv("GROCER_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret must be at least 32 characters")
	})

	t.Run("has no default jwt secret in production", func(t *testing.T) {
		clearEnv(t)
		setValidProductionBase(t)
		t.Setenv("GROCER_JWT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("requires database password", func(t *testing.T) {
		clearEnv(t)
		setValidProductionBase(t)
		t.Setenv("GROCER_DATABASE_PASSWORD", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL", func(t *testing.T) {
		clearEnv(t)
		setValidProductionBase(t)
		t.Setenv("GROCER_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})

	t.Run("requires explicit CORS origins", func(t *testing.T) {
		clearEnv(t)
		setValidProductionBase(t)
		t.Setenv("GROCER_HTTP_CORS_ALLOW_ORIGINS", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins")
	})

	t.Run("rejects wildcard CORS origin", func(t *testing.T) {
		clearEnv(t)
		setValidProductionBase(t)
		t.Setenv("GROCER_HTTP_CORS_ALLOW_ORIGINS", "*")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv(t)
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.App.IsProduction())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "/testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
