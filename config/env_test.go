package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("REVIEW_TX_MAX_ATTEMPTS", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := LoadConfig()

	assert.Equal(t, "development", cfg.AppEnv)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 5, cfg.ReviewTxMaxAttempts)
	assert.Equal(t, 20*time.Millisecond, cfg.ReviewTxBaseDelay)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Minute, cfg.CartIdleTTL)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("REVIEW_TX_MAX_ATTEMPTS", "9")
	t.Setenv("REVIEW_TX_MAX_DELAY", "2s")
	t.Setenv("CART_TTL", "not-a-duration")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("AUTO_MIGRATE", "false")

	cfg := LoadConfig()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9, cfg.ReviewTxMaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.ReviewTxMaxDelay)
	assert.Equal(t, 30*24*time.Hour, cfg.CartTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.AutoMigrate)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "1", DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:1/d?sslmode=disable", cfg.DSN())

	cfg.DatabaseURL = "postgres://elsewhere/db"
	assert.Equal(t, "postgres://elsewhere/db", cfg.DSN())
}
