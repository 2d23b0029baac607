package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Tokens.VerificationTTL)
	assert.Equal(t, time.Hour, cfg.Tokens.PasswordResetTTL)
	assert.Equal(t, "aspire@aspireapp.online", cfg.SMTP.From)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.App.AllowedReturnURLs)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, uint32(64*1024), cfg.Hasher.MemoryKB)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "MEMORY")
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("TOKEN_VERIFICATION_TTL", "30m")
	t.Setenv("APP_FRONTEND_URL", "https://aspireapp.online/")
	t.Setenv("APP_ALLOWED_RETURN_URLS", "https://aspireapp.online, https://admin.aspireapp.online")
	t.Setenv("MQTT_TOPIC_PREFIX", "aspire/prod/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Tokens.VerificationTTL)
	assert.Equal(t, "https://aspireapp.online", cfg.App.FrontendURL)
	assert.Equal(t, []string{"https://aspireapp.online", "https://admin.aspireapp.online"}, cfg.App.AllowedReturnURLs)
	assert.Equal(t, "jwt-secret", cfg.Tokens.ResetSigningKey)
	assert.Equal(t, "aspire/prod", cfg.MQTT.TopicPrefix)
	require.NoError(t, cfg.Validate())
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SERVER_PORT=9090\nJWT_SECRET=from-file\n"), 0o600))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		JWT:      JWTConfig{Secret: "s"},
		Database: DatabaseConfig{Driver: DriverPostgres},
		Tokens:   TokenConfig{VerificationTTL: time.Minute, PasswordResetTTL: time.Minute, CleanupInterval: time.Hour},
	}
	assert.Error(t, cfg.Validate())

	cfg.Database.Host = "localhost"
	cfg.Database.DBName = "aspire"
	assert.NoError(t, cfg.Validate())

	cfg.JWT.Secret = ""
	assert.Error(t, cfg.Validate())

	cfg.JWT.Secret = "s"
	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg.Database.Driver = DriverMemory
	cfg.Tokens.CleanupInterval = 0
	assert.EqualError(t, cfg.Validate(), "TOKEN_CLEANUP_INTERVAL must be positive")
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: "5432", User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", db.DSN())
}
