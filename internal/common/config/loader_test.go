package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  name: activities-test\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "activities-test", cfg.App.Name)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "/static/index.html", cfg.Server.LandingPath)
	assert.Equal(t, "", cfg.Registry.CatalogPath)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, "activities.participants", cfg.Events.Channel)
	assert.Equal(t, 100, cfg.Events.RecentLimit)
	assert.False(t, cfg.Audit.Enabled)
	assert.Equal(t, "disable", cfg.Audit.Postgres.SSLMode)
	assert.False(t, cfg.Notifications.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile_FileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9100
  static_dir: /srv/static
events:
  enabled: true
  redis:
    address: redis:6379
  channel: school.signups
audit:
  enabled: true
  postgres:
    host: db
    database: school
    user: registrar
notifications:
  enabled: true
  from_email: office@mergington.edu
  aws:
    region: eu-west-1
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, ":9100", cfg.Server.Addr())
	assert.Equal(t, "/srv/static", cfg.Server.StaticDir)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, "redis:6379", cfg.Events.Redis.Address)
	assert.Equal(t, "school.signups", cfg.Events.Channel)
	assert.Equal(t, "activities:events:recent", cfg.Events.RecentKey)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, 5432, cfg.Audit.Postgres.Port)
	assert.Equal(t, "host=db port=5432 user=registrar password= dbname=school sslmode=disable", cfg.Audit.Postgres.GetDSN())
	assert.Equal(t, "office@mergington.edu", cfg.Notifications.FromEmail)
	assert.Equal(t, "eu-west-1", cfg.Notifications.AWS.Region)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9200")
	t.Setenv("LOGGING_LEVEL", "debug")
	path := writeConfig(t, "server:\n  port: 9100\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("AUDIT_DB_PASSWORD_SOURCE", "s3cret")
	path := writeConfig(t, `
audit:
  postgres:
    password: ${AUDIT_DB_PASSWORD_SOURCE}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Audit.Postgres.Password)
}

func TestLoadFromFile_UnsetPlaceholderIsEmpty(t *testing.T) {
	require.NoError(t, os.Unsetenv("AUDIT_DB_PASSWORD_MISSING"))
	path := writeConfig(t, `
audit:
  postgres:
    password: ${AUDIT_DB_PASSWORD_MISSING}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Audit.Postgres.Password)
	assert.NotContains(t, cfg.Audit.Postgres.GetDSN(), "${")
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		errMsg string
	}{
		{
			name:   "invalid port",
			body:   "server:\n  port: 70000\n",
			errMsg: "server.port must be between 1 and 65535",
		},
		{
			name:   "relative landing path",
			body:   "server:\n  landing_path: static/index.html\n",
			errMsg: "server.landing_path must be an absolute path",
		},
		{
			name:   "events without channel",
			body:   "events:\n  enabled: true\n  channel: \"\"\n",
			errMsg: "events.channel is required",
		},
		{
			name:   "audit without user",
			body:   "audit:\n  enabled: true\n",
			errMsg: "audit.postgres.user is required",
		},
		{
			name:   "notifications without sender",
			body:   "notifications:\n  enabled: true\n",
			errMsg: "notifications.from_email is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}
