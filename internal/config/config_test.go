package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OUTREACH_DATABASE_URL", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.AuthEnabled)
	assert.True(t, cfg.ReminderEnabled)
	assert.Equal(t, "@every 1h", cfg.ReminderSchedule)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "outreach.yaml")
	content := `
database_url: postgres://file@localhost/outreach
port: 9090
env: production
timezone: Europe/Berlin
auth:
  enabled: false
reminder:
  schedule: "0 9 * * *"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OUTREACH_DATABASE_URL", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://file@localhost/outreach", cfg.DatabaseURL)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.False(t, cfg.AuthEnabled)
	assert.Equal(t, "0 9 * * *", cfg.ReminderSchedule)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "outreach.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9090\n"), 0o600))

	t.Setenv("OUTREACH_PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://env@localhost/outreach")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "postgres://env@localhost/outreach", cfg.DatabaseURL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.DatabaseURL = "postgres://localhost/outreach"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: "database_url"},
		{name: "bad port", mutate: func(c *Config) { c.Port = 0 }, wantErr: "port"},
		{name: "bad env", mutate: func(c *Config) { c.Env = "staging" }, wantErr: "env"},
		{name: "bad timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }, wantErr: "timezone"},
		{name: "bad schedule", mutate: func(c *Config) { c.ReminderSchedule = "whenever" }, wantErr: "reminder schedule"},
		{name: "bad schedule ignored when disabled", mutate: func(c *Config) {
			c.ReminderEnabled = false
			c.ReminderSchedule = "whenever"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Timezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}
