package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LARK_APP_ID", "LARK_APP_SECRET", "LARK_CHANNEL_ID",
		"REDIS_HOST", "REDIS_PORT", "REDIS_DB", "REDIS_PASSWORD",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
lark:
  app_id: cli_test
  app_secret: secret
  channel_id: oc_purchase
redis:
  addr: redis.internal:6380
bot:
  notify_interval: 2m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "cli_test", cfg.Lark.AppID)
	assert.Equal(t, "oc_purchase", cfg.Lark.ChannelID)
	assert.Equal(t, "OK", cfg.Lark.Reaction)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, "purchase", cfg.Redis.KeyPrefix)
	assert.Equal(t, 2*time.Minute, cfg.Bot.NotifyInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.Bot.PollInterval)
	assert.Equal(t, 256, cfg.Bot.EventBuffer)
	assert.True(t, cfg.Server.Enabled)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/journal.db", cfg.Journal.Path)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LARK_APP_ID", "cli_env")
	t.Setenv("LARK_APP_SECRET", "env_secret")
	t.Setenv("LARK_CHANNEL_ID", "oc_env")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6390")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "cli_env", cfg.Lark.AppID)
	assert.Equal(t, "env_secret", cfg.Lark.AppSecret)
	assert.Equal(t, "oc_env", cfg.Lark.ChannelID)
	assert.Equal(t, "cache:6390", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoad_HostOnlyOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("LARK_APP_ID", "cli_env")
	t.Setenv("LARK_APP_SECRET", "env_secret")
	t.Setenv("LARK_CHANNEL_ID", "oc_env")
	t.Setenv("REDIS_HOST", "cache")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
lark:
  app_id: cli_test
  app_secret: secret
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lark.channel_id is required")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Lark:    LarkConfig{AppID: "a", AppSecret: "s", ChannelID: "c"},
			Redis:   RedisConfig{Addr: "localhost:6379", KeyPrefix: "purchase"},
			Journal: JournalConfig{Path: "journal.db"},
			Server:  ServerConfig{Enabled: true, Port: 8080},
			Bot:     BotConfig{PollInterval: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing app id", mutate: func(c *Config) { c.Lark.AppID = "" }, wantErr: "lark.app_id"},
		{name: "missing secret", mutate: func(c *Config) { c.Lark.AppSecret = "" }, wantErr: "lark.app_secret"},
		{name: "missing prefix", mutate: func(c *Config) { c.Redis.KeyPrefix = "" }, wantErr: "redis.key_prefix"},
		{name: "missing journal", mutate: func(c *Config) { c.Journal.Path = "" }, wantErr: "journal.path"},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "bad port ignored when disabled", mutate: func(c *Config) { c.Server.Enabled = false; c.Server.Port = 70000 }},
		{name: "negative interval", mutate: func(c *Config) { c.Bot.NotifyInterval = -time.Second }, wantErr: "bot.notify_interval"},
		{name: "zero poll", mutate: func(c *Config) { c.Bot.PollInterval = 0 }, wantErr: "bot.poll_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
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
