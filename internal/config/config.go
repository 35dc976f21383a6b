package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Lark    LarkConfig    `mapstructure:"lark"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Journal JournalConfig `mapstructure:"journal"`
	Server  ServerConfig  `mapstructure:"server"`
	Bot     BotConfig     `mapstructure:"bot"`
	Logger  LoggerConfig  `mapstructure:"logger"`
}

// LarkConfig holds Lark API configuration
type LarkConfig struct {
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
	// ChannelID is the chat_id of the purchase channel
	ChannelID  string        `mapstructure:"channel_id"`
	Reaction   string        `mapstructure:"reaction"`
	APITimeout time.Duration `mapstructure:"api_timeout"`
}

// RedisConfig holds request store configuration
type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// JournalConfig holds the message journal database configuration
type JournalConfig struct {
	Path         string `mapstructure:"path"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// BotConfig holds event handling settings
type BotConfig struct {
	NotifyInterval time.Duration `mapstructure:"notify_interval"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	EventBuffer    int           `mapstructure:"event_buffer"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// envFiles are loaded before the config file when present.
// Variables already set in the environment win.
var envFiles = []string{".env", ".env.local"}

// Load loads configuration from file and environment variables.
// An empty configPath reads defaults and environment only.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Redis.Addr = redisAddr(cfg.Redis.Addr)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := gotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Lark defaults
	v.SetDefault("lark.reaction", "OK")
	v.SetDefault("lark.api_timeout", 30*time.Second)

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "purchase")
	v.SetDefault("redis.dial_timeout", 5*time.Second)

	// Journal defaults
	v.SetDefault("journal.path", "data/journal.db")
	v.SetDefault("journal.max_open_conns", 1)

	// Server defaults
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	// Bot defaults
	v.SetDefault("bot.notify_interval", 60*time.Second)
	v.SetDefault("bot.poll_interval", 100*time.Millisecond)
	v.SetDefault("bot.event_buffer", 256)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) error {
	bindings := map[string]string{
		"lark.app_id":     "LARK_APP_ID",
		"lark.app_secret": "LARK_APP_SECRET",
		"lark.channel_id": "LARK_CHANNEL_ID",
		"redis.db":        "REDIS_DB",
		"redis.password":  "REDIS_PASSWORD",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

// redisAddr lets REDIS_HOST and REDIS_PORT override parts of the configured address
func redisAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		host, port = addr, "6379"
	}
	if h := strings.TrimSpace(os.Getenv("REDIS_HOST")); h != "" {
		host = h
	}
	if p := strings.TrimSpace(os.Getenv("REDIS_PORT")); p != "" {
		port = p
	}
	return net.JoinHostPort(host, port)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Lark.AppID == "" {
		return fmt.Errorf("lark.app_id is required")
	}
	if c.Lark.AppSecret == "" {
		return fmt.Errorf("lark.app_secret is required")
	}
	if c.Lark.ChannelID == "" {
		return fmt.Errorf("lark.channel_id is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.Redis.KeyPrefix == "" {
		return fmt.Errorf("redis.key_prefix is required")
	}

	if c.Journal.Path == "" {
		return fmt.Errorf("journal.path is required")
	}

	if c.Server.Enabled && (c.Server.Port < 0 || c.Server.Port > 65535) {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if c.Bot.NotifyInterval < 0 {
		return fmt.Errorf("bot.notify_interval cannot be negative")
	}
	if c.Bot.PollInterval <= 0 {
		return fmt.Errorf("bot.poll_interval must be positive")
	}

	return nil
}
