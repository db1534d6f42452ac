package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/Nomadcxx/cinepost/internal/paths"
)

// TelegramConfig contains bot transport settings.
type TelegramConfig struct {
	Token string `mapstructure:"token"`
	// ChannelID is the channel posts are published to. Negative ids are
	// normal for Telegram channels.
	ChannelID int64 `mapstructure:"channel_id"`
	// AllowedUserIDs restricts who may feed the bot. Empty means anyone.
	AllowedUserIDs []int64 `mapstructure:"allowed_user_ids"`
}

// TMDBConfig contains metadata provider settings.
type TMDBConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	ImageBaseURL   string `mapstructure:"image_base_url"`
	Language       string `mapstructure:"language"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries"`
	RateLimitMS    int    `mapstructure:"rate_limit_ms"`
	// TrustOrder keeps the provider's relevance order; when false results
	// are re-sorted by vote count.
	TrustOrder bool `mapstructure:"trust_order"`
}

// SessionConfig controls the disambiguation flow.
type SessionConfig struct {
	TimeoutMinutes int `mapstructure:"timeout_minutes"`
	MaxResults     int `mapstructure:"max_results"`
}

// CacheConfig controls the poster cache.
type CacheConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	TTLHours   int    `mapstructure:"ttl_hours"`
	MaxEntries int    `mapstructure:"max_entries"`
}

// HealthConfig controls the status HTTP endpoint.
type HealthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// ParserConfig controls filename parsing.
type ParserConfig struct {
	// RulesFile is an optional file of extra noise patterns, one regex
	// per line. Changes are picked up without a restart.
	RulesFile string `mapstructure:"rules_file"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	TMDB     TMDBConfig     `mapstructure:"tmdb"`
	Session  SessionConfig  `mapstructure:"session"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Health   HealthConfig   `mapstructure:"health"`
	Parser   ParserConfig   `mapstructure:"parser"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			Token:          "",
			ChannelID:      0,
			AllowedUserIDs: []int64{},
		},
		TMDB: TMDBConfig{
			APIKey:         "",
			BaseURL:        "https://api.themoviedb.org/3",
			ImageBaseURL:   "https://image.tmdb.org/t/p",
			Language:       "en-US",
			TimeoutSeconds: 30,
			MaxRetries:     3,
			RateLimitMS:    250,
			TrustOrder:     true,
		},
		Session: SessionConfig{
			TimeoutMinutes: 10,
			MaxResults:     5,
		},
		Cache: CacheConfig{
			Enabled:    true,
			Path:       "",
			TTLHours:   24,
			MaxEntries: 512,
		},
		Health: HealthConfig{
			Enabled: false,
			Addr:    ":8787",
		},
		Parser: ParserConfig{
			RulesFile: "",
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}

// Load loads configuration from file or returns defaults. Secrets may
// also come from the environment: CINEPOST_TELEGRAM_TOKEN and
// CINEPOST_TMDB_API_KEY override the file.
func Load() (*Config, error) {
	v := viper.New()

	configPath, err := paths.ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to get config path: %w", err)
	}
	v.SetConfigFile(configPath)

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	v.BindEnv("telegram.token", "CINEPOST_TELEGRAM_TOKEN")
	v.BindEnv("tmdb.api_key", "CINEPOST_TMDB_API_KEY")

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the config can actually run a bot.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return fmt.Errorf("telegram.token is required (or set CINEPOST_TELEGRAM_TOKEN)")
	}
	if c.Telegram.ChannelID == 0 {
		return fmt.Errorf("telegram.channel_id is required")
	}
	if strings.TrimSpace(c.TMDB.APIKey) == "" {
		return fmt.Errorf("tmdb.api_key is required (or set CINEPOST_TMDB_API_KEY)")
	}
	if c.TMDB.Language != "" {
		if _, err := language.Parse(c.TMDB.Language); err != nil {
			return fmt.Errorf("tmdb.language %q is not a valid language tag: %w", c.TMDB.Language, err)
		}
	}
	if c.Session.TimeoutMinutes < 0 {
		return fmt.Errorf("session.timeout_minutes must not be negative")
	}
	if c.Session.MaxResults < 0 {
		return fmt.Errorf("session.max_results must not be negative")
	}
	return nil
}

// IsUserAllowed reports whether a Telegram user may feed the bot.
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.Telegram.AllowedUserIDs) == 0 {
		return true
	}
	for _, id := range c.Telegram.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// SessionTimeout returns the session timeout as a duration.
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.Session.TimeoutMinutes) * time.Minute
}

// CacheTTL returns the poster cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// Save saves configuration to file
func (c *Config) Save() error {
	configFile, err := ConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}

	content := c.ToTOML()
	return os.WriteFile(configFile, []byte(content), 0600)
}

func ConfigPath() (string, error) {
	return paths.ConfigPath()
}

func ConfigExists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (c *Config) ToTOML() string {
	return fmt.Sprintf(`# Cinepost Configuration
# Generated by: cinepost config init

# ============================================================================
# TELEGRAM
# Bot token from @BotFather; channel_id is where confirmed posts go.
# The bot must be an administrator of the channel.
# ============================================================================
[telegram]
token = "%s"
channel_id = %d

# Users allowed to feed the bot. Empty allows everyone.
allowed_user_ids = %s

# ============================================================================
# TMDB
# Metadata provider. Get an API key from themoviedb.org.
# ============================================================================
[tmdb]
api_key = "%s"
base_url = "%s"
image_base_url = "%s"
language = "%s"
timeout_seconds = %d
max_retries = %d

# Minimum delay between API calls
rate_limit_ms = %d

# Keep the provider's relevance order. Set false to re-rank by vote count.
trust_order = %v

# ============================================================================
# SESSIONS
# Each uploaded file opens a session; idle sessions expire.
# ============================================================================
[session]
timeout_minutes = %d
max_results = %d

# ============================================================================
# POSTER CACHE
# Downloaded poster images are cached locally.
# ============================================================================
[cache]
enabled = %v
path = "%s"
ttl_hours = %d
max_entries = %d

# ============================================================================
# HEALTH ENDPOINT
# Optional HTTP endpoint exposing bot status.
# ============================================================================
[health]
enabled = %v
addr = "%s"

# ============================================================================
# PARSER
# Optional file of extra junk patterns, one regex per line.
# ============================================================================
[parser]
rules_file = "%s"

# ============================================================================
# LOGGING
# ============================================================================
[logging]
level = "%s"
file = "%s"
max_size_mb = %d
max_backups = %d
`,
		c.Telegram.Token,
		c.Telegram.ChannelID,
		formatInt64Slice(c.Telegram.AllowedUserIDs),
		c.TMDB.APIKey,
		c.TMDB.BaseURL,
		c.TMDB.ImageBaseURL,
		c.TMDB.Language,
		c.TMDB.TimeoutSeconds,
		c.TMDB.MaxRetries,
		c.TMDB.RateLimitMS,
		c.TMDB.TrustOrder,
		c.Session.TimeoutMinutes,
		c.Session.MaxResults,
		c.Cache.Enabled,
		c.Cache.Path,
		c.Cache.TTLHours,
		c.Cache.MaxEntries,
		c.Health.Enabled,
		c.Health.Addr,
		c.Parser.RulesFile,
		c.Logging.Level,
		c.Logging.File,
		c.Logging.MaxSizeMB,
		c.Logging.MaxBackups,
	)
}

func formatInt64Slice(s []int64) string {
	if len(s) == 0 {
		return "[]"
	}
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
