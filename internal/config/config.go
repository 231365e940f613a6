package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TABLESYNC_SERVER_URL.
const EnvPrefix = "TABLESYNC"

// Config holds all client configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Player  PlayerConfig  `mapstructure:"player"`
	Actions ActionsConfig `mapstructure:"actions"`
	Journal JournalConfig `mapstructure:"journal"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig describes the game server connection.
type ServerConfig struct {
	URL          string        `mapstructure:"url"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// PlayerConfig describes the local seat.
type PlayerConfig struct {
	Name      string `mapstructure:"name"`
	DeckFile  string `mapstructure:"deck_file"`
	Spectator bool   `mapstructure:"spectator"`
}

// ActionsConfig controls the card action dispatcher.
type ActionsConfig struct {
	// Seed drives the selection shuffle. Zero picks a time-based seed.
	Seed int64 `mapstructure:"seed"`
}

// JournalConfig controls session journaling. Empty values disable a destination.
type JournalConfig struct {
	Dir      string         `mapstructure:"dir"`
	Buffer   int            `mapstructure:"buffer"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr  string `mapstructure:"addr"`
	DB    int    `mapstructure:"db"`
	Queue string `mapstructure:"queue"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.url", "ws://localhost:4747/game")
	v.SetDefault("server.dial_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 5*time.Second)

	v.SetDefault("player.name", "player")
	v.SetDefault("player.deck_file", "")
	v.SetDefault("player.spectator", false)

	v.SetDefault("actions.seed", 0)

	v.SetDefault("journal.dir", "")
	v.SetDefault("journal.buffer", 256)
	v.SetDefault("journal.postgres.dsn", "")
	v.SetDefault("journal.redis.addr", "")
	v.SetDefault("journal.redis.db", 0)
	v.SetDefault("journal.redis.queue", "tablesync_events")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads configuration from path, then applies TABLESYNC_* environment
// overrides. A missing file is not an error; defaults and environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that have no usable fallback.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return errors.New("server.url is required")
	}
	if !strings.HasPrefix(c.Server.URL, "ws://") && !strings.HasPrefix(c.Server.URL, "wss://") {
		return fmt.Errorf("server.url %q: must be a ws:// or wss:// url", c.Server.URL)
	}
	if strings.TrimSpace(c.Player.Name) == "" {
		return errors.New("player.name is required")
	}
	if c.Journal.Buffer <= 0 {
		return fmt.Errorf("journal.buffer must be positive, got %d", c.Journal.Buffer)
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
