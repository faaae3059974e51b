// Package config loads duel settings from YAML with GEMDUEL_* environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Network NetworkConfig `mapstructure:"network"`
	Logging LoggingConfig `mapstructure:"logging"`
	Storage StorageConfig `mapstructure:"storage"`
	Data    DataConfig    `mapstructure:"data"`
	Match   MatchConfig   `mapstructure:"match"`
}

// NetworkConfig configures the peer connection and heartbeat.
type NetworkConfig struct {
	// Transport is "websocket" or "grpc".
	Transport         string        `mapstructure:"transport"`
	ListenAddr        string        `mapstructure:"listen_addr"`
	Path              string        `mapstructure:"path"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	UnstableAfter     time.Duration `mapstructure:"unstable_after"`
	DisconnectedAfter time.Duration `mapstructure:"disconnected_after"`

	// InviteSecret, when set, makes the host accept only guests holding a signed invite.
	InviteSecret string        `mapstructure:"invite_secret"`
	InviteTTL    time.Duration `mapstructure:"invite_ttl"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StorageConfig selects where action logs are persisted.
type StorageConfig struct {
	// Driver is "memory", "sqlite", "postgres" or "redis".
	Driver      string `mapstructure:"driver"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
	RedisAddr   string `mapstructure:"redis_addr"`
	ExportDir   string `mapstructure:"export_dir"`
}

// DataConfig points at replacement card and buff tables. Empty paths use the built-ins.
type DataConfig struct {
	CardsFile string `mapstructure:"cards_file"`
	BuffsFile string `mapstructure:"buffs_file"`
}

// MatchConfig sets up new matches.
type MatchConfig struct {
	Mode        string   `mapstructure:"mode"`
	Draft       bool     `mapstructure:"draft"`
	DraftLevel  int      `mapstructure:"draft_level"`
	Seed        int64    `mapstructure:"seed"`
	FirstPlayer string   `mapstructure:"first_player"`
	Buffs       []string `mapstructure:"buffs"`
}

// Every key has a default so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("network.transport", "websocket")
	v.SetDefault("network.listen_addr", ":7480")
	v.SetDefault("network.path", "/duel")
	v.SetDefault("network.heartbeat_interval", 2*time.Second)
	v.SetDefault("network.unstable_after", 5*time.Second)
	v.SetDefault("network.disconnected_after", 15*time.Second)
	v.SetDefault("network.invite_secret", "")
	v.SetDefault("network.invite_ttl", 30*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.sqlite_path", "gemduel.db")
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.export_dir", "replays")

	v.SetDefault("data.cards_file", "")
	v.SetDefault("data.buffs_file", "")

	v.SetDefault("match.mode", "online")
	v.SetDefault("match.draft", true)
	v.SetDefault("match.draft_level", 1)
	v.SetDefault("match.seed", 0)
	v.SetDefault("match.first_player", "p1")
	v.SetDefault("match.buffs", []string{})
}

// LoadEnvFile exports the variables of a dotenv file into the process environment.
// Variables already set win.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Load reads path (optional) and applies environment overrides such as
// GEMDUEL_LOGGING_LEVEL=debug.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GEMDUEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
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

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite", "redis":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Match.Mode {
	case "local", "online", "pve":
	default:
		return fmt.Errorf("unknown match mode %q", c.Match.Mode)
	}
	switch c.Match.FirstPlayer {
	case "p1", "p2":
	default:
		return fmt.Errorf("unknown first player %q", c.Match.FirstPlayer)
	}
	if c.Match.DraftLevel < 1 || c.Match.DraftLevel > 3 {
		return fmt.Errorf("match.draft_level must be 1-3, got %d", c.Match.DraftLevel)
	}
	if !c.Match.Draft && len(c.Match.Buffs) != 0 && len(c.Match.Buffs) != 2 {
		return fmt.Errorf("match.buffs needs one buff per player, got %d", len(c.Match.Buffs))
	}
	switch c.Network.Transport {
	case "websocket", "grpc":
	default:
		return fmt.Errorf("unknown network transport %q", c.Network.Transport)
	}
	if c.Network.HeartbeatInterval <= 0 {
		return fmt.Errorf("network.heartbeat_interval must be positive")
	}
	return nil
}
