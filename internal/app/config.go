package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. FOODLINK_SERVER_PORT.
const EnvPrefix = "FOODLINK"

// Config represents the runtime configuration for the FoodLink backend.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Donations   DonationsConfig   `mapstructure:"donations"`
	Location    LocationConfig    `mapstructure:"location"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	RateLimit   RateLimitConfig   `mapstructure:"ratelimit"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver          string            `mapstructure:"driver"`
	Path            string            `mapstructure:"path"`
	DSN             string            `mapstructure:"dsn"`
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Name            string            `mapstructure:"name"`
	User            string            `mapstructure:"user"`
	Password        string            `mapstructure:"password"`
	Options         map[string]string `mapstructure:"options"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration     `mapstructure:"conn_max_lifetime"`
}

// AuthConfig captures all authentication-related settings.
type AuthConfig struct {
	JWT     JWTSettings     `mapstructure:"jwt"`
	Session SessionSettings `mapstructure:"session"`
}

// JWTSettings configures JWT access tokens.
type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"access_token_ttl"`
}

// SessionSettings configures refresh tokens and session lifetimes.
type SessionSettings struct {
	RefreshTTL    time.Duration `mapstructure:"refresh_token_ttl"`
	RefreshLength int           `mapstructure:"refresh_token_length"`
}

// StorageConfig configures blob storage for photos and documents.
type StorageConfig struct {
	Root          string   `mapstructure:"root"`
	PublicBaseURL string   `mapstructure:"public_base_url"`
	MaxUploadSize int64    `mapstructure:"max_upload_size"`
	Buckets       []string `mapstructure:"buckets"`
}

// DonationsConfig holds the constants used by the lifecycle and aggregation views.
type DonationsConfig struct {
	MealsPerDonation int `mapstructure:"meals_per_donation"`
	PeoplePerClaim   int `mapstructure:"people_per_claim"`
	LeaderboardLimit int `mapstructure:"leaderboard_limit"`
	QueryPageLimit   int `mapstructure:"query_page_limit"`
}

// LocationConfig selects the address-to-city strategy.
type LocationConfig struct {
	Strategy string `mapstructure:"strategy"`
}

// MaintenanceConfig schedules background jobs.
type MaintenanceConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	SessionSchedule string `mapstructure:"session_schedule"`
	ExpirySchedule  string `mapstructure:"expiry_schedule"`
}

// RateLimitConfig bounds per-client request rates on the public API.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
// Extra paths are searched for config.yaml after ./config; a path ending in .yaml or
// .yml is read directly.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		if path == "" {
			continue
		}
		if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
			v.SetConfigFile(path)
			continue
		}
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/foodlink.sqlite")

	v.SetDefault("auth.jwt.issuer", "foodlink")
	v.SetDefault("auth.jwt.access_token_ttl", "15m")
	v.SetDefault("auth.session.refresh_token_ttl", "720h") // 30 days
	v.SetDefault("auth.session.refresh_token_length", 48)

	v.SetDefault("storage.root", "./data/files")
	v.SetDefault("storage.public_base_url", "")
	v.SetDefault("storage.max_upload_size", 5<<20)
	v.SetDefault("storage.buckets", []string{"food-photos", "ngo-docs"})

	v.SetDefault("donations.meals_per_donation", 5)
	v.SetDefault("donations.people_per_claim", 3)
	v.SetDefault("donations.leaderboard_limit", 5)
	v.SetDefault("donations.query_page_limit", 1000)

	v.SetDefault("location.strategy", "curated")

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.session_schedule", "@hourly")
	v.SetDefault("maintenance.expiry_schedule", "@every 15m")

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.rps", 10)
	v.SetDefault("ratelimit.burst", 20)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
