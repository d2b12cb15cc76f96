package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Market   MarketConfig   `yaml:"market"`
	Admin    AdminConfig    `yaml:"admin"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Addr     string `yaml:"addr"`
	WSOrigin string `yaml:"ws_origin"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	MinConns int32  `yaml:"min_conns"`
	MaxConns int32  `yaml:"max_conns"`
}

type AuthConfig struct {
	Required         bool   `yaml:"required"`
	Issuer           string `yaml:"issuer"`
	Secret           string `yaml:"secret"`
	TTL              string `yaml:"ttl"`
	ClientID         string `yaml:"client_id"`
	ClientSecretHash string `yaml:"client_secret_hash"`
}

type MarketConfig struct {
	TickInterval string            `yaml:"tick_interval"`
	SeedBalance  string            `yaml:"seed_balance"`
	Symbols      map[string]string `yaml:"symbols"`
}

type AdminConfig struct {
	InternalToken string `yaml:"internal_token"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	DefaultAddr         = "127.0.0.1:9000"
	DefaultWSOrigin     = "*"
	DefaultDSN          = "postgres://localhost:5432/papertrader?sslmode=disable"
	DefaultMinConns     = 2
	DefaultMaxConns     = 10
	DefaultIssuer       = "papertrader"
	DefaultTTL          = "30m"
	DefaultTickInterval = "1s"
	DefaultSeedBalance  = "200000"
	DefaultLogLevel     = "info"
)

// Load builds the configuration from an optional YAML file plus environment
// overrides. ${VAR} references inside the file are expanded before parsing.
// An empty path means env-and-defaults only.
func Load(path string) (Config, error) {
	var c Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config file: %w", err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &c); err != nil {
			return c, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	if err := c.applyEnv(); err != nil {
		return c, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Addr, "HTTP_ADDR")
	setString(&c.Server.WSOrigin, "WS_ORIGIN")
	setString(&c.Database.DSN, "DB_DSN")
	setString(&c.Auth.Issuer, "JWT_ISSUER")
	setString(&c.Auth.Secret, "JWT_SECRET")
	setString(&c.Auth.TTL, "JWT_TTL")
	setString(&c.Auth.ClientID, "OAUTH_CLIENT_ID")
	setString(&c.Auth.ClientSecretHash, "OAUTH_CLIENT_SECRET_HASH")
	setString(&c.Admin.InternalToken, "INTERNAL_API_TOKEN")
	setString(&c.Market.TickInterval, "TICK_INTERVAL")
	setString(&c.Market.SeedBalance, "SEED_BALANCE")
	setString(&c.Log.Level, "LOG_LEVEL")
	if v := os.Getenv("AUTH_REQUIRED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid AUTH_REQUIRED: %w", err)
		}
		c.Auth.Required = b
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.WSOrigin == "" {
		c.Server.WSOrigin = DefaultWSOrigin
	}
	if c.Database.DSN == "" {
		c.Database.DSN = DefaultDSN
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = DefaultIssuer
	}
	if c.Auth.TTL == "" {
		c.Auth.TTL = DefaultTTL
	}
	if c.Market.TickInterval == "" {
		c.Market.TickInterval = DefaultTickInterval
	}
	if c.Market.SeedBalance == "" {
		c.Market.SeedBalance = DefaultSeedBalance
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Validate checks required fields and value shapes after defaults applied.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Database.MinConns < 0 {
		return errors.New("database.min_conns must be >= 0")
	}
	if c.Database.MaxConns < 1 {
		return errors.New("database.max_conns must be >= 1")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) cannot exceed max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}
	if _, err := time.ParseDuration(c.Auth.TTL); err != nil {
		return fmt.Errorf("invalid auth.ttl: %w", err)
	}
	if c.Auth.Required && c.Auth.Secret == "" {
		return errors.New("auth.secret is required when auth.required is true")
	}
	d, err := time.ParseDuration(c.Market.TickInterval)
	if err != nil {
		return fmt.Errorf("invalid market.tick_interval: %w", err)
	}
	if d <= 0 {
		return errors.New("market.tick_interval must be positive")
	}
	seed, err := decimal.NewFromString(c.Market.SeedBalance)
	if err != nil {
		return fmt.Errorf("invalid market.seed_balance: %w", err)
	}
	if seed.IsNegative() || seed.IsZero() {
		return errors.New("market.seed_balance must be positive")
	}
	for sym, price := range c.Market.Symbols {
		p, err := decimal.NewFromString(price)
		if err != nil || !p.IsPositive() {
			return fmt.Errorf("invalid market.symbols seed for %s: %q", sym, price)
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q: use debug, info, warn or error", c.Log.Level)
	}
	return nil
}

// TokenTTL returns the parsed token lifetime. Validate guarantees the value
// parses.
func (a AuthConfig) TokenTTL() time.Duration {
	d, _ := time.ParseDuration(a.TTL)
	return d
}

// Interval returns the parsed scheduler period.
func (m MarketConfig) Interval() time.Duration {
	d, _ := time.ParseDuration(m.TickInterval)
	return d
}

// Seed returns the parsed account seed balance.
func (m MarketConfig) Seed() decimal.Decimal {
	d, _ := decimal.NewFromString(m.SeedBalance)
	return d
}

// SlogLevel maps the configured level name onto a slog level.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SymbolBases returns the configured extra symbols with parsed base prices.
func (m MarketConfig) SymbolBases() map[string]decimal.Decimal {
	if len(m.Symbols) == 0 {
		return nil
	}
	out := make(map[string]decimal.Decimal, len(m.Symbols))
	for sym, price := range m.Symbols {
		d, _ := decimal.NewFromString(price)
		out[sym] = d
	}
	return out
}
