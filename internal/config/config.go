package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"planner/internal/storage/sqlstore"
)

// Config holds every setting the server needs at startup.
type Config struct {
	Addr           string
	DBPath         string
	DatabaseURL    string
	PGUser         string
	PGHost         string
	PGDatabase     string
	PGPassword     string
	PGPort         string
	SessionSecret  string
	SessionTTL     time.Duration
	SecureCookie   bool
	RequestTimeout time.Duration
	LogLevel       slog.Level
}

// New returns a viper instance with defaults and environment bindings.
// Flags registered on fs are bound to the matching keys.
func New(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", ":3000")
	v.SetDefault("db-path", "data/planner.db")
	v.SetDefault("pg-port", "5432")
	v.SetDefault("session-ttl", "24h")
	v.SetDefault("request-timeout", "10s")
	v.SetDefault("secure-cookie", false)
	v.SetDefault("log-level", "info")

	// Deployment variables keep their conventional, unprefixed names.
	_ = v.BindEnv("database-url", "DATABASE_URL")
	_ = v.BindEnv("pg-user", "PG_USER")
	_ = v.BindEnv("pg-host", "PG_HOST")
	_ = v.BindEnv("pg-database", "PG_DATABASE")
	_ = v.BindEnv("pg-password", "PG_PASSWORD")
	_ = v.BindEnv("pg-port", "PG_PORT")
	_ = v.BindEnv("session-secret", "SESSION_SECRET")

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}
	return v, nil
}

// Load reads an optional YAML file and materializes the settings.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := Config{
		Addr:           v.GetString("addr"),
		DBPath:         v.GetString("db-path"),
		DatabaseURL:    v.GetString("database-url"),
		PGUser:         v.GetString("pg-user"),
		PGHost:         v.GetString("pg-host"),
		PGDatabase:     v.GetString("pg-database"),
		PGPassword:     v.GetString("pg-password"),
		PGPort:         v.GetString("pg-port"),
		SessionSecret:  v.GetString("session-secret"),
		SessionTTL:     v.GetDuration("session-ttl"),
		SecureCookie:   v.GetBool("secure-cookie"),
		RequestTimeout: v.GetDuration("request-timeout"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("log-level"))); err != nil {
		return Config{}, fmt.Errorf("log-level: %w", err)
	}
	if cfg.RequestTimeout <= 0 {
		return Config{}, fmt.Errorf("request-timeout must be positive")
	}
	return cfg, nil
}

// Database picks the store driver: PostgreSQL when DATABASE_URL or PG_HOST
// is set, SQLite otherwise.
func (c Config) Database() sqlstore.Options {
	switch {
	case c.DatabaseURL != "":
		return sqlstore.Options{Driver: sqlstore.DriverPostgres, DSN: c.DatabaseURL}
	case c.PGHost != "":
		u := url.URL{
			Scheme:   "postgres",
			Host:     net.JoinHostPort(c.PGHost, c.PGPort),
			Path:     "/" + c.PGDatabase,
			RawQuery: "sslmode=disable",
		}
		if c.PGUser != "" {
			u.User = url.UserPassword(c.PGUser, c.PGPassword)
		}
		return sqlstore.Options{Driver: sqlstore.DriverPostgres, DSN: u.String()}
	default:
		return sqlstore.Options{Driver: sqlstore.DriverSQLite, DSN: c.DBPath}
	}
}
