package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	defaultDSN            = "host=localhost user=postgres password=postgres dbname=resto port=5432 sslmode=disable"
	defaultCORSOrigins    = "http://localhost:5173"
	defaultAdminPassword  = "admin123"
	minSessionSecretBytes = 32
)

type Config struct {
	HTTPPort      string
	DatabaseDSN   string
	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool
	CORSOrigins   string

	LogLevel  string
	LogFormat string // json | text

	AdminUsername  string
	AdminEmail     string
	AdminPassword  string
	SeedSampleMenu bool

	ReportTopItems int
	LoginRateLimit int // attempts per minute per IP
}

// Load reads configuration from an optional .env file and the process
// environment, environment winning.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		logrus.WithError(err).Debug(".env not found, using environment only")
	}
	v.AutomaticEnv()

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("DATABASE_DSN", defaultDSN)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", defaultCORSOrigins)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_EMAIL", "admin@resto.com")
	v.SetDefault("ADMIN_PASSWORD", defaultAdminPassword)
	v.SetDefault("SEED_SAMPLE_MENU", true)
	v.SetDefault("REPORT_TOP_ITEMS", 5)
	v.SetDefault("LOGIN_RATE_LIMIT", 10)

	cfg := &Config{
		HTTPPort:       v.GetString("HTTP_PORT"),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		SessionSecret:  v.GetString("SESSION_SECRET"),
		SessionTTL:     v.GetDuration("SESSION_TTL"),
		CookieSecure:   v.GetBool("COOKIE_SECURE"),
		CORSOrigins:    v.GetString("CORS_ALLOWED_ORIGINS"),
		LogLevel:       strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:      strings.ToLower(v.GetString("LOG_FORMAT")),
		AdminUsername:  v.GetString("ADMIN_USERNAME"),
		AdminEmail:     v.GetString("ADMIN_EMAIL"),
		AdminPassword:  v.GetString("ADMIN_PASSWORD"),
		SeedSampleMenu: v.GetBool("SEED_SAMPLE_MENU"),
		ReportTopItems: v.GetInt("REPORT_TOP_ITEMS"),
		LoginRateLimit: v.GetInt("LOGIN_RATE_LIMIT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.warnDefaults()
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is not set")
	}
	if len(c.SessionSecret) < minSessionSecretBytes {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters", minSessionSecretBytes)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.ReportTopItems <= 0 {
		return fmt.Errorf("REPORT_TOP_ITEMS must be positive, got %d", c.ReportTopItems)
	}
	if c.LoginRateLimit <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be positive, got %d", c.LoginRateLimit)
	}
	return nil
}

func (c *Config) warnDefaults() {
	if c.DatabaseDSN == defaultDSN {
		logrus.Warn("DATABASE_DSN uses the default value, set your own Postgres connection for production")
	}
	if c.CORSOrigins == defaultCORSOrigins {
		logrus.Warn("CORS_ALLOWED_ORIGINS uses the default value, set your own domain for production")
	}
	if c.AdminPassword == defaultAdminPassword {
		logrus.Warn("ADMIN_PASSWORD uses the default value, change it before going live")
	}
}

// CORSOriginList splits the comma separated CORS_ALLOWED_ORIGINS value.
func (c *Config) CORSOriginList() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
