// Package config contains everything related to configuration
package config

import (
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Mail    MailConfig
	Catalog CatalogConfig
	Report  ReportConfig

	DesktopNotify bool
	LogLevel      string
}

// MailConfig holds the sender, recipients and SMTP connection settings.
type MailConfig struct {
	From        string
	To          []string
	SMTP        SMTPConfig
	SendTimeout time.Duration
}

// SMTPConfig describes how to reach the SMTP server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// ImplicitTLS reports whether the connection is TLS from the first byte.
// Any other port starts in plain text and upgrades with STARTTLS.
func (c SMTPConfig) ImplicitTLS() bool {
	return c.Port == implicitTLSPort
}

// CatalogConfig selects where the model catalog is read from.
type CatalogConfig struct {
	ModelsPath   string
	StatsPath    string
	DatabasePath string
}

// UseDatabase reports whether the SQLite catalog replaces the catalog files.
func (c CatalogConfig) UseDatabase() bool {
	return c.DatabasePath != ""
}

// ReportConfig controls presentation of the digest.
type ReportConfig struct {
	Locale   string
	Location *time.Location
}

// Default values
const (
	defaultSMTPPort    = 587
	implicitTLSPort    = 465
	defaultSendTimeout = 60 * time.Second
	defaultLocale      = "en-US"
	defaultModelsPath  = "models.json"
	defaultStatsPath   = "stats.json"
	defaultLogLevel    = "info"
)

// Setting documents one required environment variable.
type Setting struct {
	Name    string
	Purpose string
}

// RequiredSettings lists every variable needed to send the digest.
var RequiredSettings = []Setting{
	{"TO_EMAILS", "comma-separated list of recipient email addresses"},
	{"FROM_EMAIL", "sender email address"},
	{"SMTP_HOST", "SMTP server hostname"},
	{"SMTP_PORT", fmt.Sprintf("SMTP server port (default: %d)", defaultSMTPPort)},
	{"SMTP_USER", "SMTP username"},
	{"SMTP_PASS", "SMTP password or app password"},
}

// ConfigurationError reports required settings that are absent or invalid.
type ConfigurationError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required environment variables: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid settings: "+strings.Join(e.Invalid, "; "))
	}
	return strings.Join(parts, "; ")
}

// Usage returns the itemized list of required settings and their purpose.
func (e *ConfigurationError) Usage() string {
	var b strings.Builder
	if len(e.Invalid) > 0 {
		b.WriteString("Invalid configuration:\n")
		for _, msg := range e.Invalid {
			fmt.Fprintf(&b, "  %s\n", msg)
		}
	}
	if len(e.Missing) > 0 {
		b.WriteString("Missing required environment variables:\n")
	} else {
		b.WriteString("Required environment variables:\n")
	}
	for _, s := range RequiredSettings {
		fmt.Fprintf(&b, "- %s: %s\n", s.Name, s.Purpose)
	}
	return b.String()
}

// Load reads configuration from .env files and environment variables.
// Mail settings are not validated here; see ValidateMail.
func Load() (*Config, error) {
	// The first .env found wins; real environment variables always take precedence.
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	location, err := getEnvLocation("REPORT_TIMEZONE", time.Local)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Mail: MailConfig{
			From: strings.TrimSpace(os.Getenv("FROM_EMAIL")),
			To:   splitList(os.Getenv("TO_EMAILS")),
			SMTP: SMTPConfig{
				Host:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
				Port:     getEnvInt("SMTP_PORT", defaultSMTPPort),
				Username: os.Getenv("SMTP_USER"),
				Password: os.Getenv("SMTP_PASS"),
			},
			SendTimeout: getEnvDuration("SEND_TIMEOUT", defaultSendTimeout),
		},
		Catalog: CatalogConfig{
			ModelsPath:   getEnvString("CATALOG_MODELS_PATH", defaultModelsPath),
			StatsPath:    getEnvString("CATALOG_STATS_PATH", defaultStatsPath),
			DatabasePath: os.Getenv("DATABASE_PATH"),
		},
		Report: ReportConfig{
			Locale:   getEnvString("REPORT_LOCALE", defaultLocale),
			Location: location,
		},
		DesktopNotify: getEnvBool("DESKTOP_NOTIFY", false),
		LogLevel:      getEnvString("LOG_LEVEL", defaultLogLevel),
	}

	return cfg, nil
}

// ValidateMail checks that everything needed to send the digest is present.
// All problems are reported at once.
func (c *Config) ValidateMail() error {
	cfgErr := &ConfigurationError{}

	if len(c.Mail.To) == 0 {
		cfgErr.Missing = append(cfgErr.Missing, "TO_EMAILS")
	}
	if c.Mail.From == "" {
		cfgErr.Missing = append(cfgErr.Missing, "FROM_EMAIL")
	}
	if c.Mail.SMTP.Host == "" {
		cfgErr.Missing = append(cfgErr.Missing, "SMTP_HOST")
	}
	if c.Mail.SMTP.Username == "" {
		cfgErr.Missing = append(cfgErr.Missing, "SMTP_USER")
	}
	if c.Mail.SMTP.Password == "" {
		cfgErr.Missing = append(cfgErr.Missing, "SMTP_PASS")
	}

	if c.Mail.From != "" {
		if _, err := mail.ParseAddress(c.Mail.From); err != nil {
			cfgErr.Invalid = append(cfgErr.Invalid, fmt.Sprintf("FROM_EMAIL %q: %v", c.Mail.From, err))
		}
	}
	for _, addr := range c.Mail.To {
		if _, err := mail.ParseAddress(addr); err != nil {
			cfgErr.Invalid = append(cfgErr.Invalid, fmt.Sprintf("TO_EMAILS entry %q: %v", addr, err))
		}
	}
	if c.Mail.SMTP.Port <= 0 || c.Mail.SMTP.Port > 65535 {
		cfgErr.Invalid = append(cfgErr.Invalid, fmt.Sprintf("SMTP_PORT %d out of range", c.Mail.SMTP.Port))
	}

	if len(cfgErr.Missing) > 0 || len(cfgErr.Invalid) > 0 {
		return cfgErr
	}
	return nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "weekly-report", ".env"))
	}

	return paths
}

// splitList splits a comma-separated value, trimming entries and dropping empties.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
// A non-numeric value yields 0 so that validation can reject it.
func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvLocation resolves an IANA zone name such as "Europe/Madrid".
func getEnvLocation(key string, defaultValue *time.Location) (*time.Location, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	loc, err := time.LoadLocation(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return loc, nil
}
