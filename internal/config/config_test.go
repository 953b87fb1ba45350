package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// mailEnv is a complete, valid set of mail settings.
var mailEnv = map[string]string{
	"TO_EMAILS":  " a@example.com, b@example.com ,,c@example.com",
	"FROM_EMAIL": "digest@example.com",
	"SMTP_HOST":  "smtp.example.com",
	"SMTP_USER":  "digest",
	"SMTP_PASS":  "secret",
}

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, key := range []string{
		"TO_EMAILS", "FROM_EMAIL", "SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS",
		"CATALOG_MODELS_PATH", "CATALOG_STATS_PATH", "DATABASE_PATH",
		"REPORT_LOCALE", "REPORT_TIMEZONE", "SEND_TIMEOUT", "DESKTOP_NOTIFY", "LOG_LEVEL",
	} {
		t.Setenv(key, env[key])
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, mailEnv)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	wantTo := []string{"a@example.com", "b@example.com", "c@example.com"}
	if !reflect.DeepEqual(cfg.Mail.To, wantTo) {
		t.Errorf("Mail.To = %v, want %v", cfg.Mail.To, wantTo)
	}
	if cfg.Mail.SMTP.Port != defaultSMTPPort {
		t.Errorf("SMTP.Port = %d, want %d", cfg.Mail.SMTP.Port, defaultSMTPPort)
	}
	if cfg.Mail.SMTP.ImplicitTLS() {
		t.Error("port 587 should not use implicit TLS")
	}
	if cfg.Mail.SendTimeout != defaultSendTimeout {
		t.Errorf("SendTimeout = %v, want %v", cfg.Mail.SendTimeout, defaultSendTimeout)
	}
	if cfg.Catalog.ModelsPath != defaultModelsPath || cfg.Catalog.StatsPath != defaultStatsPath {
		t.Errorf("catalog paths = %q/%q", cfg.Catalog.ModelsPath, cfg.Catalog.StatsPath)
	}
	if cfg.Catalog.UseDatabase() {
		t.Error("UseDatabase() should be false without DATABASE_PATH")
	}
	if cfg.Report.Locale != defaultLocale {
		t.Errorf("Locale = %q, want %q", cfg.Report.Locale, defaultLocale)
	}
	if cfg.Report.Location != time.Local {
		t.Errorf("Location = %v, want Local", cfg.Report.Location)
	}
	if cfg.DesktopNotify {
		t.Error("DesktopNotify should default to false")
	}
	if err := cfg.ValidateMail(); err != nil {
		t.Errorf("ValidateMail() error = %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	env := map[string]string{
		"SMTP_PORT":       "465",
		"DATABASE_PATH":   "/tmp/catalog.db",
		"REPORT_TIMEZONE": "UTC",
		"SEND_TIMEOUT":    "15",
		"DESKTOP_NOTIFY":  "true",
	}
	for k, v := range mailEnv {
		env[k] = v
	}
	setEnv(t, env)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Mail.SMTP.ImplicitTLS() {
		t.Error("port 465 should use implicit TLS")
	}
	if !cfg.Catalog.UseDatabase() {
		t.Error("UseDatabase() should be true with DATABASE_PATH")
	}
	if cfg.Report.Location != time.UTC {
		t.Errorf("Location = %v, want UTC", cfg.Report.Location)
	}
	if cfg.Mail.SendTimeout != 15*time.Second {
		t.Errorf("SendTimeout = %v, want 15s", cfg.Mail.SendTimeout)
	}
	if !cfg.DesktopNotify {
		t.Error("DesktopNotify should be true")
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	setEnv(t, map[string]string{"REPORT_TIMEZONE": "Mars/Olympus_Mons"})

	if _, err := Load(); err == nil {
		t.Error("Load() should fail on an unknown timezone")
	}
}

func TestValidateMail_Missing(t *testing.T) {
	setEnv(t, map[string]string{"SMTP_HOST": "smtp.example.com"})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	err = cfg.ValidateMail()
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("ValidateMail() error = %v, want *ConfigurationError", err)
	}

	want := []string{"TO_EMAILS", "FROM_EMAIL", "SMTP_USER", "SMTP_PASS"}
	if !reflect.DeepEqual(cfgErr.Missing, want) {
		t.Errorf("Missing = %v, want %v", cfgErr.Missing, want)
	}

	usage := cfgErr.Usage()
	for _, s := range RequiredSettings {
		if !strings.Contains(usage, "- "+s.Name+": "+s.Purpose) {
			t.Errorf("Usage() missing line for %s:\n%s", s.Name, usage)
		}
	}
}

func TestValidateMail_Invalid(t *testing.T) {
	env := map[string]string{"SMTP_PORT": "not-a-port"}
	for k, v := range mailEnv {
		env[k] = v
	}
	env["TO_EMAILS"] = "a@example.com, not an address"
	setEnv(t, env)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	err = cfg.ValidateMail()
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("ValidateMail() error = %v, want *ConfigurationError", err)
	}
	if len(cfgErr.Missing) != 0 {
		t.Errorf("Missing = %v, want none", cfgErr.Missing)
	}
	if len(cfgErr.Invalid) != 2 {
		t.Errorf("Invalid = %v, want 2 entries", cfgErr.Invalid)
	}
}

func TestConfigurationError_Usage(t *testing.T) {
	tests := []struct {
		name     string
		err      ConfigurationError
		wants    []string
		notWants []string
	}{
		{
			name:     "MissingOnly",
			err:      ConfigurationError{Missing: []string{"SMTP_PASS"}},
			wants:    []string{"Missing required environment variables:\n"},
			notWants: []string{"Invalid configuration:"},
		},
		{
			name:     "InvalidOnly",
			err:      ConfigurationError{Invalid: []string{`FROM_EMAIL "x": bad`}},
			wants:    []string{"Invalid configuration:\n", `FROM_EMAIL "x": bad`, "Required environment variables:\n"},
			notWants: []string{"Missing required"},
		},
		{
			name: "MissingAndInvalid",
			err: ConfigurationError{
				Missing: []string{"SMTP_PASS"},
				Invalid: []string{"SMTP_PORT 0 out of range"},
			},
			wants: []string{"Invalid configuration:\n", "SMTP_PORT 0 out of range", "Missing required environment variables:\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usage := tt.err.Usage()
			for _, want := range tt.wants {
				if !strings.Contains(usage, want) {
					t.Errorf("Usage() missing %q:\n%s", want, usage)
				}
			}
			for _, notWant := range tt.notWants {
				if strings.Contains(usage, notWant) {
					t.Errorf("Usage() should not contain %q:\n%s", notWant, usage)
				}
			}
			for _, s := range RequiredSettings {
				if !strings.Contains(usage, "- "+s.Name+": ") {
					t.Errorf("Usage() missing %s", s.Name)
				}
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"Empty", "", nil},
		{"Blank", " , ,", nil},
		{"Single", "a@example.com", []string{"a@example.com"}},
		{"Trimmed", " a@example.com ,b@example.com ", []string{"a@example.com", "b@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitList(tt.value); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitList(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestGetEnvString(t *testing.T) {
	key := "TEST_ENV_STRING"
	val := "test_value"
	os.Setenv(key, val)
	defer os.Unsetenv(key)

	if got := getEnvString(key, "default"); got != val {
		t.Errorf("getEnvString() = %q, want %q", got, val)
	}

	if got := getEnvString("NON_EXISTENT", "default"); got != "default" {
		t.Errorf("getEnvString() = %q, want %q", got, "default")
	}
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_ENV_INT"

	tests := []struct {
		name   string
		envVal string
		want   int
	}{
		{"Valid", "2525", 2525},
		{"Padded", " 465 ", 465},
		{"Invalid", "abc", 0},
		{"Empty", "", 587},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(key, tt.envVal)
			if got := getEnvInt(key, 587); got != tt.want {
				t.Errorf("getEnvInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_ENV_DURATION"

	tests := []struct {
		name       string
		envVal     string
		defaultVal time.Duration
		want       time.Duration
	}{
		{"ValidDuration", "1m", time.Second, time.Minute},
		{"ValidSeconds", "60", time.Second, 60 * time.Second},
		{"Invalid", "invalid", time.Second, time.Second},
		{"Empty", "", time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envVal != "" {
				os.Setenv(key, tt.envVal)
				defer os.Unsetenv(key)
			} else {
				os.Unsetenv(key)
			}

			if got := getEnvDuration(key, tt.defaultVal); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvPaths(t *testing.T) {
	paths := getEnvPaths()
	if len(paths) == 0 {
		t.Error("getEnvPaths() returned empty list")
	}

	cwd, _ := os.Getwd()
	if paths[0] != filepath.Join(cwd, ".env") {
		t.Errorf("getEnvPaths()[0] = %q, want current directory .env", paths[0])
	}
}
