// Package config loads sfm settings from defaults, an optional YAML file
// and SFM_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dm/sfm-go/internal/client"
	"github.com/dm/sfm-go/internal/engine"
)

// Floors for per-account timings.
const (
	MinScanInterval = engine.DefaultScanInterval
	MinTimeout      = client.DefaultTimeout
)

// Config is the full application configuration.
type Config struct {
	Accounts  []AccountConfig `koanf:"accounts" validate:"dive"`
	HTTP      HTTPConfig      `koanf:"http"`
	Logging   LoggingConfig   `koanf:"logging"`
	Breaker   BreakerConfig   `koanf:"breaker"`
	Thumbnail ThumbnailConfig `koanf:"thumbnail"`
}

// AccountConfig describes one Seafile account.
type AccountConfig struct {
	// ID is the entry id used in media identifiers and HTTP routes.
	// Derived from URL and username when empty.
	ID                 string        `koanf:"id"`
	URL                string        `koanf:"url" validate:"required,http_url"`
	Username           string        `koanf:"username" validate:"required"`
	Password           string        `koanf:"password" validate:"required"`
	ScanInterval       time.Duration `koanf:"scan_interval"`
	Timeout            time.Duration `koanf:"timeout"`
	InsecureSkipVerify bool          `koanf:"insecure_skip_verify"`
}

// HTTPConfig configures the local HTTP server.
type HTTPConfig struct {
	Listen string `koanf:"listen" validate:"required"`
	// ExternalURL is the base URL clients reach this server on. Thumbnail
	// and HEIC links are built from it.
	ExternalURL string `koanf:"external_url" validate:"omitempty,http_url"`
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error disabled off"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	// File receives the log output when set. Dashboard mode logs nowhere
	// else.
	File string `koanf:"file"`
}

// BreakerConfig configures the circuit breaker wrapped around on-demand
// API calls.
type BreakerConfig struct {
	Enabled     bool          `koanf:"enabled"`
	MaxFailures uint32        `koanf:"max_failures" validate:"omitempty,min=1"`
	Timeout     time.Duration `koanf:"timeout"`
}

// ThumbnailConfig configures HEIC conversion.
type ThumbnailConfig struct {
	// Converter is the heif-convert binary. Empty means look it up on PATH.
	Converter string `koanf:"converter"`
}

var validate = validator.New()

// Validate checks the configuration and fills in derived account fields.
func (c *Config) Validate() error {
	for i := range c.Accounts {
		c.Accounts[i].applyDefaults()
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]struct{}, len(c.Accounts))
	for _, a := range c.Accounts {
		if a.ScanInterval < MinScanInterval {
			return fmt.Errorf("account %s: scan_interval %s is below %s", a.ID, a.ScanInterval, MinScanInterval)
		}
		if a.Timeout < MinTimeout {
			return fmt.Errorf("account %s: timeout %s is below %s", a.ID, a.Timeout, MinTimeout)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("duplicate account id %q", a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}

func (a *AccountConfig) applyDefaults() {
	a.URL = strings.TrimSuffix(a.URL, "/")
	if a.ScanInterval == 0 {
		a.ScanInterval = engine.DefaultScanInterval
	}
	if a.Timeout == 0 {
		a.Timeout = client.DefaultTimeout
	}
	if a.ID == "" {
		a.ID = AccountID(a.URL, a.Username)
	}
}

// AccountID derives a stable entry id from a server URL and username.
func AccountID(url, username string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(strings.TrimSuffix(url, "/")+"|"+username)).String()
}

// UpdaterConfig converts the account into updater settings.
func (a AccountConfig) UpdaterConfig() engine.UpdaterConfig {
	return engine.UpdaterConfig{
		URL:                a.URL,
		Username:           a.Username,
		Password:           a.Password,
		ScanInterval:       a.ScanInterval,
		Timeout:            a.Timeout,
		InsecureSkipVerify: a.InsecureSkipVerify,
	}
}

// Options returns the account as a plain map for diagnostics export.
func (a AccountConfig) Options() map[string]any {
	return map[string]any{
		"id":                   a.ID,
		"url":                  a.URL,
		"username":             a.Username,
		"password":             a.Password,
		"scan_interval":        a.ScanInterval.Seconds(),
		"timeout":              a.Timeout.Seconds(),
		"insecure_skip_verify": a.InsecureSkipVerify,
	}
}

// BreakerSettings converts the breaker section for client.NewBreakerClient.
func (c *Config) BreakerSettings(name string) client.BreakerConfig {
	return client.BreakerConfig{
		Name:        name,
		MaxFailures: c.Breaker.MaxFailures,
		Timeout:     c.Breaker.Timeout,
	}
}
