// Package config loads process configuration from QUIRE_* environment
// variables. Flags in main override individual fields after ParseEnv.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	quirev1alpha1 "github.com/bayleafwalker/quire/api/v1alpha1"
)

type Config struct {
	// DataDir holds every file-backed store (sqlite, JSON, sealed keychain).
	DataDir string `env:"QUIRE_DATA_DIR" envDefault:".quire"`

	AccountID  string `env:"QUIRE_ACCOUNT_ID"`
	DeviceName string `env:"QUIRE_DEVICE_NAME" envDefault:"quire"`

	APIBaseURL string `env:"QUIRE_API_BASE_URL" envDefault:"https://api.quire.app"`
	// BridgeURL is the loopback endpoint the native shell exposes for
	// billing, sharing intents, health and location on mobile targets.
	BridgeURL       string `env:"QUIRE_BRIDGE_URL" envDefault:"http://127.0.0.1:8765"`
	WebShareBaseURL string `env:"QUIRE_WEB_SHARE_URL" envDefault:"https://quire.app/share"`

	HTTPTimeout   time.Duration `env:"QUIRE_HTTP_TIMEOUT" envDefault:"15s"`
	HTTPRateLimit float64       `env:"QUIRE_HTTP_RATE_LIMIT" envDefault:"10"`
	HTTPBurst     int           `env:"QUIRE_HTTP_BURST" envDefault:"20"`

	RedisAddr string `env:"QUIRE_REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisDB   int    `env:"QUIRE_REDIS_DB" envDefault:"0"`

	NATSURL         string `env:"QUIRE_NATS_URL" envDefault:"nats://127.0.0.1:4222"`
	PresenceSubject string `env:"QUIRE_PRESENCE_SUBJECT" envDefault:"quire.presence"`

	KeychainPassphrase string `env:"QUIRE_KEYCHAIN_PASSPHRASE"`

	StaticLatitude  float64 `env:"QUIRE_STATIC_LATITUDE" envDefault:"0"`
	StaticLongitude float64 `env:"QUIRE_STATIC_LONGITUDE" envDefault:"0"`

	AdminAddr string `env:"QUIRE_ADMIN_ADDR" envDefault:":8081"`
	GRPCAddr  string `env:"QUIRE_GRPC_ADDR" envDefault:":9090"`

	OTelEndpoint string `env:"QUIRE_OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"QUIRE_OTEL_ENABLED" envDefault:"true"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns a Config populated from the environment and defaults.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Path joins name onto DataDir.
func (c Config) Path(name string) string {
	return filepath.Join(c.DataDir, name)
}

// Validate checks settings every platform uses.
func (c Config) Validate() error {
	errs := make([]error, 0)
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("QUIRE_DATA_DIR is required"))
	}
	for name, raw := range map[string]string{
		"QUIRE_API_BASE_URL":  c.APIBaseURL,
		"QUIRE_BRIDGE_URL":    c.BridgeURL,
		"QUIRE_WEB_SHARE_URL": c.WebShareBaseURL,
	} {
		if err := validateURL(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("QUIRE_HTTP_TIMEOUT must be positive"))
	}
	if c.HTTPRateLimit <= 0 || c.HTTPBurst <= 0 {
		errs = append(errs, errors.New("QUIRE_HTTP_RATE_LIMIT and QUIRE_HTTP_BURST must be positive"))
	}
	if c.StaticLatitude < -90 || c.StaticLatitude > 90 || c.StaticLongitude < -180 || c.StaticLongitude > 180 {
		errs = append(errs, errors.New("QUIRE_STATIC_LATITUDE/LONGITUDE out of range"))
	}
	return utilerrors.NewAggregate(errs)
}

// ValidateFor also checks the settings only platform p's variants read.
func (c Config) ValidateFor(p quirev1alpha1.Platform) error {
	errs := make([]error, 0)
	if err := c.Validate(); err != nil {
		errs = append(errs, err)
	}
	switch p {
	case quirev1alpha1.PlatformIOS:
		if c.KeychainPassphrase == "" {
			errs = append(errs, errors.New("QUIRE_KEYCHAIN_PASSPHRASE is required on ios"))
		}
	case quirev1alpha1.PlatformWeb:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("QUIRE_REDIS_ADDR is required on web"))
		}
	}
	if p == quirev1alpha1.PlatformDesktop || p == quirev1alpha1.PlatformWeb {
		if err := validateURL(c.NATSURL); err != nil {
			errs = append(errs, fmt.Errorf("QUIRE_NATS_URL: %w", err))
		}
		if c.PresenceSubject == "" {
			errs = append(errs, errors.New("QUIRE_PRESENCE_SUBJECT is required"))
		}
	}
	return utilerrors.NewAggregate(errs)
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q is not an absolute url", raw)
	}
	return nil
}
