package config

import (
	"strings"
	"testing"
	"time"

	quirev1alpha1 "github.com/bayleafwalker/quire/api/v1alpha1"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != ".quire" || cfg.HTTPTimeout != 15*time.Second || cfg.PresenceSubject != "quire.presence" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestParseEnvOverridesAndErrors(t *testing.T) {
	t.Setenv("QUIRE_HTTP_BURST", "5")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPBurst != 5 {
		t.Fatalf("expected burst 5, got %d", cfg.HTTPBurst)
	}

	t.Setenv("QUIRE_HTTP_TIMEOUT", "soon")
	_, err = Load()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.APIBaseURL = "not a url"
	cfg.HTTPTimeout = 0
	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"QUIRE_API_BASE_URL", "QUIRE_HTTP_TIMEOUT"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in %v", want, err)
		}
	}
}

func TestValidateFor(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.ValidateFor(quirev1alpha1.PlatformIOS); err == nil || !strings.Contains(err.Error(), "QUIRE_KEYCHAIN_PASSPHRASE") {
		t.Fatalf("expected ios passphrase error, got %v", err)
	}
	cfg.KeychainPassphrase = "correct horse"
	if err := cfg.ValidateFor(quirev1alpha1.PlatformIOS); err != nil {
		t.Fatalf("unexpected ios error: %v", err)
	}
	if err := cfg.ValidateFor(quirev1alpha1.PlatformDesktop); err != nil {
		t.Fatalf("unexpected desktop error: %v", err)
	}
	cfg.NATSURL = ""
	if err := cfg.ValidateFor(quirev1alpha1.PlatformWeb); err == nil {
		t.Fatal("expected web nats error")
	}
}
