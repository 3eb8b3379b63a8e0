package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxConcurrency != 3 {
		t.Errorf("MaxConcurrency: got %d, want 3", cfg.MaxConcurrency)
	}
	if cfg.MaxOrderPages != 20 {
		t.Errorf("MaxOrderPages: got %d, want 20", cfg.MaxOrderPages)
	}
	if cfg.HubStation != 60003760 {
		t.Errorf("HubStation: got %d, want 60003760", cfg.HubStation)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout: got %v, want 15s", cfg.HTTPTimeout)
	}
	if cfg.PostgresEnabled() {
		t.Error("Postgres should be disabled without POSTGRES_HOST")
	}
}

func TestLoadRejectsUnknownTransport(t *testing.T) {
	t.Setenv("TRANSPORT", "carrier-pigeon")
	if _, err := Load(); err == nil {
		t.Error("expected error for unknown transport")
	}
}

func TestLoadNormalisesTransport(t *testing.T) {
	t.Setenv("TRANSPORT", " Browser ")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transport != "browser" {
		t.Errorf("Transport: got %q, want %q", cfg.Transport, "browser")
	}
}

func TestAllowedOrigins(t *testing.T) {
	c := &Config{CORSOrigins: "http://a.test, ,http://b.test"}
	got := c.AllowedOrigins()
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Errorf("AllowedOrigins() = %v; want [http://a.test http://b.test]", got)
	}
}

func TestDSN(t *testing.T) {
	c := &Config{
		PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "d", PostgresSSLMode: "disable",
	}
	want := "host=db port=5432 user=u password=p dbname=d sslmode=disable"
	if got := c.DSN(); got != want {
		t.Errorf("DSN() = %q; want %q", got, want)
	}
}
