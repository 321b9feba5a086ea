package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBBackend != DatabaseSQLite {
		t.Fatalf("unexpected backend: %q", cfg.DBBackend)
	}
	if cfg.DBDSN != "glada.db" {
		t.Fatalf("unexpected dsn: %q", cfg.DBDSN)
	}
	if cfg.HTTPAddr() != "0.0.0.0:8080" {
		t.Fatalf("unexpected http addr: %q", cfg.HTTPAddr())
	}
	if cfg.CacheEnabled || cfg.TracingEnabled {
		t.Fatal("expected cache and tracing to be disabled by default")
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("unexpected location: %v", cfg.Location())
	}
}

func TestLoadReadsCriticalEnvKeys(t *testing.T) {
	t.Setenv("GLADA_DB_BACKEND", "postgres")
	t.Setenv("GLADA_DB_DSN", "host=localhost user=test dbname=test sslmode=disable")
	t.Setenv("GLADA_HTTP_PORT", "9090")
	t.Setenv("GLADA_CACHE_ENABLED", "yes")
	t.Setenv("GLADA_CACHE_TTL_SECONDS", "30")
	t.Setenv("GLADA_TIMEZONE", "Europe/Prague")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBBackend != DatabasePostgres {
		t.Fatalf("unexpected backend: %q", cfg.DBBackend)
	}
	if cfg.HTTPPort != 9090 {
		t.Fatalf("unexpected port: %d", cfg.HTTPPort)
	}
	if !cfg.CacheEnabled || cfg.CacheTTL != 30*time.Second {
		t.Fatalf("unexpected cache settings: %v %v", cfg.CacheEnabled, cfg.CacheTTL)
	}
	if cfg.Location().String() != "Europe/Prague" {
		t.Fatalf("unexpected location: %v", cfg.Location())
	}
}

func TestLoadFallsBackToAWSEnvKeys(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("AWS_REGION", "eu-central-1")
	t.Setenv("GLADA_S3_REGION", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.S3AccessKeyID != "AKIDEXAMPLE" || cfg.S3Region != "eu-central-1" {
		t.Fatalf("unexpected s3 settings: %q %q", cfg.S3AccessKeyID, cfg.S3Region)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"backend":     {"GLADA_DB_BACKEND": "oracle"},
		"timezone":    {"GLADA_TIMEZONE": "Mars/Olympus"},
		"sample rate": {"GLADA_TRACING_SAMPLE_RATE": "1.5"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected load to fail")
			}
		})
	}
}
