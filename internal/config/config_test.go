package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func unsetAll(t *testing.T) {
	t.Helper()
	for key := range keys {
		name := strings.ToUpper(key)
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	unsetAll(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.MongoDB != "fleximart_db" || cfg.MongoCollection != "products" {
		t.Errorf("unexpected database target %s.%s", cfg.MongoDB, cfg.MongoCollection)
	}
	if cfg.MongoTimeout != 10*time.Second || cfg.QueryTimeout != 10*time.Second {
		t.Errorf("unexpected timeouts %v %v", cfg.MongoTimeout, cfg.QueryTimeout)
	}
	if !cfg.CacheEnabled() || cfg.CacheTTL != 2*time.Minute {
		t.Errorf("unexpected cache ttl %v", cfg.CacheTTL)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("redis should be empty, got %q", cfg.RedisAddr)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	unsetAll(t)
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("MONGO_DB", "catalog_test")
	t.Setenv("QUERY_TIMEOUT", "3s")
	t.Setenv("CACHE_TTL", "0")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.MongoURI != "mongodb://mongo:27017" || cfg.MongoDB != "catalog_test" {
		t.Errorf("mongo settings not applied: %+v", cfg)
	}
	if cfg.QueryTimeout != 3*time.Second {
		t.Errorf("query timeout = %v", cfg.QueryTimeout)
	}
	if cfg.CacheEnabled() {
		t.Error("CACHE_TTL=0 should disable the cache")
	}
	if cfg.RedisAddr != "redis:6379" || cfg.RedisDB != 2 {
		t.Errorf("redis settings not applied: %q %d", cfg.RedisAddr, cfg.RedisDB)
	}
	if !cfg.MinIOUseSSL {
		t.Error("MINIO_USE_SSL not applied")
	}
	if cfg.LogFormat != "json" {
		t.Errorf("log format = %q", cfg.LogFormat)
	}
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"bad duration":   {"QUERY_TIMEOUT", "soon"},
		"zero timeout":   {"MONGO_TIMEOUT", "0s"},
		"bad log level":  {"LOG_LEVEL", "chatty"},
		"bad log format": {"LOG_FORMAT", "xml"},
		"empty uri":      {"MONGO_URI", ""},
	}

	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			unsetAll(t)
			t.Setenv(kv[0], kv[1])
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error for %s=%q", kv[0], kv[1])
			}
		})
	}
}
