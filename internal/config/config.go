package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	MongoURI        string        `koanf:"mongo_uri" validate:"required"`
	MongoDB         string        `koanf:"mongo_db" validate:"required"`
	MongoCollection string        `koanf:"mongo_collection" validate:"required"`
	MongoTimeout    time.Duration `koanf:"mongo_timeout" validate:"gt=0"`
	QueryTimeout    time.Duration `koanf:"query_timeout" validate:"gt=0"`

	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db" validate:"gte=0"`
	CacheTTL      time.Duration `koanf:"cache_ttl" validate:"gte=0"`

	LogLevel  string `koanf:"log_level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogFormat string `koanf:"log_format" validate:"oneof=console json"`

	MinIOEndpoint  string `koanf:"minio_endpoint"`
	MinIOAccessKey string `koanf:"minio_access_key"`
	MinIOSecretKey string `koanf:"minio_secret_key"`
	MinIOUseSSL    bool   `koanf:"minio_use_ssl"`
}

var defaults = map[string]interface{}{
	"mongo_uri":        "mongodb://localhost:27017",
	"mongo_db":         "fleximart_db",
	"mongo_collection": "products",
	"mongo_timeout":    "10s",
	"query_timeout":    "10s",
	"redis_db":         0,
	"cache_ttl":        "2m",
	"log_level":        "info",
	"log_format":       "console",
	"minio_use_ssl":    false,
}

// keys son las variables de entorno que entiende la aplicación
var keys = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, k := range []string{
		"mongo_uri", "mongo_db", "mongo_collection", "mongo_timeout", "query_timeout",
		"redis_addr", "redis_password", "redis_db", "cache_ttl",
		"log_level", "log_format",
		"minio_endpoint", "minio_access_key", "minio_secret_key", "minio_use_ssl",
	} {
		m[k] = struct{}{}
	}
	return m
}()

// LoadConfig lee .env (solo si existe) y las variables de entorno.
// Devuelve además un mensaje sobre el origen de la configuración para que
// el llamador lo registre una vez que el logger esté listo.
func LoadConfig() (*Config, string, error) {
	source := "using system environment variables"
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, "", fmt.Errorf("load .env: %w", err)
		}
		source = ".env file loaded"
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, "", err
	}
	return cfg, source, nil
}

// FromEnv construye la configuración a partir del entorno del proceso
func FromEnv() (*Config, error) {
	k := koanf.New(".")
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	err := k.Load(env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if _, ok := keys[key]; !ok {
			return ""
		}
		return key
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// CacheEnabled indica si se deben cachear los reportes
func (c *Config) CacheEnabled() bool {
	return c.CacheTTL > 0
}
