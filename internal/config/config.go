package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultDSN         = "host=localhost user=postgres password=postgres dbname=circulyte port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173"
	minJWTSecretLen    = 32
)

type Config struct {
	HTTPPort            string `yaml:"http_port"`
	DatabaseDSN         string `yaml:"database_dsn"`
	StoreDriver         string `yaml:"store_driver"` // postgres, mongo or memory
	MongoURL            string `yaml:"mongo_url"`
	MongoDB             string `yaml:"mongo_db"`
	JWTSecret           string `yaml:"jwt_secret"`
	CORSOrigins         string `yaml:"cors_allowed_origins"`
	ProtectedAdminEmail string `yaml:"protected_admin_email"`
	Timezone            string `yaml:"app_timezone"`
	LogLevel            string `yaml:"log_level"`
	NATSURL             string `yaml:"nats_url"`
}

func Default() *Config {
	return &Config{
		HTTPPort:            "8080",
		DatabaseDSN:         defaultDSN,
		StoreDriver:         "postgres",
		MongoURL:            "mongodb://localhost:27017",
		MongoDB:             "circulyte",
		CORSOrigins:         defaultCORSOrigins,
		ProtectedAdminEmail: "admin@circulyte.com",
		Timezone:            "UTC",
		LogLevel:            "info",
	}
}

// Load reads .env, the optional YAML file named by CIRCULYTE_CONFIG and the
// environment, in that order, and exits when the result is unusable.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] no .env file found, using process environment")
	}

	cfg, err := LoadFrom(os.Getenv("CIRCULYTE_CONFIG"))
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	if cfg.StoreDriver == "postgres" && cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN is using the default value, set your own Postgres DSN in production.")
	}
	if cfg.CORSOrigins == defaultCORSOrigins {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS is using the default value, set your own domain in production.")
	}

	return cfg
}

// LoadFrom builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and environment overrides. It does not validate.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.DatabaseDSN = getEnv("DATABASE_DSN", c.DatabaseDSN)
	c.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", c.StoreDriver))
	c.MongoURL = getEnv("MONGO_URL", c.MongoURL)
	c.MongoDB = getEnv("MONGO_DB", c.MongoDB)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.CORSOrigins = getEnv("CORS_ALLOWED_ORIGINS", c.CORSOrigins)
	c.ProtectedAdminEmail = strings.ToLower(getEnv("PROTECTED_ADMIN_EMAIL", c.ProtectedAdminEmail))
	c.Timezone = getEnv("APP_TIMEZONE", c.Timezone)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.NATSURL = getEnv("NATS_URL", c.NATSURL)
}

func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	} else if len(c.JWTSecret) < minJWTSecretLen {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLen))
	}

	switch c.StoreDriver {
	case "postgres":
		if c.DatabaseDSN == "" {
			errs = append(errs, errors.New("DATABASE_DSN is required for the postgres driver"))
		}
	case "mongo":
		if c.MongoURL == "" {
			errs = append(errs, errors.New("MONGO_URL is required for the mongo driver"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	if c.ProtectedAdminEmail == "" {
		errs = append(errs, errors.New("PROTECTED_ADMIN_EMAIL is not set"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err))
	}

	return errors.Join(errs...)
}

// Location returns the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
