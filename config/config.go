package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Commerce CommerceConfig
	Server   ServerConfig
	Session  SessionConfig
	Redis    RedisConfig
}

type CommerceConfig struct {
	// Public account token of the headless commerce store. It is embedded
	// in request paths, not sent as a bearer header.
	AccountToken string
	// SiteURL is the externally reachable base URL of this storefront,
	// used to build the complete/cancel/return URLs the provider redirects
	// back to. No trailing slash.
	SiteURL string
}

type ServerConfig struct {
	Port string
}

type SessionConfig struct {
	Secret string
	Domain string
	MaxAge int
}

type RedisConfig struct {
	URL string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{
		Commerce: CommerceConfig{
			AccountToken: os.Getenv("COMMERCE_ACCOUNT_TOKEN"),
			SiteURL:      os.Getenv("SITE_URL"),
		},
		Server: ServerConfig{
			Port: os.Getenv("SERVER_PORT"),
		},
		Session: SessionConfig{
			Secret: os.Getenv("SESSION_SECRET"),
			Domain: os.Getenv("SESSION_DOMAIN"),
			MaxAge: envInt("SESSION_MAX_AGE", 86400*30),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}

	if cfg.Redis.URL == "" {
		cfg.Redis.URL = "redis://localhost:6379/0"
		log.Printf("Warning: REDIS_URL not set, using default: %s", cfg.Redis.URL)
	}

	if cfg.Commerce.AccountToken == "" {
		log.Printf("Warning: COMMERCE_ACCOUNT_TOKEN not set, remote calls will fail")
	}

	return cfg
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using default %d", key, raw, def)
		return def
	}
	return v
}
