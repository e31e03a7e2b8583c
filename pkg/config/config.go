// Package config holds runtime settings for the bakery-mcp binary.
package config

import (
	"flag"
	"os"
	"strconv"
)

// Config carries the settings shared by both run modes. Environment
// variables provide defaults; flags override them.
type Config struct {
	// Port is the HTTP listen port used in http mode.
	Port int
	// PublicURL is the externally visible base URL, shown on the homepage.
	// Display only; routing never depends on it.
	PublicURL string
}

// LoadEnv populates the config from environment variables, falling back to
// built-in defaults.
func (c *Config) LoadEnv() {
	c.Port = getEnvInt("PORT", 3000)
	c.PublicURL = getEnv("PUBLIC_URL", "")
}

// BindFlags loads environment defaults and registers the corresponding
// command-line flags. Call flag.Parse afterwards.
func (c *Config) BindFlags() {
	c.LoadEnv()
	flag.IntVar(&c.Port, "port", c.Port, "HTTP listen port (http mode)")
	flag.StringVar(&c.PublicURL, "public-url", c.PublicURL, "externally visible base URL shown on the homepage")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
