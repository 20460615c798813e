package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultAPIURL = "http://localhost:8080/api"

// Environment is the single configuration record of the client.
type Environment struct {
	Production         bool
	APIURL             string
	AuthURL            string
	UsersURL           string
	ProductsURL        string
	MediaURL           string
	EnableDebugLogging bool
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Environment, error) {
	_ = godotenv.Load()

	apiURL := strings.TrimRight(getEnv("API_URL", defaultAPIURL), "/")

	cfg := &Environment{
		Production:         getBool("PRODUCTION", false),
		APIURL:             apiURL,
		AuthURL:            strings.TrimRight(getEnv("AUTH_URL", apiURL+"/auth"), "/"),
		UsersURL:           strings.TrimRight(getEnv("USERS_URL", apiURL+"/users"), "/"),
		ProductsURL:        strings.TrimRight(getEnv("PRODUCTS_URL", apiURL+"/products"), "/"),
		MediaURL:           strings.TrimRight(getEnv("MEDIA_URL", apiURL+"/media"), "/"),
		EnableDebugLogging: getBool("ENABLE_DEBUG_LOGGING", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ForBaseURL derives every service URL from one API root.
func ForBaseURL(apiURL string) *Environment {
	apiURL = strings.TrimRight(apiURL, "/")
	return &Environment{
		APIURL:      apiURL,
		AuthURL:     apiURL + "/auth",
		UsersURL:    apiURL + "/users",
		ProductsURL: apiURL + "/products",
		MediaURL:    apiURL + "/media",
	}
}

func (c *Environment) Validate() error {
	urls := map[string]string{
		"API_URL":      c.APIURL,
		"AUTH_URL":     c.AuthURL,
		"USERS_URL":    c.UsersURL,
		"PRODUCTS_URL": c.ProductsURL,
		"MEDIA_URL":    c.MediaURL,
	}
	for name, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}
