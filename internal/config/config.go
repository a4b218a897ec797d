package config

import (
	"fmt"
	"os"
	"strings"
)

// Identity provider selection.
const (
	ProviderSupabase = "supabase"
	ProviderLocal    = "local"
)

// Config carries everything the server reads from the environment.
type Config struct {
	Port      string
	ItemsPath string

	// Provider selects the identity backend: supabase or local.
	Provider string

	// AdminEmails lists the addresses granted the admin role.
	AdminEmails []string

	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	// JWTSecret verifies access tokens. With the supabase provider this is
	// the project's JWT secret; the local provider signs with it too.
	JWTSecret string

	DBDriver string
	DBDSN    string
}

// FromEnv reads configuration from the environment. Missing provider
// credentials are reported here so a misconfigured deployment fails at
// startup instead of at the first sign-in.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		ItemsPath:          getEnv("ITEMS_PATH", "data/items.jsonl"),
		Provider:           getEnv("AUTH_PROVIDER", ProviderSupabase),
		AdminEmails:        splitCSV(os.Getenv("ADMIN_EMAILS")),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:    os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		DBDriver:           getEnv("DB_DRIVER", "sqlite"),
		DBDSN:              os.Getenv("DB_DSN"),
	}

	switch cfg.Provider {
	case ProviderSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" || cfg.JWTSecret == "" {
			return nil, fmt.Errorf("SUPABASE_URL, SUPABASE_ANON_KEY, and JWT_SECRET are required when AUTH_PROVIDER=supabase")
		}
	case ProviderLocal:
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required when AUTH_PROVIDER=local")
		}
	default:
		return nil, fmt.Errorf("unknown AUTH_PROVIDER: %s", cfg.Provider)
	}

	return cfg, nil
}

// getEnv returns the value of key, or fallback when it is unset or empty.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
