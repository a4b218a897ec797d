package config

import (
	"reflect"
	"testing"
)

// clearEnv blanks every variable FromEnv reads so ambient values cannot leak
// into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ITEMS_PATH", "AUTH_PROVIDER", "ADMIN_EMAILS",
		"SUPABASE_URL", "SUPABASE_ANON_KEY", "SUPABASE_SERVICE_KEY",
		"JWT_SECRET", "DB_DRIVER", "DB_DSN",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_LocalDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_PROVIDER", "local")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.ItemsPath != "data/items.jsonl" {
		t.Errorf("items path = %q, want data/items.jsonl", cfg.ItemsPath)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("db driver = %q, want sqlite", cfg.DBDriver)
	}
	if len(cfg.AdminEmails) != 0 {
		t.Errorf("admin emails = %v, want none", cfg.AdminEmails)
	}
}

func TestFromEnv_Supabase(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
	t.Setenv("SUPABASE_SERVICE_KEY", "service-key")
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("ADMIN_EMAILS", "lead@example.com, second@example.com ,")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.Provider != ProviderSupabase {
		t.Errorf("provider = %q, want supabase", cfg.Provider)
	}
	if cfg.SupabaseURL != "https://project.supabase.co" {
		t.Errorf("supabase url = %q", cfg.SupabaseURL)
	}
	want := []string{"lead@example.com", "second@example.com"}
	if !reflect.DeepEqual(cfg.AdminEmails, want) {
		t.Errorf("admin emails = %v, want %v", cfg.AdminEmails, want)
	}
}

func TestFromEnv_SupabaseMissingCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected an error for missing supabase credentials")
	}
}

func TestFromEnv_LocalMissingSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_PROVIDER", "local")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected an error for a missing JWT secret")
	}
}

func TestFromEnv_UnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_PROVIDER", "ldap")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_PROVIDER", "local")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9000")
	t.Setenv("ITEMS_PATH", "/srv/bank.jsonl")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://db/akt")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.Port != "9000" || cfg.ItemsPath != "/srv/bank.jsonl" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.DBDriver != "postgres" || cfg.DBDSN != "postgres://db/akt" {
		t.Errorf("db overrides not applied: %+v", cfg)
	}
}
