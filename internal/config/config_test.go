package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Store.URI != "mongodb://localhost:27017" {
		t.Errorf("Store.URI = %q", cfg.Store.URI)
	}
	if cfg.Store.Database != "inkwell" {
		t.Errorf("Store.Database = %q", cfg.Store.Database)
	}
	if cfg.Store.OpTimeout != 10*time.Second {
		t.Errorf("Store.OpTimeout = %v, want 10s", cfg.Store.OpTimeout)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Env != "development" {
		t.Errorf("Server.Env = %q, want development", cfg.Server.Env)
	}
	if cfg.Auth.AccessTokenExpiry != 15*time.Minute {
		t.Errorf("Auth.AccessTokenExpiry = %v, want 15m", cfg.Auth.AccessTokenExpiry)
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		t.Error("development AllowedOrigins should include localhost variants")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("MONGO_URI", "mongodb://db:27017")
	os.Setenv("MONGO_DATABASE", "inkwell_test")
	os.Setenv("STORE_OP_TIMEOUT", "3s")
	os.Setenv("ACCESS_TOKEN_EXPIRY", "1h")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Store.URI != "mongodb://db:27017" {
		t.Errorf("Store.URI = %q", cfg.Store.URI)
	}
	if cfg.Store.Database != "inkwell_test" {
		t.Errorf("Store.Database = %q", cfg.Store.Database)
	}
	if cfg.Store.OpTimeout != 3*time.Second {
		t.Errorf("Store.OpTimeout = %v, want 3s", cfg.Store.OpTimeout)
	}
	if cfg.Auth.AccessTokenExpiry != time.Hour {
		t.Errorf("Auth.AccessTokenExpiry = %v, want 1h", cfg.Auth.AccessTokenExpiry)
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() with no JWT_SECRET should fail")
	}
}

func TestLoad_RejectsWeakSecret(t *testing.T) {
	os.Setenv("JWT_SECRET", "short")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() with a short secret should fail")
	}
}

func TestLoad_ProductionRequiresLongerSecret(t *testing.T) {
	os.Setenv("JWT_SECRET", "sixteen-chars-ok")
	os.Setenv("ENV", "production")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() in production with a 16-char secret should fail")
	}
}

func TestParseAllowedOrigins_Production(t *testing.T) {
	os.Setenv("ALLOWED_ORIGINS", "https://admin.example.com, https://staging.example.com")
	defer os.Clearenv()

	origins := parseAllowedOrigins("production")
	if len(origins) != 2 {
		t.Fatalf("len(origins) = %d, want 2", len(origins))
	}
	if origins[1] != "https://staging.example.com" {
		t.Errorf("origins[1] = %q, want trimmed value", origins[1])
	}
}

func TestGetEnvHelpers(t *testing.T) {
	os.Setenv("HELPER_INT", "42")
	os.Setenv("HELPER_BAD_INT", "forty-two")
	os.Setenv("HELPER_BAD_DURATION", "not-a-duration")
	defer os.Clearenv()

	if v := getEnvAsInt("HELPER_INT", 7); v != 42 {
		t.Errorf("getEnvAsInt = %d, want 42", v)
	}
	if v := getEnvAsInt("HELPER_BAD_INT", 7); v != 7 {
		t.Errorf("getEnvAsInt with invalid value = %d, want default 7", v)
	}
	if v := getEnvAsInt("HELPER_MISSING", 7); v != 7 {
		t.Errorf("getEnvAsInt with missing key = %d, want default 7", v)
	}
	if v := getEnvAsDuration("HELPER_BAD_DURATION", time.Second); v != time.Second {
		t.Errorf("getEnvAsDuration with invalid value = %v, want default 1s", v)
	}
}
