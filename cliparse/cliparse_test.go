// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseFlags_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.VoteWindowHours != 24 {
		t.Errorf("expected default window 24h, got %d", cfg.VoteWindowHours)
	}
	if cfg.VoteMaxPerWindow != 1 {
		t.Errorf("expected default max per window 1, got %d", cfg.VoteMaxPerWindow)
	}
	if cfg.Persistent() {
		t.Error("no DATABASE_URL should mean in-memory mode")
	}
	if cfg.WindowDuration() != 24*time.Hour {
		t.Errorf("expected 24h window, got %v", cfg.WindowDuration())
	}
}

func TestParseFlags_EnvVars(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("DATABASE_URL", "postgres://test")
	os.Setenv("VOTE_WINDOW_HOURS", "6")
	os.Setenv("VOTE_MAX_PER_WINDOW", "3")
	os.Setenv("VOTE_HASH_SALT", "test-salt")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != DatabasePostgres {
		t.Errorf("expected postgres inferred from URL, got %q", cfg.DatabaseType)
	}
	if cfg.VoteWindowHours != 6 || cfg.VoteMaxPerWindow != 3 {
		t.Errorf("unexpected window config: %d hours, %d max", cfg.VoteWindowHours, cfg.VoteMaxPerWindow)
	}
	if cfg.VoteHashSalt != "test-salt" {
		t.Errorf("expected salt from env, got %q", cfg.VoteHashSalt)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("VOTE_MAX_PER_WINDOW", "5")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-max-per-window", "2", "-hash-salt", "s1"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.VoteMaxPerWindow != 2 {
		t.Errorf("CLI should override env: expected 2, got %d", cfg.VoteMaxPerWindow)
	}
	if cfg.DatabaseType != DatabaseSQLite {
		t.Errorf("expected sqlite for file: URL, got %q", cfg.DatabaseType)
	}
}

func TestParseFlags_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"bad port", map[string]string{"PORT": "abc"}, nil},
		{"bad window", map[string]string{"VOTE_WINDOW_HOURS": "x"}, nil},
		{"negative window", nil, []string{"-window-hours", "-1"}},
		{"negative max", nil, []string{"-max-per-window", "-2"}},
		{"unknown database type", nil, []string{"-d", "mysql://x", "-t", "mysql"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			defer os.Clearenv()
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	os.Clearenv()
	defer os.Clearenv()

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("VOTE_HASH_SALT=from-file\nPORT=7000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	os.Setenv("PORT", "7100")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}

	cfg, err := ParseFlags(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.VoteHashSalt != "from-file" {
		t.Errorf("expected salt from .env, got %q", cfg.VoteHashSalt)
	}
	if cfg.Port != 7100 {
		t.Errorf(".env must not override the environment: got port %d", cfg.Port)
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("missing file should be ignored, got %v", err)
	}
}
