package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DatabasePostgres = "postgres"
	DatabaseSQLite   = "sqlite"
)

type Config struct {
	Port         int
	DatabaseURL  string // empty means in-memory vote storage
	DatabaseType string

	VoteWindowHours  int
	VoteMaxPerWindow int
	VoteHashSalt     string

	CatalogPath string
}

// WindowDuration is the length of one rate-limit bucket
func (c Config) WindowDuration() time.Duration {
	return time.Duration(c.VoteWindowHours) * time.Hour
}

// Persistent reports whether votes go to a database
func (c Config) Persistent() bool {
	return c.DatabaseURL != ""
}

// LoadEnvFile loads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("endorse", flag.ContinueOnError)

	// Network and storage (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL (omit for in-memory mode)")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.CatalogPath, "catalog", "", "Path to a JSON catalog snapshot")

	// Voting policy
	fs.IntVar(&cfg.VoteWindowHours, "window-hours", 0, "Rate-limit window length in hours")
	fs.IntVar(&cfg.VoteMaxPerWindow, "max-per-window", 0, "Endorsements allowed per identity per window")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.VoteHashSalt, "hash-salt", "", "Identity hash salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	var err error
	if cfg.Port == 0 {
		if cfg.Port, err = intFromEnv("PORT", 3318); err != nil {
			return Config{}, err
		}
	}
	if cfg.VoteWindowHours == 0 {
		if cfg.VoteWindowHours, err = intFromEnv("VOTE_WINDOW_HOURS", 24); err != nil {
			return Config{}, err
		}
	}
	if cfg.VoteWindowHours <= 0 {
		return Config{}, errors.New("VOTE_WINDOW_HOURS must be positive")
	}
	if cfg.VoteMaxPerWindow == 0 {
		if cfg.VoteMaxPerWindow, err = intFromEnv("VOTE_MAX_PER_WINDOW", 1); err != nil {
			return Config{}, err
		}
	}
	if cfg.VoteMaxPerWindow <= 0 {
		return Config{}, errors.New("VOTE_MAX_PER_WINDOW must be positive")
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
	}
	if cfg.DatabaseURL != "" {
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = inferDatabaseType(cfg.DatabaseURL)
		}
		if cfg.DatabaseType != DatabasePostgres && cfg.DatabaseType != DatabaseSQLite {
			return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
		}
	}

	if cfg.VoteHashSalt == "" {
		cfg.VoteHashSalt = os.Getenv("VOTE_HASH_SALT")
	}
	if cfg.CatalogPath == "" {
		cfg.CatalogPath = os.Getenv("CATALOG_PATH")
	}

	return cfg, nil
}

func intFromEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func inferDatabaseType(url string) string {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DatabasePostgres
	}
	return DatabaseSQLite
}
