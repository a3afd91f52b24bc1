// Package config holds the process-wide settings. A Config is built once at
// start-up and passed by value; nothing mutates it afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderMock   = "mock"

	DefaultModel   = "gemini-2.0-flash"
	DefaultPort    = "8080"
	DefaultTimeout = 45 * time.Second
)

var ErrMissingAPIKey = errors.New("missing API key: set GOOGLE_API_KEY, GEMINI_API_KEY or GOOGLE_API_KEY_FILE")

type Config struct {
	Port        string
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string // GEMINI_API_URL; switches to the REST client when set
	HTTPTimeout time.Duration
	CORSOrigins []string
	Debug       bool
}

// Load reads the given dotenv files into the environment and then builds the
// config from it. Missing files are skipped; variables already set in the
// environment win over the files.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Port:        env("PORT", DefaultPort),
		Provider:    strings.ToLower(env("LLM_PROVIDER", ProviderGemini)),
		Model:       env("LLM_MODEL", DefaultModel),
		BaseURL:     strings.TrimRight(env("GEMINI_API_URL", ""), "/"),
		CORSOrigins: envList("CORS_ORIGINS", "*"),
		Debug:       os.Getenv("DEBUG") == "1",
	}

	timeout, err := envMillis("LLM_HTTP_TIMEOUT_MS", DefaultTimeout)
	if err != nil {
		return cfg, err
	}
	cfg.HTTPTimeout = timeout

	switch cfg.Provider {
	case ProviderGemini:
	case ProviderMock:
		return cfg, nil
	default:
		return cfg, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.Provider)
	}

	key, err := apiKey()
	if err != nil {
		return cfg, err
	}
	cfg.APIKey = key
	return cfg, nil
}

func apiKey() (string, error) {
	for _, k := range []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v, nil
		}
	}
	if path := env("GOOGLE_API_KEY_FILE", ""); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read key file: %w", err)
		}
		if v := strings.TrimSpace(string(b)); v != "" {
			return v, nil
		}
	}
	return "", ErrMissingAPIKey
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

func env(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envMillis(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return 0, fmt.Errorf("%s must be a positive number of milliseconds, got %q", k, v)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func envList(k, def string) []string {
	var out []string
	for _, p := range strings.Split(env(k, def), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
