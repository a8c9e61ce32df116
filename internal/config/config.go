// Package config resolves runtime settings from .env files, the environment
// and command-line flags, in that order of increasing precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/csheth/edugenius/internal/assistant"
	"github.com/csheth/edugenius/internal/history"
	"github.com/csheth/edugenius/internal/llm"
	"github.com/csheth/edugenius/internal/settings"
)

// Surface selects which flags a binary exposes.
type Surface int

const (
	SurfaceTUI Surface = iota
	SurfaceServer
)

const (
	defaultAddr       = ":8080"
	defaultSessionTTL = 12 * time.Hour
)

// Config is everything a front end needs to wire the core packages.
type Config struct {
	Provider llm.Provider
	Model    string
	Endpoint string

	StateDir     string
	SettingsPath string
	HistoryPath  string
	Material     string

	Interstitial  time.Duration
	StrictOrdered bool

	Addr              string
	AdminEmails       []string
	AdminPasswordHash string
	SessionTTL        time.Duration
	// HashPassword asks the server to print a hash for this password and exit.
	HashPassword string

	LogFile     string
	NoAltScreen bool
}

// LoadDotenv reads .env files into the environment without overriding
// variables that are already set. A missing file is reported as an error so
// callers can log it.
func LoadDotenv(files ...string) error {
	return godotenv.Load(files...)
}

// FromEnv returns defaults overlaid with environment variables.
func FromEnv() (Config, error) {
	cfg := Config{
		Provider:          llm.Provider(strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))),
		Model:             strings.TrimSpace(os.Getenv("LLM_MODEL")),
		Endpoint:          strings.TrimSpace(os.Getenv("LLM_ENDPOINT")),
		StateDir:          envOr("EDUGENIUS_STATE_DIR", settings.StateDir()),
		Material:          strings.TrimSpace(os.Getenv("EDUGENIUS_MATERIAL")),
		Interstitial:      assistant.DefaultInterstitialDelay,
		Addr:              envOr("EDUGENIUS_ADDR", defaultAddr),
		AdminEmails:       splitList(os.Getenv("EDUGENIUS_ADMIN_EMAILS")),
		AdminPasswordHash: strings.TrimSpace(os.Getenv("EDUGENIUS_ADMIN_PASSWORD_HASH")),
		SessionTTL:        defaultSessionTTL,
		LogFile:           envOr("EDUGENIUS_LOG_FILE", filepath.Join(os.TempDir(), "edugenius.log")),
	}
	cfg.SettingsPath = envOr("EDUGENIUS_SETTINGS", filepath.Join(cfg.StateDir, "settings.json"))
	cfg.HistoryPath = envOr("EDUGENIUS_HISTORY", history.DefaultPath(cfg.StateDir))

	var err error
	if cfg.Interstitial, err = envDuration("EDUGENIUS_INTERSTITIAL", cfg.Interstitial); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = envDuration("EDUGENIUS_SESSION_TTL", cfg.SessionTTL); err != nil {
		return Config{}, err
	}
	if raw := strings.TrimSpace(os.Getenv("EDUGENIUS_STRICT_ORDERED")); raw != "" {
		if cfg.StrictOrdered, err = strconv.ParseBool(raw); err != nil {
			return Config{}, fmt.Errorf("EDUGENIUS_STRICT_ORDERED: %w", err)
		}
	}
	return cfg, nil
}

// Load resolves the environment, then parses args with fs, then validates.
func Load(surface Surface, fs *flag.FlagSet, args []string) (Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	cfg.register(surface, fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) register(surface Surface, fs *flag.FlagSet) {
	fs.Func("provider", "LLM provider: gemini, openai or ollama (default: chosen from API keys)", func(v string) error {
		c.Provider = llm.Provider(strings.ToLower(strings.TrimSpace(v)))
		return nil
	})
	fs.StringVar(&c.Model, "llm-model", c.Model, "override the provider's default model")
	fs.StringVar(&c.Endpoint, "llm-endpoint", c.Endpoint, "custom provider endpoint (eg. http://localhost:11434)")
	fs.StringVar(&c.SettingsPath, "settings", c.SettingsPath, "path to the admin settings JSON file")
	fs.StringVar(&c.HistoryPath, "history", c.HistoryPath, "path to the answer history JSON file (empty disables)")
	fs.StringVar(&c.Material, "material", c.Material, "PDF or text file (or http(s) URL) attached as reference material")
	fs.DurationVar(&c.Interstitial, "interstitial", c.Interstitial, "how long the interstitial stays up before a request")
	fs.BoolVar(&c.StrictOrdered, "strict-ordered", c.StrictOrdered, "treat decimal-numbered lines such as 2.5 as plain text")

	switch surface {
	case SurfaceTUI:
		fs.StringVar(&c.LogFile, "log-file", c.LogFile, "file that receives log output")
		fs.BoolVar(&c.NoAltScreen, "no-alt-screen", c.NoAltScreen, "disable the alternate screen buffer")
	case SurfaceServer:
		fs.StringVar(&c.Addr, "addr", c.Addr, "listen address")
		fs.DurationVar(&c.SessionTTL, "session-ttl", c.SessionTTL, "lifetime of admin sessions")
		fs.StringVar(&c.HashPassword, "hash-password", "", "print the EDUGENIUS_ADMIN_PASSWORD_HASH value for a password and exit")
	}
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	switch c.Provider {
	case "", llm.ProviderGemini, llm.ProviderOpenAI, llm.ProviderOllama:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Interstitial < 0 {
		return errors.New("interstitial delay cannot be negative")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("listen address is required")
	}
	for _, email := range c.AdminEmails {
		if !strings.Contains(email, "@") {
			return fmt.Errorf("invalid admin email %q", email)
		}
	}
	if len(c.AdminEmails) > 0 && c.AdminPasswordHash == "" && c.HashPassword == "" {
		return errors.New("EDUGENIUS_ADMIN_PASSWORD_HASH is required when admin emails are set")
	}
	return nil
}

// LLM returns the client configuration.
func (c Config) LLM() llm.Config {
	return llm.Config{Provider: c.Provider, Model: c.Model, Endpoint: c.Endpoint}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
