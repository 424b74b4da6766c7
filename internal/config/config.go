package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kalambet/numera/internal/numerology"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Log       LogConfig
	Engine    EngineConfig
	Cache     CacheConfig
	Analytics AnalyticsConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

type EngineConfig struct {
	DefaultSystem string
	KarmicMode    string
	MinBirthYear  int
}

type CacheConfig struct {
	MaxEntries int
	TTL        string
	RedisURL   string
}

// TTLDuration parses TTL. Load has already validated it.
func (c CacheConfig) TTLDuration() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

type AnalyticsConfig struct {
	Enabled      bool
	KafkaBrokers string
	KafkaTopic   string
}

// Brokers splits the comma-separated broker list, dropping blanks.
func (a AnalyticsConfig) Brokers() []string {
	var out []string
	for _, b := range strings.Split(a.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

type TelemetryConfig struct {
	OTLPEndpoint string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4100,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
		Engine: EngineConfig{
			DefaultSystem: string(numerology.Pythagorean),
			KarmicMode:    string(numerology.KarmicLiteral),
			MinBirthYear:  numerology.DefaultMinBirthYear,
		},
		Cache: CacheConfig{
			MaxEntries: 1000,
			TTL:        "24h",
		},
		Analytics: AnalyticsConfig{
			Enabled:    true,
			KafkaTopic: "numera.calculations",
		},
	}
}

// Load reads configuration from the platform-native backend and
// environment variables, then validates it.
//
// On macOS the backend is UserDefaults (domain: com.numera.app).
// On Linux the backend is a JSON file at $XDG_CONFIG_HOME/numera/config.json.
//
// Environment variables (NUMERA_*) override backend values on all platforms.
func Load() (Config, error) {
	return loadWith(newPlatformBackend())
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", cfg.Server.Port)
	}
	if _, err := numerology.ParseSystem(cfg.Engine.DefaultSystem); err != nil {
		return fmt.Errorf("engine.default_system: %w", err)
	}
	if _, err := numerology.ParseKarmicMode(cfg.Engine.KarmicMode); err != nil {
		return fmt.Errorf("engine.karmic_mode: %w", err)
	}
	if cfg.Engine.MinBirthYear <= 0 {
		return fmt.Errorf("invalid engine.min_birth_year %d", cfg.Engine.MinBirthYear)
	}
	if cfg.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive, got %d", cfg.Cache.MaxEntries)
	}
	ttl, err := time.ParseDuration(cfg.Cache.TTL)
	if err != nil {
		return fmt.Errorf("cache.ttl: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", cfg.Cache.TTL)
	}
	return nil
}

const (
	keychainService = "numera"
	tokenAccount    = "api_token"
	tokenEnv        = "NUMERA_API_TOKEN"
)

// Keychain reads and writes secrets in the platform secret store.
type Keychain interface {
	Get(service, account string) (string, error)
	Set(service, account, value string) error
}

// NewKeychain returns the platform secret store: macOS Keychain on darwin,
// a 0600 JSON file under $XDG_DATA_HOME/numera elsewhere.
func NewKeychain() Keychain {
	return platformKeychain{}
}

type platformKeychain struct{}

func (platformKeychain) Get(service, account string) (string, error) {
	return keychainGet(service, account)
}

func (platformKeychain) Set(service, account, value string) error {
	return keychainSet(service, account, value)
}

// GetAPIToken returns the bearer token guarding the HTTP API. The
// NUMERA_API_TOKEN environment variable wins; otherwise the token is read
// from kc, and generated and stored there on first use.
func GetAPIToken(kc Keychain) (string, error) {
	if tok := strings.TrimSpace(os.Getenv(tokenEnv)); tok != "" {
		return tok, nil
	}
	tok, err := kc.Get(keychainService, tokenAccount)
	switch {
	case err == nil && tok != "":
		return tok, nil
	case err != nil && !errors.Is(err, ErrSecretNotFound):
		return "", fmt.Errorf("reading API token: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating API token: %w", err)
	}
	tok = hex.EncodeToString(buf)
	if err := kc.Set(keychainService, tokenAccount, tok); err != nil {
		return "", fmt.Errorf("storing API token: %w", err)
	}
	return tok, nil
}
