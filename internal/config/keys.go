package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "NUMERA_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "storage.data_dir", typ: kString, env: "NUMERA_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", typ: kString, env: "NUMERA_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
	{
		key: "engine.default_system", typ: kString, env: "NUMERA_ENGINE_DEFAULT_SYSTEM",
		apply:   func(cfg *Config, v any) { cfg.Engine.DefaultSystem = v.(string) },
		extract: func(cfg Config) any { return cfg.Engine.DefaultSystem },
	},
	{
		key: "engine.karmic_mode", typ: kString, env: "NUMERA_ENGINE_KARMIC_MODE",
		apply:   func(cfg *Config, v any) { cfg.Engine.KarmicMode = v.(string) },
		extract: func(cfg Config) any { return cfg.Engine.KarmicMode },
	},
	{
		key: "engine.min_birth_year", typ: kInt, env: "NUMERA_ENGINE_MIN_BIRTH_YEAR",
		apply:   func(cfg *Config, v any) { cfg.Engine.MinBirthYear = v.(int) },
		extract: func(cfg Config) any { return cfg.Engine.MinBirthYear },
	},
	{
		key: "cache.max_entries", typ: kInt, env: "NUMERA_CACHE_MAX_ENTRIES",
		apply:   func(cfg *Config, v any) { cfg.Cache.MaxEntries = v.(int) },
		extract: func(cfg Config) any { return cfg.Cache.MaxEntries },
	},
	{
		key: "cache.ttl", typ: kString, env: "NUMERA_CACHE_TTL",
		apply:   func(cfg *Config, v any) { cfg.Cache.TTL = v.(string) },
		extract: func(cfg Config) any { return cfg.Cache.TTL },
	},
	{
		key: "cache.redis_url", typ: kString, env: "NUMERA_CACHE_REDIS_URL",
		apply:   func(cfg *Config, v any) { cfg.Cache.RedisURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Cache.RedisURL },
	},
	{
		key: "analytics.enabled", typ: kBool, env: "NUMERA_ANALYTICS_ENABLED",
		apply:   func(cfg *Config, v any) { cfg.Analytics.Enabled = v.(bool) },
		extract: func(cfg Config) any { return cfg.Analytics.Enabled },
	},
	{
		key: "analytics.kafka_brokers", typ: kString, env: "NUMERA_ANALYTICS_KAFKA_BROKERS",
		apply:   func(cfg *Config, v any) { cfg.Analytics.KafkaBrokers = v.(string) },
		extract: func(cfg Config) any { return cfg.Analytics.KafkaBrokers },
	},
	{
		key: "analytics.kafka_topic", typ: kString, env: "NUMERA_ANALYTICS_KAFKA_TOPIC",
		apply:   func(cfg *Config, v any) { cfg.Analytics.KafkaTopic = v.(string) },
		extract: func(cfg Config) any { return cfg.Analytics.KafkaTopic },
	},
	{
		key: "telemetry.otlp_endpoint", typ: kString, env: "NUMERA_TELEMETRY_OTLP_ENDPOINT",
		apply:   func(cfg *Config, v any) { cfg.Telemetry.OTLPEndpoint = v.(string) },
		extract: func(cfg Config) any { return cfg.Telemetry.OTLPEndpoint },
	},
	{
		// Read by GetAPIToken, never stored in Config.
		key: "api.token", typ: kString, env: tokenEnv,
		secret: true,
	},
}

func applyBackend(cfg *Config, b Backend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kBool:
			v, ok, err := b.GetBool(s.key)
			if err != nil {
				slog.Warn("ignoring config value", "key", s.key, "error", err)
				continue
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" || s.secret {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				slog.Warn("ignoring env override", "env", s.env, "value", raw, "error", err)
			}
		case kBool:
			if b, err := strconv.ParseBool(raw); err == nil {
				s.apply(cfg, b)
			} else {
				slog.Warn("ignoring env override", "env", s.env, "value", raw, "error", err)
			}
		}
	}
}
