package config

import (
	"fmt"
	"strconv"
)

// Config is the persistent verso configuration stored as config.toml in the
// .verso/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Storage StorageConfig `toml:"storage"`
	LLM     LLMConfig     `toml:"llm"`
	API     APIConfig     `toml:"api"`
	Events  EventsConfig  `toml:"events"`
	Host    HostConfig    `toml:"host"`
}

// StorageConfig selects the durable backend for the notebook slot.
type StorageConfig struct {
	// Provider is "memory", "sqlite" or "postgres".
	Provider    string `toml:"provider,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// LLMConfig configures the model used for briefs and questions.
type LLMConfig struct {
	Provider       string `toml:"provider,omitempty"`
	Model          string `toml:"model,omitempty"`
	BaseURL        string `toml:"base_url,omitempty"`
	Language       string `toml:"language,omitempty"`
	TimeoutSeconds uint   `toml:"timeout_seconds,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// EventsConfig configures notebook change events.
type EventsConfig struct {
	// Provider is "none" or "kafka".
	Provider     string `toml:"provider,omitempty"`
	KafkaBrokers string `toml:"kafka_brokers,omitempty"`
	KafkaTopic   string `toml:"kafka_topic,omitempty"`
}

// HostConfig configures the on-disk page host.
type HostConfig struct {
	PageDir string `toml:"page_dir,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.provider":     stringKey(func(c *Config) *string { return &c.Storage.Provider }),
	"storage.sqlite_path":  stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"storage.postgres_dsn": stringKey(func(c *Config) *string { return &c.Storage.PostgresDSN }),
	"llm.provider":         stringKey(func(c *Config) *string { return &c.LLM.Provider }),
	"llm.model":            stringKey(func(c *Config) *string { return &c.LLM.Model }),
	"llm.base_url":         stringKey(func(c *Config) *string { return &c.LLM.BaseURL }),
	"llm.language":         stringKey(func(c *Config) *string { return &c.LLM.Language }),
	"llm.timeout_seconds": {
		get: func(c *Config) string {
			if c.LLM.TimeoutSeconds == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.LLM.TimeoutSeconds), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for llm.timeout_seconds: %w", err)
			}
			c.LLM.TimeoutSeconds = uint(n)
			return nil
		},
	},
	"api.listen":           stringKey(func(c *Config) *string { return &c.API.Listen }),
	"events.provider":      stringKey(func(c *Config) *string { return &c.Events.Provider }),
	"events.kafka_brokers": stringKey(func(c *Config) *string { return &c.Events.KafkaBrokers }),
	"events.kafka_topic":   stringKey(func(c *Config) *string { return &c.Events.KafkaTopic }),
	"host.page_dir":        stringKey(func(c *Config) *string { return &c.Host.PageDir }),
}

// orderedKeys is the display order, matching the TOML section layout.
var orderedKeys = []string{
	"storage.provider",
	"storage.sqlite_path",
	"storage.postgres_dsn",
	"llm.provider",
	"llm.model",
	"llm.base_url",
	"llm.language",
	"llm.timeout_seconds",
	"api.listen",
	"events.provider",
	"events.kafka_brokers",
	"events.kafka_topic",
	"host.page_dir",
}
