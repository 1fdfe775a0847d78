package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent verbatim configuration stored as
// config.toml in the .verbatim/ directory. The TOML layout uses
// sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Storage     StorageConfig     `toml:"storage"`
	API         APIConfig         `toml:"api"`
	Eventstream EventstreamConfig `toml:"eventstream"`
	Insights    InsightsConfig    `toml:"insights"`
}

// StorageConfig holds session artifact and registry settings.
type StorageConfig struct {
	// SessionsPath is the base directory for saved session artifacts.
	// Empty means <dotdir>/sessions resolved at runtime.
	SessionsPath string `toml:"sessions_path,omitempty"`

	// RegistryPath is the SQLite database cataloging saves.
	// Empty means <dotdir>/registry.db resolved at runtime.
	RegistryPath string `toml:"registry_path,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// EventstreamConfig holds save-event publishing settings.
type EventstreamConfig struct {
	// Provider is "nop" or "kafka".
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// InsightsConfig holds insight store settings.
type InsightsConfig struct {
	// Provider is "pgvector" or "qdrant".
	Provider string `toml:"provider,omitempty"`

	// ConnString is the PostgreSQL connection string for pgvector.
	ConnString string `toml:"conn_string,omitempty"`

	// Host and Port locate the Qdrant gRPC endpoint.
	Host string `toml:"host,omitempty"`
	Port int    `toml:"port,omitempty"`

	Dimensions uint `toml:"dimensions,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.sessions_path": {
		get: func(c *Config) string { return c.Storage.SessionsPath },
		set: func(c *Config, v string) error { c.Storage.SessionsPath = v; return nil },
	},
	"storage.registry_path": {
		get: func(c *Config) string { return c.Storage.RegistryPath },
		set: func(c *Config, v string) error { c.Storage.RegistryPath = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"eventstream.provider": {
		get: func(c *Config) string { return c.Eventstream.Provider },
		set: func(c *Config, v string) error { c.Eventstream.Provider = v; return nil },
	},
	"eventstream.brokers": {
		get: func(c *Config) string { return strings.Join(c.Eventstream.Brokers, ",") },
		set: func(c *Config, v string) error {
			if v == "" {
				c.Eventstream.Brokers = nil
				return nil
			}
			c.Eventstream.Brokers = strings.Split(v, ",")
			return nil
		},
	},
	"eventstream.topic": {
		get: func(c *Config) string { return c.Eventstream.Topic },
		set: func(c *Config, v string) error { c.Eventstream.Topic = v; return nil },
	},
	"insights.provider": {
		get: func(c *Config) string { return c.Insights.Provider },
		set: func(c *Config, v string) error { c.Insights.Provider = v; return nil },
	},
	"insights.conn_string": {
		get: func(c *Config) string { return c.Insights.ConnString },
		set: func(c *Config, v string) error { c.Insights.ConnString = v; return nil },
	},
	"insights.host": {
		get: func(c *Config) string { return c.Insights.Host },
		set: func(c *Config, v string) error { c.Insights.Host = v; return nil },
	},
	"insights.port": {
		get: func(c *Config) string {
			if c.Insights.Port == 0 {
				return ""
			}
			return strconv.Itoa(c.Insights.Port)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for insights.port: %w", err)
			}
			c.Insights.Port = n
			return nil
		},
	},
	"insights.dimensions": {
		get: func(c *Config) string {
			if c.Insights.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Insights.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for insights.dimensions: %w", err)
			}
			c.Insights.Dimensions = uint(n)
			return nil
		},
	},
}
