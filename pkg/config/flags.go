package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g.,
// --sessions-path on both "verbatim seed" and "verbatim validate").
type Flag struct {
	// Name is the long flag name (e.g. "listen").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "api.listen").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagSessionsPath        = "sessions-path"
	FlagRegistryPath        = "registry-path"
	FlagAPIListen           = "api-listen"
	FlagEventstreamProvider = "eventstream-provider"
	FlagEventstreamBrokers  = "eventstream-brokers"
	FlagEventstreamTopic    = "eventstream-topic"
	FlagInsightsProvider    = "insights-provider"
	FlagInsightsConnString  = "insights-conn-string"
	FlagInsightsHost        = "insights-host"
	FlagInsightsDims        = "insights-dimensions"
)

// Flags is the canonical registry used by the verbatim commands.
var Flags = FlagSet{
	FlagSessionsPath:        {Name: "sessions-path", ViperKey: "storage.sessions_path", Description: "Directory session artifacts are written under"},
	FlagRegistryPath:        {Name: "registry-path", ViperKey: "storage.registry_path", Description: "Path to the SQLite save catalog"},
	FlagAPIListen:           {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the API server to listen on"},
	FlagEventstreamProvider: {Name: "eventstream-provider", ViperKey: "eventstream.provider", Description: "Save event publisher (nop, kafka)"},
	FlagEventstreamBrokers:  {Name: "eventstream-brokers", ViperKey: "eventstream.brokers", Description: "Comma-separated Kafka broker addresses"},
	FlagEventstreamTopic:    {Name: "eventstream-topic", ViperKey: "eventstream.topic", Description: "Kafka topic for save events"},
	FlagInsightsProvider:    {Name: "insights-provider", ViperKey: "insights.provider", Description: "Insight store provider (pgvector, qdrant)"},
	FlagInsightsConnString:  {Name: "insights-conn-string", ViperKey: "insights.conn_string", Description: "Postgres connection string for pgvector"},
	FlagInsightsHost:        {Name: "insights-host", ViperKey: "insights.host", Description: "Qdrant host"},
	FlagInsightsDims:        {Name: "insights-dimensions", ViperKey: "insights.dimensions", Description: "Embedding dimensionality for the insight store"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
