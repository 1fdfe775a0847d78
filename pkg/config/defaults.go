package config

const (
	defaultAPIListen = ":8080"

	defaultEventstreamProvider = "nop"
	defaultEventstreamTopic    = "verbatim.sessions"

	defaultInsightsProvider   = "pgvector"
	defaultInsightsHost       = "localhost"
	defaultInsightsPort       = 6334
	defaultInsightsDimensions = 768
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values. Storage paths
// default to empty, meaning they resolve under the dot dir at runtime.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Eventstream: EventstreamConfig{
			Provider: defaultEventstreamProvider,
			Topic:    defaultEventstreamTopic,
		},
		Insights: InsightsConfig{
			Provider:   defaultInsightsProvider,
			Host:       defaultInsightsHost,
			Port:       defaultInsightsPort,
			Dimensions: defaultInsightsDimensions,
		},
	}
}
