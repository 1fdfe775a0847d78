// Package insightsutils constructs insight store drivers from
// configuration.
package insightsutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/grouptheoryco/verbatim/pkg/insights"
	"github.com/grouptheoryco/verbatim/pkg/insights/pgvector"
	"github.com/grouptheoryco/verbatim/pkg/insights/qdrant"
)

// NewDriverOpts selects and configures an insight store backend.
type NewDriverOpts struct {
	ProviderType string
	ConnString   string
	Host         string
	Port         int
	Dimensions   int
	Logger       *slog.Logger
}

// NewDriver builds the configured insight store driver.
func NewDriver(ctx context.Context, o *NewDriverOpts) (insights.Driver, error) {
	switch o.ProviderType {
	case "pgvector":
		return pgvector.NewDriver(ctx, pgvector.Config{
			ConnString: o.ConnString,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "qdrant":
		return qdrant.NewDriver(ctx, qdrant.Config{
			Host:       o.Host,
			Port:       o.Port,
			Dimensions: o.Dimensions,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported insight store provider: %s", o.ProviderType)
	}
}
