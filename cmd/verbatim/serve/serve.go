// Package servecmder provides the serve command for running the
// verbatim API server.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/grouptheoryco/verbatim/api"
	"github.com/grouptheoryco/verbatim/cmd/verbatim/storepath"
	"github.com/grouptheoryco/verbatim/pkg/config"
	"github.com/grouptheoryco/verbatim/pkg/eventstream"
	"github.com/grouptheoryco/verbatim/pkg/eventstream/kafka"
	"github.com/grouptheoryco/verbatim/pkg/eventstream/nop"
	"github.com/grouptheoryco/verbatim/pkg/insights"
	insightsutils "github.com/grouptheoryco/verbatim/pkg/insights/utils"
	"github.com/grouptheoryco/verbatim/pkg/logger"
	"github.com/grouptheoryco/verbatim/pkg/registry"
	"github.com/grouptheoryco/verbatim/pkg/session"
)

const serveLongDesc string = `Run the verbatim API server.

Serves the session save, validation, artifact listing, and aggregation
endpoints. Save events are published to the configured eventstream
provider, and the insight endpoints are enabled when an insight store
is configured with --with-insights.

Configuration follows the precedence chain: flags, then VERBATIM_*
environment variables, then config.toml, then defaults.

Examples:
  verbatim serve
  verbatim serve --listen :9090
  verbatim serve --log-file verbatim.log
  verbatim serve --eventstream-provider kafka --eventstream-brokers localhost:9092
  verbatim serve --with-insights --insights-provider qdrant`

const serveShortDesc string = "Run the verbatim API server"

type serveCommander struct {
	listen              string
	sessionsPath        string
	registryPath        string
	eventstreamProvider string
	eventstreamBrokers  string
	eventstreamTopic    string
	withInsights        bool
	logFile             string
	insightsProvider    string
	insightsConnString  string
	insightsHost        string
	insightsDims        uint

	debug  bool
	viper  *viper.Viper
	logger *slog.Logger
}

var serveFlagKeys = []string{
	config.FlagAPIListen,
	config.FlagSessionsPath,
	config.FlagRegistryPath,
	config.FlagEventstreamProvider,
	config.FlagEventstreamBrokers,
	config.FlagEventstreamTopic,
	config.FlagInsightsProvider,
	config.FlagInsightsConnString,
	config.FlagInsightsHost,
	config.FlagInsightsDims,
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlagKeys)
			cmder.viper = v

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.Context(), configDir)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagSessionsPath, &cmder.sessionsPath)
	config.AddStringFlag(cmd, config.Flags, config.FlagRegistryPath, &cmder.registryPath)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventstreamProvider, &cmder.eventstreamProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventstreamBrokers, &cmder.eventstreamBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventstreamTopic, &cmder.eventstreamTopic)
	config.AddStringFlag(cmd, config.Flags, config.FlagInsightsProvider, &cmder.insightsProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagInsightsConnString, &cmder.insightsConnString)
	config.AddStringFlag(cmd, config.Flags, config.FlagInsightsHost, &cmder.insightsHost)
	config.AddUintFlag(cmd, config.Flags, config.FlagInsightsDims, &cmder.insightsDims)
	cmd.Flags().BoolVar(&cmder.withInsights, "with-insights", false, "Enable the insight store endpoints")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append JSON logs to this file")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, configDir string) error {
	c.logger = logger.New(
		logger.WithPretty(true),
		logger.WithDebug(c.debug),
	)
	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		c.logger = logger.Multi(
			c.logger,
			logger.New(logger.WithJSON(true), logger.WithDebug(c.debug), logger.WithWriter(f)),
		)
	}

	sessionsPath, err := storepath.ResolveSessionsPath(c.viper.GetString("storage.sessions_path"), configDir)
	if err != nil {
		return err
	}

	registryPath, err := storepath.ResolveRegistryPath(c.viper.GetString("storage.registry_path"), configDir)
	if err != nil {
		return err
	}

	store := session.NewStore(sessionsPath)
	c.logger.Info("using session store", "path", sessionsPath)

	catalog, err := registry.Open(registryPath)
	if err != nil {
		return fmt.Errorf("opening save catalog: %w", err)
	}
	defer catalog.Close()
	c.logger.Info("using save catalog", "path", registryPath)

	publisher, err := c.newPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	insight, err := c.newInsightDriver(ctx)
	if err != nil {
		return err
	}
	if insight != nil {
		defer insight.Close()
	}

	apiConfig := api.Config{
		ListenAddr: c.viper.GetString("api.listen"),
	}
	server := api.NewServer(apiConfig, store, catalog, publisher, insight, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}

func (c *serveCommander) newPublisher() (eventstream.Publisher, error) {
	provider := c.viper.GetString("eventstream.provider")
	switch provider {
	case "", "nop":
		c.logger.Info("save events disabled")
		return nop.NewPublisher(), nil
	case "kafka":
		brokers := c.viper.GetStringSlice("eventstream.brokers")
		topic := c.viper.GetString("eventstream.topic")
		if len(brokers) == 0 {
			return nil, fmt.Errorf("kafka eventstream requires at least one broker")
		}
		c.logger.Info("publishing save events", "brokers", brokers, "topic", topic)
		return kafka.NewPublisher(brokers, topic), nil
	default:
		return nil, fmt.Errorf("unsupported eventstream provider: %q", provider)
	}
}

func (c *serveCommander) newInsightDriver(ctx context.Context) (insights.Driver, error) {
	if !c.withInsights {
		return nil, nil
	}

	driver, err := insightsutils.NewDriver(ctx, &insightsutils.NewDriverOpts{
		ProviderType: c.viper.GetString("insights.provider"),
		ConnString:   c.viper.GetString("insights.conn_string"),
		Host:         c.viper.GetString("insights.host"),
		Port:         c.viper.GetInt("insights.port"),
		Dimensions:   c.viper.GetInt("insights.dimensions"),
		Logger:       c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating insight store driver: %w", err)
	}

	c.logger.Info("insight store enabled", "provider", c.viper.GetString("insights.provider"))
	return driver, nil
}
