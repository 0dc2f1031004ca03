package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vango-dev/rvalid/internal/config"
	"github.com/vango-dev/rvalid/pkg/metrics"
	"github.com/vango-dev/rvalid/pkg/ruleset"
	"github.com/vango-dev/rvalid/pkg/server"
	"github.com/vango-dev/rvalid/pkg/validation"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the validation service",
		Long: `Run the HTTP and WebSocket validation service.

Rule sets are loaded at startup from the files and s3:// URIs listed
under rulesets in the config file. Every config key can be overridden
with an RVALID_ environment variable, e.g. RVALID_SERVER_ADDR.`,
		Example: `  rvalid serve --config rvalid.yaml
  rvalid serve --addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			srv, err := newService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides server.addr)")

	return cmd
}

// newService applies the process-wide logging and validation settings of
// cfg, loads its rule sets and builds the server.
func newService(ctx context.Context, cfg *config.Config) (*server.Server, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	validation.SetLogger(logger)
	validation.Init(cfg.Validation)

	if path := cfg.Path(); path != "" {
		logger.Info("config loaded", "path", path)
	}

	var loadOpts []ruleset.LoadOption
	if needsS3(cfg.RuleSets) {
		client, err := ruleset.NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		loadOpts = append(loadOpts, ruleset.WithObjectGetter(client))
	}
	sets, err := ruleset.LoadAll(ctx, cfg.RuleSets, loadOpts...)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		logger.Warn("no rule sets configured")
	}

	opts := []server.Option{server.WithLogger(logger)}
	if cfg.Server.Metrics {
		registry := prometheus.NewRegistry()
		collector := metrics.New(
			metrics.WithNamespace(cfg.Server.MetricsNamespace),
			metrics.WithRegistry(registry),
		)
		validation.SetObserver(collector)
		opts = append(opts, server.WithCollector(collector), server.WithGatherer(registry))
	} else {
		opts = append(opts, server.WithGatherer(nil))
	}

	serverCfg := server.DefaultConfig()
	serverCfg.Addr = cfg.Server.Addr
	serverCfg.ReadTimeout = cfg.Server.ReadTimeout
	serverCfg.WriteTimeout = cfg.Server.WriteTimeout
	serverCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	if len(cfg.Server.AllowedOrigins) > 0 {
		serverCfg.CheckOrigin = server.AllowOrigins(cfg.Server.AllowedOrigins...)
	}

	return server.New(serverCfg, sets, opts...), nil
}

func needsS3(uris []string) bool {
	for _, uri := range uris {
		if strings.HasPrefix(uri, "s3://") {
			return true
		}
	}
	return false
}
