package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/colthorp/aoclb/internal/api"
	"github.com/colthorp/aoclb/internal/config"
	"github.com/colthorp/aoclb/internal/leaderboard"
	"github.com/colthorp/aoclb/internal/output"
	"github.com/colthorp/aoclb/internal/server"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(allCmd)
}

// serveCmd runs the HTTP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve leaderboards over HTTP",
	Args:  cobra.NoArgs,
	RunE:  handleServe,
}

// getCmd fetches one leaderboard
var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Fetch a single configured leaderboard",
	Args:  cobra.ExactArgs(1),
	RunE:  handleGet,
}

// allCmd fetches every configured leaderboard
var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Fetch every configured leaderboard",
	Args:  cobra.NoArgs,
	RunE:  handleAll,
}

// app is the wired set of long-lived components.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	service  *leaderboard.Service
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := newLogger(cmd)
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client := api.NewClient(cfg.SessionCookie, cfg.Year,
		api.WithBaseURL(cfg.BaseURL),
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithLogger(logger),
	)
	service := leaderboard.NewService(client, leaderboard.Options{
		IDs:           cfg.LeaderboardIDs,
		CacheDuration: cfg.CacheDuration,
		Logger:        logger,
		Metrics:       leaderboard.NewMetrics(registry),
	})

	return &app{cfg: cfg, logger: logger, registry: registry, service: service}, nil
}

func handleServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting aoclb",
		"year", a.cfg.Year,
		"leaderboards", a.cfg.LeaderboardIDs,
		"cache_duration", a.cfg.CacheDuration)

	srv := server.New(a.service, server.Options{
		Addr:        a.cfg.Server.Addr(),
		CORSOrigins: a.cfg.Server.CORSOrigins,
		Gatherer:    a.registry,
		Logger:      a.logger,
	})
	return srv.Run(ctx)
}

func handleGet(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	board, err := a.service.Get(commandContext(cmd), args[0])
	if err != nil {
		return err
	}

	if raw {
		return output.PrintJSON(cmd.OutOrStdout(), board)
	}
	return output.PrintLeaderboard(cmd.OutOrStdout(), board)
}

func handleAll(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	results := a.service.GetAll(commandContext(cmd))

	if raw {
		return output.PrintJSON(cmd.OutOrStdout(), results)
	}
	return output.PrintResults(cmd.OutOrStdout(), results)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
