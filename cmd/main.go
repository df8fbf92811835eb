package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"thermostat_automation/internal/booking"
	"thermostat_automation/internal/config"
	"thermostat_automation/internal/handlers"
	"thermostat_automation/internal/httpclient"
	"thermostat_automation/internal/logger"
	"thermostat_automation/internal/netatmo"
	"thermostat_automation/internal/repository"
	"thermostat_automation/internal/repository/db"
	"thermostat_automation/internal/server"
	"thermostat_automation/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const (
	metricsNamespace = "heating"
	shutdownTimeout  = 10 * time.Second
)

var (
	configFilename string

	rootCmd = cobra.Command{
		Use:   "heating",
		Short: "Pre-heats rented rooms ahead of guest arrivals",
	}
	serveCmd = cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled sweep",
		RunE:  runServe,
	}
	sweepCmd = cobra.Command{
		Use:   "sweep",
		Short: "Plan schedule events once and print the report",
		RunE:  runSweep,
	}
	tokenCmd = cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for one owner",
		RunE:  runToken,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFilename, "config", "configs/config.yml", "Configuration file")
	sweepCmd.Flags().String("owner", "", "Plan a single owner instead of all")
	tokenCmd.Flags().String("owner", "", "Owner id (token subject)")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("owner")

	rootCmd.AddCommand(&serveCmd, &sweepCmd, &tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds everything the subcommands share.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *sql.DB
	repos    *repository.Repository
	services *service.Service
	registry *prometheus.Registry
}

func newApp() (*app, error) {
	cfg, err := config.Load(configFilename)
	if err != nil {
		return nil, err
	}
	log := logger.Get(cfg.Log.Level, cfg.Log.Format)

	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to init sqlite: %w", err)
	}

	registry := prometheus.NewRegistry()
	netatmoMetrics := httpclient.NewMetrics(metricsNamespace, "netatmo")
	bookingMetrics := httpclient.NewMetrics(metricsNamespace, "booking")
	plannerMetrics := service.NewPlannerMetrics(metricsNamespace)
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		netatmoMetrics, bookingMetrics, plannerMetrics,
	)

	netatmoHTTP := httpclient.New(cfg.Netatmo.Timeout, netatmoMetrics, "netatmo")
	deps := service.Dependencies{
		Vendor:       netatmo.NewClient(cfg.Netatmo.BaseURL, netatmoHTTP),
		Refresher:    netatmo.NewRefresher(cfg.Netatmo.ClientID, cfg.Netatmo.ClientSecret, cfg.Netatmo.TokenURL, netatmoHTTP),
		Reservations: booking.NewClient(cfg.Booking.BaseURL, cfg.Booking.APIKey, cfg.Location(), httpclient.New(cfg.Booking.Timeout, bookingMetrics, "booking")),
		Metrics:      plannerMetrics,
	}

	repos := repository.NewRepository(conn)
	return &app{
		cfg:      cfg,
		log:      log,
		db:       conn,
		repos:    repos,
		services: service.NewService(repos, cfg, deps, log),
		registry: registry,
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.log.Errorw("failed to close sqlite", "err", err)
	}
	_ = a.log.Sync()
}

func runServe(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	apiHandler := handlers.NewHandler(a.services, a.log,
		handlers.WithMetrics(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})),
		handlers.WithStreamInterval(a.cfg.Status.StreamInterval),
	)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sweeper *service.Sweeper
	if a.cfg.Planner.Cron != "" {
		sweeper, err = service.NewSweeper(a.cfg.Planner.Cron, a.services, a.log)
		if err != nil {
			return fmt.Errorf("planner.cron: %w", err)
		}
		sweeper.Start(ctx)
		a.log.Infow("sweeper_started", "cron", a.cfg.Planner.Cron)
	}

	srv := &server.Server{}
	runHTTPServer(srv, a.cfg.Port, apiHandler, a.log)

	waitForShutdown(cancel, srv, sweeper, a.log)
	return nil
}

func runSweep(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	var inv service.Invocation = service.Sweep{}
	if owner, _ := cmd.Flags().GetString("owner"); owner != "" {
		inv = service.SingleOwner{OwnerID: owner}
	}

	report, err := a.services.Run(cmd.Context(), inv)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report.Response())
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFilename)
	if err != nil {
		return err
	}
	owner, _ := cmd.Flags().GetString("owner")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	token, err := service.NewAuthorizer(cfg.Auth, nil).IssueToken(owner, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		log.Infow("http_server_starting", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, sweeper *service.Sweeper, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines; a running sweep is cancelled and awaited
	cancel()
	if sweeper != nil {
		sweeper.Stop()
	}

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
