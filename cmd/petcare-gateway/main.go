// Package main is the entrypoint for the petcare gateway.
// The gateway owns the store and serves the HTTP API used by the petcare CLI.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/petcare-labs/petcare/internal/config"
	"github.com/petcare-labs/petcare/internal/gateway"
	"github.com/petcare-labs/petcare/internal/observability"
	"github.com/petcare-labs/petcare/internal/service"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "petcare-gateway: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		envFile    string
		showVer    bool
		seed       bool
		seedFile   string
		watchSeed  bool
	)
	cmd := &cobra.Command{
		Use:   "petcare-gateway",
		Short: "Serve the petcare HTTP API",
		Long: `Serve the petcare HTTP API.

Configuration comes from config.yaml (./ or ~/.petcare/), PETCARE_* environment
variables and an optional .env file.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVer {
				fmt.Fprintf(cmd.OutOrStdout(), "petcare-gateway %s (commit: %s, built: %s)\n", version, commit, date)
				return nil
			}
			loadEnvFile(envFile)
			flags := cmd.Flags()
			return run(cmd.Context(), configPath, func(cfg *config.Config) {
				if flags.Changed("seed") {
					cfg.Storage.Seed = seed
				}
				if flags.Changed("seed-file") {
					cfg.Storage.SeedFile = seedFile
				}
				if flags.Changed("watch-seed") {
					cfg.Storage.WatchSeed = watchSeed
				}
			})
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "config file")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading config")
	cmd.Flags().BoolVar(&showVer, "version", false, "show version")
	cmd.Flags().BoolVar(&seed, "seed", true, "load the demo household into an empty store")
	cmd.Flags().StringVar(&seedFile, "seed-file", "", "YAML household to seed instead of the built-in one")
	cmd.Flags().BoolVar(&watchSeed, "watch-seed", false, "reload --seed-file into the memory store when it changes")
	return cmd
}

// loadEnvFile exports variables from a dotenv file. Variables already set
// in the environment win. A missing file is not an error.
func loadEnvFile(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err == nil {
		fmt.Fprintf(os.Stderr, "Loaded environment from %s\n", path)
	}
}

func run(ctx context.Context, configPath string, override func(*config.Config)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("version", version))

	reportErrors := false
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			Release:     "petcare-gateway@" + version,
		}); err != nil {
			return fmt.Errorf("failed to initialize sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
		reportErrors = true
		logger.Info("error reporting enabled", zap.String("environment", cfg.Sentry.Environment))
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	now := func() time.Time { return time.Now().In(loc) }
	st, err := openStore(ctx, cfg, now, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	authn, err := newAuthenticator(cfg)
	if err != nil {
		return err
	}

	svc := service.New(st.repo,
		service.WithLocation(loc),
		service.WithSnoozeDuration(cfg.Reminders.Snooze),
		service.WithLogger(logger),
	)
	gwOpts := []gateway.Option{gateway.WithLogger(logger)}
	if st.schema != nil {
		gwOpts = append(gwOpts, gateway.WithReadinessCheck("schema", st.schema))
	}
	gw, err := gateway.NewGateway(svc, authn, gateway.Config{
		Version:      version,
		Storage:      cfg.Storage.Driver,
		RateLimit:    cfg.Server.RateLimit,
		RateBurst:    cfg.Server.RateBurst,
		ReportErrors: reportErrors,
	}, gwOpts...)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}

	server := &http.Server{
		Addr:         net.JoinHostPort("", strconv.Itoa(cfg.Server.Port)),
		Handler:      gw,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("petcare gateway starting",
			zap.String("addr", server.Addr),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("timezone", loc.String()),
			zap.String("commit", commit),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	logger.Info("gateway stopped", zap.Int("requests", gw.AuditSummary().TotalRequests))
	return nil
}
