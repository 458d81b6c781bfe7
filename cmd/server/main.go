// Package main runs the stargazer HTTP API: a local, single-learner server
// over the configured progress store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/phrazzld/stargazer/internal/api"
	"github.com/phrazzld/stargazer/internal/app"
	"github.com/phrazzld/stargazer/internal/config"
	"github.com/phrazzld/stargazer/internal/platform/logger"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML config file (default ./stargazer.yaml if present)")
	migrate := flag.Bool("migrate", false, "apply pending postgres migrations before serving")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configFile, *migrate); err != nil {
		fmt.Fprintf(os.Stderr, "stargazer server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile string, migrate bool) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		slog.String("host", cfg.Server.Host),
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("store_backend", cfg.Store.Backend))

	application, err := app.New(ctx, cfg, log, app.Options{Migrate: migrate})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := newHTTPServer(api.NewRouter(application.Service, log))
	return serve(ctx, srv, ln, log)
}
