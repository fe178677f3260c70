package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tokoshop/internal/config"
	"tokoshop/internal/server"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var service, port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API of one service, or all of them",
		Long: fmt.Sprintf("Run the HTTP API. --service selects the route groups to serve: %s.",
			strings.Join(server.ServiceNames(), ", ")),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if service != "" {
				cfg.Service = strings.ToLower(service)
			}
			if port != "" {
				cfg.Port = port
			}
			if err := server.CheckService(cfg.Service); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&service, "service", "", "service to run (defaults to SERVICE)")
	cmd.Flags().StringVar(&port, "port", "", "listen address such as :8081 (defaults to APP_PORT)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := connect(ctx, cfg, connectOptions{
		documentStore: server.NeedsDocumentStore(cfg.Service),
		broker:        true,
		optionalCache: true,
	})
	if err != nil {
		return err
	}
	defer d.close(context.Background())

	stores, err := d.stores(ctx)
	if err != nil {
		return err
	}
	app, err := server.New(server.Options{
		Service:     cfg.Service,
		CORSOrigins: cfg.CORSOrigins,
		Health:      d.healthChecks(),
	}, server.NewServices(cfg, stores))
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "service", cfg.Service, "addr", cfg.Port)
		return app.Listen(cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	slog.Info("server gracefully stopped")
	return nil
}
