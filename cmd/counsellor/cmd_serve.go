package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"counsellor/internal/logging"
	"counsellor/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API until interrupted",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Catalog.SeedOnStart {
		n, err := a.seed(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("catalog seeded", zap.Int("universities", n))
		}
	}

	srv := server.New(cfg, server.Deps{
		Store:   a.store,
		Catalog: a.catalog,
		Engine:  a.engine,
		Logger:  logging.Zap(logging.CategoryHTTP),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown requested")
		return nil
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
