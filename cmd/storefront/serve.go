package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"MiniShop/internal/storage"
	"MiniShop/internal/storefront"
	"MiniShop/pkg/kit"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the storefront page and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd.Context())
		},
	}
}

func (c *cli) serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := openRuntime(ctx, c.cfg, c.log)
	if err != nil {
		c.log.Error("startup failed", zap.Error(err))
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			c.log.Warn("close storage", zap.Error(err))
		}
	}()

	h := storefront.NewHandler(rt.app, storefront.HTTPDeps{
		Log:                 c.log,
		Service:             service,
		Registry:            rt.reg,
		MetricsEnabled:      true,
		MetricsToken:        c.cfg.MetricsToken,
		CheckoutLimitPerMin: c.cfg.CheckoutLimitPerMin,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop()
		return kit.RunHTTPServer(gctx, c.cfg.Addr(), h, c.log)
	})
	if bs, ok := rt.kv.(*storage.BadgerStore); ok {
		g.Go(func() error {
			bs.RunGC(gctx, c.cfg.StorageGC)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.log.Error("storefront stopped", zap.Error(err))
		return err
	}
	c.log.Info("storefront stopped")
	return nil
}
