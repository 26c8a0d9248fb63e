package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"MiniShop/internal/cart"
	"MiniShop/internal/catalog"
	"MiniShop/internal/config"
	"MiniShop/internal/money"
	"MiniShop/internal/storage"
	"MiniShop/internal/storefront"
)

type runtime struct {
	kv  storage.KV
	app *storefront.App
	reg *prometheus.Registry
}

// openRuntime loads the catalog, opens cart storage and assembles the app.
func openRuntime(ctx context.Context, cfg config.Config, log *zap.Logger) (*runtime, error) {
	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := cfg.StorageOptions()
	opts.Log = log
	kv, err := storage.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	reg := prometheus.NewRegistry()
	app := storefront.New(storefront.Deps{
		Catalog:  cat,
		Cart:     cart.NewStore(ctx, kv, cfg.CartKey, log),
		Storage:  kv,
		Money:    money.NewFormatter(cfg.Locale, cfg.CurrencySymbol),
		Receipts: cart.NewReceiptSigner(cfg.ReceiptSecret),
		Log:      log,
		Metrics:  storefront.NewMetrics(reg),
	})

	log.Info("storefront ready",
		zap.Int("products", cat.Len()),
		zap.String("storage", cfg.StorageDriver),
		zap.String("cart_key", cfg.CartKey),
	)
	return &runtime{kv: kv, app: app, reg: reg}, nil
}

func (rt *runtime) Close() error {
	return rt.kv.Close()
}

func loadCatalog(ctx context.Context, cfg config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogDriver == "" {
		return catalog.Load(ctx, catalog.YAMLSource{Path: cfg.CatalogFile})
	}

	name, ok := storage.SQLDriverName(cfg.CatalogDriver)
	if !ok {
		return nil, fmt.Errorf("%w: %q", storage.ErrUnknownDriver, cfg.CatalogDriver)
	}
	db, err := sql.Open(name, cfg.CatalogDSN)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	defer db.Close()

	return catalog.Load(ctx, catalog.NewSQLSource(db))
}
