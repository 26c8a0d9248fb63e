// Package config gathers the storefront settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"MiniShop/internal/cart"
	"MiniShop/internal/money"
	"MiniShop/internal/storage"
)

type Config struct {
	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=debug info warn error"`

	StorageDriver string `validate:"oneof=memory badger sqlite postgres"`
	StoragePath   string `validate:"required_if=StorageDriver badger"`
	StorageDSN    string `validate:"required_if=StorageDriver sqlite,required_if=StorageDriver postgres"`
	StorageGC     time.Duration
	CartKey       string `validate:"required"`

	CatalogFile   string
	CatalogDriver string `validate:"omitempty,oneof=sqlite postgres"`
	CatalogDSN    string `validate:"required_with=CatalogDriver"`

	Locale         string `validate:"required,bcp47_language_tag"`
	CurrencySymbol string `validate:"required"`

	ReceiptSecret string `validate:"required,min=16"`
	MetricsToken  string

	CheckoutLimitPerMin int `validate:"gte=0"`
}

// FromEnv reads the configuration with the defaults a local demo needs.
func FromEnv() Config {
	return Config{
		Port:     getenv("PORT", "8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		StorageDriver: getenv("STORAGE_DRIVER", storage.DriverBadger),
		StoragePath:   getenv("STORAGE_PATH", "data/cart"),
		StorageDSN:    os.Getenv("STORAGE_DSN"),
		StorageGC:     getDuration("STORAGE_GC_INTERVAL", 5*time.Minute),
		CartKey:       getenv("CART_KEY", cart.DefaultKey),

		CatalogFile:   os.Getenv("CATALOG_FILE"),
		CatalogDriver: os.Getenv("CATALOG_DRIVER"),
		CatalogDSN:    os.Getenv("CATALOG_DSN"),

		Locale:         getenv("LOCALE", money.DefaultLocale),
		CurrencySymbol: getenv("CURRENCY_SYMBOL", money.DefaultSymbol),

		ReceiptSecret: getenv("RECEIPT_SECRET", "dev-receipt-secret"),
		MetricsToken:  os.Getenv("METRICS_TOKEN"),

		CheckoutLimitPerMin: getInt("CHECKOUT_LIMIT_PER_MIN", 10),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Config) Addr() string { return ":" + c.Port }

func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver: c.StorageDriver,
		Path:   c.StoragePath,
		DSN:    c.StorageDSN,
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return v
	}
	return def
}
