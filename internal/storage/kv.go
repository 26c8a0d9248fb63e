// Package storage provides the persistent key-value capability the cart is
// saved through.
package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	ErrClosed        = errors.New("storage closed")
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// KV is a string key-value store. Get reports a missing key with ok=false
// and a nil error.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

const (
	DriverMemory   = "memory"
	DriverBadger   = "badger"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Options struct {
	Driver string
	// Path is the badger directory.
	Path string
	// DSN is the sqlite file or postgres URL.
	DSN string
	Log *zap.Logger
}

// Open returns the KV for opts.Driver.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemStore(), nil
	case DriverBadger:
		return OpenBadger(BadgerConfig{Path: opts.Path, SyncWrites: true, Logger: opts.Log})
	case DriverSQLite, DriverPostgres:
		return OpenSQL(ctx, opts.Driver, opts.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
