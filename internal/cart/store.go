package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"MiniShop/internal/storage"
)

// DefaultKey is the storage key the cart lives under.
const DefaultKey = "mini_ecom_cart_v1"

// MaxQuantity caps a single line.
const MaxQuantity = 999

var (
	ErrEmptyID          = errors.New("product id required")
	ErrQuantityTooLarge = errors.New("quantity too large")
)

// ReadCart loads the persisted cart. A missing key, unreadable storage or a
// value that is not a JSON object of integers all yield an empty cart; the
// problem is logged, never returned.
func ReadCart(ctx context.Context, kv storage.KV, key string, log *zap.Logger) Cart {
	if log == nil {
		log = zap.NewNop()
	}

	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		log.Warn("read cart failed, starting empty", zap.String("key", key), zap.Error(err))
		return Cart{}
	}
	if !ok || raw == "" {
		return Cart{}
	}

	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		log.Warn("stored cart is corrupt, starting empty", zap.String("key", key), zap.Error(err))
		return Cart{}
	}
	if c == nil {
		return Cart{}
	}

	for id, qty := range c {
		switch {
		case qty <= 0:
			delete(c, id)
		case qty > MaxQuantity:
			c[id] = MaxQuantity
		}
	}
	return c
}

// SaveCart writes c as a JSON object.
func SaveCart(ctx context.Context, kv storage.KV, key string, c Cart) error {
	if c == nil {
		c = Cart{}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := kv.Set(ctx, key, string(b)); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// ClearCart erases the persisted cart.
func ClearCart(ctx context.Context, kv storage.KV, key string) error {
	if err := kv.Remove(ctx, key); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Store is the in-memory cart plus its persistence. Every mutation is saved
// before it returns. Store has a single writer; callers that share it
// across goroutines serialise access themselves.
type Store struct {
	kv   storage.KV
	key  string
	log  *zap.Logger
	cart Cart
}

// NewStore loads the cart saved under key.
func NewStore(ctx context.Context, kv storage.KV, key string, log *zap.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		kv:   kv,
		key:  key,
		log:  log,
		cart: ReadCart(ctx, kv, key, log),
	}
}

func (s *Store) Key() string { return s.key }

// Cart returns a copy of the current mapping.
func (s *Store) Cart() Cart { return s.cart.Clone() }

func (s *Store) Quantity(id string) int { return s.cart[id] }

func (s *Store) TotalCount() int { return s.cart.TotalCount() }

func (s *Store) Totals(lookup Lookup) Totals { return s.cart.Totals(lookup) }

func (s *Store) Lines(lookup Lookup) []Line { return s.cart.Lines(lookup) }

func (s *Store) Len() int { return len(s.cart) }

// Add increments id by one, creating it at 1. A line already at
// MaxQuantity stays there.
func (s *Store) Add(ctx context.Context, id string) error {
	return s.Increment(ctx, id)
}

// SetQuantity sets an absolute quantity; qty <= 0 removes the entry.
func (s *Store) SetQuantity(ctx context.Context, id string, qty int) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrEmptyID
	}
	if qty > MaxQuantity {
		return ErrQuantityTooLarge
	}
	if qty <= 0 {
		delete(s.cart, id)
	} else {
		s.cart[id] = qty
	}
	return s.save(ctx)
}

func (s *Store) Increment(ctx context.Context, id string) error {
	return s.SetQuantity(ctx, id, min(s.cart[strings.TrimSpace(id)]+1, MaxQuantity))
}

// Decrement lowers id by one. Reaching zero removes the entry.
func (s *Store) Decrement(ctx context.Context, id string) error {
	return s.SetQuantity(ctx, id, s.cart[strings.TrimSpace(id)]-1)
}

// Remove deletes id if present.
func (s *Store) Remove(ctx context.Context, id string) error {
	delete(s.cart, strings.TrimSpace(id))
	return s.save(ctx)
}

// Clear empties the cart and erases the persisted key.
func (s *Store) Clear(ctx context.Context) error {
	s.cart = Cart{}
	return ClearCart(ctx, s.kv, s.key)
}

// Reload replaces the in-memory cart with what storage holds.
func (s *Store) Reload(ctx context.Context) {
	s.cart = ReadCart(ctx, s.kv, s.key, s.log)
}

func (s *Store) save(ctx context.Context) error {
	if err := SaveCart(ctx, s.kv, s.key, s.cart); err != nil {
		s.log.Error("persist cart failed", zap.String("key", s.key), zap.Error(err))
		return err
	}
	return nil
}
