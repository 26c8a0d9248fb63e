// Package cart holds the shopping cart: a mapping from product id to a
// positive quantity, persisted as one JSON object under one storage key.
package cart

import (
	"maps"
	"slices"

	"MiniShop/internal/catalog"
)

// Cart maps product id to quantity. Quantities are always >= 1; an entry
// that would drop to zero is deleted instead.
type Cart map[string]int

// Lookup resolves product ids against the catalog.
type Lookup interface {
	Get(id string) (catalog.Product, bool)
}

type Totals struct {
	Items int   `json:"items"`
	Price int64 `json:"price"`
}

type Line struct {
	Product  catalog.Product `json:"product"`
	Qty      int             `json:"qty"`
	Subtotal int64           `json:"subtotal"`
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	maps.Copy(out, c)
	return out
}

// TotalCount sums every quantity, resolvable or not. It drives the badge.
func (c Cart) TotalCount() int {
	n := 0
	for _, qty := range c {
		n += qty
	}
	return n
}

// Totals sums only entries whose product is still in the catalog.
func (c Cart) Totals(lookup Lookup) Totals {
	var t Totals
	for id, qty := range c {
		p, ok := lookup.Get(id)
		if !ok {
			continue
		}
		t.Items += qty
		t.Price += int64(qty) * p.Price
	}
	return t
}

// Lines returns the resolvable entries ordered by product id.
func (c Cart) Lines(lookup Lookup) []Line {
	ids := slices.Sorted(maps.Keys(c))
	out := make([]Line, 0, len(ids))
	for _, id := range ids {
		p, ok := lookup.Get(id)
		if !ok {
			continue
		}
		qty := c[id]
		out = append(out, Line{Product: p, Qty: qty, Subtotal: int64(qty) * p.Price})
	}
	return out
}
