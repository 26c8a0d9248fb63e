package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	ErrDuplicateID = errors.New("duplicate product id")
	ErrInvalid     = errors.New("invalid product")
)

// collationTag drives locale-aware name ordering for the storefront.
var collationTag = language.Spanish

var validate = validator.New(validator.WithRequiredStructEnabled())

type Product struct {
	ID       string `json:"id" yaml:"id" validate:"required"`
	Name     string `json:"name" yaml:"name" validate:"required"`
	Category string `json:"category" yaml:"category" validate:"required"`
	Tag      string `json:"tag" yaml:"tag"`
	Price    int64  `json:"price" yaml:"price" validate:"gte=0"`
}

// Catalog is the read-only product list loaded at startup. Its order is the
// "relevance" order used by projections.
type Catalog struct {
	products []Product
	byID     map[string]int
}

// New validates products and builds a Catalog over a private copy.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: slices.Clone(products),
		byID:     make(map[string]int, len(products)),
	}

	for i, p := range c.products {
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("%w: index %d (%q): %v", ErrInvalid, i, p.ID, err)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, p.ID)
		}
		c.byID[p.ID] = i
	}

	return c, nil
}

// MustNew is New for fixtures that are known to be valid.
func MustNew(products []Product) *Catalog {
	c, err := New(products)
	if err != nil {
		panic(err)
	}
	return c
}

// List returns a copy of the catalog in its original order.
func (c *Catalog) List() []Product {
	return slices.Clone(c.products)
}

func (c *Catalog) Get(id string) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) Len() int { return len(c.products) }

// Categories returns the distinct categories, collated A-Z.
func (c *Catalog) Categories() []string {
	return Categories(c.products)
}

// Project is Project over the whole catalog.
func (c *Catalog) Project(f Filter) []Product {
	return Project(c.products, f)
}

func Categories(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}

	col := collate.New(collationTag)
	slices.SortFunc(out, col.CompareString)
	return out
}
