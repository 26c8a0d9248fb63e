package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// Source yields the product list once at startup.
type Source interface {
	Load(ctx context.Context) ([]Product, error)
}

type document struct {
	Products []Product `yaml:"products"`
}

// YAMLSource reads a `products:` document from a file, or the embedded
// seed catalog when Path is empty.
type YAMLSource struct {
	Path string
}

func (s YAMLSource) Load(_ context.Context) ([]Product, error) {
	if s.Path == "" {
		return DecodeYAML(bytes.NewReader(seedYAML))
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", s.Path, err)
	}
	defer f.Close()

	products, err := DecodeYAML(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", s.Path, err)
	}
	return products, nil
}

func DecodeYAML(r io.Reader) ([]Product, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog yaml: %w", err)
	}
	return doc.Products, nil
}

// Load builds a validated Catalog from src.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	products, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return New(products)
}

// Seed is the embedded default catalog.
func Seed() *Catalog {
	products, err := DecodeYAML(bytes.NewReader(seedYAML))
	if err != nil {
		panic(err)
	}
	return MustNew(products)
}
