package storefront

import (
	"MiniShop/internal/cart"
	"MiniShop/internal/catalog"
	"MiniShop/internal/money"
)

type ProductView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Tag        string `json:"tag"`
	Price      int64  `json:"price"`
	PriceLabel string `json:"price_label"`
}

type ProductsView struct {
	Count    int            `json:"count"`
	Label    string         `json:"label"`
	Filter   catalog.Filter `json:"filter"`
	Products []ProductView  `json:"products"`
}

type CartLineView struct {
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Tag           string `json:"tag"`
	Qty           int    `json:"qty"`
	Price         int64  `json:"price"`
	PriceLabel    string `json:"price_label"`
	Subtotal      int64  `json:"subtotal"`
	SubtotalLabel string `json:"subtotal_label"`
}

type CartView struct {
	Badge      int            `json:"badge"`
	Empty      bool           `json:"empty"`
	Lines      []CartLineView `json:"lines"`
	Items      int            `json:"items"`
	Total      int64          `json:"total"`
	TotalLabel string         `json:"total_label"`
}

func RenderProduct(p catalog.Product, fm *money.Formatter) ProductView {
	return ProductView{
		ID:         p.ID,
		Name:       p.Name,
		Category:   p.Category,
		Tag:        p.Tag,
		Price:      p.Price,
		PriceLabel: fm.Format(p.Price),
	}
}

// RenderProducts turns a projection into the grid view.
func RenderProducts(list []catalog.Product, f catalog.Filter, fm *money.Formatter) ProductsView {
	v := ProductsView{
		Count:    len(list),
		Label:    catalog.ResultsLabel(len(list)),
		Filter:   f,
		Products: make([]ProductView, 0, len(list)),
	}
	for _, p := range list {
		v.Products = append(v.Products, RenderProduct(p, fm))
	}
	return v
}

// RenderCart builds the badge and cart table. Entries whose product left
// the catalog count toward the badge but not toward lines or totals.
func RenderCart(c cart.Cart, lookup cart.Lookup, fm *money.Formatter) CartView {
	totals := c.Totals(lookup)
	v := CartView{
		Badge:      c.TotalCount(),
		Empty:      len(c) == 0,
		Lines:      []CartLineView{},
		Items:      totals.Items,
		Total:      totals.Price,
		TotalLabel: fm.Format(totals.Price),
	}

	for _, l := range c.Lines(lookup) {
		v.Lines = append(v.Lines, CartLineView{
			ProductID:     l.Product.ID,
			Name:          l.Product.Name,
			Category:      l.Product.Category,
			Tag:           l.Product.Tag,
			Qty:           l.Qty,
			Price:         l.Product.Price,
			PriceLabel:    fm.Format(l.Product.Price),
			Subtotal:      l.Subtotal,
			SubtotalLabel: fm.Format(l.Subtotal),
		})
	}
	return v
}
