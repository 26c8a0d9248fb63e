package storefront

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/url"

	"MiniShop/internal/catalog"
)

//go:embed page.html
var pageHTML string

var pageTmpl = template.Must(template.New("page").Parse(pageHTML))

type Option struct {
	Value    string
	Label    string
	Selected bool
}

type PageView struct {
	Filter     catalog.Filter
	Categories []Option
	Sorts      []Option
	Products   ProductsView
	Cart       CartView
	Toast      string
}

// RenderPage assembles everything the storefront page shows.
func RenderPage(products ProductsView, categories []string, cv CartView, toast string) PageView {
	f := products.Filter

	cats := make([]Option, 0, len(categories)+1)
	cats = append(cats, Option{Value: catalog.AllCategories, Label: "Todas", Selected: f.Category == "" || f.Category == catalog.AllCategories})
	for _, c := range categories {
		cats = append(cats, Option{Value: c, Label: c, Selected: c == f.Category})
	}

	opts := catalog.SortOptions()
	sorts := make([]Option, 0, len(opts))
	for _, o := range opts {
		sorts = append(sorts, Option{Value: string(o.Key), Label: o.Label, Selected: o.Key == f.Sort})
	}

	return PageView{
		Filter:     f,
		Categories: cats,
		Sorts:      sorts,
		Products:   products,
		Cart:       cv,
		Toast:      toast,
	}
}

func (v PageView) Execute() ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// filterValues is the query string that restores f after a redirect.
func filterValues(f catalog.Filter) url.Values {
	q := url.Values{}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if f.Category != "" && f.Category != catalog.AllCategories {
		q.Set("category", f.Category)
	}
	if f.Sort != "" && f.Sort != catalog.SortRelevance {
		q.Set("sort", string(f.Sort))
	}
	return q
}
