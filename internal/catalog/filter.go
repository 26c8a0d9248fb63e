package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
)

// AllCategories is the category sentinel that disables category filtering.
const AllCategories = "all"

type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortNameAsc   SortKey = "name-asc"
)

type SortOption struct {
	Key   SortKey
	Label string
}

var sortOptions = []SortOption{
	{SortRelevance, "Relevancia"},
	{SortPriceAsc, "Precio: menor a mayor"},
	{SortPriceDesc, "Precio: mayor a menor"},
	{SortNameAsc, "Nombre: A-Z"},
}

// SortOptions lists the sort keys in the order the select shows them.
func SortOptions() []SortOption {
	return slices.Clone(sortOptions)
}

// ParseSortKey maps UI input to a SortKey. Anything unknown is relevance.
func ParseSortKey(s string) SortKey {
	k := SortKey(strings.TrimSpace(s))
	for _, o := range sortOptions {
		if o.Key == k {
			return k
		}
	}
	return SortRelevance
}

// Filter is the transient state of the search, category and sort controls.
type Filter struct {
	Query    string  `json:"q"`
	Category string  `json:"category"`
	Sort     SortKey `json:"sort"`
}

// DefaultFilter is what the reset button restores.
func DefaultFilter() Filter {
	return Filter{Category: AllCategories, Sort: SortRelevance}
}

// ParseFilter normalises raw control values.
func ParseFilter(query, category, sort string) Filter {
	category = strings.TrimSpace(category)
	if category == "" {
		category = AllCategories
	}
	return Filter{
		Query:    query,
		Category: category,
		Sort:     ParseSortKey(sort),
	}
}

func (f Filter) IsDefault() bool {
	return strings.TrimSpace(f.Query) == "" &&
		(f.Category == "" || f.Category == AllCategories) &&
		(f.Sort == "" || f.Sort == SortRelevance)
}

// Project filters and sorts a copy of products. The input slice is never
// modified and the result depends only on its arguments.
func Project(products []Product, f Filter) []Product {
	list := slices.Clone(products)

	if f.Category != "" && f.Category != AllCategories {
		list = slices.DeleteFunc(list, func(p Product) bool {
			return p.Category != f.Category
		})
	}

	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		list = slices.DeleteFunc(list, func(p Product) bool {
			return !strings.Contains(haystack(p), q)
		})
	}

	switch f.Sort {
	case SortPriceAsc:
		slices.SortStableFunc(list, func(a, b Product) int { return cmp.Compare(a.Price, b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(list, func(a, b Product) int { return cmp.Compare(b.Price, a.Price) })
	case SortNameAsc:
		col := collate.New(collationTag)
		slices.SortStableFunc(list, func(a, b Product) int { return col.CompareString(a.Name, b.Name) })
	}

	if list == nil {
		list = []Product{}
	}
	return list
}

func haystack(p Product) string {
	return strings.ToLower(p.Name + " " + p.Category + " " + p.Tag)
}

// ResultsLabel is the count shown above the grid.
func ResultsLabel(n int) string {
	return fmt.Sprintf("%d producto(s)", n)
}
