package storefront_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"MiniShop/internal/cart"
	"MiniShop/internal/catalog"
	"MiniShop/internal/money"
	"MiniShop/internal/storage"
	"MiniShop/internal/storefront"
)

const metricsToken = "scrape-token"

func newStorefrontTS(t *testing.T, kv storage.KV, checkoutLimit int) *httptest.Server {
	t.Helper()

	if kv == nil {
		kv = storage.NewMemStore()
	}
	reg := prometheus.NewRegistry()

	app := storefront.New(storefront.Deps{
		Catalog:  catalog.Seed(),
		Cart:     cart.NewStore(context.Background(), kv, cart.DefaultKey, zap.NewNop()),
		Storage:  kv,
		Money:    money.NewFormatter("en-US", "$"),
		Receipts: cart.NewReceiptSigner("test-secret-0123456789"),
		Log:      zap.NewNop(),
		Metrics:  storefront.NewMetrics(reg),
	})

	h := storefront.NewHandler(app, storefront.HTTPDeps{
		Log:                 zap.NewNop(),
		Service:             "storefront",
		Registry:            reg,
		MetricsEnabled:      true,
		MetricsToken:        metricsToken,
		CheckoutLimitPerMin: checkoutLimit,
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode: %v body=%s", err, string(raw))
	}
	return v
}

func TestStorefront_PublicAPI_HappyPath(t *testing.T) {
	ts := newStorefrontTS(t, nil, 0)
	c := &http.Client{}

	for _, id := range []string{"p1", "p1", "p2"} {
		resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/api/cart/items/"+id, nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add %s status=%d body=%s", id, resp.StatusCode, string(raw))
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/api/cart", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("cart status=%d", resp.StatusCode)
		}
		cv := decode[storefront.CartView](t, raw)
		if cv.Badge != 3 {
			t.Fatalf("badge=%d want=3", cv.Badge)
		}
		if len(cv.Lines) != 2 || cv.Lines[0].ProductID != "p1" || cv.Lines[0].Qty != 2 {
			t.Fatalf("lines=%+v", cv.Lines)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodPut, ts.URL+"/api/cart/items/p2", map[string]any{"qty": 5}, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("set status=%d body=%s", resp.StatusCode, string(raw))
		}
		out := decode[storefront.Outcome](t, raw)
		if out.Cart.Badge != 7 {
			t.Fatalf("badge=%d want=7", out.Cart.Badge)
		}
	}

	var res storefront.CheckoutResult
	{
		resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/api/checkout", map[string]any{"confirm": true}, nil)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("checkout status=%d body=%s", resp.StatusCode, string(raw))
		}
		res = decode[storefront.CheckoutResult](t, raw)
		if res.Toast != storefront.ToastCheckout {
			t.Fatalf("toast=%q", res.Toast)
		}
		if !res.Cart.Empty || res.Cart.Badge != 0 {
			t.Fatalf("cart not cleared: %+v", res.Cart)
		}
		if res.Receipt.Items != 7 || res.Token == "" {
			t.Fatalf("receipt=%+v token=%q", res.Receipt, res.Token)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/api/receipts/"+res.Token, nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("receipt status=%d body=%s", resp.StatusCode, string(raw))
		}
		got := decode[cart.Receipt](t, raw)
		if got.ID != res.Receipt.ID || got.Total != res.Receipt.Total {
			t.Fatalf("receipt=%+v want=%+v", got, res.Receipt)
		}
	}

	{
		resp, _ := doJSON(t, c, http.MethodGet, ts.URL+"/api/receipts/not-a-token", nil, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("bogus receipt status=%d", resp.StatusCode)
		}
	}
}

func TestStorefront_PublicAPI_Products(t *testing.T) {
	ts := newStorefrontTS(t, nil, 0)
	c := &http.Client{}

	{
		resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/api/products", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status=%d", resp.StatusCode)
		}
		v := decode[storefront.ProductsView](t, raw)
		if v.Count != catalog.Seed().Len() || len(v.Products) != v.Count {
			t.Fatalf("count=%d products=%d", v.Count, len(v.Products))
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/api/products?q=zzz-no-match", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status=%d", resp.StatusCode)
		}
		v := decode[storefront.ProductsView](t, raw)
		if v.Count != 0 || v.Label != "0 producto(s)" || v.Products == nil {
			t.Fatalf("view=%+v", v)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/api/products?sort=price-asc", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status=%d", resp.StatusCode)
		}
		v := decode[storefront.ProductsView](t, raw)
		for i := 1; i < len(v.Products); i++ {
			if v.Products[i-1].Price > v.Products[i].Price {
				t.Fatalf("not ascending at %d: %+v", i, v.Products)
			}
		}
	}

	{
		resp, _ := doJSON(t, c, http.MethodGet, ts.URL+"/api/products/nope", nil, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status=%d", resp.StatusCode)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/api/categories", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status=%d", resp.StatusCode)
		}
		body := decode[struct {
			All        string   `json:"all"`
			Categories []string `json:"categories"`
		}](t, raw)
		if body.All != catalog.AllCategories || len(body.Categories) == 0 {
			t.Fatalf("body=%+v", body)
		}
	}
}

func TestStorefront_PublicAPI_Errors(t *testing.T) {
	ts := newStorefrontTS(t, nil, 0)
	c := &http.Client{}

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown product", http.MethodPost, "/api/cart/items/nope", nil, http.StatusNotFound},
		{"set without qty", http.MethodPut, "/api/cart/items/p1", map[string]any{}, http.StatusBadRequest},
		{"set unknown field", http.MethodPut, "/api/cart/items/p1", map[string]any{"quantity": 2}, http.StatusBadRequest},
		{"qty above cap", http.MethodPut, "/api/cart/items/p1", map[string]any{"qty": math.MaxInt64}, http.StatusBadRequest},
		{"checkout not confirmed", http.MethodPost, "/api/checkout", map[string]any{"confirm": false}, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := doJSON(t, c, tc.method, ts.URL+tc.path, tc.body, nil)
			if resp.StatusCode != tc.want {
				t.Fatalf("status=%d want=%d body=%s", resp.StatusCode, tc.want, string(raw))
			}
			if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
				t.Fatalf("content-type=%q", resp.Header.Get("Content-Type"))
			}
		})
	}
}

func TestStorefront_PublicAPI_ConfirmationRequired(t *testing.T) {
	ts := newStorefrontTS(t, nil, 0)
	c := &http.Client{}

	if resp, _ := doJSON(t, c, http.MethodPost, ts.URL+"/api/cart/items/p3", nil, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("add status=%d", resp.StatusCode)
	}

	{
		resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/api/checkout", nil, nil)
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("checkout declined status=%d body=%s", resp.StatusCode, string(raw))
		}
	}

	{
		resp, _ := doJSON(t, c, http.MethodDelete, ts.URL+"/api/cart", map[string]any{"confirm": false}, nil)
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("clear declined status=%d", resp.StatusCode)
		}
	}

	{
		_, raw := doJSON(t, c, http.MethodGet, ts.URL+"/api/cart", nil, nil)
		if cv := decode[storefront.CartView](t, raw); cv.Badge != 1 {
			t.Fatalf("declined actions changed the cart: %+v", cv)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodDelete, ts.URL+"/api/cart", map[string]any{"confirm": true}, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("clear status=%d", resp.StatusCode)
		}
		out := decode[storefront.Outcome](t, raw)
		if !out.Cart.Empty || out.Toast != storefront.ToastCleared {
			t.Fatalf("outcome=%+v", out)
		}
	}
}

func TestStorefront_CartPersistsAcrossRestart(t *testing.T) {
	kv := storage.NewMemStore()
	c := &http.Client{}

	first := newStorefrontTS(t, kv, 0)
	for _, id := range []string{"p4", "p4"} {
		if resp, _ := doJSON(t, c, http.MethodPost, first.URL+"/api/cart/items/"+id, nil, nil); resp.StatusCode != http.StatusOK {
			t.Fatalf("add status=%d", resp.StatusCode)
		}
	}
	first.Close()

	second := newStorefrontTS(t, kv, 0)
	_, raw := doJSON(t, c, http.MethodGet, second.URL+"/api/cart", nil, nil)
	if cv := decode[storefront.CartView](t, raw); cv.Badge != 2 {
		t.Fatalf("badge=%d want=2", cv.Badge)
	}
}

func TestStorefront_CheckoutRateLimited(t *testing.T) {
	ts := newStorefrontTS(t, nil, 1)
	c := &http.Client{}

	if resp, _ := doJSON(t, c, http.MethodPost, ts.URL+"/api/checkout", map[string]any{"confirm": true}, nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first checkout status=%d", resp.StatusCode)
	}
	resp, _ := doJSON(t, c, http.MethodPost, ts.URL+"/api/checkout", map[string]any{"confirm": true}, nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second checkout status=%d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}
}

func TestStorefront_HealthAndMetrics(t *testing.T) {
	ts := newStorefrontTS(t, nil, 0)
	c := &http.Client{}

	for _, path := range []string{"/healthz", "/readyz"} {
		if resp, _ := doJSON(t, c, http.MethodGet, ts.URL+path, nil, nil); resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status=%d", path, resp.StatusCode)
		}
	}

	if resp, _ := doJSON(t, c, http.MethodPost, ts.URL+"/api/cart/items/p1", nil, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("add status=%d", resp.StatusCode)
	}

	if resp, _ := doJSON(t, c, http.MethodGet, ts.URL+"/metrics", nil, nil); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("metrics without token status=%d", resp.StatusCode)
	}

	resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/metrics", nil, map[string]string{
		"Authorization": "Bearer " + metricsToken,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status=%d", resp.StatusCode)
	}
	for _, name := range []string{"storefront_cart_operations_total", "storefront_cart_items", "http_requests_total"} {
		if !strings.Contains(string(raw), name) {
			t.Fatalf("metrics missing %s", name)
		}
	}
}

func TestStorefront_ReadyzFailsWhenStorageClosed(t *testing.T) {
	kv := storage.NewMemStore()
	ts := newStorefrontTS(t, kv, 0)
	_ = kv.Close()

	resp, _ := doJSON(t, &http.Client{}, http.MethodGet, ts.URL+"/readyz", nil, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func noRedirect() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
}

func postForm(t *testing.T, c *http.Client, u string, form url.Values) *http.Response {
	t.Helper()
	resp, err := c.PostForm(u, form)
	if err != nil {
		t.Fatalf("post form: %v", err)
	}
	_ = resp.Body.Close()
	return resp
}

func TestStorefront_HTMLForms(t *testing.T) {
	ts := newStorefrontTS(t, nil, 0)
	c := noRedirect()

	filters := url.Values{"q": {"audio"}, "category": {"all"}, "sort": {"price-desc"}}

	resp := postForm(t, c, ts.URL+"/cart/add/p1", filters)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("add status=%d", resp.StatusCode)
	}
	loc, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc.Path != "/" || loc.Query().Get("q") != "audio" || loc.Query().Get("sort") != "price-desc" {
		t.Fatalf("location=%s", loc)
	}
	if loc.Query().Get("toast") != storefront.ToastAdded {
		t.Fatalf("toast=%q", loc.Query().Get("toast"))
	}
	if loc.Query().Has("category") {
		t.Fatalf("default category leaked into %s", loc)
	}

	postForm(t, c, ts.URL+"/cart/inc/p1", nil)

	if resp := postForm(t, c, ts.URL+"/cart/add/nope", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown add status=%d", resp.StatusCode)
	}

	// Unchecked confirmation box: nothing happens.
	resp = postForm(t, c, ts.URL+"/cart/clear", nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("clear status=%d", resp.StatusCode)
	}

	page, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	body, _ := io.ReadAll(page.Body)
	_ = page.Body.Close()
	if page.StatusCode != http.StatusOK {
		t.Fatalf("page status=%d", page.StatusCode)
	}
	if !strings.Contains(string(body), `id="cartCount">2<`) {
		t.Fatalf("badge not rendered as 2")
	}

	resp = postForm(t, c, ts.URL+"/checkout", url.Values{"confirm": {"yes"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("checkout status=%d", resp.StatusCode)
	}
	loc, _ = url.Parse(resp.Header.Get("Location"))
	if loc.Query().Get("toast") != storefront.ToastCheckout {
		t.Fatalf("toast=%q", loc.Query().Get("toast"))
	}

	page, err = http.Get(ts.URL + "/?toast=" + url.QueryEscape(storefront.ToastCheckout))
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	body, _ = io.ReadAll(page.Body)
	_ = page.Body.Close()
	for _, want := range []string{`id="cartCount">0<`, `id="cartEmpty"`, "Compra simulada completada"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestStorefront_ResetFilters(t *testing.T) {
	ts := newStorefrontTS(t, nil, 0)

	resp := postForm(t, noRedirect(), ts.URL+"/filters/reset", url.Values{"q": {"teclado"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != "/?toast="+url.QueryEscape(storefront.ToastFiltersReset) {
		t.Fatalf("location=%q", got)
	}
}
