// Package storefront wires the catalog and cart into the operations the UI
// triggers, and serves them over HTTP.
package storefront

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"MiniShop/internal/cart"
	"MiniShop/internal/catalog"
	"MiniShop/internal/money"
	"MiniShop/internal/storage"
)

const (
	ToastAdded        = "Producto agregado al carrito"
	ToastRemoved      = "Producto eliminado"
	ToastCleared      = "Carrito vaciado"
	ToastCheckout     = "Compra simulada completada ✅"
	ToastFiltersReset = "Filtros reiniciados"
)

var (
	ErrUnknownProduct = errors.New("unknown product")
	ErrNotConfirmed   = errors.New("not confirmed")
)

type Deps struct {
	Catalog  *catalog.Catalog
	Cart     *cart.Store
	Storage  storage.KV
	Money    *money.Formatter
	Receipts *cart.ReceiptSigner
	Log      *zap.Logger
	Metrics  *Metrics
}

// App owns the storefront state. Handlers run one at a time under mu, so the
// cart keeps a single writer even behind a concurrent HTTP server.
type App struct {
	mu       sync.Mutex
	catalog  *catalog.Catalog
	cart     *cart.Store
	storage  storage.KV
	money    *money.Formatter
	receipts *cart.ReceiptSigner
	log      *zap.Logger
	metrics  *Metrics
	now      func() time.Time
}

func New(d Deps) *App {
	if d.Money == nil {
		d.Money = money.Default()
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	a := &App{
		catalog:  d.Catalog,
		cart:     d.Cart,
		storage:  d.Storage,
		money:    d.Money,
		receipts: d.Receipts,
		log:      d.Log,
		metrics:  d.Metrics,
		now:      time.Now,
	}
	if a.metrics != nil {
		a.metrics.CartItems.Set(float64(d.Cart.TotalCount()))
	}
	return a
}

// Outcome is the result of a cart action: the refreshed cart plus the
// notification to flash, if any.
type Outcome struct {
	Cart  CartView `json:"cart"`
	Toast string   `json:"toast,omitempty"`
}

type CheckoutResult struct {
	Outcome
	Receipt cart.Receipt `json:"receipt"`
	Token   string       `json:"token"`
}

func (a *App) Products(f catalog.Filter) ProductsView {
	return RenderProducts(a.catalog.Project(f), f, a.money)
}

func (a *App) Product(id string) (ProductView, bool) {
	p, ok := a.catalog.Get(id)
	if !ok {
		return ProductView{}, false
	}
	return RenderProduct(p, a.money), true
}

func (a *App) Categories() []string {
	return a.catalog.Categories()
}

func (a *App) Cart() CartView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cartView()
}

func (a *App) Add(ctx context.Context, id string) (Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id = strings.TrimSpace(id)
	if _, ok := a.catalog.Get(id); !ok {
		return Outcome{}, ErrUnknownProduct
	}
	if err := a.cart.Add(ctx, id); err != nil {
		return Outcome{}, err
	}
	return a.done("add", ToastAdded), nil
}

// SetQuantity sets an absolute quantity. Zero or less removes the entry,
// which also works for products no longer in the catalog.
func (a *App) SetQuantity(ctx context.Context, id string, qty int) (Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id = strings.TrimSpace(id)
	if _, ok := a.catalog.Get(id); !ok && qty > 0 {
		return Outcome{}, ErrUnknownProduct
	}
	if err := a.cart.SetQuantity(ctx, id, qty); err != nil {
		return Outcome{}, err
	}
	return a.done("set", ""), nil
}

func (a *App) Increment(ctx context.Context, id string) (Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id = strings.TrimSpace(id)
	if _, ok := a.catalog.Get(id); !ok {
		return Outcome{}, ErrUnknownProduct
	}
	if err := a.cart.Increment(ctx, id); err != nil {
		return Outcome{}, err
	}
	return a.done("inc", ""), nil
}

func (a *App) Decrement(ctx context.Context, id string) (Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.cart.Decrement(ctx, id); err != nil {
		return Outcome{}, err
	}
	return a.done("dec", ""), nil
}

func (a *App) Remove(ctx context.Context, id string) (Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.cart.Remove(ctx, id); err != nil {
		return Outcome{}, err
	}
	return a.done("remove", ToastRemoved), nil
}

// Clear empties the cart once confirm approves.
func (a *App) Clear(ctx context.Context, confirm cart.Confirm) (Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !confirm(cart.PromptClear) {
		return Outcome{}, ErrNotConfirmed
	}
	if err := a.cart.Clear(ctx); err != nil {
		return Outcome{}, err
	}
	return a.done("clear", ToastCleared), nil
}

// Checkout simulates a purchase: it issues a signed receipt for the current
// cart and then clears it. Nothing is charged; an empty cart checks out to
// an empty receipt.
func (a *App) Checkout(ctx context.Context, confirm cart.Confirm) (CheckoutResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !confirm(cart.PromptCheckout) {
		return CheckoutResult{}, ErrNotConfirmed
	}

	receipt := cart.NewReceipt(a.cart.Lines(a.catalog), a.cart.Totals(a.catalog), a.now())

	var token string
	if a.receipts != nil {
		tok, err := a.receipts.Sign(receipt)
		if err != nil {
			return CheckoutResult{}, err
		}
		token = tok
	}

	if err := a.cart.Clear(ctx); err != nil {
		return CheckoutResult{}, err
	}

	if a.metrics != nil {
		a.metrics.Checkouts.Inc()
	}
	a.log.Info("checkout completed",
		zap.String("receipt_id", receipt.ID),
		zap.Int("items", receipt.Items),
		zap.Int64("total", receipt.Total),
	)

	return CheckoutResult{
		Outcome: a.done("checkout", ToastCheckout),
		Receipt: receipt,
		Token:   token,
	}, nil
}

func (a *App) VerifyReceipt(token string) (cart.Receipt, error) {
	if a.receipts == nil {
		return cart.Receipt{}, cart.ErrInvalidReceipt
	}
	return a.receipts.Verify(token)
}

// Ping reports whether cart storage is reachable.
func (a *App) Ping(ctx context.Context) error {
	if a.storage == nil {
		return nil
	}
	return a.storage.Ping(ctx)
}

func (a *App) Page(f catalog.Filter, toast string) PageView {
	a.mu.Lock()
	cv := a.cartView()
	a.mu.Unlock()

	return RenderPage(a.Products(f), a.Categories(), cv, toast)
}

func (a *App) cartView() CartView {
	return RenderCart(a.cart.Cart(), a.catalog, a.money)
}

func (a *App) done(op, toast string) Outcome {
	a.metrics.observe(op, a.cart.TotalCount())
	return Outcome{Cart: a.cartView(), Toast: toast}
}
