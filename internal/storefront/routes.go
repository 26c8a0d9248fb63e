package storefront

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"MiniShop/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	// CheckoutLimitPerMin caps checkouts per client IP; zero disables it.
	CheckoutLimitPerMin int
}

const readyTimeout = 1 * time.Second

func NewHandler(a *App, deps HTTPDeps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	s := &Server{App: a, Log: deps.Log}

	r := chi.NewRouter()
	setupMiddleware(r, deps)
	setupMetrics(r, deps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", s.readyz)

	checkout := chi.Chain()
	if deps.CheckoutLimitPerMin > 0 {
		limiter := kit.NewIPRateLimiter(deps.CheckoutLimitPerMin, time.Minute)
		checkout = chi.Chain(limiter.Middleware)
	}

	r.Get("/", s.page)
	r.Post("/filters/reset", s.formResetFilters)
	r.Route("/cart", func(cr chi.Router) {
		cr.Post("/add/{id}", s.formAdd)
		cr.Post("/inc/{id}", s.formIncrement)
		cr.Post("/dec/{id}", s.formDecrement)
		cr.Post("/remove/{id}", s.formRemove)
		cr.Post("/clear", s.formClear)
	})
	r.With(checkout...).Post("/checkout", s.formCheckout)

	r.Route("/api", func(ar chi.Router) {
		ar.Get("/products", s.listProducts)
		ar.Get("/products/{id}", s.getProduct)
		ar.Get("/categories", s.listCategories)

		ar.Get("/cart", s.getCart)
		ar.Delete("/cart", s.clearCart)
		ar.Post("/cart/items/{id}", s.addItem)
		ar.Put("/cart/items/{id}", s.setItem)
		ar.Delete("/cart/items/{id}", s.removeItem)

		ar.With(checkout...).Post("/checkout", s.checkout)
		ar.Get("/receipts/{token}", s.getReceipt)
	})

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.Handle("/metrics", kit.MetricsHandler(deps.Registry, deps.MetricsToken))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.App.Ping(ctx); err != nil {
		s.Log.Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}
