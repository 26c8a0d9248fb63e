package storefront

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniShop/internal/cart"
	"MiniShop/internal/catalog"
	"MiniShop/pkg/kit"
)

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	view := s.App.Page(filterFromQuery(r), r.URL.Query().Get("toast"))

	body, err := view.Execute()
	if err != nil {
		s.Log.Error("render page failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) formResetFilters(w http.ResponseWriter, r *http.Request) {
	q := filterValues(catalog.DefaultFilter())
	q.Set("toast", ToastFiltersReset)
	kit.SeeOther(w, r, "/", q)
}

func (s *Server) formAdd(w http.ResponseWriter, r *http.Request) {
	s.formAction(w, r, s.App.Add)
}

func (s *Server) formIncrement(w http.ResponseWriter, r *http.Request) {
	s.formAction(w, r, s.App.Increment)
}

func (s *Server) formDecrement(w http.ResponseWriter, r *http.Request) {
	s.formAction(w, r, s.App.Decrement)
}

func (s *Server) formRemove(w http.ResponseWriter, r *http.Request) {
	s.formAction(w, r, s.App.Remove)
}

func (s *Server) formClear(w http.ResponseWriter, r *http.Request) {
	s.formAction(w, r, func(ctx context.Context, _ string) (Outcome, error) {
		return s.App.Clear(ctx, cart.ConfirmIf(r.PostFormValue("confirm") == "yes"))
	})
}

func (s *Server) formCheckout(w http.ResponseWriter, r *http.Request) {
	s.formAction(w, r, func(ctx context.Context, _ string) (Outcome, error) {
		res, err := s.App.Checkout(ctx, cart.ConfirmIf(r.PostFormValue("confirm") == "yes"))
		return res.Outcome, err
	})
}

// formAction runs a cart action from an HTML form and redirects back to the
// page with the same filters (POST/redirect/GET). A declined confirmation
// simply returns to the page unchanged.
func (s *Server) formAction(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (Outcome, error)) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	f := catalog.ParseFilter(r.PostFormValue("q"), r.PostFormValue("category"), r.PostFormValue("sort"))
	q := filterValues(f)

	out, err := fn(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		if out.Toast != "" {
			q.Set("toast", out.Toast)
		}
	case errors.Is(err, ErrNotConfirmed):
	case errors.Is(err, ErrUnknownProduct):
		http.Error(w, "unknown product", http.StatusNotFound)
		return
	default:
		s.Log.Error("form action failed", zap.Error(err), zap.String("path", r.URL.Path))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	kit.SeeOther(w, r, "/", q)
}
