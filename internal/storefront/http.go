package storefront

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniShop/internal/cart"
	"MiniShop/internal/catalog"
	"MiniShop/pkg/kit"
)

const maxBodyBytes = 1 << 16

type Server struct {
	App *App
	Log *zap.Logger
}

type setQtyReq struct {
	Qty *int `json:"qty"`
}

type confirmReq struct {
	Confirm bool `json:"confirm"`
}

func filterFromQuery(r *http.Request) catalog.Filter {
	q := r.URL.Query()
	return catalog.ParseFilter(q.Get("q"), q.Get("category"), q.Get("sort"))
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.App.Products(filterFromQuery(r)))
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok := s.App.Product(id)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"all":        catalog.AllCategories,
		"categories": s.App.Categories(),
	})
}

func (s *Server) getCart(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.App.Cart())
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	out, err := s.App.Add(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) setItem(w http.ResponseWriter, r *http.Request) {
	var req setQtyReq
	if err := decodeJSON(w, r, &req); err != nil || req.Qty == nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"expected": `{"qty": <int>}`})
		return
	}

	out, err := s.App.SetQuantity(r.Context(), chi.URLParam(r, "id"), *req.Qty)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	out, err := s.App.Remove(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	var req confirmReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	out, err := s.App.Clear(r.Context(), cart.ConfirmIf(req.Confirm))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	var req confirmReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	res, err := s.App.Checkout(r.Context(), cart.ConfirmIf(req.Confirm))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, res)
}

func (s *Server) getReceipt(w http.ResponseWriter, r *http.Request) {
	rc, err := s.App.VerifyReceipt(chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, rc)
}

// decodeJSON reads a single JSON object. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after json object")
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrUnknownProduct):
		kit.WriteError(w, r, http.StatusNotFound, "unknown product", map[string]any{"id": chi.URLParam(r, "id")})
	case errors.Is(err, cart.ErrEmptyID):
		kit.WriteError(w, r, http.StatusBadRequest, "product id required", nil)
	case errors.Is(err, cart.ErrQuantityTooLarge):
		kit.WriteError(w, r, http.StatusBadRequest, "quantity too large", map[string]any{"max": cart.MaxQuantity})
	case errors.Is(err, ErrNotConfirmed):
		kit.WriteError(w, r, http.StatusConflict, "not confirmed", nil)
	case errors.Is(err, cart.ErrInvalidReceipt):
		kit.WriteError(w, r, http.StatusNotFound, "invalid receipt", nil)
	default:
		s.Log.Error("storefront request failed", zap.Error(err), zap.String("path", r.URL.Path))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
