package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/clients"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MaxQuantity bounds a single add or update request.
const MaxQuantity = 999

type ProductCatalog interface {
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
}

type CartHandler struct {
	sessions *service.Sessions
	catalog  ProductCatalog
	timeout  time.Duration
	log      *zap.Logger
}

func NewCartHandler(sessions *service.Sessions, catalog ProductCatalog, timeout time.Duration, log *zap.Logger) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		catalog:  catalog,
		timeout:  timeout,
		log:      log,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// cartFor returns the hydrated cart of the request's session, answering 503
// when the stored cart could not be read.
func cartFor(ctx context.Context, w http.ResponseWriter, r *http.Request, sessions *service.Sessions, log *zap.Logger) (*service.CartManager, bool) {
	sid := SessionIDFrom(r.Context())
	if sid == "" {
		respondError(w, r, http.StatusBadRequest, "missing_session", "no session")
		return nil, false
	}
	m, err := sessions.Cart(ctx, sid)
	if err != nil {
		log.Warn("cart not ready", zap.String("session_id", sid), zap.Error(err))
		respondError(w, r, http.StatusServiceUnavailable, "cart_not_ready", "cart is not available yet, retry shortly")
		return nil, false
	}
	return m, true
}

func (h *CartHandler) respondView(w http.ResponseWriter, r *http.Request, status int, m *service.CartManager) {
	view, err := m.View()
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, "cart_not_ready", err.Error())
		return
	}
	respondJSON(w, r, status, view)
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	m, ok := cartFor(ctx, w, r, h.sessions, h.log)
	if !ok {
		return
	}
	h.respondView(w, r, http.StatusOK, m)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Color == "" || req.Size == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_variant", "color and size are required")
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}
	if req.Quantity > MaxQuantity {
		respondError(w, r, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 999")
		return
	}

	m, ok := cartFor(ctx, w, r, h.sessions, h.log)
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if errors.Is(err, clients.ErrProductNotFound) {
		respondError(w, r, http.StatusNotFound, "product_not_found", "product not found")
		return
	}
	if err != nil {
		h.log.Error("catalog lookup failed", zap.String("product_id", req.ProductID), zap.Error(err))
		respondError(w, r, http.StatusBadGateway, "catalog_unavailable", "could not load product")
		return
	}

	variant, found := product.VariantByColor(req.Color)
	if !found {
		respondError(w, r, http.StatusBadRequest, "invalid_color", "product has no such color")
		return
	}
	if _, found := variant.Stock(req.Size); !found {
		respondError(w, r, http.StatusBadRequest, "invalid_size", "variant has no such size")
		return
	}

	// Variants are not copied into the line; only the chosen one is kept.
	summary := *product
	summary.Variants = nil
	m.AddItem(ctx, summary, variant, req.Size, req.Quantity)

	h.respondView(w, r, http.StatusCreated, m)
}

// PUT /api/v1/cart/items/{product_id}/{color}/{size}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	key, ok := itemKeyFromPath(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > MaxQuantity {
		respondError(w, r, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 999")
		return
	}

	m, ok := cartFor(ctx, w, r, h.sessions, h.log)
	if !ok {
		return
	}
	m.UpdateQuantity(ctx, key.ProductID, key.Color, key.Size, req.Quantity)

	h.respondView(w, r, http.StatusOK, m)
}

// DELETE /api/v1/cart/items/{product_id}/{color}/{size}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	key, ok := itemKeyFromPath(w, r)
	if !ok {
		return
	}

	m, ok := cartFor(ctx, w, r, h.sessions, h.log)
	if !ok {
		return
	}
	m.RemoveItem(ctx, key.ProductID, key.Color, key.Size)

	h.respondView(w, r, http.StatusOK, m)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	m, ok := cartFor(ctx, w, r, h.sessions, h.log)
	if !ok {
		return
	}
	m.Clear(ctx)

	h.respondView(w, r, http.StatusOK, m)
}

func itemKeyFromPath(w http.ResponseWriter, r *http.Request) (domain.ItemKey, bool) {
	var key domain.ItemKey
	for _, p := range []struct {
		name string
		dst  *string
	}{
		{"product_id", &key.ProductID},
		{"color", &key.Color},
		{"size", &key.Size},
	} {
		v, err := url.PathUnescape(chi.URLParam(r, p.name))
		if err != nil || v == "" {
			respondError(w, r, http.StatusBadRequest, "invalid_"+p.name, p.name+" is required")
			return domain.ItemKey{}, false
		}
		*p.dst = v
	}
	return key, true
}
