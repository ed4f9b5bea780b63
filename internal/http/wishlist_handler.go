package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/wishlist"
	"github.com/go-chi/chi/v5"
)

type WishlistHandler struct {
	store   *wishlist.Store
	timeout time.Duration
}

func NewWishlistHandler(store *wishlist.Store, timeout time.Duration) *WishlistHandler {
	return &WishlistHandler{store: store, timeout: timeout}
}

type ToggleWishlistRequestDTO struct {
	ProductID string `json:"product_id"`
}

type WishlistResponseDTO struct {
	ProductIDs []string `json:"product_ids"`
}

type WishlistMembershipDTO struct {
	ProductID  string `json:"product_id"`
	InWishlist bool   `json:"in_wishlist"`
}

// GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	list, err := h.store.List(ctx, auth.IdentityFrom(r.Context()))
	if err != nil {
		respondError(w, r, http.StatusBadGateway, "wishlist_unavailable", "could not load wishlist")
		return
	}
	respondJSON(w, r, http.StatusOK, WishlistResponseDTO{ProductIDs: list})
}

// POST /api/v1/wishlist
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ToggleWishlistRequestDTO
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	in, list, err := h.store.Toggle(ctx, auth.IdentityFrom(r.Context()), req.ProductID)
	switch {
	case errors.Is(err, wishlist.ErrUnauthenticated):
		respondRedirect(w, r, http.StatusUnauthorized, "unauthenticated", "sign in required", checkout.LoginRedirect)
		return
	case err != nil:
		respondError(w, r, http.StatusBadGateway, "wishlist_update_failed", "could not update wishlist")
		return
	}

	respondJSON(w, r, http.StatusOK, struct {
		WishlistMembershipDTO
		WishlistResponseDTO
	}{
		WishlistMembershipDTO{ProductID: req.ProductID, InWishlist: in},
		WishlistResponseDTO{ProductIDs: list},
	})
}

// GET /api/v1/wishlist/{product_id}
func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, err := url.PathUnescape(chi.URLParam(r, "product_id"))
	if err != nil || productID == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	in, err := h.store.Contains(ctx, auth.IdentityFrom(r.Context()), productID)
	if err != nil {
		respondError(w, r, http.StatusBadGateway, "wishlist_unavailable", "could not load wishlist")
		return
	}
	respondJSON(w, r, http.StatusOK, WishlistMembershipDTO{ProductID: productID, InWishlist: in})
}
