package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/clients"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"go.uber.org/zap"
)

type ProfileReader interface {
	GetProfile(ctx context.Context, token string) (*clients.Profile, error)
}

type CheckoutHandler struct {
	sessions *service.Sessions
	machines *checkout.Registry
	bridge   *checkout.Bridge
	profiles ProfileReader
	keyID    string
	timeout  time.Duration
	log      *zap.Logger
}

func NewCheckoutHandler(sessions *service.Sessions, machines *checkout.Registry, bridge *checkout.Bridge,
	profiles ProfileReader, keyID string, timeout time.Duration, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		machines: machines,
		bridge:   bridge,
		profiles: profiles,
		keyID:    keyID,
		timeout:  timeout,
		log:      log,
	}
}

type StartCheckoutRequestDTO struct {
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
}

type ReportFailureRequestDTO struct {
	Reason string `json:"reason"`
}

// CheckoutResponseDTO adds the gateway key the payment widget opens with.
type CheckoutResponseDTO struct {
	checkout.State
	KeyID string `json:"key_id,omitempty"`
}

func (h *CheckoutHandler) machineFor(ctx context.Context, w http.ResponseWriter, r *http.Request) (*checkout.Machine, bool) {
	m, ok := cartFor(ctx, w, r, h.sessions, h.log)
	if !ok {
		return nil, false
	}
	return h.machines.Machine(SessionIDFrom(r.Context()), m), true
}

func (h *CheckoutHandler) respondState(w http.ResponseWriter, r *http.Request, status int, state checkout.State) {
	resp := CheckoutResponseDTO{State: state}
	if state.Status == checkout.StatusAwaitingPayment {
		resp.KeyID = h.keyID
	}
	respondJSON(w, r, status, resp)
}

// GET /api/v1/checkout
func (h *CheckoutHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	m, ok := h.machineFor(ctx, w, r)
	if !ok {
		return
	}
	h.respondState(w, r, http.StatusOK, m.State())
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req StartCheckoutRequestDTO
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	m, ok := h.machineFor(ctx, w, r)
	if !ok {
		return
	}

	state, err := m.Start(ctx, auth.IdentityFrom(r.Context()), req.ShippingAddress)
	if err != nil {
		h.respondCheckoutError(w, r, state, err)
		return
	}
	h.respondState(w, r, http.StatusCreated, state)
}

// POST /api/v1/checkout/confirm
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.PaymentConfirmation
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.GatewayPaymentID == "" || req.Signature == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "razorpay_payment_id and razorpay_signature are required")
		return
	}

	m, ok := h.machineFor(ctx, w, r)
	if !ok {
		return
	}

	state, err := m.ConfirmPayment(ctx, auth.IdentityFrom(r.Context()), req)
	if err != nil {
		h.respondCheckoutError(w, r, state, err)
		return
	}
	h.respondState(w, r, http.StatusOK, state)
}

// POST /api/v1/checkout/abandon
func (h *CheckoutHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	m, ok := h.machineFor(ctx, w, r)
	if !ok {
		return
	}
	h.respondState(w, r, http.StatusOK, m.Abandon(ctx))
}

// POST /api/v1/checkout/fail
func (h *CheckoutHandler) Fail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ReportFailureRequestDTO
	if err := decodeJSON(r, &req, true); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	m, ok := h.machineFor(ctx, w, r)
	if !ok {
		return
	}

	state, err := m.ReportFailure(ctx, req.Reason)
	if err != nil && !errors.Is(err, checkout.ErrPaymentFailed) {
		h.respondCheckoutError(w, r, state, err)
		return
	}
	// the failure is recorded; the widget only needs the new state
	h.respondState(w, r, http.StatusOK, state)
}

// GET /api/v1/checkout/address
func (h *CheckoutHandler) Address(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity := auth.IdentityFrom(r.Context())
	if identity == nil {
		respondRedirect(w, r, http.StatusUnauthorized, "unauthenticated", "sign in required", checkout.LoginRedirect)
		return
	}

	var (
		name  string
		saved *domain.ShippingAddress
	)
	profile, err := h.profiles.GetProfile(ctx, identity.Token)
	if err != nil {
		h.log.Warn("profile fetch for checkout failed", zap.String("user_id", identity.UserID), zap.Error(err))
	} else {
		name, saved = profile.Name, profile.ShippingAddress
	}

	respondJSON(w, r, http.StatusOK, h.bridge.PrefillAddress(identity, name, saved))
}

func (h *CheckoutHandler) respondCheckoutError(w http.ResponseWriter, r *http.Request, state checkout.State, err error) {
	switch {
	case errors.Is(err, checkout.ErrUnauthenticated):
		respondRedirect(w, r, http.StatusUnauthorized, "unauthenticated", "sign in required", checkout.LoginRedirect)
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		respondErrorDetails(w, r, http.StatusConflict, "checkout_in_progress", "a checkout is already in progress", state.Status.String())
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, r, http.StatusBadRequest, "empty_cart", "cart is empty")
	case errors.Is(err, checkout.ErrInvalidAddress):
		respondErrorDetails(w, r, http.StatusBadRequest, "invalid_address", "shipping address is incomplete", err.Error())
	case errors.Is(err, checkout.ErrOrderCreation):
		respondError(w, r, http.StatusBadGateway, "order_creation_failed", "could not create order")
	case errors.Is(err, checkout.ErrNoPendingPayment):
		respondErrorDetails(w, r, http.StatusConflict, "no_pending_payment", "no payment is awaiting confirmation", state.Status.String())
	case errors.Is(err, checkout.ErrPaymentVerification):
		respondError(w, r, http.StatusPaymentRequired, "payment_verification_failed", "payment could not be verified")
	case errors.Is(err, checkout.ErrIllegalTransition):
		respondErrorDetails(w, r, http.StatusConflict, "illegal_transition", "checkout cannot move to that step", err.Error())
	default:
		h.log.Error("checkout failed", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
