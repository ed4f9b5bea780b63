package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Log                *zap.Logger
	Verifier           TokenVerifier
	Limiter            *RateLimiter
	MaxRequestBodySize int64
	SecureCookies      bool

	Cart     *CartHandler
	Checkout *CheckoutHandler
	Wishlist *WishlistHandler
}

func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(cfg.Log))
	r.Use(middleware.Recoverer)
	if cfg.Limiter != nil {
		r.Use(cfg.Limiter.Middleware)
	}
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))
	}
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(NoticesMiddleware)
		r.Use(SessionMiddleware(cfg.SecureCookies))
		r.Use(AuthMiddleware(cfg.Verifier))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cfg.Cart.GetCart)
			r.Delete("/", cfg.Cart.ClearCart)
			r.Post("/items", cfg.Cart.AddItem)
			r.Put("/items/{product_id}/{color}/{size}", cfg.Cart.UpdateQuantity)
			r.Delete("/items/{product_id}/{color}/{size}", cfg.Cart.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", cfg.Checkout.GetStatus)
			r.Post("/", cfg.Checkout.Start)
			r.Post("/confirm", cfg.Checkout.Confirm)
			r.Post("/abandon", cfg.Checkout.Abandon)
			r.Post("/fail", cfg.Checkout.Fail)
			r.Get("/address", cfg.Checkout.Address)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", cfg.Wishlist.GetWishlist)
			r.Post("/", cfg.Wishlist.Toggle)
			r.Get("/{product_id}", cfg.Wishlist.Contains)
		})
	})

	return r
}
