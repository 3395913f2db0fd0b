package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	Catalog *CatalogHandler
	Auth    *AuthHandler
	Profile *ProfileHandler
	Cart    *CartHandler
	Orders  *OrderHandler

	// Session guards the routes that need a signed-in user.
	Session IdentitySource
	Metrics prometheus.Gatherer

	Logger         logrus.FieldLogger
	RequestTimeout time.Duration
}

// NewRouter mounts the storefront gateway and wraps it in an otelhttp server
// handler.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(cfg.Logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", cfg.Catalog.List)
			r.Get("/{id}", cfg.Catalog.Get)
		})
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", cfg.Auth.Login)
			r.Post("/register", cfg.Auth.Register)
			r.Post("/logout", cfg.Auth.Logout)
		})
		r.With(RequireSession(cfg.Session)).Get("/profile", cfg.Profile.Get)
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cfg.Cart.GetCart)
			r.Delete("/", cfg.Cart.ClearCart)
			r.Post("/items", cfg.Cart.AddItem)
			r.Delete("/items/{product_id}", cfg.Cart.RemoveItem)
		})
		r.Post("/orders", cfg.Orders.Submit)
	})

	return otelhttp.NewHandler(r, "storefront")
}
