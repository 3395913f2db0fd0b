package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/blackstar01-dark/mueblix/internal/cart"
	"github.com/blackstar01-dark/mueblix/internal/domain"
	"github.com/blackstar01-dark/mueblix/internal/metrics"
)

type ProductGetter interface {
	Get(ctx context.Context, id string) (*domain.ProductDetail, error)
}

type CartSource interface {
	Cart() *cart.Cart
}

type CartHandler struct {
	carts   CartSource
	catalog ProductGetter
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewCartHandler(carts CartSource, catalog ProductGetter, m *metrics.Metrics, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalog,
		metrics: m,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type CartResponseDTO struct {
	Items []domain.CartItem `json:"items"`
	Count int               `json:"count"`
	Total decimal.Decimal   `json:"total"`
}

type RemoveItemResponseDTO struct {
	CartResponseDTO
	Removed int `json:"removed"`
}

func cartResponse(c *cart.Cart) CartResponseDTO {
	items, total := c.Snapshot()
	return CartResponseDTO{Items: items, Count: len(items), Total: total}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, cartResponse(h.carts.Cart()))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	detail, err := h.catalog.Get(ctx, req.ProductID)
	if err != nil {
		handleError(w, r, err, "could not load product")
		return
	}

	c := h.carts.Cart()
	c.Add(detail.Product)
	h.metrics.SetCartItems(c.Count())

	respondJSON(w, r, http.StatusCreated, cartResponse(c))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	c := h.carts.Cart()
	removed := c.Remove(productID)
	h.metrics.SetCartItems(c.Count())

	respondJSON(w, r, http.StatusOK, RemoveItemResponseDTO{CartResponseDTO: cartResponse(c), Removed: removed})
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c := h.carts.Cart()
	c.Clear()
	h.metrics.SetCartItems(0)

	respondJSON(w, r, http.StatusOK, cartResponse(c))
}
