package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/blackstar01-dark/mueblix/internal/domain"
)

type Catalog interface {
	Load(ctx context.Context, limit, offset int) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.ProductDetail, error)
}

type CatalogHandler struct {
	catalog   Catalog
	pageLimit int
	timeout   time.Duration
}

func NewCatalogHandler(catalog Catalog, pageLimit int, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		catalog:   catalog,
		pageLimit: pageLimit,
		timeout:   timeout,
	}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// GET /api/v1/products
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	limit, ok := queryInt(r, "limit", h.pageLimit)
	if !ok || limit <= 0 {
		respondError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
		return
	}
	offset, ok := queryInt(r, "offset", 0)
	if !ok || offset < 0 {
		respondError(w, r, http.StatusBadRequest, "invalid_offset", "offset must not be negative")
		return
	}

	products, err := h.catalog.Load(ctx, limit, offset)
	if err != nil {
		handleError(w, r, err, "could not load products")
		return
	}
	if products == nil {
		products = []domain.Product{}
	}

	respondJSON(w, r, http.StatusOK, &ProductsResponse{Products: products, Limit: limit, Offset: offset})
}

// GET /api/v1/products/{id}
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", "product id is required")
		return
	}

	detail, err := h.catalog.Get(ctx, id)
	if err != nil {
		handleError(w, r, err, "could not load product")
		return
	}

	respondJSON(w, r, http.StatusOK, detail)
}

func queryInt(r *http.Request, key string, def int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
