package http

import (
	"context"
	"net/http"
	"time"

	"github.com/blackstar01-dark/mueblix/internal/order"
)

type OrderSubmitter interface {
	Submit(ctx context.Context, st order.State) (*order.Receipt, error)
}

type OrderHandler struct {
	submitter OrderSubmitter
	state     order.State
	timeout   time.Duration
}

func NewOrderHandler(submitter OrderSubmitter, st order.State, timeout time.Duration) *OrderHandler {
	return &OrderHandler{
		submitter: submitter,
		state:     st,
		timeout:   timeout,
	}
}

type OrderResponseDTO struct {
	IdempotencyKey string   `json:"idempotency_key"`
	ProductIDs     []string `json:"product_ids"`
	Count          int      `json:"count"`
	Total          float64  `json:"total"`
	Status         string   `json:"status"`
}

// POST /api/v1/orders
func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	receipt, err := h.submitter.Submit(ctx, h.state)
	if err != nil {
		handleError(w, r, err, "could not create the order")
		return
	}

	respondJSON(w, r, http.StatusCreated, OrderResponseDTO{
		IdempotencyKey: receipt.IdempotencyKey,
		ProductIDs:     receipt.Order.ProductIDs,
		Count:          receipt.Order.Count,
		Total:          receipt.Order.Total,
		Status:         string(receipt.Order.Status),
	})
}
