// Package order turns the cart into a single order-creation request.
//
// Every submission carries an Idempotency-Key. When a POST fails without a
// definitive answer (network error, server fault, breaker open) the key stays
// pending in storage, and resubmitting the same cart for the same user reuses
// it, so the server can collapse the duplicate.
package order

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/blackstar01-dark/mueblix/internal/cart"
	"github.com/blackstar01-dark/mueblix/internal/domain"
	"github.com/blackstar01-dark/mueblix/internal/logger"
	"github.com/blackstar01-dark/mueblix/internal/metrics"
	"github.com/blackstar01-dark/mueblix/internal/remote"
	"github.com/blackstar01-dark/mueblix/internal/storage"
	"github.com/blackstar01-dark/mueblix/internal/tokenstore"
)

const (
	pendingKey           = "order:pending"
	IdempotencyKeyHeader = "Idempotency-Key"
)

var (
	ErrNotSignedIn  = errors.New("you must sign in to place an order")
	ErrEmptyCart    = errors.New("your cart is empty")
	ErrTokenMissing = errors.New("session token not found")
)

type Poster interface {
	Do(ctx context.Context, req remote.Request) (*remote.Response, error)
}

// State is what a submission reads: the session and the cart.
type State interface {
	Identity() *domain.Identity
	Token(ctx context.Context) (string, error)
	Cart() *cart.Cart
}

type Receipt struct {
	IdempotencyKey string
	Order          domain.Order
	// Reused is set when the key came from an earlier, unresolved attempt.
	Reused bool
}

type pendingAttempt struct {
	Key         string    `json:"key"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
}

type Submitter struct {
	remote  Poster
	pending storage.KV
	metrics *metrics.Metrics
	log     logrus.FieldLogger
	newKey  func() string
	now     func() time.Time
}

func NewSubmitter(remote Poster, pending storage.KV, m *metrics.Metrics, log logrus.FieldLogger) *Submitter {
	return &Submitter{
		remote:  remote,
		pending: pending,
		metrics: m,
		log:     log,
		newKey:  func() string { return uuid.New().String() },
		now:     time.Now,
	}
}

// Build derives the write-only order payload from cart entries.
func Build(items []domain.CartItem, total decimal.Decimal) domain.Order {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return domain.Order{
		ProductIDs: ids,
		Count:      len(items),
		Total:      total.InexactFloat64(),
		Status:     domain.OrderStatusPending,
		Payment: domain.Payment{
			Status: domain.PaymentStatusPending,
			Method: domain.PaymentMethodUndefined,
		},
	}
}

// Submit posts the cart as one order. Preconditions are checked before any
// network call. The cart is cleared only on a 2xx answer; the body is ignored.
func (s *Submitter) Submit(ctx context.Context, st State) (*Receipt, error) {
	identity := st.Identity()
	if identity == nil {
		s.metrics.ObserveOrder("no_session")
		return nil, ErrNotSignedIn
	}

	items, total := st.Cart().Snapshot()
	if len(items) == 0 {
		s.metrics.ObserveOrder("empty_cart")
		return nil, ErrEmptyCart
	}

	token, err := st.Token(ctx)
	if errors.Is(err, tokenstore.ErrNoToken) {
		s.metrics.ObserveOrder("no_token")
		return nil, ErrTokenMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session token: %w", err)
	}

	order := Build(items, total)
	fingerprint, err := fingerprintOf(identity.ID, order)
	if err != nil {
		return nil, err
	}

	key, reused, err := s.idempotencyKey(ctx, fingerprint)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx, s.log).WithFields(logrus.Fields{
		"idempotency_key": key,
		"items":           order.Count,
		"reused_key":      reused,
	})

	_, err = s.remote.Do(ctx, remote.Request{
		Endpoint: "order.create",
		Method:   http.MethodPost,
		Path:     "/pedido",
		Body:     order,
		Token:    token,
		Header:   http.Header{IdempotencyKeyHeader: {key}},
	})
	if err != nil {
		var statusErr *remote.StatusError
		if errors.As(err, &statusErr) && statusErr.Definitive() {
			s.dropPending(ctx, log)
			s.metrics.ObserveOrder("rejected")
		} else {
			s.metrics.ObserveOrder("ambiguous")
		}
		log.WithError(err).Warn("order submission failed")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.dropPending(ctx, log)
	st.Cart().Clear()
	s.metrics.ObserveOrder("created")
	s.metrics.SetCartItems(0)
	log.Info("order created")

	return &Receipt{IdempotencyKey: key, Order: order, Reused: reused}, nil
}

// idempotencyKey reuses the pending key when it was minted for the same payload,
// otherwise mints and persists a fresh one before anything is sent.
func (s *Submitter) idempotencyKey(ctx context.Context, fingerprint string) (string, bool, error) {
	raw, err := s.pending.Get(ctx, pendingKey)
	switch {
	case err == nil:
		var attempt pendingAttempt
		if jsonErr := json.Unmarshal([]byte(raw), &attempt); jsonErr == nil &&
			attempt.Fingerprint == fingerprint && attempt.Key != "" {
			return attempt.Key, true, nil
		}
	case !errors.Is(err, storage.ErrNotFound):
		return "", false, fmt.Errorf("failed to read pending order: %w", err)
	}

	attempt := pendingAttempt{Key: s.newKey(), Fingerprint: fingerprint, CreatedAt: s.now()}
	payload, err := json.Marshal(attempt)
	if err != nil {
		return "", false, fmt.Errorf("failed to marshal pending order: %w", err)
	}
	if err := s.pending.Set(ctx, pendingKey, string(payload)); err != nil {
		return "", false, fmt.Errorf("failed to persist pending order: %w", err)
	}
	return attempt.Key, false, nil
}

func (s *Submitter) dropPending(ctx context.Context, log logrus.FieldLogger) {
	if err := s.pending.Delete(ctx, pendingKey); err != nil {
		log.WithError(err).Warn("failed to clear pending order")
	}
}

func fingerprintOf(userID string, order domain.Order) (string, error) {
	payload, err := json.Marshal(struct {
		UserID string       `json:"user_id"`
		Order  domain.Order `json:"order"`
	}{userID, order})
	if err != nil {
		return "", fmt.Errorf("failed to marshal order: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
