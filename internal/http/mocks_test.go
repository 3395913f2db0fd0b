package http

import (
	"context"

	"github.com/blackstar01-dark/mueblix/internal/auth"
	"github.com/blackstar01-dark/mueblix/internal/cart"
	"github.com/blackstar01-dark/mueblix/internal/domain"
	"github.com/blackstar01-dark/mueblix/internal/order"
)

type CatalogMock struct {
	products []domain.Product
	details  map[string]*domain.ProductDetail
	err      error

	lastLimit, lastOffset int
}

func (m *CatalogMock) Load(_ context.Context, limit, offset int) ([]domain.Product, error) {
	m.lastLimit, m.lastOffset = limit, offset
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *CatalogMock) Get(_ context.Context, id string) (*domain.ProductDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	detail, ok := m.details[id]
	if !ok {
		return nil, errNotFoundRemote
	}
	return detail, nil
}

type AuthMock struct {
	identity *domain.Identity
	err      error

	registered *auth.RegisterForm
	loggedOut  bool
}

func (m *AuthMock) Login(context.Context, string, string) (*domain.Identity, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.identity, nil
}

func (m *AuthMock) Register(_ context.Context, form auth.RegisterForm) error {
	m.registered = &form
	return m.err
}

func (m *AuthMock) Logout(context.Context) error {
	m.loggedOut = true
	return m.err
}

type StateMock struct {
	identity *domain.Identity
	cart     *cart.Cart
}

func (m *StateMock) Identity() *domain.Identity           { return m.identity }
func (m *StateMock) Token(context.Context) (string, error) { return "tok", nil }
func (m *StateMock) Cart() *cart.Cart                     { return m.cart }

type SubmitterMock struct {
	receipt *order.Receipt
	err     error
	calls   int
}

func (m *SubmitterMock) Submit(context.Context, order.State) (*order.Receipt, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.receipt, nil
}
