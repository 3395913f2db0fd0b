package order

import (
	"context"
	"fmt"

	"github.com/blackstar01-dark/mueblix/internal/cart"
	"github.com/blackstar01-dark/mueblix/internal/domain"
	"github.com/blackstar01-dark/mueblix/internal/remote"
	"github.com/blackstar01-dark/mueblix/internal/tokenstore"
)

// MockPoster records every request and answers from a script, one error per
// call; a nil entry (or an exhausted script) is a 201.
type MockPoster struct {
	Requests []remote.Request
	Errs     []error
}

func (m *MockPoster) Do(_ context.Context, req remote.Request) (*remote.Response, error) {
	m.Requests = append(m.Requests, req)
	var err error
	if len(m.Errs) > 0 {
		err, m.Errs = m.Errs[0], m.Errs[1:]
	}
	if err != nil {
		return nil, err
	}
	return &remote.Response{Status: 201}, nil
}

func (m *MockPoster) KeyAt(i int) string {
	return m.Requests[i].Header.Get(IdempotencyKeyHeader)
}

// MockState implements State for testing
type MockState struct {
	identity *domain.Identity
	token    string
	cart     *cart.Cart
}

func (m *MockState) Identity() *domain.Identity {
	return m.identity
}

func (m *MockState) Token(context.Context) (string, error) {
	if m.token == "" {
		return "", tokenstore.ErrNoToken
	}
	return m.token, nil
}

func (m *MockState) Cart() *cart.Cart {
	return m.cart
}

func sequentialKeys() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("key-%d", n)
	}
}
