// Package state is the single owned container of the storefront's mutable
// state: the cart and the signed-in session. It is built once in the
// composition root and passed explicitly to whoever needs it.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/blackstar01-dark/mueblix/internal/cart"
	"github.com/blackstar01-dark/mueblix/internal/domain"
	"github.com/blackstar01-dark/mueblix/internal/tokenstore"
)

type TokenStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

type Decoder interface {
	Decode(token string) (*domain.Identity, error)
}

type Store struct {
	cart    *cart.Cart
	tokens  TokenStore
	decoder Decoder

	mu       sync.RWMutex
	identity *domain.Identity
}

func New(tokens TokenStore, decoder Decoder) *Store {
	return &Store{
		cart:    cart.New(),
		tokens:  tokens,
		decoder: decoder,
	}
}

func (s *Store) Cart() *cart.Cart {
	return s.cart
}

// Identity returns the decoded session, or nil when nobody is signed in.
func (s *Store) Identity() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	identity := *s.identity
	return &identity
}

// Token returns the stored bearer token.
func (s *Store) Token(ctx context.Context) (string, error) {
	return s.tokens.Get(ctx)
}

// Restore rebuilds the session from the stored token. A missing token is not an
// error: it leaves the store signed out.
func (s *Store) Restore(ctx context.Context) (*domain.Identity, error) {
	token, err := s.tokens.Get(ctx)
	if errors.Is(err, tokenstore.ErrNoToken) {
		s.setIdentity(nil)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	identity, err := s.decoder.Decode(token)
	if err != nil {
		s.setIdentity(nil)
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	s.setIdentity(identity)
	return s.Identity(), nil
}

// SignIn decodes the token before persisting it, so an undecodable token never
// becomes the stored session.
func (s *Store) SignIn(ctx context.Context, token string) (*domain.Identity, error) {
	identity, err := s.decoder.Decode(token)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Set(ctx, token); err != nil {
		return nil, err
	}
	s.setIdentity(identity)
	return s.Identity(), nil
}

func (s *Store) SignOut(ctx context.Context) error {
	if err := s.tokens.Delete(ctx); err != nil {
		return err
	}
	s.setIdentity(nil)
	return nil
}

func (s *Store) setIdentity(identity *domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
}
