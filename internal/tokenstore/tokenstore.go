// Package tokenstore persists the single bearer token of the signed-in user.
package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/blackstar01-dark/mueblix/internal/storage"
)

const tokenKey = "token"

var ErrNoToken = errors.New("no session token stored")

type Store struct {
	kv storage.KV
}

func New(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// Get returns ErrNoToken when nothing is stored, which means "no session".
func (s *Store) Get(ctx context.Context) (string, error) {
	token, err := s.kv.Get(ctx, tokenKey)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && token == "") {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return token, nil
}

func (s *Store) Set(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("refusing to store an empty token")
	}
	if err := s.kv.Set(ctx, tokenKey, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context) error {
	if err := s.kv.Delete(ctx, tokenKey); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}
