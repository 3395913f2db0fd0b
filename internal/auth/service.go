// Package auth signs users in and up against the remote API.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/blackstar01-dark/mueblix/internal/domain"
	"github.com/blackstar01-dark/mueblix/internal/remote"
)

var (
	ErrMissingFields = errors.New("please fill in all required fields")
	ErrMissingCreds  = errors.New("email and password are required")
)

type Doer interface {
	DoJSON(ctx context.Context, req remote.Request, out any) error
}

// Session receives the token of a successful login.
type Session interface {
	SignIn(ctx context.Context, token string) (*domain.Identity, error)
	SignOut(ctx context.Context) error
}

type RegisterForm struct {
	GivenName string `json:"nombres"`
	LastName  string `json:"apellidos"`
	Email     string `json:"email"`
	Phone     string `json:"telefono"`
	Password  string `json:"password"`
}

func (f RegisterForm) validate() error {
	for _, v := range []string{f.GivenName, f.LastName, f.Email, f.Password} {
		if strings.TrimSpace(v) == "" {
			return ErrMissingFields
		}
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type Service struct {
	remote  Doer
	session Session
}

func NewService(remote Doer, session Session) *Service {
	return &Service{remote: remote, session: session}
}

func (s *Service) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrMissingCreds
	}

	var resp loginResponse
	err := s.remote.DoJSON(ctx, remote.Request{
		Endpoint: "auth.login",
		Method:   http.MethodPost,
		Path:     "/usuario/login",
		Body:     loginRequest{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login failed: %w: no token in response", remote.ErrMalformedResponse)
	}

	identity, err := s.session.SignIn(ctx, resp.Token)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return identity, nil
}

// Register creates the account. It does not sign the user in.
func (s *Service) Register(ctx context.Context, form RegisterForm) error {
	if err := form.validate(); err != nil {
		return err
	}

	var ignored json.RawMessage
	err := s.remote.DoJSON(ctx, remote.Request{
		Endpoint: "auth.register",
		Method:   http.MethodPost,
		Path:     "/usuario",
		Body:     form,
	}, &ignored)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	return nil
}

func (s *Service) Logout(ctx context.Context) error {
	if err := s.session.SignOut(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}
