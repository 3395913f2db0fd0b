package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/blackstar01-dark/mueblix/internal/auth"
	"github.com/blackstar01-dark/mueblix/internal/domain"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*domain.Identity, error)
	Register(ctx context.Context, form auth.RegisterForm) error
	Logout(ctx context.Context) error
}

type AuthHandler struct {
	auth    Authenticator
	timeout time.Duration
}

func NewAuthHandler(auth Authenticator, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		timeout: timeout,
	}
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequestDTO struct {
	GivenName string `json:"given_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

type ProfileResponseDTO struct {
	ID        string     `json:"id"`
	Role      string     `json:"role,omitempty"`
	GivenName string     `json:"given_name"`
	LastName  string     `json:"last_name"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

func toProfile(identity *domain.Identity, now time.Time) ProfileResponseDTO {
	dto := ProfileResponseDTO{
		ID:        identity.ID,
		Role:      identity.Role,
		GivenName: identity.GivenName,
		LastName:  identity.LastName,
		FullName:  identity.FullName(),
		Email:     identity.Email,
		Expired:   identity.Expired(now),
	}
	if !identity.ExpiresAt.IsZero() {
		expires := identity.ExpiresAt
		dto.ExpiresAt = &expires
	}
	return dto
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	identity, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		handleError(w, r, err, "could not sign in")
		return
	}

	respondJSON(w, r, http.StatusOK, toProfile(identity, time.Now()))
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RegisterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	err := h.auth.Register(ctx, auth.RegisterForm{
		GivenName: req.GivenName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
	})
	if err != nil {
		handleError(w, r, err, "could not create the account")
		return
	}

	respondJSON(w, r, http.StatusCreated, map[string]string{"status": "registered"})
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.auth.Logout(ctx); err != nil {
		handleError(w, r, err, "could not sign out")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type ProfileHandler struct {
	identities IdentitySource
	now        func() time.Time
}

func NewProfileHandler(identities IdentitySource) *ProfileHandler {
	return &ProfileHandler{identities: identities, now: time.Now}
}

// GET /api/v1/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := h.identities.Identity()
	if identity == nil {
		respondError(w, r, http.StatusUnauthorized, "unauthenticated", "you must sign in first")
		return
	}

	respondJSON(w, r, http.StatusOK, toProfile(identity, h.now()))
}
