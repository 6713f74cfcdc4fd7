package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_pizza/internal/accounts"
	"github.com/fjod/go_pizza/internal/domain"
	"github.com/fjod/go_pizza/internal/i18n"
)

type AccountService interface {
	Register(ctx context.Context, user domain.User, password string) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
	Logout(ctx context.Context) error
	Lookup(ctx context.Context, email string) (domain.User, bool, error)
	UpdateUser(ctx context.Context, email string, update accounts.UserUpdate) (domain.User, error)
	DeleteAccount(ctx context.Context, email string) error
}

// SessionForgetter drops per-user checkout state.
type SessionForgetter interface {
	Forget(userID string)
}

type AuthHandler struct {
	accounts AccountService
	sessions SessionForgetter
	texts    *i18n.Bundle
	timeout  time.Duration
}

func NewAuthHandler(accounts AccountService, sessions SessionForgetter, texts *i18n.Bundle, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		sessions: sessions,
		texts:    texts,
		timeout:  timeout,
	}
}

type RegisterRequestDTO struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Password  string `json:"password"`
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RegisterRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := h.accounts.Register(ctx, domain.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	}, req.Password)
	if err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := h.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.accounts.Logout(ctx); err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	if email := getUserEmail(r.Context()); email != "" {
		h.sessions.Forget(email)
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/account
func (h *AuthHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	email := getUserEmail(r.Context())
	if email == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	user, ok, err := h.accounts.Lookup(ctx, email)
	if err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "user_not_found", "no account for "+email)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// PUT /api/v1/account
func (h *AuthHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	email := getUserEmail(r.Context())
	if email == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var update accounts.UserUpdate
	if err := decodeJSON(r, &update); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := h.accounts.UpdateUser(ctx, email, update)
	if err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// DELETE /api/v1/account
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	email := getUserEmail(r.Context())
	if email == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if err := h.accounts.DeleteAccount(ctx, email); err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	h.sessions.Forget(email)
	w.WriteHeader(http.StatusNoContent)
}
