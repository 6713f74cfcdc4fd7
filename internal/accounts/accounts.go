// Package accounts keeps the registered users and the signed-in user in the key-value store.
//
// Login matches on email only; the password is accepted and ignored. This is a known
// limitation of the demo storefront and is kept as is.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/fjod/go_pizza/internal/storage"
	"go.uber.org/zap"
)

const (
	registeredUsersKey = "registeredUsers"
	currentUserKey     = "currentUser"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidUser        = errors.New("invalid user")
)

// Purger removes data owned by a user when their account is deleted.
type Purger interface {
	DeleteForUser(ctx context.Context, userID string) error
}

// UserUpdate carries the fields to change; nil fields are left as they are.
// Password fields are accepted and discarded.
type UserUpdate struct {
	FirstName       *string `json:"firstName,omitempty"`
	LastName        *string `json:"lastName,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Address         *string `json:"address,omitempty"`
	CurrentPassword string  `json:"currentPassword,omitempty"`
	NewPassword     string  `json:"newPassword,omitempty"`
}

type Service struct {
	store   storage.Store
	purgers []Purger
	logger  *zap.Logger
	mu      sync.Mutex
}

func NewService(store storage.Store, logger *zap.Logger, purgers ...Purger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, purgers: purgers, logger: logger}
}

// Register appends the user to the registered list and signs them in.
func (s *Service) Register(ctx context.Context, user domain.User, _ string) (domain.User, error) {
	user.Email = strings.TrimSpace(user.Email)
	if user.Email == "" {
		return domain.User{}, fmt.Errorf("%w: email is required", ErrInvalidUser)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.registered(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if err := storage.SetJSON(ctx, s.store, registeredUsersKey, append(users, user)); err != nil {
		return domain.User{}, fmt.Errorf("save registered users: %w", err)
	}
	if err := storage.SetJSON(ctx, s.store, currentUserKey, user); err != nil {
		return domain.User{}, fmt.Errorf("save current user: %w", err)
	}
	s.logger.Info("user registered", zap.String("email", user.Email))
	return user, nil
}

// Login signs in the first registered user with the given email.
func (s *Service) Login(ctx context.Context, email, _ string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok, err := s.find(ctx, email)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := storage.SetJSON(ctx, s.store, currentUserKey, user); err != nil {
		return domain.User{}, fmt.Errorf("save current user: %w", err)
	}
	return user, nil
}

func (s *Service) Logout(ctx context.Context) error {
	return s.store.Remove(ctx, currentUserKey)
}

// CurrentUser returns the signed-in user, or nil when nobody is signed in.
func (s *Service) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	err := storage.GetJSON(ctx, s.store, currentUserKey, &user)
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, storage.ErrKeyNotFound), errors.Is(err, storage.ErrCorrupt):
		return nil, nil
	default:
		return nil, err
	}
}

// Lookup finds a registered user by email.
func (s *Service) Lookup(ctx context.Context, email string) (domain.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(ctx, email)
}

// UpdateUser merges update into the registered user with the given email and
// refreshes the signed-in copy when it is the same user.
func (s *Service) UpdateUser(ctx context.Context, email string, update UserUpdate) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.registered(ctx)
	if err != nil {
		return domain.User{}, err
	}
	idx := indexOf(users, email)
	if idx < 0 {
		return domain.User{}, ErrNotAuthenticated
	}

	updated := apply(users[idx], update)
	if updated.Email == "" {
		return domain.User{}, fmt.Errorf("%w: email is required", ErrInvalidUser)
	}
	users[idx] = updated
	if err := storage.SetJSON(ctx, s.store, registeredUsersKey, users); err != nil {
		return domain.User{}, fmt.Errorf("save registered users: %w", err)
	}

	if current, _ := s.CurrentUser(ctx); current != nil && current.Email == email {
		if err := storage.SetJSON(ctx, s.store, currentUserKey, updated); err != nil {
			return domain.User{}, fmt.Errorf("save current user: %w", err)
		}
	}
	return updated, nil
}

// DeleteAccount removes the user, signs them out and purges their orders and cart.
func (s *Service) DeleteAccount(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.registered(ctx)
	if err != nil {
		return err
	}
	if indexOf(users, email) < 0 {
		return ErrNotAuthenticated
	}

	kept := users[:0]
	for _, u := range users {
		if u.Email != email {
			kept = append(kept, u)
		}
	}
	if err := storage.SetJSON(ctx, s.store, registeredUsersKey, kept); err != nil {
		return fmt.Errorf("save registered users: %w", err)
	}

	if current, _ := s.CurrentUser(ctx); current != nil && current.Email == email {
		if err := s.store.Remove(ctx, currentUserKey); err != nil {
			return fmt.Errorf("remove current user: %w", err)
		}
	}

	for _, p := range s.purgers {
		if err := p.DeleteForUser(ctx, email); err != nil {
			s.logger.Error("failed to purge user data", zap.String("email", email), zap.Error(err))
			return fmt.Errorf("purge user data: %w", err)
		}
	}
	s.logger.Info("account deleted", zap.String("email", email))
	return nil
}

func (s *Service) registered(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := storage.GetJSON(ctx, s.store, registeredUsersKey, &users)
	switch {
	case err == nil:
		return users, nil
	case errors.Is(err, storage.ErrKeyNotFound):
		return nil, nil
	case errors.Is(err, storage.ErrCorrupt):
		s.logger.Warn("discarding unreadable user list", zap.Error(err))
		return nil, nil
	default:
		return nil, fmt.Errorf("load registered users: %w", err)
	}
}

func (s *Service) find(ctx context.Context, email string) (domain.User, bool, error) {
	users, err := s.registered(ctx)
	if err != nil {
		return domain.User{}, false, err
	}
	if i := indexOf(users, email); i >= 0 {
		return users[i], true, nil
	}
	return domain.User{}, false, nil
}

func indexOf(users []domain.User, email string) int {
	if email == "" {
		return -1
	}
	for i, u := range users {
		if u.Email == email {
			return i
		}
	}
	return -1
}

func apply(u domain.User, update UserUpdate) domain.User {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.FirstName, update.FirstName)
	set(&u.LastName, update.LastName)
	set(&u.Email, update.Email)
	set(&u.Phone, update.Phone)
	set(&u.Address, update.Address)
	return u
}
