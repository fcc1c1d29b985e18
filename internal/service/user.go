package service

import (
	"context"
	"log/slog"

	"github.com/catalogd/catalog-server/internal/domain"
	"github.com/catalogd/catalog-server/internal/store"
)

// UserService reads and deletes user accounts.
type UserService struct {
	store  store.Store
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store store.Store, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

// Get returns a user. The password hash never leaves through domain.User's JSON.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, mapNotFound(s.logger, err, "user not found", "failed to get user")
	}
	return user, nil
}

// Delete removes a user. Outstanding access tokens stay valid until expiry;
// their refresh tokens stop working immediately.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return mapNotFound(s.logger, err, "user not found", "failed to delete user")
	}
	s.logger.Info("user deleted", "user_id", userID)
	return nil
}
