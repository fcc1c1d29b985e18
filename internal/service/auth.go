package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/catalogd/catalog-server/internal/auth"
	"github.com/catalogd/catalog-server/internal/domain"
	domainerrors "github.com/catalogd/catalog-server/internal/errors"
	"github.com/catalogd/catalog-server/internal/id"
	"github.com/catalogd/catalog-server/internal/normalize"
	"github.com/catalogd/catalog-server/internal/revocation"
	"github.com/catalogd/catalog-server/internal/store"
)

// AuthService registers users, issues session tokens and authenticates them.
//
// Access tokens from a password login are fresh; tokens minted by Refresh are
// not. Refresh tokens are single use: using one revokes it. Logout revokes the
// presented access token. Both go to the revocation set until natural expiry.
type AuthService struct {
	store        store.Store
	tokenService *auth.TokenService
	revoked      revocation.Set
	logger       *slog.Logger
	now          func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	tokenService *auth.TokenService,
	revoked revocation.Set,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:        store,
		tokenService: tokenService,
		revoked:      revoked,
		logger:       logger,
		now:          time.Now,
	}
}

// RegisterRequest contains the credentials for a new account.
type RegisterRequest struct {
	Username string `json:"username" validate:"notblank,min=3,max=80"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"notblank,max=80"`
	Password string `json:"password" validate:"required,max=1024"`
}

// TokenPair is the result of a login. Refresh leaves RefreshToken empty.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// AuthOptions selects what Authenticate demands of a token.
type AuthOptions struct {
	// RequireFresh accepts only access tokens from a password login.
	RequireFresh bool
	// RequireRefresh accepts only refresh tokens. Without it only access tokens pass.
	RequireRefresh bool
}

// errInvalidCredentials is shared by every login failure so unknown users and
// wrong passwords cannot be told apart.
var errInvalidCredentials = domainerrors.Unauthorized("invalid credentials")

// Register creates a user. The first user ever registered becomes administrator.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Username = normalize.Username(req.Username)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	// Fast path; the UNIQUE constraint below is authoritative.
	if _, err := s.store.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, domainerrors.Conflict("a user with that username already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, storeFailure(s.logger, "failed to look up user", err)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		ID:           userID,
		Username:     req.Username,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("a user with that username already exists")
		}
		return nil, storeFailure(s.logger, "failed to create user", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username, "is_admin", user.IsAdmin)
	return user, nil
}

// Login verifies credentials and issues a fresh access token and a refresh token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	req.Username = normalize.Username(req.Username)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Spend the same Argon2id work as a real check.
			auth.BurnVerification(req.Password)
			return nil, errInvalidCredentials
		}
		return nil, storeFailure(s.logger, "failed to look up user", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, errInvalidCredentials
	}

	access, err := s.tokenService.IssueAccessToken(user.ID, user.IsAdmin, true)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokenService.IssueRefreshToken(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &TokenPair{AccessToken: access.Token, RefreshToken: refresh.Token}, nil
}

// Refresh exchanges a refresh token for a new non-fresh access token and
// revokes the refresh token. A replayed refresh token fails Unauthorized.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.Authenticate(ctx, refreshToken, AuthOptions{RequireRefresh: true})
	if err != nil {
		return nil, err
	}

	// Revoke first: the token is spent whatever happens next, and of two
	// concurrent refreshes only one wins.
	if err := s.revoke(ctx, claims); err != nil {
		if errors.Is(err, revocation.ErrAlreadyRevoked) {
			return nil, domainerrors.Unauthorized("token has been revoked")
		}
		return nil, err
	}

	// Admin status is re-read so a refresh reflects the current account.
	user, err := s.store.GetUser(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("user no longer exists")
		}
		return nil, storeFailure(s.logger, "failed to look up user", err)
	}

	access, err := s.tokenService.IssueAccessToken(user.ID, user.IsAdmin, false)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	s.logger.Debug("access token refreshed", "user_id", user.ID)
	return &TokenPair{AccessToken: access.Token}, nil
}

// Logout revokes an access token.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.Authenticate(ctx, accessToken, AuthOptions{})
	if err != nil {
		return err
	}

	if err := s.revoke(ctx, claims); err != nil {
		if errors.Is(err, revocation.ErrAlreadyRevoked) {
			return domainerrors.Unauthorized("token has been revoked")
		}
		return err
	}

	s.logger.Info("user logged out", "user_id", claims.UserID())
	return nil
}

// Authenticate verifies a token and checks kind, freshness and revocation.
// Every failure is Unauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string, opts AuthOptions) (*auth.Claims, error) {
	if token == "" {
		return nil, domainerrors.Unauthorized("missing token")
	}

	claims, err := s.tokenService.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, domainerrors.Unauthorized("token has expired")
		}
		return nil, domainerrors.Unauthorized("invalid token").WithCause(err)
	}

	switch {
	case opts.RequireRefresh && claims.Type != auth.TokenTypeRefresh:
		return nil, domainerrors.Unauthorized("refresh token required")
	case !opts.RequireRefresh && claims.Type != auth.TokenTypeAccess:
		return nil, domainerrors.Unauthorized("access token required")
	case opts.RequireFresh && !claims.Fresh:
		return nil, domainerrors.Unauthorized("fresh token required")
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, storeFailure(s.logger, "failed to check token revocation", err)
	}
	if revoked {
		return nil, domainerrors.Unauthorized("token has been revoked")
	}

	return claims, nil
}

// AccessTokenDuration returns the configured access token lifetime.
func (s *AuthService) AccessTokenDuration() time.Duration {
	return s.tokenService.AccessTokenDuration()
}

// revoke adds claims' jti to the revocation set until the token expires.
// A token that expired in the meantime needs no entry.
func (s *AuthService) revoke(ctx context.Context, claims *auth.Claims) error {
	err := s.revoked.Revoke(ctx, revocation.Record{
		TokenID:   claims.TokenID,
		UserID:    claims.UserID(),
		ExpiresAt: claims.Expiration,
		RevokedAt: s.now().UTC(),
	})
	switch {
	case err == nil, errors.Is(err, revocation.ErrExpired):
		return nil
	case errors.Is(err, revocation.ErrAlreadyRevoked):
		return err
	default:
		return storeFailure(s.logger, "failed to revoke token", err)
	}
}
