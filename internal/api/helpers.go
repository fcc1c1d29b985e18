package api

import (
	"context"
	"strings"

	"github.com/catalogd/catalog-server/internal/auth"
	domainerrors "github.com/catalogd/catalog-server/internal/errors"
	"github.com/catalogd/catalog-server/internal/service"
)

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", domainerrors.Unauthorized("missing authorization header")
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", domainerrors.Unauthorized("invalid authorization header format")
	}

	return token, nil
}

// authenticateRequest validates an access token and returns its claims.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (*auth.Claims, error) {
	return s.authenticate(ctx, authHeader, service.AuthOptions{})
}

// authenticateFresh validates an access token issued by a password login.
func (s *Server) authenticateFresh(ctx context.Context, authHeader string) (*auth.Claims, error) {
	return s.authenticate(ctx, authHeader, service.AuthOptions{RequireFresh: true})
}

func (s *Server) authenticate(ctx context.Context, authHeader string, opts service.AuthOptions) (*auth.Claims, error) {
	token, err := bearerToken(authHeader)
	if err != nil {
		return nil, err
	}
	return s.services.Auth.Authenticate(ctx, token, opts)
}
