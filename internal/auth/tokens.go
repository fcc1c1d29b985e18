package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "catalog-server"
	tokenAudience = "catalog-client"
)

// Verification failures. Callers must not distinguish them to clients beyond expiry.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// TokenService issues and verifies PASETO v4.local session tokens.
type TokenService struct {
	symmetricKey         paseto.V4SymmetricKey
	accessTokenDuration  time.Duration
	refreshTokenDuration time.Duration
	now                  func() time.Time
}

// IssuedToken is an encrypted token together with the claims sealed inside it.
type IssuedToken struct {
	Token  string
	Claims Claims
}

// NewTokenService creates a token service from a 32-byte key.
func NewTokenService(key []byte, accessDuration, refreshDuration time.Duration) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey:         symmetricKey,
		accessTokenDuration:  accessDuration,
		refreshTokenDuration: refreshDuration,
		now:                  time.Now,
	}, nil
}

// IssueAccessToken creates an access token. Fresh tokens come only from a
// password login; tokens minted by a refresh are never fresh.
func (s *TokenService) IssueAccessToken(userID string, isAdmin, fresh bool) (*IssuedToken, error) {
	return s.issue(TokenTypeAccess, userID, isAdmin, fresh, s.accessTokenDuration)
}

// IssueRefreshToken creates a refresh token.
func (s *TokenService) IssueRefreshToken(userID string, isAdmin bool) (*IssuedToken, error) {
	return s.issue(TokenTypeRefresh, userID, isAdmin, false, s.refreshTokenDuration)
}

func (s *TokenService) issue(typ TokenType, userID string, isAdmin, fresh bool, ttl time.Duration) (*IssuedToken, error) {
	// PASETO serializes times at second precision.
	now := s.now().UTC().Truncate(time.Second)
	jti, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generate token id: %w", err)
	}

	claims := Claims{
		Type:       typ,
		Fresh:      fresh,
		IsAdmin:    isAdmin,
		Issuer:     tokenIssuer,
		Subject:    userID,
		Audience:   tokenAudience,
		Expiration: now.Add(ttl),
		NotBefore:  now,
		IssuedAt:   now,
		TokenID:    jti.String(),
	}

	token := paseto.NewToken()
	token.SetIssuer(claims.Issuer)
	token.SetSubject(claims.Subject)
	token.SetAudience(claims.Audience)
	token.SetIssuedAt(claims.IssuedAt)
	token.SetNotBefore(claims.NotBefore)
	token.SetExpiration(claims.Expiration)
	token.SetJti(claims.TokenID)
	//nolint:errcheck // Set only fails for values that cannot be marshaled
	_ = token.Set("typ", string(typ))
	//nolint:errcheck // see above
	_ = token.Set("fresh", fresh)
	//nolint:errcheck // see above
	_ = token.Set("is_admin", isAdmin)

	return &IssuedToken{
		Token:  token.V4Encrypt(s.symmetricKey, nil),
		Claims: claims,
	}, nil
}

// Verify decrypts a token and checks issuer, audience and validity window.
// Returns ErrTokenExpired past expiry and ErrInvalidToken for everything else.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims Claims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("%w: parse claims: %v", ErrInvalidToken, err)
	}

	switch {
	case claims.TokenID == "" || claims.Subject == "":
		return nil, fmt.Errorf("%w: missing jti or sub", ErrInvalidToken)
	case claims.Type != TokenTypeAccess && claims.Type != TokenTypeRefresh:
		return nil, fmt.Errorf("%w: unknown token type %q", ErrInvalidToken, claims.Type)
	}

	now := s.now()
	if now.Before(claims.NotBefore) {
		return nil, fmt.Errorf("%w: not yet valid", ErrInvalidToken)
	}
	if !now.Before(claims.Expiration) {
		return nil, ErrTokenExpired
	}

	return &claims, nil
}

// AccessTokenDuration returns the configured access token lifetime.
func (s *TokenService) AccessTokenDuration() time.Duration {
	return s.accessTokenDuration
}

// RefreshTokenDuration returns the configured refresh token lifetime.
func (s *TokenService) RefreshTokenDuration() time.Duration {
	return s.refreshTokenDuration
}
