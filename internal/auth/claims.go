package auth

import "time"

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the decrypted contents of a v4.local session token.
type Claims struct {
	Type    TokenType `json:"typ"`
	Fresh   bool      `json:"fresh"`
	IsAdmin bool      `json:"is_admin"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// UserID returns the subject the token was issued to.
func (c *Claims) UserID() string {
	return c.Subject
}
