package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/catalogd/catalog-server/internal/errors"
	"github.com/catalogd/catalog-server/internal/ratelimit"
)

func TestRegister_CreatesUserWithoutPassword(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/register", map[string]any{"username": "alice", "password": "correct-horse"})

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	envelope := decode[RegisterResponse](t, resp)
	assert.True(t, envelope.Success)
	assert.Equal(t, "User created successfully.", envelope.Data.Message)
	assert.Equal(t, "alice", envelope.Data.User.Username)
	assert.True(t, envelope.Data.User.IsAdmin, "first user is the administrator")
	assert.NotContains(t, resp.Body.String(), "password")
	assert.NotContains(t, resp.Body.String(), "argon2id")
}

func TestRegister_DuplicateUsernameIsConflict(t *testing.T) {
	ts := setupTestServer(t)
	creds := map[string]any{"username": "alice", "password": "correct-horse"}

	require.Equal(t, http.StatusCreated, ts.api.Post("/register", creds).Code)
	resp := ts.api.Post("/register", creds)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	envelope := decode[any](t, resp)
	assert.False(t, envelope.Success)
	assert.Equal(t, string(domainerrors.CodeConflict), envelope.Code)
}

func TestRegister_ValidationDetails(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/register", map[string]any{"username": "al", "password": "short"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	envelope := decode[any](t, resp)
	assert.Equal(t, string(domainerrors.CodeValidation), envelope.Code)
	assert.Contains(t, envelope.Details, "username")
	assert.Contains(t, envelope.Details, "password")
}

func TestRegister_MissingFieldIsValidation(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/register", map[string]any{"username": "alice"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, string(domainerrors.CodeValidation), decode[any](t, resp).Code)
}

func TestLogin_ReturnsTokenPair(t *testing.T) {
	ts := setupTestServer(t)

	pair := ts.login(t, "alice")

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, 900, pair.ExpiresIn)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	ts := setupTestServer(t)
	ts.login(t, "alice")

	wrongPassword := ts.api.Post("/login", map[string]any{"username": "alice", "password": "wrong-password"})
	unknownUser := ts.api.Post("/login", map[string]any{"username": "mallory", "password": "correct-horse"})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.JSONEq(t, wrongPassword.Body.String(), unknownUser.Body.String())
}

func TestRefresh_IsSingleUse(t *testing.T) {
	ts := setupTestServer(t)
	pair := ts.login(t, "alice")

	first := ts.api.Post("/refresh", bearer(pair.RefreshToken))
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	refreshed := decode[TokenResponse](t, first).Data
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Empty(t, refreshed.RefreshToken)

	second := ts.api.Post("/refresh", bearer(pair.RefreshToken))
	assert.Equal(t, http.StatusUnauthorized, second.Code)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	ts := setupTestServer(t)
	pair := ts.login(t, "alice")

	resp := ts.api.Post("/refresh", bearer(pair.AccessToken))

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRefreshedTokenIsNotFresh(t *testing.T) {
	ts := setupTestServer(t)
	pair := ts.login(t, "alice")
	st := ts.createStore(t, "Corner Shop")

	resp := ts.api.Post("/refresh", bearer(pair.RefreshToken))
	require.Equal(t, http.StatusOK, resp.Code)
	stale := decode[TokenResponse](t, resp).Data.AccessToken

	// Reads work with a refreshed token, creation needs a password login.
	assert.Equal(t, http.StatusOK, ts.api.Get("/item", bearer(stale)).Code)
	create := ts.api.Post("/item", bearer(stale), map[string]any{"name": "Chair", "price": 15.99, "store_id": st.ID})
	assert.Equal(t, http.StatusUnauthorized, create.Code)
}

func TestLogout_RevokesAccessToken(t *testing.T) {
	ts := setupTestServer(t)
	pair := ts.login(t, "alice")

	require.Equal(t, http.StatusOK, ts.api.Get("/item", bearer(pair.AccessToken)).Code)

	resp := ts.api.Post("/logout", bearer(pair.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "Successfully logged out", decode[MessageResponse](t, resp).Data.Message)

	assert.Equal(t, http.StatusUnauthorized, ts.api.Get("/item", bearer(pair.AccessToken)).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.api.Post("/logout", bearer(pair.AccessToken)).Code)
}

func TestAuthorizationHeaderFormats(t *testing.T) {
	ts := setupTestServer(t)
	pair := ts.login(t, "alice")

	tests := []struct {
		name   string
		args   []any
		status int
	}{
		{"missing header", nil, http.StatusUnauthorized},
		{"wrong scheme", []any{"Authorization: Basic " + pair.AccessToken}, http.StatusUnauthorized},
		{"no token", []any{"Authorization: Bearer "}, http.StatusUnauthorized},
		{"garbage token", []any{bearer("v4.local.garbage")}, http.StatusUnauthorized},
		{"refresh token on access endpoint", []any{bearer(pair.RefreshToken)}, http.StatusUnauthorized},
		{"lowercase scheme", []any{"Authorization: bearer " + pair.AccessToken}, http.StatusOK},
		{"valid", []any{bearer(pair.AccessToken)}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get("/item", tt.args...)
			assert.Equal(t, tt.status, resp.Code, resp.Body.String())
		})
	}
}

func TestAuthEndpointsAreRateLimited(t *testing.T) {
	limiter := ratelimit.New(1, time.Hour, 2)
	t.Cleanup(limiter.Stop)
	ts := setupTestServer(t, func(o *Options) { o.AuthLimiter = limiter })

	creds := map[string]any{"username": "alice", "password": "correct-horse"}
	assert.Equal(t, http.StatusCreated, ts.api.Post("/register", creds).Code)
	assert.Equal(t, http.StatusOK, ts.api.Post("/login", creds).Code)

	resp := ts.api.Post("/login", creds)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, string(domainerrors.CodeRateLimited), decode[any](t, resp).Code)

	// Another client has its own bucket.
	other := ts.api.Post("/login", "X-Forwarded-For: 203.0.113.9", creds)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestUserEndpoints(t *testing.T) {
	ts := setupTestServer(t)
	pair := ts.login(t, "alice")
	claims, err := ts.tokens.Verify(pair.AccessToken)
	require.NoError(t, err)

	resp := ts.api.Get("/user/" + claims.UserID())
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "alice", decode[UserResponse](t, resp).Data.Username)
	assert.NotContains(t, resp.Body.String(), "password")

	resp = ts.api.Delete("/user/" + claims.UserID())
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "User deleted.", decode[MessageResponse](t, resp).Data.Message)

	assert.Equal(t, http.StatusNotFound, ts.api.Get("/user/"+claims.UserID()).Code)
	assert.Equal(t, http.StatusNotFound, ts.api.Delete("/user/"+claims.UserID()).Code)

	// The refresh token of a deleted user is useless.
	assert.Equal(t, http.StatusUnauthorized, ts.api.Post("/refresh", bearer(pair.RefreshToken)).Code)
}
