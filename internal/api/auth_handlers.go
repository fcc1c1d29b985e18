package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/catalogd/catalog-server/internal/domain"
	"github.com/catalogd/catalog-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/register",
		Summary:       "Register",
		Description:   "Creates a user account. The first account becomes the administrator.",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   s.authMiddlewares(),
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/login",
		Summary:     "Login",
		Description: "Exchanges credentials for a fresh access token and a refresh token",
		Tags:        []string{"Auth"},
		Middlewares: s.authMiddlewares(),
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/logout",
		Summary:     "Logout",
		Description: "Revokes the presented access token",
		Tags:        []string{"Auth"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/refresh",
		Summary:     "Refresh access token",
		Description: "Exchanges a refresh token, sent as the bearer token, for a non-fresh access token. Each refresh token works once.",
		Tags:        []string{"Auth"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRefresh)
}

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Username string `json:"username" doc:"Username, 3 to 80 characters"`
	Password string `json:"password" doc:"Password, at least 8 characters"`
}

// RegisterInput contains the new account.
type RegisterInput struct {
	Body CredentialsRequest
}

// UserResponse is a user without credential material.
type UserResponse struct {
	ID        string    `json:"id" doc:"User ID"`
	Username  string    `json:"username" doc:"Username"`
	IsAdmin   bool      `json:"is_admin" doc:"Whether the user may delete items"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

// RegisterResponse confirms a new account.
type RegisterResponse struct {
	Message string       `json:"message" doc:"Confirmation message"`
	User    UserResponse `json:"user" doc:"The created user"`
}

// RegisterOutput wraps the register response.
type RegisterOutput struct {
	Body RegisterResponse
}

// LoginInput contains the credentials.
type LoginInput struct {
	Body CredentialsRequest
}

// TokenResponse carries issued tokens.
type TokenResponse struct {
	AccessToken  string `json:"access_token" doc:"PASETO access token"`
	RefreshToken string `json:"refresh_token,omitempty" doc:"PASETO refresh token, only returned by login"`
	TokenType    string `json:"token_type" doc:"Always Bearer"`
	ExpiresIn    int    `json:"expires_in" doc:"Access token lifetime in seconds"`
}

// TokenOutput wraps a token response.
type TokenOutput struct {
	Body TokenResponse
}

// BearerInput carries only the Authorization header.
type BearerInput struct {
	Authorization string `header:"Authorization"`
}

// MessageResponse is a plain confirmation.
type MessageResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
}

// MessageOutput wraps a message response.
type MessageOutput struct {
	Body MessageResponse
}

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
	user, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Username: input.Body.Username,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return &RegisterOutput{Body: RegisterResponse{
		Message: "User created successfully.",
		User:    toUserResponse(user),
	}}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*TokenOutput, error) {
	pair, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Username: input.Body.Username,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return &TokenOutput{Body: s.toTokenResponse(pair)}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *BearerInput) (*MessageOutput, error) {
	token, err := bearerToken(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Auth.Logout(ctx, token); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Successfully logged out"}}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *BearerInput) (*TokenOutput, error) {
	token, err := bearerToken(input.Authorization)
	if err != nil {
		return nil, err
	}

	pair, err := s.services.Auth.Refresh(ctx, token)
	if err != nil {
		return nil, err
	}

	return &TokenOutput{Body: s.toTokenResponse(pair)}, nil
}

func (s *Server) toTokenResponse(pair *service.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.services.Auth.AccessTokenDuration().Seconds()),
	}
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}
