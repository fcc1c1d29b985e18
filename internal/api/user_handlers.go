package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/user/{id}",
		Summary:     "Get user",
		Description: "Returns a user by ID",
		Tags:        []string{"Users"},
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteUser",
		Method:      http.MethodDelete,
		Path:        "/user/{id}",
		Summary:     "Delete user",
		Description: "Deletes a user. Tokens already issued stay valid until they expire, but cannot be refreshed.",
		Tags:        []string{"Users"},
	}, s.handleDeleteUser)
}

// UserIDInput addresses a user.
type UserIDInput struct {
	ID string `path:"id" doc:"User ID"`
}

// UserOutput wraps a user response.
type UserOutput struct {
	Body UserResponse
}

func (s *Server) handleGetUser(ctx context.Context, input *UserIDInput) (*UserOutput, error) {
	user, err := s.services.User.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(user)}, nil
}

func (s *Server) handleDeleteUser(ctx context.Context, input *UserIDInput) (*MessageOutput, error) {
	if err := s.services.User.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "User deleted."}}, nil
}
