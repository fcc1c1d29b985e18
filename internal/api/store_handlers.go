package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/catalogd/catalog-server/internal/domain"
	"github.com/catalogd/catalog-server/internal/service"
)

func (s *Server) registerStoreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listStores",
		Method:      http.MethodGet,
		Path:        "/store",
		Summary:     "List stores",
		Description: "Returns every store with its items and tags",
		Tags:        []string{"Stores"},
	}, s.handleListStores)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createStore",
		Method:        http.MethodPost,
		Path:          "/store",
		Summary:       "Create store",
		Description:   "Creates a store. Store names are unique.",
		Tags:          []string{"Stores"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateStore)

	huma.Register(s.api, huma.Operation{
		OperationID: "getStore",
		Method:      http.MethodGet,
		Path:        "/store/{id}",
		Summary:     "Get store",
		Description: "Returns a store with its items and tags",
		Tags:        []string{"Stores"},
	}, s.handleGetStore)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteStore",
		Method:      http.MethodDelete,
		Path:        "/store/{id}",
		Summary:     "Delete store",
		Description: "Deletes a store together with its items, tags and links",
		Tags:        []string{"Stores"},
	}, s.handleDeleteStore)

	huma.Register(s.api, huma.Operation{
		OperationID: "listStoreTags",
		Method:      http.MethodGet,
		Path:        "/store/{id}/tag",
		Summary:     "List store tags",
		Description: "Returns the tags of a store",
		Tags:        []string{"Tags"},
	}, s.handleListStoreTags)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createStoreTag",
		Method:        http.MethodPost,
		Path:          "/store/{id}/tag",
		Summary:       "Create tag",
		Description:   "Creates a tag in a store. Tag names are unique within a store.",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateStoreTag)
}

// NameRequest is the body for creating a store or a tag.
type NameRequest struct {
	Name string `json:"name" doc:"Display name, 1 to 80 characters"`
}

// StoreIDInput addresses a store.
type StoreIDInput struct {
	ID string `path:"id" doc:"Store ID"`
}

// CreateStoreInput contains the new store.
type CreateStoreInput struct {
	Body NameRequest
}

// CreateStoreTagInput contains the new tag and its store.
type CreateStoreTagInput struct {
	ID   string `path:"id" doc:"Store ID"`
	Body NameRequest
}

// StoreOutput wraps a store with its items and tags.
type StoreOutput struct {
	Body *domain.StoreDetail
}

// ListStoresOutput wraps every store.
type ListStoresOutput struct {
	Body []*domain.StoreDetail
}

// ListTagsOutput wraps a list of tags.
type ListTagsOutput struct {
	Body []*domain.TagDetail
}

func (s *Server) handleListStores(ctx context.Context, _ *struct{}) (*ListStoresOutput, error) {
	stores, err := s.services.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	return &ListStoresOutput{Body: stores}, nil
}

func (s *Server) handleCreateStore(ctx context.Context, input *CreateStoreInput) (*StoreOutput, error) {
	st, err := s.services.Store.Create(ctx, service.CreateStoreRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}
	return &StoreOutput{Body: st}, nil
}

func (s *Server) handleGetStore(ctx context.Context, input *StoreIDInput) (*StoreOutput, error) {
	st, err := s.services.Store.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &StoreOutput{Body: st}, nil
}

func (s *Server) handleDeleteStore(ctx context.Context, input *StoreIDInput) (*MessageOutput, error) {
	if err := s.services.Store.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Store deleted."}}, nil
}

func (s *Server) handleListStoreTags(ctx context.Context, input *StoreIDInput) (*ListTagsOutput, error) {
	tags, err := s.services.Store.ListTags(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ListTagsOutput{Body: tags}, nil
}

func (s *Server) handleCreateStoreTag(ctx context.Context, input *CreateStoreTagInput) (*TagOutput, error) {
	tag, err := s.services.Store.CreateTag(ctx, input.ID, service.CreateTagRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: tag}, nil
}
