package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/catalogd/catalog-server/internal/domain"
	"github.com/catalogd/catalog-server/internal/service"
)

func (s *Server) registerItemRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listItems",
		Method:      http.MethodGet,
		Path:        "/item",
		Summary:     "List items",
		Description: "Returns every item with its store and tags",
		Tags:        []string{"Items"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListItems)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createItem",
		Method:        http.MethodPost,
		Path:          "/item",
		Summary:       "Create item",
		Description:   "Creates an item in a store. Requires a fresh access token from a password login.",
		Tags:          []string{"Items"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "getItem",
		Method:      http.MethodGet,
		Path:        "/item/{id}",
		Summary:     "Get item",
		Description: "Returns an item with its store and tags",
		Tags:        []string{"Items"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "putItem",
		Method:      http.MethodPut,
		Path:        "/item/{id}",
		Summary:     "Replace or create item",
		Description: "Replaces an item's name and price, or creates it with the given ID when it does not exist. Returns 201 when created.",
		Tags:        []string{"Items"},
	}, s.handlePutItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteItem",
		Method:      http.MethodDelete,
		Path:        "/item/{id}",
		Summary:     "Delete item",
		Description: "Deletes an item. Requires an administrator token.",
		Tags:        []string{"Items"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteItem)
}

// CreateItemRequest is the body for a new item.
type CreateItemRequest struct {
	Name    string   `json:"name" doc:"Item name, 1 to 80 characters"`
	Price   *float64 `json:"price" doc:"Item price"`
	StoreID string   `json:"store_id" doc:"Owning store ID"`
}

// PutItemRequest is the body for replacing an item.
type PutItemRequest struct {
	Name    string   `json:"name" doc:"Item name, 1 to 80 characters"`
	Price   *float64 `json:"price" doc:"Item price"`
	StoreID string   `json:"store_id,omitempty" doc:"Owning store ID. Required when the item does not exist yet; must not change."`
}

// ListItemsInput authenticates the caller.
type ListItemsInput struct {
	Authorization string `header:"Authorization"`
}

// CreateItemInput contains the new item.
type CreateItemInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateItemRequest
}

// ItemIDInput addresses an item for an authenticated caller.
type ItemIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Item ID"`
}

// PutItemInput contains the replacement item.
type PutItemInput struct {
	ID   string `path:"id" doc:"Item ID"`
	Body PutItemRequest
}

// ItemOutput wraps an item with its store and tags.
type ItemOutput struct {
	Body *domain.ItemDetail
}

// PutItemOutput carries 200 on replace and 201 on create.
type PutItemOutput struct {
	Status int
	Body   *domain.ItemDetail
}

// ListItemsOutput wraps every item.
type ListItemsOutput struct {
	Body []*domain.ItemDetail
}

func (s *Server) handleListItems(ctx context.Context, input *ListItemsInput) (*ListItemsOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	items, err := s.services.Item.List(ctx)
	if err != nil {
		return nil, err
	}
	return &ListItemsOutput{Body: items}, nil
}

func (s *Server) handleCreateItem(ctx context.Context, input *CreateItemInput) (*ItemOutput, error) {
	if _, err := s.authenticateFresh(ctx, input.Authorization); err != nil {
		return nil, err
	}

	item, err := s.services.Item.Create(ctx, service.CreateItemRequest{
		Name:    input.Body.Name,
		Price:   input.Body.Price,
		StoreID: input.Body.StoreID,
	})
	if err != nil {
		return nil, err
	}
	return &ItemOutput{Body: item}, nil
}

func (s *Server) handleGetItem(ctx context.Context, input *ItemIDInput) (*ItemOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	item, err := s.services.Item.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ItemOutput{Body: item}, nil
}

func (s *Server) handlePutItem(ctx context.Context, input *PutItemInput) (*PutItemOutput, error) {
	item, created, err := s.services.Item.Put(ctx, input.ID, service.PutItemRequest{
		Name:    input.Body.Name,
		Price:   input.Body.Price,
		StoreID: input.Body.StoreID,
	})
	if err != nil {
		return nil, err
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return &PutItemOutput{Status: status, Body: item}, nil
}

func (s *Server) handleDeleteItem(ctx context.Context, input *ItemIDInput) (*MessageOutput, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Item.Delete(ctx, claims, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Item deleted."}}, nil
}
