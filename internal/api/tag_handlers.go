package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/catalogd/catalog-server/internal/domain"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/tag/{id}",
		Summary:     "Get tag",
		Description: "Returns a tag with its store and linked items",
		Tags:        []string{"Tags"},
	}, s.handleGetTag)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteTag",
		Method:        http.MethodDelete,
		Path:          "/tag/{id}",
		Summary:       "Delete tag",
		Description:   "Deletes a tag that no item is linked to",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusAccepted,
	}, s.handleDeleteTag)

	huma.Register(s.api, huma.Operation{
		OperationID:   "linkItemTag",
		Method:        http.MethodPost,
		Path:          "/item/{id}/tag/{tag_id}",
		Summary:       "Link tag to item",
		Description:   "Links a tag to an item of the same store. Linking an already linked pair is a no-op.",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusCreated,
	}, s.handleLinkItemTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "unlinkItemTag",
		Method:      http.MethodDelete,
		Path:        "/item/{id}/tag/{tag_id}",
		Summary:     "Unlink tag from item",
		Description: "Removes the link between an item and a tag",
		Tags:        []string{"Tags"},
	}, s.handleUnlinkItemTag)
}

// TagIDInput addresses a tag.
type TagIDInput struct {
	ID string `path:"id" doc:"Tag ID"`
}

// ItemTagInput addresses an item/tag pair.
type ItemTagInput struct {
	ID    string `path:"id" doc:"Item ID"`
	TagID string `path:"tag_id" doc:"Tag ID"`
}

// TagOutput wraps a tag with its store and items.
type TagOutput struct {
	Body *domain.TagDetail
}

// UnlinkResponse reports both sides of a removed link.
type UnlinkResponse struct {
	Message string             `json:"message" doc:"Confirmation message"`
	Item    *domain.ItemDetail `json:"item" doc:"The item after unlinking"`
	Tag     *domain.TagDetail  `json:"tag" doc:"The tag after unlinking"`
}

// UnlinkOutput wraps the unlink response.
type UnlinkOutput struct {
	Body UnlinkResponse
}

func (s *Server) handleGetTag(ctx context.Context, input *TagIDInput) (*TagOutput, error) {
	tag, err := s.services.Tag.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: tag}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *TagIDInput) (*MessageOutput, error) {
	if err := s.services.Tag.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Tag deleted"}}, nil
}

func (s *Server) handleLinkItemTag(ctx context.Context, input *ItemTagInput) (*TagOutput, error) {
	tag, err := s.services.Item.LinkTag(ctx, input.ID, input.TagID)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: tag}, nil
}

func (s *Server) handleUnlinkItemTag(ctx context.Context, input *ItemTagInput) (*UnlinkOutput, error) {
	result, err := s.services.Item.UnlinkTag(ctx, input.ID, input.TagID)
	if err != nil {
		return nil, err
	}
	return &UnlinkOutput{Body: UnlinkResponse{
		Message: "Item unlinked from tag",
		Item:    result.Item,
		Tag:     result.Tag,
	}}, nil
}
