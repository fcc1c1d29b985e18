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
	"github.com/catalogd/catalog-server/internal/search"
	"github.com/catalogd/catalog-server/internal/store"
)

// ItemService manages items and their tag links.
type ItemService struct {
	store  store.Store
	search *SearchService
	logger *slog.Logger
}

// NewItemService creates a new item service.
func NewItemService(store store.Store, search *SearchService, logger *slog.Logger) *ItemService {
	return &ItemService{
		store:  store,
		search: search,
		logger: logger,
	}
}

// CreateItemRequest contains the fields for a new item.
type CreateItemRequest struct {
	Name    string   `json:"name" validate:"notblank,max=80"`
	Price   *float64 `json:"price" validate:"required"`
	StoreID string   `json:"store_id" validate:"required,entityid"`
}

// PutItemRequest replaces an item's fields. StoreID is required only when the
// item does not exist yet; for an existing item it must match or be empty.
type PutItemRequest struct {
	Name    string   `json:"name" validate:"notblank,max=80"`
	Price   *float64 `json:"price" validate:"required"`
	StoreID string   `json:"store_id,omitempty" validate:"omitempty,entityid"`
}

// UnlinkResult is what remains after an item and a tag are unlinked.
type UnlinkResult struct {
	Item *domain.ItemDetail
	Tag  *domain.TagDetail
}

// Get returns an item with its store and tags.
func (s *ItemService) Get(ctx context.Context, itemID string) (*domain.ItemDetail, error) {
	item, err := s.store.GetItemDetail(ctx, itemID)
	if err != nil {
		return nil, mapNotFound(s.logger, err, "item not found", "failed to get item")
	}
	return item, nil
}

// List returns every item with its store and tags.
func (s *ItemService) List(ctx context.Context) ([]*domain.ItemDetail, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, storeFailure(s.logger, "failed to list items", err)
	}
	return items, nil
}

// Create creates an item in an existing store.
func (s *ItemService) Create(ctx context.Context, req CreateItemRequest) (*domain.ItemDetail, error) {
	req.Name = normalize.Name(req.Name)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	itemID, err := id.Generate(id.PrefixItem)
	if err != nil {
		return nil, fmt.Errorf("generate item ID: %w", err)
	}

	return s.insert(ctx, itemID, req.Name, *req.Price, req.StoreID)
}

// Put replaces an existing item's name and price, or creates the item under
// the given id. created reports which happened.
func (s *ItemService) Put(ctx context.Context, itemID string, req PutItemRequest) (item *domain.ItemDetail, created bool, err error) {
	req.Name = normalize.Name(req.Name)
	if err := validate.Validate(req); err != nil {
		return nil, false, err
	}

	existing, err := s.store.GetItem(ctx, itemID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if !id.Valid(itemID) {
			return nil, false, domainerrors.Validation("item id must be 1-64 characters of letters, digits, '-' or '_'")
		}
		if req.StoreID == "" {
			return nil, false, domainerrors.ValidationWithDetails("validation failed",
				map[string]string{"store_id": "is required"})
		}
		item, err = s.insert(ctx, itemID, req.Name, *req.Price, req.StoreID)
		return item, err == nil, err
	case err != nil:
		return nil, false, storeFailure(s.logger, "failed to update item", err)
	}

	if req.StoreID != "" && req.StoreID != existing.StoreID {
		return nil, false, domainerrors.Validation("an item cannot be moved to another store")
	}

	existing.Name = req.Name
	existing.Price = *req.Price
	existing.Touch()
	if err := s.store.UpdateItem(ctx, existing); err != nil {
		return nil, false, mapNotFound(s.logger, err, "item not found", "failed to update item")
	}

	logIndexError(s.logger, s.search.IndexItem(ctx, itemID), itemID)
	s.logger.Info("item updated", "item_id", itemID)

	item, err = s.Get(ctx, itemID)
	return item, false, err
}

func (s *ItemService) insert(ctx context.Context, itemID, name string, price float64, storeID string) (*domain.ItemDetail, error) {
	now := time.Now().UTC()
	item := &domain.Item{
		ID:        itemID,
		Name:      name,
		Price:     price,
		StoreID:   storeID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		switch {
		case errors.Is(err, store.ErrParentNotFound):
			return nil, domainerrors.NotFound("store not found")
		case errors.Is(err, store.ErrAlreadyExists):
			return nil, domainerrors.Conflict("an item with that id already exists")
		default:
			return nil, storeFailure(s.logger, "failed to create item", err)
		}
	}

	logIndexError(s.logger, s.search.IndexItem(ctx, itemID), itemID)
	s.logger.Info("item created", "item_id", itemID, "store_id", storeID, "name", name)

	return s.Get(ctx, itemID)
}

// Delete removes an item and its tag links. The caller must hold the admin claim.
func (s *ItemService) Delete(ctx context.Context, claims *auth.Claims, itemID string) error {
	if claims == nil || !claims.IsAdmin {
		return domainerrors.Forbidden("admin privilege required")
	}

	item, err := s.store.GetItemDetail(ctx, itemID)
	if err != nil {
		return mapNotFound(s.logger, err, "item not found", "failed to delete item")
	}

	if err := s.store.DeleteItem(ctx, itemID); err != nil {
		return mapNotFound(s.logger, err, "item not found", "failed to delete item")
	}

	logIndexError(s.logger, s.search.Remove(ctx, search.DocTypeItem, itemID), itemID)
	for _, tag := range item.Tags {
		logIndexError(s.logger, s.search.IndexTag(ctx, tag.ID), tag.ID)
	}

	s.logger.Info("item deleted", "item_id", itemID, "by", claims.UserID())
	return nil
}

// LinkTag links an item to a tag of the same store and returns the tag.
// Linking an already linked pair succeeds without change.
func (s *ItemService) LinkTag(ctx context.Context, itemID, tagID string) (*domain.TagDetail, error) {
	item, tag, err := s.loadPair(ctx, itemID, tagID)
	if err != nil {
		return nil, err
	}
	if item.StoreID != tag.StoreID {
		return nil, domainerrors.Validation("item and tag belong to different stores")
	}

	created, err := s.store.LinkItemTag(ctx, itemID, tagID)
	if err != nil {
		if errors.Is(err, store.ErrParentNotFound) {
			return nil, domainerrors.NotFound("item or tag not found")
		}
		return nil, storeFailure(s.logger, "failed to link tag", err)
	}

	if created {
		s.reindexPair(ctx, itemID, tagID)
		s.logger.Info("tag linked to item", "item_id", itemID, "tag_id", tagID)
	}

	detail, err := s.store.GetTagDetail(ctx, tagID)
	if err != nil {
		return nil, mapNotFound(s.logger, err, "tag not found", "failed to get tag")
	}
	return detail, nil
}

// UnlinkTag removes the link between an item and a tag.
// Fails NotFound when the pair is not linked.
func (s *ItemService) UnlinkTag(ctx context.Context, itemID, tagID string) (*UnlinkResult, error) {
	if _, _, err := s.loadPair(ctx, itemID, tagID); err != nil {
		return nil, err
	}

	if err := s.store.UnlinkItemTag(ctx, itemID, tagID); err != nil {
		return nil, mapNotFound(s.logger, err, "item is not linked to that tag", "failed to unlink tag")
	}

	s.reindexPair(ctx, itemID, tagID)
	s.logger.Info("tag unlinked from item", "item_id", itemID, "tag_id", tagID)

	item, err := s.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	tag, err := s.store.GetTagDetail(ctx, tagID)
	if err != nil {
		return nil, mapNotFound(s.logger, err, "tag not found", "failed to get tag")
	}
	return &UnlinkResult{Item: item, Tag: tag}, nil
}

func (s *ItemService) loadPair(ctx context.Context, itemID, tagID string) (*domain.Item, *domain.Tag, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, nil, mapNotFound(s.logger, err, "item not found", "failed to get item")
	}
	tag, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return nil, nil, mapNotFound(s.logger, err, "tag not found", "failed to get tag")
	}
	return item, tag, nil
}

func (s *ItemService) reindexPair(ctx context.Context, itemID, tagID string) {
	logIndexError(s.logger, s.search.IndexItem(ctx, itemID), itemID)
	logIndexError(s.logger, s.search.IndexTag(ctx, tagID), tagID)
}
