package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/catalogd/catalog-server/internal/domain"
	domainerrors "github.com/catalogd/catalog-server/internal/errors"
	"github.com/catalogd/catalog-server/internal/id"
	"github.com/catalogd/catalog-server/internal/normalize"
	"github.com/catalogd/catalog-server/internal/store"
)

// StoreService manages stores and the tags they own.
type StoreService struct {
	store  store.Store
	search *SearchService
	logger *slog.Logger
}

// NewStoreService creates a new store service.
func NewStoreService(store store.Store, search *SearchService, logger *slog.Logger) *StoreService {
	return &StoreService{
		store:  store,
		search: search,
		logger: logger,
	}
}

// CreateStoreRequest contains the fields for a new store.
type CreateStoreRequest struct {
	Name string `json:"name" validate:"notblank,max=80"`
}

// CreateTagRequest contains the fields for a new tag.
type CreateTagRequest struct {
	Name string `json:"name" validate:"notblank,max=80"`
}

// Get returns a store with its items and tags.
func (s *StoreService) Get(ctx context.Context, storeID string) (*domain.StoreDetail, error) {
	st, err := s.store.GetStoreDetail(ctx, storeID)
	if err != nil {
		return nil, mapNotFound(s.logger, err, "store not found", "failed to get store")
	}
	return st, nil
}

// List returns every store with its items and tags.
func (s *StoreService) List(ctx context.Context) ([]*domain.StoreDetail, error) {
	stores, err := s.store.ListStores(ctx)
	if err != nil {
		return nil, storeFailure(s.logger, "failed to list stores", err)
	}
	return stores, nil
}

// Create creates a store. Names are unique after normalization.
func (s *StoreService) Create(ctx context.Context, req CreateStoreRequest) (*domain.StoreDetail, error) {
	req.Name = normalize.Name(req.Name)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetStoreByName(ctx, req.Name); err == nil {
		return nil, domainerrors.Conflict("a store with that name already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, storeFailure(s.logger, "failed to create store", err)
	}

	storeID, err := id.Generate(id.PrefixStore)
	if err != nil {
		return nil, fmt.Errorf("generate store ID: %w", err)
	}

	st := &domain.Store{
		ID:        storeID,
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateStore(ctx, st); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("a store with that name already exists")
		}
		return nil, storeFailure(s.logger, "failed to create store", err)
	}

	logIndexError(s.logger, s.search.IndexStore(ctx, st), st.ID)
	s.logger.Info("store created", "store_id", st.ID, "name", st.Name)

	return &domain.StoreDetail{Store: *st, Items: []domain.Item{}, Tags: []domain.Tag{}}, nil
}

// Delete removes a store together with its items, tags and links.
func (s *StoreService) Delete(ctx context.Context, storeID string) error {
	deleted, err := s.store.DeleteStore(ctx, storeID)
	if err != nil {
		return mapNotFound(s.logger, err, "store not found", "failed to delete store")
	}

	logIndexError(s.logger, s.search.RemoveStore(ctx, deleted), storeID)

	s.logger.Info("store deleted",
		"store_id", storeID,
		"items", len(deleted.ItemIDs),
		"tags", len(deleted.TagIDs),
	)
	return nil
}

// ListTags returns the tags of a store.
func (s *StoreService) ListTags(ctx context.Context, storeID string) ([]*domain.TagDetail, error) {
	tags, err := s.store.ListTagsByStore(ctx, storeID)
	if err != nil {
		return nil, mapNotFound(s.logger, err, "store not found", "failed to list tags")
	}
	return tags, nil
}

// CreateTag creates a tag in a store. Names are unique per store.
func (s *StoreService) CreateTag(ctx context.Context, storeID string, req CreateTagRequest) (*domain.TagDetail, error) {
	req.Name = normalize.Name(req.Name)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	st, err := s.store.GetStore(ctx, storeID)
	if err != nil {
		return nil, mapNotFound(s.logger, err, "store not found", "failed to create tag")
	}

	if _, err := s.store.GetTagByName(ctx, storeID, req.Name); err == nil {
		return nil, domainerrors.Conflict("a tag with that name already exists in that store")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, storeFailure(s.logger, "failed to create tag", err)
	}

	tagID, err := id.Generate(id.PrefixTag)
	if err != nil {
		return nil, fmt.Errorf("generate tag ID: %w", err)
	}

	tag := &domain.Tag{
		ID:        tagID,
		Name:      req.Name,
		StoreID:   storeID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateTag(ctx, tag); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			return nil, domainerrors.Conflict("a tag with that name already exists in that store")
		case errors.Is(err, store.ErrParentNotFound):
			return nil, domainerrors.NotFound("store not found")
		default:
			return nil, storeFailure(s.logger, "failed to create tag", err)
		}
	}

	logIndexError(s.logger, s.search.IndexTag(ctx, tag.ID), tag.ID)
	s.logger.Info("tag created", "tag_id", tag.ID, "store_id", storeID, "name", tag.Name)

	return &domain.TagDetail{Tag: *tag, Store: *st, Items: []domain.Item{}}, nil
}
