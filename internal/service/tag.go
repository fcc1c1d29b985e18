package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/catalogd/catalog-server/internal/domain"
	domainerrors "github.com/catalogd/catalog-server/internal/errors"
	"github.com/catalogd/catalog-server/internal/search"
	"github.com/catalogd/catalog-server/internal/store"
)

// TagService reads and deletes tags. Tags are created through StoreService.
type TagService struct {
	store  store.Store
	search *SearchService
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, search *SearchService, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		search: search,
		logger: logger,
	}
}

// errTagInUse is returned when deleting a tag that still has items.
var errTagInUse = domainerrors.Conflict("the tag is assigned to one or more items")

// Get returns a tag with its store and linked items.
func (s *TagService) Get(ctx context.Context, tagID string) (*domain.TagDetail, error) {
	tag, err := s.store.GetTagDetail(ctx, tagID)
	if err != nil {
		return nil, mapNotFound(s.logger, err, "tag not found", "failed to get tag")
	}
	return tag, nil
}

// Delete removes a tag that no item links to.
func (s *TagService) Delete(ctx context.Context, tagID string) error {
	if _, err := s.store.GetTag(ctx, tagID); err != nil {
		return mapNotFound(s.logger, err, "tag not found", "failed to delete tag")
	}

	n, err := s.store.CountItemsForTag(ctx, tagID)
	if err != nil {
		return storeFailure(s.logger, "failed to delete tag", err)
	}
	if n > 0 {
		return errTagInUse
	}

	// The foreign key refuses the delete if a link appeared since the count.
	if err := s.store.DeleteTag(ctx, tagID); err != nil {
		if errors.Is(err, store.ErrReferenced) {
			return errTagInUse
		}
		return mapNotFound(s.logger, err, "tag not found", "failed to delete tag")
	}

	logIndexError(s.logger, s.search.Remove(ctx, search.DocTypeTag, tagID), tagID)
	s.logger.Info("tag deleted", "tag_id", tagID)
	return nil
}
