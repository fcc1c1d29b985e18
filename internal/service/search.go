package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/catalogd/catalog-server/internal/domain"
	domainerrors "github.com/catalogd/catalog-server/internal/errors"
	"github.com/catalogd/catalog-server/internal/search"
	"github.com/catalogd/catalog-server/internal/store"
)

// SearchService keeps the search index in step with the catalog and runs queries.
// A nil *SearchService is valid: maintenance calls do nothing and Search fails.
type SearchService struct {
	index  *search.SearchIndex
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// SearchRequest is the validated form of a catalog query.
type SearchRequest struct {
	Query     string   `json:"q" validate:"max=200"`
	Types     []string `json:"type" validate:"dive,oneof=store item tag"`
	StoreID   string   `json:"store_id" validate:"omitempty,entityid"`
	MinPrice  float64  `json:"min_price" validate:"gte=0"`
	MaxPrice  float64  `json:"max_price" validate:"gte=0"`
	SortBy    string   `json:"sort" validate:"omitempty,oneof=relevance name price recent"`
	SortOrder string   `json:"order" validate:"omitempty,oneof=asc desc"`
	Limit     int      `json:"limit" validate:"gte=0,lte=100"`
	Offset    int      `json:"offset" validate:"gte=0"`
}

// Search runs a catalog query.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*search.SearchResult, error) {
	if s == nil {
		return nil, domainerrors.NotFound("search is disabled")
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	params := search.DefaultSearchParams()
	params.Query = req.Query
	params.Types = req.Types
	params.StoreID = req.StoreID
	params.MinPrice = req.MinPrice
	params.MaxPrice = req.MaxPrice
	params.Offset = req.Offset
	if req.Limit > 0 {
		params.Limit = req.Limit
	}
	if req.SortBy != "" {
		params.SortBy = req.SortBy
	}
	if req.SortOrder != "" {
		params.SortOrder = req.SortOrder
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		s.logger.Error("search failed", "query", req.Query, "error", err)
		return nil, domainerrors.Internal("search failed").WithCause(err)
	}
	return result, nil
}

// IndexStore indexes a single store.
func (s *SearchService) IndexStore(_ context.Context, st *domain.Store) error {
	if s == nil {
		return nil
	}
	if err := s.index.IndexDocument(search.StoreToSearchDocument(st)); err != nil {
		return fmt.Errorf("index store: %w", err)
	}
	s.logger.Debug("indexed store", "id", st.ID, "name", st.Name)
	return nil
}

// IndexItem loads an item with its store and tags and indexes it.
func (s *SearchService) IndexItem(ctx context.Context, itemID string) error {
	if s == nil {
		return nil
	}
	item, err := s.store.GetItemDetail(ctx, itemID)
	if err != nil {
		return fmt.Errorf("get item: %w", err)
	}
	if err := s.index.IndexDocument(search.ItemToSearchDocument(item)); err != nil {
		return fmt.Errorf("index item: %w", err)
	}
	s.logger.Debug("indexed item", "id", item.ID, "name", item.Name)
	return nil
}

// IndexTag loads a tag with its store and items and indexes it.
func (s *SearchService) IndexTag(ctx context.Context, tagID string) error {
	if s == nil {
		return nil
	}
	tag, err := s.store.GetTagDetail(ctx, tagID)
	if err != nil {
		return fmt.Errorf("get tag: %w", err)
	}
	if err := s.index.IndexDocument(search.TagToSearchDocument(tag)); err != nil {
		return fmt.Errorf("index tag: %w", err)
	}
	s.logger.Debug("indexed tag", "id", tag.ID, "name", tag.Name)
	return nil
}

// Remove deletes documents of one type from the index.
func (s *SearchService) Remove(_ context.Context, docType search.DocType, ids ...string) error {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, search.DocKey(docType, id))
	}
	return s.index.DeleteDocuments(keys)
}

// RemoveStore deletes a store and everything its deletion cascaded to.
func (s *SearchService) RemoveStore(_ context.Context, deleted *store.DeletedStore) error {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, 1+len(deleted.ItemIDs)+len(deleted.TagIDs))
	keys = append(keys, search.DocKey(search.DocTypeStore, deleted.Store.ID))
	for _, id := range deleted.ItemIDs {
		keys = append(keys, search.DocKey(search.DocTypeItem, id))
	}
	for _, id := range deleted.TagIDs {
		keys = append(keys, search.DocKey(search.DocTypeTag, id))
	}
	return s.index.DeleteDocuments(keys)
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	if s == nil {
		return 0, nil
	}
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the index from the database.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.logger.Info("starting full reindex")

	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	stores, err := s.store.ListStores(ctx)
	if err != nil {
		return fmt.Errorf("list stores: %w", err)
	}

	docs := make([]*search.SearchDocument, 0, len(stores))
	for _, st := range stores {
		docs = append(docs, search.StoreToSearchDocument(&st.Store))

		tags, err := s.store.ListTagsByStore(ctx, st.ID)
		if err != nil {
			return fmt.Errorf("list tags of %s: %w", st.ID, err)
		}
		for _, tag := range tags {
			docs = append(docs, search.TagToSearchDocument(tag))
		}
	}

	items, err := s.store.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	for _, item := range items {
		docs = append(docs, search.ItemToSearchDocument(item))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index documents: %w", err)
	}

	total, _ := s.index.DocumentCount()
	s.logger.Info("full reindex complete", "stores", len(stores), "items", len(items), "total_documents", total)
	return nil
}

// ReindexIfEmpty runs ReindexAll when the index is empty but the catalog is not,
// which happens after a mapping version change or a lost index directory.
func (s *SearchService) ReindexIfEmpty(ctx context.Context) error {
	if s == nil {
		return nil
	}
	count, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	if count > 0 {
		return nil
	}

	stores, err := s.store.ListStores(ctx)
	if err != nil {
		return fmt.Errorf("list stores: %w", err)
	}
	if len(stores) == 0 {
		return nil
	}
	return s.ReindexAll(ctx)
}

// logIndexError records a failed index update. The database write already
// committed, so the request still succeeds; a reindex repairs the drift.
func logIndexError(logger *slog.Logger, err error, id string) {
	if err != nil {
		logger.Warn("failed to update search index", "id", id, "error", err)
	}
}
