package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/catalogd/catalog-server/internal/search"
	"github.com/catalogd/catalog-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalog",
		Method:      http.MethodGet,
		Path:        "/search",
		Summary:     "Search catalog",
		Description: "Full-text search across stores, items and tags with type facets",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearch)
}

// SearchInput contains search query parameters.
type SearchInput struct {
	Authorization string   `header:"Authorization"`
	Query         string   `query:"q" doc:"Search text; empty matches everything"`
	Types         []string `query:"type" doc:"Filter by document type (store, item, tag), comma separated"`
	StoreID       string   `query:"store_id" doc:"Only documents of this store"`
	MinPrice      float64  `query:"min_price" doc:"Minimum item price"`
	MaxPrice      float64  `query:"max_price" doc:"Maximum item price"`
	Sort          string   `query:"sort" doc:"relevance, name, price or recent"`
	Order         string   `query:"order" doc:"asc or desc"`
	Limit         int      `query:"limit" doc:"Results per page, at most 100"`
	Offset        int      `query:"offset" doc:"Pagination offset"`
}

// SearchOutput wraps search results.
type SearchOutput struct {
	Body *search.SearchResult
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	result, err := s.services.Search.Search(ctx, service.SearchRequest{
		Query:     input.Query,
		Types:     input.Types,
		StoreID:   input.StoreID,
		MinPrice:  input.MinPrice,
		MaxPrice:  input.MaxPrice,
		SortBy:    input.Sort,
		SortOrder: input.Order,
		Limit:     input.Limit,
		Offset:    input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: result}, nil
}
