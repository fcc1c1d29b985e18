package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/catalogd/catalog-server/internal/normalize"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query   string   // free text; empty matches everything
	Types   []string // document types to include (empty = all)
	StoreID string   // restrict to one store's items and tags

	// Price range for items. Zero MaxPrice means unbounded.
	MinPrice float64
	MaxPrice float64

	Limit  int
	Offset int

	SortBy    string // "relevance", "name", "price", "recent"
	SortOrder string // "asc", "desc"

	IncludeFacets bool
	Highlight     bool
}

// DefaultSearchParams returns the parameters used when a caller sets none.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Facets []FacetCount `json:"facets,omitempty"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID         string            `json:"id"`
	Type       DocType           `json:"type"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	StoreID    string            `json:"store_id,omitempty"`
	StoreName  string            `json:"store_name,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Price      *float64          `json:"price,omitempty"`
	ItemCount  int               `json:"item_count,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// FacetCount is the number of hits for one document type.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	addSorting(req, params)

	if params.IncludeFacets {
		req.AddFacet("type", bleve.NewFacetRequest("type", 3))
	}
	if params.Highlight {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("name")
		req.Highlight.AddField("tags")
	}
	req.Fields = []string{"id", "type", "name", "store_id", "store_name", "tags", "price", "item_count"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		h := SearchHit{Score: hit.Score}
		if v, ok := hit.Fields["type"].(string); ok {
			h.Type = DocType(v)
		}
		h.ID = strings.TrimPrefix(hit.ID, string(h.Type)+":")
		if v, ok := hit.Fields["id"].(string); ok {
			h.ID = v
		}
		if v, ok := hit.Fields["name"].(string); ok {
			h.Name = v
		}
		if v, ok := hit.Fields["store_id"].(string); ok {
			h.StoreID = v
		}
		if v, ok := hit.Fields["store_name"].(string); ok {
			h.StoreName = v
		}
		h.Tags = stringSlice(hit.Fields["tags"])
		if v, ok := hit.Fields["price"].(float64); ok && h.Type == DocTypeItem {
			h.Price = &v
		}
		if v, ok := hit.Fields["item_count"].(float64); ok {
			h.ItemCount = int(v)
		}

		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string, len(hit.Fragments))
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, h)
	}

	if facet, ok := res.Facets["type"]; ok && facet.Terms != nil {
		for _, term := range facet.Terms.Terms() {
			result.Facets = append(result.Facets, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return result, nil
}

// stringSlice reads a stored field that Bleve returns as a string for one
// value and as []interface{} for several.
func stringSlice(v interface{}) []string {
	switch vals := v.(type) {
	case string:
		return []string{vals}
	case []interface{}:
		out := make([]string, 0, len(vals))
		for _, val := range vals {
			if s, ok := val.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if text := strings.TrimSpace(params.Query); text != "" {
		nameMatch := bleve.NewMatchQuery(text)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)

		tagMatch := bleve.NewMatchQuery(text)
		tagMatch.SetField("tags")
		tagMatch.SetBoost(1.5)

		storeMatch := bleve.NewMatchQuery(text)
		storeMatch.SetField("store_name")
		storeMatch.SetBoost(0.5)

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(text))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("name")
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{nameMatch, tagMatch, storeMatch, fuzzy}

		// Prefix for type-ahead, two characters minimum.
		if key := normalize.SearchKey(text); len(key) >= 2 {
			prefix := bleve.NewPrefixQuery(key)
			prefix.SetField("name_key")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(params.Types) > 0 {
		typeQueries := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(t)
			tq.SetField("type")
			typeQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(typeQueries...))
	}

	if params.StoreID != "" {
		sq := bleve.NewTermQuery(params.StoreID)
		sq.SetField("store_id")
		queries = append(queries, sq)
	}

	if params.MinPrice > 0 || params.MaxPrice > 0 {
		lo := params.MinPrice
		hi := params.MaxPrice
		if hi == 0 {
			hi = math.MaxFloat64
		}
		inclusive := true
		rq := bleve.NewNumericRangeInclusiveQuery(&lo, &hi, &inclusive, &inclusive)
		rq.SetField("price")
		queries = append(queries, rq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

// addSorting configures sort order. Relevance is the default.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	desc := params.SortOrder == "desc"
	switch params.SortBy {
	case "name":
		if desc {
			req.SortBy([]string{"-name"})
		} else {
			req.SortBy([]string{"name"})
		}
	case "price":
		if desc {
			req.SortBy([]string{"-price", "name"})
		} else {
			req.SortBy([]string{"price", "name"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"created_at"})
		} else {
			req.SortBy([]string{"-created_at"})
		}
	default:
		req.SortBy([]string{"-_score"})
	}
}
