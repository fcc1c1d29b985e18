// Package search provides full-text search over the catalog using Bleve.
// Stores, items and tags share one index with type discrimination.
package search

import (
	"github.com/catalogd/catalog-server/internal/domain"
	"github.com/catalogd/catalog-server/internal/normalize"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeStore DocType = "store"
	DocTypeItem  DocType = "item"
	DocTypeTag   DocType = "tag"
)

// DocKey returns the index key for an entity. Keys are namespaced by type
// because ids of different entity types are not guaranteed to be distinct.
func DocKey(t DocType, id string) string {
	return string(t) + ":" + id
}

// SearchDocument is the unified document structure for the Bleve index.
//
// Items carry their store name and tag names so a single query can match an
// item by the labels attached to it.
type SearchDocument struct {
	ID   string  `json:"id"`
	Type DocType `json:"type"`

	Name string `json:"name"`

	StoreID   string   `json:"store_id,omitempty"`
	StoreName string   `json:"store_name,omitempty"`
	Tags      []string `json:"tags,omitempty"`

	Price     float64 `json:"price,omitempty"` // items only
	ItemCount int     `json:"item_count,omitempty"`

	CreatedAt int64 `json:"created_at"` // Unix millis
}

// Key returns the document's index key.
func (d *SearchDocument) Key() string {
	return DocKey(d.Type, d.ID)
}

// ToMap converts the document to a map keyed by the mapping's field names.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"type":       string(d.Type),
		"name":       d.Name,
		"name_key":   normalize.SearchKey(d.Name),
		"created_at": d.CreatedAt,
	}
	if d.StoreID != "" {
		m["store_id"] = d.StoreID
	}
	if d.StoreName != "" {
		m["store_name"] = d.StoreName
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.Type == DocTypeItem {
		m["price"] = d.Price
	}
	if d.ItemCount > 0 {
		m["item_count"] = d.ItemCount
	}
	return m
}

// StoreToSearchDocument converts a store to a search document.
func StoreToSearchDocument(st *domain.Store) *SearchDocument {
	return &SearchDocument{
		ID:        st.ID,
		Type:      DocTypeStore,
		Name:      st.Name,
		CreatedAt: st.CreatedAt.UnixMilli(),
	}
}

// ItemToSearchDocument converts an item with its store and tags.
func ItemToSearchDocument(item *domain.ItemDetail) *SearchDocument {
	tags := make([]string, 0, len(item.Tags))
	for _, t := range item.Tags {
		tags = append(tags, t.Name)
	}
	return &SearchDocument{
		ID:        item.ID,
		Type:      DocTypeItem,
		Name:      item.Name,
		StoreID:   item.StoreID,
		StoreName: item.Store.Name,
		Tags:      tags,
		Price:     item.Price,
		CreatedAt: item.CreatedAt.UnixMilli(),
	}
}

// TagToSearchDocument converts a tag with its store and linked items.
func TagToSearchDocument(tag *domain.TagDetail) *SearchDocument {
	return &SearchDocument{
		ID:        tag.ID,
		Type:      DocTypeTag,
		Name:      tag.Name,
		StoreID:   tag.StoreID,
		StoreName: tag.Store.Name,
		ItemCount: len(tag.Items),
		CreatedAt: tag.CreatedAt.UnixMilli(),
	}
}
