// Package domain holds the catalog entities shared by the store, service and API layers.
package domain

import "time"

// Store is a named shop that owns items and tags.
// Deleting a store deletes everything it owns.
type Store struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Item is a priced product belonging to exactly one store for its lifetime.
type Item struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	StoreID   string    `json:"store_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (i *Item) Touch() {
	i.UpdatedAt = time.Now()
}

// Tag is a label scoped to one store. Names are unique within a store.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StoreID   string    `json:"store_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemTag links an item and a tag of the same store.
type ItemTag struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	TagID     string    `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemDetail is an item with its owning store and linked tags.
type ItemDetail struct {
	Item
	Store Store `json:"store"`
	Tags  []Tag `json:"tags"`
}

// StoreDetail is a store with everything it owns.
type StoreDetail struct {
	Store
	Items []Item `json:"items"`
	Tags  []Tag  `json:"tags"`
}

// TagDetail is a tag with its owning store and linked items.
type TagDetail struct {
	Tag
	Store Store  `json:"store"`
	Items []Item `json:"items"`
}
