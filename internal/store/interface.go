// Package store defines the persistence interface for the catalog server.
package store

import (
	"context"

	"github.com/catalogd/catalog-server/internal/domain"
)

// Store defines every persistence operation the services use.
// Each mutating method runs in a single transaction.
type Store interface {
	Close() error
	Ping(ctx context.Context) error

	// Users
	// CreateUser inserts u and sets u.IsAdmin when it is the first user.
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error

	// Stores
	CreateStore(ctx context.Context, st *domain.Store) error
	GetStore(ctx context.Context, id string) (*domain.Store, error)
	GetStoreByName(ctx context.Context, name string) (*domain.Store, error)
	GetStoreDetail(ctx context.Context, id string) (*domain.StoreDetail, error)
	ListStores(ctx context.Context) ([]*domain.StoreDetail, error)
	// DeleteStore removes the store and, by cascade, its items, tags and links.
	DeleteStore(ctx context.Context, id string) (*DeletedStore, error)

	// Items
	CreateItem(ctx context.Context, item *domain.Item) error
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	GetItemDetail(ctx context.Context, id string) (*domain.ItemDetail, error)
	ListItems(ctx context.Context) ([]*domain.ItemDetail, error)
	UpdateItem(ctx context.Context, item *domain.Item) error
	DeleteItem(ctx context.Context, id string) error

	// Tags
	CreateTag(ctx context.Context, tag *domain.Tag) error
	GetTag(ctx context.Context, id string) (*domain.Tag, error)
	GetTagByName(ctx context.Context, storeID, name string) (*domain.Tag, error)
	GetTagDetail(ctx context.Context, id string) (*domain.TagDetail, error)
	ListTagsByStore(ctx context.Context, storeID string) ([]*domain.TagDetail, error)
	// DeleteTag returns ErrReferenced while any item is linked to the tag.
	DeleteTag(ctx context.Context, id string) error

	// Item/tag links
	// LinkItemTag is idempotent; created reports whether a new link was written.
	LinkItemTag(ctx context.Context, itemID, tagID string) (created bool, err error)
	UnlinkItemTag(ctx context.Context, itemID, tagID string) error
	CountItemsForTag(ctx context.Context, tagID string) (int, error)
}

// DeletedStore reports what a store deletion removed, for index maintenance.
type DeletedStore struct {
	Store   domain.Store
	ItemIDs []string
	TagIDs  []string
}
