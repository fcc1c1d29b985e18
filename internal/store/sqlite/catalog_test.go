package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/catalogd/catalog-server/internal/domain"
	"github.com/catalogd/catalog-server/internal/store"
)

func TestCreateStore_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s, "store-1", "Corner Shop")

	err := s.CreateStore(context.Background(), &domain.Store{ID: "store-2", Name: "Corner Shop", CreatedAt: time.Now()})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetStoreByName(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s, "store-1", "Corner Shop")

	got, err := s.GetStoreByName(context.Background(), "Corner Shop")
	if err != nil {
		t.Fatalf("GetStoreByName: %v", err)
	}
	if got.ID != "store-1" {
		t.Errorf("ID: got %q, want %q", got.ID, "store-1")
	}
	if _, err := s.GetStoreByName(context.Background(), "Nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateItem_UnknownStore(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	err := s.CreateItem(context.Background(), &domain.Item{
		ID: "item-1", Name: "Chair", Price: 10, StoreID: "store-missing", CreatedAt: now, UpdatedAt: now,
	})
	if !errors.Is(err, store.ErrParentNotFound) {
		t.Errorf("expected ErrParentNotFound, got %v", err)
	}
}

func TestCreateItem_DuplicateID(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s, "store-1", "Corner Shop")
	seedItem(t, s, "item-1", "Chair", "store-1", 10)

	now := time.Now()
	err := s.CreateItem(context.Background(), &domain.Item{
		ID: "item-1", Name: "Table", Price: 20, StoreID: "store-1", CreatedAt: now, UpdatedAt: now,
	})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUpdateItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedStore(t, s, "store-1", "Corner Shop")
	it := seedItem(t, s, "item-1", "Chair", "store-1", 10)

	it.Name = "Armchair"
	it.Price = 12.5
	it.UpdatedAt = time.Now().Add(time.Minute)
	if err := s.UpdateItem(ctx, it); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	got, err := s.GetItem(ctx, "item-1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Name != "Armchair" || got.Price != 12.5 {
		t.Errorf("got %q/%v, want Armchair/12.5", got.Name, got.Price)
	}
	if got.StoreID != "store-1" {
		t.Errorf("StoreID changed: %q", got.StoreID)
	}

	missing := &domain.Item{ID: "item-missing", Name: "x", UpdatedAt: time.Now()}
	if err := s.UpdateItem(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTagNameUniquePerStore(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s, "store-a", "A")
	seedStore(t, s, "store-b", "B")

	seedTag(t, s, "tag-1", "sale", "store-a")
	seedTag(t, s, "tag-2", "sale", "store-b")

	err := s.CreateTag(context.Background(), &domain.Tag{ID: "tag-3", Name: "sale", StoreID: "store-a", CreatedAt: time.Now()})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := s.GetTagByName(context.Background(), "store-b", "sale")
	if err != nil {
		t.Fatalf("GetTagByName: %v", err)
	}
	if got.ID != "tag-2" {
		t.Errorf("ID: got %q, want tag-2", got.ID)
	}
}

func TestCreateTag_UnknownStore(t *testing.T) {
	s := newTestStore(t)
	err := s.CreateTag(context.Background(), &domain.Tag{ID: "tag-1", Name: "sale", StoreID: "store-missing", CreatedAt: time.Now()})
	if !errors.Is(err, store.ErrParentNotFound) {
		t.Errorf("expected ErrParentNotFound, got %v", err)
	}
}

func TestLinkUnlinkLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedStore(t, s, "store-1", "Corner Shop")
	seedItem(t, s, "item-1", "Chair", "store-1", 10)
	seedTag(t, s, "tag-1", "sale", "store-1")

	created, err := s.LinkItemTag(ctx, "item-1", "tag-1")
	if err != nil {
		t.Fatalf("LinkItemTag: %v", err)
	}
	if !created {
		t.Error("first link should report created")
	}

	created, err = s.LinkItemTag(ctx, "item-1", "tag-1")
	if err != nil {
		t.Fatalf("LinkItemTag (repeat): %v", err)
	}
	if created {
		t.Error("repeat link should not report created")
	}

	item, err := s.GetItemDetail(ctx, "item-1")
	if err != nil {
		t.Fatalf("GetItemDetail: %v", err)
	}
	if len(item.Tags) != 1 || item.Tags[0].ID != "tag-1" {
		t.Errorf("item tags: got %+v", item.Tags)
	}
	if item.Store.ID != "store-1" {
		t.Errorf("item store: got %q", item.Store.ID)
	}

	tag, err := s.GetTagDetail(ctx, "tag-1")
	if err != nil {
		t.Fatalf("GetTagDetail: %v", err)
	}
	if len(tag.Items) != 1 || tag.Items[0].ID != "item-1" {
		t.Errorf("tag items: got %+v", tag.Items)
	}

	// Linked tags cannot be deleted.
	if err := s.DeleteTag(ctx, "tag-1"); !errors.Is(err, store.ErrReferenced) {
		t.Errorf("expected ErrReferenced, got %v", err)
	}
	if _, err := s.GetTag(ctx, "tag-1"); err != nil {
		t.Errorf("tag should still exist: %v", err)
	}

	if err := s.UnlinkItemTag(ctx, "item-1", "tag-1"); err != nil {
		t.Fatalf("UnlinkItemTag: %v", err)
	}
	if err := s.UnlinkItemTag(ctx, "item-1", "tag-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for second unlink, got %v", err)
	}

	item, err = s.GetItemDetail(ctx, "item-1")
	if err != nil {
		t.Fatalf("GetItemDetail: %v", err)
	}
	if len(item.Tags) != 0 {
		t.Errorf("expected no tags after unlink, got %+v", item.Tags)
	}

	if err := s.DeleteTag(ctx, "tag-1"); err != nil {
		t.Fatalf("DeleteTag after unlink: %v", err)
	}
	if err := s.DeleteTag(ctx, "tag-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLinkItemTag_MissingRows(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s, "store-1", "Corner Shop")
	seedItem(t, s, "item-1", "Chair", "store-1", 10)

	_, err := s.LinkItemTag(context.Background(), "item-1", "tag-missing")
	if !errors.Is(err, store.ErrParentNotFound) {
		t.Errorf("expected ErrParentNotFound, got %v", err)
	}
}

func TestDeleteItem_CascadesLinks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedStore(t, s, "store-1", "Corner Shop")
	seedItem(t, s, "item-1", "Chair", "store-1", 10)
	seedTag(t, s, "tag-1", "sale", "store-1")
	if _, err := s.LinkItemTag(ctx, "item-1", "tag-1"); err != nil {
		t.Fatalf("LinkItemTag: %v", err)
	}

	if err := s.DeleteItem(ctx, "item-1"); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	n, err := s.CountItemsForTag(ctx, "tag-1")
	if err != nil {
		t.Fatalf("CountItemsForTag: %v", err)
	}
	if n != 0 {
		t.Errorf("links after item delete: got %d, want 0", n)
	}
	if err := s.DeleteItem(ctx, "item-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteStore_Cascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedStore(t, s, "store-1", "Corner Shop")
	seedStore(t, s, "store-2", "Other")
	seedItem(t, s, "item-1", "Chair", "store-1", 10)
	seedItem(t, s, "item-2", "Lamp", "store-2", 5)
	seedTag(t, s, "tag-1", "sale", "store-1")
	if _, err := s.LinkItemTag(ctx, "item-1", "tag-1"); err != nil {
		t.Fatalf("LinkItemTag: %v", err)
	}

	deleted, err := s.DeleteStore(ctx, "store-1")
	if err != nil {
		t.Fatalf("DeleteStore: %v", err)
	}
	if len(deleted.ItemIDs) != 1 || deleted.ItemIDs[0] != "item-1" {
		t.Errorf("deleted items: got %v", deleted.ItemIDs)
	}
	if len(deleted.TagIDs) != 1 || deleted.TagIDs[0] != "tag-1" {
		t.Errorf("deleted tags: got %v", deleted.TagIDs)
	}

	if _, err := s.GetItem(ctx, "item-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("item should be gone, got %v", err)
	}
	if _, err := s.GetTag(ctx, "tag-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("tag should be gone, got %v", err)
	}
	if _, err := s.GetItem(ctx, "item-2"); err != nil {
		t.Errorf("other store's item should survive: %v", err)
	}

	if _, err := s.DeleteStore(ctx, "store-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreDetailAndLists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedStore(t, s, "store-b", "Beta")
	seedStore(t, s, "store-a", "Alpha")
	seedItem(t, s, "item-1", "Chair", "store-a", 10)
	seedTag(t, s, "tag-1", "sale", "store-a")

	detail, err := s.GetStoreDetail(ctx, "store-a")
	if err != nil {
		t.Fatalf("GetStoreDetail: %v", err)
	}
	if len(detail.Items) != 1 || len(detail.Tags) != 1 {
		t.Errorf("detail: got %d items, %d tags", len(detail.Items), len(detail.Tags))
	}

	stores, err := s.ListStores(ctx)
	if err != nil {
		t.Fatalf("ListStores: %v", err)
	}
	if len(stores) != 2 || stores[0].Name != "Alpha" {
		t.Fatalf("ListStores order: got %+v", stores)
	}
	if stores[1].Items == nil || stores[1].Tags == nil {
		t.Error("empty collections should be non-nil")
	}

	items, err := s.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 1 || items[0].Store.Name != "Alpha" {
		t.Errorf("ListItems: got %+v", items)
	}

	tags, err := s.ListTagsByStore(ctx, "store-a")
	if err != nil {
		t.Fatalf("ListTagsByStore: %v", err)
	}
	if len(tags) != 1 || tags[0].Store.ID != "store-a" {
		t.Errorf("ListTagsByStore: got %+v", tags)
	}

	if _, err := s.ListTagsByStore(ctx, "store-missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
