package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogd/catalog-server/internal/auth"
	domainerrors "github.com/catalogd/catalog-server/internal/errors"
)

func TestStoreService_CreateAndGet(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	created := ts.createStore(t, "  Corner   Shop ")
	assert.Equal(t, "Corner Shop", created.Name)
	assert.Empty(t, created.Items)
	assert.NotNil(t, created.Items)

	got, err := ts.stores.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = ts.stores.Create(ctx, CreateStoreRequest{Name: "Corner Shop"})
	assert.ErrorIs(t, err, domainerrors.ErrConflict)

	_, err = ts.stores.Create(ctx, CreateStoreRequest{Name: "   "})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = ts.stores.Get(ctx, "store-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestStoreService_TagNamesUniquePerStore(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	a := ts.createStore(t, "Store A")
	b := ts.createStore(t, "Store B")

	_, err := ts.stores.CreateTag(ctx, a.ID, CreateTagRequest{Name: "sale"})
	require.NoError(t, err)
	_, err = ts.stores.CreateTag(ctx, b.ID, CreateTagRequest{Name: "sale"})
	require.NoError(t, err)

	_, err = ts.stores.CreateTag(ctx, a.ID, CreateTagRequest{Name: "sale"})
	assert.ErrorIs(t, err, domainerrors.ErrConflict)

	_, err = ts.stores.CreateTag(ctx, "store-missing", CreateTagRequest{Name: "sale"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	tags, err := ts.stores.ListTags(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestStoreService_DeleteCascades(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	st := ts.createStore(t, "Doomed")
	item := ts.createItem(t, st.ID, "Lamp", 10)
	tag := ts.createTag(t, st.ID, "lighting")
	_, err := ts.items.LinkTag(ctx, item.ID, tag.ID)
	require.NoError(t, err)

	require.NoError(t, ts.stores.Delete(ctx, st.ID))

	_, err = ts.items.Get(ctx, item.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = ts.tags.Get(ctx, tag.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	count, err := ts.search.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count, "cascaded documents leave the index")

	assert.ErrorIs(t, ts.stores.Delete(ctx, st.ID), domainerrors.ErrNotFound)
}

func TestItemService_Create(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	st := ts.createStore(t, "Shop")
	item := ts.createItem(t, st.ID, "Chair", 15.99)
	assert.Equal(t, st.Name, item.Store.Name)
	assert.Empty(t, item.Tags)

	_, err := ts.items.Create(ctx, CreateItemRequest{Name: "Ghost", Price: price(1), StoreID: "store-missing"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = ts.items.Create(ctx, CreateItemRequest{Name: "No price", StoreID: st.ID})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	items, err := ts.items.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestItemService_Put(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	st := ts.createStore(t, "Shop")
	other := ts.createStore(t, "Other")
	item := ts.createItem(t, st.ID, "Chair", 10)

	updated, created, err := ts.items.Put(ctx, item.ID, PutItemRequest{Name: "Armchair", Price: price(25)})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Armchair", updated.Name)
	assert.InDelta(t, 25, updated.Price, 0.0001)
	assert.Equal(t, st.ID, updated.StoreID)

	_, _, err = ts.items.Put(ctx, item.ID, PutItemRequest{Name: "Moved", Price: price(1), StoreID: other.ID})
	assert.ErrorIs(t, err, domainerrors.ErrValidation, "items never change store")

	inserted, created, err := ts.items.Put(ctx, "item-custom", PutItemRequest{Name: "Desk", Price: price(99), StoreID: st.ID})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "item-custom", inserted.ID)

	_, _, err = ts.items.Put(ctx, "item-nostore", PutItemRequest{Name: "Desk", Price: price(99)})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, _, err = ts.items.Put(ctx, "bad id!", PutItemRequest{Name: "Desk", Price: price(99), StoreID: st.ID})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestItemService_DeleteRequiresAdmin(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	st := ts.createStore(t, "Shop")
	item := ts.createItem(t, st.ID, "Chair", 10)

	member := &auth.Claims{Subject: "user-member", IsAdmin: false}
	admin := &auth.Claims{Subject: "user-admin", IsAdmin: true}

	assert.ErrorIs(t, ts.items.Delete(ctx, member, item.ID), domainerrors.ErrForbidden)
	assert.ErrorIs(t, ts.items.Delete(ctx, nil, item.ID), domainerrors.ErrForbidden)

	_, err := ts.items.Get(ctx, item.ID)
	require.NoError(t, err, "forbidden delete leaves the item")

	require.NoError(t, ts.items.Delete(ctx, admin, item.ID))
	_, err = ts.items.Get(ctx, item.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	assert.ErrorIs(t, ts.items.Delete(ctx, admin, item.ID), domainerrors.ErrNotFound)
}

func TestItemService_DeleteWithAdminToken(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	_, adminPair := ts.registerAndLogin(t, "admin")
	_, memberPair := ts.registerAndLogin(t, "member")

	st := ts.createStore(t, "Shop")
	item := ts.createItem(t, st.ID, "Chair", 10)

	memberClaims, err := ts.auth.Authenticate(ctx, memberPair.AccessToken, AuthOptions{})
	require.NoError(t, err)
	assert.ErrorIs(t, ts.items.Delete(ctx, memberClaims, item.ID), domainerrors.ErrForbidden)

	adminClaims, err := ts.auth.Authenticate(ctx, adminPair.AccessToken, AuthOptions{})
	require.NoError(t, err)
	assert.NoError(t, ts.items.Delete(ctx, adminClaims, item.ID))
}

func TestTagService_DeleteReferencedTag(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	st := ts.createStore(t, "Shop")
	item := ts.createItem(t, st.ID, "Chair", 10)
	unused := ts.createTag(t, st.ID, "unused")
	used := ts.createTag(t, st.ID, "used")

	require.NoError(t, ts.tags.Delete(ctx, unused.ID))
	_, err := ts.tags.Get(ctx, unused.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = ts.items.LinkTag(ctx, item.ID, used.ID)
	require.NoError(t, err)

	err = ts.tags.Delete(ctx, used.ID)
	require.ErrorIs(t, err, domainerrors.ErrConflict)
	assert.Equal(t, "the tag is assigned to one or more items", err.Error())

	_, err = ts.tags.Get(ctx, used.ID)
	assert.NoError(t, err, "referenced tag remains")

	assert.ErrorIs(t, ts.tags.Delete(ctx, "tag-missing"), domainerrors.ErrNotFound)
}

func TestItemService_LinkUnlinkLifecycle(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	st := ts.createStore(t, "Shop")
	item := ts.createItem(t, st.ID, "Chair", 10)
	tag := ts.createTag(t, st.ID, "sale")

	linked, err := ts.items.LinkTag(ctx, item.ID, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, tag.ID, linked.ID)
	require.Len(t, linked.Items, 1)

	// Linking again is a no-op.
	_, err = ts.items.LinkTag(ctx, item.ID, tag.ID)
	require.NoError(t, err)

	got, err := ts.items.Get(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "sale", got.Tags[0].Name)

	res, err := ts.items.UnlinkTag(ctx, item.ID, tag.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Item.Tags)
	assert.Empty(t, res.Tag.Items)

	_, err = ts.items.UnlinkTag(ctx, item.ID, tag.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	assert.NoError(t, ts.tags.Delete(ctx, tag.ID))
}

func TestItemService_LinkAcrossStores(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	a := ts.createStore(t, "A")
	b := ts.createStore(t, "B")
	item := ts.createItem(t, a.ID, "Chair", 10)
	tag := ts.createTag(t, b.ID, "sale")

	_, err := ts.items.LinkTag(ctx, item.ID, tag.ID)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = ts.items.LinkTag(ctx, "item-missing", tag.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = ts.items.LinkTag(ctx, item.ID, "tag-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUserService(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	user, _ := ts.registerAndLogin(t, "alice")

	got, err := ts.users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	require.NoError(t, ts.users.Delete(ctx, user.ID))
	_, err = ts.users.Get(ctx, user.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.ErrorIs(t, ts.users.Delete(ctx, user.ID), domainerrors.ErrNotFound)
}
