package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/catalogd/catalog-server/internal/auth"
	"github.com/catalogd/catalog-server/internal/domain"
	"github.com/catalogd/catalog-server/internal/logger"
	"github.com/catalogd/catalog-server/internal/revocation"
	"github.com/catalogd/catalog-server/internal/search"
	"github.com/catalogd/catalog-server/internal/store/sqlite"
)

// testServices wires every service against a temp database, an in-memory
// revocation set and an in-memory search index.
type testServices struct {
	auth    *AuthService
	stores  *StoreService
	items   *ItemService
	tags    *TagService
	users   *UserService
	search  *SearchService
	tokens  *auth.TokenService
	revoked *revocation.MemorySet
	db      *sqlite.Store
}

func setupServices(t *testing.T) *testServices {
	t.Helper()

	log := logger.Discard().Logger
	dir := t.TempDir()

	db, err := sqlite.Open(filepath.Join(dir, "catalog.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	index, err := search.NewSearchIndex(search.Options{Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	revoked := revocation.NewMemorySet()
	searchService := NewSearchService(index, db, log)

	return &testServices{
		auth:    NewAuthService(db, tokens, revoked, log),
		stores:  NewStoreService(db, searchService, log),
		items:   NewItemService(db, searchService, log),
		tags:    NewTagService(db, searchService, log),
		users:   NewUserService(db, log),
		search:  searchService,
		tokens:  tokens,
		revoked: revoked,
		db:      db,
	}
}

func price(v float64) *float64 { return &v }

func (ts *testServices) createStore(t *testing.T, name string) *domain.StoreDetail {
	t.Helper()
	st, err := ts.stores.Create(context.Background(), CreateStoreRequest{Name: name})
	require.NoError(t, err)
	return st
}

func (ts *testServices) createItem(t *testing.T, storeID, name string, p float64) *domain.ItemDetail {
	t.Helper()
	item, err := ts.items.Create(context.Background(), CreateItemRequest{Name: name, Price: price(p), StoreID: storeID})
	require.NoError(t, err)
	return item
}

func (ts *testServices) createTag(t *testing.T, storeID, name string) *domain.TagDetail {
	t.Helper()
	tag, err := ts.stores.CreateTag(context.Background(), storeID, CreateTagRequest{Name: name})
	require.NoError(t, err)
	return tag
}

// registerAndLogin registers a user and returns a token pair.
func (ts *testServices) registerAndLogin(t *testing.T, username string) (*domain.User, *TokenPair) {
	t.Helper()
	ctx := context.Background()

	user, err := ts.auth.Register(ctx, RegisterRequest{Username: username, Password: "correct-horse"})
	require.NoError(t, err)
	pair, err := ts.auth.Login(ctx, LoginRequest{Username: username, Password: "correct-horse"})
	require.NoError(t, err)
	return user, pair
}
