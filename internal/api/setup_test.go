package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/catalogd/catalog-server/internal/auth"
	"github.com/catalogd/catalog-server/internal/domain"
	"github.com/catalogd/catalog-server/internal/logger"
	"github.com/catalogd/catalog-server/internal/revocation"
	"github.com/catalogd/catalog-server/internal/search"
	"github.com/catalogd/catalog-server/internal/service"
	"github.com/catalogd/catalog-server/internal/store/sqlite"
)

// testEnvelope decodes the response envelope with typed data.
type testEnvelope[T any] struct {
	Version int               `json:"v"`
	Success bool              `json:"success"`
	Data    T                 `json:"data"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details"`
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api      humatest.TestAPI
	db       *sqlite.Store
	services *Services
	tokens   *auth.TokenService
}

// setupTestServer creates a server over a temp database, an in-memory
// revocation set and an in-memory search index.
func setupTestServer(t *testing.T, opts ...func(*Options)) *testServer {
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

	searchService := service.NewSearchService(index, db, log)
	services := &Services{
		Auth:   service.NewAuthService(db, tokens, revocation.NewMemorySet(), log),
		Store:  service.NewStoreService(db, searchService, log),
		Item:   service.NewItemService(db, searchService, log),
		Tag:    service.NewTagService(db, searchService, log),
		User:   service.NewUserService(db, log),
		Search: searchService,
	}

	var options Options
	for _, opt := range opts {
		opt(&options)
	}

	server := NewServer(services, db, options, log)

	return &testServer{
		Server:   server,
		api:      humatest.Wrap(t, server.API()),
		db:       db,
		services: services,
		tokens:   tokens,
	}
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var envelope testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope), resp.Body.String())
	return envelope
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

// login registers username and logs in, returning the token pair.
func (ts *testServer) login(t *testing.T, username string) TokenResponse {
	t.Helper()

	creds := map[string]any{"username": username, "password": "correct-horse"}
	resp := ts.api.Post("/register", creds)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Post("/login", creds)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return decode[TokenResponse](t, resp).Data
}

func (ts *testServer) createStore(t *testing.T, name string) domain.StoreDetail {
	t.Helper()
	resp := ts.api.Post("/store", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[domain.StoreDetail](t, resp).Data
}

func (ts *testServer) createItem(t *testing.T, token, storeID, name string, price float64) domain.ItemDetail {
	t.Helper()
	resp := ts.api.Post("/item", bearer(token), map[string]any{"name": name, "price": price, "store_id": storeID})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[domain.ItemDetail](t, resp).Data
}

func (ts *testServer) createTag(t *testing.T, storeID, name string) domain.TagDetail {
	t.Helper()
	resp := ts.api.Post("/store/"+storeID+"/tag", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[domain.TagDetail](t, resp).Data
}
