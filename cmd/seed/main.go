// Package main seeds a catalog database with an administrator and demo data.
//
// Run it while the server is stopped; it opens the same database and search
// index the server uses.
//
// Usage:
//
//	DATA_PATH=~/CatalogServer/data SEED_ADMIN_PASSWORD=changeme go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/catalogd/catalog-server/internal/config"
	domainerrors "github.com/catalogd/catalog-server/internal/errors"
	"github.com/catalogd/catalog-server/internal/logger"
	"github.com/catalogd/catalog-server/internal/search"
	"github.com/catalogd/catalog-server/internal/service"
	"github.com/catalogd/catalog-server/internal/store/sqlite"
)

type seedItem struct {
	name  string
	price float64
	tags  []string
}

type seedStore struct {
	name  string
	items []seedItem
}

var demoCatalog = []seedStore{
	{
		name: "Corner Hardware",
		items: []seedItem{
			{name: "Claw Hammer", price: 14.99, tags: []string{"tools"}},
			{name: "Wood Screws", price: 4.5, tags: []string{"fasteners"}},
			{name: "Oak Plank", price: 22, tags: []string{"lumber"}},
		},
	},
	{
		name: "Home Goods",
		items: []seedItem{
			{name: "Desk Lamp", price: 39.9, tags: []string{"lighting", "office"}},
			{name: "Oak Chair", price: 89, tags: []string{"furniture", "office"}},
			{name: "Gift Card Refund", price: -10, tags: nil},
		},
	},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o700); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(cfg.Storage.DataPath, "catalog.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	db, err := sqlite.Open(dbPath, lg.Logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	var searchService *service.SearchService
	if cfg.Search.Enabled {
		index, err := search.NewSearchIndex(search.Options{DataPath: cfg.Storage.DataPath, Logger: lg.Logger})
		if err != nil {
			log.Fatalf("Failed to open search index (is the server running?): %v", err)
		}
		defer index.Close()
		searchService = service.NewSearchService(index, db, lg.Logger)
	}

	ctx := context.Background()

	if password := os.Getenv("SEED_ADMIN_PASSWORD"); password != "" {
		username := os.Getenv("SEED_ADMIN_USERNAME")
		if username == "" {
			username = "admin"
		}
		createAdmin(ctx, db, lg, username, password)
	} else {
		fmt.Println("SEED_ADMIN_PASSWORD not set, skipping user creation")
	}

	stores := service.NewStoreService(db, searchService, lg.Logger)
	items := service.NewItemService(db, searchService, lg.Logger)

	created := 0
	for _, s := range demoCatalog {
		n, err := seedOneStore(ctx, stores, items, s)
		if err != nil {
			log.Fatalf("Failed to seed %q: %v", s.name, err)
		}
		created += n
	}

	fmt.Printf("\nSeed complete: %d items created\n", created)
}

// createAdmin registers the first account, which becomes the administrator.
// The token service is unused by Register, so none is configured.
func createAdmin(ctx context.Context, db *sqlite.Store, lg *logger.Logger, username, password string) {
	authService := service.NewAuthService(db, nil, nil, lg.Logger)

	user, err := authService.Register(ctx, service.RegisterRequest{Username: username, Password: password})
	var domainErr *domainerrors.Error
	switch {
	case errors.As(err, &domainErr) && domainErr.Code == domainerrors.CodeConflict:
		fmt.Printf("User %q already exists, skipping\n", username)
	case err != nil:
		log.Fatalf("Failed to create user: %v", err)
	default:
		fmt.Printf("Created user %s (%s, admin=%t)\n", user.Username, user.ID, user.IsAdmin)
	}
}

func seedOneStore(ctx context.Context, stores *service.StoreService, items *service.ItemService, s seedStore) (int, error) {
	st, err := stores.Create(ctx, service.CreateStoreRequest{Name: s.name})
	if err != nil {
		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) && domainErr.Code == domainerrors.CodeConflict {
			fmt.Printf("Store %q already exists, skipping\n", s.name)
			return 0, nil
		}
		return 0, err
	}
	fmt.Printf("\nStore: %s (%s)\n", st.Name, st.ID)

	tagIDs := make(map[string]string)
	for _, it := range s.items {
		price := it.price
		item, err := items.Create(ctx, service.CreateItemRequest{Name: it.name, Price: &price, StoreID: st.ID})
		if err != nil {
			return 0, fmt.Errorf("create item %q: %w", it.name, err)
		}
		fmt.Printf("  Item: %s %.2f\n", item.Name, item.Price)

		for _, name := range it.tags {
			tagID, ok := tagIDs[name]
			if !ok {
				tag, err := stores.CreateTag(ctx, st.ID, service.CreateTagRequest{Name: name})
				if err != nil {
					return 0, fmt.Errorf("create tag %q: %w", name, err)
				}
				tagID = tag.ID
				tagIDs[name] = tagID
			}
			if _, err := items.LinkTag(ctx, item.ID, tagID); err != nil {
				return 0, fmt.Errorf("link %q to %q: %w", it.name, name, err)
			}
		}
	}
	return len(s.items), nil
}
