package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/catalogd/catalog-server/internal/domain"
	"github.com/catalogd/catalog-server/internal/store"
)

// storeColumns must match the scan order in scanStore.
const storeColumns = `id, name, created_at`

func scanStore(scanner interface{ Scan(dest ...any) error }) (*domain.Store, error) {
	var (
		st        domain.Store
		createdAt string
	)
	if err := scanner.Scan(&st.ID, &st.Name, &createdAt); err != nil {
		return nil, err
	}
	var err error
	st.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// CreateStore inserts a store. Returns store.ErrAlreadyExists on a duplicate name.
func (s *Store) CreateStore(ctx context.Context, st *domain.Store) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stores (id, name, created_at)
		VALUES (?, ?, ?)`,
		st.ID,
		st.Name,
		formatTime(st.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetStore retrieves a store by ID.
func (s *Store) GetStore(ctx context.Context, id string) (*domain.Store, error) {
	return getStore(ctx, s.db, id)
}

func getStore(ctx context.Context, q queryer, id string) (*domain.Store, error) {
	st, err := scanStore(q.QueryRowContext(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return st, err
}

// GetStoreByName retrieves a store by exact (already normalized) name.
func (s *Store) GetStoreByName(ctx context.Context, name string) (*domain.Store, error) {
	st, err := scanStore(s.db.QueryRowContext(ctx, `SELECT `+storeColumns+` FROM stores WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return st, err
}

// GetStoreDetail returns a store with its items and tags.
func (s *Store) GetStoreDetail(ctx context.Context, id string) (*domain.StoreDetail, error) {
	var detail *domain.StoreDetail
	err := s.withReadTx(ctx, func(tx *sql.Tx) error {
		st, err := getStore(ctx, tx, id)
		if err != nil {
			return err
		}
		detail, err = storeDetail(ctx, tx, st)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// ListStores returns every store with its items and tags, ordered by name.
func (s *Store) ListStores(ctx context.Context) ([]*domain.StoreDetail, error) {
	var out []*domain.StoreDetail
	err := s.withReadTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT `+storeColumns+` FROM stores ORDER BY name ASC`)
		if err != nil {
			return err
		}
		stores, err := collect(rows, scanStore)
		if err != nil {
			return err
		}

		out = make([]*domain.StoreDetail, 0, len(stores))
		for i := range stores {
			d, err := storeDetail(ctx, tx, &stores[i])
			if err != nil {
				return err
			}
			out = append(out, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func storeDetail(ctx context.Context, q queryer, st *domain.Store) (*domain.StoreDetail, error) {
	items, err := itemsByStore(ctx, q, st.ID)
	if err != nil {
		return nil, err
	}
	tags, err := tagsByStore(ctx, q, st.ID)
	if err != nil {
		return nil, err
	}
	return &domain.StoreDetail{Store: *st, Items: items, Tags: tags}, nil
}

// DeleteStore deletes the store; the schema cascades to its items, tags and links.
// The ids of the cascaded rows are captured in the same transaction.
func (s *Store) DeleteStore(ctx context.Context, id string) (*store.DeletedStore, error) {
	var deleted store.DeletedStore
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		st, err := getStore(ctx, tx, id)
		if err != nil {
			return err
		}
		deleted.Store = *st

		if deleted.ItemIDs, err = selectIDs(ctx, tx, `SELECT id FROM items WHERE store_id = ?`, id); err != nil {
			return err
		}
		if deleted.TagIDs, err = selectIDs(ctx, tx, `SELECT id FROM tags WHERE store_id = ?`, id); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM stores WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

func selectIDs(ctx context.Context, q queryer, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
