package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/catalogd/catalog-server/internal/domain"
	"github.com/catalogd/catalog-server/internal/store"
)

// itemColumns must match the scan order in scanItem.
const itemColumns = `id, name, price, store_id, created_at, updated_at`

func scanItem(scanner interface{ Scan(dest ...any) error }) (*domain.Item, error) {
	var (
		it        domain.Item
		createdAt string
		updatedAt string
	)
	if err := scanner.Scan(&it.ID, &it.Name, &it.Price, &it.StoreID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if it.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if it.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

// CreateItem inserts an item.
// Returns store.ErrParentNotFound if the store does not exist and
// store.ErrAlreadyExists if the id is taken.
func (s *Store) CreateItem(ctx context.Context, it *domain.Item) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, name, price, store_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		it.ID,
		it.Name,
		it.Price,
		it.StoreID,
		formatTime(it.CreatedAt),
		formatTime(it.UpdatedAt),
	)
	switch {
	case err == nil:
		return nil
	case isForeignKeyViolation(err):
		return store.ErrParentNotFound
	case isUniqueViolation(err):
		return store.ErrAlreadyExists
	default:
		return err
	}
}

// GetItem retrieves an item by ID.
func (s *Store) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	return getItem(ctx, s.db, id)
}

func getItem(ctx context.Context, q queryer, id string) (*domain.Item, error) {
	it, err := scanItem(q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return it, err
}

// GetItemDetail returns an item with its store and tags.
func (s *Store) GetItemDetail(ctx context.Context, id string) (*domain.ItemDetail, error) {
	var detail *domain.ItemDetail
	err := s.withReadTx(ctx, func(tx *sql.Tx) error {
		it, err := getItem(ctx, tx, id)
		if err != nil {
			return err
		}
		detail, err = itemDetail(ctx, tx, it)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// ListItems returns every item with its store and tags, ordered by name.
func (s *Store) ListItems(ctx context.Context) ([]*domain.ItemDetail, error) {
	var out []*domain.ItemDetail
	err := s.withReadTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT `+itemColumns+` FROM items ORDER BY name ASC, id ASC`)
		if err != nil {
			return err
		}
		items, err := collect(rows, scanItem)
		if err != nil {
			return err
		}

		out = make([]*domain.ItemDetail, 0, len(items))
		for i := range items {
			d, err := itemDetail(ctx, tx, &items[i])
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

func itemDetail(ctx context.Context, q queryer, it *domain.Item) (*domain.ItemDetail, error) {
	st, err := getStore(ctx, q, it.StoreID)
	if err != nil {
		return nil, err
	}
	tags, err := tagsByItem(ctx, q, it.ID)
	if err != nil {
		return nil, err
	}
	return &domain.ItemDetail{Item: *it, Store: *st, Tags: tags}, nil
}

func itemsByStore(ctx context.Context, q queryer, storeID string) ([]domain.Item, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE store_id = ? ORDER BY name ASC, id ASC`, storeID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanItem)
}

func itemsByTag(ctx context.Context, q queryer, tagID string) ([]domain.Item, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT i.id, i.name, i.price, i.store_id, i.created_at, i.updated_at
		FROM items i
		JOIN item_tags it ON it.item_id = i.id
		WHERE it.tag_id = ?
		ORDER BY i.name ASC, i.id ASC`, tagID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanItem)
}

// UpdateItem replaces an item's name and price. The store never changes.
func (s *Store) UpdateItem(ctx context.Context, it *domain.Item) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE items SET name = ?, price = ?, updated_at = ?
		WHERE id = ?`,
		it.Name,
		it.Price,
		formatTime(it.UpdatedAt),
		it.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeleteItem removes an item and, by cascade, its tag links.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
