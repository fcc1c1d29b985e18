package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/catalogd/catalog-server/internal/domain"
	"github.com/catalogd/catalog-server/internal/store"
)

// tagColumns must match the scan order in scanTag.
const tagColumns = `id, name, store_id, created_at`

func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var (
		t         domain.Tag
		createdAt string
	)
	if err := scanner.Scan(&t.ID, &t.Name, &t.StoreID, &createdAt); err != nil {
		return nil, err
	}
	var err error
	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTag inserts a tag.
// Returns store.ErrAlreadyExists when the store already has a tag with that name
// and store.ErrParentNotFound when the store does not exist.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, name, store_id, created_at)
		VALUES (?, ?, ?, ?)`,
		t.ID,
		t.Name,
		t.StoreID,
		formatTime(t.CreatedAt),
	)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return store.ErrAlreadyExists
	case isForeignKeyViolation(err):
		return store.ErrParentNotFound
	default:
		return err
	}
}

// GetTag retrieves a tag by ID.
func (s *Store) GetTag(ctx context.Context, id string) (*domain.Tag, error) {
	return getTag(ctx, s.db, id)
}

func getTag(ctx context.Context, q queryer, id string) (*domain.Tag, error) {
	t, err := scanTag(q.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return t, err
}

// GetTagByName retrieves the tag named name in a store.
func (s *Store) GetTagByName(ctx context.Context, storeID, name string) (*domain.Tag, error) {
	t, err := scanTag(s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE store_id = ? AND name = ?`, storeID, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return t, err
}

// GetTagDetail returns a tag with its store and linked items.
func (s *Store) GetTagDetail(ctx context.Context, id string) (*domain.TagDetail, error) {
	var detail *domain.TagDetail
	err := s.withReadTx(ctx, func(tx *sql.Tx) error {
		t, err := getTag(ctx, tx, id)
		if err != nil {
			return err
		}
		detail, err = tagDetail(ctx, tx, t)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// ListTagsByStore returns the tags of a store with their linked items.
// Returns store.ErrNotFound if the store does not exist.
func (s *Store) ListTagsByStore(ctx context.Context, storeID string) ([]*domain.TagDetail, error) {
	var out []*domain.TagDetail
	err := s.withReadTx(ctx, func(tx *sql.Tx) error {
		st, err := getStore(ctx, tx, storeID)
		if err != nil {
			return err
		}
		tags, err := tagsByStore(ctx, tx, storeID)
		if err != nil {
			return err
		}

		out = make([]*domain.TagDetail, 0, len(tags))
		for i := range tags {
			items, err := itemsByTag(ctx, tx, tags[i].ID)
			if err != nil {
				return err
			}
			out = append(out, &domain.TagDetail{Tag: tags[i], Store: *st, Items: items})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func tagDetail(ctx context.Context, q queryer, t *domain.Tag) (*domain.TagDetail, error) {
	st, err := getStore(ctx, q, t.StoreID)
	if err != nil {
		return nil, err
	}
	items, err := itemsByTag(ctx, q, t.ID)
	if err != nil {
		return nil, err
	}
	return &domain.TagDetail{Tag: *t, Store: *st, Items: items}, nil
}

func tagsByStore(ctx context.Context, q queryer, storeID string) ([]domain.Tag, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE store_id = ? ORDER BY name ASC`, storeID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTag)
}

func tagsByItem(ctx context.Context, q queryer, itemID string) ([]domain.Tag, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT t.id, t.name, t.store_id, t.created_at
		FROM tags t
		JOIN item_tags it ON it.tag_id = t.id
		WHERE it.item_id = ?
		ORDER BY t.name ASC`, itemID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTag)
}

// DeleteTag deletes a tag that no item references.
// Returns store.ErrReferenced while links exist; the foreign key backs the check.
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var links int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM item_tags WHERE tag_id = ?`, id).Scan(&links); err != nil {
			return err
		}
		if links > 0 {
			return store.ErrReferenced
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
		if err != nil {
			if isForeignKeyViolation(err) {
				return store.ErrReferenced
			}
			return err
		}
		return requireAffected(res)
	})
}
