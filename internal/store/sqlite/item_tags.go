package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/catalogd/catalog-server/internal/id"
	"github.com/catalogd/catalog-server/internal/store"
)

// LinkItemTag links an item to a tag. Linking an existing pair is a no-op
// and reports created=false. Returns store.ErrParentNotFound if either row is gone.
func (s *Store) LinkItemTag(ctx context.Context, itemID, tagID string) (bool, error) {
	linkID, err := id.Generate(id.PrefixItemTag)
	if err != nil {
		return false, fmt.Errorf("generate item tag id: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO item_tags (id, item_id, tag_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (item_id, tag_id) DO NOTHING`,
		linkID,
		itemID,
		tagID,
		formatTime(time.Now()),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, store.ErrParentNotFound
		}
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UnlinkItemTag removes the link between an item and a tag.
// Returns store.ErrNotFound if the pair was not linked.
func (s *Store) UnlinkItemTag(ctx context.Context, itemID, tagID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM item_tags WHERE item_id = ? AND tag_id = ?`, itemID, tagID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// CountItemsForTag returns how many items link to a tag.
func (s *Store) CountItemsForTag(ctx context.Context, tagID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM item_tags WHERE tag_id = ?`, tagID).Scan(&n)
	return n, err
}
