package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const badgerKeyPrefix = "revoked:"

// BadgerSet persists revocations in an embedded Badger database so logouts
// survive restarts. Entries carry a TTL equal to the token's remaining life.
type BadgerSet struct {
	db  *badger.DB
	now func() time.Time
}

var _ Set = (*BadgerSet)(nil)

// OpenBadgerSet opens (or creates) a set at path. An empty path opens an in-memory database.
func OpenBadgerSet(path string) (*BadgerSet, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerSet{db: db, now: time.Now}, nil
}

// Revoke implements Set.
func (s *BadgerSet) Revoke(_ context.Context, rec Record) error {
	remaining, err := ttl(rec, s.now())
	if err != nil {
		return err
	}

	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal revocation: %w", err)
	}

	key := []byte(badgerKeyPrefix + rec.TokenID)
	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrAlreadyRevoked
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.SetEntry(badger.NewEntry(key, val).WithTTL(remaining))
	})
	// A concurrent Revoke of the same key committed first.
	if errors.Is(err, badger.ErrConflict) {
		return ErrAlreadyRevoked
	}
	return err
}

// IsRevoked implements Set.
func (s *BadgerSet) IsRevoked(_ context.Context, jti string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(badgerKeyPrefix + jti))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Sweep reclaims value log space. Expired keys are already invisible, so it reports 0.
func (s *BadgerSet) Sweep(_ context.Context) (int, error) {
	if s.db.Opts().InMemory {
		return 0, nil
	}
	for {
		err := s.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// List returns every live record. Used by inspection tooling.
func (s *BadgerSet) List() ([]Record, error) {
	var out []Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec Record
				if err := json.Unmarshal(val, &rec); err != nil {
					return err
				}
				out = append(out, rec)
				return nil
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
		}
		return nil
	})
	return out, err
}

// Close implements Set.
func (s *BadgerSet) Close() error {
	return s.db.Close()
}
