package revocation

import (
	"context"
	"time"
)

// MemorySet keeps revocations in process memory. Entries are lost on restart,
// which is acceptable for a single node: restarts are rare and short tokens dominate.
type MemorySet struct {
	entries *syncMap[string, time.Time]
	now     func() time.Time
}

var _ Set = (*MemorySet)(nil)

// NewMemorySet creates an empty in-memory set.
func NewMemorySet() *MemorySet {
	return &MemorySet{
		entries: newSyncMap[string, time.Time](),
		now:     time.Now,
	}
}

// Revoke implements Set.
func (s *MemorySet) Revoke(_ context.Context, rec Record) error {
	if _, err := ttl(rec, s.now()); err != nil {
		return err
	}
	now := s.now()
	stored := s.entries.StoreUnless(rec.TokenID, rec.ExpiresAt, func(exp time.Time) bool {
		return now.Before(exp)
	})
	if !stored {
		return ErrAlreadyRevoked
	}
	return nil
}

// IsRevoked implements Set. Entries past expiry read as not revoked even before a sweep.
func (s *MemorySet) IsRevoked(_ context.Context, jti string) (bool, error) {
	exp, ok := s.entries.Load(jti)
	if !ok {
		return false, nil
	}
	return s.now().Before(exp), nil
}

// Sweep implements Set.
func (s *MemorySet) Sweep(_ context.Context) (int, error) {
	now := s.now()
	return s.entries.DeleteFunc(func(_ string, exp time.Time) bool {
		return !now.Before(exp)
	}), nil
}

// Len returns the number of tracked entries, swept or not.
func (s *MemorySet) Len() int {
	return s.entries.Len()
}

// Close implements Set.
func (s *MemorySet) Close() error {
	return nil
}
