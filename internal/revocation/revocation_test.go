package revocation

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(ttl time.Duration) Record {
	now := time.Now()
	return Record{
		TokenID:   uuid.NewString(),
		UserID:    "user-1",
		ExpiresAt: now.Add(ttl),
		RevokedAt: now,
	}
}

// exerciseSet checks the behaviour every backend must share.
func exerciseSet(t *testing.T, set Set) {
	t.Helper()
	ctx := context.Background()

	rec := newRecord(time.Hour)

	revoked, err := set.IsRevoked(ctx, rec.TokenID)
	require.NoError(t, err)
	assert.False(t, revoked, "unknown jti must not be revoked")

	require.NoError(t, set.Revoke(ctx, rec))

	revoked, err = set.IsRevoked(ctx, rec.TokenID)
	require.NoError(t, err)
	assert.True(t, revoked)

	// Only the first revocation of a jti wins.
	assert.ErrorIs(t, set.Revoke(ctx, rec), ErrAlreadyRevoked)

	other, err := set.IsRevoked(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.False(t, other)

	// Already-expired tokens are not stored.
	dead := newRecord(-time.Minute)
	assert.ErrorIs(t, set.Revoke(ctx, dead), ErrExpired)
	revoked, err = set.IsRevoked(ctx, dead.TokenID)
	require.NoError(t, err)
	assert.False(t, revoked)

	_, err = set.Sweep(ctx)
	require.NoError(t, err)
}

func TestMemorySet(t *testing.T) {
	set := NewMemorySet()
	defer set.Close()
	exerciseSet(t, set)
}

func TestMemorySet_ExpiryAndSweep(t *testing.T) {
	ctx := context.Background()
	set := NewMemorySet()

	now := time.Now()
	set.now = func() time.Time { return now }

	short := Record{TokenID: "short", ExpiresAt: now.Add(time.Minute)}
	long := Record{TokenID: "long", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, set.Revoke(ctx, short))
	require.NoError(t, set.Revoke(ctx, long))

	now = now.Add(2 * time.Minute)

	revoked, err := set.IsRevoked(ctx, "short")
	require.NoError(t, err)
	assert.False(t, revoked, "expired entry reads as not revoked before sweep")

	removed, err := set.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, set.Len())

	revoked, err = set.IsRevoked(ctx, "long")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestSyncMap_StoreUnless(t *testing.T) {
	m := newSyncMap[string, int]()
	positive := func(v int) bool { return v > 0 }

	assert.True(t, m.StoreUnless("k", 0, positive))
	assert.True(t, m.StoreUnless("k", 5, positive), "existing value fails keep, so it is replaced")
	assert.False(t, m.StoreUnless("k", 7, positive))

	v, _ := m.Load("k")
	assert.Equal(t, 5, v)
}

func TestMemorySet_ReRevokeAfterExpiry(t *testing.T) {
	ctx := context.Background()
	set := NewMemorySet()

	now := time.Now()
	set.now = func() time.Time { return now }

	require.NoError(t, set.Revoke(ctx, Record{TokenID: "jti", ExpiresAt: now.Add(time.Minute)}))
	now = now.Add(2 * time.Minute)
	assert.NoError(t, set.Revoke(ctx, Record{TokenID: "jti", ExpiresAt: now.Add(time.Minute)}))
}

func TestMemorySet_ConcurrentRevokeHasOneWinner(t *testing.T) {
	set := NewMemorySet()
	rec := newRecord(time.Hour)

	const workers = 16
	var (
		wg  sync.WaitGroup
		won atomic.Int32
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if set.Revoke(context.Background(), rec) == nil {
				won.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), won.Load())
}

func TestBadgerSet(t *testing.T) {
	set, err := OpenBadgerSet("")
	require.NoError(t, err)
	defer set.Close()

	exerciseSet(t, set)
}

func TestBadgerSet_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	set, err := OpenBadgerSet(dir)
	require.NoError(t, err)
	rec := newRecord(time.Hour)
	require.NoError(t, set.Revoke(ctx, rec))
	require.NoError(t, set.Close())

	set, err = OpenBadgerSet(dir)
	require.NoError(t, err)
	defer set.Close()

	revoked, err := set.IsRevoked(ctx, rec.TokenID)
	require.NoError(t, err)
	assert.True(t, revoked)

	records, err := set.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.TokenID, records[0].TokenID)
	assert.Equal(t, "user-1", records[0].UserID)

	_, err = set.Sweep(ctx)
	assert.NoError(t, err)
}

func TestRedisSet(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	set, err := DialRedisSet(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	defer set.Close()

	exerciseSet(t, set)

	rec := newRecord(time.Hour)
	require.NoError(t, set.Revoke(context.Background(), rec))
	got, err := set.Lookup(context.Background(), rec.TokenID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.UserID, got.UserID)

	missing, err := set.Lookup(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSyncMap_DeleteFunc(t *testing.T) {
	m := newSyncMap[string, int]()
	never := func(int) bool { return false }
	for i, k := range []string{"a", "b", "c", "d"} {
		m.StoreUnless(k, i, never)
	}

	removed := m.DeleteFunc(func(_ string, v int) bool { return v%2 == 0 })
	assert.Equal(t, 2, removed)
	assert.Equal(t, 2, m.Len())

	_, ok := m.Load("a")
	assert.False(t, ok)
	v, ok := m.Load("b")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}
