package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "catalog:revoked:"

// RedisSet keeps revocations in Redis with EX set to the token's remaining life.
type RedisSet struct {
	cli *redis.Client
	now func() time.Time
}

var _ Set = (*RedisSet)(nil)

// NewRedisSet wraps an existing client. The set owns the client and closes it.
func NewRedisSet(cli *redis.Client) *RedisSet {
	return &RedisSet{cli: cli, now: time.Now}
}

// DialRedisSet connects to addr and verifies the connection with PING.
func DialRedisSet(ctx context.Context, addr, password string, db int) (*RedisSet, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		cli.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRedisSet(cli), nil
}

// Revoke implements Set.
func (s *RedisSet) Revoke(ctx context.Context, rec Record) error {
	remaining, err := ttl(rec, s.now())
	if err != nil {
		return err
	}

	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal revocation: %w", err)
	}
	ok, err := s.cli.SetNX(ctx, redisKeyPrefix+rec.TokenID, val, remaining).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrAlreadyRevoked
	}
	return nil
}

// IsRevoked implements Set.
func (s *RedisSet) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.cli.Exists(ctx, redisKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Lookup returns the stored record for jti, or nil when it is not revoked.
func (s *RedisSet) Lookup(ctx context.Context, jti string) (*Record, error) {
	raw, err := s.cli.Get(ctx, redisKeyPrefix+jti).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("invalid revocation record: %w", err)
	}
	return &rec, nil
}

// Sweep implements Set. Redis expires keys itself.
func (s *RedisSet) Sweep(_ context.Context) (int, error) {
	return 0, nil
}

// Close implements Set.
func (s *RedisSet) Close() error {
	return s.cli.Close()
}
