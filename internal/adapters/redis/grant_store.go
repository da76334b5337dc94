package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// GrantStore tracks access-code grants in Redis. One key exists per
// (gate identity, code) pair; granting a new code for a gate identity
// first removes every grant that identity held for other codes, so a
// gate identity is only ever cleared for a single code at a time.
type GrantStore struct {
	client redis.UniversalClient
	prefix string
}

// NewGrantStore creates a Redis-backed grant store.
func NewGrantStore(client redis.UniversalClient) *GrantStore {
	return &GrantStore{
		client: client,
		prefix: "access:",
	}
}

func (s *GrantStore) key(gateID, code string) string {
	return s.prefix + gateID + ":" + code
}

// Grant records that gateID passed the gate for code, revoking any
// grants the same gateID held for other codes.
func (s *GrantStore) Grant(ctx context.Context, gateID, code string) error {
	if gateID == "" || code == "" {
		return fmt.Errorf("gate id and code are required")
	}

	if err := s.Revoke(ctx, gateID); err != nil {
		return err
	}
	// Grants do not expire; they are revoked when the code changes.
	return s.client.Set(ctx, s.key(gateID, code), "granted", 0).Err()
}

// HasGrant reports whether gateID currently holds a grant for code.
func (s *GrantStore) HasGrant(ctx context.Context, gateID, code string) (bool, error) {
	if gateID == "" || code == "" {
		return false, nil
	}

	n, err := s.client.Exists(ctx, s.key(gateID, code)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// Revoke removes every grant held by gateID, for any code.
func (s *GrantStore) Revoke(ctx context.Context, gateID string) error {
	if gateID == "" {
		return nil
	}

	pattern := s.prefix + gateID + ":*"
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	var stale []string
	for iter.Next(ctx) {
		stale = append(stale, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}
	return s.client.Del(ctx, stale...).Err()
}
