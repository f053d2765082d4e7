package storage

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	redisc "MChat/service/storage/redis"
)

// Issued-token allowlist. Login writes the token hash here with the token
// TTL; the connect-time verifier requires the hash to still be present,
// which gives revocation on top of plain JWT expiry.

func tokenKey(userID, hash string) string { return fmt.Sprintf("tok:%s:%s", userID, hash) }
func tokenIdxKey(userID string) string    { return fmt.Sprintf("tokidx:%s", userID) }

type TokenStore struct {
	rdb *redisv9.Client
}

func NewTokenStore() *TokenStore {
	return &TokenStore{rdb: redisc.GetRedis()}
}

// Store records a freshly issued token hash for userID.
func (s *TokenStore) Store(ctx context.Context, userID, hash string, ttl time.Duration) error {
	expireAt := time.Now().Add(ttl)
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, tokenKey(userID, hash), "1", ttl)
	pipe.ZAdd(ctx, tokenIdxKey(userID), redisv9.Z{Score: float64(expireAt.Unix()), Member: hash})
	pipe.Expire(ctx, tokenIdxKey(userID), ttl+time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

// Check reports whether the token hash is still allowlisted for userID.
func (s *TokenStore) Check(ctx context.Context, userID, hash string) (bool, error) {
	n, err := s.rdb.Exists(ctx, tokenKey(userID, hash)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RevokeAll drops every live token for userID (logout-everywhere).
func (s *TokenStore) RevokeAll(ctx context.Context, userID string) error {
	hashes, err := s.rdb.ZRange(ctx, tokenIdxKey(userID), 0, -1).Result()
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	for _, h := range hashes {
		pipe.Del(ctx, tokenKey(userID, h))
	}
	pipe.Del(ctx, tokenIdxKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}
