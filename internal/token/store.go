package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/eedition-gateway/internal/domain"
)

const (
	recordKeyPrefix = "eedition:token:reader:"
	indexKeyPrefix  = "eedition:token:value:"
)

// Store is the per-reader persistence collaborator for access tokens.
type Store interface {
	// Get returns the stored record for a reader; found is false when no
	// record exists. Logical expiry is the manager's concern, not the store's.
	Get(ctx context.Context, readerID string) (domain.AccessToken, bool, error)
	// Save writes the record and its reverse index atomically. Last write
	// wins for concurrent refreshes of the same reader.
	Save(ctx context.Context, readerID string, tok domain.AccessToken) error
	// LookupReader resolves a token value to the reader it belongs to.
	LookupReader(ctx context.Context, value string) (string, bool, error)
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore returns a Redis-backed token store.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, readerID string) (domain.AccessToken, bool, error) {
	raw, err := s.client.Get(ctx, recordKeyPrefix+readerID).Result()
	if err == redis.Nil {
		return domain.AccessToken{}, false, nil
	}
	if err != nil {
		return domain.AccessToken{}, false, fmt.Errorf("read token record: %w", err)
	}

	var tok domain.AccessToken
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return domain.AccessToken{}, false, fmt.Errorf("decode token record: %w", err)
	}
	return tok, true, nil
}

func (s *redisStore) Save(ctx context.Context, readerID string, tok domain.AccessToken) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token record: %w", err)
	}

	// The reverse index carries a physical TTL so superseded values clean
	// themselves up; the record itself never expires physically, matching
	// the lazy-expiry model.
	indexTTL := time.Until(tok.ExpiresAt)
	if indexTTL <= 0 {
		return errors.New("refusing to store an already expired token")
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, recordKeyPrefix+readerID, raw, 0)
	pipe.Set(ctx, indexKeyPrefix+tok.Value, readerID, indexTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write token record: %w", err)
	}
	return nil
}

func (s *redisStore) LookupReader(ctx context.Context, value string) (string, bool, error) {
	readerID, err := s.client.Get(ctx, indexKeyPrefix+value).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup token value: %w", err)
	}
	return readerID, true, nil
}
