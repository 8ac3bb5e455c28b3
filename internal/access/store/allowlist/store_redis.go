package allowlist

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"flightsurety/pkg/domain"
)

const defaultKey = "flightsurety:authorized_callers"

// RedisStore keeps the allow-list in a Redis set so that several ledger
// processes sharing one deployment see the same trusted callers.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

type RedisOption func(*RedisStore)

// WithKey overrides the set key.
func WithKey(key string) RedisOption {
	return func(s *RedisStore) {
		s.key = key
	}
}

func NewRedis(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, key: defaultKey}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Add(ctx context.Context, id domain.CallerID) error {
	if err := s.client.SAdd(ctx, s.key, id.String()).Err(); err != nil {
		return fmt.Errorf("add authorized caller: %w", err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, id domain.CallerID) error {
	if err := s.client.SRem(ctx, s.key, id.String()).Err(); err != nil {
		return fmt.Errorf("remove authorized caller: %w", err)
	}
	return nil
}

func (s *RedisStore) Contains(ctx context.Context, id domain.CallerID) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.key, id.String()).Result()
	if err != nil {
		return false, fmt.Errorf("check authorized caller: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) List(ctx context.Context) ([]domain.CallerID, error) {
	members, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list authorized callers: %w", err)
	}
	ids := make([]domain.CallerID, 0, len(members))
	for _, m := range members {
		id, err := domain.ParseCallerID(m)
		if err != nil {
			return nil, fmt.Errorf("decode authorized caller %q: %w", m, err)
		}
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b domain.CallerID) int {
		return bytes.Compare(a[:], b[:])
	})
	return ids, nil
}
