package counterstore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrExpireScript performs INCR and conditionally EXPIRE in one server-side
// step, so a key can never be created without its window expiry.
var incrExpireScript = redis.NewScript(`
local v = redis.call('INCR', KEYS[1])
if v == 1 then
	redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return v
`)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) IncrementWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	seconds := int(expiry / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	res, err := incrExpireScript.Run(ctx, s.client, []string{key}, seconds).Result()
	if err != nil {
		return 0, err
	}

	v, ok := res.(int64)
	if !ok {
		return 0, errors.New("unexpected script result type")
	}
	return v, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// -1 means no expiry, -2 means missing key
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
