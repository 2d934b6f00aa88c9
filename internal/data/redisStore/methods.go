package redisStore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func (s *Store) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.client.Set(ctx, key, value, expiration).Err()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

func (s *Store) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Exists(ctx, key).Result()
	return count > 0, err
}

// Expire refreshes the ttl of key, used to keep active sessions alive.
func (s *Store) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return s.client.Expire(ctx, key, expiration).Err()
}

// for the collection registry

func (s *Store) SetMembers(ctx context.Context, key string) ([]string, error) {
	return s.client.SMembers(ctx, key).Result()
}

// HashGetAll returns an empty map when key does not exist.
func (s *Store) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	return s.client.HGetAll(ctx, key).Result()
}

// DelAndSetRemove deletes key and removes member from setKey in one transaction.
func (s *Store) DelAndSetRemove(ctx context.Context, key string, setKey string, member string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.SRem(ctx, setKey, member)
		return nil
	})
	return err
}

var claimScript = redis.NewScript(`
if redis.call('SADD', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[2], unpack(ARGV, 2))
return 1
`)

// SetAddWithHash adds member to setKey and writes fields to hashKey in one
// step. Nothing is written when member is already in the set.
func (s *Store) SetAddWithHash(ctx context.Context, setKey string, member string, hashKey string, fields map[string]interface{}) (bool, error) {
	args := make([]interface{}, 0, 1+2*len(fields))
	args = append(args, member)
	for k, v := range fields {
		args = append(args, k, v)
	}
	added, err := claimScript.Run(ctx, s.client, []string{setKey, hashKey}, args...).Int()
	return added == 1, err
}
