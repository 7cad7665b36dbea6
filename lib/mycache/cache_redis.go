package mycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

const baseTTL = 15 * time.Minute

type RedisCache[T any] struct {
	client  *redis.Client
	prefix  string
	baseTTL time.Duration
}

func newRedisCache[T any](c context.Context, redisAddr string, prefix string) (*RedisCache[T], func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	err := client.Ping(c).Err()
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("error connecting to redis at %s: %w", redisAddr, err)
	}
	return NewRedisCache[T](client, prefix), func() {
		client.Close()
	}, nil
}

func NewRedisCache[T any](client *redis.Client, prefix string) *RedisCache[T] {
	return &RedisCache[T]{
		client:  client,
		prefix:  prefix,
		baseTTL: baseTTL,
	}
}

func (r *RedisCache[T]) Get(c context.Context, uid string) (T, error) {
	var value T

	data, err := r.client.Get(c, r.key(uid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return value, ErrCacheMiss
	}
	if err != nil {
		return value, fmt.Errorf("redis get %s failed: %w", r.key(uid), err)
	}

	err = json.Unmarshal(data, &value)
	if err != nil {
		return value, fmt.Errorf("unmarshal %s failed: %w", r.key(uid), err)
	}

	return value, nil
}

func (r *RedisCache[T]) Set(c context.Context, uid string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", r.key(uid), err)
	}

	// jitter spreads expiry of entries written together
	ttl := r.baseTTL + time.Duration(rand.Intn(5))*time.Minute
	err = r.client.Set(c, r.key(uid), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("redis set %s failed: %w", r.key(uid), err)
	}
	return nil
}

func (r *RedisCache[T]) Delete(c context.Context, uid string) error {
	err := r.client.Del(c, r.key(uid)).Err()
	if err != nil {
		return fmt.Errorf("redis delete %s failed: %w", r.key(uid), err)
	}
	return nil
}

func (r *RedisCache[T]) key(uid string) string {
	return fmt.Sprintf("%s:%s", r.prefix, uid)
}
