package mycache

import (
	"context"
	"errors"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache is a read-aside cache in front of a store. A cache failure must never fail the
// operation it speeds up, so callers log and fall through to the store.
type Cache[T any] interface {
	Get(c context.Context, uid string) (T, error)
	Set(c context.Context, uid string, value T) error
	Delete(c context.Context, uid string) error
}

func New[T any](c context.Context, redisAddr string, prefix string) (Cache[T], func(), error) {
	if redisAddr == "" {
		return NewNoopCache[T](), func() {}, nil
	}
	return newRedisCache[T](c, redisAddr, prefix)
}
