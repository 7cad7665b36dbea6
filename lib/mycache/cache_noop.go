package mycache

import "context"

type noopCache[T any] struct{}

func NewNoopCache[T any]() Cache[T] {
	return noopCache[T]{}
}

func (noopCache[T]) Get(c context.Context, uid string) (T, error) {
	var zero T
	return zero, ErrCacheMiss
}

func (noopCache[T]) Set(c context.Context, uid string, value T) error {
	return nil
}

func (noopCache[T]) Delete(c context.Context, uid string) error {
	return nil
}
