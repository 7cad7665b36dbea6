package mystore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type order struct {
	UID     string
	UserUID string
	Amount  int64
}

var (
	order1 = order{UID: "ch_1", UserUID: "u1", Amount: 4999}
	order2 = order{UID: "ch_2", UserUID: "u1", Amount: 1000}
	order3 = order{UID: "ch_3", UserUID: "u2", Amount: 2500}
)

func TestStore(t *testing.T) {
	c := context.TODO()
	store, cleanup, err := NewInMemoryStore[order](c)
	require.NoError(t, err)
	defer cleanup()

	t.Run("Get not found", func(t *testing.T) {
		_, found, err := store.Get(c, order1.UID)
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Put", func(t *testing.T) {
		assert.NoError(t, store.Put(c, order1.UID, order1))
		assert.NoError(t, store.Put(c, order2.UID, order2))
		assert.NoError(t, store.Put(c, order3.UID, order3))
	})

	t.Run("Get found", func(t *testing.T) {
		o, found, err := store.Get(c, order1.UID)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, order1, o)
	})

	t.Run("List", func(t *testing.T) {
		all, err := store.List(c)
		assert.NoError(t, err)
		assert.ElementsMatch(t, []order{order1, order2, order3}, all)
	})

	t.Run("Query with filter and descending order", func(t *testing.T) {
		found, err := store.Query(c, []Filter{{Field: "UserUID", Compare: "=", Value: "u1"}}, "-Amount")
		assert.NoError(t, err)
		assert.Equal(t, []order{order1, order2}, found)
	})

	t.Run("Query with unsupported filter", func(t *testing.T) {
		_, err := store.Query(c, []Filter{{Field: "Amount", Compare: ">", Value: int64(1)}}, "")
		assert.Error(t, err)
	})
}

func TestTransaction(t *testing.T) {
	c := context.TODO()

	t.Run("Commit", func(t *testing.T) {
		store, _, _ := NewInMemoryStore[order](c)

		err := store.RunInTransaction(c, func(c context.Context) error {
			return store.Put(c, order1.UID, order1)
		})
		assert.NoError(t, err)

		_, found, _ := store.Get(c, order1.UID)
		assert.True(t, found)
	})

	t.Run("Rollback on error", func(t *testing.T) {
		store, _, _ := NewInMemoryStore[order](c)

		err := store.RunInTransaction(c, func(c context.Context) error {
			err := store.Put(c, order1.UID, order1)
			if err != nil {
				return err
			}
			return fmt.Errorf("write failed")
		})
		assert.Error(t, err)

		_, found, _ := store.Get(c, order1.UID)
		assert.False(t, found)
	})

	t.Run("Nested transactions on different stores", func(t *testing.T) {
		store, _, _ := NewInMemoryStore[order](c)
		other, _, _ := NewInMemoryStore[order](c)

		err := store.RunInTransaction(c, func(c context.Context) error {
			err := store.Put(c, order1.UID, order1)
			if err != nil {
				return err
			}
			return other.RunInTransaction(c, func(c context.Context) error {
				return other.Put(c, order2.UID, order2)
			})
		})
		assert.NoError(t, err)

		_, found, _ := other.Get(c, order2.UID)
		assert.True(t, found)
	})

	t.Run("Concurrent read-before-write creates once", func(t *testing.T) {
		store, _, _ := NewInMemoryStore[order](c)
		created := 0
		mutex := sync.Mutex{}

		wg := sync.WaitGroup{}
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = store.RunInTransaction(c, func(c context.Context) error {
					_, found, err := store.Get(c, order1.UID)
					if err != nil || found {
						return err
					}
					mutex.Lock()
					created++
					mutex.Unlock()
					return store.Put(c, order1.UID, order1)
				})
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, created)
	})
}
