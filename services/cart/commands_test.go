package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/shopcheckout/lib/mycache"
	"github.com/MarcGrol/shopcheckout/lib/myerrors"
	"github.com/MarcGrol/shopcheckout/lib/mystore"
	"github.com/MarcGrol/shopcheckout/lib/mytime"
)

func TestCartModel(t *testing.T) {
	cart := Cart{
		UID:                "cart_1",
		Items:              []LineItem{hoody(), hoody(), tennisBalls()},
		DiscountPercentage: 20,
		Version:            3,
	}

	assert.Equal(t, int64(10998), cart.Subtotal())
	assert.Equal(t, int64(2200), cart.Savings())
	assert.Equal(t, int64(8798), cart.DiscountedSubtotal())
	assert.Equal(t, 3, cart.NumberOfItems())

	snapshot := cart.Snapshot()
	cart.Items[0].UnitPrice = 1
	assert.Equal(t, int64(4999), snapshot.Items[0].UnitPrice)
	assert.Equal(t, int64(3), snapshot.Version)
	assert.Equal(t, int64(10998), snapshot.Subtotal)
}

func TestCartService(t *testing.T) {

	t.Run("Unknown cart is empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, _, _ := setupService(t, ctrl)

		// when
		cart, err := sut.Current(context.TODO(), "cart_1")

		// then
		require.NoError(t, err)
		assert.True(t, cart.IsEmpty())
		assert.Equal(t, int64(0), cart.Subtotal())
		assert.Equal(t, int64(0), cart.Version)
	})

	t.Run("Add item", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, store, _ := setupService(t, ctrl)

		// when
		_, err := sut.AddItem(context.TODO(), "cart_1", "product_hoody")
		require.NoError(t, err)
		cart, err := sut.AddItem(context.TODO(), "cart_1", "product_hoody")

		// then
		require.NoError(t, err)
		assert.Equal(t, int64(2), cart.Version)
		assert.Equal(t, int64(9998), cart.Subtotal())
		stored, found, err := store.Get(context.TODO(), "cart_1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, cart, stored)
	})

	t.Run("Add unknown product", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, _, _ := setupService(t, ctrl)

		// when
		_, err := sut.AddItem(context.TODO(), "cart_1", "product_unknown")

		// then
		assert.Equal(t, 400, myerrors.GetHTTPStatus(err))
	})

	t.Run("Remove one unit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, _, _ := setupService(t, ctrl)

		// given
		addItems(t, sut, "cart_1", "product_hoody", "product_tennis_balls", "product_hoody")

		// when
		cart, err := sut.RemoveItem(context.TODO(), "cart_1", "product_hoody")

		// then
		require.NoError(t, err)
		assert.Equal(t, []LineItem{tennisBalls(), hoody()}, cart.Items)
		assert.Equal(t, int64(4), cart.Version)
	})

	t.Run("Remove product not in cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, _, _ := setupService(t, ctrl)

		// given
		addItems(t, sut, "cart_1", "product_hoody")

		// when
		_, err := sut.RemoveItem(context.TODO(), "cart_1", "product_tennis_balls")

		// then
		assert.True(t, myerrors.IsNotFound(err))
		cart, err := sut.Current(context.TODO(), "cart_1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), cart.Version)
	})

	t.Run("Apply discount", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, _, _ := setupService(t, ctrl)

		// given
		addItems(t, sut, "cart_1", "product_tennis_racket")

		// when
		cart, err := sut.ApplyDiscount(context.TODO(), "cart_1", DefaultDiscountPercentage)

		// then
		require.NoError(t, err)
		assert.Equal(t, int64(16900), cart.Subtotal())
		assert.Equal(t, int64(3380), cart.Savings())
		assert.Equal(t, int64(13520), cart.DiscountedSubtotal())
	})

	t.Run("Apply invalid discount", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, _, _ := setupService(t, ctrl)

		// when
		_, err := sut.ApplyDiscount(context.TODO(), "cart_1", 120)

		// then
		assert.Equal(t, 400, myerrors.GetHTTPStatus(err))
	})

	t.Run("Clear if version unchanged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, _, _ := setupService(t, ctrl)

		// given
		addItems(t, sut, "cart_1", "product_hoody", "product_hoody")

		// when
		cleared, err := sut.ClearIfVersion(context.TODO(), "cart_1", 2)

		// then
		require.NoError(t, err)
		assert.True(t, cleared)
		cart, err := sut.Current(context.TODO(), "cart_1")
		require.NoError(t, err)
		assert.True(t, cart.IsEmpty())
		assert.Equal(t, int64(3), cart.Version)
	})

	t.Run("Do not clear if version changed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, _, _ := setupService(t, ctrl)

		// given
		addItems(t, sut, "cart_1", "product_hoody", "product_hoody", "product_tennis_balls")

		// when
		cleared, err := sut.ClearIfVersion(context.TODO(), "cart_1", 2)

		// then
		require.NoError(t, err)
		assert.False(t, cleared)
		cart, err := sut.Current(context.TODO(), "cart_1")
		require.NoError(t, err)
		assert.Equal(t, 3, cart.NumberOfItems())
		assert.Equal(t, int64(3), cart.Version)
	})

	t.Run("Clear is atomic towards concurrent writers", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, _, _ := setupService(t, ctrl)

		// given
		addItems(t, sut, "cart_1", "product_hoody")

		// when
		wg := sync.WaitGroup{}
		results := make([]bool, 5)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				cleared, err := sut.ClearIfVersion(context.TODO(), "cart_1", 1)
				assert.NoError(t, err)
				results[i] = cleared
			}(i)
		}
		wg.Wait()

		// then
		count := 0
		for _, cleared := range results {
			if cleared {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("Cached view is invalidated on change", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, _, mr := setupService(t, ctrl)

		// given
		addItems(t, sut, "cart_1", "product_hoody")
		cart, err := sut.Cached(context.TODO(), "cart_1")
		require.NoError(t, err)
		assert.Equal(t, 1, cart.NumberOfItems())
		assert.True(t, mr.Exists("cart:cart_1"))

		// when
		addItems(t, sut, "cart_1", "product_hoody")

		// then
		assert.False(t, mr.Exists("cart:cart_1"))
		cart, err = sut.Cached(context.TODO(), "cart_1")
		require.NoError(t, err)
		assert.Equal(t, 2, cart.NumberOfItems())
	})

	t.Run("Unavailable cache falls back to store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, _, mr := setupService(t, ctrl)

		// given
		mr.Close()

		// when
		cart, err := sut.AddItem(context.TODO(), "cart_1", "product_hoody")
		require.NoError(t, err)
		cached, err := sut.Cached(context.TODO(), "cart_1")

		// then
		require.NoError(t, err)
		assert.Equal(t, cart, cached)
	})
}

func setupService(t *testing.T, ctrl *gomock.Controller) (*Service, mystore.Store[Cart], *miniredis.Miniredis) {
	store, _, err := mystore.NewInMemoryStore[Cart](context.TODO())
	require.NoError(t, err)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
	})
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	return NewService(store, mycache.NewRedisCache[Cart](client, "cart"), nower), store, mr
}

func addItems(t *testing.T, sut *Service, cartUID string, productUIDs ...string) {
	for _, productUID := range productUIDs {
		_, err := sut.AddItem(context.TODO(), cartUID, productUID)
		require.NoError(t, err)
	}
}

func hoody() LineItem {
	p, _ := lookupProduct("product_hoody")
	return p
}

func tennisBalls() LineItem {
	p, _ := lookupProduct("product_tennis_balls")
	return p
}
