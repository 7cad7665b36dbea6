package checkout

import (
	"context"

	"github.com/MarcGrol/shopcheckout/services/cart"
	"github.com/MarcGrol/shopcheckout/services/orders"
)

//go:generate mockgen -source=collaborators.go -package checkout -destination collaborators_mock.go CartKeeper,OrderCommitter
type CartKeeper interface {
	Current(c context.Context, cartUID string) (cart.Cart, error)
	ClearIfVersion(c context.Context, cartUID string, version int64) (bool, error)
}

type OrderCommitter interface {
	Commit(c context.Context, request orders.CommitRequest) (orders.OrderRecord, bool, error)
}
