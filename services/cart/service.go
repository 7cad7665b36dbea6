package cart

import (
	"github.com/MarcGrol/shopcheckout/lib/mycache"
	"github.com/MarcGrol/shopcheckout/lib/mylog"
	"github.com/MarcGrol/shopcheckout/lib/mystore"
	"github.com/MarcGrol/shopcheckout/lib/mytime"
)

type Service struct {
	cartStore mystore.Store[Cart]
	cache     mycache.Cache[Cart]
	nower     mytime.Nower
	logger    mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(cartStore mystore.Store[Cart], cache mycache.Cache[Cart], nower mytime.Nower) *Service {
	return &Service{
		cartStore: cartStore,
		cache:     cache,
		nower:     nower,
		logger:    mylog.New("cart"),
	}
}
