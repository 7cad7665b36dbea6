package checkout

import (
	"github.com/MarcGrol/shopcheckout/lib/mylog"
	"github.com/MarcGrol/shopcheckout/lib/mymetrics"
	"github.com/MarcGrol/shopcheckout/lib/mypublisher"
	"github.com/MarcGrol/shopcheckout/lib/mystore"
	"github.com/MarcGrol/shopcheckout/lib/mytime"
	"github.com/MarcGrol/shopcheckout/lib/myuuid"
	"github.com/MarcGrol/shopcheckout/services/gateway"
)

type Config struct {
	Currency string
}

type service struct {
	currency     string
	sessionStore mystore.Store[Session]
	carts        CartKeeper
	orders       OrderCommitter
	gateway      gateway.Gateway
	publisher    mypublisher.Publisher
	uuider       myuuid.UUIDer
	nower        mytime.Nower
	metrics      *mymetrics.CheckoutMetrics
	logger       mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(cfg Config, sessionStore mystore.Store[Session], carts CartKeeper, orders OrderCommitter, gw gateway.Gateway, pub mypublisher.Publisher, uuider myuuid.UUIDer, nower mytime.Nower, metrics *mymetrics.CheckoutMetrics, logger mylog.Logger) *service {
	return &service{
		currency:     cfg.Currency,
		sessionStore: sessionStore,
		carts:        carts,
		orders:       orders,
		gateway:      gw,
		publisher:    pub,
		uuider:       uuider,
		nower:        nower,
		metrics:      metrics,
		logger:       logger,
	}
}
