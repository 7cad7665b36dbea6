package orders

import (
	"github.com/MarcGrol/shopcheckout/lib/mylog"
	"github.com/MarcGrol/shopcheckout/lib/mypublisher"
	"github.com/MarcGrol/shopcheckout/lib/mystore"
	"github.com/MarcGrol/shopcheckout/lib/mytime"
)

type Service struct {
	orderStore mystore.Store[OrderRecord]
	publisher  mypublisher.Publisher
	nower      mytime.Nower
	logger     mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(orderStore mystore.Store[OrderRecord], nower mytime.Nower, pub mypublisher.Publisher) *Service {
	return &Service{
		orderStore: orderStore,
		publisher:  pub,
		nower:      nower,
		logger:     mylog.New("orders"),
	}
}
