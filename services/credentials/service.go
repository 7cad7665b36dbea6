package credentials

import (
	"github.com/MarcGrol/shopcheckout/lib/mylog"
	"github.com/MarcGrol/shopcheckout/lib/mypublisher"
	"github.com/MarcGrol/shopcheckout/lib/mystore"
	"github.com/MarcGrol/shopcheckout/lib/mytime"
	"github.com/MarcGrol/shopcheckout/lib/myuuid"
	"github.com/MarcGrol/shopcheckout/lib/myvault"
	"github.com/MarcGrol/shopcheckout/services/gateway"
)

type service struct {
	providers    providers
	sessionStore mystore.Store[ConnectSession]
	vault        myvault.VaultReadWriter[gateway.Token]
	nower        mytime.Nower
	uuider       myuuid.UUIDer
	publisher    mypublisher.Publisher
	logger       mylog.Logger
}

func newService(providers providers, sessionStore mystore.Store[ConnectSession], vault myvault.VaultReadWriter[gateway.Token], nower mytime.Nower, uuider myuuid.UUIDer, pub mypublisher.Publisher, logger mylog.Logger) *service {
	return &service{
		providers:    providers,
		sessionStore: sessionStore,
		vault:        vault,
		nower:        nower,
		uuider:       uuider,
		publisher:    pub,
		logger:       logger,
	}
}
