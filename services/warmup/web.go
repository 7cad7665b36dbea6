package warmup

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/shopcheckout/lib/mycontext"
	"github.com/MarcGrol/shopcheckout/lib/myerrors"
	"github.com/MarcGrol/shopcheckout/lib/myhttp"
	"github.com/MarcGrol/shopcheckout/lib/mylog"
	"github.com/MarcGrol/shopcheckout/lib/myvault"
	"github.com/MarcGrol/shopcheckout/services/gateway"
)

type webService struct {
	logger       mylog.Logger
	vault        myvault.VaultReader[gateway.Token]
	providerName string
}

// Use dependency injection to isolate the infrastructure and ease testing
func NewWebService(vault myvault.VaultReader[gateway.Token], providerName string) *webService {
	return &webService{
		logger:       mylog.New("warmup"),
		vault:        vault,
		providerName: providerName,
	}
}

func (s webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/_ah/warmup", s.warmupPage()).Methods("GET")
}

// warmupPage opens the store connection before the first checkout needs the gateway credentials
func (s *webService) warmupPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		_, found, err := s.vault.Get(c, myvault.TokenUID(s.providerName))
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewUnavailableError(err))
			return
		}
		s.logger.Log(c, "", mylog.SeverityInfo, "Warmed up: access token for %s present: %v", s.providerName, found)

		responseWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed warmup request",
		})
	}
}
