package credentials

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/shopcheckout/lib/mycontext"
	"github.com/MarcGrol/shopcheckout/lib/myerrors"
	"github.com/MarcGrol/shopcheckout/lib/myhttp"
	"github.com/MarcGrol/shopcheckout/lib/mylog"
	"github.com/MarcGrol/shopcheckout/lib/mypublisher"
	"github.com/MarcGrol/shopcheckout/lib/mystore"
	"github.com/MarcGrol/shopcheckout/lib/mytime"
	"github.com/MarcGrol/shopcheckout/lib/myuuid"
	"github.com/MarcGrol/shopcheckout/lib/myvault"
	"github.com/MarcGrol/shopcheckout/services/gateway"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(cfg Config, sessionStore mystore.Store[ConnectSession], vault myvault.VaultReadWriter[gateway.Token], nower mytime.Nower, uuider myuuid.UUIDer, pub mypublisher.Publisher) (*webService, error) {
	providers, err := newProviders(cfg)
	if err != nil {
		return nil, err
	}
	logger := mylog.New("credentials")
	return &webService{
		service: newService(providers, sessionStore, vault, nower, uuider, pub, logger),
		logger:  logger,
	}, nil
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/credentials", s.statusPage()).Methods("GET")
	router.HandleFunc("/credentials/done", s.donePage()).Methods("GET")
	router.HandleFunc("/credentials/{providerName}/connect", s.connectPage()).Methods("POST")
	router.HandleFunc("/credentials/{providerName}/refresh", s.refreshPage()).Methods("GET") // cron only does get
	router.HandleFunc("/credentials/{providerName}/refresh", s.refreshPage()).Methods("POST")
}

func (s *webService) statusPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		statuses, err := s.service.status(c)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, statuses)
	}
}

func (s *webService) connectPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		authURL, err := s.service.start(c, mux.Vars(r)["providerName"], r.FormValue("returnURL"), myhttp.HostnameWithScheme(r))
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		http.Redirect(w, r, authURL, http.StatusSeeOther)
	}
}

func (s *webService) donePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		query := r.URL.Query()
		if errorCode := query.Get("error"); errorCode != "" {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("%s (%s)", errorCode, query.Get("error_description"))))
			return
		}

		sessionUID := query.Get("state")
		if sessionUID == "" {
			responseWriter.WriteError(c, w, 2, myerrors.NewInvalidInputErrorf("missing state"))
			return
		}

		code := query.Get("code")
		if code == "" {
			responseWriter.WriteError(c, w, 3, myerrors.NewInvalidInputErrorf("missing code"))
			return
		}

		returnURL, err := s.service.done(c, sessionUID, code, myhttp.HostnameWithScheme(r))
		if err != nil {
			responseWriter.WriteError(c, w, 4, err)
			return
		}

		http.Redirect(w, r, returnURL, http.StatusSeeOther)
	}
}

func (s *webService) refreshPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		status, err := s.service.refresh(c, mux.Vars(r)["providerName"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, status)
	}
}
