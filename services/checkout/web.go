package checkout

import (
	"context"
	"fmt"
	"net/http"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/MarcGrol/shopcheckout/lib/mycontext"
	"github.com/MarcGrol/shopcheckout/lib/myerrors"
	"github.com/MarcGrol/shopcheckout/lib/myhttp"
	"github.com/MarcGrol/shopcheckout/lib/mylog"
	"github.com/MarcGrol/shopcheckout/lib/mymetrics"
	"github.com/MarcGrol/shopcheckout/lib/mypublisher"
	"github.com/MarcGrol/shopcheckout/lib/mystore"
	"github.com/MarcGrol/shopcheckout/lib/mytime"
	"github.com/MarcGrol/shopcheckout/lib/myuuid"
	"github.com/MarcGrol/shopcheckout/services/gateway"
)

type webService struct {
	logger  mylog.Logger
	service *service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(cfg Config, sessionStore mystore.Store[Session], carts CartKeeper, orders OrderCommitter, gw gateway.Gateway, pub mypublisher.Publisher, uuider myuuid.UUIDer, nower mytime.Nower, metrics *mymetrics.CheckoutMetrics) *webService {
	logger := mylog.New("checkout")
	return &webService{
		logger:  logger,
		service: newService(cfg, sessionStore, carts, orders, gw, pub, uuider, nower, metrics, logger),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/checkout", s.startCheckout()).Methods("POST")
	router.HandleFunc("/checkout/{sessionUID}", s.getCheckout()).Methods("GET")
	router.HandleFunc("/checkout/{sessionUID}/authorization", s.requestAuthorization()).Methods("PUT")
	router.HandleFunc("/checkout/{sessionUID}/instrument", s.updateInstrument()).Methods("PUT")
	router.HandleFunc("/checkout/{sessionUID}/submit", s.submit()).Methods("POST")
	router.HandleFunc("/checkout/{sessionUID}", s.abandon()).Methods("DELETE")
}

type startRequest struct {
	CartUID string `form:"cartUid"`
}

// instrumentRequest mirrors the change event of the payment widget
type instrumentRequest struct {
	Empty bool   `form:"empty"`
	Error string `form:"error"`
}

type submitRequest struct {
	PaymentMethodID string `form:"paymentMethodId"`
}

func (s *webService) startCheckout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		req := startRequest{}
		err := parseForm(r, &req)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		session, err := s.service.start(c, req.CartUID, mycontext.UserFromContext(c), myhttp.HostnameWithScheme(r))
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		if session.State == StateEmptyCart {
			http.Redirect(w, r, session.redirectURL(), http.StatusSeeOther)
			return
		}

		responseWriter.Write(c, w, http.StatusCreated, session.View(s.service.currency))
	}
}

func (s *webService) getCheckout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		session, err := s.ownedSession(c, mux.Vars(r)["sessionUID"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, session.View(s.service.currency))
	}
}

func (s *webService) requestAuthorization() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		sessionUID := mux.Vars(r)["sessionUID"]
		_, err := s.ownedSession(c, sessionUID)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		session, err := s.service.requestAuthorization(c, sessionUID)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, session.View(s.service.currency))
	}
}

func (s *webService) updateInstrument() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		sessionUID := mux.Vars(r)["sessionUID"]
		_, err := s.ownedSession(c, sessionUID)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		req := instrumentRequest{}
		err = parseForm(r, &req)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		session, err := s.service.updateInstrument(c, sessionUID, !req.Empty, req.Error)
		if err != nil {
			responseWriter.WriteError(c, w, 3, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, session.View(s.service.currency))
	}
}

func (s *webService) submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		sessionUID := mux.Vars(r)["sessionUID"]
		_, err := s.ownedSession(c, sessionUID)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		req := submitRequest{}
		err = parseForm(r, &req)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		session, err := s.service.submit(c, sessionUID, gateway.Instrument{PaymentMethodID: req.PaymentMethodID})
		if err != nil {
			responseWriter.WriteError(c, w, 3, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, session.View(s.service.currency))
	}
}

func (s *webService) abandon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		sessionUID := mux.Vars(r)["sessionUID"]
		_, err := s.ownedSession(c, sessionUID)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		session, err := s.service.abandon(c, sessionUID)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, session.View(s.service.currency))
	}
}

// ownedSession refuses access to sessions of other users; guest sessions are reachable by uid only
func (s *webService) ownedSession(c context.Context, sessionUID string) (Session, error) {
	session, err := s.service.get(c, sessionUID)
	if err != nil {
		return Session{}, err
	}
	if session.UserUID != "" && session.UserUID != mycontext.UserFromContext(c).UID {
		return Session{}, myerrors.NewAuthenticationError(fmt.Errorf("no access to checkout %s", sessionUID))
	}
	return session, nil
}

func parseForm(r *http.Request, target any) error {
	err := r.ParseForm()
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}
	err = formcodec.NewDecoder().Decode(target, r.Form)
	if err != nil {
		return myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %w", err))
	}
	return nil
}
