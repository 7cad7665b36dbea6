package orders

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/shopcheckout/lib/mycontext"
	"github.com/MarcGrol/shopcheckout/lib/myerrors"
	"github.com/MarcGrol/shopcheckout/lib/myhttp"
	"github.com/MarcGrol/shopcheckout/lib/mylog"
)

// GuestUserPrefix marks orders placed without identity. The remainder is the session uid.
const GuestUserPrefix = "guest_"

type webService struct {
	logger  mylog.Logger
	service *Service
}

func NewWebService(service *Service) *webService {
	return &webService{
		logger:  mylog.New("orders"),
		service: service,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/users/{userUID}/orders", s.listOrders()).Methods("GET")
	router.HandleFunc("/users/{userUID}/orders/{chargeID}", s.getOrder()).Methods("GET")
}

func (s *webService) listOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		userUID := mux.Vars(r)["userUID"]
		err := authorize(c, userUID)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		orders, err := s.service.List(c, userUID)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, orders)
	}
}

func (s *webService) getOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		userUID := mux.Vars(r)["userUID"]
		err := authorize(c, userUID)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		order, err := s.service.Get(c, userUID, mux.Vars(r)["chargeID"])
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, order)
	}
}

func authorize(c context.Context, userUID string) error {
	if strings.HasPrefix(userUID, GuestUserPrefix) {
		return nil
	}
	user := mycontext.UserFromContext(c)
	if user.UID != userUID {
		return myerrors.NewAuthenticationError(fmt.Errorf("no access to orders of user %s", userUID))
	}
	return nil
}
