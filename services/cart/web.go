package cart

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
)

type webService struct {
	logger   mylog.Logger
	service  *Service
	currency string
}

func NewWebService(service *Service, currency string) *webService {
	return &webService{
		logger:   mylog.New("cart"),
		service:  service,
		currency: currency,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/cart/{cartUID}", s.getCart()).Methods("GET")
	router.HandleFunc("/cart/{cartUID}/item", s.addItem()).Methods("POST")
	router.HandleFunc("/cart/{cartUID}/item/{productUID}", s.removeItem()).Methods("DELETE")
	router.HandleFunc("/cart/{cartUID}/discount", s.applyDiscount()).Methods("PUT")
}

type addItemRequest struct {
	ProductUID string `form:"productUid"`
}

type discountRequest struct {
	Percentage *int64 `form:"percentage"`
}

func (s *webService) getCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		cart, err := s.service.Cached(c, mux.Vars(r)["cartUID"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, cart.View(s.currency))
	}
}

func (s *webService) addItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		req := addItemRequest{}
		err := parseForm(r, &req)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}
		if req.ProductUID == "" {
			responseWriter.WriteError(c, w, 2, myerrors.NewInvalidInputErrorf("missing productUid"))
			return
		}

		cart, err := s.service.AddItem(c, mux.Vars(r)["cartUID"], req.ProductUID)
		if err != nil {
			responseWriter.WriteError(c, w, 3, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, cart.View(s.currency))
	}
}

func (s *webService) removeItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		cart, err := s.service.RemoveItem(c, mux.Vars(r)["cartUID"], mux.Vars(r)["productUID"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, cart.View(s.currency))
	}
}

func (s *webService) applyDiscount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		req := discountRequest{}
		err := parseForm(r, &req)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}
		percentage := int64(DefaultDiscountPercentage)
		if req.Percentage != nil {
			percentage = *req.Percentage
		}

		cart, err := s.service.ApplyDiscount(c, mux.Vars(r)["cartUID"], percentage)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, cart.View(s.currency))
	}
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
