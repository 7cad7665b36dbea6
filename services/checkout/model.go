package checkout

import (
	"fmt"
	"time"

	"github.com/MarcGrol/shopcheckout/lib/myerrors"
	"github.com/MarcGrol/shopcheckout/lib/mymoney"
	"github.com/MarcGrol/shopcheckout/services/cart"
	"github.com/MarcGrol/shopcheckout/services/gateway"
	"github.com/MarcGrol/shopcheckout/services/orders"
)

type State string

const (
	StateEmptyCart              State = "EMPTY_CART"
	StateAwaitingAuth           State = "AWAITING_AUTH"
	StateReady                  State = "READY"
	StateConfirming             State = "CONFIRMING"
	StateCommitting             State = "COMMITTING"
	StateCommitted              State = "COMMITTED"
	StateReconciliationRequired State = "RECONCILIATION_REQUIRED"
	StateAbandoned              State = "ABANDONED"
)

var transitions = map[State][]State{
	StateEmptyCart:    {StateAwaitingAuth, StateAbandoned},
	StateAwaitingAuth: {StateAwaitingAuth, StateReady, StateEmptyCart, StateAbandoned},
	StateReady:        {StateReady, StateAwaitingAuth, StateEmptyCart, StateConfirming, StateAbandoned},
	StateConfirming:   {StateReady, StateCommitting, StateReconciliationRequired},
	StateCommitting:   {StateCommitted, StateReconciliationRequired},
}

func (s State) canTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

const (
	messageConfirmationFailed     = "Payment not proceed. Please try again"
	messageAuthorizationFailed    = "Payment is currently unavailable. Please try again later"
	messagePersistenceFailureFmt  = "Your payment %s was received but your order could not be saved. Please contact support"
	messageAmountMismatchFmt      = "Your payment %s does not match your order. Please contact support"
	guestDeliveryContact          = "Guest"
	emptyCartRedirectURL          = "/"
	orderConfirmationRedirectPath = "/users/%s/orders/%s"
)

// InFlight binds a confirmation to the handle and cart version it was issued for
type InFlight struct {
	Authorization gateway.Authorization
	Cart          cart.Snapshot
}

type Session struct {
	UID                   string
	CartUID               string
	UserUID               string
	UserEmail             string
	ReturnURL             string
	State                 State
	Authorization         gateway.Authorization
	AuthorizedCartVersion int64
	InFlight              InFlight
	Outcome               gateway.Outcome
	InstrumentComplete    bool
	InstrumentError       string
	ErrorMessage          string
	Fatal                 bool
	ChargeID              string
	OrderUID              string
	CartCleared           bool
	ConfirmAttempts       int
	CreatedAt             time.Time
	LastModified          *time.Time
}

func (s *Session) transitionTo(next State) error {
	if !s.State.canTransitionTo(next) {
		return myerrors.NewConflictError(fmt.Errorf("checkout %s cannot go from %s to %s", s.UID, s.State, next))
	}
	s.State = next
	return nil
}

func (s Session) HasAuthorization() bool {
	return !s.Authorization.IsZero()
}

func (s Session) SubmitEnabled() bool {
	return s.State == StateReady && s.HasAuthorization() && s.InstrumentComplete && s.InstrumentError == ""
}

// OrderUserUID is the owner of the order: the user or, without identity, the session itself
func (s Session) OrderUserUID() string {
	if s.UserUID == "" {
		return orders.GuestUserPrefix + s.UID
	}
	return s.UserUID
}

func (s Session) redirectURL() string {
	switch s.State {
	case StateEmptyCart:
		return emptyCartRedirectURL
	case StateCommitted:
		return fmt.Sprintf(orderConfirmationRedirectPath, s.OrderUserUID(), s.ChargeID)
	default:
		return ""
	}
}

type View struct {
	UID             string `json:"uid"`
	CartUID         string `json:"cartUid,omitempty"`
	State           State  `json:"state"`
	ErrorMessage    string `json:"errorMessage,omitempty"`
	InstrumentError string `json:"instrumentError,omitempty"`
	Fatal           bool   `json:"fatal"`
	SubmitEnabled   bool   `json:"submitEnabled"`
	ClientSecret    string `json:"clientSecret,omitempty"`
	AmountInCents   int64  `json:"amountInCents"`
	FormattedAmount string `json:"formattedAmount"`
	DeliveryContact string `json:"deliveryContact"`
	ChargeID        string `json:"chargeId,omitempty"`
	OrderUID        string `json:"orderUid,omitempty"`
	RedirectURL     string `json:"redirectUrl,omitempty"`
}

func (s Session) View(currency string) View {
	deliveryContact := s.UserEmail
	if deliveryContact == "" {
		deliveryContact = guestDeliveryContact
	}
	amount := s.Authorization.AmountInCents
	if s.State == StateCommitted || s.State == StateReconciliationRequired {
		amount = s.Outcome.CapturedAmountInCents
	}
	return View{
		UID:             s.UID,
		CartUID:         s.CartUID,
		State:           s.State,
		ErrorMessage:    s.ErrorMessage,
		InstrumentError: s.InstrumentError,
		Fatal:           s.Fatal,
		SubmitEnabled:   s.SubmitEnabled(),
		ClientSecret:    s.Authorization.ClientSecret,
		AmountInCents:   amount,
		FormattedAmount: mymoney.Format(amount, currency),
		DeliveryContact: deliveryContact,
		ChargeID:        s.ChargeID,
		OrderUID:        s.OrderUID,
		RedirectURL:     s.redirectURL(),
	}
}
