package checkout

import (
	"context"
	"fmt"

	"github.com/MarcGrol/shopcheckout/lib/mycontext"
	"github.com/MarcGrol/shopcheckout/lib/myerrors"
	"github.com/MarcGrol/shopcheckout/lib/mylog"
	"github.com/MarcGrol/shopcheckout/services/checkout/checkoutevents"
	"github.com/MarcGrol/shopcheckout/services/gateway"
	"github.com/MarcGrol/shopcheckout/services/orders"
)

// start opens a checkout for a populated cart and requests the first authorization.
// An empty cart yields an unsaved session in EMPTY_CART that redirects to the shop.
func (s *service) start(c context.Context, cartUID string, user mycontext.User, hostname string) (Session, error) {
	if cartUID == "" {
		return Session{}, myerrors.NewInvalidInputErrorf("missing cartUid")
	}

	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Start checkout for cart %s", cartUID)

	crt, err := s.carts.Current(c, cartUID)
	if err != nil {
		return Session{}, err
	}
	if crt.IsEmpty() {
		s.logger.Log(c, cartUID, mylog.SeverityInfo, "Cart %s is empty: nothing to checkout", cartUID)
		return Session{
			CartUID:   cartUID,
			UserUID:   user.UID,
			UserEmail: user.Email,
			State:     StateEmptyCart,
		}, nil
	}

	now := s.nower.Now()
	sessionUID := s.uuider.Create()
	session := Session{
		UID:       sessionUID,
		CartUID:   cartUID,
		UserUID:   user.UID,
		UserEmail: user.Email,
		ReturnURL: fmt.Sprintf("%s/checkout/%s", hostname, sessionUID),
		State:     StateAwaitingAuth,
		CreatedAt: now,
	}

	err = s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		err := s.sessionStore.Put(c, sessionUID, session)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing checkout %s: %w", sessionUID, err))
		}
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	s.metrics.Transitions.WithLabelValues(string(StateAwaitingAuth)).Inc()

	return s.requestAuthorization(c, sessionUID)
}

func (s *service) get(c context.Context, sessionUID string) (Session, error) {
	return s.load(c, sessionUID)
}

func authorizable(state State) bool {
	return state == StateEmptyCart || state == StateAwaitingAuth || state == StateReady
}

// requestAuthorization obtains a handle for the current cart amount. It supersedes the
// previous handle when the cart changed and is a no-op when the handle still matches.
func (s *service) requestAuthorization(c context.Context, sessionUID string) (Session, error) {
	session, err := s.load(c, sessionUID)
	if err != nil {
		return Session{}, err
	}
	if !authorizable(session.State) {
		return Session{}, myerrors.NewConflictError(fmt.Errorf("checkout %s is %s: cannot authorize", sessionUID, session.State))
	}

	crt, err := s.carts.Current(c, session.CartUID)
	if err != nil {
		return Session{}, err
	}

	if crt.IsEmpty() {
		s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Cart %s became empty", session.CartUID)
		return s.update(c, sessionUID, func(c context.Context, session *Session) error {
			err := session.transitionTo(StateEmptyCart)
			if err != nil {
				return err
			}
			session.Authorization = gateway.Authorization{}
			session.ErrorMessage = ""
			return nil
		})
	}

	if session.State == StateReady && session.HasAuthorization() && session.AuthorizedCartVersion == crt.Version {
		return session, nil
	}

	if session.State == StateEmptyCart {
		s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Cart %s populated again", session.CartUID)
		session, err = s.update(c, sessionUID, func(c context.Context, session *Session) error {
			if session.State != StateEmptyCart {
				return nil
			}
			return session.transitionTo(StateAwaitingAuth)
		})
		if err != nil {
			return Session{}, err
		}
	}

	amount := crt.Subtotal()
	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Request authorization of %d for cart %s at version %d", amount, crt.UID, crt.Version)

	authorization, err := s.gateway.CreateAuthorization(c, gateway.AuthorizationRequest{
		Reference:     fmt.Sprintf("%s_%d", sessionUID, crt.Version),
		AmountInCents: amount,
		Currency:      s.currency,
		ShopperEmail:  session.UserEmail,
		ReturnURL:     session.ReturnURL,
	})
	if err == nil && authorization.AmountInCents != amount {
		err = fmt.Errorf("authorization %s is for %d instead of %d", authorization.ID, authorization.AmountInCents, amount)
	}
	if err != nil {
		s.logger.Log(c, sessionUID, mylog.SeverityError, "Error requesting authorization: %s", err)
		return s.update(c, sessionUID, func(c context.Context, session *Session) error {
			if !authorizable(session.State) {
				// overtaken by a submit
				return nil
			}
			err := session.transitionTo(StateAwaitingAuth)
			if err != nil {
				return err
			}
			session.Authorization = gateway.Authorization{}
			session.ErrorMessage = messageAuthorizationFailed
			return nil
		})
	}

	return s.update(c, sessionUID, func(c context.Context, session *Session) error {
		if !authorizable(session.State) {
			return myerrors.NewConflictError(fmt.Errorf("checkout %s is %s: authorization %s not used", sessionUID, session.State, authorization.ID))
		}
		if session.HasAuthorization() && session.AuthorizedCartVersion > crt.Version {
			// a concurrent request authorized a newer cart
			return nil
		}
		err := session.transitionTo(StateReady)
		if err != nil {
			return err
		}
		session.Authorization = authorization
		session.AuthorizedCartVersion = crt.Version
		session.ErrorMessage = ""

		err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.CheckoutStarted{
			ProviderName:    authorization.Provider,
			CheckoutUID:     sessionUID,
			CartUID:         session.CartUID,
			AuthorizationID: authorization.ID,
			AmountInCents:   authorization.AmountInCents,
			Currency:        authorization.Currency,
			ShopperUID:      session.OrderUserUID(),
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %w", err))
		}
		return nil
	})
}

// updateInstrument records the local validation state of the payment widget
func (s *service) updateInstrument(c context.Context, sessionUID string, complete bool, instrumentError string) (Session, error) {
	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Instrument changed: complete=%v error='%s'", complete, instrumentError)

	return s.update(c, sessionUID, func(c context.Context, session *Session) error {
		if session.State != StateAwaitingAuth && session.State != StateReady {
			return myerrors.NewConflictError(fmt.Errorf("checkout %s is %s: instrument cannot change", sessionUID, session.State))
		}
		session.InstrumentComplete = complete
		session.InstrumentError = instrumentError
		return nil
	})
}

// submit confirms the current handle with the instrument and, once captured, commits the
// order and clears the cart. Failed confirmations bring the session back to READY.
func (s *service) submit(c context.Context, sessionUID string, instrument gateway.Instrument) (Session, error) {
	session, err := s.load(c, sessionUID)
	if err != nil {
		return Session{}, err
	}
	if session.State == StateCommitting {
		s.logger.Log(c, sessionUID, mylog.SeverityWarn, "Resume commit of charge %s", session.ChargeID)
		return s.commit(c, sessionUID)
	}
	if session.State == StateCommitted {
		return Session{}, myerrors.NewConflictError(fmt.Errorf("checkout %s already committed", sessionUID))
	}
	if session.State != StateReady {
		return Session{}, myerrors.NewConflictError(fmt.Errorf("checkout %s is %s: cannot submit", sessionUID, session.State))
	}
	if instrument.PaymentMethodID == "" {
		return Session{}, myerrors.NewInvalidInputErrorf("checkout %s: missing payment method", sessionUID)
	}

	crt, err := s.carts.Current(c, session.CartUID)
	if err != nil {
		return Session{}, err
	}

	session, err = s.update(c, sessionUID, func(c context.Context, session *Session) error {
		if session.State == StateCommitted {
			return myerrors.NewConflictError(fmt.Errorf("checkout %s already committed", sessionUID))
		}
		if session.State != StateReady || !session.HasAuthorization() {
			return myerrors.NewConflictError(fmt.Errorf("checkout %s is %s: cannot submit", sessionUID, session.State))
		}
		if !session.InstrumentComplete || session.InstrumentError != "" {
			return myerrors.NewInvalidInputError(fmt.Errorf("checkout %s has no valid payment instrument", sessionUID))
		}
		if crt.Version != session.AuthorizedCartVersion || crt.Subtotal() != session.Authorization.AmountInCents {
			return myerrors.NewConflictError(fmt.Errorf("cart %s changed since authorization: authorize again", crt.UID))
		}
		err := session.transitionTo(StateConfirming)
		if err != nil {
			return err
		}
		session.InFlight = InFlight{
			Authorization: session.Authorization,
			Cart:          crt.Snapshot(),
		}
		session.ConfirmAttempts++
		session.ErrorMessage = ""
		return nil
	})
	if err != nil {
		return Session{}, err
	}

	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Confirm authorization %s (attempt %d)", session.InFlight.Authorization.ID, session.ConfirmAttempts)

	outcome, err := s.gateway.ConfirmAuthorization(c, session.InFlight.Authorization, instrument)
	if err != nil {
		s.logger.Log(c, sessionUID, mylog.SeverityError, "Error confirming authorization %s: %s", session.InFlight.Authorization.ID, err)
		outcome = gateway.Outcome{
			Status:         gateway.OutcomeFailed,
			FailureMessage: err.Error(),
		}
	}

	if !outcome.IsCaptured() {
		return s.confirmationFailed(c, sessionUID, outcome)
	}

	if outcome.CapturedAmountInCents != session.InFlight.Authorization.AmountInCents {
		return s.amountMismatch(c, sessionUID, outcome)
	}

	_, err = s.update(c, sessionUID, func(c context.Context, session *Session) error {
		err := session.transitionTo(StateCommitting)
		if err != nil {
			return err
		}
		session.Outcome = outcome
		session.ChargeID = outcome.ChargeID

		return s.publishCompleted(c, *session, "captured", true)
	})
	if err != nil {
		s.logger.Log(c, sessionUID, mylog.SeverityError, "Charge %s captured but not recorded: %s", outcome.ChargeID, err)
		return Session{}, err
	}

	return s.commit(c, sessionUID)
}

func (s *service) confirmationFailed(c context.Context, sessionUID string, outcome gateway.Outcome) (Session, error) {
	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Confirmation failed: %s", outcome.FailureMessage)

	return s.update(c, sessionUID, func(c context.Context, session *Session) error {
		err := session.transitionTo(StateReady)
		if err != nil {
			return err
		}
		session.InFlight = InFlight{}
		session.Outcome = outcome
		session.ErrorMessage = messageConfirmationFailed

		return s.publishCompleted(c, *session, "failed", false)
	})
}

func (s *service) amountMismatch(c context.Context, sessionUID string, outcome gateway.Outcome) (Session, error) {
	s.logger.Log(c, sessionUID, mylog.SeverityError, "Charge %s captured %d but authorization was for another amount", outcome.ChargeID, outcome.CapturedAmountInCents)

	return s.update(c, sessionUID, func(c context.Context, session *Session) error {
		err := session.transitionTo(StateReconciliationRequired)
		if err != nil {
			return err
		}
		session.Outcome = outcome
		session.ChargeID = outcome.ChargeID
		session.Fatal = true
		session.ErrorMessage = fmt.Sprintf(messageAmountMismatchFmt, outcome.ChargeID)

		return s.publishCompleted(c, *session, "reconciliation_required", false)
	})
}

// commit records the order of the captured charge; repeating it is harmless
func (s *service) commit(c context.Context, sessionUID string) (Session, error) {
	session, err := s.load(c, sessionUID)
	if err != nil {
		return Session{}, err
	}
	if session.State != StateCommitting {
		return Session{}, myerrors.NewConflictError(fmt.Errorf("checkout %s is %s: cannot commit", sessionUID, session.State))
	}

	order, created, err := s.orders.Commit(c, orders.CommitRequest{
		UserUID:               session.OrderUserUID(),
		SessionUID:            sessionUID,
		ChargeID:              session.Outcome.ChargeID,
		CapturedAmountInCents: session.Outcome.CapturedAmountInCents,
		CreatedEpoch:          session.Outcome.CreatedEpoch,
		Cart:                  session.InFlight.Cart,
	})
	if err != nil {
		s.logger.Log(c, sessionUID, mylog.SeverityError, "Error committing order of charge %s: %s", session.Outcome.ChargeID, err)
		return s.update(c, sessionUID, func(c context.Context, session *Session) error {
			err := session.transitionTo(StateReconciliationRequired)
			if err != nil {
				return err
			}
			session.Fatal = true
			session.ErrorMessage = fmt.Sprintf(messagePersistenceFailureFmt, session.Outcome.ChargeID)
			return nil
		})
	}
	if created {
		s.metrics.Orders.Inc()
	}

	// stays COMMITTING until the cart is cleared; a resubmit repeats the commit
	cleared, err := s.carts.ClearIfVersion(c, session.CartUID, session.InFlight.Cart.Version)
	if err != nil {
		s.logger.Log(c, sessionUID, mylog.SeverityError, "Error clearing cart %s after order %s: %s", session.CartUID, order.UID, err)
		return Session{}, myerrors.NewUnavailableError(fmt.Errorf("error clearing cart %s after order %s: %w", session.CartUID, order.UID, err))
	}

	return s.update(c, sessionUID, func(c context.Context, session *Session) error {
		err := session.transitionTo(StateCommitted)
		if err != nil {
			return err
		}
		session.OrderUID = order.UID
		session.CartCleared = cleared
		session.CartUID = ""
		session.Authorization = gateway.Authorization{}
		session.InFlight = InFlight{}
		session.ErrorMessage = ""
		return nil
	})
}

// abandon closes a checkout the shopper navigated away from. The handle simply expires at the provider.
func (s *service) abandon(c context.Context, sessionUID string) (Session, error) {
	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Abandon checkout %s", sessionUID)

	return s.update(c, sessionUID, func(c context.Context, session *Session) error {
		err := session.transitionTo(StateAbandoned)
		if err != nil {
			return err
		}
		session.Authorization = gateway.Authorization{}
		session.ErrorMessage = ""
		return nil
	})
}

func (s *service) publishCompleted(c context.Context, session Session, status string, success bool) error {
	err := s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.CheckoutCompleted{
		ProviderName:   session.InFlight.Authorization.Provider,
		CheckoutUID:    session.UID,
		ChargeID:       session.Outcome.ChargeID,
		Status:         status,
		Success:        success,
		FailureMessage: session.Outcome.FailureMessage,
	})
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error publishing event: %w", err))
	}
	return nil
}

func (s *service) load(c context.Context, sessionUID string) (Session, error) {
	session, found, err := s.sessionStore.Get(c, sessionUID)
	if err != nil {
		return Session{}, myerrors.NewInternalError(fmt.Errorf("error fetching checkout %s: %w", sessionUID, err))
	}
	if !found {
		return Session{}, myerrors.NewNotFoundError(fmt.Errorf("checkout %s not found", sessionUID))
	}
	return session, nil
}

// update applies modifier to the stored session and publishes its events in one transaction
func (s *service) update(c context.Context, sessionUID string, modifier func(c context.Context, session *Session) error) (Session, error) {
	now := s.nower.Now()

	var session Session
	var previousState State
	err := s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent
		var err error
		session, err = s.load(c, sessionUID)
		if err != nil {
			return err
		}
		previousState = session.State

		err = modifier(c, &session)
		if err != nil {
			return err
		}
		session.LastModified = &now

		err = s.sessionStore.Put(c, sessionUID, session)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing checkout %s: %w", sessionUID, err))
		}
		return nil
	})
	if err != nil {
		return Session{}, err
	}

	if session.State != previousState {
		s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Checkout %s: %s -> %s", sessionUID, previousState, session.State)
		s.metrics.Transitions.WithLabelValues(string(session.State)).Inc()
	}

	return session, nil
}
