package orders

import (
	"context"
	"fmt"
	"sort"

	"github.com/MarcGrol/shopcheckout/lib/myerrors"
	"github.com/MarcGrol/shopcheckout/lib/mylog"
	"github.com/MarcGrol/shopcheckout/lib/mystore"
	"github.com/MarcGrol/shopcheckout/services/orders/orderevents"
)

// Commit records the order of a captured charge. Committing the same charge again returns
// the existing record and reports created=false.
func (s *Service) Commit(c context.Context, request CommitRequest) (OrderRecord, bool, error) {
	err := request.validate()
	if err != nil {
		return OrderRecord{}, false, myerrors.NewInvalidInputError(fmt.Errorf("error committing order of charge %s: %w", request.ChargeID, err))
	}

	orderUID := OrderUID(request.UserUID, request.ChargeID)
	s.logger.Log(c, request.SessionUID, mylog.SeverityInfo, "Commit order %s", orderUID)

	var order OrderRecord
	created := false
	err = s.orderStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent
		existing, found, err := s.orderStore.Get(c, orderUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching order %s: %w", orderUID, err))
		}
		if found {
			order = existing
			created = false
			return nil
		}

		order = newOrderRecord(request, s.nower.Now())
		err = s.orderStore.Put(c, orderUID, order)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing order %s: %w", orderUID, err))
		}

		err = s.publisher.Publish(c, orderevents.TopicName, orderevents.OrderCommitted{
			OrderUID:      orderUID,
			UserUID:       order.UserUID,
			ChargeID:      order.ChargeID,
			SessionUID:    order.SessionUID,
			AmountInCents: order.Amount,
			NumberOfItems: order.NumberOfItems,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing order %s: %w", orderUID, err))
		}
		created = true

		return nil
	})
	if err != nil {
		return OrderRecord{}, false, err
	}

	if !created {
		s.logger.Log(c, request.SessionUID, mylog.SeverityInfo, "Order %s already existed", orderUID)
	}

	return order, created, nil
}

// List returns the orders of a user, newest first
func (s *Service) List(c context.Context, userUID string) ([]OrderRecord, error) {
	s.logger.Log(c, userUID, mylog.SeverityInfo, "Fetch orders of user %s", userUID)

	orders, err := s.orderStore.Query(c, []mystore.Filter{{Field: "UserUID", Compare: "=", Value: userUID}}, "-Created")
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error fetching orders of user %s: %w", userUID, err))
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Created > orders[j].Created
	})

	return orders, nil
}

func (s *Service) Get(c context.Context, userUID string, chargeID string) (OrderRecord, error) {
	orderUID := OrderUID(userUID, chargeID)
	s.logger.Log(c, userUID, mylog.SeverityInfo, "Fetch order %s", orderUID)

	order, found, err := s.orderStore.Get(c, orderUID)
	if err != nil {
		return OrderRecord{}, myerrors.NewInternalError(fmt.Errorf("error fetching order %s: %w", orderUID, err))
	}
	if !found {
		return OrderRecord{}, myerrors.NewNotFoundError(fmt.Errorf("order %s not found", orderUID))
	}

	return order, nil
}
