package orders

import (
	"fmt"
	"time"

	"github.com/MarcGrol/shopcheckout/services/cart"
)

// OrderRecord is written exactly once per captured charge
type OrderRecord struct {
	UID           string          `json:"uid"`
	UserUID       string          `json:"userUid"`
	ChargeID      string          `json:"chargeId"`
	SessionUID    string          `json:"sessionUid"`
	Items         []cart.LineItem `json:"items" datastore:",noindex"`
	Amount        int64           `json:"amount"`
	ActualAmount  int64           `json:"actual_amount"`
	Savings       int64           `json:"savings"`
	NumberOfItems int             `json:"number_of_items"`
	Created       int64           `json:"created"`
	CommittedAt   time.Time       `json:"committedAt"`
}

func OrderUID(userUID string, chargeID string) string {
	return fmt.Sprintf("users/%s/orders/%s", userUID, chargeID)
}

type CommitRequest struct {
	UserUID               string
	SessionUID            string
	ChargeID              string
	CapturedAmountInCents int64
	CreatedEpoch          int64
	Cart                  cart.Snapshot
}

func (r CommitRequest) validate() error {
	if r.UserUID == "" {
		return fmt.Errorf("missing user")
	}
	if r.ChargeID == "" {
		return fmt.Errorf("missing charge id")
	}
	if r.Cart.IsEmpty() {
		return fmt.Errorf("missing items")
	}
	return nil
}

func newOrderRecord(request CommitRequest, committedAt time.Time) OrderRecord {
	return OrderRecord{
		UID:           OrderUID(request.UserUID, request.ChargeID),
		UserUID:       request.UserUID,
		ChargeID:      request.ChargeID,
		SessionUID:    request.SessionUID,
		Items:         request.Cart.Items,
		Amount:        request.CapturedAmountInCents,
		ActualAmount:  request.Cart.Subtotal,
		Savings:       request.Cart.Savings,
		NumberOfItems: len(request.Cart.Items),
		Created:       request.CreatedEpoch,
		CommittedAt:   committedAt,
	}
}
