package checkoutevents

const (
	TopicName             = "checkout"
	checkoutStartedName   = TopicName + ".started"
	checkoutCompletedName = TopicName + ".completed"
)

// CheckoutStarted is published for every authorization obtained, including re-authorizations
// after a cart change
type CheckoutStarted struct {
	ProviderName    string
	CheckoutUID     string
	CartUID         string
	AuthorizationID string
	AmountInCents   int64
	Currency        string
	ShopperUID      string
}

func (e CheckoutStarted) GetEventTypeName() string {
	return checkoutStartedName
}

func (e CheckoutStarted) GetAggregateName() string {
	return e.CheckoutUID
}

type CheckoutCompleted struct {
	ProviderName   string
	CheckoutUID    string
	ChargeID       string
	Status         string
	Success        bool
	FailureMessage string
}

func (e CheckoutCompleted) GetEventTypeName() string {
	return checkoutCompletedName
}

func (e CheckoutCompleted) GetAggregateName() string {
	return e.CheckoutUID
}
