package orderevents

const (
	TopicName          = "order"
	orderCommittedName = TopicName + ".committed"
)

type OrderCommitted struct {
	OrderUID      string
	UserUID       string
	ChargeID      string
	SessionUID    string
	AmountInCents int64
	NumberOfItems int
}

func (e OrderCommitted) GetEventTypeName() string {
	return orderCommittedName
}

func (e OrderCommitted) GetAggregateName() string {
	return e.OrderUID
}
