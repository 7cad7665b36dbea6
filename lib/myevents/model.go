package myevents

import "time"

// EventEnvelope is the outbox record of one event. It is written in the same transaction
// as the state change that caused the event and published afterwards.
type EventEnvelope struct {
	UID           string
	CreatedAt     time.Time
	Topic         string
	AggregateUID  string
	EventTypeName string
	EventPayload  string `datastore:",noindex"`
	Published     bool
	PublishedAt   *time.Time `json:",omitempty"`
}

func (e EventEnvelope) IsPending() bool {
	return !e.Published
}

// Event is implemented by every domain event. The aggregate name is the uid of the
// checkout session, order or connect session the event is about.
type Event interface {
	GetEventTypeName() string
	GetAggregateName() string
}
