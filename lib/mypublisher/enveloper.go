package mypublisher

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/MarcGrol/shopcheckout/lib/myevents"
	"github.com/MarcGrol/shopcheckout/lib/mytime"
)

type enveloper struct {
	nower mytime.Nower
}

func newEnveloper(nower mytime.Nower) enveloper {
	return enveloper{
		nower: nower,
	}
}

func (e enveloper) wrap(topic string, event myevents.Event) (myevents.EventEnvelope, error) {
	jsonPayload, err := json.Marshal(event)
	if err != nil {
		return myevents.EventEnvelope{}, fmt.Errorf("error marshalling event %s: %w", event.GetEventTypeName(), err)
	}
	envelope := myevents.EventEnvelope{
		Topic:         topic,
		AggregateUID:  event.GetAggregateName(),
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(jsonPayload),
	}

	// Same event, same uid: a retried transaction overwrites instead of duplicating
	envelope.UID = checksum(envelope)
	envelope.CreatedAt = e.nower.Now()

	return envelope, nil
}

func checksum(envelope myevents.EventEnvelope) string {
	sha2 := sha256.New()
	for _, part := range []string{envelope.Topic, envelope.AggregateUID, envelope.EventTypeName, envelope.EventPayload} {
		sha2.Write([]byte(part))
		sha2.Write([]byte{0})
	}
	return base64.RawURLEncoding.EncodeToString(sha2.Sum(nil))
}
