package myqueue

import (
	"context"
)

type Task struct {
	UID            string
	WebhookURLPath string
	Payload        []byte
}

var New func(c context.Context) (TaskQueuer, func(), error)

//go:generate mockgen -source=api.go -package myqueue -destination queuer_mock.go TaskQueuer
type TaskQueuer interface {
	// Enqueue schedules a PUT on WebhookURLPath. Enqueueing the same task uid twice is not an error.
	Enqueue(c context.Context, task Task) error
}
