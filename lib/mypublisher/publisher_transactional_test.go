package mypublisher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/shopcheckout/lib/myevents"
	"github.com/MarcGrol/shopcheckout/lib/mypubsub"
	"github.com/MarcGrol/shopcheckout/lib/myqueue"
	"github.com/MarcGrol/shopcheckout/lib/mystore"
	"github.com/MarcGrol/shopcheckout/lib/mytime"
)

type cartCleared struct {
	CartUID string
}

func (e cartCleared) GetEventTypeName() string { return "cart.cleared" }
func (e cartCleared) GetAggregateName() string { return e.CartUID }

func TestTransactionalPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("Publish stores envelope and schedules trigger", func(t *testing.T) {
		// setup
		publisher, outbox, _, queue := setup(t, ctrl)

		// given
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(func(c context.Context, task myqueue.Task) error {
			assert.Equal(t, "/pubsub/cart/"+task.UID, task.WebhookURLPath)
			return nil
		})

		// when
		err := outbox.RunInTransaction(context.TODO(), func(c context.Context) error {
			return publisher.Publish(c, "cart", cartCleared{CartUID: "cart_1"})
		})

		// then
		require.NoError(t, err)
		envelopes, err := outbox.List(context.TODO())
		require.NoError(t, err)
		require.Len(t, envelopes, 1)
		assert.Equal(t, "cart.cleared", envelopes[0].EventTypeName)
		assert.Equal(t, "cart_1", envelopes[0].AggregateUID)
		assert.JSONEq(t, `{"CartUID":"cart_1"}`, envelopes[0].EventPayload)
		assert.Equal(t, mytime.ExampleTime, envelopes[0].CreatedAt)
		assert.False(t, envelopes[0].Published)
	})

	t.Run("Same event twice gives one envelope", func(t *testing.T) {
		// setup
		publisher, outbox, _, queue := setup(t, ctrl)

		// given
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		// when
		require.NoError(t, publisher.Publish(context.TODO(), "cart", cartCleared{CartUID: "cart_1"}))
		require.NoError(t, publisher.Publish(context.TODO(), "cart", cartCleared{CartUID: "cart_1"}))

		// then
		envelopes, err := outbox.List(context.TODO())
		require.NoError(t, err)
		assert.Len(t, envelopes, 1)
	})

	t.Run("Trigger publishes pending envelopes once", func(t *testing.T) {
		// setup
		publisher, outbox, pubsub, queue := setup(t, ctrl)
		router := mux.NewRouter()
		publisher.RegisterEndpoints(context.TODO(), router)

		// given
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil).Times(2)
		require.NoError(t, publisher.Publish(context.TODO(), "cart", cartCleared{CartUID: "cart_1"}))
		require.NoError(t, publisher.Publish(context.TODO(), "cart", cartCleared{CartUID: "cart_2"}))
		pubsub.EXPECT().Publish(gomock.Any(), "cart", gomock.Any()).Return(nil).Times(2)

		// when
		request, err := http.NewRequest(http.MethodPut, "/pubsub/cart/abc", nil)
		require.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Contains(t, response.Body.String(), "Published 2 event(s)")
		envelopes, err := outbox.Query(context.TODO(), []mystore.Filter{{Field: "Published", Compare: "=", Value: false}}, "")
		require.NoError(t, err)
		assert.Empty(t, envelopes)
		all, err := outbox.List(context.TODO())
		require.NoError(t, err)
		for _, envelope := range all {
			require.NotNil(t, envelope.PublishedAt)
			assert.Equal(t, mytime.ExampleTime, *envelope.PublishedAt)
		}

		// when
		response = httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Contains(t, response.Body.String(), "Published 0 event(s)")
	})

	t.Run("Failing pubsub keeps envelope pending", func(t *testing.T) {
		// setup
		publisher, outbox, pubsub, queue := setup(t, ctrl)

		// given
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil)
		require.NoError(t, publisher.Publish(context.TODO(), "cart", cartCleared{CartUID: "cart_1"}))
		pubsub.EXPECT().Publish(gomock.Any(), "cart", gomock.Any()).Return(assert.AnError)

		// when
		_, err := publisher.processTrigger(context.TODO(), "cart", "abc")

		// then
		assert.Error(t, err)
		envelopes, err := outbox.List(context.TODO())
		require.NoError(t, err)
		require.Len(t, envelopes, 1)
		assert.False(t, envelopes[0].Published)
	})
}

func setup(t *testing.T, ctrl *gomock.Controller) (*TransactionalPublisher, mystore.Store[myevents.EventEnvelope], *mypubsub.MockPubSub, *myqueue.MockTaskQueuer) {
	outbox, _, err := mystore.NewInMemoryStore[myevents.EventEnvelope](context.TODO())
	require.NoError(t, err)
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
	pubsub := mypubsub.NewMockPubSub(ctrl)
	queue := myqueue.NewMockTaskQueuer(ctrl)

	return newWithOutbox(outbox, pubsub, queue, nower), outbox, pubsub, queue
}
