package rabbitmq

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAck struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (f *fakeAck) Ack(bool) error {
	f.acked = true
	return nil
}

func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func TestNewEvent(t *testing.T) {
	event, err := NewEvent("task.created", map[string]any{"task_id": 1, "title": "buy milk"})
	require.NoError(t, err)

	_, err = uuid.Parse(event.ID)
	assert.NoError(t, err)
	assert.Equal(t, "task.created", event.Type)
	assert.WithinDuration(t, time.Now(), event.OccurredAt, time.Minute)
	assert.JSONEq(t, `{"task_id":1,"title":"buy milk"}`, string(event.Data))

	_, err = NewEvent("broken", make(chan int))
	assert.Error(t, err)
}

func TestSettle(t *testing.T) {
	event, err := NewEvent("user.registered", map[string]string{"email": "a@x.com"})
	require.NoError(t, err)
	body, err := json.Marshal(event)
	require.NoError(t, err)

	t.Run("handled", func(t *testing.T) {
		ack := &fakeAck{}
		var got Event
		settle(body, 1, ack, func(e Event) error {
			got = e
			return nil
		})
		assert.True(t, ack.acked)
		assert.False(t, ack.nacked)
		assert.Equal(t, event.ID, got.ID)
		assert.Equal(t, "user.registered", got.Type)
	})

	t.Run("handler failure requeues", func(t *testing.T) {
		ack := &fakeAck{}
		settle(body, 2, ack, func(Event) error { return errors.New("boom") })
		assert.False(t, ack.acked)
		assert.True(t, ack.nacked)
		assert.True(t, ack.requeued)
	})

	t.Run("malformed is dropped", func(t *testing.T) {
		ack := &fakeAck{}
		called := false
		settle([]byte("not json"), 3, ack, func(Event) error {
			called = true
			return nil
		})
		assert.False(t, called)
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeued)
	})
}

func TestClientWithoutChannel(t *testing.T) {
	c := &Client{}
	assert.ErrorIs(t, c.PublishEvent("task.created", nil), errNoChannel)
	assert.ErrorIs(t, c.ConsumeEvents(LogActivity), errNoChannel)
	assert.NoError(t, c.Close())
}

func TestLogActivity(t *testing.T) {
	event, err := NewEvent("task.deleted", map[string]int{"task_id": 1})
	require.NoError(t, err)
	assert.NoError(t, LogActivity(event))
}
