package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haseebdoesdev/go-task-scheduler/internal/events"
)

func TestClient_SubscribeAll(t *testing.T) {
	c := &Client{subscriptions: make(map[events.EventType]bool)}
	c.SubscribeAll()

	for _, et := range []events.EventType{
		events.EventTaskSubmitted,
		events.EventTaskCompleted,
		events.EventWorkerCrashed,
		events.EventPoolSnapshot,
	} {
		assert.True(t, c.IsSubscribed(et))
	}
}

func TestClient_IsSubscribed_EmptyMeansAll(t *testing.T) {
	c := &Client{subscriptions: make(map[events.EventType]bool)}
	assert.True(t, c.IsSubscribed(events.EventTaskCompleted))
}

func TestClient_IsSubscribed_Filtered(t *testing.T) {
	c := &Client{subscriptions: map[events.EventType]bool{events.EventTaskCompleted: true}}
	assert.True(t, c.IsSubscribed(events.EventTaskCompleted))
	assert.False(t, c.IsSubscribed(events.EventTaskFailed))
}
