package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRedisPubSub(t *testing.T) {
	// Test with nil client - should create struct correctly even with nil
	// (actual operations would fail but construction should work)
	pubsub := NewRedisPubSub(nil, 0, 0)

	assert.NotNil(t, pubsub)
	assert.Nil(t, pubsub.client)
	assert.NotNil(t, pubsub.breaker)
	assert.NotNil(t, pubsub.subscribers)
	assert.Len(t, pubsub.subscribers, 0)
}

func TestNewRedisPubSubCustomBreakerTuning(t *testing.T) {
	pubsub := NewRedisPubSub(nil, 10, 5*time.Second)
	assert.NotNil(t, pubsub.breaker)
}

func TestRedisPubSubChannelName(t *testing.T) {
	pubsub := NewRedisPubSub(nil, 0, 0)

	tests := []struct {
		eventType EventType
		expected  string
	}{
		{EventTaskSubmitted, "taskscheduler:events:task.submitted"},
		{EventTaskSelected, "taskscheduler:events:task.selected"},
		{EventTaskCompleted, "taskscheduler:events:task.completed"},
		{EventTaskFailed, "taskscheduler:events:task.failed"},
		{EventTaskRetrying, "taskscheduler:events:task.retrying"},
		{EventTaskTimeout, "taskscheduler:events:task.timeout"},
		{EventTaskCancelled, "taskscheduler:events:task.cancelled"},
		{EventWorkerSpawned, "taskscheduler:events:worker.spawned"},
		{EventWorkerCrashed, "taskscheduler:events:worker.crashed"},
		{EventWorkerRespawned, "taskscheduler:events:worker.respawned"},
		{EventPoolSnapshot, "taskscheduler:events:pool.snapshot"},
	}

	for _, tc := range tests {
		t.Run(string(tc.eventType), func(t *testing.T) {
			channel := pubsub.channelName(tc.eventType)
			assert.Equal(t, tc.expected, channel)
		})
	}
}

func TestRedisPubSubCloseEmptySubscribers(t *testing.T) {
	pubsub := NewRedisPubSub(nil, 0, 0)

	// Should not panic with empty subscribers
	err := pubsub.Close()
	assert.NoError(t, err)
	assert.Len(t, pubsub.subscribers, 0)
}

func TestChannelPrefix(t *testing.T) {
	assert.Equal(t, "taskscheduler:events:", channelPrefix)
}
