package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haseebdoesdev/go-task-scheduler/internal/events"
	"github.com/haseebdoesdev/go-task-scheduler/internal/logger"
	"github.com/haseebdoesdev/go-task-scheduler/internal/pool"
)

func init() {
	logger.Init("error", false)
}

func newTestHub(t *testing.T) (*Hub, *pool.Pool) {
	t.Helper()
	cfg := pool.DefaultConfig()
	cfg.Capacity = 5
	p := pool.New(cfg)
	return NewHub(p, nil), p
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub, _ := newTestHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub.Run(ctx)
	defer hub.Stop()

	client := &Client{ID: "c1", hub: hub, send: make(chan []byte, 1), subscriptions: map[events.EventType]bool{}}
	hub.Register(client)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Unregister(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastRespectsSubscription(t *testing.T) {
	hub, _ := newTestHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub.Run(ctx)
	defer hub.Stop()

	subscribed := &Client{ID: "subscribed", hub: hub, send: make(chan []byte, 4), subscriptions: map[events.EventType]bool{events.EventTaskCompleted: true}}
	unsubscribed := &Client{ID: "unsubscribed", hub: hub, send: make(chan []byte, 4), subscriptions: map[events.EventType]bool{events.EventTaskFailed: true}}

	hub.Register(subscribed)
	hub.Register(unsubscribed)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(events.NewEvent(events.EventTaskCompleted, map[string]interface{}{"task_id": 1}))

	require.Eventually(t, func() bool { return len(subscribed.send) == 1 }, time.Second, 10*time.Millisecond)
	assert.Empty(t, unsubscribed.send)
}

func TestHub_SnapshotLoopBroadcasts(t *testing.T) {
	hub, _ := newTestHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub.Run(ctx)
	defer hub.Stop()

	client := &Client{ID: "c1", hub: hub, send: make(chan []byte, 4), subscriptions: map[events.EventType]bool{}}
	hub.Register(client)

	require.Eventually(t, func() bool { return len(client.send) > 0 }, 2*time.Second, 50*time.Millisecond)
}

func TestHub_ClientCount_Empty(t *testing.T) {
	hub, _ := newTestHub(t)
	assert.Equal(t, 0, hub.ClientCount())
}
