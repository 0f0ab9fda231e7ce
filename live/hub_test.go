package live

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	var zero T
	return zero
}

func TestSubscribeReceivesPublishedMessages(t *testing.T) {
	hub := NewHub()
	msgs, cancel := hub.Subscribe(4)
	defer cancel()

	hub.Publish(Message{Event: EventTablesChanged})
	PublishAll(hub, EventItemsChanged, EventProductsChanged)

	assert.Equal(t, EventTablesChanged, receive(t, msgs).Event)
	assert.Equal(t, EventItemsChanged, receive(t, msgs).Event)
	assert.Equal(t, EventProductsChanged, receive(t, msgs).Event)
}

func TestCancelClosesSubscription(t *testing.T) {
	hub := NewHub()
	msgs, cancel := hub.Subscribe(1)
	cancel()
	cancel()

	_, ok := <-msgs
	assert.False(t, ok)
	hub.Publish(Message{Event: EventTick})
}

func TestPublishDropsForFullSubscribers(t *testing.T) {
	hub := NewHub()
	msgs, cancel := hub.Subscribe(1)
	defer cancel()

	hub.Publish(Message{Event: EventTablesChanged})
	hub.Publish(Message{Event: EventItemsChanged})

	assert.Equal(t, EventTablesChanged, receive(t, msgs).Event)
	select {
	case m := <-msgs:
		t.Fatalf("unexpected message %v", m)
	default:
	}
}

func TestPublishAllToleratesNilNotifier(t *testing.T) {
	assert.NotPanics(t, func() { PublishAll(nil, EventTick) })
}

func TestWatchRereadsOnMatchingEvents(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reads atomic.Int32
	read := func(context.Context) (int32, error) {
		return reads.Add(1), nil
	}

	snapshot, updates, err := Watch(ctx, hub, []string{EventItemsChanged}, read)
	require.NoError(t, err)
	assert.Equal(t, int32(1), snapshot)

	hub.Publish(Message{Event: EventProductsChanged})
	hub.Publish(Message{Event: EventItemsChanged})
	assert.Equal(t, int32(2), receive(t, updates))

	cancel()
	for range updates {
	}
}

func TestWatchReturnsInitialReadError(t *testing.T) {
	hub := NewHub()
	boom := errors.New("boom")
	_, updates, err := Watch(context.Background(), hub, nil, func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, updates)
}

func TestClockPublishesTicks(t *testing.T) {
	hub := NewHub()
	msgs, cancel := hub.Subscribe(4)
	defer cancel()

	clock := NewClock(hub, 10*time.Millisecond)
	clock.Start()
	defer clock.Stop()

	assert.Equal(t, EventTick, receive(t, msgs).Event)
}

func TestWebsocketClientsReceiveMessages(t *testing.T) {
	hub := NewHub()
	upgrader := websocket.Upgrader{}
	registered := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.RegisterClient(conn)
		close(registered)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		hub.UnregisterClient(conn)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	<-registered
	assert.Equal(t, 1, hub.Clients())

	hub.Publish(Message{Event: EventTablesChanged})

	var msg Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, EventTablesChanged, msg.Event)
}

func TestPublishDropsClientsThatCannotBeWritten(t *testing.T) {
	hub := NewHub()
	upgrader := websocket.Upgrader{}
	registered := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// the connection is gone before anything is published to it
		conn.Close()
		hub.RegisterClient(conn)
		close(registered)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	<-registered
	require.Equal(t, 1, hub.Clients())

	hub.Publish(Message{Event: EventItemsChanged})
	assert.Zero(t, hub.Clients())
}
