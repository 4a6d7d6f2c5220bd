package eventhub_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"actionflow/backend/internal/config"
	"actionflow/backend/internal/eventhub"
	"actionflow/backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T) (*eventhub.ManagerService, context.CancelFunc) {
	hub := eventhub.NewManagerService(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func TestManager_RegisterUnregister(t *testing.T) {
	hub, _ := startHub(t)
	client := newMockClient(1, 10, 1)

	require.True(t, hub.Register(client))
	assert.Eventually(t, func() bool { return hub.Len(1) == 1 }, time.Second, 5*time.Millisecond)

	hub.Unregister(client)
	assert.Eventually(t, func() bool { return hub.Len(1) == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, client.IsClosed())
}

func TestManager_BroadcastIsScopedByOrganization(t *testing.T) {
	hub, _ := startHub(t)
	own := newMockClient(1, 10, 4)
	foreign := newMockClient(2, 20, 4)
	hub.Register(own)
	hub.Register(foreign)

	hub.Publish(models.ComplaintEvent{Type: models.EventFiled, OrgID: 1, ComplaintID: "CMP-AB12-0001"})

	select {
	case ev := <-own.send:
		assert.Equal(t, "CMP-AB12-0001", ev.ComplaintID)
	case <-time.After(time.Second):
		t.Fatal("own organization did not receive the event")
	}
	select {
	case ev := <-foreign.send:
		t.Fatalf("foreign organization received %v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_SlowClientIsDropped(t *testing.T) {
	hub, _ := startHub(t)
	slow := newMockClient(1, 10, 1)
	hub.Register(slow)

	hub.Publish(models.ComplaintEvent{OrgID: 1, ComplaintID: "first"})
	hub.Publish(models.ComplaintEvent{OrgID: 1, ComplaintID: "second"})

	assert.Eventually(t, slow.IsClosed, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, hub.Len(1))
}

func TestManager_StopClosesClients(t *testing.T) {
	hub, cancel := startHub(t)
	client := newMockClient(1, 10, 1)
	hub.Register(client)
	assert.Eventually(t, func() bool { return hub.Len(1) == 1 }, time.Second, 5*time.Millisecond)

	cancel()

	assert.Eventually(t, client.IsClosed, time.Second, 5*time.Millisecond)
	assert.False(t, hub.Register(newMockClient(1, 11, 1)))
	hub.Unregister(client)
}

func TestPubSubListener_ForwardsEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	hub, _ := startHub(t)
	client := newMockClient(3, 30, 4)
	hub.Register(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartPubSubListener(ctx, rdb))

	payload, _ := json.Marshal(models.ComplaintEvent{Type: models.EventAutoClosed, OrgID: 3, ComplaintID: "CMP-AB12-0002"})
	require.NoError(t, rdb.Publish(ctx, config.ComplaintEventsChannel, "not json").Err())
	require.NoError(t, rdb.Publish(ctx, config.ComplaintEventsChannel, payload).Err())

	select {
	case ev := <-client.send:
		assert.Equal(t, models.EventAutoClosed, ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("event not forwarded")
	}
}

func TestWebSocketClient_ReceivesEvents(t *testing.T) {
	hub, _ := startHub(t)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := eventhub.NewWebSocketClient(hub, conn, 5, 50, zap.NewNop())
		if hub.Register(c) {
			c.Run()
		}
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Len(5) == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(models.ComplaintEvent{Type: models.EventResolved, OrgID: 5, ComplaintID: "CMP-AB12-0003"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev models.ComplaintEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "CMP-AB12-0003", ev.ComplaintID)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Len(5) == 0 }, 2*time.Second, 10*time.Millisecond)
}
