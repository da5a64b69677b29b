package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_pocketbase "github.com/kangruixiang/curator/internal/mocks/pocketbase"
	"github.com/kangruixiang/curator/internal/pocketbase"
)

func startHub(t *testing.T, allowedOrigins []string) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(allowedOrigins)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
}

func TestHub_Broadcast(t *testing.T) {
	hub, srv := startHub(t, nil)

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(Message{Collection: "notes", Action: "update", Record: json.RawMessage(`{"id":"n1"}`)})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var got Message
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "notes", got.Collection)
	assert.Equal(t, "update", got.Action)
	assert.JSONEq(t, `{"id":"n1"}`, string(got.Record))

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_CheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		wantErr bool
	}{
		{name: "no origin", origin: ""},
		{name: "allowed origin", origin: "http://localhost:5173"},
		{name: "unknown origin", origin: "https://evil.example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := startHub(t, []string{"http://localhost:5173"})

			conn, res, err := dial(t, srv, tt.origin)
			if tt.wantErr {
				require.ErrorIs(t, err, websocket.ErrBadHandshake)
				assert.Equal(t, http.StatusForbidden, res.StatusCode)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, conn.Close())
		})
	}
}

func TestHub_Forward(t *testing.T) {
	ctrl := gomock.NewController(t)
	sub := mock_pocketbase.NewMockSubscriber(ctrl)

	handlers := map[string]func(pocketbase.Event){}
	var unsubscribed []string
	for _, topic := range []string{"notes/*", "notebooks/*"} {
		sub.EXPECT().Subscribe(gomock.Any(), topic, gomock.Any()).
			DoAndReturn(func(_ context.Context, topic string, handler func(pocketbase.Event)) (pocketbase.UnsubscribeFunc, error) {
				handlers[topic] = handler
				return func(context.Context) error {
					unsubscribed = append(unsubscribed, topic)
					return nil
				}, nil
			})
	}

	hub := NewHub(nil)
	unsubscribe, err := hub.Forward(context.Background(), sub, "notes", "notebooks")
	require.NoError(t, err)

	handlers["notebooks/*"](pocketbase.Event{Topic: "notebooks/*", Action: "create", Record: json.RawMessage(`{"id":"nb1"}`)})
	select {
	case msg := <-hub.broadcast:
		assert.Equal(t, "notebooks", msg.Collection)
		assert.Equal(t, "create", msg.Action)
	default:
		t.Fatal("expected a queued message")
	}

	require.NoError(t, unsubscribe(context.Background()))
	assert.Equal(t, []string{"notes/*", "notebooks/*"}, unsubscribed)
}

func TestHub_Forward_SubscribeFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	sub := mock_pocketbase.NewMockSubscriber(ctrl)

	unsubscribed := false
	sub.EXPECT().Subscribe(gomock.Any(), "notes/*", gomock.Any()).
		Return(func(context.Context) error {
			unsubscribed = true
			return nil
		}, nil)
	sub.EXPECT().Subscribe(gomock.Any(), "tags/*", gomock.Any()).
		Return(nil, errors.New("no client id"))

	_, err := NewHub(nil).Forward(context.Background(), sub, "notes", "tags")

	assert.Error(t, err)
	assert.True(t, unsubscribed)
}
