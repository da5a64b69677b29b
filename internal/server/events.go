package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/kangruixiang/curator/internal/pocketbase"
)

const broadcastBuffer = 256

// Message is a record change pushed to websocket clients.
type Message struct {
	Collection string          `json:"collection"`
	Action     string          `json:"action"`
	Record     json.RawMessage `json:"record,omitempty"`
}

// Hub fans realtime record changes out to every connected websocket client.
// All writes to the connections happen on the Run goroutine.
type Hub struct {
	upgrader   websocket.Upgrader
	clients    map[*websocket.Conn]bool
	broadcast  chan Message
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a Hub that accepts websocket connections from allowedOrigins.
// Requests without an Origin header, such as CLI clients, are always accepted.
func NewHub(allowedOrigins []string) *Hub {
	allowed := originSet(allowedOrigins)
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan Message, broadcastBuffer),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is done, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for conn := range h.clients {
				_ = conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.drop(conn)

		case msg := <-h.broadcast:
			h.mu.RLock()
			var failed []*websocket.Conn
			for conn := range h.clients {
				if err := conn.WriteJSON(msg); err != nil {
					slog.Default().Warn("websocket write failed", slog.Any("error", err))
					failed = append(failed, conn)
				}
			}
			h.mu.RUnlock()
			for _, conn := range failed {
				h.drop(conn)
			}
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		_ = conn.Close()
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every client. Messages are dropped while the queue is full.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		slog.Default().Warn("websocket broadcast queue full, dropping message",
			slog.String("collection", msg.Collection),
			slog.String("action", msg.Action))
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an error status.
		slog.Default().Debug("websocket upgrade failed", slog.Any("error", err))
		return
	}

	select {
	case h.register <- conn:
	case <-h.done:
		_ = conn.Close()
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Forward subscribes to every record of collections and broadcasts each event.
// The returned function removes all of the subscriptions.
func (h *Hub) Forward(ctx context.Context, sub pocketbase.Subscriber, collections ...string) (pocketbase.UnsubscribeFunc, error) {
	var unsubs []pocketbase.UnsubscribeFunc
	unsubscribe := func(ctx context.Context) error {
		var errs []error
		for _, unsub := range unsubs {
			if err := unsub(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	for _, collection := range collections {
		topic := collection + "/*"
		unsub, err := sub.Subscribe(ctx, topic, func(e pocketbase.Event) {
			h.Broadcast(Message{
				Collection: strings.TrimSuffix(e.Topic, "/*"),
				Action:     e.Action,
				Record:     e.Record,
			})
		})
		if err != nil {
			_ = unsubscribe(context.Background())
			return nil, fmt.Errorf("subscriber.Subscribe(%s) > %w", topic, err)
		}
		unsubs = append(unsubs, unsub)
	}
	return unsubscribe, nil
}
