package pocketbase

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	realtimePath      = "/api/realtime"
	connectEvent      = "PB_CONNECT"
	reconnectInterval = 2 * time.Second
)

// realtimeConn is one SSE connection shared by every subscription of a Client.
type realtimeConn struct {
	client *Client
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	clientID  string
	ready     chan struct{}
	handlers  map[string]map[string]func(Event)
	connected bool
}

// Subscribe registers handler for topic ("{collection}/*" or "{collection}/{id}").
// The first subscription opens the SSE connection; the last unsubscribe closes it.
func (c *Client) Subscribe(ctx context.Context, topic string, handler func(Event)) (UnsubscribeFunc, error) {
	rt := c.realtimeConn()

	if err := rt.waitReady(ctx); err != nil {
		return nil, err
	}

	handleID := uuid.NewString()
	rt.mu.Lock()
	isNewTopic := len(rt.handlers[topic]) == 0
	if rt.handlers[topic] == nil {
		rt.handlers[topic] = map[string]func(Event){}
	}
	rt.handlers[topic][handleID] = handler
	rt.mu.Unlock()

	if isNewTopic {
		if err := rt.submit(ctx); err != nil {
			rt.remove(topic, handleID)
			return nil, err
		}
	}

	return func(ctx context.Context) error {
		topicEmpty, allEmpty := rt.remove(topic, handleID)
		if allEmpty {
			c.mu.Lock()
			if c.realtime == rt {
				c.realtime = nil
			}
			c.mu.Unlock()
			rt.close()
			return nil
		}
		if topicEmpty {
			return rt.submit(ctx)
		}
		return nil
	}, nil
}

func (c *Client) realtimeConn() *realtimeConn {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.realtime != nil {
		return c.realtime
	}

	ctx, cancel := context.WithCancel(context.Background())
	rt := &realtimeConn{
		client:   c,
		cancel:   cancel,
		done:     make(chan struct{}),
		ready:    make(chan struct{}),
		handlers: map[string]map[string]func(Event){},
	}
	c.realtime = rt
	go rt.run(ctx)
	return rt
}

func (rt *realtimeConn) waitReady(ctx context.Context) error {
	rt.mu.Lock()
	ready := rt.ready
	rt.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-rt.done:
		return fmt.Errorf("realtime: %w", ErrNoClientID)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (rt *realtimeConn) remove(topic, handleID string) (topicEmpty, allEmpty bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	delete(rt.handlers[topic], handleID)
	if len(rt.handlers[topic]) == 0 {
		delete(rt.handlers, topic)
		topicEmpty = true
	}
	return topicEmpty, len(rt.handlers) == 0
}

func (rt *realtimeConn) topics() []string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	topics := make([]string, 0, len(rt.handlers))
	for topic := range rt.handlers {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// submit sends the full topic list for the current client id.
func (rt *realtimeConn) submit(ctx context.Context) error {
	rt.mu.Lock()
	clientID := rt.clientID
	rt.mu.Unlock()
	if clientID == "" {
		return ErrNoClientID
	}

	req, err := rt.client.request(ctx)
	if err != nil {
		return fmt.Errorf("realtime subscribe > %w", err)
	}
	req.SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"clientId":      clientID,
			"subscriptions": rt.topics(),
		})
	if err := rt.client.do(req, http.MethodPost, realtimePath, nil); err != nil {
		return fmt.Errorf("realtime subscribe > %w", err)
	}
	return nil
}

func (rt *realtimeConn) close() {
	rt.cancel()
	<-rt.done
}

// run keeps the SSE stream open until the connection is closed, reconnecting after failures.
func (rt *realtimeConn) run(ctx context.Context) {
	defer close(rt.done)
	for {
		err := rt.stream(ctx)
		if ctx.Err() != nil {
			return
		}
		slog.Default().Warn("realtime connection lost, reconnecting",
			slog.Any("error", err),
			slog.Duration("after", reconnectInterval))

		rt.mu.Lock()
		rt.clientID = ""
		if rt.connected {
			rt.ready = make(chan struct{})
			rt.connected = false
		}
		rt.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectInterval):
		}
	}
}

func (rt *realtimeConn) stream(ctx context.Context) error {
	c := rt.client
	if err := c.ensureAuth(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+realtimePath, nil)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext > %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	if token := c.auth.Token(); token != "" {
		req.Header.Set("Authorization", token)
	}

	res, err := c.httpClient.Client().Do(req)
	if err != nil {
		return fmt.Errorf("GET %s > %w", realtimePath, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(res.Body)
		return newResponseError(res.StatusCode, string(body))
	}

	return readEvents(res.Body, func(name string, data []byte) {
		rt.dispatch(ctx, name, data)
	})
}

func (rt *realtimeConn) dispatch(ctx context.Context, name string, data []byte) {
	if name == connectEvent {
		var payload struct {
			ClientID string `json:"clientId"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			slog.Default().Error("invalid PB_CONNECT payload", slog.Any("error", err))
			return
		}

		rt.mu.Lock()
		reconnected := rt.clientID == "" && len(rt.handlers) > 0
		rt.clientID = payload.ClientID
		if !rt.connected {
			close(rt.ready)
			rt.connected = true
		}
		rt.mu.Unlock()

		if reconnected {
			if err := rt.submit(ctx); err != nil {
				slog.Default().Error("failed to resubscribe after reconnect", slog.Any("error", err))
			}
		}
		return
	}

	rt.mu.Lock()
	handlers := make([]func(Event), 0, len(rt.handlers[name]))
	for _, h := range rt.handlers[name] {
		handlers = append(handlers, h)
	}
	rt.mu.Unlock()
	if len(handlers) == 0 {
		return
	}

	event := Event{Topic: name}
	if err := json.Unmarshal(data, &event); err != nil {
		slog.Default().Error("invalid realtime event",
			slog.String("topic", name),
			slog.Any("error", err))
		return
	}
	for _, h := range handlers {
		h(event)
	}
}

// readEvents parses a text/event-stream body and calls fn once per dispatched event.
func readEvents(r io.Reader, fn func(name string, data []byte)) error {
	reader := bufio.NewReader(r)
	var name string
	var data []string
	for {
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			if len(data) > 0 || name != "" {
				if name == "" {
					name = "message"
				}
				fn(name, []byte(strings.Join(data, "\n")))
			}
			name, data = "", nil
		case strings.HasPrefix(line, ":"):
		default:
			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "event":
				name = value
			case "data":
				data = append(data, value)
			}
		}

		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
	}
}
