package testutil

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	gorillaWS "github.com/gorilla/websocket"
	"github.com/sprintduel/ladder-server/internal/events"
)

// WSClient is a test WebSocket client. The server side is notification-only,
// so the client never writes; it just collects pushed ladder events.
type WSClient struct {
	t      *testing.T
	conn   *gorillaWS.Conn
	events chan *events.Event
	errors chan error
	done   chan struct{}
	mu     sync.Mutex
}

// NewWSClient creates a new WebSocket test client
func NewWSClient(t *testing.T, url string) *WSClient {
	t.Helper()

	dialer := gorillaWS.DefaultDialer
	dialer.HandshakeTimeout = 5 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect to websocket: %v", err)
	}

	client := &WSClient{
		t:      t,
		conn:   conn,
		events: make(chan *events.Event, 100),
		errors: make(chan error, 10),
		done:   make(chan struct{}),
	}

	go client.readPump()

	t.Cleanup(func() {
		client.Close()
	})

	return client
}

// readPump reads events from the WebSocket connection
func (c *WSClient) readPump() {
	defer close(c.events)
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				select {
				case <-c.done:
					return
				case c.errors <- err:
				}
				return
			}

			var evt events.Event
			if err := json.Unmarshal(data, &evt); err != nil {
				c.errors <- err
				continue
			}

			select {
			case c.events <- &evt:
			case <-c.done:
				return
			}
		}
	}
}

// Close closes the WebSocket connection gracefully
func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return
	default:
		close(c.done)
		c.conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""))
		c.conn.Close()
	}
}

// ExpectEvent waits for an event of the specified type, skipping others
func (c *WSClient) ExpectEvent(eventType events.EventType, timeout time.Duration) *events.Event {
	c.t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case evt := <-c.events:
			if evt == nil {
				c.t.Fatalf("connection closed while waiting for %s", eventType)
			}
			if evt.Type == eventType {
				return evt
			}
			// Skip other event types
		case err := <-c.errors:
			c.t.Fatalf("error while waiting for %s: %v", eventType, err)
		case <-deadline:
			c.t.Fatalf("timeout waiting for event type %s", eventType)
		}
	}
}

// ExpectNoEvent verifies no events of the given type arrive within timeout
func (c *WSClient) ExpectNoEvent(eventType events.EventType, timeout time.Duration) {
	c.t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case evt := <-c.events:
			if evt != nil && evt.Type == eventType {
				c.t.Fatalf("unexpected event received: %s", evt.Type)
			}
		case <-deadline:
			return
		}
	}
}

// DecodePayload unmarshals an event payload into v
func (c *WSClient) DecodePayload(evt *events.Event, v interface{}) {
	c.t.Helper()

	data, err := json.Marshal(evt.Payload)
	if err != nil {
		c.t.Fatalf("failed to re-marshal payload: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.t.Fatalf("failed to decode payload: %v", err)
	}
}

// Drain discards all pending events, waiting for the stream to settle
func (c *WSClient) Drain() {
	deadline := time.After(100 * time.Millisecond)
	for {
		select {
		case evt := <-c.events:
			if evt == nil {
				return
			}
			deadline = time.After(50 * time.Millisecond)
		case <-deadline:
			return
		case <-c.done:
			return
		}
	}
}
