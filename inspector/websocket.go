package inspector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocket is an Inspector over a WebSocket connection. Every outbound
// message is stamped with a per-connection client ID so an inspector
// serving several stores can tell them apart.
type WebSocket struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	client    string
	inbox     chan Message
	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to an inspector endpoint.
func Dial(ctx context.Context, url string) (*WebSocket, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("inspector: dial %s: %w", url, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	w := &WebSocket{
		conn:   conn,
		client: uuid.NewString(),
		inbox:  make(chan Message, 16),
		done:   make(chan struct{}),
	}
	go w.readLoop()
	return w, nil
}

// Client returns the connection's client ID.
func (w *WebSocket) Client() string {
	return w.client
}

// Send writes a message to the inspector.
func (w *WebSocket) Send(msg Message) error {
	if msg.Client == "" {
		msg.Client = w.client
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("inspector: send: %w", err)
	}
	return nil
}

// Receive returns the inbound message channel. It is closed when the
// connection ends.
func (w *WebSocket) Receive() <-chan Message {
	return w.inbox
}

func (w *WebSocket) readLoop() {
	defer close(w.inbox)
	for {
		var msg Message
		if err := w.conn.ReadJSON(&msg); err != nil {
			return
		}
		select {
		case w.inbox <- msg:
		case <-w.done:
			return
		}
	}
}

// Close performs the close handshake and tears the connection down.
// Idempotent.
func (w *WebSocket) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		err = w.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		w.mu.Unlock()
		cerr := w.conn.Close()
		if err == nil {
			err = cerr
		}
	})
	return err
}
