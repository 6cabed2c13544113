package transport

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket carries protocol lines over a websocket, one line per text message.
type WebSocket struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	closeOnce    sync.Once
	closeErr     error
}

// DialWebSocket connects to serverURL, normalising http(s) schemes to ws(s).
func DialWebSocket(ctx context.Context, serverURL string, writeTimeout time.Duration) (*WebSocket, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
		// Already correct
	default:
		u.Scheme = "ws"
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return NewWebSocket(conn, writeTimeout), nil
}

// NewWebSocket wraps an established websocket from either side of the connection.
func NewWebSocket(conn *websocket.Conn, writeTimeout time.Duration) *WebSocket {
	conn.SetReadLimit(MaxLineLength)
	return &WebSocket{conn: conn, writeTimeout: writeTimeout}
}

// ReadLine returns the next text message. Other message types are skipped.
func (w *WebSocket) ReadLine() (string, error) {
	for {
		typ, data, err := w.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if typ == websocket.TextMessage {
			return strings.TrimRight(string(data), "\r\n"), nil
		}
	}
}

func (w *WebSocket) WriteLine(line string) error {
	if w.writeTimeout > 0 {
		if err := w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout)); err != nil {
			return err
		}
	}
	return w.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

// Close sends a close frame and closes the socket.
func (w *WebSocket) Close() error {
	w.closeOnce.Do(func() {
		_ = w.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		w.closeErr = w.conn.Close()
	})
	return w.closeErr
}

// RemoteAddr returns the peer address.
func (w *WebSocket) RemoteAddr() string {
	return w.conn.RemoteAddr().String()
}
