package sdk

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/lox/pokerbots/internal/transport"
)

// Conn is a line-oriented, full-duplex connection to the match server.
// ReadLine is only called from the reader goroutine and WriteLine only from
// the commit step, so implementations need not serialise them against
// themselves. Close must unblock a pending ReadLine.
type Conn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
}

// NewLineConn frames c as newline-terminated lines. A positive writeTimeout
// bounds each write.
func NewLineConn(c net.Conn, writeTimeout time.Duration) Conn {
	return transport.NewLine(c, writeTimeout)
}

// Dial connects to addr. ws://, wss://, http:// and https:// URLs use a
// websocket carrying one line per text message; anything else is a TCP
// host:port, optionally prefixed with tcp://.
func Dial(ctx context.Context, addr string, writeTimeout time.Duration) (Conn, error) {
	if u, err := url.Parse(addr); err == nil {
		switch u.Scheme {
		case "ws", "wss", "http", "https":
			ws, err := transport.DialWebSocket(ctx, addr, writeTimeout)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrConnectionLost, err)
			}
			return ws, nil
		case "tcp":
			addr = u.Host
		}
	}

	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnectionLost, addr, err)
	}
	return transport.NewLine(c, writeTimeout), nil
}
