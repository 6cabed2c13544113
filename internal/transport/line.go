// Package transport frames protocol lines over a byte stream or a websocket.
package transport

import (
	"bufio"
	"io"
	"net"
	"sync"
	"time"
)

// MaxLineLength bounds a single protocol line in bytes. Longer lines fail
// with bufio.ErrTooLong.
const MaxLineLength = 4096

// Line frames a stream connection as newline-terminated lines. Reads and
// writes may run concurrently with each other but not with themselves.
type Line struct {
	conn         net.Conn
	scanner      *bufio.Scanner
	writer       *bufio.Writer
	writeTimeout time.Duration
	closeOnce    sync.Once
	closeErr     error
}

// NewLine wraps c. A positive writeTimeout bounds each WriteLine.
func NewLine(c net.Conn, writeTimeout time.Duration) *Line {
	if tcp, ok := c.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}
	sc := bufio.NewScanner(c)
	sc.Buffer(make([]byte, 0, 512), MaxLineLength)
	return &Line{
		conn:         c,
		scanner:      sc,
		writer:       bufio.NewWriter(c),
		writeTimeout: writeTimeout,
	}
}

// ReadLine returns the next line without its terminator. A final line
// without a newline is returned before io.EOF.
func (l *Line) ReadLine() (string, error) {
	if l.scanner.Scan() {
		return l.scanner.Text(), nil
	}
	if err := l.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (l *Line) WriteLine(line string) error {
	if l.writeTimeout > 0 {
		if err := l.conn.SetWriteDeadline(time.Now().Add(l.writeTimeout)); err != nil {
			return err
		}
	}
	if _, err := l.writer.WriteString(line); err != nil {
		return err
	}
	if err := l.writer.WriteByte('\n'); err != nil {
		return err
	}
	return l.writer.Flush()
}

// Close closes the underlying connection once.
func (l *Line) Close() error {
	l.closeOnce.Do(func() { l.closeErr = l.conn.Close() })
	return l.closeErr
}

// RemoteAddr returns the peer address.
func (l *Line) RemoteAddr() string {
	return l.conn.RemoteAddr().String()
}
