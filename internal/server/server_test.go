package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lox/pokerbots/internal/transport"
)

type lineClient interface {
	ReadLine() (string, error)
	WriteLine(string) error
}

// playClient answers requests with check or call until the match ends and
// returns the lines it received.
func playClient(t *testing.T, c lineClient) []string {
	t.Helper()
	var lines []string
	for {
		line, err := c.ReadLine()
		if err != nil {
			t.Fatalf("read after %d lines: %v", len(lines), err)
		}
		lines = append(lines, line)
		switch {
		case line == "Q":
			return lines
		case strings.HasPrefix(line, "A "):
			if err := c.WriteLine(checkOrCall(line)); err != nil {
				t.Fatalf("write: %v", err)
			}
		}
	}
}

func newTestServer(t *testing.T, rounds int) *Server {
	t.Helper()
	srv, err := NewServer(testMatch(rounds), "random", quietLogger())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

func TestServerHealth(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, 1)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler(context.Background()).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestServerRejectsBadConfig(t *testing.T) {
	t.Parallel()
	if _, err := NewServer(testMatch(1), "shark", quietLogger()); err == nil {
		t.Error("Expected unknown strategy to fail")
	}
}

func TestServerTCPMatch(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, 5)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ctx, ln) }()

	conn, err := net.DialTimeout("tcp", ln.Addr().String(), 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	client := transport.NewLine(conn, time.Second)
	defer client.Close()

	lines := playClient(t, client)
	var deltas int
	for _, l := range lines {
		if strings.HasPrefix(l, "D ") {
			deltas++
		}
	}
	if deltas != 5 {
		t.Errorf("Expected 5 rounds, got %d", deltas)
	}

	cancel()
	select {
	case err := <-served:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if srv.Matches() != 1 {
		t.Errorf("Expected 1 match, got %d", srv.Matches())
	}
}

func TestServerWebSocketMatch(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, 3)
	ts := httptest.NewServer(srv.Handler(context.Background()))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial %s: %v", url, err)
	}
	client := transport.NewWebSocket(conn, time.Second)
	defer client.Close()

	lines := playClient(t, client)
	if lines[0] != "T 30" || lines[1] != "P 0" {
		t.Errorf("Unexpected opening lines %v", lines[:2])
	}
}
