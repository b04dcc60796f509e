package wsconn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"kraterm/models"
)

func TestSessionConnectFailsAgainstUnreachableURL(t *testing.T) {
	s := NewSession("public", "ws://127.0.0.1:1/does-not-exist", time.Second, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Connect(ctx); err == nil {
		t.Fatal("expected connect to an unreachable address to fail")
	}
}

func TestSessionRunDecodesEnvelopesUntilServerCloses(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`{"channel":"heartbeat"}`))
		time.Sleep(50 * time.Millisecond)
		conn.Close()
	}))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	seen := make(chan models.Envelope, 1)
	s := NewSession("public", wsURL, 5*time.Second, func(env models.Envelope) {
		select {
		case seen <- env:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	cause := s.Run(ctx)
	if cause != CauseReadError {
		t.Fatalf("expected CauseReadError when server closes the connection, got %v", cause)
	}

	select {
	case env := <-seen:
		if env.Channel != "heartbeat" {
			t.Fatalf("expected heartbeat envelope, got %+v", env)
		}
	default:
		t.Fatal("expected onEnvelope to have been called before the connection closed")
	}
}

func TestSessionRunReturnsShutdownWhenContextCancelled(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	s := NewSession("public", wsURL, 5*time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	if cause := s.Run(ctx); cause != CauseShutdown {
		t.Fatalf("expected CauseShutdown after context cancellation, got %v", cause)
	}
}

func TestSessionRunReportsDeliberateCloseCause(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	s := NewSession("private", wsURL, 5*time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		s.closeWithCause(CauseTokenExpired)
	}()

	if cause := s.Run(ctx); cause != CauseTokenExpired {
		t.Fatalf("expected CauseTokenExpired from a deliberate close, got %v", cause)
	}
}

func TestSessionRunReturnsHeartbeatTimeoutWhenServerGoesQuiet(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	s := NewSession("public", wsURL, 100*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	if cause := s.Run(ctx); cause != CauseHeartbeatTimeout {
		t.Fatalf("expected CauseHeartbeatTimeout, got %v", cause)
	}
}
