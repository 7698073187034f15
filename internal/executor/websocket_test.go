package executor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// echoServer replies to every text frame with "echo: <frame>"
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte("echo: "+string(message))); err != nil {
				return
			}
		}
	}))
}

func TestWSDialerSendReceive(t *testing.T) {
	server := echoServer(t)
	defer server.Close()

	var mu sync.Mutex
	var opened bool
	messages := make(chan string, 4)
	closed := make(chan struct{})

	dialer := NewWSDialer(server.URL, nil)
	ch, err := dialer.Open(context.Background(), "/ws", Handlers{
		OnOpen: func() {
			mu.Lock()
			opened = true
			mu.Unlock()
		},
		OnMessage: func(text string) { messages <- text },
		OnClose:   func() { close(closed) },
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	mu.Lock()
	if !opened {
		t.Error("OnOpen not called before Open returned")
	}
	mu.Unlock()

	if err := ch.Send("ada: hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case got := <-messages:
		if got != "echo: ada: hi" {
			t.Errorf("message = %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for echo")
	}

	if err := ch.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("OnClose not called")
	}

	if err := ch.Send("late"); err != ErrChannelClosed {
		t.Errorf("send after close = %v, want ErrChannelClosed", err)
	}
}

func TestWSDialerServerClose(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		conn.Close()
	}))
	defer server.Close()

	closed := make(chan struct{})
	errs := make(chan error, 1)
	dialer := NewWSDialer(server.URL, nil)
	_, err := dialer.Open(context.Background(), "/ws", Handlers{
		OnClose: func() { close(closed) },
		OnError: func(err error) { errs <- err },
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("OnClose not called after server close")
	}
	select {
	case err := <-errs:
		t.Errorf("normal closure reported as error: %v", err)
	default:
	}
}

func TestWSDialerConnectFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	var reported error
	dialer := NewWSDialer(server.URL, nil)
	_, err := dialer.Open(context.Background(), "/ws", Handlers{
		OnError: func(err error) { reported = err },
	})
	if err == nil {
		t.Fatal("expected dial error")
	}
	if reported == nil || !strings.Contains(reported.Error(), "HTTP 404") {
		t.Errorf("reported = %v", reported)
	}
}

func TestWebSocketURL(t *testing.T) {
	tests := []struct {
		base, raw, want string
		wantErr         bool
	}{
		{"http://localhost:8080", "/ws/chat", "ws://localhost:8080/ws/chat", false},
		{"https://api.example.com", "/ws", "wss://api.example.com/ws", false},
		{"", "ws://host/x", "ws://host/x", false},
		{"", "/ws", "", true},
	}
	for _, tt := range tests {
		got, err := WebSocketURL(tt.base, tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("WebSocketURL(%q, %q) err = %v", tt.base, tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("WebSocketURL(%q, %q) = %q, want %q", tt.base, tt.raw, got, tt.want)
		}
	}
}
