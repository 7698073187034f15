package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/studiowebux/restui/internal/executor"
	"github.com/studiowebux/restui/internal/pipeline"
	"github.com/studiowebux/restui/internal/store"
	"github.com/studiowebux/restui/internal/types"
)

// newEchoServer serves an echo socket on /ws and a message history on /history
func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, []byte("echo "+string(msg))); err != nil {
				return
			}
		}
	})
	mux.HandleFunc("/history", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"at":"10:00","message":"hi"},{"message":"no time"},"bare"]}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newLiveSection(t *testing.T, baseURL string, cfg types.LiveConfig) (*Section, *pipeline.Pipeline) {
	t.Helper()
	transport, err := executor.NewHTTPTransport(baseURL)
	if err != nil {
		t.Fatalf("NewHTTPTransport: %v", err)
	}
	p := pipeline.New(transport, store.New(nil), nil)
	desc := types.NewSection("Chat", types.WithLive(cfg))
	s := NewSection(&desc, Deps{Pipeline: p, Dialer: executor.NewWSDialer(baseURL, nil)})
	t.Cleanup(func() { s.Close() })
	return s, p
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestLiveSingleChannel(t *testing.T) {
	server := newEchoServer(t)
	s, p := newLiveSection(t, server.URL, types.LiveConfig{URL: "/ws"})
	live := s.Live()

	if err := live.Send("early"); err != ErrNotConnected {
		t.Errorf("Send before connect = %v, want ErrNotConnected", err)
	}
	if msg := p.Status.Current().Message; msg != "error: Connect first." {
		t.Errorf("status = %q", msg)
	}

	if err := live.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if msg := p.Status.Current().Message; msg != "WebSocket connected." {
		t.Errorf("status = %q", msg)
	}

	if err := live.Send(""); err != nil {
		t.Fatalf("Send: %v", err)
	}
	waitFor(t, "echo", func() bool { return s.Snapshot().Live.Last == "echo hello" })

	if err := live.Send("again"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	waitFor(t, "second echo", func() bool { return len(s.Snapshot().Live.Transcript) == 2 })

	transcript := s.Snapshot().Live.Transcript
	if !strings.HasSuffix(transcript[0], " echo again") || !strings.HasSuffix(transcript[1], " echo hello") {
		t.Errorf("transcript should be newest first, got %q", transcript)
	}
}

func TestLiveClients(t *testing.T) {
	server := newEchoServer(t)
	s, p := newLiveSection(t, server.URL, types.LiveConfig{
		URL: "/ws",
		Clients: []types.LiveClient{
			{Label: "Alice", Name: "alice", Message: "hey"},
			{Label: "Bob"},
		},
	})
	s.Start(context.Background())

	waitFor(t, "clients open", func() bool {
		clients := s.Snapshot().Live.Clients
		return len(clients) == 2 && clients[0].Connected && clients[1].Connected
	})
	if msg := p.Status.Current().Message; !strings.HasPrefix(msg, "WebSocket connected (") {
		t.Errorf("status = %q", msg)
	}

	if err := s.Live().SendAs("alice", "", ""); err != nil {
		t.Fatalf("SendAs: %v", err)
	}
	if err := s.Live().SendAs("Bob", "", "yo"); err != nil {
		t.Fatalf("SendAs: %v", err)
	}
	waitFor(t, "client echoes", func() bool {
		clients := s.Snapshot().Live.Clients
		return clients[0].Last != "" && clients[1].Last != ""
	})

	clients := s.Snapshot().Live.Clients
	if diff := cmp.Diff([]string{"echo alice: hey", "echo Bob: yo"}, []string{clients[0].Last, clients[1].Last}); diff != "" {
		t.Errorf("echoes mismatch (-want +got):\n%s", diff)
	}

	if err := s.Live().SendAs("Carol", "", "x"); err == nil {
		t.Error("expected error for unknown client")
	}
}

func TestLiveHistory(t *testing.T) {
	server := newEchoServer(t)
	var mu sync.Mutex
	changes := 0
	s, _ := newLiveSection(t, server.URL, types.LiveConfig{URL: "/ws", History: "/history", PollHistory: 20 * time.Millisecond})
	s.live.onChange = func() {
		mu.Lock()
		changes++
		mu.Unlock()
		s.publish()
	}
	s.Start(context.Background())

	waitFor(t, "history polls", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return changes >= 2
	})

	want := []string{"10:00 hi", "no time", "bare"}
	if diff := cmp.Diff(want, s.Snapshot().Live.History); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestHistoryItem(t *testing.T) {
	tests := []struct {
		row  any
		want string
	}{
		{map[string]any{"at": "t", "message": "m"}, "t m"},
		{map[string]any{"message": "m"}, "m"},
		{map[string]any{"text": "x"}, `{"text":"x"}`},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := historyItem(tt.row); got != tt.want {
			t.Errorf("historyItem(%v) = %q, want %q", tt.row, got, tt.want)
		}
	}
}
