package executor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrChannelClosed is returned when sending on a closed channel
var ErrChannelClosed = errors.New("channel closed")

// Handlers receive live channel events. Callbacks run on the channel's
// receive goroutine; any of them may be nil.
type Handlers struct {
	OnOpen    func()
	OnMessage func(text string)
	OnClose   func()
	OnError   func(err error)
}

// Channel is an open bidirectional text channel
type Channel interface {
	Send(text string) error
	Close() error
}

// Dialer opens live channels
type Dialer interface {
	Open(ctx context.Context, rawURL string, h Handlers) (Channel, error)
}

// WSDialer opens channels over gorilla websockets. Relative URLs are
// resolved against BaseURL with the scheme switched to ws/wss.
type WSDialer struct {
	BaseURL string
	TLS     *TLSConfig
	Headers map[string]string
}

// NewWSDialer creates a websocket dialer
func NewWSDialer(baseURL string, tlsConfig *TLSConfig) *WSDialer {
	return &WSDialer{BaseURL: baseURL, TLS: tlsConfig}
}

// Open connects and starts the receive loop
func (d *WSDialer) Open(ctx context.Context, rawURL string, h Handlers) (Channel, error) {
	target, err := WebSocketURL(d.BaseURL, rawURL)
	if err != nil {
		notifyError(h, err)
		return nil, err
	}

	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 45 * time.Second,
	}

	// Configure TLS if needed
	if d.TLS != nil && strings.HasPrefix(target, "wss://") {
		tlsClientConfig, err := buildTLSConfig(d.TLS)
		if err != nil {
			err = fmt.Errorf("TLS configuration error: %w", err)
			notifyError(h, err)
			return nil, err
		}
		dialer.TLSClientConfig = tlsClientConfig
	}

	headers := http.Header{}
	for key, value := range d.Headers {
		headers.Set(key, value)
	}

	conn, resp, err := dialer.DialContext(ctx, target, headers)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("connection failed (HTTP %d): %w", resp.StatusCode, err)
		} else {
			err = fmt.Errorf("connection failed: %w", err)
		}
		notifyError(h, err)
		return nil, err
	}

	ch := &wsChannel{conn: conn, done: make(chan struct{})}
	if h.OnOpen != nil {
		h.OnOpen()
	}
	go ch.receive(h)
	return ch, nil
}

// WebSocketURL resolves rawURL against base, mapping http(s) to ws(s)
func WebSocketURL(base, rawURL string) (string, error) {
	if strings.HasPrefix(rawURL, "ws://") || strings.HasPrefix(rawURL, "wss://") {
		return rawURL, nil
	}
	full, err := ResolveURL(base, rawURL)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(full)
	if err != nil {
		return "", fmt.Errorf("invalid websocket URL %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	if u.Host == "" {
		return "", fmt.Errorf("websocket URL %q has no host", rawURL)
	}
	return u.String(), nil
}

func notifyError(h Handlers, err error) {
	if h.OnError != nil {
		h.OnError(err)
	}
}

type wsChannel struct {
	conn *websocket.Conn

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// Send writes a text frame
func (c *wsChannel) Send(text string) error {
	select {
	case <-c.done:
		return ErrChannelClosed
	default:
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// Close sends a normal closure frame and closes the connection
func (c *wsChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		// Ignore close errors as connection might already be closed
		_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// receive continuously receives messages from the connection
func (c *wsChannel) receive(h Handlers) {
	defer func() {
		c.closeOnce.Do(func() {
			close(c.done)
			c.conn.Close()
		})
		if h.OnClose != nil {
			h.OnClose()
		}
	}()

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				// Closed locally
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					notifyError(h, err)
				}
			}
			return
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		if h.OnMessage != nil {
			h.OnMessage(string(message))
		}
	}
}
