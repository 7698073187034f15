package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/studiowebux/restui/internal/logging"
)

const (
	// DefaultSocketPath is served when the socket block leaves path empty
	DefaultSocketPath = "/ws"

	defaultKeep = 50
	maxLogs     = 1000
)

// Server represents the mock backend
type Server struct {
	config     *Config
	workdir    string
	log        logrus.FieldLogger
	limiter    *rate.Limiter
	upgrader   websocket.Upgrader
	newID      func() string
	now        func() time.Time
	httpServer *http.Server
	listener   net.Listener

	logs      []RequestLog
	logsMutex sync.RWMutex

	messages   []SocketMessage
	msgMutex   sync.Mutex
	patterns   map[string]*regexp.Regexp
	patternsMu sync.Mutex
}

// SocketMessage is one message received on the echo socket
type SocketMessage struct {
	At      string `json:"at"`
	Message string `json:"message"`
}

// NewServer creates a new mock backend. Relative body files resolve
// against workdir.
func NewServer(config *Config, workdir string, log logrus.FieldLogger) *Server {
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.Host == "" {
		config.Host = "localhost"
	}

	s := &Server{
		config:   config,
		workdir:  workdir,
		log:      logging.OrDiscard(log),
		newID:    uuid.NewString,
		now:      time.Now,
		patterns: make(map[string]*regexp.Regexp),
	}
	if config.RateLimit > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}
	return s
}

// Handler returns the backend's HTTP handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if sock := s.config.Socket; sock != nil {
		path := sock.Path
		if path == "" {
			path = DefaultSocketPath
		}
		mux.HandleFunc(path, s.handleSocket)
		if sock.History != "" {
			mux.HandleFunc(sock.History, s.withRequestID(s.handleHistory))
		}
	}
	mux.HandleFunc("/", s.withRequestID(s.handleRequest))
	return mux
}

// Start starts the mock backend
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("mock server stopped")
		}
	}()

	s.log.WithField("address", s.GetAddress()).Info("mock server listening")
	return nil
}

// Stop stops the mock backend
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// GetAddress returns the server address
func (s *Server) GetAddress() string {
	if s.listener != nil {
		return "http://" + s.listener.Addr().String()
	}
	return fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)
}

// withRequestID tags the response with a fresh X-Request-Id and applies
// the rate limit
func (s *Server) withRequestID(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := s.newID()
		w.Header().Set("X-Request-Id", id)

		if s.limiter != nil && !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			s.logRequest(RequestLog{
				Timestamp:   s.now(),
				RequestID:   id,
				Method:      r.Method,
				Path:        r.URL.Path,
				MatchedRule: "rate-limit",
				Status:      http.StatusTooManyRequests,
			})
			return
		}
		next(w, r, id)
	}
}

// handleRequest handles incoming HTTP requests
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request, id string) {
	start := s.now()

	// Read request body
	bodyBytes, _ := io.ReadAll(r.Body)
	r.Body.Close()
	requestBody := string(bodyBytes)

	// Find matching route
	route := s.findMatchingRoute(r.Method, r.URL.Path)

	var status int
	var responseBody string
	var matchedRule string

	if route == nil {
		status = http.StatusNotFound
		responseBody = errorBody(fmt.Sprintf("no route configured for %s %s", r.Method, r.URL.Path))
		matchedRule = "none"
		w.Header().Set("Content-Type", "application/json")
	} else {
		// Apply delay if configured
		if route.Delay > 0 {
			select {
			case <-time.After(time.Duration(route.Delay) * time.Millisecond):
			case <-r.Context().Done():
				return
			}
		}

		status = route.Status
		if status == 0 {
			status = http.StatusOK
		}

		for key, value := range route.Headers {
			w.Header().Set(key, value)
		}

		body, err := s.routeBody(route)
		if err != nil {
			status = http.StatusInternalServerError
			body = errorBody(err.Error())
		}
		responseBody = body
		if route.JSON != nil && w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}

		matchedRule = route.Name
		if matchedRule == "" {
			matchedRule = fmt.Sprintf("%s %s", route.Method, route.Path)
		}
	}

	// Write response
	w.WriteHeader(status)
	w.Write([]byte(responseBody))

	s.logRequest(RequestLog{
		Timestamp:   start,
		RequestID:   id,
		Method:      r.Method,
		Path:        r.URL.Path,
		Headers:     flattenHeaders(r.Header),
		Body:        requestBody,
		MatchedRule: matchedRule,
		Status:      status,
		Duration:    time.Since(start),
	})
}

// routeBody returns the response body of a matched route
func (s *Server) routeBody(route *Route) (string, error) {
	switch {
	case route.JSON != nil:
		data, err := json.Marshal(route.JSON)
		if err != nil {
			return "", fmt.Errorf("failed to encode json body: %w", err)
		}
		return string(data), nil
	case route.BodyFile != "":
		filePath := route.BodyFile
		if !filepath.IsAbs(filePath) {
			filePath = filepath.Join(s.workdir, filePath)
		}
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read body file %s: %w", route.BodyFile, err)
		}
		return string(data), nil
	default:
		return route.Body, nil
	}
}

// findMatchingRoute finds the first route that matches the method and path
func (s *Server) findMatchingRoute(method, path string) *Route {
	for i := range s.config.Routes {
		route := &s.config.Routes[i]
		if !strings.EqualFold(route.Method, method) {
			continue
		}

		matched := false
		switch route.PathType {
		case "", "exact":
			matched = route.Path == path
		case "prefix":
			matched = strings.HasPrefix(path, route.Path)
		case "regex":
			if re := s.pattern(route.Path); re != nil {
				matched = re.MatchString(path)
			}
		}

		if matched {
			return route
		}
	}

	return nil
}

// pattern compiles and caches a route regex
func (s *Server) pattern(expr string) *regexp.Regexp {
	s.patternsMu.Lock()
	defer s.patternsMu.Unlock()
	if re, ok := s.patterns[expr]; ok {
		return re
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		re = nil
	}
	s.patterns[expr] = re
	return re
}

// handleSocket echoes every text message back to its sender
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := s.log.WithField("remote", r.RemoteAddr)
	log.Debug("socket opened")
	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			log.WithError(err).Debug("socket closed")
			return
		}
		s.remember(string(msg))
		reply := s.config.Socket.Prefix + string(msg)
		if err := conn.WriteMessage(mt, []byte(reply)); err != nil {
			log.WithError(err).Debug("socket write failed")
			return
		}
	}
}

// remember keeps the most recent socket messages for the history endpoint
func (s *Server) remember(message string) {
	keep := s.config.Socket.Keep
	if keep <= 0 {
		keep = defaultKeep
	}

	s.msgMutex.Lock()
	defer s.msgMutex.Unlock()
	s.messages = append(s.messages, SocketMessage{At: s.now().Format("15:04:05"), Message: message})
	if len(s.messages) > keep {
		s.messages = s.messages[len(s.messages)-keep:]
	}
}

// Messages returns the remembered socket messages, newest first
func (s *Server) Messages() []SocketMessage {
	s.msgMutex.Lock()
	defer s.msgMutex.Unlock()
	out := make([]SocketMessage, len(s.messages))
	for i, m := range s.messages {
		out[len(out)-1-i] = m
	}
	return out
}

// handleHistory serves the remembered socket messages
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, id string) {
	data, err := json.Marshal(map[string]any{"data": s.Messages()})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// logRequest adds a request to the log
func (s *Server) logRequest(entry RequestLog) {
	s.log.WithFields(logrus.Fields{
		"request_id": entry.RequestID,
		"method":     entry.Method,
		"path":       entry.Path,
		"status":     entry.Status,
		"rule":       entry.MatchedRule,
		"duration":   entry.Duration,
	}).Info("mock request")

	if !s.config.Logging {
		return
	}

	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, entry)

	// Keep only the most recent logs
	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}
}

// GetLogs returns all logged requests
func (s *Server) GetLogs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	// Return a copy
	logs := make([]RequestLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}

// ClearLogs clears all logged requests
func (s *Server) ClearLogs() {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = make([]RequestLog, 0)
}

// errorBody renders a message in the envelope error shape
func errorBody(message string) string {
	data, _ := json.Marshal(map[string]any{"error": map[string]string{"message": message}})
	return string(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(errorBody(message)))
}

// flattenHeaders converts http.Header to map[string]string (first value only)
func flattenHeaders(headers http.Header) map[string]string {
	result := make(map[string]string)
	for key, values := range headers {
		if len(values) > 0 {
			result[key] = values[0]
		}
	}
	return result
}
