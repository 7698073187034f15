package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/studiowebux/restui/internal/executor"
	"github.com/studiowebux/restui/internal/pipeline"
	"github.com/studiowebux/restui/internal/resolver"
	"github.com/studiowebux/restui/internal/types"
	"github.com/studiowebux/restui/internal/view"
)

// Live channel defaults
const (
	DefaultLiveURL     = "/ws"
	DefaultLiveMessage = "hello"
	defaultClientName  = "Client"
)

// ErrNotConnected is returned when sending on a channel that is not open
var ErrNotConnected = errors.New("not connected")

// channelState is one live channel and what it last received
type channelState struct {
	label   string
	name    string
	message string

	ch   executor.Channel
	open bool
	last string

	// gen discards callbacks of replaced channels
	gen int
}

// Live runs the channels and history list of a live section. Channel
// callbacks arrive on receive goroutines; every change is reported
// through onChange after the lock is released.
type Live struct {
	cfg      types.LiveConfig
	dialer   executor.Dialer
	pipe     *pipeline.Pipeline
	log      logrus.FieldLogger
	onChange func()
	now      func() time.Time

	mu         sync.Mutex
	single     *channelState
	clients    []*channelState
	transcript []string
	history    []string
	closed     bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newLive(cfg types.LiveConfig, dialer executor.Dialer, pipe *pipeline.Pipeline, log logrus.FieldLogger, onChange func()) *Live {
	l := &Live{
		cfg:      cfg,
		dialer:   dialer,
		pipe:     pipe,
		log:      log,
		onChange: onChange,
		now:      time.Now,
	}
	if l.cfg.URL == "" {
		l.cfg.URL = DefaultLiveURL
	}
	if len(cfg.Clients) == 0 {
		message := cfg.Message
		if message == "" {
			message = DefaultLiveMessage
		}
		l.single = &channelState{message: message}
	}
	for _, c := range cfg.Clients {
		l.clients = append(l.clients, &channelState{label: c.Label, name: c.Name, message: c.Message})
	}
	return l
}

// Start opens every client channel (or the single channel when
// auto-connect is set) and starts history polling. Channel failures are
// reported through the status indicator, not returned.
func (l *Live) Start(ctx context.Context) {
	for _, c := range l.clients {
		_ = l.open(ctx, c)
	}
	if l.single != nil && l.cfg.AutoConnect {
		_ = l.open(ctx, l.single)
	}

	if l.cfg.History == "" {
		return
	}
	if l.cfg.PollHistory <= 0 {
		_ = l.LoadHistory(ctx)
		return
	}

	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()

	l.wg.Add(1)
	go l.poll(pollCtx)
}

// poll reloads the history list once right away, then once per interval
func (l *Live) poll(ctx context.Context) {
	defer l.wg.Done()
	limiter := rate.NewLimiter(rate.Every(l.cfg.PollHistory), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		if err := l.LoadHistory(ctx); err != nil && ctx.Err() == nil {
			l.log.WithError(err).Debug("history poll failed")
		}
	}
}

// Connect opens the single channel, replacing any open one
func (l *Live) Connect(ctx context.Context) error {
	if l.single == nil {
		return fmt.Errorf("live section has named clients; connect is implicit")
	}
	return l.open(ctx, l.single)
}

func (l *Live) open(ctx context.Context, c *channelState) error {
	l.mu.Lock()
	previous := c.ch
	c.ch = nil
	c.open = false
	c.gen++
	gen := c.gen
	l.mu.Unlock()
	if previous != nil {
		_ = previous.Close()
	}

	label := c.label
	if label == "" {
		label = "client"
	}
	suffix := "."
	if c != l.single {
		suffix = " (" + label + ")"
	}
	status := l.pipe.Status

	ch, err := l.dialer.Open(ctx, l.cfg.URL, executor.Handlers{
		OnOpen: func() {
			if l.update(gen, c, func() { c.open = true }) {
				status.Set(pipeline.Status{Message: "WebSocket connected" + suffix})
			}
		},
		OnMessage: func(text string) {
			l.update(gen, c, func() {
				c.last = text
				if c == l.single {
					line := l.now().Format(time.TimeOnly) + " " + text
					l.transcript = append([]string{line}, l.transcript...)
				}
			})
		},
		OnClose: func() {
			if l.update(gen, c, func() { c.open = false }) {
				status.Fail("WebSocket closed" + suffix)
			}
		},
		OnError: func(err error) {
			l.log.WithError(err).WithField("client", label).Debug("live channel error")
			if l.current(gen, c) {
				status.Fail("WebSocket error" + suffix)
			}
		},
	})
	if err != nil {
		return err
	}

	l.mu.Lock()
	stale := c.gen != gen || l.closed
	if !stale {
		c.ch = ch
	}
	l.mu.Unlock()
	if stale {
		return ch.Close()
	}
	return nil
}

// Send writes text on the single channel. Empty text sends the draft message.
func (l *Live) Send(text string) error {
	if l.single == nil {
		return fmt.Errorf("live section has named clients; use SendAs")
	}
	l.mu.Lock()
	if text == "" {
		text = l.single.message
	}
	ch, open := l.single.ch, l.single.open
	l.mu.Unlock()

	if ch == nil || !open {
		l.pipe.Status.Fail("Connect first.")
		return ErrNotConnected
	}
	return ch.Send(text)
}

// SendAs writes "name: message" on the client channel labelled label.
// Empty name and message fall back to the client defaults.
func (l *Live) SendAs(label, name, message string) error {
	var c *channelState
	for _, candidate := range l.clients {
		if strings.EqualFold(candidate.label, label) {
			c = candidate
			break
		}
	}
	if c == nil {
		return types.Errorf(label, "no such live client")
	}

	l.mu.Lock()
	if name == "" {
		name = c.name
	}
	if message == "" {
		message = c.message
	}
	ch, open := c.ch, c.open
	l.mu.Unlock()

	display := c.label
	if display == "" {
		display = defaultClientName
	}
	if ch == nil || !open {
		l.pipe.Status.Fail(display + " not connected.")
		return ErrNotConnected
	}
	if name == "" {
		name = display
	}
	return ch.Send(name + ": " + message)
}

// LoadHistory replaces the history list with the items read from the
// history path
func (l *Live) LoadHistory(ctx context.Context) error {
	if l.cfg.History == "" {
		return nil
	}
	env := l.pipe.Send(ctx, pipeline.RequestSpec{Method: types.MethodGet, Path: l.cfg.History})
	items := []string{}
	rows, _ := toList(env.Data)
	for _, row := range rows {
		items = append(items, historyItem(row))
	}
	l.mu.Lock()
	l.history = items
	l.mu.Unlock()
	l.changed()

	if !env.OK {
		return fmt.Errorf("load history: %s", env.ErrorMessage())
	}
	return nil
}

// historyItem formats one message as "<at> <message>"
func historyItem(row any) string {
	m, ok := row.(map[string]any)
	if !ok {
		return resolver.Stringify(row)
	}
	at := ""
	if resolver.Truthy(m["at"]) {
		at = resolver.Stringify(m["at"])
	}
	message := resolver.Stringify(row)
	if resolver.Truthy(m["message"]) {
		message = resolver.Stringify(m["message"])
	}
	return strings.TrimSpace(at + " " + message)
}

// Close stops polling and closes every channel
func (l *Live) Close() error {
	l.mu.Lock()
	l.closed = true
	cancel := l.cancel
	l.cancel = nil
	var channels []executor.Channel
	for _, c := range l.all() {
		c.gen++
		c.open = false
		if c.ch != nil {
			channels = append(channels, c.ch)
			c.ch = nil
		}
	}
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	l.wg.Wait()

	var errs []error
	for _, ch := range channels {
		if err := ch.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (l *Live) all() []*channelState {
	if l.single != nil {
		return []*channelState{l.single}
	}
	return l.clients
}

// update applies fn when the callback belongs to the current channel of c.
// It reports whether fn ran.
func (l *Live) update(gen int, c *channelState, fn func()) bool {
	l.mu.Lock()
	live := c.gen == gen && !l.closed
	if live {
		fn()
	}
	l.mu.Unlock()
	if live {
		l.changed()
	}
	return live
}

func (l *Live) current(gen int, c *channelState) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return c.gen == gen && !l.closed
}

func (l *Live) changed() {
	if l.onChange != nil {
		l.onChange()
	}
}

// View returns the live part of the section snapshot
func (l *Live) View() *view.Live {
	l.mu.Lock()
	defer l.mu.Unlock()

	v := &view.Live{HasHistory: l.cfg.History != ""}
	if l.single != nil {
		v.Connected = l.single.open
		v.Message = l.single.message
		v.Last = l.single.last
		v.Transcript = append([]string(nil), l.transcript...)
	}
	for _, c := range l.clients {
		v.Clients = append(v.Clients, view.LiveClient{
			Label:     c.label,
			Name:      c.name,
			Message:   c.message,
			Connected: c.open,
			Last:      c.last,
		})
	}
	v.History = append([]string(nil), l.history...)
	return v
}

// SetDraft replaces the draft message of the single channel or of the
// client labelled label
func (l *Live) SetDraft(label, name, message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if label == "" && l.single != nil {
		l.single.message = message
		return nil
	}
	for _, c := range l.clients {
		if strings.EqualFold(c.label, label) {
			c.name = name
			c.message = message
			return nil
		}
	}
	return types.Errorf(label, "no such live client")
}
