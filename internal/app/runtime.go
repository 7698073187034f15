// Package app mounts a declarative application tree: it builds the
// section runtimes, refreshes them in declaration order and routes user
// interactions to them.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/studiowebux/restui/internal/engine"
	"github.com/studiowebux/restui/internal/executor"
	"github.com/studiowebux/restui/internal/logging"
	"github.com/studiowebux/restui/internal/pipeline"
	"github.com/studiowebux/restui/internal/store"
	"github.com/studiowebux/restui/internal/types"
	"github.com/studiowebux/restui/internal/view"
)

// ErrNotMounted is returned by operations that need a mounted runtime
var ErrNotMounted = errors.New("app is not mounted")

// Option configures a Runtime
type Option func(*Runtime)

// WithLogger sets the logger shared by every component
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Runtime) { r.log = log }
}

// WithRecorder records every request envelope
func WithRecorder(rec pipeline.Recorder) Option {
	return func(r *Runtime) { r.recorder = rec }
}

// WithConfirmer asks before actions that declare a confirmation.
// Without one such actions are declined.
func WithConfirmer(fn pipeline.ConfirmFunc) Option {
	return func(r *Runtime) { r.confirm = fn }
}

// WithoutMockInference makes failed reads without a declared mock fail
// instead of showing inferred placeholder data
func WithoutMockInference() Option {
	return func(r *Runtime) { r.inferMocks = false }
}

// WithDialer sets the live channel dialer
func WithDialer(d executor.Dialer) Option {
	return func(r *Runtime) { r.dialer = d }
}

// WithStore seeds the store
func WithStore(values map[string]any) Option {
	return func(r *Runtime) { r.initial = values }
}

// WithObserver sees every action state transition
func WithObserver(fn func(pipeline.State)) Option {
	return func(r *Runtime) { r.observer = fn }
}

// Runtime is one mounted app. Engine operations (refresh, invoke and the
// cascades they trigger) are serialized; snapshots never block on them.
type Runtime struct {
	app        types.App
	transport  executor.Transport
	dialer     executor.Dialer
	recorder   pipeline.Recorder
	confirm    pipeline.ConfirmFunc
	observer   func(pipeline.State)
	inferMocks bool
	initial    map[string]any
	log        logrus.FieldLogger

	store    *store.Store
	pipe     *pipeline.Pipeline
	registry *engine.Registry

	// ops serializes engine operations; mu guards the fields below
	ops      sync.Mutex
	mu       sync.RWMutex
	mounted  bool
	closed   bool
	sections []*engine.Section
	byID     map[string]*engine.Section
}

// New validates app and prepares a runtime. Nothing is fetched before Mount.
func New(app types.App, transport executor.Transport, opts ...Option) (*Runtime, error) {
	if err := types.Validate(app); err != nil {
		return nil, err
	}
	r := &Runtime{
		app:        app,
		transport:  transport,
		inferMocks: true,
		byID:       make(map[string]*engine.Section),
		registry:   engine.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = logging.OrDiscard(r.log)

	r.store = store.New(r.initial)
	r.pipe = pipeline.New(transport, r.store, r.log)
	r.pipe.Recorder = r.recorder
	r.pipe.Refresher = cascade{r}
	r.pipe.Observer = r.observer
	return r, nil
}

// cascade lets the pipeline refresh sections while the runtime lock is
// already held by the invoking operation
type cascade struct {
	r *Runtime
}

func (c cascade) RefreshAll(ctx context.Context) error {
	return c.r.refreshAll(ctx)
}

func (c cascade) RefreshSection(ctx context.Context, id string) error {
	return c.r.registry.Signal(ctx, id)
}

// Mount builds every section in declaration order, opens eager live
// channels and refreshes every section once. Refresh failures are
// returned joined; the app stays mounted.
func (r *Runtime) Mount(ctx context.Context) error {
	r.ops.Lock()
	defer r.ops.Unlock()

	r.mu.RLock()
	mounted := r.mounted
	r.mu.RUnlock()
	if mounted {
		return fmt.Errorf("app %q is already mounted", r.app.Title)
	}

	descs := r.app.AllSections()
	for _, desc := range descs {
		if desc.Live != nil && r.dialer == nil {
			return types.Errorf(desc.Key()+".live", "no live channel dialer configured")
		}
	}

	deps := engine.Deps{
		Pipeline:   r.pipe,
		Dialer:     r.dialer,
		InferMocks: r.inferMocks,
		Log:        r.log,
	}
	sections := make([]*engine.Section, 0, len(descs))
	for _, desc := range descs {
		sec := engine.NewSection(desc, deps)
		sections = append(sections, sec)
		r.registry.Register(sec.ID(), sec.Refresh)
	}

	r.mu.Lock()
	r.sections = sections
	for _, sec := range sections {
		r.byID[sec.ID()] = sec
	}
	r.mounted = true
	r.mu.Unlock()
	r.log.WithField("sections", len(sections)).Debug("app mounted")

	for _, sec := range sections {
		sec.Start(ctx)
	}
	return r.refreshAll(ctx)
}

// Mounted reports whether Mount has run
func (r *Runtime) Mounted() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mounted
}

// RefreshAll refreshes every section in declaration order, each one
// settling before the next starts
func (r *Runtime) RefreshAll(ctx context.Context) error {
	r.ops.Lock()
	defer r.ops.Unlock()
	if err := r.usable(); err != nil {
		return err
	}
	return r.refreshAll(ctx)
}

func (r *Runtime) refreshAll(ctx context.Context) error {
	var errs []error
	for _, id := range r.registry.IDs() {
		if err := r.registry.Signal(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RefreshSection refreshes one section by id
func (r *Runtime) RefreshSection(ctx context.Context, id string) error {
	r.ops.Lock()
	defer r.ops.Unlock()
	if err := r.usable(); err != nil {
		return err
	}
	return r.registry.Signal(ctx, id)
}

// Invoke runs the action labelled label of section id
func (r *Runtime) Invoke(ctx context.Context, id, label string) (*pipeline.Result, error) {
	r.ops.Lock()
	defer r.ops.Unlock()
	sec, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return sec.Invoke(ctx, label, r.confirm)
}

// InvokeRow runs a row action against list row index of section id
func (r *Runtime) InvokeRow(ctx context.Context, id string, index int, label string) (*pipeline.Result, error) {
	r.ops.Lock()
	defer r.ops.Unlock()
	sec, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return sec.InvokeRow(ctx, index, label, r.confirm)
}

// SetInput changes one input value. Forms are safe for concurrent use so
// this never waits on a request in flight.
func (r *Runtime) SetInput(id string, target engine.Target, key, value string) error {
	sec, err := r.lookup(id)
	if err != nil {
		return err
	}
	return sec.SetInput(target, key, value)
}

// SetFile picks a file for a file input
func (r *Runtime) SetFile(id string, target engine.Target, key string, file types.FileHandle) error {
	sec, err := r.lookup(id)
	if err != nil {
		return err
	}
	return sec.SetFile(target, key, file)
}

// Live returns the live channel runtime of section id
func (r *Runtime) Live(id string) (*engine.Live, error) {
	sec, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	if sec.Live() == nil {
		return nil, types.Errorf(id, "not a live section")
	}
	return sec.Live(), nil
}

// Store returns the shared store
func (r *Runtime) Store() *store.Store {
	return r.store
}

// Status returns the current status line
func (r *Runtime) Status() pipeline.Status {
	return r.pipe.Status.Current()
}

// OnStatus registers fn to run after every status change
func (r *Runtime) OnStatus(fn func(pipeline.Status)) {
	r.pipe.Status.Subscribe(fn)
}

// Snapshot assembles the latest view of every section
func (r *Runtime) Snapshot() view.App {
	st := r.pipe.Status.Current()
	out := view.App{
		Title:  r.app.Title,
		Blurb:  r.app.Blurb,
		Status: view.Status{Message: st.Message, Hint: st.Hint},
	}

	r.mu.RLock()
	mounted := r.mounted
	byID := r.byID
	r.mu.RUnlock()
	if !mounted {
		return out
	}

	if len(r.app.Groups) == 0 {
		g := view.Group{}
		for i := range r.app.Sections {
			g.Sections = append(g.Sections, byID[r.app.Sections[i].Key()].Snapshot())
		}
		out.Groups = []view.Group{g}
		return out
	}
	for _, group := range r.app.Groups {
		g := view.Group{Title: group.Title, Blurb: group.Blurb, Layout: group.Layout}
		for i := range group.Sections {
			g.Sections = append(g.Sections, byID[group.Sections[i].Key()].Snapshot())
		}
		out.Groups = append(out.Groups, g)
	}
	return out
}

// Close releases every live channel. The runtime cannot be used afterwards.
func (r *Runtime) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	sections := r.sections
	r.mu.Unlock()

	var errs []error
	for _, sec := range sections {
		if err := sec.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", sec.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// usable reports why the runtime cannot serve operations, if it cannot
func (r *Runtime) usable() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.mounted {
		return ErrNotMounted
	}
	if r.closed {
		return fmt.Errorf("app %q is closed", r.app.Title)
	}
	return nil
}

// lookup returns a mounted section by id
func (r *Runtime) lookup(id string) (*engine.Section, error) {
	if err := r.usable(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	sec, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, types.Errorf(id, "no such section")
	}
	return sec, nil
}
