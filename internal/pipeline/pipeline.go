// Package pipeline runs user-triggered actions: confirmation, body and
// request construction, the network round trip, store mapping and the
// refresh cascade that follows.
package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/studiowebux/restui/internal/binder"
	"github.com/studiowebux/restui/internal/executor"
	"github.com/studiowebux/restui/internal/logging"
	"github.com/studiowebux/restui/internal/resolver"
	"github.com/studiowebux/restui/internal/store"
	"github.com/studiowebux/restui/internal/types"
)

// Refresher re-runs section refresh passes after an action settles
type Refresher interface {
	RefreshAll(ctx context.Context) error
	RefreshSection(ctx context.Context, id string) error
}

// Recorder receives every envelope the pipeline produces
type Recorder interface {
	Record(ctx context.Context, method, url string, env *types.Envelope) error
}

// ConfirmFunc asks the user to approve a destructive action
type ConfirmFunc func(ctx context.Context, message string) bool

// Pipeline executes actions against one store
type Pipeline struct {
	Transport executor.Transport
	Store     *store.Store
	Status    *Indicator
	Refresher Refresher
	Recorder  Recorder
	Log       logrus.FieldLogger

	// Observer sees every state transition
	Observer func(State)
}

// New creates a pipeline with a fresh status indicator
func New(transport executor.Transport, st *store.Store, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		Transport: transport,
		Store:     st,
		Status:    NewIndicator(),
		Log:       log,
	}
}

// Invocation is one click on an action
type Invocation struct {
	Section     *types.Section
	Action      *types.Action
	Form        *binder.Form
	SectionForm *binder.Form

	// Row is set for row actions
	Row map[string]any

	Confirm ConfirmFunc
}

// Result is what the invocation left behind
type Result struct {
	State    State
	Envelope *types.Envelope
	Output   string
	Body     map[string]any
}

// Run executes one invocation. Configuration and validation errors abort
// before the store is touched. Network failures are reported through the
// envelope, not the error. A returned error with a non-nil result comes
// from the refresh cascade.
func (p *Pipeline) Run(ctx context.Context, inv Invocation) (*Result, error) {
	action := inv.Action
	if action == nil || inv.Section == nil {
		return nil, &types.ConfigError{Message: "invocation needs a section and an action"}
	}
	log := p.logger().WithFields(logrus.Fields{
		"section": inv.Section.Key(),
		"action":  action.Label,
	})

	// Confirming
	if action.Confirm != "" {
		p.observe(StateConfirming)
		if inv.Confirm == nil || !inv.Confirm(ctx, action.Confirm) {
			log.Debug("action declined")
			p.observe(StateIdle)
			return &Result{State: StateIdle}, nil
		}
	}

	// Building
	p.observe(StateBuilding)
	fields := action.Fields
	fallback := inv.SectionForm
	if inv.Row != nil {
		if len(fields) == 0 {
			fields = inv.Section.RowFields
		}
		fallback = nil
	}
	collected, err := binder.CollectFields(fields, inv.Form, fallback)
	if err != nil {
		p.observe(StateIdle)
		return nil, err
	}

	body := make(map[string]any, len(action.Body)+len(collected))
	for key, value := range action.Body {
		body[key] = value
	}
	for key, value := range collected {
		body[key] = value
	}

	path := action.Path
	if resolver.HasTokens(path) {
		scope := body
		if inv.Row != nil {
			scope = inv.Row
		}
		path = resolver.RenderTemplate(path, scope, p.Store.Snapshot())
	}
	if path == "" && !action.Local && action.Custom == nil {
		p.observe(StateIdle)
		return nil, types.Errorf(inv.Section.Key()+"."+action.Label, "networked action needs a path")
	}

	// Optimistic local echoes
	touched := p.Store.ApplySetMap(action.Set, body)
	touched = append(touched, p.Store.ApplyAdjustments(action.Adjust)...)
	if len(touched) > 0 {
		snapshot := p.Store.Snapshot()
		binder.SyncInputs(snapshot, inv.SectionForm, touched...)
		binder.SyncInputs(snapshot, inv.Form, touched...)
	}

	query := BuildQueryPayload(inv.Section.Query, inv.SectionForm, p.Store)

	if action.Custom != nil {
		res, err := p.runCustom(ctx, inv, body)
		if err != nil {
			return res, err
		}
		return res, p.cascade(ctx, inv)
	}

	if action.Local {
		env := executor.Local()
		p.Status.Report(env)
		p.observe(StateSucceeded)
		return &Result{State: StateSucceeded, Envelope: env, Output: "ok", Body: body}, p.cascade(ctx, inv)
	}

	method := action.HTTPMethod()
	if method == types.MethodGet && len(inv.Section.Query) > 0 {
		path = BuildQueryPath(path, query)
	}

	// In flight
	p.observe(StateInFlight)
	env := p.Send(ctx, RequestSpec{
		Method:      method,
		Path:        path,
		Body:        body,
		Headers:     action.Headers,
		Auth:        action.Auth,
		Credentials: action.Credentials,
		Row:         inv.Row,
	})

	// Settling
	output := env.Raw
	if output == "" {
		output = "-"
	}
	p.Store.ApplyStore(action.StoreMap, env.JSON)
	p.Store.ApplyHeaderStore(action.HeaderStoreMap, env.Headers)
	snapshot := p.Store.Snapshot()
	binder.SyncInputs(snapshot, inv.Form)
	binder.SyncInputs(snapshot, inv.SectionForm)
	p.Status.Report(env)

	state := StateSucceeded
	if !env.OK {
		state = StateFailed
		log.WithFields(logrus.Fields{"status": env.Status, "error": env.ErrorMessage()}).Info("action failed")
	}
	p.observe(state)

	return &Result{State: state, Envelope: env, Output: output, Body: body}, p.cascade(ctx, inv)
}

func (p *Pipeline) runCustom(ctx context.Context, inv Invocation, body map[string]any) (*Result, error) {
	snapshot := p.Store.Snapshot()
	templated := make(map[string]any, len(body))
	for key, value := range body {
		if s, ok := value.(string); ok && resolver.HasTokens(s) {
			value = resolver.RenderTemplate(s, body, snapshot)
		}
		templated[key] = value
	}

	res := &Result{State: StateSucceeded, Body: templated}
	var last *types.Envelope
	cc := types.CustomContext{
		Body:  templated,
		Store: p.Store,
		Request: func(ctx context.Context, path string, opts types.RequestOptions) *types.Envelope {
			method := opts.Method
			if method == "" {
				method = types.MethodGet
			}
			p.observe(StateInFlight)
			last = p.Send(ctx, RequestSpec{
				Method:      method,
				Path:        path,
				Body:        opts.Body,
				Headers:     opts.Headers,
				Credentials: inv.Action.Credentials,
			})
			return last
		},
		SetOutput: func(text string) { res.Output = text },
		SetStatus: func(env *types.Envelope) { p.Status.Report(env) },
	}

	p.observe(StateInFlight)
	if err := inv.Action.Custom(ctx, cc); err != nil {
		p.Status.Fail(err.Error())
		p.observe(StateFailed)
		res.State = StateFailed
		return res, fmt.Errorf("custom action %s: %w", inv.Action.Label, err)
	}
	res.Envelope = last
	if last != nil && !last.OK {
		res.State = StateFailed
	}
	p.observe(res.State)
	return res, nil
}

// cascade refreshes every section or only the owner after a settle
func (p *Pipeline) cascade(ctx context.Context, inv Invocation) error {
	if p.Refresher == nil {
		return nil
	}
	if inv.Action.RefreshAll {
		return p.Refresher.RefreshAll(ctx)
	}
	if !inv.Section.NoRefresh && inv.Section.ReadsData() {
		return p.Refresher.RefreshSection(ctx, inv.Section.Key())
	}
	return nil
}

func (p *Pipeline) observe(s State) {
	if p.Observer != nil {
		p.Observer(s)
	}
}

func (p *Pipeline) logger() logrus.FieldLogger {
	return logging.OrDiscard(p.Log)
}
