package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/studiowebux/restui/internal/binder"
	"github.com/studiowebux/restui/internal/executor"
	"github.com/studiowebux/restui/internal/logging"
	"github.com/studiowebux/restui/internal/pipeline"
	"github.com/studiowebux/restui/internal/resolver"
	"github.com/studiowebux/restui/internal/types"
	"github.com/studiowebux/restui/internal/view"
)

// Deps are the collaborators shared by every section of an app
type Deps struct {
	Pipeline *pipeline.Pipeline
	Dialer   executor.Dialer

	// InferMocks enables the last mock tier (payloads shaped after the display)
	InferMocks bool

	Log logrus.FieldLogger
}

// TargetKind selects which form of a section an input belongs to
type TargetKind int

const (
	TargetSection TargetKind = iota
	TargetAction
	TargetRow
)

// Target addresses one form of a section. The zero value is the section form.
type Target struct {
	Kind   TargetKind
	Action string
	Row    int
}

// ActionTarget addresses the form of the action labelled label
func ActionTarget(label string) Target {
	return Target{Kind: TargetAction, Action: label}
}

// RowTarget addresses the form of list row i
func RowTarget(i int) Target {
	return Target{Kind: TargetRow, Row: i}
}

// row is one list record with its bound row inputs
type row struct {
	record
	form *binder.Form
}

// Section is the runtime of one declared section
type Section struct {
	desc *types.Section
	deps Deps
	log  logrus.FieldLogger

	form        *binder.Form
	actionForms []*binder.Form
	live        *Live

	mu       sync.Mutex
	display  types.Display
	decided  bool
	lastData any
	mocked   bool
	meta     string
	list     view.Block
	rows     []row
	body     view.Block
	output   string
	failure  string

	current atomic.Pointer[view.Section]
}

// NewSection builds the runtime of desc and publishes its first snapshot
func NewSection(desc *types.Section, deps Deps) *Section {
	s := &Section{
		desc:   desc,
		deps:   deps,
		log:    logging.OrDiscard(deps.Log).WithField("section", desc.Key()),
		output: "-",
	}

	snapshot := deps.Pipeline.Store.Snapshot()
	s.form = binder.BuildForm(desc.Fields, snapshot, nil, nil)
	for _, action := range desc.Actions {
		s.actionForms = append(s.actionForms, binder.BuildForm(action.Fields, snapshot, nil, nil))
	}
	if desc.Live != nil {
		s.live = newLive(*desc.Live, deps.Dialer, deps.Pipeline, s.log, s.publish)
	}
	s.publish()
	return s
}

// ID returns the section identifier
func (s *Section) ID() string {
	return s.desc.Key()
}

// Descriptor returns the declared section
func (s *Section) Descriptor() *types.Section {
	return s.desc
}

// Live returns the live channel runtime, nil for other sections
func (s *Section) Live() *Live {
	return s.live
}

// Display returns the memoized display rule and whether it was decided yet
func (s *Section) Display() (types.Display, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.display, s.decided
}

// Snapshot returns the latest published view of the section
func (s *Section) Snapshot() view.Section {
	return *s.current.Load()
}

// Start opens eager live channels
func (s *Section) Start(ctx context.Context) {
	if s.live != nil {
		s.live.Start(ctx)
	}
}

// Close releases live channels
func (s *Section) Close() error {
	if s.live != nil {
		return s.live.Close()
	}
	return nil
}

// Refresh regenerates everything data-derived in the section. It fails
// only when a read fails and no mock is available; the previous view
// stays in place and the status line shows the reason.
func (s *Section) Refresh(ctx context.Context) error {
	if s.live != nil {
		err := s.live.LoadHistory(ctx)
		s.publish()
		return err
	}

	st := s.deps.Pipeline.Store
	snapshot := st.Snapshot()
	binder.UpdateOptions(s.form, snapshot, s.log)
	for _, form := range s.actionForms {
		binder.UpdateOptions(form, snapshot, s.log)
	}

	display := s.decide()
	switch {
	case s.desc.Read != nil:
		return s.refreshRead(ctx, display)
	case display.From != "" && isRows(display):
		rows, _ := resolver.Lookup(snapshot, display.From)
		list, records := renderRows(display, rows, snapshot)
		meta := ""
		if m := s.desc.Meta; m != nil {
			source := rows
			if m.Path != "" {
				source, _ = resolver.Lookup(snapshot, m.Path)
			}
			meta = renderMeta(m, source, snapshot)
		}
		s.commit(list, records, meta, nil, snapshot)
	case display.Kind == types.DisplayStoreValue:
		var rows any = []any{}
		if value, ok := snapshot[display.Key]; ok && resolver.Truthy(value) {
			rows = []any{map[string]any{display.Key: value}}
		}
		list, records := renderRows(types.Display{Kind: types.DisplayList, Template: display.Template}, rows, snapshot)
		s.commit(list, records, "", nil, snapshot)
	default:
		s.commit(nil, nil, "", nil, snapshot)
	}
	return nil
}

func (s *Section) refreshRead(ctx context.Context, display types.Display) error {
	st := s.deps.Pipeline.Store
	read := s.desc.Read

	payload := pipeline.BuildQueryPayload(s.desc.Query, s.form, st)
	path := read.Path
	if resolver.HasTokens(path) {
		path = resolver.RenderTemplate(path, payload, st.Snapshot())
	}
	path = pipeline.BuildQueryPath(path, payload)

	env := s.deps.Pipeline.Send(ctx, pipeline.RequestSpec{Method: read.Method, Path: path})
	mocked := false
	if env.Status == 0 || (!env.OK && s.desc.Mock != nil) {
		data, ok, err := mockPayload(s.desc, display, st.Snapshot(), s.deps.InferMocks)
		if !ok {
			return s.exhausted(env, err)
		}
		s.log.WithField("status", env.Status).Warn("mocking section data")
		env = executor.Mocked(data)
		mocked = true
	}

	st.ApplyStore(s.desc.StoreMap, env.JSON)
	snapshot := st.Snapshot()

	var data any
	if env.HasData {
		data = env.Data
	}

	var list view.Block
	var records []record
	if isRows(display) {
		var rows any
		if display.From != "" {
			rows, _ = resolver.Lookup(snapshot, display.From)
		} else if env.HasData {
			rows = env.Data
		} else {
			rows = env.JSON
		}
		list, records = renderRows(display, rows, snapshot)
	}

	meta := ""
	if m := s.desc.Meta; m != nil {
		source := data
		if m.Path != "" {
			source, _ = resolver.Lookup(snapshot, m.Path)
		}
		meta = renderMeta(m, source, snapshot)
	}

	s.mu.Lock()
	s.mocked = mocked
	s.lastData = env.JSON
	s.failure = ""
	if !env.OK {
		s.failure = env.ErrorMessage()
	}
	s.mu.Unlock()

	s.commit(list, records, meta, data, snapshot)
	return nil
}

// exhausted handles a failed read with nothing to fall back on
func (s *Section) exhausted(env *types.Envelope, cause error) error {
	if cause == nil {
		reason := env.ErrorMessage()
		if reason == "" {
			reason = fmt.Sprintf("status %d", env.Status)
		}
		cause = fmt.Errorf("%s: %w", reason, ErrNoMock)
	}
	s.log.WithError(cause).Warn("section refresh failed")
	s.deps.Pipeline.Status.Fail(cause.Error())

	s.mu.Lock()
	s.mocked = false
	s.failure = cause.Error()
	s.mu.Unlock()
	s.publish()

	return &RefreshError{Section: s.ID(), Err: cause}
}

// commit stores the rendered pass, publishes it and runs the render hook
func (s *Section) commit(list view.Block, records []record, meta string, data any, snapshot map[string]any) {
	display, _ := s.Display()
	if data == nil {
		data = s.lastPayload()
	}

	rows := make([]row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, row{record: rec, form: s.rowForm(rec.data, snapshot)})
	}
	body := renderView(display, snapshot, data)

	s.mu.Lock()
	s.list = list
	s.rows = rows
	s.meta = meta
	s.body = body
	s.mu.Unlock()
	s.publish()

	if s.desc.OnRender != nil {
		s.desc.OnRender(data, snapshot)
	}
}

// lastPayload returns the data of the last read response
func (s *Section) lastPayload() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.lastData.(map[string]any); ok {
		return m["data"]
	}
	return nil
}

// rowForm binds the row fields of one record. Row values win over defaults.
func (s *Section) rowForm(data map[string]any, snapshot map[string]any) *binder.Form {
	fields := append(types.FieldList(nil), s.desc.RowFields...)
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		seen[f.Key] = true
	}
	for _, action := range s.desc.RowActions {
		for _, f := range action.Fields {
			if !seen[f.Key] {
				seen[f.Key] = true
				fields = append(fields, f)
			}
		}
	}
	return binder.BuildForm(fields, snapshot, data, data)
}

// decide evaluates the display decision table once
func (s *Section) decide() types.Display {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.decided {
		var rule string
		s.display, rule = DecideDisplay(s.desc)
		s.decided = true
		s.log.WithFields(logrus.Fields{"display": s.display.Kind.String(), "rule": rule}).Debug("display decided")
	}
	return s.display
}

func isRows(d types.Display) bool {
	return d.Kind == types.DisplayList || d.Kind == types.DisplayTable
}

// Invoke runs the action labelled label
func (s *Section) Invoke(ctx context.Context, label string, confirm pipeline.ConfirmFunc) (*pipeline.Result, error) {
	i := s.actionIndex(s.desc.Actions, label)
	if i < 0 {
		return nil, types.Errorf(s.ID(), "no action %q", label)
	}
	res, err := s.deps.Pipeline.Run(ctx, pipeline.Invocation{
		Section:     s.desc,
		Action:      &s.desc.Actions[i],
		Form:        s.actionForms[i],
		SectionForm: s.form,
		Confirm:     confirm,
	})
	if res != nil && res.Output != "" {
		s.mu.Lock()
		s.output = res.Output
		s.mu.Unlock()
	}
	s.publish()
	return res, err
}

// InvokeRow runs the row action labelled label against list row index
func (s *Section) InvokeRow(ctx context.Context, index int, label string, confirm pipeline.ConfirmFunc) (*pipeline.Result, error) {
	i := s.actionIndex(s.desc.RowActions, label)
	if i < 0 {
		return nil, types.Errorf(s.ID(), "no row action %q", label)
	}

	s.mu.Lock()
	if index < 0 || index >= len(s.rows) {
		s.mu.Unlock()
		return nil, types.Errorf(s.ID(), "no row %d", index)
	}
	r := s.rows[index]
	s.mu.Unlock()

	data := r.data
	if data == nil {
		data = map[string]any{}
	}
	res, err := s.deps.Pipeline.Run(ctx, pipeline.Invocation{
		Section:     s.desc,
		Action:      &s.desc.RowActions[i],
		Form:        r.form,
		SectionForm: s.form,
		Row:         data,
		Confirm:     confirm,
	})
	s.publish()
	return res, err
}

func (s *Section) actionIndex(actions []types.Action, label string) int {
	for i := range actions {
		if strings.EqualFold(actions[i].Label, label) {
			return i
		}
	}
	return -1
}

// Form returns the form addressed by target
func (s *Section) Form(target Target) (*binder.Form, error) {
	switch target.Kind {
	case TargetSection:
		return s.form, nil
	case TargetAction:
		i := s.actionIndex(s.desc.Actions, target.Action)
		if i < 0 {
			return nil, types.Errorf(s.ID(), "no action %q", target.Action)
		}
		return s.actionForms[i], nil
	case TargetRow:
		s.mu.Lock()
		defer s.mu.Unlock()
		if target.Row < 0 || target.Row >= len(s.rows) {
			return nil, types.Errorf(s.ID(), "no row %d", target.Row)
		}
		return s.rows[target.Row].form, nil
	}
	return nil, types.Errorf(s.ID(), "unknown input target")
}

// SetInput changes the value of one input
func (s *Section) SetInput(target Target, key, value string) error {
	form, err := s.Form(target)
	if err != nil {
		return err
	}
	if err := form.Set(key, value); err != nil {
		return types.Errorf(s.ID()+"."+key, "%v", err)
	}
	s.publish()
	return nil
}

// SetFile picks a file for a file input
func (s *Section) SetFile(target Target, key string, file types.FileHandle) error {
	form, err := s.Form(target)
	if err != nil {
		return err
	}
	if err := form.SetFile(key, file); err != nil {
		return types.Errorf(s.ID()+"."+key, "%v", err)
	}
	s.publish()
	return nil
}

// publish assembles and stores a new immutable snapshot
func (s *Section) publish() {
	desc := s.desc
	v := view.Section{
		ID:         desc.Key(),
		Title:      desc.Title,
		Layout:     desc.Layout,
		Links:      desc.Links,
		HTML:       desc.HTML,
		Inputs:     inputs(s.form),
		ShowOutput: len(desc.Actions) > 0 && !desc.Hidden && !desc.NoOutput,
	}
	for i, action := range desc.Actions {
		v.Actions = append(v.Actions, view.Action{
			Label:   action.Label,
			Method:  action.HTTPMethod(),
			Confirm: action.Confirm,
			Inputs:  inputs(s.actionForms[i]),
		})
	}
	if s.live != nil {
		v.Live = s.live.View()
	}

	s.mu.Lock()
	v.Mocked = s.mocked
	v.Meta = s.meta
	v.Output = s.output
	v.Err = s.failure
	if list, ok := s.list.(view.List); ok && list.Empty == "" {
		list.Rows = make([]view.Row, 0, len(s.rows))
		for i, r := range s.rows {
			list.Rows = append(list.Rows, view.Row{
				Index:   i,
				Text:    r.text,
				HTML:    r.html,
				Inputs:  inputs(r.form),
				Actions: rowActions(desc.RowActions),
			})
		}
		v.Blocks = append(v.Blocks, list)
	} else if s.list != nil {
		v.Blocks = append(v.Blocks, s.list)
	}
	if s.body != nil {
		v.Blocks = append(v.Blocks, s.body)
	}
	s.mu.Unlock()

	s.current.Store(&v)
}

func inputs(form *binder.Form) []view.Input {
	var out []view.Input
	for _, in := range form.Inputs() {
		vi := view.Input{
			Key:         in.Key,
			Type:        in.Type,
			Label:       in.Label,
			Placeholder: in.Placeholder,
			Value:       in.Value,
			Rows:        in.Rows,
			Options:     append([]types.Option(nil), in.Options...),
		}
		if in.File != nil {
			vi.FileName = in.File.Name
		}
		out = append(out, vi)
	}
	return out
}

func rowActions(actions []types.Action) []view.Action {
	out := make([]view.Action, 0, len(actions))
	for _, a := range actions {
		out = append(out, view.Action{Label: a.Label, Method: a.HTTPMethod(), Confirm: a.Confirm})
	}
	return out
}

// IsRefreshError reports whether err carries a RefreshError
func IsRefreshError(err error) bool {
	var re *RefreshError
	return errors.As(err, &re)
}
