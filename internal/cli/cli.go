// Package cli runs apps without the interactive UI: it renders the mounted
// view once or invokes a single action and prints what it left behind.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/restui/internal/app"
	"github.com/studiowebux/restui/internal/config"
	"github.com/studiowebux/restui/internal/engine"
	"github.com/studiowebux/restui/internal/executor"
	"github.com/studiowebux/restui/internal/history"
	"github.com/studiowebux/restui/internal/logging"
	"github.com/studiowebux/restui/internal/pipeline"
	"github.com/studiowebux/restui/internal/types"
	"github.com/studiowebux/restui/internal/view"
)

// ErrRequestFailed is returned when the invoked action settled on failure
var ErrRequestFailed = errors.New("request failed")

// Options describe how to open an app file
type Options struct {
	AppPath  string
	Settings config.Settings

	// HistoryPath is the history database used when Settings.History is set
	HistoryPath string

	Log     logrus.FieldLogger
	Confirm pipeline.ConfirmFunc
}

// Env is an opened app with its runtime and optional history
type Env struct {
	App     types.App
	Runtime *app.Runtime
	History *history.Manager
}

// Open loads the app file and wires a runtime from the settings
func Open(opts Options) (*Env, error) {
	log := logging.OrDiscard(opts.Log)

	a, err := config.LoadApp(opts.AppPath)
	if err != nil {
		return nil, err
	}

	s := opts.Settings
	transport, err := executor.NewHTTPTransport(s.BaseURL,
		executor.WithTimeout(s.Timeout),
		executor.WithTLS(s.TLSConfig()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	runtimeOpts := []app.Option{
		app.WithLogger(log),
		app.WithDialer(executor.NewWSDialer(s.BaseURL, s.TLSConfig())),
		app.WithStore(s.Store),
		app.WithConfirmer(opts.Confirm),
	}
	if !s.MockInference {
		runtimeOpts = append(runtimeOpts, app.WithoutMockInference())
	}

	env := &Env{App: a}
	if s.History && opts.HistoryPath != "" {
		mgr, err := history.NewManager(opts.HistoryPath, a.Title)
		if err != nil {
			return nil, err
		}
		env.History = mgr
		runtimeOpts = append(runtimeOpts, app.WithRecorder(mgr))
	}

	rt, err := app.New(a, transport, runtimeOpts...)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.Runtime = rt

	log.WithFields(logrus.Fields{
		"app":      a.Title,
		"file":     filepath.Base(opts.AppPath),
		"base_url": s.BaseURL,
	}).Debug("app opened")
	return env, nil
}

// Close releases the runtime and the history database
func (e *Env) Close() error {
	var errs []error
	if e.Runtime != nil {
		errs = append(errs, e.Runtime.Close())
	}
	if e.History != nil {
		errs = append(errs, e.History.Close())
	}
	return errors.Join(errs...)
}

// mount mounts the runtime once
func (e *Env) mount(ctx context.Context) error {
	if e.Runtime.Mounted() {
		return nil
	}
	return e.Runtime.Mount(ctx)
}

// Render mounts the app and writes its view once. Refresh failures are
// shown in the view and returned after it is written.
func Render(ctx context.Context, env *Env, w io.Writer, format string) error {
	mountErr := env.mount(ctx)

	output, err := formatOutput(env.Runtime.Snapshot(), format)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	if _, err := io.WriteString(w, output); err != nil {
		return err
	}
	return mountErr
}

// InvokeOptions select one action and its inputs
type InvokeOptions struct {
	Section string
	Action  string

	// Row selects a list row for row actions; negative means a section action
	Row int

	// Inputs are key=value pairs; a value starting with @ picks a file
	Inputs []string

	Format string
}

// Invoke mounts the app, fills the inputs and runs one action. The
// section it belongs to is written afterwards.
func Invoke(ctx context.Context, env *Env, w io.Writer, opts InvokeOptions) error {
	inputs, err := ParseInputs(opts.Inputs)
	if err != nil {
		return err
	}

	rt := env.Runtime
	if err := env.mount(ctx); err != nil {
		// Sections that failed to load do not stop the action
		var re *engine.RefreshError
		if !errors.As(err, &re) {
			return err
		}
	}

	target := engine.ActionTarget(opts.Action)
	if opts.Row >= 0 {
		target = engine.RowTarget(opts.Row)
	}
	for _, in := range inputs {
		if err := setInput(rt, opts.Section, target, in); err != nil {
			return err
		}
	}

	var res *pipeline.Result
	if opts.Row >= 0 {
		res, err = rt.InvokeRow(ctx, opts.Section, opts.Row, opts.Action)
	} else {
		res, err = rt.Invoke(ctx, opts.Section, opts.Action)
	}
	if err != nil && res == nil {
		return err
	}

	section, _ := rt.Snapshot().Section(opts.Section)
	output, ferr := formatResult(res, rt.Snapshot().Status, section, opts.Format)
	if ferr != nil {
		return fmt.Errorf("failed to format output: %w", ferr)
	}
	if _, werr := io.WriteString(w, output); werr != nil {
		return werr
	}

	if err != nil {
		return err
	}
	if res.State == pipeline.StateFailed {
		return ErrRequestFailed
	}
	return nil
}

// Input is one key=value pair given on the command line
type Input struct {
	Key   string
	Value string
}

// ParseInputs splits key=value pairs, keeping their order
func ParseInputs(pairs []string) ([]Input, error) {
	inputs := make([]Input, 0, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid input %q (expected key=value)", pair)
		}
		inputs = append(inputs, Input{Key: key, Value: value})
	}
	return inputs, nil
}

// setInput writes to the action (or row) form first and falls back to
// the section form
func setInput(rt *app.Runtime, id string, target engine.Target, in Input) error {
	set := func(t engine.Target) error {
		if path, ok := strings.CutPrefix(in.Value, "@"); ok {
			return rt.SetFile(id, t, in.Key, types.FileHandle{Path: path, Name: filepath.Base(path)})
		}
		return rt.SetInput(id, t, in.Key, in.Value)
	}
	if err := set(target); err == nil {
		return nil
	}
	if err := set(engine.Target{}); err != nil {
		return fmt.Errorf("input %s: %w", in.Key, err)
	}
	return nil
}

// formatOutput formats a snapshot based on the output format
func formatOutput(snap view.App, format string) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil

	case "yaml":
		data, err := yaml.Marshal(snap)
		if err != nil {
			return "", err
		}
		return string(data), nil

	case "text", "":
		var sb strings.Builder
		if err := view.Render(&sb, snap); err != nil {
			return "", err
		}
		return sb.String(), nil

	default:
		return "", fmt.Errorf("unknown output format %q", format)
	}
}

// invokeReport is the structured output of an invocation
type invokeReport struct {
	State    string          `json:"state" yaml:"state"`
	Status   view.Status     `json:"status" yaml:"status"`
	Output   string          `json:"output,omitempty" yaml:"output,omitempty"`
	Envelope *types.Envelope `json:"envelope,omitempty" yaml:"envelope,omitempty"`
	Section  view.Section    `json:"section" yaml:"section"`
}

// formatResult formats what an invocation left behind
func formatResult(res *pipeline.Result, st view.Status, section view.Section, format string) (string, error) {
	report := invokeReport{State: res.State.String(), Status: st, Output: res.Output, Envelope: res.Envelope, Section: section}

	switch format {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil

	case "yaml":
		data, err := yaml.Marshal(report)
		if err != nil {
			return "", err
		}
		return string(data), nil

	case "text", "":
		var sb strings.Builder

		// Status line
		statusColor := getStatusColor(res)
		sb.WriteString(fmt.Sprintf("%s%s%s\n", statusColor, view.StatusLine(st), colorReset))
		if env := res.Envelope; env != nil && env.Status > 0 {
			sb.WriteString(fmt.Sprintf("Status: %d | Duration: %s\n", env.Status, executor.FormatDuration(env.Duration)))
		}
		sb.WriteString("\n")
		sb.WriteString(view.RenderSection(section))
		return sb.String(), nil

	default:
		return "", fmt.Errorf("unknown output format %q", format)
	}
}

// ANSI color codes
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
)

func getStatusColor(res *pipeline.Result) string {
	switch res.State {
	case pipeline.StateSucceeded:
		return colorGreen
	case pipeline.StateFailed:
		return colorRed
	}
	return colorYellow
}
