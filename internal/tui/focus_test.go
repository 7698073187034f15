package tui

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/studiowebux/restui/internal/engine"
	"github.com/studiowebux/restui/internal/types"
	"github.com/studiowebux/restui/internal/view"
)

func TestFocusItemsOrder(t *testing.T) {
	s := view.Section{
		Blocks: []view.Block{view.List{Rows: []view.Row{
			{Index: 0, Text: "Lamp", Inputs: []view.Input{{Key: "qty", Label: "Qty", Value: "1"}}, Actions: []view.Action{{Label: "Buy"}}},
		}}},
		Inputs:  []view.Input{{Key: "q", Label: "Search"}},
		Actions: []view.Action{{Label: "Save", Inputs: []view.Input{{Key: "note", Label: "Note"}}}},
		Live:    &view.Live{Message: "hello"},
	}

	var got []string
	for _, item := range focusItems(s) {
		got = append(got, item.label())
	}
	want := []string{
		"Qty: 1",
		"[ Buy ]",
		"message: hello",
		"[ Send ]",
		"Search: ",
		"Note: ",
		"[ Save ]",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}

	items := focusItems(s)
	if items[0].target != engine.RowTarget(0) || items[5].target != engine.ActionTarget("Save") {
		t.Errorf("targets: %+v, %+v", items[0].target, items[5].target)
	}
}

func TestFocusItemsClients(t *testing.T) {
	s := view.Section{Live: &view.Live{Clients: []view.LiveClient{
		{Label: "Alice", Name: "alice", Message: "hi"},
	}}}
	var got []string
	for _, item := range focusItems(s) {
		got = append(got, item.label())
	}
	want := []string{"Alice message: hi", "[ Send as Alice ]"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{types.Errorf("create", "no such action"), "config: create: no such action"},
		{fmt.Errorf("send: %w", engine.ErrNotConnected), "Live channel not connected - press the connect key first"},
		{errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), "Connection refused - check if server is running and port is correct"},
		{errors.New("websocket: bad handshake"), "Live channel handshake failed - check the live url"},
		{errors.New("something else"), "something else"},
	}
	for _, tt := range tests {
		if got := describeError(tt.err); got != tt.want {
			t.Errorf("describeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
