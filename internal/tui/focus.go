package tui

import (
	"fmt"

	"github.com/studiowebux/restui/internal/engine"
	"github.com/studiowebux/restui/internal/view"
)

// focusKind is what pressing enter on a focus item does
type focusKind int

const (
	focusInput       focusKind = iota // edit a section, action or row input
	focusAction                       // run a section action
	focusRowAction                    // run a list row action
	focusLiveMessage                  // edit the draft of a live channel
	focusLiveSend                     // send the draft of a live channel
)

// focusItem is one focusable target of a section
type focusItem struct {
	kind focusKind

	// target and key address an input
	target engine.Target
	key    string
	input  view.Input

	// action is the action label, or the client label for live items
	action string
	row    int

	// client name shown in front of multi client messages
	name  string
	value string
}

// label is how the item is listed in a card
func (f focusItem) label() string {
	switch f.kind {
	case focusInput:
		value := f.input.Value
		if f.input.Type == "file" {
			value = f.input.FileName
		}
		if value == "" && f.input.Placeholder != "" {
			value = f.input.Placeholder
		}
		label := f.input.Label
		if label == "" {
			label = f.key
		}
		return fmt.Sprintf("%s: %s", label, value)
	case focusAction, focusRowAction:
		return "[ " + f.action + " ]"
	case focusLiveMessage:
		if f.action != "" {
			return fmt.Sprintf("%s message: %s", f.action, f.value)
		}
		return "message: " + f.value
	case focusLiveSend:
		if f.action != "" {
			return "[ Send as " + f.action + " ]"
		}
		return "[ Send ]"
	}
	return ""
}

// focusItems lists the focusable targets of s in display order
func focusItems(s view.Section) []focusItem {
	var items []focusItem

	addInputs := func(target engine.Target, inputs []view.Input) {
		for _, in := range inputs {
			items = append(items, focusItem{kind: focusInput, target: target, key: in.Key, input: in})
		}
	}

	for _, block := range s.Blocks {
		list, ok := block.(view.List)
		if !ok {
			continue
		}
		for _, row := range list.Rows {
			addInputs(engine.RowTarget(row.Index), row.Inputs)
			for _, a := range row.Actions {
				items = append(items, focusItem{kind: focusRowAction, action: a.Label, row: row.Index})
			}
		}
	}

	if l := s.Live; l != nil {
		if len(l.Clients) == 0 {
			items = append(items,
				focusItem{kind: focusLiveMessage, value: l.Message},
				focusItem{kind: focusLiveSend},
			)
		}
		for _, c := range l.Clients {
			items = append(items,
				focusItem{kind: focusLiveMessage, action: c.Label, name: c.Name, value: c.Message},
				focusItem{kind: focusLiveSend, action: c.Label},
			)
		}
	}

	addInputs(engine.Target{}, s.Inputs)
	for _, a := range s.Actions {
		addInputs(engine.ActionTarget(a.Label), a.Inputs)
		items = append(items, focusItem{kind: focusAction, action: a.Label})
	}
	return items
}

// sameItem reports whether a and b address the same target, so focus
// survives a new snapshot
func sameItem(a, b focusItem) bool {
	return a.kind == b.kind && a.target == b.target && a.key == b.key && a.action == b.action && a.row == b.row
}
