package tui

import "time"

// UI Layout Constants

const (
	// Lines used by the header (title + blurb) and the status bar
	HeaderLines    = 2
	StatusBarLines = 1

	// Width consumed by a card border and its padding
	CardChrome = 4

	// Snapshots are pulled at this rate so live channels show up
	// without a key press
	SnapshotInterval = 250 * time.Millisecond

	// Status messages longer than this are truncated in the status bar
	StatusMaxWidth = 100
)
