/*
Package tui is the interactive terminal front end of restui.

It renders immutable snapshots of an app.Runtime as a column of section
cards and never touches the engine directly: every key press that changes
state calls a Runtime operation from a tea.Cmd, and the next snapshot
shows the result.

Focus moves across sections (tab, shift+tab) and across the focusable
targets of the focused section (j, k): inputs, action buttons, list row
inputs and actions, and live channel drafts. Enter edits an input or runs
an action. Actions that ask for confirmation open an in-UI prompt through
the Confirmer handed to the Runtime.

Keys come from the keybinds package and can be rebound in
~/.restui/keybinds.yaml.
*/
package tui
