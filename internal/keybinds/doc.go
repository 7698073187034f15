/*
Package keybinds maps terminal keys to UI actions.

Bindings live in contexts (global, normal, edit, confirm, help). A key is
looked up in the active context first and then in the global one. The
"gg" sequence is recognised through MatchMultiKey.

Defaults come from NewDefaultRegistry. A keybinds.yaml (or .json) file in
the config directory replaces the keys of the actions it names:

	normal:
	  refresh: "r,F5"
	  copy_output: "y"
	help:
	  close_modal: "esc,q"

ctrl+c always force quits and cannot be rebound.
*/
package keybinds
