package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	// Contexts define where keybindings are active
	ContextGlobal  Context = "global"  // Available everywhere
	ContextNormal  Context = "normal"  // Section navigation
	ContextEdit    Context = "edit"    // Editing an input or live message
	ContextConfirm Context = "confirm" // Confirmation prompt of an action
	ContextHelp    Context = "help"    // Help viewer
)

const (
	// Global actions
	ActionQuit      Action = "quit"       // Quit application
	ActionQuitForce Action = "quit_force" // Force quit (ctrl+c)

	// Navigation actions
	ActionNavigateUp     Action = "navigate_up"       // Previous input or action
	ActionNavigateDown   Action = "navigate_down"     // Next input or action
	ActionNextSection    Action = "next_section"      // Focus next section
	ActionPrevSection    Action = "prev_section"      // Focus previous section
	ActionGoToTop        Action = "go_to_top"         // First section
	ActionGoToBottom     Action = "go_to_bottom"      // Last section
	ActionGoToTopPrepare Action = "go_to_top_prepare" // First 'g' in 'gg' sequence
	ActionPageUp         Action = "page_up"           // Scroll view up one page
	ActionPageDown       Action = "page_down"         // Scroll view down one page
	ActionHalfPageUp     Action = "half_page_up"      // Scroll view up half a page
	ActionHalfPageDown   Action = "half_page_down"    // Scroll view down half a page

	// Section actions
	ActionActivate    Action = "activate"     // Edit the focused input or run the focused action
	ActionRefresh     Action = "refresh"      // Reload the focused section
	ActionRefreshAll  Action = "refresh_all"  // Reload every section
	ActionCopyOutput  Action = "copy_output"  // Copy the section output to the clipboard
	ActionLiveConnect Action = "live_connect" // Open the live channel of the section
	ActionLiveHistory Action = "live_history" // Reload the live history list
	ActionOpenHelp    Action = "open_help"    // Show keybindings

	// Text input actions
	ActionTextSubmit Action = "text_submit" // Store the edited value
	ActionTextCancel Action = "text_cancel" // Leave the editor unchanged

	// Confirmation actions
	ActionConfirmYes Action = "confirm_yes"
	ActionConfirmNo  Action = "confirm_no"

	// Modal actions
	ActionCloseModal Action = "close_modal"
)

// contexts lists every context a config file may name
var contexts = []Context{ContextGlobal, ContextNormal, ContextEdit, ContextConfirm, ContextHelp}

// actions lists every action a config file may bind
var actions = map[Action]bool{
	ActionQuit: true, ActionQuitForce: true,
	ActionNavigateUp: true, ActionNavigateDown: true,
	ActionNextSection: true, ActionPrevSection: true,
	ActionGoToTop: true, ActionGoToBottom: true, ActionGoToTopPrepare: true,
	ActionPageUp: true, ActionPageDown: true,
	ActionHalfPageUp: true, ActionHalfPageDown: true,
	ActionActivate: true, ActionRefresh: true, ActionRefreshAll: true,
	ActionCopyOutput: true, ActionLiveConnect: true, ActionLiveHistory: true,
	ActionOpenHelp: true,
	ActionTextSubmit: true, ActionTextCancel: true,
	ActionConfirmYes: true, ActionConfirmNo: true,
	ActionCloseModal: true,
}

// IsKnown reports whether a is an action the UI handles
func IsKnown(a Action) bool {
	return actions[a]
}

// Describe returns the help text of an action
func Describe(a Action) string {
	switch a {
	case ActionQuit:
		return "Quit"
	case ActionQuitForce:
		return "Quit immediately"
	case ActionNavigateUp:
		return "Previous input or action"
	case ActionNavigateDown:
		return "Next input or action"
	case ActionNextSection:
		return "Next section"
	case ActionPrevSection:
		return "Previous section"
	case ActionGoToTop:
		return "First section"
	case ActionGoToBottom:
		return "Last section"
	case ActionPageUp, ActionHalfPageUp:
		return "Scroll up"
	case ActionPageDown, ActionHalfPageDown:
		return "Scroll down"
	case ActionActivate:
		return "Edit input, run action or send message"
	case ActionRefresh:
		return "Reload section"
	case ActionRefreshAll:
		return "Reload every section"
	case ActionCopyOutput:
		return "Copy section output"
	case ActionLiveConnect:
		return "Connect live channel"
	case ActionLiveHistory:
		return "Reload live history"
	case ActionOpenHelp:
		return "Toggle help"
	case ActionTextSubmit:
		return "Save value"
	case ActionTextCancel:
		return "Discard edit"
	case ActionConfirmYes:
		return "Confirm"
	case ActionConfirmNo:
		return "Cancel"
	case ActionCloseModal:
		return "Close"
	}
	return string(a)
}
