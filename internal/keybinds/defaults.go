package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerNormalModeBindings(r)
	registerEditBindings(r)
	registerConfirmBindings(r)
	registerHelpBindings(r)

	return r
}

// registerGlobalBindings sets up bindings available in all modes
func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
}

// registerNormalModeBindings sets up section navigation
func registerNormalModeBindings(r *Registry) {
	r.Register(ContextNormal, "q", ActionQuit)

	r.RegisterMultiple(ContextNormal, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextNormal, []string{"down", "j"}, ActionNavigateDown)
	r.RegisterMultiple(ContextNormal, []string{"tab", "l"}, ActionNextSection)
	r.RegisterMultiple(ContextNormal, []string{"shift+tab", "h"}, ActionPrevSection)
	r.Register(ContextNormal, "g", ActionGoToTopPrepare)
	r.RegisterMultiple(ContextNormal, []string{"gg", "home"}, ActionGoToTop)
	r.RegisterMultiple(ContextNormal, []string{"G", "end"}, ActionGoToBottom)
	r.Register(ContextNormal, "pgup", ActionPageUp)
	r.Register(ContextNormal, "pgdown", ActionPageDown)
	r.Register(ContextNormal, "ctrl+u", ActionHalfPageUp)
	r.Register(ContextNormal, "ctrl+d", ActionHalfPageDown)

	r.Register(ContextNormal, "enter", ActionActivate)
	r.Register(ContextNormal, "r", ActionRefresh)
	r.Register(ContextNormal, "R", ActionRefreshAll)
	r.Register(ContextNormal, "c", ActionCopyOutput)
	r.Register(ContextNormal, "C", ActionLiveConnect)
	r.Register(ContextNormal, "H", ActionLiveHistory)
	r.Register(ContextNormal, "?", ActionOpenHelp)
}

// registerEditBindings sets up the text editor; other keys go to the input
func registerEditBindings(r *Registry) {
	r.Register(ContextEdit, "enter", ActionTextSubmit)
	r.Register(ContextEdit, "esc", ActionTextCancel)
}

// registerConfirmBindings sets up the action confirmation prompt
func registerConfirmBindings(r *Registry) {
	r.RegisterMultiple(ContextConfirm, []string{"y", "Y"}, ActionConfirmYes)
	r.RegisterMultiple(ContextConfirm, []string{"n", "N", "esc", "q"}, ActionConfirmNo)
}

// registerHelpBindings sets up the help viewer
func registerHelpBindings(r *Registry) {
	r.RegisterMultiple(ContextHelp, []string{"esc", "?", "q"}, ActionCloseModal)
	r.RegisterMultiple(ContextHelp, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextHelp, []string{"down", "j"}, ActionNavigateDown)
}
