package ui

import "github.com/rivo/tview"

// AppDispatcher runs functions on the tview event loop and redraws after
// each. Dispatch blocks until the loop accepts the function, so it must not
// be called from the event loop itself.
type AppDispatcher struct {
	app *tview.Application
}

// NewAppDispatcher returns a dispatcher for app.
func NewAppDispatcher(app *tview.Application) *AppDispatcher {
	return &AppDispatcher{app: app}
}

// Dispatch queues fn on the event loop and redraws once it has run.
func (d *AppDispatcher) Dispatch(fn func()) {
	d.app.QueueUpdateDraw(fn)
}
