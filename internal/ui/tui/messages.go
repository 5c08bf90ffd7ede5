// Package tui renders topology assembly in the terminal: a live phase list
// while phases run, and a lipgloss summary of the assembled result.
package tui

// PhaseMsg reports progress of one declaration phase.
type PhaseMsg struct {
	Phase string
	Done  bool
	Err   error
}

// ResourceMsg reports a resource added to the template.
type ResourceMsg struct {
	ID string
}

// WarningMsg carries a validation warning.
type WarningMsg struct {
	Message string
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }

// DoneMsg signals that assembly is complete.
type DoneMsg struct{}
