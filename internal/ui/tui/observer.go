package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
)

// Sender delivers messages to a running program.
type Sender interface {
	Send(msg tea.Msg)
}

// Observer forwards declaration events to the phase view.
type Observer struct {
	sender Sender
}

// NewObserver returns an observer sending to s.
func NewObserver(s Sender) *Observer {
	return &Observer{sender: s}
}

// Printf implements provisioning.Observer. Free-form lines are dropped;
// the view owns the terminal.
func (o *Observer) Printf(string, ...interface{}) {}

// Event implements provisioning.Observer.
func (o *Observer) Event(event provisioning.Event) {
	switch event.Type {
	case provisioning.EventPhaseStarted:
		o.sender.Send(PhaseMsg{Phase: event.Phase})
	case provisioning.EventPhaseCompleted:
		o.sender.Send(PhaseMsg{Phase: event.Phase, Done: true})
	case provisioning.EventPhaseFailed:
		o.sender.Send(PhaseMsg{Phase: event.Phase, Err: errors.New(strings.TrimPrefix(event.Message, "failed: "))})
	case provisioning.EventResourceDeclared:
		o.sender.Send(ResourceMsg{ID: event.Resource})
	case provisioning.EventValidationWarning:
		msg := event.Message
		if field := event.Fields["field"]; field != "" {
			msg = field + ": " + msg
		}
		o.sender.Send(WarningMsg{Message: msg})
	}
}

// Progress implements provisioning.Observer.
func (o *Observer) Progress(string, int, int) {}

// WithFields implements provisioning.Observer.
func (o *Observer) WithFields(map[string]string) provisioning.Observer {
	return o
}
