package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
)

// Run shows the phase list while assemble runs in the background and
// returns assemble's error.
func Run(ctx context.Context, title, region string, phases []string, assemble func(provisioning.Observer) error) error {
	m := NewModel(title, region, phases)

	p := tea.NewProgram(m, tea.WithContext(ctx))

	go func() {
		if err := assemble(NewObserver(p)); err != nil {
			p.Send(ErrMsg{Err: err})
			return
		}
		p.Send(DoneMsg{})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	fm := finalModel.(Model)
	if fm.Err != nil {
		return fm.Err
	}
	if !fm.Done {
		return fmt.Errorf("assembly interrupted")
	}
	return nil
}
