package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Phase is a declaration phase for display.
type Phase struct {
	Name   string
	Done   bool
	Active bool
	Err    error
}

// Model is the Bubble Tea model for the assembly view.
type Model struct {
	Title  string
	Region string

	Phases    []Phase
	Resources int
	Warnings  []string

	StartTime    time.Time
	SpinnerFrame int

	Width int
	Err   error
	Done  bool
}

// NewModel creates a model listing phases in execution order.
func NewModel(title, region string, phases []string) Model {
	m := Model{
		Title:     title,
		Region:    region,
		StartTime: time.Now(),
		Phases:    make([]Phase, len(phases)),
	}
	for i, name := range phases {
		m.Phases[i] = Phase{Name: name}
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width

	case PhaseMsg:
		m.updatePhase(msg)

	case ResourceMsg:
		m.Resources++

	case WarningMsg:
		m.Warnings = append(m.Warnings, msg.Message)

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		for i := range m.Phases {
			m.Phases[i].Done = true
			m.Phases[i].Active = false
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) updatePhase(msg PhaseMsg) {
	idx := -1
	for i, phase := range m.Phases {
		if phase.Name == msg.Phase {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	// Phases run in order, so everything before idx has finished.
	for i := 0; i < idx; i++ {
		m.Phases[i].Done = true
		m.Phases[i].Active = false
	}

	switch {
	case msg.Err != nil:
		m.Phases[idx].Err = msg.Err
		m.Phases[idx].Active = false
	case msg.Done:
		m.Phases[idx].Done = true
		m.Phases[idx].Active = false
	default:
		m.Phases[idx].Active = true
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
