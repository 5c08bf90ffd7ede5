package tui

import "github.com/charmbracelet/lipgloss"

// Palette. Adaptive colors keep the plan view readable on light terminals.
var (
	accent  = lipgloss.AdaptiveColor{Light: "#c45500", Dark: "#ff9900"}
	success = lipgloss.AdaptiveColor{Light: "#1d8102", Dark: "#3fb950"}
	danger  = lipgloss.AdaptiveColor{Light: "#d13212", Dark: "#f85149"}
	caution = lipgloss.AdaptiveColor{Light: "#8a6d00", Dark: "#e3b341"}
	muted   = lipgloss.AdaptiveColor{Light: "#687078", Dark: "#8b949e"}
	text    = lipgloss.AdaptiveColor{Light: "#16191f", Dark: "#f0f6fc"}
)

var (
	// headerStyle renders the topology name above the phase list and the summary.
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(text)

	// groupStyle heads the Phases, Warnings and summary sections.
	groupStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginTop(1)

	doneStyle    = lipgloss.NewStyle().Foreground(success)
	failStyle    = lipgloss.NewStyle().Foreground(danger)
	warnStyle    = lipgloss.NewStyle().Foreground(caution)
	runningStyle = lipgloss.NewStyle().Bold(true).Foreground(text)

	// labelStyle is used for output keys, resource kinds and queued phases.
	labelStyle = lipgloss.NewStyle().Foreground(muted)

	hintStyle = lipgloss.NewStyle().Foreground(muted).MarginTop(1)
)

// Phase and check markers.
const (
	markDone   = "[OK]"
	markFailed = "[!!]"
	markQueued = "[  ]"
	markWarn   = "[??]"
)

var spinnerFrames = []string{"[- ]", "[ -]", "[ |]", "[| ]"}
