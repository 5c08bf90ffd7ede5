package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// styleFunc is a single-string styling function.
type styleFunc func(string) string

// sf wraps a lipgloss.Style into a styleFunc.
func sf(s lipgloss.Style) styleFunc {
	return func(str string) string { return s.Render(str) }
}

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)
	renderPhases(&b, m)
	if len(m.Warnings) > 0 {
		renderWarnings(&b, m.Warnings)
	}
	renderFooter(&b, m)

	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	title := fmt.Sprintf("emrdebug: %s", m.Title)
	if m.Region != "" {
		title += fmt.Sprintf(" (%s)", m.Region)
	}
	b.WriteString(headerStyle.Render(title))

	status := " "
	switch {
	case m.Err != nil:
		status += failStyle.Render(fmt.Sprintf("Error: %v", m.Err))
	case m.Done:
		status += doneStyle.Render("Assembled")
	default:
		status += runningStyle.Render(currentSpinner(m.SpinnerFrame)+" ") + labelStyle.Render("Assembling...")
	}
	b.WriteString(status)
	b.WriteString("\n")
}

func renderPhases(b *strings.Builder, m Model) {
	b.WriteString(groupStyle.Render("  Phases"))
	b.WriteString("\n")

	for _, phase := range m.Phases {
		var icon string
		var style styleFunc
		switch {
		case phase.Err != nil:
			icon = markFailed
			style = sf(failStyle)
		case phase.Done:
			icon = markDone
			style = sf(doneStyle)
		case phase.Active:
			icon = currentSpinner(m.SpinnerFrame)
			style = sf(runningStyle)
		default:
			icon = markQueued
			style = sf(labelStyle)
		}
		fmt.Fprintf(b, "    %s %s\n", style(icon), style(phase.Name))
	}
}

func renderWarnings(b *strings.Builder, warnings []string) {
	b.WriteString(groupStyle.Render("  Warnings"))
	b.WriteString("\n")
	for _, w := range warnings {
		fmt.Fprintf(b, "    %s %s\n", warnStyle.Render(markWarn), w)
	}
}

func renderFooter(b *strings.Builder, m Model) {
	parts := []string{
		fmt.Sprintf("elapsed: %s", formatDuration(time.Since(m.StartTime))),
		fmt.Sprintf("resources: %d", m.Resources),
	}
	b.WriteString(hintStyle.Render(fmt.Sprintf("  %s  |  q: quit", strings.Join(parts, "  |  "))))
	b.WriteString("\n")
}

func currentSpinner(frame int) string {
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
