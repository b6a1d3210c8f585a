package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"symposium/internal/notify"
	"symposium/internal/roster"
	"symposium/internal/transcript"
)

type theme struct {
	speakers []lipgloss.Style
	text     lipgloss.Style
	title    lipgloss.Style
	muted    lipgloss.Style
	severity map[notify.Severity]lipgloss.Style
}

func newTheme() theme {
	pink := lipgloss.Color("#ff71ce")
	blue := lipgloss.Color("#01cdfe")
	mint := lipgloss.Color("#05ffa1")
	gold := lipgloss.Color("#ffd166")
	muted := lipgloss.Color("#9ca3d8")

	speaker := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return theme{
		speakers: []lipgloss.Style{speaker(blue), speaker(pink), speaker(mint), speaker(gold)},
		text:     lipgloss.NewStyle().PaddingLeft(2),
		title:    lipgloss.NewStyle().Foreground(mint).Bold(true),
		muted:    lipgloss.NewStyle().Foreground(muted),
		severity: map[notify.Severity]lipgloss.Style{
			notify.SeverityInfo:    lipgloss.NewStyle().Foreground(blue),
			notify.SeveritySuccess: lipgloss.NewStyle().Foreground(mint),
			notify.SeverityWarning: lipgloss.NewStyle().Foreground(gold),
			notify.SeverityError:   lipgloss.NewStyle().Foreground(pink).Bold(true),
		},
	}
}

func renderTranscript(th theme, t transcript.Transcript) string {
	colors := map[string]lipgloss.Style{}
	var b strings.Builder
	for _, turn := range t {
		style, ok := colors[turn.Speaker.ID]
		if !ok {
			style = th.speakers[len(colors)%len(th.speakers)]
			colors[turn.Speaker.ID] = style
		}
		b.WriteString(style.Render(turn.Speaker.DisplayName))
		b.WriteString("\n")
		b.WriteString(th.text.Render(turn.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

func renderNotification(th theme, n notify.Notification) string {
	style, ok := th.severity[n.Severity]
	if !ok {
		style = th.muted
	}
	return style.Render(fmt.Sprintf("[%s] %s", n.Title, n.Description))
}

func renderRoster(th theme, r *roster.Roster) string {
	var b strings.Builder
	b.WriteString(th.title.Render("Participants"))
	b.WriteString("\n")
	for _, p := range r.Participants() {
		line := fmt.Sprintf("  %-20s %s", p.ID, p.DisplayName)
		if p.Role != "" {
			line += th.muted.Render(" (" + p.Role + ")")
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(th.title.Render("Topics"))
	b.WriteString("\n")
	for _, t := range r.Topics() {
		b.WriteString("  " + t + "\n")
	}
	return b.String()
}
