// Package cli renders import results and progress in the terminal.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette. Adaptive colors keep the output readable on light terminals.
var (
	accent  = lipgloss.AdaptiveColor{Light: "#1F5AA6", Dark: "#6CA6E8"}
	good    = lipgloss.AdaptiveColor{Light: "#1B7F5A", Dark: "#4ECDC4"}
	caution = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#FFE66D"}
	bad     = lipgloss.AdaptiveColor{Light: "#B42318", Dark: "#FF6B6B"}
	muted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#8B8B8B"}
	rule    = lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#3A3A3A"}
)

// Styles shared by the renderers.
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	SuccessStyle = lipgloss.NewStyle().Foreground(good)
	WarningStyle = lipgloss.NewStyle().Foreground(caution)
	ErrorStyle   = lipgloss.NewStyle().Foreground(bad)
	InfoStyle    = lipgloss.NewStyle().Foreground(accent)
	SubtleStyle  = lipgloss.NewStyle().Foreground(muted)
	// NumberStyle right-aligns counts in the outcome box.
	NumberStyle = lipgloss.NewStyle().Bold(true).Width(6).Align(lipgloss.Right)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(rule).
			Padding(0, 2)
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(rule)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "!"
	InfoIcon    = "·"
	SkipIcon    = "↷"
	ArchiveIcon = "⟲"
)

// FormatSuccess prefixes message with the success icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError prefixes message with the error icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning prefixes message with the warning icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo prefixes message with the info icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle renders a section title.
func FormatTitle(title string) string {
	return TitleStyle.Render(title)
}

// RenderBox frames content under a title.
func RenderBox(title, content string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render(title), content))
}

// RenderTable lays out rows under a header with left-aligned columns.
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	cell := lipgloss.NewStyle().PaddingRight(2)
	renderRow := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(widths))
		for i := range widths {
			text := ""
			if i < len(cells) {
				text = cells[i]
			}
			parts[i] = cell.Width(widths[i] + 2).Render(text)
		}
		return style.Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, renderRow(headers, headerStyle))
	for _, row := range rows {
		lines = append(lines, renderRow(row, lipgloss.NewStyle()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
