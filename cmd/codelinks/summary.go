package main

import (
	"fmt"
	"strings"
	"time"

	"codelinks/internal/analyse"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(14)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

// renderSummary formats the outcome of an analyse run.
func renderSummary(res *analyse.Result, contentPath string) string {
	rows := [][2]string{
		{"Files", fmt.Sprint(res.Files)},
		{"Skipped", fmt.Sprint(res.Skipped)},
		{"Comments", fmt.Sprint(res.Comments)},
		{"Needs", fmt.Sprint(len(res.Needs()))},
		{"Need-id refs", fmt.Sprint(len(res.Refs()))},
		{"Marked rst", fmt.Sprint(len(res.Rsts()))},
		{"Duration", res.Duration.Round(time.Millisecond).String()},
		{"Output", contentPath},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("codelinks analyse"))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r[0]))
		b.WriteString(r[1])
		b.WriteString("\n")
	}
	if n := len(res.Warnings); n > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("%d warnings", n)))
		for _, w := range res.Warnings {
			b.WriteString("\n  ")
			b.WriteString(w.String())
		}
	} else {
		b.WriteString("No warnings")
	}
	return boxStyle.Render(b.String())
}
