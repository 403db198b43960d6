package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/adaptype/internal/stats"
)

const (
	topKeyCount = 3
	barWidth    = 20
)

var (
	cardStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	barStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	barTrackStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
)

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardValueStyle.Render(value), cardTitleStyle.Render(label))
	return cardStyle.Render(content)
}

func (m *Model) renderResults() string {
	res := m.result
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		metricCard("Accuracy", fmt.Sprintf("%d%%", res.Accuracy)),
		metricCard("Words per Minute", fmt.Sprintf("%d", res.WordsPerMinute)),
		metricCard("Total Errors", fmt.Sprintf("%d", res.TotalErrors)),
	)

	lines := []string{
		titleStyle.Render("Test complete!"),
		fmt.Sprintf("Thanks, %s. Here are your results.", m.name),
		"",
		cards,
	}
	if keys := stats.TopKeys(stats.RuneKeyErrors(res.KeyErrors), topKeyCount); len(keys) > 0 {
		lines = append(lines, "", renderTopKeys(keys))
	}
	lines = append(lines, "")
	if m.saveStatus != "" {
		style := footerStyle
		if m.saveFailed {
			style = incorrectStyle
		}
		lines = append(lines, style.Render(m.saveStatus))
	}
	if m.errMsg != "" {
		lines = append(lines, incorrectStyle.Render(m.errMsg))
	}
	lines = append(lines, footerStyle.Render("r restart · q quit"))
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func renderTopKeys(keys []stats.KeyCount) string {
	rows := []string{cardValueStyle.Render("Most Mistyped Keys")}
	for _, key := range keys {
		filled := int(math.Round(stats.BarFraction(keys, key.Count) * barWidth))
		bar := barStyle.Render(strings.Repeat("█", filled)) +
			barTrackStyle.Render(strings.Repeat("░", barWidth-filled))
		label := runewidth.FillRight(strings.ToUpper(key.Key), 2)
		rows = append(rows, fmt.Sprintf("%s %s %s", label, bar, errorCount(key.Count)))
	}
	return cardStyle.Render(strings.Join(rows, "\n"))
}

func errorCount(n int) string {
	if n == 1 {
		return "1 error"
	}
	return fmt.Sprintf("%d errors", n)
}
