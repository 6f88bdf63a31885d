// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/styles"
)

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(100),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.SlateBlue),
	)
}

// RenderWeeklyCompletionChart plots the completion rate of every week that has data.
func RenderWeeklyCompletionChart(weeks []models.WeekCompletion, width, height int) string {
	data := make([]float64, 0, len(weeks))
	for _, w := range weeks {
		data = append(data, float64(w.Rate))
	}
	caption := "Completion rate by week (%)"
	if len(weeks) > 0 {
		caption = fmt.Sprintf("Completion rate, weeks %d-%d (%%)", weeks[0].Week, weeks[len(weeks)-1].Week)
	}
	return RenderLineChart(data, width, height, caption)
}

// RenderBarChart creates a simple horizontal bar chart.
func RenderBarChart(values []float64, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	// Find max value for scaling
	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}

	barWidth := max(width-maxLabelLen-10, 10)

	var lines []string
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		paddedLabel := strings.Repeat(" ", maxLabelLen-lipgloss.Width(label)) + label

		barLen := max(int((v/maxVal)*float64(barWidth)), 0)
		bar := strings.Repeat("█", barLen)
		lines = append(lines, paddedLabel+" │"+bar+fmt.Sprintf(" %.0f", v))
	}

	return strings.Join(lines, "\n")
}

// RenderDistribution renders the engagement breakdown as colored bars.
func RenderDistribution(b models.EngagementBreakdown, width int) string {
	total := b.Total()
	if total == 0 {
		return styles.HelpStyle.Render("No participants")
	}

	barWidth := max(width-24, 10)
	var lines []string
	for _, level := range models.EngagementLevels {
		n := b.Count(level)
		share := float64(n) / float64(total)
		filled := int(share * float64(barWidth))
		style := styles.GetEngagementStyle(level)
		bar := style.Render(strings.Repeat("█", filled)) +
			styles.HelpStyle.Render(strings.Repeat("░", barWidth-filled))
		lines = append(lines, fmt.Sprintf("%-7s %s %3d (%2.0f%%)", level, bar, n, share*100))
	}
	return strings.Join(lines, "\n")
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact sparkline for percentages in 0..100.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	var result strings.Builder
	step := max(float64(len(values))/float64(width), 1)

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		normalized := int(val / 100 * float64(len(sparkChars)-1))
		normalized = min(max(normalized, 0), len(sparkChars)-1)
		style := styles.GetCompletionStyle(int(val))
		result.WriteString(style.Render(string(sparkChars[normalized])))
	}

	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	var parts []string
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}

// StatusLegend explains the glyphs of the progress matrix.
func StatusLegend() string {
	var parts []string
	for _, s := range []models.AssignmentStatus{models.StatusCompleted, models.StatusPartial, models.StatusMissing, models.StatusPending} {
		parts = append(parts, styles.GetStatusStyle(s).Render(styles.StatusGlyph(s))+" "+string(s))
	}
	return strings.Join(parts, "  ")
}

// StatCard renders a headline number with its label.
func StatCard(label, value, hint string, width int) string {
	content := styles.HelpDescStyle.Render(label) + "\n" + styles.StatValueStyle.Render(value)
	if hint != "" {
		content += "\n" + styles.HelpStyle.Render(hint)
	}
	return styles.StatCardStyle.Width(width).Render(content)
}
