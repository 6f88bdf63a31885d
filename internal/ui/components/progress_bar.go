package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/leap-dashboard-tui/internal/ui/styles"
)

// AnimationTickMsg advances bar animations.
type AnimationTickMsg time.Time

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*50, func(t time.Time) tea.Msg {
		return AnimationTickMsg(t)
	})
}

// CompletionBar renders a completion rate as a gradient bar that eases toward its target.
type CompletionBar struct {
	progress       progress.Model
	isAnimating    bool
	targetPercent  float64
	currentPercent float64
}

// NewCompletionBar creates a bar with the given width.
func NewCompletionBar(width int) CompletionBar {
	p := progress.New(
		progress.WithScaledGradient("#ff6b6b", "#51cf66"),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	return CompletionBar{progress: p}
}

// Update handles animation ticks.
func (c CompletionBar) Update(msg tea.Msg) (CompletionBar, tea.Cmd) {
	if _, ok := msg.(AnimationTickMsg); !ok || !c.isAnimating {
		return c, nil
	}

	diff := c.targetPercent - c.currentPercent
	if diff == 0 {
		c.isAnimating = false
		return c, nil
	}

	step := diff / 10
	switch {
	case step > 0 && step < 0.5:
		step = 0.5
	case step < 0 && step > -0.5:
		step = -0.5
	}
	c.currentPercent += step
	if (step > 0 && c.currentPercent > c.targetPercent) || (step < 0 && c.currentPercent < c.targetPercent) {
		c.currentPercent = c.targetPercent
	}
	return c, animationTick()
}

// SetPercent moves the target and starts animating if idle.
func (c *CompletionBar) SetPercent(percent float64) tea.Cmd {
	c.targetPercent = percent
	if c.isAnimating {
		return nil
	}
	c.isAnimating = true
	return animationTick()
}

// Current returns the displayed percentage.
func (c CompletionBar) Current() float64 {
	return c.currentPercent
}

// Animating reports whether the bar is still moving.
func (c CompletionBar) Animating() bool {
	return c.isAnimating
}

// View renders the bar at its current animated value with a label.
func (c CompletionBar) View(label string, width int) string {
	return RenderCompletionBar(c.progress, c.currentPercent, label, width)
}

// RenderCompletionBar renders percent with a label on a fresh bar.
func RenderCompletionBar(p progress.Model, percent float64, label string, width int) string {
	p.Width = max(width-24, 10)
	bar := p.ViewAs(percent / 100)

	percentStr := styles.GetCompletionStyle(int(percent)).
		Width(6).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", percent))
	labelStr := styles.ProgressLabelStyle.Width(16).Render(label)

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", percentStr)
}

// CompactBar renders percent as a bar of exactly width cells followed by the value.
func CompactBar(percent int, width int) string {
	p := progress.New(
		progress.WithScaledGradient("#ff6b6b", "#51cf66"),
		progress.WithWidth(max(width, 5)),
		progress.WithoutPercentage(),
	)
	return p.ViewAs(float64(percent)/100) + " " +
		styles.GetCompletionStyle(percent).Render(fmt.Sprintf("%3d%%", percent))
}
