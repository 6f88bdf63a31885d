package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
)

func TestSpinner(t *testing.T) {
	s := NewSpinner("Loading roster")

	if !strings.Contains(s.View(), "Loading roster") {
		t.Errorf("View() = %q, want label", s.View())
	}
	if s.Tick() == nil {
		t.Error("Tick should return command")
	}
	if _, cmd := s.Update(spinner.TickMsg{ID: s.spinner.ID()}); cmd == nil {
		t.Error("Update should return command for tick")
	}
	if RenderSpinnerCentered(s, 30, 5) == "" {
		t.Error("RenderSpinnerCentered returned empty")
	}
}

func TestRenderLineChart(t *testing.T) {
	if got := RenderLineChart(nil, 20, 5, "x"); !strings.Contains(got, "No data") {
		t.Errorf("empty chart = %q", got)
	}
	if RenderLineChart([]float64{10, 50, 90}, 20, 5, "Test") == "" {
		t.Error("RenderLineChart returned empty")
	}
}

func TestRenderWeeklyCompletionChart(t *testing.T) {
	got := RenderWeeklyCompletionChart([]models.WeekCompletion{{Week: 1, Rate: 90}, {Week: 2, Rate: 70}}, 30, 5)
	if !strings.Contains(got, "weeks 1-2") {
		t.Errorf("caption missing from chart:\n%s", got)
	}
}

func TestRenderBarChart(t *testing.T) {
	if RenderBarChart(nil, nil, 20) != "" {
		t.Error("empty input should render nothing")
	}
	got := RenderBarChart([]float64{10, 20}, []string{"A", "Week"}, 30)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "   A │") {
		t.Errorf("label not right-aligned: %q", lines[0])
	}
}

func TestRenderDistribution(t *testing.T) {
	got := ansi.Strip(RenderDistribution(models.EngagementBreakdown{High: 2, Medium: 1, Low: 1}, 40))
	for _, want := range []string{"High", "Medium", "Low", "50%", "25%"} {
		if !strings.Contains(got, want) {
			t.Errorf("distribution missing %q:\n%s", want, got)
		}
	}

	if got := RenderDistribution(models.EngagementBreakdown{}, 40); !strings.Contains(got, "No participants") {
		t.Errorf("empty distribution = %q", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		width  int
		want   int
	}{
		{"empty", nil, 10, 0},
		{"fits", []float64{0, 50, 100}, 10, 3},
		{"sampled", []float64{10, 20, 30, 40, 50, 60}, 3, 3},
		{"zero width", []float64{10}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lipgloss.Width(RenderSparkline(tt.values, tt.width))
			if got != tt.want {
				t.Errorf("width = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRenderLegend(t *testing.T) {
	s := RenderLegend([]LegendItem{{Label: "A", Color: lipgloss.Color("#ffffff")}})
	if !strings.Contains(s, "A") {
		t.Errorf("RenderLegend = %q", s)
	}
	if !strings.Contains(StatusLegend(), "Completed") {
		t.Error("StatusLegend should name statuses")
	}
}

func TestCompletionBar_Animates(t *testing.T) {
	bar := NewCompletionBar(20)
	if cmd := bar.SetPercent(40); cmd == nil {
		t.Fatal("SetPercent should start the animation")
	}

	for i := 0; i < 200 && bar.Animating(); i++ {
		bar, _ = bar.Update(AnimationTickMsg{})
	}
	if bar.Animating() {
		t.Fatal("animation did not settle")
	}
	if bar.Current() != 40 {
		t.Errorf("Current() = %v, want 40", bar.Current())
	}

	bar.SetPercent(10)
	for i := 0; i < 200 && bar.Animating(); i++ {
		bar, _ = bar.Update(AnimationTickMsg{})
	}
	if bar.Current() != 10 {
		t.Errorf("Current() = %v after lowering, want 10", bar.Current())
	}

	if !strings.Contains(ansi.Strip(bar.View("Week 3", 50)), "10%") {
		t.Error("View should include the percentage")
	}
}

func TestCompactBar(t *testing.T) {
	got := ansi.Strip(CompactBar(75, 10))
	if !strings.HasSuffix(got, " 75%") {
		t.Errorf("CompactBar = %q", got)
	}
}

func TestStatCard(t *testing.T) {
	got := StatCard("Participants", "48", "+3 this week", 20)
	for _, want := range []string{"Participants", "48", "+3 this week"} {
		if !strings.Contains(got, want) {
			t.Errorf("StatCard missing %q", want)
		}
	}
}
