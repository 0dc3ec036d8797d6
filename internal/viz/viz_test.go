package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/iontrim/internal/stats"
	"github.com/san-kum/iontrim/internal/trim"
)

func TestRenderSummary(t *testing.T) {
	s := trim.Summary{
		Total:  100,
		Inside: 97,
		Depth:  trim.Moments{Mean: stats.Value{V: 1612.5, Err: 12.25}},
	}
	out := RenderSummary("B-Si", s)

	for _, want := range []string{"B-Si", "97 / 100", "1612.50 ± 12.25 Å"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSummaryNothingInside(t *testing.T) {
	out := RenderSummary("He-Au", trim.Summary{Total: 3, Transmitted: 3})
	if !strings.Contains(out, "no ion stopped inside") {
		t.Errorf("expected warning, got:\n%s", out)
	}
}

func TestDepthPlot(t *testing.T) {
	h, _ := stats.NewHistogram(1, 4, 0, 400)
	for _, z := range []float64{10, 120, 130, 250, 500} {
		h.Score(0, z)
	}
	out := DepthPlot(h, 5, 40)
	if !strings.Contains(out, "100 Å bin") || !strings.Contains(out, "1 above") {
		t.Errorf("unexpected caption:\n%s", out)
	}
}

func TestTimingPlot(t *testing.T) {
	out := TimingPlot([]int{100, 1000}, map[string][]float64{
		trim.NameLoop: {0.1, 1.0},
		trim.NameBulk: {0.05, 0.4},
	}, 5, 40)
	if !strings.Contains(out, trim.NameLoop) || !strings.Contains(out, "100, 1000") {
		t.Errorf("unexpected plot:\n%s", out)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]int64{0, 0}); got != "  " {
		t.Errorf("expected blanks, got %q", got)
	}
	if got := Sparkline([]int64{1, 4, 8}); !strings.Contains(got, "█") {
		t.Errorf("expected a full block for the maximum, got %q", got)
	}
}
