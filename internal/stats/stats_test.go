package stats

import (
	"errors"
	"math"
	"testing"
)

func TestMomentsOrderBounds(t *testing.T) {
	for _, n := range []int{0, 5} {
		if _, err := NewMoments(1, n); !errors.Is(err, ErrOrder) {
			t.Errorf("nmax=%d: expected ErrOrder, got %v", n, err)
		}
	}
}

func TestMomentsKnownSample(t *testing.T) {
	m, err := NewMoments(2, 4)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []float64{1, 2, 3, 4, 5} {
		m.Score(0, v)
		m.Score(1, 10*v)
	}

	if m.Count(0) != 5 {
		t.Errorf("expected count 5, got %d", m.Count(0))
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"mean", m.Mean(0).V, 3},
		{"std", m.Std(0).V, math.Sqrt(2)},
		{"skewness", m.Skewness(0).V, 0},
		{"kurtosis", m.Kurtosis(0).V, 1.7},
		{"scaled mean", m.Mean(1).V, 30},
		{"scaled std", m.Std(1).V, 10 * math.Sqrt(2)},
		{"mean error", m.Mean(0).Err, math.Sqrt(2.0 / 5)},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-9 {
			t.Errorf("%s: expected %f, got %f", tt.name, tt.want, tt.got)
		}
	}
}

func TestMomentsEmpty(t *testing.T) {
	m, _ := NewMoments(1, 4)
	if (m.Mean(0) != Value{}) || (m.Std(0) != Value{}) || (m.Kurtosis(0) != Value{}) {
		t.Error("expected zero values without samples")
	}
}

func TestMomentsMerge(t *testing.T) {
	a, _ := NewMoments(1, 2)
	b, _ := NewMoments(1, 2)
	all, _ := NewMoments(1, 2)
	for i := 0; i < 10; i++ {
		v := float64(i * i)
		all.Score(0, v)
		if i%2 == 0 {
			a.Score(0, v)
		} else {
			b.Score(0, v)
		}
	}
	a.Merge(b)
	if math.Abs(a.Mean(0).V-all.Mean(0).V) > 1e-12 || math.Abs(a.Std(0).V-all.Std(0).V) > 1e-9 {
		t.Errorf("merged moments differ: %v vs %v", a.Std(0), all.Std(0))
	}
}

func TestMomentsRescoreAfterRead(t *testing.T) {
	m, _ := NewMoments(1, 1)
	m.Score(0, 2)
	if m.Mean(0).V != 2 {
		t.Fatalf("expected mean 2, got %f", m.Mean(0).V)
	}
	m.Score(0, 4)
	if m.Mean(0).V != 3 {
		t.Errorf("expected mean 3 after rescoring, got %f", m.Mean(0).V)
	}
}

func TestHistogramBins(t *testing.T) {
	h, err := NewHistogram(1, 4, 0, 100)
	if err != nil {
		t.Fatal(err)
	}

	for _, v := range []float64{-1, 0, 24.9, 25, 99.9, 100, 250} {
		h.Score(0, v)
	}

	if h.Underflow(0) != 1 {
		t.Errorf("expected 1 underflow, got %d", h.Underflow(0))
	}
	if h.Overflow(0) != 2 {
		t.Errorf("expected 2 overflow, got %d", h.Overflow(0))
	}
	want := []int64{2, 1, 0, 1}
	for i, c := range h.Inner(0) {
		if c != want[i] {
			t.Errorf("bin %d: expected %d, got %d", i, want[i], c)
		}
	}
	if e := h.Edges(); len(e) != 5 || e[4] != 100 {
		t.Errorf("unexpected edges %v", e)
	}
	if c := h.Centers(); c[0] != 12.5 {
		t.Errorf("expected first center 12.5, got %f", c[0])
	}
}

func TestHistogramInvalid(t *testing.T) {
	if _, err := NewHistogram(1, 0, 0, 1); !errors.Is(err, ErrBins) {
		t.Errorf("expected ErrBins, got %v", err)
	}
	if _, err := NewHistogram(1, 5, 1, 1); !errors.Is(err, ErrBins) {
		t.Errorf("expected ErrBins, got %v", err)
	}
}
