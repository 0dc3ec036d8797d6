package export

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/san-kum/iontrim/internal/physics"
	"github.com/san-kum/iontrim/internal/stats"
	"github.com/san-kum/iontrim/internal/trim"
)

func wellFormed(t *testing.T, doc string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			t.Fatalf("invalid svg: %v", err)
		}
	}
}

func TestHistogramToSVG(t *testing.T) {
	h, _ := stats.NewHistogram(1, 4, 0, 400)
	for _, z := range []float64{10, 20, 150, 390} {
		h.Score(0, z)
	}

	out := HistogramToSVG(h, 400, 200, "B <Si>")
	wellFormed(t, out)

	if got := strings.Count(out, "<rect x="); got != 3 {
		t.Errorf("expected 3 bars, got %d", got)
	}
	if !strings.Contains(out, "B &lt;Si&gt;") {
		t.Error("title should be escaped")
	}
}

func TestPositionsToSVG(t *testing.T) {
	ions := []trim.Ion{
		{Pos: physics.Vec3{-10, 0, 100}, Inside: true},
		{Pos: physics.Vec3{10, 0, 300}, Inside: true},
		{Pos: physics.Vec3{0, 0, -5}},
	}
	out := PositionsToSVG(ions, 300, 300, "positions")
	wellFormed(t, out)
	if got := strings.Count(out, "<circle"); got != 2 {
		t.Errorf("expected 2 points, got %d", got)
	}

	if PositionsToSVG(ions[2:], 300, 300, "") != "" {
		t.Error("expected empty output without stopped ions")
	}
}
