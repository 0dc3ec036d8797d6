package trim

import (
	"github.com/san-kum/iontrim/internal/stats"
	"github.com/san-kum/iontrim/internal/target"
)

// Moments of one coordinate among ions stopped inside the target.
type Moments struct {
	Mean     stats.Value `json:"mean"`
	Std      stats.Value `json:"std"`
	Skewness stats.Value `json:"skewness"`
	Kurtosis stats.Value `json:"kurtosis"`
}

type Summary struct {
	Total         int     `json:"total"`
	Inside        int     `json:"inside"`
	Backscattered int     `json:"backscattered"`
	Transmitted   int     `json:"transmitted"`
	Depth         Moments `json:"depth"`
	X             Moments `json:"x"`
	Y             Moments `json:"y"`
}

// Summarize counts where the ions ended up and computes the moments of the
// final position of those stopped inside. An ion that left the target is
// backscattered when it is in front of the surface and transmitted otherwise.
func Summarize(b *Batch, tgt *target.Compiled) Summary {
	m, _ := stats.NewMoments(3, 4)

	sum := Summary{Total: b.Len()}
	for _, ion := range b.Ions {
		switch {
		case ion.Inside:
			sum.Inside++
			m.Score(0, ion.Pos[2])
			m.Score(1, ion.Pos[0])
			m.Score(2, ion.Pos[1])
		case ion.Pos[2] < tgt.ZMin:
			sum.Backscattered++
		default:
			sum.Transmitted++
		}
	}

	if sum.Inside == 0 {
		return sum
	}
	sum.Depth = moments(m, 0)
	sum.X = moments(m, 1)
	sum.Y = moments(m, 2)
	return sum
}

func moments(m *stats.Moments, v int) Moments {
	return Moments{Mean: m.Mean(v), Std: m.Std(v), Skewness: m.Skewness(v), Kurtosis: m.Kurtosis(v)}
}

// Depths returns the final z of the ions stopped inside, in batch order.
func Depths(b *Batch) []float64 {
	out := make([]float64, 0, b.Len())
	for _, ion := range b.Ions {
		if ion.Inside {
			out = append(out, ion.Pos[2])
		}
	}
	return out
}
