package stats

import "fmt"

// Histogram counts values of several variables into equal-width bins. Bin 0
// collects underflow and bin nbin+1 overflow.
type Histogram struct {
	NBin   int       `json:"nbin"`
	Lo     float64   `json:"lo"`
	Hi     float64   `json:"hi"`
	Width  float64   `json:"width"`
	Counts [][]int64 `json:"counts"`
}

func NewHistogram(nvar, nbin int, lo, hi float64) (*Histogram, error) {
	if nbin < 1 || !(lo < hi) {
		return nil, fmt.Errorf("%w: nbin=%d lo=%g hi=%g", ErrBins, nbin, lo, hi)
	}
	h := &Histogram{
		NBin:   nbin,
		Lo:     lo,
		Hi:     hi,
		Width:  (hi - lo) / float64(nbin),
		Counts: make([][]int64, nvar),
	}
	for i := range h.Counts {
		h.Counts[i] = make([]int64, nbin+2)
	}
	return h, nil
}

// Bin returns the counts index for v.
func (h *Histogram) Bin(v float64) int {
	switch {
	case v < h.Lo:
		return 0
	case v >= h.Hi:
		return h.NBin + 1
	}
	b := int((v-h.Lo)/h.Width) + 1
	if b > h.NBin {
		b = h.NBin
	}
	return b
}

func (h *Histogram) Score(ivar int, v float64) {
	h.Counts[ivar][h.Bin(v)]++
}

// Inner returns the counts without the underflow and overflow bins.
func (h *Histogram) Inner(ivar int) []int64 {
	return h.Counts[ivar][1 : h.NBin+1]
}

func (h *Histogram) Underflow(ivar int) int64 { return h.Counts[ivar][0] }
func (h *Histogram) Overflow(ivar int) int64  { return h.Counts[ivar][h.NBin+1] }

// Edges returns the nbin+1 bin boundaries.
func (h *Histogram) Edges() []float64 {
	e := make([]float64, h.NBin+1)
	for i := range e {
		e[i] = h.Lo + float64(i)*h.Width
	}
	return e
}

// Centers returns the midpoint of each inner bin.
func (h *Histogram) Centers() []float64 {
	c := make([]float64, h.NBin)
	for i := range c {
		c[i] = h.Lo + (float64(i)+0.5)*h.Width
	}
	return c
}
