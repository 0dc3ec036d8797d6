package stats

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrOrder = errors.New("stats: moment order must be between 1 and 4")
	ErrBins  = errors.New("stats: histogram needs at least one bin and lo < hi")
)

// Moments accumulates raw power sums of several variables. Sums up to twice
// the maximum order are kept so that the moments' standard errors can be
// computed.
type Moments struct {
	nvar  int
	nmax  int
	raw   [][]float64
	cen   [][]float64
	count []float64
	stale bool
}

func NewMoments(nvar, nmax int) (*Moments, error) {
	if nmax < 1 || nmax > 4 {
		return nil, fmt.Errorf("%w: got %d", ErrOrder, nmax)
	}
	m := &Moments{nvar: nvar, nmax: nmax, raw: make([][]float64, nvar)}
	for i := range m.raw {
		m.raw[i] = make([]float64, 2*nmax+1)
	}
	return m, nil
}

func (m *Moments) NVar() int { return m.nvar }

// Score adds one data point for variable ivar.
func (m *Moments) Score(ivar int, v float64) {
	p := 1.0
	for i := range m.raw[ivar] {
		m.raw[ivar][i] += p
		p *= v
	}
	m.stale = true
}

// Merge adds the sums of another accumulator with the same shape.
func (m *Moments) Merge(o *Moments) {
	for i := range m.raw {
		for j := range m.raw[i] {
			m.raw[i][j] += o.raw[i][j]
		}
	}
	m.stale = true
}

// Count is the number of points scored for ivar.
func (m *Moments) Count(ivar int) int { return int(m.raw[ivar][0]) }

// Central computes the central moments from the raw sums. It is called
// lazily by the accessors.
func (m *Moments) Central() {
	n := 2*m.nmax + 1
	m.cen = make([][]float64, m.nvar)
	m.count = make([]float64, m.nvar)
	for v := 0; v < m.nvar; v++ {
		m.cen[v] = make([]float64, n)
		cnt := m.raw[v][0]
		m.count[v] = cnt
		if cnt == 0 {
			continue
		}
		mom := make([]float64, n)
		for i := range mom {
			mom[i] = m.raw[v][i] / cnt
		}
		for i := 0; i < n; i++ {
			c := mom[i]
			for j := 1; j <= i; j++ {
				c += binomial(i, j) * mom[i-j] * math.Pow(-mom[1], float64(j))
			}
			m.cen[v][i] = c
		}
	}
	m.stale = false
}

func (m *Moments) ensure() {
	if m.stale || m.cen == nil {
		m.Central()
	}
}

// cenErr is the standard error of the central moment of order i.
func (m *Moments) cenErr(v, i int) float64 {
	c := m.cen[v]
	x := (c[2*i] - 2*float64(i)*c[i-1]*c[i+1] - c[i]*c[i] + float64(i*i)*c[2]*c[i-1]*c[i-1]) / m.count[v]
	if x < 0 {
		return 0
	}
	return math.Sqrt(x)
}

// Value is an estimate with its standard error.
type Value struct {
	V   float64 `json:"value"`
	Err float64 `json:"err"`
}

func (m *Moments) Mean(v int) Value {
	m.ensure()
	if m.count[v] == 0 {
		return Value{}
	}
	return Value{
		V:   m.raw[v][1] / m.count[v],
		Err: math.Sqrt(math.Max(m.cen[v][2], 0) / m.count[v]),
	}
}

func (m *Moments) Std(v int) Value {
	m.ensure()
	if m.count[v] == 0 || m.nmax < 2 {
		return Value{}
	}
	std := math.Sqrt(math.Max(m.cen[v][2], 0))
	if std == 0 {
		return Value{}
	}
	return Value{V: std, Err: m.cenErr(v, 2) / (2 * std)}
}

func (m *Moments) Skewness(v int) Value {
	m.ensure()
	if m.count[v] == 0 || m.nmax < 3 || m.cen[v][2] <= 0 {
		return Value{}
	}
	d := math.Pow(m.cen[v][2], 1.5)
	return Value{V: m.cen[v][3] / d, Err: m.cenErr(v, 3) / d}
}

func (m *Moments) Kurtosis(v int) Value {
	m.ensure()
	if m.count[v] == 0 || m.nmax < 4 || m.cen[v][2] <= 0 {
		return Value{}
	}
	d := m.cen[v][2] * m.cen[v][2]
	return Value{V: m.cen[v][4] / d, Err: m.cenErr(v, 4) / d}
}

func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	r := 1.0
	for i := 1; i <= k; i++ {
		r = r * float64(n-k+i) / float64(i)
	}
	return r
}
