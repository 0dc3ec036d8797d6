package target

import (
	"github.com/san-kum/iontrim/internal/physics"
)

// Projectile identifies the ion species moving through the target.
type Projectile struct {
	Z    float64
	Mass float64 // amu
}

// CompiledLayer holds everything the trajectory kernel needs per collision.
type CompiledLayer struct {
	Index    int
	ZStart   float64
	ZEnd     float64
	Density  float64 // atoms/Å³
	FreePath float64 // Å
	PMax     float64 // Å
	Stopping float64 // Bragg-summed Lindhard factor
	Pairs    []physics.Pair
	Disp     []float64
	cum      []float64
}

// Pick maps a uniform deviate to an element index, weighted by ratio.
func (l *CompiledLayer) Pick(u float64) int {
	for i, c := range l.cum {
		if u < c {
			return i
		}
	}
	return len(l.cum) - 1
}

// Mixed reports whether the layer has more than one species. Single-species
// layers do not draw a random number to pick the target atom.
func (l *CompiledLayer) Mixed() bool { return len(l.Pairs) > 1 }

// Compiled is a target with per-layer constants precomputed for one projectile.
type Compiled struct {
	ZMin   float64
	ZMax   float64
	Layers []CompiledLayer
}

// Compile precomputes per-layer collision and stopping constants.
func (t *Target) Compile(p Projectile) *Compiled {
	c := &Compiled{ZMin: t.ZMin, ZMax: t.ZMax(), Layers: make([]CompiledLayer, len(t.Layers))}

	start := t.ZMin
	for i, l := range t.Layers {
		n := l.NumberDensity()
		fp := physics.FreePath(n)
		corr := l.Corr
		if corr == 0 {
			corr = 1
		}

		sum := l.ratioSum()
		cl := CompiledLayer{
			Index:    i,
			ZStart:   start,
			ZEnd:     start + l.Width,
			Density:  n,
			FreePath: fp,
			PMax:     physics.MaxImpact(fp),
			Pairs:    make([]physics.Pair, len(l.Elements)),
			Disp:     make([]float64, len(l.Elements)),
			cum:      make([]float64, len(l.Elements)),
		}

		acc := 0.0
		for j, e := range l.Elements {
			frac := e.Ratio / sum
			acc += frac
			cl.cum[j] = acc
			cl.Pairs[j] = physics.NewPair(p.Z, p.Mass, float64(e.Z), e.Mass)
			cl.Stopping += frac * physics.Lindhard(corr, p.Z, p.Mass, float64(e.Z))
			cl.Disp[j] = e.Disp
		}
		cl.cum[len(cl.cum)-1] = 1

		c.Layers[i] = cl
		start = cl.ZEnd
	}
	return c
}

func (c *Compiled) Inside(z float64) bool {
	return c.ZMin <= z && z <= c.ZMax
}

// LayerAt returns the layer containing z, or nil outside the target.
func (c *Compiled) LayerAt(z float64) *CompiledLayer {
	if z < c.ZMin || z > c.ZMax {
		return nil
	}
	for i := range c.Layers {
		if z < c.Layers[i].ZEnd {
			return &c.Layers[i]
		}
	}
	return &c.Layers[len(c.Layers)-1]
}
