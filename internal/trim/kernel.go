package trim

import (
	"github.com/san-kum/iontrim/internal/physics"
	"github.com/san-kum/iontrim/internal/target"
)

type kernel struct {
	tgt  *target.Compiled
	emin float64
}

func newKernel(tgt *target.Compiled, cfg Config) kernel {
	return kernel{tgt: tgt, emin: cfg.emin()}
}

func (k kernel) active(ion *Ion) bool {
	return ion.Inside && ion.E > k.emin
}

// trajectory follows one ion until it stops or leaves the target.
func (k kernel) trajectory(ion *Ion, rng physics.Rand) {
	for k.active(ion) {
		k.step(ion, rng)
	}
}

// step performs one free flight and, if the ion is still inside, one
// collision.
func (k kernel) step(ion *Ion, rng physics.Rand) {
	l := k.tgt.LayerAt(ion.Pos[2])
	if l == nil {
		ion.Inside = false
		return
	}

	p, dirp := physics.SelectRecoil(ion.Dir, l.PMax, rng)
	ion.E -= physics.ElectronicLoss(l.Stopping, l.Density, ion.E, l.FreePath)
	ion.Pos = ion.Pos.Add(ion.Dir.Scale(l.FreePath))
	if !k.tgt.Inside(ion.Pos[2]) {
		ion.Inside = false
		return
	}

	k.collide(ion, l, p, dirp, rng)
}

func (k kernel) collide(ion *Ion, l *target.CompiledLayer, p float64, dirp physics.Vec3, rng physics.Rand) {
	atom := 0
	if l.Mixed() {
		atom = l.Pick(rng.Float64())
	}

	c := l.Pairs[atom].Scatter(ion.E, ion.Dir, p, dirp)
	ion.Dir, ion.E = c.Dir, c.E
	ion.Collisions++
	if c.RecoilE > l.Disp[atom] {
		ion.Displacements++
	}
	if c.Clamped {
		ion.Clamped++
	}
}
