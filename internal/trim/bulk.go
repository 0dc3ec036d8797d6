package trim

import (
	"context"
	"math/rand"

	"github.com/san-kum/iontrim/internal/physics"
	"github.com/san-kum/iontrim/internal/target"
)

// sweep holds a batch as columns. Each phase of a sweep runs over all active
// ions before the next phase starts.
type sweep struct {
	k      kernel
	pos    []physics.Vec3
	dir    []physics.Vec3
	e      []float64
	inside []bool
	coll   []int
	disp   []int
	clamp  []int

	// per sweep, indexed like active
	active []int
	layer  []*target.CompiledLayer
	p      []float64
	dirp   []physics.Vec3
}

func newSweep(k kernel, ions []Ion) *sweep {
	n := len(ions)
	s := &sweep{
		k:      k,
		pos:    make([]physics.Vec3, n),
		dir:    make([]physics.Vec3, n),
		e:      make([]float64, n),
		inside: make([]bool, n),
		coll:   make([]int, n),
		disp:   make([]int, n),
		clamp:  make([]int, n),
		active: make([]int, 0, n),
		layer:  make([]*target.CompiledLayer, n),
		p:      make([]float64, n),
		dirp:   make([]physics.Vec3, n),
	}
	for i, ion := range ions {
		s.pos[i], s.dir[i], s.e[i], s.inside[i] = ion.Pos, ion.Dir, ion.E, ion.Inside
		s.coll[i], s.disp[i], s.clamp[i] = ion.Collisions, ion.Displacements, ion.Clamped
	}
	return s
}

func (s *sweep) store(ions []Ion) {
	for i := range ions {
		ions[i] = Ion{
			Pos:           s.pos[i],
			Dir:           s.dir[i],
			E:             s.e[i],
			Inside:        s.inside[i],
			Collisions:    s.coll[i],
			Displacements: s.disp[i],
			Clamped:       s.clamp[i],
		}
	}
}

func (s *sweep) collect() {
	s.active = s.active[:0]
	for i := range s.e {
		if s.inside[i] && s.e[i] > s.k.emin {
			s.active = append(s.active, i)
		}
	}
}

func (s *sweep) selectRecoils(rng physics.Rand) {
	for j, i := range s.active {
		l := s.k.tgt.LayerAt(s.pos[i][2])
		s.layer[j] = l
		if l == nil {
			s.inside[i] = false
			continue
		}
		s.p[j], s.dirp[j] = physics.SelectRecoil(s.dir[i], l.PMax, rng)
	}
}

// fly applies the electronic loss and moves ions by one free path. Ions that
// leave the target are dropped from the rest of the sweep.
func (s *sweep) fly() {
	for j, i := range s.active {
		l := s.layer[j]
		if l == nil {
			continue
		}
		s.e[i] -= physics.ElectronicLoss(l.Stopping, l.Density, s.e[i], l.FreePath)
		s.pos[i] = s.pos[i].Add(s.dir[i].Scale(l.FreePath))
		if !s.k.tgt.Inside(s.pos[i][2]) {
			s.inside[i] = false
			s.layer[j] = nil
		}
	}
}

func (s *sweep) scatter(rng physics.Rand) {
	for j, i := range s.active {
		l := s.layer[j]
		if l == nil {
			continue
		}
		atom := 0
		if l.Mixed() {
			atom = l.Pick(rng.Float64())
		}
		c := l.Pairs[atom].Scatter(s.e[i], s.dir[i], s.p[j], s.dirp[j])
		s.dir[i], s.e[i] = c.Dir, c.E
		s.coll[i]++
		if c.RecoilE > l.Disp[atom] {
			s.disp[i]++
		}
		if c.Clamped {
			s.clamp[i]++
		}
	}
}

// runBulk advances every active ion by one collision per sweep until none is
// left. Cancellation is checked between sweeps.
func runBulk(ctx context.Context, k kernel, ions []Ion, rng *rand.Rand, rep *reporter) error {
	s := newSweep(k, ions)
	defer s.store(ions)

	remaining := len(ions)
	for {
		s.collect()
		rep.add(remaining - len(s.active))
		remaining = len(s.active)
		if remaining == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		s.selectRecoils(rng)
		s.fly()
		s.scatter(rng)
	}
}
