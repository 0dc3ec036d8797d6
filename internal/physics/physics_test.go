package physics

import (
	"math"
	"math/rand"
	"testing"
)

func TestScreenAtOrigin(t *testing.T) {
	screen, dscreen := Screen(0)
	if math.Abs(screen-1) > 1e-9 {
		t.Errorf("expected screening 1 at r=0, got %f", screen)
	}
	if dscreen >= 0 {
		t.Errorf("expected negative derivative, got %f", dscreen)
	}
}

func TestApsisBeyondImpactParameter(t *testing.T) {
	for _, e := range []float64{0.01, 0.1, 1, 10, 100} {
		for _, p := range []float64{0.05, 0.5, 1, 2, 5} {
			r0 := Apsis(e, p)
			if r0 <= 0 || math.IsNaN(r0) {
				t.Fatalf("e=%g p=%g: invalid apsis %f", e, p, r0)
			}
			if r0 < p*0.99 {
				t.Errorf("e=%g p=%g: apsis %f closer than impact parameter", e, p, r0)
			}
		}
	}
}

// Only the upper bound is clamped. Near the end of a trajectory the reduced
// energy drops below 1e-3 and cos(theta/2) may go slightly negative.
func TestMagicUpperBound(t *testing.T) {
	for _, e := range []float64{0.0005, 0.001, 0.01, 0.1, 1, 10, 1000} {
		for _, p := range []float64{0.01, 0.1, 0.5, 1, 3} {
			c, _ := Magic(e, p)
			if c > 1 || math.IsNaN(c) {
				t.Errorf("e=%g p=%g: cos(theta/2)=%f out of range", e, p, c)
			}
		}
	}
}

func TestScatterLowEnergyKeepsEnergyNonNegative(t *testing.T) {
	pair := NewPair(5, 11.009, 14, 28.086)
	dir := Vec3{0, 0, 1}
	dirp := Vec3{1, 0, 0}
	for _, e := range []float64{5, 10, 50} {
		c := pair.Scatter(e, dir, 0.01, dirp)
		if c.E < 0 || c.E > e || math.IsNaN(c.E) {
			t.Errorf("e=%g: energy after collision %f", e, c.E)
		}
		if n := c.Dir.Norm(); math.Abs(n-1) > 1e-9 {
			t.Errorf("e=%g: direction norm %f", e, n)
		}
	}
}

func TestMagicDistantCollisionBarelyDeflects(t *testing.T) {
	near, _ := Magic(1, 0.05)
	far, _ := Magic(1, 3)
	if far <= near {
		t.Errorf("expected smaller deflection for larger impact parameter: near=%f far=%f", near, far)
	}
	if far < 0.99 {
		t.Errorf("expected cos(theta/2) close to 1 for distant collision, got %f", far)
	}
}

func TestNewPairEqualMasses(t *testing.T) {
	p := NewPair(14, 28.086, 14, 28.086)
	if math.Abs(p.DirFac-1) > 1e-12 {
		t.Errorf("expected dirfac 1, got %f", p.DirFac)
	}
	if math.Abs(p.DenFac-1) > 1e-12 {
		t.Errorf("expected denfac 1, got %f", p.DenFac)
	}
	if p.ENorm <= 0 || p.RNorm <= 0 {
		t.Errorf("expected positive reduced units, got %+v", p)
	}
}

func TestScatterConservesEnergy(t *testing.T) {
	pair := NewPair(5, 11.009, 14, 28.086)
	rng := rand.New(rand.NewSource(1))
	dir := Vec3{0, 0, 1}
	pmax := MaxImpact(FreePath(0.04994))

	for i := 0; i < 200; i++ {
		p, dirp := SelectRecoil(dir, pmax, rng)
		c := pair.Scatter(50000, dir, p, dirp)
		if math.Abs(c.E+c.RecoilE-50000) > 1e-6 {
			t.Fatalf("energy not conserved: %f + %f", c.E, c.RecoilE)
		}
		if c.E > 50000 || c.RecoilE < 0 {
			t.Fatalf("unphysical energies: %f, %f", c.E, c.RecoilE)
		}
		if math.Abs(c.Dir.Norm()-1) > 1e-9 {
			t.Fatalf("direction not normalized: %f", c.Dir.Norm())
		}
		dir = c.Dir
	}
}

func TestImpactDirectionPerpendicular(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		dir := Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}.Normalize()
		dirp := ImpactDirection(dir, 2*math.Pi*rng.Float64())
		if math.Abs(dirp.Norm()-1) > 1e-9 {
			t.Fatalf("expected unit vector, got norm %f", dirp.Norm())
		}
		if math.Abs(dirp.Dot(dir)) > 1e-9 {
			t.Fatalf("expected perpendicular vectors, got dot %e", dirp.Dot(dir))
		}
	}
}

func TestSelectRecoilBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pmax := MaxImpact(FreePath(0.05))
	for i := 0; i < 1000; i++ {
		p, _ := SelectRecoil(Vec3{0, 0, 1}, pmax, rng)
		if p < 0 || p > pmax {
			t.Fatalf("impact parameter %f outside [0, %f]", p, pmax)
		}
	}
}

func TestRecoilPosition(t *testing.T) {
	pos := RecoilPosition(Vec3{1, 1, 1}, Vec3{0, 0, 1}, 2, 0.5, Vec3{1, 0, 0})
	want := Vec3{1.5, 1, 3}
	if pos.Sub(want).Norm() > 1e-12 {
		t.Errorf("expected %v, got %v", want, pos)
	}
}

func TestFreePath(t *testing.T) {
	l := FreePath(0.04994)
	if math.Abs(l*l*l*0.04994-1) > 1e-9 {
		t.Errorf("expected l^3 n = 1, got %f", l*l*l*0.04994)
	}
}

func TestLindhardScalesWithCorrection(t *testing.T) {
	base := Lindhard(1, 5, 11.009, 14)
	corr := Lindhard(1.5, 5, 11.009, 14)
	if math.Abs(corr-1.5*base) > 1e-12 {
		t.Errorf("expected linear correction, got %f vs %f", corr, 1.5*base)
	}
	if base <= 0 {
		t.Errorf("expected positive stopping factor, got %f", base)
	}
}

func TestElectronicLossCapped(t *testing.T) {
	if got := ElectronicLoss(1e6, 1, 10, 100); got != 10 {
		t.Errorf("expected loss capped at energy 10, got %f", got)
	}
	fac := Lindhard(1.5, 5, 11.009, 14)
	got := ElectronicLoss(fac, 0.04994, 50000, 2.7)
	if got <= 0 || got >= 50000 {
		t.Errorf("unexpected loss %f", got)
	}
}

func TestVecNormalizeZero(t *testing.T) {
	var v Vec3
	if v.Normalize() != v {
		t.Error("expected zero vector unchanged")
	}
	if (Vec3{0, 3, 4}).Normalize().Norm()-1 > 1e-12 {
		t.Error("expected unit vector")
	}
	if (Vec3{0.5, -0.1, 0.9}).ArgMinAbs() != 1 {
		t.Error("expected smallest component at index 1")
	}
}

func BenchmarkScatter(b *testing.B) {
	pair := NewPair(5, 11.009, 14, 28.086)
	rng := rand.New(rand.NewSource(1))
	pmax := MaxImpact(FreePath(0.04994))
	dir := Vec3{0, 0, 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p, dirp := SelectRecoil(dir, pmax, rng)
		pair.Scatter(50000, dir, p, dirp)
	}
}
