package physics

import "math"

// Pair holds the reduced units and kinematic factors of one projectile/target
// atom combination.
type Pair struct {
	ENorm  float64 // eV
	RNorm  float64 // Å
	DirFac float64
	DenFac float64
}

// NewPair computes the ZBL reduced units for a projectile (z1, m1) hitting a
// target atom (z2, m2).
func NewPair(z1, m1, z2, m2 float64) Pair {
	ratio := m1 / m2
	rnorm := 0.4685 / (math.Pow(z1, 0.23) + math.Pow(z2, 0.23))
	return Pair{
		RNorm:  rnorm,
		ENorm:  14.39979 * z1 * z2 / rnorm * (1 + ratio),
		DirFac: 2 / (1 + ratio),
		DenFac: 4 * ratio / ((1 + ratio) * (1 + ratio)),
	}
}

// Collision is the outcome of a single binary collision.
type Collision struct {
	Dir       Vec3    // projectile direction after the collision
	E         float64 // projectile energy after the collision (eV)
	RecoilDir Vec3
	RecoilE   float64
	Clamped   bool // magic formula returned cos(theta/2) > 1
}

// Scatter treats the collision of a projectile with energy e and unit
// direction dir at impact parameter p (Å). dirp is the unit vector from the
// collision point towards the target atom.
func (pr Pair) Scatter(e float64, dir Vec3, p float64, dirp Vec3) Collision {
	cosHalf, clamped := Magic(e/pr.ENorm, p/pr.RNorm)

	sinPsi := cosHalf
	cosPsi := math.Sqrt(1 - sinPsi*sinPsi)
	recoil := dir.Scale(cosPsi).Add(dirp.Scale(sinPsi)).Scale(pr.DirFac * cosPsi)

	out := dir.Sub(recoil)
	if out.Norm() == 0 {
		out = dir
	} else {
		out = out.Normalize()
	}
	if recoil.Norm() == 0 {
		recoil = dir
	} else {
		recoil = recoil.Normalize()
	}

	recoilE := pr.DenFac * e * (1 - cosHalf*cosHalf)
	return Collision{
		Dir:       out,
		E:         e - recoilE,
		RecoilDir: recoil,
		RecoilE:   recoilE,
		Clamped:   clamped,
	}
}
