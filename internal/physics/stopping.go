package physics

import "math"

// Lindhard returns the electronic stopping factor of the Lindhard model for
// a projectile (z1, m1) in a medium of atomic number z2, multiplied by the
// correction factor corr. The stopping power is fac * n * sqrt(E) in eV/Å.
func Lindhard(corr, z1, m1, z2 float64) float64 {
	z1p := math.Pow(z1, 2.0/3.0)
	z2p := math.Pow(z2, 2.0/3.0)
	return corr * 1.212 * math.Pow(z1, 7.0/6.0) * z2 /
		(math.Pow(z1p+z2p, 1.5) * math.Sqrt(m1))
}

// ElectronicLoss is the energy lost over a free path of length l in a medium of
// atomic density n, never more than the projectile energy e.
func ElectronicLoss(fac, n, e, l float64) float64 {
	dee := fac * n * math.Sqrt(e) * l
	if dee > e {
		return e
	}
	return dee
}
