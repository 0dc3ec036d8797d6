package physics

import "math"

// Rand is the source of uniform deviates in [0, 1) used by the kernel.
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// FreePath is the constant free flight path between collisions in an
// amorphous medium of atomic density n (atoms/Å³).
func FreePath(n float64) float64 {
	return math.Pow(n, -1.0/3.0)
}

// MaxImpact is the largest impact parameter for a free path l.
func MaxImpact(l float64) float64 {
	return l / math.Sqrt(math.Pi)
}

// ImpactDirection returns the unit vector perpendicular to dir with azimuth
// phi around dir.
func ImpactDirection(dir Vec3, phi float64) Vec3 {
	sinFi, cosFi := math.Sincos(phi)

	// k points to the smallest component so that sinAlpha > sqrt(2/3).
	k := dir.ArgMinAbs()
	i := (k + 1) % 3
	j := (i + 1) % 3

	cosAlpha := dir[k]
	sinAlpha := math.Sqrt(dir[i]*dir[i] + dir[j]*dir[j])
	cosPhi := dir[i] / sinAlpha
	sinPhi := dir[j] / sinAlpha

	var dirp Vec3
	dirp[i] = cosFi*cosAlpha*cosPhi - sinFi*sinPhi
	dirp[j] = cosFi*cosAlpha*sinPhi + sinFi*cosPhi
	dirp[k] = -cosFi * sinAlpha
	return dirp.Normalize()
}

// SelectRecoil draws the impact parameter (Å) and its direction for the next
// collision of a projectile moving along dir.
func SelectRecoil(dir Vec3, pmax float64, rng Rand) (p float64, dirp Vec3) {
	p = pmax * math.Sqrt(rng.Float64())
	phi := 2 * math.Pi * rng.Float64()
	return p, ImpactDirection(dir, phi)
}

// RecoilPosition is where the target atom sits before the collision.
func RecoilPosition(pos, dir Vec3, l, p float64, dirp Vec3) Vec3 {
	return pos.Add(dir.Scale(l)).Add(dirp.Scale(p))
}
