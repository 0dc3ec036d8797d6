package physics

import "math"

// ZBL universal screening function coefficients.
const (
	a1 = 0.18175
	a2 = 0.50986
	a3 = 0.28022
	a4 = 0.02817

	b1 = 3.1998
	b2 = 0.94229
	b3 = 0.4029
	b4 = 0.20162
)

// Apsis estimation for the ZBL potential.
const (
	k2    = 0.38 // 1/R part
	k3    = 7.2  // 1/R^3 part
	k1    = 1 / (4 * k2)
	r12sq = (2 * k2) * (2 * k2)
	r23sq = k3 / k2

	// ApsisIterations is the number of Newton-Raphson refinements of the apsis.
	ApsisIterations = 1
	apsisTolerance  = 1e-4
)

// Magic formula fit constants.
const (
	c1 = 0.99229
	c2 = 0.011615
	c3 = 0.007122
	c4 = 14.813
	c5 = 9.3066
)

// Screen returns the ZBL screening function and its derivative at the
// reduced distance r.
func Screen(r float64) (screen, dscreen float64) {
	e1 := math.Exp(-b1 * r)
	e2 := math.Exp(-b2 * r)
	e3 := math.Exp(-b3 * r)
	e4 := math.Exp(-b4 * r)
	screen = a1*e1 + a2*e2 + a3*e3 + a4*e4
	dscreen = -(a1*b1*e1 + a2*b2*e2 + a3*b3*e3 + a4*b4*e4)
	return screen, dscreen
}

// Apsis estimates the distance of closest approach for reduced energy e and
// reduced impact parameter p.
func Apsis(e, p float64) float64 {
	psq := p * p
	r0sq := 0.5 * (psq + math.Sqrt(psq*psq+4*k3/e))

	var r0 float64
	if r0sq < r23sq {
		r0sq = psq + k2/e
		if r0sq < r12sq {
			r0 = (1 + math.Sqrt(1+4*e*(e+k1)*psq)) / (2 * (e + k1))
		} else {
			r0 = math.Sqrt(r0sq)
		}
	} else {
		r0 = math.Sqrt(r0sq)
	}

	for i := 0; i < ApsisIterations; i++ {
		screen, dscreen := Screen(r0)
		num := r0*(r0-screen/e) - psq
		den := 2*r0 - (screen+r0*dscreen)/e
		r0 -= num / den

		residuum := 1 - screen/(e*r0) - psq/(r0*r0)
		if math.Abs(residuum) < apsisTolerance {
			break
		}
	}
	return r0
}

// Magic returns cos(theta/2) of the centre-of-mass scattering angle from
// Biersack's magic formula. Results above 1 are clamped and reported.
func Magic(e, p float64) (cosHalfTheta float64, clamped bool) {
	r0 := Apsis(e, p)
	screen, dscreen := Screen(r0)

	rho := 2 * (e*r0 - screen) / (screen/r0 - dscreen)
	sqrte := math.Sqrt(e)
	alpha := 1 + c1/sqrte
	beta := (c2 + sqrte) / (c3 + sqrte)
	gamma := (c4 + e) / (c5 + e)
	a := 2 * alpha * e * math.Pow(p, beta)
	g := gamma / (math.Sqrt(1+a*a) - a)
	delta := a * (r0 - p) / (1 + g)

	cosHalfTheta = (p + rho + delta) / (r0 + rho)
	if cosHalfTheta > 1 {
		return 1, true
	}
	return cosHalfTheta, false
}
