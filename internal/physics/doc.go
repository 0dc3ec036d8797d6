// Package physics implements the binary collision kernel of the ion
// transport Monte Carlo.
//
// Units are eV for energies, Å for lengths, amu for masses and atoms/Å³ for
// densities. The package is stateless; target composition is handled by
// package target and trajectory bookkeeping by package trim.
//
//   - [SelectRecoil]: impact parameter and azimuth of the next collision
//   - [Pair.Scatter]: ZBL potential with Biersack's magic formula
//   - [Lindhard]: electronic stopping with a correction factor
//
// # Example
//
//	pair := physics.NewPair(5, 11.009, 14, 28.086)
//	l := physics.FreePath(0.04994)
//	p, dirp := physics.SelectRecoil(dir, physics.MaxImpact(l), rng)
//	c := pair.Scatter(e, dir, p, dirp)
package physics
