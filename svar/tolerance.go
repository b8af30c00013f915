// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package svar

import (
	"gonum.org/v1/gonum/mat"
)

// ScanTolerance shrinks base to the smallest entry of omega that lies
// strictly between 0 and the current tolerance.
func ScanTolerance(omega mat.Matrix, base float64) float64 {
	tol := base
	r, c := omega.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := omega.At(i, j)
			if 0 < v && v < tol {
				tol = v
			}
		}
	}
	return tol
}

// AdaptiveTolerance is the function tolerance handed to the minimizer.
// Covariances can be far smaller than base, and a fixed tolerance would
// stop the minimizer before the small entries are matched.
func AdaptiveTolerance(omega mat.Matrix, base, scale float64) float64 {
	return ScanTolerance(omega, base) * scale
}
