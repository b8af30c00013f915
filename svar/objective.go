// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package svar

import (
	"gonum.org/v1/gonum/mat"
)

// flatten returns the column-major flattening of the n x n matrix m,
// i.e. the row-major data of m'.
func flatten(m mat.Matrix) []float64 {
	r, c := m.Dims()
	x := make([]float64, r*c)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			x[j*r+i] = m.At(i, j)
		}
	}
	return x
}

// unflatten rebuilds M from x: reshape row-major into size x size, then transpose.
func unflatten(x []float64, size int) *mat.Dense {
	data := make([]float64, len(x))
	copy(data, x)
	return mat.DenseCopyOf(mat.NewDense(size, size, data).T())
}

// decompositionObjective measures how far M*M' is from omega.
type decompositionObjective struct {
	size  int
	omega *mat.Dense

	// scratch
	m   *mat.Dense
	mmt *mat.Dense
}

func newDecompositionObjective(omega mat.Matrix, size int) *decompositionObjective {
	return &decompositionObjective{
		size:  size,
		omega: mat.DenseCopyOf(omega),
		m:     mat.NewDense(size, size, nil),
		mmt:   mat.NewDense(size, size, nil),
	}
}

// gap computes M*M' - omega into o.mmt for the M flattened in x.
func (o *decompositionObjective) gap(x []float64) *mat.Dense {
	n := o.size
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			o.m.Set(i, j, x[j*n+i])
		}
	}
	o.mmt.Mul(o.m, o.m.T())
	o.mmt.Sub(o.mmt, o.omega)
	return o.mmt
}

// Value is the Frobenius norm of M*M' - omega.
func (o *decompositionObjective) Value(x []float64) float64 {
	return mat.Norm(o.gap(x), 2)
}

// NumResiduals is n*n, one per entry of M*M' - omega.
func (o *decompositionObjective) NumResiduals() int { return o.size * o.size }

// Residuals writes the entries of M*M' - omega into dst (row-major).
func (o *decompositionObjective) Residuals(dst, x []float64) {
	g := o.gap(x)
	n := o.size
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dst[i*n+j] = g.At(i, j)
		}
	}
}
