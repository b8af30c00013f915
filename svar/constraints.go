// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package svar

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// EqualityConstraint is a scalar function of the flattened M that the
// minimizer drives to Target().
type EqualityConstraint interface {
	Evaluate(x []float64) float64
	Target() float64
}

// RestrictionConstraint is an equality constraint built from a Restriction.
// Residual evaluates the same quantity on an n x n matrix instead of a
// flattened vector.
type RestrictionConstraint interface {
	EqualityConstraint
	Kind() RestrictionKind
	Restriction() Restriction
	Residual(m mat.Matrix) float64
}

// ShortRunConstraint pins M[Row-1, Col-1] to zero.
type ShortRunConstraint struct {
	Row  int
	Col  int
	Size int
}

// NewShortRunConstraint builds the evaluator for one short-run restriction.
func NewShortRunConstraint(r Restriction, size int) ShortRunConstraint {
	return ShortRunConstraint{Row: r.Row, Col: r.Col, Size: size}
}

// Evaluate returns the coordinate of x holding M[Row-1, Col-1].
// x is the column-major flattening of M.
func (c ShortRunConstraint) Evaluate(x []float64) float64 {
	return x[c.Size*(c.Col-1)+c.Row-1]
}

func (c ShortRunConstraint) Target() float64 { return 0 }

func (c ShortRunConstraint) Kind() RestrictionKind { return ShortRun }

func (c ShortRunConstraint) Restriction() Restriction {
	return Restriction{Row: c.Row, Col: c.Col}
}

func (c ShortRunConstraint) Residual(m mat.Matrix) float64 {
	return m.At(c.Row-1, c.Col-1)
}

// LongRunConstraint forces the long-run effect of shock Col on variable
// Row to zero: F[Row-1,:] * M[:,Col-1] = 0.
type LongRunConstraint struct {
	Row  int
	Col  int
	Size int

	// copy of F's row Row-1
	coeffs []float64
}

// NewLongRunConstraint builds the evaluator for one long-run restriction.
// The needed row of f is copied, so f may change afterwards.
func NewLongRunConstraint(r Restriction, f mat.Matrix, size int) LongRunConstraint {
	return LongRunConstraint{
		Row:    r.Row,
		Col:    r.Col,
		Size:   size,
		coeffs: mat.Row(nil, r.Row-1, f),
	}
}

// column returns the 1-indexed column col of the matrix flattened in x.
func column(x []float64, col, size int) []float64 {
	return x[(col-1)*size : col*size]
}

// Evaluate returns F[Row-1,:] . M[:,Col-1] for the M flattened in x.
func (c LongRunConstraint) Evaluate(x []float64) float64 {
	return floats.Dot(c.coeffs, column(x, c.Col, c.Size))
}

func (c LongRunConstraint) Target() float64 { return 0 }

func (c LongRunConstraint) Kind() RestrictionKind { return LongRun }

func (c LongRunConstraint) Restriction() Restriction {
	return Restriction{Row: c.Row, Col: c.Col}
}

func (c LongRunConstraint) Residual(m mat.Matrix) float64 {
	col := mat.Col(nil, c.Col-1, m)
	return floats.Dot(c.coeffs, col)
}

// buildConstraints turns the restriction lists into evaluators,
// all short-run restrictions first.
func buildConstraints(shortRun, longRun []Restriction, f mat.Matrix, size int) []RestrictionConstraint {
	cons := make([]RestrictionConstraint, 0, len(shortRun)+len(longRun))
	for _, r := range shortRun {
		cons = append(cons, NewShortRunConstraint(r, size))
	}
	for _, r := range longRun {
		cons = append(cons, NewLongRunConstraint(r, f, size))
	}
	return cons
}

// totalViolation sums |residual| of every restriction at m.
func totalViolation(cons []RestrictionConstraint, m mat.Matrix) float64 {
	total := 0.0
	for _, c := range cons {
		total += math.Abs(c.Residual(m) - c.Target())
	}
	return total
}

// worstRestriction names the restriction with the largest |residual| at m,
// e.g. "long-run (1, 2)". It returns "" when there are no restrictions.
func worstRestriction(cons []RestrictionConstraint, m mat.Matrix) string {
	var worst RestrictionConstraint
	largest := -1.0
	for _, c := range cons {
		if v := math.Abs(c.Residual(m) - c.Target()); v > largest {
			worst, largest = c, v
		}
	}
	if worst == nil {
		return ""
	}
	r := worst.Restriction()
	return fmt.Sprintf("%s (%d, %d)", worst.Kind(), r.Row, r.Col)
}
