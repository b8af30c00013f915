// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package svar

import (
	"log/slog"
)

// Objective is a smooth scalar function to minimize.
type Objective interface {
	Value(x []float64) float64
}

// LeastSquares is an Objective whose value is the Euclidean norm of a
// residual vector. Minimizers may use the residuals to build a
// Gauss-Newton model; the reported value is still Value(x).
type LeastSquares interface {
	Objective
	NumResiduals() int
	Residuals(dst, x []float64)
}

// ObjectiveFunc adapts a plain function to the Objective interface.
type ObjectiveFunc func(x []float64) float64

func (f ObjectiveFunc) Value(x []float64) float64 { return f(x) }

// ConstraintFunc is an equality constraint f(x) = 0 given as a function.
type ConstraintFunc func(x []float64) float64

func (f ConstraintFunc) Evaluate(x []float64) float64 { return f(x) }

func (f ConstraintFunc) Target() float64 { return 0 }

// Why a minimizer stopped
type Status int

const (
	Converged Status = iota
	IterationLimit
	LineSearchFailed
	SingularSystem
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case IterationLimit:
		return "iteration limit reached"
	case LineSearchFailed:
		return "line search failed"
	case SingularSystem:
		return "singular KKT system"
	default:
		return "unknown"
	}
}

// Settings controls one minimization.
type Settings struct {
	// Stop when the objective changes by less than this between iterations
	FunctionTolerance float64
	// Largest accepted sum of |c_i(x) - target_i|, FunctionTolerance if 0
	ConstraintTolerance float64
	// Iteration cap, 100 if 0
	MaxIterations int
	// Log each iteration at debug level
	Verbose bool
	Logger  *slog.Logger
}

func (s Settings) withDefaults() Settings {
	if s.FunctionTolerance <= 0 {
		s.FunctionTolerance = 1e-10
	}
	if s.ConstraintTolerance <= 0 {
		s.ConstraintTolerance = s.FunctionTolerance
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = 100
	}
	s.Logger = loggerOrNoop(s.Logger)
	return s
}

// Solution is what a Minimizer returns, converged or not.
type Solution struct {
	X []float64
	// Objective value at X
	F float64
	// Sum of |c_i(X) - target_i|
	ConstraintViolation float64
	Iterations          int
	Converged           bool
	Status              Status
}

// Minimizer solves min f(x) subject to c_i(x) = target_i.
// An error is only returned for unusable input; failing to converge is
// reported through Solution.
type Minimizer interface {
	Minimize(obj Objective, cons []EqualityConstraint, x0 []float64, settings Settings) (*Solution, error)
}
