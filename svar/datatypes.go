// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package svar

import (
	"log/slog"

	"gonum.org/v1/gonum/mat"
)

// Which family a restriction belongs to
type RestrictionKind int

const (
	// M[row,col] = 0
	ShortRun RestrictionKind = iota
	// F[row,:] * M[:,col] = 0
	LongRun
)

func (k RestrictionKind) String() string {
	switch k {
	case ShortRun:
		return "short-run"
	case LongRun:
		return "long-run"
	default:
		return "unknown"
	}
}

// Restriction is a zero restriction on a (variable, shock) pair.
// Row and Col are 1-indexed, as they are written in the literature.
type Restriction struct {
	Row int
	Col int
}

// Problem bundles the inputs of one identification.
type Problem struct {
	// Reduced form covariance (n x n), must be symmetric
	Omega mat.Matrix
	// Zero restrictions on entries of M
	ShortRun []Restriction
	// Zero restrictions on the cumulative effect F*M
	LongRun []Restriction
	// Long-run multiplier (n x n), only read when LongRun is not empty
	F mat.Matrix
}

// How the restriction count compares with n(n-1)/2
type IdentificationStatus int

const (
	ExactlyIdentified IdentificationStatus = iota
	UnderIdentified
	OverIdentified
)

func (s IdentificationStatus) String() string {
	switch s {
	case ExactlyIdentified:
		return "exactly identified"
	case UnderIdentified:
		return "under-identified"
	case OverIdentified:
		return "over-identified"
	default:
		return "unknown"
	}
}

// Identification summarises the restriction count of a problem.
type Identification struct {
	Variables    int // n
	Restrictions int // short-run + long-run
	Required     int // n(n-1)/2
	Status       IdentificationStatus
}

// Result of one identification.
type Result struct {
	// Structural impact matrix (n x n)
	M *mat.Dense

	// Did the minimizer report convergence?
	Converged bool
	// Why the minimizer stopped
	Status Status
	// Number of minimizer iterations, summed over restarts
	Iterations int
	// Frobenius norm of M*M' - Omega at the returned M
	Objective float64
	// Sum of absolute restriction residuals at the returned M
	ConstraintViolation float64
	// Function tolerance handed to the minimizer
	Tolerance float64

	Identification Identification
}

// Options for a solve. Use the With* functions to change the defaults.
type Options struct {
	// Starting tolerance of the adaptive scan (1e-7)
	BaseTolerance float64
	// Multiplier applied to the scanned tolerance (1e-3)
	ToleranceScale float64
	// Iteration cap of the minimizer (100)
	MaxIterations int
	// Log every minimizer iteration at debug level
	Verbose bool

	// Extra random orthogonal starting points tried when the identity
	// start does not converge
	Restarts int
	// RNG seed for restarts (if 0, time-based seed is used)
	Seed int64

	// Reject restriction counts other than n(n-1)/2
	StrictIdentification bool
	// Return ErrNotConverged when the minimizer does not converge
	RequireConvergence bool

	// Minimizer to use, SQP by default
	Minimizer Minimizer
	// Logger, nil discards everything
	Logger *slog.Logger
}

// Option changes one field of Options.
type Option func(*Options)

// DefaultOptions returns the settings used when no Option is passed.
func DefaultOptions() Options {
	return Options{
		BaseTolerance:  1e-7,
		ToleranceScale: 1e-3,
		MaxIterations:  100,
	}
}

func WithBaseTolerance(tol float64) Option {
	return func(o *Options) { o.BaseTolerance = tol }
}

func WithToleranceScale(scale float64) Option {
	return func(o *Options) { o.ToleranceScale = scale }
}

func WithMaxIterations(n int) Option {
	return func(o *Options) { o.MaxIterations = n }
}

func WithVerbose(verbose bool) Option {
	return func(o *Options) { o.Verbose = verbose }
}

// WithRestarts enables up to n extra random starts, drawn from seed.
func WithRestarts(n int, seed int64) Option {
	return func(o *Options) {
		o.Restarts = n
		o.Seed = seed
	}
}

func WithStrictIdentification(strict bool) Option {
	return func(o *Options) { o.StrictIdentification = strict }
}

func WithRequireConvergence(require bool) Option {
	return func(o *Options) { o.RequireConvergence = require }
}

func WithMinimizer(m Minimizer) Option {
	return func(o *Options) { o.Minimizer = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// ReducedFormVAR holds an already estimated reduced form VAR.
type ReducedFormVAR struct {
	// Coefficient matrices for each lag A_1, A_2, etc (each KxK matrix)
	A []*mat.Dense

	// Covariance of residuals (KxK)
	SigmaU *mat.SymDense
}

// StructuralVAR is a reduced form VAR together with its identified impact matrix.
type StructuralVAR struct {
	*ReducedFormVAR

	// Impact matrix, SigmaU = M * M'
	M *mat.Dense

	// Solver diagnostics for M
	Result *Result
}
