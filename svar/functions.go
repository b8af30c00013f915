// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package svar

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Solve finds the impact matrix M with M*M' ≈ omega subject to the
// short-run restrictions M[row,col] = 0 and the long-run restrictions
// F[row,:]*M[:,col] = 0 (rows and columns 1-indexed).
// omega: n x n covariance, must equal its transpose exactly
// f: n x n long-run multiplier, may be nil when longRun is empty
// Returns: the result holding M and the minimizer diagnostics. A
// *ValidationError is returned before any optimisation when the inputs
// are unusable.
func Solve(omega mat.Matrix, shortRun, longRun []Restriction, f mat.Matrix, opts ...Option) (*Result, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return solve(omega, shortRun, longRun, f, o)
}

func solve(omega mat.Matrix, shortRun, longRun []Restriction, f mat.Matrix, o Options) (*Result, error) {
	size, err := validate(omega, shortRun, longRun, f)
	if err != nil {
		return nil, err
	}
	log := loggerOrNoop(o.Logger)

	ident := classify(size, len(shortRun)+len(longRun))
	if ident.Status != ExactlyIdentified {
		if o.StrictIdentification {
			return nil, fmt.Errorf("%w: %d restrictions for %d variables, need %d",
				ErrNotIdentified, ident.Restrictions, ident.Variables, ident.Required)
		}
		log.Warn("restriction count does not exactly identify the model",
			slog.String("status", ident.Status.String()),
			slog.Int("restrictions", ident.Restrictions),
			slog.Int("required", ident.Required))
	}

	cons := buildConstraints(shortRun, longRun, f, size)
	generic := make([]EqualityConstraint, len(cons))
	for i, c := range cons {
		generic[i] = c
	}
	obj := newDecompositionObjective(omega, size)

	tol := AdaptiveTolerance(omega, o.BaseTolerance, o.ToleranceScale)
	settings := Settings{
		FunctionTolerance: tol,
		MaxIterations:     o.MaxIterations,
		Verbose:           o.Verbose,
		Logger:            log,
	}
	minimizer := o.Minimizer
	if minimizer == nil {
		minimizer = NewSQP()
	}

	// Start from the identity
	best, err := minimizer.Minimize(obj, generic, flatten(identity(size)), settings)
	if err != nil {
		return nil, fmt.Errorf("minimize: %w", err)
	}
	iterations := best.Iterations

	if !best.Converged && o.Restarts > 0 {
		seed := o.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		for k := 0; k < o.Restarts && !best.Converged; k++ {
			start := randomRotation(rng, size)
			sol, err := minimizer.Minimize(obj, generic, flatten(start), settings)
			if err != nil {
				return nil, fmt.Errorf("minimize (restart %d): %w", k+1, err)
			}
			iterations += sol.Iterations
			log.Debug("restart finished",
				slog.Int("restart", k+1),
				slog.Bool("converged", sol.Converged),
				slog.Float64("f", sol.F))
			if better(sol, best) {
				best = sol
			}
		}
	}

	if len(best.X) != size*size {
		return nil, fmt.Errorf("minimizer returned %d values, want %d", len(best.X), size*size)
	}
	m := unflatten(best.X, size)
	res := &Result{
		M:                   m,
		Converged:           best.Converged,
		Status:              best.Status,
		Iterations:          iterations,
		Objective:           obj.Value(best.X),
		ConstraintViolation: totalViolation(cons, m),
		Tolerance:           tol,
		Identification:      ident,
	}

	if !res.Converged {
		log.Warn("minimizer did not converge",
			slog.String("status", res.Status.String()),
			slog.Int("iterations", res.Iterations),
			slog.Float64("objective", res.Objective),
			slog.Float64("violation", res.ConstraintViolation),
			slog.String("worst_restriction", worstRestriction(cons, m)))
		if o.RequireConvergence {
			return res, fmt.Errorf("%w: %s after %d iterations (objective %.3g, violation %.3g)",
				ErrNotConverged, res.Status, res.Iterations, res.Objective, res.ConstraintViolation)
		}
	}
	return res, nil
}

// validate checks the inputs and returns the problem size n.
func validate(omega mat.Matrix, shortRun, longRun []Restriction, f mat.Matrix) (int, error) {
	if omega == nil {
		return 0, &ValidationError{Field: "omega", Reason: "covariance matrix not provided"}
	}
	r, _ := omega.Dims()
	if r == 0 {
		return 0, &ValidationError{Field: "omega", Reason: "covariance matrix is empty"}
	}
	if !isSymmetric(omega) {
		return 0, errNotSymmetric()
	}
	size := r

	if len(longRun) > 0 {
		if f == nil {
			return 0, &ValidationError{Field: "f", Reason: "long-run multiplier required for long-run restrictions"}
		}
		if fr, fc := f.Dims(); fr != size || fc != size {
			return 0, &ValidationError{
				Field:  "f",
				Reason: fmt.Sprintf("long-run multiplier must be %dx%d, got %dx%d", size, size, fr, fc),
			}
		}
	}

	if err := checkRange("short_run", shortRun, size); err != nil {
		return 0, err
	}
	if err := checkRange("long_run", longRun, size); err != nil {
		return 0, err
	}
	return size, nil
}

// isSymmetric reports whether m equals its transpose exactly.
// A non-square matrix is never equal to its transpose, and a NaN anywhere
// (the diagonal included) never equals itself.
func isSymmetric(m mat.Matrix) bool {
	r, c := m.Dims()
	if r != c {
		return false
	}
	for i := 0; i < r; i++ {
		for j := i; j < c; j++ {
			if m.At(i, j) != m.At(j, i) {
				return false
			}
		}
	}
	return true
}

// ToSymmetric copies m into a SymDense after checking it is symmetric.
func ToSymmetric(m mat.Matrix) (*mat.SymDense, error) {
	if m == nil {
		return nil, &ValidationError{Field: "omega", Reason: "covariance matrix not provided"}
	}
	if r, _ := m.Dims(); r == 0 {
		return nil, &ValidationError{Field: "omega", Reason: "covariance matrix is empty"}
	}
	if !isSymmetric(m) {
		return nil, errNotSymmetric()
	}
	n, _ := m.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, m.At(i, j))
		}
	}
	return sym, nil
}

func checkRange(field string, rs []Restriction, size int) error {
	for i, r := range rs {
		if r.Row < 1 || r.Row > size || r.Col < 1 || r.Col > size {
			return &ValidationError{
				Field:  fmt.Sprintf("%s[%d]", field, i),
				Reason: fmt.Sprintf("restriction (%d, %d) outside 1..%d", r.Row, r.Col, size),
			}
		}
	}
	return nil
}

// classify compares the restriction count with n(n-1)/2.
func classify(n, count int) Identification {
	required := n * (n - 1) / 2
	id := Identification{
		Variables:    n,
		Restrictions: count,
		Required:     required,
	}
	switch {
	case count < required:
		id.Status = UnderIdentified
	case count > required:
		id.Status = OverIdentified
	default:
		id.Status = ExactlyIdentified
	}
	return id
}

// CheckIdentification classifies a restriction set for an n-variable system
// without solving it.
func CheckIdentification(n int, shortRun, longRun []Restriction) Identification {
	return classify(n, len(shortRun)+len(longRun))
}

// randomRotation draws an orthogonal matrix from the Q factor of a
// Gaussian matrix.
func randomRotation(rng *rand.Rand, n int) *mat.Dense {
	data := make([]float64, n*n)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	var qr mat.QR
	qr.Factorize(mat.NewDense(n, n, data))
	var q mat.Dense
	qr.QTo(&q)
	return &q
}

// better prefers converged solutions, then the lower objective plus violation.
func better(a, b *Solution) bool {
	if a.Converged != b.Converged {
		return a.Converged
	}
	return a.F+a.ConstraintViolation < b.F+b.ConstraintViolation
}
