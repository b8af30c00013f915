// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package svar

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SQP minimizes a smooth objective under equality constraints with
// sequential quadratic programming.
//
// Every iteration solves the KKT system of the local quadratic model
//
//	[ B  Aᵀ ] [ d ]   [ -g ]
//	[ A  0  ] [ λ ] = [ -c ]
//
// where g is the objective gradient, A the constraint Jacobian and c the
// constraint values, then searches along d on the L1 merit function
// F(x) + Σ ρᵢ|cᵢ(x)|. B is a damped Gauss-Newton matrix JᵀJ + μI when the
// objective implements LeastSquares and a damped BFGS approximation of the
// Lagrangian Hessian otherwise. Derivatives come from finite differences.
//
// The KKT system is solved in the minimum-norm least squares sense, so
// redundant or contradictory constraints still produce a step.
type SQP struct {
	// Finite difference formula for gradients and Jacobians
	Formula fd.Formula
	// Singular values below RankCond times the largest one are dropped
	// when solving the KKT system
	RankCond float64
	// Sufficient decrease parameter of the merit line search
	Armijo float64
	// Step halvings per line search
	MaxBacktracks int
}

// NewSQP returns an SQP with central differences.
func NewSQP() *SQP {
	return &SQP{
		Formula:       fd.Central,
		RankCond:      1e-13,
		Armijo:        1e-4,
		MaxBacktracks: 40,
	}
}

// Minimize runs SQP from x0. x0 is not modified.
func (s *SQP) Minimize(obj Objective, cons []EqualityConstraint, x0 []float64, settings Settings) (*Solution, error) {
	if obj == nil {
		return nil, fmt.Errorf("sqp: nil objective")
	}
	if len(x0) == 0 {
		return nil, fmt.Errorf("sqp: empty starting point")
	}
	for i, c := range cons {
		if c == nil {
			return nil, fmt.Errorf("sqp: constraint %d is nil", i)
		}
	}

	run := &sqpRun{
		sqp:      s,
		obj:      obj,
		cons:     cons,
		settings: settings.withDefaults(),
		n:        len(x0),
	}
	run.ls, run.gauss = obj.(LeastSquares)
	if run.gauss {
		run.resid = make([]float64, run.ls.NumResiduals())
	}
	return run.solve(x0), nil
}

// sqpRun holds the state of one Minimize call.
type sqpRun struct {
	sqp      *SQP
	obj      Objective
	ls       LeastSquares
	gauss    bool
	cons     []EqualityConstraint
	settings Settings
	n        int

	resid []float64
}

func (r *sqpRun) formula() fd.Formula {
	if r.sqp.Formula.Stencil == nil {
		return fd.Central
	}
	return r.sqp.Formula
}

// model is the quantity the line search works on: ½‖r(x)‖² for least
// squares objectives, the objective itself otherwise.
func (r *sqpRun) model(x []float64) float64 {
	if !r.gauss {
		return r.obj.Value(x)
	}
	r.ls.Residuals(r.resid, x)
	return 0.5 * floats.Dot(r.resid, r.resid)
}

// constraintValues returns c_i(x) - target_i.
func (r *sqpRun) constraintValues(x []float64) []float64 {
	c := make([]float64, len(r.cons))
	for i, con := range r.cons {
		c[i] = con.Evaluate(x) - con.Target()
	}
	return c
}

// derivatives returns the model gradient and, for least squares, JᵀJ.
func (r *sqpRun) derivatives(x []float64) ([]float64, *mat.Dense) {
	if !r.gauss {
		g := fd.Gradient(nil, r.obj.Value, x, &fd.Settings{Formula: r.formula()})
		return g, nil
	}

	p := r.ls.NumResiduals()
	jac := mat.NewDense(p, r.n, nil)
	fd.Jacobian(jac, r.ls.Residuals, x, &fd.JacobianSettings{Formula: r.formula()})

	r.ls.Residuals(r.resid, x)
	grad := mat.NewVecDense(r.n, nil)
	grad.MulVec(jac.T(), mat.NewVecDense(p, r.resid))

	jtj := mat.NewDense(r.n, r.n, nil)
	jtj.Mul(jac.T(), jac)
	return grad.RawVector().Data, jtj
}

// constraintJacobian returns the m x n Jacobian of the constraints, nil if m = 0.
func (r *sqpRun) constraintJacobian(x []float64) *mat.Dense {
	if len(r.cons) == 0 {
		return nil
	}
	a := mat.NewDense(len(r.cons), r.n, nil)
	settings := &fd.Settings{Formula: r.formula()}
	row := make([]float64, r.n)
	for i, con := range r.cons {
		fd.Gradient(row, con.Evaluate, x, settings)
		a.SetRow(i, row)
	}
	return a
}

func (r *sqpRun) solve(x0 []float64) *Solution {
	ftol := r.settings.FunctionTolerance
	ctol := r.settings.ConstraintTolerance
	log := r.settings.Logger

	x := append([]float64(nil), x0...)
	c := r.constraintValues(x)
	f := r.obj.Value(x)
	g, jtj := r.derivatives(x)
	a := r.constraintJacobian(x)

	rho := make([]float64, len(r.cons))
	var bfgs *mat.Dense
	if !r.gauss {
		bfgs = identity(r.n)
	}
	mu := 0.0
	bfgsReset := false

	sol := &Solution{Status: IterationLimit}
	iter := 0
	for iter < r.settings.MaxIterations {
		iter++

		var b *mat.Dense
		if r.gauss {
			scale := maxDiag(jtj)
			if mu == 0 {
				mu = 1e-3 * math.Max(scale, math.SmallestNonzeroFloat64)
			}
			b = addDiag(jtj, mu)
		} else {
			b = bfgs
		}

		d, lambda, err := r.sqp.solveKKT(b, a, g, c)
		if err != nil {
			sol.Status = SingularSystem
			break
		}

		for i := range rho {
			al := math.Abs(lambda[i])
			rho[i] = math.Max(al, 0.5*(rho[i]+al))
		}

		// Change of the linearised merit along d
		linearised := make([]float64, len(c))
		copy(linearised, c)
		if a != nil {
			var ad mat.VecDense
			ad.MulVec(a, mat.NewVecDense(r.n, d))
			floats.Add(linearised, ad.RawVector().Data)
		}
		slope := floats.Dot(g, d) + weightedL1(rho, linearised) - weightedL1(rho, c)
		stepNorm := floats.Norm(d, 2)
		viol := floats.Norm(c, 1)

		if stepNorm == 0 {
			if viol < ctol {
				sol.Status = Converged
			} else {
				sol.Status = LineSearchFailed
			}
			break
		}

		merit0 := r.model(x) + weightedL1(rho, c)
		alpha := 1.0
		accepted := false
		var xt, ct []float64
		if slope < 0 {
			for k := 0; k < r.sqp.MaxBacktracks; k++ {
				xt = floats.AddScaledTo(make([]float64, r.n), x, alpha, d)
				ct = r.constraintValues(xt)
				if r.model(xt)+weightedL1(rho, ct) <= merit0+r.sqp.Armijo*alpha*slope {
					accepted = true
					break
				}
				alpha *= 0.5
			}
		}

		if !accepted {
			// Rounding makes the merit flat near a solution. Accept the full
			// step when it already meets the stopping rule.
			xt = floats.AddScaledTo(make([]float64, r.n), x, 1, d)
			ct = r.constraintValues(xt)
			ft := r.obj.Value(xt)
			if floats.Norm(ct, 1) < ctol && math.Abs(ft-f) < ftol {
				x, c, f = xt, ct, ft
				sol.Status = Converged
				break
			}

			if r.gauss {
				mu *= 10
				if mu > 1e16*math.Max(maxDiag(jtj), 1) {
					sol.Status = LineSearchFailed
					break
				}
				continue
			}
			if bfgsReset {
				sol.Status = LineSearchFailed
				break
			}
			bfgs = identity(r.n)
			bfgsReset = true
			continue
		}
		bfgsReset = false

		fNew := r.obj.Value(xt)
		violNew := floats.Norm(ct, 1)
		if r.settings.Verbose {
			log.Debug("sqp iteration",
				slog.Int("iter", iter),
				slog.Float64("f", fNew),
				slog.Float64("violation", violNew),
				slog.Float64("alpha", alpha),
				slog.Float64("step", alpha*stepNorm))
		}

		done := violNew < ctol && (math.Abs(fNew-f) < ftol || alpha*stepNorm < ftol)

		xPrev, gPrev, aPrev := x, g, a
		x, c, f = xt, ct, fNew
		if done {
			sol.Status = Converged
			break
		}

		g, jtj = r.derivatives(x)
		a = r.constraintJacobian(x)

		if r.gauss {
			if alpha == 1 {
				mu = math.Max(mu/10, 1e-15*maxDiag(jtj))
			}
			continue
		}

		// BFGS on the gradient of the Lagrangian g + Aᵀλ
		step := floats.SubTo(make([]float64, r.n), x, xPrev)
		y := floats.SubTo(make([]float64, r.n), lagrangianGradient(g, a, lambda), lagrangianGradient(gPrev, aPrev, lambda))
		dampedBFGS(bfgs, step, y)
	}

	sol.X = x
	sol.F = f
	sol.ConstraintViolation = floats.Norm(c, 1)
	sol.Iterations = iter
	sol.Converged = sol.Status == Converged
	return sol
}

// solveKKT returns the step d and the multipliers λ.
// The constraint rows are rescaled to the magnitude of B so the rank
// cutoff does not depend on the units of the problem.
func (s *SQP) solveKKT(b, a *mat.Dense, g, c []float64) ([]float64, []float64, error) {
	n := len(g)
	m := len(c)

	sigma := 1.0
	if m > 0 {
		bmax := mat.Norm(b, math.Inf(1))
		amax := mat.Norm(a, math.Inf(1))
		if bmax > 0 && amax > 0 {
			sigma = bmax / amax
		}
	}

	kkt := mat.NewDense(n+m, n+m, nil)
	kkt.Slice(0, n, 0, n).(*mat.Dense).Copy(b)
	rhs := mat.NewVecDense(n+m, nil)
	for i := 0; i < n; i++ {
		rhs.SetVec(i, -g[i])
	}
	if m > 0 {
		var scaled mat.Dense
		scaled.Scale(sigma, a)
		kkt.Slice(0, n, n, n+m).(*mat.Dense).Copy(scaled.T())
		kkt.Slice(n, n+m, 0, n).(*mat.Dense).Copy(&scaled)
		for i := 0; i < m; i++ {
			rhs.SetVec(n+i, -sigma*c[i])
		}
	}

	var svd mat.SVD
	if !svd.Factorize(kkt, mat.SVDThin) {
		return nil, nil, ErrSingularSystem
	}
	rank := svd.Rank(s.RankCond)
	if rank == 0 {
		return make([]float64, n), make([]float64, m), nil
	}

	var sol mat.VecDense
	svd.SolveVecTo(&sol, rhs, rank)
	raw := sol.RawVector().Data
	for _, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, ErrSingularSystem
		}
	}

	d := make([]float64, n)
	for i := 0; i < n; i++ {
		d[i] = sol.AtVec(i)
	}
	lambda := make([]float64, m)
	for i := 0; i < m; i++ {
		lambda[i] = sigma * sol.AtVec(n+i)
	}
	return d, lambda, nil
}

// dampedBFGS applies Powell's damped BFGS update to b in place.
func dampedBFGS(b *mat.Dense, s, y []float64) {
	n := len(s)
	sv := mat.NewVecDense(n, s)
	var bs mat.VecDense
	bs.MulVec(b, sv)
	sBs := mat.Dot(sv, &bs)
	if sBs <= 0 {
		return
	}

	yd := make([]float64, n)
	copy(yd, y)
	sy := floats.Dot(s, yd)
	if sy < 0.2*sBs {
		theta := 0.8 * sBs / (sBs - sy)
		for i := range yd {
			yd[i] = theta*y[i] + (1-theta)*bs.AtVec(i)
		}
		sy = floats.Dot(s, yd)
	}
	if sy <= 0 {
		return
	}

	yv := mat.NewVecDense(n, yd)
	b.RankOne(b, 1/sy, yv, yv)
	b.RankOne(b, -1/sBs, &bs, &bs)
}

func lagrangianGradient(g []float64, a *mat.Dense, lambda []float64) []float64 {
	out := make([]float64, len(g))
	copy(out, g)
	if a == nil {
		return out
	}
	var atl mat.VecDense
	atl.MulVec(a.T(), mat.NewVecDense(len(lambda), lambda))
	floats.Add(out, atl.RawVector().Data)
	return out
}

func weightedL1(w, v []float64) float64 {
	total := 0.0
	for i := range v {
		total += w[i] * math.Abs(v[i])
	}
	return total
}

func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func maxDiag(m *mat.Dense) float64 {
	n, _ := m.Dims()
	best := 0.0
	for i := 0; i < n; i++ {
		best = math.Max(best, m.At(i, i))
	}
	return best
}

// addDiag returns m + mu*I.
func addDiag(m *mat.Dense, mu float64) *mat.Dense {
	out := mat.DenseCopyOf(m)
	n, _ := out.Dims()
	for i := 0; i < n; i++ {
		out.Set(i, i, out.At(i, i)+mu)
	}
	return out
}
