// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package svar

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Lags returns the number of lags p.
func (rf *ReducedFormVAR) Lags() int { return len(rf.A) }

// dims returns K after checking that every A_j is K x K.
func (rf *ReducedFormVAR) dims() (int, error) {
	if rf == nil || len(rf.A) == 0 {
		return 0, fmt.Errorf("VAR coefficients not provided")
	}
	K, c := rf.A[0].Dims()
	if K != c {
		return 0, fmt.Errorf("A_1 must be square, got %dx%d", K, c)
	}
	for j, A := range rf.A {
		r, c := A.Dims()
		if r != K || c != K {
			return 0, fmt.Errorf("A_%d must be %dx%d, got %dx%d", j+1, K, K, r, c)
		}
	}
	return K, nil
}

// LongRunMultiplier computes F = (I - A_1 - ... - A_p)^-1, the cumulative
// effect of a unit innovation on every variable.
// Returns: K x K matrix, or ErrSingularMultiplier if the VAR has a unit root
func (rf *ReducedFormVAR) LongRunMultiplier() (*mat.Dense, error) {
	K, err := rf.dims()
	if err != nil {
		return nil, err
	}

	// I - sum_j A_j
	lhs := identity(K)
	for _, A := range rf.A {
		lhs.Sub(lhs, A)
	}

	F := mat.NewDense(K, K, nil)
	if err := F.Inverse(lhs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularMultiplier, err)
	}
	return F, nil
}

// Identify recovers the impact matrix from SigmaU using the given
// restrictions, with F taken from LongRunMultiplier.
// Returns: the structural VAR, which also carries the solver diagnostics
func (rf *ReducedFormVAR) Identify(shortRun, longRun []Restriction, opts ...Option) (*StructuralVAR, error) {
	if _, err := rf.dims(); err != nil {
		return nil, err
	}
	if rf.SigmaU == nil {
		return nil, fmt.Errorf("residual covariance not provided")
	}

	var F *mat.Dense
	if len(longRun) > 0 {
		var err error
		F, err = rf.LongRunMultiplier()
		if err != nil {
			return nil, err
		}
	}

	res, err := Solve(rf.SigmaU, shortRun, longRun, F, opts...)
	if err != nil {
		return nil, fmt.Errorf("identify: %w", err)
	}

	return &StructuralVAR{
		ReducedFormVAR: rf,
		M:              res.M,
		Result:         res,
	}, nil
}

// movingAverage computes Psi_0, ..., Psi_{horizon-1} with
// Psi_0 = I and Psi_h = sum_{j=1}^{min(h,p)} A_j * Psi_{h-j}.
func (rf *ReducedFormVAR) movingAverage(horizon int) []*mat.Dense {
	K, _ := rf.A[0].Dims()
	p := len(rf.A)

	Psi := make([]*mat.Dense, horizon)
	Psi[0] = identity(K)

	for h := 1; h < horizon; h++ {
		M := mat.NewDense(K, K, nil)
		maxLag := p
		if h < p {
			maxLag = h
		}
		for j := 1; j <= maxLag; j++ {
			var tmp mat.Dense
			tmp.Mul(rf.A[j-1], Psi[h-j]) // A_j * Psi_{h-j}
			M.Add(M, &tmp)
		}
		Psi[h] = M
	}
	return Psi
}

// IRF computes impulse responses to a one-time structural shock
// horizon: number of periods to compute (h=0, ..., horizon-1)
// shockIndex: index of the structural shock, (0-based)
// Returns: horizon x K matrix. where row h is response of all K vars at horizon h
func (sv *StructuralVAR) IRF(horizon int, shockIndex int) (*mat.Dense, error) {
	if sv == nil || sv.M == nil {
		return nil, fmt.Errorf("structural VAR not identified")
	}
	K, err := sv.dims()
	if err != nil {
		return nil, err
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("horizon must be > 0")
	}
	if shockIndex < 0 || shockIndex >= K {
		return nil, fmt.Errorf("shockIndex must be between 0 and %d", K-1)
	}
	if r, c := sv.M.Dims(); r != K || c != K {
		return nil, fmt.Errorf("impact matrix must be %dx%d, got %dx%d", K, K, r, c)
	}

	// The shock vector is the column of M for this structural shock
	shockVec := mat.NewVecDense(K, mat.Col(nil, shockIndex, sv.M))

	Psi := sv.movingAverage(horizon)

	// IRF[h] = Psi_h * shock
	irf := mat.NewDense(horizon, K, nil)
	for h := 0; h < horizon; h++ {
		var resp mat.VecDense
		resp.MulVec(Psi[h], shockVec)
		for i := 0; i < K; i++ {
			irf.Set(h, i, resp.AtVec(i))
		}
	}

	return irf, nil
}

// LongRunEffects returns F * M, the cumulative response of every variable
// (rows) to every structural shock (columns). Entries restricted in the
// long run are zero up to the solver tolerance.
func (sv *StructuralVAR) LongRunEffects() (*mat.Dense, error) {
	if sv == nil || sv.M == nil {
		return nil, fmt.Errorf("structural VAR not identified")
	}
	F, err := sv.LongRunMultiplier()
	if err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Mul(F, sv.M)
	return &out, nil
}

// Run IRF for all structural shocks to look for changes in variable varIndex,
// then compile the responses into a map
// varIndex: index of variable to analyze, 0-based
// horizon: number of periods to compute (h=0, ..., horizon-1)
// Returns: map[shockIndex] = impact on varIndex
func (sv *StructuralVAR) IRFAnalysis(varIndex int, horizon int) (map[int][]float64, error) {
	if sv == nil || sv.M == nil {
		return nil, fmt.Errorf("structural VAR not identified")
	}
	K, err := sv.dims()
	if err != nil {
		return nil, err
	}
	if varIndex < 0 || varIndex >= K {
		return nil, fmt.Errorf("varIndex must be between 0 and %d", K-1)
	}

	results := make(map[int][]float64)
	for shockIdx := 0; shockIdx < K; shockIdx++ {
		irfMat, err := sv.IRF(horizon, shockIdx)
		if err != nil {
			return nil, fmt.Errorf("IRF failed for shockIdx %d: %w", shockIdx, err)
		}

		series := make([]float64, horizon)
		for h := 0; h < horizon; h++ {
			series[h] = irfMat.At(h, varIndex)
		}

		results[shockIdx] = series
	}

	return results, nil
}
