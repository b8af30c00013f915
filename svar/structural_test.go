// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package svar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testVAR() *ReducedFormVAR {
	return &ReducedFormVAR{
		A: []*mat.Dense{
			mat.NewDense(2, 2, []float64{
				0.5, 0.1,
				0.2, 0.3,
			}),
		},
		SigmaU: mat.NewSymDense(2, []float64{
			1.0, 0.3,
			0.3, 0.5,
		}),
	}
}

func TestLongRunMultiplier(t *testing.T) {
	tests := []struct {
		name string
		A    []*mat.Dense
		want *mat.Dense
	}{
		{
			name: "one lag",
			A:    []*mat.Dense{mat.NewDense(2, 2, []float64{0.5, 0, 0, 0.5})},
			want: mat.NewDense(2, 2, []float64{2, 0, 0, 2}),
		},
		{
			name: "two lags add up",
			A: []*mat.Dense{
				mat.NewDense(2, 2, []float64{0.2, 0, 0, 0.2}),
				mat.NewDense(2, 2, []float64{0.3, 0, 0, 0.3}),
			},
			want: mat.NewDense(2, 2, []float64{2, 0, 0, 2}),
		},
		{
			// (I - A)^-1 with I - A = [[0.5, -0.1], [-0.2, 0.7]], det 0.33
			name: "coupled",
			A:    testVAR().A,
			want: mat.NewDense(2, 2, []float64{0.7 / 0.33, 0.1 / 0.33, 0.2 / 0.33, 0.5 / 0.33}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rf := &ReducedFormVAR{A: tt.A}
			F, err := rf.LongRunMultiplier()
			require.NoError(t, err)
			assert.True(t, mat.EqualApprox(F, tt.want, 1e-12), "F = %v", mat.Formatted(F))
		})
	}
}

func TestLongRunMultiplierUnitRoot(t *testing.T) {
	rf := &ReducedFormVAR{A: []*mat.Dense{identity(2)}}
	_, err := rf.LongRunMultiplier()
	assert.ErrorIs(t, err, ErrSingularMultiplier)
}

func TestLongRunMultiplierBadShapes(t *testing.T) {
	_, err := (&ReducedFormVAR{}).LongRunMultiplier()
	assert.Error(t, err)

	rf := &ReducedFormVAR{A: []*mat.Dense{identity(2), identity(3)}}
	_, err = rf.LongRunMultiplier()
	assert.Error(t, err)
}

func TestIRF(t *testing.T) {
	rf := &ReducedFormVAR{
		A: []*mat.Dense{mat.NewDense(2, 2, []float64{0.5, 0, 0, 0.25})},
	}
	sv := &StructuralVAR{ReducedFormVAR: rf, M: identity(2)}

	irf, err := sv.IRF(4, 0)
	require.NoError(t, err)
	r, c := irf.Dims()
	require.Equal(t, 4, r)
	require.Equal(t, 2, c)
	for h := 0; h < 4; h++ {
		assert.InDelta(t, math.Pow(0.5, float64(h)), irf.At(h, 0), 1e-12)
		assert.InDelta(t, 0, irf.At(h, 1), 1e-12)
	}

	irf, err = sv.IRF(3, 1)
	require.NoError(t, err)
	for h := 0; h < 3; h++ {
		assert.InDelta(t, math.Pow(0.25, float64(h)), irf.At(h, 1), 1e-12)
	}
}

func TestIRFTwoLags(t *testing.T) {
	// Scalar AR(2): psi_h = 0.5 psi_{h-1} + 0.2 psi_{h-2}
	rf := &ReducedFormVAR{
		A: []*mat.Dense{
			mat.NewDense(1, 1, []float64{0.5}),
			mat.NewDense(1, 1, []float64{0.2}),
		},
	}
	sv := &StructuralVAR{ReducedFormVAR: rf, M: mat.NewDense(1, 1, []float64{2})}

	irf, err := sv.IRF(4, 0)
	require.NoError(t, err)
	want := []float64{2, 1, 0.9, 0.65}
	for h, w := range want {
		assert.InDelta(t, w, irf.At(h, 0), 1e-12, "h = %d", h)
	}
}

func TestIRFErrors(t *testing.T) {
	var nilVAR *StructuralVAR
	_, err := nilVAR.IRF(3, 0)
	assert.Error(t, err)

	sv := &StructuralVAR{ReducedFormVAR: testVAR(), M: identity(2)}
	_, err = sv.IRF(0, 0)
	assert.Error(t, err)
	_, err = sv.IRF(3, 2)
	assert.Error(t, err)
	_, err = sv.IRF(3, -1)
	assert.Error(t, err)

	sv.M = identity(3)
	_, err = sv.IRF(3, 0)
	assert.Error(t, err)
}

func TestIdentifyLongRun(t *testing.T) {
	rf := testVAR()

	sv, err := rf.Identify(nil, []Restriction{{Row: 1, Col: 2}})
	require.NoError(t, err)
	require.True(t, sv.Result.Converged)

	var mmt mat.Dense
	mmt.Mul(sv.M, sv.M.T())
	assert.True(t, mat.EqualApprox(&mmt, rf.SigmaU, 1e-6))

	// The second shock has no cumulative effect on the first variable
	lr, err := sv.LongRunEffects()
	require.NoError(t, err)
	assert.InDelta(t, 0, lr.At(0, 1), 1e-6)

	// The impact responses are the columns of M
	for shock := 0; shock < 2; shock++ {
		irf, err := sv.IRF(5, shock)
		require.NoError(t, err)
		assert.InDelta(t, sv.M.At(0, shock), irf.At(0, 0), 1e-12)
		assert.InDelta(t, sv.M.At(1, shock), irf.At(0, 1), 1e-12)
	}

	// Summing the responses over a long horizon approaches F*M
	irf, err := sv.IRF(200, 1)
	require.NoError(t, err)
	total := 0.0
	for h := 0; h < 200; h++ {
		total += irf.At(h, 0)
	}
	assert.InDelta(t, 0, total, 1e-6)
}

func TestIdentifyShortRunWithoutMultiplier(t *testing.T) {
	// A unit root VAR has no long-run multiplier, short-run identification
	// does not need one
	rf := &ReducedFormVAR{
		A:      []*mat.Dense{identity(2)},
		SigmaU: mat.NewSymDense(2, []float64{4, 2, 2, 2}),
	}
	sv, err := rf.Identify([]Restriction{{Row: 1, Col: 2}}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0, sv.M.At(0, 1), 1e-8)
	assert.InDelta(t, 2, math.Abs(sv.M.At(0, 0)), 1e-6)

	_, err = rf.Identify(nil, []Restriction{{Row: 1, Col: 2}})
	assert.ErrorIs(t, err, ErrSingularMultiplier)

	_, err = sv.LongRunEffects()
	assert.ErrorIs(t, err, ErrSingularMultiplier)
}

func TestIdentifyErrors(t *testing.T) {
	rf := &ReducedFormVAR{A: testVAR().A}
	_, err := rf.Identify(nil, nil)
	assert.Error(t, err, "missing SigmaU")

	_, err = (&ReducedFormVAR{SigmaU: testVAR().SigmaU}).Identify(nil, nil)
	assert.Error(t, err, "missing coefficients")

	rf = testVAR()
	_, err = rf.Identify(nil, nil, WithStrictIdentification(true))
	assert.ErrorIs(t, err, ErrNotIdentified)
}

func TestIRFAnalysis(t *testing.T) {
	rf := testVAR()
	sv, err := rf.Identify([]Restriction{{Row: 1, Col: 2}}, nil)
	require.NoError(t, err)

	analysis, err := sv.IRFAnalysis(1, 6)
	require.NoError(t, err)
	require.Len(t, analysis, 2)

	for shock, series := range analysis {
		require.Len(t, series, 6)
		irf, err := sv.IRF(6, shock)
		require.NoError(t, err)
		for h := range series {
			assert.Equal(t, irf.At(h, 1), series[h])
		}
	}
	// Recursive ordering: the second shock does not move the first
	// variable on impact
	first, err := sv.IRFAnalysis(0, 6)
	require.NoError(t, err)
	assert.InDelta(t, 0, first[1][0], 1e-8)

	_, err = sv.IRFAnalysis(2, 6)
	assert.Error(t, err)
}

func TestReducedFormLags(t *testing.T) {
	rf := testVAR()
	assert.Equal(t, 1, rf.Lags())
}
