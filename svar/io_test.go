// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package svar

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestReadMatrixCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		rows    int
		cols    int
		names   []string
		wantErr bool
	}{
		{name: "plain", input: "1,2\n3,4\n", rows: 2, cols: 2},
		{name: "header", input: "gdp,unemp\n0.8,0.5\n0.5,0.8\n", rows: 2, cols: 2, names: []string{"gdp", "unemp"}},
		{name: "spaces and blank lines", input: "1, 2\n\n3, 4\n", rows: 2, cols: 2},
		{name: "scientific notation", input: "1e-10,2.5E-3\n", rows: 1, cols: 2},
		{name: "ragged", input: "1,2\n3\n", wantErr: true},
		{name: "bad value after data", input: "1,2\nx,4\n", wantErr: true},
		{name: "two headers", input: "a,b\nc,d\n1,2\n", wantErr: true},
		{name: "header width", input: "a\n1,2\n", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "header only", input: "a,b\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, names, err := ReadMatrixCSV(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			r, c := m.Dims()
			assert.Equal(t, tt.rows, r)
			assert.Equal(t, tt.cols, c)
			assert.Equal(t, tt.names, names)
		})
	}
}

func TestReadMatrixCSVValues(t *testing.T) {
	m, _, err := ReadMatrixCSV(strings.NewReader("0.8,0.5\n0.5,0.8\n"))
	require.NoError(t, err)
	assert.True(t, mat.Equal(m, mat.NewDense(2, 2, []float64{0.8, 0.5, 0.5, 0.8})))
}

func TestLoadMatrixCSVMissingFile(t *testing.T) {
	_, _, err := LoadMatrixCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestOutputMatrixToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "impact.csv")
	M := mat.NewDense(2, 2, []float64{0.1234567890123, -0.5, 1e-12, 3})

	require.NoError(t, OutputMatrixToCSV(path, M, []string{"y", "u"}))

	back, names, err := LoadMatrixCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "u"}, names)
	assert.True(t, mat.Equal(M, back), "values must round trip exactly")

	// Default names when none fit
	require.NoError(t, OutputMatrixToCSV(path, M, nil))
	_, names, err = LoadMatrixCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Var1", "Var2"}, names)
}

func TestOutputIRFAnalysisToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "irf_analysis.csv")

	analysis := map[int][]float64{
		0: {1.0, 0.5, 0.25},
		1: {0.0, 0.1, 0.2},
	}
	varNames := []string{"x", "y"}

	require.NoError(t, OutputIRFAnalysisToCSV(path, analysis, varNames))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Horizon,Shock_x,Shock_y", lines[0])
	assert.Equal(t, "1,0.5,0.1", lines[2])

	// Responses to a small covariance keep their digits
	require.NoError(t, OutputIRFAnalysisToCSV(path, map[int][]float64{0: {1.25e-5, -3e-7}}, []string{"x"}))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "0,1.25e-05", lines[1])
	assert.Equal(t, "1,-3e-07", lines[2])

	// A gap in the shock indices is an error
	err = OutputIRFAnalysisToCSV(path, map[int][]float64{1: {0}}, nil)
	assert.Error(t, err)
}

func TestSplitLags(t *testing.T) {
	stacked := mat.NewDense(2, 4, []float64{
		1, 2, 5, 6,
		3, 4, 7, 8,
	})
	A, err := SplitLags(stacked)
	require.NoError(t, err)
	require.Len(t, A, 2)
	assert.True(t, mat.Equal(A[0], mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	assert.True(t, mat.Equal(A[1], mat.NewDense(2, 2, []float64{5, 6, 7, 8})))

	// Blocks are copies
	stacked.Set(0, 0, 100)
	assert.Equal(t, 1.0, A[0].At(0, 0))

	_, err = SplitLags(mat.NewDense(2, 3, nil))
	assert.Error(t, err)
}

func TestPrintSummary(t *testing.T) {
	omega := mat.NewDense(2, 2, []float64{0.8, 0.5, 0.5, 0.8})
	res, err := Solve(omega, []Restriction{{Row: 1, Col: 2}}, nil, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintSummary(&buf, omega, res)
	out := buf.String()
	assert.Contains(t, out, "SVAR Identification Summary")
	assert.Contains(t, out, "Converged:                true")
	assert.Contains(t, out, "exactly identified")
	assert.Contains(t, out, "Impact Matrix M")

	buf.Reset()
	PrintSummary(&buf, omega, nil)
	assert.Equal(t, "no result\n", buf.String())
}

func TestPrintIRF(t *testing.T) {
	irf := mat.NewDense(2, 2, []float64{1, 0, 0.5, 0})

	var buf bytes.Buffer
	PrintIRF(&buf, irf, []string{"gdp", "unemp"}, 0)
	out := buf.String()
	assert.Contains(t, out, "Shock 0 (gdp)")
	assert.Contains(t, out, "    0.500000")
}
