// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allisterh/panel-svar-code-reference/svar"
)

const sampleConfig = `
covariance: data/omega.csv
long_run_multiplier: data/F.csv
short_run:
  - [2, 1]
long_run:
  - [1, 2]
solver:
  max_iterations: 50
  base_tolerance: 1.0e-8
  restarts: 3
  seed: 11
  strict_identification: true
output: out/M.csv
irf:
  horizon: 24
  variable: 1
  output: out/irf.csv
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "data/omega.csv", cfg.Covariance)
	assert.Equal(t, "data/F.csv", cfg.LongRunMultiplier)
	assert.Equal(t, [][]int{{2, 1}}, cfg.ShortRun)
	assert.Equal(t, [][]int{{1, 2}}, cfg.LongRun)
	assert.Equal(t, SolverConfig{
		MaxIterations:        50,
		BaseTolerance:        1e-8,
		Restarts:             3,
		Seed:                 11,
		StrictIdentification: true,
	}, cfg.Solver)
	assert.Equal(t, IRFConfig{Horizon: 24, Variable: 1, Output: "out/irf.csv"}, cfg.IRF)

	shortRun, longRun, err := cfg.Restrictions()
	require.NoError(t, err)
	assert.Equal(t, []svar.Restriction{{Row: 2, Col: 1}}, shortRun)
	assert.Equal(t, []svar.Restriction{{Row: 1, Col: 2}}, longRun)
}

func TestParseConfigInvalid(t *testing.T) {
	_, err := ParseConfig([]byte("short_run: [1, 2"))
	assert.Error(t, err)

	cfg, err := ParseConfig([]byte("covariance: omega.csv\nlong_run:\n  - [1, 2, 3]\n"))
	require.NoError(t, err)
	_, _, err = cfg.Restrictions()
	assert.ErrorContains(t, err, "long_run[0]")
}

func TestLoadConfigResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "svar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "omega.csv"), cfg.Path(cfg.Covariance))
	assert.Equal(t, "/abs/omega.csv", cfg.Path("/abs/omega.csv"))
	assert.Equal(t, "", cfg.Path(""))

	// Without a file the paths stay as they are
	parsed, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "data/omega.csv", parsed.Path(parsed.Covariance))

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigOptions(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)

	o := svar.DefaultOptions()
	for _, opt := range cfg.Options(svar.NoopLogger(), true) {
		opt(&o)
	}
	assert.Equal(t, 50, o.MaxIterations)
	assert.Equal(t, 1e-8, o.BaseTolerance)
	assert.Equal(t, 1e-3, o.ToleranceScale)
	assert.Equal(t, 3, o.Restarts)
	assert.Equal(t, int64(11), o.Seed)
	assert.True(t, o.StrictIdentification)
	assert.False(t, o.RequireConvergence)
	assert.True(t, o.Verbose)
	assert.NotNil(t, o.Logger)

	// Empty solver section keeps the defaults
	o = svar.DefaultOptions()
	for _, opt := range (&Config{}).Options(nil, false) {
		opt(&o)
	}
	assert.Equal(t, svar.DefaultOptions(), o)
}
