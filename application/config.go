// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Allisterh/panel-svar-code-reference/svar"
)

// Config is the YAML document describing one identification.
// Relative paths are resolved against the directory of the document.
type Config struct {
	// Reduced form covariance CSV (n x n)
	Covariance string `yaml:"covariance"`
	// Long-run multiplier CSV (n x n). If empty and Coefficients is set,
	// F is computed as (I - A_1 - ... - A_p)^-1.
	LongRunMultiplier string `yaml:"long_run_multiplier,omitempty"`
	// Stacked VAR coefficients CSV, K x K*p
	Coefficients string `yaml:"coefficients,omitempty"`

	// 1-indexed [row, col] pairs
	ShortRun [][]int `yaml:"short_run,omitempty"`
	LongRun  [][]int `yaml:"long_run,omitempty"`

	Solver SolverConfig `yaml:"solver,omitempty"`

	// Where to write M
	Output string `yaml:"output,omitempty"`

	IRF IRFConfig `yaml:"irf,omitempty"`

	dir string
}

// SolverConfig mirrors svar.Options.
type SolverConfig struct {
	MaxIterations        int     `yaml:"max_iterations,omitempty"`
	BaseTolerance        float64 `yaml:"base_tolerance,omitempty"`
	ToleranceScale       float64 `yaml:"tolerance_scale,omitempty"`
	Restarts             int     `yaml:"restarts,omitempty"`
	Seed                 int64   `yaml:"seed,omitempty"`
	StrictIdentification bool    `yaml:"strict_identification,omitempty"`
	RequireConvergence   bool    `yaml:"require_convergence,omitempty"`
}

// IRFConfig controls the structural impulse responses.
type IRFConfig struct {
	Horizon  int    `yaml:"horizon,omitempty"`
	Variable int    `yaml:"variable,omitempty"`
	Output   string `yaml:"output,omitempty"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// ParseConfig parses a YAML document. Paths stay relative to the working directory.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Path resolves p against the config directory.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Restrictions converts the [row, col] pairs.
func (c *Config) Restrictions() (shortRun, longRun []svar.Restriction, err error) {
	shortRun, err = toRestrictions("short_run", c.ShortRun)
	if err != nil {
		return nil, nil, err
	}
	longRun, err = toRestrictions("long_run", c.LongRun)
	if err != nil {
		return nil, nil, err
	}
	return shortRun, longRun, nil
}

func toRestrictions(field string, pairs [][]int) ([]svar.Restriction, error) {
	out := make([]svar.Restriction, 0, len(pairs))
	for i, p := range pairs {
		if len(p) != 2 {
			return nil, fmt.Errorf("%s[%d]: expected [row, col], got %v", field, i, p)
		}
		out = append(out, svar.Restriction{Row: p[0], Col: p[1]})
	}
	return out, nil
}

// Options turns the solver section into svar options.
func (c *Config) Options(logger *slog.Logger, verbose bool) []svar.Option {
	opts := []svar.Option{
		svar.WithLogger(logger),
		svar.WithVerbose(verbose),
		svar.WithStrictIdentification(c.Solver.StrictIdentification),
		svar.WithRequireConvergence(c.Solver.RequireConvergence),
	}
	if c.Solver.MaxIterations > 0 {
		opts = append(opts, svar.WithMaxIterations(c.Solver.MaxIterations))
	}
	if c.Solver.BaseTolerance > 0 {
		opts = append(opts, svar.WithBaseTolerance(c.Solver.BaseTolerance))
	}
	if c.Solver.ToleranceScale > 0 {
		opts = append(opts, svar.WithToleranceScale(c.Solver.ToleranceScale))
	}
	if c.Solver.Restarts > 0 {
		opts = append(opts, svar.WithRestarts(c.Solver.Restarts, c.Solver.Seed))
	}
	return opts
}
