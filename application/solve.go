// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/Allisterh/panel-svar-code-reference/svar"
)

// SolveOptions holds the flags of the solve command. Flags override the config file.
type SolveOptions struct {
	Config             string
	Covariance         string
	LongRunMultiplier  string
	Coefficients       string
	Output             string
	MaxIterations      int
	Restarts           int
	Seed               int64
	Strict             bool
	RequireConvergence bool
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(root *RootOptions) *cobra.Command {
	opts := &SolveOptions{}

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Identify the impact matrix M",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}

			omega, names, err := svar.LoadMatrixCSV(cfg.Path(cfg.Covariance))
			if err != nil {
				return err
			}
			F, err := loadMultiplier(cfg)
			if err != nil {
				return err
			}
			shortRun, longRun, err := cfg.Restrictions()
			if err != nil {
				return err
			}

			res, err := svar.Solve(omega, shortRun, longRun, F, cfg.Options(root.logger, root.Verbose)...)
			if res != nil {
				svar.PrintSummary(cmd.OutOrStdout(), omega, res)
			}
			if err != nil {
				return err
			}

			if cfg.Output != "" {
				out := cfg.Path(cfg.Output)
				if err := svar.OutputMatrixToCSV(out, res.M, names); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Impact matrix written to", out)
			}
			return nil
		},
	}

	addSolveFlags(cmd, opts)
	return cmd
}

func addSolveFlags(cmd *cobra.Command, opts *SolveOptions) {
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "YAML config file")
	cmd.Flags().StringVar(&opts.Covariance, "omega", "", "covariance CSV")
	cmd.Flags().StringVar(&opts.LongRunMultiplier, "longrun", "", "long-run multiplier CSV")
	cmd.Flags().StringVar(&opts.Coefficients, "coefficients", "", "stacked VAR coefficients CSV (K x K*p)")
	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "output CSV for M")
	cmd.Flags().IntVar(&opts.MaxIterations, "max-iter", 0, "minimizer iteration cap")
	cmd.Flags().IntVar(&opts.Restarts, "restarts", 0, "random restarts when the identity start fails")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "seed for restarts (0 = time-based)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject restriction counts other than n(n-1)/2")
	cmd.Flags().BoolVar(&opts.RequireConvergence, "require-convergence", false, "fail when the minimizer does not converge")
}

// load reads the config file, if any, and applies the flags on top.
func (o *SolveOptions) load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{}
	if o.Config != "" {
		var err error
		cfg, err = LoadConfig(o.Config)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	paths := []struct {
		flag string
		val  string
		dst  *string
	}{
		{"omega", o.Covariance, &cfg.Covariance},
		{"longrun", o.LongRunMultiplier, &cfg.LongRunMultiplier},
		{"coefficients", o.Coefficients, &cfg.Coefficients},
		{"out", o.Output, &cfg.Output},
	}
	for _, p := range paths {
		if !flags.Changed(p.flag) {
			continue
		}
		// Flag paths are relative to the working directory
		abs, err := filepath.Abs(p.val)
		if err != nil {
			return nil, err
		}
		*p.dst = abs
	}

	if flags.Changed("max-iter") {
		cfg.Solver.MaxIterations = o.MaxIterations
	}
	if flags.Changed("restarts") {
		cfg.Solver.Restarts = o.Restarts
	}
	if flags.Changed("seed") {
		cfg.Solver.Seed = o.Seed
	}
	if flags.Changed("strict") {
		cfg.Solver.StrictIdentification = o.Strict
	}
	if flags.Changed("require-convergence") {
		cfg.Solver.RequireConvergence = o.RequireConvergence
	}

	if cfg.Covariance == "" {
		return nil, fmt.Errorf("no covariance given: use --omega or the covariance key of --config")
	}
	return cfg, nil
}

// loadMultiplier returns F from its CSV, from the VAR coefficients, or nil.
func loadMultiplier(cfg *Config) (mat.Matrix, error) {
	if cfg.LongRunMultiplier != "" {
		F, _, err := svar.LoadMatrixCSV(cfg.Path(cfg.LongRunMultiplier))
		if err != nil {
			return nil, err
		}
		return F, nil
	}
	if cfg.Coefficients == "" {
		return nil, nil
	}
	rf, err := loadCoefficients(cfg)
	if err != nil {
		return nil, err
	}
	F, err := rf.LongRunMultiplier()
	if err != nil {
		return nil, err
	}
	return F, nil
}

func loadCoefficients(cfg *Config) (*svar.ReducedFormVAR, error) {
	stacked, _, err := svar.LoadMatrixCSV(cfg.Path(cfg.Coefficients))
	if err != nil {
		return nil, err
	}
	A, err := svar.SplitLags(stacked)
	if err != nil {
		return nil, err
	}
	return &svar.ReducedFormVAR{A: A}, nil
}
