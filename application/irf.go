// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Allisterh/panel-svar-code-reference/svar"
)

// IRFOptions holds the flags of the irf command on top of the solve flags.
type IRFOptions struct {
	SolveOptions
	Horizon   int
	Variable  int
	IRFOutput string
}

// NewIRFCommand creates the irf command: identify M from the VAR
// coefficients and covariance, then trace the structural shocks.
func NewIRFCommand(root *RootOptions) *cobra.Command {
	opts := &IRFOptions{}

	cmd := &cobra.Command{
		Use:   "irf",
		Short: "Structural impulse responses of one variable to every shock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cfg.Coefficients == "" {
				return fmt.Errorf("no coefficients given: use --coefficients or the coefficients key of --config")
			}
			// F is always (I - A_1 - ... - A_p)^-1 here
			if cfg.LongRunMultiplier != "" {
				return fmt.Errorf("irf derives the long-run multiplier from the coefficients: drop --longrun and the long_run_multiplier key")
			}

			flags := cmd.Flags()
			if flags.Changed("horizon") {
				cfg.IRF.Horizon = opts.Horizon
			}
			if flags.Changed("variable") {
				cfg.IRF.Variable = opts.Variable
			}
			if flags.Changed("irf-out") {
				abs, err := filepath.Abs(opts.IRFOutput)
				if err != nil {
					return err
				}
				cfg.IRF.Output = abs
			}
			if cfg.IRF.Horizon <= 0 {
				cfg.IRF.Horizon = 12
			}

			// 1. Load the reduced form
			omega, names, err := svar.LoadMatrixCSV(cfg.Path(cfg.Covariance))
			if err != nil {
				return err
			}
			rf, err := loadCoefficients(cfg)
			if err != nil {
				return err
			}
			rf.SigmaU, err = svar.ToSymmetric(omega)
			if err != nil {
				return err
			}

			// 2. Identify
			shortRun, longRun, err := cfg.Restrictions()
			if err != nil {
				return err
			}
			sv, err := rf.Identify(shortRun, longRun, cfg.Options(root.logger, root.Verbose)...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Reduced form: VAR(%d) in %d variables\n", rf.Lags(), rf.SigmaU.SymmetricDim())
			svar.PrintSummary(out, omega, sv.Result)

			if lr, err := sv.LongRunEffects(); err == nil {
				svar.PrintMatrix(out, "Long-run effects F * M", lr)
			}

			// 3. Trace every shock
			for shock := 0; shock < rf.SigmaU.SymmetricDim(); shock++ {
				irfMat, err := sv.IRF(cfg.IRF.Horizon, shock)
				if err != nil {
					return err
				}
				svar.PrintIRF(out, irfMat, names, shock)
			}

			// 4. Responses of one variable, written to CSV
			if cfg.IRF.Output != "" {
				analysis, err := sv.IRFAnalysis(cfg.IRF.Variable, cfg.IRF.Horizon)
				if err != nil {
					return err
				}
				path := cfg.Path(cfg.IRF.Output)
				if err := svar.OutputIRFAnalysisToCSV(path, analysis, names); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintln(out, "IRF analysis results written to", path)
			}
			if cfg.Output != "" {
				path := cfg.Path(cfg.Output)
				if err := svar.OutputMatrixToCSV(path, sv.M, names); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
			}
			return nil
		},
	}

	addSolveFlags(cmd, &opts.SolveOptions)
	cmd.Flags().IntVar(&opts.Horizon, "horizon", 12, "number of IRF periods")
	cmd.Flags().IntVar(&opts.Variable, "variable", 0, "0-based index of the responding variable for --irf-out")
	cmd.Flags().StringVar(&opts.IRFOutput, "irf-out", "", "output CSV for the responses of --variable")
	return cmd
}
