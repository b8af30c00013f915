// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/Allisterh/panel-svar-code-reference/svar"
)

// NewDemoCommand creates the demo command: a two-variable system where the
// second shock has no long-run effect on the first variable.
func NewDemoCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Solve a two-variable example with one long-run restriction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			omega := mat.NewSymDense(2, []float64{
				0.8, 0.5,
				0.5, 0.8,
			})
			F := mat.NewDense(2, 2, []float64{
				4, 5,
				7, 8,
			})
			longRun := []svar.Restriction{{Row: 1, Col: 2}}

			res, err := svar.Solve(omega, nil, longRun, F,
				svar.WithLogger(root.logger), svar.WithVerbose(root.Verbose))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			svar.PrintSummary(out, omega, res)
			fmt.Fprintf(out, "\nF[0,:] * M[:,1] = %.3e\n", 4*res.M.At(0, 1)+5*res.M.At(1, 1))
			return nil
		},
	}
}
