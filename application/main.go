// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package main

import (
	"os"
)

// This is the main function that runs the SVAR identification.
// Subcommands:
//
//	solve  - identify M from a covariance, a long-run multiplier and restrictions
//	irf    - identify M from VAR coefficients and write structural impulse responses
//	demo   - run the two-variable example with one long-run restriction
func main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
