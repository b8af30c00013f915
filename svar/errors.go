// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package svar

import (
	"errors"
	"fmt"
)

var (
	// ErrNotIdentified is returned under strict identification when the
	// restriction count differs from n(n-1)/2.
	ErrNotIdentified = errors.New("restriction count does not exactly identify the model")

	// ErrNotConverged is returned when convergence is required and the
	// minimizer stopped without converging.
	ErrNotConverged = errors.New("minimizer did not converge")

	// ErrSingularSystem is returned when a KKT system has no usable solution.
	ErrSingularSystem = errors.New("singular KKT system")

	// ErrSingularMultiplier is returned when I - A_1 - ... - A_p is not invertible.
	ErrSingularMultiplier = errors.New("long-run multiplier does not exist")
)

// ValidationError reports inputs rejected before any optimisation work.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// errNotSymmetric is raised when omega differs from its transpose.
func errNotSymmetric() error {
	return &ValidationError{Field: "omega", Reason: "covariance matrix must be symmetrical"}
}
