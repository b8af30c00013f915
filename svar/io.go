// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package svar

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// LoadMatrixCSV loads a numeric CSV file into a matrix.
// If the first row does not parse as numbers it is returned as the
// column names, otherwise names is nil.
func LoadMatrixCSV(path string) (*mat.Dense, []string, error) {
	// 1. Open file
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	m, names, err := ReadMatrixCSV(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, names, nil
}

// ReadMatrixCSV is LoadMatrixCSV on an already opened reader.
func ReadMatrixCSV(in io.Reader) (*mat.Dense, []string, error) {
	// 2. Make CSV reader
	r := csv.NewReader(in)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	var (
		names []string  // optional header
		data  []float64 // flat data for mat.Dense
		cols  int       // columns of the first data row
		rows  int       // row counter
		line  int       // physical record counter
	)

	// 3. Read each row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++

		// Skip completely empty lines
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}

		values, perr := parseRecord(record)
		if perr != nil {
			// Only the first non-empty record may be a header
			if rows == 0 && names == nil {
				names = record
				continue
			}
			return nil, nil, fmt.Errorf("row %d: %w", line, perr)
		}

		if rows == 0 {
			cols = len(values)
		}
		if len(values) != cols {
			return nil, nil, fmt.Errorf("row %d: expected %d columns, got %d", line, cols, len(values))
		}
		data = append(data, values...)
		rows++
	}

	if rows == 0 {
		return nil, nil, fmt.Errorf("no data rows")
	}
	if names != nil && len(names) != cols {
		return nil, nil, fmt.Errorf("header has %d names for %d columns", len(names), cols)
	}

	// 4. Build mat.Dense
	return mat.NewDense(rows, cols, data), names, nil
}

func parseRecord(record []string) ([]float64, error) {
	values := make([]float64, len(record))
	for j, s := range record {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("parse float at col %d (%q): %w", j+1, s, err)
		}
		values[j] = v
	}
	return values, nil
}

// SplitLags splits a K x (K*p) matrix [A_1 A_2 ... A_p] into its K x K blocks.
func SplitLags(stacked *mat.Dense) ([]*mat.Dense, error) {
	K, c := stacked.Dims()
	if K == 0 || c == 0 || c%K != 0 {
		return nil, fmt.Errorf("stacked coefficients must be K x K*p, got %dx%d", K, c)
	}
	p := c / K
	A := make([]*mat.Dense, p)
	for j := 0; j < p; j++ {
		A[j] = mat.DenseCopyOf(stacked.Slice(0, K, j*K, (j+1)*K))
	}
	return A, nil
}

// columnNames returns names when it fits, otherwise Var1..VarN.
func columnNames(names []string, n int) []string {
	if len(names) == n {
		return names
	}
	out := make([]string, n)
	for j := range out {
		out[j] = fmt.Sprintf("Var%d", j+1)
	}
	return out
}

// OutputMatrixToCSV writes m with a header row of variable names.
func OutputMatrixToCSV(path string, m mat.Matrix, varNames []string) error {
	rows, cols := m.Dims()

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	// Initialize a new CSV writer
	writer := csv.NewWriter(file)

	if err := writer.Write(columnNames(varNames, cols)); err != nil {
		return err
	}

	// Write data rows
	for i := 0; i < rows; i++ {
		record := make([]string, cols)
		for j := 0; j < cols; j++ {
			record[j] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// OutputIRFAnalysisToCSV writes one column per structural shock, one row per horizon.
func OutputIRFAnalysisToCSV(path string, analysis map[int][]float64, varNames []string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	K := len(analysis)
	names := columnNames(varNames, K)

	// Write header, shocks in index order
	header := []string{"Horizon"}
	for shockIdx := 0; shockIdx < K; shockIdx++ {
		if _, ok := analysis[shockIdx]; !ok {
			return fmt.Errorf("missing responses for shock %d", shockIdx)
		}
		header = append(header, "Shock_"+names[shockIdx])
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	// Determine horizon from the first shock
	var horizon int
	if K > 0 {
		horizon = len(analysis[0])
	}

	// Write data rows
	for h := 0; h < horizon; h++ {
		record := []string{strconv.Itoa(h)}
		for shockIdx := 0; shockIdx < K; shockIdx++ {
			record = append(record, strconv.FormatFloat(analysis[shockIdx][h], 'g', -1, 64))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// PrintMatrix prints m under a title
func PrintMatrix(w io.Writer, title string, m mat.Matrix) {
	fmt.Fprintf(w, "\n=== %s ===\n", title)
	fmt.Fprintf(w, "%v\n", mat.Formatted(m, mat.Prefix(" ")))
}

// Helps print the IRF matrix, requires the matrix, variable names, and the shockindex
func PrintIRF(w io.Writer, irf *mat.Dense, varNames []string, shockIndex int) {
	rows, cols := irf.Dims()
	names := columnNames(varNames, cols)

	fmt.Fprintf(w, "\n=== Structural Impulse Response Function ===\n")
	fmt.Fprintf(w, "Shock %d (%s)\n\n", shockIndex, names[shockIndex])

	// Print header
	fmt.Fprintf(w, "h\t")
	for _, name := range names {
		fmt.Fprintf(w, "%12s", name)
	}
	fmt.Fprintln(w)

	// Print rows
	for h := 0; h < rows; h++ {
		fmt.Fprintf(w, "%d\t", h)
		for j := 0; j < cols; j++ {
			fmt.Fprintf(w, "%12.6f", irf.At(h, j))
		}
		fmt.Fprintln(w)
	}
}

// Produces a summary table of an identification
func PrintSummary(w io.Writer, omega mat.Matrix, res *Result) {
	if res == nil || res.M == nil {
		fmt.Fprintln(w, "no result")
		return
	}
	fmt.Fprintln(w, "         SVAR Identification Summary      ")
	fmt.Fprintln(w, "=======================================")
	fmt.Fprintf(w, "Variables (n):            %d\n", res.Identification.Variables)
	fmt.Fprintf(w, "Restrictions:             %d (need %d, %s)\n",
		res.Identification.Restrictions, res.Identification.Required, res.Identification.Status)
	fmt.Fprintf(w, "Converged:                %t (%s)\n", res.Converged, res.Status)
	fmt.Fprintf(w, "Iterations:               %d\n", res.Iterations)
	fmt.Fprintf(w, "Function tolerance:       %.3e\n", res.Tolerance)
	fmt.Fprintf(w, "||MM' - Omega||_F:        %.3e\n", res.Objective)
	fmt.Fprintf(w, "Restriction violation:    %.3e\n", res.ConstraintViolation)
	fmt.Fprintln(w, "=======================================")

	if omega != nil {
		PrintMatrix(w, "Omega", omega)
	}
	PrintMatrix(w, "Impact Matrix M", res.M)

	var mmt mat.Dense
	mmt.Mul(res.M, res.M.T())
	PrintMatrix(w, "M * M'", &mmt)
}
