// Package stats implements the statistical core of the inflammation study:
// aggregate statistics over a patients-by-days measurement table,
// per-patient normalisation and threshold counting.
//
// All standard deviations are population standard deviations (divide by n).
package stats

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotTable marks input that is not a usable numeric table (a zero
	// Table, or row input that carries no data at all).
	ErrNotTable = errors.New("input is not a numeric table")
	// ErrNotMatrix marks input that is not rectangular and two-dimensional.
	ErrNotMatrix = errors.New("table must be two-dimensional")
	// ErrNegative marks a measurement below zero.
	ErrNegative = errors.New("inflammation values must not be negative")
	// ErrOutOfRange marks a patient index outside the table.
	ErrOutOfRange = errors.New("patient index out of range")
)

// Table is a rectangular grid of inflammation measurements stored in a
// single contiguous buffer. Rows are patients, columns are days.
type Table struct {
	values []float64
	rows   int
	cols   int
}

// New returns a zero-filled rows-by-cols table.
func New(rows, cols int) Table {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return Table{values: make([]float64, rows*cols), rows: rows, cols: cols}
}

// FromRows builds a Table from per-patient measurement slices. The input
// must be rectangular: every patient must have a value for every day.
func FromRows(rows [][]float64) (Table, error) {
	if rows == nil {
		return Table{}, fmt.Errorf("%w: no rows", ErrNotTable)
	}
	if len(rows) == 0 {
		return Table{}, fmt.Errorf("%w: zero patients", ErrNotMatrix)
	}

	cols := len(rows[0])
	if cols == 0 {
		return Table{}, fmt.Errorf("%w: zero days", ErrNotMatrix)
	}

	t := New(len(rows), cols)
	for p, row := range rows {
		if len(row) != cols {
			return Table{}, fmt.Errorf("%w: patient %d has %d values, want %d", ErrNotMatrix, p, len(row), cols)
		}
		copy(t.values[p*cols:(p+1)*cols], row)
	}
	return t, nil
}

// Rows reports the number of patients.
func (t Table) Rows() int { return t.rows }

// Cols reports the number of days.
func (t Table) Cols() int { return t.cols }

// At returns the measurement for patient p on day d.
func (t Table) At(p, d int) float64 {
	return t.values[p*t.cols+d]
}

// Set stores the measurement for patient p on day d.
func (t Table) Set(p, d int, v float64) {
	t.values[p*t.cols+d] = v
}

// Row returns the measurement series of patient p. The slice aliases the
// table's buffer; callers that mutate it mutate the table.
func (t Table) Row(p int) []float64 {
	return t.values[p*t.cols : (p+1)*t.cols]
}

// ToRows copies the table out into per-patient slices.
func (t Table) ToRows() [][]float64 {
	out := make([][]float64, t.rows)
	for p := 0; p < t.rows; p++ {
		row := make([]float64, t.cols)
		copy(row, t.Row(p))
		out[p] = row
	}
	return out
}

// Clone returns a deep copy.
func (t Table) Clone() Table {
	c := Table{values: make([]float64, len(t.values)), rows: t.rows, cols: t.cols}
	copy(c.values, t.values)
	return c
}

// check validates the table abstraction itself: a zero Table is not a
// table, and the buffer must agree with the declared dimensions.
func (t Table) check() error {
	if t.values == nil {
		return ErrNotTable
	}
	if t.rows <= 0 || t.cols <= 0 || len(t.values) != t.rows*t.cols {
		return fmt.Errorf("%w: got %dx%d with %d values", ErrNotMatrix, t.rows, t.cols, len(t.values))
	}
	return nil
}

// reduceDays applies fn to each day's column of per-patient values,
// producing one value per day.
func reduceDays(t Table, fn func([]float64) float64) []float64 {
	out := make([]float64, t.cols)
	col := make([]float64, t.rows)
	for d := 0; d < t.cols; d++ {
		for p := 0; p < t.rows; p++ {
			col[p] = t.values[p*t.cols+d]
		}
		out[d] = fn(col)
	}
	return out
}

// reducePatients applies fn to each patient's row of per-day values,
// producing one value per patient.
func reducePatients(t Table, fn func([]float64) float64) []float64 {
	out := make([]float64, t.rows)
	for p := 0; p < t.rows; p++ {
		out[p] = fn(t.Row(p))
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func maxVal(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minVal(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sumSq float64
	for _, v := range values {
		diff := v - m
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// nanMax returns the largest non-NaN value, or NaN if every value is NaN.
func nanMax(values []float64) float64 {
	m := math.NaN()
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(m) || v > m {
			m = v
		}
	}
	return m
}
