package stats

import (
	"fmt"
	"math"
)

// DailyMean returns the mean measurement across all patients for each day.
func DailyMean(t Table) []float64 {
	return reduceDays(t, mean)
}

// DailyMax returns the largest measurement across all patients for each day.
func DailyMax(t Table) []float64 {
	return reduceDays(t, maxVal)
}

// DailyMin returns the smallest measurement across all patients for each day.
func DailyMin(t Table) []float64 {
	return reduceDays(t, minVal)
}

// DailyStd returns the population standard deviation across all patients
// for each day.
func DailyStd(t Table) []float64 {
	return reduceDays(t, stdDev)
}

// PatientStdDev returns the population standard deviation of each patient's
// series across days.
func PatientStdDev(t Table) []float64 {
	return reducePatients(t, stdDev)
}

// PatientNormalise scales each patient's series into [0, 1] relative to
// that patient's largest measurement, ignoring NaN entries when finding
// the maximum. NaN results are replaced with 0, then any remaining
// negative value is clamped to 0; an all-zero row therefore maps to an
// all-zero row. The input table is not modified.
//
// It fails with ErrNotTable for a zero Table, ErrNotMatrix for an
// inconsistent one and ErrNegative if any measurement is below zero.
func PatientNormalise(t Table) (Table, error) {
	if err := t.check(); err != nil {
		return Table{}, err
	}
	for i, v := range t.values {
		if v < 0 {
			return Table{}, fmt.Errorf("%w: value %v for patient %d on day %d", ErrNegative, v, i/t.cols, i%t.cols)
		}
	}

	out := t.Clone()
	for p := 0; p < t.rows; p++ {
		rowMax := nanMax(t.Row(p))
		row := out.Row(p)
		for d := range row {
			row[d] /= rowMax
		}
	}

	// NaN replacement must run before the negative clamp: the two passes
	// are not interchangeable under floating-point sign edge cases.
	for i, v := range out.values {
		if math.IsNaN(v) {
			out.values[i] = 0
		}
	}
	for i, v := range out.values {
		if v < 0 {
			out.values[i] = 0
		}
	}
	return out, nil
}

// DailyAboveThreshold counts the days on which the given patient's
// measurement was strictly greater than threshold. It fails with
// ErrOutOfRange if patient is not a valid row index.
func DailyAboveThreshold(patient int, t Table, threshold float64) (int, error) {
	if patient < 0 || patient >= t.rows {
		return 0, fmt.Errorf("%w: patient %d of %d", ErrOutOfRange, patient, t.rows)
	}

	count := 0
	for _, v := range t.Row(patient) {
		if v > threshold {
			count++
		}
	}
	return count, nil
}
