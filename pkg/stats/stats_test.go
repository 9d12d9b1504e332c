package stats

import (
	"errors"
	"math"
	"testing"
)

func mustTable(t *testing.T, rows [][]float64) Table {
	t.Helper()
	table, err := FromRows(rows)
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}
	return table
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDailyAggregates(t *testing.T) {
	table := mustTable(t, [][]float64{{1, 2}, {3, 4}, {5, 1}})

	means := DailyMean(table)
	if len(means) != 2 || !almostEqual(means[0], 3) || !almostEqual(means[1], 7.0/3.0) {
		t.Fatalf("unexpected daily means: %v", means)
	}

	maxs := DailyMax(table)
	if maxs[0] != 5 || maxs[1] != 4 {
		t.Fatalf("unexpected daily maxima: %v", maxs)
	}

	mins := DailyMin(table)
	if mins[0] != 1 || mins[1] != 1 {
		t.Fatalf("unexpected daily minima: %v", mins)
	}
}

func TestDailyStdOfIdenticalRowsIsZero(t *testing.T) {
	table := mustTable(t, [][]float64{{2, 4, 6}, {2, 4, 6}})
	for d, v := range DailyStd(table) {
		if v != 0 {
			t.Fatalf("expected zero std on day %d, got %v", d, v)
		}
	}
}

func TestDailyOrderingProperty(t *testing.T) {
	table := mustTable(t, [][]float64{
		{0, 1, 5, 3},
		{2, 2, 4, 7},
		{9, 0, 1, 2},
	})

	means := DailyMean(table)
	maxs := DailyMax(table)
	mins := DailyMin(table)
	if len(means) != table.Cols() || len(maxs) != table.Cols() || len(mins) != table.Cols() {
		t.Fatalf("aggregate lengths %d/%d/%d, want %d", len(means), len(maxs), len(mins), table.Cols())
	}
	for d := 0; d < table.Cols(); d++ {
		if mins[d] > means[d] || means[d] > maxs[d] {
			t.Fatalf("day %d: min %v, mean %v, max %v out of order", d, mins[d], means[d], maxs[d])
		}
	}
}

func TestPatientStdDev(t *testing.T) {
	table := mustTable(t, [][]float64{
		{1, 1, 1},
		{0, 2, 4},
	})

	stds := PatientStdDev(table)
	if len(stds) != 2 {
		t.Fatalf("expected 2 patient stds, got %d", len(stds))
	}
	if stds[0] != 0 {
		t.Fatalf("constant series should have zero std, got %v", stds[0])
	}
	// population std of {0,2,4}: mean 2, sqrt((4+0+4)/3)
	if !almostEqual(stds[1], math.Sqrt(8.0/3.0)) {
		t.Fatalf("unexpected std for patient 1: %v", stds[1])
	}
	for p, v := range stds {
		if v < 0 {
			t.Fatalf("negative std for patient %d: %v", p, v)
		}
	}
}

func TestPatientNormalise(t *testing.T) {
	table := mustTable(t, [][]float64{{1, 2}, {3, 4}})

	normalised, err := PatientNormalise(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][]float64{{0.5, 1.0}, {0.75, 1.0}}
	for p := range want {
		for d := range want[p] {
			if !almostEqual(normalised.At(p, d), want[p][d]) {
				t.Fatalf("patient %d day %d: got %v, want %v", p, d, normalised.At(p, d), want[p][d])
			}
		}
	}
}

func TestPatientNormaliseRange(t *testing.T) {
	table := mustTable(t, [][]float64{
		{0, 3, 1, 7},
		{5, 5, 5, 5},
		{0.5, 0.25, 1, 0},
	})

	normalised, err := PatientNormalise(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for p := 0; p < normalised.Rows(); p++ {
		for d := 0; d < normalised.Cols(); d++ {
			v := normalised.At(p, d)
			if v < 0 || v > 1 {
				t.Fatalf("patient %d day %d: %v outside [0,1]", p, d, v)
			}
		}
	}
}

func TestPatientNormaliseZeroRow(t *testing.T) {
	table := mustTable(t, [][]float64{{0, 0, 0}, {1, 2, 4}})

	normalised, err := PatientNormalise(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for d := 0; d < 3; d++ {
		v := normalised.At(0, d)
		if v != 0 {
			t.Fatalf("all-zero row should normalise to zeros, day %d is %v", d, v)
		}
		if math.IsNaN(v) {
			t.Fatalf("NaN leaked into output on day %d", d)
		}
	}
}

func TestPatientNormaliseIgnoresNaN(t *testing.T) {
	table := mustTable(t, [][]float64{{1, math.NaN(), 2}})

	normalised, err := PatientNormalise(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(normalised.At(0, 0), 0.5) {
		t.Fatalf("NaN should not affect the row max: got %v", normalised.At(0, 0))
	}
	if normalised.At(0, 1) != 0 {
		t.Fatalf("NaN cell should map to 0, got %v", normalised.At(0, 1))
	}
	if !almostEqual(normalised.At(0, 2), 1.0) {
		t.Fatalf("row max should normalise to 1, got %v", normalised.At(0, 2))
	}
}

func TestPatientNormaliseDoesNotMutateInput(t *testing.T) {
	table := mustTable(t, [][]float64{{1, 2}, {3, 4}})

	if _, err := PatientNormalise(table); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.At(0, 0) != 1 || table.At(1, 1) != 4 {
		t.Fatal("input table was mutated")
	}
}

func TestPatientNormaliseRejectsZeroTable(t *testing.T) {
	_, err := PatientNormalise(Table{})
	if !errors.Is(err, ErrNotTable) {
		t.Fatalf("expected ErrNotTable, got %v", err)
	}
}

func TestPatientNormaliseRejectsNegative(t *testing.T) {
	table := mustTable(t, [][]float64{{1, 2}, {-3, 4}})

	_, err := PatientNormalise(table)
	if !errors.Is(err, ErrNegative) {
		t.Fatalf("expected ErrNegative, got %v", err)
	}
}

func TestDailyAboveThreshold(t *testing.T) {
	table := mustTable(t, [][]float64{{1, 2, 3, 4, 5}})

	count, err := DailyAboveThreshold(0, table, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 days above threshold, got %d", count)
	}
}

func TestDailyAboveThresholdIsStrict(t *testing.T) {
	table := mustTable(t, [][]float64{{2, 3, 1}})

	// Threshold at the row max counts nothing.
	count, err := DailyAboveThreshold(0, table, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("threshold equal to max should count 0 days, got %d", count)
	}

	// Threshold below the row min counts every day.
	count, err = DailyAboveThreshold(0, table, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != table.Cols() {
		t.Fatalf("threshold below min should count all %d days, got %d", table.Cols(), count)
	}
}

func TestDailyAboveThresholdBounds(t *testing.T) {
	table := mustTable(t, [][]float64{{1, 2}})

	if _, err := DailyAboveThreshold(1, table, 0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange for row 1, got %v", err)
	}
	if _, err := DailyAboveThreshold(-1, table, 0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange for row -1, got %v", err)
	}
}
