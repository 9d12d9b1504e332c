package report

import (
	"errors"
	"math"
	"testing"

	"github.com/inflammetry/platform/pkg/stats"
)

func TestCompute(t *testing.T) {
	table, err := stats.FromRows([][]float64{
		{0, 2, 3, 4, 5},
		{1, 1, 1, 1, 1},
	})
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}

	rep, err := Compute(table, 1.0, DefaultProtocol())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rep.Patients != 2 || rep.Days != 5 {
		t.Fatalf("unexpected shape: %d patients, %d days", rep.Patients, rep.Days)
	}
	if len(rep.DailyMean) != 5 || len(rep.PatientStdDev) != 2 {
		t.Fatalf("unexpected series lengths: %d daily, %d per-patient", len(rep.DailyMean), len(rep.PatientStdDev))
	}

	// Patient 0 exceeds threshold 1.0 on days with 2,3,4,5.
	if rep.DaysAbove[0] != 4 {
		t.Fatalf("expected 4 days above threshold, got %d", rep.DaysAbove[0])
	}
	if rep.DaysAbove[1] != 0 {
		t.Fatalf("expected 0 days above threshold, got %d", rep.DaysAbove[1])
	}
	if rep.Severity[0] != "elevated" || rep.Severity[1] != "normal" {
		t.Fatalf("unexpected severities: %v", rep.Severity)
	}

	for p, row := range rep.Normalised {
		for d, v := range row {
			if v < 0 || v > 1 || math.IsNaN(v) {
				t.Fatalf("normalised value out of range at %d,%d: %v", p, d, v)
			}
		}
	}
}

func TestComputeRejectsNegativeValues(t *testing.T) {
	table, err := stats.FromRows([][]float64{{1, -2}})
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}

	if _, err := Compute(table, 1.0, DefaultProtocol()); !errors.Is(err, stats.ErrNegative) {
		t.Fatalf("expected ErrNegative, got %v", err)
	}
}

func TestComputeUsesGivenThreshold(t *testing.T) {
	table, err := stats.FromRows([][]float64{{1, 2, 3, 4, 5}})
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}

	rep, err := Compute(table, 3.0, DefaultProtocol())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.DaysAbove[0] != 2 {
		t.Fatalf("expected 2 days above 3.0, got %d", rep.DaysAbove[0])
	}
	if rep.Threshold != 3.0 {
		t.Fatalf("expected threshold 3.0 in report, got %v", rep.Threshold)
	}
}

func TestReportSummaryRoundTrip(t *testing.T) {
	table, err := stats.FromRows([][]float64{{1, 2}, {3, 4}})
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}

	rep, err := Compute(table, 1.0, DefaultProtocol())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rep.ID = "a-1"
	rep.StudyID = "study-9"

	summary, err := toJSONMap(rep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded, err := fromJSONMap(summary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.ID != "a-1" || decoded.StudyID != "study-9" {
		t.Fatalf("identity lost in round trip: %+v", decoded)
	}
	if decoded.Patients != 2 || decoded.Days != 2 {
		t.Fatalf("shape lost in round trip: %+v", decoded)
	}
	if len(decoded.DailyMean) != 2 || decoded.DailyMean[0] != rep.DailyMean[0] {
		t.Fatalf("daily means lost in round trip: %v", decoded.DailyMean)
	}
}
