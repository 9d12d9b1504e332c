package stats

import (
	"errors"
	"testing"
)

func TestFromRowsRejectsRagged(t *testing.T) {
	_, err := FromRows([][]float64{{1, 2, 3}, {4, 5}})
	if !errors.Is(err, ErrNotMatrix) {
		t.Fatalf("expected ErrNotMatrix, got %v", err)
	}
}

func TestFromRowsRejectsEmpty(t *testing.T) {
	if _, err := FromRows(nil); !errors.Is(err, ErrNotTable) {
		t.Fatalf("expected ErrNotTable for nil rows, got %v", err)
	}
	if _, err := FromRows([][]float64{}); !errors.Is(err, ErrNotMatrix) {
		t.Fatalf("expected ErrNotMatrix for zero patients, got %v", err)
	}
	if _, err := FromRows([][]float64{{}}); !errors.Is(err, ErrNotMatrix) {
		t.Fatalf("expected ErrNotMatrix for zero days, got %v", err)
	}
}

func TestFromRowsCopiesInput(t *testing.T) {
	rows := [][]float64{{1, 2}, {3, 4}}
	table, err := FromRows(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows[0][0] = 99
	if table.At(0, 0) != 1 {
		t.Fatal("table aliases caller's rows")
	}
}

func TestToRowsRoundTrip(t *testing.T) {
	table, err := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := table.ToRows()
	if len(rows) != 2 || len(rows[0]) != 3 {
		t.Fatalf("unexpected shape: %d rows", len(rows))
	}
	if rows[1][2] != 6 {
		t.Fatalf("unexpected value: %v", rows[1][2])
	}

	// Mutating the copy must not touch the table.
	rows[1][2] = 0
	if table.At(1, 2) != 6 {
		t.Fatal("ToRows aliases the table buffer")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	table, err := FromRows([][]float64{{1, 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clone := table.Clone()
	clone.Set(0, 0, 42)
	if table.At(0, 0) != 1 {
		t.Fatal("clone shares the table buffer")
	}
}
