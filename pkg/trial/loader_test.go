package trial

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inflammetry/platform/pkg/stats"
)

func TestParse(t *testing.T) {
	table, err := Parse(strings.NewReader("0,1,2\n3,4,5\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Rows() != 2 || table.Cols() != 3 {
		t.Fatalf("unexpected shape %dx%d", table.Rows(), table.Cols())
	}
	if table.At(1, 2) != 5 {
		t.Fatalf("unexpected value: %v", table.At(1, 2))
	}
}

func TestParseTrimsWhitespace(t *testing.T) {
	table, err := Parse(strings.NewReader("0, 1.5 ,2\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.At(0, 1) != 1.5 {
		t.Fatalf("unexpected value: %v", table.At(0, 1))
	}
}

func TestParseRejectsRaggedRows(t *testing.T) {
	_, err := Parse(strings.NewReader("0,1,2\n3,4\n"))
	if !errors.Is(err, stats.ErrNotMatrix) {
		t.Fatalf("expected ErrNotMatrix, got %v", err)
	}
}

func TestParseRejectsNonNumeric(t *testing.T) {
	_, err := Parse(strings.NewReader("0,banana,2\n"))
	if !errors.Is(err, stats.ErrNotTable) {
		t.Fatalf("expected ErrNotTable, got %v", err)
	}
}

func TestParseRejectsEmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	if err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trial.csv")
	if err := os.WriteFile(path, []byte("1,2\n3,4\n"), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	table, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Rows() != 2 || table.Cols() != 2 {
		t.Fatalf("unexpected shape %dx%d", table.Rows(), table.Cols())
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
