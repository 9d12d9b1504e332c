// Package trial loads inflammation trial data from delimited text: one
// patient per line, one comma-separated measurement per day.
package trial

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/inflammetry/platform/pkg/stats"
)

// LoadCSV reads a trial data file into a measurement table.
func LoadCSV(path string) (stats.Table, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return stats.Table{}, fmt.Errorf("opening trial data: %w", err)
	}
	defer f.Close()

	table, err := Parse(f)
	if err != nil {
		return stats.Table{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return table, nil
}

// Parse reads comma-separated measurement rows. Every line must carry the
// same number of values; ragged input fails with stats.ErrNotMatrix and a
// non-numeric cell fails with stats.ErrNotTable.
func Parse(r io.Reader) (stats.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Rectangularity is checked against stats.FromRows, not the csv
	// package, so the error kind matches the rest of the platform.
	reader.FieldsPerRecord = -1

	var rows [][]float64
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats.Table{}, fmt.Errorf("%w: line %d: %v", stats.ErrNotTable, line+1, err)
		}
		line++

		row := make([]float64, 0, len(record))
		for col, field := range record {
			value, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return stats.Table{}, fmt.Errorf("%w: line %d column %d: %q is not a number", stats.ErrNotTable, line, col+1, field)
			}
			row = append(row, value)
		}
		rows = append(rows, row)
	}

	return stats.FromRows(rows)
}
