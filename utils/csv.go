package utils

import (
	"encoding/csv"
	"io"
)

// ParseCSV reads every row of r, header included. Leading whitespace in
// fields is dropped; callers skip the header themselves.
func ParseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}
