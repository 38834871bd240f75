// Package tabular decodes uploaded spreadsheet files into a header row plus
// data rows. It performs no interpretation of the cells.
package tabular

import (
	"errors"
	"strings"
)

// Decoding errors.
var (
	ErrNoHeader          = errors.New("file has no header row")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoSheets          = errors.New("workbook has no sheets")
)

// Table is the decoded content of one uploaded file.
type Table struct {
	Source  string
	Headers []string
	Rows    []Row
}

// Row is one spreadsheet line below the header.
// Line is the 1-based line number as the operator sees it in the sheet.
type Row struct {
	Values []string
	Line   int
}

// IsBlank reports whether every cell of the row is empty after trimming.
func (r Row) IsBlank() bool {
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Value returns the trimmed cell at index i, or "" if the row is shorter.
func (r Row) Value(i int) string {
	if i < 0 || i >= len(r.Values) {
		return ""
	}
	return strings.TrimSpace(r.Values[i])
}

// FromRecords builds a Table from raw records. The first record with any
// non-empty cell is the header; blank records before it are ignored and
// blank records after it are kept so callers can count them.
func FromRecords(source string, records [][]string) (*Table, error) {
	headerIdx := -1
	for i, rec := range records {
		if !(Row{Values: rec}).IsBlank() {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrNoHeader
	}

	headers := make([]string, len(records[headerIdx]))
	for i, h := range records[headerIdx] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	table := &Table{
		Source:  source,
		Headers: headers,
		Rows:    make([]Row, 0, len(records)-headerIdx-1),
	}
	for i := headerIdx + 1; i < len(records); i++ {
		table.Rows = append(table.Rows, Row{
			Line:   i + 1,
			Values: records[i],
		})
	}
	return table, nil
}
