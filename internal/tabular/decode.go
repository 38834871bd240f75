package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ReadFile decodes the spreadsheet at path.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return Decode(filepath.Base(path), f)
}

// Decode reads a spreadsheet from r, choosing the decoder from the file name
// extension: .xlsx/.xlsm (Office Open XML), .xls (BIFF) or .csv/.txt.
func Decode(name string, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	var records [][]string
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		records, err = decodeXLSX(data)
	case ".xls":
		records, err = decodeXLS(data)
	case ".csv", ".txt":
		records, err = decodeCSV(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}

	return FromRecords(name, records)
}

// decodeXLSX reads the first sheet. Raw cell values are requested so dates
// arrive as serial day numbers instead of locale-formatted strings.
func decodeXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

func decodeXLS(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(workbook.GetSheets()) == 0 {
		return nil, ErrNoSheets
	}
	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, err
	}

	var records [][]string
	for _, row := range sheet.GetRows() {
		var values []string
		for _, cell := range row.GetCols() {
			values = append(values, cell.GetString())
		}
		records = append(records, values)
	}
	return records, nil
}

// decodeCSV accepts comma or semicolon separated files. Files that are not
// valid UTF-8 are assumed to be Windows-1254, the code page Turkish Excel
// uses for CSV exports.
func decodeCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		src = transform.NewReader(src, charmap.Windows1254.NewDecoder())
	}

	r := csv.NewReader(src)
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}
