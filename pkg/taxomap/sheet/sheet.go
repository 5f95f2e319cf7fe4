package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cognicore/taxomap/pkg/taxomap/internalerr"
	"github.com/cognicore/taxomap/pkg/taxomap/textutil"
)

// DefaultSheet is the worksheet name used when writing workbooks.
const DefaultSheet = "Sheet1"

// Table is a header row plus data rows. Rows may be ragged; use Cell to read
// values safely.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the header matching name (case-insensitive),
// or -1.
func (t Table) Column(name string) int {
	name = strings.TrimSpace(name)
	for i, col := range t.Header {
		if strings.EqualFold(col, name) {
			return i
		}
	}
	return -1
}

// Cell returns row[col], or "" when col is negative or past the row end.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// Read loads a table, choosing the format from the file extension.
func Read(path string) (Table, error) {
	var (
		raw [][]string
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		raw, err = readWorkbook(path)
	case ".csv":
		raw, err = readDelimited(path, ',')
	case ".tsv":
		raw, err = readDelimited(path, '\t')
	default:
		return Table{}, fmt.Errorf("%w: unsupported file type %q", internalerr.ErrInvalidInput, ext)
	}
	if err != nil {
		return Table{}, err
	}
	if len(raw) == 0 {
		return Table{}, fmt.Errorf("%w: %s is empty", internalerr.ErrInvalidInput, filepath.Base(path))
	}
	return fromRecords(raw), nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

func readDelimited(path string, comma rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// fromRecords cleans every cell and drops rows that are entirely blank.
func fromRecords(raw [][]string) Table {
	t := Table{Header: cleanRow(raw[0])}
	for _, rec := range raw[1:] {
		row := cleanRow(rec)
		if isBlank(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func cleanRow(rec []string) []string {
	row := make([]string, len(rec))
	for i, cell := range rec {
		row[i] = textutil.CleanCell(cell)
	}
	return row
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// Write stores a table, choosing the format from the file extension.
func Write(path string, t Table) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return writeWorkbook(path, t)
	case ".csv", ".tsv":
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", filepath.Base(path), err)
		}
		comma := ','
		if ext == ".tsv" {
			comma = '\t'
		}
		if err := WriteDelimited(f, t, comma); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	default:
		return fmt.Errorf("%w: unsupported file type %q", internalerr.ErrInvalidInput, ext)
	}
}

// WriteDelimited writes t as CSV (or TSV with comma '\t') to w.
func WriteDelimited(w io.Writer, t Table, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

func writeWorkbook(path string, t Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := setRow(f, 1, t.Header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	return nil
}

func setRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(DefaultSheet, cell, &row); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}
