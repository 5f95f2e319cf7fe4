package match

import (
	"fmt"
	"strings"

	"github.com/cognicore/taxomap/pkg/taxomap/internalerr"
	"github.com/cognicore/taxomap/pkg/taxomap/sheet"
)

// Input column layout.
const (
	ColumnURL     = "URL"
	keywordColumn = "Keyword %d"

	// MaxKeywords is the number of keyword columns read per input row.
	MaxKeywords = 10
)

// KeywordRecord is one URL with its extracted keywords.
type KeywordRecord struct {
	URL      string
	Keywords []string
}

// NewRecord trims the URL and keywords, drops blank keywords and keeps at
// most MaxKeywords of them.
func NewRecord(url string, keywords []string) KeywordRecord {
	rec := KeywordRecord{URL: strings.TrimSpace(url)}
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		rec.Keywords = append(rec.Keywords, kw)
		if len(rec.Keywords) == MaxKeywords {
			break
		}
	}
	return rec
}

// KeywordColumns returns the header names "Keyword 1".."Keyword 10".
func KeywordColumns() []string {
	cols := make([]string, MaxKeywords)
	for i := range cols {
		cols[i] = fmt.Sprintf(keywordColumn, i+1)
	}
	return cols
}

// RecordsFromTable builds one record per row. The URL column is required;
// absent keyword columns and blank cells are skipped.
func RecordsFromTable(t sheet.Table) ([]KeywordRecord, error) {
	urlCol := t.Column(ColumnURL)
	if urlCol < 0 {
		return nil, fmt.Errorf("%w: input has no %q column", internalerr.ErrInvalidInput, ColumnURL)
	}

	var kwCols []int
	for _, name := range KeywordColumns() {
		if idx := t.Column(name); idx >= 0 {
			kwCols = append(kwCols, idx)
		}
	}

	records := make([]KeywordRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		keywords := make([]string, 0, len(kwCols))
		for _, col := range kwCols {
			keywords = append(keywords, sheet.Cell(row, col))
		}
		records = append(records, NewRecord(sheet.Cell(row, urlCol), keywords))
	}
	return records, nil
}
