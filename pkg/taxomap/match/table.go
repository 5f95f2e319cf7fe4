package match

import (
	"strconv"

	"github.com/cognicore/taxomap/pkg/taxomap/sheet"
)

// Header of the row-per-match output.
var Header = []string{"URL", "Product", "Domain", "Segment", "Topic"}

// Table renders rows for a tabular writer. withDiagnostics appends the
// Score and Keyword columns.
func Table(rows []ResultRow, withDiagnostics bool) sheet.Table {
	header := append([]string(nil), Header...)
	if withDiagnostics {
		header = append(header, "Score", "Keyword")
	}
	t := sheet.Table{Header: header, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		cells := []string{r.URL, r.Product, r.Domain, r.Segment, r.Topic}
		if withDiagnostics {
			score := ""
			if !r.Unmapped() {
				score = strconv.Itoa(r.Score)
			}
			cells = append(cells, score, r.Keyword)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}
