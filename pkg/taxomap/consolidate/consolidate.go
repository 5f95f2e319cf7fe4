package consolidate

import (
	"fmt"

	"github.com/cognicore/taxomap/pkg/taxomap/match"
	"github.com/cognicore/taxomap/pkg/taxomap/sheet"
)

// Row is a consolidated group. Topics always has Result.Width elements,
// padded with "".
type Row struct {
	URL     string
	Product string
	Domain  string
	Segment string
	Topics  []string
}

// Unmapped reports whether r carries an UNMAPPED fallback.
func (r Row) Unmapped() bool {
	return r.Domain == match.UnmappedDomain
}

// Filled returns the non-empty leading topics.
func (r Row) Filled() []string {
	for i, t := range r.Topics {
		if t == "" {
			return r.Topics[:i]
		}
	}
	return r.Topics
}

// Result is the rectangular consolidated output.
type Result struct {
	Rows  []Row
	Width int // topic columns; the largest group's topic count
}

type groupKey struct {
	url, product, domain, segment string
}

// Consolidate groups mapped rows in first-seen order, drops topics equal to
// their segment (promotion rows) and drops groups left empty by that. Unmapped
// rows follow the groups unchanged apart from topic padding.
func Consolidate(rows []match.ResultRow) Result {
	var (
		order    []groupKey
		groups   = make(map[groupKey][]string)
		unmapped []match.ResultRow
	)
	for _, r := range rows {
		if r.Unmapped() {
			unmapped = append(unmapped, r)
			continue
		}
		k := groupKey{r.URL, r.Product, r.Domain, r.Segment}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
			groups[k] = nil
		}
		if r.Topic == r.Segment {
			continue
		}
		groups[k] = append(groups[k], r.Topic)
	}

	res := Result{}
	for _, k := range order {
		if n := len(groups[k]); n > res.Width {
			res.Width = n
		}
	}

	for _, k := range order {
		topics := groups[k]
		if len(topics) == 0 {
			continue
		}
		res.Rows = append(res.Rows, Row{
			URL:     k.url,
			Product: k.product,
			Domain:  k.domain,
			Segment: k.segment,
			Topics:  pad(topics, res.Width),
		})
	}
	for _, r := range unmapped {
		res.Rows = append(res.Rows, Row{
			URL:     r.URL,
			Product: r.Product,
			Domain:  r.Domain,
			Segment: r.Segment,
			Topics:  pad(nil, res.Width),
		})
	}
	return res
}

func pad(topics []string, width int) []string {
	out := make([]string, width)
	copy(out, topics)
	return out
}

// Header returns URL, Product, Domain, Segment, Topic 1..Topic width.
func Header(width int) []string {
	header := []string{"URL", "Product", "Domain", "Segment"}
	for i := 1; i <= width; i++ {
		header = append(header, fmt.Sprintf("Topic %d", i))
	}
	return header
}

// Table renders res for a tabular writer.
func Table(res Result) sheet.Table {
	t := sheet.Table{Header: Header(res.Width), Rows: make([][]string, 0, len(res.Rows))}
	for _, r := range res.Rows {
		cells := append([]string{r.URL, r.Product, r.Domain, r.Segment}, r.Topics...)
		t.Rows = append(t.Rows, cells)
	}
	return t
}
