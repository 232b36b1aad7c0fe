package ticker

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// HolderRow is one institutional or mutual fund position.
type HolderRow struct {
	Holder       string
	Shares       int64
	DateReported time.Time
	PctOut       float64
	Value        int64
}

// fetchHolders scrapes the ownership tables. The page renders them as plain
// HTML: the first table is the major-holders breakdown (value/label pairs),
// the next two are institutional and mutual fund positions.
func (t *Ticker) fetchHolders(url string) (Section[[][2]string], Section[[]HolderRow], Section[[]HolderRow]) {
	fail := func(err error) (Section[[][2]string], Section[[]HolderRow], Section[[]HolderRow]) {
		return section[[][2]string](nil, &FieldError{Field: "major holders", Err: err}),
			section[[]HolderRow](nil, &FieldError{Field: "institutional holders", Err: err}),
			section[[]HolderRow](nil, &FieldError{Field: "mutual fund holders", Err: err})
	}

	html, err := t.client.text(url, nil)
	if err != nil {
		return fail(err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fail(&ExtractionError{URL: url, Reason: "parse holders html: " + err.Error()})
	}

	tables := doc.Find("table")
	if tables.Length() == 0 {
		return fail(&ExtractionError{URL: url, Reason: "no holder tables on page"})
	}

	major := section(parseMajorHolders(tables.Eq(0)), nil)

	institutional := section[[]HolderRow](nil, &FieldError{
		Field: "institutional holders",
		Err:   fmt.Errorf("table missing"),
	})
	if tables.Length() > 1 {
		institutional = section(parseHolderTable(tables.Eq(1)), nil)
	}

	mutual := section[[]HolderRow](nil, &FieldError{
		Field: "mutual fund holders",
		Err:   fmt.Errorf("table missing"),
	})
	if tables.Length() > 2 {
		mutual = section(parseHolderTable(tables.Eq(2)), nil)
	}
	return major, institutional, mutual
}

// parseMajorHolders reads the two-cell breakdown rows, e.g.
// ("5.23%", "% of Shares Held by All Insider").
func parseMajorHolders(table *goquery.Selection) [][2]string {
	var rows [][2]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() != 2 {
			return
		}
		rows = append(rows, [2]string{
			strings.TrimSpace(cells.Eq(0).Text()),
			strings.TrimSpace(cells.Eq(1).Text()),
		})
	})
	return rows
}

func parseHolderTable(table *goquery.Selection) []HolderRow {
	var rows []HolderRow
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 5 {
			return
		}
		row := HolderRow{Holder: strings.TrimSpace(cells.Eq(0).Text())}
		row.Shares = parseCount(cells.Eq(1).Text())
		if ts, err := time.Parse("Jan 2, 2006", strings.TrimSpace(cells.Eq(2).Text())); err == nil {
			row.DateReported = ts
		}
		row.PctOut = parsePercent(cells.Eq(3).Text())
		row.Value = parseCount(cells.Eq(4).Text())
		rows = append(rows, row)
	})
	return rows
}

// parseCount reads a comma-grouped integer cell; malformed cells become 0.
func parseCount(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// parsePercent reads a "12.34%" cell into a 0..1 fraction.
func parsePercent(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f / 100
}
