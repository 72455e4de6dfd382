package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// minRows is the confidence threshold for the selector cascade: a strategy
// must yield more than this many rows to be trusted.
const minRows = 5

// sourceDateLayout accepts both zero-padded and bare month/day digits.
const sourceDateLayout = "2006/1/2"

var pricePattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// Candidate is one parsed (date, close) pair pulled from a page row.
type Candidate struct {
	Date  time.Time
	Close float64
}

// rowStrategy selects candidate rows from a document. Strategies are tried
// in order from most to least structured so that markup drift on the source
// degrades extraction gracefully instead of breaking it.
type rowStrategy struct {
	name string
	rows func(doc *goquery.Document) *goquery.Selection
}

func tableRows(selector string) func(doc *goquery.Document) *goquery.Selection {
	return func(doc *goquery.Document) *goquery.Selection {
		var found *goquery.Selection
		doc.Find(selector).EachWithBreak(func(_ int, table *goquery.Selection) bool {
			rows := table.Find("tr")
			if rows.Length() > minRows+1 {
				// Drop the header row.
				found = rows.Slice(1, rows.Length())
				return false
			}
			return true
		})
		return found
	}
}

func directRows(selector string) func(doc *goquery.Document) *goquery.Selection {
	return func(doc *goquery.Document) *goquery.Selection {
		rows := doc.Find(selector)
		if rows.Length() > minRows {
			return rows
		}
		return nil
	}
}

var strategies = []rowStrategy{
	{name: "table", rows: tableRows("table")},
	{name: ".table", rows: tableRows(".table")},
	{name: "class*=table", rows: tableRows(`[class*="table"]`)},
	{name: "tbody tr", rows: directRows("tbody tr")},
	{name: "tr", rows: directRows("tr")},
}

// Candidates extracts (date, close) pairs from one page of markup.
//
// Row layout convention on the source: cell 0 is an ordinal, cell 1 the
// date (YYYY/MM/DD), cell 2 the index value. Rows with fewer than three
// cells, empty cells, or unparseable fields are skipped silently; the
// source markup is untrusted and a bad row must never poison the page.
func Candidates(doc *goquery.Document) []Candidate {
	rows := matchRows(doc)
	if rows == nil {
		return nil
	}

	var out []Candidate
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 3 {
			return
		}
		rawDate := strings.TrimSpace(cells.Eq(1).Text())
		rawPrice := strings.TrimSpace(cells.Eq(2).Text())
		if rawDate == "" || rawPrice == "" {
			return
		}

		date, ok := parseSourceDate(rawDate)
		if !ok {
			return
		}
		price, ok := parsePrice(rawPrice)
		if !ok {
			return
		}
		out = append(out, Candidate{Date: date, Close: price})
	})
	return out
}

func matchRows(doc *goquery.Document) *goquery.Selection {
	for _, s := range strategies {
		if rows := s.rows(doc); rows != nil {
			return rows
		}
	}
	return nil
}

func parseSourceDate(text string) (time.Time, bool) {
	if strings.Count(text, "/") != 2 {
		return time.Time{}, false
	}
	t, err := time.Parse(sourceDateLayout, text)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parsePrice(text string) (float64, bool) {
	clean := strings.ReplaceAll(text, ",", "")
	if !pricePattern.MatchString(clean) {
		return 0, false
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
