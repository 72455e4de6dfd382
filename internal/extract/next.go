package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NextDetector decides whether a page offers a way to the next page.
// The real pagination mechanism of the source is unconfirmed, so detection
// is pluggable rather than baked into the harvest loop.
type NextDetector func(doc *goquery.Document) bool

// HasNextLink is the default detector: any anchor whose text mentions
// "next" (case-insensitive) or is a bare ">" arrow.
func HasNextLink(doc *goquery.Document) bool {
	found := false
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := strings.TrimSpace(a.Text())
		if text == ">" || text == "»" || strings.Contains(strings.ToLower(text), "next") {
			found = true
			return false
		}
		return true
	})
	return found
}
