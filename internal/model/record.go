package model

import "time"

// SourceDateFormat is the date layout emitted by the index listing page.
const SourceDateFormat = "2006/01/02"

// DisplayDateFormat is the date layout used in the persisted dataset.
const DisplayDateFormat = "01/02/2006"

// Record is one daily index observation.
type Record struct {
	Date   time.Time // day precision, no time-of-day
	Close  float64   // > 0
	Volume string    // grouped decimal with two fraction digits, > 0
}

// DateKey returns the record's date formatted for display and dedup keying.
func (r Record) DateKey() string {
	return r.Date.Format(DisplayDateFormat)
}

// PageResult holds what one pagination iteration produced. It is folded
// into the harvest session and discarded.
type PageResult struct {
	Records         []Record
	ReachedBoundary bool
	HasNext         bool
}
