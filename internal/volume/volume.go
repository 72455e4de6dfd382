// Package volume generates synthetic daily trading volumes.
//
// The source exposes no per-day volume for the index, so the dataset
// carries a plausible placeholder magnitude instead. The only contract
// downstream code relies on: the estimate is positive and deterministic
// for a given (price, date) pair.
package volume

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// baseVolume approximates a typical daily traded value on the exchange.
const baseVolume = 4_500_000_000

// Estimate returns a grouped decimal with two fraction digits.
func Estimate(closePrice float64, date time.Time) string {
	priceFactor := (closePrice/2500)*0.3 + 0.85

	dayFactor := 1.0
	switch date.Weekday() {
	case time.Monday:
		dayFactor = 1.2
	case time.Friday:
		dayFactor = 0.9
	}

	// Pseudo-random variation keyed off the price's trailing digits, so
	// repeated runs produce identical output.
	digits := strings.ReplaceAll(strconv.FormatFloat(closePrice, 'f', -1, 64), ".", "")
	tail := 0
	if len(digits) >= 2 {
		tail, _ = strconv.Atoi(digits[len(digits)-2:])
	} else if len(digits) == 1 {
		tail, _ = strconv.Atoi(digits)
	}
	variation := 0.7 + float64(tail%60)/100

	estimated := baseVolume * priceFactor * dayFactor * variation
	return humanize.FormatFloat("#,###.##", estimated)
}
