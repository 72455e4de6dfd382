package dataset

import (
	"fmt"
	"strings"

	"NepseHarvest/internal/model"
)

// FormatSummary renders the end-of-run report printed after a successful
// write: record count, date range, and head/tail previews.
func FormatSummary(records []model.Record, path string) string {
	if len(records) == 0 {
		return "no records"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Successfully saved %d unique records to %s\n", len(records), path)
	fmt.Fprintf(&b, "Date range: %s to %s\n", records[0].DateKey(), records[len(records)-1].DateKey())

	b.WriteString("\nFirst few records:\n")
	writePreview(&b, records[:min(3, len(records))])

	b.WriteString("\nLast few records (latest dates):\n")
	tail := records
	if len(tail) > 3 {
		tail = tail[len(tail)-3:]
	}
	writePreview(&b, tail)

	return b.String()
}

func writePreview(b *strings.Builder, records []model.Record) {
	fmt.Fprintf(b, "  %-12s %-12s %s\n", "Date", "Close", "Volume")
	for _, r := range records {
		fmt.Fprintf(b, "  %-12s %-12.2f %s\n", r.DateKey(), r.Close, r.Volume)
	}
}
