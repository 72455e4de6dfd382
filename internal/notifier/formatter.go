package notifier

import (
	"fmt"
	"strings"
	"time"

	"NepseHarvest/internal/model"
)

// FormatRunReport formats a completed harvest run into a Telegram message.
func FormatRunReport(summary *model.RunSummary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>NepseHarvest run</b> | %s\n\n", time.Now().Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Source: %s\n", summary.Source))
	if summary.Fallback {
		b.WriteString("⚠️ Fallback source used (single data point)\n")
	}
	b.WriteString(fmt.Sprintf("Pages fetched: %d\n", summary.Pages))
	b.WriteString(fmt.Sprintf("Records saved: %d\n", summary.Records))
	if summary.FirstDate != "" {
		b.WriteString(fmt.Sprintf("Date range: %s → %s\n", summary.FirstDate, summary.LastDate))
	}
	b.WriteString(fmt.Sprintf("Duration: %s\n", summary.Duration.Round(time.Millisecond)))
	b.WriteString(fmt.Sprintf("Output: %s\n", summary.OutputFile))

	return b.String()
}

// FormatFailureReport formats a run that produced no data at all.
func FormatFailureReport() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("❌ <b>NepseHarvest run failed</b> | %s\n\n", time.Now().Format("2006-01-02")))
	b.WriteString("Failed to collect data from all sources.\n")
	b.WriteString("Check connectivity to the primary and alternate endpoints.\n")
	return b.String()
}
