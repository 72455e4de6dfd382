// Package dataset persists the final harvest artifact: a CSV with the
// fixed columns Date,Close,Volume, sorted ascending by date with unique
// dates. Downstream analysis consumes exactly this shape.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"NepseHarvest/internal/model"
)

// ErrNoRecords is returned when there is nothing to persist.
var ErrNoRecords = errors.New("no records to save")

var header = []string{"Date", "Close", "Volume"}

// DefaultFilename builds the auto-generated output name for a run date.
func DefaultFilename(now time.Time) string {
	return fmt.Sprintf("nepse_daily_%s.csv", now.Format("20060102"))
}

// NormalizeFilename enforces the .csv suffix, generating a default name
// when none was given.
func NormalizeFilename(name string, now time.Time) string {
	if name == "" {
		return DefaultFilename(now)
	}
	if !strings.HasSuffix(name, ".csv") {
		name += ".csv"
	}
	return name
}

// Dedup drops records whose date was already seen, keeping the first
// occurrence in input order.
func Dedup(records []model.Record) []model.Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		key := r.DateKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Write deduplicates, sorts ascending by date, and serializes to path.
// Order matters: dedup first so "first occurrence wins" is judged by
// arrival order, not by date order.
func Write(records []model.Record, path string) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	unique := Dedup(records)
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Date.Before(unique[j].Date)
	})

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range unique {
		row := []string{
			r.DateKey(),
			strconv.FormatFloat(r.Close, 'f', -1, 64),
			r.Volume,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", r.DateKey(), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// Load reads a previously written dataset back. Used for the post-write
// summary and by round-trip checks.
func Load(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}
	if len(rows[0]) != 3 || rows[0][0] != "Date" || rows[0][1] != "Close" || rows[0][2] != "Volume" {
		return nil, fmt.Errorf("%s: unexpected header %v", path, rows[0])
	}

	records := make([]model.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		date, err := time.Parse(model.DisplayDateFormat, row[0])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad date %q: %w", path, i+2, row[0], err)
		}
		closePrice, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad close %q: %w", path, i+2, row[1], err)
		}
		records = append(records, model.Record{Date: date, Close: closePrice, Volume: row[2]})
	}
	return records, nil
}
