package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"NepseHarvest/internal/fallback"
	"NepseHarvest/internal/fetcher"
	"NepseHarvest/internal/harvest"
	"NepseHarvest/internal/model"
	"NepseHarvest/internal/state"
)

type captureRecorder struct {
	runs []*model.RunSummary
}

func (c *captureRecorder) RecordRun(s *model.RunSummary) error {
	c.runs = append(c.runs, s)
	return nil
}
func (c *captureRecorder) Close() error { return nil }

type staticGetter struct {
	body []byte
	err  error
}

func (g *staticGetter) Get(string, int) ([]byte, error) { return g.body, g.err }

func listingPage(rows int, withNext bool) []byte {
	var b strings.Builder
	b.WriteString("<html><body><table><tr><th>#</th><th>Date</th><th>Index Value</th></tr>")
	now := time.Now()
	for i := 0; i < rows; i++ {
		d := now.AddDate(0, 0, -(i + 1))
		fmt.Fprintf(&b, "<tr><td>%d</td><td>%s</td><td>2,%03d.50</td></tr>", i+1, d.Format("2006/01/02"), 100+i)
	}
	b.WriteString("</table>")
	if withNext {
		b.WriteString(`<a href="#">next</a>`)
	}
	b.WriteString("</body></html>")
	return []byte(b.String())
}

func newRunner(t *testing.T, mock fetcher.Fetcher, getter fallback.Getter) (*Runner, *captureRecorder) {
	t.Helper()
	dir := t.TempDir()
	sm, err := state.NewManager(filepath.Join(dir, "state.json"))
	if err != nil {
		t.Fatalf("state manager: %v", err)
	}
	rec := &captureRecorder{}
	return &Runner{
		Controller: harvest.NewController(mock, 30, 0),
		Probe:      fallback.NewProbe([]string{"https://alt.test"}, getter),
		Recorder:   rec,
		State:      sm,
		OutputDir:  dir,
	}, rec
}

func TestRun_PrimarySourceEndToEnd(t *testing.T) {
	mock := &fetcher.MockFetcher{Pages: map[int][]byte{1: listingPage(10, false)}}
	r, rec := newRunner(t, mock, &staticGetter{err: errors.New("unused")})

	summary, records, err := r.Run(context.Background(), 2, "run")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Records != 10 || len(records) != 10 {
		t.Fatalf("expected 10 records, got summary=%d len=%d", summary.Records, len(records))
	}
	if summary.Fallback {
		t.Error("primary source run must not be marked fallback")
	}
	if filepath.Base(summary.OutputFile) != "run.csv" {
		t.Errorf("expected run.csv, got %s", summary.OutputFile)
	}
	for i := 1; i < len(records); i++ {
		if !records[i-1].Date.Before(records[i].Date) {
			t.Fatalf("artifact rows not ascending at %d", i)
		}
	}
	if len(rec.runs) != 1 || rec.runs[0].Records != 10 {
		t.Errorf("run history not recorded: %+v", rec.runs)
	}
	if s := r.State.GetState(); s.TotalRuns != 1 || s.LastRecords != 10 {
		t.Errorf("state not updated: %+v", s)
	}
}

func TestRun_FallbackWhenPrimaryEmpty(t *testing.T) {
	mock := &fetcher.MockFetcher{Pages: map[int][]byte{
		1: []byte("<html><body><p>maintenance</p></body></html>"),
	}}
	getter := &staticGetter{body: []byte("<html><body>NEPSE index 2481.35 today</body></html>")}
	r, _ := newRunner(t, mock, getter)

	summary, records, err := r.Run(context.Background(), 2, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !summary.Fallback {
		t.Error("expected fallback run")
	}
	if len(records) != 1 || records[0].Close != 2481.35 {
		t.Fatalf("expected the single fallback record, got %+v", records)
	}
	if records[0].DateKey() != time.Now().Format(model.DisplayDateFormat) {
		t.Errorf("fallback record must be dated today, got %s", records[0].DateKey())
	}
}

func TestRun_AllSourcesEmpty(t *testing.T) {
	mock := &fetcher.MockFetcher{Pages: map[int][]byte{
		1: []byte("<html><body></body></html>"),
	}}
	r, rec := newRunner(t, mock, &staticGetter{err: errors.New("down")})

	_, _, err := r.Run(context.Background(), 2, "")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if len(rec.runs) != 0 {
		t.Error("failed run must not be recorded")
	}
	if s := r.State.GetState(); s.TotalRuns != 0 {
		t.Error("failed run must not update state")
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mock := &fetcher.MockFetcher{Pages: map[int][]byte{1: listingPage(10, false)}}
	r, _ := newRunner(t, mock, &staticGetter{})
	r.Controller = harvest.NewController(mock, 30, time.Second)

	_, _, err := r.Run(ctx, 2, "")
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}
