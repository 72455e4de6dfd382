package harvest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"NepseHarvest/internal/fetcher"
	"NepseHarvest/internal/model"
)

// buildPage renders a listing page with one row per date, newest first,
// in the source's columnar convention.
func buildPage(dates []time.Time, withNext bool) []byte {
	var b strings.Builder
	b.WriteString("<html><body><table><tr><th>#</th><th>Date</th><th>Index Value</th></tr>")
	for i, d := range dates {
		fmt.Fprintf(&b, "<tr><td>%d</td><td>%s</td><td>2,%03d.50</td></tr>",
			i+1, d.Format("2006/01/02"), 100+i)
	}
	b.WriteString("</table>")
	if withNext {
		b.WriteString(`<a href="?page=2">Next</a>`)
	}
	b.WriteString("</body></html>")
	return []byte(b.String())
}

// daysAgo builds n consecutive dates starting `start` days back from now.
func daysAgo(start, n int) []time.Time {
	now := time.Now()
	dates := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, now.AddDate(0, 0, -(start + i)))
	}
	return dates
}

func newTestController(f fetcher.Fetcher) *Controller {
	c := NewController(f, 30, 0)
	return c
}

func TestRun_MultiPageWithNextLink(t *testing.T) {
	mock := &fetcher.MockFetcher{Pages: map[int][]byte{
		1: buildPage(daysAgo(1, 10), true),
		2: buildPage(daysAgo(11, 10), false),
	}}
	res := newTestController(mock).Run(context.Background(), 2)

	if res.Reason != StopNoNextLink {
		t.Fatalf("expected no-next-link stop, got %v", res.Reason)
	}
	if len(res.Records) != 20 {
		t.Fatalf("expected 20 records, got %d", len(res.Records))
	}
	if len(mock.Calls) != 2 || mock.Calls[0] != 1 || mock.Calls[1] != 2 {
		t.Errorf("expected pages 1 then 2 fetched, got %v", mock.Calls)
	}
	if res.Pages != 2 {
		t.Errorf("expected 2 pages, got %d", res.Pages)
	}
}

func TestRun_BoundaryStopMidPage(t *testing.T) {
	// Page 3: six recent rows, then a pre-cutoff row at position 7.
	page3 := append(daysAgo(21, 6), daysAgo(3*365+10, 4)...)
	mock := &fetcher.MockFetcher{Pages: map[int][]byte{
		1: buildPage(daysAgo(1, 10), true),
		2: buildPage(daysAgo(11, 10), true),
		3: buildPage(page3, true),
	}}
	res := newTestController(mock).Run(context.Background(), 2)

	if res.Reason != StopBoundary {
		t.Fatalf("expected boundary stop, got %v", res.Reason)
	}
	if len(res.Records) != 26 {
		t.Fatalf("expected 10+10+6 records, got %d", len(res.Records))
	}
	if len(mock.Calls) != 3 {
		t.Errorf("no page beyond the boundary page may be fetched, got %v", mock.Calls)
	}
	// Last accepted record is page 3's sixth row.
	last := res.Records[len(res.Records)-1]
	wantKey := time.Now().AddDate(0, 0, -26).Format(model.DisplayDateFormat)
	if last.DateKey() != wantKey {
		t.Errorf("expected last record %s, got %s", wantKey, last.DateKey())
	}
}

func TestRun_FetchErrorReturnsAccumulated(t *testing.T) {
	mock := &fetcher.MockFetcher{
		Pages: map[int][]byte{
			1: buildPage(daysAgo(1, 10), true),
		},
		ErrAtPage: 2,
	}
	res := newTestController(mock).Run(context.Background(), 2)

	if res.Reason != StopFetchError {
		t.Fatalf("expected fetch-error stop, got %v", res.Reason)
	}
	if len(res.Records) != 10 {
		t.Fatalf("fetch failure must keep earlier pages, got %d records", len(res.Records))
	}
}

func TestRun_FirstPageFetchError(t *testing.T) {
	mock := &fetcher.MockFetcher{ErrAtPage: 1, Pages: map[int][]byte{}}
	res := newTestController(mock).Run(context.Background(), 2)

	if res.Reason != StopFetchError {
		t.Fatalf("expected fetch-error stop, got %v", res.Reason)
	}
	if len(res.Records) != 0 {
		t.Fatalf("expected no records, got %d", len(res.Records))
	}
}

func TestRun_NoDataStop(t *testing.T) {
	mock := &fetcher.MockFetcher{Pages: map[int][]byte{
		1: []byte("<html><body><p>under maintenance</p></body></html>"),
	}}
	res := newTestController(mock).Run(context.Background(), 2)

	if res.Reason != StopNoData {
		t.Fatalf("expected no-data stop, got %v", res.Reason)
	}
	if len(res.Records) != 0 {
		t.Fatalf("expected no records, got %d", len(res.Records))
	}
}

func TestRun_PageLimitStop(t *testing.T) {
	// Every page repeats the same dates and always advertises a next page:
	// the circuit breaker must cut the loop.
	pages := make(map[int][]byte)
	for i := 1; i <= 10; i++ {
		pages[i] = buildPage(daysAgo(1, 10), true)
	}
	mock := &fetcher.MockFetcher{Pages: pages}
	c := NewController(mock, 4, 0)
	res := c.Run(context.Background(), 2)

	if res.Reason != StopPageLimit {
		t.Fatalf("expected page-limit stop, got %v", res.Reason)
	}
	if len(mock.Calls) != 4 {
		t.Errorf("expected 4 fetches, got %d", len(mock.Calls))
	}
	// Repeated dates after page 1 are in-run duplicates.
	if len(res.Records) != 10 {
		t.Errorf("expected 10 unique records, got %d", len(res.Records))
	}
}

func TestRun_InRunDedupAcrossPages(t *testing.T) {
	// Page 2 re-serves page 1's rows plus fresh ones (overlapping re-fetch).
	overlap := append(daysAgo(1, 10), daysAgo(11, 10)...)
	mock := &fetcher.MockFetcher{Pages: map[int][]byte{
		1: buildPage(daysAgo(1, 10), true),
		2: buildPage(overlap, false),
	}}
	res := newTestController(mock).Run(context.Background(), 2)

	if len(res.Records) != 20 {
		t.Fatalf("expected 20 unique records, got %d", len(res.Records))
	}
	seen := make(map[string]bool)
	for _, r := range res.Records {
		if seen[r.DateKey()] {
			t.Fatalf("duplicate date in accumulator: %s", r.DateKey())
		}
		seen[r.DateKey()] = true
	}
}

func TestRun_AllDuplicatePageStopsRun(t *testing.T) {
	same := buildPage(daysAgo(1, 10), true)
	mock := &fetcher.MockFetcher{Pages: map[int][]byte{1: same, 2: same, 3: same}}
	res := newTestController(mock).Run(context.Background(), 2)

	// Page 2 contributes nothing new, which reads as the source running
	// out of content.
	if res.Reason != StopNoData {
		t.Fatalf("expected no-data stop, got %v", res.Reason)
	}
	if len(res.Records) != 10 {
		t.Fatalf("expected 10 records, got %d", len(res.Records))
	}
	if len(mock.Calls) != 2 {
		t.Errorf("expected fetching to stop after page 2, got %v", mock.Calls)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mock := &fetcher.MockFetcher{Pages: map[int][]byte{1: buildPage(daysAgo(1, 10), false)}}
	c := NewController(mock, 30, time.Second)
	res := c.Run(ctx, 2)

	if res.Reason != StopCancelled {
		t.Fatalf("expected cancelled stop, got %v", res.Reason)
	}
}

func TestRun_RecordsCarrySyntheticVolume(t *testing.T) {
	mock := &fetcher.MockFetcher{Pages: map[int][]byte{1: buildPage(daysAgo(1, 10), false)}}
	res := newTestController(mock).Run(context.Background(), 2)

	if len(res.Records) == 0 {
		t.Fatal("expected records")
	}
	for _, r := range res.Records {
		if r.Volume == "" {
			t.Fatalf("record %s has no volume", r.DateKey())
		}
		if r.Close <= 0 {
			t.Fatalf("record %s has non-positive close %v", r.DateKey(), r.Close)
		}
	}
}
