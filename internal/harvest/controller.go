package harvest

import (
	"bytes"
	"context"
	"log"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"NepseHarvest/internal/extract"
	"NepseHarvest/internal/fetcher"
	"NepseHarvest/internal/model"
	"NepseHarvest/internal/volume"
)

// StopReason is the terminal state of a harvest run. Every reason except
// StopFetchError and StopCancelled is a normal end of harvesting; all of
// them return whatever was accumulated.
type StopReason int

const (
	StopBoundary StopReason = iota
	StopNoData
	StopNoNextLink
	StopPageLimit
	StopFetchError
	StopCancelled
)

func (r StopReason) String() string {
	switch r {
	case StopBoundary:
		return "boundary"
	case StopNoData:
		return "no-data"
	case StopNoNextLink:
		return "no-next-link"
	case StopPageLimit:
		return "page-limit"
	case StopFetchError:
		return "fetch-error"
	case StopCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Result is what one run produced.
type Result struct {
	Records []model.Record
	Pages   int
	Reason  StopReason
}

// Controller drives the paginated harvest loop: fetch, extract, filter,
// accumulate, advance. Strictly sequential; page N's boundary decision and
// next-link probe must resolve before page N+1 is requested.
type Controller struct {
	Fetcher   fetcher.Fetcher
	Next      extract.NextDetector
	PageLimit int
	Delay     time.Duration
}

// NewController applies the default next-link detector and safety limits.
func NewController(f fetcher.Fetcher, pageLimit int, delay time.Duration) *Controller {
	if pageLimit <= 0 {
		pageLimit = 30
	}
	return &Controller{
		Fetcher:   f,
		Next:      extract.HasNextLink,
		PageLimit: pageLimit,
		Delay:     delay,
	}
}

// Run harvests up to years·365 days of history. Fetch and structure
// failures end the loop but are never escalated; the caller always gets
// the records accumulated so far.
func (c *Controller) Run(ctx context.Context, years int) *Result {
	session := NewSession(years, time.Now())
	log.Printf("[INFO] harvesting %d year(s) of daily data, cutoff %s", years, session.Cutoff.Format(model.DisplayDateFormat))

	// Burst of one: the first page goes out immediately, every later
	// page waits out the politeness delay.
	limiter := rate.NewLimiter(rate.Every(c.Delay), 1)

	reason := StopPageLimit
	for session.Page <= c.PageLimit {
		if err := limiter.Wait(ctx); err != nil {
			reason = StopCancelled
			break
		}

		log.Printf("[INFO] processing page %d...", session.Page)
		markup, err := c.Fetcher.FetchPage(session.Page)
		if err != nil {
			log.Printf("[ERROR] page %d: %v", session.Page, err)
			reason = StopFetchError
			break
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
		if err != nil {
			log.Printf("[ERROR] page %d: parse markup: %v", session.Page, err)
			reason = StopNoData
			break
		}

		candidates := extract.Candidates(doc)
		if len(candidates) == 0 {
			log.Printf("[WARN] no data rows found on page %d", session.Page)
			reason = StopNoData
			break
		}

		page := c.foldPage(session, candidates)
		page.HasNext = c.Next(doc)
		session.Fold(page.Records)
		if page.ReachedBoundary {
			log.Printf("[INFO] reached cutoff date on page %d", session.Page)
			reason = StopBoundary
			break
		}
		if len(page.Records) == 0 {
			log.Println("[INFO] no more valid records found")
			reason = StopNoData
			break
		}
		log.Printf("[INFO] collected %d records from page %d", len(page.Records), session.Page)

		if !page.HasNext {
			log.Println("[INFO] no next page found")
			reason = StopNoNextLink
			break
		}
		session.Page++
	}
	if reason == StopPageLimit {
		log.Printf("[WARN] page limit (%d) reached, stopping", c.PageLimit)
	}

	pages := session.Page
	if pages > c.PageLimit {
		pages = c.PageLimit
	}
	log.Printf("[INFO] total records collected: %d (%s)", len(session.Records), reason)
	return &Result{Records: session.Records, Pages: pages, Reason: reason}
}

// foldPage walks one page's candidates in document order. Duplicates are
// skipped without touching loop state; the first pre-cutoff date stops the
// whole run, keeping this page's earlier rows.
func (c *Controller) foldPage(session *Session, candidates []extract.Candidate) model.PageResult {
	var page model.PageResult
	for _, cand := range candidates {
		key := cand.Date.Format(model.DisplayDateFormat)
		if session.Seen(key) {
			continue
		}
		if Classify(cand.Date, session.Cutoff) == Stop {
			page.ReachedBoundary = true
			return page
		}
		session.Mark(key)
		page.Records = append(page.Records, model.Record{
			Date:   cand.Date,
			Close:  cand.Close,
			Volume: volume.Estimate(cand.Close, cand.Date),
		})
	}
	return page
}
