package harvest

import (
	"time"

	"NepseHarvest/internal/model"
)

// Verdict is the boundary filter's decision for one candidate date.
type Verdict int

const (
	Keep Verdict = iota
	Stop
)

// Classify decides whether a candidate date ends the run. Stop fires only
// for dates strictly before the cutoff; the cutoff date itself is kept.
func Classify(candidate, cutoff time.Time) Verdict {
	if candidate.Before(cutoff) {
		return Stop
	}
	return Keep
}

// Session is the mutable accumulator for one harvest run. The pagination
// controller is its exclusive owner; it is discarded when the run returns.
type Session struct {
	Records []model.Record
	Page    int
	Cutoff  time.Time

	seenDates map[string]struct{}
}

// NewSession computes the cutoff once (now − years·365 days) and starts
// the page counter at 1.
func NewSession(years int, now time.Time) *Session {
	return &Session{
		Page:      1,
		Cutoff:    now.AddDate(0, 0, -365*years),
		seenDates: make(map[string]struct{}),
	}
}

// Seen reports whether a date key already contributed a record this run.
func (s *Session) Seen(dateKey string) bool {
	_, ok := s.seenDates[dateKey]
	return ok
}

// Mark registers a date key as consumed.
func (s *Session) Mark(dateKey string) {
	s.seenDates[dateKey] = struct{}{}
}

// Fold appends one page's records to the accumulator.
func (s *Session) Fold(page []model.Record) {
	s.Records = append(s.Records, page...)
}
