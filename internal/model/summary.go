package model

import "time"

// RunSummary describes one completed harvest run.
type RunSummary struct {
	Source     string
	Pages      int
	Records    int
	FirstDate  string
	LastDate   string
	Duration   time.Duration
	OutputFile string
	Fallback   bool
}
