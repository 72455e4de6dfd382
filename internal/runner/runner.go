// Package runner wires the harvest pipeline end to end: paginated
// harvest, fallback probe, dataset write, run bookkeeping.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"NepseHarvest/internal/dataset"
	"NepseHarvest/internal/fallback"
	"NepseHarvest/internal/harvest"
	"NepseHarvest/internal/model"
	"NepseHarvest/internal/recorder"
	"NepseHarvest/internal/state"
)

// ErrNoData means every source, primary and alternate, came back empty.
var ErrNoData = errors.New("failed to collect data from all sources")

// ErrCancelled means the run was interrupted before completion; nothing
// was written.
var ErrCancelled = errors.New("harvest cancelled")

// Runner executes one full harvest-and-persist cycle.
type Runner struct {
	Controller *harvest.Controller
	Probe      *fallback.Probe
	Recorder   recorder.Recorder
	State      *state.Manager
	OutputDir  string
}

// Run harvests the given window and persists the dataset. filename may be
// empty, in which case the dated default name is used. The returned
// records are the final artifact's contents, sorted and deduplicated.
func (r *Runner) Run(ctx context.Context, years int, filename string) (*model.RunSummary, []model.Record, error) {
	start := time.Now()

	result := r.Controller.Run(ctx, years)
	if result.Reason == harvest.StopCancelled {
		return nil, nil, ErrCancelled
	}

	records := result.Records
	source := r.Controller.Fetcher.Name()
	usedFallback := false
	if len(records) == 0 {
		log.Println("[WARN] main source produced no records, trying alternatives...")
		records = r.Probe.Run(start)
		usedFallback = true
		source = "fallback"
	}
	if len(records) == 0 {
		return nil, nil, ErrNoData
	}

	path := dataset.NormalizeFilename(filename, start)
	if r.OutputDir != "" {
		if err := os.MkdirAll(r.OutputDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("create output dir: %w", err)
		}
		path = filepath.Join(r.OutputDir, path)
	}

	if err := dataset.Write(records, path); err != nil {
		return nil, nil, err
	}

	// Read the artifact back; the summary must describe what was actually
	// persisted, not the pre-sort accumulator.
	final, err := dataset.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("verify written dataset: %w", err)
	}
	log.Printf("[INFO] removed %d duplicate records", len(records)-len(final))

	summary := &model.RunSummary{
		Source:     source,
		Pages:      result.Pages,
		Records:    len(final),
		FirstDate:  final[0].DateKey(),
		LastDate:   final[len(final)-1].DateKey(),
		Duration:   time.Since(start),
		OutputFile: path,
		Fallback:   usedFallback,
	}

	if r.Recorder != nil {
		if err := r.Recorder.RecordRun(summary); err != nil {
			log.Printf("[WARN] record run history: %v", err)
		}
	}
	if r.State != nil {
		if err := r.State.RecordRun(path, len(final), start); err != nil {
			log.Printf("[WARN] save harvest state: %v", err)
		}
	}

	return summary, final, nil
}
