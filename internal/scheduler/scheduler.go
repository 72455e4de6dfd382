package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"NepseHarvest/internal/notifier"
	"NepseHarvest/internal/runner"
	"NepseHarvest/internal/state"
)

// Scheduler runs unattended harvests on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   *runner.Runner
	Notifier *notifier.TelegramNotifier
	State    *state.Manager
	Years    int
	Ctx      context.Context
}

// NewScheduler creates a Scheduler. The notifier may be nil.
func NewScheduler(ctx context.Context, r *runner.Runner, tn *notifier.TelegramNotifier, sm *state.Manager, years int) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   r,
		Notifier: tn,
		State:    sm,
		Years:    years,
		Ctx:      ctx,
	}
}

// Register adds the harvest task under the given cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.harvestTask); err != nil {
		return fmt.Errorf("register harvest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the harvest task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.harvestTask()
}

func (s *Scheduler) harvestTask() {
	if s.State != nil && s.State.RanToday(timeNow()) {
		log.Println("[INFO] harvest already completed today, skipping scheduled run")
		return
	}

	summary, _, err := s.Runner.Run(s.Ctx, s.Years, "")
	if err != nil {
		if errors.Is(err, runner.ErrCancelled) {
			return
		}
		log.Printf("[ERROR] scheduled harvest: %v", err)
		s.notify(notifier.FormatFailureReport())
		return
	}

	log.Printf("[INFO] scheduled harvest saved %d records to %s", summary.Records, summary.OutputFile)
	s.notify(notifier.FormatRunReport(summary))
}

func (s *Scheduler) notify(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
