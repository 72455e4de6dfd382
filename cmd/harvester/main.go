package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"NepseHarvest/internal/config"
	"NepseHarvest/internal/dataset"
	"NepseHarvest/internal/fallback"
	"NepseHarvest/internal/fetcher"
	"NepseHarvest/internal/harvest"
	"NepseHarvest/internal/notifier"
	"NepseHarvest/internal/recorder"
	"NepseHarvest/internal/runner"
	"NepseHarvest/internal/scheduler"
	"NepseHarvest/internal/state"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] NepseHarvest starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetchers: the primary paginated source and the shorter-timeout
	// client shared by the fallback sources.
	primary := fetcher.NewHTTPFetcher(cfg.Source.BaseURL, cfg.Source.UserAgent, cfg.Proxy, cfg.Harvest.Timeout.Duration)
	altClient := fetcher.NewHTTPFetcher("", cfg.Source.UserAgent, cfg.Proxy, cfg.Fallback.Timeout.Duration)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init state manager
	sm, err := state.NewManager(cfg.StateFile)
	if err != nil {
		log.Fatalf("[FATAL] init state manager: %v", err)
	}
	if prev := sm.GetState(); !prev.LastRunAt.IsZero() {
		log.Printf("[INFO] previous run: %s (%d records, %s)",
			prev.LastRunAt.Format("2006-01-02 15:04"), prev.LastRecords, prev.LastOutput)
	}

	run := &runner.Runner{
		Controller: harvest.NewController(primary, cfg.Harvest.PageLimit, cfg.Harvest.PolitenessDelay.Duration),
		Probe:      fallback.NewProbe(cfg.Source.AlternateURLs, altClient),
		Recorder:   rec,
		State:      sm,
		OutputDir:  cfg.Output.Directory,
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if cfg.Schedule.Cron != "" {
		runScheduled(ctx, cancel, sigCh, cfg, run, sm)
		return
	}

	go func() {
		<-sigCh
		log.Println("[INFO] interrupt received, aborting run")
		cancel()
	}()

	runInteractive(ctx, cfg, run)
}

// runScheduled keeps the process alive and harvests on the configured cron.
func runScheduled(ctx context.Context, cancel context.CancelFunc, sigCh chan os.Signal, cfg *config.Config, run *runner.Runner, sm *state.Manager) {
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	sched := scheduler.NewScheduler(ctx, run, tn, sm, cfg.Harvest.Years)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing harvest now")
		go sched.RunNow()
	}

	log.Printf("[INFO] NepseHarvest is running on schedule %q. Press Ctrl+C to stop.", cfg.Schedule.Cron)
	<-sigCh
	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] NepseHarvest stopped")
}

// runInteractive prompts for the window and output name, then runs once.
func runInteractive(ctx context.Context, cfg *config.Config, run *runner.Runner) {
	fmt.Println("NEPSE Daily Closing Price & Volume Harvester")
	fmt.Println("============================================")

	reader := bufio.NewReader(os.Stdin)

	years := cfg.Harvest.Years
	fmt.Printf("Enter number of years to harvest (default: %d): ", years)
	if line, err := reader.ReadString('\n'); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(line)); err == nil && n > 0 {
			years = n
		}
	}

	fmt.Print("Enter output filename (default: auto-generated): ")
	filename := ""
	if line, err := reader.ReadString('\n'); err == nil {
		filename = strings.TrimSpace(line)
	}

	fmt.Printf("\nStarting NEPSE daily data collection for last %d year(s)...\n", years)
	fmt.Println("Format: Date,Close,Volume (latest date at bottom)")
	fmt.Println()

	summary, records, err := run.Run(ctx, years, filename)
	if err != nil {
		if errors.Is(err, runner.ErrCancelled) {
			fmt.Println("\nHarvest stopped by user")
			return
		}
		log.Printf("[ERROR] %v", err)
		fmt.Println("\nFailed to collect data from all sources")
		fmt.Println("Please check your internet connection and try again")
		os.Exit(1)
	}

	fmt.Println()
	fmt.Print(dataset.FormatSummary(records, summary.OutputFile))
}
