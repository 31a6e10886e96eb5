package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jordanlanch/adcreativelab/pkg/adlifecycle"
	"github.com/jordanlanch/adcreativelab/pkg/analytics"
	"github.com/jordanlanch/adcreativelab/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule runs the expiry sweep once a minute.
const DefaultSweepSchedule = "@every 1m"

// StatsSchedule logs the daily pipeline summary at 4 AM.
const StatsSchedule = "0 4 * * *"

// Sweeper is the expiry sweep the scheduler drives.
type Sweeper interface {
	Sweep(ctx context.Context) (adlifecycle.SweepResult, error)
}

// StatsSource provides the numbers for the daily summary.
type StatsSource interface {
	Stats(ctx context.Context) (*analytics.Stats, error)
}

// CronManager manages scheduled jobs
type CronManager struct {
	cron    *cron.Cron
	sweeper Sweeper
	stats   StatsSource
	logger  logger.Logger
}

// NewCronManager creates a new cron manager. stats may be nil.
func NewCronManager(sweeper Sweeper, stats StatsSource, log logger.Logger) *CronManager {
	if log == nil {
		log = logger.Default()
	}

	return &CronManager{
		cron:    cron.New(),
		sweeper: sweeper,
		stats:   stats,
		logger:  log.With("component", "cron"),
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs(sweepSchedule string) error {
	if sweepSchedule == "" {
		sweepSchedule = DefaultSweepSchedule
	}

	// Safety net for expired tests nobody has looked at.
	if _, err := cm.cron.AddFunc(sweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		cm.RunSweep(ctx)
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", sweepSchedule, err)
	}

	if cm.stats != nil {
		if _, err := cm.cron.AddFunc(StatsSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			cm.LogStats(ctx)
		}); err != nil {
			return err
		}
	}

	cm.logger.Info("cron jobs configured", "sweep_schedule", sweepSchedule, "jobs", len(cm.cron.Entries()))
	return nil
}

// RunSweep runs one expiry sweep and logs failures.
func (cm *CronManager) RunSweep(ctx context.Context) (adlifecycle.SweepResult, error) {
	result, err := cm.sweeper.Sweep(ctx)
	if err != nil {
		cm.logger.Error("scheduled sweep failed", "error", err)
		return result, err
	}
	if result.Changed() {
		cm.logger.Info("scheduled sweep moved ads", "expired", result.Expired, "released", result.Released)
	}
	return result, nil
}

// LogStats logs the pipeline summary.
func (cm *CronManager) LogStats(ctx context.Context) {
	stats, err := cm.stats.Stats(ctx)
	if err != nil {
		cm.logger.Error("failed to get lab stats", "error", err)
		return
	}

	cm.logger.Info("creative lab statistics",
		"total", stats.Total,
		"completed", stats.Completed,
		"winners", stats.Winners,
		"hit_rate", stats.HitRate,
		"testing", stats.StatusCounts[adlifecycle.StatusTesting],
		"awaiting_analysis", stats.StatusCounts[adlifecycle.StatusAnalysis],
	)
}

// Entries returns the number of scheduled jobs.
func (cm *CronManager) Entries() int {
	return len(cm.cron.Entries())
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Info("starting cron scheduler")
	cm.cron.Start()
}

// Stop stops the cron scheduler and waits for running jobs.
func (cm *CronManager) Stop() {
	cm.logger.Info("stopping cron scheduler")
	<-cm.cron.Stop().Done()
}
