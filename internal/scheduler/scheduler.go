package scheduler

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"insight360/internal/config"
	"insight360/internal/workflow"
)

// Scheduler runs the deadline sweep on a cron-like schedule
type Scheduler struct {
	sweeper  *workflow.Sweeper
	config   *config.SchedulerConfig
	stopChan chan bool
}

// NewScheduler creates a new scheduler
func NewScheduler(sweeper *workflow.Sweeper, cfg *config.SchedulerConfig) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		config:   cfg,
		stopChan: make(chan bool),
	}
}

// Start starts all scheduled tasks
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler", "sweep_enabled", s.config.EnableSweep)

	if s.config.EnableSweep {
		if err := s.startCronTask(s.config.SweepCron, "deadline_sweep", s.runSweep); err != nil {
			slog.Error("Failed to start deadline sweep", "error", err)
		}
	}

	slog.Info("Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	slog.Info("Stopping scheduler")
	close(s.stopChan)
}

// startCronTask parses a cron expression and starts the task.
// Supports simple cron format: "minute hour day month weekday".
// Examples: "0 1 * * *" = Daily 1 AM, "*/30 * * * *" = Every 30 minutes.
func (s *Scheduler) startCronTask(cronExpr, taskName string, task func()) error {
	parts := strings.Fields(cronExpr)
	if len(parts) != 5 {
		return fmt.Errorf("invalid cron expression: %s (expected 5 fields)", cronExpr)
	}

	// Interval notation: */5 = every 5 minutes
	if strings.HasPrefix(parts[0], "*/") {
		interval, err := strconv.Atoi(parts[0][2:])
		if err != nil || interval < 1 || interval > 59 {
			return fmt.Errorf("invalid minute interval in cron: %s", parts[0])
		}
		go s.scheduleIntervalTask(time.Duration(interval)*time.Minute, taskName, task)
		return nil
	}

	minute, err := strconv.Atoi(parts[0])
	if err != nil || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid minute in cron: %s", parts[0])
	}

	hour, err := strconv.Atoi(parts[1])
	if err != nil || hour < 0 || hour > 23 {
		return fmt.Errorf("invalid hour in cron: %s", parts[1])
	}

	go s.scheduleDailyTask(hour, minute, taskName, task)
	return nil
}

// scheduleIntervalTask runs a task at regular intervals
func (s *Scheduler) scheduleIntervalTask(interval time.Duration, taskName string, task func()) {
	slog.Info("Starting interval task", "task", taskName, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start
	task()

	for {
		select {
		case <-ticker.C:
			slog.Info("Running interval task", "task", taskName)
			task()
		case <-s.stopChan:
			return
		}
	}
}

// scheduleDailyTask runs a task daily at a specific time
func (s *Scheduler) scheduleDailyTask(hour, minute int, taskName string, task func()) {
	for {
		now := time.Now()
		next := nextDailyRun(now, hour, minute)

		slog.Info("Next daily task scheduled", "task", taskName, "next_run", next.Format("2006-01-02 15:04:05"))

		select {
		case <-time.After(next.Sub(now)):
			slog.Info("Running daily task", "task", taskName)
			task()
		case <-s.stopChan:
			return
		}
	}
}

// nextDailyRun calculates the next daily run time
func nextDailyRun(from time.Time, hour, minute int) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())

	// If the time has already passed today, schedule for tomorrow
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}

	return next
}

func (s *Scheduler) runSweep() {
	result, err := s.sweeper.Run()
	if err != nil {
		slog.Error("Deadline sweep failed", "error", err)
		return
	}

	if result.Total() == 0 {
		slog.Info("Deadline sweep found nothing to move")
	}
}
