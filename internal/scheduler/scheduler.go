// Package scheduler runs periodic background jobs. Request handling never
// depends on it.
package scheduler

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps cron-based jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New returns a stopped scheduler evaluating specs in UTC. A panicking
// job is recovered and logged instead of killing the process.
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)))),
		),
		logger: logger,
	}
}

// ScheduleInterval registers job to run every interval, rounded down to
// whole seconds (minimum one second).
func (s *Scheduler) ScheduleInterval(name string, interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("scheduler: interval for %q must be positive", name)
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	id, err := s.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), job)
	if err != nil {
		return 0, err
	}
	s.logger.Info("scheduler: job registered", slog.String("job", name), slog.Int("every_seconds", seconds))
	return id, nil
}

// Len reports the number of registered jobs.
func (s *Scheduler) Len() int { return len(s.cron.Entries()) }

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// PoolStatsJob logs the database connection pool statistics.
func PoolStatsJob(db *sql.DB, logger *slog.Logger) func() {
	return func() {
		st := db.Stats()
		logger.Info("db pool stats",
			slog.Int("open", st.OpenConnections),
			slog.Int("in_use", st.InUse),
			slog.Int("idle", st.Idle),
			slog.Int64("wait_count", st.WaitCount),
			slog.Duration("wait_duration", st.WaitDuration),
		)
	}
}
