package whsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
	"github.com/tjwells85/whs_backend/config"
	"github.com/tjwells85/whs_backend/models"
	"github.com/tjwells85/whs_backend/utils"
)

const (
	runLockKey = "whsync:run"
	runLockTTL = 10 * time.Minute

	defaultIntervalSeconds = 60
	closedTaskRetention    = 30 * 24 * time.Hour
)

// Scheduler drives the sync worker on a fixed tick and runs the nightly
// cleanup once per calendar day. A redis lock keeps concurrent replicas
// from reconciling the same branches at once.
type Scheduler struct {
	worker   *Worker
	logger   *logrus.Logger
	interval time.Duration

	mu             sync.Mutex
	running        bool
	lastStart      time.Time
	lastFinish     time.Time
	lastError      string
	lastCleanupDay string
}

// RunStatus is the externally visible scheduler state.
type RunStatus struct {
	Running    bool      `json:"running"`
	Interval   string    `json:"interval"`
	LastStart  time.Time `json:"last_start"`
	LastFinish time.Time `json:"last_finish"`
	LastError  string    `json:"last_error,omitempty"`
}

func NewScheduler(worker *Worker, logger *logrus.Logger) *Scheduler {
	interval := defaultIntervalSeconds
	if v := os.Getenv("SYNC_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			interval = n
		}
	}
	return &Scheduler{
		worker:   worker,
		logger:   logger,
		interval: time.Duration(interval) * time.Second,
	}
}

// Start launches the tick loop. It returns immediately; the loop stops
// when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.RunOnce(ctx); err != nil {
					config.LogError(s.logger, "whsync", "RunOnce", "scheduled sync", nil, err)
				}
				s.maybeCleanup(ctx)
			}
		}
	}()
}

// RunOnce performs a single locked sync pass. When another replica holds
// the run lock the pass is skipped silently; a lock backend failure is
// logged but does not stop the pass, since a missed sync costs more than a
// rare double run.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	var lock *redislock.Lock
	if locker := config.GetRedisLock(); locker != nil {
		var err error
		lock, err = locker.Obtain(ctx, runLockKey, runLockTTL, nil)
		if err != nil {
			if errors.Is(err, redislock.ErrNotObtained) {
				s.logger.Debug("sync lock held elsewhere, skipping tick")
				return nil
			}
			s.logger.WithError(err).Warn("sync lock unavailable, running unguarded")
		}
	}
	if lock != nil {
		defer func() { _ = lock.Release(ctx) }()
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.lastStart = s.worker.Now()
	s.mu.Unlock()

	runErr := s.worker.SyncAllBranches(ctx)

	s.mu.Lock()
	s.running = false
	s.lastFinish = s.worker.Now()
	s.lastError = ""
	if runErr != nil {
		s.lastError = runErr.Error()
	}
	s.mu.Unlock()
	return runErr
}

// Status reports the current run state for the API surface.
func (s *Scheduler) Status() RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RunStatus{
		Running:    s.running,
		Interval:   s.interval.String(),
		LastStart:  s.lastStart,
		LastFinish: s.lastFinish,
		LastError:  s.lastError,
	}
}

// maybeCleanup runs the nightly maintenance the first tick of each day:
// expired Current stats get closed and long-terminal tasks are purged.
func (s *Scheduler) maybeCleanup(ctx context.Context) {
	now := s.worker.Now()
	day := now.Format("2006-01-02")

	s.mu.Lock()
	if s.lastCleanupDay == "" {
		// First tick after boot establishes the baseline day.
		s.lastCleanupDay = day
		s.mu.Unlock()
		return
	}
	if s.lastCleanupDay == day {
		s.mu.Unlock()
		return
	}
	s.lastCleanupDay = day
	s.mu.Unlock()

	before := now
	closedStats, err := models.CloseExpiredStats(ctx, now)
	if err != nil {
		config.LogError(s.logger, "whsync", "maybeCleanup", "close expired stats", nil, err)
		return
	}
	purged, err := models.DeleteClosedTasksBefore(ctx, now.Add(-closedTaskRetention))
	if err != nil {
		config.LogError(s.logger, "whsync", "maybeCleanup", "purge closed tasks", nil, err)
		return
	}

	_ = models.CreateLogEntry(ctx, &models.LogEntry{
		Message:  fmt.Sprintf("Nightly cleanup: %d stats closed, %d tasks purged", closedStats, purged),
		Type:     models.LogTypeSuccess,
		Module:   "whsync",
		FuncName: "maybeCleanup",
		Time:     utils.FnSeconds(before, s.worker.Now()),
	})
}
