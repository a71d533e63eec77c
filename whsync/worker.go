package whsync

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tjwells85/whs_backend/config"
	"github.com/tjwells85/whs_backend/eclipse"
	"github.com/tjwells85/whs_backend/models"
	"github.com/tjwells85/whs_backend/utils"
)

const defaultBranchDelaySeconds = 5

// Worker runs one full reconciliation pass over every active branch.
// Collaborators are injected so tests can run it against fakes.
type Worker struct {
	Tasks       TaskStore
	ShipVias    ShipViaStore
	Holidays    HolidayStore
	Stats       StatStore
	Branches    BranchLister
	Fetcher     SnapshotFetcher
	Logger      *logrus.Logger
	BranchDelay time.Duration
	Now         func() time.Time

	// Logs writes an operational log row. Injectable so worker tests do
	// not need a database behind models.CreateLogEntry.
	Logs func(ctx context.Context, entry *models.LogEntry) error
}

func NewWorker(logger *logrus.Logger) *Worker {
	delay := defaultBranchDelaySeconds
	if v := os.Getenv("SYNC_BRANCH_DELAY_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			delay = n
		}
	}
	client, err := eclipse.NewClient()
	if err != nil {
		// Misconfiguration surfaces on the first fetch instead of at boot
		// so the HTTP surface still comes up.
		config.LogError(logger, "whsync", "NewWorker", "eclipse client", nil, err)
	}

	return &Worker{
		Tasks:       gormTaskStore{},
		ShipVias:    gormShipViaStore{},
		Holidays:    gormHolidayStore{},
		Stats:       gormStatStore{},
		Branches:    gormBranchLister{},
		Fetcher:     &eclipseFetcher{client: client, initErr: err},
		Logger:      logger,
		BranchDelay: time.Duration(delay) * time.Second,
		Now:         time.Now,
		Logs:        models.CreateLogEntry,
	}
}

// SyncAllBranches reconciles every active branch sequentially, pausing
// between branches to stay under the ERP rate limit. A branch failure is
// logged and skipped; the remaining branches still run. Writes are
// accumulated across branches and applied in one pass at the end.
func (w *Worker) SyncAllBranches(ctx context.Context) error {
	before := w.Now()

	branches, err := w.Branches.ListActive(ctx)
	if err != nil {
		return err
	}

	total := MergeResult{
		CloseIds:   []int{},
		CloseTimes: []float64{},
		Update:     []TaskUpdate{},
		Add:        []models.Task{},
	}

	for i, br := range branches {
		if i > 0 && w.BranchDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.BranchDelay):
			}
		}

		merged, err := w.syncOneBranch(ctx, br.BrId)
		if err != nil {
			config.LogError(w.Logger, "whsync", "SyncAllBranches", "sync branch", br.BrId, err)
			_ = w.Logs(ctx, &models.LogEntry{
				Message:  fmt.Sprintf("Failed to sync branch %s: %s", br.BrId, err.Error()),
				Type:     models.LogTypeError,
				Module:   "whsync",
				FuncName: "syncOneBranch",
				Time:     utils.FnSeconds(before, w.Now()),
			})
			continue
		}
		total.merge(merged)
	}

	if err := w.Tasks.BulkClose(ctx, total.CloseIds); err != nil {
		return err
	}
	if err := w.Tasks.BulkInsert(ctx, total.Add); err != nil {
		return err
	}
	for _, up := range total.Update {
		if err := w.Tasks.UpdateById(ctx, up.ID, &up.Body); err != nil {
			return err
		}
	}

	_ = w.Logs(ctx, &models.LogEntry{
		Message: fmt.Sprintf("Updated Tasks: %d Added, %d Updated, %d Closed",
			len(total.Add), len(total.Update), len(total.CloseIds)),
		Type:     models.LogTypeSuccess,
		Module:   "whsync",
		FuncName: "SyncAllBranches",
		Time:     utils.FnSeconds(before, w.Now()),
	})
	w.Logger.WithFields(logrus.Fields{
		"branches": len(branches),
		"added":    len(total.Add),
		"updated":  len(total.Update),
		"closed":   len(total.CloseIds),
	}).Info("branch sync complete")
	return nil
}

// syncOneBranch pulls the branch snapshot, merges it against the tracked
// set, and folds the outcome into the branch's Current daily stat. Task
// writes are left to the caller.
func (w *Worker) syncOneBranch(ctx context.Context, branchId string) (MergeResult, error) {
	now := w.Now()

	existing, err := w.Tasks.FindOpen(ctx, branchId)
	if err != nil {
		return MergeResult{}, err
	}
	known, err := w.ShipVias.ListNames(ctx)
	if err != nil {
		return MergeResult{}, err
	}
	snapshot, err := w.Fetcher.Fetch(ctx, branchId)
	if err != nil {
		return MergeResult{}, err
	}
	activeNow, err := IsActiveTime(ctx, w.Holidays, now)
	if err != nil {
		return MergeResult{}, err
	}

	merged, err := HandleMerge(ctx, existing, snapshot, known, w.ShipVias, activeNow, now)
	if err != nil {
		return merged, err
	}

	// The accumulator samples what Eclipse reported this cycle, not the
	// debounce-adjusted tracked set.
	snapTasks := make([]models.Task, 0, len(snapshot))
	for _, pt := range snapshot {
		snapTasks = append(snapTasks, ParsePickTask(pt, now))
	}
	if err := w.updateStats(ctx, branchId, snapTasks, merged, now); err != nil {
		return merged, err
	}

	w.Logger.WithFields(logrus.Fields{
		"branch": branchId,
		"open":   len(snapTasks),
	}).Info("branch synced")
	return merged, nil
}

func (w *Worker) updateStats(ctx context.Context, branchId string, tasks []models.Task, merged MergeResult, now time.Time) error {
	stat, err := w.Stats.FindCurrent(ctx, branchId, now)
	if err != nil {
		return err
	}
	if stat != nil {
		return w.Stats.Patch(ctx, stat.ID, GenStatUpdate(stat, tasks, merged))
	}

	created, err := w.Stats.Create(ctx, GenNewStats(branchId, tasks, merged, now))
	if err != nil {
		return err
	}
	return w.Stats.CloseOthers(ctx, branchId, created.ID)
}
