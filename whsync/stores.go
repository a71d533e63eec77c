package whsync

import (
	"context"
	"time"

	"github.com/tjwells85/whs_backend/config"
	"github.com/tjwells85/whs_backend/eclipse"
	"github.com/tjwells85/whs_backend/models"
)

// Persistence and ERP access behind small interfaces so the reconciliation
// logic tests without a database or a live Eclipse endpoint.

type TaskStore interface {
	FindOpen(ctx context.Context, branchId string) ([]models.Task, error)
	BulkClose(ctx context.Context, ids []int) error
	BulkInsert(ctx context.Context, tasks []models.Task) error
	UpdateById(ctx context.Context, id int, task *models.Task) error
}

type ShipViaStore interface {
	FindByName(ctx context.Context, name string) (*models.ShipVia, error)
	Create(ctx context.Context, name string, priority int, svType models.ShipViaType) error
	ListNames(ctx context.Context) (map[string]struct{}, error)
}

type HolidayStore interface {
	FindCovering(ctx context.Context, at time.Time) (*models.Holiday, error)
}

type StatStore interface {
	FindCurrent(ctx context.Context, branchId string, at time.Time) (*models.Stat, error)
	Create(ctx context.Context, stat *models.Stat) (*models.Stat, error)
	Patch(ctx context.Context, id int, patch *models.StatPatch) error
	CloseOthers(ctx context.Context, branchId string, excludeId int) error
}

type BranchLister interface {
	ListActive(ctx context.Context) ([]models.Branch, error)
}

// SnapshotFetcher pulls the branch's open pick tasks from Eclipse.
type SnapshotFetcher interface {
	Fetch(ctx context.Context, branchId string) ([]eclipse.PickTask, error)
}

type gormTaskStore struct{}

func (gormTaskStore) FindOpen(ctx context.Context, branchId string) ([]models.Task, error) {
	var tasks []models.Task
	err := config.GetDB().WithContext(ctx).
		Where("branch_id = ? AND task_state <> ?", branchId, models.TaskStateClosed).
		Find(&tasks).Error
	return tasks, err
}

func (gormTaskStore) BulkClose(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	// Closed is terminal; never touch rows that already got there.
	return config.GetDB().WithContext(ctx).
		Model(&models.Task{}).
		Where("id IN ? AND task_state <> ?", ids, models.TaskStateClosed).
		Update("task_state", models.TaskStateClosed).Error
}

func (gormTaskStore) BulkInsert(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return config.GetDB().WithContext(ctx).Create(&tasks).Error
}

func (gormTaskStore) UpdateById(ctx context.Context, id int, task *models.Task) error {
	return config.GetDB().WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		Updates(task.AsUpdateMap()).Error
}

type gormShipViaStore struct{}

func (gormShipViaStore) FindByName(ctx context.Context, name string) (*models.ShipVia, error) {
	return models.GetShipViaByName(ctx, name)
}

func (gormShipViaStore) Create(ctx context.Context, name string, priority int, svType models.ShipViaType) error {
	_, err := models.CreateShipVia(ctx, &models.NewShipVia{
		Name:     name,
		Priority: priority,
		Type:     svType,
	})
	return err
}

func (gormShipViaStore) ListNames(ctx context.Context) (map[string]struct{}, error) {
	return models.ListShipViaNames(ctx)
}

type gormHolidayStore struct{}

func (gormHolidayStore) FindCovering(ctx context.Context, at time.Time) (*models.Holiday, error) {
	return models.FindHolidayCovering(ctx, at)
}

type gormStatStore struct{}

func (gormStatStore) FindCurrent(ctx context.Context, branchId string, at time.Time) (*models.Stat, error) {
	return models.FindCurrentStat(ctx, branchId, at)
}

func (gormStatStore) Create(ctx context.Context, stat *models.Stat) (*models.Stat, error) {
	return models.CreateStat(ctx, stat)
}

func (gormStatStore) Patch(ctx context.Context, id int, patch *models.StatPatch) error {
	return models.PatchStat(ctx, id, patch)
}

func (gormStatStore) CloseOthers(ctx context.Context, branchId string, excludeId int) error {
	return models.CloseOtherStats(ctx, branchId, excludeId)
}

type gormBranchLister struct{}

func (gormBranchLister) ListActive(ctx context.Context) ([]models.Branch, error) {
	branches, err := models.GetAllBranches(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]models.Branch, 0, len(branches))
	for _, br := range branches {
		if br.IsActive != nil && *br.IsActive {
			active = append(active, br)
		}
	}
	return active, nil
}

// eclipseFetcher wraps the API client with session handling: a failed pull
// forces one re-login and retry before the branch is reported failed.
type eclipseFetcher struct {
	client  *eclipse.Client
	initErr error
}

func (f *eclipseFetcher) Fetch(ctx context.Context, branchId string) ([]eclipse.PickTask, error) {
	if f.initErr != nil {
		return nil, f.initErr
	}

	var tasks []eclipse.PickTask
	err := eclipse.WithSession(ctx, f.client, func(token string) error {
		fetched, _, err := f.client.FetchOpenTasks(ctx, token, branchId)
		if err != nil {
			return err
		}
		tasks = fetched
		return nil
	})
	return tasks, err
}
