package whsync

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tjwells85/whs_backend/eclipse"
	"github.com/tjwells85/whs_backend/models"
	"github.com/tjwells85/whs_backend/utils"
	"gorm.io/gorm"
)

const (
	defaultPickGroup = "DEFAULT"
	unassignedUserId = "UNASSIGNED"

	// A task missing from a suspiciously small or empty snapshot is kept
	// open this long before it is considered stale.
	staleAfter = 3 * time.Minute

	// Below this many tracked tasks an empty snapshot is trusted as-is
	// instead of being treated as a transient API hiccup.
	smallSetThreshold = 3
)

// ParsePickTask normalizes an Eclipse pick task into task-schema shape.
// Empty pickGroup and assignedUserId get placeholder values; blank transfer
// branches become NULL.
func ParsePickTask(pt eclipse.PickTask, now time.Time) models.Task {
	task := models.Task{
		OrderId:             pt.OrderId,
		GenerationId:        pt.GenerationId,
		InvoiceId:           pt.InvoiceId,
		BranchId:            pt.BranchId,
		PickGroup:           pt.PickGroup,
		AssignedUserId:      pt.AssignedUserId,
		BillTo:              pt.BillTo,
		ShipTo:              pt.ShipTo,
		ShipToName:          pt.ShipToName,
		PickCount:           pt.PickCount,
		ShipVia:             pt.ShipVia,
		IsFromMultipleZones: pt.IsFromMultipleZones,
		TaskState:           models.TaskState(pt.TaskState),
		TaskWeight:          pt.TaskWeight,
		PickAndPassBlink:    pt.PickAndPassBlink,
		PickPriority:        pt.PickPriority,
		Totes:               pt.Totes,
		LastSeen:            now,
		ActiveTime:          0,
		OrderType:           OrderTypeOf(pt.OrderId),
	}
	if task.PickGroup == "" {
		task.PickGroup = defaultPickGroup
	}
	if task.AssignedUserId == "" {
		task.AssignedUserId = unassignedUserId
	}
	if pt.TransferShippingBranch != "" {
		v := pt.TransferShippingBranch
		task.TransferShippingBranch = &v
	}
	if pt.TransferReceivingBranch != "" {
		v := pt.TransferReceivingBranch
		task.TransferReceivingBranch = &v
	}
	return task
}

// AdjustedCloseTime reports how long a closing task was actually worked:
// the wall-clock span from creation to last sighting minus the share the
// active/inactive accounting attributed to off-hours, in seconds rounded
// to 1 decimal.
func AdjustedCloseTime(task *models.Task) float64 {
	active := float64(task.ActiveTime) * 1000
	diff := float64(task.LastSeen.Sub(task.CreatedAt).Milliseconds())
	inactive := diff - active
	return utils.Round((diff-inactive)/1000, 1)
}

// HandleMerge reconciles the branch's tracked open tasks against a fresh
// Eclipse snapshot.
//
// Tasks present in both sets are refreshed (and accrue active time when
// activeNow). Tasks absent from the snapshot close only when the snapshot
// is non-empty, the tracked set is small, or the task has not been seen for
// staleAfter; otherwise the disappearance is treated as a transient API
// hiccup and the task is left untouched. Snapshot entries with no tracked
// counterpart become new tasks, auto-creating unknown ship vias on the way.
func HandleMerge(
	ctx context.Context,
	existing []models.Task,
	snapshot []eclipse.PickTask,
	knownShipVias map[string]struct{},
	shipVias ShipViaStore,
	activeNow bool,
	now time.Time,
) (MergeResult, error) {
	result := MergeResult{
		CloseIds:   []int{},
		CloseTimes: []float64{},
		Update:     []TaskUpdate{},
		Add:        []models.Task{},
	}

	toAdd := make([]eclipse.PickTask, len(snapshot))
	copy(toAdd, snapshot)

	for i := range existing {
		cur := &existing[i]
		invoice := cur.InvoiceKey()

		upIndex := -1
		for j := range toAdd {
			if toAdd[j].OrderId+"."+toAdd[j].InvoiceId == invoice {
				upIndex = j
				break
			}
		}

		if upIndex < 0 {
			notRecent := now.Sub(cur.LastSeen) > staleAfter
			if len(snapshot) > 0 || len(existing) < smallSetThreshold || notRecent {
				result.CloseIds = append(result.CloseIds, cur.ID)
				result.CloseTimes = append(result.CloseTimes, AdjustedCloseTime(cur))
			}
			continue
		}

		body := ParsePickTask(toAdd[upIndex], now)
		body.ActiveTime = cur.ActiveTime
		if activeNow {
			diff := int(math.Round(now.Sub(cur.LastSeen).Seconds()))
			body.ActiveTime += diff
		}
		result.Update = append(result.Update, TaskUpdate{ID: cur.ID, Body: body})
		toAdd = append(toAdd[:upIndex], toAdd[upIndex+1:]...)
	}

	for _, pt := range toAdd {
		if _, known := knownShipVias[pt.ShipVia]; !known {
			if err := ensureShipVia(ctx, shipVias, pt); err != nil {
				return result, err
			}
			// Don't re-check this name within the batch.
			knownShipVias[pt.ShipVia] = struct{}{}
		}

		dto := ParsePickTask(pt, now)
		if activeNow {
			dto.ActiveTime = 1
		}
		result.Add = append(result.Add, dto)
	}

	return result, nil
}

// ensureShipVia creates a ShipVia row for an unseen name unless one already
// exists. A duplicate-key race with a concurrent cycle is benign.
func ensureShipVia(ctx context.Context, shipVias ShipViaStore, pt eclipse.PickTask) error {
	existing, err := shipVias.FindByName(ctx, pt.ShipVia)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	priority := 0
	if n, err := strconv.Atoi(strings.TrimSpace(pt.PickPriority)); err == nil {
		priority = n
	}
	err = shipVias.Create(ctx, pt.ShipVia, priority, models.ShipViaTypeWillCall)
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	return nil
}
