package models

import (
	"context"
	"time"

	"github.com/tjwells85/whs_backend/config"
)

// Task is one Eclipse picking task as tracked locally. The natural key is
// (order_id, invoice_id); a Closed task is terminal and never re-opens.
type Task struct {
	ID                      int        `gorm:"primary_key" json:"id"`
	OrderId                 string     `gorm:"size:32;not null" json:"order_id"`
	GenerationId            int        `gorm:"not null" json:"generation_id"`
	InvoiceId               string     `gorm:"size:32;not null" json:"invoice_id"`
	BranchId                string     `gorm:"index;size:32;not null" json:"branch_id"`
	PickGroup               string     `gorm:"size:64;not null" json:"pick_group"`
	AssignedUserId          string     `gorm:"size:64;not null" json:"assigned_user_id"`
	BillTo                  int        `json:"bill_to"`
	ShipTo                  int        `json:"ship_to"`
	ShipToName              string     `gorm:"size:255" json:"ship_to_name"`
	PickCount               string     `gorm:"size:32" json:"pick_count"`
	ShipVia                 string     `gorm:"size:64;not null" json:"ship_via"`
	IsFromMultipleZones     bool       `json:"is_from_multiple_zones"`
	TaskState               TaskState  `gorm:"index;size:16;not null" json:"task_state"`
	TaskWeight              float64    `json:"task_weight"`
	PickAndPassBlink        bool       `json:"pick_and_pass_blink"`
	PickPriority            string     `gorm:"index;size:16" json:"pick_priority"`
	TransferShippingBranch  *string    `gorm:"size:32" json:"transfer_shipping_branch"`
	TransferReceivingBranch *string    `gorm:"size:32" json:"transfer_receiving_branch"`
	Totes                   StringList `gorm:"type:json" json:"totes"`
	LastSeen                time.Time  `gorm:"index;not null" json:"last_seen"`
	ActiveTime              int        `gorm:"not null;default:0" json:"active_time"`
	OrderType               OrderType  `gorm:"index;size:16;not null" json:"order_type"`
	CreatedAt               time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// InvoiceKey is the composite natural key used for snapshot reconciliation.
func (t *Task) InvoiceKey() string {
	return t.OrderId + "." + t.InvoiceId
}

// AsUpdateMap enumerates every reconciliation-managed column explicitly so
// zero values (false flags, empty strings, activeTime 0) still overwrite.
func (t *Task) AsUpdateMap() map[string]interface{} {
	return map[string]interface{}{
		"order_id":                  t.OrderId,
		"generation_id":             t.GenerationId,
		"invoice_id":                t.InvoiceId,
		"branch_id":                 t.BranchId,
		"pick_group":                t.PickGroup,
		"assigned_user_id":          t.AssignedUserId,
		"bill_to":                   t.BillTo,
		"ship_to":                   t.ShipTo,
		"ship_to_name":              t.ShipToName,
		"pick_count":                t.PickCount,
		"ship_via":                  t.ShipVia,
		"is_from_multiple_zones":    t.IsFromMultipleZones,
		"task_state":                t.TaskState,
		"task_weight":               t.TaskWeight,
		"pick_and_pass_blink":       t.PickAndPassBlink,
		"pick_priority":             t.PickPriority,
		"transfer_shipping_branch":  t.TransferShippingBranch,
		"transfer_receiving_branch": t.TransferReceivingBranch,
		"totes":                     t.Totes,
		"last_seen":                 t.LastSeen,
		"active_time":               t.ActiveTime,
		"order_type":                t.OrderType,
	}
}

// GetTasksForBranch returns open tasks for a branch, optionally narrowed to
// one of the named warehouse views. Sort order mirrors the pick board:
// priority first, newest created within a priority.
func GetTasksForBranch(ctx context.Context, branchId string, viewType string) ([]Task, error) {
	db := config.GetDB().WithContext(ctx)

	q := db.Where("branch_id = ? AND task_state = ?", branchId, TaskStateOpen)

	switch viewType {
	case "":
		// all open picks
	case "standard":
		names, err := shipViaNamesByTypes(ctx, ShipViaTypeWillCall, ShipViaTypeDelivery)
		if err != nil {
			return nil, err
		}
		q = q.Where("ship_via IN ?", emptyGuard(names))
	case "willcall":
		names, err := shipViaNamesByTypes(ctx, ShipViaTypeWillCall)
		if err != nil {
			return nil, err
		}
		q = q.Where("ship_via IN ?", emptyGuard(names))
	case "transfers":
		q = q.Where("order_type = ?", OrderTypeTransfer)
	case "shipouts":
		names, err := shipViaNamesByTypes(ctx, ShipViaTypeShipOut)
		if err != nil {
			return nil, err
		}
		q = q.Where("order_type = ? OR ship_via IN ?", OrderTypeTransfer, emptyGuard(names))
	case "nonWillCall":
		names, err := shipViaNamesByTypes(ctx, ShipViaTypeDelivery, ShipViaTypeShipOut)
		if err != nil {
			return nil, err
		}
		q = q.Where("order_type = ? OR ship_via IN ?", OrderTypeTransfer, emptyGuard(names))
	case "deliveries":
		names, err := shipViaNamesByTypes(ctx, ShipViaTypeDelivery)
		if err != nil {
			return nil, err
		}
		q = q.Where("order_type = ? AND ship_via IN ?", OrderTypeSale, emptyGuard(names))
	default:
		return nil, ErrUnknownTaskView
	}

	var tasks []Task
	err := q.
		Order("pick_priority ASC").
		Order("created_at DESC").
		Order("order_id ASC").
		Order("generation_id ASC").
		Find(&tasks).Error
	return tasks, err
}

// DeleteClosedTasksBefore removes terminal tasks last touched before the
// cutoff. Returns the number of rows removed.
func DeleteClosedTasksBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := config.GetDB().WithContext(ctx).
		Where("task_state = ? AND updated_at < ?", TaskStateClosed, cutoff).
		Delete(&Task{})
	return res.RowsAffected, res.Error
}

// emptyGuard keeps `IN ()` from matching everything on an empty name set.
func emptyGuard(names []string) []string {
	if len(names) == 0 {
		return []string{""}
	}
	return names
}
