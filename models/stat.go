package models

import (
	"context"
	"errors"
	"time"

	"github.com/tjwells85/whs_backend/config"
	"gorm.io/gorm"
)

// Stat is the daily per-branch aggregate. One entry is appended to each
// sequence per reconciliation cycle; counters accumulate across the day.
// At most one row per branch has status Current.
type Stat struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Status      StatStatus      `gorm:"index;size:16;not null;default:'Current'" json:"status"`
	Start       time.Time       `gorm:"index;not null" json:"start"`
	End         time.Time       `gorm:"index;not null" json:"end"`
	BranchId    string          `gorm:"index;size:32;not null" json:"branch_id"`
	ShipVias    ShipViaStatList `gorm:"type:json" json:"ship_vias"`
	StartTotal  int             `gorm:"not null;default:0" json:"start_total"`
	EndTotal    int             `gorm:"not null;default:0" json:"end_total"`
	Totals      IntList         `gorm:"type:json" json:"totals"`
	SalesOrders IntList         `gorm:"type:json" json:"sales_orders"`
	Transfers   IntList         `gorm:"type:json" json:"transfers"`
	Purchases   IntList         `gorm:"type:json" json:"purchases"`
	Closed      int             `gorm:"not null;default:0" json:"closed"`
	CloseTimes  FloatList       `gorm:"type:json" json:"close_times"`
	CloseIds    IntList         `gorm:"type:json" json:"close_ids"`
	Updated     int             `gorm:"not null;default:0" json:"updated"`
	Added       int             `gorm:"not null;default:0" json:"added"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// StatPatch is the per-cycle delta applied to an existing Current stat.
// Sequences replace the stored columns wholesale (they already contain the
// appended entry); counters are absolute new values.
type StatPatch struct {
	ShipVias    ShipViaStatList
	Totals      IntList
	SalesOrders IntList
	Transfers   IntList
	Purchases   IntList
	Closed      int
	CloseTimes  FloatList
	CloseIds    IntList
	Updated     int
	Added       int
	EndTotal    int
}

func FindCurrentStat(ctx context.Context, branchId string, at time.Time) (*Stat, error) {
	var stat Stat
	err := config.GetDB().WithContext(ctx).
		Where("branch_id = ? AND `start` < ? AND `end` > ?", branchId, at, at).
		Take(&stat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stat, nil
}

func CreateStat(ctx context.Context, stat *Stat) (*Stat, error) {
	if err := config.GetDB().WithContext(ctx).Create(stat).Error; err != nil {
		return nil, err
	}
	return stat, nil
}

func PatchStat(ctx context.Context, id int, patch *StatPatch) error {
	return config.GetDB().WithContext(ctx).
		Model(&Stat{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"ship_vias":    patch.ShipVias,
			"totals":       patch.Totals,
			"sales_orders": patch.SalesOrders,
			"transfers":    patch.Transfers,
			"purchases":    patch.Purchases,
			"closed":       patch.Closed,
			"close_times":  patch.CloseTimes,
			"close_ids":    patch.CloseIds,
			"updated":      patch.Updated,
			"added":        patch.Added,
			"end_total":    patch.EndTotal,
		}).Error
}

// CloseOtherStats forces every non-Purge stat of the branch except the
// given one to Closed, keeping the single-Current invariant.
func CloseOtherStats(ctx context.Context, branchId string, excludeId int) error {
	return config.GetDB().WithContext(ctx).
		Model(&Stat{}).
		Where("branch_id = ? AND id <> ? AND status <> ?", branchId, excludeId, StatStatusPurge).
		Update("status", StatStatusClosed).Error
}

// CloseExpiredStats flips Current stats whose period already ended to
// Closed (midnight cleanup). Returns the number of rows changed.
func CloseExpiredStats(ctx context.Context, now time.Time) (int64, error) {
	res := config.GetDB().WithContext(ctx).
		Model(&Stat{}).
		Where("`end` < ? AND status = ?", now, StatStatusCurrent).
		Update("status", StatStatusClosed)
	return res.RowsAffected, res.Error
}

// GetStatsInRange returns the branch's stats overlapping [from, to],
// oldest first, Purge rows excluded.
func GetStatsInRange(ctx context.Context, branchId string, from, to time.Time) ([]Stat, error) {
	var stats []Stat
	err := config.GetDB().WithContext(ctx).
		Where("branch_id = ? AND status <> ?", branchId, StatStatusPurge).
		Where("`end` >= ? AND `start` <= ?", from, to).
		Order("`start` ASC").
		Find(&stats).Error
	return stats, err
}
