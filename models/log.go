package models

import (
	"context"
	"time"

	"github.com/tjwells85/whs_backend/config"
)

// LogEntry is one persisted operational log row. The log table is the
// externally observable failure surface of the sync loop.
type LogEntry struct {
	ID         int       `gorm:"primary_key" json:"id"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	Type       LogType   `gorm:"index;size:16;not null" json:"type"`
	HttpStatus string    `gorm:"size:8" json:"http_status"`
	Module     string    `gorm:"size:64" json:"module"`
	FuncName   string    `gorm:"size:64" json:"func_name"`
	Time       float64   `json:"time"`
	CreatedAt  time.Time `gorm:"index;autoCreateTime" json:"created_at"`
}

// CreateLogEntry is best-effort: logging must never fail the operation it
// describes, so callers ignore the returned error outside of tests.
func CreateLogEntry(ctx context.Context, entry *LogEntry) error {
	return config.GetDB().WithContext(ctx).Create(entry).Error
}

func GetRecentLogs(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []LogEntry
	err := config.GetDB().WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
