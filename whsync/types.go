package whsync

import "github.com/tjwells85/whs_backend/models"

// TaskUpdate pairs a persisted task id with its full replacement body.
type TaskUpdate struct {
	ID   int         `json:"id"`
	Body models.Task `json:"body"`
}

// MergeResult is the outcome of reconciling one branch's snapshot against
// the locally tracked open tasks.
type MergeResult struct {
	CloseIds   []int         `json:"close_ids"`
	CloseTimes []float64     `json:"close_times"`
	Update     []TaskUpdate  `json:"update"`
	Add        []models.Task `json:"add"`
}

func (r *MergeResult) merge(other MergeResult) {
	r.CloseIds = append(r.CloseIds, other.CloseIds...)
	r.CloseTimes = append(r.CloseTimes, other.CloseTimes...)
	r.Update = append(r.Update, other.Update...)
	r.Add = append(r.Add, other.Add...)
}
