package whsync

import (
	"time"

	"github.com/tjwells85/whs_backend/models"
	"github.com/tjwells85/whs_backend/utils"
)

// Sentinel minimum used while scanning; any real count beats it.
const minPlaceholder = 9999999

// GenNewStats builds the first Current stat of the day for a branch from
// the post-merge open task set and the cycle's merge outcome. Every
// sequence starts with a single entry.
func GenNewStats(branchId string, tasks []models.Task, merged MergeResult, now time.Time) *models.Stat {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	sales, transfers, purchases := countByOrderType(tasks)

	return &models.Stat{
		Status:      models.StatStatusCurrent,
		Start:       start,
		End:         end,
		BranchId:    branchId,
		ShipVias:    tallyShipVias(merged.Add),
		StartTotal:  len(tasks),
		EndTotal:    len(tasks),
		Totals:      models.IntList{len(tasks)},
		SalesOrders: models.IntList{sales},
		Transfers:   models.IntList{transfers},
		Purchases:   models.IntList{purchases},
		Closed:      len(merged.CloseIds),
		CloseTimes:  models.FloatList(merged.CloseTimes),
		CloseIds:    models.IntList(merged.CloseIds),
		Updated:     len(merged.Update),
		Added:       len(merged.Add),
	}
}

// GenStatUpdate folds one reconciliation cycle into the branch's Current
// stat: sequences gain one entry, counters accumulate, close ids and times
// are concatenated.
func GenStatUpdate(stat *models.Stat, tasks []models.Task, merged MergeResult) *models.StatPatch {
	sales, transfers, purchases := countByOrderType(tasks)

	return &models.StatPatch{
		ShipVias:    mergeShipViaStats(stat.ShipVias, tallyShipVias(merged.Add)),
		Totals:      append(append(models.IntList{}, stat.Totals...), len(tasks)),
		SalesOrders: append(append(models.IntList{}, stat.SalesOrders...), sales),
		Transfers:   append(append(models.IntList{}, stat.Transfers...), transfers),
		Purchases:   append(append(models.IntList{}, stat.Purchases...), purchases),
		Closed:      stat.Closed + len(merged.CloseIds),
		CloseTimes:  append(append(models.FloatList{}, stat.CloseTimes...), merged.CloseTimes...),
		CloseIds:    append(append(models.IntList{}, stat.CloseIds...), models.IntList(merged.CloseIds)...),
		Updated:     stat.Updated + len(merged.Update),
		Added:       stat.Added + len(merged.Add),
		EndTotal:    len(tasks),
	}
}

// countByOrderType tallies the explicit categories only. Work orders (and
// anything else) still show up in the overall totals but have no category
// sequence of their own.
func countByOrderType(tasks []models.Task) (sales, transfers, purchases int) {
	for i := range tasks {
		switch tasks[i].OrderType {
		case models.OrderTypeSale:
			sales++
		case models.OrderTypeTransfer:
			transfers++
		case models.OrderTypePurchase:
			purchases++
		}
	}
	return sales, transfers, purchases
}

// tallyShipVias counts newly added tasks per ship via, preserving first
// encounter order. Priority records the first task's pick priority string.
func tallyShipVias(added []models.Task) models.ShipViaStatList {
	tally := models.ShipViaStatList{}
	for i := range added {
		found := false
		for j := range tally {
			if tally[j].Name == added[i].ShipVia {
				tally[j].Count++
				found = true
				break
			}
		}
		if !found {
			tally = append(tally, models.ShipViaStat{
				Name:     added[i].ShipVia,
				Count:    1,
				Priority: added[i].PickPriority,
			})
		}
	}
	return tally
}

func mergeShipViaStats(existing, batch models.ShipViaStatList) models.ShipViaStatList {
	merged := append(models.ShipViaStatList{}, existing...)
	for _, b := range batch {
		found := false
		for i := range merged {
			if merged[i].Name == b.Name {
				merged[i].Count += b.Count
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, b)
		}
	}
	return merged
}

// MinMaxCount summarizes one sampled sequence: the day's low and high
// water marks plus the number of tasks that entered the set, read off the
// positive deltas between consecutive samples.
type MinMaxCount struct {
	Min   int `json:"min"`
	Max   int `json:"max"`
	Count int `json:"count"`
}

func GetMinMaxCount(values []int) MinMaxCount {
	if len(values) == 0 {
		return MinMaxCount{}
	}

	out := MinMaxCount{Min: minPlaceholder}
	prev := 0
	for i, v := range values {
		if v < out.Min {
			out.Min = v
		}
		if v > out.Max {
			out.Max = v
		}
		if i > 0 && v > prev {
			out.Count += v - prev
		}
		prev = v
	}
	if out.Min == minPlaceholder {
		out.Min = 0
	}
	return out
}

// Avg returns the mean of values, 0 for an empty slice. An optional
// precision rounds the result to that many decimal places.
func Avg(values []float64, precision ...int32) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))
	if len(precision) > 0 {
		avg = utils.Round(avg, precision[0])
	}
	return avg
}

// ParsedStats is the display-ready view of one or more Stat rows.
type ParsedStats struct {
	BranchId     string         `json:"branch_id"`
	Start        time.Time      `json:"start"`
	End          time.Time      `json:"end"`
	DateRange    string         `json:"date_range"`
	Totals       MinMaxCount    `json:"totals"`
	SalesOrders  MinMaxCount    `json:"sales_orders"`
	Transfers    MinMaxCount    `json:"transfers"`
	Purchases    MinMaxCount    `json:"purchases"`
	StartTotal   int            `json:"start_total"`
	EndTotal     int            `json:"end_total"`
	Closed       int            `json:"closed"`
	AvgCloseTime float64        `json:"avg_close_time"`
	Updated      int            `json:"updated"`
	Added        int            `json:"added"`
	DailyNet     int            `json:"daily_net"`
	ShipVias     map[string]int `json:"ship_vias"`
	WillCalls    int            `json:"will_calls"`
	Deliveries   int            `json:"deliveries"`
	ShipOuts     int            `json:"ship_outs"`
}

// ParseStats reduces a raw Stat row to its summary form: per-name ship-via
// counts plus buckets by the configured ship-via types. The daily net is
// the open-count swing over the period, end minus start.
func ParseStats(stat *models.Stat, shipVias []models.ShipVia) ParsedStats {
	typeOf := make(map[string]models.ShipViaType, len(shipVias))
	for _, sv := range shipVias {
		typeOf[sv.Name] = sv.Type
	}

	parsed := ParsedStats{
		BranchId:     stat.BranchId,
		Start:        stat.Start,
		End:          stat.End,
		DateRange:    PrintDateRange(stat.Start, stat.End),
		Totals:       GetMinMaxCount(stat.Totals),
		SalesOrders:  GetMinMaxCount(stat.SalesOrders),
		Transfers:    GetMinMaxCount(stat.Transfers),
		Purchases:    GetMinMaxCount(stat.Purchases),
		StartTotal:   stat.StartTotal,
		EndTotal:     stat.EndTotal,
		Closed:       stat.Closed,
		AvgCloseTime: Avg(stat.CloseTimes, 1),
		Updated:      stat.Updated,
		Added:        stat.Added,
		DailyNet:     stat.EndTotal - stat.StartTotal,
		ShipVias:     make(map[string]int, len(stat.ShipVias)),
	}

	for _, svs := range stat.ShipVias {
		parsed.ShipVias[svs.Name] += svs.Count
		switch typeOf[svs.Name] {
		case models.ShipViaTypeDelivery:
			parsed.Deliveries += svs.Count
		case models.ShipViaTypeShipOut:
			parsed.ShipOuts += svs.Count
		default:
			parsed.WillCalls += svs.Count
		}
	}
	return parsed
}

// CombineStats folds consecutive daily rows (oldest first, as
// GetStatsInRange returns them) into one synthetic row covering the whole
// range, then parses that. Sequences and close lists are concatenated and
// ship-via tallies merged by name, so min/max/count also see the swing
// across day boundaries.
func CombineStats(stats []models.Stat, shipVias []models.ShipVia) ParsedStats {
	if len(stats) == 0 {
		return ParsedStats{}
	}

	combined := models.Stat{
		Status:     models.StatStatusClosed,
		BranchId:   stats[0].BranchId,
		Start:      stats[0].Start,
		End:        stats[0].End,
		StartTotal: stats[0].StartTotal,
		EndTotal:   stats[0].EndTotal,
	}
	for _, s := range stats {
		if s.Start.Before(combined.Start) {
			combined.Start = s.Start
			combined.StartTotal = s.StartTotal
		}
		if s.End.After(combined.End) {
			combined.End = s.End
			combined.EndTotal = s.EndTotal
		}
		combined.ShipVias = mergeShipViaStats(combined.ShipVias, s.ShipVias)
		combined.Totals = append(combined.Totals, s.Totals...)
		combined.SalesOrders = append(combined.SalesOrders, s.SalesOrders...)
		combined.Transfers = append(combined.Transfers, s.Transfers...)
		combined.Purchases = append(combined.Purchases, s.Purchases...)
		combined.CloseTimes = append(combined.CloseTimes, s.CloseTimes...)
		combined.CloseIds = append(combined.CloseIds, s.CloseIds...)
		combined.Closed += s.Closed
		combined.Updated += s.Updated
		combined.Added += s.Added
	}
	return ParseStats(&combined, shipVias)
}

// PrintDateRange formats a stat period for display, collapsing same-day
// ranges to a single date.
func PrintDateRange(start, end time.Time) string {
	const layout = "Jan 2, 2006"
	// The period end is the next midnight; step back so the label names
	// the covered day.
	last := end.Add(-time.Second)
	if start.Year() == last.Year() && start.YearDay() == last.YearDay() {
		return start.Format(layout)
	}
	return start.Format(layout) + " - " + last.Format(layout)
}
