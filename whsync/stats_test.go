package whsync

import (
	"testing"
	"time"

	"github.com/tjwells85/whs_backend/models"
)

func statTask(orderId, shipVia string) models.Task {
	return models.Task{
		OrderId:   orderId,
		ShipVia:   shipVia,
		OrderType: OrderTypeOf(orderId),
	}
}

func TestGetMinMaxCount(t *testing.T) {
	cases := []struct {
		name   string
		values []int
		want   MinMaxCount
	}{
		{"empty", nil, MinMaxCount{}},
		{"single", []int{4}, MinMaxCount{Min: 4, Max: 4, Count: 0}},
		{"mixed", []int{5, 3, 8, 8, 2}, MinMaxCount{Min: 2, Max: 8, Count: 5}},
		{"monotonic up", []int{1, 2, 4}, MinMaxCount{Min: 1, Max: 4, Count: 3}},
		{"monotonic down", []int{9, 5, 1}, MinMaxCount{Min: 1, Max: 9, Count: 0}},
		{"zeros", []int{0, 0, 0}, MinMaxCount{Min: 0, Max: 0, Count: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := GetMinMaxCount(tc.values); got != tc.want {
				t.Fatalf("GetMinMaxCount(%v) expected %+v, got %+v", tc.values, tc.want, got)
			}
		})
	}
}

func TestAvg(t *testing.T) {
	if got := Avg(nil); got != 0 {
		t.Fatalf("empty Avg expected 0, got %v", got)
	}
	if got := Avg([]float64{2, 4, 6}); got != 4 {
		t.Fatalf("Avg expected 4, got %v", got)
	}
	if got := Avg([]float64{1, 2}, 1); got != 1.5 {
		t.Fatalf("rounded Avg expected 1.5, got %v", got)
	}
}

func TestGenNewStats(t *testing.T) {
	now := time.Date(2026, 3, 4, 14, 30, 0, 0, time.UTC)
	tasks := []models.Task{
		statTask("S1000001", "WILL CALL"),
		statTask("S1000002", "OUR TRUCK"),
		statTask("T1000003", "TRANSFER"),
		statTask("W1000004", "WILL CALL"),
	}
	merged := MergeResult{
		CloseIds:   []int{7},
		CloseTimes: []float64{120.5},
		Update:     []TaskUpdate{{ID: 1}},
		Add: []models.Task{
			{ShipVia: "WILL CALL", PickPriority: "1"},
			{ShipVia: "WILL CALL", PickPriority: "2"},
			{ShipVia: "TRANSFER", PickPriority: "5"},
		},
	}

	stat := GenNewStats("WHS1", tasks, merged, now)

	wantStart := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	if !stat.Start.Equal(wantStart) || !stat.End.Equal(wantStart.AddDate(0, 0, 1)) {
		t.Fatalf("expected period [%v, %v), got [%v, %v)", wantStart, wantStart.AddDate(0, 0, 1), stat.Start, stat.End)
	}
	if stat.Status != models.StatStatusCurrent {
		t.Fatalf("new stat expected Current, got %s", stat.Status)
	}
	if stat.BranchId != "WHS1" {
		t.Fatalf("branch expected WHS1, got %s", stat.BranchId)
	}
	if stat.StartTotal != 4 || stat.EndTotal != 4 {
		t.Fatalf("totals expected 4/4, got %d/%d", stat.StartTotal, stat.EndTotal)
	}
	if len(stat.Totals) != 1 || stat.Totals[0] != 4 {
		t.Fatalf("totals sequence expected [4], got %v", stat.Totals)
	}
	// The work order counts in totals only, not in any category.
	if len(stat.SalesOrders) != 1 || stat.SalesOrders[0] != 2 {
		t.Fatalf("sales sequence expected [2], got %v", stat.SalesOrders)
	}
	if len(stat.Transfers) != 1 || stat.Transfers[0] != 1 {
		t.Fatalf("transfer sequence expected [1], got %v", stat.Transfers)
	}
	if len(stat.Purchases) != 1 || stat.Purchases[0] != 0 {
		t.Fatalf("purchase sequence expected [0], got %v", stat.Purchases)
	}
	if stat.Closed != 1 || stat.Updated != 1 || stat.Added != 3 {
		t.Fatalf("counters expected 1/1/3, got %d/%d/%d", stat.Closed, stat.Updated, stat.Added)
	}
	if len(stat.ShipVias) != 2 {
		t.Fatalf("expected 2 ship via tallies, got %v", stat.ShipVias)
	}
	if stat.ShipVias[0].Name != "WILL CALL" || stat.ShipVias[0].Count != 2 || stat.ShipVias[0].Priority != "1" {
		t.Fatalf("first tally keeps first-seen priority: %+v", stat.ShipVias[0])
	}
	if stat.ShipVias[1].Name != "TRANSFER" || stat.ShipVias[1].Count != 1 {
		t.Fatalf("unexpected second tally: %+v", stat.ShipVias[1])
	}
}

func TestGenStatUpdate(t *testing.T) {
	stat := &models.Stat{
		ID:          1,
		ShipVias:    models.ShipViaStatList{{Name: "WILL CALL", Count: 2, Priority: "1"}},
		Totals:      models.IntList{3},
		SalesOrders: models.IntList{2},
		Transfers:   models.IntList{1},
		Purchases:   models.IntList{0},
		Closed:      1,
		CloseTimes:  models.FloatList{120.5},
		CloseIds:    models.IntList{7},
		Updated:     4,
		Added:       3,
	}
	tasks := []models.Task{
		statTask("S1000001", "WILL CALL"),
		statTask("P1000002", "UPS GROUND"),
	}
	merged := MergeResult{
		CloseIds:   []int{9, 12},
		CloseTimes: []float64{33.3, 45.0},
		Update:     []TaskUpdate{{ID: 1}, {ID: 2}},
		Add: []models.Task{
			{ShipVia: "WILL CALL", PickPriority: "4"},
			{ShipVia: "UPS GROUND", PickPriority: "2"},
		},
	}

	patch := GenStatUpdate(stat, tasks, merged)

	wantTotals := models.IntList{3, 2}
	if len(patch.Totals) != 2 || patch.Totals[0] != wantTotals[0] || patch.Totals[1] != wantTotals[1] {
		t.Fatalf("totals expected %v, got %v", wantTotals, patch.Totals)
	}
	if patch.SalesOrders[1] != 1 || patch.Transfers[1] != 0 || patch.Purchases[1] != 1 {
		t.Fatalf("category append expected 1/0/1, got %d/%d/%d",
			patch.SalesOrders[1], patch.Transfers[1], patch.Purchases[1])
	}
	if patch.Closed != 3 || patch.Updated != 6 || patch.Added != 5 {
		t.Fatalf("counters expected 3/6/5, got %d/%d/%d", patch.Closed, patch.Updated, patch.Added)
	}
	if len(patch.CloseIds) != 3 || patch.CloseIds[2] != 12 {
		t.Fatalf("close ids expected concat ending in 12, got %v", patch.CloseIds)
	}
	if len(patch.CloseTimes) != 3 || patch.CloseTimes[0] != 120.5 {
		t.Fatalf("close times expected concat starting 120.5, got %v", patch.CloseTimes)
	}
	if patch.EndTotal != 2 {
		t.Fatalf("end total expected 2, got %d", patch.EndTotal)
	}
	if len(patch.ShipVias) != 2 {
		t.Fatalf("expected 2 merged tallies, got %v", patch.ShipVias)
	}
	if patch.ShipVias[0].Count != 3 || patch.ShipVias[0].Priority != "1" {
		t.Fatalf("existing tally should accumulate and keep priority: %+v", patch.ShipVias[0])
	}
	if patch.ShipVias[1].Name != "UPS GROUND" || patch.ShipVias[1].Count != 1 {
		t.Fatalf("unexpected new tally: %+v", patch.ShipVias[1])
	}

	// Source stat sequences must not be mutated by the append.
	if len(stat.Totals) != 1 || stat.Closed != 1 {
		t.Fatalf("source stat mutated: totals=%v closed=%d", stat.Totals, stat.Closed)
	}
}

func TestParseStats(t *testing.T) {
	start := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	stat := &models.Stat{
		BranchId: "WHS1",
		Start:    start,
		End:      start.AddDate(0, 0, 1),
		ShipVias: models.ShipViaStatList{
			{Name: "WILL CALL", Count: 4},
			{Name: "OUR TRUCK", Count: 3},
			{Name: "UPS GROUND", Count: 2},
			{Name: "NEVER CONFIGURED", Count: 1},
		},
		StartTotal:  5,
		EndTotal:    8,
		Totals:      models.IntList{5, 3, 8},
		SalesOrders: models.IntList{4, 2, 6},
		Transfers:   models.IntList{1, 1, 2},
		Purchases:   models.IntList{0, 0, 0},
		Closed:      4,
		CloseTimes:  models.FloatList{100, 200},
		Updated:     9,
		Added:       10,
	}
	shipVias := []models.ShipVia{
		{Name: "WILL CALL", Type: models.ShipViaTypeWillCall},
		{Name: "OUR TRUCK", Type: models.ShipViaTypeDelivery},
		{Name: "UPS GROUND", Type: models.ShipViaTypeShipOut},
	}

	parsed := ParseStats(stat, shipVias)

	if parsed.Totals != (MinMaxCount{Min: 3, Max: 8, Count: 5}) {
		t.Fatalf("unexpected totals summary: %+v", parsed.Totals)
	}
	if parsed.AvgCloseTime != 150.0 {
		t.Fatalf("avg close time expected 150.0, got %v", parsed.AvgCloseTime)
	}
	if parsed.DailyNet != 3 {
		t.Fatalf("daily net expected 8-5=3, got %d", parsed.DailyNet)
	}
	if parsed.ShipVias["WILL CALL"] != 4 || parsed.ShipVias["OUR TRUCK"] != 3 || len(parsed.ShipVias) != 4 {
		t.Fatalf("unexpected per-name counts: %v", parsed.ShipVias)
	}
	if parsed.Deliveries != 3 || parsed.ShipOuts != 2 {
		t.Fatalf("bucket counts expected 3 deliveries / 2 shipouts, got %d/%d", parsed.Deliveries, parsed.ShipOuts)
	}
	// Unconfigured names fall into the will-call bucket.
	if parsed.WillCalls != 5 {
		t.Fatalf("will call bucket expected 4+1=5, got %d", parsed.WillCalls)
	}
	if parsed.DateRange != "Mar 4, 2026" {
		t.Fatalf("single day range expected Mar 4, 2026, got %q", parsed.DateRange)
	}
}

func TestCombineStats(t *testing.T) {
	day1 := models.Stat{
		BranchId:    "WHS1",
		Start:       time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		StartTotal:  5,
		EndTotal:    2,
		Totals:      models.IntList{5, 2},
		SalesOrders: models.IntList{4, 1},
		Transfers:   models.IntList{1, 1},
		Purchases:   models.IntList{0, 0},
		ShipVias:    models.ShipViaStatList{{Name: "WILL CALL", Count: 2, Priority: "1"}},
		Closed:      1,
		CloseTimes:  models.FloatList{100},
		CloseIds:    models.IntList{7},
		Updated:     5,
		Added:       4,
	}
	day2 := models.Stat{
		BranchId:    "WHS1",
		Start:       time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		StartTotal:  6,
		EndTotal:    3,
		Totals:      models.IntList{6, 3},
		SalesOrders: models.IntList{5, 2},
		Transfers:   models.IntList{1, 1},
		Purchases:   models.IntList{0, 0},
		ShipVias: models.ShipViaStatList{
			{Name: "WILL CALL", Count: 1, Priority: "2"},
			{Name: "UPS GROUND", Count: 3, Priority: "4"},
		},
		Closed:     2,
		CloseTimes: models.FloatList{200, 300},
		CloseIds:   models.IntList{9, 12},
		Updated:    7,
		Added:      3,
	}
	shipVias := []models.ShipVia{
		{Name: "WILL CALL", Type: models.ShipViaTypeWillCall},
		{Name: "UPS GROUND", Type: models.ShipViaTypeShipOut},
	}

	combined := CombineStats([]models.Stat{day1, day2}, shipVias)

	if !combined.Start.Equal(day1.Start) || !combined.End.Equal(day2.End) {
		t.Fatalf("expected widest range [%v, %v), got [%v, %v)", day1.Start, day2.End, combined.Start, combined.End)
	}
	if combined.StartTotal != 5 || combined.EndTotal != 3 {
		t.Fatalf("boundary totals expected 5/3, got %d/%d", combined.StartTotal, combined.EndTotal)
	}
	// Concatenated sequence [5,2,6,3]: the 2 -> 6 swing across the day
	// boundary counts, which per-day summaries would miss.
	if combined.Totals != (MinMaxCount{Min: 2, Max: 6, Count: 4}) {
		t.Fatalf("unexpected combined totals: %+v", combined.Totals)
	}
	if combined.Closed != 3 || combined.Updated != 12 || combined.Added != 7 {
		t.Fatalf("counters expected 3/12/7, got %d/%d/%d", combined.Closed, combined.Updated, combined.Added)
	}
	if combined.AvgCloseTime != 200.0 {
		t.Fatalf("avg close over concatenated times expected 200.0, got %v", combined.AvgCloseTime)
	}
	if combined.DailyNet != -2 {
		t.Fatalf("net expected 3-5=-2, got %d", combined.DailyNet)
	}
	if combined.ShipVias["WILL CALL"] != 3 || combined.ShipVias["UPS GROUND"] != 3 {
		t.Fatalf("merged per-name counts expected 3/3, got %v", combined.ShipVias)
	}
	if combined.WillCalls != 3 || combined.ShipOuts != 3 || combined.Deliveries != 0 {
		t.Fatalf("buckets expected 3/3/0, got %d/%d/%d", combined.WillCalls, combined.ShipOuts, combined.Deliveries)
	}
	if combined.DateRange != "Mar 2, 2026 - Mar 3, 2026" {
		t.Fatalf("unexpected range label %q", combined.DateRange)
	}

	if empty := CombineStats(nil, nil); empty.Closed != 0 || empty.DateRange != "" {
		t.Fatalf("empty combine expected zero value, got %+v", empty)
	}
}
