package whsync

import (
	"context"
	"testing"
	"time"

	"github.com/tjwells85/whs_backend/eclipse"
	"github.com/tjwells85/whs_backend/models"
)

type fakeShipViaStore struct {
	byName  map[string]models.ShipVia
	created []models.NewShipVia
}

func newFakeShipViaStore(names ...string) *fakeShipViaStore {
	f := &fakeShipViaStore{byName: map[string]models.ShipVia{}}
	for i, n := range names {
		f.byName[n] = models.ShipVia{ID: i + 1, Name: n, Type: models.ShipViaTypeWillCall}
	}
	return f
}

func (f *fakeShipViaStore) FindByName(_ context.Context, name string) (*models.ShipVia, error) {
	if sv, ok := f.byName[name]; ok {
		return &sv, nil
	}
	return nil, nil
}

func (f *fakeShipViaStore) Create(_ context.Context, name string, priority int, svType models.ShipViaType) error {
	f.created = append(f.created, models.NewShipVia{Name: name, Priority: priority, Type: svType})
	f.byName[name] = models.ShipVia{ID: len(f.byName) + 1, Name: name, Priority: priority, Type: svType}
	return nil
}

func (f *fakeShipViaStore) ListNames(_ context.Context) (map[string]struct{}, error) {
	names := make(map[string]struct{}, len(f.byName))
	for n := range f.byName {
		names[n] = struct{}{}
	}
	return names, nil
}

func knownNames(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func trackedTask(id int, orderId, invoiceId string, lastSeen time.Time) models.Task {
	return models.Task{
		ID:         id,
		OrderId:    orderId,
		InvoiceId:  invoiceId,
		BranchId:   "WHS1",
		ShipVia:    "WILL CALL",
		TaskState:  models.TaskStateOpen,
		LastSeen:   lastSeen,
		ActiveTime: 60,
		OrderType:  OrderTypeOf(orderId),
		CreatedAt:  lastSeen.Add(-time.Hour),
	}
}

func snapshotTask(orderId, invoiceId string) eclipse.PickTask {
	return eclipse.PickTask{
		OrderId:   orderId,
		InvoiceId: invoiceId,
		BranchId:  "WHS1",
		ShipVia:   "WILL CALL",
		TaskState: "Open",
	}
}

func TestParsePickTaskNormalization(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	pt := eclipse.PickTask{
		OrderId:   "S1234001",
		InvoiceId: "1",
		BranchId:  "WHS1",
		ShipVia:   "OUR TRUCK",
		TaskState: "Open",
	}
	task := ParsePickTask(pt, now)

	if task.PickGroup != "DEFAULT" {
		t.Fatalf("empty pickGroup expected DEFAULT, got %q", task.PickGroup)
	}
	if task.AssignedUserId != "UNASSIGNED" {
		t.Fatalf("empty assignedUserId expected UNASSIGNED, got %q", task.AssignedUserId)
	}
	if task.TransferShippingBranch != nil || task.TransferReceivingBranch != nil {
		t.Fatal("blank transfer branches should stay nil")
	}
	if !task.LastSeen.Equal(now) {
		t.Fatalf("lastSeen expected %v, got %v", now, task.LastSeen)
	}
	if task.ActiveTime != 0 {
		t.Fatalf("fresh parse expected activeTime 0, got %d", task.ActiveTime)
	}
	if task.OrderType != models.OrderTypeSale {
		t.Fatalf("S-order expected SaleOrder, got %s", task.OrderType)
	}

	pt = eclipse.PickTask{
		OrderId:                 "T5678001",
		InvoiceId:               "1",
		PickGroup:               "ZONE2",
		AssignedUserId:          "JDOE",
		TransferShippingBranch:  "WHS1",
		TransferReceivingBranch: "WHS2",
	}
	task = ParsePickTask(pt, now)
	if task.PickGroup != "ZONE2" || task.AssignedUserId != "JDOE" {
		t.Fatal("populated fields must pass through untouched")
	}
	if task.TransferShippingBranch == nil || *task.TransferShippingBranch != "WHS1" {
		t.Fatalf("transferShippingBranch expected WHS1, got %v", task.TransferShippingBranch)
	}
	if task.TransferReceivingBranch == nil || *task.TransferReceivingBranch != "WHS2" {
		t.Fatalf("transferReceivingBranch expected WHS2, got %v", task.TransferReceivingBranch)
	}
	if task.OrderType != models.OrderTypeTransfer {
		t.Fatalf("T-order expected TransferOrder, got %s", task.OrderType)
	}
}

func TestAdjustedCloseTime(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	task := models.Task{
		CreatedAt:  now.Add(-10 * time.Minute),
		LastSeen:   now,
		ActiveTime: 300,
	}
	if got := AdjustedCloseTime(&task); got != 300.0 {
		t.Fatalf("expected adjusted close time 300.0, got %v", got)
	}

	task.ActiveTime = 0
	if got := AdjustedCloseTime(&task); got != 0.0 {
		t.Fatalf("zero active time expected 0.0, got %v", got)
	}
}

func TestHandleMergePartition(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	existing := []models.Task{
		trackedTask(1, "S1000001", "1", now.Add(-time.Minute)),
		trackedTask(2, "S1000002", "1", now.Add(-time.Minute)),
		trackedTask(3, "S1000003", "1", now.Add(-time.Minute)),
	}
	snapshot := []eclipse.PickTask{
		snapshotTask("S1000001", "1"),
		snapshotTask("S1000003", "1"),
		snapshotTask("S1000004", "1"),
	}

	res, err := HandleMerge(context.Background(), existing, snapshot, knownNames("WILL CALL"), newFakeShipViaStore("WILL CALL"), true, now)
	if err != nil {
		t.Fatalf("HandleMerge error: %v", err)
	}

	if len(res.CloseIds) != 1 || res.CloseIds[0] != 2 {
		t.Fatalf("expected only task 2 closed, got %v", res.CloseIds)
	}
	if len(res.CloseTimes) != len(res.CloseIds) {
		t.Fatalf("close times and ids must stay parallel: %d vs %d", len(res.CloseTimes), len(res.CloseIds))
	}
	if len(res.Update) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(res.Update))
	}
	if res.Update[0].ID != 1 || res.Update[1].ID != 3 {
		t.Fatalf("unexpected update ids: %d, %d", res.Update[0].ID, res.Update[1].ID)
	}
	if len(res.Add) != 1 || res.Add[0].OrderId != "S1000004" {
		t.Fatalf("expected only S1000004 added, got %v", res.Add)
	}
}

func TestHandleMergeClosurePolicy(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	recent := now.Add(-time.Minute)
	stale := now.Add(-5 * time.Minute)

	cases := []struct {
		name       string
		existing   []models.Task
		snapshot   []eclipse.PickTask
		wantCloses int
	}{
		{
			name: "empty snapshot closes small tracked set",
			existing: []models.Task{
				trackedTask(1, "S1000001", "1", recent),
				trackedTask(2, "S1000002", "1", recent),
			},
			snapshot:   nil,
			wantCloses: 2,
		},
		{
			name: "empty snapshot keeps large recent set open",
			existing: []models.Task{
				trackedTask(1, "S1000001", "1", recent),
				trackedTask(2, "S1000002", "1", recent),
				trackedTask(3, "S1000003", "1", recent),
			},
			snapshot:   nil,
			wantCloses: 0,
		},
		{
			name: "empty snapshot still closes stale tasks",
			existing: []models.Task{
				trackedTask(1, "S1000001", "1", stale),
				trackedTask(2, "S1000002", "1", recent),
				trackedTask(3, "S1000003", "1", recent),
			},
			snapshot:   nil,
			wantCloses: 1,
		},
		{
			name: "non-empty snapshot closes missing tasks immediately",
			existing: []models.Task{
				trackedTask(1, "S1000001", "1", recent),
				trackedTask(2, "S1000002", "1", recent),
				trackedTask(3, "S1000003", "1", recent),
				trackedTask(4, "S1000004", "1", recent),
			},
			snapshot:   []eclipse.PickTask{snapshotTask("S1000001", "1")},
			wantCloses: 3,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := HandleMerge(context.Background(), tc.existing, tc.snapshot, knownNames("WILL CALL"), newFakeShipViaStore("WILL CALL"), false, now)
			if err != nil {
				t.Fatalf("HandleMerge error: %v", err)
			}
			if len(res.CloseIds) != tc.wantCloses {
				t.Fatalf("expected %d closes, got %v", tc.wantCloses, res.CloseIds)
			}
		})
	}
}

func TestHandleMergeActiveTime(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	existing := []models.Task{trackedTask(1, "S1000001", "1", now.Add(-90*time.Second))}
	snapshot := []eclipse.PickTask{
		snapshotTask("S1000001", "1"),
		snapshotTask("S1000002", "1"),
	}

	res, err := HandleMerge(context.Background(), existing, snapshot, knownNames("WILL CALL"), newFakeShipViaStore("WILL CALL"), true, now)
	if err != nil {
		t.Fatalf("HandleMerge error: %v", err)
	}
	if res.Update[0].Body.ActiveTime != 150 {
		t.Fatalf("active cycle expected activeTime 60+90=150, got %d", res.Update[0].Body.ActiveTime)
	}
	if res.Add[0].ActiveTime != 1 {
		t.Fatalf("active cycle expected new task activeTime 1, got %d", res.Add[0].ActiveTime)
	}

	res, err = HandleMerge(context.Background(), existing, snapshot, knownNames("WILL CALL"), newFakeShipViaStore("WILL CALL"), false, now)
	if err != nil {
		t.Fatalf("HandleMerge error: %v", err)
	}
	if res.Update[0].Body.ActiveTime != 60 {
		t.Fatalf("inactive cycle must not change activeTime, got %d", res.Update[0].Body.ActiveTime)
	}
	if res.Add[0].ActiveTime != 0 {
		t.Fatalf("inactive cycle expected new task activeTime 0, got %d", res.Add[0].ActiveTime)
	}
}

func TestHandleMergeRerunIsStable(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	existing := []models.Task{
		trackedTask(1, "S1000001", "1", now.Add(-time.Minute)),
		trackedTask(2, "T2000001", "1", now.Add(-time.Minute)),
	}
	snapshot := []eclipse.PickTask{
		snapshotTask("S1000001", "1"),
		snapshotTask("T2000001", "1"),
	}

	first, err := HandleMerge(context.Background(), existing, snapshot, knownNames("WILL CALL"), newFakeShipViaStore("WILL CALL"), true, now)
	if err != nil {
		t.Fatalf("HandleMerge error: %v", err)
	}
	if len(first.Update) != 2 || len(first.CloseIds) != 0 || len(first.Add) != 0 {
		t.Fatalf("matching sets expected updates only, got %+v", first)
	}

	// Apply the updates and run again with the same report. Nothing may
	// close, nothing new may appear, and active time must hold still.
	applied := make([]models.Task, 0, len(first.Update))
	for _, up := range first.Update {
		body := up.Body
		body.ID = up.ID
		applied = append(applied, body)
	}

	second, err := HandleMerge(context.Background(), applied, snapshot, knownNames("WILL CALL"), newFakeShipViaStore("WILL CALL"), false, now)
	if err != nil {
		t.Fatalf("HandleMerge error: %v", err)
	}
	if len(second.CloseIds) != 0 || len(second.Add) != 0 {
		t.Fatalf("re-run expected no closes or adds, got %+v", second)
	}
	if len(second.Update) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(second.Update))
	}
	for i := range second.Update {
		if second.Update[i].Body.ActiveTime != first.Update[i].Body.ActiveTime {
			t.Fatalf("task %d active time drifted: %d -> %d",
				second.Update[i].ID, first.Update[i].Body.ActiveTime, second.Update[i].Body.ActiveTime)
		}
	}
}

func TestHandleMergeAutoCreatesShipVia(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	store := newFakeShipViaStore()

	pt := snapshotTask("S1000001", "1")
	pt.ShipVia = "UPS GROUND"
	pt.PickPriority = "3"

	res, err := HandleMerge(context.Background(), nil, []eclipse.PickTask{pt, pt}, knownNames(), store, true, now)
	if err != nil {
		t.Fatalf("HandleMerge error: %v", err)
	}
	if len(res.Add) != 2 {
		t.Fatalf("expected 2 adds, got %d", len(res.Add))
	}
	if len(store.created) != 1 {
		t.Fatalf("expected one ship via created, got %d", len(store.created))
	}
	created := store.created[0]
	if created.Name != "UPS GROUND" || created.Priority != 3 || created.Type != models.ShipViaTypeWillCall {
		t.Fatalf("unexpected ship via created: %+v", created)
	}
}
