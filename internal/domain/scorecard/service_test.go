package scorecard

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"
)

type fakeStore struct {
	perspectives []StrategicPerspective
	weights      map[string]DepartmentWeight
	objectives   map[string]StrategicObjective
	nextID       int
}

func newFakeStore(perspectives []StrategicPerspective) *fakeStore {
	return &fakeStore{
		perspectives: append([]StrategicPerspective(nil), perspectives...),
		weights:      map[string]DepartmentWeight{},
		objectives:   map[string]StrategicObjective{},
	}
}

func (f *fakeStore) id() string {
	f.nextID++
	return "id-" + strconv.Itoa(f.nextID)
}

func (f *fakeStore) ListPerspectives(_ context.Context, _ string) ([]StrategicPerspective, error) {
	return f.perspectives, nil
}

func (f *fakeStore) CreatePerspective(_ context.Context, _ string, payload StrategicPerspective) (string, error) {
	payload.ID = f.id()
	f.perspectives = append(f.perspectives, payload)
	return payload.ID, nil
}

func (f *fakeStore) PerspectiveReferenced(_ context.Context, _, perspectiveID string) (bool, error) {
	for _, w := range f.weights {
		if w.StrategyPerspectiveID == perspectiveID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpdatePerspectiveType(_ context.Context, _, id, ptype string) error {
	for i, p := range f.perspectives {
		if p.ID == id {
			f.perspectives[i].Type = ptype
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) DeletePerspective(_ context.Context, _, id string) error {
	for i, p := range f.perspectives {
		if p.ID == id {
			f.perspectives = append(f.perspectives[:i], f.perspectives[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) GetWeight(_ context.Context, _, id string) (DepartmentWeight, error) {
	w, ok := f.weights[id]
	if !ok {
		return DepartmentWeight{}, ErrNotFound
	}
	return w, nil
}

func (f *fakeStore) ListDepartmentWeights(_ context.Context, _, departmentID string) ([]DepartmentWeight, error) {
	var out []DepartmentWeight
	for _, w := range f.weights {
		if w.DepartmentID == departmentID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateWeight(_ context.Context, _ string, weight DepartmentWeight) (string, error) {
	weight.ID = f.id()
	f.weights[weight.ID] = weight
	return weight.ID, nil
}

func (f *fakeStore) UpdateWeight(_ context.Context, _, id string, weight float64) error {
	w, ok := f.weights[id]
	if !ok {
		return ErrNotFound
	}
	w.Weight = weight
	f.weights[id] = w
	return nil
}

func (f *fakeStore) DeleteWeight(_ context.Context, _, id string) error {
	if _, ok := f.weights[id]; !ok {
		return ErrNotFound
	}
	delete(f.weights, id)
	return nil
}

func (f *fakeStore) ListObjectives(_ context.Context, _, _ string) ([]StrategicObjective, error) {
	var out []StrategicObjective
	for _, o := range f.objectives {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeStore) CreateObjective(_ context.Context, _ string, payload StrategicObjective) (string, error) {
	payload.ID = f.id()
	f.objectives[payload.ID] = payload
	return payload.ID, nil
}

func (f *fakeStore) UpdateObjectiveStatus(_ context.Context, _, id, status string) error {
	o, ok := f.objectives[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	f.objectives[id] = o
	return nil
}

func TestCreateWeightValidatesAgainstCurrentWindow(t *testing.T) {
	store := newFakeStore(testPerspectives)
	svc := NewService(store)
	ctx := context.Background()

	// Fill quantitative to 70.
	for _, seed := range []struct {
		perspective string
		weight      string
	}{
		{"p-fin", "40"},
		{"p-cust", "30"},
	} {
		_, issues, err := svc.CreateWeight(ctx, "t1", WeightForm{
			DepartmentID:          "dept-1",
			StrategyPerspectiveID: seed.perspective,
			Weight:                seed.weight,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(issues) != 0 {
			t.Fatalf("unexpected issues seeding window: %v", issues)
		}
	}

	// Third quantitative perspective does not exist in the catalog for
	// dept-1 beyond p-fin/p-cust, so use the qualitative one over ceiling.
	_, issues, err := svc.CreateWeight(ctx, "t1", WeightForm{
		DepartmentID:          "dept-1",
		StrategyPerspectiveID: "p-learn",
		Weight:                "11",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issues["weight"] == "" {
		t.Fatalf("expected qualitative ceiling issue, got %v", issues)
	}
}

func TestCreateWeightRejectsDuplicatePair(t *testing.T) {
	store := newFakeStore(testPerspectives)
	svc := NewService(store)
	ctx := context.Background()

	if _, issues, err := svc.CreateWeight(ctx, "t1", WeightForm{
		DepartmentID: "dept-1", StrategyPerspectiveID: "p-fin", Weight: "40",
	}); err != nil || len(issues) != 0 {
		t.Fatalf("seed failed: %v %v", issues, err)
	}

	_, issues, err := svc.CreateWeight(ctx, "t1", WeightForm{
		DepartmentID: "dept-1", StrategyPerspectiveID: "p-fin", Weight: "10",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issues["strategyPerspectiveId"] == "" {
		t.Fatalf("expected duplicate issue, got %v", issues)
	}
}

func TestUpdateWeightExcludesOwnRow(t *testing.T) {
	store := newFakeStore(testPerspectives)
	svc := NewService(store)
	ctx := context.Background()

	id, issues, err := svc.CreateWeight(ctx, "t1", WeightForm{
		DepartmentID: "dept-1", StrategyPerspectiveID: "p-fin", Weight: "40",
	})
	if err != nil || len(issues) != 0 {
		t.Fatalf("seed failed: %v %v", issues, err)
	}
	if _, issues, err = svc.CreateWeight(ctx, "t1", WeightForm{
		DepartmentID: "dept-1", StrategyPerspectiveID: "p-cust", Weight: "30",
	}); err != nil || len(issues) != 0 {
		t.Fatalf("seed failed: %v %v", issues, err)
	}

	// Sibling total 30, so 60 fits.
	issues, err = svc.UpdateWeight(ctx, "t1", id, WeightForm{
		DepartmentID: "dept-1", StrategyPerspectiveID: "p-fin", Weight: "60",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("expected update to pass, got %v", issues)
	}
	if store.weights[id].Weight != 60 {
		t.Fatalf("expected persisted weight 60, got %v", store.weights[id].Weight)
	}

	// Lowering back down is fine too; the row never competes with its own
	// previous value.
	issues, err = svc.UpdateWeight(ctx, "t1", id, WeightForm{
		DepartmentID: "dept-1", StrategyPerspectiveID: "p-fin", Weight: "50",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issues["weight"] != "" {
		t.Fatalf("expected 50 to fit (sibling total 30), got %v", issues)
	}
}

func TestDeleteWeightFreesCapacity(t *testing.T) {
	store := newFakeStore(testPerspectives)
	svc := NewService(store)
	ctx := context.Background()

	id, _, err := svc.CreateWeight(ctx, "t1", WeightForm{
		DepartmentID: "dept-1", StrategyPerspectiveID: "p-fin", Weight: "100",
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if _, issues, _ := svc.CreateWeight(ctx, "t1", WeightForm{
		DepartmentID: "dept-1", StrategyPerspectiveID: "p-cust", Weight: "10",
	}); issues["weight"] == "" {
		t.Fatal("expected ceiling issue while window is full")
	}

	if err := svc.DeleteWeight(ctx, "t1", id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, issues, _ := svc.CreateWeight(ctx, "t1", WeightForm{
		DepartmentID: "dept-1", StrategyPerspectiveID: "p-cust", Weight: "10",
	}); len(issues) != 0 {
		t.Fatalf("expected capacity after delete, got %v", issues)
	}
}

func TestDepartmentsValidateIndependently(t *testing.T) {
	store := newFakeStore(testPerspectives)
	svc := NewService(store)
	ctx := context.Background()

	if _, issues, _ := svc.CreateWeight(ctx, "t1", WeightForm{
		DepartmentID: "dept-1", StrategyPerspectiveID: "p-fin", Weight: "100",
	}); len(issues) != 0 {
		t.Fatalf("seed failed: %v", issues)
	}

	// Another department has its own window.
	if _, issues, _ := svc.CreateWeight(ctx, "t1", WeightForm{
		DepartmentID: "dept-2", StrategyPerspectiveID: "p-fin", Weight: "100",
	}); len(issues) != 0 {
		t.Fatalf("expected independent department window, got %v", issues)
	}
}

func TestRemainingReportsStaleSnapshots(t *testing.T) {
	store := newFakeStore(testPerspectives)
	svc := NewService(store)
	svc.SnapshotMaxAge = time.Minute
	ctx := context.Background()

	capacity, err := svc.Remaining(ctx, "t1", "dept-1", "p-fin", time.Now().Add(-5*time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !capacity.StaleTotal {
		t.Fatal("expected stale totals warning for an old snapshot")
	}

	capacity, err = svc.Remaining(ctx, "t1", "dept-1", "p-fin", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capacity.StaleTotal {
		t.Fatal("missing snapshot timestamp must not be flagged stale")
	}
	if capacity.Remaining != 100 {
		t.Fatalf("expected full headroom for empty department, got %+v", capacity)
	}
}

func TestPerspectiveTypeLockedOnceReferenced(t *testing.T) {
	store := newFakeStore(testPerspectives)
	svc := NewService(store)
	ctx := context.Background()

	if err := svc.UpdatePerspectiveType(ctx, "t1", "p-fin", "qualitative"); err != nil {
		t.Fatalf("unexpected error before any reference: %v", err)
	}
	if err := svc.UpdatePerspectiveType(ctx, "t1", "p-fin", "quantitative"); err != nil {
		t.Fatalf("unexpected error restoring type: %v", err)
	}

	if _, issues, err := svc.CreateWeight(ctx, "t1", WeightForm{
		DepartmentID: "dept-1", StrategyPerspectiveID: "p-fin", Weight: "40",
	}); err != nil || len(issues) != 0 {
		t.Fatalf("seed failed: %v %v", issues, err)
	}

	if err := svc.UpdatePerspectiveType(ctx, "t1", "p-fin", "qualitative"); !errors.Is(err, ErrImmutablePerspective) {
		t.Fatalf("expected ErrImmutablePerspective, got %v", err)
	}
	if err := svc.UpdatePerspectiveType(ctx, "t1", "p-cust", "money"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus for unknown type, got %v", err)
	}
}

func TestDeletePerspectiveBlockedWhileInUse(t *testing.T) {
	store := newFakeStore(testPerspectives)
	svc := NewService(store)
	ctx := context.Background()

	if _, issues, err := svc.CreateWeight(ctx, "t1", WeightForm{
		DepartmentID: "dept-1", StrategyPerspectiveID: "p-fin", Weight: "40",
	}); err != nil || len(issues) != 0 {
		t.Fatalf("seed failed: %v %v", issues, err)
	}

	if err := svc.DeletePerspective(ctx, "t1", "p-fin"); !errors.Is(err, ErrPerspectiveInUse) {
		t.Fatalf("expected ErrPerspectiveInUse, got %v", err)
	}
	if err := svc.DeletePerspective(ctx, "t1", "p-cust"); err != nil {
		t.Fatalf("unexpected error deleting unused perspective: %v", err)
	}
}

func TestRemainingUnknownPerspective(t *testing.T) {
	svc := NewService(newFakeStore(testPerspectives))
	ctx := context.Background()

	if _, err := svc.Remaining(ctx, "t1", "dept-1", "p-missing", time.Time{}); !errors.Is(err, ErrUnknownPerspective) {
		t.Fatalf("expected ErrUnknownPerspective, got %v", err)
	}
}

func TestCreatePerspectiveValidation(t *testing.T) {
	svc := NewService(newFakeStore(nil))
	ctx := context.Background()

	_, issues, err := svc.CreatePerspective(ctx, "t1", StrategicPerspective{Name: "", Type: "monetary"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issues["name"] == "" || issues["type"] == "" {
		t.Fatalf("expected name and type issues, got %v", issues)
	}

	id, issues, err := svc.CreatePerspective(ctx, "t1", StrategicPerspective{Name: "Financial", Type: "Quantitative"})
	if err != nil || len(issues) != 0 {
		t.Fatalf("unexpected failure: %v %v", issues, err)
	}
	if id == "" {
		t.Fatal("expected created id")
	}
}
