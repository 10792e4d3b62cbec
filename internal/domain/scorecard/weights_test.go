package scorecard

import (
	"testing"
	"time"
)

var testPerspectives = []StrategicPerspective{
	{ID: "p-fin", Name: "Financial", Type: "quantitative"},
	{ID: "p-cust", Name: "Customer", Type: "quantitative"},
	{ID: "p-learn", Name: "Learning", Type: "qualitative"},
	{ID: "p-int", Name: "Internal", Type: "qualitative"},
}

func weightRow(id, perspectiveID string, weight float64) DepartmentWeight {
	return DepartmentWeight{
		ID:                    id,
		DepartmentID:          "dept-1",
		StrategyPerspectiveID: perspectiveID,
		Weight:                weight,
		Status:                WeightStatusApproved,
	}
}

func TestComputeTotalsEmptyWindow(t *testing.T) {
	totals := ComputeTotals(nil, testPerspectives, "")
	if totals.Quantitative != 0 || totals.Qualitative != 0 {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
}

func TestComputeTotalsPartitionsByType(t *testing.T) {
	weights := []DepartmentWeight{
		weightRow("w1", "p-fin", 40),
		weightRow("w2", "p-cust", 30),
		weightRow("w3", "p-learn", 4),
	}
	totals := ComputeTotals(weights, testPerspectives, "")
	if totals.Quantitative != 70 {
		t.Fatalf("expected quantitative 70, got %v", totals.Quantitative)
	}
	if totals.Qualitative != 4 {
		t.Fatalf("expected qualitative 4, got %v", totals.Qualitative)
	}
}

func TestComputeTotalsExcludesRowUnderEdit(t *testing.T) {
	weights := []DepartmentWeight{
		weightRow("w1", "p-fin", 40),
		weightRow("w2", "p-cust", 50),
	}
	totals := ComputeTotals(weights, testPerspectives, "w1")
	if totals.Quantitative != 50 {
		t.Fatalf("expected quantitative 50 excluding w1, got %v", totals.Quantitative)
	}
}

func TestComputeTotalsSkipsUnresolvedPerspectives(t *testing.T) {
	weights := []DepartmentWeight{
		weightRow("w1", "p-fin", 40),
		weightRow("w2", "p-ghost", 500),
	}
	totals := ComputeTotals(weights, testPerspectives, "")
	if totals.Quantitative != 40 || totals.Qualitative != 0 {
		t.Fatalf("unresolved perspective must contribute to neither total, got %+v", totals)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	issues := Validate(WeightForm{}, Totals{}, testPerspectives, nil)
	for _, field := range []string{"departmentId", "strategyPerspectiveId", "weight"} {
		if issues[field] == "" {
			t.Fatalf("expected issue for %s, got %v", field, issues)
		}
	}
}

func TestValidateWeightMustBePositiveNumber(t *testing.T) {
	form := WeightForm{DepartmentID: "dept-1", StrategyPerspectiveID: "p-fin"}

	form.Weight = "abc"
	if issues := Validate(form, Totals{}, testPerspectives, nil); issues["weight"] == "" {
		t.Fatalf("expected non-numeric weight issue, got %v", issues)
	}

	form.Weight = "0"
	if issues := Validate(form, Totals{}, testPerspectives, nil); issues["weight"] == "" {
		t.Fatalf("expected non-positive weight issue, got %v", issues)
	}

	form.Weight = "-5"
	if issues := Validate(form, Totals{}, testPerspectives, nil); issues["weight"] == "" {
		t.Fatalf("expected negative weight issue, got %v", issues)
	}
}

func TestValidateQuantitativeCeiling(t *testing.T) {
	// Scenario: department totals 70% quantitative; 35 breaks the ceiling,
	// 30 lands exactly on it.
	totals := Totals{Quantitative: 70}
	form := WeightForm{DepartmentID: "dept-1", StrategyPerspectiveID: "p-fin", Weight: "35"}

	issues := Validate(form, totals, testPerspectives, nil)
	want := "Total quantitative weight cannot exceed 100%. Current total: 70%"
	if issues["weight"] != want {
		t.Fatalf("expected %q, got %q", want, issues["weight"])
	}

	form.Weight = "30"
	if issues := Validate(form, totals, testPerspectives, nil); len(issues) != 0 {
		t.Fatalf("expected 30 to fit exactly, got %v", issues)
	}
}

func TestValidateQualitativeCeilingIndependent(t *testing.T) {
	totals := Totals{Quantitative: 100, Qualitative: 4}
	form := WeightForm{DepartmentID: "dept-1", StrategyPerspectiveID: "p-learn", Weight: "6"}
	if issues := Validate(form, totals, testPerspectives, nil); len(issues) != 0 {
		t.Fatalf("qualitative headroom must not be affected by quantitative total, got %v", issues)
	}

	form.Weight = "7"
	issues := Validate(form, totals, testPerspectives, nil)
	want := "Total qualitative weight cannot exceed 10%. Current total: 4%"
	if issues["weight"] != want {
		t.Fatalf("expected %q, got %q", want, issues["weight"])
	}
}

func TestValidateEditExcludesOwnOldValue(t *testing.T) {
	// Raising w1 from 40 to 60: siblings total 50, 50+60 breaks the
	// ceiling; siblings total 30, 30+60 fits.
	form := WeightForm{ID: "w1", DepartmentID: "dept-1", StrategyPerspectiveID: "p-fin", Weight: "60"}

	overTotals := ComputeTotals([]DepartmentWeight{
		weightRow("w1", "p-fin", 40),
		weightRow("w2", "p-cust", 50),
	}, testPerspectives, "w1")
	if issues := Validate(form, overTotals, testPerspectives, nil); issues["weight"] == "" {
		t.Fatalf("expected ceiling breach at sibling total 50, got %v", issues)
	}

	okTotals := ComputeTotals([]DepartmentWeight{
		weightRow("w1", "p-fin", 40),
		weightRow("w2", "p-cust", 30),
	}, testPerspectives, "w1")
	if issues := Validate(form, okTotals, testPerspectives, nil); len(issues) != 0 {
		t.Fatalf("expected 60 to fit at sibling total 30, got %v", issues)
	}
}

func TestValidateDuplicateAssignment(t *testing.T) {
	existing := []DepartmentWeight{weightRow("w1", "p-fin", 40)}

	form := WeightForm{DepartmentID: "dept-1", StrategyPerspectiveID: "p-fin", Weight: "10"}
	issues := Validate(form, Totals{Quantitative: 40}, testPerspectives, existing)
	if issues["strategyPerspectiveId"] == "" {
		t.Fatalf("expected duplicate assignment issue, got %v", issues)
	}

	// Editing the existing row for that pair is fine.
	form.ID = "w1"
	issues = Validate(form, ComputeTotals(existing, testPerspectives, "w1"), testPerspectives, existing)
	if len(issues) != 0 {
		t.Fatalf("expected edit of own row to pass, got %v", issues)
	}
}

func TestValidateUnresolvedTypeSkipsCeiling(t *testing.T) {
	form := WeightForm{DepartmentID: "dept-1", StrategyPerspectiveID: "p-ghost", Weight: "9999"}
	if issues := Validate(form, Totals{Quantitative: 100, Qualitative: 10}, testPerspectives, nil); len(issues) != 0 {
		t.Fatalf("unresolved type must pass through, got %v", issues)
	}
}

func TestRemainingCapacity(t *testing.T) {
	totals := Totals{Quantitative: 70, Qualitative: 4}

	capacity := RemainingCapacity("quantitative", totals)
	if capacity.Ceiling != 100 || capacity.Remaining != 30 {
		t.Fatalf("unexpected quantitative capacity: %+v", capacity)
	}

	capacity = RemainingCapacity("qualitative", totals)
	if capacity.Ceiling != 10 || capacity.Remaining != 6 {
		t.Fatalf("unexpected qualitative capacity: %+v", capacity)
	}

	capacity = RemainingCapacity("mystery", totals)
	if capacity.Ceiling != 0 || capacity.Remaining != 0 {
		t.Fatalf("unknown type must report no headroom, got %+v", capacity)
	}
}

func TestTotalsStale(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	if TotalsStale(time.Time{}, now, time.Minute) {
		t.Fatal("missing snapshot timestamp is not stale")
	}
	if TotalsStale(now.Add(-30*time.Second), now, time.Minute) {
		t.Fatal("snapshot within max age is not stale")
	}
	if !TotalsStale(now.Add(-2*time.Minute), now, time.Minute) {
		t.Fatal("snapshot past max age must be stale")
	}
}
