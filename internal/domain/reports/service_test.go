package reports

import "testing"

func TestBuildSummaryCounts(t *testing.T) {
	counts := map[string]int{
		"draft":              3,
		"pending_supervisor": 2,
		"completed":          4,
		"rejected":           1,
	}
	summary := buildSummary(counts, 3.5, 12)

	if summary.Total != 10 {
		t.Fatalf("total = %d, want 10", summary.Total)
	}
	if summary.Completed != 4 {
		t.Fatalf("completed = %d, want 4", summary.Completed)
	}
	if summary.Rejected != 1 {
		t.Fatalf("rejected = %d, want 1", summary.Rejected)
	}
	if summary.InFlight != 5 {
		t.Fatalf("inFlight = %d, want 5", summary.InFlight)
	}
	if summary.AvgRating != 3.5 || summary.RatingCount != 12 {
		t.Fatalf("ratings = %v/%d, want 3.5/12", summary.AvgRating, summary.RatingCount)
	}
}

func TestBuildSummaryCanonicalizesAliases(t *testing.T) {
	// pending_final is an alias for the branch final assessment stage,
	// it must count as in flight rather than falling through.
	summary := buildSummary(map[string]int{"pending_final": 2}, 0, 0)
	if summary.InFlight != 2 {
		t.Fatalf("inFlight = %d, want 2", summary.InFlight)
	}
}

func TestBuildSummaryEmpty(t *testing.T) {
	summary := buildSummary(map[string]int{}, 0, 0)
	if summary.Total != 0 || summary.InFlight != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
