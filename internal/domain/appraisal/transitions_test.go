package appraisal

import "testing"

func TestNextStatusChain(t *testing.T) {
	chain := map[string]string{
		"submitted":               StatusPendingSupervisor,
		"supervisor_completed":    StatusEmployeeReview,
		"supervisor_reviewed":     StatusEmployeeReview,
		"employee_review":         StatusPendingHOD,
		"employee_reviewing":      StatusPendingHOD,
		"hod":                     StatusPeerApproval,
		"pending_hod":             StatusPeerApproval,
		"peer_approval":           StatusBranchSupervisor,
		"branch_supervisor":       StatusPendingFinal,
		"branch_final_assessment": StatusCompleted,
		"pending_final":           StatusCompleted,
	}
	for from, want := range chain {
		next, ok := NextStatus(from)
		if !ok {
			t.Fatalf("expected %s to have an approval transition", from)
		}
		if next != want {
			t.Fatalf("%s: expected next %s, got %s", from, want, next)
		}
	}
}

func TestNextStatusTerminalAndUnknown(t *testing.T) {
	for _, status := range []string{"completed", "rejected", "draft", "nonsense"} {
		if _, ok := NextStatus(status); ok {
			t.Fatalf("expected no approval transition out of %s", status)
		}
	}
}

func TestCanRejectOnlyAtReviewPoints(t *testing.T) {
	for _, status := range []string{"hod", "pending_hod", "peer_approval", "branch_supervisor", "branch_final_assessment", "pending_final"} {
		if !CanReject(status) {
			t.Fatalf("expected reject to be valid from %s", status)
		}
	}
	for _, status := range []string{"draft", "submitted", "employee_review", "completed", "rejected"} {
		if CanReject(status) {
			t.Fatalf("expected reject to be invalid from %s", status)
		}
	}
}

func TestStageOwner(t *testing.T) {
	cases := map[string]string{
		"draft":                   "employee",
		"employee_review":         "employee",
		"pending_supervisor":      "supervisor",
		"supervisor_in_progress":  "supervisor",
		"pending_hod":             "hod",
		"peer_approval":           "peer",
		"branch_supervisor":       "branch_supervisor",
		"pending_final":           "branch_supervisor",
		"completed":               "",
		"rejected":                "",
		"what_even_is_this":       "",
	}
	for status, want := range cases {
		if got := StageOwner(status); got != want {
			t.Fatalf("%s: expected owner %q, got %q", status, want, got)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !IsTerminal("completed") || !IsTerminal("rejected") {
		t.Fatal("completed and rejected must be terminal")
	}
	if IsTerminal("draft") || IsTerminal("pending_hod") {
		t.Fatal("active statuses must not be terminal")
	}
}
