package appraisal

import "testing"

func TestBadgeForKnownStatuses(t *testing.T) {
	badge := BadgeFor("completed")
	if badge.Label != "Completed" || badge.Severity != "success" {
		t.Fatalf("unexpected badge for completed: %+v", badge)
	}

	badge = BadgeFor("REJECTED")
	if badge.Label != "Rejected" || badge.Severity != "danger" {
		t.Fatalf("unexpected badge for rejected: %+v", badge)
	}
}

func TestBadgeForUnknownStatusFallsBack(t *testing.T) {
	badge := BadgeFor("awaiting_committee_signoff")
	if badge.Label != "Awaiting Committee Signoff" {
		t.Fatalf("expected humanized label, got %q", badge.Label)
	}
	if badge.Severity != "secondary" {
		t.Fatalf("fallback badge must use the draft styling, got %q", badge.Severity)
	}
}

func TestBadgeForEmptyStatus(t *testing.T) {
	badge := BadgeFor("  ")
	if badge.Label != "Unknown" {
		t.Fatalf("expected Unknown label for empty status, got %q", badge.Label)
	}
}
