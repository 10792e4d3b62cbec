package appraisal

// nextOnApprove is the forward chain, keyed by canonical status. Approval
// in the final assessment stage completes the appraisal.
var nextOnApprove = map[string]string{
	StatusSubmitted:             StatusPendingSupervisor,
	StatusSupervisorCompleted:   StatusEmployeeReview,
	StatusEmployeeReview:        StatusPendingHOD,
	StatusHOD:                   StatusPeerApproval,
	StatusPeerApproval:          StatusBranchSupervisor,
	StatusBranchSupervisor:      StatusPendingFinal,
	StatusBranchFinalAssessment: StatusCompleted,
}

// rejectable marks the review points from which a reject moves the
// appraisal to its terminal rejected state. There is no path back out of
// rejected; a new cycle must be started instead.
var rejectable = map[string]bool{
	StatusHOD:                   true,
	StatusPeerApproval:          true,
	StatusBranchSupervisor:      true,
	StatusBranchFinalAssessment: true,
}

var stageOwners = map[string]string{
	StatusDraft:                 "employee",
	StatusSubmitted:             "supervisor",
	StatusSupervisor:            "supervisor",
	StatusSupervisorInProgress:  "supervisor",
	StatusSupervisorCompleted:   "supervisor",
	StatusEmployeeReview:        "employee",
	StatusHOD:                   "hod",
	StatusPeerApproval:          "peer",
	StatusBranchSupervisor:      "branch_supervisor",
	StatusBranchFinalAssessment: "branch_supervisor",
}

// commentFields maps the canonical status at which a decision is recorded
// to the role-specific comment column it lands in.
var commentFields = map[string]string{
	StatusSupervisorCompleted:   "supervisor_comments",
	StatusEmployeeReview:        "employee_comments",
	StatusHOD:                   "hod_comments",
	StatusPeerApproval:          "peer_comments",
	StatusBranchSupervisor:      "branch_comments",
	StatusBranchFinalAssessment: "final_comments",
}

// NextStatus returns the status an approval from the given status advances
// to, or false when the status has no approval transition.
func NextStatus(status string) (string, bool) {
	next, ok := nextOnApprove[CanonicalStatus(status)]
	return next, ok
}

// CanReject reports whether a reject transition is valid from status.
func CanReject(status string) bool {
	return rejectable[CanonicalStatus(status)]
}

// StageOwner returns the lower-cased role that owns the stage for the
// given status, or "" for terminal and unknown statuses.
func StageOwner(status string) string {
	return stageOwners[CanonicalStatus(status)]
}

// IsTerminal reports whether no further transition leaves status.
func IsTerminal(status string) bool {
	canonical := CanonicalStatus(status)
	return canonical == StatusCompleted || canonical == StatusRejected
}

func commentField(status string) string {
	return commentFields[CanonicalStatus(status)]
}
