package appraisal

import "strings"

var badges = map[string]Badge{
	StatusDraft:                 {Label: "Draft", Severity: "secondary", Icon: "pencil"},
	StatusSubmitted:             {Label: "Submitted", Severity: "info", Icon: "send"},
	StatusSupervisor:            {Label: "Supervisor Rating", Severity: "info", Icon: "user-check"},
	StatusPendingSupervisor:     {Label: "Pending Supervisor", Severity: "info", Icon: "user-check"},
	StatusSupervisorInProgress:  {Label: "Supervisor Rating In Progress", Severity: "warning", Icon: "clock"},
	StatusSupervisorCompleted:   {Label: "Supervisor Rating Completed", Severity: "success", Icon: "check"},
	StatusSupervisorReviewed:    {Label: "Supervisor Reviewed", Severity: "success", Icon: "check"},
	StatusEmployeeReview:        {Label: "Employee Review", Severity: "info", Icon: "eye"},
	StatusEmployeeReviewing:     {Label: "Employee Reviewing", Severity: "warning", Icon: "eye"},
	StatusHOD:                   {Label: "HOD Approval", Severity: "info", Icon: "shield"},
	StatusPendingHOD:            {Label: "Pending HOD Approval", Severity: "info", Icon: "shield"},
	StatusPeerApproval:          {Label: "Peer Approval", Severity: "info", Icon: "users"},
	StatusBranchSupervisor:      {Label: "Branch Supervisor Review", Severity: "info", Icon: "building"},
	StatusBranchFinalAssessment: {Label: "Branch Final Assessment", Severity: "warning", Icon: "flag"},
	StatusPendingFinal:          {Label: "Pending Final Assessment", Severity: "warning", Icon: "flag"},
	StatusCompleted:             {Label: "Completed", Severity: "success", Icon: "check-circle"},
	StatusRejected:              {Label: "Rejected", Severity: "danger", Icon: "x-circle"},
}

// BadgeFor returns the presentation badge for a status. Unknown statuses
// get a draft-styled badge with a humanized label so the caller always has
// something to render.
func BadgeFor(status string) Badge {
	normalized := strings.ToLower(strings.TrimSpace(status))
	if badge, ok := badges[normalized]; ok {
		return badge
	}
	return Badge{Label: humanize(normalized), Severity: "secondary", Icon: "pencil"}
}

func humanize(status string) string {
	if status == "" {
		return "Unknown"
	}
	words := strings.FieldsFunc(status, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
