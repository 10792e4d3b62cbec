package appraisal

const (
	StatusDraft                 = "draft"
	StatusSubmitted             = "submitted"
	StatusSupervisor            = "supervisor"
	StatusPendingSupervisor     = "pending_supervisor"
	StatusSupervisorInProgress  = "supervisor_in_progress"
	StatusSupervisorCompleted   = "supervisor_completed"
	StatusSupervisorReviewed    = "supervisor_reviewed"
	StatusEmployeeReview        = "employee_review"
	StatusEmployeeReviewing     = "employee_reviewing"
	StatusHOD                   = "hod"
	StatusPendingHOD            = "pending_hod"
	StatusPeerApproval          = "peer_approval"
	StatusBranchSupervisor      = "branch_supervisor"
	StatusBranchFinalAssessment = "branch_final_assessment"
	StatusPendingFinal          = "pending_final"
	StatusCompleted             = "completed"
	StatusRejected              = "rejected"
)

// Action is the free-form sub-state hint carried alongside status. It
// qualifies the status for action-key lookup and defaults to "pending"
// when absent.
const (
	ActionPending    = "pending"
	ActionInProgress = "in-progress"
	ActionCompleted  = "completed"
	ActionDisagree   = "disagree"
)

const (
	PeriodAnnual    = "annual"
	PeriodMidTerm   = "mid_term"
	PeriodProbation = "probation"
)

// ActionKey identifies one operation a caller may expose for an appraisal.
type ActionKey string

const (
	KeyEdit              ActionKey = "edit"
	KeySelfRating        ActionKey = "selfRating"
	KeyDelete            ActionKey = "delete"
	KeySubmit            ActionKey = "submit"
	KeyOverallAssessment ActionKey = "overallAssessment"
	KeyPreview           ActionKey = "preview"
	KeyApprove           ActionKey = "approve"
)
