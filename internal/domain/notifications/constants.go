package notifications

const (
	TypeAppraisalSubmitted   = "appraisal_submitted"
	TypeRatingStarted        = "appraisal_rating_started"
	TypeSupervisorRated      = "appraisal_supervisor_rated"
	TypeAppraisalAdvanced    = "appraisal_advanced"
	TypeAppraisalCompleted   = "appraisal_completed"
	TypeAppraisalRejected    = "appraisal_rejected"
	TypeWeightSubmitted      = "weight_submitted"
	TypeObjectiveStatusMoved = "objective_status_moved"
	TypeDraftReminder        = "appraisal_draft_reminder"
)
