package auth

const (
	RoleEmployee         = "employee"
	RoleSupervisor       = "supervisor"
	RoleHOD              = "hod"
	RolePeer             = "peer"
	RoleBranchSupervisor = "branch_supervisor"
	RoleHR               = "hr"
	RoleSystemAdmin      = "system_admin"
)

const (
	PermAppraisalRead     = "appraisal.read"
	PermAppraisalWrite    = "appraisal.write"
	PermAppraisalReview   = "appraisal.review"
	PermAppraisalApprove  = "appraisal.approve"
	PermScorecardRead     = "scorecard.read"
	PermScorecardWrite    = "scorecard.write"
	PermScorecardApprove  = "scorecard.approve"
	PermReportsRead       = "reports.read"
	PermNotificationsRead = "notifications.read"
	PermSystemAdmin       = "admin.system"
)

var DefaultPermissions = []string{
	PermAppraisalRead,
	PermAppraisalWrite,
	PermAppraisalReview,
	PermAppraisalApprove,
	PermScorecardRead,
	PermScorecardWrite,
	PermScorecardApprove,
	PermReportsRead,
	PermNotificationsRead,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermAppraisalRead,
		PermAppraisalWrite,
		PermAppraisalApprove,
		PermScorecardRead,
		PermReportsRead,
		PermNotificationsRead,
	},
	RoleSupervisor: {
		PermAppraisalRead,
		PermAppraisalWrite,
		PermAppraisalReview,
		PermAppraisalApprove,
		PermScorecardRead,
		PermReportsRead,
		PermNotificationsRead,
	},
	RoleHOD: {
		PermAppraisalRead,
		PermAppraisalReview,
		PermAppraisalApprove,
		PermScorecardRead,
		PermScorecardWrite,
		PermScorecardApprove,
		PermReportsRead,
		PermNotificationsRead,
	},
	RolePeer: {
		PermAppraisalRead,
		PermAppraisalReview,
		PermAppraisalApprove,
		PermReportsRead,
		PermNotificationsRead,
	},
	RoleBranchSupervisor: {
		PermAppraisalRead,
		PermAppraisalReview,
		PermAppraisalApprove,
		PermScorecardRead,
		PermReportsRead,
		PermNotificationsRead,
	},
	RoleHR: {
		PermAppraisalRead,
		PermAppraisalWrite,
		PermAppraisalReview,
		PermAppraisalApprove,
		PermScorecardRead,
		PermScorecardWrite,
		PermScorecardApprove,
		PermReportsRead,
		PermNotificationsRead,
	},
	RoleSystemAdmin: {
		PermAppraisalRead,
		PermAppraisalWrite,
		PermAppraisalReview,
		PermAppraisalApprove,
		PermScorecardRead,
		PermScorecardWrite,
		PermScorecardApprove,
		PermReportsRead,
		PermNotificationsRead,
		PermSystemAdmin,
	},
}
