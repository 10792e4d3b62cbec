package scorecard

const (
	PerspectiveQuantitative = "quantitative"
	PerspectiveQualitative  = "qualitative"

	// Per-department ceilings on the summed weight of active assignments,
	// by perspective type.
	QuantitativeCeiling = 100.0
	QualitativeCeiling  = 10.0
)

const (
	WeightStatusDraft    = "draft"
	WeightStatusPending  = "pending"
	WeightStatusApproved = "approved"
	WeightStatusRejected = "rejected"
)

const (
	ObjectiveStatusDraft    = "draft"
	ObjectiveStatusPending  = "pending"
	ObjectiveStatusApproved = "approved"
	ObjectiveStatusRejected = "rejected"
)
