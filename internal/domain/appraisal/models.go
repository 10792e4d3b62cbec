package appraisal

import "time"

type Appraisal struct {
	ID                 string     `json:"id"`
	EmployeeID         string     `json:"employeeId"`
	SupervisorID       string     `json:"supervisorId,omitempty"`
	HODID              string     `json:"hodId,omitempty"`
	PeerID             string     `json:"peerId,omitempty"`
	BranchManagerID    string     `json:"branchManagerId,omitempty"`
	Period             string     `json:"period"`
	Status             string     `json:"status"`
	Action             string     `json:"action"`
	EmployeeComments   string     `json:"employeeComments,omitempty"`
	SupervisorComments string     `json:"supervisorComments,omitempty"`
	HODComments        string     `json:"hodComments,omitempty"`
	PeerComments       string     `json:"peerComments,omitempty"`
	BranchComments     string     `json:"branchComments,omitempty"`
	FinalComments      string     `json:"finalComments,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	SubmittedAt        *time.Time `json:"submittedAt,omitempty"`
}

// IndicatorRating is one score against one performance indicator. A stage
// rating submission must cover every indicator assigned to the appraisal.
type IndicatorRating struct {
	IndicatorID string   `json:"indicatorId"`
	Rating      *float64 `json:"rating"`
	Comment     string   `json:"comment,omitempty"`
}

// Badge is the presentation mapping for a status value.
type Badge struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
	Icon     string `json:"icon"`
}

// TransitionEvent describes one successful status change. Handlers forward
// it to the notification service; the engine never delivers notifications
// itself.
type TransitionEvent struct {
	AppraisalID string `json:"appraisalId"`
	FromStatus  string `json:"fromStatus"`
	ToStatus    string `json:"toStatus"`
	ActorRole   string `json:"actorRole"`
}
