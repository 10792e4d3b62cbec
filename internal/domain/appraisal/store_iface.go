package appraisal

import "context"

type ListFilter struct {
	Status     string
	Period     string
	EmployeeID string
	Limit      int
	Offset     int
}

type ListResult struct {
	Appraisals []Appraisal
	Total      int
}

// TransitionUpdate is applied atomically by the store: the status change,
// the action sub-state and any stage comment land in one statement guarded
// by the expected current status, so no partial transition is ever visible
// to readers.
type TransitionUpdate struct {
	FromStatus     string
	ToStatus       string
	Action         string
	CommentField   string
	Comments       string
	SetSubmittedAt bool
}

type StoreAPI interface {
	Get(ctx context.Context, tenantID, id string) (Appraisal, error)
	List(ctx context.Context, tenantID string, filter ListFilter) (ListResult, error)
	Create(ctx context.Context, tenantID string, draft Appraisal) (string, error)
	Delete(ctx context.Context, tenantID, id string) error
	Transition(ctx context.Context, tenantID, id string, update TransitionUpdate) error
	SetAction(ctx context.Context, tenantID, id, expectedStatus, action string) error
	IndicatorIDs(ctx context.Context, tenantID, id string) ([]string, error)
	SaveRatings(ctx context.Context, tenantID, id, raterRole string, ratings []IndicatorRating) error
	ListRatings(ctx context.Context, tenantID, id string) ([]IndicatorRating, error)
}
