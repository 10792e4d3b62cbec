package appraisal

import (
	"context"
	"strings"
)

// Service executes workflow transitions against the store. Every
// precondition violation comes back as a recoverable error value; the
// post-transition state is only authoritative once the store confirms it.
type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (Appraisal, error) {
	return s.store.Get(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, tenantID string, filter ListFilter) (ListResult, error) {
	return s.store.List(ctx, tenantID, filter)
}

func (s *Service) Ratings(ctx context.Context, tenantID, id string) ([]IndicatorRating, error) {
	return s.store.ListRatings(ctx, tenantID, id)
}

// Actions returns the allowed action keys for an already-loaded appraisal
// as seen by the given role.
func (s *Service) Actions(a Appraisal, role string) []ActionKey {
	return AllowedActions(a.Status, a.Action, role)
}

func (s *Service) Create(ctx context.Context, tenantID string, draft Appraisal) (string, error) {
	issues := ValidationError{}
	if strings.TrimSpace(draft.EmployeeID) == "" {
		issues["employeeId"] = "employee is required"
	}
	switch draft.Period {
	case PeriodAnnual, PeriodMidTerm, PeriodProbation:
	default:
		issues["period"] = "period must be annual, mid_term or probation"
	}
	if len(issues) > 0 {
		return "", issues
	}

	draft.Status = StatusDraft
	draft.Action = ActionPending
	return s.store.Create(ctx, tenantID, draft)
}

// Delete removes a draft appraisal. Anything past draft is owned by the
// workflow and can no longer be deleted.
func (s *Service) Delete(ctx context.Context, tenantID, id, role string) error {
	current, err := s.store.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !Contains(AllowedActions(current.Status, current.Action, role), KeyDelete) {
		return ErrTransitionNotAllowed
	}
	return s.store.Delete(ctx, tenantID, id)
}

// Submit moves a completed draft into the review pipeline. The store stamps
// submitted_at exactly once; it is never cleared afterwards.
func (s *Service) Submit(ctx context.Context, tenantID, id, role string) (TransitionEvent, error) {
	current, err := s.store.Get(ctx, tenantID, id)
	if err != nil {
		return TransitionEvent{}, err
	}
	if !Contains(AllowedActions(current.Status, current.Action, role), KeySubmit) {
		return TransitionEvent{}, ErrTransitionNotAllowed
	}

	update := TransitionUpdate{
		FromStatus:     current.Status,
		ToStatus:       StatusSubmitted,
		Action:         ActionPending,
		SetSubmittedAt: true,
	}
	if err := s.store.Transition(ctx, tenantID, id, update); err != nil {
		return TransitionEvent{}, err
	}
	return event(id, current.Status, StatusSubmitted, role), nil
}

// SaveSelfRatings records the employee's self-assessment while the
// appraisal is still in draft. It moves the draft sub-state to completed
// when every indicator is rated, in-progress otherwise.
func (s *Service) SaveSelfRatings(ctx context.Context, tenantID, id, role string, ratings []IndicatorRating) error {
	current, err := s.store.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !Contains(AllowedActions(current.Status, current.Action, role), KeySelfRating) {
		return ErrTransitionNotAllowed
	}
	if err := s.store.SaveRatings(ctx, tenantID, id, "employee", ratings); err != nil {
		return err
	}

	missing, err := s.missingIndicators(ctx, tenantID, id, ratings)
	if err != nil {
		return err
	}
	action := ActionInProgress
	if len(missing) == 0 {
		action = ActionCompleted
	}
	return s.store.SetAction(ctx, tenantID, id, current.Status, action)
}

// SubmitRating records the supervisor's stage ratings. It is valid only
// while the supervisor's rating is in progress and requires a rating on
// every indicator before the stage can complete.
func (s *Service) SubmitRating(ctx context.Context, tenantID, id, role string, ratings []IndicatorRating) (TransitionEvent, error) {
	current, err := s.store.Get(ctx, tenantID, id)
	if err != nil {
		return TransitionEvent{}, err
	}
	canonical := CanonicalStatus(current.Status)
	if canonical != StatusSupervisorInProgress || !roleMayAct(canonical, role) {
		return TransitionEvent{}, ErrTransitionNotAllowed
	}

	missing, err := s.missingIndicators(ctx, tenantID, id, ratings)
	if err != nil {
		return TransitionEvent{}, err
	}
	if len(missing) > 0 {
		return TransitionEvent{}, ValidationError{
			"ratings": "every indicator requires a rating; missing: " + strings.Join(missing, ", "),
		}
	}

	if err := s.store.SaveRatings(ctx, tenantID, id, "supervisor", ratings); err != nil {
		return TransitionEvent{}, err
	}

	update := TransitionUpdate{
		FromStatus: current.Status,
		ToStatus:   StatusSupervisorCompleted,
		Action:     ActionCompleted,
	}
	if err := s.store.Transition(ctx, tenantID, id, update); err != nil {
		return TransitionEvent{}, err
	}
	return event(id, current.Status, StatusSupervisorCompleted, role), nil
}

// StartRating claims a submitted appraisal for supervisor rating.
func (s *Service) StartRating(ctx context.Context, tenantID, id, role string) (TransitionEvent, error) {
	current, err := s.store.Get(ctx, tenantID, id)
	if err != nil {
		return TransitionEvent{}, err
	}
	canonical := CanonicalStatus(current.Status)
	if canonical != StatusSubmitted && canonical != StatusSupervisor {
		return TransitionEvent{}, ErrTransitionNotAllowed
	}
	if !roleMayAct(canonical, role) {
		return TransitionEvent{}, ErrTransitionNotAllowed
	}

	update := TransitionUpdate{
		FromStatus: current.Status,
		ToStatus:   StatusSupervisorInProgress,
		Action:     ActionInProgress,
	}
	if err := s.store.Transition(ctx, tenantID, id, update); err != nil {
		return TransitionEvent{}, err
	}
	return event(id, current.Status, StatusSupervisorInProgress, role), nil
}

// Approve advances the appraisal to the next stage, or to completed from
// the final assessment. Comments are optional and land in the acting
// stage's comment field.
func (s *Service) Approve(ctx context.Context, tenantID, id, role, comments string) (TransitionEvent, error) {
	current, err := s.store.Get(ctx, tenantID, id)
	if err != nil {
		return TransitionEvent{}, err
	}
	canonical := CanonicalStatus(current.Status)
	next, ok := NextStatus(current.Status)
	if !ok || !roleMayAct(canonical, role) {
		return TransitionEvent{}, ErrTransitionNotAllowed
	}
	// The employee review row is the one stage whose sub-state can withhold
	// approve: a recorded disagreement removes it until resolved.
	if canonical == StatusEmployeeReview && !Contains(AllowedActions(current.Status, current.Action, role), KeyApprove) {
		return TransitionEvent{}, ErrTransitionNotAllowed
	}

	update := TransitionUpdate{
		FromStatus:   current.Status,
		ToStatus:     next,
		Action:       ActionPending,
		CommentField: commentField(current.Status),
		Comments:     strings.TrimSpace(comments),
	}
	if next == StatusCompleted {
		update.Action = ActionCompleted
	}
	if err := s.store.Transition(ctx, tenantID, id, update); err != nil {
		return TransitionEvent{}, err
	}
	return event(id, current.Status, next, role), nil
}

// Disagree records the employee's disagreement during their review stage.
// It keeps the status but blocks approval until the disagreement is
// resolved with the supervisor.
func (s *Service) Disagree(ctx context.Context, tenantID, id, role string) error {
	current, err := s.store.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	canonical := CanonicalStatus(current.Status)
	if canonical != StatusEmployeeReview || !roleMayAct(canonical, role) {
		return ErrTransitionNotAllowed
	}
	return s.store.SetAction(ctx, tenantID, id, current.Status, ActionDisagree)
}

// Reject sends the appraisal to its terminal rejected state. Comments are
// mandatory and are validated before any store call happens.
func (s *Service) Reject(ctx context.Context, tenantID, id, role, comments string) (TransitionEvent, error) {
	if strings.TrimSpace(comments) == "" {
		return TransitionEvent{}, ValidationError{"comments": "comments are required to reject an appraisal"}
	}

	current, err := s.store.Get(ctx, tenantID, id)
	if err != nil {
		return TransitionEvent{}, err
	}
	if !CanReject(current.Status) || !roleMayAct(CanonicalStatus(current.Status), role) {
		return TransitionEvent{}, ErrTransitionNotAllowed
	}

	update := TransitionUpdate{
		FromStatus:   current.Status,
		ToStatus:     StatusRejected,
		Action:       ActionCompleted,
		CommentField: commentField(current.Status),
		Comments:     strings.TrimSpace(comments),
	}
	if err := s.store.Transition(ctx, tenantID, id, update); err != nil {
		return TransitionEvent{}, err
	}
	return event(id, current.Status, StatusRejected, role), nil
}

func (s *Service) missingIndicators(ctx context.Context, tenantID, id string, ratings []IndicatorRating) ([]string, error) {
	required, err := s.store.IndicatorIDs(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	rated := map[string]bool{}
	for _, rating := range ratings {
		if rating.Rating != nil {
			rated[rating.IndicatorID] = true
		}
	}
	var missing []string
	for _, indicatorID := range required {
		if !rated[indicatorID] {
			missing = append(missing, indicatorID)
		}
	}
	return missing, nil
}

func event(id, from, to, role string) TransitionEvent {
	return TransitionEvent{
		AppraisalID: id,
		FromStatus:  from,
		ToStatus:    to,
		ActorRole:   strings.ToLower(strings.TrimSpace(role)),
	}
}
