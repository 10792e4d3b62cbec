package scorecard

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Service gates every weight mutation behind a fresh re-read of the
// department's window followed by validation. Totals are re-derived from
// the full snapshot each time instead of being maintained incrementally;
// the invariant is local to a (department, perspective type) pair so one
// department's window is all the validator ever needs to see.
type Service struct {
	store StoreAPI

	// SnapshotMaxAge bounds how old a caller-provided snapshot timestamp
	// may be before capacity responses carry a staleness warning. Zero
	// disables the check.
	SnapshotMaxAge time.Duration
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, SnapshotMaxAge: 30 * time.Second}
}

func (s *Service) ListPerspectives(ctx context.Context, tenantID string) ([]StrategicPerspective, error) {
	return s.store.ListPerspectives(ctx, tenantID)
}

func (s *Service) CreatePerspective(ctx context.Context, tenantID string, payload StrategicPerspective) (string, map[string]string, error) {
	issues := map[string]string{}
	if strings.TrimSpace(payload.Name) == "" {
		issues["name"] = "Name is required"
	}
	switch strings.ToLower(strings.TrimSpace(payload.Type)) {
	case PerspectiveQuantitative, PerspectiveQualitative:
	default:
		issues["type"] = "Type must be quantitative or qualitative"
	}
	if len(issues) > 0 {
		return "", issues, nil
	}

	payload.Type = strings.ToLower(strings.TrimSpace(payload.Type))
	id, err := s.store.CreatePerspective(ctx, tenantID, payload)
	return id, nil, err
}

// UpdatePerspectiveType reclassifies a perspective. The type is locked once
// any department weight references the perspective; flipping it would
// silently move recorded allocations between the 100 and 10 ceilings.
func (s *Service) UpdatePerspectiveType(ctx context.Context, tenantID, id, ptype string) error {
	ptype = strings.ToLower(strings.TrimSpace(ptype))
	switch ptype {
	case PerspectiveQuantitative, PerspectiveQualitative:
	default:
		return ErrInvalidStatus
	}

	referenced, err := s.store.PerspectiveReferenced(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if referenced {
		return ErrImmutablePerspective
	}
	return s.store.UpdatePerspectiveType(ctx, tenantID, id, ptype)
}

func (s *Service) DeletePerspective(ctx context.Context, tenantID, id string) error {
	referenced, err := s.store.PerspectiveReferenced(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if referenced {
		return ErrPerspectiveInUse
	}
	return s.store.DeletePerspective(ctx, tenantID, id)
}

func (s *Service) ListDepartmentWeights(ctx context.Context, tenantID, departmentID string) ([]DepartmentWeight, error) {
	return s.store.ListDepartmentWeights(ctx, tenantID, departmentID)
}

// CreateWeight validates the candidate against the department's current
// window and persists it when clean. The returned map is empty on success.
func (s *Service) CreateWeight(ctx context.Context, tenantID string, form WeightForm) (string, map[string]string, error) {
	form.ID = ""
	issues, weight, err := s.validateForm(ctx, tenantID, form)
	if err != nil {
		return "", nil, err
	}
	if len(issues) > 0 {
		return "", issues, nil
	}

	id, err := s.store.CreateWeight(ctx, tenantID, DepartmentWeight{
		DepartmentID:          form.DepartmentID,
		StrategyPerspectiveID: form.StrategyPerspectiveID,
		Weight:                weight,
		Status:                WeightStatusDraft,
	})
	return id, nil, err
}

// UpdateWeight re-validates with the edited row excluded from its own
// totals, so raising a weight only has to fit the headroom left by its
// siblings.
func (s *Service) UpdateWeight(ctx context.Context, tenantID, id string, form WeightForm) (map[string]string, error) {
	form.ID = id
	issues, weight, err := s.validateForm(ctx, tenantID, form)
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		return issues, nil
	}
	return nil, s.store.UpdateWeight(ctx, tenantID, id, weight)
}

func (s *Service) DeleteWeight(ctx context.Context, tenantID, id string) error {
	return s.store.DeleteWeight(ctx, tenantID, id)
}

func (s *Service) GetWeight(ctx context.Context, tenantID, id string) (DepartmentWeight, error) {
	return s.store.GetWeight(ctx, tenantID, id)
}

// Remaining computes the live capacity for a department and perspective
// selection. It is advisory UI feedback, not a gating rule; the gate is
// Validate at submit time.
func (s *Service) Remaining(ctx context.Context, tenantID, departmentID, perspectiveID string, snapshotAt time.Time) (Capacity, error) {
	weights, err := s.store.ListDepartmentWeights(ctx, tenantID, departmentID)
	if err != nil {
		return Capacity{}, err
	}
	perspectives, err := s.store.ListPerspectives(ctx, tenantID)
	if err != nil {
		return Capacity{}, err
	}

	ptype := perspectiveTypes(perspectives)[perspectiveID]
	if ptype == "" {
		return Capacity{}, ErrUnknownPerspective
	}

	totals := ComputeTotals(weights, perspectives, "")
	capacity := RemainingCapacity(ptype, totals)
	capacity.StaleTotal = TotalsStale(snapshotAt, time.Now(), s.SnapshotMaxAge)
	return capacity, nil
}

func (s *Service) ListObjectives(ctx context.Context, tenantID, departmentID string) ([]StrategicObjective, error) {
	return s.store.ListObjectives(ctx, tenantID, departmentID)
}

func (s *Service) CreateObjective(ctx context.Context, tenantID string, payload StrategicObjective) (string, map[string]string, error) {
	issues := map[string]string{}
	if strings.TrimSpace(payload.DepartmentID) == "" {
		issues["departmentId"] = "Department is required"
	}
	if strings.TrimSpace(payload.StrategyPerspectiveID) == "" {
		issues["strategyPerspectiveId"] = "Strategic perspective is required"
	}
	if strings.TrimSpace(payload.Title) == "" {
		issues["title"] = "Title is required"
	}
	if len(issues) > 0 {
		return "", issues, nil
	}

	payload.Status = ObjectiveStatusDraft
	id, err := s.store.CreateObjective(ctx, tenantID, payload)
	return id, nil, err
}

func (s *Service) UpdateObjectiveStatus(ctx context.Context, tenantID, id, status string) error {
	switch status {
	case ObjectiveStatusDraft, ObjectiveStatusPending, ObjectiveStatusApproved, ObjectiveStatusRejected:
		return s.store.UpdateObjectiveStatus(ctx, tenantID, id, status)
	}
	return ErrInvalidStatus
}

func (s *Service) validateForm(ctx context.Context, tenantID string, form WeightForm) (map[string]string, float64, error) {
	existing, err := s.store.ListDepartmentWeights(ctx, tenantID, form.DepartmentID)
	if err != nil {
		return nil, 0, err
	}
	perspectives, err := s.store.ListPerspectives(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}

	if form.StrategyPerspectiveID != "" {
		if perspectiveTypes(perspectives)[form.StrategyPerspectiveID] == "" {
			// Ceiling check is skipped for an unresolved type; leave a
			// trace so the inconsistency is visible.
			slog.Warn("perspective type unresolved, ceiling check skipped",
				"tenantId", tenantID, "perspectiveId", form.StrategyPerspectiveID)
		}
	}

	totals := ComputeTotals(existing, perspectives, form.ID)
	issues := Validate(form, totals, perspectives, existing)

	weight, _ := strconv.ParseFloat(strings.TrimSpace(form.Weight), 64)
	return issues, weight, nil
}
