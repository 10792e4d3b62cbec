package scorecard

import "context"

type StoreAPI interface {
	ListPerspectives(ctx context.Context, tenantID string) ([]StrategicPerspective, error)
	CreatePerspective(ctx context.Context, tenantID string, payload StrategicPerspective) (string, error)
	PerspectiveReferenced(ctx context.Context, tenantID, perspectiveID string) (bool, error)
	UpdatePerspectiveType(ctx context.Context, tenantID, id, ptype string) error
	DeletePerspective(ctx context.Context, tenantID, id string) error

	ListDepartmentWeights(ctx context.Context, tenantID, departmentID string) ([]DepartmentWeight, error)
	GetWeight(ctx context.Context, tenantID, id string) (DepartmentWeight, error)
	CreateWeight(ctx context.Context, tenantID string, weight DepartmentWeight) (string, error)
	UpdateWeight(ctx context.Context, tenantID, id string, weight float64) error
	DeleteWeight(ctx context.Context, tenantID, id string) error

	ListObjectives(ctx context.Context, tenantID, departmentID string) ([]StrategicObjective, error)
	CreateObjective(ctx context.Context, tenantID string, payload StrategicObjective) (string, error)
	UpdateObjectiveStatus(ctx context.Context, tenantID, id, status string) error
}
