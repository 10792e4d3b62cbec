package scorecard

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListPerspectives(ctx context.Context, tenantID string) ([]StrategicPerspective, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, type, created_at
    FROM strategic_perspectives
    WHERE tenant_id = $1
    ORDER BY name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perspectives []StrategicPerspective
	for rows.Next() {
		var p StrategicPerspective
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.CreatedAt); err != nil {
			return nil, err
		}
		perspectives = append(perspectives, p)
	}
	return perspectives, nil
}

func (s *Store) CreatePerspective(ctx context.Context, tenantID string, payload StrategicPerspective) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO strategic_perspectives (tenant_id, name, type)
    VALUES ($1,$2,$3)
    RETURNING id
  `, tenantID, payload.Name, payload.Type).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// PerspectiveReferenced counts soft-deleted weights too: a perspective
// that ever carried allocations keeps its type and stays undeletable.
func (s *Store) PerspectiveReferenced(ctx context.Context, tenantID, perspectiveID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM department_weights
    WHERE tenant_id = $1 AND strategy_perspective_id = $2
  `, tenantID, perspectiveID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) UpdatePerspectiveType(ctx context.Context, tenantID, id, ptype string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE strategic_perspectives
    SET type = $1
    WHERE tenant_id = $2 AND id = $3
  `, ptype, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeletePerspective(ctx context.Context, tenantID, id string) error {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM strategic_perspectives
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDepartmentWeights returns the active (not soft-deleted) window for
// one department.
func (s *Store) ListDepartmentWeights(ctx context.Context, tenantID, departmentID string) ([]DepartmentWeight, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, department_id, strategy_perspective_id, weight, status, created_at, updated_at
    FROM department_weights
    WHERE tenant_id = $1 AND department_id = $2 AND deleted_at IS NULL
    ORDER BY created_at
  `, tenantID, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var weights []DepartmentWeight
	for rows.Next() {
		var w DepartmentWeight
		if err := rows.Scan(&w.ID, &w.DepartmentID, &w.StrategyPerspectiveID, &w.Weight, &w.Status, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		weights = append(weights, w)
	}
	return weights, nil
}

func (s *Store) CreateWeight(ctx context.Context, tenantID string, weight DepartmentWeight) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO department_weights (tenant_id, department_id, strategy_perspective_id, weight, status)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, tenantID, weight.DepartmentID, weight.StrategyPerspectiveID, weight.Weight, weight.Status).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateWeight(ctx context.Context, tenantID, id string, weight float64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE department_weights
    SET weight = $1, updated_at = now()
    WHERE tenant_id = $2 AND id = $3 AND deleted_at IS NULL
  `, weight, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWeight soft-deletes, which removes the row from every future sum.
func (s *Store) DeleteWeight(ctx context.Context, tenantID, id string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE department_weights
    SET deleted_at = now(), updated_at = now()
    WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL
  `, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListObjectives(ctx context.Context, tenantID, departmentID string) ([]StrategicObjective, error) {
	query := `
    SELECT id, department_id, strategy_perspective_id, title, COALESCE(description, ''), status, created_at
    FROM strategic_objectives
    WHERE tenant_id = $1
  `
	args := []any{tenantID}
	if departmentID != "" {
		query += " AND department_id = $2"
		args = append(args, departmentID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objectives []StrategicObjective
	for rows.Next() {
		var o StrategicObjective
		if err := rows.Scan(&o.ID, &o.DepartmentID, &o.StrategyPerspectiveID, &o.Title, &o.Description, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		objectives = append(objectives, o)
	}
	return objectives, nil
}

func (s *Store) CreateObjective(ctx context.Context, tenantID string, payload StrategicObjective) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO strategic_objectives (tenant_id, department_id, strategy_perspective_id, title, description, status)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, tenantID, payload.DepartmentID, payload.StrategyPerspectiveID, payload.Title, payload.Description, payload.Status).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateObjectiveStatus(ctx context.Context, tenantID, id, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE strategic_objectives
    SET status = $1, updated_at = now()
    WHERE tenant_id = $2 AND id = $3
  `, status, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetWeight is used by handlers that need the row before an update.
func (s *Store) GetWeight(ctx context.Context, tenantID, id string) (DepartmentWeight, error) {
	var w DepartmentWeight
	err := s.DB.QueryRow(ctx, `
    SELECT id, department_id, strategy_perspective_id, weight, status, created_at, updated_at
    FROM department_weights
    WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL
  `, tenantID, id).Scan(&w.ID, &w.DepartmentID, &w.StrategyPerspectiveID, &w.Weight, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return DepartmentWeight{}, ErrNotFound
	}
	if err != nil {
		return DepartmentWeight{}, err
	}
	return w, nil
}
