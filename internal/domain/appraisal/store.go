package appraisal

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// allowed comment columns for transition updates; the field name comes from
// an internal table, never from request input.
var commentColumns = map[string]bool{
	"employee_comments":   true,
	"supervisor_comments": true,
	"hod_comments":        true,
	"peer_comments":       true,
	"branch_comments":     true,
	"final_comments":      true,
}

func (s *Store) Get(ctx context.Context, tenantID, id string) (Appraisal, error) {
	var a Appraisal
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, COALESCE(supervisor_id, ''), COALESCE(hod_id, ''),
           COALESCE(peer_id, ''), COALESCE(branch_manager_id, ''),
           period, status, action,
           COALESCE(employee_comments, ''), COALESCE(supervisor_comments, ''),
           COALESCE(hod_comments, ''), COALESCE(peer_comments, ''),
           COALESCE(branch_comments, ''), COALESCE(final_comments, ''),
           created_at, submitted_at
    FROM appraisals
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, id).Scan(
		&a.ID, &a.EmployeeID, &a.SupervisorID, &a.HODID,
		&a.PeerID, &a.BranchManagerID,
		&a.Period, &a.Status, &a.Action,
		&a.EmployeeComments, &a.SupervisorComments,
		&a.HODComments, &a.PeerComments,
		&a.BranchComments, &a.FinalComments,
		&a.CreatedAt, &a.SubmittedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Appraisal{}, ErrNotFound
	}
	if err != nil {
		return Appraisal{}, err
	}
	return a, nil
}

func (s *Store) List(ctx context.Context, tenantID string, filter ListFilter) (ListResult, error) {
	query := `
    SELECT id, employee_id, COALESCE(supervisor_id, ''), COALESCE(hod_id, ''),
           COALESCE(peer_id, ''), COALESCE(branch_manager_id, ''),
           period, status, action, created_at, submitted_at
    FROM appraisals
    WHERE tenant_id = $1
  `
	countQuery := "SELECT COUNT(1) FROM appraisals WHERE tenant_id = $1"
	args := []any{tenantID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		clause := fmt.Sprintf(" AND status = $%d", len(args))
		query += clause
		countQuery += clause
	}
	if filter.Period != "" {
		args = append(args, filter.Period)
		clause := fmt.Sprintf(" AND period = $%d", len(args))
		query += clause
		countQuery += clause
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		clause := fmt.Sprintf(" AND employee_id = $%d", len(args))
		query += clause
		countQuery += clause
	}

	var total int
	if err := s.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		total = 0
	}

	query += " ORDER BY created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, err
	}
	defer rows.Close()

	var appraisals []Appraisal
	for rows.Next() {
		var a Appraisal
		if err := rows.Scan(
			&a.ID, &a.EmployeeID, &a.SupervisorID, &a.HODID,
			&a.PeerID, &a.BranchManagerID,
			&a.Period, &a.Status, &a.Action, &a.CreatedAt, &a.SubmittedAt,
		); err != nil {
			return ListResult{}, err
		}
		appraisals = append(appraisals, a)
	}
	return ListResult{Appraisals: appraisals, Total: total}, nil
}

func (s *Store) Create(ctx context.Context, tenantID string, draft Appraisal) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO appraisals
      (tenant_id, employee_id, supervisor_id, hod_id, period, status, action)
    VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''),$5,$6,$7)
    RETURNING id
  `, tenantID, draft.EmployeeID, draft.SupervisorID, draft.HODID,
		draft.Period, draft.Status, draft.Action).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := s.DB.Exec(ctx,
		"DELETE FROM appraisals WHERE tenant_id = $1 AND id = $2", tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Transition applies the status change, action sub-state, optional stage
// comment and optional submitted_at stamp in one statement guarded by the
// expected current status. Zero affected rows means another actor moved
// the appraisal first.
func (s *Store) Transition(ctx context.Context, tenantID, id string, update TransitionUpdate) error {
	query := "UPDATE appraisals SET status = $1, action = $2, updated_at = now()"
	args := []any{update.ToStatus, update.Action}

	if update.SetSubmittedAt {
		query += ", submitted_at = COALESCE(submitted_at, now())"
	}
	if update.CommentField != "" && update.Comments != "" {
		if !commentColumns[update.CommentField] {
			return fmt.Errorf("unknown comment field %q", update.CommentField)
		}
		args = append(args, update.Comments)
		query += fmt.Sprintf(", %s = $%d", update.CommentField, len(args))
	}

	args = append(args, tenantID, id, update.FromStatus)
	query += fmt.Sprintf(" WHERE tenant_id = $%d AND id = $%d AND status = $%d",
		len(args)-2, len(args)-1, len(args))

	tag, err := s.DB.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (s *Store) SetAction(ctx context.Context, tenantID, id, expectedStatus, action string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE appraisals SET action = $1, updated_at = now()
    WHERE tenant_id = $2 AND id = $3 AND status = $4
  `, action, tenantID, id, expectedStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (s *Store) IndicatorIDs(ctx context.Context, tenantID, id string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id FROM appraisal_indicators
    WHERE tenant_id = $1 AND appraisal_id = $2
    ORDER BY position
  `, tenantID, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var indicatorID string
		if err := rows.Scan(&indicatorID); err != nil {
			return nil, err
		}
		ids = append(ids, indicatorID)
	}
	return ids, nil
}

func (s *Store) SaveRatings(ctx context.Context, tenantID, id, raterRole string, ratings []IndicatorRating) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, rating := range ratings {
		if rating.Rating == nil {
			continue
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO appraisal_ratings
        (tenant_id, appraisal_id, indicator_id, rater_role, rating, comment)
      VALUES ($1,$2,$3,$4,$5,$6)
      ON CONFLICT (appraisal_id, indicator_id, rater_role)
      DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = now()
    `, tenantID, id, rating.IndicatorID, raterRole, *rating.Rating, rating.Comment); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) ListRatings(ctx context.Context, tenantID, id string) ([]IndicatorRating, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT indicator_id, rating, COALESCE(comment, '')
    FROM appraisal_ratings
    WHERE tenant_id = $1 AND appraisal_id = $2
    ORDER BY indicator_id, rater_role
  `, tenantID, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []IndicatorRating
	for rows.Next() {
		var r IndicatorRating
		if err := rows.Scan(&r.IndicatorID, &r.Rating, &r.Comment); err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}
	return ratings, nil
}
