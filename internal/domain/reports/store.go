package reports

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("appraisal not found")

type RatingLine struct {
	Indicator string  `json:"indicator"`
	RaterRole string  `json:"raterRole"`
	Rating    float64 `json:"rating"`
}

type CommentLine struct {
	Stage string `json:"stage"`
	Text  string `json:"text"`
}

type AppraisalDetail struct {
	EmployeeName string
	Period       string
	Status       string
	Ratings      []RatingLine
	Comments     []CommentLine
}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) StatusCounts(ctx context.Context, tenantID string) (map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM appraisals WHERE tenant_id = $1 GROUP BY status`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (s *Store) RatingAverage(ctx context.Context, tenantID string) (float64, int, error) {
	var avg *float64
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT AVG(r.rating), COUNT(r.rating)
		   FROM appraisal_ratings r
		   JOIN appraisals a ON a.id = r.appraisal_id
		  WHERE a.tenant_id = $1 AND r.rating IS NOT NULL`, tenantID).Scan(&avg, &count)
	if err != nil {
		return 0, 0, err
	}
	if avg == nil {
		return 0, 0, nil
	}
	return *avg, count, nil
}

func (s *Store) AppraisalDetail(ctx context.Context, tenantID, appraisalID string) (AppraisalDetail, error) {
	detail := AppraisalDetail{
		Comments: []CommentLine{
			{Stage: "Employee"},
			{Stage: "Supervisor"},
			{Stage: "Head of Department"},
			{Stage: "Peer Review"},
			{Stage: "Branch Supervisor"},
			{Stage: "Final Assessment"},
		},
	}
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(e.first_name || ' ' || e.last_name, ''), a.period, a.status,
		        COALESCE(a.employee_comments, ''), COALESCE(a.supervisor_comments, ''),
		        COALESCE(a.hod_comments, ''), COALESCE(a.peer_comments, ''),
		        COALESCE(a.branch_comments, ''), COALESCE(a.final_comments, '')
		   FROM appraisals a
		   LEFT JOIN employees e ON e.id = a.employee_id
		  WHERE a.id = $1 AND a.tenant_id = $2`, appraisalID, tenantID).Scan(
		&detail.EmployeeName, &detail.Period, &detail.Status,
		&detail.Comments[0].Text, &detail.Comments[1].Text,
		&detail.Comments[2].Text, &detail.Comments[3].Text,
		&detail.Comments[4].Text, &detail.Comments[5].Text)
	if errors.Is(err, pgx.ErrNoRows) {
		return AppraisalDetail{}, ErrNotFound
	}
	if err != nil {
		return AppraisalDetail{}, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT i.name, r.rater_role, r.rating
		   FROM appraisal_ratings r
		   JOIN appraisal_indicators i ON i.id = r.indicator_id
		  WHERE r.appraisal_id = $1 AND r.rating IS NOT NULL
		  ORDER BY i.name, r.rater_role`, appraisalID)
	if err != nil {
		return AppraisalDetail{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line RatingLine
		if err := rows.Scan(&line.Indicator, &line.RaterRole, &line.Rating); err != nil {
			return AppraisalDetail{}, err
		}
		detail.Ratings = append(detail.Ratings, line)
	}
	return detail, rows.Err()
}
