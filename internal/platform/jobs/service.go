package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"scorecard/internal/domain/notifications"
	"scorecard/internal/platform/config"
)

const JobStaleDraftReminder = "stale_draft_reminder"

type Service struct {
	DB     *pgxpool.Pool
	Cfg    config.Config
	Notify *notifications.Service
	queue  chan job
}

type job struct {
	Type     string
	TenantID string
	Run      func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, notify *notifications.Service) *Service {
	return &Service{
		DB:     db,
		Cfg:    cfg,
		Notify: notify,
		queue:  make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.ReminderInterval > 0 {
		go s.scheduleReminders(ctx, s.Cfg.ReminderInterval)
	}
}

func (s *Service) Enqueue(jobType, tenantID string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, TenantID: tenantID, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType, "tenantId", tenantID)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, tenantID string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, TenantID: tenantID, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "tenantId", j.TenantID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (tenant_id, job_type, status)
    VALUES ($1,$2,$3)
    RETURNING id
  `, j.TenantID, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleReminders(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tenants, err := s.listTenants(ctx)
			if err != nil {
				slog.Warn("reminder scheduler tenant lookup failed", "err", err)
				continue
			}
			for _, tenantID := range tenants {
				tenant := tenantID
				s.Enqueue(JobStaleDraftReminder, tenant, func(ctx context.Context) (any, error) {
					return s.RemindStaleDrafts(ctx, tenant, time.Now().Add(-s.Cfg.StaleDraftAge))
				})
			}
		}
	}
}

type staleDraft struct {
	AppraisalID string
	UserID      string
	Period      string
}

// RemindStaleDrafts notifies the owning employee of every draft appraisal
// created before cutoff that has not been submitted yet.
func (s *Service) RemindStaleDrafts(ctx context.Context, tenantID string, cutoff time.Time) (any, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT a.id, COALESCE(e.user_id::text, ''), a.period
    FROM appraisals a
    LEFT JOIN employees e ON e.id = a.employee_id
    WHERE a.tenant_id = $1 AND a.status = 'draft' AND a.created_at < $2
  `, tenantID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []staleDraft
	for rows.Next() {
		var d staleDraft
		if err := rows.Scan(&d.AppraisalID, &d.UserID, &d.Period); err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reminded := 0
	for _, d := range drafts {
		if d.UserID == "" {
			continue
		}
		err := s.Notify.Create(ctx, tenantID, d.UserID, notifications.TypeDraftReminder,
			"Appraisal draft pending",
			"Your "+d.Period+" appraisal is still in draft. Submit it to start the review.")
		if err != nil {
			slog.Warn("stale draft reminder failed", "appraisalId", d.AppraisalID, "err", err)
			continue
		}
		reminded++
	}
	return map[string]any{"drafts": len(drafts), "reminded": reminded}, nil
}

func (s *Service) listTenants(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT id FROM tenants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
