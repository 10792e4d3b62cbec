package notifications

import (
	"context"
	"log/slog"
	"time"

	"scorecard/internal/domain/appraisal"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store       StoreAPI
	Mailer      Mailer
	DefaultFrom string
}

func New(store StoreAPI, mailer Mailer) *Service {
	return &Service{store: store, Mailer: mailer, DefaultFrom: "no-reply@example.com"}
}

// NotifyTransition fans a workflow transition event out to the actor who
// owns the next stage. Delivery problems are logged, never propagated: a
// missed notification must not fail the transition that already happened.
func (s *Service) NotifyTransition(ctx context.Context, tenantID string, ev appraisal.TransitionEvent) {
	ntype, title := describeTransition(ev)

	nextRole := appraisal.StageOwner(ev.ToStatus)
	if nextRole == "" {
		// Terminal state: tell the employee instead.
		nextRole = "employee"
	}

	userID, err := s.store.StageActorUserID(ctx, tenantID, ev.AppraisalID, nextRole)
	if err != nil || userID == "" {
		slog.Warn("transition notification target lookup failed",
			"appraisalId", ev.AppraisalID, "role", nextRole, "err", err)
		return
	}

	body := "Appraisal " + ev.AppraisalID + " moved from " + ev.FromStatus + " to " + ev.ToStatus + "."
	if err := s.Create(ctx, tenantID, userID, ntype, title, body); err != nil {
		slog.Warn("transition notification create failed",
			"appraisalId", ev.AppraisalID, "err", err)
	}
}

func describeTransition(ev appraisal.TransitionEvent) (string, string) {
	switch appraisal.CanonicalStatus(ev.ToStatus) {
	case appraisal.StatusSubmitted:
		return TypeAppraisalSubmitted, "An appraisal was submitted for your review"
	case appraisal.StatusSupervisorInProgress:
		return TypeRatingStarted, "Supervisor rating has started"
	case appraisal.StatusSupervisorCompleted:
		return TypeSupervisorRated, "Your supervisor has rated your appraisal"
	case appraisal.StatusCompleted:
		return TypeAppraisalCompleted, "Your appraisal is complete"
	case appraisal.StatusRejected:
		return TypeAppraisalRejected, "Your appraisal was rejected"
	default:
		return TypeAppraisalAdvanced, "An appraisal is waiting for your review"
	}
}

func (s *Service) Create(ctx context.Context, tenantID, userID, ntype, title, body string) error {
	if err := s.store.CreateNotification(ctx, tenantID, userID, ntype, title, body); err != nil {
		return err
	}

	if s.Mailer == nil {
		return nil
	}

	enabled, from, err := s.store.EmailSettings(ctx, tenantID)
	if err != nil || !enabled {
		return nil
	}
	if from == "" {
		from = s.DefaultFrom
	}

	email, err := s.store.UserEmail(ctx, tenantID, userID)
	if err != nil {
		slog.Warn("notification email lookup failed", "err", err)
		return nil
	}
	if email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, from, email, title, body); err != nil {
		slog.Warn("notification email send failed", "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, tenantID, userID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, tenantID, userID, limit, offset)
}

func (s *Service) CountUnread(ctx context.Context, tenantID, userID string) (int, error) {
	return s.store.CountUnread(ctx, tenantID, userID)
}

func (s *Service) MarkRead(ctx context.Context, tenantID, userID, notificationID string) error {
	return s.store.MarkRead(ctx, tenantID, userID, notificationID)
}
