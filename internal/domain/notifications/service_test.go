package notifications

import (
	"context"
	"errors"
	"testing"

	"scorecard/internal/domain/appraisal"
)

type fakeStore struct {
	actors       map[string]string
	created      []Notification
	emailEnabled bool
	emailFrom    string
	emails       map[string]string
	createErr    error
}

func (f *fakeStore) CreateNotification(ctx context.Context, tenantID, userID, ntype, title, body string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, Notification{UserID: userID, Type: ntype, Title: title, Body: body})
	return nil
}

func (f *fakeStore) ListNotifications(ctx context.Context, tenantID, userID string, limit, offset int) ([]Notification, error) {
	return f.created, nil
}

func (f *fakeStore) CountUnread(ctx context.Context, tenantID, userID string) (int, error) {
	return len(f.created), nil
}

func (f *fakeStore) MarkRead(ctx context.Context, tenantID, userID, notificationID string) error {
	return nil
}

func (f *fakeStore) UserEmail(ctx context.Context, tenantID, userID string) (string, error) {
	return f.emails[userID], nil
}

func (f *fakeStore) StageActorUserID(ctx context.Context, tenantID, appraisalID, role string) (string, error) {
	return f.actors[role], nil
}

func (f *fakeStore) EmailSettings(ctx context.Context, tenantID string) (bool, string, error) {
	return f.emailEnabled, f.emailFrom, nil
}

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, from, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

func TestNotifyTransitionTargetsNextStageOwner(t *testing.T) {
	store := &fakeStore{actors: map[string]string{"hod": "user-hod"}}
	svc := New(store, nil)

	svc.NotifyTransition(context.Background(), "t1", appraisal.TransitionEvent{
		AppraisalID: "a1",
		FromStatus:  appraisal.StatusEmployeeReview,
		ToStatus:    appraisal.StatusHOD,
		ActorRole:   "employee",
	})

	if len(store.created) != 1 {
		t.Fatalf("created %d notifications, want 1", len(store.created))
	}
	if store.created[0].UserID != "user-hod" {
		t.Fatalf("notified %s, want user-hod", store.created[0].UserID)
	}
	if store.created[0].Type != TypeAppraisalAdvanced {
		t.Fatalf("type = %s, want %s", store.created[0].Type, TypeAppraisalAdvanced)
	}
}

func TestNotifyTransitionTerminalGoesToEmployee(t *testing.T) {
	store := &fakeStore{actors: map[string]string{"employee": "user-emp"}}
	svc := New(store, nil)

	svc.NotifyTransition(context.Background(), "t1", appraisal.TransitionEvent{
		AppraisalID: "a1",
		FromStatus:  appraisal.StatusBranchFinalAssessment,
		ToStatus:    appraisal.StatusCompleted,
		ActorRole:   "branch_supervisor",
	})

	if len(store.created) != 1 {
		t.Fatalf("created %d notifications, want 1", len(store.created))
	}
	if store.created[0].UserID != "user-emp" {
		t.Fatalf("notified %s, want user-emp", store.created[0].UserID)
	}
	if store.created[0].Type != TypeAppraisalCompleted {
		t.Fatalf("type = %s, want %s", store.created[0].Type, TypeAppraisalCompleted)
	}
}

func TestNotifyTransitionAliasResolvesOwner(t *testing.T) {
	// pending_supervisor is an alias for the supervisor stage.
	store := &fakeStore{actors: map[string]string{"supervisor": "user-sup"}}
	svc := New(store, nil)

	svc.NotifyTransition(context.Background(), "t1", appraisal.TransitionEvent{
		AppraisalID: "a1",
		FromStatus:  appraisal.StatusSubmitted,
		ToStatus:    "pending_supervisor",
		ActorRole:   "employee",
	})

	if len(store.created) != 1 || store.created[0].UserID != "user-sup" {
		t.Fatalf("expected supervisor notification, got %+v", store.created)
	}
}

func TestNotifyTransitionMissingActorIsSilent(t *testing.T) {
	store := &fakeStore{actors: map[string]string{}}
	svc := New(store, nil)

	svc.NotifyTransition(context.Background(), "t1", appraisal.TransitionEvent{
		AppraisalID: "a1",
		FromStatus:  appraisal.StatusDraft,
		ToStatus:    appraisal.StatusSubmitted,
	})

	if len(store.created) != 0 {
		t.Fatalf("expected no notifications, got %d", len(store.created))
	}
}

func TestCreateSendsEmailWhenEnabled(t *testing.T) {
	store := &fakeStore{
		emailEnabled: true,
		emailFrom:    "hr@example.com",
		emails:       map[string]string{"u1": "u1@example.com"},
	}
	mailer := &fakeMailer{}
	svc := New(store, mailer)

	if err := svc.Create(context.Background(), "t1", "u1", TypeWeightSubmitted, "title", "body"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "u1@example.com" {
		t.Fatalf("expected one email to u1@example.com, got %v", mailer.sent)
	}
}

func TestCreateSkipsEmailWhenDisabled(t *testing.T) {
	store := &fakeStore{emails: map[string]string{"u1": "u1@example.com"}}
	mailer := &fakeMailer{}
	svc := New(store, mailer)

	if err := svc.Create(context.Background(), "t1", "u1", TypeWeightSubmitted, "title", "body"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("expected no email, got %v", mailer.sent)
	}
}

func TestCreateMailFailureDoesNotPropagate(t *testing.T) {
	store := &fakeStore{
		emailEnabled: true,
		emails:       map[string]string{"u1": "u1@example.com"},
	}
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc := New(store, mailer)

	if err := svc.Create(context.Background(), "t1", "u1", TypeWeightSubmitted, "title", "body"); err != nil {
		t.Fatalf("mail failure should not propagate, got %v", err)
	}
}
