package appraisalhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"scorecard/internal/domain/appraisal"
	"scorecard/internal/domain/auth"
	"scorecard/internal/transport/http/middleware"
)

type fakeIdempotency struct {
	stored json.RawMessage
	found  bool
	err    error
	saves  int
}

func (f *fakeIdempotency) Check(_ context.Context, _, _, _, _, _ string) (json.RawMessage, bool, error) {
	return f.stored, f.found, f.err
}

func (f *fakeIdempotency) Save(_ context.Context, _, _, _, _, _ string, _ json.RawMessage) error {
	f.saves++
	return nil
}

func decisionRouter(h *Handler, secret string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Auth(secret))
	r.Post("/appraisals/{appraisalID}/approve", h.handleApprove)
	return r
}

func approveRequest(t *testing.T, secret string) *http.Request {
	t.Helper()
	token, err := auth.GenerateToken(secret, auth.Claims{
		UserID:   "user-1",
		TenantID: "t1",
		RoleID:   "role-1",
		RoleName: auth.RoleHR,
	}, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/appraisals/a1/approve", strings.NewReader(`{"comments":"ok"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Idempotency-Key", "key-1")
	return req
}

type decisionEnvelope struct {
	Success bool                      `json:"success"`
	Data    appraisal.TransitionEvent `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

// A repeated decision with the same Idempotency-Key answers from the stored
// response without touching the service again. The nil Service makes any
// re-execution fail loudly.
func TestDecisionReplayReturnsStoredResponse(t *testing.T) {
	stored, _ := json.Marshal(appraisal.TransitionEvent{
		AppraisalID: "a1",
		FromStatus:  "pending_hod",
		ToStatus:    "peer_approval",
		ActorRole:   "hod",
	})
	idem := &fakeIdempotency{stored: stored, found: true}
	h := &Handler{Idempotency: idem}

	rec := httptest.NewRecorder()
	decisionRouter(h, "secret").ServeHTTP(rec, approveRequest(t, "secret"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope decisionEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !envelope.Success || envelope.Data.ToStatus != "peer_approval" {
		t.Fatalf("expected stored event replayed, got %+v", envelope)
	}
	if idem.saves != 0 {
		t.Fatalf("replay must not save again, saved %d times", idem.saves)
	}
}

func TestDecisionReplayCorruptStoredResponse(t *testing.T) {
	idem := &fakeIdempotency{stored: json.RawMessage(`{"toStatus":`), found: true}
	h := &Handler{Idempotency: idem}

	rec := httptest.NewRecorder()
	decisionRouter(h, "secret").ServeHTTP(rec, approveRequest(t, "secret"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unreadable stored response, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope decisionEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error == nil || envelope.Error.Code != "idempotency_error" {
		t.Fatalf("expected idempotency_error, got %+v", envelope)
	}
	if idem.saves != 0 {
		t.Fatalf("corrupt replay must not save, saved %d times", idem.saves)
	}
}
