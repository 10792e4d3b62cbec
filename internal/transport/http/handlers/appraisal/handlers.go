package appraisalhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"scorecard/internal/domain/appraisal"
	"scorecard/internal/domain/audit"
	"scorecard/internal/domain/auth"
	"scorecard/internal/domain/notifications"
	"scorecard/internal/transport/http/api"
	"scorecard/internal/transport/http/middleware"
	"scorecard/internal/transport/http/shared"
)

// IdempotencyStore replays stored decision responses for repeated
// Idempotency-Key requests.
type IdempotencyStore interface {
	Check(ctx context.Context, tenantID, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, tenantID, userID, endpoint, key, requestHash string, response json.RawMessage) error
}

type Handler struct {
	Service     *appraisal.Service
	Perms       middleware.PermissionStore
	Notify      *notifications.Service
	Audit       *audit.Service
	Idempotency IdempotencyStore
}

func NewHandler(service *appraisal.Service, perms middleware.PermissionStore, notify *notifications.Service, auditSvc *audit.Service, idem IdempotencyStore) *Handler {
	return &Handler{Service: service, Perms: perms, Notify: notify, Audit: auditSvc, Idempotency: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/appraisals", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAppraisalRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermAppraisalWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermAppraisalRead, h.Perms)).Get("/{appraisalID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermAppraisalWrite, h.Perms)).Delete("/{appraisalID}", h.handleDelete)
		r.With(middleware.RequirePermission(auth.PermAppraisalRead, h.Perms)).Get("/{appraisalID}/actions", h.handleActions)
		r.With(middleware.RequirePermission(auth.PermAppraisalWrite, h.Perms)).Post("/{appraisalID}/submit", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermAppraisalRead, h.Perms)).Get("/{appraisalID}/ratings", h.handleListRatings)
		r.With(middleware.RequirePermission(auth.PermAppraisalWrite, h.Perms)).Put("/{appraisalID}/ratings/self", h.handleSelfRatings)
		r.With(middleware.RequirePermission(auth.PermAppraisalReview, h.Perms)).Post("/{appraisalID}/ratings/start", h.handleStartRating)
		r.With(middleware.RequirePermission(auth.PermAppraisalReview, h.Perms)).Post("/{appraisalID}/ratings", h.handleSubmitRating)
		r.With(middleware.RequirePermission(auth.PermAppraisalApprove, h.Perms)).Post("/{appraisalID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermAppraisalApprove, h.Perms)).Post("/{appraisalID}/reject", h.handleReject)
		r.With(middleware.RequirePermission(auth.PermAppraisalWrite, h.Perms)).Post("/{appraisalID}/disagree", h.handleDisagree)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	page := shared.ParsePagination(r, 25, 100)
	filter := appraisal.ListFilter{
		Status:     strings.TrimSpace(r.URL.Query().Get("status")),
		Period:     strings.TrimSpace(r.URL.Query().Get("period")),
		EmployeeID: strings.TrimSpace(r.URL.Query().Get("employeeId")),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	result, err := h.Service.List(r.Context(), user.TenantID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "appraisal_list_failed", "failed to list appraisals", middleware.GetRequestID(r.Context()))
		return
	}

	items := make([]map[string]any, 0, len(result.Appraisals))
	for _, a := range result.Appraisals {
		items = append(items, map[string]any{
			"appraisal": a,
			"badge":     appraisal.BadgeFor(a.Status),
			"actions":   h.Service.Actions(a, user.RoleName),
		})
	}
	api.Success(w, map[string]any{"items": items, "total": result.Total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload appraisal.Appraisal
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Service.Create(r.Context(), user.TenantID, payload)
	if err != nil {
		if fields, ok := appraisal.AsValidationError(err); ok {
			shared.FailValidation(w, middleware.GetRequestID(r.Context()), shared.IssuesFromMap(fields))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "appraisal_create_failed", "failed to create appraisal", middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, "appraisal.create", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	a, err := h.Service.Get(r.Context(), user.TenantID, chi.URLParam(r, "appraisalID"))
	if err != nil {
		h.failDomain(w, r, err, "appraisal_get_failed", "failed to load appraisal")
		return
	}
	api.Success(w, map[string]any{
		"appraisal": a,
		"badge":     appraisal.BadgeFor(a.Status),
		"actions":   h.Service.Actions(a, user.RoleName),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	id := chi.URLParam(r, "appraisalID")
	if err := h.Service.Delete(r.Context(), user.TenantID, id, user.RoleName); err != nil {
		h.failDomain(w, r, err, "appraisal_delete_failed", "failed to delete appraisal")
		return
	}
	h.record(r, user, "appraisal.delete", id, nil, nil)
	api.Success(w, map[string]bool{"deleted": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleActions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	a, err := h.Service.Get(r.Context(), user.TenantID, chi.URLParam(r, "appraisalID"))
	if err != nil {
		h.failDomain(w, r, err, "appraisal_get_failed", "failed to load appraisal")
		return
	}
	api.Success(w, map[string]any{
		"status":  appraisal.CanonicalStatus(a.Status),
		"badge":   appraisal.BadgeFor(a.Status),
		"actions": h.Service.Actions(a, user.RoleName),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	id := chi.URLParam(r, "appraisalID")
	ev, err := h.Service.Submit(r.Context(), user.TenantID, id, user.RoleName)
	if err != nil {
		h.failDomain(w, r, err, "appraisal_submit_failed", "failed to submit appraisal")
		return
	}
	h.Notify.NotifyTransition(r.Context(), user.TenantID, ev)
	h.record(r, user, "appraisal.submit", id, nil, ev)
	api.Success(w, ev, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRatings(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	ratings, err := h.Service.Ratings(r.Context(), user.TenantID, chi.URLParam(r, "appraisalID"))
	if err != nil {
		h.failDomain(w, r, err, "ratings_list_failed", "failed to list ratings")
		return
	}
	api.Success(w, ratings, middleware.GetRequestID(r.Context()))
}

type ratingsRequest struct {
	Ratings []appraisal.IndicatorRating `json:"ratings"`
}

func (h *Handler) handleSelfRatings(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	var payload ratingsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	id := chi.URLParam(r, "appraisalID")
	if err := h.Service.SaveSelfRatings(r.Context(), user.TenantID, id, user.RoleName, payload.Ratings); err != nil {
		h.failDomain(w, r, err, "self_ratings_failed", "failed to save self ratings")
		return
	}
	h.record(r, user, "appraisal.ratings.self", id, nil, payload.Ratings)
	api.Success(w, map[string]bool{"saved": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStartRating(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	id := chi.URLParam(r, "appraisalID")
	ev, err := h.Service.StartRating(r.Context(), user.TenantID, id, user.RoleName)
	if err != nil {
		h.failDomain(w, r, err, "rating_start_failed", "failed to start rating")
		return
	}
	h.Notify.NotifyTransition(r.Context(), user.TenantID, ev)
	h.record(r, user, "appraisal.ratings.start", id, nil, ev)
	api.Success(w, ev, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	var payload ratingsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	id := chi.URLParam(r, "appraisalID")
	ev, err := h.Service.SubmitRating(r.Context(), user.TenantID, id, user.RoleName, payload.Ratings)
	if err != nil {
		h.failDomain(w, r, err, "rating_submit_failed", "failed to submit rating")
		return
	}
	h.Notify.NotifyTransition(r.Context(), user.TenantID, ev)
	h.record(r, user, "appraisal.ratings.submit", id, nil, ev)
	api.Success(w, ev, middleware.GetRequestID(r.Context()))
}

type decisionRequest struct {
	Comments string `json:"comments"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, "approve")
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, "reject")
}

// handleDecision runs approve and reject. When the client supplies an
// Idempotency-Key header, a replay with the same payload returns the stored
// response instead of re-running the transition.
func (h *Handler) handleDecision(w http.ResponseWriter, r *http.Request, decision string) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	var payload decisionRequest
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
			return
		}
	}

	id := chi.URLParam(r, "appraisalID")
	endpoint := "appraisals/" + decision
	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	requestHash := middleware.RequestHash(append([]byte(id+"|"), raw...))

	if idemKey != "" {
		stored, found, err := h.Idempotency.Check(r.Context(), user.TenantID, user.UserID, endpoint, idemKey, requestHash)
		if err != nil {
			if errors.Is(err, middleware.ErrIdempotencyConflict) {
				api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different payload", middleware.GetRequestID(r.Context()))
				return
			}
			api.Fail(w, http.StatusInternalServerError, "idempotency_error", "idempotency check failed", middleware.GetRequestID(r.Context()))
			return
		}
		if found {
			var ev appraisal.TransitionEvent
			if err := json.Unmarshal(stored, &ev); err != nil {
				// Never re-run the transition behind an unreadable stored
				// response; the first execution may already have advanced it.
				slog.Warn("stored idempotent response unreadable", "endpoint", endpoint, "err", err)
				api.Fail(w, http.StatusInternalServerError, "idempotency_error", "stored response could not be replayed", middleware.GetRequestID(r.Context()))
				return
			}
			api.Success(w, ev, middleware.GetRequestID(r.Context()))
			return
		}
	}

	var ev appraisal.TransitionEvent
	if decision == "approve" {
		ev, err = h.Service.Approve(r.Context(), user.TenantID, id, user.RoleName, payload.Comments)
	} else {
		ev, err = h.Service.Reject(r.Context(), user.TenantID, id, user.RoleName, payload.Comments)
	}
	if err != nil {
		h.failDomain(w, r, err, "appraisal_"+decision+"_failed", "failed to "+decision+" appraisal")
		return
	}

	if idemKey != "" {
		response, _ := json.Marshal(ev)
		if err := h.Idempotency.Save(r.Context(), user.TenantID, user.UserID, endpoint, idemKey, requestHash, response); err != nil {
			slog.Warn("idempotency save failed", "endpoint", endpoint, "err", err)
		}
	}

	h.Notify.NotifyTransition(r.Context(), user.TenantID, ev)
	h.record(r, user, "appraisal."+decision, id, nil, ev)
	api.Success(w, ev, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDisagree(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	id := chi.URLParam(r, "appraisalID")
	if err := h.Service.Disagree(r.Context(), user.TenantID, id, user.RoleName); err != nil {
		h.failDomain(w, r, err, "appraisal_disagree_failed", "failed to record disagreement")
		return
	}
	h.record(r, user, "appraisal.disagree", id, nil, nil)
	api.Success(w, map[string]bool{"recorded": true}, middleware.GetRequestID(r.Context()))
}

// failDomain maps domain errors onto the shared response envelope.
func (h *Handler) failDomain(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, appraisal.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "appraisal not found", requestID)
	case errors.Is(err, appraisal.ErrTransitionNotAllowed):
		api.Fail(w, http.StatusConflict, "transition_not_allowed", "action is not available in the current stage", requestID)
	case errors.Is(err, appraisal.ErrStaleStatus):
		api.Fail(w, http.StatusConflict, "stale_status", "appraisal changed since it was loaded, reload and retry", requestID)
	default:
		if fields, ok := appraisal.AsValidationError(err); ok {
			shared.FailValidation(w, requestID, shared.IssuesFromMap(fields))
			return
		}
		slog.Warn("appraisal handler error", "code", code, "err", err)
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action, entityID string, before, after any) {
	err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, "appraisal", entityID, middleware.GetRequestID(r.Context()), before, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
