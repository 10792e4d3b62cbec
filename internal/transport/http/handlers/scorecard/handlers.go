package scorecardhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"scorecard/internal/domain/audit"
	"scorecard/internal/domain/auth"
	"scorecard/internal/domain/notifications"
	"scorecard/internal/domain/scorecard"
	"scorecard/internal/transport/http/api"
	"scorecard/internal/transport/http/middleware"
	"scorecard/internal/transport/http/shared"
)

type Handler struct {
	Service *scorecard.Service
	Perms   middleware.PermissionStore
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *scorecard.Service, perms middleware.PermissionStore, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/scorecard", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermScorecardRead, h.Perms)).Get("/perspectives", h.handleListPerspectives)
		r.With(middleware.RequirePermission(auth.PermScorecardApprove, h.Perms)).Post("/perspectives", h.handleCreatePerspective)
		r.With(middleware.RequirePermission(auth.PermScorecardApprove, h.Perms)).Put("/perspectives/{perspectiveID}/type", h.handlePerspectiveType)
		r.With(middleware.RequirePermission(auth.PermScorecardApprove, h.Perms)).Delete("/perspectives/{perspectiveID}", h.handleDeletePerspective)
		r.With(middleware.RequirePermission(auth.PermScorecardRead, h.Perms)).Get("/department-weights", h.handleListWeights)
		r.With(middleware.RequirePermission(auth.PermScorecardWrite, h.Perms)).Post("/department-weights", h.handleCreateWeight)
		r.With(middleware.RequirePermission(auth.PermScorecardWrite, h.Perms)).Put("/department-weights/{weightID}", h.handleUpdateWeight)
		r.With(middleware.RequirePermission(auth.PermScorecardWrite, h.Perms)).Delete("/department-weights/{weightID}", h.handleDeleteWeight)
		r.With(middleware.RequirePermission(auth.PermScorecardRead, h.Perms)).Get("/department-weights/remaining", h.handleRemaining)
		r.With(middleware.RequirePermission(auth.PermScorecardRead, h.Perms)).Get("/objectives", h.handleListObjectives)
		r.With(middleware.RequirePermission(auth.PermScorecardWrite, h.Perms)).Post("/objectives", h.handleCreateObjective)
		r.With(middleware.RequirePermission(auth.PermScorecardWrite, h.Perms)).Put("/objectives/{objectiveID}/status", h.handleObjectiveStatus)
	})
}

func (h *Handler) handleListPerspectives(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	perspectives, err := h.Service.ListPerspectives(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "perspectives_list_failed", "failed to list perspectives", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, perspectives, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreatePerspective(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	var payload scorecard.StrategicPerspective
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	id, issues, err := h.Service.CreatePerspective(r.Context(), user.TenantID, payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "perspective_create_failed", "failed to create perspective", middleware.GetRequestID(r.Context()))
		return
	}
	if len(issues) > 0 {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), shared.IssuesFromMap(issues))
		return
	}
	h.record(r, user, "scorecard.perspective.create", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

type perspectiveTypeRequest struct {
	Type string `json:"type"`
}

func (h *Handler) handlePerspectiveType(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	var payload perspectiveTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	id := chi.URLParam(r, "perspectiveID")
	if err := h.Service.UpdatePerspectiveType(r.Context(), user.TenantID, id, payload.Type); err != nil {
		switch {
		case errors.Is(err, scorecard.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "perspective not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, scorecard.ErrInvalidStatus):
			api.Fail(w, http.StatusBadRequest, "invalid_type", "type must be quantitative or qualitative", middleware.GetRequestID(r.Context()))
		case errors.Is(err, scorecard.ErrImmutablePerspective):
			api.Fail(w, http.StatusConflict, "perspective_immutable", "perspective type cannot change once weights reference it", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "perspective_update_failed", "failed to update perspective", middleware.GetRequestID(r.Context()))
		}
		return
	}
	h.record(r, user, "scorecard.perspective.type", id, nil, payload)
	api.Success(w, map[string]bool{"updated": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeletePerspective(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	id := chi.URLParam(r, "perspectiveID")
	if err := h.Service.DeletePerspective(r.Context(), user.TenantID, id); err != nil {
		switch {
		case errors.Is(err, scorecard.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "perspective not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, scorecard.ErrPerspectiveInUse):
			api.Fail(w, http.StatusConflict, "perspective_in_use", "perspective is referenced by department weights", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "perspective_delete_failed", "failed to delete perspective", middleware.GetRequestID(r.Context()))
		}
		return
	}
	h.record(r, user, "scorecard.perspective.delete", id, nil, nil)
	api.Success(w, map[string]bool{"deleted": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListWeights(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	departmentID := strings.TrimSpace(r.URL.Query().Get("departmentId"))
	if departmentID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_query", "departmentId is required", middleware.GetRequestID(r.Context()))
		return
	}
	weights, err := h.Service.ListDepartmentWeights(r.Context(), user.TenantID, departmentID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "weights_list_failed", "failed to list department weights", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, weights, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateWeight(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	var form scorecard.WeightForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	id, issues, err := h.Service.CreateWeight(r.Context(), user.TenantID, form)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "weight_create_failed", "failed to create department weight", middleware.GetRequestID(r.Context()))
		return
	}
	if len(issues) > 0 {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), shared.IssuesFromMap(issues))
		return
	}
	h.record(r, user, "scorecard.weight.create", id, nil, form)
	h.notifyWeight(r, user, form)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateWeight(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	var form scorecard.WeightForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	id := chi.URLParam(r, "weightID")
	before, _ := h.Service.GetWeight(r.Context(), user.TenantID, id)
	issues, err := h.Service.UpdateWeight(r.Context(), user.TenantID, id, form)
	if err != nil {
		if errors.Is(err, scorecard.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "department weight not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "weight_update_failed", "failed to update department weight", middleware.GetRequestID(r.Context()))
		return
	}
	if len(issues) > 0 {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), shared.IssuesFromMap(issues))
		return
	}
	h.record(r, user, "scorecard.weight.update", id, before, form)
	api.Success(w, map[string]bool{"updated": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteWeight(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	id := chi.URLParam(r, "weightID")
	before, _ := h.Service.GetWeight(r.Context(), user.TenantID, id)
	if err := h.Service.DeleteWeight(r.Context(), user.TenantID, id); err != nil {
		if errors.Is(err, scorecard.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "department weight not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "weight_delete_failed", "failed to delete department weight", middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, "scorecard.weight.delete", id, before, nil)
	api.Success(w, map[string]bool{"deleted": true}, middleware.GetRequestID(r.Context()))
}

// handleRemaining reports capacity left under the perspective ceiling. The
// optional loadedAt query parameter is the client's snapshot timestamp, used
// to flag a stale total.
func (h *Handler) handleRemaining(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	departmentID := strings.TrimSpace(r.URL.Query().Get("departmentId"))
	perspectiveID := strings.TrimSpace(r.URL.Query().Get("perspectiveId"))
	if departmentID == "" || perspectiveID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_query", "departmentId and perspectiveId are required", middleware.GetRequestID(r.Context()))
		return
	}
	var snapshotAt time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("loadedAt")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_query", "loadedAt must be an RFC3339 timestamp", middleware.GetRequestID(r.Context()))
			return
		}
		snapshotAt = parsed
	}

	capacity, err := h.Service.Remaining(r.Context(), user.TenantID, departmentID, perspectiveID, snapshotAt)
	if err != nil {
		if errors.Is(err, scorecard.ErrUnknownPerspective) {
			api.Fail(w, http.StatusNotFound, "not_found", "perspective not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "remaining_failed", "failed to compute remaining capacity", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, capacity, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListObjectives(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	departmentID := strings.TrimSpace(r.URL.Query().Get("departmentId"))
	objectives, err := h.Service.ListObjectives(r.Context(), user.TenantID, departmentID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "objectives_list_failed", "failed to list objectives", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, objectives, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateObjective(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	var payload scorecard.StrategicObjective
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	id, issues, err := h.Service.CreateObjective(r.Context(), user.TenantID, payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "objective_create_failed", "failed to create objective", middleware.GetRequestID(r.Context()))
		return
	}
	if len(issues) > 0 {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), shared.IssuesFromMap(issues))
		return
	}
	h.record(r, user, "scorecard.objective.create", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

type objectiveStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleObjectiveStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	var payload objectiveStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	id := chi.URLParam(r, "objectiveID")
	if err := h.Service.UpdateObjectiveStatus(r.Context(), user.TenantID, id, payload.Status); err != nil {
		switch {
		case errors.Is(err, scorecard.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "objective not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, scorecard.ErrInvalidStatus):
			api.Fail(w, http.StatusBadRequest, "invalid_status", "unsupported objective status", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "objective_status_failed", "failed to update objective status", middleware.GetRequestID(r.Context()))
		}
		return
	}
	h.record(r, user, "scorecard.objective.status", id, nil, payload)
	h.notifyObjectiveMove(r, user, id, payload.Status)
	api.Success(w, map[string]bool{"updated": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) notifyWeight(r *http.Request, user auth.UserContext, form scorecard.WeightForm) {
	err := h.Notify.Create(r.Context(), user.TenantID, user.UserID, notifications.TypeWeightSubmitted,
		"Department weight submitted",
		"A weight of "+form.Weight+" was recorded for department "+form.DepartmentID+".")
	if err != nil {
		slog.Warn("weight notification failed", "err", err)
	}
}

func (h *Handler) notifyObjectiveMove(r *http.Request, user auth.UserContext, objectiveID, status string) {
	err := h.Notify.Create(r.Context(), user.TenantID, user.UserID, notifications.TypeObjectiveStatusMoved,
		"Objective status changed",
		"Objective "+objectiveID+" moved to "+status+".")
	if err != nil {
		slog.Warn("objective notification failed", "err", err)
	}
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action, entityID string, before, after any) {
	err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, "scorecard", entityID, middleware.GetRequestID(r.Context()), before, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
