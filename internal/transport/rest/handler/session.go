package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/UniqBrio/UniqBrio-sub014/internal/cache"
	"github.com/UniqBrio/UniqBrio-sub014/internal/ledger"
	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
	"github.com/UniqBrio/UniqBrio-sub014/internal/repository"
	"github.com/UniqBrio/UniqBrio-sub014/internal/service"
	"github.com/UniqBrio/UniqBrio-sub014/internal/transport/rest/middleware"
)

// SessionManager is the ledger API the handlers drive
type SessionManager interface {
	CreateSession(ctx context.Context, tenantID string, req *model.CreateSessionRequest) (*model.ScheduleSession, error)
	GetSession(ctx context.Context, tenantID, id string) (*model.ScheduleSession, error)
	ListSessions(ctx context.Context, filter model.SessionFilter) ([]*model.ScheduleSession, error)
	Lineage(ctx context.Context, tenantID, id string) ([]*model.ScheduleSession, error)
	FindConflicts(ctx context.Context, tenantID, instructorID string, date time.Time, startTime, endTime, excludeID string) ([]*model.ScheduleSession, error)
	Reschedule(ctx context.Context, tenantID string, req *model.RescheduleRequest, idempotencyKey string) (*ledger.Result, error)
	Reassign(ctx context.Context, tenantID string, req *model.ReassignmentRequest, idempotencyKey string) (*ledger.Result, error)
	Cancel(ctx context.Context, tenantID string, req *model.CancellationRequest, idempotencyKey string) (*ledger.CancelResult, error)
}

// ConflictResponse is the 409 body of a slot conflict
type ConflictResponse struct {
	Error     string                   `json:"error"`
	Conflicts []*model.ScheduleSession `json:"conflicts"`
}

// SessionHandler handles schedule session endpoints
type SessionHandler struct {
	sessions SessionManager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Create handles POST /sessions
// @Summary Create a session
// @Tags sessions
// @Security BearerAuth
// @Param body body model.CreateSessionRequest true "session"
// @Success 201 {object} model.ScheduleSession
// @Failure 409 {object} ConflictResponse
// @Router /api/dashboard/services/session-management/sessions [post]
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.sessions.CreateSession(r.Context(), middleware.GetTenantID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// List handles GET /sessions
// @Summary List sessions
// @Tags sessions
// @Security BearerAuth
// @Param instructorId query string false "instructor"
// @Param status query string false "status"
// @Param from query string false "first day, YYYY-MM-DD"
// @Param to query string false "last day, YYYY-MM-DD"
// @Param limit query int false "max results"
// @Success 200 {array} model.ScheduleSession
// @Router /api/dashboard/services/session-management/sessions [get]
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.SessionFilter{
		TenantID:     middleware.GetTenantID(r.Context()),
		InstructorID: q.Get("instructorId"),
		Status:       model.SessionStatus(q.Get("status")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status "+string(filter.Status))
		return
	}

	for name, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		if raw := q.Get(name); raw != "" {
			t, err := model.ParseDate(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, name+" must be a date")
				return
			}
			*dst = &t
		}
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		filter.Limit = n
	}

	sessions, err := h.sessions.ListSessions(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if sessions == nil {
		sessions = []*model.ScheduleSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// Get handles GET /sessions/{id}
// @Summary Get a session
// @Tags sessions
// @Security BearerAuth
// @Param id path string true "session id"
// @Success 200 {object} model.ScheduleSession
// @Failure 404 {object} ErrorResponse
// @Router /api/dashboard/services/session-management/sessions/{id} [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.GetSession(r.Context(), middleware.GetTenantID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Lineage handles GET /sessions/{id}/lineage
// @Summary Root session and every successor
// @Tags sessions
// @Security BearerAuth
// @Param id path string true "session id"
// @Success 200 {array} model.ScheduleSession
// @Router /api/dashboard/services/session-management/sessions/{id}/lineage [get]
func (h *SessionHandler) Lineage(w http.ResponseWriter, r *http.Request) {
	chain, err := h.sessions.Lineage(r.Context(), middleware.GetTenantID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chain)
}

// Conflicts handles GET /conflicts
// @Summary Sessions overlapping a slot
// @Tags sessions
// @Security BearerAuth
// @Param instructorId query string true "instructor"
// @Param date query string true "YYYY-MM-DD"
// @Param startTime query string true "HH:MM"
// @Param endTime query string true "HH:MM"
// @Param excludeSessionId query string false "session to ignore"
// @Success 200 {array} model.ScheduleSession
// @Router /api/dashboard/services/session-management/conflicts [get]
func (h *SessionHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	instructorID := q.Get("instructorId")
	if instructorID == "" {
		writeError(w, http.StatusBadRequest, "instructorId is required")
		return
	}
	date, err := model.ParseDate(q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be a date")
		return
	}
	start, end := q.Get("startTime"), q.Get("endTime")
	if _, err := ledger.ClockMinutes(start); err != nil {
		writeError(w, http.StatusBadRequest, "startTime must be HH:MM")
		return
	}
	if _, err := ledger.ClockMinutes(end); err != nil {
		writeError(w, http.StatusBadRequest, "endTime must be HH:MM")
		return
	}

	conflicts, err := h.sessions.FindConflicts(r.Context(), middleware.GetTenantID(r.Context()),
		instructorID, date, start, end, q.Get("excludeSessionId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if conflicts == nil {
		conflicts = []*model.ScheduleSession{}
	}
	writeJSON(w, http.StatusOK, conflicts)
}

// Reschedule handles POST /session-reschedules
// @Summary Reschedule a session
// @Tags modifications
// @Security BearerAuth
// @Param Idempotency-Key header string false "replay key"
// @Param body body model.RescheduleRequest true "reschedule"
// @Success 201 {object} ledger.Result
// @Failure 409 {object} ConflictResponse
// @Router /api/dashboard/services/session-management/session-reschedules [post]
func (h *SessionHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	var req model.RescheduleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	res, err := h.sessions.Reschedule(ctx, middleware.GetTenantID(ctx), &req, middleware.GetIdempotencyKey(ctx))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Cancel handles POST /session-cancellations
// @Summary Cancel a session
// @Tags modifications
// @Security BearerAuth
// @Param Idempotency-Key header string false "replay key"
// @Param body body model.CancellationRequest true "cancellation"
// @Success 201 {object} ledger.CancelResult
// @Router /api/dashboard/services/session-management/session-cancellations [post]
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req model.CancellationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	res, err := h.sessions.Cancel(ctx, middleware.GetTenantID(ctx), &req, middleware.GetIdempotencyKey(ctx))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Reassign handles POST /instructor-reassignments
// @Summary Hand a session to another instructor
// @Tags modifications
// @Security BearerAuth
// @Param Idempotency-Key header string false "replay key"
// @Param body body model.ReassignmentRequest true "reassignment"
// @Success 201 {object} ledger.Result
// @Failure 409 {object} ConflictResponse
// @Router /api/dashboard/services/session-management/instructor-reassignments [post]
func (h *SessionHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	var req model.ReassignmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	res, err := h.sessions.Reassign(ctx, middleware.GetTenantID(ctx), &req, middleware.GetIdempotencyKey(ctx))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func writeServiceError(w http.ResponseWriter, err error) {
	var verr *ledger.ValidationError
	var cerr *service.ConflictError

	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Msg)
	case errors.As(err, &cerr):
		writeJSON(w, http.StatusConflict, ConflictResponse{Error: cerr.Error(), Conflicts: cerr.Conflicts})
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrStaleSnapshot),
		errors.Is(err, repository.ErrConcurrentModification),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, cache.ErrSlotBusy):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("[SessionHandler] ERROR: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
