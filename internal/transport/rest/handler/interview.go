package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"intervue/internal/model"
	"intervue/internal/service"
	"intervue/internal/transport/rest/middleware"
)

// SessionManager is the session lifecycle as seen by the HTTP layer
type SessionManager interface {
	Create(ctx context.Context, interviewerID string, cfg model.SessionConfig) (*model.Session, error)
	Verify(ctx context.Context, code string) (*model.SessionConfig, error)
	End(ctx context.Context, code, requesterID string) (string, error)
	History(ctx context.Context, interviewerID string) ([]*model.Session, error)
}

// InterviewHandler handles interview session endpoints
type InterviewHandler struct {
	sessions SessionManager
	log      *zap.Logger
}

// NewInterviewHandler creates a new interview handler
func NewInterviewHandler(sessions SessionManager, log *zap.Logger) *InterviewHandler {
	return &InterviewHandler{sessions: sessions, log: log}
}

// CreateInterviewResponse is returned after creating an interview
type CreateInterviewResponse struct {
	RoomCode string         `json:"roomCode"`
	Session  *model.Session `json:"session"`
}

// VerifyRoomResponse carries the config a participant needs to enter the room
type VerifyRoomResponse struct {
	IsValid       bool                 `json:"isValid"`
	SessionConfig *model.SessionConfig `json:"sessionConfig"`
}

// EndInterviewResponse points at the compiled report
type EndInterviewResponse struct {
	Message   string `json:"message"`
	ReportRef string `json:"reportRef"`
	ReportURL string `json:"reportUrl"`
}

// Create handles POST /v1/interviews
// @Summary Create an interview room
// @Tags interviews
// @Accept json
// @Produce json
// @Param body body model.SessionConfig true "feature flags and quiz settings"
// @Success 201 {object} CreateInterviewResponse
// @Router /v1/interviews [post]
func (h *InterviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var cfg model.SessionConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.sessions.Create(r.Context(), userID, cfg)
	if err != nil {
		h.logFailure("create interview", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateInterviewResponse{
		RoomCode: session.RoomCode,
		Session:  session,
	})
}

// History handles GET /v1/interviews/history
// @Summary List ended interviews of the caller
// @Tags interviews
// @Produce json
// @Success 200 {array} model.Session
// @Router /v1/interviews/history [get]
func (h *InterviewHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessions, err := h.sessions.History(r.Context(), userID)
	if err != nil {
		h.logFailure("interview history", err)
		writeServiceError(w, err)
		return
	}
	if sessions == nil {
		sessions = []*model.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// Verify handles GET /v1/rooms/{code}/verify
// @Summary Check that a room can be joined
// @Tags rooms
// @Produce json
// @Param code path string true "room code"
// @Success 200 {object} VerifyRoomResponse
// @Failure 404 {object} map[string]string
// @Router /v1/rooms/{code}/verify [get]
func (h *InterviewHandler) Verify(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if code == "" {
		writeError(w, http.StatusBadRequest, "room code is required")
		return
	}

	cfg, err := h.sessions.Verify(r.Context(), code)
	if errors.Is(err, service.ErrNotFound) {
		writeError(w, http.StatusNotFound, "invalid, expired, or completed room code")
		return
	}
	if err != nil {
		h.logFailure("verify room", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, VerifyRoomResponse{IsValid: true, SessionConfig: cfg})
}

// End handles POST /v1/interviews/{code}/end
// @Summary End an interview and compile its report
// @Tags interviews
// @Produce json
// @Param code path string true "room code"
// @Success 200 {object} EndInterviewResponse
// @Failure 403 {object} map[string]string
// @Failure 503 {object} map[string]interface{}
// @Router /v1/interviews/{code}/end [post]
func (h *InterviewHandler) End(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	code := mux.Vars(r)["code"]

	ref, err := h.sessions.End(r.Context(), code, userID)
	if err != nil {
		h.logFailure("end interview", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, EndInterviewResponse{
		Message:   "Interview ended successfully.",
		ReportRef: ref,
		ReportURL: "/v1/reports/" + ref,
	})
}

func (h *InterviewHandler) logFailure(op string, err error) {
	if errors.Is(err, service.ErrPersistence) {
		h.log.Error(op+" failed", zap.Error(err))
		return
	}
	h.log.Debug(op+" rejected", zap.Error(err))
}
