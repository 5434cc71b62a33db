package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"intervue/internal/model"
	"intervue/internal/service"
)

// LogAppender stores process log entries
type LogAppender interface {
	Append(ctx context.Context, roomCode, content string) (*model.ProcessLogEntry, error)
}

// LogHandler receives process lists from monitoring agents
type LogHandler struct {
	logs LogAppender
	log  *zap.Logger
}

// NewLogHandler creates a new log handler
func NewLogHandler(logs LogAppender, log *zap.Logger) *LogHandler {
	return &LogHandler{logs: logs, log: log}
}

// AppendLogRequest is one process snapshot from an agent
type AppendLogRequest struct {
	RoomCode    string `json:"roomCode"`
	ProcessList string `json:"processList"`
}

// Append handles POST /v1/logs/process
// @Summary Append a process log entry to a session
// @Tags logs
// @Accept json
// @Produce json
// @Param X-Agent-Key header string false "agent key"
// @Param body body AppendLogRequest true "process list"
// @Success 201 {object} map[string]bool
// @Failure 404 {object} map[string]bool
// @Router /v1/logs/process [post]
func (h *LogHandler) Append(w http.ResponseWriter, r *http.Request) {
	var req AppendLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RoomCode == "" || req.ProcessList == "" {
		writeError(w, http.StatusBadRequest, "room code and process list are required")
		return
	}

	_, err := h.logs.Append(r.Context(), req.RoomCode, req.ProcessList)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]bool{"success": false})
	default:
		if errors.Is(err, service.ErrPersistence) {
			h.log.Error("append process log failed", zap.String("room_code", req.RoomCode), zap.Error(err))
		}
		writeServiceError(w, err)
	}
}
