package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"intervue/internal/model"
	"intervue/internal/repository"
)

// LogService aggregates process log entries reported by out-of-band agents.
// Room membership is not required.
type LogService struct {
	sessions repository.SessionRepo
	logs     repository.ProcessLogRepo
	clock    *logicalClock
	log      *zap.Logger
}

// NewLogService creates a new log service
func NewLogService(sessions repository.SessionRepo, logs repository.ProcessLogRepo, log *zap.Logger) *LogService {
	return &LogService{
		sessions: sessions,
		logs:     logs,
		clock:    newLogicalClock(nil),
		log:      log,
	}
}

// Append stores one entry for the session behind roomCode. Unknown rooms are
// reported as ErrNotFound and only logged at warn level.
func (s *LogService) Append(ctx context.Context, roomCode, content string) (*model.ProcessLogEntry, error) {
	roomCode = strings.TrimSpace(roomCode)
	if roomCode == "" || strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: room code and content are required", ErrInvalidInput)
	}

	session, err := s.sessions.GetByCode(ctx, roomCode)
	if err != nil {
		return nil, fmt.Errorf("%w: get session: %w", ErrPersistence, err)
	}
	if session == nil {
		s.log.Warn("process log received for unknown room", zap.String("room_code", roomCode))
		return nil, ErrNotFound
	}

	entry := &model.ProcessLogEntry{
		RoomCode: session.RoomCode,
		Content:  content,
		LoggedAt: s.clock.Next(),
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: append process log: %w", ErrPersistence, err)
	}

	s.log.Debug("process log appended",
		zap.String("room_code", roomCode),
		zap.Time("logged_at", entry.LoggedAt),
		zap.Int("bytes", len(content)))
	return entry, nil
}
