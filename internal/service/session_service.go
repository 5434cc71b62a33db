package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"intervue/internal/cache"
	"intervue/internal/model"
	"intervue/internal/repository"
)

const (
	roomCodeChars    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomCodeLen      = 8
	roomCodeAttempts = 10
	rollbackTimeout  = 5 * time.Second
)

// SessionService owns the interview session lifecycle:
// PENDING -> ACTIVE -> ENDED, with ENDED terminal.
type SessionService struct {
	sessions    repository.SessionRepo
	roomCache   cache.RoomCache
	reports     *ReportService
	broadcaster Broadcaster
	locks       *roomLocks
	log         *zap.Logger
	now         func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(
	sessions repository.SessionRepo,
	roomCache cache.RoomCache,
	reports *ReportService,
	log *zap.Logger,
) *SessionService {
	return &SessionService{
		sessions:  sessions,
		roomCache: roomCache,
		reports:   reports,
		locks:     newRoomLocks(),
		log:       log,
		now:       time.Now,
	}
}

// SetBroadcaster injects the hub used for the end-of-interview notification
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Create allocates a room code and stores a PENDING session owned by interviewerID
func (s *SessionService) Create(ctx context.Context, interviewerID string, cfg model.SessionConfig) (*model.Session, error) {
	if strings.TrimSpace(interviewerID) == "" {
		return nil, fmt.Errorf("%w: interviewer id is required", ErrInvalidInput)
	}
	cfg = cfg.Normalize()
	if cfg.HasQuiz && (strings.TrimSpace(cfg.QuizTopic) == "" || cfg.QuizQuestionCount <= 0 || cfg.QuizQuestionDuration <= 0) {
		return nil, fmt.Errorf("%w: quiz topic, question count and duration are required", ErrInvalidInput)
	}

	for attempt := 0; attempt < roomCodeAttempts; attempt++ {
		code, err := s.generateRoomCode(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to generate room code: %w", err)
		}

		session := &model.Session{
			RoomCode:      code,
			InterviewerID: interviewerID,
			Config:        cfg,
			Status:        model.SessionPending,
			CreatedAt:     s.now().UTC(),
		}
		err = s.sessions.Create(ctx, session)
		if errors.Is(err, repository.ErrDuplicateRoomCode) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: create session: %w", ErrPersistence, err)
		}

		s.cacheMeta(ctx, session)
		s.log.Info("interview created",
			zap.String("room_code", code),
			zap.String("interviewer_id", interviewerID))
		return session, nil
	}
	return nil, fmt.Errorf("%w: failed to allocate a unique room code", ErrPersistence)
}

// Verify returns the configuration of a joinable (PENDING or ACTIVE) session
func (s *SessionService) Verify(ctx context.Context, code string) (*model.SessionConfig, error) {
	meta, err := s.roomCache.GetMeta(ctx, code)
	if err != nil {
		s.log.Warn("room cache read failed", zap.String("room_code", code), zap.Error(err))
	}
	if meta != nil {
		if !meta.Joinable() {
			return nil, ErrNotFound
		}
		cfg := meta.Config
		return &cfg, nil
	}

	session, err := s.sessions.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: get session: %w", ErrPersistence, err)
	}
	if session == nil || !session.Joinable() {
		return nil, ErrNotFound
	}
	s.cacheMeta(ctx, session)
	cfg := session.Config
	return &cfg, nil
}

// Get returns a session by room code
func (s *SessionService) Get(ctx context.Context, code string) (*model.Session, error) {
	session, err := s.sessions.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: get session: %w", ErrPersistence, err)
	}
	if session == nil {
		return nil, ErrNotFound
	}
	return session, nil
}

// Activate performs PENDING -> ACTIVE on a participant join. It reports
// whether this call made the transition; joining an ACTIVE session is a no-op.
func (s *SessionService) Activate(ctx context.Context, code string) (bool, error) {
	return s.Admit(ctx, code, nil)
}

// Admit activates the session like Activate and then runs join while the
// room lock is still held, so a concurrent End either sees the new member
// or the join is rejected. join is not called when an error is returned.
func (s *SessionService) Admit(ctx context.Context, code string, join func()) (bool, error) {
	unlock := s.locks.Lock(code)
	defer unlock()

	changed, err := s.activateLocked(ctx, code)
	if err != nil {
		return false, err
	}
	if join != nil {
		join()
	}
	return changed, nil
}

func (s *SessionService) activateLocked(ctx context.Context, code string) (bool, error) {
	changed, err := s.sessions.UpdateStatus(ctx, code, []model.SessionStatus{model.SessionPending}, model.SessionActive)
	if err != nil {
		return false, fmt.Errorf("%w: activate session: %w", ErrPersistence, err)
	}
	if changed {
		s.setCachedStatus(ctx, code, model.SessionActive)
		s.log.Info("interview active", zap.String("room_code", code))
		return true, nil
	}

	session, err := s.sessions.GetByCode(ctx, code)
	if err != nil {
		return false, fmt.Errorf("%w: get session: %w", ErrPersistence, err)
	}
	switch {
	case session == nil:
		return false, ErrNotFound
	case session.Status == model.SessionEnded:
		return false, ErrInvalidTransition
	}
	return false, nil
}

// End compiles the report and moves the session to ENDED as one unit of work.
// Only the owner may end a session. Ending an ENDED session returns the
// existing report reference without compiling again.
func (s *SessionService) End(ctx context.Context, code, requesterID string) (string, error) {
	unlock := s.locks.Lock(code)
	defer unlock()

	session, err := s.sessions.GetByCode(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: get session: %w", ErrPersistence, err)
	}
	if session == nil {
		return "", ErrNotFound
	}
	if session.InterviewerID != requesterID {
		s.log.Warn("end rejected: requester is not the owner",
			zap.String("room_code", code),
			zap.String("requester_id", requesterID))
		return "", ErrUnauthorized
	}
	if session.Status == model.SessionEnded {
		return session.ReportRef, nil
	}

	ref, err := s.reports.Compile(ctx, session)
	if err != nil {
		return "", err
	}

	endedAt := s.now().UTC()
	changed, err := s.sessions.MarkEnded(ctx, code, endedAt, ref)
	if err != nil || !changed {
		s.discardReport(ctx, ref)
		if err != nil {
			return "", fmt.Errorf("%w: mark session ended: %w", ErrPersistence, err)
		}
		current, getErr := s.sessions.GetByCode(ctx, code)
		if getErr == nil && current != nil && current.Status == model.SessionEnded {
			return current.ReportRef, nil
		}
		return "", fmt.Errorf("%w: session %s changed while ending", ErrPersistence, code)
	}

	s.setCachedStatus(ctx, code, model.SessionEnded)
	s.log.Info("interview ended",
		zap.String("room_code", code),
		zap.String("report_ref", ref),
		zap.Time("ended_at", endedAt))

	// Still under the room lock: members admitted before this point hear it,
	// later joins see ENDED.
	if s.broadcaster != nil {
		s.broadcaster.NotifyInterviewEnded(code)
	}
	return ref, nil
}

// History lists the ended sessions of an interviewer, most recent first
func (s *SessionService) History(ctx context.Context, interviewerID string) ([]*model.Session, error) {
	if strings.TrimSpace(interviewerID) == "" {
		return nil, fmt.Errorf("%w: interviewer id is required", ErrInvalidInput)
	}
	sessions, err := s.sessions.ListEnded(ctx, interviewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: list sessions: %w", ErrPersistence, err)
	}
	return sessions, nil
}

// The report is removed even if the request context is already cancelled.
func (s *SessionService) discardReport(ctx context.Context, ref string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()
	s.reports.Discard(ctx, ref)
}

func (s *SessionService) cacheMeta(ctx context.Context, session *model.Session) {
	if err := s.roomCache.SetMeta(ctx, session.RoomCode, session.Meta()); err != nil {
		s.log.Warn("room cache write failed", zap.String("room_code", session.RoomCode), zap.Error(err))
	}
}

// A stale cached status must not outlive the transition, so a failed update drops the entry.
func (s *SessionService) setCachedStatus(ctx context.Context, code string, status model.SessionStatus) {
	if err := s.roomCache.SetStatus(ctx, code, status); err != nil {
		s.log.Warn("room cache status update failed", zap.String("room_code", code), zap.Error(err))
		if err := s.roomCache.Delete(ctx, code); err != nil {
			s.log.Warn("room cache delete failed", zap.String("room_code", code), zap.Error(err))
		}
	}
}

// generateRoomCode creates an 8-char code from an unambiguous alphabet.
// The Redis check is advisory; the unique index on roomCode is authoritative.
func (s *SessionService) generateRoomCode(ctx context.Context) (string, error) {
	for attempts := 0; attempts < roomCodeAttempts; attempts++ {
		b := make([]byte, roomCodeLen)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}

		code := make([]byte, roomCodeLen)
		for i := range code {
			code[i] = roomCodeChars[int(b[i])%len(roomCodeChars)]
		}
		codeStr := string(code)

		exists, err := s.roomCache.Exists(ctx, codeStr)
		if err != nil {
			s.log.Warn("room cache lookup failed", zap.Error(err))
			return codeStr, nil
		}
		if !exists {
			return codeStr, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique room code")
}
