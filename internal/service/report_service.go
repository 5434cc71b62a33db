package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"go.uber.org/zap"

	"intervue/internal/model"
	"intervue/internal/repository"
)

const reportTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// ReportService compiles process logs into the end-of-session report
type ReportService struct {
	logs  repository.ProcessLogRepo
	store repository.ReportStore
	log   *zap.Logger
	now   func() time.Time
}

// NewReportService creates a new report service
func NewReportService(logs repository.ProcessLogRepo, store repository.ReportStore, log *zap.Logger) *ReportService {
	return &ReportService{
		logs:  logs,
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Compile renders every log entry of the session and writes the report once.
// It returns the storage reference of the new report.
func (s *ReportService) Compile(ctx context.Context, session *model.Session) (string, error) {
	entries, err := s.logs.ListByRoomCode(ctx, session.RoomCode)
	if err != nil {
		return "", fmt.Errorf("%w: list process logs: %w", ErrPersistence, err)
	}

	generatedAt := s.now().UTC()
	content := RenderReport(session.RoomCode, generatedAt, entries)
	name := ReportFileName(session.RoomCode, generatedAt)

	ref, err := s.store.Put(ctx, session.RoomCode, name, content)
	if err != nil {
		return "", fmt.Errorf("%w: write report: %w", ErrPersistence, err)
	}

	s.log.Info("report compiled",
		zap.String("room_code", session.RoomCode),
		zap.String("report_ref", ref),
		zap.String("file", name),
		zap.Int("entries", len(entries)))
	return ref, nil
}

// Open returns the stored report for a reference
func (s *ReportService) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	rc, err := s.store.Open(ctx, ref)
	if errors.Is(err, repository.ErrReportNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open report: %w", ErrPersistence, err)
	}
	return rc, nil
}

// Discard removes a report that was written but never committed to a session.
func (s *ReportService) Discard(ctx context.Context, ref string) {
	if err := s.store.Delete(ctx, ref); err != nil {
		s.log.Warn("orphaned report left in storage", zap.String("report_ref", ref), zap.Error(err))
	}
}

// ReportFileName names a report after its room and generation time.
func ReportFileName(roomCode string, generatedAt time.Time) string {
	return fmt.Sprintf("report-%s-%d.txt", roomCode, generatedAt.UnixMilli())
}

// RenderReport produces the plain-text report. Output depends only on its
// arguments; entries are ordered by LoggedAt with ties kept in input order.
func RenderReport(roomCode string, generatedAt time.Time, entries []*model.ProcessLogEntry) []byte {
	ordered := make([]*model.ProcessLogEntry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].LoggedAt.Before(ordered[j].LoggedAt)
	})

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Process Log Report for Interview Session: %s\n", roomCode)
	fmt.Fprintf(&buf, "Date: %s\n\n", generatedAt.UTC().Format(reportTimeLayout))
	buf.WriteString("--- BEGIN LOGS ---\n\n")

	if len(ordered) == 0 {
		buf.WriteString("No processes were logged during this session.\n")
	}
	for _, e := range ordered {
		fmt.Fprintf(&buf, "[%s]\n%s\n\n", e.LoggedAt.UTC().Format(reportTimeLayout), e.Content)
	}

	buf.WriteString("--- END LOGS ---")
	return buf.Bytes()
}
