package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"intervue/internal/model"
	"intervue/internal/repository"
)

var errStoreDown = errors.New("store unavailable")

type fakeSessionRepo struct {
	mu            sync.Mutex
	sessions      map[string]*model.Session
	createErr     error
	markEndedErr  error
	duplicateOnce bool
	updates       int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*model.Session)}
}

func (r *fakeSessionRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *fakeSessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if r.duplicateOnce {
		r.duplicateOnce = false
		return repository.ErrDuplicateRoomCode
	}
	if _, ok := r.sessions[session.RoomCode]; ok {
		return repository.ErrDuplicateRoomCode
	}
	cp := *session
	r.sessions[session.RoomCode] = &cp
	return nil
}

func (r *fakeSessionRepo) GetByCode(ctx context.Context, code string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[code]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) UpdateStatus(ctx context.Context, code string, from []model.SessionStatus, to model.SessionStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[code]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if s.Status == f {
			s.Status = to
			r.updates++
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSessionRepo) MarkEnded(ctx context.Context, code string, endedAt time.Time, reportRef string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markEndedErr != nil {
		return false, r.markEndedErr
	}
	s, ok := r.sessions[code]
	if !ok || s.Status == model.SessionEnded {
		return false, nil
	}
	s.Status = model.SessionEnded
	s.EndedAt = &endedAt
	s.ReportRef = reportRef
	return true, nil
}

func (r *fakeSessionRepo) ListEnded(ctx context.Context, interviewerID string) ([]*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Session
	for _, s := range r.sessions {
		if s.InterviewerID == interviewerID && s.Status == model.SessionEnded {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndedAt.After(*out[j].EndedAt) })
	return out, nil
}

func (r *fakeSessionRepo) put(s *model.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.RoomCode] = &cp
}

type fakeLogRepo struct {
	mu      sync.Mutex
	entries []*model.ProcessLogEntry
}

func (r *fakeLogRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *fakeLogRepo) Append(ctx context.Context, entry *model.ProcessLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeLogRepo) ListByRoomCode(ctx context.Context, code string) ([]*model.ProcessLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ProcessLogEntry
	for _, e := range r.entries {
		if e.RoomCode == code {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeReportStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	puts    int
	deletes int
	putErr  error
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{blobs: make(map[string][]byte)}
}

func (s *fakeReportStore) Put(ctx context.Context, roomCode, name string, content []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return "", s.putErr
	}
	s.puts++
	ref := fmt.Sprintf("ref-%d", s.puts)
	s.blobs[ref] = append([]byte(nil), content...)
	return ref, nil
}

func (s *fakeReportStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[ref]
	if !ok {
		return nil, repository.ErrReportNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *fakeReportStore) Delete(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[ref]; !ok {
		return repository.ErrReportNotFound
	}
	s.deletes++
	delete(s.blobs, ref)
	return nil
}

type fakeRoomCache struct {
	mu   sync.Mutex
	meta map[string]model.RoomMeta
	err  error
}

func newFakeRoomCache() *fakeRoomCache {
	return &fakeRoomCache{meta: make(map[string]model.RoomMeta)}
}

func (c *fakeRoomCache) SetMeta(ctx context.Context, code string, meta *model.RoomMeta) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.meta[code] = *meta
	return nil
}

func (c *fakeRoomCache) GetMeta(ctx context.Context, code string) (*model.RoomMeta, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	m, ok := c.meta[code]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (c *fakeRoomCache) SetStatus(ctx context.Context, code string, status model.SessionStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	m, ok := c.meta[code]
	if !ok {
		return nil
	}
	m.Status = status
	c.meta[code] = m
	return nil
}

func (c *fakeRoomCache) Delete(ctx context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.meta, code)
	return nil
}

func (c *fakeRoomCache) Exists(ctx context.Context, code string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	_, ok := c.meta[code]
	return ok, nil
}

type recordingBroadcaster struct {
	mu    sync.Mutex
	ended []string
}

func (b *recordingBroadcaster) NotifyInterviewEnded(roomCode string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ended = append(b.ended, roomCode)
}

func (b *recordingBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ended)
}
