package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAppendUnknownRoomStoresNothing(t *testing.T) {
	f := newSessionFixture()

	_, err := f.logSvc.Append(context.Background(), "NOPE2345", "bash")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(f.logs.entries) != 0 {
		t.Fatalf("stored %d entries for an unknown room", len(f.logs.entries))
	}
}

func TestAppendRejectsEmptyInput(t *testing.T) {
	f := newSessionFixture()
	s := f.create(t, "iv-1")

	tests := []struct {
		name    string
		code    string
		content string
	}{
		{"empty code", "", "bash"},
		{"empty content", s.RoomCode, ""},
		{"blank content", s.RoomCode, "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.logSvc.Append(context.Background(), tt.code, tt.content); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestAppendTimestampsStrictlyIncrease(t *testing.T) {
	f := newSessionFixture()
	s := f.create(t, "iv-1")
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.logSvc.clock = newLogicalClock(func() time.Time { return fixed })

	var last time.Time
	for i := 0; i < 5; i++ {
		e, err := f.logSvc.Append(context.Background(), s.RoomCode, "proc")
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if !e.LoggedAt.After(last) {
			t.Fatalf("entry %d at %v not after %v", i, e.LoggedAt, last)
		}
		last = e.LoggedAt
	}
}

func TestAppendAfterEndIsKept(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()
	s := f.create(t, "iv-1")

	if _, err := f.svc.End(ctx, s.RoomCode, "iv-1"); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if _, err := f.logSvc.Append(ctx, s.RoomCode, "late"); err != nil {
		t.Fatalf("Append() after end error = %v", err)
	}
	if len(f.logs.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(f.logs.entries))
	}
}
