package model

import "time"

// RoomMeta is the part of a session kept in Redis for the verify fast path
type RoomMeta struct {
	InterviewerID string        `json:"interviewerId"`
	Status        SessionStatus `json:"status"`
	Config        SessionConfig `json:"config"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// Joinable mirrors Session.Joinable for cached metadata.
func (m *RoomMeta) Joinable() bool {
	return m.Status == SessionPending || m.Status == SessionActive
}
