package model

import "time"

type SessionStatus string

const (
	SessionPending SessionStatus = "PENDING"
	SessionActive  SessionStatus = "ACTIVE"
	SessionEnded   SessionStatus = "ENDED"
)

// SessionConfig is fixed when the interview is created and never changes.
type SessionConfig struct {
	HasWhiteboard        bool   `json:"hasWhiteboard" bson:"hasWhiteboard"`
	HasCodingChallenge   bool   `json:"hasCodingChallenge" bson:"hasCodingChallenge"`
	HasQuiz              bool   `json:"hasQuiz" bson:"hasQuiz"`
	QuizTopic            string `json:"quizTopic,omitempty" bson:"quizTopic,omitempty"`
	QuizQuestionCount    int    `json:"quizQuestionCount,omitempty" bson:"quizQuestionCount,omitempty"`
	QuizQuestionDuration int    `json:"quizQuestionDuration,omitempty" bson:"quizQuestionDuration,omitempty"` // seconds
}

// Normalize drops the quiz settings when the quiz feature is off.
func (c SessionConfig) Normalize() SessionConfig {
	if !c.HasQuiz {
		c.QuizTopic = ""
		c.QuizQuestionCount = 0
		c.QuizQuestionDuration = 0
	}
	return c
}

// Session is one interview room
type Session struct {
	RoomCode      string        `json:"roomCode" bson:"roomCode"`
	InterviewerID string        `json:"interviewerId" bson:"interviewerId"`
	Config        SessionConfig `json:"config" bson:"config"`
	Status        SessionStatus `json:"status" bson:"status"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
	EndedAt       *time.Time    `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
	ReportRef     string        `json:"reportRef,omitempty" bson:"reportRef,omitempty"`
}

// Joinable reports whether participants may still enter the room.
func (s *Session) Joinable() bool {
	return s.Status == SessionPending || s.Status == SessionActive
}

// Meta returns the cacheable projection of the session.
func (s *Session) Meta() *RoomMeta {
	return &RoomMeta{
		InterviewerID: s.InterviewerID,
		Status:        s.Status,
		Config:        s.Config,
		CreatedAt:     s.CreatedAt,
	}
}
