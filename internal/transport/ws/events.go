package ws

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Inbound frame types
const (
	FrameJoinRoom            = "join-room"
	FrameSendChatMessage     = "send-chat-message"
	FramePushCodingQuestion  = "push-coding-question"
	FrameLaunchQuiz          = "launch-quiz"
	FrameQuizScored          = "quiz-scored"
	FrameSecurityAlert       = "security-alert"
	FrameCodeSubmitted       = "code-submitted"
	FrameBroadcastEndSession = "broadcast-end-session"
)

// Outbound event types
const (
	EventUserConnected         = "user-connected"
	EventUserDisconnected      = "user-disconnected"
	EventReceiveChatMessage    = "receive-chat-message"
	EventReceiveCodingQuestion = "receive-coding-question"
	EventQuizStarted           = "quiz-started"
	EventInterviewEnded        = "interview-ended"
	EventJoined                = "joined"
	EventError                 = "error"
)

const systemSender = "System"

// fanout says who receives a relayed event
type fanout int

const (
	excludeSender fanout = iota
	wholeRoom
)

// route maps a room-scoped inbound frame to the event it produces
type route struct {
	event  string
	fanout fanout
	build  func(payload json.RawMessage) (interface{}, error)
}

var routes = map[string]route{
	FrameSendChatMessage: {
		event:  EventReceiveChatMessage,
		fanout: excludeSender,
		build:  buildChatMessage,
	},
	FramePushCodingQuestion: {
		event:  EventReceiveCodingQuestion,
		fanout: excludeSender,
		build:  relay,
	},
	FrameLaunchQuiz: {
		event:  EventQuizStarted,
		fanout: excludeSender,
		build:  relay,
	},
	FrameQuizScored: {
		event:  EventReceiveChatMessage,
		fanout: wholeRoom,
		build:  buildQuizResult,
	},
	FrameSecurityAlert: {
		event:  EventReceiveChatMessage,
		fanout: wholeRoom,
		build:  buildSecurityAlert,
	},
	FrameCodeSubmitted: {
		event:  EventReceiveChatMessage,
		fanout: wholeRoom,
		build:  buildCodeSubmission,
	},
}

// JoinRoomPayload is sent by a participant entering the room
type JoinRoomPayload struct {
	UserID string `json:"userId"`
}

// UserPayload identifies a participant in presence events
type UserPayload struct {
	UserID string `json:"userId"`
}

// ChatMessage is the receive-chat-message payload
type ChatMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// QuizResultPayload is the quiz-scored frame payload
type QuizResultPayload struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// SecurityAlertPayload is the security-alert frame payload
type SecurityAlertPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// CodeSubmissionPayload is the code-submitted frame payload
type CodeSubmissionPayload struct {
	Code string `json:"code"`
}

// JoinedPayload acknowledges a join to the joining connection
type JoinedPayload struct {
	RoomCode string   `json:"roomCode"`
	Peers    []string `json:"peers"`
}

// InterviewEndedPayload is the interview-ended payload
type InterviewEndedPayload struct {
	RoomCode string `json:"roomCode"`
}

// ErrorPayload is sent back to a connection whose frame was rejected
type ErrorPayload struct {
	Message string `json:"message"`
}

func relay(payload json.RawMessage) (interface{}, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("payload is required")
	}
	return payload, nil
}

func buildChatMessage(payload json.RawMessage) (interface{}, error) {
	var msg ChatMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("invalid chat message: %w", err)
	}
	if strings.TrimSpace(msg.Text) == "" {
		return nil, fmt.Errorf("chat message text is required")
	}
	return msg, nil
}

func buildQuizResult(payload json.RawMessage) (interface{}, error) {
	var res QuizResultPayload
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("invalid quiz result: %w", err)
	}
	return ChatMessage{
		Sender: systemSender,
		Text:   fmt.Sprintf("Quiz Result: Interviewee scored %d/%d.", res.Score, res.Total),
	}, nil
}

func buildSecurityAlert(payload json.RawMessage) (interface{}, error) {
	var alert SecurityAlertPayload
	if err := json.Unmarshal(payload, &alert); err != nil {
		return nil, fmt.Errorf("invalid security alert: %w", err)
	}
	return ChatMessage{
		Sender: systemSender,
		Text:   fmt.Sprintf("🚨 %s: %s", alert.Type, alert.Message),
	}, nil
}

func buildCodeSubmission(payload json.RawMessage) (interface{}, error) {
	var sub CodeSubmissionPayload
	if err := json.Unmarshal(payload, &sub); err != nil {
		return nil, fmt.Errorf("invalid code submission: %w", err)
	}
	return ChatMessage{
		Sender: systemSender,
		Text:   fmt.Sprintf("--- CODE SUBMISSION ---\n\n%s", sub.Code),
	}, nil
}
