package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProcessLogEntry is one append-only record reported for a session.
// LoggedAt is assigned by the server, never by the log source.
type ProcessLogEntry struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RoomCode string             `json:"roomCode" bson:"roomCode"`
	Content  string             `json:"content" bson:"content"`
	LoggedAt time.Time          `json:"loggedAt" bson:"loggedAt"`
}
