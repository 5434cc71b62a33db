package service

// Broadcaster delivers lifecycle notifications to the participants of a room
// (implemented by the WebSocket hub; avoids an import cycle)
type Broadcaster interface {
	NotifyInterviewEnded(roomCode string)
}
