package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Connection represents one participant WebSocket
type Connection struct {
	ID   string
	Send chan []byte

	mu       sync.RWMutex
	userID   string
	roomCode string

	done      chan struct{}
	closeOnce sync.Once
}

// NewConnection creates a connection handle with a buffered send queue
func NewConnection(sendBuffer int) *Connection {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	return &Connection{
		ID:   uuid.NewString(),
		Send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// UserID returns the participant id bound to the connection
func (c *Connection) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// SetUserID binds a participant id to the connection
func (c *Connection) SetUserID(id string) {
	c.mu.Lock()
	c.userID = id
	c.mu.Unlock()
}

// RoomCode returns the room the connection joined, or "" before a join
func (c *Connection) RoomCode() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}

func (c *Connection) setRoomCode(code string) {
	c.mu.Lock()
	c.roomCode = code
	c.mu.Unlock()
}

// Done is closed once the connection is shut down
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Close stops delivery to the connection. Safe to call more than once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Connection) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

type room struct {
	mu      sync.RWMutex
	members map[*Connection]struct{}
	// set when the last member leaves; a closed room is never reused
	closed bool
}

// Hub tracks which connections are in which interview room. Each room has
// its own lock so traffic in one room never waits on another.
type Hub struct {
	rooms sync.Map // room code -> *room
	log   *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(log *zap.Logger) *Hub {
	return &Hub{log: log}
}

func (h *Hub) room(code string) (*room, bool) {
	v, ok := h.rooms.Load(code)
	if !ok {
		return nil, false
	}
	return v.(*room), true
}

// Join registers conn under roomCode and returns the peers that were already
// present. A connection is in at most one room; joining moves it.
func (h *Hub) Join(conn *Connection, roomCode string) []*Connection {
	if prev := conn.RoomCode(); prev != "" && prev != roomCode {
		h.remove(conn, prev)
	}

	var peers []*Connection
	for {
		r, ok := h.room(roomCode)
		if !ok {
			v, _ := h.rooms.LoadOrStore(roomCode, &room{members: make(map[*Connection]struct{})})
			r = v.(*room)
		}

		r.mu.Lock()
		if r.closed {
			// emptied and dropped between Load and Lock
			r.mu.Unlock()
			continue
		}
		peers = make([]*Connection, 0, len(r.members))
		for c := range r.members {
			if c != conn {
				peers = append(peers, c)
			}
		}
		r.members[conn] = struct{}{}
		r.mu.Unlock()
		break
	}

	conn.setRoomCode(roomCode)
	h.log.Info("connection joined room",
		zap.String("room_code", roomCode),
		zap.String("conn_id", conn.ID),
		zap.String("user_id", conn.UserID()),
		zap.Int("members", len(peers)+1))
	return peers
}

// Leave removes conn from its room. It reports whether conn was a member.
func (h *Hub) Leave(conn *Connection) bool {
	code := conn.RoomCode()
	if code == "" {
		return false
	}

	removed := h.remove(conn, code)
	if removed {
		conn.setRoomCode("")
		h.log.Info("connection left room",
			zap.String("room_code", code),
			zap.String("conn_id", conn.ID))
	}
	return removed
}

func (h *Hub) remove(conn *Connection, code string) bool {
	r, ok := h.room(code)
	if !ok {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_, member := r.members[conn]
	delete(r.members, conn)
	if len(r.members) == 0 && !r.closed {
		r.closed = true
		h.rooms.CompareAndDelete(code, r)
	}
	return member
}

// Send fans an event out to every member of the room except exclude.
// Delivery is best effort: a peer with a full buffer misses the event.
func (h *Hub) Send(roomCode, event string, payload interface{}, exclude *Connection) int {
	data, err := encode(event, payload)
	if err != nil {
		h.log.Error("failed to encode event", zap.String("event", event), zap.Error(err))
		return 0
	}

	r, ok := h.room(roomCode)
	if !ok {
		return 0
	}
	r.mu.RLock()
	targets := make([]*Connection, 0, len(r.members))
	for c := range r.members {
		if c != exclude {
			targets = append(targets, c)
		}
	}
	r.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.enqueue(data) {
			delivered++
			continue
		}
		h.log.Warn("dropping event for slow or closed connection",
			zap.String("room_code", roomCode),
			zap.String("event", event),
			zap.String("conn_id", c.ID))
	}
	return delivered
}

// SendTo delivers an event to a single connection
func (h *Hub) SendTo(conn *Connection, event string, payload interface{}) bool {
	data, err := encode(event, payload)
	if err != nil {
		h.log.Error("failed to encode event", zap.String("event", event), zap.Error(err))
		return false
	}
	return conn.enqueue(data)
}

// BroadcastToRoom sends an event to the whole room
func (h *Hub) BroadcastToRoom(roomCode, event string, payload interface{}) int {
	return h.Send(roomCode, event, payload, nil)
}

// NotifyInterviewEnded tells every member the interview is over (implements service.Broadcaster)
func (h *Hub) NotifyInterviewEnded(roomCode string) {
	n := h.BroadcastToRoom(roomCode, EventInterviewEnded, InterviewEndedPayload{RoomCode: roomCode})
	h.log.Info("interview end broadcast", zap.String("room_code", roomCode), zap.Int("delivered", n))
}

// Members returns a snapshot of the connections in a room
func (h *Hub) Members(roomCode string) []*Connection {
	r, ok := h.room(roomCode)
	if !ok {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Connection, 0, len(r.members))
	for c := range r.members {
		out = append(out, c)
	}
	return out
}

// RoomCount returns the number of rooms with at least one member
func (h *Hub) RoomCount() int {
	n := 0
	h.rooms.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

func encode(event string, payload interface{}) ([]byte, error) {
	msg := Message{Type: event}
	if payload != nil {
		raw, ok := payload.(json.RawMessage)
		if !ok {
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, err
			}
			raw = data
		}
		msg.Payload = raw
	}
	return json.Marshal(msg)
}
