package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"intervue/internal/config"
	"intervue/internal/model"
	"intervue/internal/service"
)

// fakeLifecycle serializes admission and ending per lifecycle the way the
// session service does with its room lock.
type fakeLifecycle struct {
	mu        sync.Mutex
	hub       *Hub
	rooms     map[string]model.SessionStatus
	activated int

	// when set, Admit signals admitting after the status commit and waits
	// for resume before running join
	admitting chan struct{}
	resume    chan struct{}
}

func (f *fakeLifecycle) Verify(ctx context.Context, code string) (*model.SessionConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.rooms[code]
	if !ok || st == model.SessionEnded {
		return nil, service.ErrNotFound
	}
	return &model.SessionConfig{HasWhiteboard: true}, nil
}

func (f *fakeLifecycle) Admit(ctx context.Context, code string, join func()) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	changed := false
	switch f.rooms[code] {
	case model.SessionPending:
		f.rooms[code] = model.SessionActive
		f.activated++
		changed = true
	case model.SessionEnded:
		return false, service.ErrInvalidTransition
	}

	if f.admitting != nil {
		close(f.admitting)
		f.admitting = nil
		<-f.resume
	}
	join()
	return changed, nil
}

func (f *fakeLifecycle) end(code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms[code] = model.SessionEnded
	f.hub.NotifyInterviewEnded(code)
}

func (f *fakeLifecycle) activations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activated
}

func newTestServer(t *testing.T) (*httptest.Server, *Hub, *fakeLifecycle) {
	t.Helper()
	log := zap.NewNop()
	hub := NewHub(log)
	rooms := &fakeLifecycle{hub: hub, rooms: map[string]model.SessionStatus{
		"ROOM2345": model.SessionPending,
		"DONE2345": model.SessionEnded,
	}}
	cfg := config.WSConfig{
		MaxMessageSize:     65536,
		SendBuffer:         16,
		PongWait:           time.Minute,
		WriteWait:          time.Second,
		MaxFramesPerSecond: 100,
	}
	h := NewHandler(hub, rooms, service.NewAuthService("test-secret"), cfg, "*", log)

	r := mux.NewRouter()
	r.HandleFunc("/v1/ws/rooms/{code}", h.RoomWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub, rooms
}

func dial(t *testing.T, srv *httptest.Server, code string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws/rooms/" + code
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func send(t *testing.T, c *websocket.Conn, frame string, payload interface{}) {
	t.Helper()
	msg := map[string]interface{}{"type": frame}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := c.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", frame, err)
	}
}

func expect(t *testing.T, c *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := c.ReadJSON(&msg); err != nil {
		t.Fatalf("waiting for %s: %v", event, err)
	}
	if msg.Type != event {
		t.Fatalf("got %s (%s), want %s", msg.Type, msg.Payload, event)
	}
	return msg.Payload
}

func joinAs(t *testing.T, c *websocket.Conn, userID string) {
	t.Helper()
	send(t, c, FrameJoinRoom, JoinRoomPayload{UserID: userID})
	expect(t, c, EventJoined)
}

func TestJoinActivatesAndNotifiesPeers(t *testing.T) {
	srv, hub, rooms := newTestServer(t)

	a := dial(t, srv, "ROOM2345")
	joinAs(t, a, "U1")
	b := dial(t, srv, "ROOM2345")
	joinAs(t, b, "U2")

	var user UserPayload
	json.Unmarshal(expect(t, a, EventUserConnected), &user)
	if user.UserID != "U2" {
		t.Fatalf("user-connected for %q, want U2", user.UserID)
	}
	if n := rooms.activations(); n != 1 {
		t.Fatalf("activated %d times, want 1", n)
	}
	if got := len(hub.Members("ROOM2345")); got != 2 {
		t.Fatalf("members = %d, want 2", got)
	}
}

func TestChatExcludesSender(t *testing.T) {
	srv, _, _ := newTestServer(t)

	a := dial(t, srv, "ROOM2345")
	joinAs(t, a, "U1")
	b := dial(t, srv, "ROOM2345")
	joinAs(t, b, "U2")
	expect(t, a, EventUserConnected)

	send(t, a, FrameSendChatMessage, ChatMessage{Sender: "U1", Text: "hello"})
	var chat ChatMessage
	json.Unmarshal(expect(t, b, EventReceiveChatMessage), &chat)
	if chat.Sender != "U1" || chat.Text != "hello" {
		t.Fatalf("chat = %+v", chat)
	}

	// the next frame the sender sees is the alert, not its own chat
	send(t, a, FrameSecurityAlert, SecurityAlertPayload{Type: "Tab Switch", Message: "left tab"})
	for _, c := range []*websocket.Conn{a, b} {
		var sys ChatMessage
		json.Unmarshal(expect(t, c, EventReceiveChatMessage), &sys)
		if sys.Sender != "System" || sys.Text != "🚨 Tab Switch: left tab" {
			t.Fatalf("system message = %+v", sys)
		}
	}
}

func TestFrameBeforeJoinIsRejected(t *testing.T) {
	srv, _, _ := newTestServer(t)

	a := dial(t, srv, "ROOM2345")
	send(t, a, FrameSendChatMessage, ChatMessage{Sender: "U1", Text: "hello"})
	expect(t, a, EventError)

	send(t, a, "not-a-frame", nil)
	expect(t, a, EventError)
}

func TestJoinEndedRoomIsRejected(t *testing.T) {
	srv, hub, _ := newTestServer(t)

	a := dial(t, srv, "DONE2345")
	send(t, a, FrameJoinRoom, JoinRoomPayload{UserID: "U1"})

	var e ErrorPayload
	json.Unmarshal(expect(t, a, EventError), &e)
	if e.Message != "invalid or expired room" {
		t.Fatalf("error = %q", e.Message)
	}
	if hub.RoomCount() != 0 {
		t.Fatalf("room count = %d, want 0", hub.RoomCount())
	}
}

func TestBroadcastEndSessionReachesWholeRoom(t *testing.T) {
	srv, _, _ := newTestServer(t)

	a := dial(t, srv, "ROOM2345")
	joinAs(t, a, "U1")
	b := dial(t, srv, "ROOM2345")
	joinAs(t, b, "U2")
	expect(t, a, EventUserConnected)

	send(t, b, FrameBroadcastEndSession, nil)
	expect(t, a, EventInterviewEnded)
	expect(t, b, EventInterviewEnded)
}

func TestDisconnectNotifiesPeers(t *testing.T) {
	srv, hub, _ := newTestServer(t)

	a := dial(t, srv, "ROOM2345")
	joinAs(t, a, "U1")
	b := dial(t, srv, "ROOM2345")
	joinAs(t, b, "U2")
	expect(t, a, EventUserConnected)

	b.Close()
	var user UserPayload
	json.Unmarshal(expect(t, a, EventUserDisconnected), &user)
	if user.UserID != "U2" {
		t.Fatalf("user-disconnected for %q, want U2", user.UserID)
	}
	if got := len(hub.Members("ROOM2345")); got != 1 {
		t.Fatalf("members = %d, want 1", got)
	}
}

func TestInvalidTokenRejectsUpgrade(t *testing.T) {
	srv, _, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws/rooms/ROOM2345?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Fatalf("response = %v, want 401", resp)
	}
}

func TestEndWhileJoiningReachesJoiner(t *testing.T) {
	srv, hub, rooms := newTestServer(t)

	a := dial(t, srv, "ROOM2345")
	joinAs(t, a, "U1")

	admitting := make(chan struct{})
	rooms.mu.Lock()
	rooms.admitting = admitting
	rooms.resume = make(chan struct{})
	resume := rooms.resume
	rooms.mu.Unlock()

	b := dial(t, srv, "ROOM2345")
	send(t, b, FrameJoinRoom, JoinRoomPayload{UserID: "U2"})
	<-admitting

	ended := make(chan struct{})
	go func() {
		rooms.end("ROOM2345")
		close(ended)
	}()

	select {
	case <-ended:
		t.Fatal("session ended while a join was being admitted")
	case <-time.After(50 * time.Millisecond):
	}
	close(resume)
	<-ended

	expect(t, b, EventJoined)
	expect(t, b, EventInterviewEnded)
	expect(t, a, EventUserConnected)
	expect(t, a, EventInterviewEnded)
	if got := len(hub.Members("ROOM2345")); got != 2 {
		t.Fatalf("members = %d, want 2", got)
	}
}

func TestJoinAfterEndIsRejected(t *testing.T) {
	srv, hub, rooms := newTestServer(t)

	a := dial(t, srv, "ROOM2345")
	joinAs(t, a, "U1")
	rooms.end("ROOM2345")
	expect(t, a, EventInterviewEnded)

	b := dial(t, srv, "ROOM2345")
	send(t, b, FrameJoinRoom, JoinRoomPayload{UserID: "U2"})
	var e ErrorPayload
	json.Unmarshal(expect(t, b, EventError), &e)
	if e.Message != "invalid or expired room" {
		t.Fatalf("error = %q", e.Message)
	}
	if got := len(hub.Members("ROOM2345")); got != 1 {
		t.Fatalf("members = %d, want 1", got)
	}
}
