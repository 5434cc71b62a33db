package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"intervue/internal/config"
	"intervue/internal/model"
	"intervue/internal/service"
)

const lifecycleTimeout = 5 * time.Second

// RoomLifecycle is the part of the session service a joining participant needs
type RoomLifecycle interface {
	Verify(ctx context.Context, code string) (*model.SessionConfig, error)
	// Admit activates the session and runs join under the same per-room
	// lock that ending the session takes.
	Admit(ctx context.Context, code string, join func()) (bool, error)
}

// TokenValidator resolves an optional bearer token to a participant identity
type TokenValidator interface {
	ValidateToken(token string) (*model.UserClaims, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub      *Hub
	rooms    RoomLifecycle
	auth     TokenValidator
	cfg      config.WSConfig
	log      *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, rooms RoomLifecycle, auth TokenValidator, cfg config.WSConfig, allowedOrigins string, log *zap.Logger) *Handler {
	return &Handler{
		hub:   hub,
		rooms: rooms,
		auth:  auth,
		cfg:   cfg,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// RoomWS handles GET /v1/ws/rooms/{code}
func (h *Handler) RoomWS(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if code == "" {
		http.Error(w, "missing room code", http.StatusBadRequest)
		return
	}

	var userID string
	if token := r.URL.Query().Get("token"); token != "" {
		claims, err := h.auth.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		userID = claims.UserID
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.String("room_code", code), zap.Error(err))
		return
	}

	conn := NewConnection(h.cfg.SendBuffer)
	conn.SetUserID(userID)

	h.log.Debug("websocket connected",
		zap.String("room_code", code),
		zap.String("conn_id", conn.ID),
		zap.String("remote", r.RemoteAddr))

	go h.writePump(wsConn, conn)
	h.readPump(wsConn, conn, code)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection, code string) {
	defer func() {
		h.disconnect(conn)
		wsConn.Close()
	}()

	pongWait := h.cfg.PongWait
	wsConn.SetReadLimit(h.cfg.MaxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	limiter := rate.NewLimiter(rate.Limit(h.cfg.MaxFramesPerSecond), h.cfg.MaxFramesPerSecond)
	if h.cfg.MaxFramesPerSecond <= 0 {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read error", zap.String("conn_id", conn.ID), zap.Error(err))
			}
			return
		}

		if !limiter.Allow() {
			h.sendError(conn, "rate limit exceeded")
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			h.sendError(conn, "malformed frame")
			continue
		}
		h.dispatch(conn, code, msg)
	}
}

func (h *Handler) dispatch(conn *Connection, code string, msg Message) {
	switch msg.Type {
	case FrameJoinRoom:
		h.join(conn, code, msg.Payload)
		return
	case FrameBroadcastEndSession:
		room := conn.RoomCode()
		if room == "" {
			h.sendError(conn, "join a room first")
			return
		}
		h.log.Info("end-session broadcast requested", zap.String("room_code", room), zap.String("user_id", conn.UserID()))
		h.hub.Send(room, EventInterviewEnded, InterviewEndedPayload{RoomCode: room}, nil)
		return
	}

	rt, ok := routes[msg.Type]
	if !ok {
		h.sendError(conn, "unknown frame type: "+msg.Type)
		return
	}
	room := conn.RoomCode()
	if room == "" {
		h.sendError(conn, "join a room first")
		return
	}

	payload, err := rt.build(msg.Payload)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}

	exclude := conn
	if rt.fanout == wholeRoom {
		exclude = nil
	}
	h.hub.Send(room, rt.event, payload, exclude)

	if msg.Type == FrameSecurityAlert {
		h.log.Warn("security alert", zap.String("room_code", room), zap.String("user_id", conn.UserID()))
	}
}

func (h *Handler) join(conn *Connection, code string, payload json.RawMessage) {
	var req JoinRoomPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			h.sendError(conn, "invalid join payload")
			return
		}
	}
	if conn.UserID() == "" {
		conn.SetUserID(strings.TrimSpace(req.UserID))
	}
	if conn.UserID() == "" {
		h.sendError(conn, "userId is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), lifecycleTimeout)
	defer cancel()

	if _, err := h.rooms.Verify(ctx, code); err != nil {
		h.rejectJoin(conn, code, err)
		return
	}

	_, err := h.rooms.Admit(ctx, code, func() {
		peers := h.hub.Join(conn, code)
		peerIDs := make([]string, 0, len(peers))
		for _, p := range peers {
			peerIDs = append(peerIDs, p.UserID())
		}
		h.hub.SendTo(conn, EventJoined, JoinedPayload{RoomCode: code, Peers: peerIDs})
		h.hub.Send(code, EventUserConnected, UserPayload{UserID: conn.UserID()}, conn)
	})
	if err != nil {
		h.rejectJoin(conn, code, err)
	}
}

func (h *Handler) rejectJoin(conn *Connection, code string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrInvalidTransition):
		h.sendError(conn, "invalid or expired room")
	default:
		h.log.Error("join failed", zap.String("room_code", code), zap.Error(err))
		h.sendError(conn, "could not join room, try again")
	}
}

func (h *Handler) disconnect(conn *Connection) {
	room := conn.RoomCode()
	if h.hub.Leave(conn) {
		h.hub.Send(room, EventUserDisconnected, UserPayload{UserID: conn.UserID()}, conn)
	}
	conn.Close()
}

func (h *Handler) sendError(conn *Connection, message string) {
	h.hub.SendTo(conn, EventError, ErrorPayload{Message: message})
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(h.cfg.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	writeWait := h.cfg.WriteWait
	for {
		select {
		case message := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-conn.Done():
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			wsConn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// originChecker allows every origin for "*", otherwise only the listed ones.
func originChecker(allowed string) func(r *http.Request) bool {
	allowed = strings.TrimSpace(allowed)
	if allowed == "" || allowed == "*" {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{})
	for _, o := range strings.Split(allowed, ",") {
		set[strings.TrimSpace(o)] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
