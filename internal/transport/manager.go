// Package transport adapts the room coordinator to a WebSocket message
// channel: it frames/unframes envelopes, manages connection lifecycle,
// and implements room.Broadcaster so the coordinator can fan state out
// without knowing anything about HTTP or sockets.
package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"beloteserver/internal/engine"
	"beloteserver/internal/room"
	"beloteserver/internal/session"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 256
)

// Connection is one client's WebSocket link: a clientID and the outbound
// queue its writePump drains.
type Connection struct {
	conn     *websocket.Conn
	clientID string
	send     chan []byte
	manager  *Manager
}

// Manager owns every live connection and the room.Service they drive. It
// implements room.Broadcaster.
type Manager struct {
	roomService *room.Service
	signer      *session.Signer
	logger      *zap.Logger

	mu          sync.RWMutex
	connections map[string]*Connection

	register   chan *Connection
	unregister chan *Connection

	upgrader websocket.Upgrader

	pingInterval time.Duration
	pongTimeout  time.Duration
}

// NewManager constructs a Manager and wires it into svc as svc's
// Broadcaster.
func NewManager(svc *room.Service, signer *session.Signer, logger *zap.Logger, pingInterval, pongTimeout time.Duration) *Manager {
	m := &Manager{
		roomService: svc,
		signer:      signer,
		logger:      logger,
		connections: make(map[string]*Connection),
		register:    make(chan *Connection, sendBuffer),
		unregister:  make(chan *Connection, sendBuffer),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		pingInterval: pingInterval,
		pongTimeout:  pongTimeout,
	}
	svc.SetBroadcaster(m)
	return m
}

// Run drives the register/unregister lifecycle. It must run in its own
// goroutine for the lifetime of the server.
func (m *Manager) Run() {
	for {
		select {
		case conn := <-m.register:
			m.mu.Lock()
			m.connections[conn.clientID] = conn
			m.mu.Unlock()

		case conn := <-m.unregister:
			m.mu.Lock()
			existing, ok := m.connections[conn.clientID]
			if ok && existing == conn {
				delete(m.connections, conn.clientID)
			}
			m.mu.Unlock()
			if ok {
				m.roomService.Disconnect(conn.clientID)
				m.logger.Info("client disconnected", zap.String("client", conn.clientID))
			}
		}
	}
}

// HandleWebSocket upgrades an HTTP request into a persistent connection.
// If the request carries a still-valid session ticket (query parameter
// or Authorization header, per SPEC_FULL.md §4.G/§6), its client id is
// reused so a reconnecting client keeps its opaque identity across
// sockets; this does not resume room membership or in-progress deal
// state (an explicit non-goal) — the client still sends join_room and is
// seated like any new client; a seat left in AutoPlay by its earlier
// disconnect is not handed back. Without a valid ticket, a fresh opaque id is minted,
// matching the source's "client id is server-generated, unique per
// connection" requirement; no prior credential is required to open the
// socket itself.
func (m *Manager) HandleWebSocket(w http.ResponseWriter, r *http.Request) error {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("transport: upgrade failed: %w", err)
	}

	clientID := ""
	if signed := bearerToken(r); signed != "" {
		if ticket, verifyErr := m.signer.Verify(signed); verifyErr == nil {
			clientID = ticket.ClientID
		}
	}
	if clientID == "" {
		clientID = uuid.NewString()
	}
	wsConn := &Connection{conn: conn, clientID: clientID, send: make(chan []byte, sendBuffer), manager: m}

	m.register <- wsConn
	go wsConn.writePump()
	go wsConn.readPump()

	ticket, err := m.signer.Mint(clientID, "", -1)
	if err == nil {
		wsConn.enqueue(outboundEnvelope{Type: "session_ticket", Payload: map[string]string{"clientId": clientID, "ticket": ticket}})
	}
	m.logger.Info("client connected", zap.String("client", clientID))
	return nil
}

// bearerToken reads a session ticket from the ?token= query parameter
// or an Authorization header, mirroring the teacher's "token from query
// or header" convention for the WS upgrade request.
func bearerToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func (c *Connection) enqueue(env outboundEnvelope) {
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
		// Slow consumer: drop rather than block the fan-out path.
	}
}

func (c *Connection) readPump() {
	defer func() {
		c.manager.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(c.manager.pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.manager.pongTimeout))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.manager.handleInbound(c, data)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(c.manager.pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleInbound normalizes a raw frame into a typed command and dispatches
// it to the room coordinator. A malformed envelope, unknown type, or
// missing required field produces a private error envelope, never silent
// acceptance.
func (m *Manager) handleInbound(c *Connection, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		m.CommandError(c.clientID, &protocolError{"malformed envelope"})
		return
	}

	var err error
	switch env.Type {
	case TypeJoinRoom:
		var p JoinRoomPayload
		if jsonErr := json.Unmarshal(env.Payload, &p); jsonErr != nil {
			m.CommandError(c.clientID, &protocolError{"join_room requires roomCode and nickname"})
			return
		}
		var rm *room.Room
		var seat int
		rm, seat, err = m.roomService.Join(c.clientID, p.RoomCode, p.Nickname)
		if err == nil {
			if ticket, ticketErr := m.signer.Mint(c.clientID, rm.Code, seat); ticketErr == nil {
				c.enqueue(outboundEnvelope{Type: "session_ticket", Payload: map[string]string{"clientId": c.clientID, "ticket": ticket}})
			}
		}

	case TypeStartGame:
		err = m.roomService.StartGame(c.clientID)

	case TypePlayCard:
		var p PlayCardPayload
		if jsonErr := json.Unmarshal(env.Payload, &p); jsonErr != nil {
			m.CommandError(c.clientID, &protocolError{"play_card requires a card"})
			return
		}
		err = m.roomService.Play(c.clientID, p.Card)

	case TypeChooseTrump:
		var p ChooseTrumpPayload
		if jsonErr := json.Unmarshal(env.Payload, &p); jsonErr != nil {
			m.CommandError(c.clientID, &protocolError{"choose_trump requires an action"})
			return
		}
		switch p.Action {
		case "take":
			err = m.roomService.Bid(c.clientID, engine.BidTake, p.Suit)
		case "pass":
			err = m.roomService.Bid(c.clientID, engine.BidPass, nil)
		default:
			m.CommandError(c.clientID, &protocolError{"action must be take or pass"})
			return
		}

	case TypeAnnounceBelote:
		err = m.roomService.AnnounceBelote(c.clientID)

	default:
		m.CommandError(c.clientID, &protocolError{"unrecognized envelope type"})
		return
	}

	// room.Service methods already push a CommandError through the
	// Broadcaster themselves for every rejection path (seat/room/phase/
	// turn/rule errors alike), so err is only returned for callers besides
	// the WS loop (tests) to inspect; sending it again here would double
	// the client's error envelope.
	_ = err
}

// protocolError reports a ProtocolError-category rejection: malformed
// envelope, unknown type, or missing required field.
type protocolError struct{ message string }

func (e *protocolError) Error() string    { return e.message }
func (e *protocolError) ErrorCode() string { return "protocol_error" }

// coded is implemented by engine.Error, room.Error, and protocolError so
// CommandError can attach a machine-readable code alongside the message.
type coded interface {
	ErrorCode() string
}

// RoomUpdate implements room.Broadcaster.
func (m *Manager) RoomUpdate(rm *room.Room) {
	players := make([]PlayerSummary, 0, 4)
	for i, s := range rm.Seats {
		if s == nil {
			continue
		}
		seat := i
		players = append(players, PlayerSummary{ID: s.ClientID, Nickname: s.Nickname, Seat: &seat})
	}
	payload := RoomUpdatePayload{RoomCode: rm.Code, Players: players}
	m.broadcastToRoom(rm, outboundEnvelope{Type: TypeRoomUpdate, Payload: payload})
}

// GameState implements room.Broadcaster.
func (m *Manager) GameState(rm *room.Room) {
	payload := GameStatePayload{State: rm.Deal}
	m.broadcastToRoom(rm, outboundEnvelope{Type: TypeGameState, Payload: payload})
}

// CommandError implements room.Broadcaster.
func (m *Manager) CommandError(clientID string, err error) {
	payload := ErrorPayload{Message: err.Error()}
	if c, ok := err.(coded); ok {
		payload.Code = c.ErrorCode()
	}
	m.sendTo(clientID, outboundEnvelope{Type: TypeError, Payload: payload})
}

func (m *Manager) broadcastToRoom(rm *room.Room, env outboundEnvelope) {
	for _, s := range rm.Seats {
		if s == nil || s.ClientID == "" {
			continue
		}
		m.sendTo(s.ClientID, env)
	}
}

func (m *Manager) sendTo(clientID string, env outboundEnvelope) {
	m.mu.RLock()
	c, ok := m.connections[clientID]
	m.mu.RUnlock()
	if !ok {
		return
	}
	c.enqueue(env)
}
