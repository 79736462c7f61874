package transport

import (
	"encoding/json"

	"beloteserver/internal/engine"
)

// Inbound envelope types, recognized on the wire.
const (
	TypeJoinRoom       = "join_room"
	TypeStartGame      = "start_game"
	TypePlayCard       = "play_card"
	TypeChooseTrump    = "choose_trump"
	TypeAnnounceBelote = "announce_belote"
)

// Outbound envelope types.
const (
	TypeRoomUpdate = "room_update"
	TypeGameState  = "game_state"
	TypeError      = "error"
)

// Envelope is the single shape carried in both directions: a type tag and
// an opaque payload. Inbound payloads are decoded per Type; outbound
// payloads are one of the *Payload structs below, except the private
// session_ticket envelope, whose payload is a {clientId, ticket} map.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// outboundEnvelope mirrors Envelope but carries a concrete payload value
// so json.Marshal can serialize it directly, without a round trip through
// RawMessage.
type outboundEnvelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// JoinRoomPayload is the body of an inbound join_room envelope.
type JoinRoomPayload struct {
	RoomCode string `json:"roomCode"`
	Nickname string `json:"nickname"`
}

// PlayCardPayload is the body of an inbound play_card envelope.
type PlayCardPayload struct {
	Card engine.Card `json:"card"`
}

// ChooseTrumpPayload is the body of an inbound choose_trump envelope.
// Action is "take" or "pass"; Suit is required only for a second-round
// take.
type ChooseTrumpPayload struct {
	Action string       `json:"action"`
	Suit   *engine.Suit `json:"suit,omitempty"`
}

// RoomUpdatePayload is the body of an outbound room_update envelope.
type RoomUpdatePayload struct {
	RoomCode string          `json:"roomCode"`
	Players  []PlayerSummary `json:"players"`
}

// PlayerSummary describes one seat in a room_update roster.
type PlayerSummary struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Seat     *int   `json:"seat"`
}

// GameStatePayload is the body of an outbound game_state envelope. It
// carries the full DealState, including every player's hand, matching
// the source's broadcast-everything-to-everyone behavior; this is an
// explicit anti-cheat weakness the server accepts (see spec Open
// Questions) rather than one this layer tries to paper over.
type GameStatePayload struct {
	State *engine.DealState `json:"state"`
}

// ErrorPayload is the body of an outbound error envelope, sent only to
// the client whose command was rejected.
type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
