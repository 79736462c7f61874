// Package room implements the table lifecycle: room creation and lookup,
// seat assignment, dispatch of client commands into the engine, and
// broadcast of the results. It never touches the network; callers inject
// a Broadcaster that does.
package room

// ErrorCode classifies a rejection originating in the room coordinator
// itself, as opposed to the belote rule engine. These map onto the
// RoomError/SeatError/StateError categories of the command-rejection
// taxonomy.
type ErrorCode string

const (
	ErrRoomNotFound  ErrorCode = "room_not_found"
	ErrRoomFull      ErrorCode = "room_full"
	ErrNotInRoom     ErrorCode = "not_in_room"
	ErrSeatUnavailable ErrorCode = "seat_unavailable"
	ErrRoomNotFull   ErrorCode = "room_not_full"
	ErrDealActive    ErrorCode = "deal_already_active"
	ErrInvalidInput  ErrorCode = "invalid_input"
)

// Error is the room coordinator's typed error, mirroring engine.Error so
// the transport layer can build a uniform {code, message} error envelope
// regardless of which layer rejected the command.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// ErrorCode exposes the machine-readable code for transport-layer error
// envelopes.
func (e *Error) ErrorCode() string {
	return string(e.Code)
}
