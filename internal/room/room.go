package room

import (
	"sync"
	"time"

	"beloteserver/internal/engine"
)

// Seat is one of a room's four fixed slots.
type Seat struct {
	ClientID string
	Nickname string
	// AutoPlay marks a seat whose occupant has disconnected mid-deal; the
	// coordinator plays minimally legal moves on its behalf whenever it is
	// that seat's turn. The seat's ClientID is cleared, so Join never hands
	// it back to a returning client, and the flag is not cleared when the
	// deal ends: the seat keeps counting as occupied.
	AutoPlay bool
}

// Room is one table: a code, four seats, and at most one active deal.
// Every mutating room.Service method locks Mu for the duration of its
// critical section, per the single-writer-per-room discipline.
type Room struct {
	Code      string
	Seats     [4]*Seat
	CreatedAt time.Time

	Deal        *engine.DealState
	NextDealer  int
	DealNumber  int
	MatchScores [2]int

	Mu sync.Mutex
}

func newRoom(code string) *Room {
	return &Room{
		Code:      code,
		CreatedAt: time.Now(),
	}
}

// SeatIndexOf returns the seat index occupied by clientID, if any.
func (r *Room) SeatIndexOf(clientID string) (int, bool) {
	for i, s := range r.Seats {
		if s != nil && s.ClientID == clientID {
			return i, true
		}
	}
	return 0, false
}

// SeatCount returns the number of currently occupied seats.
func (r *Room) SeatCount() int {
	n := 0
	for _, s := range r.Seats {
		if s != nil {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no seat is occupied.
func (r *Room) IsEmpty() bool {
	return r.SeatCount() == 0
}

// lowestEmptySeat returns the lowest-indexed empty seat, if any.
func (r *Room) lowestEmptySeat() (int, bool) {
	for i, s := range r.Seats {
		if s == nil {
			return i, true
		}
	}
	return 0, false
}
