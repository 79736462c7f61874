// Package session mints and verifies short-lived session tickets. A
// ticket binds a client id, and once the client has joined a room, that
// room and seat. The transport layer mints an anonymous ticket when a
// socket is accepted and a seat-bound one after join_room, and verifies a
// ticket presented on a later WebSocket upgrade to reuse the client id,
// without the server maintaining any account, password, or persisted
// identity — client identity here is purely a bearer capability, not a
// principal in a user database.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long a minted ticket remains valid.
const DefaultTTL = 10 * time.Minute

// claims is the JWT payload: which client, which room, which seat.
type claims struct {
	ClientID string `json:"cid"`
	RoomCode string `json:"room"`
	Seat     int    `json:"seat"`
	jwt.RegisteredClaims
}

// Ticket is the verified, decoded result of a signed token.
type Ticket struct {
	ClientID string
	RoomCode string
	Seat     int
}

// Signer mints and verifies session tickets using a single HMAC secret.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner constructs a Signer. An empty secret is a configuration
// error the caller should refuse to start on.
func NewSigner(secret string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("session: signing secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl}, nil
}

// Mint signs a new ticket for clientID's seat in roomCode.
func (s *Signer) Mint(clientID, roomCode string, seat int) (string, error) {
	now := time.Now()
	c := claims{
		ClientID: clientID,
		RoomCode: roomCode,
		Seat:     seat,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(s.secret)
}

// Verify decodes and validates a signed ticket, returning the bound
// client id, room code, and seat.
func (s *Signer) Verify(signed string) (*Ticket, error) {
	var c claims
	token, err := jwt.ParseWithClaims(signed, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("session: unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("session: invalid ticket: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("session: ticket is not valid")
	}
	return &Ticket{ClientID: c.ClientID, RoomCode: c.RoomCode, Seat: c.Seat}, nil
}
