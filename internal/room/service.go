package room

import (
	"math/rand"
	"strings"
	"sync"

	"go.uber.org/zap"

	"beloteserver/internal/engine"
)

// roomCodeAlphabet excludes visually ambiguous characters (0/O, 1/I).
const roomCodeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
const roomCodeLength = 4

// Broadcaster is implemented by the transport layer and injected into a
// Service so the room coordinator can fan out state after each accepted
// command without importing anything network-shaped itself.
type Broadcaster interface {
	// RoomUpdate sends the current seat roster to every client of room.
	RoomUpdate(room *Room)
	// GameState sends the full DealState (including every hand) to every
	// client of room.
	GameState(room *Room)
	// CommandError sends a private rejection to a single client.
	CommandError(clientID string, err error)
}

type noopBroadcaster struct{}

func (noopBroadcaster) RoomUpdate(*Room)             {}
func (noopBroadcaster) GameState(*Room)              {}
func (noopBroadcaster) CommandError(string, error) {}

// clientSession tracks which room and seat a connected client occupies.
// Identity is ephemeral: it exists only as long as the client is
// connected, per the source's "no accounts" design.
type clientSession struct {
	id       string
	nickname string
	roomCode string
	seat     int
}

// Service is the room coordinator (component E): it owns the registry of
// rooms, assigns seats, and forwards Play/Bid/AnnounceBelote commands to
// the engine, broadcasting the result of every accepted command.
type Service struct {
	registryMu sync.RWMutex
	rooms      map[string]*Room
	clients    map[string]*clientSession

	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewService constructs a room coordinator. Its broadcaster starts as a
// no-op and is filled in later via SetBroadcaster, since the transport
// layer that implements Broadcaster typically needs a constructed
// Service first.
func NewService(logger *zap.Logger) *Service {
	return &Service{
		rooms:       make(map[string]*Room),
		clients:     make(map[string]*clientSession),
		broadcaster: noopBroadcaster{},
		logger:      logger,
	}
}

// SetBroadcaster wires the transport layer's fan-out implementation in
// after both sides of the mutual dependency have been constructed.
func (s *Service) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Join seats clientID in roomCode under nickname, creating the room if it
// does not exist. If the client already held a seat elsewhere, that seat
// is vacated first. Returns the room and the assigned seat index.
func (s *Service) Join(clientID, roomCode, nickname string) (*Room, int, error) {
	roomCode = strings.ToUpper(strings.TrimSpace(roomCode))
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		err := &Error{Code: ErrInvalidInput, Message: "nickname must not be empty"}
		s.broadcaster.CommandError(clientID, err)
		return nil, 0, err
	}
	if roomCode == "" {
		roomCode = s.generateRoomCode()
	}

	if prev, ok := s.lookupClient(clientID); ok && prev.roomCode != "" {
		s.vacateSeat(prev.roomCode, clientID)
	}

	rm := s.getOrCreateRoom(roomCode)

	rm.Mu.Lock()
	defer rm.Mu.Unlock()

	existing, alreadySeated := rm.SeatIndexOf(clientID)
	if !alreadySeated {
		if rm.SeatCount() >= 4 {
			err := &Error{Code: ErrRoomFull, Message: "room is full"}
			s.broadcaster.CommandError(clientID, err)
			return nil, 0, err
		}
		seatIdx, ok := rm.lowestEmptySeat()
		if !ok {
			err := &Error{Code: ErrSeatUnavailable, Message: "no seat available"}
			s.broadcaster.CommandError(clientID, err)
			return nil, 0, err
		}
		rm.Seats[seatIdx] = &Seat{ClientID: clientID, Nickname: nickname}
		existing = seatIdx
	} else {
		rm.Seats[existing].Nickname = nickname
		rm.Seats[existing].AutoPlay = false
	}

	s.registerClient(clientID, nickname, roomCode, existing)
	s.logger.Info("seat assigned",
		zap.String("room", roomCode), zap.String("client", clientID), zap.Int("seat", existing))

	s.broadcaster.RoomUpdate(rm)
	return rm, existing, nil
}

// StartGame deals the first hand for clientID's room, provided all four
// seats are filled and no deal is already active.
func (s *Service) StartGame(clientID string) error {
	rm, _, err := s.requireSeated(clientID)
	if err != nil {
		return err
	}

	rm.Mu.Lock()
	defer rm.Mu.Unlock()

	if rm.SeatCount() < 4 {
		err := &Error{Code: ErrRoomNotFull, Message: "room is not full"}
		s.broadcaster.CommandError(clientID, err)
		return err
	}
	if rm.Deal != nil && rm.Deal.Phase != engine.Finished {
		err := &Error{Code: ErrDealActive, Message: "a deal is already in progress"}
		s.broadcaster.CommandError(clientID, err)
		return err
	}

	dealer := rm.NextDealer
	rm.DealNumber++
	rm.Deal = engine.NewDeal(dealer, rm.DealNumber, rm.MatchScores, engine.NewRand())

	s.logger.Info("deal started", zap.String("room", rm.Code), zap.Int("dealer", dealer))
	s.broadcaster.GameState(rm)
	return nil
}

// Bid forwards a choose_trump command to the room's deal.
func (s *Service) Bid(clientID string, action engine.BidAction, suit *engine.Suit) error {
	rm, seat, err := s.requireSeated(clientID)
	if err != nil {
		return err
	}

	rm.Mu.Lock()
	defer rm.Mu.Unlock()

	if rm.Deal == nil {
		err := &Error{Code: ErrDealActive, Message: "no deal is in progress"}
		s.broadcaster.CommandError(clientID, err)
		return err
	}

	next, err := engine.ApplyBid(rm.Deal, seat, action, suit, engine.NewRand())
	if err != nil {
		s.logger.Info("bid rejected", zap.String("room", rm.Code), zap.String("client", clientID), zap.Error(err))
		s.broadcaster.CommandError(clientID, err)
		return err
	}
	rm.Deal = next
	// A four-pass bidding round restarts the deal internally
	// (engine.ApplyBid calls NewDeal with DealNumber+1); keep the room's
	// own counter in lockstep so a later StartGame never reissues a
	// number the engine already used for this restart.
	rm.DealNumber = next.DealNumber
	if next.Phase == engine.PlayingTricks {
		rm.NextDealer = (rm.Deal.Dealer + 1) % 4
	}
	s.broadcaster.GameState(rm)
	s.autoPlayPendingSeats(rm)
	return nil
}

// Play forwards a play_card command to the room's deal.
func (s *Service) Play(clientID string, card engine.Card) error {
	rm, seat, err := s.requireSeated(clientID)
	if err != nil {
		return err
	}

	rm.Mu.Lock()
	defer rm.Mu.Unlock()

	if rm.Deal == nil {
		err := &Error{Code: ErrDealActive, Message: "no deal is in progress"}
		s.broadcaster.CommandError(clientID, err)
		return err
	}

	next, err := engine.ApplyPlay(rm.Deal, seat, card)
	if err != nil {
		s.logger.Info("play rejected", zap.String("room", rm.Code), zap.String("client", clientID), zap.Error(err))
		s.broadcaster.CommandError(clientID, err)
		return err
	}
	rm.Deal = next
	s.settleIfFinished(rm)
	s.broadcaster.GameState(rm)
	s.autoPlayPendingSeats(rm)
	return nil
}

// AnnounceBelote forwards an announce_belote command to the room's deal.
func (s *Service) AnnounceBelote(clientID string) error {
	rm, seat, err := s.requireSeated(clientID)
	if err != nil {
		return err
	}

	rm.Mu.Lock()
	defer rm.Mu.Unlock()

	if rm.Deal == nil {
		err := &Error{Code: ErrDealActive, Message: "no deal is in progress"}
		s.broadcaster.CommandError(clientID, err)
		return err
	}

	next, err := engine.ApplyBelote(rm.Deal, seat)
	if err != nil {
		s.broadcaster.CommandError(clientID, err)
		return err
	}
	rm.Deal = next
	s.broadcaster.GameState(rm)
	return nil
}

// Disconnect vacates clientID's seat. If an active deal is left with a
// vacated seat, that seat is marked AutoPlay rather than ending the deal;
// the coordinator then plays minimally legal moves on its behalf (see
// autoPlayPendingSeats) until the deal ends. The room is deleted if it
// becomes empty.
func (s *Service) Disconnect(clientID string) {
	session, ok := s.lookupClient(clientID)
	if !ok {
		return
	}
	s.vacateSeat(session.roomCode, clientID)
	s.forgetClient(clientID)
}

func (s *Service) vacateSeat(roomCode, clientID string) {
	rm := s.lookupRoom(roomCode)
	if rm == nil {
		return
	}

	rm.Mu.Lock()
	idx, ok := rm.SeatIndexOf(clientID)
	if !ok {
		rm.Mu.Unlock()
		return
	}
	if rm.Deal != nil && rm.Deal.Phase != engine.Finished {
		rm.Seats[idx].ClientID = ""
		rm.Seats[idx].AutoPlay = true
		s.logger.Info("seat marked autoplay", zap.String("room", roomCode), zap.Int("seat", idx))
	} else {
		rm.Seats[idx] = nil
	}
	empty := rm.IsEmpty()
	s.broadcaster.RoomUpdate(rm)
	s.autoPlayPendingSeats(rm)
	rm.Mu.Unlock()

	if empty {
		s.deleteRoomIfEmpty(roomCode)
	}
}

// autoPlayPendingSeats drives the deal forward on behalf of any AutoPlay
// seat whose turn it currently is: it passes in a bidding phase, or plays
// the lowest-point legal card in hand (see lowestLegalCard) while tricks
// are being played. Must be called with
// rm.Mu already held.
func (s *Service) autoPlayPendingSeats(rm *Room) {
	for rm.Deal != nil && rm.Deal.Phase != engine.Finished {
		var actor int
		switch rm.Deal.Phase {
		case engine.ChoosingTrumpFirstRound, engine.ChoosingTrumpSecondRound:
			if rm.Deal.BiddingPlayer == nil {
				return
			}
			actor = *rm.Deal.BiddingPlayer
		case engine.PlayingTricks:
			actor = rm.Deal.CurrentPlayer
		default:
			return
		}
		seat := rm.Seats[actor]
		if seat == nil || !seat.AutoPlay {
			return
		}

		switch rm.Deal.Phase {
		case engine.ChoosingTrumpFirstRound, engine.ChoosingTrumpSecondRound:
			next, err := engine.ApplyBid(rm.Deal, actor, engine.BidPass, nil, engine.NewRand())
			if err != nil {
				return
			}
			rm.Deal = next
		case engine.PlayingTricks:
			card, ok := lowestLegalCard(rm.Deal, actor)
			if !ok {
				return
			}
			next, err := engine.ApplyPlay(rm.Deal, actor, card)
			if err != nil {
				return
			}
			rm.Deal = next
			s.settleIfFinished(rm)
		}
		s.broadcaster.GameState(rm)
	}
}

// lowestLegalCard returns the lowest-point legal card in seat's hand, for
// the minimal auto-play policy applied to disconnected seats.
func lowestLegalCard(deal *engine.DealState, seat int) (engine.Card, bool) {
	trump := engine.Clubs
	if deal.TrumpSuit != nil {
		trump = *deal.TrumpSuit
	}
	best := -1
	bestPoints := 1 << 30
	for i, c := range deal.Hands[seat] {
		if engine.CheckLegality(deal, seat, c) != nil {
			continue
		}
		if p := engine.CardPoints(c, trump); p < bestPoints {
			bestPoints = p
			best = i
		}
	}
	if best == -1 {
		return engine.Card{}, false
	}
	return deal.Hands[seat][best], true
}

// settleIfFinished rotates the dealer for the next deal once the current
// one ends.
func (s *Service) settleIfFinished(rm *Room) {
	if rm.Deal == nil || rm.Deal.Phase != engine.Finished {
		return
	}
	rm.MatchScores = rm.Deal.MatchScores
	rm.NextDealer = (rm.Deal.Dealer + 1) % 4
}

func (s *Service) requireSeated(clientID string) (*Room, int, error) {
	session, ok := s.lookupClient(clientID)
	if !ok || session.roomCode == "" {
		err := &Error{Code: ErrNotInRoom, Message: "client is not seated in a room"}
		s.broadcaster.CommandError(clientID, err)
		return nil, 0, err
	}
	rm := s.lookupRoom(session.roomCode)
	if rm == nil {
		err := &Error{Code: ErrRoomNotFound, Message: "room not found"}
		s.broadcaster.CommandError(clientID, err)
		return nil, 0, err
	}
	return rm, session.seat, nil
}

func (s *Service) getOrCreateRoom(code string) *Room {
	s.registryMu.Lock()
	defer s.registryMu.Unlock()
	if rm, ok := s.rooms[code]; ok {
		return rm
	}
	rm := newRoom(code)
	s.rooms[code] = rm
	return rm
}

func (s *Service) lookupRoom(code string) *Room {
	s.registryMu.RLock()
	defer s.registryMu.RUnlock()
	return s.rooms[code]
}

func (s *Service) deleteRoomIfEmpty(code string) {
	s.registryMu.Lock()
	defer s.registryMu.Unlock()
	rm, ok := s.rooms[code]
	if !ok {
		return
	}
	rm.Mu.Lock()
	empty := rm.IsEmpty()
	rm.Mu.Unlock()
	if empty {
		delete(s.rooms, code)
		s.logger.Info("room deleted", zap.String("room", code))
	}
}

// Rooms returns the currently registered rooms for the operational
// listing endpoint (component G), which reports only each room's code,
// player count, and phase. The slice is a fresh copy, but its elements
// are the live *Room values, deal state included.
func (s *Service) Rooms() []*Room {
	s.registryMu.RLock()
	defer s.registryMu.RUnlock()
	out := make([]*Room, 0, len(s.rooms))
	for _, rm := range s.rooms {
		out = append(out, rm)
	}
	return out
}

func (s *Service) registerClient(id, nickname, roomCode string, seat int) {
	s.registryMu.Lock()
	defer s.registryMu.Unlock()
	s.clients[id] = &clientSession{id: id, nickname: nickname, roomCode: roomCode, seat: seat}
}

func (s *Service) lookupClient(id string) (*clientSession, bool) {
	s.registryMu.RLock()
	defer s.registryMu.RUnlock()
	c, ok := s.clients[id]
	return c, ok
}

func (s *Service) forgetClient(id string) {
	s.registryMu.Lock()
	defer s.registryMu.Unlock()
	delete(s.clients, id)
}

func (s *Service) generateRoomCode() string {
	for {
		b := make([]byte, roomCodeLength)
		for i := range b {
			b[i] = roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))]
		}
		code := string(b)
		s.registryMu.RLock()
		_, taken := s.rooms[code]
		s.registryMu.RUnlock()
		if !taken {
			return code
		}
	}
}
