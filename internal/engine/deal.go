package engine

import "math/rand"

// Phase is the current stage of a deal's lifecycle.
type Phase string

const (
	ChoosingTrumpFirstRound  Phase = "choosing_trump_first_round"
	ChoosingTrumpSecondRound Phase = "choosing_trump_second_round"
	PlayingTricks            Phase = "playing_tricks"
	Finished                 Phase = "finished"
)

// BidAction is the action a player takes on their bidding turn.
type BidAction string

const (
	BidTake BidAction = "take"
	BidPass BidAction = "pass"
)

// BeloteState tracks the king+queen-of-trump declaration for the current
// deal. Stage 0 means nothing has been announced; 1 means belote has been
// announced (20 points provisionally awarded to Team); 2 means rebelote
// has also been announced, confirming the points.
type BeloteState struct {
	Holder *int `json:"holder,omitempty"`
	Team   *int `json:"team,omitempty"`
	Stage  int  `json:"stage"`
	Points int  `json:"points"`
}

func (b BeloteState) clone() BeloteState {
	out := b
	if b.Holder != nil {
		h := *b.Holder
		out.Holder = &h
	}
	if b.Team != nil {
		t := *b.Team
		out.Team = &t
	}
	return out
}

// DealState is the complete authoritative state of one deal. It is
// replaced wholesale, never mutated in place by callers: every Apply*
// function below takes a DealState and returns a new one (or an error),
// leaving the input untouched.
type DealState struct {
	Phase                Phase       `json:"phase"`
	Dealer               int         `json:"dealer"`
	CurrentPlayer        int         `json:"currentPlayer"`
	Deck                 Deck        `json:"-"`
	Hands                [4][]Card   `json:"hands"`
	PlayedCards          [4][]Card   `json:"-"`
	TurnedCard           *Card       `json:"turnedCard,omitempty"`
	ProposedTrump        *Suit       `json:"proposedTrump,omitempty"`
	TrumpSuit            *Suit       `json:"trumpSuit,omitempty"`
	TrumpChooser         *int        `json:"trumpChooser,omitempty"`
	BiddingPlayer        *int        `json:"biddingPlayer,omitempty"`
	PassesInCurrentRound int         `json:"passesInCurrentRound"`
	Trick                *Trick      `json:"trick,omitempty"`
	DealScores           [2]int      `json:"dealScores"`
	MatchScores          [2]int      `json:"matchScores"`
	DealNumber           int         `json:"dealNumber"`
	Belote               BeloteState `json:"belote"`
}

// Clone returns a deep copy of the deal state; the receiver is left
// unmodified by callers mutating the returned value.
func (d *DealState) Clone() *DealState {
	out := *d
	if d.Deck != nil {
		out.Deck = d.Deck.Clone()
	}
	for i := range d.Hands {
		if d.Hands[i] != nil {
			out.Hands[i] = append(make([]Card, 0, len(d.Hands[i])), d.Hands[i]...)
		}
		if d.PlayedCards[i] != nil {
			out.PlayedCards[i] = append(make([]Card, 0, len(d.PlayedCards[i])), d.PlayedCards[i]...)
		}
	}
	if d.TurnedCard != nil {
		c := *d.TurnedCard
		out.TurnedCard = &c
	}
	if d.ProposedTrump != nil {
		s := *d.ProposedTrump
		out.ProposedTrump = &s
	}
	if d.TrumpSuit != nil {
		s := *d.TrumpSuit
		out.TrumpSuit = &s
	}
	if d.TrumpChooser != nil {
		v := *d.TrumpChooser
		out.TrumpChooser = &v
	}
	if d.BiddingPlayer != nil {
		v := *d.BiddingPlayer
		out.BiddingPlayer = &v
	}
	out.Trick = d.Trick.clone()
	out.Belote = d.Belote.clone()
	return &out
}

// NewDeal builds and shuffles a fresh 32-card deck, deals five cards to
// each player starting left of dealer, and turns the next card face up as
// the proposed trump. matchScores carries the running match total forward
// from whatever deal preceded this one (zero for the first deal of a
// match). rng is the injected source of randomness for the shuffle.
func NewDeal(dealer, dealNumber int, matchScores [2]int, rng *rand.Rand) *DealState {
	deck := NewDeck()
	deck.Shuffle(rng)

	d := &DealState{
		Phase:       ChoosingTrumpFirstRound,
		Dealer:      dealer,
		DealNumber:  dealNumber,
		MatchScores: matchScores,
	}

	order := rotationFrom((dealer + 1) % 4)
	for round := 0; round < 5; round++ {
		for _, p := range order {
			var c Card
			c, deck = deck.PopFront()
			d.Hands[p] = append(d.Hands[p], c)
		}
	}
	turned, rest := deck.PopFront()
	d.TurnedCard = &turned
	d.Deck = rest
	proposed := turned.Suit
	d.ProposedTrump = &proposed

	bp := (dealer + 1) % 4
	d.BiddingPlayer = &bp
	d.CurrentPlayer = bp
	return d
}

// rotationFrom returns the four seats in table order starting at start.
func rotationFrom(start int) [4]int {
	var order [4]int
	for i := 0; i < 4; i++ {
		order[i] = (start + i) % 4
	}
	return order
}

// ApplyBid processes a bidding command from player: a take or a pass. It
// returns the deal state that results, or an error if the command is not
// currently legal. rng is used only if four passes in the second round
// force a fresh deal to be dealt.
func ApplyBid(state *DealState, player int, action BidAction, suit *Suit, rng *rand.Rand) (*DealState, error) {
	if state.Phase != ChoosingTrumpFirstRound && state.Phase != ChoosingTrumpSecondRound {
		return nil, &Error{Code: ErrWrongPhase, Message: "bidding is not open"}
	}
	if state.BiddingPlayer == nil || *state.BiddingPlayer != player {
		return nil, &Error{Code: ErrNotYourTurn, Message: "not your bid"}
	}

	next := state.Clone()

	switch action {
	case BidTake:
		if state.Phase == ChoosingTrumpSecondRound {
			if suit == nil || *suit == *state.ProposedTrump {
				return nil, &Error{Code: ErrBiddingInvalid, Message: "second round take must name a suit other than the one declined in the first round"}
			}
			next.TrumpSuit = suit
		} else {
			chosen := *state.ProposedTrump
			next.TrumpSuit = &chosen
		}
		next.TrumpChooser = &player
		next.dealRemainderTo(player)
		next.TurnedCard = nil
		next.Phase = PlayingTricks
		leader := (next.Dealer + 1) % 4
		next.CurrentPlayer = leader
		next.Trick = nil
		next.BiddingPlayer = nil
		next.PassesInCurrentRound = 0
		return next, nil

	case BidPass:
		next.PassesInCurrentRound++
		if next.PassesInCurrentRound < 4 {
			np := (player + 1) % 4
			next.BiddingPlayer = &np
			next.CurrentPlayer = np
			return next, nil
		}
		if state.Phase == ChoosingTrumpFirstRound {
			next.Phase = ChoosingTrumpSecondRound
			bp := (next.Dealer + 1) % 4
			next.BiddingPlayer = &bp
			next.CurrentPlayer = bp
			next.PassesInCurrentRound = 0
			return next, nil
		}
		// Four passes in the second round: restart the whole deal with the
		// same dealer, fresh shuffle, new turned card, scores zeroed.
		restarted := NewDeal(state.Dealer, state.DealNumber+1, state.MatchScores, rng)
		return restarted, nil

	default:
		return nil, &Error{Code: ErrBiddingInvalid, Message: "unknown bid action"}
	}
}

// dealRemainderTo gives the turned card to chooser, then tops every hand
// up to eight cards in dealer-relative order: the turned card plus two
// further rounds reach the chooser's eight, while the three other seats
// need a third round to reach theirs. Operates in place on the receiver,
// which callers only ever invoke on a freshly-cloned DealState.
func (d *DealState) dealRemainderTo(chooser int) {
	d.Hands[chooser] = append(d.Hands[chooser], *d.TurnedCard)

	order := rotationFrom((d.Dealer + 1) % 4)
	for round := 0; round < 2; round++ {
		for _, p := range order {
			var c Card
			c, d.Deck = d.Deck.PopFront()
			d.Hands[p] = append(d.Hands[p], c)
		}
	}
	for _, p := range order {
		if p == chooser {
			continue
		}
		var c Card
		c, d.Deck = d.Deck.PopFront()
		d.Hands[p] = append(d.Hands[p], c)
	}
}

// ApplyPlay processes a card play from player, resolving the trick and
// scoring it when it completes, and ending the deal when all hands are
// empty. It returns the resulting deal state, or an error if the play is
// not currently legal.
func ApplyPlay(state *DealState, player int, card Card) (*DealState, error) {
	if state.Phase != PlayingTricks {
		return nil, &Error{Code: ErrWrongPhase, Message: "tricks are not being played"}
	}
	if state.CurrentPlayer != player {
		return nil, &Error{Code: ErrNotYourTurn, Message: "not your turn"}
	}
	if err := CheckLegality(state, player, card); err != nil {
		return nil, err
	}

	next := state.Clone()
	next.Hands[player] = removeCard(next.Hands[player], card)
	next.PlayedCards[player] = append(next.PlayedCards[player], card)

	if next.Trick == nil || len(next.Trick.Plays) == 4 {
		next.Trick = &Trick{Leader: player}
	}
	next.Trick.Plays = append(next.Trick.Plays, PlayedCard{Player: player, Card: card})

	if len(next.Trick.Plays) < 4 {
		next.CurrentPlayer = (player + 1) % 4
		return next, nil
	}

	trump := *next.TrumpSuit
	winner, points := EvaluateTrick(next.Trick.Plays, trump)
	next.Trick.Winner = &winner
	winningTeam := teamOf(winner)
	next.DealScores[winningTeam] += points
	next.CurrentPlayer = winner

	if handsAllEmpty(next.Hands) {
		next.DealScores[winningTeam] += LastTrickBonus
		if next.Belote.Stage == 2 && next.Belote.Team != nil {
			next.DealScores[*next.Belote.Team] += next.Belote.Points
		}
		next.MatchScores[0] += next.DealScores[0]
		next.MatchScores[1] += next.DealScores[1]
		next.Phase = Finished
	}
	return next, nil
}

func handsAllEmpty(hands [4][]Card) bool {
	for _, h := range hands {
		if len(h) > 0 {
			return false
		}
	}
	return true
}

// ApplyBelote processes a belote/rebelote announcement from player. The
// first announcement (stage 0 -> 1) requires the player to currently hold
// both the king and queen of trump; the second (stage 1 -> 2, "rebelote")
// requires the same holder to have held both at some point this deal
// (in hand now, or already played), confirming the 20-point bonus.
func ApplyBelote(state *DealState, player int) (*DealState, error) {
	if state.Phase != PlayingTricks || state.TrumpSuit == nil {
		return nil, &Error{Code: ErrWrongPhase, Message: "no trump suit is set"}
	}
	trump := *state.TrumpSuit
	king := Card{Suit: trump, Rank: King}
	queen := Card{Suit: trump, Rank: Queen}

	next := state.Clone()
	everHeld := func(p int, c Card) bool {
		return containsCard(next.Hands[p], c) || containsCard(next.PlayedCards[p], c)
	}

	switch next.Belote.Stage {
	case 0:
		if !containsCard(next.Hands[player], king) || !containsCard(next.Hands[player], queen) {
			return nil, &Error{Code: ErrBeloteNotHeld, Message: "must hold both the king and queen of trump"}
		}
		team := teamOf(player)
		next.Belote.Holder = &player
		next.Belote.Team = &team
		next.Belote.Stage = 1
		next.Belote.Points = 20
	case 1:
		if next.Belote.Holder == nil || *next.Belote.Holder != player {
			return nil, &Error{Code: ErrBeloteHolder, Message: "only the original announcer may confirm rebelote"}
		}
		if !everHeld(player, king) || !everHeld(player, queen) {
			return nil, &Error{Code: ErrBeloteNotHeld, Message: "must have held both the king and queen of trump this deal"}
		}
		next.Belote.Stage = 2
	default:
		return nil, &Error{Code: ErrBeloteStage, Message: "belote has already been confirmed"}
	}
	return next, nil
}
