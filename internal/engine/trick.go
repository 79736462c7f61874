package engine

// LastTrickBonus is awarded to the side winning the eighth and final trick
// of a deal, on top of the points carried by the cards in that trick.
const LastTrickBonus = 10

var nonTrumpOrder = map[Rank]int{
	Seven: 0, Eight: 1, Nine: 2, Jack: 3, Queen: 4, King: 5, Ten: 6, Ace: 7,
}

var trumpOrder = map[Rank]int{
	Seven: 0, Eight: 1, Queen: 2, King: 3, Ten: 4, Ace: 5, Nine: 6, Jack: 7,
}

var nonTrumpPoints = map[Rank]int{
	Seven: 0, Eight: 0, Nine: 0, Jack: 2, Queen: 3, King: 4, Ten: 10, Ace: 11,
}

var trumpPoints = map[Rank]int{
	Seven: 0, Eight: 0, Nine: 14, Jack: 20, Queen: 3, King: 4, Ten: 10, Ace: 11,
}

// CardPoints returns a card's trick-taking value given the deal's trump
// suit; the same rank is worth a different amount depending on whether it
// was dealt in the trump suit.
func CardPoints(c Card, trump Suit) int {
	if c.Suit == trump {
		return trumpPoints[c.Rank]
	}
	return nonTrumpPoints[c.Rank]
}

// rankStrength returns a card's strength for trick-winning comparisons
// within its own suit; higher wins. The ordering differs between the
// trump suit and the three plain suits.
func rankStrength(c Card, trump Suit) int {
	if c.Suit == trump {
		return trumpOrder[c.Rank]
	}
	return nonTrumpOrder[c.Rank]
}

// PlayedCard pairs a card with the seat that played it.
type PlayedCard struct {
	Player int  `json:"player"`
	Card   Card `json:"card"`
}

// Trick is the set of cards played so far in the current round of the
// table. Winner is nil until the fourth card lands.
type Trick struct {
	Leader int          `json:"leader"`
	Plays  []PlayedCard `json:"plays"`
	Winner *int         `json:"winner,omitempty"`
}

func (t *Trick) clone() *Trick {
	if t == nil {
		return nil
	}
	out := &Trick{Leader: t.Leader, Plays: append([]PlayedCard(nil), t.Plays...)}
	if t.Winner != nil {
		w := *t.Winner
		out.Winner = &w
	}
	return out
}

// EvaluateTrick determines the current winner of a trick given the cards
// played so far (which may be a partial trick of 1-3 plays, used by the
// legality oracle to recompute "who is currently winning", or a full trick
// of 4). It returns the winning seat and the sum of card points in play.
//
// Trump beats any non-trump. Among cards of the same trump-or-not status,
// only a card following the suit led by the first card in plays can win;
// strength within a suit is compared via rankStrength.
func EvaluateTrick(plays []PlayedCard, trump Suit) (winner int, points int) {
	lead := plays[0].Card.Suit
	best := 0
	for i := 1; i < len(plays); i++ {
		cur := plays[i]
		champ := plays[best]
		curTrump := cur.Card.Suit == trump
		champTrump := champ.Card.Suit == trump

		switch {
		case curTrump && !champTrump:
			best = i
		case !curTrump && champTrump:
			// champ keeps the lead; trump always beats plain suits.
		case curTrump && champTrump:
			if rankStrength(cur.Card, trump) > rankStrength(champ.Card, trump) {
				best = i
			}
		default: // neither is trump
			if cur.Card.Suit == lead && champ.Card.Suit == lead {
				if rankStrength(cur.Card, trump) > rankStrength(champ.Card, trump) {
					best = i
				}
			} else if cur.Card.Suit == lead {
				best = i
			}
		}
	}

	points = 0
	for _, p := range plays {
		points += CardPoints(p.Card, trump)
	}
	return plays[best].Player, points
}

// highestTrumpStrength returns the strength of the strongest trump played
// so far in plays, or -1 if no trump has been played.
func highestTrumpStrength(plays []PlayedCard, trump Suit) int {
	highest := -1
	for _, p := range plays {
		if p.Card.Suit != trump {
			continue
		}
		if s := rankStrength(p.Card, trump); s > highest {
			highest = s
		}
	}
	return highest
}

// trickHasTrump reports whether any card played so far is trump.
func trickHasTrump(plays []PlayedCard, trump Suit) bool {
	for _, p := range plays {
		if p.Card.Suit == trump {
			return true
		}
	}
	return false
}

// hasStrongerTrump reports whether hand holds a trump card strictly
// stronger than the given threshold strength.
func hasStrongerTrump(hand []Card, trump Suit, threshold int) bool {
	for _, c := range hand {
		if c.Suit == trump && rankStrength(c, trump) > threshold {
			return true
		}
	}
	return false
}
