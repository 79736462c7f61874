package engine

// CheckLegality reports whether player may play card given the deal's
// current state. It is a pure function of (deal, player, card) — called
// twice with the same arguments it returns the same verdict, with no
// side effects on deal.
//
// The cascade below is evaluated in order; the first matching clause
// determines the outcome:
//
//  1. card matches the suit led (L):
//     a. L is not trump: always legal.
//     b. L is trump: if the hand holds a trump strictly stronger than the
//        highest trump played so far, the played card must also be
//        strictly stronger, unless the partner is presently winning the
//        trick, in which case any trump is legal.
//  2. card does not match L, and the hand holds a card of suit L:
//     illegal, must follow suit.
//  3. the hand holds neither L nor the trump suit: always legal (free
//     discard).
//  4. the hand holds no L but holds trump, and no trump has been played
//     yet this trick: legal if the partner currently holds the trick,
//     otherwise the card must be trump if the hand has one.
//  5. as (4) but a trump has already been played this trick: legal if the
//     partner currently holds the trick; otherwise, if the hand holds a
//     stronger trump than the highest played, the card must be that
//     stronger trump, else the card must be any trump (undercut is
//     allowed only when no stronger trump is held).
func CheckLegality(deal *DealState, player int, card Card) error {
	if deal.Phase != PlayingTricks {
		return &Error{Code: ErrWrongPhase, Message: "no trick is in progress"}
	}
	hand := deal.Hands[player]
	if !containsCard(hand, card) {
		return &Error{Code: ErrNotInHand, Message: "card not in hand"}
	}

	trick := deal.Trick
	if trick == nil || len(trick.Plays) == 0 || len(trick.Plays) == 4 {
		// Leading a fresh trick: any card in hand may be led.
		return nil
	}

	trump := *deal.TrumpSuit
	lead := trick.Plays[0].Card.Suit
	winner, _ := EvaluateTrick(trick.Plays, trump)
	partnerWinning := teamOf(winner) == teamOf(player)

	if card.Suit == lead {
		if lead != trump {
			return nil
		}
		if partnerWinning {
			return nil
		}
		highest := highestTrumpStrength(trick.Plays, trump)
		if hasStrongerTrump(hand, trump, highest) {
			if rankStrength(card, trump) > highest {
				return nil
			}
			return &Error{Code: ErrMustOvertrump, Message: "must play a stronger trump"}
		}
		return nil
	}

	if handHasSuit(hand, lead) {
		return &Error{Code: ErrMustFollowSuit, Message: "must follow suit"}
	}

	if !handHasSuit(hand, trump) {
		return nil
	}

	if !trickHasTrump(trick.Plays, trump) {
		if partnerWinning {
			return nil
		}
		if card.Suit == trump {
			return nil
		}
		return &Error{Code: ErrMustTrump, Message: "must trump"}
	}

	if partnerWinning {
		return nil
	}
	highest := highestTrumpStrength(trick.Plays, trump)
	if hasStrongerTrump(hand, trump, highest) {
		if card.Suit == trump && rankStrength(card, trump) > highest {
			return nil
		}
		return &Error{Code: ErrMustOvertrump, Message: "must overtrump"}
	}
	if card.Suit == trump {
		return nil
	}
	return &Error{Code: ErrMustUndertrump, Message: "must undertrump"}
}

// teamOf returns the team index (0 or 1) for a seat; seats 0/2 are one
// partnership, seats 1/3 the other.
func teamOf(seat int) int {
	return seat % 2
}
