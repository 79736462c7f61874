package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 1 — trick winner under trump Hearts, lead Spades.
func TestScenarioTrickWinnerUnderTrumpLeadSpades(t *testing.T) {
	plays := []PlayedCard{
		{Player: 0, Card: Card{Spades, Ten}},
		{Player: 1, Card: Card{Hearts, Jack}},
		{Player: 2, Card: Card{Spades, Ace}},
		{Player: 3, Card: Card{Hearts, Eight}},
	}
	winner, _ := EvaluateTrick(plays, Hearts)
	assert.Equal(t, 1, winner)
}

// Scenario 2 — forced overtrump. Trump Clubs, trick so far (p0 A♦ lead),
// (p1 9♣). p2's hand has a weaker trump, a stronger trump, and a card of
// neither the lead suit nor trump.
func TestScenarioForcedOvertrump(t *testing.T) {
	hands := [4][]Card{
		{}, {},
		{{Clubs, Seven}, {Clubs, Jack}, {Hearts, King}},
	}
	trick := &Trick{Leader: 0, Plays: []PlayedCard{
		{Player: 0, Card: Card{Diamonds, Ace}},
		{Player: 1, Card: Card{Clubs, Nine}},
	}}
	d := dealInTrick(Clubs, hands, trick)

	code, ok := CodeOf(CheckLegality(d, 2, Card{Clubs, Seven}))
	require.True(t, ok)
	assert.Equal(t, ErrMustOvertrump, code)

	code, ok = CodeOf(CheckLegality(d, 2, Card{Hearts, King}))
	require.True(t, ok)
	assert.Equal(t, ErrMustOvertrump, code)

	require.NoError(t, CheckLegality(d, 2, Card{Clubs, Jack}))
}

// Scenario 3 — partner-is-master discard allowance. Trump Clubs, trick so
// far (p0 7♥ lead), (p1 A♥), (p2 10♥); p1 is p3's partner (team 1) and is
// presently winning the trick under the lead suit. p3 holds no hearts.
func TestScenarioPartnerIsMasterDiscardAllowance(t *testing.T) {
	hands := [4][]Card{
		{}, {}, {},
		{{Clubs, Eight}, {Diamonds, Nine}},
	}
	trick := &Trick{Leader: 0, Plays: []PlayedCard{
		{Player: 0, Card: Card{Hearts, Seven}},
		{Player: 1, Card: Card{Hearts, Ace}},
		{Player: 2, Card: Card{Hearts, Ten}},
	}}
	d := dealInTrick(Clubs, hands, trick)

	require.NoError(t, CheckLegality(d, 3, Card{Diamonds, Nine}))
}

// Scenario 4 — four-pass restart in round 2.
func TestScenarioFourPassRestartInRoundTwo(t *testing.T) {
	d := NewDeal(0, 1, [2]int{30, 45}, NewSeededRand(17))
	rng := NewSeededRand(23)

	for i := 0; i < 4; i++ {
		var err error
		d, err = ApplyBid(d, *d.BiddingPlayer, BidPass, nil, rng)
		require.NoError(t, err)
	}
	require.Equal(t, ChoosingTrumpSecondRound, d.Phase)

	for i := 0; i < 4; i++ {
		var err error
		d, err = ApplyBid(d, *d.BiddingPlayer, BidPass, nil, rng)
		require.NoError(t, err)
	}

	assert.Equal(t, ChoosingTrumpFirstRound, d.Phase)
	assert.Equal(t, 0, d.Dealer)
	assert.Equal(t, [2]int{30, 45}, d.MatchScores)
}

// Scenario 5 — Finished totals.
func TestScenarioFinishedTotals(t *testing.T) {
	d := newTestDeal(99)
	rng := NewSeededRand(99)
	d, err := ApplyBid(d, *d.BiddingPlayer, BidTake, nil, rng)
	require.NoError(t, err)

	final := playOutDeal(t, d)
	assert.Equal(t, 162, final.DealScores[0]+final.DealScores[1])
}
