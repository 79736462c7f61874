package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeal(seed int64) *DealState {
	return NewDeal(0, 1, [2]int{0, 0}, NewSeededRand(seed))
}

func TestNewDealIsDeterministicUnderSameSeed(t *testing.T) {
	a := newTestDeal(42)
	b := newTestDeal(42)
	assert.Equal(t, a, b)
}

func TestNewDealDiffersAcrossSeeds(t *testing.T) {
	a := newTestDeal(1)
	b := newTestDeal(2)
	assert.NotEqual(t, a.Hands, b.Hands)
}

func TestNewDealCardAccounting(t *testing.T) {
	d := newTestDeal(7)

	assert.Equal(t, ChoosingTrumpFirstRound, d.Phase)
	assert.Equal(t, 1, d.CurrentPlayer)
	require.NotNil(t, d.BiddingPlayer)
	assert.Equal(t, 1, *d.BiddingPlayer)
	require.NotNil(t, d.TurnedCard)
	require.NotNil(t, d.ProposedTrump)
	assert.Equal(t, d.TurnedCard.Suit, *d.ProposedTrump)
	assert.Len(t, d.Deck, 11)

	total := len(d.Deck) + 1 // +1 turned card
	seen := map[Card]bool{*d.TurnedCard: true}
	for _, h := range d.Hands {
		assert.Len(t, h, 5)
		total += len(h)
		for _, c := range h {
			assert.False(t, seen[c], "card dealt twice: %v", c)
			seen[c] = true
		}
	}
	for _, c := range d.Deck {
		assert.False(t, seen[c], "card dealt twice: %v", c)
		seen[c] = true
	}
	assert.Equal(t, 32, total)
}

func TestApplyBidPassRotatesThroughBothRounds(t *testing.T) {
	d := newTestDeal(3)
	rng := NewSeededRand(99)

	for i := 0; i < 4; i++ {
		var err error
		d, err = ApplyBid(d, *d.BiddingPlayer, BidPass, nil, rng)
		require.NoError(t, err)
	}
	assert.Equal(t, ChoosingTrumpSecondRound, d.Phase)
	assert.Equal(t, 0, d.PassesInCurrentRound)
	require.NotNil(t, d.BiddingPlayer)
	assert.Equal(t, 1, *d.BiddingPlayer)
}

func TestApplyBidFourPassesInSecondRoundRestartsDeal(t *testing.T) {
	d := newTestDeal(5)
	rng := NewSeededRand(11)

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
	assert.Equal(t, 2, d.DealNumber)
	assert.Equal(t, [2]int{0, 0}, d.DealScores)
}

func TestApplyBidTakeFirstRoundDealsToEight(t *testing.T) {
	d := newTestDeal(13)
	rng := NewSeededRand(13)

	taker := *d.BiddingPlayer
	next, err := ApplyBid(d, taker, BidTake, nil, rng)
	require.NoError(t, err)

	assert.Equal(t, PlayingTricks, next.Phase)
	require.NotNil(t, next.TrumpSuit)
	assert.Equal(t, *d.ProposedTrump, *next.TrumpSuit)
	require.NotNil(t, next.TrumpChooser)
	assert.Equal(t, taker, *next.TrumpChooser)
	assert.Nil(t, next.TurnedCard)
	assert.Equal(t, (d.Dealer+1)%4, next.CurrentPlayer)
	assert.Len(t, next.Deck, 0)

	for _, h := range next.Hands {
		assert.Len(t, h, 8)
	}
}

func TestApplyBidTakeSecondRoundRequiresDifferentSuit(t *testing.T) {
	d := newTestDeal(21)
	rng := NewSeededRand(21)

	for i := 0; i < 4; i++ {
		var err error
		d, err = ApplyBid(d, *d.BiddingPlayer, BidPass, nil, rng)
		require.NoError(t, err)
	}
	require.Equal(t, ChoosingTrumpSecondRound, d.Phase)

	taker := *d.BiddingPlayer
	_, err := ApplyBid(d, taker, BidTake, d.ProposedTrump, rng)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrBiddingInvalid, code)

	other := Clubs
	if *d.ProposedTrump == Clubs {
		other = Diamonds
	}
	next, err := ApplyBid(d, taker, BidTake, &other, rng)
	require.NoError(t, err)
	assert.Equal(t, other, *next.TrumpSuit)
}

func TestApplyBidRejectsOutOfTurn(t *testing.T) {
	d := newTestDeal(8)
	wrong := (*d.BiddingPlayer + 1) % 4
	_, err := ApplyBid(d, wrong, BidPass, nil, NewSeededRand(8))
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrNotYourTurn, code)
}

// playOutDeal drives a full deal to completion using only legal moves: on
// each trick, each player plays their first card that CheckLegality
// accepts. It returns the final (Finished) state.
func playOutDeal(t *testing.T, d *DealState) *DealState {
	t.Helper()
	for d.Phase != Finished {
		player := d.CurrentPlayer
		hand := d.Hands[player]
		require.NotEmpty(t, hand)
		var chosen Card
		found := false
		for _, c := range hand {
			if CheckLegality(d, player, c) == nil {
				chosen = c
				found = true
				break
			}
		}
		require.True(t, found, "no legal card for player %d", player)
		next, err := ApplyPlay(d, player, chosen)
		require.NoError(t, err)
		d = next
	}
	return d
}

func TestDealTotalsScoreToOneSixtyTwo(t *testing.T) {
	d := newTestDeal(55)
	rng := NewSeededRand(55)
	taker := *d.BiddingPlayer
	d, err := ApplyBid(d, taker, BidTake, nil, rng)
	require.NoError(t, err)

	final := playOutDeal(t, d)
	assert.Equal(t, Finished, final.Phase)
	assert.Equal(t, 162, final.DealScores[0]+final.DealScores[1])
}

func TestApplyPlayRejectsOutOfTurn(t *testing.T) {
	d := newTestDeal(6)
	rng := NewSeededRand(6)
	taker := *d.BiddingPlayer
	d, err := ApplyBid(d, taker, BidTake, nil, rng)
	require.NoError(t, err)

	leader := d.CurrentPlayer
	wrong := (leader + 1) % 4
	_, err = ApplyPlay(d, wrong, d.Hands[wrong][0])
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrNotYourTurn, code)
}

func TestApplyBeloteRequiresBothKingAndQueen(t *testing.T) {
	trump := Clubs
	d := &DealState{
		Phase:     PlayingTricks,
		TrumpSuit: &trump,
		Hands: [4][]Card{
			{{Clubs, King}},
		},
	}
	_, err := ApplyBelote(d, 0)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrBeloteNotHeld, code)

	d.Hands[0] = append(d.Hands[0], Card{Clubs, Queen})
	next, err := ApplyBelote(d, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, next.Belote.Stage)
	assert.Equal(t, 20, next.Belote.Points)
	require.NotNil(t, next.Belote.Holder)
	assert.Equal(t, 0, *next.Belote.Holder)
}

func TestApplyBeloteRebeloteRequiresOriginalHolder(t *testing.T) {
	trump := Clubs
	d := &DealState{
		Phase:     PlayingTricks,
		TrumpSuit: &trump,
		Hands: [4][]Card{
			{{Clubs, King}, {Clubs, Queen}},
		},
	}
	d, err := ApplyBelote(d, 0)
	require.NoError(t, err)

	_, err = ApplyBelote(d, 1)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrBeloteHolder, code)

	final, err := ApplyBelote(d, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, final.Belote.Stage)
}
