package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serializableFields zeroes the bookkeeping fields the wire format
// intentionally omits (Deck, PlayedCards — see the json:"-" tags on
// DealState), so a round trip can be compared against what a client
// actually receives over the wire.
func serializableFields(d *DealState) *DealState {
	out := d.Clone()
	out.Deck = nil
	for i := range out.PlayedCards {
		out.PlayedCards[i] = nil
	}
	return out
}

func TestDealStateRoundTripsThroughJSONAtChoosingTrump(t *testing.T) {
	d := newTestDeal(11)

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded DealState
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, serializableFields(d), serializableFields(&decoded))
}

func TestDealStateRoundTripsThroughJSONAfterFullDeal(t *testing.T) {
	d := newTestDeal(22)
	rng := NewSeededRand(22)
	taker := *d.BiddingPlayer
	d, err := ApplyBid(d, taker, BidTake, nil, rng)
	require.NoError(t, err)
	d = playOutDeal(t, d)

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded DealState
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, serializableFields(d), serializableFields(&decoded))
	assert.Equal(t, Finished, decoded.Phase)
}
