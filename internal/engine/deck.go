package engine

import "math/rand"

// Deck is the ordered pile of undealt cards held aside in a DealState.
// Cards are drawn from the front with PopFront.
type Deck []Card

// NewDeck returns a freshly-ordered 32-card deck, unshuffled.
func NewDeck() Deck {
	full := FullDeck()
	d := make(Deck, len(full))
	copy(d, full)
	return d
}

// Shuffle permutes the deck in place using the supplied random source.
// The source is an injected dependency (see NewRand/NewSeededRand) rather
// than a package-level generator, so deals are deterministic under test.
func (d Deck) Shuffle(rng *rand.Rand) {
	for i := len(d) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		d[i], d[j] = d[j], d[i]
	}
}

// PopFront removes and returns the top card of the deck.
func (d Deck) PopFront() (Card, Deck) {
	return d[0], d[1:]
}

// Clone returns an independent copy of the deck.
func (d Deck) Clone() Deck {
	out := make(Deck, len(d))
	copy(out, d)
	return out
}
