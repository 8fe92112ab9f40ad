package solo

import "math/rand"

const DeckSize = 52

// NewDeck returns the 52 cards in suit-major order, all face down.
func NewDeck() []Card {
	cards := make([]Card, 0, DeckSize)
	for _, s := range AllSuits() {
		for _, r := range AllRanks() {
			cards = append(cards, NewCard(s, r))
		}
	}
	return cards
}

// Shuffle returns a Fisher-Yates permutation of cards. The input slice is
// left untouched.
func Shuffle(cards []Card, rng *rand.Rand) []Card {
	shuffled := make([]Card, len(cards))
	copy(shuffled, cards)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// Deck is a draw pile dealt from the front.
type Deck struct {
	cards []Card
}

func NewShuffledDeck(rng *rand.Rand) *Deck {
	return &Deck{Shuffle(NewDeck(), rng)}
}

// NewDeckOf stacks a deck in the given order.
func NewDeckOf(cards []Card) *Deck {
	return &Deck{append([]Card(nil), cards...)}
}

func (d *Deck) Size() int {
	return len(d.cards)
}

// Deal removes and returns up to n cards from the front of the deck.
func (d *Deck) Deal(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	dealt := append([]Card(nil), d.cards[:n]...)
	d.cards = append([]Card(nil), d.cards[n:]...)
	return dealt
}

func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}

// deckWithout returns a fresh unshuffled deck minus the given cards.
func deckWithout(held ...[]Card) []Card {
	out := make([]Card, 0, DeckSize)
	for _, c := range NewDeck() {
		var found bool
		for _, pile := range held {
			for _, h := range pile {
				if h.SameCard(c) {
					found = true
				}
			}
		}
		if !found {
			out = append(out, c)
		}
	}
	return out
}
