package solo

const blackjack = 21

// Hand is a blackjack hand. Its value is always derived from the cards.
type Hand []Card

// BlackjackValue counts number cards at face value, pictures as 10 and aces
// as 11, then demotes aces to 1 one at a time while the total is over 21.
func BlackjackValue(cards []Card) int {
	var value, aces int
	for _, c := range cards {
		switch {
		case c.Rank == RankAce:
			aces++
			value += 11
		case c.Rank >= RankJack:
			value += 10
		default:
			value += c.Rank.Value()
		}
	}
	for value > blackjack && aces > 0 {
		value -= 10
		aces--
	}
	return value
}

func (h Hand) Value() int {
	return BlackjackValue(h)
}

// Soft reports whether an ace is still being counted as 11.
func (h Hand) Soft() bool {
	var hard int
	var aces bool
	for _, c := range h {
		if c.Rank == RankAce {
			aces = true
		}
		switch {
		case c.Rank >= RankJack:
			hard += 10
		default:
			hard += c.Rank.Value()
		}
	}
	return aces && h.Value() != hard
}

func (h Hand) Bust() bool {
	return h.Value() > blackjack
}

// Natural is a two card 21.
func (h Hand) Natural() bool {
	return len(h) == 2 && h.Value() == blackjack
}

// Revealed returns a copy of the hand with every card face up.
func (h Hand) Revealed() Hand {
	out := make(Hand, len(h))
	for i, c := range h {
		out[i] = c.Up()
	}
	return out
}

// with returns a new hand; the receiver's backing array is never shared.
func (h Hand) with(c Card) Hand {
	out := make(Hand, len(h), len(h)+1)
	copy(out, h)
	return append(out, c)
}
