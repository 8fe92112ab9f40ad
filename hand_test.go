package solo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func hand(ranks ...Rank) Hand {
	suits := AllSuits()
	h := make(Hand, len(ranks))
	for i, r := range ranks {
		h[i] = up(suits[i%len(suits)], r)
	}
	return h
}

func TestBlackjackValue(t *testing.T) {
	testCases := []struct {
		name    string
		hand    Hand
		value   int
		soft    bool
		bust    bool
		natural bool
	}{
		{"empty", hand(), 0, false, false, false},
		{"pair of aces", hand(RankAce, RankAce), 12, true, false, false},
		{"ace king", hand(RankAce, RankKing), 21, true, false, true},
		{"ace ten", hand(RankAce, RankTen), 21, true, false, true},
		{"ten ten five", hand(RankTen, RankTen, RankFive), 25, false, true, false},
		{"soft seventeen", hand(RankAce, RankSix), 17, true, false, false},
		{"ace demoted", hand(RankAce, RankFive, RankEight), 14, false, false, false},
		{"three card 21", hand(RankSeven, RankSeven, RankSeven), 21, false, false, false},
		{"four aces", hand(RankAce, RankAce, RankAce, RankAce), 14, true, false, false},
		{"pictures", hand(RankJack, RankQueen), 20, false, false, false},
		{"ace nine ace", hand(RankAce, RankNine, RankAce), 21, true, false, false},
		{"ace ace king king", hand(RankAce, RankAce, RankKing, RankKing), 22, false, true, false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.value, BlackjackValue(testCase.hand))
			assert.Equal(t, testCase.value, testCase.hand.Value())
			assert.Equal(t, testCase.soft, testCase.hand.Soft())
			assert.Equal(t, testCase.bust, testCase.hand.Bust())
			assert.Equal(t, testCase.natural, testCase.hand.Natural())
		})
	}
}

func TestHandWithDoesNotAlias(t *testing.T) {
	base := make(Hand, 1, 4)
	base[0] = up(SuitHearts, RankTwo)

	a := base.with(up(SuitClubs, RankThree))
	b := base.with(up(SuitSpades, RankFour))

	assert.Equal(t, RankThree, a[1].Rank)
	assert.Equal(t, RankFour, b[1].Rank)
	assert.Len(t, base, 1)
}

func TestHandRevealed(t *testing.T) {
	h := Hand{up(SuitHearts, RankTwo), down(SuitClubs, RankNine)}
	r := h.Revealed()

	assert.True(t, r[1].FaceUp)
	assert.False(t, h[1].FaceUp)
}
