package solo

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardViewHidesFaceDownCards(t *testing.T) {
	b, err := json.Marshal(NewCardViews([]Card{up(SuitHearts, RankAce), down(SuitSpades, RankKing)}))
	require.NoError(t, err)

	assert.JSONEq(t, `[{"id":"hearts-A","suit":"hearts","rank":"A","face_up":true},{"face_up":false}]`, string(b))
}

func TestBlackjackStateMessage(t *testing.T) {
	b, _ := newTestBlackjack(t,
		NewCard(SuitSpades, RankTen), NewCard(SuitHearts, RankSix),
		NewCard(SuitClubs, RankNine), NewCard(SuitDiamonds, RankSeven),
	)
	require.NoError(t, b.StartRound(20))

	msg := NewBlackjackStateMessage(b)
	assert.Equal(t, PhasePlaying, msg.Phase)
	assert.Equal(t, 16, msg.PlayerScore)
	assert.Equal(t, 9, msg.DealerScore)
	assert.Equal(t, 20, msg.Bet)
	assert.Equal(t, 980, msg.Chips)
	assert.Equal(t, 1, msg.GameCount)
	assert.Equal(t, DeckSize-4, msg.DeckSize)
	assert.Equal(t, CardView{}, msg.DealerHand[1])

	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "playing", decoded["phase"])
	assert.NotContains(t, decoded, "result")
}

func TestSolitaireStateMessage(t *testing.T) {
	s, clock := newTestSolitaire(t, nil)
	clock.Advance(65 * time.Second)
	require.NoError(t, s.Select(TableauPile(6), 6))

	msg := NewSolitaireStateMessage(s)
	assert.Equal(t, 24, msg.Stock)
	assert.Empty(t, msg.Waste)
	assert.Len(t, msg.Foundations, Foundations)
	require.Len(t, msg.Tableau, Columns)
	assert.Equal(t, CardView{}, msg.Tableau[6][0])
	assert.True(t, msg.Tableau[6][6].FaceUp)
	assert.Equal(t, 65, msg.Time)
	require.NotNil(t, msg.Selection)
	assert.Equal(t, TableauPile(6), msg.Selection.Pile)
	assert.Equal(t, []string{s.Tableau[6][6].ID()}, msg.Selection.IDs)
}

func TestProgressMessage(t *testing.T) {
	s := Reduce(NewAppState(), EndGame{Game: GameSolitaire, Won: true, Elapsed: 83 * time.Second}, DefaultRewards())

	msg := NewProgressMessage(s)
	require.NotNil(t, msg.Stats[GameSolitaire].BestTime)
	assert.Equal(t, 83, *msg.Stats[GameSolitaire].BestTime)
	assert.Nil(t, msg.Stats[GameHearts].BestTime)
	assert.InDelta(t, 100.0, msg.Stats[GameSolitaire].WinRate, 0.001)

	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"best_time":null`)
}
