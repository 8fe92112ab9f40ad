package solo

import (
	"encoding/json"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeConn struct {
	mu   sync.Mutex
	msgs []*Message
}

func (c *fakeConn) Send(msg *Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *fakeConn) RemoteAddr() string {
	return "127.0.0.1:4000"
}

func (c *fakeConn) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.msgs))
	for i, m := range c.msgs {
		out[i] = m.Type
	}
	return out
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = nil
}

// last decodes the most recent message of the given type into v.
func (c *fakeConn) last(t *testing.T, typ string, v interface{}) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.msgs) - 1; i >= 0; i-- {
		if c.msgs[i].Type == typ {
			require.NoError(t, json.Unmarshal(c.msgs[i].Data, v))
			return
		}
	}
	t.Fatalf("no %s message", typ)
}

// stepQueue stands in for time.AfterFunc so dealer steps run when the test
// says so.
type stepQueue struct {
	mu    sync.Mutex
	steps []func()
}

func (q *stepQueue) after(_ time.Duration, f func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.steps = append(q.steps, f)
}

// drain runs queued steps, including ones they queue, and returns how many
// ran.
func (q *stepQueue) drain() int {
	var n int
	for {
		q.mu.Lock()
		if len(q.steps) == 0 {
			q.mu.Unlock()
			return n
		}
		f := q.steps[0]
		q.steps = q.steps[1:]
		q.mu.Unlock()
		f()
		n++
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	log := zaptest.NewLogger(t)
	progress := LoadProgress(NewMemoryStore(), DefaultRewards(), log)
	m := NewManager(DefaultConfig(), progress, log)
	m.clock = NewFakeClock(epoch)
	m.newRand = func() *rand.Rand { return rand.New(rand.NewSource(11)) }
	return m
}

func connect(t *testing.T, m *Manager, top ...Card) (*fakeConn, *Table, *stepQueue) {
	t.Helper()
	conn := &fakeConn{}
	table := m.Connect(conn)
	q := &stepQueue{}
	table.after = q.after
	if len(top) > 0 {
		table.blackjack.Deck = NewDeckOf(stacked(top...))
	}
	return conn, table, q
}

func send(t *testing.T, m *Manager, conn Conn, typ string, data interface{}) error {
	t.Helper()
	msg := &Message{Type: typ}
	if data != nil {
		msg = MakeMessage(typ, data)
	}
	return m.Handle(conn, msg)
}

func TestManagerConnect(t *testing.T) {
	m := newTestManager(t)
	conn, table, _ := connect(t, m)

	assert.NotEmpty(t, table.ID())
	assert.Equal(t, []string{"blackjack_state", "solitaire_state", "progress"}, conn.types())

	var bj BlackjackStateMessage
	conn.last(t, "blackjack_state", &bj)
	assert.Equal(t, PhaseBetting, bj.Phase)
	assert.Equal(t, 1000, bj.Chips)

	var progress map[string]interface{}
	conn.last(t, "progress", &progress)
	assert.Equal(t, DefaultPlayerName, progress["name"])
}

func TestManagerNotConnected(t *testing.T) {
	m := newTestManager(t)
	assert.Error(t, send(t, m, &fakeConn{}, "hit", nil))
}

func TestManagerUnknownMessage(t *testing.T) {
	m := newTestManager(t)
	conn, _, _ := connect(t, m)
	assert.EqualError(t, send(t, m, conn, "shuffle_up", nil), "unknown message type")
}

func TestManagerBlackjackRound(t *testing.T) {
	m := newTestManager(t)
	conn, _, q := connect(t, m,
		NewCard(SuitSpades, RankTen), NewCard(SuitHearts, RankEight),
		NewCard(SuitClubs, RankSix), NewCard(SuitDiamonds, RankSix),
		NewCard(SuitSpades, RankKing),
	)

	require.NoError(t, send(t, m, conn, "adjust_bet", AdjustBetMessage{Delta: 40}))
	require.NoError(t, send(t, m, conn, "deal", DealMessage{}))

	var bj BlackjackStateMessage
	conn.last(t, "blackjack_state", &bj)
	assert.Equal(t, PhasePlaying, bj.Phase)
	assert.Equal(t, 50, bj.Bet)
	assert.Equal(t, 950, bj.Chips)
	assert.Equal(t, GameBlackjack, m.Progress().State().CurrentGame)

	require.NoError(t, send(t, m, conn, "stand", nil))
	conn.last(t, "blackjack_state", &bj)
	assert.Equal(t, PhaseDealer, bj.Phase)
	assert.NotContains(t, conn.types(), "outcome")

	assert.Equal(t, 3, q.drain())

	conn.last(t, "blackjack_state", &bj)
	assert.Equal(t, PhaseFinished, bj.Phase)
	assert.Equal(t, 1050, bj.Chips)

	var outcome OutcomeMessage
	conn.last(t, "outcome", &outcome)
	assert.Equal(t, OutcomeMessage{Game: GameBlackjack, Label: "You win!", Won: true, Net: 50}, outcome)

	st := m.Progress().State().Player.Stats[GameBlackjack]
	assert.Equal(t, 1, st.GamesPlayed)
	assert.Equal(t, 1, st.GamesWon)

	assert.ErrorIs(t, send(t, m, conn, "hit", nil), ErrWrongPhase)
}

func TestManagerDealDeclined(t *testing.T) {
	m := newTestManager(t)
	conn, _, _ := connect(t, m)
	conn.reset()

	assert.ErrorIs(t, send(t, m, conn, "deal", DealMessage{Bet: 5000}), ErrInsufficientChips)
	assert.Empty(t, conn.types())
	assert.False(t, m.Progress().State().Playing)
}

func TestManagerDisconnectDropsDealerSteps(t *testing.T) {
	m := newTestManager(t)
	conn, _, q := connect(t, m,
		NewCard(SuitSpades, RankTen), NewCard(SuitHearts, RankEight),
		NewCard(SuitClubs, RankSix), NewCard(SuitDiamonds, RankSix),
	)
	require.NoError(t, send(t, m, conn, "deal", DealMessage{Bet: 10}))
	require.NoError(t, send(t, m, conn, "stand", nil))
	conn.reset()

	m.Disconnect(conn)
	assert.Equal(t, 1, q.drain())

	assert.Empty(t, conn.types())
	assert.Equal(t, 0, m.Progress().State().Player.Stats[GameBlackjack].GamesPlayed)
	assert.Error(t, send(t, m, conn, "stand", nil))
}

func TestManagerNewBlackjackDropsDealerSteps(t *testing.T) {
	m := newTestManager(t)
	conn, _, q := connect(t, m,
		NewCard(SuitSpades, RankTen), NewCard(SuitHearts, RankEight),
		NewCard(SuitClubs, RankSix), NewCard(SuitDiamonds, RankSix),
	)
	require.NoError(t, send(t, m, conn, "deal", DealMessage{Bet: 10}))
	require.NoError(t, send(t, m, conn, "double_down", nil))
	require.NoError(t, send(t, m, conn, "new_blackjack", nil))

	assert.Equal(t, 1, q.drain())

	var bj BlackjackStateMessage
	conn.last(t, "blackjack_state", &bj)
	assert.Equal(t, PhaseBetting, bj.Phase)
	assert.Equal(t, 1000, bj.Chips)
	assert.Empty(t, bj.PlayerHand)
	assert.NotContains(t, conn.types(), "outcome")
}

func TestManagerSolitaire(t *testing.T) {
	m := newTestManager(t)
	conn, table, _ := connect(t, m)
	require.NoError(t, send(t, m, conn, "new_solitaire", nil))
	assert.Equal(t, GameSolitaire, m.Progress().State().CurrentGame)

	require.NoError(t, send(t, m, conn, "draw", nil))
	var sol SolitaireStateMessage
	conn.last(t, "solitaire_state", &sol)
	assert.Equal(t, 21, sol.Stock)
	assert.Len(t, sol.Waste, 3)
	assert.Equal(t, 1, sol.Moves)

	require.NoError(t, send(t, m, conn, "select", SelectMessage{Pile: WastePile(), Index: 2}))
	conn.last(t, "solitaire_state", &sol)
	require.NotNil(t, sol.Selection)
	assert.Equal(t, WastePile(), sol.Selection.Pile)

	require.NoError(t, send(t, m, conn, "deselect", nil))
	sol = SolitaireStateMessage{}
	conn.last(t, "solitaire_state", &sol)
	assert.Nil(t, sol.Selection)

	assert.Error(t, m.Handle(conn, &Message{Type: "select", Data: json.RawMessage(`{"pile":{"kind":"hand"},"index":0}`)}))
	assert.ErrorIs(t, send(t, m, conn, "select", SelectMessage{Pile: WastePile(), Index: 0}), ErrInvalidSelection)
	assert.ErrorIs(t, send(t, m, conn, "move", MoveMessage{Pile: FoundationPile(0)}), ErrIllegalMove)

	table.mu.Lock()
	table.solitaire.Stock = nil
	table.solitaire.Waste = nil
	table.solitaire.Foundations = [Foundations][]Card{}
	table.solitaire.Tableau = [Columns][]Card{}
	for i, suit := range AllSuits() {
		for _, r := range AllRanks()[:12] {
			table.solitaire.Foundations[i] = append(table.solitaire.Foundations[i], up(suit, r))
		}
		table.solitaire.Tableau[i] = []Card{up(suit, RankKing)}
	}
	table.mu.Unlock()

	for i := 0; i < Foundations; i++ {
		require.NoError(t, send(t, m, conn, "select", SelectMessage{Pile: TableauPile(i), Index: 0}))
		require.NoError(t, send(t, m, conn, "move", MoveMessage{Pile: FoundationPile(i)}))
	}

	var outcome OutcomeMessage
	conn.last(t, "outcome", &outcome)
	assert.Equal(t, GameSolitaire, outcome.Game)
	assert.True(t, outcome.Won)
	assert.Equal(t, "Congratulations! You won Solitaire!", outcome.Label)

	state := m.Progress().State()
	assert.Equal(t, 1, state.Player.Stats[GameSolitaire].GamesWon)
	assert.Equal(t, table.solitaire.Score, state.Score)
}

func TestManagerProfile(t *testing.T) {
	m := newTestManager(t)
	conn, _, _ := connect(t, m)

	require.NoError(t, send(t, m, conn, "set_name", SetNameMessage{Name: "  Ada "}))
	assert.Equal(t, "Ada", m.Progress().State().Player.Name)
	assert.Error(t, send(t, m, conn, "set_name", SetNameMessage{Name: ""}))
	assert.Equal(t, "Ada", m.Progress().State().Player.Name)

	require.NoError(t, m.Handle(conn, &Message{Type: "update_settings", Data: json.RawMessage(`{"theme":"dark","sound_enabled":false}`)}))
	settings := m.Progress().State().Settings
	assert.Equal(t, ThemeDark, settings.Theme)
	assert.False(t, settings.SoundEnabled)
	assert.True(t, settings.AnimationsEnabled)

	require.NoError(t, send(t, m, conn, "pause", nil))
	assert.True(t, m.Progress().State().Paused)
	require.NoError(t, send(t, m, conn, "resume", nil))
	assert.False(t, m.Progress().State().Paused)

	conn.reset()
	require.NoError(t, send(t, m, conn, "get_progress", nil))
	assert.Equal(t, []string{"progress"}, conn.types())

	var progress ProgressMessage
	conn.last(t, "progress", &progress)
	assert.Equal(t, "Ada", progress.Name)
	assert.Equal(t, ThemeDark, progress.Settings.Theme)
}
