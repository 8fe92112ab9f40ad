package solo

import (
	"encoding/json"
	"time"
)

type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type ErrorMessage string

type AdjustBetMessage struct {
	Delta int `json:"delta"`
}

type DealMessage struct {
	Bet int `json:"bet"`
}

type SelectMessage struct {
	Pile  Pile `json:"pile"`
	Index int  `json:"index"`
}

type MoveMessage struct {
	Pile Pile `json:"pile"`
}

type SetNameMessage struct {
	Name string `json:"name"`
}

type OutcomeMessage struct {
	Game  GameType `json:"game"`
	Label string   `json:"label"`
	Won   bool     `json:"won"`
	Net   int      `json:"net,omitempty"`
	Time  int      `json:"time,omitempty"`
}

// CardView hides the face of a card that is lying face down.
type CardView struct {
	ID     string `json:"id,omitempty"`
	Suit   *Suit  `json:"suit,omitempty"`
	Rank   *Rank  `json:"rank,omitempty"`
	FaceUp bool   `json:"face_up"`
}

func NewCardView(c Card) CardView {
	if !c.FaceUp {
		return CardView{}
	}
	suit, rank := c.Suit, c.Rank
	return CardView{ID: c.ID(), Suit: &suit, Rank: &rank, FaceUp: true}
}

func NewCardViews(cards []Card) []CardView {
	views := make([]CardView, len(cards))
	for i, c := range cards {
		views[i] = NewCardView(c)
	}
	return views
}

type BlackjackStateMessage struct {
	Phase         BlackjackPhase `json:"phase"`
	PlayerHand    []CardView     `json:"player_hand"`
	DealerHand    []CardView     `json:"dealer_hand"`
	PlayerScore   int            `json:"player_score"`
	DealerScore   int            `json:"dealer_score"`
	Bet           int            `json:"bet"`
	Chips         int            `json:"chips"`
	Result        Outcome        `json:"result,omitempty"`
	CanDoubleDown bool           `json:"can_double_down"`
	GameCount     int            `json:"game_count"`
	DeckSize      int            `json:"deck_size"`
}

func NewBlackjackStateMessage(b *Blackjack) BlackjackStateMessage {
	return BlackjackStateMessage{
		Phase:         b.Phase,
		PlayerHand:    NewCardViews(b.Player),
		DealerHand:    NewCardViews(b.Dealer),
		PlayerScore:   b.PlayerScore(),
		DealerScore:   b.DealerScore(),
		Bet:           b.Bet,
		Chips:         b.Chips,
		Result:        b.Outcome,
		CanDoubleDown: b.CanDoubleDown,
		GameCount:     b.Rounds,
		DeckSize:      b.Deck.Size(),
	}
}

type SelectionView struct {
	Pile  Pile     `json:"pile"`
	Index int      `json:"index"`
	IDs   []string `json:"ids"`
}

type SolitaireStateMessage struct {
	Stock       int            `json:"stock"`
	Waste       []CardView     `json:"waste"`
	Foundations [][]CardView   `json:"foundations"`
	Tableau     [][]CardView   `json:"tableau"`
	Selection   *SelectionView `json:"selection,omitempty"`
	Moves       int            `json:"moves"`
	Score       int            `json:"score"`
	Won         bool           `json:"won"`
	Time        int            `json:"time"`
}

func NewSolitaireStateMessage(s *Solitaire) SolitaireStateMessage {
	msg := SolitaireStateMessage{
		Stock:       len(s.Stock),
		Waste:       NewCardViews(s.Waste),
		Foundations: make([][]CardView, Foundations),
		Tableau:     make([][]CardView, Columns),
		Moves:       s.Moves,
		Score:       s.Score,
		Won:         s.Won,
		Time:        int(s.Elapsed() / time.Second),
	}
	for i, f := range s.Foundations {
		msg.Foundations[i] = NewCardViews(f)
	}
	for i, col := range s.Tableau {
		msg.Tableau[i] = NewCardViews(col)
	}
	if !s.Selection.Empty() {
		ids := make([]string, len(s.Selection.Cards))
		for i, c := range s.Selection.Cards {
			ids[i] = c.ID()
		}
		msg.Selection = &SelectionView{
			Pile:  s.Selection.Pile,
			Index: s.Selection.Index,
			IDs:   ids,
		}
	}
	return msg
}

type GameStatsView struct {
	GamesPlayed   int     `json:"games_played"`
	GamesWon      int     `json:"games_won"`
	WinRate       float64 `json:"win_rate"`
	BestTime      *int    `json:"best_time"`
	CurrentStreak int     `json:"current_streak"`
	BestStreak    int     `json:"best_streak"`
}

type ProgressMessage struct {
	Name         string                     `json:"name"`
	Level        int                        `json:"level"`
	Experience   int                        `json:"experience"`
	Coins        int                        `json:"coins"`
	Achievements []string                   `json:"achievements"`
	Stats        map[GameType]GameStatsView `json:"stats"`
	Settings     Settings                   `json:"settings"`
	CurrentGame  GameType                   `json:"current_game,omitempty"`
	Paused       bool                       `json:"paused"`
}

// NewProgressMessage reports best times in whole seconds, or null when a
// game has never been won.
func NewProgressMessage(s AppState) ProgressMessage {
	msg := ProgressMessage{
		Name:         s.Player.Name,
		Level:        s.Player.Level,
		Experience:   s.Player.Experience,
		Coins:        s.Player.Coins,
		Achievements: s.Player.Achievements,
		Stats:        make(map[GameType]GameStatsView, len(s.Player.Stats)),
		Settings:     s.Settings,
		CurrentGame:  s.CurrentGame,
		Paused:       s.Paused,
	}
	for g, st := range s.Player.Stats {
		v := GameStatsView{
			GamesPlayed:   st.GamesPlayed,
			GamesWon:      st.GamesWon,
			WinRate:       st.WinRate(),
			CurrentStreak: st.CurrentStreak,
			BestStreak:    st.BestStreak,
		}
		if st.HasBestTime() {
			secs := int(st.BestTime / time.Second)
			v.BestTime = &secs
		}
		msg.Stats[g] = v
	}
	return msg
}

func MakeMessage(typ string, data interface{}) *Message {
	b, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}

	return &Message{typ, b}
}
