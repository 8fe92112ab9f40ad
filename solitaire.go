package solo

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	ErrIllegalMove      = errors.New("can't move there")
	ErrInvalidSelection = errors.New("can't pick that up")
)

const (
	Foundations = 4
	Columns     = 7
)

type PileKind int

const (
	PileNone PileKind = iota
	PileStock
	PileWaste
	PileFoundation
	PileTableau
)

func (k PileKind) String() string {
	switch k {
	case PileStock:
		return "stock"
	case PileWaste:
		return "waste"
	case PileFoundation:
		return "foundation"
	case PileTableau:
		return "tableau"
	}
	return "none"
}

// Pile addresses one pile on the solitaire board. Index is only meaningful
// for foundations and tableau columns.
type Pile struct {
	Kind  PileKind
	Index int
}

func StockPile() Pile           { return Pile{Kind: PileStock} }
func WastePile() Pile           { return Pile{Kind: PileWaste} }
func FoundationPile(i int) Pile { return Pile{Kind: PileFoundation, Index: i} }
func TableauPile(i int) Pile    { return Pile{Kind: PileTableau, Index: i} }

func (p Pile) Valid() bool {
	switch p.Kind {
	case PileStock, PileWaste:
		return p.Index == 0
	case PileFoundation:
		return p.Index >= 0 && p.Index < Foundations
	case PileTableau:
		return p.Index >= 0 && p.Index < Columns
	}
	return false
}

func (p Pile) String() string {
	switch p.Kind {
	case PileFoundation, PileTableau:
		return fmt.Sprintf("%s-%d", p.Kind, p.Index)
	}
	return p.Kind.String()
}

type pileJSON struct {
	Kind  string `json:"kind"`
	Index int    `json:"index"`
}

func (p Pile) MarshalJSON() ([]byte, error) {
	return json.Marshal(pileJSON{p.Kind.String(), p.Index})
}

func (p *Pile) UnmarshalJSON(b []byte) error {
	var v pileJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	out := Pile{Index: v.Index}
	for _, k := range []PileKind{PileStock, PileWaste, PileFoundation, PileTableau} {
		if k.String() == v.Kind {
			out.Kind = k
		}
	}
	if !out.Valid() {
		return fmt.Errorf("invalid pile %q %d", v.Kind, v.Index)
	}
	*p = out
	return nil
}

// IsValidSequence reports whether cards, bottom first, descend by one rank
// at a time while alternating colour.
func IsValidSequence(cards []Card) bool {
	for i := 0; i+1 < len(cards); i++ {
		if !AreOppositeColors(cards[i], cards[i+1]) || !IsRankOneLess(cards[i+1], cards[i]) {
			return false
		}
	}
	return true
}

func CanPlaceOnFoundation(card Card, foundation []Card) bool {
	if len(foundation) == 0 {
		return card.Rank == RankAce
	}
	top := foundation[len(foundation)-1]
	return card.Suit == top.Suit && IsRankOneMore(card, top)
}

// CanPlaceOnTableau reports whether a run whose bottom card is card may be
// put on column.
func CanPlaceOnTableau(card Card, column []Card) bool {
	if len(column) == 0 {
		return card.Rank == RankKing
	}
	top := column[len(column)-1]
	return top.FaceUp && AreOppositeColors(card, top) && IsRankOneLess(card, top)
}

type SolitaireRules struct {
	DrawCount        int `yaml:"draw_count"`
	FoundationPoints int `yaml:"foundation_points"`
	TableauPoints    int `yaml:"tableau_points"`
}

func DefaultSolitaireRules() SolitaireRules {
	return SolitaireRules{
		DrawCount:        3,
		FoundationPoints: 10,
		TableauPoints:    5,
	}
}

// Selection is the run of cards picked up from one pile. Index is the
// position of Cards[0] in that pile.
type Selection struct {
	Pile  Pile
	Index int
	Cards []Card
}

func (s Selection) Empty() bool {
	return len(s.Cards) == 0
}

// Solitaire is a game of Klondike. Every pile slice is replaced, never
// modified in place, so views handed out earlier stay valid.
type Solitaire struct {
	Stock       []Card
	Waste       []Card
	Foundations [Foundations][]Card
	Tableau     [Columns][]Card
	Selection   Selection
	Moves       int
	Score       int
	Won         bool
	Started     time.Time
	Finished    time.Time

	rules    SolitaireRules
	rng      *rand.Rand
	clock    Clock
	recorder Recorder
}

func NewSolitaire(rules SolitaireRules, rng *rand.Rand, clock Clock, recorder Recorder) *Solitaire {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if clock == nil {
		clock = RealClock{}
	}
	s := &Solitaire{
		rules:    rules,
		rng:      rng,
		clock:    clock,
		recorder: recorder,
	}
	s.Deal()
	return s
}

// Deal shuffles a fresh deck and lays out a new game.
func (s *Solitaire) Deal() {
	s.dealFrom(Shuffle(NewDeck(), s.rng))
}

func (s *Solitaire) dealFrom(deck []Card) {
	if len(deck) != DeckSize {
		panic("solitaire: deal needs a full deck")
	}

	idx := 0
	for col := 0; col < Columns; col++ {
		column := make([]Card, 0, col+1)
		for row := 0; row <= col; row++ {
			c := deck[idx]
			c.FaceUp = row == col
			column = append(column, c)
			idx++
		}
		s.Tableau[col] = column
	}

	s.Stock = make([]Card, 0, len(deck)-idx)
	for _, c := range deck[idx:] {
		s.Stock = append(s.Stock, c.Down())
	}
	s.Waste = nil
	for i := range s.Foundations {
		s.Foundations[i] = nil
	}
	s.Selection = Selection{}
	s.Moves = 0
	s.Score = 0
	s.Won = false
	s.Started = s.clock.Now()
	s.Finished = time.Time{}
}

// DrawStock turns the top cards of the stock onto the waste, or turns the
// waste back over when the stock is empty.
func (s *Solitaire) DrawStock() error {
	if len(s.Stock) == 0 && len(s.Waste) == 0 {
		return ErrIllegalMove
	}
	s.Selection = Selection{}

	if len(s.Stock) == 0 {
		stock := make([]Card, 0, len(s.Waste))
		for i := len(s.Waste) - 1; i >= 0; i-- {
			stock = append(stock, s.Waste[i].Down())
		}
		s.Stock = stock
		s.Waste = nil
		s.Moves++
		return nil
	}

	n := s.rules.DrawCount
	if n <= 0 {
		n = 1
	}
	if n > len(s.Stock) {
		n = len(s.Stock)
	}
	cut := len(s.Stock) - n
	waste := make([]Card, len(s.Waste), len(s.Waste)+n)
	copy(waste, s.Waste)
	for _, c := range s.Stock[cut:] {
		waste = append(waste, c.Up())
	}
	s.Waste = waste
	s.Stock = append([]Card(nil), s.Stock[:cut]...)
	s.Moves++
	return nil
}

// Select picks up the card at index in pile. From a tableau column the
// card comes with everything on top of it, provided that forms a valid
// run. From the waste only the top card can be taken. Selecting the single
// card already held drops it.
func (s *Solitaire) Select(p Pile, index int) error {
	card, ok := s.cardAt(p, index)
	if !ok {
		return ErrInvalidSelection
	}

	if len(s.Selection.Cards) == 1 && s.Selection.Cards[0].SameCard(card) {
		s.Selection = Selection{}
		return nil
	}

	switch p.Kind {
	case PileTableau:
		column := s.Tableau[p.Index]
		run := column[index:]
		if !card.FaceUp || !IsValidSequence(run) {
			return ErrInvalidSelection
		}
		s.Selection = Selection{Pile: p, Index: index, Cards: append([]Card(nil), run...)}
		return nil
	case PileWaste:
		if index != len(s.Waste)-1 {
			return ErrInvalidSelection
		}
		s.Selection = Selection{Pile: p, Index: index, Cards: []Card{card}}
		return nil
	}
	return ErrInvalidSelection
}

func (s *Solitaire) Deselect() {
	s.Selection = Selection{}
}

// MoveTo puts the selection on a foundation or tableau column.
func (s *Solitaire) MoveTo(p Pile) error {
	switch p.Kind {
	case PileFoundation:
		return s.MoveToFoundation(p.Index)
	case PileTableau:
		return s.MoveToTableau(p.Index)
	}
	return ErrIllegalMove
}

func (s *Solitaire) MoveToFoundation(i int) error {
	if i < 0 || i >= Foundations || len(s.Selection.Cards) != 1 {
		return ErrIllegalMove
	}
	card := s.Selection.Cards[0]
	if !CanPlaceOnFoundation(card, s.Foundations[i]) {
		return ErrIllegalMove
	}
	if err := s.takeSelection(); err != nil {
		return err
	}

	foundation := make([]Card, len(s.Foundations[i]), len(s.Foundations[i])+1)
	copy(foundation, s.Foundations[i])
	s.Foundations[i] = append(foundation, card.Up())
	s.Moves++
	s.Score += s.rules.FoundationPoints

	s.checkWin()
	return nil
}

func (s *Solitaire) MoveToTableau(i int) error {
	if i < 0 || i >= Columns || s.Selection.Empty() {
		return ErrIllegalMove
	}
	if s.Selection.Pile == TableauPile(i) {
		return ErrIllegalMove
	}
	run := s.Selection.Cards
	if !CanPlaceOnTableau(run[0], s.Tableau[i]) {
		return ErrIllegalMove
	}
	if err := s.takeSelection(); err != nil {
		return err
	}

	column := make([]Card, len(s.Tableau[i]), len(s.Tableau[i])+len(run))
	copy(column, s.Tableau[i])
	s.Tableau[i] = append(column, run...)
	s.Moves++
	s.Score += s.rules.TableauPoints
	return nil
}

// FoundationCount is the number of cards on all foundations.
func (s *Solitaire) FoundationCount() int {
	var n int
	for _, f := range s.Foundations {
		n += len(f)
	}
	return n
}

// CardCount is the number of cards on the board. It is always 52.
func (s *Solitaire) CardCount() int {
	n := len(s.Stock) + len(s.Waste) + s.FoundationCount()
	for _, col := range s.Tableau {
		n += len(col)
	}
	return n
}

// Elapsed is the playing time, stopped at the moment of winning.
func (s *Solitaire) Elapsed() time.Duration {
	end := s.Finished
	if !s.Won {
		end = s.clock.Now()
	}
	return end.Sub(s.Started).Truncate(time.Second)
}

func (s *Solitaire) cardAt(p Pile, index int) (Card, bool) {
	if !p.Valid() {
		return Card{}, false
	}
	var pile []Card
	switch p.Kind {
	case PileTableau:
		pile = s.Tableau[p.Index]
	case PileWaste:
		pile = s.Waste
	default:
		return Card{}, false
	}
	if index < 0 || index >= len(pile) {
		return Card{}, false
	}
	return pile[index], true
}

// takeSelection removes the selected cards from their source pile and turns
// over any tableau card left exposed.
func (s *Solitaire) takeSelection() error {
	sel := s.Selection
	switch sel.Pile.Kind {
	case PileWaste:
		if len(s.Waste) == 0 || sel.Index != len(s.Waste)-1 || !s.Waste[sel.Index].SameCard(sel.Cards[0]) {
			return ErrInvalidSelection
		}
		s.Waste = append([]Card(nil), s.Waste[:sel.Index]...)
	case PileTableau:
		column := s.Tableau[sel.Pile.Index]
		if sel.Index+len(sel.Cards) != len(column) || !column[sel.Index].SameCard(sel.Cards[0]) {
			return ErrInvalidSelection
		}
		rest := append([]Card(nil), column[:sel.Index]...)
		if n := len(rest); n > 0 && !rest[n-1].FaceUp {
			rest[n-1] = rest[n-1].Up()
		}
		s.Tableau[sel.Pile.Index] = rest
	default:
		return ErrInvalidSelection
	}
	s.Selection = Selection{}
	return nil
}

func (s *Solitaire) checkWin() {
	if s.Won || s.FoundationCount() != DeckSize {
		return
	}
	s.Won = true
	s.Finished = s.clock.Now()
	s.recorder.EndGame(GameSolitaire, true, s.Elapsed())
}
