package solo

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	ErrWrongPhase        = errors.New("that's not allowed right now")
	ErrInvalidBet        = errors.New("invalid bet")
	ErrInsufficientChips = errors.New("not enough chips")
	ErrCannotDoubleDown  = errors.New("you can only double down on your first two cards")
)

type BlackjackPhase int

const (
	PhaseBetting BlackjackPhase = iota
	PhasePlaying
	PhaseDealer
	PhaseFinished
)

func (p BlackjackPhase) String() string {
	switch p {
	case PhaseBetting:
		return "betting"
	case PhasePlaying:
		return "playing"
	case PhaseDealer:
		return "dealer"
	case PhaseFinished:
		return "finished"
	}
	return "unknown"
}

func (p BlackjackPhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *BlackjackPhase) UnmarshalText(b []byte) error {
	for _, phase := range []BlackjackPhase{PhaseBetting, PhasePlaying, PhaseDealer, PhaseFinished} {
		if phase.String() == string(b) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("invalid phase %q", string(b))
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWin
	OutcomeLose
	OutcomePush
	OutcomeBlackjack
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLose:
		return "lose"
	case OutcomePush:
		return "push"
	case OutcomeBlackjack:
		return "blackjack"
	}
	return ""
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	for _, outcome := range []Outcome{OutcomeNone, OutcomeWin, OutcomeLose, OutcomePush, OutcomeBlackjack} {
		if outcome.String() == string(b) {
			*o = outcome
			return nil
		}
	}
	return fmt.Errorf("invalid outcome %q", string(b))
}

// Label is the line shown to the player when the round ends.
func (o Outcome) Label() string {
	switch o {
	case OutcomeBlackjack:
		return "Blackjack! You win!"
	case OutcomeWin:
		return "You win!"
	case OutcomeLose:
		return "Dealer wins!"
	case OutcomePush:
		return "Push! It's a tie!"
	}
	return ""
}

func (o Outcome) Won() bool {
	return o == OutcomeWin || o == OutcomeBlackjack
}

// Payout is the total returned to the player, stake included.
func (o Outcome) Payout(bet int) int {
	switch o {
	case OutcomeBlackjack:
		return bet * 5 / 2
	case OutcomeWin:
		return bet * 2
	case OutcomePush:
		return bet
	}
	return 0
}

type DealerAction int

const (
	DealerDone DealerAction = iota
	DealerReveal
	DealerHit
	DealerStand
)

func (a DealerAction) String() string {
	switch a {
	case DealerReveal:
		return "reveal"
	case DealerHit:
		return "hit"
	case DealerStand:
		return "stand"
	}
	return "done"
}

// DealerPolicy hits below standOn and stands otherwise. Soft totals get no
// special treatment.
func DealerPolicy(dealer Hand, standOn int) DealerAction {
	if dealer.Value() < standOn {
		return DealerHit
	}
	return DealerStand
}

type BlackjackRules struct {
	StartingChips  int           `yaml:"starting_chips"`
	MinBet         int           `yaml:"min_bet"`
	ReshuffleBelow int           `yaml:"reshuffle_below"`
	DealerStandsOn int           `yaml:"dealer_stands_on"`
	RoundTime      time.Duration `yaml:"round_time"`
}

func DefaultBlackjackRules() BlackjackRules {
	return BlackjackRules{
		StartingChips:  1000,
		MinBet:         10,
		ReshuffleBelow: 10,
		DealerStandsOn: 17,
		RoundTime:      60 * time.Second,
	}
}

// Blackjack is one player's seat at a single-deck table. All methods expect
// to be called from one goroutine at a time.
type Blackjack struct {
	Deck          *Deck
	Player        Hand
	Dealer        Hand
	Phase         BlackjackPhase
	Bet           int
	Chips         int
	Outcome       Outcome
	CanDoubleDown bool
	Rounds        int

	// Generation changes on every deal and reset. Deferred dealer steps
	// carry the generation they were scheduled for.
	Generation uint64

	rules    BlackjackRules
	rng      *rand.Rand
	recorder Recorder
	revealed bool
	reported bool
}

func NewBlackjack(rules BlackjackRules, rng *rand.Rand, recorder Recorder) *Blackjack {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	b := &Blackjack{
		rules:    rules,
		rng:      rng,
		recorder: recorder,
	}
	b.Reset()
	return b
}

func (b *Blackjack) Rules() BlackjackRules {
	return b.rules
}

// Reset puts a fresh table in front of the player.
func (b *Blackjack) Reset() {
	b.Deck = NewShuffledDeck(b.rng)
	b.Player = nil
	b.Dealer = nil
	b.Phase = PhaseBetting
	b.Bet = b.rules.MinBet
	b.Chips = b.rules.StartingChips
	b.Outcome = OutcomeNone
	b.CanDoubleDown = false
	b.Rounds = 0
	b.Generation++
	b.revealed = false
	b.reported = true
}

// AdjustBet moves the standing bet by delta, keeping it within the table
// minimum and the player's chips.
func (b *Blackjack) AdjustBet(delta int) error {
	if b.Phase != PhaseBetting && b.Phase != PhaseFinished {
		return ErrWrongPhase
	}
	bet := b.Bet + delta
	if bet > b.Chips {
		bet = b.Chips
	}
	if bet < b.rules.MinBet {
		bet = b.rules.MinBet
	}
	b.Bet = bet
	return nil
}

// CanStartRound reports why StartRound(bet) would be declined, if it would.
func (b *Blackjack) CanStartRound(bet int) error {
	if b.Phase != PhaseBetting && b.Phase != PhaseFinished {
		return ErrWrongPhase
	}
	if bet <= 0 || bet < b.rules.MinBet {
		return ErrInvalidBet
	}
	if b.Chips < bet {
		return ErrInsufficientChips
	}
	return nil
}

// StartRound takes the bet and deals two cards each. The dealer's second
// card is dealt face down.
func (b *Blackjack) StartRound(bet int) error {
	if err := b.CanStartRound(bet); err != nil {
		return err
	}

	if b.Deck.Size() < b.rules.ReshuffleBelow {
		b.Deck = NewShuffledDeck(b.rng)
	}

	b.Chips -= bet
	b.Bet = bet
	b.Player = nil
	b.Dealer = nil
	b.Player = b.Player.with(b.draw(true))
	b.Player = b.Player.with(b.draw(true))
	b.Dealer = b.Dealer.with(b.draw(true))
	b.Dealer = b.Dealer.with(b.draw(false))

	b.Phase = PhasePlaying
	b.Outcome = OutcomeNone
	b.CanDoubleDown = true
	b.Rounds++
	b.Generation++
	b.revealed = false
	b.reported = false

	b.checkPlayer()
	return nil
}

func (b *Blackjack) Hit() error {
	if b.Phase != PhasePlaying {
		return ErrWrongPhase
	}
	b.Player = b.Player.with(b.draw(true))
	b.CanDoubleDown = false
	b.checkPlayer()
	return nil
}

// Stand hands the round to the dealer. Call StepDealer to play it out.
func (b *Blackjack) Stand() error {
	if b.Phase != PhasePlaying {
		return ErrWrongPhase
	}
	b.Phase = PhaseDealer
	b.CanDoubleDown = false
	return nil
}

// DoubleDown doubles the bet, takes exactly one card and hands the round to
// the dealer whatever that card was.
func (b *Blackjack) DoubleDown() error {
	if b.Phase != PhasePlaying {
		return ErrWrongPhase
	}
	if !b.CanDoubleDown || len(b.Player) != 2 {
		return ErrCannotDoubleDown
	}
	if b.Chips < b.Bet {
		return ErrInsufficientChips
	}
	b.Chips -= b.Bet
	b.Bet *= 2
	b.Player = b.Player.with(b.draw(true))
	b.CanDoubleDown = false
	b.Phase = PhaseDealer
	return nil
}

// StepDealer performs the next dealer action against the current state and
// reports whether another step is due.
func (b *Blackjack) StepDealer() (DealerAction, bool) {
	if b.Phase != PhaseDealer {
		return DealerDone, false
	}
	if !b.revealed {
		b.Dealer = b.Dealer.Revealed()
		b.revealed = true
		return DealerReveal, true
	}
	if DealerPolicy(b.Dealer, b.rules.DealerStandsOn) == DealerHit {
		b.Dealer = b.Dealer.with(b.draw(true))
		return DealerHit, true
	}
	b.finish(b.settle())
	return DealerStand, false
}

// PlayDealer runs the dealer's turn to completion without pauses.
func (b *Blackjack) PlayDealer() Outcome {
	for {
		if _, more := b.StepDealer(); !more {
			return b.Outcome
		}
	}
}

// Net is the chip change of the finished round as the player sees it.
func (b *Blackjack) Net() int {
	if b.Phase != PhaseFinished {
		return 0
	}
	return b.Outcome.Payout(b.Bet) - b.Bet
}

func (b *Blackjack) PlayerScore() int {
	return b.Player.Value()
}

// DealerScore only counts the cards the player can see.
func (b *Blackjack) DealerScore() int {
	var visible Hand
	for _, c := range b.Dealer {
		if c.FaceUp {
			visible = append(visible, c)
		}
	}
	return visible.Value()
}

func (b *Blackjack) draw(faceUp bool) Card {
	if b.Deck.Size() == 0 {
		b.Deck = NewDeckOf(Shuffle(deckWithout(b.Player, b.Dealer), b.rng))
	}
	c := b.Deck.Deal(1)[0]
	c.FaceUp = faceUp
	return c
}

func (b *Blackjack) checkPlayer() {
	if b.Phase != PhasePlaying {
		return
	}
	if b.Player.Bust() {
		b.finish(OutcomeLose)
		return
	}
	if b.Player.Natural() {
		if b.Dealer.Natural() {
			b.finish(OutcomePush)
		} else {
			b.finish(OutcomeBlackjack)
		}
	}
}

func (b *Blackjack) settle() Outcome {
	player, dealer := b.Player.Value(), b.Dealer.Value()
	switch {
	case player > blackjack:
		return OutcomeLose
	case dealer > blackjack:
		return OutcomeWin
	case player > dealer:
		return OutcomeWin
	case player < dealer:
		return OutcomeLose
	}
	return OutcomePush
}

func (b *Blackjack) finish(o Outcome) {
	b.Outcome = o
	b.Chips += o.Payout(b.Bet)
	b.Phase = PhaseFinished
	b.CanDoubleDown = false
	b.Dealer = b.Dealer.Revealed()
	b.revealed = true

	if b.reported {
		return
	}
	b.reported = true
	b.recorder.EndGame(GameBlackjack, o.Won(), b.rules.RoundTime)
}
