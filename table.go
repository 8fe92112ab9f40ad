package solo

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conn is the client end of a table.
type Conn interface {
	Send(msg *Message) error
	RemoteAddr() string
}

// Table is one connection's blackjack seat and solitaire board. Both share
// the installation's progress store.
type Table struct {
	id       string
	conn     Conn
	progress *Progress
	timing   Timing
	log      *zap.Logger
	after    func(time.Duration, func())

	mu        sync.Mutex
	blackjack *Blackjack
	solitaire *Solitaire
	closed    bool
}

func NewTable(conn Conn, cfg Config, progress *Progress, rng *rand.Rand, clock Clock, log *zap.Logger) *Table {
	t := &Table{
		id:       uuid.NewString(),
		conn:     conn,
		progress: progress,
		timing:   cfg.Timing,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
	t.log = log.With(zap.String("table", t.id), zap.String("remote", conn.RemoteAddr()))
	t.blackjack = NewBlackjack(cfg.Blackjack, rng, progress)
	t.solitaire = NewSolitaire(cfg.Solitaire, rng, clock, progress)
	return t
}

func (t *Table) ID() string {
	return t.id
}

// Close stops any dealer steps still queued for this table.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.blackjack.Generation++
}

func (t *Table) SendAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendBlackjackLocked()
	t.sendSolitaireLocked()
	t.sendProgress(t.progress.State())
}

func (t *Table) NewBlackjack() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.blackjack.Reset()
	t.progress.Dispatch(ResetGame{})
	t.sendBlackjackLocked()
}

func (t *Table) AdjustBet(delta int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.blackjack.AdjustBet(delta); err != nil {
		return err
	}
	t.sendBlackjackLocked()
	return nil
}

// Deal starts a blackjack round. A zero bet uses the standing bet.
func (t *Table) Deal(bet int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if bet == 0 {
		bet = t.blackjack.Bet
	}
	if err := t.blackjack.CanStartRound(bet); err != nil {
		return err
	}
	t.progress.Dispatch(StartGame{Game: GameBlackjack})
	if err := t.blackjack.StartRound(bet); err != nil {
		return err
	}
	t.log.Debug("blackjack round dealt", zap.Int("bet", bet), zap.Int("round", t.blackjack.Rounds))
	t.afterBlackjackLocked()
	return nil
}

func (t *Table) Hit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.blackjack.Hit(); err != nil {
		return err
	}
	t.afterBlackjackLocked()
	return nil
}

func (t *Table) Stand() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.blackjack.Stand(); err != nil {
		return err
	}
	t.sendBlackjackLocked()
	t.scheduleDealer(t.blackjack.Generation, t.timing.DealerReveal)
	return nil
}

func (t *Table) DoubleDown() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.blackjack.DoubleDown(); err != nil {
		return err
	}
	t.sendBlackjackLocked()
	t.scheduleDealer(t.blackjack.Generation, t.timing.DealerReveal)
	return nil
}

// scheduleDealer queues one dealer step. The step re-reads the table when
// it fires and does nothing if the round it was queued for is gone.
func (t *Table) scheduleDealer(generation uint64, d time.Duration) {
	t.after(d, func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		if t.closed || t.blackjack.Generation != generation {
			t.log.Debug("dropping stale dealer step")
			return
		}
		action, more := t.blackjack.StepDealer()
		t.log.Debug("dealer step",
			zap.Stringer("action", action),
			zap.Int("dealer_score", t.blackjack.Dealer.Value()),
		)
		t.afterBlackjackLocked()
		if more {
			t.scheduleDealer(generation, t.timing.DealerStep)
		}
	})
}

func (t *Table) afterBlackjackLocked() {
	t.sendBlackjackLocked()
	if t.blackjack.Phase != PhaseFinished {
		return
	}
	t.send("outcome", OutcomeMessage{
		Game:  GameBlackjack,
		Label: t.blackjack.Outcome.Label(),
		Won:   t.blackjack.Outcome.Won(),
		Net:   t.blackjack.Net(),
	})
	t.sendProgress(t.progress.State())
}

func (t *Table) NewSolitaire() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.solitaire.Deal()
	t.progress.Dispatch(StartGame{Game: GameSolitaire})
	t.sendSolitaireLocked()
}

func (t *Table) Draw() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.solitaire.DrawStock(); err != nil {
		return err
	}
	t.sendSolitaireLocked()
	return nil
}

func (t *Table) Select(p Pile, index int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.solitaire.Select(p, index); err != nil {
		return err
	}
	t.sendSolitaireLocked()
	return nil
}

func (t *Table) Deselect() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.solitaire.Deselect()
	t.sendSolitaireLocked()
}

func (t *Table) Move(p Pile) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	won := t.solitaire.Won
	if err := t.solitaire.MoveTo(p); err != nil {
		return err
	}
	t.progress.Dispatch(UpdateScore{Score: t.solitaire.Score})
	t.sendSolitaireLocked()
	if !won && t.solitaire.Won {
		t.send("outcome", OutcomeMessage{
			Game:  GameSolitaire,
			Label: "Congratulations! You won Solitaire!",
			Won:   true,
			Time:  int(t.solitaire.Elapsed() / time.Second),
		})
		t.sendProgress(t.progress.State())
	}
	return nil
}

func (t *Table) SendProgress() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendProgress(t.progress.State())
}

func (t *Table) Dispatch(a Action) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendProgress(t.progress.Dispatch(a))
}

func (t *Table) sendBlackjackLocked() {
	t.send("blackjack_state", NewBlackjackStateMessage(t.blackjack))
}

func (t *Table) sendSolitaireLocked() {
	t.send("solitaire_state", NewSolitaireStateMessage(t.solitaire))
}

func (t *Table) sendProgress(s AppState) {
	t.send("progress", NewProgressMessage(s))
}

func (t *Table) send(typ string, data interface{}) {
	if err := t.conn.Send(MakeMessage(typ, data)); err != nil {
		t.log.Debug("send failed", zap.String("type", typ), zap.Error(err))
	}
}
