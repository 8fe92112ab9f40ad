package solo

import (
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager routes client messages to the table owned by each connection.
type Manager struct {
	cfg      Config
	progress *Progress
	clock    Clock
	log      *zap.Logger
	newRand  func() *rand.Rand

	tablesMu sync.Mutex
	tables   map[Conn]*Table
}

func NewManager(cfg Config, progress *Progress, log *zap.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		progress: progress,
		clock:    RealClock{},
		log:      log,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		tables: make(map[Conn]*Table),
	}
}

func (m *Manager) Progress() *Progress {
	return m.progress
}

// Connect seats a new connection and sends it the initial state.
func (m *Manager) Connect(conn Conn) *Table {
	t := NewTable(conn, m.cfg, m.progress, m.newRand(), m.clock, m.log)

	m.tablesMu.Lock()
	m.tables[conn] = t
	m.tablesMu.Unlock()

	m.log.Info("connected", zap.String("remote", conn.RemoteAddr()), zap.String("table", t.ID()))
	t.SendAll()
	return t
}

func (m *Manager) Disconnect(conn Conn) {
	m.tablesMu.Lock()
	t, ok := m.tables[conn]
	delete(m.tables, conn)
	m.tablesMu.Unlock()

	if !ok {
		return
	}
	t.Close()
	m.log.Info("disconnected", zap.String("remote", conn.RemoteAddr()), zap.String("table", t.ID()))
}

func (m *Manager) table(conn Conn) (*Table, error) {
	m.tablesMu.Lock()
	defer m.tablesMu.Unlock()
	t, ok := m.tables[conn]
	if !ok {
		return nil, errors.New("not connected")
	}
	return t, nil
}

func (m *Manager) Handle(conn Conn, msg *Message) error {
	t, err := m.table(conn)
	if err != nil {
		return err
	}

	m.log.Debug("message",
		zap.String("remote", conn.RemoteAddr()),
		zap.String("type", msg.Type),
		zap.ByteString("data", msg.Data),
	)

	switch msg.Type {
	case "new_blackjack":
		t.NewBlackjack()
		return nil
	case "adjust_bet":
		var data AdjustBetMessage
		if err := unmarshal(msg, &data); err != nil {
			return err
		}
		return t.AdjustBet(data.Delta)
	case "deal":
		var data DealMessage
		if err := unmarshal(msg, &data); err != nil {
			return err
		}
		return t.Deal(data.Bet)
	case "hit":
		return t.Hit()
	case "stand":
		return t.Stand()
	case "double_down":
		return t.DoubleDown()
	case "new_solitaire":
		t.NewSolitaire()
		return nil
	case "draw":
		return t.Draw()
	case "select":
		var data SelectMessage
		if err := unmarshal(msg, &data); err != nil {
			return err
		}
		return t.Select(data.Pile, data.Index)
	case "deselect":
		t.Deselect()
		return nil
	case "move":
		var data MoveMessage
		if err := unmarshal(msg, &data); err != nil {
			return err
		}
		return t.Move(data.Pile)
	case "get_progress":
		t.SendProgress()
		return nil
	case "update_settings":
		var data SettingsPatch
		if err := unmarshal(msg, &data); err != nil {
			return err
		}
		t.Dispatch(UpdateSettings{Patch: data})
		return nil
	case "set_name":
		var data SetNameMessage
		if err := unmarshal(msg, &data); err != nil {
			return err
		}
		name, err := ValidateName(data.Name)
		if err != nil {
			return err
		}
		t.Dispatch(SetName{Name: name})
		return nil
	case "pause":
		t.Dispatch(PauseGame{})
		return nil
	case "resume":
		t.Dispatch(ResumeGame{})
		return nil
	}
	return errors.New("unknown message type")
}

// unmarshal decodes the message payload. A missing payload leaves v as is.
func unmarshal(msg *Message, v interface{}) error {
	if len(msg.Data) == 0 {
		return nil
	}
	return json.Unmarshal(msg.Data, v)
}
