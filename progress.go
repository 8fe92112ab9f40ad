package solo

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

type GameType string

const (
	GameSolitaire GameType = "solitaire"
	GameHearts    GameType = "hearts"
	GameBlackjack GameType = "blackjack"
	GameWar       GameType = "war"
)

func AllGameTypes() []GameType {
	return []GameType{GameSolitaire, GameHearts, GameBlackjack, GameWar}
}

func (g GameType) Valid() bool {
	for _, t := range AllGameTypes() {
		if t == g {
			return true
		}
	}
	return false
}

// NoBestTime marks stats that have never recorded a win.
const NoBestTime = time.Duration(math.MaxInt64)

type GameStats struct {
	GamesPlayed   int           `json:"games_played"`
	GamesWon      int           `json:"games_won"`
	BestTime      time.Duration `json:"best_time"`
	CurrentStreak int           `json:"current_streak"`
	BestStreak    int           `json:"best_streak"`
}

func NewGameStats() GameStats {
	return GameStats{BestTime: NoBestTime}
}

func (s GameStats) HasBestTime() bool {
	return s.BestTime != NoBestTime
}

// WinRate is the percentage of games won.
func (s GameStats) WinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.GamesWon) / float64(s.GamesPlayed) * 100
}

func (s GameStats) valid() bool {
	return s.GamesPlayed >= 0 && s.GamesWon >= 0 && s.GamesWon <= s.GamesPlayed &&
		s.BestTime >= 0 && s.CurrentStreak >= 0 && s.BestStreak >= s.CurrentStreak
}

// Recorder receives the result of every finished round, exactly once per
// round.
type Recorder interface {
	EndGame(game GameType, won bool, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) EndGame(GameType, bool, time.Duration) {}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

type Settings struct {
	SoundEnabled        bool       `json:"sound_enabled"`
	AnimationsEnabled   bool       `json:"animations_enabled"`
	AutoCompleteEnabled bool       `json:"auto_complete_enabled"`
	Difficulty          Difficulty `json:"difficulty"`
	CardBack            string     `json:"card_back"`
	Theme               Theme      `json:"theme"`
}

func DefaultSettings() Settings {
	return Settings{
		SoundEnabled:        true,
		AnimationsEnabled:   true,
		AutoCompleteEnabled: true,
		Difficulty:          DifficultyMedium,
		CardBack:            "classic",
		Theme:               ThemeSystem,
	}
}

func (s Settings) valid() bool {
	switch s.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return false
	}
	switch s.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return false
	}
	return s.CardBack != ""
}

// SettingsPatch changes only the fields that are set.
type SettingsPatch struct {
	SoundEnabled        *bool       `json:"sound_enabled,omitempty"`
	AnimationsEnabled   *bool       `json:"animations_enabled,omitempty"`
	AutoCompleteEnabled *bool       `json:"auto_complete_enabled,omitempty"`
	Difficulty          *Difficulty `json:"difficulty,omitempty"`
	CardBack            *string     `json:"card_back,omitempty"`
	Theme               *Theme      `json:"theme,omitempty"`
}

func (p SettingsPatch) apply(s Settings) Settings {
	if p.SoundEnabled != nil {
		s.SoundEnabled = *p.SoundEnabled
	}
	if p.AnimationsEnabled != nil {
		s.AnimationsEnabled = *p.AnimationsEnabled
	}
	if p.AutoCompleteEnabled != nil {
		s.AutoCompleteEnabled = *p.AutoCompleteEnabled
	}
	if p.Difficulty != nil {
		s.Difficulty = *p.Difficulty
	}
	if p.CardBack != nil {
		s.CardBack = *p.CardBack
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	return s
}

type Rewards struct {
	WinExperience  int `yaml:"win_experience"`
	LossExperience int `yaml:"loss_experience"`
	WinCoins       int `yaml:"win_coins"`
	LossCoins      int `yaml:"loss_coins"`
}

func DefaultRewards() Rewards {
	return Rewards{
		WinExperience:  50,
		LossExperience: 10,
		WinCoins:       20,
		LossCoins:      5,
	}
}

// AppState is the whole persisted document: the profile, the settings and
// what is being played right now.
type AppState struct {
	Player      Player        `json:"player"`
	Settings    Settings      `json:"settings"`
	CurrentGame GameType      `json:"current_game,omitempty"`
	Playing     bool          `json:"playing"`
	Paused      bool          `json:"paused"`
	GameTime    time.Duration `json:"game_time"`
	Score       int           `json:"score"`
}

func NewAppState() AppState {
	return AppState{
		Player:   NewPlayer(),
		Settings: DefaultSettings(),
	}
}

func (s AppState) clone() AppState {
	out := s
	out.Player = s.Player.clone()
	return out
}

func (s AppState) valid() bool {
	if s.CurrentGame != "" && !s.CurrentGame.Valid() {
		return false
	}
	return s.Player.valid() && s.Settings.valid() && s.GameTime >= 0
}

// Action is one kind of state transition. See Reduce.
type Action interface {
	reduce(s AppState, r Rewards) AppState
}

type StartGame struct {
	Game GameType
}

type EndGame struct {
	Game    GameType
	Won     bool
	Elapsed time.Duration
}

type PauseGame struct{}

type ResumeGame struct{}

type UpdateScore struct {
	Score int
}

type UpdateTime struct {
	Time time.Duration
}

type UpdateSettings struct {
	Patch SettingsPatch
}

type ResetGame struct{}

type SetName struct {
	Name string
}

// Reduce returns the state that follows s under a. s is not modified.
func Reduce(s AppState, a Action, r Rewards) AppState {
	return a.reduce(s.clone(), r)
}

func (a StartGame) reduce(s AppState, _ Rewards) AppState {
	s.CurrentGame = a.Game
	s.Playing = true
	s.Paused = false
	s.GameTime = 0
	s.Score = 0
	return s
}

func (a EndGame) reduce(s AppState, r Rewards) AppState {
	if !a.Game.Valid() {
		return s
	}
	stats, ok := s.Player.Stats[a.Game]
	if !ok {
		stats = NewGameStats()
	}

	stats.GamesPlayed++
	if a.Won {
		stats.GamesWon++
		if a.Elapsed < stats.BestTime {
			stats.BestTime = a.Elapsed
		}
		stats.CurrentStreak++
	} else {
		stats.CurrentStreak = 0
	}
	if stats.CurrentStreak > stats.BestStreak {
		stats.BestStreak = stats.CurrentStreak
	}
	s.Player.Stats[a.Game] = stats

	if a.Won {
		s.Player.Experience += r.WinExperience
		s.Player.Coins += r.WinCoins
	} else {
		s.Player.Experience += r.LossExperience
		s.Player.Coins += r.LossCoins
	}

	s.Playing = false
	s.Paused = false
	return s
}

func (PauseGame) reduce(s AppState, _ Rewards) AppState {
	s.Paused = true
	return s
}

func (ResumeGame) reduce(s AppState, _ Rewards) AppState {
	s.Paused = false
	return s
}

func (a UpdateScore) reduce(s AppState, _ Rewards) AppState {
	s.Score = a.Score
	return s
}

func (a UpdateTime) reduce(s AppState, _ Rewards) AppState {
	s.GameTime = a.Time
	return s
}

func (a UpdateSettings) reduce(s AppState, _ Rewards) AppState {
	next := a.Patch.apply(s.Settings)
	if next.valid() {
		s.Settings = next
	}
	return s
}

func (ResetGame) reduce(s AppState, _ Rewards) AppState {
	s.CurrentGame = ""
	s.Playing = false
	s.Paused = false
	s.GameTime = 0
	s.Score = 0
	return s
}

func (a SetName) reduce(s AppState, _ Rewards) AppState {
	if name, err := ValidateName(a.Name); err == nil {
		s.Player.Name = name
	}
	return s
}

// StateKey is the storage key the progress document lives under.
const StateKey = "cardGameState"

// Progress owns the application state. Every dispatched action is applied
// under a lock and the new state is saved before Dispatch returns.
type Progress struct {
	mu      sync.Mutex
	state   AppState
	storage Storage
	rewards Rewards
	log     *zap.Logger
}

// LoadProgress rehydrates the saved state. Anything missing, unreadable or
// inconsistent is replaced by a fresh profile.
func LoadProgress(storage Storage, rewards Rewards, log *zap.Logger) *Progress {
	p := &Progress{
		state:   NewAppState(),
		storage: storage,
		rewards: rewards,
		log:     log,
	}

	state, err := decodeState(storage)
	switch {
	case err == nil:
		p.state = state
	case errors.Is(err, ErrNotFound):
		log.Info("no saved progress, starting fresh")
		p.save()
	default:
		log.Warn("discarding saved progress", zap.Error(err))
		p.save()
	}
	return p
}

func decodeState(storage Storage) (AppState, error) {
	b, err := storage.Load(StateKey)
	if err != nil {
		return AppState{}, err
	}

	var state AppState
	if err := json.Unmarshal(b, &state); err != nil {
		return AppState{}, fmt.Errorf("decode progress: %w", err)
	}
	if state.Player.Stats == nil {
		return AppState{}, errors.New("decode progress: no stats")
	}
	for _, g := range AllGameTypes() {
		if _, ok := state.Player.Stats[g]; !ok {
			state.Player.Stats[g] = NewGameStats()
		}
	}
	if state.Player.Achievements == nil {
		state.Player.Achievements = []string{}
	}
	if state.Player.ID == "" {
		state.Player.ID = NewPlayer().ID
	}
	if !state.valid() {
		return AppState{}, errors.New("decode progress: invalid state")
	}
	return state, nil
}

// Dispatch applies a and returns the resulting state.
func (p *Progress) Dispatch(a Action) AppState {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = Reduce(p.state, a, p.rewards)
	p.save()
	return p.state.clone()
}

// EndGame records a finished round. It satisfies Recorder.
func (p *Progress) EndGame(game GameType, won bool, elapsed time.Duration) {
	state := p.Dispatch(EndGame{Game: game, Won: won, Elapsed: elapsed})
	stats := state.Player.Stats[game]
	p.log.Info("game finished",
		zap.String("game", string(game)),
		zap.Bool("won", won),
		zap.Duration("elapsed", elapsed),
		zap.Int("games_played", stats.GamesPlayed),
		zap.Int("current_streak", stats.CurrentStreak),
	)
}

func (p *Progress) State() AppState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.clone()
}

// save must be called with p.mu held. Failures are logged and otherwise
// ignored; the in-memory state stays authoritative.
func (p *Progress) save() {
	b, err := json.Marshal(p.state)
	if err != nil {
		p.log.Error("encode progress", zap.Error(err))
		return
	}
	if err := p.storage.Save(StateKey, b); err != nil {
		p.log.Error("save progress", zap.Error(err))
	}
}
