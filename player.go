package solo

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const DefaultPlayerName = "Player"

// Player is the profile kept for one installation.
type Player struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Level        int                    `json:"level"`
	Experience   int                    `json:"experience"`
	Coins        int                    `json:"coins"`
	Achievements []string               `json:"achievements"`
	Stats        map[GameType]GameStats `json:"stats"`
}

func NewPlayer() Player {
	stats := make(map[GameType]GameStats)
	for _, g := range AllGameTypes() {
		stats[g] = NewGameStats()
	}
	return Player{
		ID:           uuid.NewString(),
		Name:         DefaultPlayerName,
		Level:        1,
		Coins:        100,
		Achievements: []string{},
		Stats:        stats,
	}
}

func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("please enter your name")
	}

	if len([]rune(name)) > 20 {
		return "", errors.New("your name can't be more than 20 characters")
	}

	return name, nil
}

func (p Player) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

func (p Player) clone() Player {
	out := p
	out.Achievements = append([]string{}, p.Achievements...)
	out.Stats = make(map[GameType]GameStats, len(p.Stats))
	for k, v := range p.Stats {
		out.Stats[k] = v
	}
	return out
}

func (p Player) valid() bool {
	if p.Level < 1 || p.Experience < 0 || p.Coins < 0 {
		return false
	}
	if _, err := ValidateName(p.Name); err != nil {
		return false
	}
	for g, s := range p.Stats {
		if !g.Valid() || !s.valid() {
			return false
		}
	}
	return true
}
