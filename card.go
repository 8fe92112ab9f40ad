package solo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type Suit int

const (
	SuitUnknown  Suit = 0
	SuitHearts   Suit = 1
	SuitDiamonds Suit = 2
	SuitClubs    Suit = 3
	SuitSpades   Suit = 4
)

func (s Suit) String() string {
	switch s {
	case SuitHearts:
		return "hearts"
	case SuitDiamonds:
		return "diamonds"
	case SuitClubs:
		return "clubs"
	case SuitSpades:
		return "spades"
	}
	return "unknown"
}

func (s Suit) Symbol() string {
	switch s {
	case SuitHearts:
		return "♥"
	case SuitDiamonds:
		return "♦"
	case SuitClubs:
		return "♣"
	case SuitSpades:
		return "♠"
	}
	return "?"
}

type Color int

const (
	ColorNone Color = iota
	ColorRed
	ColorBlack
)

func (s Suit) Color() Color {
	switch s {
	case SuitHearts, SuitDiamonds:
		return ColorRed
	case SuitClubs, SuitSpades:
		return ColorBlack
	}
	return ColorNone
}

func (s Suit) MarshalText() ([]byte, error) {
	if s < SuitHearts || s > SuitSpades {
		return nil, fmt.Errorf("invalid suit %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Suit) UnmarshalText(b []byte) error {
	for _, suit := range AllSuits() {
		if suit.String() == string(b) {
			*s = suit
			return nil
		}
	}
	return fmt.Errorf("invalid suit %q", string(b))
}

// AllSuits returns the suits in deck order.
func AllSuits() []Suit {
	return []Suit{
		SuitHearts,
		SuitDiamonds,
		SuitClubs,
		SuitSpades,
	}
}

// Rank values double as the fixed total order used by the solitaire
// predicates: A=1 through K=13.
type Rank int

const (
	RankUnknown Rank = 0
	RankAce     Rank = 1
	RankTwo     Rank = 2
	RankThree   Rank = 3
	RankFour    Rank = 4
	RankFive    Rank = 5
	RankSix     Rank = 6
	RankSeven   Rank = 7
	RankEight   Rank = 8
	RankNine    Rank = 9
	RankTen     Rank = 10
	RankJack    Rank = 11
	RankQueen   Rank = 12
	RankKing    Rank = 13
)

func (r Rank) String() string {
	switch r {
	case RankAce:
		return "A"
	case RankJack:
		return "J"
	case RankQueen:
		return "Q"
	case RankKing:
		return "K"
	}
	if r >= RankTwo && r <= RankTen {
		return fmt.Sprint(int(r))
	}
	return "?"
}

func (r Rank) Value() int {
	return int(r)
}

func (r Rank) MarshalText() ([]byte, error) {
	if r < RankAce || r > RankKing {
		return nil, fmt.Errorf("invalid rank %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *Rank) UnmarshalText(b []byte) error {
	for _, rank := range AllRanks() {
		if rank.String() == string(b) {
			*r = rank
			return nil
		}
	}
	return fmt.Errorf("invalid rank %q", string(b))
}

func AllRanks() []Rank {
	return []Rank{
		RankAce,
		RankTwo,
		RankThree,
		RankFour,
		RankFive,
		RankSix,
		RankSeven,
		RankEight,
		RankNine,
		RankTen,
		RankJack,
		RankQueen,
		RankKing,
	}
}

// Card is passed by value everywhere. Flipping a card produces a new
// value, so piles never share a card.
type Card struct {
	Suit   Suit
	Rank   Rank
	FaceUp bool
}

func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// ID is unique per 52-card deck, e.g. "hearts-A".
func (c Card) ID() string {
	return c.Suit.String() + "-" + c.Rank.String()
}

func (c Card) Color() Color {
	return c.Suit.Color()
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.Symbol()
}

func (c Card) Up() Card {
	c.FaceUp = true
	return c
}

func (c Card) Down() Card {
	c.FaceUp = false
	return c
}

// SameCard compares identity, ignoring which way up the cards lie.
func (c Card) SameCard(o Card) bool {
	return c.Suit == o.Suit && c.Rank == o.Rank
}

func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID     string `json:"id"`
		Suit   Suit   `json:"suit"`
		Rank   Rank   `json:"rank"`
		FaceUp bool   `json:"face_up"`
	}{c.ID(), c.Suit, c.Rank, c.FaceUp})
}

func (c *Card) UnmarshalJSON(b []byte) error {
	var v struct {
		Suit   Suit `json:"suit"`
		Rank   Rank `json:"rank"`
		FaceUp bool `json:"face_up"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*c = Card{Suit: v.Suit, Rank: v.Rank, FaceUp: v.FaceUp}
	return nil
}

// ParseCard parses an ID as produced by Card.ID. The card is face down.
func ParseCard(id string) (Card, error) {
	parts := strings.SplitN(id, "-", 2)
	if len(parts) != 2 {
		return Card{}, errors.New("invalid card id")
	}
	var c Card
	if err := c.Suit.UnmarshalText([]byte(parts[0])); err != nil {
		return Card{}, err
	}
	if err := c.Rank.UnmarshalText([]byte(parts[1])); err != nil {
		return Card{}, err
	}
	return c, nil
}

func AreOppositeColors(a, b Card) bool {
	return a.Color() != b.Color()
}

// IsRankOneLess reports whether a's rank is exactly one below b's.
func IsRankOneLess(a, b Card) bool {
	return a.Rank.Value() == b.Rank.Value()-1
}

// IsRankOneMore reports whether a's rank is exactly one above b's.
func IsRankOneMore(a, b Card) bool {
	return a.Rank.Value() == b.Rank.Value()+1
}
