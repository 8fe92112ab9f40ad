package solo

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr      string         `yaml:"addr"`
	DataDir   string         `yaml:"data_dir"`
	ClientDir string         `yaml:"client_dir"`
	LogLevel  string         `yaml:"log_level"`
	Dev       bool           `yaml:"dev"`
	Blackjack BlackjackRules `yaml:"blackjack"`
	Solitaire SolitaireRules `yaml:"solitaire"`
	Rewards   Rewards        `yaml:"rewards"`
	Timing    Timing         `yaml:"timing"`
}

// Timing holds the pauses between deferred dealer steps.
type Timing struct {
	DealerReveal time.Duration `yaml:"dealer_reveal"`
	DealerStep   time.Duration `yaml:"dealer_step"`
}

func DefaultConfig() Config {
	return Config{
		Addr:      ":8080",
		DataDir:   "data",
		ClientDir: "client",
		LogLevel:  "info",
		Blackjack: DefaultBlackjackRules(),
		Solitaire: DefaultSolitaireRules(),
		Rewards:   DefaultRewards(),
		Timing: Timing{
			DealerReveal: 500 * time.Millisecond,
			DealerStep:   time.Second,
		},
	}
}

// LoadConfig reads a YAML file over the defaults. An empty path returns
// the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Blackjack.MinBet <= 0 {
		return errors.New("blackjack.min_bet must be positive")
	}
	if c.Blackjack.StartingChips < c.Blackjack.MinBet {
		return errors.New("blackjack.starting_chips must cover the minimum bet")
	}
	if c.Blackjack.ReshuffleBelow < 0 || c.Blackjack.ReshuffleBelow > DeckSize {
		return errors.New("blackjack.reshuffle_below must be between 0 and 52")
	}
	if c.Blackjack.DealerStandsOn < 2 || c.Blackjack.DealerStandsOn > blackjack {
		return errors.New("blackjack.dealer_stands_on must be between 2 and 21")
	}
	if c.Solitaire.DrawCount < 1 || c.Solitaire.DrawCount > 3 {
		return errors.New("solitaire.draw_count must be 1, 2 or 3")
	}
	if c.Rewards.WinExperience < 0 || c.Rewards.LossExperience < 0 ||
		c.Rewards.WinCoins < 0 || c.Rewards.LossCoins < 0 {
		return errors.New("rewards can't be negative")
	}
	if c.Timing.DealerReveal < 0 || c.Timing.DealerStep < 0 {
		return errors.New("timings can't be negative")
	}
	return nil
}

// Logger builds the zap logger described by the config.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if c.Dev {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}
