package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/neilgarb/solo"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	dataDir := flag.String("data", "", "data directory, overrides the config")
	flag.Parse()

	cfg, err := solo.LoadConfig(*configPath)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	cfg.LogLevel = "warn"
	cfg.Dev = true

	log, err := cfg.Logger()
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := solo.NewFileStore(cfg.DataDir)
	if err != nil {
		log.Fatal("open data dir", zap.Error(err))
	}
	progress := solo.LoadProgress(store, cfg.Rewards, log)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	title, _ := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("S", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("olo", pterm.FgDarkGray.ToStyle()),
	).Srender()
	pterm.Print(title)
	pterm.Info.Printfln("Welcome back, %s", progress.State().Player.Name)

	for {
		choice, err := pterm.DefaultInteractiveSelect.
			WithOptions([]string{"Blackjack", "Solitaire", "Statistics", "Quit"}).
			Show("What would you like to play?")
		if err != nil {
			return
		}

		switch choice {
		case "Blackjack":
			playBlackjack(cfg, progress, rng)
		case "Solitaire":
			playSolitaire(cfg, progress, rng)
		case "Statistics":
			printStats(progress.State())
		case "Quit":
			return
		}
	}
}

func playBlackjack(cfg solo.Config, progress *solo.Progress, rng *rand.Rand) {
	b := solo.NewBlackjack(cfg.Blackjack, rng, progress)

	for {
		pterm.Info.Printfln("Chips: %d   Bet: %d", b.Chips, b.Bet)
		choice, err := pterm.DefaultInteractiveSelect.
			WithOptions([]string{"Deal", "Raise bet", "Lower bet", "Back"}).
			Show()
		if err != nil || choice == "Back" {
			progress.Dispatch(solo.ResetGame{})
			return
		}

		switch choice {
		case "Raise bet":
			b.AdjustBet(10)
			continue
		case "Lower bet":
			b.AdjustBet(-10)
			continue
		}

		if err := b.CanStartRound(b.Bet); err != nil {
			pterm.Error.Println(err)
			continue
		}
		progress.Dispatch(solo.StartGame{Game: solo.GameBlackjack})
		b.StartRound(b.Bet)

		for b.Phase == solo.PhasePlaying {
			printBlackjack(b)
			options := []string{"Hit", "Stand"}
			if b.CanDoubleDown {
				options = append(options, "Double down")
			}
			action, err := pterm.DefaultInteractiveSelect.WithOptions(options).Show()
			if err != nil {
				return
			}
			switch action {
			case "Hit":
				err = b.Hit()
			case "Stand":
				err = b.Stand()
			case "Double down":
				err = b.DoubleDown()
			}
			if err != nil {
				pterm.Error.Println(err)
			}
		}

		for {
			action, more := b.StepDealer()
			if action == solo.DealerDone {
				break
			}
			printBlackjack(b)
			if !more {
				break
			}
			time.Sleep(cfg.Timing.DealerStep)
		}

		printBlackjack(b)
		printOutcome(b)
	}
}

func printBlackjack(b *solo.Blackjack) {
	dealer := pterm.DefaultBox.WithTitle(pterm.LightRed("Dealer")).
		Sprintf("%s\n\nScore: %d", renderCards(b.Dealer), b.DealerScore())
	player := pterm.DefaultBox.WithTitle(pterm.LightGreen("You")).
		Sprintf("%s\n\nScore: %d", renderCards(b.Player), b.PlayerScore())
	pterm.DefaultPanel.WithPanels(pterm.Panels{
		{{Data: dealer}, {Data: player}},
	}).Render()
}

func printOutcome(b *solo.Blackjack) {
	net := b.Net()
	switch {
	case b.Outcome.Won():
		pterm.Success.Printfln("%s Won %d", b.Outcome.Label(), net)
	case b.Outcome == solo.OutcomePush:
		pterm.Warning.Printfln("%s Won %d", b.Outcome.Label(), net)
	default:
		pterm.Error.Printfln("%s Lost %d", b.Outcome.Label(), -net)
	}
}

func playSolitaire(cfg solo.Config, progress *solo.Progress, rng *rand.Rand) {
	s := solo.NewSolitaire(cfg.Solitaire, rng, solo.RealClock{}, progress)
	progress.Dispatch(solo.StartGame{Game: solo.GameSolitaire})

	pterm.Info.Println("Commands: d (draw), s w (take waste), s t<col> <row> (take from column),")
	pterm.Info.Println("          m f<n> / m t<n> (move selection), x (drop selection), q (quit)")

	for !s.Won {
		printSolitaire(s)
		line, err := pterm.DefaultInteractiveTextInput.WithDefaultText(">").Show()
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "q":
			progress.Dispatch(solo.ResetGame{})
			return
		case "d":
			err = s.DrawStock()
		case "x":
			s.Deselect()
		case "s":
			err = solitaireSelect(s, fields[1:])
		case "m":
			if len(fields) != 2 {
				err = errors.New("move where?")
				break
			}
			var p solo.Pile
			if p, err = parsePile(fields[1]); err == nil {
				err = s.MoveTo(p)
			}
			progress.Dispatch(solo.UpdateScore{Score: s.Score})
		default:
			err = errors.New("unknown command")
		}
		if err != nil {
			pterm.Error.Println(err)
		}
	}

	printSolitaire(s)
	elapsed := s.Elapsed()
	pterm.Success.Printfln("Congratulations! You won Solitaire! Time: %d:%02d",
		int(elapsed.Minutes()), int(elapsed.Seconds())%60)
}

func solitaireSelect(s *solo.Solitaire, args []string) error {
	if len(args) == 0 {
		return errors.New("select what?")
	}
	p, err := parsePile(args[0])
	if err != nil {
		return err
	}
	switch p.Kind {
	case solo.PileWaste:
		return s.Select(p, len(s.Waste)-1)
	case solo.PileTableau:
		if len(args) != 2 {
			return errors.New("which card in that column?")
		}
		row, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		return s.Select(p, row)
	}
	return solo.ErrInvalidSelection
}

func parsePile(arg string) (solo.Pile, error) {
	switch {
	case arg == "w":
		return solo.WastePile(), nil
	case len(arg) == 2 && (arg[0] == 'f' || arg[0] == 't'):
		i, err := strconv.Atoi(arg[1:])
		if err != nil {
			return solo.Pile{}, err
		}
		p := solo.TableauPile(i)
		if arg[0] == 'f' {
			p = solo.FoundationPile(i)
		}
		if !p.Valid() {
			return solo.Pile{}, fmt.Errorf("no pile %s", arg)
		}
		return p, nil
	}
	return solo.Pile{}, fmt.Errorf("no pile %s", arg)
}

func printSolitaire(s *solo.Solitaire) {
	var top []string
	top = append(top, fmt.Sprintf("stock: %d", len(s.Stock)))
	if n := len(s.Waste); n > 0 {
		top = append(top, "waste: "+renderCards(s.Waste[n-1:]))
	} else {
		top = append(top, "waste: --")
	}
	for i, f := range s.Foundations {
		if n := len(f); n > 0 {
			top = append(top, fmt.Sprintf("f%d: %s", i, renderCards(f[n-1:])))
		} else {
			top = append(top, fmt.Sprintf("f%d: --", i))
		}
	}
	pterm.Println(strings.Join(top, "   "))

	data := pterm.TableData{{"", "t0", "t1", "t2", "t3", "t4", "t5", "t6"}}
	var rows int
	for _, col := range s.Tableau {
		if len(col) > rows {
			rows = len(col)
		}
	}
	for r := 0; r < rows; r++ {
		row := []string{strconv.Itoa(r)}
		for _, col := range s.Tableau {
			if r < len(col) {
				row = append(row, renderCards(col[r:r+1]))
			} else {
				row = append(row, "")
			}
		}
		data = append(data, row)
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	if !s.Selection.Empty() {
		pterm.Info.Printfln("Holding %s from %s", renderCards(s.Selection.Cards), s.Selection.Pile)
	}
	pterm.Printfln("Moves: %d   Score: %d   Time: %s", s.Moves, s.Score, s.Elapsed())
}

func renderCards(cards []solo.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		switch {
		case !c.FaceUp:
			parts[i] = pterm.Gray("##")
		case c.Color() == solo.ColorRed:
			parts[i] = pterm.Red(c.String())
		default:
			parts[i] = c.String()
		}
	}
	return strings.Join(parts, " ")
}

func printStats(s solo.AppState) {
	pterm.DefaultSection.Printfln("%s  (level %d, %d xp, %d coins)",
		s.Player.Name, s.Player.Level, s.Player.Experience, s.Player.Coins)

	data := pterm.TableData{{"Game", "Played", "Won", "Win rate", "Best time", "Streak", "Best streak"}}
	for _, g := range solo.AllGameTypes() {
		st := s.Player.Stats[g]
		best := "N/A"
		if st.HasBestTime() {
			best = fmt.Sprintf("%d:%02d", int(st.BestTime.Minutes()), int(st.BestTime.Seconds())%60)
		}
		data = append(data, []string{
			string(g),
			strconv.Itoa(st.GamesPlayed),
			strconv.Itoa(st.GamesWon),
			fmt.Sprintf("%.1f%%", st.WinRate()),
			best,
			strconv.Itoa(st.CurrentStreak),
			strconv.Itoa(st.BestStreak),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
