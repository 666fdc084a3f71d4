// termchess is a terminal chess client. The human plays White against a
// remote move service that validates moves and answers as Black.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"termchess/config"
	"termchess/engine/remote"
	"termchess/game"
	"termchess/logging"
	"termchess/record"
	"termchess/types"
	"termchess/ui"
)

// Version is set at build time via ldflags
var Version = "dev"

// Command-line flags
var (
	flagServer     = flag.String("server", "", "Move service base URL")
	flagDelay      = flag.Duration("delay", -1, "Pause before asking the engine to reply")
	flagNoRecord   = flag.Bool("norecord", false, "Do not write game records")
	flagHistory    = flag.Bool("history", false, "List recorded games and exit")
	flagQuickStart = flag.Bool("play", false, "Start game immediately with defaults")
	flagFocus      = flag.Bool("focus", false, "Start in focus mode (board only)")
	flagDebug      = flag.Bool("debug", false, "Log at debug level")
	flagVersion    = flag.Bool("version", false, "Print version and exit")
)

var app *tview.Application
var rootPage *tview.Pages
var gameBoard *ui.ChessBoardUI
var gameFrame *tview.Flex
var gameHint *tview.TextView
var cfg *config.Config
var log *zap.Logger
var ctrl *game.Controller

func main() {
	flag.Parse()

	if *flagVersion {
		fmt.Printf("termchess %s\n", Version)
		return
	}

	var err error
	cfg, err = config.InitConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %s\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	if *flagHistory {
		if err := printHistory(cfg.HistoryDir()); err != nil {
			fmt.Fprintf(os.Stderr, "history: %s\n", err)
			os.Exit(1)
		}
		return
	}

	logPath, err := cfg.LogPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "log file: %s\n", err)
		os.Exit(1)
	}
	log, err = logging.New(logPath, *flagDebug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %s\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("starting", zap.String("version", Version), zap.String("service", cfg.Service.BaseURL))

	quickStart := *flagQuickStart || *flagFocus

	app = tview.NewApplication()
	rootPage = tview.NewPages()
	rootPage.SetBorder(true).SetTitle(" ♞ termchess ")

	// Game view setup
	gameHint = tview.NewTextView()
	gameHint.SetBorder(true)
	gameHint.SetBorderPadding(0, 0, 1, 1)
	gameHint.SetTitle(" Status ")
	gameHint.SetTitleAlign(tview.AlignLeft)
	gameBoard = ui.NewChessBoard(cfg, gameHint, func(sq types.Square) {
		if ctrl != nil {
			ctrl.Click(sq)
		}
	})
	gameBoard.OnRestart(func() {
		if ctrl != nil {
			ctrl.Restart()
		}
	})

	gameFrame = ui.CreateGameLayout(gameBoard, gameHint)

	gameBoard.Box.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event = gameBoard.HandleKey(event); event == nil {
			return nil
		}
		if event.Key() != tcell.KeyRune {
			return event
		}
		switch event.Rune() {
		case 'q':
			stopGame()
			rootPage.SwitchToPage("setup")
			return nil
		case 'f':
			if gameBoard.ToggleFocusMode() {
				ui.BuildFocusLayout(gameFrame, gameBoard)
			} else {
				ui.RebuildNormalLayout(gameFrame, gameBoard, gameHint)
			}
			return nil
		}
		return event
	})

	// History browser
	history := ui.NewHistoryBrowser(cfg.HistoryDir(), cfg.Theme.Symbols, func() {
		rootPage.SwitchToPage("setup")
	})

	// Game setup screen
	setupUI := ui.NewGameSetup(initialSettings(),
		startGame,
		func() {
			app.Stop()
		},
		func() {
			rootPage.SwitchToPage("colors")
		},
		func() {
			history.Refresh()
			rootPage.SwitchToPage("history")
		},
	)

	// Color configuration screen
	colorConfig := ui.NewColorConfig(cfg, func() {
		gameBoard.SetConfig(cfg)
		rootPage.SwitchToPage("setup")
	})
	colorConfig.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc || (event.Key() == tcell.KeyRune && event.Rune() == 'q') {
			rootPage.SwitchToPage("setup")
			return nil
		}
		if event.Key() == tcell.KeyTab {
			colorConfig.ToggleMode()
			return nil
		}
		return event
	})

	rootPage.AddPage("setup", ui.CreateCenteredForm(setupUI.Form(), 64), true, !quickStart)
	rootPage.AddPage("gameview", gameFrame, true, quickStart)
	rootPage.AddPage("colors", colorConfig.Flex(), true, false)
	rootPage.AddPage("history", history.Flex(), true, false)

	if quickStart {
		startGame(initialSettings())
		if *flagFocus {
			gameBoard.SetFocusMode(true)
			ui.BuildFocusLayout(gameFrame, gameBoard)
		}
	}

	err = app.SetRoot(rootPage, true).EnableMouse(true).Run()
	stopGame()
	if err != nil {
		log.Error("ui stopped", zap.Error(err))
		fmt.Fprintf(os.Stderr, "termchess: %s\n", err)
		os.Exit(1)
	}
}

// applyFlags overrides configuration values given on the command line.
func applyFlags(c *config.Config) {
	if *flagServer != "" {
		c.Service.BaseURL = *flagServer
	}
	if *flagDelay >= 0 {
		c.Service.AIDelayMs = int(flagDelay.Milliseconds())
	}
	if *flagNoRecord {
		c.Record.Enabled = false
	}
}

func initialSettings() ui.GameSettings {
	return ui.GameSettings{
		ServerURL: cfg.Service.BaseURL,
		AIDelay:   cfg.Service.AIDelay(),
		Record:    cfg.Record.Enabled,
	}
}

// startGame replaces any running game with a fresh one against the service
// chosen in settings.
func startGame(settings ui.GameSettings) {
	stopGame()

	svcCfg := cfg.Service.Engine()
	svcCfg.BaseURL = settings.ServerURL
	client := remote.NewClient(svcCfg,
		remote.WithTimeout(cfg.Service.RequestTimeout()),
		remote.WithLogger(log.Named("remote")),
	)

	opts := []game.ControllerOption{
		game.WithAIDelay(settings.AIDelay),
		game.WithLogger(log.Named("game")),
		game.OnChange(gameBoard.Update),
	}
	if settings.Record {
		dir := cfg.HistoryDir()
		opts = append(opts, game.WithRecorder(func() (game.Recorder, error) {
			rec, err := record.NewGameRecord(dir, settings.ServerURL)
			if err != nil {
				return nil, err
			}
			return rec, nil
		}))
	}

	if p := gameBoard.InfoPanel(); p != nil {
		p.SetServer(settings.ServerURL)
	}
	gameBoard.ResetCursor()
	ctrl = game.NewController(client, ui.NewAppDispatcher(app), opts...)
	log.Info("game started",
		zap.String("service", settings.ServerURL),
		zap.Duration("ai_delay", settings.AIDelay),
		zap.Bool("record", settings.Record))
	rootPage.SwitchToPage("gameview")
}

func stopGame() {
	if ctrl == nil {
		return
	}
	ctrl.Close()
	ctrl = nil
}

// printHistory lists recorded games, newest first.
func printHistory(dir string) error {
	games, err := record.ListGames(dir)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		fmt.Printf("No games in %s\n", dir)
		return nil
	}
	for _, g := range games {
		result := g.Result
		if result == "" {
			result = record.ResultOngoing
		}
		fmt.Printf("%s  %-10s %3d plies  %-16s %s\n", g.Date, g.Session[:min(8, len(g.Session))], g.MoveCount, result, g.FileName)
	}
	return nil
}
