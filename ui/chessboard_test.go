package ui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"termchess/config"
	"termchess/engine"
	"termchess/game"
	"termchess/types"
)

var e2 = types.Square{Row: 6, Col: 4}

func testConfig() *config.Config {
	cfg := config.DefaultConfig
	cfg.Theme.Symbols = config.LetterSymbols
	return &cfg
}

func newTestBoard(t *testing.T, onClick func(types.Square)) (*ChessBoardUI, *tview.TextView) {
	t.Helper()
	hint := tview.NewTextView()
	board := NewChessBoard(testConfig(), hint, onClick)
	board.Update(game.NewSession(nil).Snapshot())
	return board, hint
}

func drawBoard(t *testing.T, board *ChessBoardUI) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen.Init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(40, 12)
	board.Box.SetRect(0, 0, 40, 12)
	board.Box.Draw(screen)
	return screen
}

// cellX is the screen column of the piece glyph in col.
func cellX(col int) int {
	return rankGutter + col*cellWidth + 1
}

func TestBoardDrawsStartPosition(t *testing.T) {
	board, _ := newTestBoard(t, nil)
	screen := drawBoard(t, board)

	tests := []struct {
		x, y int
		want rune
	}{
		{cellX(4), 7, 'K'},
		{cellX(3), 7, 'Q'},
		{cellX(0), 0, 'r'},
		{cellX(4), 1, 'p'},
		{cellX(4), 4, ' '},
		{1, 0, '8'},
		{1, 7, '1'},
		{cellX(0), 8, 'a'},
		{cellX(7), 8, 'h'},
	}
	for _, tt := range tests {
		got, _, _, _ := screen.GetContent(tt.x, tt.y)
		if got != tt.want {
			t.Errorf("content at (%d,%d) = %q, want %q", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestBoardHighlightsSelection(t *testing.T) {
	board, _ := newTestBoard(t, nil)
	s := game.NewSession(nil)
	s.Click(e2)
	board.Update(s.Snapshot())
	screen := drawBoard(t, board)

	cfg := testConfig()
	_, _, style, _ := screen.GetContent(cellX(4), 6)
	_, bg, _ := style.Decompose()
	if bg != tcell.PaletteColor(cfg.Theme.Colors.SelectedBG) {
		t.Errorf("selected square background = %v", bg)
	}

	_, _, style, _ = screen.GetContent(cellX(0), 0)
	_, bg, _ = style.Decompose()
	if bg != tcell.PaletteColor(cfg.Theme.Colors.LightSquare) {
		t.Errorf("a8 background = %v, want light", bg)
	}
	_, _, style, _ = screen.GetContent(cellX(1), 0)
	_, bg, _ = style.Decompose()
	if bg != tcell.PaletteColor(cfg.Theme.Colors.DarkSquare) {
		t.Errorf("b8 background = %v, want dark", bg)
	}
}

func TestSquareAt(t *testing.T) {
	board, _ := newTestBoard(t, nil)
	drawBoard(t, board)

	if sq, ok := board.SquareAt(cellX(4), 6); !ok || sq != e2 {
		t.Errorf("SquareAt(e2) = %v %v", sq, ok)
	}
	if sq, ok := board.SquareAt(rankGutter+4*cellWidth, 6); !ok || sq != e2 {
		t.Errorf("left edge of e2 = %v %v", sq, ok)
	}
	for _, p := range [][2]int{{0, 0}, {rankGutter + 8*cellWidth, 0}, {cellX(0), 8}} {
		if sq, ok := board.SquareAt(p[0], p[1]); ok {
			t.Errorf("SquareAt(%d,%d) = %v, want off board", p[0], p[1], sq)
		}
	}
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestHandleKey(t *testing.T) {
	var clicks []types.Square
	board, _ := newTestBoard(t, func(sq types.Square) { clicks = append(clicks, sq) })
	restarts := 0
	board.OnRestart(func() { restarts++ })

	if board.HandleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)) != nil {
		t.Error("arrow not consumed")
	}
	if sq, ok := board.Cursor(); !ok || sq != e2 {
		t.Fatalf("cursor = %v %v, want e2", sq, ok)
	}
	board.HandleKey(key('k'))
	board.HandleKey(key('l'))
	board.HandleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	board.HandleKey(key(' '))

	want := types.Square{Row: 5, Col: 5}
	if len(clicks) != 2 || clicks[0] != want || clicks[1] != want {
		t.Errorf("clicks = %v, want two on f3", clicks)
	}

	// Cursor stops at the edge.
	for i := 0; i < 10; i++ {
		board.HandleKey(key('h'))
	}
	if sq, _ := board.Cursor(); sq.Col != 0 {
		t.Errorf("cursor col = %d, want 0", sq.Col)
	}

	board.HandleKey(key('r'))
	if restarts != 1 {
		t.Errorf("restarts = %d", restarts)
	}
	if _, ok := board.Cursor(); ok {
		t.Error("restart kept the cursor")
	}

	if ev := board.HandleKey(key('x')); ev == nil {
		t.Error("unbound key consumed")
	}
}

func TestQuitKey(t *testing.T) {
	var clicks []types.Square
	board, _ := newTestBoard(t, func(sq types.Square) { clicks = append(clicks, sq) })

	s := game.NewSession(nil)
	s.Click(e2)
	board.Update(s.Snapshot())
	board.MoveCursor(0, 0)

	if board.HandleKey(key('q')) != nil {
		t.Fatal("q with selection not consumed")
	}
	if len(clicks) != 1 || clicks[0] != e2 {
		t.Errorf("q should click the selected square, got %v", clicks)
	}

	s.Click(e2)
	board.Update(s.Snapshot())
	if board.HandleKey(key('q')) != nil {
		t.Fatal("q with cursor not consumed")
	}
	if _, ok := board.Cursor(); ok {
		t.Error("cursor not cleared")
	}
	if board.HandleKey(key('q')) == nil {
		t.Error("q with nothing to clear should pass through")
	}
}

func TestHintShowsStatus(t *testing.T) {
	board, hint := newTestBoard(t, nil)
	if got := hint.GetText(true); !strings.Contains(got, game.MsgYourMove) {
		t.Errorf("hint = %q", got)
	}

	s := game.NewSession(nil)
	s.Click(e2)
	s.Click(types.Square{Row: 3, Col: 4})
	s.ApplyValidation(s.Epoch(), engine.Validation{}, nil)
	board.Update(s.Snapshot())
	if got := hint.GetText(true); !strings.Contains(got, game.MsgInvalidMove) {
		t.Errorf("hint = %q", got)
	}

	snap := s.Snapshot()
	snap.Notice = "Error validating move: [502] bad gateway"
	board.Update(snap)
	if got := hint.GetText(true); !strings.Contains(got, "[502] bad gateway") {
		t.Errorf("bracketed notice mangled: %q", got)
	}

	snap.Phase = game.PhaseGameOver
	board.Update(snap)
	if got := hint.GetText(true); !strings.Contains(got, game.MsgGameOver) {
		t.Errorf("hint = %q", got)
	}

	board.SetFocusMode(true)
	if got := hint.GetText(true); strings.Contains(got, game.MsgGameOver) {
		t.Errorf("focus mode hint = %q", got)
	}
}

func TestMouseClickMapsToSquare(t *testing.T) {
	var clicks []types.Square
	board, _ := newTestBoard(t, func(sq types.Square) { clicks = append(clicks, sq) })
	drawBoard(t, board)

	handler := board.Box.MouseHandler()
	ev := tcell.NewEventMouse(cellX(4), 6, tcell.Button1, tcell.ModNone)
	handler(tview.MouseLeftClick, ev, func(tview.Primitive) {})

	if len(clicks) != 1 || clicks[0] != e2 {
		t.Errorf("clicks = %v, want [e2]", clicks)
	}
	if sq, ok := board.Cursor(); !ok || sq != e2 {
		t.Errorf("cursor = %v %v", sq, ok)
	}
}
