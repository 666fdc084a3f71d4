// Package ui specifies custom controls for tview to play chess in the terminal.
package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"termchess/config"
	"termchess/game"
	"termchess/types"
)

// Indexes into ChessBoardUI.styles.
const (
	colLight = iota
	colDark
	colWhite
	colBlack
	colCursor
	colSelected
	colCoord
)

const (
	cellWidth  = 3
	rankGutter = 3
)

// BoardWidth and BoardHeight are the drawn size of the board including coordinates.
const (
	BoardWidth  = types.Size*cellWidth + rankGutter
	BoardHeight = types.Size + 1
)

type ChessBoardUI struct {
	Box       *tview.Box
	snap      game.Snapshot
	hint      *tview.TextView
	cfg       *config.Config
	styles    []tcell.Color
	curRow    int
	curCol    int
	originX   int
	originY   int
	infoPanel *GameInfoPanel
	focusMode bool
	onClick   func(types.Square)
	onRestart func()
}

// NewChessBoard creates the board. onClick receives every square the user
// activates, by keyboard or mouse.
func NewChessBoard(c *config.Config, hint *tview.TextView, onClick func(types.Square)) *ChessBoardUI {
	board := &ChessBoardUI{
		Box:     tview.NewBox(),
		hint:    hint,
		curRow:  -1,
		curCol:  -1,
		onClick: onClick,
	}
	if hint != nil {
		hint.SetDynamicColors(true)
	}
	board.SetConfig(c)
	board.Box.SetDrawFunc(board.draw)
	board.Box.SetMouseCapture(func(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
		if action != tview.MouseLeftClick {
			return action, event
		}
		sq, ok := board.SquareAt(event.Position())
		if !ok {
			return action, event
		}
		board.curRow, board.curCol = sq.Row, sq.Col
		board.click(sq)
		return action, event
	})
	return board
}

// OnRestart registers the handler for the restart key.
func (g *ChessBoardUI) OnRestart(fn func()) {
	g.onRestart = fn
}

// Update replaces the displayed state.
func (g *ChessBoardUI) Update(s game.Snapshot) {
	g.snap = s
	g.refreshHint()
}

// Snapshot returns the displayed state.
func (g *ChessBoardUI) Snapshot() game.Snapshot {
	return g.snap
}

// ToggleFocusMode toggles focus mode and returns the new state.
func (g *ChessBoardUI) ToggleFocusMode() bool {
	g.focusMode = !g.focusMode
	g.refreshHint()
	return g.focusMode
}

// SetFocusMode sets focus mode to the given state.
func (g *ChessBoardUI) SetFocusMode(enabled bool) {
	g.focusMode = enabled
	g.refreshHint()
}

// IsFocusMode returns true if focus mode is enabled.
func (g *ChessBoardUI) IsFocusMode() bool {
	return g.focusMode
}

// Cursor returns the keyboard cursor, if shown.
func (g *ChessBoardUI) Cursor() (types.Square, bool) {
	if g.curRow == -1 {
		return types.Square{}, false
	}
	return types.Square{Row: g.curRow, Col: g.curCol}, true
}

// MoveCursor moves the cursor by dc files and dr rows. The first call only
// shows it, on the selected square or else on e2.
func (g *ChessBoardUI) MoveCursor(dc, dr int) {
	if _, ok := g.Cursor(); !ok {
		g.curRow, g.curCol = 6, 4
		if g.snap.HasSelection {
			g.curRow, g.curCol = g.snap.Selected.Row, g.snap.Selected.Col
		}
		return
	}
	next := types.Square{Row: g.curRow + dr, Col: g.curCol + dc}
	if !next.Valid() {
		return
	}
	g.curRow, g.curCol = next.Row, next.Col
}

func (g *ChessBoardUI) ResetCursor() {
	g.curRow = -1
	g.curCol = -1
}

// Activate clicks the square under the cursor.
func (g *ChessBoardUI) Activate() {
	if sq, ok := g.Cursor(); ok {
		g.click(sq)
	}
}

func (g *ChessBoardUI) click(sq types.Square) {
	if g.onClick != nil {
		g.onClick(sq)
	}
}

// SquareAt maps a screen position to a board square, using the position of
// the last draw.
func (g *ChessBoardUI) SquareAt(x, y int) (types.Square, bool) {
	if x < g.originX || y < g.originY {
		return types.Square{}, false
	}
	sq := types.Square{Row: y - g.originY, Col: (x - g.originX) / cellWidth}
	return sq, sq.Valid()
}

// HandleKey processes board keys and returns nil for consumed events.
// 'q' is consumed while there is a selection or cursor to clear; otherwise
// it is passed on.
func (g *ChessBoardUI) HandleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyUp:
		g.MoveCursor(0, -1)
	case tcell.KeyDown:
		g.MoveCursor(0, 1)
	case tcell.KeyLeft:
		g.MoveCursor(-1, 0)
	case tcell.KeyRight:
		g.MoveCursor(1, 0)
	case tcell.KeyEnter:
		g.Activate()
	case tcell.KeyRune:
		switch event.Rune() {
		case 'h':
			g.MoveCursor(-1, 0)
		case 'j':
			g.MoveCursor(0, 1)
		case 'k':
			g.MoveCursor(0, -1)
		case 'l':
			g.MoveCursor(1, 0)
		case ' ':
			g.Activate()
		case 'r':
			g.ResetCursor()
			if g.onRestart != nil {
				g.onRestart()
			}
		case 'q':
			switch {
			case g.snap.HasSelection && !g.snap.AwaitingRemote():
				g.click(g.snap.Selected)
			case g.curRow != -1:
				g.ResetCursor()
			default:
				return event
			}
		default:
			return event
		}
	default:
		return event
	}
	return nil
}

func (g *ChessBoardUI) SetConfig(c *config.Config) {
	g.styles = []tcell.Color{
		tcell.PaletteColor(c.Theme.Colors.LightSquare), // 0
		tcell.PaletteColor(c.Theme.Colors.DarkSquare),  // 1
		tcell.PaletteColor(c.Theme.Colors.WhitePiece),  // 2
		tcell.PaletteColor(c.Theme.Colors.BlackPiece),  // 3
		tcell.PaletteColor(c.Theme.Colors.CursorBG),    // 4
		tcell.PaletteColor(c.Theme.Colors.SelectedBG),  // 5
		tcell.PaletteColor(c.Theme.Colors.Coordinates), // 6
	}
	g.cfg = c
}

// SetInfoPanel attaches the side panel that mirrors the board state.
func (g *ChessBoardUI) SetInfoPanel(p *GameInfoPanel) {
	g.infoPanel = p
	if p != nil {
		p.SetSnapshot(g.snap)
	}
}

func (g *ChessBoardUI) draw(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	g.originX, g.originY = x+rankGutter, y
	cursor, hasCursor := g.Cursor()

	for row := 0; row < types.Size; row++ {
		for col := 0; col < types.Size; col++ {
			sq := types.Square{Row: row, Col: col}
			bg := g.styles[squareShade(sq)]
			switch {
			case g.snap.IsSelected(sq):
				bg = g.styles[colSelected]
			case hasCursor && sq == cursor && g.cfg.Theme.DrawCursorBackground:
				bg = g.styles[colCursor]
			}

			p := g.snap.Board.Get(sq)
			fg := g.styles[colWhite]
			if p.Color == types.Black {
				fg = g.styles[colBlack]
			}
			style := tcell.StyleDefault.Background(bg).Foreground(fg)

			left, right := ' ', ' '
			if hasCursor && sq == cursor && !g.cfg.Theme.DrawCursorBackground {
				left, right = '[', ']'
			}
			sx := g.originX + col*cellWidth
			screen.SetContent(sx, y+row, left, nil, style)
			screen.SetContent(sx+1, y+row, pieceRune(g.cfg.Theme.Symbols, p), nil, style)
			screen.SetContent(sx+2, y+row, right, nil, style)
		}
	}
	if g.cfg.Theme.ShowCoordinates {
		g.drawCoordinates(screen, x, y)
	}
	return x, y, BoardWidth, BoardHeight
}

func squareShade(sq types.Square) int {
	if (sq.Row+sq.Col)%2 == 1 {
		return colDark
	}
	return colLight
}

// pieceRune returns the glyph for p, or the empty-square rune.
func pieceRune(s config.ConfigSymbols, p types.Piece) rune {
	set := s.White
	if p.Color == types.Black {
		set = s.Black
	}
	switch p.Kind {
	case types.King:
		return set.King
	case types.Queen:
		return set.Queen
	case types.Rook:
		return set.Rook
	case types.Bishop:
		return set.Bishop
	case types.Knight:
		return set.Knight
	case types.Pawn:
		return set.Pawn
	}
	return s.Empty
}

func (g *ChessBoardUI) drawCoordinates(s tcell.Screen, x, y int) {
	style := tcell.StyleDefault.Foreground(g.styles[colCoord])
	highlight := tcell.StyleDefault.Background(g.styles[colCursor])
	cursor, hasCursor := g.Cursor()

	for col := 0; col < types.Size; col++ {
		st := style
		if hasCursor && col == cursor.Col {
			st = highlight
		}
		s.SetContent(g.originX+col*cellWidth+1, y+types.Size, rune('a'+col), nil, st)
	}
	for row := 0; row < types.Size; row++ {
		st := style
		if hasCursor && row == cursor.Row {
			st = highlight
		}
		s.SetContent(x+1, y+row, rune('0'+types.Size-row), nil, st)
	}
}

func (g *ChessBoardUI) refreshHint() {
	if g.infoPanel != nil {
		g.infoPanel.SetSnapshot(g.snap)
	}
	if g.hint == nil {
		return
	}

	if g.focusMode {
		g.hint.SetText("  f to toggle")
		return
	}

	status := tview.Escape(g.snap.Status())
	var statusLine, controlsLine string
	switch {
	case g.snap.GameOver():
		statusLine = fmt.Sprintf("  [red::b]%s[-:-:-]\n", status)
		controlsLine = "  r · new game   q · return to menu"
	case g.snap.AwaitingRemote():
		statusLine = fmt.Sprintf("  ◌ %s\n", status)
	case g.snap.Notice != "":
		statusLine = fmt.Sprintf("  [yellow]! %s[-]\n", status)
	default:
		statusLine = fmt.Sprintf("  ● %s\n", status)
	}
	if controlsLine == "" {
		controlsLine = "  hjkl/↑↓←→ move   ⏎ select   r restart   f focus   q quit"
	}
	g.hint.SetText(statusLine + controlsLine)
}
