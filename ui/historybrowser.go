package ui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"termchess/config"
	"termchess/fen"
	"termchess/game"
	"termchess/record"
	"termchess/types"
)

const (
	historyHint    = "  [dimgray]d[-] delete  [dimgray]q[-] back"
	previewPlies   = 6
	previewMinRows = types.Size + 6
)

// gamePreview is the parsed content of one record, loaded on first display.
type gamePreview struct {
	board types.Board
	plies []game.PlayedMove
	err   error
}

// HistoryBrowserUI lists saved game records with a preview of the selected one.
type HistoryBrowserUI struct {
	flex     *tview.Flex
	list     *tview.List
	preview  *tview.Box
	hint     *tview.TextView
	dir      string
	symbols  config.ConfigSymbols
	games    []record.GameInfo
	previews map[string]*gamePreview
	current  int
	armed    bool
	onDone   func()
}

// NewHistoryBrowser creates a history browser over the records in dir.
func NewHistoryBrowser(dir string, symbols config.ConfigSymbols, onDone func()) *HistoryBrowserUI {
	hb := &HistoryBrowserUI{
		dir:      dir,
		symbols:  symbols,
		onDone:   onDone,
		previews: make(map[string]*gamePreview),
	}

	hb.list = tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true).
		SetMainTextStyle(tcell.StyleDefault.Foreground(MenuColors.Label)).
		SetSelectedStyle(tcell.StyleDefault.Foreground(MenuColors.ButtonText).Background(MenuColors.ButtonFocus))
	hb.list.SetBorder(true).SetTitle(" Saved Games ")
	hb.list.SetChangedFunc(func(index int, _, _ string, _ rune) {
		hb.current = index
		hb.disarm()
	})
	hb.list.SetInputCapture(hb.handleInput)

	hb.preview = tview.NewBox()
	hb.preview.SetBorder(true).SetTitle(" Final Position ")
	hb.preview.SetDrawFunc(hb.drawPreview)

	hb.hint = tview.NewTextView().SetDynamicColors(true).SetText(historyHint)

	columns := tview.NewFlex().
		AddItem(hb.list, 40, 0, true).
		AddItem(hb.preview, 0, 1, false)
	hb.flex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(columns, 0, 1, true).
		AddItem(hb.hint, 1, 0, false)

	hb.Refresh()
	return hb
}

// Flex returns the flex container for this UI.
func (hb *HistoryBrowserUI) Flex() *tview.Flex {
	return hb.flex
}

// Games returns the records currently listed.
func (hb *HistoryBrowserUI) Games() []record.GameInfo {
	return hb.games
}

// Refresh rereads the history directory.
func (hb *HistoryBrowserUI) Refresh() {
	hb.list.Clear()
	hb.previews = make(map[string]*gamePreview)
	hb.current = 0
	hb.disarm()

	games, err := record.ListGames(hb.dir)
	hb.games = games
	switch {
	case err != nil:
		hb.list.AddItem("[red]"+tview.Escape(err.Error())+"[-]", "", 0, nil)
	case len(games) == 0:
		hb.list.AddItem("[dimgray]No saved games[-]", "", 0, nil)
	}
	for _, g := range games {
		hb.list.AddItem(fmt.Sprintf("%s  %3d plies  %s", g.Date, g.MoveCount, resultLabel(g.Result)), "", 0, nil)
	}
}

func resultLabel(result string) string {
	if result == "" || result == record.ResultOngoing {
		return "..."
	}
	return result
}

func (hb *HistoryBrowserUI) selected() (record.GameInfo, bool) {
	if hb.current < 0 || hb.current >= len(hb.games) {
		return record.GameInfo{}, false
	}
	return hb.games[hb.current], true
}

// handleInput closes the browser on q/Esc. Deleting takes two presses of d.
func (hb *HistoryBrowserUI) handleInput(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyEscape || (event.Key() == tcell.KeyRune && event.Rune() == 'q') {
		hb.disarm()
		if hb.onDone != nil {
			hb.onDone()
		}
		return nil
	}
	if event.Key() != tcell.KeyRune || event.Rune() != 'd' {
		hb.disarm()
		return event
	}

	g, ok := hb.selected()
	if !ok {
		return nil
	}
	if !hb.armed {
		hb.armed = true
		hb.hint.SetText(fmt.Sprintf("  [yellow]delete %s? press d again[-]", tview.Escape(g.FileName)))
		return nil
	}
	hb.deleteSelected()
	return nil
}

func (hb *HistoryBrowserUI) disarm() {
	hb.armed = false
	hb.hint.SetText(historyHint)
}

func (hb *HistoryBrowserUI) deleteSelected() {
	g, ok := hb.selected()
	if !ok {
		return
	}
	if err := os.Remove(g.FilePath); err != nil {
		hb.hint.SetText("  [red]" + tview.Escape(err.Error()) + "[-]")
		return
	}
	hb.Refresh()
}

// load parses the selected record once and caches the result.
func (hb *HistoryBrowserUI) load(g record.GameInfo) *gamePreview {
	if p, ok := hb.previews[g.FilePath]; ok {
		return p
	}
	p := &gamePreview{}
	p.board, p.err = fen.Decode(g.FinalPosition)
	if p.err == nil {
		p.plies, p.err = record.ParseMoves(g.FilePath)
	}
	hb.previews[g.FilePath] = p
	return p
}

// drawPreview renders the final position, the players and the closing plies.
func (hb *HistoryBrowserUI) drawPreview(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	g, ok := hb.selected()
	if !ok || width < types.Size*2+4 || height < previewMinRows {
		return x, y, width, height
	}
	p := hb.load(g)
	left, top := x+2, y+1
	label := tcell.StyleDefault.Foreground(tcell.PaletteColor(250))
	dim := tcell.StyleDefault.Foreground(tcell.PaletteColor(245))

	if p.err != nil {
		drawText(screen, left, top, filepath.Base(g.FilePath), label)
		drawText(screen, left, top+1, p.err.Error(), tcell.StyleDefault.Foreground(MenuColors.Error))
		return x, y, width, height
	}

	whiteStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(255)).Bold(true)
	emptyStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(240))
	for row := 0; row < types.Size; row++ {
		for col := 0; col < types.Size; col++ {
			piece := p.board[row][col]
			ch, st := '·', emptyStyle
			switch {
			case piece.Belongs(types.White):
				ch, st = pieceRune(hb.symbols, piece), whiteStyle
			case piece.Belongs(types.Black):
				ch, st = pieceRune(hb.symbols, piece), dim
			}
			screen.SetContent(left+col*2, top+row, ch, nil, st)
		}
	}

	line := top + types.Size + 1
	result := resultLabel(g.Result)
	if result == "..." {
		result = "unfinished"
	}
	for _, text := range []string{
		fmt.Sprintf("%s  %s", g.Date, result),
		fmt.Sprintf("%s vs %s", g.White, g.Black),
	} {
		drawText(screen, left, line, text, label)
		line++
	}

	// Closing plies go to the right of the board when there is room.
	movesX := left + types.Size*2 + 3
	if movesX+12 > x+width {
		return x, y, width, height
	}
	start := max(0, len(p.plies)-previewPlies)
	for i, ply := range p.plies[start:] {
		drawText(screen, movesX, top+i, fmt.Sprintf("%3d %s", ply.Ply, plyText(ply)), dim)
	}
	return x, y, width, height
}

// drawText writes a string to the screen at the given position.
func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, ch := range []rune(text) {
		screen.SetContent(x+i, y, ch, nil, style)
	}
}
