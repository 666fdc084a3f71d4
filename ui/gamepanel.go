package ui

import (
	"fmt"
	"net/url"

	"github.com/rivo/tview"

	"termchess/game"
	"termchess/types"
)

// GameInfoPanel displays game information and move history alongside the board.
type GameInfoPanel struct {
	box    *tview.TextView
	snap   game.Snapshot
	server string
}

// NewGameInfoPanel creates a new game info panel.
func NewGameInfoPanel() *GameInfoPanel {
	panel := &GameInfoPanel{
		box: tview.NewTextView(),
	}

	panel.box.SetDynamicColors(true)
	panel.box.SetBorder(false)
	panel.box.SetTextAlign(tview.AlignLeft)

	return panel
}

// Box returns the underlying tview component.
func (p *GameInfoPanel) Box() *tview.TextView {
	return p.box
}

// SetSnapshot updates the panel with the current game state.
func (p *GameInfoPanel) SetSnapshot(s game.Snapshot) {
	p.snap = s
	p.refresh()
}

// SetServer sets the move service shown as the opponent.
func (p *GameInfoPanel) SetServer(base string) {
	p.server = base
	if u, err := url.Parse(base); err == nil && u.Host != "" {
		p.server = u.Host
	}
	p.refresh()
}

func (p *GameInfoPanel) refresh() {
	var text string

	text += "[white::b]Game Info[-:-:-]\n"
	text += "[dimgray]──────────────────────[-:-:-]\n"
	if p.server != "" {
		text += fmt.Sprintf("[white]Engine:[-:-:-] %s\n", tview.Escape(p.server))
	}
	text += fmt.Sprintf("[white]Move:[-:-:-] %d\n", len(p.snap.History)/2+1)
	text += fmt.Sprintf("[white]State:[-:-:-] %s\n", p.snap.Phase)

	if len(p.snap.History) > 0 {
		text += "\n[white::b]Moves[-:-:-]\n"
		text += "[dimgray]──────────────────────[-:-:-]\n"
		text += formatMoveList(p.snap.History, 12)
	}

	p.box.SetText(text)
}

// formatMoveList pairs plies into numbered rows, keeping the last maxRows.
func formatMoveList(history []game.PlayedMove, maxRows int) string {
	type row struct{ white, black string }
	var rows []row
	for _, m := range history {
		if m.Side == types.White || len(rows) == 0 {
			rows = append(rows, row{})
		}
		r := &rows[len(rows)-1]
		if m.Side == types.White {
			r.white = plyText(m)
		} else {
			r.black = plyText(m)
		}
	}

	start := 0
	if len(rows) > maxRows {
		start = len(rows) - maxRows
	}

	var text string
	for i := start; i < len(rows); i++ {
		marker := " "
		if i == len(rows)-1 {
			marker = "[white]>[-]"
		}
		text += fmt.Sprintf("%s[dimgray]%3d.[-] %-6s [dimgray]%s[-]\n", marker, i+1, rows[i].white, rows[i].black)
	}
	if start > 0 {
		text += fmt.Sprintf("[dimgray]  ··· %d earlier[-]\n", start)
	}
	return text
}

func plyText(m game.PlayedMove) string {
	if m.Move == nil {
		return "??"
	}
	return m.Move.String()
}

// CreateGameLayout creates the main game layout with board and side panel.
func CreateGameLayout(board *ChessBoardUI, hint *tview.TextView) *tview.Flex {
	gameFrame := tview.NewFlex()
	RebuildNormalLayout(gameFrame, board, hint)
	return gameFrame
}

// CreateCenteredForm creates a centered form container for the setup screen.
func CreateCenteredForm(form *tview.Flex, maxWidth int) *tview.Flex {
	centered := tview.NewFlex().SetDirection(tview.FlexColumn)
	centered.AddItem(nil, 0, 1, false)
	centered.AddItem(form, maxWidth, 0, true)
	centered.AddItem(nil, 0, 1, false)

	return centered
}

// RebuildNormalLayout restores the normal game layout with board, info panel, and hint.
func RebuildNormalLayout(gameFrame *tview.Flex, board *ChessBoardUI, hint *tview.TextView) {
	gameFrame.Clear()

	server := ""
	if board.infoPanel != nil {
		server = board.infoPanel.server
	}
	infoPanel := NewGameInfoPanel()
	infoPanel.server = server
	board.SetInfoPanel(infoPanel)

	boardRow := tview.NewFlex().SetDirection(tview.FlexColumn)
	boardRow.AddItem(board.Box, 0, 1, true)
	boardRow.AddItem(infoPanel.Box(), 26, 0, false)

	gameFrame.SetDirection(tview.FlexRow)
	gameFrame.AddItem(boardRow, 0, 1, true)
	gameFrame.AddItem(hint, 4, 0, false)
}

// BuildFocusLayout builds the focus mode layout with just the centered board.
func BuildFocusLayout(gameFrame *tview.Flex, board *ChessBoardUI) {
	gameFrame.Clear()

	gameFrame.SetDirection(tview.FlexRow)
	gameFrame.AddItem(nil, 0, 1, false)

	centerRow := tview.NewFlex().SetDirection(tview.FlexColumn)
	centerRow.AddItem(nil, 0, 1, false)
	centerRow.AddItem(board.Box, BoardWidth, 0, true)
	centerRow.AddItem(nil, 0, 1, false)

	gameFrame.AddItem(centerRow, BoardHeight, 0, true)
	gameFrame.AddItem(nil, 0, 1, false)
}

// InfoPanel returns the side panel attached to the board, if any.
func (g *ChessBoardUI) InfoPanel() *GameInfoPanel {
	return g.infoPanel
}
