package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"termchess/config"
	"termchess/fen"
	"termchess/types"
)

// ColorConfigUI provides a square color configuration screen with live preview.
type ColorConfigUI struct {
	flex      *tview.Flex
	colorList *tview.List
	preview   *tview.Box
	cfg       *config.Config
	onDone    func()

	selectedLight int
	selectedDark  int
	editingDark   bool
}

type paletteEntry struct {
	code int
	name string
}

var lightSquareColors = []paletteEntry{
	{230, "Light Cream"},
	{229, "Pale Yellow"},
	{223, "Peach"},
	{222, "Gold"},
	{188, "Light Beige"},
	{187, "Wheat"},
	{180, "Tan"},
	{252, "Light Gray"},
	{250, "Gray"},
	{152, "Pale Blue"},
	{151, "Pale Green"},
}

var darkSquareColors = []paletteEntry{
	{137, "Walnut"},
	{136, "Dark Brown"},
	{130, "Dark Orange"},
	{94, "Saddle Brown"},
	{88, "Dark Red"},
	{65, "Moss"},
	{22, "Dark Green"},
	{24, "Dark Cyan"},
	{60, "Slate"},
	{240, "Gray"},
	{236, "Dark Gray"},
}

// previewPosition is shown in the preview box.
const previewPosition = "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R"

// NewColorConfig creates a new color configuration screen.
func NewColorConfig(cfg *config.Config, onDone func()) *ColorConfigUI {
	cc := &ColorConfigUI{
		cfg:           cfg,
		onDone:        onDone,
		selectedLight: cfg.Theme.Colors.LightSquare,
		selectedDark:  cfg.Theme.Colors.DarkSquare,
	}

	cc.colorList = tview.NewList()
	cc.colorList.SetBorder(true)
	cc.colorList.ShowSecondaryText(false)
	cc.populateColorList()

	cc.colorList.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		entries := cc.entries()
		if index < 0 || index >= len(entries) {
			return
		}
		if cc.editingDark {
			cc.selectedDark = entries[index].code
		} else {
			cc.selectedLight = entries[index].code
		}
	})

	cc.colorList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		if index < 0 || index >= len(cc.entries()) {
			return
		}
		if !cc.editingDark {
			cc.cfg.Theme.Colors.LightSquare = cc.selectedLight
			cc.editingDark = true
			cc.populateColorList()
			return
		}
		cc.cfg.Theme.Colors.DarkSquare = cc.selectedDark
		cc.cfg.Save()
		cc.editingDark = false
		cc.populateColorList()
		onDone()
	})

	cc.preview = tview.NewBox()
	cc.preview.SetBorder(true)
	cc.preview.SetTitle(" Board Preview ")
	cc.preview.SetDrawFunc(cc.drawPreview)

	cc.flex = tview.NewFlex().
		AddItem(cc.colorList, 30, 0, true).
		AddItem(cc.preview, 0, 1, false)

	return cc
}

func (cc *ColorConfigUI) entries() []paletteEntry {
	if cc.editingDark {
		return darkSquareColors
	}
	return lightSquareColors
}

func (cc *ColorConfigUI) populateColorList() {
	cc.colorList.Clear()

	current := cc.selectedLight
	cc.colorList.SetTitle(" Light Squares (Tab: dark) ")
	if cc.editingDark {
		current = cc.selectedDark
		cc.colorList.SetTitle(" Dark Squares (Tab: light) ")
	}
	for i, c := range cc.entries() {
		cc.colorList.AddItem(fmt.Sprintf("[#%06x]████[-] %s (%d)",
			tcell.PaletteColor(c.code).Hex(), c.name, c.code),
			"", rune('a'+i), nil)
	}
	for i, c := range cc.entries() {
		if c.code == current {
			cc.colorList.SetCurrentItem(i)
			break
		}
	}
}

func (cc *ColorConfigUI) drawPreview(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	if width < BoardWidth || height < types.Size+3 {
		return x, y, width, height
	}

	board := fen.MustDecode(previewPosition)
	whiteFG := tcell.PaletteColor(cc.cfg.Theme.Colors.WhitePiece)
	blackFG := tcell.PaletteColor(cc.cfg.Theme.Colors.BlackPiece)
	startX, startY := x+2, y+1

	for row := 0; row < types.Size; row++ {
		for col := 0; col < types.Size; col++ {
			sq := types.Square{Row: row, Col: col}
			bg := tcell.PaletteColor(cc.selectedLight)
			if squareShade(sq) == colDark {
				bg = tcell.PaletteColor(cc.selectedDark)
			}
			p := board.Get(sq)
			fg := whiteFG
			if p.Color == types.Black {
				fg = blackFG
			}
			style := tcell.StyleDefault.Background(bg).Foreground(fg)
			sx := startX + col*cellWidth
			screen.SetContent(sx, startY+row, ' ', nil, style)
			screen.SetContent(sx+1, startY+row, pieceRune(cc.cfg.Theme.Symbols, p), nil, style)
			screen.SetContent(sx+2, startY+row, ' ', nil, style)
		}
	}

	info := fmt.Sprintf("Light: %d  Dark: %d", cc.selectedLight, cc.selectedDark)
	drawText(screen, startX, startY+types.Size+1, info, tcell.StyleDefault)

	return x, y, width, height
}

// Flex returns the flex container for this UI.
func (cc *ColorConfigUI) Flex() *tview.Flex {
	return cc.flex
}

// SetInputCapture sets the input capture for the color list.
func (cc *ColorConfigUI) SetInputCapture(capture func(event *tcell.EventKey) *tcell.EventKey) {
	cc.colorList.SetInputCapture(capture)
}

// ToggleMode switches between light and dark square editing.
func (cc *ColorConfigUI) ToggleMode() {
	cc.editingDark = !cc.editingDark
	cc.populateColorList()
}
