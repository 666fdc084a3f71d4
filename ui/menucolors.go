package ui

import "github.com/gdamore/tcell/v2"

// MenuColors is the Nord-inspired palette shared by the menu screens.
var MenuColors = struct {
	Border      tcell.Color
	BorderFocus tcell.Color
	Title       tcell.Color
	Label       tcell.Color
	Hint        tcell.Color
	Error       tcell.Color
	Selected    tcell.Color
	ButtonBG    tcell.Color
	ButtonFocus tcell.Color
	ButtonText  tcell.Color
}{
	Border:      tcell.PaletteColor(60),
	BorderFocus: tcell.PaletteColor(109),
	Title:       tcell.PaletteColor(255),
	Label:       tcell.PaletteColor(250),
	Hint:        tcell.PaletteColor(245),
	Error:       tcell.PaletteColor(174),
	Selected:    tcell.PaletteColor(109),
	ButtonBG:    tcell.PaletteColor(60),
	ButtonFocus: tcell.PaletteColor(109),
	ButtonText:  tcell.PaletteColor(255),
}
