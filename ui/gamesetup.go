package ui

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// GameSettings are the choices made on the setup screen.
type GameSettings struct {
	ServerURL string
	AIDelay   time.Duration
	Record    bool
}

// GameSetupUI provides a form for configuring a new game.
type GameSetupUI struct {
	form      *tview.Form
	flex      *tview.Flex
	helpText  *tview.TextView
	settings  GameSettings
	onStart   func(GameSettings)
	onCancel  func()
	onColors  func()
	onHistory func()
}

const setupHelp = "Tab/Shift+Tab: navigate fields  |  Enter: confirm"

// NewGameSetup creates a new game setup form prefilled with initial.
func NewGameSetup(initial GameSettings, onStart func(GameSettings), onCancel, onColors, onHistory func()) *GameSetupUI {
	setup := &GameSetupUI{
		settings:  initial,
		onStart:   onStart,
		onCancel:  onCancel,
		onColors:  onColors,
		onHistory: onHistory,
	}

	form := tview.NewForm()

	form.AddInputField("Move Service", initial.ServerURL, 40, nil, func(text string) {
		setup.settings.ServerURL = strings.TrimSpace(text)
	})

	delayMs := strconv.FormatInt(initial.AIDelay.Milliseconds(), 10)
	form.AddInputField("Engine Delay (ms)", delayMs, 8, func(text string, lastChar rune) bool {
		return lastChar >= '0' && lastChar <= '9'
	}, func(text string) {
		if val, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
			setup.settings.AIDelay = time.Duration(val) * time.Millisecond
		}
	})

	form.AddCheckbox("Save Game Record", initial.Record, func(checked bool) {
		setup.settings.Record = checked
	})

	form.AddButton("Start Game", setup.start)

	form.AddButton("Board Colors", func() {
		if onColors != nil {
			onColors()
		}
	})

	form.AddButton("History", func() {
		if onHistory != nil {
			onHistory()
		}
	})

	form.AddButton("Quit", func() {
		onCancel()
	})

	form.SetBorder(true)
	form.SetTitle(" New Game ")
	form.SetTitleAlign(tview.AlignCenter)
	form.SetButtonBackgroundColor(MenuColors.ButtonBG)
	form.SetButtonTextColor(MenuColors.ButtonText)

	helpText := tview.NewTextView().
		SetText(setupHelp).
		SetTextAlign(tview.AlignCenter)
	helpText.SetTextColor(MenuColors.Hint)

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(helpText, 1, 0, false)

	setup.form = form
	setup.flex = flex
	setup.helpText = helpText
	return setup
}

// start validates the service URL before handing the settings on.
func (s *GameSetupUI) start() {
	if err := checkServiceURL(s.settings.ServerURL); err != nil {
		s.helpText.SetTextColor(MenuColors.Error)
		s.helpText.SetText(err.Error())
		return
	}
	s.helpText.SetTextColor(MenuColors.Hint)
	s.helpText.SetText(setupHelp)
	s.onStart(s.settings)
}

func checkServiceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("move service must be an http(s) URL, got %q", raw)
	}
	return nil
}

// Settings returns the current form values.
func (s *GameSetupUI) Settings() GameSettings {
	return s.settings
}

// Form returns the flex container with form and help text.
func (s *GameSetupUI) Form() *tview.Flex {
	return s.flex
}

// SetInputCapture sets the input capture function for the form.
func (s *GameSetupUI) SetInputCapture(capture func(event *tcell.EventKey) *tcell.EventKey) {
	s.form.SetInputCapture(capture)
}
