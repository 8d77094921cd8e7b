// Package tui is a terminal front-end for a local game.State.
//
// Layout (top to bottom): root word title, entry line, error line, accepted
// words with their letter counts, score bar, key help.
package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/robalobadob/wordscramble/apps/go-server/internal/game"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/words"
)

const maxInput = 32

var (
	styleTitle = tcell.StyleDefault.Bold(true).Foreground(tcell.ColorYellow)
	styleInput = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleError = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleWord  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleCount = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleScore = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite).Bold(true)
	styleHelp  = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// App owns the screen and the player's state.
type App struct {
	screen tcell.Screen
	state  *game.State
	src    words.Source

	input    []rune
	errTitle string
	errMsg   string
}

// New starts a round and returns an App ready to Run. screen must be initialized.
func New(screen tcell.Screen, state *game.State, src words.Source) *App {
	a := &App{screen: screen, state: state, src: src}
	a.newGame()
	return a
}

// Run polls events until the player quits or the screen is finalized.
func (a *App) Run() {
	a.Draw()
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return
		}
		if !a.Handle(ev) {
			return
		}
		a.Draw()
	}
}

// Handle applies one event. It returns false when the app should exit.
func (a *App) Handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyCtrlN:
			a.newGame()
		case tcell.KeyEnter:
			a.submit()
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if len(a.input) > 0 {
				a.input = a.input[:len(a.input)-1]
			}
		case tcell.KeyRune:
			if len(a.input) < maxInput {
				a.input = append(a.input, ev.Rune())
			}
		}
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

func (a *App) newGame() {
	a.state.StartNewRound(a.src)
	a.input = a.input[:0]
	a.errTitle, a.errMsg = "", ""
}

func (a *App) submit() {
	_, out := a.state.Submit(string(a.input))
	if out.Accepted() {
		a.input = a.input[:0]
		a.errTitle, a.errMsg = "", ""
		return
	}
	a.errTitle, a.errMsg = out.Title, out.Message
}

// Draw renders the whole screen.
func (a *App) Draw() {
	s := a.screen
	s.Clear()
	w, h := s.Size()
	r := a.state.CurrentRound()

	drawText(s, 1, 0, styleTitle, r.RootWord)
	drawText(s, 1, 1, styleInput, "> "+string(a.input))
	s.ShowCursor(3+len(a.input), 1)
	if a.errTitle != "" {
		drawText(s, 1, 2, styleError, a.errTitle+": "+a.errMsg)
	}

	row := 4
	for _, word := range r.UsedWords {
		if row >= h-2 {
			break
		}
		count := fmt.Sprintf("(%d) ", game.Letters(word))
		drawText(s, 1, row, styleCount, count)
		drawText(s, 1+len(count), row, styleWord, word)
		row++
	}

	score := fmt.Sprintf("Score: %d", r.Score)
	for x := 0; x < w; x++ {
		s.SetContent(x, h-2, ' ', nil, styleScore)
	}
	drawText(s, (w-len(score))/2, h-2, styleScore, score)
	drawText(s, 1, h-1, styleHelp, "Enter submit  Ctrl-N new game  Esc quit")
	s.Show()
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
