package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
)

// Alerter shows a modal message to the user.
type Alerter interface {
	Alert(title, message string)
}

// AlerterFunc adapts a function to Alerter.
type AlerterFunc func(title, message string)

func (f AlerterFunc) Alert(title, message string) {
	f(title, message)
}

// TerminalAlerter writes alerts to a terminal, coloured by title.
type TerminalAlerter struct {
	mu     sync.Mutex
	out    io.Writer
	colour bool
}

func NewTerminalAlerter(out io.Writer, colour bool) *TerminalAlerter {
	return &TerminalAlerter{out: out, colour: colour}
}

func (a *TerminalAlerter) Alert(title, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	log.Debug().Str("title", title).Str("message", message).Msg("alert")

	heading := fmt.Sprintf("[%s]", title)
	if a.colour {
		heading = titleColour(title) + heading + ResetColor
	}
	if message == "" {
		fmt.Fprintf(a.out, "%s\n", heading)
		return
	}
	fmt.Fprintf(a.out, "%s %s\n", heading, message)
}

func titleColour(title string) string {
	switch title {
	case TitleSuccess:
		return GreenInverse
	case TitleError, TitleLoginError, TitleSignUpError:
		return RedInverse
	default:
		return YellowInverse
	}
}
