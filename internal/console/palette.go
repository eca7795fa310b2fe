// internal/console/palette.go
package console

import (
	"github.com/fatih/color"
	"github.com/jason-s-yu/nomercy/internal/models"
)

// C holds the message styles shared by the prompt and the reporter.
var C = struct {
	Info, Warn, Good, Bad, Header, Prompt, Dim *color.Color
}{
	Info:   color.New(color.FgCyan),
	Warn:   color.New(color.FgHiYellow),
	Good:   color.New(color.FgGreen, color.Bold),
	Bad:    color.New(color.FgRed, color.Bold),
	Header: color.New(color.FgWhite, color.Bold),
	Prompt: color.New(color.FgHiWhite),
	Dim:    color.New(color.Faint),
}

var cardColors = map[models.Color]*color.Color{
	models.ColorRed:    color.New(color.FgRed),
	models.ColorBlue:   color.New(color.FgBlue),
	models.ColorGreen:  color.New(color.FgGreen),
	models.ColorYellow: color.New(color.FgYellow),
}

var wildColor = color.New(color.FgMagenta, color.Bold)

// Colorize renders a card in its own color. Unresolved wilds are magenta.
func Colorize(c models.Card) string {
	if col, ok := cardColors[c.Color]; ok {
		return col.Sprint(c.String())
	}
	return wildColor.Sprint(c.String())
}

// ColorName renders a color name in that color.
func ColorName(col models.Color) string {
	if cc, ok := cardColors[col]; ok {
		return cc.Sprint(col.String())
	}
	return col.String()
}

// Arrow shows the direction of play.
func Arrow(direction int) string {
	if direction < 0 {
		return "<- backward"
	}
	return "-> forward"
}
