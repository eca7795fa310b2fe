// internal/console/human.go
package console

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jason-s-yu/nomercy/internal/game"
	"github.com/jason-s-yu/nomercy/internal/models"
	"github.com/peterh/liner"
)

// LineReader is the slice of *liner.State the prompt needs.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// Human is a game.Actor that asks a person at the terminal. Bad input is
// re-prompted. Once input is closed, OnAbort runs (if set) and the seat is
// handed to the heuristic for the rest of the game.
type Human struct {
	In      LineReader
	Out     io.Writer
	OnAbort func()

	closed bool
	auto   game.AutoActor
}

// NewHuman wires a liner session to out.
func NewHuman(line *liner.State, out io.Writer) *Human {
	return &Human{In: line, Out: out}
}

var errClosed = errors.New("input closed")

// ask prints msg and reads one trimmed line.
func (h *Human) ask(msg string) (string, error) {
	if h.closed {
		return "", errClosed
	}
	C.Prompt.Fprint(h.Out, msg)
	input, err := h.In.Prompt("")
	if err != nil {
		if err == liner.ErrPromptAborted || err == io.EOF {
			h.closed = true
			C.Info.Fprintln(h.Out, "\nInput closed, the computer takes over your seat.")
			if h.OnAbort != nil {
				h.OnAbort()
			}
			return "", errClosed
		}
		return "", err
	}
	input = strings.TrimSpace(input)
	if input != "" {
		h.In.AppendHistory(input)
	}
	return input, nil
}

func (h *Human) showHand(view *game.TableView, playable func(models.Card) bool) {
	C.Header.Fprintf(h.Out, "Player %d, your hand (%d cards), top card %s, active color %s\n",
		view.Self, len(view.Hand), Colorize(view.Top), ColorName(view.ActiveColor))
	for i, c := range view.Hand {
		mark := " "
		if playable(c) {
			mark = "*"
		}
		fmt.Fprintf(h.Out, " %s%2d: %s\n", mark, i+1, Colorize(c))
	}
}

func containsCard(cards []models.Card, c models.Card) bool {
	for _, o := range cards {
		if o.Same(c) {
			return true
		}
	}
	return false
}

func (h *Human) ChooseCard(view *game.TableView, legal []models.Card) (models.Card, bool) {
	if h.closed {
		return h.auto.ChooseCard(view, legal)
	}
	h.showHand(view, func(c models.Card) bool { return containsCard(legal, c) })
	for {
		input, err := h.ask(fmt.Sprintf("Play a card (1-%d) or 'd' to draw: ", len(view.Hand)))
		if err != nil {
			return h.auto.ChooseCard(view, legal)
		}
		if strings.EqualFold(input, "d") {
			return models.Card{}, false
		}
		n, err := strconv.Atoi(input)
		if err != nil || n < 1 || n > len(view.Hand) {
			C.Warn.Fprintf(h.Out, "Invalid input. Enter a number between 1 and %d, or 'd'.\n", len(view.Hand))
			continue
		}
		c := view.Hand[n-1]
		if !containsCard(legal, c) {
			C.Warn.Fprintf(h.Out, "%s cannot be played on %s.\n", c, view.Top)
			continue
		}
		return c, true
	}
}

func (h *Human) ChooseStack(view *game.TableView, stackable []models.Card) (models.Card, bool) {
	if h.closed {
		return h.auto.ChooseStack(view, stackable)
	}
	C.Bad.Fprintf(h.Out, "Player %d, %d cards are pending (%s). You can stack:\n", view.Self, view.PendingDraw, view.PendingKind)
	for i, c := range stackable {
		fmt.Fprintf(h.Out, " %2d: %s\n", i+1, Colorize(c))
	}
	for {
		input, err := h.ask(fmt.Sprintf("Stack a card (1-%d) or 'd' to draw %d: ", len(stackable), view.PendingDraw))
		if err != nil {
			return h.auto.ChooseStack(view, stackable)
		}
		if strings.EqualFold(input, "d") {
			return models.Card{}, false
		}
		n, err := strconv.Atoi(input)
		if err != nil || n < 1 || n > len(stackable) {
			C.Warn.Fprintf(h.Out, "Invalid input. Enter a number between 1 and %d, or 'd'.\n", len(stackable))
			continue
		}
		return stackable[n-1], true
	}
}

func (h *Human) ChooseColor(view *game.TableView) models.Color {
	if h.closed {
		return h.auto.ChooseColor(view)
	}
	for {
		input, err := h.ask("Choose a color (r/b/g/y): ")
		if err != nil {
			return h.auto.ChooseColor(view)
		}
		col, err := models.ParseColor(input)
		if err != nil || col == models.ColorNone {
			C.Warn.Fprintln(h.Out, "Invalid color. Enter r, b, g or y.")
			continue
		}
		return col
	}
}

func (h *Human) PlayDrawn(view *game.TableView, drawn models.Card) bool {
	if h.closed {
		return h.auto.PlayDrawn(view, drawn)
	}
	for {
		input, err := h.ask(fmt.Sprintf("You drew %s. Play it? (y/n): ", Colorize(drawn)))
		if err != nil {
			return h.auto.PlayDrawn(view, drawn)
		}
		switch strings.ToLower(input) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		C.Warn.Fprintln(h.Out, "Please answer y or n.")
	}
}

func (h *Human) ChooseSwapTarget(view *game.TableView) (int, bool) {
	if h.closed {
		return h.auto.ChooseSwapTarget(view)
	}
	C.Header.Fprintln(h.Out, "You played a 7. Switch hands with:")
	valid := make(map[int]bool)
	for _, s := range view.Seats {
		if s.ID == view.Self {
			continue
		}
		valid[s.ID] = true
		fmt.Fprintf(h.Out, " Player %d (%d cards)\n", s.ID, s.HandSize)
	}
	for {
		input, err := h.ask("Player number, or 's' to keep your hand: ")
		if err != nil {
			return h.auto.ChooseSwapTarget(view)
		}
		if strings.EqualFold(input, "s") {
			return 0, false
		}
		id, err := strconv.Atoi(input)
		if err != nil || !valid[id] {
			C.Warn.Fprintln(h.Out, "Invalid player.")
			continue
		}
		return id, true
	}
}
