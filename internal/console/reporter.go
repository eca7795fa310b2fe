// internal/console/reporter.go
package console

import (
	"fmt"
	"io"
	"time"

	"github.com/jason-s-yu/nomercy/internal/game"
	"github.com/jason-s-yu/nomercy/internal/stats"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Reporter prints the event stream of an interactive game and renders the
// table state at the start of every turn once a game is attached.
type Reporter struct {
	Out  io.Writer
	game *game.Game
}

func NewReporter(out io.Writer) *Reporter {
	return &Reporter{Out: out}
}

// Attach sets the game whose state is rendered on each turn start.
func (r *Reporter) Attach(g *game.Game) {
	r.game = g
}

// Observe is a game.Options.BroadcastFn.
func (r *Reporter) Observe(ev game.GameEvent) {
	switch ev.Type {
	case game.EventTurnStart:
		if r.game != nil {
			r.RenderState(r.game)
		}
		C.Header.Fprintln(r.Out, ev.String())
	case game.EventCardPlayed, game.EventDrawnCardPlayed:
		fmt.Fprintf(r.Out, "Player %d played %s (%d cards left)\n", ev.Player, Colorize(*ev.Card), ev.Count)
	case game.EventColorChosen:
		fmt.Fprintf(r.Out, "Player %d chose %s\n", ev.Player, ColorName(ev.Color))
	case game.EventPenaltyDraw, game.EventReverseDraw4, game.EventColorRoulette,
		game.EventMercyElimination, game.EventDiscardColor:
		C.Bad.Fprintln(r.Out, ev.String())
	case game.EventWin:
		C.Good.Fprintln(r.Out, ev.String())
	case game.EventTurnEnd:
		// rendered by the next turn start
	case game.EventGameEnd:
		C.Header.Fprintln(r.Out, ev.String())
	default:
		C.Info.Fprintln(r.Out, ev.String())
	}
}

// RenderState draws the seats with their hand sizes, marking whose turn it is.
func (r *Reporter) RenderState(g *game.Game) {
	t := table.NewWriter()
	t.SetOutputMirror(r.Out)
	t.SetTitle(fmt.Sprintf("Turn %d  |  %s", g.TurnCount+1, Arrow(g.Direction)))
	t.AppendHeader(table.Row{"", "Player", "Cards", "Seat"})

	current := g.CurrentPlayer()
	for _, p := range g.Players {
		marker, kind := "", "computer"
		if current != nil && p.ID == current.ID {
			marker = ">"
		}
		if p.Human {
			kind = "human"
		}
		t.AppendRow(table.Row{marker, p.ID, p.HandSize(), kind})
	}
	for _, id := range g.Eliminated {
		t.AppendRow(table.Row{"", id, "-", C.Bad.Sprint("eliminated")})
	}

	footer := fmt.Sprintf("Top %s  Color %s  Deck %d", Colorize(g.Top()), ColorName(g.ActiveColor()), g.Deck.Len())
	if g.PendingDraw > 0 {
		footer += fmt.Sprintf("  Pending +%d", g.PendingDraw)
	}
	t.AppendFooter(table.Row{"", footer, "", ""}, table.RowConfig{AutoMerge: true})
	t.SetStyle(table.StyleRounded)
	t.Style().Title.Align = text.AlignCenter
	t.Style().Format.Footer = text.FormatDefault
	t.Render()
}

// RenderStandings prints the final order of a finished game.
func (r *Reporter) RenderStandings(res game.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(r.Out)
	title := fmt.Sprintf("Game over after %d turns", res.Turns)
	if res.Capped {
		title += " (turn limit reached)"
	}
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Rank", "Player", "Cards", "Status"})
	for i, s := range res.Standings {
		status, cards := "", fmt.Sprint(s.Cards)
		switch {
		case s.ID == res.WinnerID:
			status = C.Good.Sprint("winner")
		case s.Eliminated:
			status, cards = C.Bad.Sprint("eliminated"), "-"
		}
		t.AppendRow(table.Row{i + 1, s.ID, cards, status})
	}
	t.SetStyle(table.StyleRounded)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
	})
	t.Render()
}

// TopCardsShown is how many cards the run summary lists.
const TopCardsShown = 15

// RenderSummary prints the statistics of a simulation run.
func (r *Reporter) RenderSummary(rec *stats.BatchRecord, elapsed time.Duration) {
	shortest, longest := rec.GameLengths()

	t := table.NewWriter()
	t.SetOutputMirror(r.Out)
	t.SetTitle("Simulation summary")
	t.AppendRows([]table.Row{
		{"Games", rec.TotalGames},
		{"Total turns", rec.TotalTurns},
		{"Average turns", fmt.Sprintf("%.2f", rec.AvgTurns)},
		{"Shortest game", shortest},
		{"Longest game", longest},
		{"One-turn games", rec.Additional.OneTurnGameCount},
		{"Games hitting the turn limit", rec.Additional.CappedGameCount},
		{"Mercy eliminations", rec.Mercy.TotalMercyEliminations},
		{"Average mercy losses per game", fmt.Sprintf("%.4f", rec.Mercy.AvgMercyLosses)},
		{"Stacking events", rec.Stacking.TotalStackingEvents},
		{"Stacked penalty", rec.Stacking.TotalStackedPenalty},
		{"Pending draw resolved", rec.Stacking.TotalPendingDrawResolved},
		{"Cards drawn", rec.Draw.TotalDraws},
		{"Max cards drawn in one turn", rec.Draw.MaxCardsDrawnInTurn},
		{"Average cards drawn per turn", fmt.Sprintf("%.4f", rec.Draw.AvgDrawsPerTurn)},
		{"7 switches", rec.HandSwitching.TotalSwitchesOn7},
		{"0 cycles", rec.HandSwitching.TotalCyclesOn0},
		{"Non-numbered share", fmt.Sprintf("%.2f%%", rec.Additional.NonNumberedRatio)},
		{"Largest hand seen", rec.Additional.MaxHandSizeEver},
		{"Elapsed", elapsed.Round(time.Millisecond)},
	})
	t.SetStyle(table.StyleLight)
	t.Render()

	top := table.NewWriter()
	top.SetOutputMirror(r.Out)
	top.SetTitle(fmt.Sprintf("Top %d most played cards", TopCardsShown))
	top.AppendHeader(table.Row{"#", "Card", "Plays"})
	for i, cc := range rec.TopCards(TopCardsShown) {
		top.AppendRow(table.Row{i + 1, cc.Card, cc.Count})
	}
	if least, ok := rec.LeastPlayed(); ok {
		top.AppendFooter(table.Row{"", "Least played: " + least.Card, least.Count})
	}
	top.SetStyle(table.StyleLight)
	top.Style().Format.Footer = text.FormatDefault
	top.Render()

	special := table.NewWriter()
	special.SetOutputMirror(r.Out)
	special.SetTitle("Special cards")
	special.AppendHeader(table.Row{"Card", "Plays"})
	for _, v := range stats.SpecialCards {
		special.AppendRow(table.Row{v.String(), rec.SpecialCardCounts[v.String()]})
	}
	special.SetStyle(table.StyleLight)
	special.Render()

	if len(rec.OneTurnExamples) > 0 {
		ex := rec.OneTurnExamples[0]
		C.Header.Fprintf(r.Out, "\nOne-turn game #%d, won by Player %d\n", ex.GameNumber, ex.WinnerID)
		fmt.Fprint(r.Out, "Winning hand:")
		for _, c := range ex.WinnerHand {
			fmt.Fprint(r.Out, " ", Colorize(c))
		}
		fmt.Fprintln(r.Out)
		for _, line := range ex.Log {
			C.Dim.Fprintln(r.Out, "  "+line)
		}
	}
}
