package console

import (
	"bytes"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/jason-s-yu/nomercy/internal/game"
	"github.com/jason-s-yu/nomercy/internal/models"
	"github.com/jason-s-yu/nomercy/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

// scriptReader replays canned input lines, then reports EOF.
type scriptReader struct {
	lines   []string
	history []string
}

func (s *scriptReader) Prompt(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptReader) AppendHistory(item string) {
	s.history = append(s.history, item)
}

func newHuman(lines ...string) (*Human, *bytes.Buffer) {
	var out bytes.Buffer
	return &Human{In: &scriptReader{lines: lines}, Out: &out}, &out
}

var (
	red5   = models.NumberCard(models.ColorRed, 5)
	red9   = models.NumberCard(models.ColorRed, 9)
	blue3  = models.NumberCard(models.ColorBlue, 3)
	draw4  = models.WildCard(models.ValueDraw4)
	blueD2 = models.ActionCard(models.ColorBlue, models.ValueDraw2)
)

func viewOf(hand ...models.Card) *game.TableView {
	return &game.TableView{
		Self:        1,
		Hand:        hand,
		Top:         models.NumberCard(models.ColorRed, 1),
		ActiveColor: models.ColorRed,
		Direction:   1,
		Seats:       []game.Seat{{ID: 1, HandSize: len(hand)}, {ID: 2, HandSize: 4}, {ID: 3, HandSize: 9}},
	}
}

func TestHumanChooseCardReprompts(t *testing.T) {
	h, out := newHuman("x", "9", "2", "1")
	view := viewOf(red5, blue3)

	c, ok := h.ChooseCard(view, []models.Card{red5})
	require.True(t, ok)
	assert.Equal(t, red5, c)
	assert.Contains(t, out.String(), "Invalid input")
	assert.Contains(t, out.String(), "Blue 3 cannot be played on Red 1")
	assert.Equal(t, []string{"x", "9", "2", "1"}, h.In.(*scriptReader).history)
}

func TestHumanMayDrawInstead(t *testing.T) {
	h, _ := newHuman("D")
	_, ok := h.ChooseCard(viewOf(red5), []models.Card{red5})
	assert.False(t, ok)
}

func TestHumanStack(t *testing.T) {
	h, _ := newHuman("3", "2")
	view := viewOf(blueD2, draw4)
	view.PendingDraw, view.PendingKind = 2, models.ValueDraw2

	c, ok := h.ChooseStack(view, []models.Card{blueD2, draw4})
	require.True(t, ok)
	assert.Equal(t, draw4, c)

	h, _ = newHuman("d")
	_, ok = h.ChooseStack(view, []models.Card{blueD2})
	assert.False(t, ok)
}

func TestHumanColorAndDrawnCard(t *testing.T) {
	h, _ := newHuman("purple", "G", "maybe", "n", "yes")
	assert.Equal(t, models.ColorGreen, h.ChooseColor(viewOf()))
	assert.False(t, h.PlayDrawn(viewOf(), red9))
	assert.True(t, h.PlayDrawn(viewOf(), red9))
}

func TestHumanSwapTarget(t *testing.T) {
	h, _ := newHuman("1", "7", "3")
	id, ok := h.ChooseSwapTarget(viewOf(red5))
	require.True(t, ok)
	assert.Equal(t, 3, id, "own seat and unknown seats are rejected")

	h, _ = newHuman("s")
	_, ok = h.ChooseSwapTarget(viewOf(red5))
	assert.False(t, ok)
}

func TestHumanClosedInputFallsBackToHeuristic(t *testing.T) {
	aborted := 0
	h, out := newHuman()
	h.OnAbort = func() { aborted++ }

	view := viewOf(red5, blue3)
	c, ok := h.ChooseCard(view, []models.Card{red5})
	require.True(t, ok)
	assert.Equal(t, red5, c)
	assert.Equal(t, 1, aborted)
	assert.Contains(t, out.String(), "Input closed")

	// later decisions do not prompt again
	assert.Equal(t, models.ColorRed, h.ChooseColor(view))
	id, ok := h.ChooseSwapTarget(viewOf(red5, red9, blue3, draw4, blueD2))
	assert.True(t, ok)
	assert.Equal(t, 2, id)
	assert.Equal(t, 1, aborted)
}

func TestHumanPlaysFullGame(t *testing.T) {
	// an exhausted script hands the seat to the heuristic, so the game still terminates
	h, _ := newHuman("d", "d")
	var out bytes.Buffer
	rep := NewReporter(&out)

	rules := game.DefaultHouseRules()
	rules.MaxTurns = 2000
	g := game.NewGame(game.Options{
		Players:     3,
		HandSize:    7,
		Rules:       rules,
		Humans:      map[int]game.Actor{1: h},
		Rand:        rand.New(rand.NewSource(11)),
		BroadcastFn: rep.Observe,
	})
	rep.Attach(g)
	res := g.Run()
	rep.RenderStandings(res)

	assert.True(t, g.GameOver)
	assert.Contains(t, out.String(), "Game started with 3 players")
	assert.Contains(t, out.String(), "Game over after")
	assert.Contains(t, out.String(), "winner")
}

func TestRenderState(t *testing.T) {
	var out bytes.Buffer
	rep := NewReporter(&out)
	g := game.NewGame(game.Options{Players: 4, HandSize: 7, Rules: game.DefaultHouseRules(), Rand: rand.New(rand.NewSource(3))})
	g.Direction = -1
	g.PendingDraw = 6

	rep.RenderState(g)
	s := out.String()
	assert.Contains(t, s, "Turn 1")
	assert.Contains(t, s, "<- backward")
	assert.Contains(t, s, "Pending +6")
	assert.Contains(t, s, "computer")
}

func TestRenderSummary(t *testing.T) {
	agg := stats.NewAggregate(1)
	agg.CardPlayCounts["Red 5"] = 12
	agg.CardPlayCounts["Draw10"] = 1
	agg.RecordGame(1, game.Result{WinnerID: 2, Turns: 1, WinnerHand: []models.Card{draw4}})
	agg.RecordGame(2, game.Result{WinnerID: 1, Turns: 90})
	rec := agg.Record(uuid.Nil, 1, 2)

	var out bytes.Buffer
	NewReporter(&out).RenderSummary(rec, 1500*time.Millisecond)
	s := out.String()
	assert.Contains(t, s, "Simulation summary")
	assert.Contains(t, s, "Top 15 most played cards")
	assert.Contains(t, s, "Least played: Draw10")
	assert.Contains(t, s, "ReverseDraw4")
	assert.Contains(t, s, "One-turn game #1, won by Player 2")
	assert.Contains(t, s, "Draw4")
}
