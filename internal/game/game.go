// internal/game/game.go
package game

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/nomercy/internal/models"
)

// stackable maps the pending penalty kind to the penalty kinds a reply may stack with.
var stackable = map[models.Value][]models.Value{
	models.ValueDraw2:  {models.ValueDraw2, models.ValueDraw4, models.ValueDraw6, models.ValueDraw10},
	models.ValueDraw4:  {models.ValueDraw4, models.ValueDraw6, models.ValueDraw10},
	models.ValueDraw6:  {models.ValueDraw6, models.ValueDraw10},
	models.ValueDraw10: {models.ValueDraw10},
}

// CanStack reports whether a card of value reply may be stacked on a pending penalty of kind pending.
func CanStack(pending, reply models.Value) bool {
	for _, v := range stackable[pending] {
		if v == reply {
			return true
		}
	}
	return false
}

// Options configures a new game.
type Options struct {
	Players  int
	HandSize int
	Rules    HouseRules

	// Humans maps player ids (1-based) to externally driven actors. All other
	// seats use AutoActor.
	Humans map[int]Actor

	// Rand drives every shuffle of the game. A nil Rand seeds from the clock.
	Rand *rand.Rand

	BroadcastFn func(ev GameEvent)
}

// Game holds the entire state of a single game. A Game is owned by one
// goroutine; nothing in it is safe for concurrent use.
type Game struct {
	ID    uuid.UUID
	Rules HouseRules

	Players     []*models.Player
	Deck        *models.Deck
	DiscardPile []models.Card

	CurrentPlayerIndex int
	Direction          int // +1 or -1
	PendingDraw        int
	PendingKind        models.Value
	TurnCount          int

	GameOver   bool
	WinnerID   int
	Capped     bool
	Eliminated []int

	// BroadcastFn receives every game event. If nil, events are dropped.
	BroadcastFn func(ev GameEvent)

	actors     map[int]Actor
	auto       Actor
	rng        *rand.Rand
	turnDrawn  int
	dealtHands map[int][]models.Card
}

// NewGame shuffles a fresh deck, deals every hand and turns the first discard.
func NewGame(opts Options) *Game {
	r := opts.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	id, _ := uuid.NewRandom()

	g := &Game{
		ID:          id,
		Rules:       opts.Rules,
		Deck:        models.NewDeck(),
		DiscardPile: make([]models.Card, 0, models.DeckSize),
		Direction:   1,
		PendingKind: models.ValueNone,
		BroadcastFn: opts.BroadcastFn,
		actors:      make(map[int]Actor, len(opts.Humans)),
		auto:        AutoActor{},
		rng:         r,
		dealtHands:  make(map[int][]models.Card, opts.Players),
	}
	g.Deck.Shuffle(r)

	for seat := 1; seat <= opts.Players; seat++ {
		actor, human := opts.Humans[seat]
		p := models.NewPlayer(seat, human)
		if human {
			g.actors[seat] = actor
		}
		p.Draw(g.Deck, opts.HandSize)
		g.dealtHands[seat] = p.HandCopy()
		g.Players = append(g.Players, p)
	}

	if top, ok := g.Deck.DrawOne(); ok {
		g.DiscardPile = append(g.DiscardPile, top)
	}

	top := g.Top()
	g.fireEvent(GameEvent{Type: EventGameStart, Card: &top, Count: len(g.Players)})
	return g
}

// Top returns the active card.
func (g *Game) Top() models.Card {
	if len(g.DiscardPile) == 0 {
		return models.Card{Kind: models.KindWild, Value: models.ValueNone}
	}
	return g.DiscardPile[len(g.DiscardPile)-1]
}

// ActiveColor is the color governing legal plays, or ColorNone if the top is unresolved.
func (g *Game) ActiveColor() models.Color {
	return g.Top().Color
}

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() *models.Player {
	return g.Players[g.CurrentPlayerIndex]
}

// CardCount totals the cards in the deck, the discard pile and every active hand.
func (g *Game) CardCount() int {
	n := g.Deck.Len() + len(g.DiscardPile)
	for _, p := range g.Players {
		n += p.HandSize()
	}
	return n
}

// actorFor returns the decision source for p.
func (g *Game) actorFor(p *models.Player) Actor {
	if a, ok := g.actors[p.ID]; ok {
		return a
	}
	return g.auto
}

func (g *Game) view(p *models.Player) *TableView {
	seats := make([]Seat, len(g.Players))
	for i, sp := range g.Players {
		seats[i] = Seat{ID: sp.ID, HandSize: sp.HandSize(), Human: sp.Human}
	}
	return &TableView{
		Turn:        g.TurnCount + 1,
		Self:        p.ID,
		Hand:        p.Hand,
		Top:         g.Top(),
		ActiveColor: g.ActiveColor(),
		Direction:   g.Direction,
		PendingDraw: g.PendingDraw,
		PendingKind: g.PendingKind,
		DeckSize:    g.Deck.Len(),
		Seats:       seats,
	}
}

// fireEvent broadcasts an event stamped with the current turn.
func (g *Game) fireEvent(ev GameEvent) {
	if g.BroadcastFn == nil {
		return
	}
	ev.Turn = g.TurnCount + 1
	g.BroadcastFn(ev)
}

// PlayTurn processes exactly one turn for the current player and reports
// whether the game has ended.
func (g *Game) PlayTurn() bool {
	if g.GameOver {
		return true
	}
	g.recycleIfLow()
	g.turnDrawn = 0

	p := g.CurrentPlayer()
	top := g.Top()
	g.fireEvent(GameEvent{Type: EventTurnStart, Player: p.ID, Card: &top, Count: p.HandSize()})

	if g.PendingDraw > 0 {
		g.resolvePending(p)
	} else {
		g.normalTurn(p)
	}
	return g.endTurn(p)
}

// resolvePending lets p stack a penalty card or absorb the pending draw.
func (g *Game) resolvePending(p *models.Player) {
	var options []models.Card
	for _, c := range p.Hand {
		if CanStack(g.PendingKind, c.Value) {
			options = append(options, c)
		}
	}

	if len(options) > 0 {
		if c, ok := g.actorFor(p).ChooseStack(g.view(p), options); ok {
			mustOffer(options, c)
			played := g.playToDiscard(p, c, EventStack)
			g.PendingDraw += played.Value.Penalty()
			g.PendingKind = played.Value
			g.fireEvent(GameEvent{Type: EventStack, Player: p.ID, Card: &played, Count: played.Value.Penalty(), Total: g.PendingDraw})
			return
		}
	}

	drawn := p.Draw(g.Deck, g.PendingDraw)
	g.turnDrawn += len(drawn)
	g.fireEvent(GameEvent{Type: EventPenaltyDraw, Player: p.ID, Count: len(drawn), Total: g.PendingDraw})
	g.PendingDraw = 0
	g.PendingKind = models.ValueNone
}

// normalTurn plays a legal card or draws one and possibly plays it.
func (g *Game) normalTurn(p *models.Player) {
	actor := g.actorFor(p)
	top := g.Top()

	if legal := LegalCards(p.Hand, top); len(legal) > 0 {
		if c, ok := actor.ChooseCard(g.view(p), legal); ok {
			mustOffer(legal, c)
			g.playCard(p, c, EventCardPlayed)
			return
		}
	}

	drawn, ok := g.Deck.DrawOne()
	if !ok {
		g.fireEvent(GameEvent{Type: EventCardDrawn, Player: p.ID})
		return
	}
	p.Take(drawn)
	g.turnDrawn++
	g.fireEvent(GameEvent{Type: EventCardDrawn, Player: p.ID, Count: 1})

	if models.IsLegalAgainst(drawn, top) && actor.PlayDrawn(g.view(p), drawn) {
		g.playCard(p, drawn, EventDrawnCardPlayed)
	}
}

// playToDiscard moves c from p's hand onto the discard pile and resolves the
// color of a wild. evType is the event announcing the play; stacks announce
// themselves after the pending total is updated.
func (g *Game) playToDiscard(p *models.Player, c models.Card, evType GameEventType) models.Card {
	played := mustPlay(p, c)
	g.DiscardPile = append(g.DiscardPile, played)
	if evType != EventStack {
		shown := played
		g.fireEvent(GameEvent{Type: evType, Player: p.ID, Card: &shown, Count: p.HandSize()})
	}

	if played.IsWild() {
		col := g.actorFor(p).ChooseColor(g.view(p))
		if col == models.ColorNone {
			col = models.Colors[0]
		}
		played = played.WithColor(col)
		g.DiscardPile[len(g.DiscardPile)-1] = played
		g.fireEvent(GameEvent{Type: EventColorChosen, Player: p.ID, Card: &played, Color: col})
	}
	return played
}

// playCard plays c and dispatches its effects. Emptying the hand ends the
// game at the end-of-turn check, so no effect is applied.
func (g *Game) playCard(p *models.Player, c models.Card, evType GameEventType) {
	played := g.playToDiscard(p, c, evType)
	if p.HandSize() == 0 {
		return
	}

	g.applyEffect(p, played)

	if played.Kind == models.KindNumber {
		switch played.Value {
		case 0:
			g.cycleHands()
		case 7:
			g.swapHands(p)
		}
	}
}

// endTurn runs the win, mercy and advance checks in order.
func (g *Game) endTurn(p *models.Player) bool {
	g.fireEvent(GameEvent{Type: EventTurnEnd, Player: p.ID, Count: g.turnDrawn, Total: g.maxHandSize()})
	// events above and below still belong to this turn
	defer func() { g.TurnCount++ }()

	if p.HandSize() == 0 {
		g.finish(p.ID)
		return true
	}

	if g.Rules.MercyRule && p.HandSize() > g.Rules.MercyThreshold {
		return g.eliminate(p)
	}

	g.CurrentPlayerIndex = g.step(g.CurrentPlayerIndex, g.Direction)
	return false
}

// eliminate removes p under the mercy rule and hands the turn to the next
// player in the current direction.
func (g *Game) eliminate(p *models.Player) bool {
	idx := g.indexOf(p.ID)
	next := g.step(g.CurrentPlayerIndex, g.Direction)
	if next == idx {
		next = g.step(next, g.Direction)
	}
	nextID := g.Players[next].ID

	g.fireEvent(GameEvent{Type: EventMercyElimination, Player: p.ID, Count: p.HandSize()})
	g.RemovePlayer(idx)
	g.Eliminated = append(g.Eliminated, p.ID)
	g.buryBeneathTop(p.Hand)
	p.Hand = nil

	if len(g.Players) == 1 {
		g.finish(g.Players[0].ID)
		return true
	}
	g.CurrentPlayerIndex = g.indexOf(nextID)
	return false
}

// RemovePlayer drops the player at idx from the active list and clamps the
// turn cursor so it keeps pointing at the same player, or wraps to the first
// seat if it ran off the end. The removed player keeps their hand.
func (g *Game) RemovePlayer(idx int) *models.Player {
	if idx < 0 || idx >= len(g.Players) {
		return nil
	}
	removed := g.Players[idx]
	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)

	if idx < g.CurrentPlayerIndex {
		g.CurrentPlayerIndex--
	}
	if g.CurrentPlayerIndex >= len(g.Players) {
		g.CurrentPlayerIndex = 0
	}
	return removed
}

// buryBeneathTop slides cards under the active card of the discard pile.
func (g *Game) buryBeneathTop(cards []models.Card) {
	if len(cards) == 0 {
		return
	}
	if len(g.DiscardPile) == 0 {
		g.DiscardPile = append(g.DiscardPile, cards...)
		return
	}
	top := g.DiscardPile[len(g.DiscardPile)-1]
	pile := append(g.DiscardPile[:len(g.DiscardPile)-1], cards...)
	g.DiscardPile = append(pile, top)
}

func (g *Game) finish(winnerID int) {
	g.GameOver = true
	g.WinnerID = winnerID
	g.fireEvent(GameEvent{Type: EventWin, Player: winnerID})
}

// recycleIfLow returns all but the top discard to the deck when the deck runs low.
func (g *Game) recycleIfLow() {
	if g.Deck.Len() >= g.Rules.RecycleThreshold || len(g.DiscardPile) <= 1 {
		return
	}
	top := g.DiscardPile[len(g.DiscardPile)-1]
	reclaimed := g.DiscardPile[:len(g.DiscardPile)-1]
	for _, c := range reclaimed {
		g.Deck.Add(c.Reset())
	}
	g.Deck.Shuffle(g.rng)

	g.DiscardPile = append(make([]models.Card, 0, models.DeckSize), top)
	g.fireEvent(GameEvent{Type: EventRecycle, Count: len(reclaimed)})
}

// Run plays turns until the game ends or the turn cap is reached. On the cap,
// the player holding the fewest cards is declared the winner.
func (g *Game) Run() Result {
	for !g.GameOver {
		if g.TurnCount >= g.Rules.MaxTurns || len(g.Players) < 2 {
			g.capGame()
			break
		}
		g.PlayTurn()
	}
	g.fireEvent(GameEvent{Type: EventGameEnd, Player: g.WinnerID, Count: g.TurnCount})
	return g.Result()
}

func (g *Game) capGame() {
	g.Capped = true
	if len(g.Players) == 0 {
		g.GameOver = true
		return
	}
	best := g.Players[0]
	for _, p := range g.Players[1:] {
		if p.HandSize() < best.HandSize() {
			best = p
		}
	}
	g.finish(best.ID)
}

// Standing is a player's final position.
type Standing struct {
	ID         int  `json:"id"`
	Cards      int  `json:"cards"`
	Eliminated bool `json:"eliminated"`
}

// Result summarizes a finished game.
type Result struct {
	GameID     uuid.UUID     `json:"gameId"`
	WinnerID   int           `json:"winnerId"`
	Turns      int           `json:"turns"`
	Capped     bool          `json:"capped"`
	Eliminated []int         `json:"eliminated,omitempty"`
	Standings  []Standing    `json:"standings"`
	WinnerHand []models.Card `json:"winnerHand,omitempty"` // winner's hand as dealt
}

// Result builds the summary of the game in its current state.
func (g *Game) Result() Result {
	standings := make([]Standing, 0, len(g.Players)+len(g.Eliminated))
	for _, p := range g.Players {
		standings = append(standings, Standing{ID: p.ID, Cards: p.HandSize()})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].ID == g.WinnerID {
			return true
		}
		if standings[j].ID == g.WinnerID {
			return false
		}
		return standings[i].Cards < standings[j].Cards
	})
	// later eliminations rank above earlier ones
	for i := len(g.Eliminated) - 1; i >= 0; i-- {
		standings = append(standings, Standing{ID: g.Eliminated[i], Eliminated: true})
	}

	return Result{
		GameID:     g.ID,
		WinnerID:   g.WinnerID,
		Turns:      g.TurnCount,
		Capped:     g.Capped,
		Eliminated: append([]int(nil), g.Eliminated...),
		Standings:  standings,
		WinnerHand: g.dealtHands[g.WinnerID],
	}
}

func (g *Game) indexOf(id int) int {
	for i, p := range g.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (g *Game) maxHandSize() int {
	n := 0
	for _, p := range g.Players {
		if p.HandSize() > n {
			n = p.HandSize()
		}
	}
	return n
}

// step moves idx by delta seats around the table.
func (g *Game) step(idx, delta int) int {
	return mod(idx+delta, len(g.Players))
}

// mustPlay removes c from p's hand. The engine only plays cards it has
// already found in the hand, so a miss is a bug.
func mustPlay(p *models.Player, c models.Card) models.Card {
	played, ok := p.Play(c)
	if !ok {
		panic(fmt.Sprintf("game: player %d does not hold %s", p.ID, c))
	}
	return played
}

// mustOffer panics if an Actor returned a card outside the offered set.
func mustOffer(offered []models.Card, c models.Card) {
	for _, o := range offered {
		if o.Same(c) {
			return
		}
	}
	panic(fmt.Sprintf("game: actor chose %s which was not offered", c))
}
