// internal/game/special_actions.go
package game

import "github.com/jason-s-yu/nomercy/internal/models"

// applyEffect dispatches the effect of a card just played by p. The turn
// cursor still points at p when this runs.
func (g *Game) applyEffect(p *models.Player, c models.Card) {
	switch c.Value {
	case models.ValueSkip:
		skipped := g.Players[g.step(g.CurrentPlayerIndex, g.Direction)].ID
		g.CurrentPlayerIndex = g.step(g.CurrentPlayerIndex, g.Direction)
		g.fireEvent(GameEvent{Type: EventSkip, Player: p.ID, Target: skipped})

	case models.ValueSkipAll:
		// the end-of-turn advance brings the turn back to p
		g.CurrentPlayerIndex = g.step(g.CurrentPlayerIndex, -g.Direction)
		g.fireEvent(GameEvent{Type: EventSkipAll, Player: p.ID})

	case models.ValueReverse:
		g.Direction = -g.Direction
		g.fireEvent(GameEvent{Type: EventReverse, Player: p.ID, Count: g.Direction})

	case models.ValueDraw2, models.ValueDraw4, models.ValueDraw6, models.ValueDraw10:
		if g.PendingDraw == 0 {
			g.PendingDraw = c.Value.Penalty()
			g.PendingKind = c.Value
			g.fireEvent(GameEvent{Type: EventPendingSet, Player: p.ID, Card: &c, Count: g.PendingDraw})
		}

	case models.ValueDiscardColor:
		g.discardColor(p, c.Color)

	case models.ValueReverseDraw4:
		g.reverseDraw4(p)

	case models.ValueColorRoulette:
		g.colorRoulette(p, c.Color)
	}
}

// discardColor purges every card of col from p's hand. The purged cards go
// beneath the active card so the top of the pile is unchanged.
func (g *Game) discardColor(p *models.Player, col models.Color) {
	purged := p.RemoveColor(col)
	g.buryBeneathTop(purged)
	g.fireEvent(GameEvent{Type: EventDiscardColor, Player: p.ID, Count: len(purged), Color: col})
}

// reverseDraw4 makes the player preceding p in the current direction draw 4,
// then flips the direction.
func (g *Game) reverseDraw4(p *models.Player) {
	target := g.Players[g.step(g.CurrentPlayerIndex, -g.Direction)]
	drawn := target.Draw(g.Deck, 4)
	g.turnDrawn += len(drawn)
	g.Direction = -g.Direction
	g.fireEvent(GameEvent{Type: EventReverseDraw4, Player: p.ID, Target: target.ID, Count: len(drawn)})
}

// colorRoulette makes the next player draw until a card of col turns up or
// the deck runs dry.
func (g *Game) colorRoulette(p *models.Player, col models.Color) {
	target := g.Players[g.step(g.CurrentPlayerIndex, g.Direction)]
	n := 0
	for {
		c, ok := g.Deck.DrawOne()
		if !ok {
			break
		}
		target.Take(c)
		n++
		if c.Color == col {
			break
		}
	}
	g.turnDrawn += n
	g.fireEvent(GameEvent{Type: EventColorRoulette, Player: p.ID, Target: target.ID, Count: n, Color: col})
}

// cycleHands passes every hand one seat along the current direction: each
// player receives the hand of the player behind them.
func (g *Game) cycleHands() {
	n := len(g.Players)
	hands := make([][]models.Card, n)
	for i, p := range g.Players {
		hands[i] = p.Hand
	}
	for i, p := range g.Players {
		p.Hand = hands[mod(i-g.Direction, n)]
	}
	g.fireEvent(GameEvent{Type: EventHandsCycled, Count: g.Direction})
}

// swapHands lets p exchange hands with a chosen opponent.
func (g *Game) swapHands(p *models.Player) {
	targetID, ok := g.actorFor(p).ChooseSwapTarget(g.view(p))
	idx := g.indexOf(targetID)
	if !ok || targetID == p.ID || idx < 0 {
		g.fireEvent(GameEvent{Type: EventSwapDeclined, Player: p.ID})
		return
	}
	target := g.Players[idx]
	p.Hand, target.Hand = target.Hand, p.Hand
	g.fireEvent(GameEvent{Type: EventHandsSwapped, Player: p.ID, Target: target.ID})
}
