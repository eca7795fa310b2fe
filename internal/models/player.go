package models

// Player is a seat at the table. The hand is exclusively owned by the player
// except when the cycle and swap effects reassign hands wholesale.
type Player struct {
	ID    int    `json:"id"`
	Human bool   `json:"human"`
	Hand  []Card `json:"hand"`
}

// NewPlayer creates a player with an empty hand.
func NewPlayer(id int, human bool) *Player {
	return &Player{ID: id, Human: human, Hand: make([]Card, 0, 16)}
}

// Draw moves up to count cards from the deck into the hand and returns them.
// A short deck yields fewer cards; this is not an error.
func (p *Player) Draw(d *Deck, count int) []Card {
	drawn := d.Draw(count)
	p.Hand = append(p.Hand, drawn...)
	return drawn
}

// Take appends a single card to the hand.
func (p *Player) Take(c Card) {
	p.Hand = append(p.Hand, c)
}

// Play removes the first hand entry matching c and returns it. ok is false
// when no such card is held, which signals a caller bug.
func (p *Player) Play(c Card) (Card, bool) {
	for i, h := range p.Hand {
		if h.Same(c) {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return h, true
		}
	}
	return Card{}, false
}

// Has reports whether the hand holds a card matching c.
func (p *Player) Has(c Card) bool {
	for _, h := range p.Hand {
		if h.Same(c) {
			return true
		}
	}
	return false
}

// RemoveColor strips every card of color col from the hand and returns them.
func (p *Player) RemoveColor(col Color) []Card {
	kept := p.Hand[:0]
	var removed []Card
	for _, h := range p.Hand {
		if h.Color == col {
			removed = append(removed, h)
			continue
		}
		kept = append(kept, h)
	}
	p.Hand = kept
	return removed
}

// HandSize returns the number of cards held.
func (p *Player) HandSize() int { return len(p.Hand) }

// HandCopy returns a snapshot of the hand safe to hand to collaborators.
func (p *Player) HandCopy() []Card {
	out := make([]Card, len(p.Hand))
	copy(out, p.Hand)
	return out
}

// IsLegalAgainst reports whether c may be played on top. Wilds are always
// legal, an unresolved wild on top accepts anything, otherwise color or value
// must match.
func IsLegalAgainst(c, top Card) bool {
	if c.IsWild() {
		return true
	}
	if !top.Resolved() {
		return true
	}
	return c.Color == top.Color || c.Value == top.Value
}
