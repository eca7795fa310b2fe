package models

import "math/rand"

// DeckSize is the number of cards NewDeck produces.
const DeckSize = 168

// per-color multiplicities of colored cards
var coloredCounts = []struct {
	kind  Kind
	value Value
	n     int
}{
	{KindAction, ValueSkip, 3},
	{KindAction, ValueSkipAll, 2},
	{KindAction, ValueReverse, 3},
	{KindAction, ValueDraw2, 3},
	{KindAction, ValueDraw4, 2},
	{KindAction, ValueDiscardColor, 3},
}

var wildCounts = []struct {
	value Value
	n     int
}{
	{ValueReverseDraw4, 8},
	{ValueDraw6, 4},
	{ValueDraw10, 4},
	{ValueColorRoulette, 8},
}

// Deck is a stack of cards; the top is the end of the slice.
type Deck struct {
	Cards []Card `json:"cards"`
}

// NewDeck builds the unshuffled 168 card deck.
func NewDeck() *Deck {
	cards := make([]Card, 0, DeckSize)
	for _, col := range Colors {
		for n := 0; n <= 9; n++ {
			cards = append(cards, NumberCard(col, n), NumberCard(col, n))
		}
		for _, cc := range coloredCounts {
			for i := 0; i < cc.n; i++ {
				cards = append(cards, Card{Kind: cc.kind, Color: col, Value: cc.value})
			}
		}
	}
	for _, wc := range wildCounts {
		for i := 0; i < wc.n; i++ {
			cards = append(cards, WildCard(wc.value))
		}
	}
	return &Deck{Cards: cards}
}

// Shuffle permutes the deck uniformly (Fisher-Yates) using r.
func (d *Deck) Shuffle(r *rand.Rand) {
	r.Shuffle(len(d.Cards), func(i, j int) {
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	})
}

// Len returns the number of cards left.
func (d *Deck) Len() int { return len(d.Cards) }

// Draw removes up to count cards from the top. Fewer are returned when the
// deck runs out.
func (d *Deck) Draw(count int) []Card {
	if count <= 0 || len(d.Cards) == 0 {
		return nil
	}
	if count > len(d.Cards) {
		count = len(d.Cards)
	}
	start := len(d.Cards) - count
	drawn := make([]Card, count)
	// top of the stack is drawn first
	for i := 0; i < count; i++ {
		drawn[i] = d.Cards[len(d.Cards)-1-i]
	}
	d.Cards = d.Cards[:start]
	return drawn
}

// DrawOne pops the top card.
func (d *Deck) DrawOne() (Card, bool) {
	if len(d.Cards) == 0 {
		return Card{}, false
	}
	c := d.Cards[len(d.Cards)-1]
	d.Cards = d.Cards[:len(d.Cards)-1]
	return c, true
}

// Add places cards into the deck. Callers shuffle afterwards.
func (d *Deck) Add(cards ...Card) {
	d.Cards = append(d.Cards, cards...)
}
