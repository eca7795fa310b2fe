// internal/game/actor.go
package game

import "github.com/jason-s-yu/nomercy/internal/models"

// Seat is the public information about one active player.
type Seat struct {
	ID       int  `json:"id"`
	HandSize int  `json:"handSize"`
	Human    bool `json:"human"`
}

// TableView is what an Actor sees when asked for a decision. Hand aliases the
// acting player's hand and must not be modified.
type TableView struct {
	Turn        int
	Self        int
	Hand        []models.Card
	Top         models.Card
	ActiveColor models.Color
	Direction   int
	PendingDraw int
	PendingKind models.Value
	DeckSize    int
	Seats       []Seat
}

// Actor is the decision source for a seat. The engine validates nothing an
// Actor returns beyond presence in the offered set: returning a card that was
// not offered is a contract violation.
type Actor interface {
	// ChooseCard picks one of legal to play, or returns false to draw instead.
	ChooseCard(view *TableView, legal []models.Card) (models.Card, bool)
	// ChooseStack picks a penalty card to stack, or returns false to absorb the pending draw.
	ChooseStack(view *TableView, stackable []models.Card) (models.Card, bool)
	// ChooseColor resolves a played wild. view.Hand is the hand after the play.
	ChooseColor(view *TableView) models.Color
	// PlayDrawn decides whether a just-drawn legal card is played immediately.
	PlayDrawn(view *TableView, drawn models.Card) bool
	// ChooseSwapTarget names the player to exchange hands with after a 7, or declines.
	ChooseSwapTarget(view *TableView) (int, bool)
}

// AutoActor is the heuristic policy used by every non-human seat.
type AutoActor struct{}

func (AutoActor) ChooseCard(view *TableView, legal []models.Card) (models.Card, bool) {
	return FindBestCard(view.Hand, view.Top)
}

func (AutoActor) ChooseStack(view *TableView, stackable []models.Card) (models.Card, bool) {
	if len(stackable) == 0 {
		return models.Card{}, false
	}
	return stackable[0], true
}

func (AutoActor) ChooseColor(view *TableView) models.Color {
	return ChooseWildColor(view.Hand)
}

func (AutoActor) PlayDrawn(view *TableView, drawn models.Card) bool {
	return true
}

// ChooseSwapTarget picks the opponent holding the fewest cards, provided they
// hold strictly fewer than the acting player. Ties go to seat order.
func (AutoActor) ChooseSwapTarget(view *TableView) (int, bool) {
	own := len(view.Hand)
	target, fewest := 0, own
	for _, s := range view.Seats {
		if s.ID == view.Self {
			continue
		}
		if s.HandSize < fewest {
			target, fewest = s.ID, s.HandSize
		}
	}
	return target, target != 0
}
