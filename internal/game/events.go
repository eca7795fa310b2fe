// internal/game/events.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/nomercy/internal/models"
)

// GameEventType is an enum-like type for broadcasting game actions.
type GameEventType string

const (
	EventGameStart        GameEventType = "game_start"
	EventTurnStart        GameEventType = "turn_start"
	EventCardPlayed       GameEventType = "card_played"
	EventDrawnCardPlayed  GameEventType = "drawn_card_played"
	EventColorChosen      GameEventType = "color_chosen"
	EventStack            GameEventType = "stack"
	EventPenaltyDraw      GameEventType = "penalty_draw"
	EventCardDrawn        GameEventType = "card_drawn"
	EventSkip             GameEventType = "skip"
	EventSkipAll          GameEventType = "skip_all"
	EventReverse          GameEventType = "reverse"
	EventPendingSet       GameEventType = "pending_set"
	EventDiscardColor     GameEventType = "discard_color"
	EventReverseDraw4     GameEventType = "reverse_draw4"
	EventColorRoulette    GameEventType = "color_roulette"
	EventHandsCycled      GameEventType = "hands_cycled"
	EventHandsSwapped     GameEventType = "hands_swapped"
	EventSwapDeclined     GameEventType = "swap_declined"
	EventRecycle          GameEventType = "recycle"
	EventMercyElimination GameEventType = "mercy_elimination"
	EventWin              GameEventType = "win"
	EventTurnEnd          GameEventType = "turn_end"
	EventGameEnd          GameEventType = "game_end"
)

// GameEvent holds data about something that happened during a turn. Fields
// not relevant to a given type are left zero.
//
//   - Count: cards drawn, discarded or penalty added, depending on Type
//   - Total: pending total after a stack/penalty, largest hand on turn_end
type GameEvent struct {
	Type   GameEventType `json:"type"`
	Turn   int           `json:"turn"`
	Player int           `json:"player,omitempty"`
	Target int           `json:"target,omitempty"`
	Card   *models.Card  `json:"card,omitempty"`
	Count  int           `json:"count,omitempty"`
	Total  int           `json:"total,omitempty"`
	Color  models.Color  `json:"-"`
}

// String renders the event as a log line.
func (ev GameEvent) String() string {
	card := ""
	if ev.Card != nil {
		card = ev.Card.String()
	}
	switch ev.Type {
	case EventGameStart:
		return fmt.Sprintf("Game started with %d players, starting card: %s", ev.Count, card)
	case EventTurnStart:
		return fmt.Sprintf("[TURN %d] Player %d's turn, top card: %s", ev.Turn, ev.Player, card)
	case EventCardPlayed:
		return fmt.Sprintf("Player %d played %s (%d cards left)", ev.Player, card, ev.Count)
	case EventDrawnCardPlayed:
		return fmt.Sprintf("Player %d played the drawn card %s (%d cards left)", ev.Player, card, ev.Count)
	case EventColorChosen:
		return fmt.Sprintf("Player %d chose %s", ev.Player, ev.Color)
	case EventStack:
		return fmt.Sprintf("Player %d stacks with %s, new pending draw: %d", ev.Player, card, ev.Total)
	case EventPenaltyDraw:
		return fmt.Sprintf("Player %d cannot stack and draws %d of %d pending cards", ev.Player, ev.Count, ev.Total)
	case EventCardDrawn:
		if ev.Count == 0 {
			return fmt.Sprintf("Player %d had no valid card and the deck is empty", ev.Player)
		}
		return fmt.Sprintf("Player %d had no valid card and drew 1 card", ev.Player)
	case EventSkip:
		return fmt.Sprintf("Player %d was skipped", ev.Target)
	case EventSkipAll:
		return fmt.Sprintf("SkipAll played, Player %d goes again", ev.Player)
	case EventReverse:
		return fmt.Sprintf("Direction reversed, now going %s", directionName(ev.Count))
	case EventPendingSet:
		return fmt.Sprintf("%s played, pending draw set to %d", card, ev.Count)
	case EventDiscardColor:
		return fmt.Sprintf("Player %d discarded %d %s cards", ev.Player, ev.Count, ev.Color)
	case EventReverseDraw4:
		return fmt.Sprintf("Player %d draws %d cards due to ReverseDraw4, direction reversed", ev.Target, ev.Count)
	case EventColorRoulette:
		return fmt.Sprintf("Player %d drew %d cards looking for %s", ev.Target, ev.Count, ev.Color)
	case EventHandsCycled:
		return "All hands have been cycled"
	case EventHandsSwapped:
		return fmt.Sprintf("Player %d switched hands with Player %d", ev.Player, ev.Target)
	case EventSwapDeclined:
		return fmt.Sprintf("Player %d chose not to switch hands", ev.Player)
	case EventRecycle:
		return fmt.Sprintf("Shuffled %d discarded cards back into the deck", ev.Count)
	case EventMercyElimination:
		return fmt.Sprintf("Player %d is eliminated with %d cards", ev.Player, ev.Count)
	case EventWin:
		return fmt.Sprintf("Player %d wins", ev.Player)
	case EventTurnEnd:
		return fmt.Sprintf("Turn %d ended, %d cards drawn", ev.Turn, ev.Count)
	case EventGameEnd:
		return fmt.Sprintf("Game over after %d turns, winner: Player %d", ev.Count, ev.Player)
	}
	return string(ev.Type)
}

func directionName(dir int) string {
	if dir < 0 {
		return "backward"
	}
	return "forward"
}
