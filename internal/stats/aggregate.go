// internal/stats/aggregate.go
package stats

import (
	"sort"

	"github.com/jason-s-yu/nomercy/internal/game"
	"github.com/jason-s-yu/nomercy/internal/models"
)

// SpecialCards are the values tracked in SpecialCardCounts.
var SpecialCards = []models.Value{
	models.ValueDraw2, models.ValueDraw4, models.ValueDraw6, models.ValueDraw10,
	models.ValueReverseDraw4, models.ValueColorRoulette,
}

// OneTurnExample is the detailed record of a game decided on its first turn.
type OneTurnExample struct {
	GameNumber int64         `json:"game_number"`
	WinnerID   int           `json:"winner_id"`
	WinnerHand []models.Card `json:"winning_player_hand"`
	Log        []string      `json:"game_log"`
}

// Aggregate accumulates counters over many games. An Aggregate is not safe
// for concurrent use: each worker owns one and they are combined with Merge.
type Aggregate struct {
	MaxExamples int

	TotalGames  int64
	TotalTurns  int64
	CappedGames int64
	TurnCounts  map[int]int64
	WinsBySeat  map[int]int64

	CardPlayCounts    map[string]int64
	SpecialCardCounts map[string]int64
	NonNumbered       int64
	ActionCards       int64
	WildCards         int64

	TotalDraws          int64
	DrawEvents          int64
	CardsDrawnInTurns   int64
	MaxCardsDrawnInTurn int

	StackingEvents  int64
	StackedPenalty  int64
	PendingResolved int64

	Switches7 int64
	Cycles0   int64

	MercyEliminations int64
	MaxHandSize       int
	OneTurnGames      int64

	Examples []OneTurnExample

	// per-game scratch for example capture
	gameLog []string
}

// NewAggregate returns an empty aggregate keeping at most maxExamples one-turn examples per batch.
func NewAggregate(maxExamples int) *Aggregate {
	a := &Aggregate{
		MaxExamples:       maxExamples,
		TurnCounts:        make(map[int]int64),
		WinsBySeat:        make(map[int]int64),
		CardPlayCounts:    make(map[string]int64),
		SpecialCardCounts: make(map[string]int64, len(SpecialCards)),
	}
	for _, v := range SpecialCards {
		a.SpecialCardCounts[v.String()] = 0
	}
	return a
}

// tracking reports whether the current game's first turn is worth logging.
func (a *Aggregate) tracking() bool {
	return len(a.Examples) < a.MaxExamples
}

// Observe folds one game event into the counters. It is meant to be used
// directly as a game's BroadcastFn.
func (a *Aggregate) Observe(ev game.GameEvent) {
	if ev.Type == game.EventGameStart {
		a.gameLog = a.gameLog[:0]
	}
	if ev.Turn == 1 && a.tracking() {
		a.gameLog = append(a.gameLog, ev.String())
	}

	switch ev.Type {
	case game.EventCardPlayed, game.EventDrawnCardPlayed:
		a.countPlay(*ev.Card)
	case game.EventStack:
		a.countPlay(*ev.Card)
		a.StackingEvents++
		a.StackedPenalty += int64(ev.Count)
	case game.EventPenaltyDraw:
		a.PendingResolved += int64(ev.Total)
		a.countDraw(ev.Count)
	case game.EventCardDrawn, game.EventReverseDraw4, game.EventColorRoulette:
		a.countDraw(ev.Count)
	case game.EventHandsCycled:
		a.Cycles0++
	case game.EventHandsSwapped:
		a.Switches7++
	case game.EventMercyElimination:
		a.MercyEliminations++
	case game.EventTurnEnd:
		a.CardsDrawnInTurns += int64(ev.Count)
		if ev.Count > a.MaxCardsDrawnInTurn {
			a.MaxCardsDrawnInTurn = ev.Count
		}
		if ev.Total > a.MaxHandSize {
			a.MaxHandSize = ev.Total
		}
	}
}

func (a *Aggregate) countPlay(c models.Card) {
	a.CardPlayCounts[c.StatKey()]++
	if _, ok := a.SpecialCardCounts[c.Value.String()]; ok {
		a.SpecialCardCounts[c.Value.String()]++
	}
	switch c.Kind {
	case models.KindAction:
		a.NonNumbered++
		a.ActionCards++
	case models.KindWild:
		a.NonNumbered++
		a.WildCards++
	}
}

func (a *Aggregate) countDraw(n int) {
	if n <= 0 {
		return
	}
	a.TotalDraws += int64(n)
	a.DrawEvents++
}

// RecordGame folds a finished game into the totals. gameNumber is the
// 1-based position of the game in the whole run.
func (a *Aggregate) RecordGame(gameNumber int64, res game.Result) {
	a.TotalGames++
	a.TotalTurns += int64(res.Turns)
	a.TurnCounts[res.Turns]++
	a.WinsBySeat[res.WinnerID]++
	if res.Capped {
		a.CappedGames++
	}

	if res.Turns == 1 {
		a.OneTurnGames++
		if a.tracking() {
			a.Examples = append(a.Examples, OneTurnExample{
				GameNumber: gameNumber,
				WinnerID:   res.WinnerID,
				WinnerHand: res.WinnerHand,
				Log:        append([]string(nil), a.gameLog...),
			})
		}
	}
	a.gameLog = a.gameLog[:0]
}

// Merge adds other's counters into a. Examples are kept in game order and
// capped at MaxExamples.
func (a *Aggregate) Merge(other *Aggregate) {
	a.TotalGames += other.TotalGames
	a.TotalTurns += other.TotalTurns
	a.CappedGames += other.CappedGames
	addCounts(a.TurnCounts, other.TurnCounts)
	addCounts(a.WinsBySeat, other.WinsBySeat)
	addCounts(a.CardPlayCounts, other.CardPlayCounts)
	addCounts(a.SpecialCardCounts, other.SpecialCardCounts)
	a.NonNumbered += other.NonNumbered
	a.ActionCards += other.ActionCards
	a.WildCards += other.WildCards

	a.TotalDraws += other.TotalDraws
	a.DrawEvents += other.DrawEvents
	a.CardsDrawnInTurns += other.CardsDrawnInTurns
	a.MaxCardsDrawnInTurn = max(a.MaxCardsDrawnInTurn, other.MaxCardsDrawnInTurn)

	a.StackingEvents += other.StackingEvents
	a.StackedPenalty += other.StackedPenalty
	a.PendingResolved += other.PendingResolved

	a.Switches7 += other.Switches7
	a.Cycles0 += other.Cycles0

	a.MercyEliminations += other.MercyEliminations
	a.MaxHandSize = max(a.MaxHandSize, other.MaxHandSize)
	a.OneTurnGames += other.OneTurnGames

	a.Examples = append(a.Examples, other.Examples...)
	sort.SliceStable(a.Examples, func(i, j int) bool {
		return a.Examples[i].GameNumber < a.Examples[j].GameNumber
	})
	if len(a.Examples) > a.MaxExamples {
		a.Examples = a.Examples[:a.MaxExamples]
	}
}

// ResetBatch drops the batch-scoped example buffer. Counters are cumulative
// over the whole run and are kept.
func (a *Aggregate) ResetBatch() {
	a.Examples = nil
	a.gameLog = a.gameLog[:0]
}

func addCounts[K comparable](dst, src map[K]int64) {
	for k, v := range src {
		dst[k] += v
	}
}
