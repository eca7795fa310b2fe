// internal/stats/record.go
package stats

import (
	"maps"
	"sort"

	"github.com/google/uuid"
)

// BatchRecord is the persisted snapshot of a run after a batch completes.
// JSON keys match the uno_stats_batch_N.json files.
type BatchRecord struct {
	RunID       uuid.UUID `json:"run_id"`
	BatchNumber int       `json:"batch_number"`
	BatchGames  int64     `json:"batch_games"`
	Simulations int64     `json:"simulations,omitempty"` // games planned for the whole run

	TotalGames        int64            `json:"total_games"`
	TotalTurns        int64            `json:"total_turns"`
	AvgTurns          float64          `json:"avg_turns"`
	CardPlayCounts    map[string]int64 `json:"card_play_counts"`
	SpecialCardCounts map[string]int64 `json:"special_card_counts"`

	Stacking      StackingMetrics      `json:"stacking_metrics"`
	Draw          DrawMetrics          `json:"draw_metrics"`
	HandSwitching HandSwitchingMetrics `json:"hand_switching_metrics"`
	Mercy         MercyMetrics         `json:"mercy_metrics"`
	Additional    AdditionalMetrics    `json:"additional_metrics"`

	TurnCounts      map[int]int64    `json:"turn_counts"`
	WinsBySeat      map[int]int64    `json:"wins_by_seat"`
	OneTurnExamples []OneTurnExample `json:"one_turn_examples,omitempty"`
}

type StackingMetrics struct {
	TotalStackingEvents      int64 `json:"total_stacking_events"`
	TotalStackedPenalty      int64 `json:"total_stacked_penalty"`
	TotalPendingDrawResolved int64 `json:"total_pending_draw_resolved"`
}

type DrawMetrics struct {
	TotalDraws          int64   `json:"total_draws"`
	DrawEvents          int64   `json:"draw_events"`
	MaxCardsDrawnInTurn int     `json:"max_cards_drawn_in_turn"`
	AvgDrawsPerTurn     float64 `json:"avg_draws_per_turn"`
}

type HandSwitchingMetrics struct {
	TotalSwitchesOn7 int64 `json:"total_switches_on_7"`
	TotalCyclesOn0   int64 `json:"total_cycles_on_0"`
}

type MercyMetrics struct {
	TotalMercyEliminations int64   `json:"total_mercy_eliminations"`
	AvgMercyLosses         float64 `json:"avg_mercy_losses"`
}

type AdditionalMetrics struct {
	TotalNonNumberedCards int64   `json:"total_non_numbered_cards"`
	ActionCardCount       int64   `json:"action_card_count"`
	WildCardCount         int64   `json:"wild_card_count"`
	NonNumberedRatio      float64 `json:"non_numbered_ratio"`
	MaxHandSizeEver       int     `json:"max_hand_size_ever"`
	OneTurnGameCount      int64   `json:"one_round_game_count"`
	CappedGameCount       int64   `json:"capped_game_count"`
}

// Record snapshots the aggregate for batch number batch of run. The record
// shares no memory with a.
func (a *Aggregate) Record(runID uuid.UUID, batch int, batchGames int64) *BatchRecord {
	var plays int64
	for _, n := range a.CardPlayCounts {
		plays += n
	}

	rec := &BatchRecord{
		RunID:             runID,
		BatchNumber:       batch,
		BatchGames:        batchGames,
		TotalGames:        a.TotalGames,
		TotalTurns:        a.TotalTurns,
		AvgTurns:          ratio(a.TotalTurns, a.TotalGames),
		CardPlayCounts:    maps.Clone(a.CardPlayCounts),
		SpecialCardCounts: maps.Clone(a.SpecialCardCounts),
		Stacking: StackingMetrics{
			TotalStackingEvents:      a.StackingEvents,
			TotalStackedPenalty:      a.StackedPenalty,
			TotalPendingDrawResolved: a.PendingResolved,
		},
		Draw: DrawMetrics{
			TotalDraws:          a.TotalDraws,
			DrawEvents:          a.DrawEvents,
			MaxCardsDrawnInTurn: a.MaxCardsDrawnInTurn,
			AvgDrawsPerTurn:     ratio(a.CardsDrawnInTurns, a.TotalTurns),
		},
		HandSwitching: HandSwitchingMetrics{
			TotalSwitchesOn7: a.Switches7,
			TotalCyclesOn0:   a.Cycles0,
		},
		Mercy: MercyMetrics{
			TotalMercyEliminations: a.MercyEliminations,
			AvgMercyLosses:         ratio(a.MercyEliminations, a.TotalGames),
		},
		Additional: AdditionalMetrics{
			TotalNonNumberedCards: a.NonNumbered,
			ActionCardCount:       a.ActionCards,
			WildCardCount:         a.WildCards,
			NonNumberedRatio:      ratio(a.NonNumbered*100, plays),
			MaxHandSizeEver:       a.MaxHandSize,
			OneTurnGameCount:      a.OneTurnGames,
			CappedGameCount:       a.CappedGames,
		},
		TurnCounts: maps.Clone(a.TurnCounts),
		WinsBySeat: maps.Clone(a.WinsBySeat),
	}
	for _, ex := range a.Examples {
		ex.WinnerHand = append(ex.WinnerHand[:0:0], ex.WinnerHand...)
		ex.Log = append(ex.Log[:0:0], ex.Log...)
		rec.OneTurnExamples = append(rec.OneTurnExamples, ex)
	}
	return rec
}

// Complete reports whether the run this record belongs to has played every planned game.
func (r *BatchRecord) Complete() bool {
	return r.Simulations > 0 && r.TotalGames >= r.Simulations
}

func ratio(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// CardCount pairs a card label with its play count.
type CardCount struct {
	Card  string
	Count int64
}

// TopCards returns the n most played cards, most played first. Equal counts
// are ordered by label so output is stable.
func (r *BatchRecord) TopCards(n int) []CardCount {
	out := make([]CardCount, 0, len(r.CardPlayCounts))
	for k, v := range r.CardPlayCounts {
		out = append(out, CardCount{Card: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Card < out[j].Card
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// LeastPlayed returns the card played the fewest times.
func (r *BatchRecord) LeastPlayed() (CardCount, bool) {
	all := r.TopCards(-1)
	if len(all) == 0 {
		return CardCount{}, false
	}
	return all[len(all)-1], true
}

// GameLengths returns the shortest and longest game lengths seen.
func (r *BatchRecord) GameLengths() (shortest, longest int) {
	first := true
	for turns := range r.TurnCounts {
		if first || turns < shortest {
			shortest = turns
		}
		if first || turns > longest {
			longest = turns
		}
		first = false
	}
	return shortest, longest
}
