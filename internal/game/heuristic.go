// internal/game/heuristic.go
package game

import (
	"math"

	"github.com/jason-s-yu/nomercy/internal/models"
)

// LegalCards returns the cards of hand playable on top, preserving hand order.
func LegalCards(hand []models.Card, top models.Card) []models.Card {
	var legal []models.Card
	for _, c := range hand {
		if models.IsLegalAgainst(c, top) {
			legal = append(legal, c)
		}
	}
	return legal
}

// FindBestCard scores every legal card of hand against top and returns the
// highest scoring one. The earliest card in hand order wins ties. ok is false
// when nothing is playable and the caller must draw.
func FindBestCard(hand []models.Card, top models.Card) (models.Card, bool) {
	legal := LegalCards(hand, top)
	if len(legal) == 0 {
		return models.Card{}, false
	}

	nonWild := 0
	for _, c := range legal {
		if !c.IsWild() {
			nonWild++
		}
	}

	best := legal[0]
	bestScore := math.Inf(-1)
	for _, c := range legal {
		s := scoreCard(c, top, nonWild, len(hand))
		if s > bestScore {
			best, bestScore = c, s
		}
	}
	return best, true
}

// scoreCard rates a single legal candidate.
func scoreCard(c, top models.Card, nonWild, handSize int) float64 {
	if c.IsWild() {
		score := 1.0
		if nonWild > 0 {
			score = 0.5
		}
		if c.Value == models.ValueColorRoulette {
			score -= 0.5
		}
		return score
	}

	score := 0.0
	if top.Resolved() && c.Color == top.Color {
		score += 10
	}
	if c.Value == top.Value {
		score += 5
	}

	switch c.Value {
	case models.ValueSkip:
		score += 3
	case models.ValueReverse, models.ValueDiscardColor:
		score += 2
	case models.ValueDraw2, models.ValueDraw4:
		if nonWild > 1 {
			score++
		} else {
			score += 3
		}
	case 0, 7:
		if handSize > 5 {
			score += 5
		} else {
			score += 2
		}
	}
	return score
}

// ChooseWildColor picks the most frequent color in hand. Ties and an empty
// hand fall back to the earliest color in models.Colors.
func ChooseWildColor(hand []models.Card) models.Color {
	var counts [5]int
	for _, c := range hand {
		counts[c.Color]++
	}
	best := models.Colors[0]
	for _, col := range models.Colors[1:] {
		if counts[col] > counts[best] {
			best = col
		}
	}
	return best
}
