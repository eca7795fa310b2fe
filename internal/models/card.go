// internal/models/card.go
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind separates number, colored action and colorless wild cards.
type Kind uint8

const (
	KindNumber Kind = iota
	KindAction
	KindWild
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindAction:
		return "action"
	case KindWild:
		return "wild"
	}
	return "unknown"
}

// Color is the suit of a card. ColorNone marks an unresolved wild.
type Color uint8

const (
	ColorNone Color = iota
	ColorRed
	ColorBlue
	ColorGreen
	ColorYellow
)

// Colors lists the playable colors in enumeration order; ties in color
// selection resolve to the earliest entry.
var Colors = []Color{ColorRed, ColorBlue, ColorGreen, ColorYellow}

func (c Color) String() string {
	switch c {
	case ColorRed:
		return "Red"
	case ColorBlue:
		return "Blue"
	case ColorGreen:
		return "Green"
	case ColorYellow:
		return "Yellow"
	}
	return "None"
}

// ParseColor accepts a full color name or its first letter, case-insensitive.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r", "red":
		return ColorRed, nil
	case "b", "blue":
		return ColorBlue, nil
	case "g", "green":
		return ColorGreen, nil
	case "y", "yellow":
		return ColorYellow, nil
	}
	return ColorNone, fmt.Errorf("unknown color %q", s)
}

// Value is the face of a card. Values 0-9 are numbers; the rest are symbols.
type Value uint8

const (
	ValueSkip Value = iota + 10
	ValueSkipAll
	ValueReverse
	ValueDraw2
	ValueDraw4
	ValueDiscardColor
	ValueReverseDraw4
	ValueDraw6
	ValueDraw10
	ValueColorRoulette

	// ValueNone marks the absence of a pending penalty kind.
	ValueNone Value = 0xFF
)

var valueNames = map[Value]string{
	ValueSkip:          "Skip",
	ValueSkipAll:       "SkipAll",
	ValueReverse:       "Reverse",
	ValueDraw2:         "Draw2",
	ValueDraw4:         "Draw4",
	ValueDiscardColor:  "DiscardColor",
	ValueReverseDraw4:  "ReverseDraw4",
	ValueDraw6:         "Draw6",
	ValueDraw10:        "Draw10",
	ValueColorRoulette: "ColorRoulette",
	ValueNone:          "None",
}

// IsNumber reports whether v is one of the number faces 0-9.
func (v Value) IsNumber() bool { return v <= 9 }

func (v Value) String() string {
	if v.IsNumber() {
		return strconv.Itoa(int(v))
	}
	if name, ok := valueNames[v]; ok {
		return name
	}
	return "?"
}

// Penalty returns the draw penalty a card of this value carries, or 0.
func (v Value) Penalty() int {
	switch v {
	case ValueDraw2:
		return 2
	case ValueDraw4:
		return 4
	case ValueDraw6:
		return 6
	case ValueDraw10:
		return 10
	}
	return 0
}

// Card is a playable unit. Cards are values: identity is (Kind, Color, Value).
type Card struct {
	Kind  Kind  `json:"kind"`
	Color Color `json:"color"`
	Value Value `json:"value"`
}

// NumberCard builds a colored number card.
func NumberCard(c Color, n int) Card {
	return Card{Kind: KindNumber, Color: c, Value: Value(n)}
}

// ActionCard builds a colored action card.
func ActionCard(c Color, v Value) Card {
	return Card{Kind: KindAction, Color: c, Value: v}
}

// WildCard builds an unresolved colorless wild.
func WildCard(v Value) Card {
	return Card{Kind: KindWild, Color: ColorNone, Value: v}
}

func (c Card) IsWild() bool { return c.Kind == KindWild }

// Resolved reports whether the card carries a concrete color.
func (c Card) Resolved() bool { return c.Color != ColorNone }

// Same compares card identity. Wilds compare by value only so a resolved wild
// still matches the unresolved copy held in a hand.
func (c Card) Same(o Card) bool {
	if c.Kind != o.Kind || c.Value != o.Value {
		return false
	}
	return c.Kind == KindWild || c.Color == o.Color
}

// WithColor returns a copy of the card resolved to col.
func (c Card) WithColor(col Color) Card {
	c.Color = col
	return c
}

// Reset clears the resolved color of a wild. Colored cards are returned unchanged.
func (c Card) Reset() Card {
	if c.Kind == KindWild {
		c.Color = ColorNone
	}
	return c
}

// StatKey is the label under which plays of this card are counted.
func (c Card) StatKey() string {
	if c.Kind == KindWild {
		return c.Value.String()
	}
	return c.Color.String() + " " + c.Value.String()
}

func (c Card) String() string {
	if c.Kind == KindWild {
		if c.Resolved() {
			return fmt.Sprintf("%s (%s)", c.Value, c.Color)
		}
		return c.Value.String()
	}
	return fmt.Sprintf("%s %s", c.Color, c.Value)
}

// cardJSON mirrors Card with readable names for wire payloads.
type cardJSON struct {
	Kind  string `json:"kind"`
	Color string `json:"color,omitempty"`
	Value string `json:"value"`
}

// MarshalJSON renders names rather than enum ordinals.
func (c Card) MarshalJSON() ([]byte, error) {
	out := cardJSON{Kind: c.Kind.String(), Value: c.Value.String()}
	if c.Resolved() {
		out.Color = c.Color.String()
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the form produced by MarshalJSON.
func (c *Card) UnmarshalJSON(data []byte) error {
	var in cardJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	switch in.Kind {
	case "number":
		c.Kind = KindNumber
	case "action":
		c.Kind = KindAction
	case "wild":
		c.Kind = KindWild
	default:
		return fmt.Errorf("unknown card kind %q", in.Kind)
	}

	c.Color = ColorNone
	if in.Color != "" {
		col, err := ParseColor(in.Color)
		if err != nil {
			return err
		}
		c.Color = col
	}

	v, err := parseValue(in.Value)
	if err != nil {
		return err
	}
	c.Value = v
	return nil
}

func parseValue(s string) (Value, error) {
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 9 {
		return Value(n), nil
	}
	for v, name := range valueNames {
		if name == s {
			return v, nil
		}
	}
	return ValueNone, fmt.Errorf("unknown card value %q", s)
}
