// internal/game/rules.go
package game

import "fmt"

const (
	DefaultMercyThreshold   = 25
	DefaultMaxTurns         = 100000
	DefaultRecycleThreshold = 5
)

// HouseRules defines the optional rules and safety limits of a game.
type HouseRules struct {
	MercyRule        bool `json:"mercyRule"`        // eliminate players whose hand grows past MercyThreshold
	MercyThreshold   int  `json:"mercyThreshold"`   // a hand strictly larger than this is eliminated
	MaxTurns         int  `json:"maxTurns"`         // turn cap; the game is scored by fewest cards when reached
	RecycleThreshold int  `json:"recycleThreshold"` // refill the deck from the discard pile below this many cards
}

// DefaultHouseRules returns the rules used by both the interactive and batch modes.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		MercyRule:        true,
		MercyThreshold:   DefaultMercyThreshold,
		MaxTurns:         DefaultMaxTurns,
		RecycleThreshold: DefaultRecycleThreshold,
	}
}

// Update will update the house rules with the new rules provided.
// If a rule is not set or defined, it will be ignored, and the old value will persist.
func (rules *HouseRules) Update(newRules map[string]interface{}) error {
	assignBool := func(field *bool, key string) error {
		if val, exists := newRules[key]; exists && val != nil {
			b, ok := val.(bool)
			if !ok {
				return fmt.Errorf("invalid type for %s", key)
			}
			*field = b
		}
		return nil
	}

	assignInt := func(field *int, key string, minVal int) error {
		if val, exists := newRules[key]; exists && val != nil {
			// JSON numbers decode as float64
			switch v := val.(type) {
			case float64:
				*field = int(v)
			case int:
				*field = v
			default:
				return fmt.Errorf("invalid type for %s", key)
			}
			if *field < minVal {
				return fmt.Errorf("%s must be at least %d", key, minVal)
			}
		}
		return nil
	}

	if err := assignBool(&rules.MercyRule, "mercyRule"); err != nil {
		return err
	}
	if err := assignInt(&rules.MercyThreshold, "mercyThreshold", 1); err != nil {
		return err
	}
	if err := assignInt(&rules.MaxTurns, "maxTurns", 1); err != nil {
		return err
	}
	if err := assignInt(&rules.RecycleThreshold, "recycleThreshold", 0); err != nil {
		return err
	}
	return nil
}

// ParseRules converts a map of rules to a HouseRules struct. It will ensure the types are valid.
func ParseRules(rules map[string]interface{}, current HouseRules) (HouseRules, error) {
	houseRules := current
	err := houseRules.Update(rules)
	return houseRules, err
}
