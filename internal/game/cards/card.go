// Package cards describes development and royal cards: static templates loaded once
// from a data table, and the instances that circulate through decks, the market,
// reserves and tableaux.
package cards

import (
	"fmt"
	"strings"

	"github.com/gemduel/gemduel-go/internal/game/gems"
)

// Ability is a closed set of card ability tags.
type Ability string

const (
	AbilityAgain    Ability = "AGAIN"
	AbilitySteal    Ability = "STEAL"
	AbilityBonusGem Ability = "BONUS_GEM"
	AbilityScroll   Ability = "SCROLL"
)

// AbilityPriority is the fixed resolution order for card abilities.
var AbilityPriority = []Ability{AbilityAgain, AbilitySteal, AbilityBonusGem, AbilityScroll}

// ParseAbility normalises an ability tag.
func ParseAbility(s string) (Ability, error) {
	a := Ability(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AbilityPriority {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown card ability %q", s)
}

// UnmarshalText validates ability tags on decode.
func (a *Ability) UnmarshalText(text []byte) error {
	parsed, err := ParseAbility(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// UnmarshalYAML validates ability tags in data tables.
func (a *Ability) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return a.UnmarshalText([]byte(s))
}

// Kind distinguishes development cards from royal cards.
type Kind string

const (
	KindDevelopment Kind = "development"
	KindRoyal       Kind = "royal"
)

// Card is a card instance. Template fields are copied in so a GameState never needs the
// registry to evaluate a card it holds.
type Card struct {
	ID         string         `json:"id"`
	TemplateID string         `json:"templateId"`
	Kind       Kind           `json:"kind"`
	Level      int            `json:"level"`
	Cost       gems.Inventory `json:"cost"`
	Points     int            `json:"points"`
	Crowns     int            `json:"crowns"`
	Bonus      gems.Color     `json:"bonus"`
	BonusCount int            `json:"bonusCount"`
	Joker      bool           `json:"joker,omitempty"`
	Abilities  []Ability      `json:"abilities,omitempty"`
}

// IsZero reports whether the slot holding this card is empty.
func (c Card) IsZero() bool { return c.ID == "" }

// HasAbility reports whether the card carries the given ability tag.
func (c Card) HasAbility(a Ability) bool {
	for _, have := range c.Abilities {
		if have == a {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with c.
func (c Card) Clone() Card {
	out := c
	if c.Abilities != nil {
		out.Abilities = append([]Ability(nil), c.Abilities...)
	}
	return out
}

// CloneAll copies a card slice, preserving nil.
func CloneAll(in []Card) []Card {
	if in == nil {
		return nil
	}
	out := make([]Card, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
