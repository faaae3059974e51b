// Package gems holds the gem vocabulary shared by every rules component: colors,
// per-player inventories, the 5x5 board and the geometric selection validator.
package gems

import (
	"fmt"
	"strings"
)

// Color identifies a gem color.
type Color uint8

const (
	Blue Color = iota
	White
	Green
	Black
	Red
	Pearl
	Gold

	// NumColors is the number of real colors; NoColor sits outside that range.
	NumColors = 7
)

// NoColor marks the absence of a color (empty cells, royal cards, unresolved jokers).
const NoColor Color = 0xFF

var colorNames = map[Color]string{
	Blue:  "blue",
	White: "white",
	Green: "green",
	Black: "black",
	Red:   "red",
	Pearl: "pearl",
	Gold:  "gold",
}

// BasicColors lists the five colors that cards can grant as bonuses.
var BasicColors = []Color{Blue, White, Green, Black, Red}

// AllColors lists every color in canonical order.
var AllColors = []Color{Blue, White, Green, Black, Red, Pearl, Gold}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	if c == NoColor {
		return ""
	}
	return fmt.Sprintf("COLOR_%d", int(c))
}

// Valid reports whether c is one of the seven real colors.
func (c Color) Valid() bool { return c < NumColors }

// IsBasic reports whether c is one of the five bonus colors.
func (c Color) IsBasic() bool { return c <= Red }

// ParseColor converts a color name into a Color.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return NoColor, nil
	}
	for c, name := range colorNames {
		if name == s {
			return c, nil
		}
	}
	return NoColor, fmt.Errorf("unknown gem color %q", s)
}

// MarshalText encodes the color by name.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a color name.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// UnmarshalYAML decodes a color name from a YAML scalar.
func (c *Color) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return c.UnmarshalText([]byte(s))
}

// Gem is a single gem instance. A zero ID means "no gem".
type Gem struct {
	ID    string `json:"id"`
	Color Color  `json:"color"`
}

// IsZero reports whether the gem slot is empty.
func (g Gem) IsZero() bool { return g.ID == "" }
