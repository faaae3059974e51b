package gems

import (
	"encoding/json"
	"fmt"
)

// Inventory counts gems per color. It is a value type: copies never alias.
type Inventory [NumColors]int

// Get returns the count for a color; invalid colors count as zero.
func (inv Inventory) Get(c Color) int {
	if !c.Valid() {
		return 0
	}
	return inv[c]
}

// Add adds amount gems of a color. Negative amounts are ignored.
func (inv *Inventory) Add(c Color, amount int) {
	if !c.Valid() || amount <= 0 {
		return
	}
	inv[c] += amount
}

// Spend removes amount gems of a color if available.
// Returns false and leaves the inventory unchanged otherwise.
func (inv *Inventory) Spend(c Color, amount int) bool {
	if !c.Valid() || amount < 0 {
		return false
	}
	if inv[c] < amount {
		return false
	}
	inv[c] -= amount
	return true
}

// Total returns the number of gems across all colors.
func (inv Inventory) Total() int {
	total := 0
	for _, n := range inv {
		total += n
	}
	return total
}

// IsEmpty reports whether no gems are held.
func (inv Inventory) IsEmpty() bool { return inv.Total() == 0 }

// Of builds an inventory from color/count pairs.
func Of(counts map[Color]int) Inventory {
	var inv Inventory
	for c, n := range counts {
		inv.Add(c, n)
	}
	return inv
}

// MarshalJSON encodes the inventory as an object keyed by color name, omitting zeros.
func (inv Inventory) MarshalJSON() ([]byte, error) {
	out := make(map[string]int, NumColors)
	for _, c := range AllColors {
		if inv[c] != 0 {
			out[c.String()] = inv[c]
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an object keyed by color name.
func (inv *Inventory) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return inv.fromMap(raw)
}

// UnmarshalYAML decodes a mapping keyed by color name.
func (inv *Inventory) UnmarshalYAML(unmarshal func(any) error) error {
	var raw map[string]int
	if err := unmarshal(&raw); err != nil {
		return err
	}
	return inv.fromMap(raw)
}

func (inv *Inventory) fromMap(raw map[string]int) error {
	*inv = Inventory{}
	for name, n := range raw {
		c, err := ParseColor(name)
		if err != nil {
			return err
		}
		if !c.Valid() {
			return fmt.Errorf("inventory key %q is not a gem color", name)
		}
		if n < 0 {
			return fmt.Errorf("negative count %d for %s", n, name)
		}
		inv[c] = n
	}
	return nil
}
