package buffs

import "sort"

// Well-known state bag keys.
const (
	KeyDiscountColor    = "discountColor"
	KeyReplenishCount   = "replenishCount"
	KeyLastDiscardTurn  = "lastDiscardTurn"
	KeyReserveStackPaid = "reserveStackPaid"
	KeyPrivilegeGrants  = "privilegeGrants"
)

// State is a buff's per-assignment counter bag. It lives inside the game state so it
// replicates with everything else.
type State map[string]int

// Get returns the value of a key, zero when absent.
func (s State) Get(key string) int {
	return s[key]
}

// Has reports whether a key was ever set.
func (s State) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Set stores a value.
func (s State) Set(key string, value int) {
	s[key] = value
}

// Add increments a counter and returns the new value.
func (s State) Add(key string, amount int) int {
	s[key] += amount
	return s[key]
}

// Clone copies the bag; a nil bag clones to an empty one.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Keys returns the keys in sorted order.
func (s State) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
