package buffs

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultTable []byte

// Registry is an immutable set of buff templates. Runtime state never lives here.
type Registry struct {
	order     []string
	templates map[string]Template
}

// Load parses a YAML buff table.
func Load(r io.Reader) (*Registry, error) {
	var doc struct {
		Buffs []Template `yaml:"buffs"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode buff table: %w", err)
	}

	reg := &Registry{templates: make(map[string]Template, len(doc.Buffs))}
	for _, t := range doc.Buffs {
		if t.ID == "" {
			return nil, fmt.Errorf("buff without id")
		}
		if _, dup := reg.templates[t.ID]; dup {
			return nil, fmt.Errorf("duplicate buff %s", t.ID)
		}
		if _, err := ParseCategory(string(t.Category)); err != nil {
			return nil, fmt.Errorf("buff %s: %w", t.ID, err)
		}
		if t.Level < 1 || t.Level > 3 {
			return nil, fmt.Errorf("buff %s: level %d out of range", t.ID, t.Level)
		}
		if t.Effect.Active.Kind != ActiveNone && t.Effect.Active.Kind != ActivePeekDeck {
			return nil, fmt.Errorf("buff %s: unknown active effect %q", t.ID, t.Effect.Active.Kind)
		}
		reg.templates[t.ID] = t
		reg.order = append(reg.order, t.ID)
	}
	return reg, nil
}

// Default loads the built-in buff table.
func Default() (*Registry, error) {
	return Load(bytes.NewReader(defaultTable))
}

// Get returns a template by id.
func (r *Registry) Get(id string) (Template, bool) {
	if r == nil {
		return Template{}, false
	}
	t, ok := r.templates[id]
	return t, ok
}

// IDs returns every buff id in table order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// AtLevel returns the templates of one power level. A level of 0 keeps them all.
func (r *Registry) AtLevel(level int) *Registry {
	if level == 0 {
		return r
	}
	out := &Registry{templates: make(map[string]Template)}
	for _, id := range r.order {
		if t := r.templates[id]; t.Level == level {
			out.templates[id] = t
			out.order = append(out.order, id)
		}
	}
	return out
}

// ByCategory returns buff ids of one category in table order.
func (r *Registry) ByCategory(c Category) []string {
	var ids []string
	for _, id := range r.order {
		if r.templates[id].Category == c {
			ids = append(ids, id)
		}
	}
	return ids
}

// Except returns buff ids outside the given category in table order.
func (r *Registry) Except(c Category) []string {
	var ids []string
	for _, id := range r.order {
		if r.templates[id].Category != c {
			ids = append(ids, id)
		}
	}
	return ids
}
