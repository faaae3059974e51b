package cards

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"

	"github.com/gemduel/gemduel-go/internal/game/gems"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultTable []byte

// Template is the static description of a card as it appears in a data table.
type Template struct {
	ID         string         `yaml:"id"`
	Level      int            `yaml:"level"`
	Cost       gems.Inventory `yaml:"cost"`
	Points     int            `yaml:"points"`
	Crowns     int            `yaml:"crowns"`
	Bonus      string         `yaml:"bonus"`
	BonusCount int            `yaml:"bonusCount"`
	Abilities  []Ability      `yaml:"abilities"`
	Copies     int            `yaml:"copies"`
}

type table struct {
	Cards  []Template `yaml:"cards"`
	Royals []Template `yaml:"royals"`
}

// Registry is an immutable lookup of card templates, loaded once.
type Registry struct {
	templates map[string]Template
	kinds     map[string]Kind
	byLevel   map[int][]string
	royals    []string
}

// LoadRegistry parses a YAML card table.
func LoadRegistry(r io.Reader) (*Registry, error) {
	var t table
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode card table: %w", err)
	}

	reg := &Registry{
		templates: make(map[string]Template),
		kinds:     make(map[string]Kind),
		byLevel:   make(map[int][]string),
	}
	for _, tpl := range t.Cards {
		if tpl.Level < 1 || tpl.Level > 3 {
			return nil, fmt.Errorf("card %s: level %d out of range", tpl.ID, tpl.Level)
		}
		if tpl.Bonus != "joker" && tpl.Bonus != "" {
			c, err := gems.ParseColor(tpl.Bonus)
			if err != nil {
				return nil, fmt.Errorf("card %s: %w", tpl.ID, err)
			}
			if !c.IsBasic() {
				return nil, fmt.Errorf("card %s: bonus must be a basic color, got %s", tpl.ID, c)
			}
		}
		if err := reg.add(tpl, KindDevelopment); err != nil {
			return nil, err
		}
		reg.byLevel[tpl.Level] = append(reg.byLevel[tpl.Level], tpl.ID)
	}
	for _, tpl := range t.Royals {
		if err := reg.add(tpl, KindRoyal); err != nil {
			return nil, err
		}
		reg.royals = append(reg.royals, tpl.ID)
	}
	return reg, nil
}

// DefaultRegistry loads the built-in card table.
func DefaultRegistry() (*Registry, error) {
	return LoadRegistry(bytes.NewReader(defaultTable))
}

func (r *Registry) add(tpl Template, kind Kind) error {
	if tpl.ID == "" {
		return fmt.Errorf("card template without id")
	}
	if _, dup := r.templates[tpl.ID]; dup {
		return fmt.Errorf("duplicate card template %s", tpl.ID)
	}
	if tpl.Copies <= 0 {
		tpl.Copies = 1
	}
	if tpl.Bonus != "" && tpl.BonusCount == 0 {
		tpl.BonusCount = 1
	}
	r.templates[tpl.ID] = tpl
	r.kinds[tpl.ID] = kind
	return nil
}

// Template returns a template by id.
func (r *Registry) Template(id string) (Template, bool) {
	tpl, ok := r.templates[id]
	return tpl, ok
}

// LevelTemplates returns the template ids of a level in table order.
func (r *Registry) LevelTemplates(level int) []string {
	return append([]string(nil), r.byLevel[level]...)
}

// RoyalTemplates returns the royal template ids in table order.
func (r *Registry) RoyalTemplates() []string {
	return append([]string(nil), r.royals...)
}

// TemplateIDs returns every template id, sorted.
func (r *Registry) TemplateIDs() []string {
	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Instantiate creates a card instance with the given unique id.
func (r *Registry) Instantiate(templateID, instanceID string) (Card, error) {
	tpl, ok := r.templates[templateID]
	if !ok {
		return Card{}, fmt.Errorf("unknown card template %s", templateID)
	}
	card := Card{
		ID:         instanceID,
		TemplateID: tpl.ID,
		Kind:       r.kinds[tpl.ID],
		Level:      tpl.Level,
		Cost:       tpl.Cost,
		Points:     tpl.Points,
		Crowns:     tpl.Crowns,
		Bonus:      gems.NoColor,
		Abilities:  append([]Ability(nil), tpl.Abilities...),
	}
	switch tpl.Bonus {
	case "":
	case "joker":
		card.Joker = true
		card.BonusCount = tpl.BonusCount
	default:
		c, err := gems.ParseColor(tpl.Bonus)
		if err != nil {
			return Card{}, err
		}
		card.Bonus = c
		card.BonusCount = tpl.BonusCount
	}
	return card, nil
}

// Copies returns how many instances of a template a fresh deck contains.
func (r *Registry) Copies(templateID string) int {
	return r.templates[templateID].Copies
}
