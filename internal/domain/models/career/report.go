package career

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/invopop/jsonschema"
)

// Report is the structured career profile derived from a transcript.
// It is immutable after generation except for TargetRoles.
type Report struct {
	Archetype   string       `json:"archetype" jsonschema_description:"A creative, 2-3 word title for their career personality"`
	Skills      []string     `json:"skills" jsonschema:"minItems=3,maxItems=5" jsonschema_description:"An array of 3-5 hard or soft skills"`
	RPGStats    []RPGStat    `json:"rpg_stats" jsonschema:"minItems=5,maxItems=6" jsonschema_description:"An array of 5-6 RPG-style attributes"`
	Superpowers []Superpower `json:"superpowers" jsonschema:"minItems=3,maxItems=3" jsonschema_description:"An array of 3 unique, deep strengths with potential roles"`
	Summary     string       `json:"summary" jsonschema_description:"A 2-3 sentence psychological summary"`
	TargetRoles []string     `json:"target_roles,omitempty" jsonschema:"-"`
}

// RoleCandidates lists the distinct potential roles across all superpowers,
// in report order.
func (r *Report) RoleCandidates() []string {
	seen := make(map[string]bool)
	var roles []string
	for _, sp := range r.Superpowers {
		for _, role := range sp.PotentialRoles {
			if role == "" || seen[role] {
				continue
			}
			seen[role] = true
			roles = append(roles, role)
		}
	}
	return roles
}

// SuperpowerNames returns the display name of every superpower
func (r *Report) SuperpowerNames() []string {
	names := make([]string, 0, len(r.Superpowers))
	for _, sp := range r.Superpowers {
		names = append(names, sp.Name)
	}
	return names
}

// RPGStat is a named attribute scored 1-100
type RPGStat struct {
	Name  string  `json:"name"`
	Value float64 `json:"value" jsonschema:"minimum=1,maximum=100"`
}

// Clamped returns the value rounded and clamped to [1,100]. Renderers must
// use it instead of Value since the generator is not trusted to stay in range.
func (s RPGStat) Clamped() int {
	if math.IsNaN(s.Value) {
		return 1
	}
	v := int(math.Round(s.Value))
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}

// SuperpowerKind distinguishes the two shapes a superpower arrives in
type SuperpowerKind int

const (
	// SuperpowerDetailed carries a name, description and potential roles
	SuperpowerDetailed SuperpowerKind = iota
	// SuperpowerPlain is a bare string; only Name is set
	SuperpowerPlain
)

// Superpower is a hidden strength. Generators sometimes emit a bare string
// instead of an object; the shape is resolved once in UnmarshalJSON.
type Superpower struct {
	Kind           SuperpowerKind
	Name           string
	Description    string
	PotentialRoles []string
}

// PlainSuperpower builds the bare-string variant
func PlainSuperpower(text string) Superpower {
	return Superpower{Kind: SuperpowerPlain, Name: text}
}

type superpowerObject struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	PotentialRoles []string `json:"potential_roles"`
}

// MarshalJSON writes the variant back in the shape it was received in
func (s Superpower) MarshalJSON() ([]byte, error) {
	if s.Kind == SuperpowerPlain {
		return json.Marshal(s.Name)
	}
	roles := s.PotentialRoles
	if roles == nil {
		roles = []string{}
	}
	return json.Marshal(superpowerObject{
		Name:           s.Name,
		Description:    s.Description,
		PotentialRoles: roles,
	})
}

// UnmarshalJSON accepts either a string or an object
func (s *Superpower) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*s = PlainSuperpower(text)
		return nil
	}

	var obj superpowerObject
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return fmt.Errorf("superpower: %w", err)
	}
	*s = Superpower{
		Kind:           SuperpowerDetailed,
		Name:           obj.Name,
		Description:    obj.Description,
		PotentialRoles: obj.PotentialRoles,
	}
	return nil
}

// JSONSchema describes the object shape requested from the generator
func (Superpower) JSONSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	props.Set("name", &jsonschema.Schema{Type: "string"})
	props.Set("description", &jsonschema.Schema{
		Type:        "string",
		Description: "Description of the strength",
	})
	minRoles, maxRoles := uint64(2), uint64(3)
	props.Set("potential_roles", &jsonschema.Schema{
		Type:        "array",
		Items:       &jsonschema.Schema{Type: "string"},
		MinItems:    &minRoles,
		MaxItems:    &maxRoles,
		Description: "2-3 concrete job roles or work scenarios",
	})
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   []string{"name", "description", "potential_roles"},
	}
}
