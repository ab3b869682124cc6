package capabilities

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ModelCapabilities describes what a model can do for the career services
type ModelCapabilities struct {
	// Model identifier (set from the YAML key)
	ID string `yaml:"-" json:"id"`

	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`

	// SupportsTools is required for the interview: the report unlock is a tool call
	SupportsTools bool `yaml:"supports_tools" json:"supports_tools"`
	// SupportsJSONSchema means strict response_format schemas are honoured
	SupportsJSONSchema bool `yaml:"supports_json_schema" json:"supports_json_schema"`

	ContextWindow int `yaml:"context_window" json:"context_window"`
	MaxOutput     int `yaml:"max_output" json:"max_output"`
}

// ProviderCapabilities lists the catalogued models of one provider
type ProviderCapabilities struct {
	Provider string              `yaml:"provider" json:"provider"`
	Models   []ModelCapabilities `yaml:"-" json:"models"` // YAML order
}

// UnmarshalYAML keeps the models in file order, which a plain map would lose
func (p *ProviderCapabilities) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("capabilities: expected a mapping, got %v", node.Tag)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "provider":
			p.Provider = value.Value
		case "models":
			for j := 0; j+1 < len(value.Content); j += 2 {
				var model ModelCapabilities
				if err := value.Content[j+1].Decode(&model); err != nil {
					return fmt.Errorf("model %s: %w", value.Content[j].Value, err)
				}
				model.ID = value.Content[j].Value
				p.Models = append(p.Models, model)
			}
		}
	}
	return nil
}
