// Package types provides common type definitions used throughout lmscards.
// This package contains shared types to avoid circular dependencies between
// the validation, registry, cards and host packages.
package types

// Config is the validated binding configuration of one card instance.
// It is created once when the host configures the card and never mutated.
type Config struct {
	// Entity is the identifier of the bound sensor (e.g., "sensor.schoology_announcements")
	Entity string `json:"entity" yaml:"entity" mapstructure:"entity"`
	// Title overrides the card header text
	Title string `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	// Icon overrides the header icon (e.g., "mdi:bullhorn")
	Icon string `json:"icon,omitempty" yaml:"icon,omitempty" mapstructure:"icon"`
}

// Snapshot is the host-maintained state of a single entity.
type Snapshot struct {
	EntityID   string                 `json:"entity_id" yaml:"entity_id"`
	State      string                 `json:"state" yaml:"state"`
	Attributes map[string]interface{} `json:"attributes" yaml:"attributes"`
}

// CardDescriptor is the registration metadata a card publishes to the host's
// card picker.
type CardDescriptor struct {
	Type             string `json:"type" yaml:"type"`
	Name             string `json:"name" yaml:"name"`
	Description      string `json:"description" yaml:"description"`
	Icon             string `json:"icon" yaml:"icon"`
	Preview          bool   `json:"preview" yaml:"preview"`
	DocumentationURL string `json:"documentationURL,omitempty" yaml:"documentation_url,omitempty"`
}

// SelectorKind names the editor widget the host uses for a config field.
type SelectorKind string

const (
	SelectorEntity SelectorKind = "entity"
	SelectorText   SelectorKind = "text"
	SelectorIcon   SelectorKind = "icon"
)

// FieldDescriptor describes one field of the host's generic config form.
type FieldDescriptor struct {
	Name     string       `json:"name" yaml:"name"`
	Label    string       `json:"label" yaml:"label"`
	Required bool         `json:"required" yaml:"required"`
	Selector SelectorKind `json:"selector" yaml:"selector"`
	// Domain restricts entity selectors to one entity domain
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`
}

// GridOptions are static layout hints for the host's grid engine.
type GridOptions struct {
	Rows    int `json:"rows" yaml:"rows"`
	Columns int `json:"columns" yaml:"columns"`
	MinRows int `json:"min_rows" yaml:"min_rows"`
	MaxRows int `json:"max_rows" yaml:"max_rows"`
}
