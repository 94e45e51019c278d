// types.go — Code template model and placeholder declarations.
package template

// Category classifies what a template scaffolds.
type Category string

const (
	CategoryTest       Category = "test"
	CategoryPageObject Category = "page-object"
	CategoryHelper     Category = "helper"
	CategoryConfig     Category = "config"
	CategorySetup      Category = "setup"
)

// Placeholder declares one variable a template expects in its render context.
type Placeholder struct {
	Key         string   `json:"key"`
	Type        string   `json:"type"` // "string", "number", "boolean", "array"
	Required    bool     `json:"required"`
	Description string   `json:"description,omitempty"`
	Validation  string   `json:"validation,omitempty"` // regex applied to the string form
	Options     []string `json:"options,omitempty"`    // enumerated allowed values
}

// Template is a parameterized code scaffold. Templates are plain data and
// serialize as JSON so they can be shared or version-controlled.
type Template struct {
	ID           string        `json:"id"`
	Name         string        `json:"name,omitempty"`
	Framework    string        `json:"framework,omitempty"`
	Language     string        `json:"language,omitempty"`
	Category     Category      `json:"category"`
	Content      string        `json:"content"`
	Placeholders []Placeholder `json:"placeholders,omitempty"`
	Dependencies []string      `json:"dependencies,omitempty"`
	Imports      []string      `json:"imports,omitempty"`
}
