// types.go — Shared contract for framework-specific test code generators.
package generator

import (
	"fmt"
	"strings"

	"github.com/flowlens/flowlens/internal/event"
	"github.com/flowlens/flowlens/internal/template"
)

// Config selects the generation target and output shape.
type Config struct {
	Framework         string         `json:"framework"`
	Language          string         `json:"language"`
	IncludeComments   bool           `json:"include_comments"`
	IncludeAssertions bool           `json:"include_assertions"`
	IncludeSetup      bool           `json:"include_setup"`
	PageObjectModel   bool           `json:"page_object_model"`
	Headless          bool           `json:"headless"`
	Viewport          event.Viewport `json:"viewport"`
	BaseURL           string         `json:"base_url,omitempty"`
	TestName          string         `json:"test_name,omitempty"`
}

// DefaultConfig returns the generation flags used when the caller sets none.
func DefaultConfig(framework, language string) Config {
	return Config{
		Framework:         framework,
		Language:          language,
		IncludeComments:   true,
		IncludeAssertions: true,
		IncludeSetup:      true,
		Headless:          true,
		Viewport:          event.Viewport{Width: 1280, Height: 720},
	}
}

// GeneratedTestFile is one emitted artifact. Pure output value.
type GeneratedTestFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Type     string `json:"type"` // "test", "page-object", "config"
}

// SelectorOptimization records a framework-specific selector rewrite.
type SelectorOptimization struct {
	Original  string `json:"original"`
	Optimized string `json:"optimized"`
	Strategy  string `json:"strategy"`
}

// PageMethod is one grouped action exposed on a page object.
type PageMethod struct {
	Name   string
	Events []event.RecordedEvent
}

// PageObject models one class per distinct navigated URL.
type PageObject struct {
	Name    string
	URL     string
	Methods []PageMethod
}

// Generator is the per-framework capability surface. The traversal over
// groups, events, and statements is shared by Emit; only statement synthesis
// and scaffolding are framework-specific.
type Generator interface {
	Framework() string
	Language() string
	CommentPrefix() string
	TestFilename(base string) string

	GenerateSetupCode(cfg Config) []string
	GenerateTeardownCode() []string
	// GenerateEventCode returns one statement for the event, or "" when the
	// event type has no framework equivalent.
	GenerateEventCode(ev event.RecordedEvent) string
	GenerateAssertions(events []event.RecordedEvent) []string
	OptimizeSelector(sel string, target event.TargetDescriptor) SelectorOptimization
	GenerateConfigFile(cfg Config) (GeneratedTestFile, bool)
	GeneratePageObject(po PageObject, cfg Config) (GeneratedTestFile, bool)
}

// New constructs the generator for a framework/language pair. Language may be
// empty to accept the framework's default.
func New(framework, language string, templates *template.Engine) (Generator, error) {
	if templates == nil {
		templates = template.NewEngine()
	}
	key := strings.ToLower(framework)
	lang := strings.ToLower(language)
	switch key {
	case "playwright":
		if lang != "" && lang != "typescript" {
			return nil, fmt.Errorf("unsupported_language: playwright generator emits typescript, not %s", language)
		}
		return &Playwright{templates: templates}, nil
	case "cypress":
		if lang != "" && lang != "javascript" {
			return nil, fmt.Errorf("unsupported_language: cypress generator emits javascript, not %s", language)
		}
		return &Cypress{templates: templates}, nil
	case "selenium":
		if lang != "" && lang != "python" {
			return nil, fmt.Errorf("unsupported_language: selenium generator emits python, not %s", language)
		}
		return &Selenium{templates: templates}, nil
	case "puppeteer":
		if lang != "" && lang != "javascript" {
			return nil, fmt.Errorf("unsupported_language: puppeteer generator emits javascript, not %s", language)
		}
		return &Puppeteer{templates: templates}, nil
	}
	return nil, fmt.Errorf("unsupported_framework: no generator registered for %q", framework)
}

// Frameworks lists the supported generation targets.
func Frameworks() []string {
	return []string{"playwright", "cypress", "selenium", "puppeteer"}
}
