// cypress.go — Cypress/JavaScript statement synthesis and scaffolding.
package generator

import (
	"fmt"

	"github.com/flowlens/flowlens/internal/event"
	"github.com/flowlens/flowlens/internal/template"
)

// Cypress emits JavaScript spec files for the Cypress runner.
type Cypress struct {
	templates *template.Engine
}

func (c *Cypress) Framework() string     { return "cypress" }
func (c *Cypress) Language() string      { return "javascript" }
func (c *Cypress) CommentPrefix() string { return "//" }

func (c *Cypress) TestFilename(base string) string { return "cypress/e2e/" + base + ".cy.js" }

func (c *Cypress) GenerateSetupCode(cfg Config) []string {
	lines := []string{
		fmt.Sprintf("describe('%s', () => {", escapeSingle(testTitle(cfg))),
		"  it('replays the recorded interactions', () => {",
	}
	if cfg.BaseURL != "" {
		lines = append(lines, fmt.Sprintf("  cy.visit('%s');", escapeSingle(cfg.BaseURL)))
	}
	return lines
}

func (c *Cypress) GenerateTeardownCode() []string {
	return []string{"  });", "});"}
}

// chain returns the cy query for a selector, using cy.contains for the
// text= shorthand which cy.get cannot express.
func (c *Cypress) chain(sel string, target event.TargetDescriptor) string {
	opt := c.OptimizeSelector(sel, target)
	if opt.Strategy == "text" {
		return fmt.Sprintf("cy.contains('%s')", escapeSingle(textOf(opt.Optimized)))
	}
	return fmt.Sprintf("cy.get('%s')", escapeSingle(opt.Optimized))
}

func (c *Cypress) GenerateEventCode(e event.RecordedEvent) string {
	sel := e.Metadata.Selector
	switch e.Type {
	case event.TypeNavigation:
		return fmt.Sprintf("  cy.visit('%s');\n", escapeSingle(eventURL(e)))
	case event.TypeClick:
		return fmt.Sprintf("  %s.click();\n", c.chain(sel, e.Target))
	case event.TypeDblClick:
		return fmt.Sprintf("  %s.dblclick();\n", c.chain(sel, e.Target))
	case event.TypeContextMenu:
		return fmt.Sprintf("  %s.rightclick();\n", c.chain(sel, e.Target))
	case event.TypeInput, event.TypeChange:
		return fmt.Sprintf("  %s.clear().type('%s');\n", c.chain(sel, e.Target), escapeSingle(e.Value()))
	case event.TypeSelect:
		return fmt.Sprintf("  %s.select('%s');\n", c.chain(sel, e.Target), escapeSingle(e.Value()))
	case event.TypeKeyDown, event.TypeKeyUp, event.TypeKeyPress:
		key := eventKey(e)
		if key == "" {
			return ""
		}
		return fmt.Sprintf("  %s.type('{%s}');\n", c.chain(sel, e.Target), escapeSingle(cypressKey(key)))
	case event.TypeSubmit:
		return fmt.Sprintf("  %s.submit();\n", c.chain(sel, e.Target))
	case event.TypeFocus:
		return fmt.Sprintf("  %s.focus();\n", c.chain(sel, e.Target))
	case event.TypeBlur:
		return fmt.Sprintf("  %s.blur();\n", c.chain(sel, e.Target))
	case event.TypeScroll:
		x, y := scrollPosition(e)
		return fmt.Sprintf("  cy.scrollTo(%d, %d);\n", x, y)
	case event.TypeWait:
		return fmt.Sprintf("  cy.wait(%d);\n", waitMs(e))
	}
	return ""
}

func (c *Cypress) GenerateAssertions(events []event.RecordedEvent) []string {
	var lines []string
	for _, e := range events {
		kind, expected := assertionExpectation(e)
		switch kind {
		case "text":
			lines = append(lines, fmt.Sprintf("  %s.should('contain.text', '%s');",
				c.chain(e.Metadata.Selector, e.Target), escapeSingle(expected)))
		case "value":
			lines = append(lines, fmt.Sprintf("  %s.should('have.value', '%s');",
				c.chain(e.Metadata.Selector, e.Target), escapeSingle(expected)))
		case "url":
			lines = append(lines, fmt.Sprintf("  cy.url().should('eq', '%s');", escapeSingle(expected)))
		default:
			lines = append(lines, fmt.Sprintf("  %s.should('be.visible');",
				c.chain(e.Metadata.Selector, e.Target)))
		}
	}
	return lines
}

// OptimizeSelector prefers data-cy when the snapshot carries one — the
// Cypress-conventional attribute — before falling back to the generic value.
func (c *Cypress) OptimizeSelector(sel string, target event.TargetDescriptor) SelectorOptimization {
	opt := SelectorOptimization{Original: sel, Optimized: sel, Strategy: "css"}
	if v := target.Attr("data-cy"); v != "" {
		opt.Optimized = fmt.Sprintf("[data-cy=%q]", v)
		opt.Strategy = "testid"
		return opt
	}
	switch {
	case sel == "":
		opt.Optimized = target.Tag
		opt.Strategy = "tag"
	case isTextSelector(sel):
		opt.Strategy = "text"
	default:
		if _, _, ok := testIDOf(sel); ok {
			opt.Strategy = "testid"
		}
	}
	return opt
}

func (c *Cypress) GenerateConfigFile(cfg Config) (GeneratedTestFile, bool) {
	content, err := c.templates.Render("cypress-config", configContext(cfg))
	if err != nil {
		return GeneratedTestFile{}, false
	}
	return GeneratedTestFile{Filename: "cypress.config.js", Content: content, Type: "config"}, true
}

// GeneratePageObject is not emitted for Cypress: custom commands are the
// framework convention, and those belong to the host project's support file.
func (c *Cypress) GeneratePageObject(po PageObject, cfg Config) (GeneratedTestFile, bool) {
	return GeneratedTestFile{}, false
}

// cypressKey maps DOM key names onto Cypress type() special sequences.
func cypressKey(key string) string {
	switch key {
	case "Enter":
		return "enter"
	case "Tab":
		return "tab"
	case "Escape":
		return "esc"
	case "Backspace":
		return "backspace"
	case "ArrowUp":
		return "uparrow"
	case "ArrowDown":
		return "downarrow"
	case "ArrowLeft":
		return "leftarrow"
	case "ArrowRight":
		return "rightarrow"
	}
	return key
}
