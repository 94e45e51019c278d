// selenium.go — Selenium/Python statement synthesis and scaffolding.
package generator

import (
	"fmt"
	"strings"

	"github.com/flowlens/flowlens/internal/event"
	"github.com/flowlens/flowlens/internal/template"
)

// Selenium emits pytest files driving selenium.webdriver.
type Selenium struct {
	templates *template.Engine
}

func (s *Selenium) Framework() string     { return "selenium" }
func (s *Selenium) Language() string      { return "python" }
func (s *Selenium) CommentPrefix() string { return "#" }

func (s *Selenium) TestFilename(base string) string {
	return "test_" + strings.ReplaceAll(base, "-", "_") + ".py"
}

func (s *Selenium) GenerateSetupCode(cfg Config) []string {
	lines := []string{
		"import time",
		"",
		"from selenium.webdriver import ActionChains",
		"from selenium.webdriver.common.by import By",
		"from selenium.webdriver.common.keys import Keys",
		"from selenium.webdriver.support.ui import Select",
		"",
		"",
		fmt.Sprintf("def test_%s(driver):", pythonIdent(testTitle(cfg))),
	}
	if cfg.BaseURL != "" {
		lines = append(lines, fmt.Sprintf("    driver.get(\"%s\")", escapeDouble(cfg.BaseURL)))
	}
	return lines
}

func (s *Selenium) GenerateTeardownCode() []string {
	// The driver fixture owns teardown.
	return nil
}

// locator renders a find_element call for a selector. The text= shorthand
// has no CSS equivalent, so it degrades to an XPath text() match.
func (s *Selenium) locator(sel string, target event.TargetDescriptor) string {
	opt := s.OptimizeSelector(sel, target)
	if opt.Strategy == "text" {
		return fmt.Sprintf("driver.find_element(By.XPATH, \"//*[normalize-space()=%s]\")",
			pyStr(textOf(opt.Optimized)))
	}
	if strings.HasPrefix(opt.Optimized, "//") || strings.HasPrefix(opt.Optimized, "/") {
		return fmt.Sprintf("driver.find_element(By.XPATH, %s)", pyStr(opt.Optimized))
	}
	return fmt.Sprintf("driver.find_element(By.CSS_SELECTOR, %s)", pyStr(opt.Optimized))
}

func (s *Selenium) GenerateEventCode(e event.RecordedEvent) string {
	sel := e.Metadata.Selector
	switch e.Type {
	case event.TypeNavigation:
		return fmt.Sprintf("    driver.get(%s)\n", pyStr(eventURL(e)))
	case event.TypeClick:
		return fmt.Sprintf("    %s.click()\n", s.locator(sel, e.Target))
	case event.TypeDblClick:
		return fmt.Sprintf("    ActionChains(driver).double_click(%s).perform()\n", s.locator(sel, e.Target))
	case event.TypeContextMenu:
		return fmt.Sprintf("    ActionChains(driver).context_click(%s).perform()\n", s.locator(sel, e.Target))
	case event.TypeInput, event.TypeChange:
		loc := s.locator(sel, e.Target)
		return fmt.Sprintf("    %s.clear()\n    %s.send_keys(%s)\n", loc, loc, pyStr(e.Value()))
	case event.TypeSelect:
		return fmt.Sprintf("    Select(%s).select_by_value(%s)\n", s.locator(sel, e.Target), pyStr(e.Value()))
	case event.TypeKeyDown, event.TypeKeyUp, event.TypeKeyPress:
		key := eventKey(e)
		if key == "" {
			return ""
		}
		return fmt.Sprintf("    %s.send_keys(Keys.%s)\n", s.locator(sel, e.Target), seleniumKey(key))
	case event.TypeSubmit:
		return fmt.Sprintf("    %s.submit()\n", s.locator(sel, e.Target))
	case event.TypeFocus:
		return fmt.Sprintf("    %s.click()\n", s.locator(sel, e.Target))
	case event.TypeScroll:
		x, y := scrollPosition(e)
		return fmt.Sprintf("    driver.execute_script(\"window.scrollTo(%d, %d)\")\n", x, y)
	case event.TypeWait:
		return fmt.Sprintf("    time.sleep(%.1f)\n", float64(waitMs(e))/1000)
	}
	return ""
}

func (s *Selenium) GenerateAssertions(events []event.RecordedEvent) []string {
	var lines []string
	for _, e := range events {
		kind, expected := assertionExpectation(e)
		switch kind {
		case "text":
			lines = append(lines, fmt.Sprintf("    assert %s.text == %s",
				s.locator(e.Metadata.Selector, e.Target), pyStr(expected)))
		case "value":
			lines = append(lines, fmt.Sprintf("    assert %s.get_attribute(\"value\") == %s",
				s.locator(e.Metadata.Selector, e.Target), pyStr(expected)))
		case "url":
			lines = append(lines, fmt.Sprintf("    assert driver.current_url == %s", pyStr(expected)))
		default:
			lines = append(lines, fmt.Sprintf("    assert %s.is_displayed()",
				s.locator(e.Metadata.Selector, e.Target)))
		}
	}
	return lines
}

// OptimizeSelector keeps CSS selectors and tags text= for XPath degradation.
func (s *Selenium) OptimizeSelector(sel string, target event.TargetDescriptor) SelectorOptimization {
	opt := SelectorOptimization{Original: sel, Optimized: sel, Strategy: "css"}
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

func (s *Selenium) GenerateConfigFile(cfg Config) (GeneratedTestFile, bool) {
	content, err := s.templates.Render("selenium-config", configContext(cfg))
	if err != nil {
		return GeneratedTestFile{}, false
	}
	return GeneratedTestFile{Filename: "conftest.py", Content: content, Type: "config"}, true
}

// GeneratePageObject is not emitted for Selenium: the pytest fixture layout
// keeps page helpers in conftest.py, which the config emitter owns.
func (s *Selenium) GeneratePageObject(po PageObject, cfg Config) (GeneratedTestFile, bool) {
	return GeneratedTestFile{}, false
}

// pyStr renders a Python double-quoted string literal.
func pyStr(s string) string {
	return "\"" + escapeDouble(s) + "\""
}

// pythonIdent reduces a title to a snake_case identifier fragment.
func pythonIdent(title string) string {
	return strings.ReplaceAll(SanitizeBaseName(title), "-", "_")
}

// seleniumKey maps DOM key names onto selenium Keys constants.
func seleniumKey(key string) string {
	switch key {
	case "Enter":
		return "ENTER"
	case "Tab":
		return "TAB"
	case "Escape":
		return "ESCAPE"
	case "Backspace":
		return "BACKSPACE"
	case "ArrowUp":
		return "ARROW_UP"
	case "ArrowDown":
		return "ARROW_DOWN"
	case "ArrowLeft":
		return "ARROW_LEFT"
	case "ArrowRight":
		return "ARROW_RIGHT"
	}
	return strings.ToUpper(key)
}
