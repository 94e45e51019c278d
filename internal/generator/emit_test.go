// emit_test.go — Tests for the shared traversal and degradation policy.
package generator

import (
	"errors"
	"strings"
	"testing"

	"github.com/flowlens/flowlens/internal/event"
	"github.com/flowlens/flowlens/internal/template"
)

func testEvent(seq int, typ event.Type, sel string, data map[string]any) event.RecordedEvent {
	return event.RecordedEvent{
		ID:          "evt_" + string(typ),
		Sequence:    seq,
		TimestampMs: int64(seq * 100),
		Type:        typ,
		Data:        data,
		Metadata:    event.Metadata{Selector: sel, SelectorStrategy: "id", SelectorReliability: 0.9},
	}
}

func formGroup() event.EventGroup {
	return event.EventGroup{
		ID:         "group_1",
		ActionType: event.ActionFormInteraction,
		Name:       "Fill form form#form",
		Events: []event.RecordedEvent{
			testEvent(1, event.TypeClick, "#submit", nil),
			testEvent(2, event.TypeInput, "#email", map[string]any{"value": "a@b.com"}),
			testEvent(3, event.TypeSubmit, "#form", nil),
		},
	}
}

func mustGenerator(t *testing.T, framework string) Generator {
	t.Helper()
	g, err := New(framework, "", template.NewEngine())
	if err != nil {
		t.Fatalf("new %s generator: %v", framework, err)
	}
	return g
}

// ============================================
// Statement ordering
// ============================================

func TestEmit_FormFlowStatementOrder(t *testing.T) {
	t.Parallel()
	g := mustGenerator(t, "playwright")

	files, err := Emit(g, []event.EventGroup{formGroup()}, DefaultConfig("playwright", "typescript"))
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	test := findFile(t, files, "test")
	clickIdx := strings.Index(test.Content, "page.click('#submit')")
	fillIdx := strings.Index(test.Content, "page.fill('#email', 'a@b.com')")
	submitIdx := strings.Index(test.Content, "form.submit()")
	if clickIdx < 0 || fillIdx < 0 || submitIdx < 0 {
		t.Fatalf("missing statements:\n%s", test.Content)
	}
	if !(clickIdx < fillIdx && fillIdx < submitIdx) {
		t.Fatalf("statement order wrong: click=%d fill=%d submit=%d", clickIdx, fillIdx, submitIdx)
	}
}

// ============================================
// Degradation
// ============================================

func TestEmit_UnknownEventDegradesToComment(t *testing.T) {
	t.Parallel()
	g := mustGenerator(t, "playwright")
	group := event.EventGroup{
		ID:         "group_1",
		ActionType: event.ActionInteraction,
		Name:       "Odd things",
		Events: []event.RecordedEvent{
			testEvent(1, event.TypeCustom, "#x", nil),
			testEvent(2, event.TypeClick, "#ok", nil),
		},
	}

	files, err := Emit(g, []event.EventGroup{group}, DefaultConfig("playwright", "typescript"))
	if err != nil {
		t.Fatalf("emit must not fail on unknown event types: %v", err)
	}
	test := findFile(t, files, "test")
	if !strings.Contains(test.Content, `// unsupported event type "custom"`) {
		t.Fatalf("missing placeholder comment:\n%s", test.Content)
	}
	if !strings.Contains(test.Content, "page.click('#ok')") {
		t.Fatal("recognized event after unknown one was not emitted")
	}
}

type panickyGenerator struct {
	Generator
}

func (p *panickyGenerator) GenerateEventCode(e event.RecordedEvent) string {
	panic("boom")
}

func TestEmit_PanicBecomesGenerationError(t *testing.T) {
	t.Parallel()
	g := &panickyGenerator{Generator: mustGenerator(t, "playwright")}

	_, err := Emit(g, []event.EventGroup{formGroup()}, DefaultConfig("playwright", "typescript"))
	var genErr *event.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %v, want GenerationError", err)
	}
	if genErr.EventID != "evt_click" || genErr.Sequence != 1 {
		t.Fatalf("traceability = %q seq %d, want evt_click seq 1", genErr.EventID, genErr.Sequence)
	}
}

// ============================================
// Assertions
// ============================================

func TestEmit_AssertionsRendered(t *testing.T) {
	t.Parallel()
	g := mustGenerator(t, "playwright")
	group := event.EventGroup{
		ID:         "group_1",
		ActionType: event.ActionFormInteraction,
		Name:       "Save",
		Events: []event.RecordedEvent{
			testEvent(1, event.TypeClick, "#save", nil),
			testEvent(2, event.TypeAssertion, "#toast", map[string]any{"assertType": "text", "expected": "Saved"}),
		},
	}

	files, err := Emit(g, []event.EventGroup{group}, DefaultConfig("playwright", "typescript"))
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	test := findFile(t, files, "test")
	if !strings.Contains(test.Content, "toHaveText('Saved')") {
		t.Fatalf("assertion missing:\n%s", test.Content)
	}

	cfg := DefaultConfig("playwright", "typescript")
	cfg.IncludeAssertions = false
	files, err = Emit(g, []event.EventGroup{group}, cfg)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	test = findFile(t, files, "test")
	if strings.Contains(test.Content, "toHaveText") {
		t.Fatal("assertion emitted despite IncludeAssertions=false")
	}
	if !strings.Contains(test.Content, "assertion omitted") {
		t.Fatal("omitted assertion leaves no trace comment")
	}
}

// ============================================
// Page objects and config files
// ============================================

func navGroup(url string) event.EventGroup {
	nav := testEvent(1, event.TypeNavigation, "", map[string]any{"url": url})
	return event.EventGroup{
		ID:         "group_nav",
		ActionType: event.ActionNavigation,
		Name:       "Navigate to app.example.com",
		Events: []event.RecordedEvent{
			nav,
			testEvent(2, event.TypeClick, "#start", nil),
		},
	}
}

func TestEmit_PageObjectModel(t *testing.T) {
	t.Parallel()
	g := mustGenerator(t, "playwright")
	cfg := DefaultConfig("playwright", "typescript")
	cfg.PageObjectModel = true

	files, err := Emit(g, []event.EventGroup{navGroup("https://app.example.com/login"), formGroup()}, cfg)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	po := findFile(t, files, "page-object")
	if !strings.HasPrefix(po.Filename, "pages/") || !strings.HasSuffix(po.Filename, ".page.ts") {
		t.Fatalf("page object filename = %q", po.Filename)
	}
	if !strings.Contains(po.Content, "export class AppExampleLoginPage") {
		t.Fatalf("page object class missing:\n%s", po.Content)
	}
	if !strings.Contains(po.Content, "this.page.goto('https://app.example.com/login')") {
		t.Fatalf("page object goto missing:\n%s", po.Content)
	}
	if !strings.Contains(po.Content, "this.page.click") {
		t.Fatalf("page object method body missing statements:\n%s", po.Content)
	}
}

func TestEmit_ConfigFilePerFramework(t *testing.T) {
	t.Parallel()
	wantConfig := map[string]string{
		"playwright": "playwright.config.ts",
		"cypress":    "cypress.config.js",
		"selenium":   "conftest.py",
		"puppeteer":  "jest.config.js",
	}
	for framework, wantName := range wantConfig {
		g := mustGenerator(t, framework)
		files, err := Emit(g, []event.EventGroup{formGroup()}, DefaultConfig(framework, ""))
		if err != nil {
			t.Fatalf("%s emit: %v", framework, err)
		}
		cfgFile := findFile(t, files, "config")
		if cfgFile.Filename != wantName {
			t.Fatalf("%s config filename = %q, want %q", framework, cfgFile.Filename, wantName)
		}
	}
}

// ============================================
// Filenames
// ============================================

func TestEmit_TestFilenameConventions(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"playwright": "login-flow.spec.ts",
		"cypress":    "cypress/e2e/login-flow.cy.js",
		"selenium":   "test_login_flow.py",
		"puppeteer":  "login-flow.test.js",
	}
	for framework, want := range cases {
		g := mustGenerator(t, framework)
		cfg := DefaultConfig(framework, "")
		cfg.TestName = "Login Flow"
		files, err := Emit(g, []event.EventGroup{formGroup()}, cfg)
		if err != nil {
			t.Fatalf("%s emit: %v", framework, err)
		}
		test := findFile(t, files, "test")
		if test.Filename != want {
			t.Fatalf("%s filename = %q, want %q", framework, test.Filename, want)
		}
	}
}

func TestNew_UnsupportedFramework(t *testing.T) {
	t.Parallel()
	if _, err := New("webdriverio", "", nil); err == nil {
		t.Fatal("expected error for unsupported framework")
	}
	if _, err := New("playwright", "python", nil); err == nil {
		t.Fatal("expected error for language mismatch")
	}
}

func findFile(t *testing.T, files []GeneratedTestFile, typ string) GeneratedTestFile {
	t.Helper()
	for _, f := range files {
		if f.Type == typ {
			return f
		}
	}
	t.Fatalf("no file of type %q in %d files", typ, len(files))
	return GeneratedTestFile{}
}
