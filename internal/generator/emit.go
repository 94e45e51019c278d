// emit.go — Shared traversal: groups → events → statements → files.
// Generation is a pure read of the groups; inputs are never mutated.
package generator

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/flowlens/flowlens/internal/event"
)

// Emit renders the event groups into test files using the given generator.
// One unrecognized event never fails the run: it degrades to an inert
// comment. An unexpected emitter failure surfaces as a GenerationError
// annotated with the offending event.
func Emit(g Generator, groups []event.EventGroup, cfg Config) (files []GeneratedTestFile, err error) {
	var b strings.Builder

	if cfg.IncludeComments {
		b.WriteString(g.CommentPrefix() + " Generated by flowlens — " + describeRun(groups) + "\n")
	}
	if cfg.IncludeSetup {
		writeLines(&b, g.GenerateSetupCode(cfg))
	}

	for _, group := range groups {
		if cfg.IncludeComments {
			b.WriteString("\n" + indent(g) + g.CommentPrefix() + " " + group.Name)
			if group.Description != "" {
				b.WriteString(" — " + group.Description)
			}
			b.WriteString("\n")
		}
		if err := emitGroup(g, group, cfg, &b); err != nil {
			return nil, err
		}
	}

	if cfg.IncludeSetup {
		writeLines(&b, g.GenerateTeardownCode())
	}

	base := cfg.TestName
	if base == "" {
		base = deriveTestName(groups)
	}
	files = append(files, GeneratedTestFile{
		Filename: g.TestFilename(SanitizeBaseName(base)),
		Content:  b.String(),
		Type:     "test",
	})

	if cfg.PageObjectModel {
		for _, po := range collectPageObjects(groups) {
			if file, ok := g.GeneratePageObject(po, cfg); ok {
				files = append(files, file)
			}
		}
	}
	if configFile, ok := g.GenerateConfigFile(cfg); ok {
		files = append(files, configFile)
	}
	return files, nil
}

// emitGroup writes one group's statements, recovering emitter panics into a
// GenerationError carrying the offending event's identity.
func emitGroup(g Generator, group event.EventGroup, cfg Config, b *strings.Builder) (err error) {
	var current event.RecordedEvent
	defer func() {
		if r := recover(); r != nil {
			err = &event.GenerationError{
				Framework: g.Framework(),
				EventID:   current.ID,
				Sequence:  current.Sequence,
				Err:       fmt.Errorf("%v", r),
			}
		}
	}()

	var assertions []event.RecordedEvent
	for _, e := range group.Events {
		current = e
		if e.Type == event.TypeAssertion {
			assertions = append(assertions, e)
			continue
		}
		stmt := g.GenerateEventCode(e)
		if stmt == "" {
			b.WriteString(fmt.Sprintf("%s%s unsupported event type %q (id %s, seq %d)\n",
				indent(g), g.CommentPrefix(), e.Type, e.ID, e.Sequence))
			continue
		}
		b.WriteString(stmt)
	}

	if len(assertions) == 0 {
		return nil
	}
	if !cfg.IncludeAssertions {
		for _, e := range assertions {
			b.WriteString(fmt.Sprintf("%s%s assertion omitted (id %s, seq %d)\n",
				indent(g), g.CommentPrefix(), e.ID, e.Sequence))
		}
		return nil
	}
	current = assertions[0]
	writeLines(b, g.GenerateAssertions(assertions))
	return nil
}

// indent returns the statement indentation for the generator's language.
func indent(g Generator) string {
	if g.Language() == "python" {
		return "    "
	}
	return "  "
}

func writeLines(b *strings.Builder, lines []string) {
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
}

// describeRun summarizes the run for the header comment.
func describeRun(groups []event.EventGroup) string {
	events := 0
	for _, g := range groups {
		events += len(g.Events)
	}
	return fmt.Sprintf("%d group(s), %d event(s)", len(groups), events)
}

// deriveTestName derives the test file base name from the first navigation,
// falling back to the first group name.
func deriveTestName(groups []event.EventGroup) string {
	for _, g := range groups {
		for _, e := range g.Events {
			if e.Type == event.TypeNavigation {
				if raw, _ := e.Data["url"].(string); raw != "" {
					if u, err := url.Parse(raw); err == nil && u.Host != "" {
						return u.Host + "-flow"
					}
				}
			}
		}
	}
	if len(groups) > 0 {
		return groups[0].Name
	}
	return "recorded-flow"
}

// collectPageObjects builds one page object per distinct navigated URL, with
// one method per grouped action that follows it.
func collectPageObjects(groups []event.EventGroup) []PageObject {
	var out []PageObject
	index := map[string]int{}
	currentURL := ""

	for _, g := range groups {
		if nav := firstNavigation(g); nav != "" {
			currentURL = nav
			if _, ok := index[nav]; !ok {
				index[nav] = len(out)
				out = append(out, PageObject{Name: PageClassName(nav), URL: nav})
			}
		}
		if currentURL == "" {
			continue
		}
		i := index[currentURL]
		method := PageMethod{Name: MethodName(g.Name, len(out[i].Methods)), Events: nonNavigation(g.Events)}
		if len(method.Events) == 0 {
			continue
		}
		out[i].Methods = append(out[i].Methods, method)
	}
	return out
}

func firstNavigation(g event.EventGroup) string {
	for _, e := range g.Events {
		if e.Type == event.TypeNavigation {
			if raw, _ := e.Data["url"].(string); raw != "" {
				return raw
			}
			return e.Context.URL
		}
	}
	return ""
}

func nonNavigation(events []event.RecordedEvent) []event.RecordedEvent {
	var out []event.RecordedEvent
	for _, e := range events {
		if e.Type != event.TypeNavigation && e.Type != event.TypeAssertion {
			out = append(out, e)
		}
	}
	return out
}
