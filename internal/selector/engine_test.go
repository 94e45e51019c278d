// engine_test.go — Tests for selector synthesis, ranking, and caching.
package selector

import (
	"strings"
	"testing"

	"github.com/flowlens/flowlens/internal/event"
)

func buttonTarget() event.TargetDescriptor {
	return event.TargetDescriptor{
		Tag:  "button",
		Text: "Submit",
		Attributes: map[string]string{
			"data-testid": "submit-btn",
			"id":          "submit",
			"aria-label":  "Submit form",
		},
		Path: []event.PathNode{
			{Tag: "body", Index: 1, SiblingCount: 1},
			{Tag: "form", ID: "checkout", Index: 1, SiblingCount: 1},
			{Tag: "button", Index: 2, SiblingCount: 3},
		},
	}
}

// ============================================
// Strategy priority and ranking
// ============================================

func TestSynthesize_PrefersTestID(t *testing.T) {
	t.Parallel()
	engine := NewEngine()

	result := engine.Synthesize(buttonTarget(), DefaultConfig())
	if result.Primary.Strategy != StrategyTestID {
		t.Fatalf("primary strategy = %q, want %q", result.Primary.Strategy, StrategyTestID)
	}
	if result.Primary.Value != `[data-testid="submit-btn"]` {
		t.Fatalf("primary value = %q", result.Primary.Value)
	}
	if result.Primary.Reliability < 0.8 {
		t.Fatalf("testid reliability = %v, want >= 0.8", result.Primary.Reliability)
	}
}

func TestSynthesize_AlternativesSortedDescending(t *testing.T) {
	t.Parallel()
	engine := NewEngine()

	result := engine.Synthesize(buttonTarget(), DefaultConfig())
	if len(result.Alternatives) < 3 {
		t.Fatalf("alternatives = %d, want >= 3", len(result.Alternatives))
	}
	prev := result.Primary.Reliability
	for i, alt := range result.Alternatives {
		if alt.Reliability > prev {
			t.Fatalf("alternative %d reliability %v exceeds previous %v", i, alt.Reliability, prev)
		}
		prev = alt.Reliability
	}
}

func TestSynthesize_RespectsCustomPriority(t *testing.T) {
	t.Parallel()
	engine := NewEngine()
	cfg := Config{Priority: []Strategy{StrategyText, StrategyID}, Fallback: true}

	result := engine.Synthesize(buttonTarget(), cfg)
	// ID outweighs text regardless of priority listing order; priority only
	// controls which strategies run.
	if result.Primary.Strategy != StrategyID {
		t.Fatalf("primary strategy = %q, want %q", result.Primary.Strategy, StrategyID)
	}
	for _, alt := range result.Alternatives {
		if alt.Strategy == StrategyTestID {
			t.Fatal("testid candidate generated despite being excluded from priority")
		}
	}
}

// ============================================
// Fallback and degradation
// ============================================

func TestSynthesize_NoCandidatesNoFallback(t *testing.T) {
	t.Parallel()
	engine := NewEngine()
	target := event.TargetDescriptor{Tag: "div"}
	cfg := Config{Priority: DefaultPriority, Fallback: false}

	result := engine.Synthesize(target, cfg)
	if result.Primary.Value != "" {
		t.Fatalf("expected empty primary value, got %q", result.Primary.Value)
	}
	if result.Primary.Reliability != 0 {
		t.Fatalf("expected zero reliability, got %v", result.Primary.Reliability)
	}
	if result.Degraded == nil {
		t.Fatal("expected degraded diagnostic")
	}
}

func TestSynthesize_StructuralFallbackDegrades(t *testing.T) {
	t.Parallel()
	engine := NewEngine()
	target := event.TargetDescriptor{
		Tag: "span",
		Path: []event.PathNode{
			{Tag: "div", Index: 1, SiblingCount: 2},
			{Tag: "span", Index: 1, SiblingCount: 1},
		},
	}

	result := engine.Synthesize(target, DefaultConfig())
	if result.Primary.Strategy != StrategyCSS {
		t.Fatalf("primary strategy = %q, want %q", result.Primary.Strategy, StrategyCSS)
	}
	degraded, ok := result.Degraded.(*event.SelectorSynthesisDegraded)
	if !ok {
		t.Fatalf("degraded = %v, want *event.SelectorSynthesisDegraded", result.Degraded)
	}
	if degraded.Strategy != string(StrategyCSS) {
		t.Fatalf("degraded strategy = %q", degraded.Strategy)
	}
}

// ============================================
// Structural path construction
// ============================================

func TestSynthesize_PositionPenalty(t *testing.T) {
	t.Parallel()
	engine := NewEngine()
	target := event.TargetDescriptor{
		Tag: "li",
		Path: []event.PathNode{
			{Tag: "ul", ID: "menu", Index: 1, SiblingCount: 1},
			{Tag: "li", Index: 3, SiblingCount: 5},
		},
	}
	cfg := Config{Priority: []Strategy{StrategyCSS}, Fallback: true, Optimize: true, IncludePosition: true}

	result := engine.Synthesize(target, cfg)
	want := "#menu > li:nth-child(3)"
	if result.Primary.Value != want {
		t.Fatalf("value = %q, want %q", result.Primary.Value, want)
	}
	base := strategyWeights[StrategyCSS]
	if result.Primary.Reliability >= base {
		t.Fatalf("reliability = %v, want < %v (position penalty)", result.Primary.Reliability, base)
	}
}

func TestSynthesize_OptimizeCollapsesToUniqueAnchor(t *testing.T) {
	t.Parallel()
	engine := NewEngine()
	target := event.TargetDescriptor{
		Tag: "input",
		Path: []event.PathNode{
			{Tag: "body", Index: 1, SiblingCount: 1},
			{Tag: "div", Index: 2, SiblingCount: 4},
			{Tag: "form", ID: "login", Index: 1, SiblingCount: 1},
			{Tag: "input", Index: 1, SiblingCount: 1},
		},
	}
	cfg := Config{Priority: []Strategy{StrategyCSS}, Fallback: true, Optimize: true}

	result := engine.Synthesize(target, cfg)
	want := "#login > input"
	if result.Primary.Value != want {
		t.Fatalf("optimized path = %q, want %q", result.Primary.Value, want)
	}
}

func TestSynthesize_UnoptimizedKeepsFullChain(t *testing.T) {
	t.Parallel()
	engine := NewEngine()
	target := event.TargetDescriptor{
		Tag: "input",
		Path: []event.PathNode{
			{Tag: "body", Index: 1, SiblingCount: 1},
			{Tag: "form", ID: "login", Index: 1, SiblingCount: 1},
			{Tag: "input", Index: 1, SiblingCount: 1},
		},
	}
	cfg := Config{Priority: []Strategy{StrategyCSS}, Fallback: true}

	result := engine.Synthesize(target, cfg)
	want := "body > #login > input"
	if result.Primary.Value != want {
		t.Fatalf("path = %q, want %q", result.Primary.Value, want)
	}
}

// ============================================
// Text strategy constraints
// ============================================

func TestSynthesize_TextSkippedWhenLongOrMultiline(t *testing.T) {
	t.Parallel()
	engine := NewEngine()
	cfg := Config{Priority: []Strategy{StrategyText}, Fallback: false}

	long := event.TargetDescriptor{Tag: "p", Text: strings.Repeat("x", 100)}
	if r := engine.Synthesize(long, cfg); r.Primary.Value != "" {
		t.Fatalf("expected no candidate for long text, got %q", r.Primary.Value)
	}

	multi := event.TargetDescriptor{Tag: "p", Text: "line one\nline two"}
	if r := engine.Synthesize(multi, cfg); r.Primary.Value != "" {
		t.Fatalf("expected no candidate for multiline text, got %q", r.Primary.Value)
	}
}

// ============================================
// Cache behavior
// ============================================

func TestSynthesize_CacheInvalidation(t *testing.T) {
	t.Parallel()
	engine := NewEngine()
	target := buttonTarget()
	cfg := DefaultConfig()

	first := engine.Synthesize(target, cfg)
	second := engine.Synthesize(target, cfg)
	if first.Primary != second.Primary {
		t.Fatalf("cached result differs: %+v vs %+v", first.Primary, second.Primary)
	}

	engine.Invalidate(Fingerprint(target))
	third := engine.Synthesize(target, cfg)
	if third.Primary != first.Primary {
		t.Fatalf("post-invalidation result differs: %+v vs %+v", third.Primary, first.Primary)
	}

	engine.InvalidateAll()
	if len(engine.cache) != 0 {
		t.Fatalf("cache size after InvalidateAll = %d, want 0", len(engine.cache))
	}
}

func TestFingerprint_Stable(t *testing.T) {
	t.Parallel()
	a := Fingerprint(buttonTarget())
	b := Fingerprint(buttonTarget())
	if a != b {
		t.Fatalf("fingerprint not stable: %q vs %q", a, b)
	}
	other := buttonTarget()
	other.Attributes["id"] = "different"
	if Fingerprint(other) == a {
		t.Fatal("fingerprint did not change with attributes")
	}
}
