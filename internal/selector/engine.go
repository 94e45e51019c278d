// engine.go — Multi-strategy selector synthesis with reliability scoring.
// Evaluates strategies in priority order against a TargetDescriptor snapshot
// and returns a primary candidate plus ranked alternatives.
package selector

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/flowlens/flowlens/internal/event"
)

// Strategy names one way of addressing an element.
type Strategy string

const (
	StrategyTestID Strategy = "testid"
	StrategyID     Strategy = "id"
	StrategyAria   Strategy = "aria"
	StrategyText   Strategy = "text"
	StrategyCSS    Strategy = "css"
	StrategyXPath  Strategy = "xpath"
)

// Fixed reliability weight per strategy. Test-id attributes survive refactors,
// structural paths do not.
var strategyWeights = map[Strategy]float64{
	StrategyTestID: 0.95,
	StrategyID:     0.90,
	StrategyAria:   0.80,
	StrategyText:   0.70,
	StrategyCSS:    0.50,
	StrategyXPath:  0.40,
}

// positionPenalty is applied when an nth-child disambiguator was required.
const positionPenalty = 0.9

// testIDAttributes are checked in order for the testid strategy.
var testIDAttributes = []string{"data-testid", "data-test-id", "data-test", "data-cy"}

// DefaultPriority is the strategy order used when the config names none.
var DefaultPriority = []Strategy{StrategyTestID, StrategyID, StrategyAria, StrategyText, StrategyCSS}

// Config controls synthesis behavior.
type Config struct {
	Priority        []Strategy
	Fallback        bool // permit degrading to a structural path
	Optimize        bool // collapse structural paths to the shortest unique chain
	IncludePosition bool // append :nth-child when siblings tie
}

// DefaultConfig returns the synthesis configuration used during capture.
func DefaultConfig() Config {
	return Config{Priority: DefaultPriority, Fallback: true, Optimize: true}
}

// Candidate is one generated selector with its strategy and score.
type Candidate struct {
	Strategy    Strategy `json:"strategy"`
	Value       string   `json:"value"`
	Reliability float64  `json:"reliability"`
}

// Result bundles the primary candidate with ranked alternatives.
// Alternatives are sorted by descending reliability; the primary always has
// the highest reliability among generated candidates.
type Result struct {
	Primary      Candidate   `json:"primary"`
	Alternatives []Candidate `json:"alternatives,omitempty"`
	Degraded     error       `json:"-"` // *event.SelectorSynthesisDegraded when fallback was used
}

// Engine synthesizes selectors for element snapshots. Results are cached per
// snapshot fingerprint; the cache is read-mostly and invalidated explicitly.
type Engine struct {
	mu    sync.RWMutex
	cache map[string]Result
}

// NewEngine returns an Engine with an empty cache.
func NewEngine() *Engine {
	return &Engine{cache: make(map[string]Result)}
}

// Synthesize evaluates each strategy in priority order and returns the ranked
// result. When no strategy yields a candidate and fallback is disabled, it
// returns a low-reliability empty result rather than an error.
func (e *Engine) Synthesize(target event.TargetDescriptor, cfg Config) Result {
	key := Fingerprint(target) + "|" + cfg.cacheKey()

	e.mu.RLock()
	cached, ok := e.cache[key]
	e.mu.RUnlock()
	if ok {
		return cached
	}

	result := e.synthesize(target, cfg)

	e.mu.Lock()
	e.cache[key] = result
	e.mu.Unlock()
	return result
}

// Invalidate drops the cached results for one snapshot fingerprint.
func (e *Engine) Invalidate(fingerprint string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for key := range e.cache {
		if strings.HasPrefix(key, fingerprint+"|") {
			delete(e.cache, key)
		}
	}
}

// InvalidateAll clears the cache.
func (e *Engine) InvalidateAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]Result)
}

func (e *Engine) synthesize(target event.TargetDescriptor, cfg Config) Result {
	priority := cfg.Priority
	if len(priority) == 0 {
		priority = DefaultPriority
	}

	var candidates []Candidate
	for _, strategy := range priority {
		if strategy == StrategyCSS && !cfg.Fallback {
			continue
		}
		c, ok := e.candidate(target, strategy, cfg)
		if !ok {
			continue
		}
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		return Result{
			Primary: Candidate{Strategy: StrategyCSS, Value: "", Reliability: 0},
			Degraded: &event.SelectorSynthesisDegraded{
				Strategy: string(StrategyCSS),
				Reason:   "no strategy produced a candidate and structural fallback is disabled",
			},
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Reliability > candidates[j].Reliability
	})

	result := Result{Primary: candidates[0]}
	if len(candidates) > 1 {
		result.Alternatives = candidates[1:]
	}
	if result.Primary.Strategy == StrategyCSS || result.Primary.Strategy == StrategyXPath {
		result.Degraded = &event.SelectorSynthesisDegraded{
			Strategy: string(result.Primary.Strategy),
			Reason:   "only a structural selector could be generated",
		}
	}
	return result
}

// candidate generates a single strategy's candidate, if any.
func (e *Engine) candidate(target event.TargetDescriptor, strategy Strategy, cfg Config) (Candidate, bool) {
	weight := strategyWeights[strategy]

	switch strategy {
	case StrategyTestID:
		for _, attr := range testIDAttributes {
			if v := target.Attr(attr); v != "" {
				return Candidate{strategy, fmt.Sprintf("[%s=%q]", attr, v), weight}, true
			}
		}
	case StrategyID:
		if id := target.Attr("id"); id != "" && isCSSSafeIdent(id) {
			return Candidate{strategy, "#" + id, weight}, true
		}
	case StrategyAria:
		if label := target.Attr("aria-label"); label != "" {
			return Candidate{strategy, fmt.Sprintf("[aria-label=%q]", label), weight}, true
		}
	case StrategyText:
		text := strings.TrimSpace(target.Text)
		if text != "" && len(text) <= 60 && !strings.ContainsAny(text, "\n\r") {
			return Candidate{strategy, "text=" + text, weight}, true
		}
	case StrategyCSS:
		value, positioned := buildStructuralPath(target, cfg)
		if value == "" {
			return Candidate{}, false
		}
		if positioned {
			weight *= positionPenalty
		}
		return Candidate{strategy, value, weight}, true
	case StrategyXPath:
		value := buildXPath(target)
		if value == "" {
			return Candidate{}, false
		}
		return Candidate{strategy, value, weight}, true
	}
	return Candidate{}, false
}

// isCSSSafeIdent rejects id values that would need escaping in a selector.
func isCSSSafeIdent(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return len(s) > 0
}
