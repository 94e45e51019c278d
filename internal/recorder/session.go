// session.go — Recording session lifecycle and event capture.
// A Session is an explicitly constructed object owning event identity and
// sequencing while recording; ownership of the event list passes to the
// caller when Stop returns.
package recorder

import (
	"sync"

	"github.com/google/uuid"

	"github.com/flowlens/flowlens/internal/event"
	"github.com/flowlens/flowlens/internal/selector"
)

// State is the recorder lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StatePaused    State = "paused"
	StateStopped   State = "stopped"
)

// Interaction is one raw notification from the observed page surface.
type Interaction struct {
	Type        event.Type
	Target      event.TargetDescriptor
	Data        map[string]any
	Context     event.PageContext
	TimestampMs int64
}

// Stats summarizes a session's capture counters.
type Stats struct {
	Captured  int `json:"captured"`
	Ignored   int `json:"ignored"`
	Debounced int `json:"debounced"`
	Dropped   int `json:"dropped"` // over MaxEvents
}

// debounceKey identifies the (target, event-type) pair a debounce window
// applies to.
type debounceKey struct {
	fingerprint string
	eventType   event.Type
}

// debounceSlot points at the most recent event for a key so a follow-up
// inside the window can replace its payload in place.
type debounceSlot struct {
	index       int
	timestampMs int64
}

// Session is the push-based recorder. All methods are safe for concurrent
// use; at most one recording is active per Session.
type Session struct {
	mu      sync.Mutex
	state   State
	opts    event.RecordingOptions
	engine  *selector.Engine
	events  []event.RecordedEvent
	seq     int
	stats   Stats
	pending map[debounceKey]debounceSlot
}

// NewSession returns an idle session backed by the given selector engine.
func NewSession(engine *selector.Engine) *Session {
	return &Session{state: StateIdle, engine: engine}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start begins a new recording. Valid from Idle or Stopped; the sequence
// counter and event list reset.
func (s *Session) Start(opts event.RecordingOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRecording || s.state == StatePaused {
		return &event.AlreadyRecordingError{SessionID: s.sessionID()}
	}

	// Zero-valued fields fall back to defaults individually; a partially
	// filled options struct keeps its ignore list and selector settings.
	def := event.DefaultRecordingOptions()
	if opts.DebounceMs == 0 {
		opts.DebounceMs = def.DebounceMs
	}
	if opts.MaxEvents == 0 {
		opts.MaxEvents = def.MaxEvents
	}
	if opts.Selector.Mode == "" && len(opts.Selector.Priority) == 0 {
		opts.Selector = def.Selector
	}

	s.opts = opts
	s.events = nil
	s.seq = 0
	s.stats = Stats{}
	s.pending = make(map[debounceKey]debounceSlot)
	s.state = StateRecording
	return nil
}

// Pause suspends capture without losing already-captured events.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRecording {
		return &event.NotRecordingError{Op: "pause", State: string(s.state)}
	}
	s.state = StatePaused
	return nil
}

// Resume continues a paused recording.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		return &event.NotRecordingError{Op: "resume", State: string(s.state)}
	}
	s.state = StateRecording
	return nil
}

// Stop flushes pending debounce state and returns the full sequence-ordered
// event list. Valid from Recording or Paused.
func (s *Session) Stop() ([]event.RecordedEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRecording && s.state != StatePaused {
		return nil, &event.NotRecordingError{Op: "stop", State: string(s.state)}
	}
	s.state = StateStopped
	s.pending = nil

	out := make([]event.RecordedEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}

// Events returns a copy of the events captured so far.
func (s *Session) Events() []event.RecordedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.RecordedEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Stats returns the session's capture counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Capture converts a qualifying interaction into a RecordedEvent.
// Filtered or debounced interactions are absorbed silently; capture in a
// non-recording state is an error.
func (s *Session) Capture(in Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return &event.NotRecordingError{Op: "capture", State: string(s.state)}
	}
	if s.opts.Ignores(in.Type) {
		s.stats.Ignored++
		return nil
	}

	fingerprint := selector.Fingerprint(in.Target)
	key := debounceKey{fingerprint: fingerprint, eventType: in.Type}

	// Continuous interactions (repeated keystrokes in the same field) inside
	// the debounce window collapse to the latest value: the prior event keeps
	// its identity and position, only payload and timestamp advance. The
	// processor's coalesce pass remains as a safety net for imported lists.
	if slot, ok := s.pending[key]; ok && in.TimestampMs-slot.timestampMs <= s.opts.DebounceMs {
		updated := s.events[slot.index]
		updated.Data = cloneData(in.Data)
		updated.TimestampMs = in.TimestampMs
		s.events[slot.index] = updated
		s.pending[key] = debounceSlot{index: slot.index, timestampMs: in.TimestampMs}
		s.stats.Debounced++
		return nil
	}

	if s.opts.MaxEvents > 0 && len(s.events) >= s.opts.MaxEvents {
		s.stats.Dropped++
		return nil
	}

	result := s.engine.Synthesize(in.Target, selectorConfig(s.opts.Selector))
	s.seq++
	rec := event.RecordedEvent{
		ID:          "evt_" + uuid.NewString(),
		Sequence:    s.seq,
		TimestampMs: in.TimestampMs,
		Type:        in.Type,
		Target:      in.Target,
		Data:        cloneData(in.Data),
		Context:     in.Context,
		Metadata: event.Metadata{
			Selector:            result.Primary.Value,
			SelectorStrategy:    string(result.Primary.Strategy),
			SelectorReliability: result.Primary.Reliability,
		},
	}
	if result.Degraded != nil {
		rec = rec.WithAnnotation("selector_degraded", result.Degraded.Error())
	}

	s.events = append(s.events, rec)
	s.pending[key] = debounceSlot{index: len(s.events) - 1, timestampMs: in.TimestampMs}
	s.stats.Captured++
	return nil
}

func (s *Session) sessionID() string {
	if len(s.events) > 0 {
		return s.events[0].ID
	}
	return "active"
}

// selectorConfig maps the capture-boundary selector options onto the engine's
// config, tolerating unknown strategy names.
func selectorConfig(opts event.SelectorOptions) selector.Config {
	cfg := selector.Config{
		Fallback:        opts.Fallback,
		Optimize:        opts.Optimize,
		IncludePosition: opts.IncludePosition,
	}
	for _, name := range opts.Priority {
		s := selector.Strategy(name)
		switch s {
		case selector.StrategyTestID, selector.StrategyID, selector.StrategyAria,
			selector.StrategyText, selector.StrategyCSS, selector.StrategyXPath:
			cfg.Priority = append(cfg.Priority, s)
		}
	}
	if len(cfg.Priority) == 0 {
		cfg.Priority = selector.DefaultPriority
	}
	return cfg
}

func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
