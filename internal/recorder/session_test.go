// session_test.go — Tests for the recording state machine and capture path.
package recorder

import (
	"errors"
	"testing"

	"github.com/flowlens/flowlens/internal/event"
	"github.com/flowlens/flowlens/internal/selector"
)

func newTestSession() *Session {
	return NewSession(selector.NewEngine())
}

func inputOn(id, value string, ts int64) Interaction {
	return Interaction{
		Type:        event.TypeInput,
		Target:      event.TargetDescriptor{Tag: "input", Attributes: map[string]string{"id": id}},
		Data:        map[string]any{"value": value},
		Context:     event.PageContext{URL: "https://app.example.com/login"},
		TimestampMs: ts,
	}
}

func clickOn(id string, ts int64) Interaction {
	return Interaction{
		Type:        event.TypeClick,
		Target:      event.TargetDescriptor{Tag: "button", Attributes: map[string]string{"id": id}},
		Context:     event.PageContext{URL: "https://app.example.com/login"},
		TimestampMs: ts,
	}
}

// ============================================
// Lifecycle transitions
// ============================================

func TestStart_RejectsWhileRecording(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	if err := s.Start(event.DefaultRecordingOptions()); err != nil {
		t.Fatalf("first start: %v", err)
	}

	err := s.Start(event.DefaultRecordingOptions())
	var already *event.AlreadyRecordingError
	if !errors.As(err, &already) {
		t.Fatalf("error = %v, want AlreadyRecordingError", err)
	}

	if err := s.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := s.Start(event.DefaultRecordingOptions()); !errors.As(err, &already) {
		t.Fatalf("start while paused = %v, want AlreadyRecordingError", err)
	}
}

func TestStart_AllowedFromStopped(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	if err := s.Start(event.DefaultRecordingOptions()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Capture(clickOn("a", 100)); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if _, err := s.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if err := s.Start(event.DefaultRecordingOptions()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if got := len(s.Events()); got != 0 {
		t.Fatalf("events after restart = %d, want 0 (sequence reset)", got)
	}
}

func TestLifecycle_IllegalTransitions(t *testing.T) {
	t.Parallel()
	s := newTestSession()

	var notRecording *event.NotRecordingError
	if err := s.Pause(); !errors.As(err, &notRecording) {
		t.Fatalf("pause from idle = %v, want NotRecordingError", err)
	}
	if err := s.Resume(); !errors.As(err, &notRecording) {
		t.Fatalf("resume from idle = %v, want NotRecordingError", err)
	}
	if _, err := s.Stop(); !errors.As(err, &notRecording) {
		t.Fatalf("stop from idle = %v, want NotRecordingError", err)
	}
	if err := s.Capture(clickOn("a", 1)); !errors.As(err, &notRecording) {
		t.Fatalf("capture from idle = %v, want NotRecordingError", err)
	}
}

func TestPauseResume_KeepsEvents(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	if err := s.Start(event.DefaultRecordingOptions()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Capture(clickOn("a", 100)); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if err := s.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}

	var notRecording *event.NotRecordingError
	if err := s.Capture(clickOn("b", 200)); !errors.As(err, &notRecording) {
		t.Fatalf("capture while paused = %v, want NotRecordingError", err)
	}

	if err := s.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if err := s.Capture(clickOn("c", 300)); err != nil {
		t.Fatalf("capture after resume: %v", err)
	}

	events, err := s.Stop()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Sequence != 1 || events[1].Sequence != 2 {
		t.Fatalf("sequences = %d, %d, want 1, 2", events[0].Sequence, events[1].Sequence)
	}
}

// ============================================
// Capture filtering
// ============================================

func TestCapture_IgnoredEventTypes(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	opts := event.DefaultRecordingOptions()
	opts.IgnoredEvents = []event.Type{event.TypeScroll}
	if err := s.Start(opts); err != nil {
		t.Fatalf("start: %v", err)
	}

	scroll := Interaction{Type: event.TypeScroll, Target: event.TargetDescriptor{Tag: "body"}, TimestampMs: 10}
	if err := s.Capture(scroll); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if err := s.Capture(clickOn("a", 20)); err != nil {
		t.Fatalf("capture: %v", err)
	}

	events, _ := s.Stop()
	if len(events) != 1 || events[0].Type != event.TypeClick {
		t.Fatalf("events = %+v, want single click", events)
	}
	if got := s.Stats().Ignored; got != 1 {
		t.Fatalf("ignored = %d, want 1", got)
	}
}

func TestStart_PartialOptionsKeepIgnoredEvents(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	// Only the ignore list is set; numeric fields get defaults without
	// discarding it.
	opts := event.RecordingOptions{IgnoredEvents: []event.Type{event.TypeScroll}}
	if err := s.Start(opts); err != nil {
		t.Fatalf("start: %v", err)
	}

	scroll := Interaction{Type: event.TypeScroll, Target: event.TargetDescriptor{Tag: "body"}, TimestampMs: 10}
	if err := s.Capture(scroll); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if err := s.Capture(inputOn("name", "J", 100)); err != nil {
		t.Fatalf("capture: %v", err)
	}
	// Inside the default 300ms window: collapses onto the first input.
	if err := s.Capture(inputOn("name", "Jo", 250)); err != nil {
		t.Fatalf("capture: %v", err)
	}

	events, _ := s.Stop()
	if len(events) != 1 || events[0].Type != event.TypeInput {
		t.Fatalf("events = %+v, want single input", events)
	}
	if got := events[0].Value(); got != "Jo" {
		t.Fatalf("value = %q, want %q", got, "Jo")
	}
	if got := s.Stats().Ignored; got != 1 {
		t.Fatalf("ignored = %d, want 1", got)
	}
}

func TestCapture_DebounceCollapsesToLatestValue(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	opts := event.DefaultRecordingOptions()
	opts.DebounceMs = 300
	if err := s.Start(opts); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := s.Capture(inputOn("name", "J", 100)); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if err := s.Capture(inputOn("name", "Jo", 250)); err != nil {
		t.Fatalf("capture: %v", err)
	}
	// Outside the window relative to the last keystroke: new event.
	if err := s.Capture(inputOn("name", "Joe", 900)); err != nil {
		t.Fatalf("capture: %v", err)
	}

	events, _ := s.Stop()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if got := events[0].Value(); got != "Jo" {
		t.Fatalf("first value = %q, want %q (latest inside window)", got, "Jo")
	}
	if got := events[1].Value(); got != "Joe" {
		t.Fatalf("second value = %q, want %q", got, "Joe")
	}
	if got := s.Stats().Debounced; got != 1 {
		t.Fatalf("debounced = %d, want 1", got)
	}
}

func TestCapture_DebounceIsPerTargetAndType(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	opts := event.DefaultRecordingOptions()
	opts.DebounceMs = 300
	if err := s.Start(opts); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := s.Capture(inputOn("email", "a", 100)); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if err := s.Capture(inputOn("password", "b", 150)); err != nil {
		t.Fatalf("capture: %v", err)
	}

	events, _ := s.Stop()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2 (different targets never debounce together)", len(events))
	}
}

func TestCapture_MaxEventsCap(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	opts := event.DefaultRecordingOptions()
	opts.MaxEvents = 2
	if err := s.Start(opts); err != nil {
		t.Fatalf("start: %v", err)
	}

	for i, id := range []string{"a", "b", "c"} {
		if err := s.Capture(clickOn(id, int64(1000*(i+1)))); err != nil {
			t.Fatalf("capture %s: %v", id, err)
		}
	}

	events, _ := s.Stop()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if got := s.Stats().Dropped; got != 1 {
		t.Fatalf("dropped = %d, want 1", got)
	}
}

// ============================================
// Selector metadata
// ============================================

func TestCapture_AttachesSelectorMetadata(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	if err := s.Start(event.DefaultRecordingOptions()); err != nil {
		t.Fatalf("start: %v", err)
	}

	in := clickOn("submit", 100)
	in.Target.Attributes["data-testid"] = "submit-btn"
	if err := s.Capture(in); err != nil {
		t.Fatalf("capture: %v", err)
	}

	events, _ := s.Stop()
	meta := events[0].Metadata
	if meta.Selector != `[data-testid="submit-btn"]` {
		t.Fatalf("selector = %q", meta.Selector)
	}
	if meta.SelectorStrategy != "testid" {
		t.Fatalf("strategy = %q, want testid", meta.SelectorStrategy)
	}
	if meta.SelectorReliability < 0.8 {
		t.Fatalf("reliability = %v, want >= 0.8", meta.SelectorReliability)
	}
	if events[0].ID == "" || events[0].Sequence != 1 {
		t.Fatalf("identity = %q seq %d", events[0].ID, events[0].Sequence)
	}
}
