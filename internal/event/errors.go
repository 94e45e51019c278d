// errors.go — Typed error taxonomy shared across the pipeline.
// Stable string codes lead each message so callers and logs can match on them.
package event

import (
	"fmt"
	"strings"
)

// AlreadyRecordingError signals start() while a session is active.
type AlreadyRecordingError struct {
	SessionID string
}

func (e *AlreadyRecordingError) Error() string {
	return fmt.Sprintf("already_recording: a recording session is already active (id: %s)", e.SessionID)
}

// NotRecordingError signals a lifecycle operation from an illegal state.
type NotRecordingError struct {
	Op    string
	State string
}

func (e *NotRecordingError) Error() string {
	return fmt.Sprintf("not_recording: cannot %s while %s", e.Op, e.State)
}

// SelectorSynthesisDegraded reports that selector synthesis fell back to a
// low-reliability result. It is a diagnostic, not a fatal condition.
type SelectorSynthesisDegraded struct {
	Strategy string
	Reason   string
}

func (e *SelectorSynthesisDegraded) Error() string {
	return fmt.Sprintf("selector_degraded: %s (strategy: %s)", e.Reason, e.Strategy)
}

// TemplateNotFoundError signals render/export of an unknown template id.
type TemplateNotFoundError struct {
	ID string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template_not_found: no template registered with id %q", e.ID)
}

// TemplateValidationError carries the complete list of placeholder violations
// found when validating a render context.
type TemplateValidationError struct {
	TemplateID string
	Violations []string
}

func (e *TemplateValidationError) Error() string {
	return fmt.Sprintf("template_validation_failed: template %q has %d violation(s): %s",
		e.TemplateID, len(e.Violations), strings.Join(e.Violations, "; "))
}

// ParameterValidationError carries every parameter problem found when
// instantiating a pattern template.
type ParameterValidationError struct {
	TemplateID string
	Missing    []string
	Mismatched []string
	Unknown    []string
}

func (e *ParameterValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Mismatched) > 0 {
		parts = append(parts, "mismatched: "+strings.Join(e.Mismatched, ", "))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown: "+strings.Join(e.Unknown, ", "))
	}
	return fmt.Sprintf("parameter_validation_failed: template %q: %s",
		e.TemplateID, strings.Join(parts, "; "))
}

// GenerationError wraps an unexpected failure during file synthesis,
// annotated with the offending event for traceability.
type GenerationError struct {
	Framework string
	EventID   string
	Sequence  int
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation_failed: %s generator failed at event %s (seq %d): %v",
		e.Framework, e.EventID, e.Sequence, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
