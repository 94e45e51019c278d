// processor.go — Deterministic normalization pass over raw recorded events.
// Passes run in a fixed order (dedupe, coalesce, drop-transient) and the
// whole pipeline is a pure function: identical input yields identical output.
package processor

import (
	"github.com/flowlens/flowlens/internal/event"
)

// Optimization names one normalization pass applied during processing.
type Optimization string

const (
	OptimizationDedupe        Optimization = "dedupe"
	OptimizationCoalesce      Optimization = "coalesce"
	OptimizationDropTransient Optimization = "drop_transient"
)

// AppliedOptimization records one pass and how many events it removed.
type AppliedOptimization struct {
	Kind    Optimization `json:"kind"`
	Removed int          `json:"removed"`
}

// Result summarizes a single processor run.
type Result struct {
	OriginalCount  int                   `json:"original_count"`
	ProcessedCount int                   `json:"processed_count"`
	Applied        []AppliedOptimization `json:"applied"`
}

// Options controls the normalization windows.
type Options struct {
	// DebounceWindowMs bounds the dedupe pass; consecutive identical events
	// farther apart than this are treated as intentional repeats.
	DebounceWindowMs int64
}

// DefaultOptions mirrors the recorder's default debounce window.
func DefaultOptions() Options {
	return Options{DebounceWindowMs: 300}
}

// Process normalizes a captured event list. The input is never mutated.
func Process(events []event.RecordedEvent, opts Options) ([]event.RecordedEvent, Result) {
	if opts.DebounceWindowMs <= 0 {
		opts = DefaultOptions()
	}

	result := Result{OriginalCount: len(events)}

	out := make([]event.RecordedEvent, len(events))
	copy(out, events)

	var removed int
	out, removed = dedupeConsecutive(out, opts.DebounceWindowMs)
	result.Applied = append(result.Applied, AppliedOptimization{OptimizationDedupe, removed})

	out, removed = coalesceInputRuns(out)
	result.Applied = append(result.Applied, AppliedOptimization{OptimizationCoalesce, removed})

	out, removed = dropTransientRuns(out)
	result.Applied = append(result.Applied, AppliedOptimization{OptimizationDropTransient, removed})

	result.ProcessedCount = len(out)
	return out, result
}

// identityKey is the (target, type, value) triple the dedupe pass compares.
func identityKey(e event.RecordedEvent) string {
	return e.Metadata.Selector + "\x00" + string(e.Type) + "\x00" + e.Value()
}

// dedupeConsecutive collapses consecutive events with identical
// (target, type, value) inside the debounce window, keeping the first.
func dedupeConsecutive(events []event.RecordedEvent, windowMs int64) ([]event.RecordedEvent, int) {
	if len(events) < 2 {
		return events, 0
	}
	out := events[:0:0]
	out = append(out, events[0])
	removed := 0
	for _, e := range events[1:] {
		prev := out[len(out)-1]
		if identityKey(e) == identityKey(prev) && e.TimestampMs-prev.TimestampMs <= windowMs {
			removed++
			continue
		}
		out = append(out, e)
	}
	return out, removed
}

// isCoalescible reports whether the type participates in input-run coalescing.
func isCoalescible(t event.Type) bool {
	return t == event.TypeInput || t == event.TypeChange
}

// coalesceInputRuns collapses a run of input/change events on the same target
// into the run's terminal event, annotated with the run's span and length so
// generated wait hints stay accurate.
//
// The recorder already debounces keystroke floods at capture time; this pass
// is kept as the safety net for lists that bypass the recorder, such as
// imported recordings.
func coalesceInputRuns(events []event.RecordedEvent) ([]event.RecordedEvent, int) {
	out := events[:0:0]
	removed := 0
	for i := 0; i < len(events); {
		e := events[i]
		if !isCoalescible(e.Type) {
			out = append(out, e)
			i++
			continue
		}
		// Extend the run over same-target input/change events.
		j := i
		for j+1 < len(events) &&
			isCoalescible(events[j+1].Type) &&
			events[j+1].Metadata.Selector == e.Metadata.Selector {
			j++
		}
		last := events[j]
		if j > i {
			last = last.WithData("coalescedCount", j-i+1)
			last = last.WithData("coalescedSpanMs", events[j].TimestampMs-events[i].TimestampMs)
			removed += j - i
		}
		out = append(out, last)
		i = j + 1
	}
	return out, removed
}

// dropTransientRuns removes events with no observable state effect: a scroll
// immediately followed by another scroll on the same target is transient,
// only the last of the run survives.
func dropTransientRuns(events []event.RecordedEvent) ([]event.RecordedEvent, int) {
	out := events[:0:0]
	removed := 0
	for i := 0; i < len(events); i++ {
		e := events[i]
		if e.Type == event.TypeScroll &&
			i+1 < len(events) &&
			events[i+1].Type == event.TypeScroll &&
			events[i+1].Metadata.Selector == e.Metadata.Selector {
			removed++
			continue
		}
		out = append(out, e)
	}
	return out, removed
}
