// options.go — Recording configuration accepted at the capture boundary.
package event

// SelectorOptions configures selector synthesis during capture.
type SelectorOptions struct {
	Mode            string   `json:"mode,omitempty"`     // "auto" (default) or "strict"
	Priority        []string `json:"priority,omitempty"` // strategy names, highest first
	TimeoutMs       int      `json:"timeout_ms,omitempty"`
	Retries         int      `json:"retries,omitempty"`
	Fallback        bool     `json:"fallback"`
	Optimize        bool     `json:"optimize"`
	IncludePosition bool     `json:"include_position"`
}

// RecordingOptions configures a capture session.
type RecordingOptions struct {
	IgnoredEvents      []Type          `json:"ignored_events,omitempty"`
	DebounceMs         int64           `json:"debounce_ms"`
	MaxEvents          int             `json:"max_events"`
	CaptureScreenshots bool            `json:"capture_screenshots"`
	CaptureConsole     bool            `json:"capture_console"`
	CaptureNetwork     bool            `json:"capture_network"`
	CapturePerformance bool            `json:"capture_performance"`
	Selector           SelectorOptions `json:"selector,omitempty"`
}

// DefaultRecordingOptions returns the options used when the caller supplies none.
func DefaultRecordingOptions() RecordingOptions {
	return RecordingOptions{
		DebounceMs: 300,
		MaxEvents:  10000,
		Selector: SelectorOptions{
			Mode:     "auto",
			Fallback: true,
			Optimize: true,
		},
	}
}

// Ignores reports whether the given event type is filtered out (exact match).
func (o RecordingOptions) Ignores(t Type) bool {
	for _, ignored := range o.IgnoredEvents {
		if ignored == t {
			return true
		}
	}
	return false
}
