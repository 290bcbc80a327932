package artifact

// State is the reducer's lifecycle state.
type State string

const (
	StateAbsent    State = "absent"
	StateStreaming State = "streaming"
	StateIdle      State = "idle"
)

// SuggestionHook receives suggestion deltas, which are interpreted per kind
// by the consumer rather than by the generic reducer.
type SuggestionHook func(kind Kind, s Suggestion)

// Reducer folds an ordered Delta sequence into a single Artifact.
//
// The reducer consumes a growing buffer: Apply is called with the entire
// delta slice seen so far and only processes entries past the internal
// cursor. Replaying an already-consumed buffer therefore applies nothing,
// which makes re-delivery (a re-render, a retried read) safe.
//
// Transition table:
//
//	absent    + any delta     → create default document, apply, → streaming
//	streaming + *-delta       → append (image: replace) content, stay
//	streaming + id/title/kind → set field, stay
//	streaming + clear         → content = "", stay
//	streaming + finish        → → idle
//	idle      + content delta → start a fresh document (idle never regresses)
//	any       + suggestion    → routed to the suggestion hook
type Reducer struct {
	doc       Artifact
	started   bool
	finished  bool
	cursor    int
	onSuggest SuggestionHook
}

// NewReducer creates a reducer. hook may be nil, in which case suggestion
// deltas are dropped.
func NewReducer(hook SuggestionHook) *Reducer {
	return &Reducer{onSuggest: hook}
}

// Apply processes every delta past the cursor and advances the cursor to the
// end of the buffer. It returns the number of deltas applied, which is zero
// when the buffer has already been consumed.
func (r *Reducer) Apply(deltas []Delta) int {
	if r.cursor >= len(deltas) {
		return 0
	}
	pending := deltas[r.cursor:]
	r.cursor = len(deltas)

	for _, d := range pending {
		r.apply(d)
	}
	return len(pending)
}

// Cursor returns the number of deltas consumed so far.
func (r *Reducer) Cursor() int {
	return r.cursor
}

// State returns the reducer's lifecycle state.
func (r *Reducer) State() State {
	switch {
	case !r.started:
		return StateAbsent
	case r.finished:
		return StateIdle
	default:
		return StateStreaming
	}
}

// Artifact returns a copy of the current document. Zero value until the
// first delta arrives.
func (r *Reducer) Artifact() Artifact {
	return r.doc
}

func (r *Reducer) apply(d Delta) {
	if d.Type == DeltaSuggestion {
		if d.Suggestion != nil && r.onSuggest != nil {
			r.onSuggest(r.doc.Kind, *d.Suggestion)
		}
		return
	}

	// An idle document never resumes; a new delta starts a fresh one.
	if r.finished {
		r.doc = Artifact{}
		r.finished = false
		r.started = false
	}

	if !r.started {
		r.started = true
		r.doc.Status = StatusStreaming
	}

	switch d.Type {
	case DeltaText, DeltaCode, DeltaSheet:
		r.doc.Content += d.Content
	case DeltaImage:
		// Image content arrives whole; later frames replace earlier ones.
		r.doc.Content = d.Content
	case DeltaTitle:
		r.doc.Title = d.Content
	case DeltaID:
		r.doc.ID = d.Content
	case DeltaKind:
		r.doc.Kind = Kind(d.Content)
	case DeltaClear:
		r.doc.Content = ""
	case DeltaFinish:
		r.doc.Status = StatusIdle
		r.finished = true
	}
}
