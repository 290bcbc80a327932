package artifact

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DeltaType identifies one of the ten wire-level delta kinds.
type DeltaType string

const (
	DeltaText       DeltaType = "text-delta"
	DeltaCode       DeltaType = "code-delta"
	DeltaSheet      DeltaType = "sheet-delta"
	DeltaImage      DeltaType = "image-delta"
	DeltaTitle      DeltaType = "title"
	DeltaID         DeltaType = "id"
	DeltaKind       DeltaType = "kind"
	DeltaClear      DeltaType = "clear"
	DeltaSuggestion DeltaType = "suggestion"
	DeltaFinish     DeltaType = "finish"
)

// Suggestion is a proposed edit to a document. It travels the wire inside a
// suggestion delta and is persisted alongside the document it targets.
type Suggestion struct {
	ID            uuid.UUID `json:"id"`
	DocumentID    uuid.UUID `json:"documentId"`
	OriginalText  string    `json:"originalText"`
	SuggestedText string    `json:"suggestedText"`
	Description   string    `json:"description,omitempty"`
	IsResolved    bool      `json:"isResolved"`
	UserID        string    `json:"-"`
	CreatedAt     time.Time `json:"-"`
}

// Delta is one incremental, typed update to the in-progress artifact.
// On the wire it is `{"type": ..., "content": ...}` where content is a string
// for every type except suggestion, which carries a Suggestion record.
// Deltas are produced by document tools and consumed exactly once, in arrival
// order, by the Reducer.
type Delta struct {
	Type       DeltaType
	Content    string
	Suggestion *Suggestion
}

// deltaWire is the JSON shape of a Delta.
type deltaWire struct {
	Type    DeltaType       `json:"type"`
	Content json.RawMessage `json:"content"`
}

// MarshalJSON implements json.Marshaler, encoding content as a string or, for
// suggestion deltas, as the suggestion record.
func (d Delta) MarshalJSON() ([]byte, error) {
	var content any = d.Content
	if d.Type == DeltaSuggestion {
		if d.Suggestion == nil {
			return nil, fmt.Errorf("suggestion delta without suggestion record")
		}
		content = d.Suggestion
	}
	return json.Marshal(struct {
		Type    DeltaType `json:"type"`
		Content any       `json:"content"`
	}{Type: d.Type, Content: content})
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Delta) UnmarshalJSON(data []byte) error {
	var wire deltaWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("unmarshal delta: %w", err)
	}
	d.Type = wire.Type
	d.Content = ""
	d.Suggestion = nil

	if len(wire.Content) == 0 {
		return nil
	}
	if wire.Type == DeltaSuggestion {
		var s Suggestion
		if err := json.Unmarshal(wire.Content, &s); err != nil {
			return fmt.Errorf("unmarshal suggestion content: %w", err)
		}
		d.Suggestion = &s
		return nil
	}
	if err := json.Unmarshal(wire.Content, &d.Content); err != nil {
		return fmt.Errorf("unmarshal delta content: %w", err)
	}
	return nil
}
