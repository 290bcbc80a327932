package artifact

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestDeltaMarshalText(t *testing.T) {
	data, err := json.Marshal(Delta{Type: DeltaText, Content: "hello"})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"type":"text-delta","content":"hello"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestDeltaMarshalFinish(t *testing.T) {
	data, err := json.Marshal(Delta{Type: DeltaFinish})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"type":"finish","content":""}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestDeltaSuggestionRoundTrip(t *testing.T) {
	in := Delta{
		Type: DeltaSuggestion,
		Suggestion: &Suggestion{
			ID:            uuid.MustParse("11111111-1111-1111-1111-111111111111"),
			DocumentID:    uuid.MustParse("22222222-2222-2222-2222-222222222222"),
			OriginalText:  "teh",
			SuggestedText: "the",
			Description:   "typo",
		},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var out Delta
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if out.Type != DeltaSuggestion || out.Suggestion == nil {
		t.Fatalf("Unmarshal() = %+v", out)
	}
	if *out.Suggestion != *in.Suggestion {
		t.Errorf("suggestion round trip: got %+v, want %+v", *out.Suggestion, *in.Suggestion)
	}
}

func TestDeltaMarshalSuggestionWithoutRecord(t *testing.T) {
	if _, err := json.Marshal(Delta{Type: DeltaSuggestion}); err == nil {
		t.Fatal("Marshal() accepted a suggestion delta without a record")
	}
}

func TestDeltaUnmarshalStringContent(t *testing.T) {
	var d Delta
	if err := json.Unmarshal([]byte(`{"type":"kind","content":"code"}`), &d); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if d.Type != DeltaKind || d.Content != "code" {
		t.Errorf("Unmarshal() = %+v", d)
	}
}
