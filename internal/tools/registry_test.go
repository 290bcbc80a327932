package tools

import "testing"

func TestActiveReasoningModelGetsNoTools(t *testing.T) {
	r := NewRegistry(nil, "googleai/gemini-2.5-pro")

	if refs := r.Active("googleai/gemini-2.5-pro"); refs != nil {
		t.Errorf("reasoning model got %d tools, want none", len(refs))
	}
	if n := r.Count("googleai/gemini-2.5-pro"); n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}
}

func TestToolNamesCoversRegisteredSet(t *testing.T) {
	names := make(map[string]bool)
	for _, n := range ToolNames() {
		if names[n] {
			t.Errorf("duplicate tool name %q", n)
		}
		names[n] = true
	}
	for _, want := range []string{
		"getWeather", "getFinance", "webSearch", "queryDatabase",
		"createDocument", "updateDocument", "requestSuggestions",
	} {
		if !names[want] {
			t.Errorf("tool %q not registered", want)
		}
	}
}
