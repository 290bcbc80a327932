package tools

import (
	"testing"

	"github.com/firebase/genkit/go/ai"

	"github.com/fathom0/fathom/internal/artifact"
)

func TestMediaContent(t *testing.T) {
	tests := []struct {
		name    string
		msg     *ai.Message
		want    string
		wantErr bool
	}{
		{
			name: "data url passes through",
			msg: &ai.Message{Content: []*ai.Part{
				{Kind: ai.PartMedia, ContentType: "image/png", Text: "data:image/png;base64,AAAA"},
			}},
			want: "data:image/png;base64,AAAA",
		},
		{
			name: "remote url passes through",
			msg: &ai.Message{Content: []*ai.Part{
				{Kind: ai.PartMedia, ContentType: "image/jpeg", Text: "https://cdn.example.com/img.jpg"},
			}},
			want: "https://cdn.example.com/img.jpg",
		},
		{
			name: "raw base64 wrapped with content type",
			msg: &ai.Message{Content: []*ai.Part{
				{Kind: ai.PartMedia, ContentType: "image/png", Text: "iVBORw0KGgo="},
			}},
			want: "data:image/png;base64,iVBORw0KGgo=",
		},
		{
			name: "media after text commentary",
			msg: &ai.Message{Content: []*ai.Part{
				ai.NewTextPart("here is your image"),
				{Kind: ai.PartMedia, ContentType: "image/png", Text: "data:image/png;base64,BBBB"},
			}},
			want: "data:image/png;base64,BBBB",
		},
		{
			name:    "text only response",
			msg:     &ai.Message{Content: []*ai.Part{ai.NewTextPart("cannot draw, sorry")}},
			wantErr: true,
		},
		{
			name:    "nil message",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mediaContent(tt.msg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("mediaContent() = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("mediaContent() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("mediaContent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseSuggestions(t *testing.T) {
	const payload = `[{"originalText": "a", "suggestedText": "b", "description": "c"}]`

	tests := []struct {
		name string
		raw  string
	}{
		{"bare array", payload},
		{"fenced", "```json\n" + payload + "\n```"},
		{"fenced without language", "```\n" + payload + "\n```"},
		{"surrounding whitespace", "\n  " + payload + "  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edits, err := parseSuggestions(tt.raw)
			if err != nil {
				t.Fatalf("parseSuggestions() error = %v", err)
			}
			if len(edits) != 1 {
				t.Fatalf("len(edits) = %d, want 1", len(edits))
			}
			if edits[0].OriginalText != "a" || edits[0].SuggestedText != "b" || edits[0].Description != "c" {
				t.Errorf("edits[0] = %+v", edits[0])
			}
		})
	}
}

func TestParseSuggestionsRejectsProse(t *testing.T) {
	if _, err := parseSuggestions("Sure! Here are my suggestions: ..."); err == nil {
		t.Error("parseSuggestions() accepted non-JSON prose")
	}
}

func TestSystemPromptFor(t *testing.T) {
	kinds := []artifact.Kind{artifact.KindText, artifact.KindCode, artifact.KindSheet, artifact.KindImage}
	seen := make(map[string]artifact.Kind)
	for _, k := range kinds {
		p := systemPromptFor(k)
		if p == "" {
			t.Errorf("systemPromptFor(%s) is empty", k)
		}
		if prev, dup := seen[p]; dup {
			t.Errorf("kinds %s and %s share a prompt", prev, k)
		}
		seen[p] = k
	}
}

func TestContentDelta(t *testing.T) {
	tests := []struct {
		kind artifact.Kind
		want artifact.DeltaType
	}{
		{artifact.KindText, artifact.DeltaText},
		{artifact.KindCode, artifact.DeltaCode},
		{artifact.KindSheet, artifact.DeltaSheet},
		{artifact.KindImage, artifact.DeltaImage},
	}
	for _, tt := range tests {
		if got := contentDelta(tt.kind); got != tt.want {
			t.Errorf("contentDelta(%s) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
