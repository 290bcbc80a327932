package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/fathom0/fathom/internal/artifact"
)

// Generation prompts per document kind.
const (
	textDocumentPrompt = "Write about the given topic. Markdown is supported. Use headings wherever appropriate."

	codeDocumentPrompt = `Generate self-contained code for the given topic. The code should be complete and runnable on its own. Prefer the standard library and include brief comments explaining non-obvious parts. Output only the code, no surrounding prose or markdown fences.`

	sheetDocumentPrompt = "Create a spreadsheet for the given topic in CSV format. The first row must contain meaningful column headers. Output only the CSV, no surrounding prose."

	imageDocumentPrompt = "Generate an image for the given topic. Return the image data."

	suggestionsPrompt = `You are a meticulous editor. Propose up to 5 improvements to the document below. Respond with a JSON array only, no prose, where each element has exactly these string fields: "originalText" (an exact excerpt from the document), "suggestedText" (the replacement), "description" (why the change helps).`
)

// GenkitGenerator produces document content and edit suggestions through a
// Genkit model. Image documents go through a separate image model, since
// text models answer the image prompt with prose.
type GenkitGenerator struct {
	g          *genkit.Genkit
	model      string
	imageModel string
}

// NewGenkitGenerator creates a generator bound to the artifact model and the
// image model.
func NewGenkitGenerator(g *genkit.Genkit, model, imageModel string) *GenkitGenerator {
	return &GenkitGenerator{g: g, model: model, imageModel: imageModel}
}

// StreamDocument generates document content, forwarding each chunk to
// onChunk as it arrives, and returns the full content.
//
// current and instructions are empty for fresh documents; updates carry the
// existing content and the model's change description.
func (gg *GenkitGenerator) StreamDocument(
	ctx context.Context,
	kind artifact.Kind,
	title, current, instructions string,
	onChunk func(text string) error,
) (string, error) {
	system := systemPromptFor(kind)
	prompt := title
	if current != "" {
		system = fmt.Sprintf("%s\n\nImprove the following document based on the given instructions.\n\n%s", system, current)
		prompt = instructions
	}

	if kind == artifact.KindImage {
		return gg.generateImage(ctx, system, prompt, onChunk)
	}

	resp, err := genkit.Generate(ctx, gg.g,
		ai.WithModelName(gg.model),
		ai.WithSystem(system),
		ai.WithPrompt(prompt),
		ai.WithStreaming(func(_ context.Context, chunk *ai.ModelResponseChunk) error {
			text := chunk.Text()
			if text == "" {
				return nil
			}
			return onChunk(text)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("generate %s document: %w", kind, err)
	}
	return resp.Text(), nil
}

// generateImage produces an image document. Image models answer with a media
// part, not text, so the content is the media payload as a data URL, emitted
// as a single chunk once generation completes.
func (gg *GenkitGenerator) generateImage(
	ctx context.Context,
	system, prompt string,
	onChunk func(text string) error,
) (string, error) {
	resp, err := genkit.Generate(ctx, gg.g,
		ai.WithModelName(gg.imageModel),
		ai.WithSystem(system),
		ai.WithPrompt(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("generate image document: %w", err)
	}

	content, err := mediaContent(resp.Message)
	if err != nil {
		return "", err
	}
	if err := onChunk(content); err != nil {
		return "", err
	}
	return content, nil
}

// mediaContent extracts the first media part of a model message as a data
// URL. Parts that already carry a data: or remote URL pass through unchanged;
// raw base64 payloads are wrapped with their content type.
func mediaContent(msg *ai.Message) (string, error) {
	if msg == nil {
		return "", errors.New("image model returned no message")
	}
	for _, p := range msg.Content {
		if p == nil || p.Kind != ai.PartMedia || p.Text == "" {
			continue
		}
		if p.ContentType == "" || strings.HasPrefix(p.Text, "data:") || strings.Contains(p.Text, "://") {
			return p.Text, nil
		}
		return "data:" + p.ContentType + ";base64," + p.Text, nil
	}
	return "", errors.New("image model returned no media part")
}

// SuggestEdits asks the model for edit suggestions on existing content.
func (gg *GenkitGenerator) SuggestEdits(ctx context.Context, content string) ([]EditSuggestion, error) {
	resp, err := genkit.Generate(ctx, gg.g,
		ai.WithModelName(gg.model),
		ai.WithSystem(suggestionsPrompt),
		ai.WithPrompt(content),
	)
	if err != nil {
		return nil, fmt.Errorf("generate suggestions: %w", err)
	}

	edits, err := parseSuggestions(resp.Text())
	if err != nil {
		return nil, fmt.Errorf("parse suggestions: %w", err)
	}
	return edits, nil
}

// systemPromptFor returns the generation prompt for a document kind.
func systemPromptFor(kind artifact.Kind) string {
	switch kind {
	case artifact.KindCode:
		return codeDocumentPrompt
	case artifact.KindSheet:
		return sheetDocumentPrompt
	case artifact.KindImage:
		return imageDocumentPrompt
	default:
		return textDocumentPrompt
	}
}

// parseSuggestions decodes the model's JSON reply, tolerating markdown code
// fences around the array.
func parseSuggestions(raw string) ([]EditSuggestion, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var edits []EditSuggestion
	if err := json.Unmarshal([]byte(trimmed), &edits); err != nil {
		return nil, err
	}
	return edits, nil
}
