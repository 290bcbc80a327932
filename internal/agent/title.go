package agent

import (
	"context"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// Title generation constants.
const (
	// TitleMaxLength is the cap on generated chat titles.
	TitleMaxLength = 50

	titleGenerationTimeout = 5 * time.Second
	titleInputMaxRunes     = 500
)

const titlePrompt = `Generate a concise title (max 50 characters) for a chat based on this first message.
The title should capture the main topic or intent.
Return ONLY the title text, no quotes, no explanations, no punctuation at the end.

Message: %s

Title:`

// GenerateTitle generates a chat title from the user's first message.
//
// Best-effort with a hard timeout: on any failure it falls back to a
// truncation of the message itself, so chat creation never blocks on the
// title model.
func (a *Agent) GenerateTitle(ctx context.Context, userMessage string) string {
	ctx, cancel := context.WithTimeout(ctx, titleGenerationTimeout)
	defer cancel()

	inputRunes := []rune(userMessage)
	if len(inputRunes) > titleInputMaxRunes {
		userMessage = string(inputRunes[:titleInputMaxRunes]) + "..."
	}

	opts := []ai.GenerateOption{
		ai.WithPrompt(titlePrompt, userMessage),
	}
	if a.titleModel != "" {
		opts = append(opts, ai.WithModelName(a.titleModel))
	}

	response, err := genkit.Generate(ctx, a.g, opts...)
	if err != nil {
		a.logger.Debug("title generation failed", "error", err)
		return TruncateTitle(userMessage)
	}

	title := strings.TrimSpace(response.Text())
	if title == "" {
		return TruncateTitle(userMessage)
	}
	return TruncateTitle(title)
}

// TruncateTitle caps a title at TitleMaxLength runes.
func TruncateTitle(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= TitleMaxLength {
		return s
	}
	return string(runes[:TitleMaxLength-3]) + "..."
}
