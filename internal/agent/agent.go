// Package agent runs chat turns against the model: prompt assembly, tool
// wiring, streaming, and sanitization of the finished transcript.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// fallbackResponseMessage is returned when the model produces an empty
	// response with no tool requests.
	fallbackResponseMessage = "I apologize, but I couldn't generate a response. Please try rephrasing your question."
)

// Sentinel errors for agent operations.
var (
	// ErrNoUserMessage indicates the turn contains no user message.
	ErrNoUserMessage = errors.New("no user message found")

	// ErrExecutionFailed indicates model execution failed.
	ErrExecutionFailed = errors.New("execution failed")
)

// ToolResolver returns the tool refs available to a model.
// *tools.Registry satisfies it.
type ToolResolver interface {
	Active(model string) []ai.ToolRef
}

// StreamCallback is called for each chunk of streaming model output.
// Return an error to abort the stream.
type StreamCallback func(ctx context.Context, chunk *ai.ModelResponseChunk) error

// Turn is one chat request: the full client-supplied transcript plus the
// model choice.
type Turn struct {
	ChatID   uuid.UUID
	Messages []*ai.Message
	Model    string // provider-qualified model name
}

// Response is the completed turn.
type Response struct {
	// Messages are the sanitized assistant messages to persist.
	Messages []*ai.Message

	// Text is the final assistant text.
	Text string

	// ToolRequests made during the agentic loop.
	ToolRequests []*ai.ToolRequest
}

// Config contains all required parameters for the agent.
type Config struct {
	Genkit *genkit.Genkit
	Tools  ToolResolver
	Logger *slog.Logger

	ReasoningModel string // model that runs without tools
	TitleModel     string // model for chat title generation
	MaxTurns       int    // maximum agentic loop turns

	// RateLimiter is optional; nil uses the default of 10 req/s, burst 30.
	RateLimiter *rate.Limiter
}

// validate checks if all required parameters are present.
func (cfg Config) validate() error {
	if cfg.Genkit == nil {
		return errors.New("genkit instance is required")
	}
	if cfg.Tools == nil {
		return errors.New("tool resolver is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Agent executes chat turns. It is stateless across requests; all
// configuration is captured immutably at construction, so it is safe for
// concurrent use.
type Agent struct {
	g              *genkit.Genkit
	tools          ToolResolver
	logger         *slog.Logger
	reasoningModel string
	titleModel     string
	maxTurns       int
	rateLimiter    *rate.Limiter
}

// New creates an Agent.
func New(cfg Config) (*Agent, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 5
	}

	rl := cfg.RateLimiter
	if rl == nil {
		rl = rate.NewLimiter(10, 30)
	}

	a := &Agent{
		g:              cfg.Genkit,
		tools:          cfg.Tools,
		logger:         cfg.Logger,
		reasoningModel: cfg.ReasoningModel,
		titleModel:     cfg.TitleModel,
		maxTurns:       maxTurns,
		rateLimiter:    rl,
	}

	a.logger.Info("chat agent initialized", "maxTurns", a.maxTurns)
	return a, nil
}

// ExecuteTurn runs one chat turn with optional streaming output.
//
// The callback, when non-nil, receives each model chunk as it is generated;
// the finished Response is returned either way. Tool activity streams
// through the emitter bound to ctx, not through the callback.
func (a *Agent) ExecuteTurn(ctx context.Context, turn Turn, callback StreamCallback) (*Response, error) {
	if lastUserMessage(turn.Messages) == nil {
		return nil, ErrNoUserMessage
	}

	if err := a.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	// Deep copy is required: Genkit's renderMessages() modifies msg.Content
	// in place, so concurrent turns sharing message objects would race.
	messages := deepCopyMessages(turn.Messages)

	toolRefs := a.tools.Active(turn.Model)
	opts := []ai.GenerateOption{
		ai.WithModelName(turn.Model),
		ai.WithSystem(SystemPrompt(turn.Model, a.reasoningModel)),
		ai.WithMessages(messages...),
		ai.WithMaxTurns(a.maxTurns),
	}
	if len(toolRefs) > 0 {
		opts = append(opts, ai.WithTools(toolRefs...))
	}
	if callback != nil {
		opts = append(opts, ai.WithStreaming(ai.ModelStreamCallback(callback)))
	}

	a.logger.Debug("executing chat turn",
		"chat_id", turn.ChatID,
		"model", turn.Model,
		"toolCount", len(toolRefs),
		"historyLength", len(messages),
	)

	resp, err := genkit.Generate(ctx, a.g, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecutionFailed, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" && len(resp.ToolRequests()) == 0 {
		a.logger.Warn("model returned empty response with no tool requests",
			"chat_id", turn.ChatID)
		text = fallbackResponseMessage
	}

	sanitized := sanitizeResponseMessages(responseMessages(resp, text))

	return &Response{
		Messages:     sanitized,
		Text:         text,
		ToolRequests: resp.ToolRequests(),
	}, nil
}

// responseMessages extracts the assistant messages from a model response.
// fallbackText replaces the content when the model message is unusable.
func responseMessages(resp *ai.ModelResponse, fallbackText string) []*ai.Message {
	if resp.Message == nil {
		return []*ai.Message{ai.NewModelMessage(ai.NewTextPart(fallbackText))}
	}
	return []*ai.Message{resp.Message}
}

// lastUserMessage returns the most recent user message, or nil.
func lastUserMessage(messages []*ai.Message) *ai.Message {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == ai.RoleUser {
			return messages[i]
		}
	}
	return nil
}

// deepCopyMessages creates independent copies of Message and Part structs.
//
// WORKAROUND: Genkit's renderMessages() modifies msg.Content in place,
// causing data races in concurrent executions. Tested against
// github.com/firebase/genkit/go v1.4.0; re-test with the race detector
// before removing on upgrade.
func deepCopyMessages(msgs []*ai.Message) []*ai.Message {
	if msgs == nil {
		return nil
	}
	copied := make([]*ai.Message, len(msgs))
	for i, msg := range msgs {
		parts := make([]*ai.Part, len(msg.Content))
		for j, part := range msg.Content {
			parts[j] = deepCopyPart(part)
		}
		copied[i] = &ai.Message{
			Role:     msg.Role,
			Content:  parts,
			Metadata: shallowCopyMap(msg.Metadata),
		}
	}
	return copied
}

// deepCopyPart creates an independent copy of an ai.Part struct.
// ToolRequest.Input and ToolResponse.Output are copied by reference:
// renderMessages only mutates the Content slice, not tool data.
func deepCopyPart(p *ai.Part) *ai.Part {
	if p == nil {
		return nil
	}
	cp := &ai.Part{
		Kind:        p.Kind,
		ContentType: p.ContentType,
		Text:        p.Text,
		Custom:      shallowCopyMap(p.Custom),
		Metadata:    shallowCopyMap(p.Metadata),
	}
	if p.ToolRequest != nil {
		cp.ToolRequest = &ai.ToolRequest{
			Input: p.ToolRequest.Input,
			Name:  p.ToolRequest.Name,
			Ref:   p.ToolRequest.Ref,
		}
	}
	if p.ToolResponse != nil {
		cp.ToolResponse = &ai.ToolResponse{
			Name:   p.ToolResponse.Name,
			Output: p.ToolResponse.Output,
			Ref:    p.ToolResponse.Ref,
		}
	}
	if p.Resource != nil {
		cp.Resource = &ai.ResourcePart{Uri: p.Resource.Uri}
	}
	return cp
}

// shallowCopyMap copies map keys and values but not nested structures.
func shallowCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
