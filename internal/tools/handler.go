package tools

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fathom0/fathom/internal/artifact"
)

// AnalyticsStore defines the analytics operations the queryDatabase tool
// needs. Defined by the consumer; *analytics.Store satisfies it.
type AnalyticsStore interface {
	SalesMetrics(ctx context.Context) (map[string]any, error)
	TopProducts(ctx context.Context, limit int) ([]map[string]any, error)
	UserGrowth(ctx context.Context) ([]map[string]any, error)
	Execute(ctx context.Context, query string) ([]map[string]any, error)
}

// DocumentStore defines the persistence the document tools need.
// *artifact.Store satisfies it.
type DocumentStore interface {
	SaveDocument(ctx context.Context, d *artifact.Document) error
	Document(ctx context.Context, id uuid.UUID) (*artifact.Document, error)
	SaveSuggestions(ctx context.Context, suggestions []*artifact.Suggestion) error
}

// Generator produces document content and edit suggestions.
// *GenkitGenerator satisfies it; tests supply a canned fake.
type Generator interface {
	// StreamDocument generates content for a document, invoking onChunk for
	// each piece as it arrives, and returns the full content.
	StreamDocument(ctx context.Context, kind artifact.Kind, title, current, instructions string, onChunk func(text string) error) (string, error)

	// SuggestEdits proposes improvements to existing document content.
	SuggestEdits(ctx context.Context, content string) ([]EditSuggestion, error)
}

// EditSuggestion is one proposed edit from the model.
type EditSuggestion struct {
	OriginalText  string `json:"originalText"`
	SuggestedText string `json:"suggestedText"`
	Description   string `json:"description"`
}

// Config carries the external endpoints and credentials the tools call out
// to. Base URLs are injectable so tests can point them at httptest servers.
type Config struct {
	WeatherBaseURL  string
	FinanceBaseURL  string
	SearchBaseURL   string
	AlphaVantageKey string
}

// Handler implements the tool business logic with explicit dependencies.
//
// Genkit closures registered in RegisterAll are thin adapters around these
// methods, which keeps the logic independently testable.
type Handler struct {
	cfg       Config
	client    *http.Client
	analytics AnalyticsStore
	documents DocumentStore
	gen       Generator
	logger    *slog.Logger
}

// NewHandler creates a tool handler. client and logger may be nil, in which
// case a 30-second-timeout client and slog.Default() are used.
func NewHandler(
	cfg Config,
	client *http.Client,
	analytics AnalyticsStore,
	documents DocumentStore,
	gen Generator,
	logger *slog.Logger,
) *Handler {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cfg:       cfg,
		client:    client,
		analytics: analytics,
		documents: documents,
		gen:       gen,
		logger:    logger,
	}
}
