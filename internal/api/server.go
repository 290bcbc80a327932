// Package api exposes the chat service over HTTP: a streaming turn endpoint
// on Server-Sent Events plus JSON endpoints for history, documents and
// suggestions.
//
// Authentication is a signed identity cookie (see Auth); every data endpoint
// scopes reads and writes to the authenticated user.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/fathom0/fathom/internal/agent"
	"github.com/fathom0/fathom/internal/artifact"
	"github.com/fathom0/fathom/internal/chat"
)

// Model aliases accepted in chat requests. The client picks a capability
// tier; the server maps it to a concrete provider model.
const (
	ModelChat      = "chat-model"
	ModelReasoning = "chat-model-reasoning"
)

// Authenticator resolves the requesting user's identity. *Auth is the
// default implementation (signed identity cookie).
type Authenticator interface {
	UserID(r *http.Request) (string, error)
}

// Orchestrator runs one chat turn and generates titles. *agent.Agent
// satisfies it.
type Orchestrator interface {
	ExecuteTurn(ctx context.Context, turn agent.Turn, callback agent.StreamCallback) (*agent.Response, error)
	GenerateTitle(ctx context.Context, userMessage string) string
}

// ChatStore is the conversation persistence the handlers need.
type ChatStore interface {
	CreateChat(ctx context.Context, c *chat.Chat) error
	Chat(ctx context.Context, id uuid.UUID) (*chat.Chat, error)
	ListChats(ctx context.Context, userID string, limit, offset int32) ([]*chat.Chat, error)
	DeleteChat(ctx context.Context, id uuid.UUID) error
	SaveMessages(ctx context.Context, messages []*chat.Message) error
	Messages(ctx context.Context, chatID uuid.UUID, limit, offset int32) ([]*chat.Message, error)
}

// DocumentStore is the artifact persistence the handlers need.
type DocumentStore interface {
	Document(ctx context.Context, id uuid.UUID) (*artifact.Document, error)
	DocumentsByUser(ctx context.Context, userID string, limit, offset int32) ([]*artifact.Document, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error
	Suggestions(ctx context.Context, documentID uuid.UUID) ([]*artifact.Suggestion, error)
	ResolveSuggestion(ctx context.Context, id uuid.UUID) error
}

// Config contains the server's dependencies and model mapping.
type Config struct {
	Orchestrator Orchestrator
	Chats        ChatStore
	Documents    DocumentStore
	Auth         Authenticator
	Logger       *slog.Logger

	// Provider-qualified model names the client aliases map to.
	ChatModel      string
	ReasoningModel string

	// MaxHistoryMessages caps the transcript accepted per turn.
	MaxHistoryMessages int32
}

// Server is the HTTP front end. It owns the route table; middleware is
// applied in ServeHTTP so every route gets recovery and logging.
type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	cfg    Config
}

// NewServer validates the configuration and builds the route table.
func NewServer(cfg Config) (*Server, error) {
	switch {
	case cfg.Orchestrator == nil:
		return nil, errors.New("orchestrator is required")
	case cfg.Chats == nil:
		return nil, errors.New("chat store is required")
	case cfg.Documents == nil:
		return nil, errors.New("document store is required")
	case cfg.Auth == nil:
		return nil, errors.New("auth is required")
	case cfg.ChatModel == "":
		return nil, errors.New("chat model is required")
	case cfg.ReasoningModel == "":
		return nil, errors.New("reasoning model is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxHistoryMessages <= 0 {
		cfg.MaxHistoryMessages = 100
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: cfg.Logger,
		cfg:    cfg,
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("DELETE /api/chat", s.handleDeleteChat)
	s.mux.HandleFunc("GET /api/history", s.handleHistory)
	s.mux.HandleFunc("GET /api/chat/{id}/messages", s.handleMessages)

	s.mux.HandleFunc("GET /api/documents", s.handleDocuments)
	s.mux.HandleFunc("GET /api/document", s.handleDocument)
	s.mux.HandleFunc("DELETE /api/document", s.handleDeleteDocument)
	s.mux.HandleFunc("GET /api/suggestions", s.handleSuggestions)
	s.mux.HandleFunc("POST /api/suggestions/{id}/resolve", s.handleResolveSuggestion)

	return s, nil
}

// ServeHTTP applies the middleware stack and dispatches to the route table.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w)
		s.mux.ServeHTTP(w, r)
	})

	// Innermost first: recovery sees the loggingWriter the logger installed.
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = LoggingMiddleware(s.logger)(handler)

	handler.ServeHTTP(w, r)
}

// resolveModel maps a client model alias to a provider-qualified name.
// Unknown aliases fall back to the chat model.
func (s *Server) resolveModel(alias string) string {
	if alias == ModelReasoning {
		return s.cfg.ReasoningModel
	}
	return s.cfg.ChatModel
}

// authenticate resolves the requesting user or writes a 401.
// Returns "" when the response has already been written.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) string {
	userID, err := s.cfg.Auth.UserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return ""
	}
	return userID
}

func setSecurityHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
}
