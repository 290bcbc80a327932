package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"

	"github.com/fathom0/fathom/internal/agent"
	"github.com/fathom0/fathom/internal/chat"
	"github.com/fathom0/fathom/internal/stream"
	"github.com/fathom0/fathom/internal/tools"
)

// maxChatRequestBytes bounds the request body; transcripts beyond this are
// rejected before parsing.
const maxChatRequestBytes = 1 << 20 // 1 MiB

// chatRequest is the POST /api/chat body: the chat id, the client's copy of
// the transcript, and the model alias.
type chatRequest struct {
	ID                string          `json:"id"`
	Messages          []clientMessage `json:"messages"`
	SelectedChatModel string          `json:"selectedChatModel"`
}

type clientMessage struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// handleChat runs one streaming chat turn.
//
// Pipeline: authenticate, validate, lazily create the chat (titled from the
// first user message), persist the user message, then stream the turn over
// SSE. Once streaming starts, failures surface as a single error event on
// the stream; the HTTP status is already committed.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := s.authenticate(w, r)
	if userID == "" {
		return
	}

	var req chatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxChatRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	chatID, err := uuid.Parse(req.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid chat id")
		return
	}

	userMsg := mostRecentUserMessage(req.Messages)
	if userMsg == nil || userMsg.Content == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "No user message found")
		return
	}

	if ok := s.ensureChat(ctx, w, chatID, userID, userMsg.Content); !ok {
		return
	}

	// Persist the user message before streaming so a mid-turn crash never
	// loses the user's side of the conversation.
	if err := s.cfg.Chats.SaveMessages(ctx, []*chat.Message{{
		ID:      messageID(userMsg.ID),
		ChatID:  chatID,
		Role:    chat.RoleUser,
		Content: []*ai.Part{ai.NewTextPart(userMsg.Content)},
	}}); err != nil {
		s.logger.Error("save user message", "chat_id", chatID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Failed to save message")
		return
	}

	sw, err := stream.NewWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "Streaming unsupported")
		return
	}

	s.streamTurn(ctx, sw, chatID, userID, req)
}

// streamTurn drives the orchestrator and relays its output onto an open SSE
// stream. All failures past this point are stream events, not HTTP errors.
func (s *Server) streamTurn(ctx context.Context, sw *stream.Writer, chatID uuid.UUID, userID string, req chatRequest) {
	smoother := stream.NewSmoother(sw.WriteChunk)

	// Document tools reach the client through the same stream and attribute
	// their writes to the requesting user.
	ctx = tools.ContextWithEmitter(ctx, sw)
	ctx = tools.ContextWithUserID(ctx, userID)

	turn := agent.Turn{
		ChatID:   chatID,
		Model:    s.resolveModel(req.SelectedChatModel),
		Messages: s.turnMessages(req.Messages),
	}

	resp, err := s.cfg.Orchestrator.ExecuteTurn(ctx, turn, func(_ context.Context, chunk *ai.ModelResponseChunk) error {
		return smoother.Write(chunk.Text())
	})
	if err != nil {
		s.logger.Error("execute turn", "chat_id", chatID, "error", err)
		_ = sw.WriteError("turn_failed", "Something went wrong while generating a response")
		_ = sw.WriteDone(stream.DonePayload{ChatID: chatID.String()})
		return
	}

	if err := smoother.Flush(); err != nil {
		s.logger.Warn("flush stream", "chat_id", chatID, "error", err)
	}

	// Persistence failure after a delivered stream is logged, never
	// retracted: the client already has the content.
	assistantID := uuid.New()
	if msg := assistantMessage(assistantID, chatID, resp); msg != nil {
		if err := s.cfg.Chats.SaveMessages(ctx, []*chat.Message{msg}); err != nil {
			s.logger.Error("save assistant message", "chat_id", chatID, "error", err)
		}
	}

	_ = sw.WriteDone(stream.DonePayload{
		ChatID:    chatID.String(),
		MessageID: assistantID.String(),
	})
}

// ensureChat loads the chat and checks ownership, creating it on first
// contact with a title generated from the user message. Returns false when a
// response has been written.
func (s *Server) ensureChat(ctx context.Context, w http.ResponseWriter, chatID uuid.UUID, userID, userMessage string) bool {
	existing, err := s.cfg.Chats.Chat(ctx, chatID)
	switch {
	case err == nil:
		if existing.UserID != userID {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Chat belongs to another user")
			return false
		}
		return true
	case errors.Is(err, chat.ErrNotFound):
		title := s.cfg.Orchestrator.GenerateTitle(ctx, userMessage)
		if err := s.cfg.Chats.CreateChat(ctx, &chat.Chat{ID: chatID, UserID: userID, Title: title}); err != nil {
			s.logger.Error("create chat", "chat_id", chatID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal", "Failed to create chat")
			return false
		}
		return true
	default:
		s.logger.Error("load chat", "chat_id", chatID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Failed to load chat")
		return false
	}
}

// handleDeleteChat removes a chat and its messages. Only the owner may
// delete; a non-owner gets 401 rather than 404 to match the create path.
func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusNotFound, "not_found", "Chat id required")
		return
	}
	chatID, err := uuid.Parse(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid chat id")
		return
	}

	userID := s.authenticate(w, r)
	if userID == "" {
		return
	}

	existing, err := s.cfg.Chats.Chat(ctx, chatID)
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Chat not found")
			return
		}
		s.logger.Error("load chat", "chat_id", chatID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Failed to load chat")
		return
	}
	if existing.UserID != userID {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Chat belongs to another user")
		return
	}

	if err := s.cfg.Chats.DeleteChat(ctx, chatID); err != nil {
		s.logger.Error("delete chat", "chat_id", chatID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Failed to delete chat")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": chatID.String()})
}

// turnMessages converts the client transcript into model messages, keeping
// only the most recent MaxHistoryMessages.
func (s *Server) turnMessages(msgs []clientMessage) []*ai.Message {
	if limit := int(s.cfg.MaxHistoryMessages); len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	out := make([]*ai.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Content == "" {
			continue
		}
		switch m.Role {
		case chat.RoleUser:
			out = append(out, ai.NewUserMessage(ai.NewTextPart(m.Content)))
		case chat.RoleAssistant:
			out = append(out, ai.NewModelMessage(ai.NewTextPart(m.Content)))
		}
	}
	return out
}

// assistantMessage flattens the turn's sanitized output into one persistable
// message. Returns nil when the turn produced nothing worth saving.
func assistantMessage(id uuid.UUID, chatID uuid.UUID, resp *agent.Response) *chat.Message {
	var parts []*ai.Part
	for _, m := range resp.Messages {
		parts = append(parts, m.Content...)
	}
	if len(parts) == 0 {
		return nil
	}
	return &chat.Message{
		ID:      id,
		ChatID:  chatID,
		Role:    chat.RoleAssistant,
		Content: parts,
	}
}

func mostRecentUserMessage(msgs []clientMessage) *clientMessage {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == chat.RoleUser {
			return &msgs[i]
		}
	}
	return nil
}

// messageID keeps the client-supplied message id when it is a valid UUID so
// retries stay idempotent, generating one otherwise.
func messageID(clientID string) uuid.UUID {
	if id, err := uuid.Parse(clientID); err == nil {
		return id
	}
	return uuid.New()
}
