package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"

	"github.com/fathom0/fathom/internal/chat"
)

// Listing defaults shared by history and document endpoints.
const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// chatJSON is the wire shape of a chat in listings.
type chatJSON struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// messageJSON is the wire shape of a stored message. Parts carry the full
// Genkit content, so tool calls made during a turn are visible to clients
// that want to render them.
type messageJSON struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"`
	Parts     []*ai.Part `json:"parts"`
	CreatedAt time.Time  `json:"createdAt"`
}

// handleHistory lists the requesting user's chats, most recent first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := s.authenticate(w, r)
	if userID == "" {
		return
	}

	limit, offset := listParams(r)
	chats, err := s.cfg.Chats.ListChats(r.Context(), userID, limit, offset)
	if err != nil {
		s.logger.Error("list chats", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Failed to list chats")
		return
	}

	out := make([]chatJSON, 0, len(chats))
	for _, c := range chats {
		out = append(out, chatJSON{
			ID:        c.ID.String(),
			Title:     c.Title,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"chats": out})
}

// handleMessages returns a chat's messages in creation order. Non-owners get
// 401, same as the turn endpoint.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chatID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid chat id")
		return
	}

	userID := s.authenticate(w, r)
	if userID == "" {
		return
	}

	owned, ok := s.ownedChat(w, r, chatID, userID)
	if !ok {
		return
	}

	limit, offset := listParams(r)
	messages, err := s.cfg.Chats.Messages(ctx, owned.ID, limit, offset)
	if err != nil {
		s.logger.Error("list messages", "chat_id", chatID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Failed to list messages")
		return
	}

	out := make([]messageJSON, 0, len(messages))
	for _, m := range messages {
		out = append(out, messageJSON{
			ID:        m.ID.String(),
			Role:      m.Role,
			Parts:     m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": out})
}

// ownedChat loads a chat and enforces ownership, writing the response on
// failure.
func (s *Server) ownedChat(w http.ResponseWriter, r *http.Request, chatID uuid.UUID, userID string) (*chat.Chat, bool) {
	c, err := s.cfg.Chats.Chat(r.Context(), chatID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Chat not found")
		return nil, false
	}
	if c.UserID != userID {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Chat belongs to another user")
		return nil, false
	}
	return c, true
}

// listParams parses limit/offset query parameters with clamped defaults.
func listParams(r *http.Request) (limit, offset int32) {
	limit = defaultListLimit
	if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 32); err == nil && v > 0 {
		limit = int32(v)
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("offset"), 10, 32); err == nil && v > 0 {
		offset = int32(v)
	}
	return limit, offset
}
