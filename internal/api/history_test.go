package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"

	"github.com/fathom0/fathom/internal/chat"
)

func TestHistoryListsOwnChatsOnly(t *testing.T) {
	ts := newTestServer(t)
	mine := uuid.New()
	ts.chat.chats[mine] = &chat.Chat{ID: mine, UserID: "user-1", Title: "Mine"}
	other := uuid.New()
	ts.chat.chats[other] = &chat.Chat{ID: other, UserID: "user-2", Title: "Theirs"}

	w := ts.request(t, http.MethodGet, "/api/history", "user-1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Chats []chatJSON `json:"chats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Chats) != 1 || body.Chats[0].Title != "Mine" {
		t.Errorf("chats = %+v, want only the caller's chat", body.Chats)
	}
}

func TestHistoryUnauthenticated(t *testing.T) {
	ts := newTestServer(t)
	w := ts.request(t, http.MethodGet, "/api/history", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestMessagesReturnsTranscript(t *testing.T) {
	ts := newTestServer(t)
	chatID := uuid.New()
	ts.chat.chats[chatID] = &chat.Chat{ID: chatID, UserID: "user-1"}
	ts.chat.messages = []*chat.Message{
		{ID: uuid.New(), ChatID: chatID, Role: chat.RoleUser,
			Content: []*ai.Part{ai.NewTextPart("question")}},
		{ID: uuid.New(), ChatID: chatID, Role: chat.RoleAssistant,
			Content: []*ai.Part{ai.NewTextPart("answer")}},
	}

	w := ts.request(t, http.MethodGet, "/api/chat/"+chatID.String()+"/messages", "user-1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Messages []messageJSON `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(body.Messages))
	}
	if body.Messages[0].Role != chat.RoleUser || body.Messages[1].Role != chat.RoleAssistant {
		t.Errorf("roles = %q, %q", body.Messages[0].Role, body.Messages[1].Role)
	}
	if len(body.Messages[1].Parts) != 1 || body.Messages[1].Parts[0].Text != "answer" {
		t.Errorf("assistant parts = %+v", body.Messages[1].Parts)
	}
}

func TestMessagesNonOwner(t *testing.T) {
	ts := newTestServer(t)
	chatID := uuid.New()
	ts.chat.chats[chatID] = &chat.Chat{ID: chatID, UserID: "owner"}

	w := ts.request(t, http.MethodGet, "/api/chat/"+chatID.String()+"/messages", "intruder", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestMessagesUnknownChat(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodGet, "/api/chat/"+uuid.NewString()+"/messages", "user-1", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListParamsClamped(t *testing.T) {
	r := newTestRequest("/api/history?limit=9999&offset=20")
	limit, offset := listParams(r)
	if limit != maxListLimit {
		t.Errorf("limit = %d, want clamped to %d", limit, maxListLimit)
	}
	if offset != 20 {
		t.Errorf("offset = %d, want 20", offset)
	}

	r = newTestRequest("/api/history")
	limit, offset = listParams(r)
	if limit != defaultListLimit || offset != 0 {
		t.Errorf("defaults = (%d, %d), want (%d, 0)", limit, offset, defaultListLimit)
	}
}

func newTestRequest(target string) *http.Request {
	r, _ := http.NewRequest(http.MethodGet, target, nil)
	return r
}
