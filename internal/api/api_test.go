package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"

	"github.com/fathom0/fathom/internal/agent"
	"github.com/fathom0/fathom/internal/artifact"
	"github.com/fathom0/fathom/internal/chat"
	"github.com/fathom0/fathom/internal/log"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// fakeOrchestrator streams fixed chunks and returns a canned response.
type fakeOrchestrator struct {
	chunks   []string
	text     string
	err      error
	title    string
	gotTurn  agent.Turn
	gotCtx   context.Context
	executed bool
}

func (f *fakeOrchestrator) ExecuteTurn(ctx context.Context, turn agent.Turn, cb agent.StreamCallback) (*agent.Response, error) {
	f.executed = true
	f.gotTurn = turn
	f.gotCtx = ctx
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.chunks {
		if cb != nil {
			if err := cb(ctx, &ai.ModelResponseChunk{Content: []*ai.Part{ai.NewTextPart(c)}}); err != nil {
				return nil, err
			}
		}
	}
	text := f.text
	if text == "" {
		text = strings.Join(f.chunks, "")
	}
	return &agent.Response{
		Text:     text,
		Messages: []*ai.Message{ai.NewModelMessage(ai.NewTextPart(text))},
	}, nil
}

func (f *fakeOrchestrator) GenerateTitle(_ context.Context, userMessage string) string {
	if f.title != "" {
		return f.title
	}
	return agent.TruncateTitle(userMessage)
}

// fakeChatStore is an in-memory ChatStore.
type fakeChatStore struct {
	chats    map[uuid.UUID]*chat.Chat
	messages []*chat.Message
	saveErr  error
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{chats: make(map[uuid.UUID]*chat.Chat)}
}

func (f *fakeChatStore) CreateChat(_ context.Context, c *chat.Chat) error {
	now := time.Now()
	cp := *c
	cp.CreatedAt, cp.UpdatedAt = now, now
	f.chats[c.ID] = &cp
	return nil
}

func (f *fakeChatStore) Chat(_ context.Context, id uuid.UUID) (*chat.Chat, error) {
	c, ok := f.chats[id]
	if !ok {
		return nil, chat.ErrNotFound
	}
	return c, nil
}

func (f *fakeChatStore) ListChats(_ context.Context, userID string, _, _ int32) ([]*chat.Chat, error) {
	var out []*chat.Chat
	for _, c := range f.chats {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChatStore) DeleteChat(_ context.Context, id uuid.UUID) error {
	delete(f.chats, id)
	return nil
}

func (f *fakeChatStore) SaveMessages(_ context.Context, messages []*chat.Message) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.messages = append(f.messages, messages...)
	return nil
}

func (f *fakeChatStore) Messages(_ context.Context, chatID uuid.UUID, _, _ int32) ([]*chat.Message, error) {
	var out []*chat.Message
	for _, m := range f.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, nil
}

// savedRoles lists the roles of saved messages in order.
func (f *fakeChatStore) savedRoles() []string {
	out := make([]string, 0, len(f.messages))
	for _, m := range f.messages {
		out = append(out, m.Role)
	}
	return out
}

// fakeDocStore is an in-memory DocumentStore.
type fakeDocStore struct {
	docs        map[uuid.UUID]*artifact.Document
	suggestions map[uuid.UUID][]*artifact.Suggestion
	resolved    []uuid.UUID
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{
		docs:        make(map[uuid.UUID]*artifact.Document),
		suggestions: make(map[uuid.UUID][]*artifact.Suggestion),
	}
}

func (f *fakeDocStore) Document(_ context.Context, id uuid.UUID) (*artifact.Document, error) {
	d, ok := f.docs[id]
	if !ok {
		return nil, artifact.ErrNotFound
	}
	return d, nil
}

func (f *fakeDocStore) DocumentsByUser(_ context.Context, userID string, _, _ int32) ([]*artifact.Document, error) {
	var out []*artifact.Document
	for _, d := range f.docs {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocStore) DeleteDocument(_ context.Context, id uuid.UUID) error {
	delete(f.docs, id)
	return nil
}

func (f *fakeDocStore) Suggestions(_ context.Context, documentID uuid.UUID) ([]*artifact.Suggestion, error) {
	return f.suggestions[documentID], nil
}

func (f *fakeDocStore) ResolveSuggestion(_ context.Context, id uuid.UUID) error {
	f.resolved = append(f.resolved, id)
	return nil
}

// testServer bundles a server with its fakes for assertions.
type testServer struct {
	srv  *Server
	orch *fakeOrchestrator
	chat *fakeChatStore
	docs *fakeDocStore
	auth *Auth
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	auth, err := NewAuth([]byte(testSecret), true)
	if err != nil {
		t.Fatalf("NewAuth() error = %v", err)
	}

	orch := &fakeOrchestrator{chunks: []string{"Hello ", "world"}}
	chats := newFakeChatStore()
	docs := newFakeDocStore()

	srv, err := NewServer(Config{
		Orchestrator:   orch,
		Chats:          chats,
		Documents:      docs,
		Auth:           auth,
		Logger:         log.NewNop(),
		ChatModel:      "googleai/gemini-2.5-flash",
		ReasoningModel: "googleai/gemini-2.5-pro",
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	return &testServer{srv: srv, orch: orch, chat: chats, docs: docs, auth: auth}
}

// request performs an in-process request, authenticated as userID unless
// empty.
func (ts *testServer) request(t *testing.T, method, target, userID string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	if userID != "" {
		rec := httptest.NewRecorder()
		ts.auth.SetCookie(rec, userID)
		r.Header.Set("Cookie", rec.Header().Get("Set-Cookie"))
	}

	w := httptest.NewRecorder()
	ts.srv.ServeHTTP(w, r)
	return w
}

// sseEvents parses an SSE body into (event, data) pairs. Multi-line data
// fields are joined with newlines, matching the wire format.
func sseEvents(t *testing.T, body string) [][2]string {
	t.Helper()

	var events [][2]string
	var name string
	var data []string
	for _, line := range strings.Split(body, "\n") {
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		case line == "" && name != "":
			events = append(events, [2]string{name, strings.Join(data, "\n")})
			name, data = "", nil
		}
	}
	return events
}
