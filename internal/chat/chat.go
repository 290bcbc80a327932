// Package chat provides conversation persistence: chats owned by users and
// the messages exchanged within them.
//
// Message content stores Genkit's ai.Part slice serialized as JSONB, so tool
// requests and responses survive round trips unchanged and history can be
// fed back to the model without reconstruction.
//
// Ordering: messages are ordered by creation time, not a per-chat sequence.
// Two simultaneous turns on the same chat id are an accepted race; the store
// guarantees per-row atomicity only.
package chat

import (
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Chat is one conversation owned by a user.
type Chat struct {
	ID        uuid.UUID
	UserID    string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is a single conversation message. IDs are client-supplied for user
// messages and server-generated for assistant messages.
type Message struct {
	ID        uuid.UUID
	ChatID    uuid.UUID
	Role      string     // "user" | "assistant"
	Content   []*ai.Part // Genkit Part slice (stored as JSONB)
	CreatedAt time.Time
}

// Text returns the concatenated text content of the message, ignoring
// non-text parts.
func (m *Message) Text() string {
	var out string
	for _, p := range m.Content {
		if p != nil && p.IsText() {
			out += p.Text
		}
	}
	return out
}
