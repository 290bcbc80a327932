package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrNotFound is returned when the requested chat does not exist.
var ErrNotFound = errors.New("chat not found")

// Querier is the database capability the store needs. *pgxpool.Pool
// satisfies it; tests supply a fake or a testcontainer pool.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store manages chat and message persistence with a PostgreSQL backend.
// Safe for concurrent use by multiple goroutines.
type Store struct {
	db     Querier
	logger *slog.Logger
}

// NewStore creates a chat store. logger may be nil.
func NewStore(db Querier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// CreateChat inserts a chat and fills in its timestamps.
func (s *Store) CreateChat(ctx context.Context, c *Chat) error {
	const q = `
		INSERT INTO chats (id, user_id, title)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	var createdAt, updatedAt pgtype.Timestamptz
	if err := s.db.QueryRow(ctx, q, uuidToPg(c.ID), c.UserID, c.Title).
		Scan(&createdAt, &updatedAt); err != nil {
		return fmt.Errorf("create chat %s: %w", c.ID, err)
	}
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time

	s.logger.Debug("created chat", "chat_id", c.ID, "user_id", c.UserID, "title", c.Title)
	return nil
}

// Chat retrieves a chat by id. Returns ErrNotFound if it does not exist.
func (s *Store) Chat(ctx context.Context, id uuid.UUID) (*Chat, error) {
	const q = `
		SELECT id, user_id, title, created_at, updated_at
		FROM chats
		WHERE id = $1`

	var (
		c                    Chat
		cid                  pgtype.UUID
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := s.db.QueryRow(ctx, q, uuidToPg(id)).
		Scan(&cid, &c.UserID, &c.Title, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get chat %s: %w", id, err)
	}
	c.ID = pgToUUID(cid)
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return &c, nil
}

// ListChats returns a user's chats, most recently updated first.
func (s *Store) ListChats(ctx context.Context, userID string, limit, offset int32) ([]*Chat, error) {
	const q = `
		SELECT id, user_id, title, created_at, updated_at
		FROM chats
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.db.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list chats for user %s: %w", userID, err)
	}
	defer rows.Close()

	var chats []*Chat
	for rows.Next() {
		var (
			c                    Chat
			cid                  pgtype.UUID
			createdAt, updatedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&cid, &c.UserID, &c.Title, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		c.ID = pgToUUID(cid)
		c.CreatedAt = createdAt.Time
		c.UpdatedAt = updatedAt.Time
		chats = append(chats, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list chats for user %s: %w", userID, err)
	}
	return chats, nil
}

// DeleteChat removes a chat and all its messages.
// Returns ErrNotFound if the chat does not exist.
func (s *Store) DeleteChat(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.Exec(ctx,
		`DELETE FROM messages WHERE chat_id = $1`, uuidToPg(id)); err != nil {
		return fmt.Errorf("delete messages for chat %s: %w", id, err)
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM chats WHERE id = $1`, uuidToPg(id))
	if err != nil {
		return fmt.Errorf("delete chat %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted chat", "chat_id", id)
	return nil
}

// SaveMessages inserts messages and touches the parent chat's updated_at.
// Each message's Content parts are serialized to JSONB; nil parts are
// rejected because they would round-trip as JSON null and corrupt history.
func (s *Store) SaveMessages(ctx context.Context, messages []*Message) error {
	if len(messages) == 0 {
		return nil
	}

	for i, msg := range messages {
		for j, part := range msg.Content {
			if part == nil {
				return fmt.Errorf("message %d has nil content part at index %d", i, j)
			}
		}

		contentJSON, err := json.Marshal(msg.Content)
		if err != nil {
			return fmt.Errorf("marshal content of message %d: %w", i, err)
		}

		const q = `
			INSERT INTO messages (id, chat_id, role, content)
			VALUES ($1, $2, $3, $4)`
		if _, err := s.db.Exec(ctx, q,
			uuidToPg(msg.ID), uuidToPg(msg.ChatID), msg.Role, contentJSON); err != nil {
			return fmt.Errorf("insert message %d: %w", i, err)
		}
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE chats SET updated_at = NOW() WHERE id = $1`,
		uuidToPg(messages[0].ChatID)); err != nil {
		return fmt.Errorf("touch chat %s: %w", messages[0].ChatID, err)
	}

	s.logger.Debug("saved messages", "chat_id", messages[0].ChatID, "count", len(messages))
	return nil
}

// Messages retrieves a chat's messages, oldest first.
// Malformed rows are skipped with a warning rather than failing the whole
// history load.
func (s *Store) Messages(ctx context.Context, chatID uuid.UUID, limit, offset int32) ([]*Message, error) {
	const q = `
		SELECT id, chat_id, role, content, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3`

	rows, err := s.db.Query(ctx, q, uuidToPg(chatID), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get messages for chat %s: %w", chatID, err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var (
			m           Message
			mid, cid    pgtype.UUID
			contentJSON []byte
			createdAt   pgtype.Timestamptz
		)
		if err := rows.Scan(&mid, &cid, &m.Role, &contentJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}

		var content []*ai.Part
		if err := json.Unmarshal(contentJSON, &content); err != nil {
			s.logger.Warn("skipping message with malformed content",
				"message_id", pgToUUID(mid), "error", err)
			continue
		}

		m.ID = pgToUUID(mid)
		m.ChatID = pgToUUID(cid)
		m.Content = content
		m.CreatedAt = createdAt.Time
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get messages for chat %s: %w", chatID, err)
	}

	s.logger.Debug("retrieved messages", "chat_id", chatID, "count", len(messages))
	return messages, nil
}

// uuidToPg converts uuid.UUID to pgtype.UUID.
func uuidToPg(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// pgToUUID converts pgtype.UUID to uuid.UUID.
func pgToUUID(id pgtype.UUID) uuid.UUID {
	if !id.Valid {
		return uuid.Nil
	}
	return id.Bytes
}
