package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrNotFound is returned when the requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Querier is the database capability the store needs. *pgxpool.Pool
// satisfies it; tests supply a fake.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists finished documents and their suggestions in PostgreSQL.
//
// Documents are versioned: SaveDocument always inserts a new row with the
// next version for that id, and reads return the highest version. Suggestions
// reference the document id, not a specific version.
type Store struct {
	db     Querier
	logger *slog.Logger
}

// NewStore creates a document store. logger may be nil.
func NewStore(db Querier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// SaveDocument inserts the next version of the document and fills in the
// assigned Version and CreatedAt.
func (s *Store) SaveDocument(ctx context.Context, d *Document) error {
	if !ValidKind(d.Kind) {
		return fmt.Errorf("save document %s: invalid kind %q", d.ID, d.Kind)
	}

	const q = `
		INSERT INTO documents (id, user_id, title, kind, content, version)
		VALUES ($1, $2, $3, $4, $5,
			COALESCE((SELECT MAX(version) FROM documents WHERE id = $1), 0) + 1)
		RETURNING version, created_at`

	var createdAt pgtype.Timestamptz
	err := s.db.QueryRow(ctx, q,
		uuidToPg(d.ID), d.UserID, d.Title, string(d.Kind), d.Content,
	).Scan(&d.Version, &createdAt)
	if err != nil {
		return fmt.Errorf("save document %s: %w", d.ID, err)
	}
	d.CreatedAt = createdAt.Time

	s.logger.Debug("saved document",
		"document_id", d.ID, "kind", d.Kind, "version", d.Version)
	return nil
}

// Document returns the latest version of a document.
// Returns ErrNotFound if no version exists.
func (s *Store) Document(ctx context.Context, id uuid.UUID) (*Document, error) {
	const q = `
		SELECT id, user_id, title, kind, content, version, created_at
		FROM documents
		WHERE id = $1
		ORDER BY version DESC
		LIMIT 1`

	d, err := scanDocument(s.db.QueryRow(ctx, q, uuidToPg(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return d, nil
}

// DocumentsByUser returns the latest version of each document owned by the
// user, newest first.
func (s *Store) DocumentsByUser(ctx context.Context, userID string, limit, offset int32) ([]*Document, error) {
	const q = `
		SELECT DISTINCT ON (id) id, user_id, title, kind, content, version, created_at
		FROM documents
		WHERE user_id = $1
		ORDER BY id, version DESC, created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.db.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents for user %s: %w", userID, err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("list documents for user %s: %w", userID, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents for user %s: %w", userID, err)
	}
	return docs, nil
}

// DeleteDocument removes every version of a document and its suggestions.
// Returns ErrNotFound if no version exists.
func (s *Store) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.Exec(ctx,
		`DELETE FROM suggestions WHERE document_id = $1`, uuidToPg(id)); err != nil {
		return fmt.Errorf("delete suggestions for document %s: %w", id, err)
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, uuidToPg(id))
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted document", "document_id", id)
	return nil
}

// SaveSuggestions inserts a batch of suggestions for a document.
func (s *Store) SaveSuggestions(ctx context.Context, suggestions []*Suggestion) error {
	for _, sg := range suggestions {
		const q = `
			INSERT INTO suggestions
				(id, document_id, user_id, original_text, suggested_text, description, is_resolved)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := s.db.Exec(ctx, q,
			uuidToPg(sg.ID), uuidToPg(sg.DocumentID), sg.UserID,
			sg.OriginalText, sg.SuggestedText, sg.Description, sg.IsResolved,
		); err != nil {
			return fmt.Errorf("save suggestion %s: %w", sg.ID, err)
		}
	}
	return nil
}

// Suggestions returns all suggestions for a document, oldest first.
func (s *Store) Suggestions(ctx context.Context, documentID uuid.UUID) ([]*Suggestion, error) {
	const q = `
		SELECT id, document_id, user_id, original_text, suggested_text, description, is_resolved, created_at
		FROM suggestions
		WHERE document_id = $1
		ORDER BY created_at`

	rows, err := s.db.Query(ctx, q, uuidToPg(documentID))
	if err != nil {
		return nil, fmt.Errorf("list suggestions for document %s: %w", documentID, err)
	}
	defer rows.Close()

	var out []*Suggestion
	for rows.Next() {
		var (
			sg        Suggestion
			id, docID pgtype.UUID
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &docID, &sg.UserID, &sg.OriginalText,
			&sg.SuggestedText, &sg.Description, &sg.IsResolved, &createdAt); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		sg.ID = pgToUUID(id)
		sg.DocumentID = pgToUUID(docID)
		sg.CreatedAt = createdAt.Time
		out = append(out, &sg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list suggestions for document %s: %w", documentID, err)
	}
	return out, nil
}

// ResolveSuggestion marks a suggestion resolved.
// Returns ErrNotFound if the suggestion does not exist.
func (s *Store) ResolveSuggestion(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE suggestions SET is_resolved = TRUE WHERE id = $1`, uuidToPg(id))
	if err != nil {
		return fmt.Errorf("resolve suggestion %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanDocument scans one document row.
func scanDocument(row pgx.Row) (*Document, error) {
	var (
		d         Document
		id        pgtype.UUID
		kind      string
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &d.UserID, &d.Title, &kind, &d.Content, &d.Version, &createdAt); err != nil {
		return nil, err
	}
	d.ID = pgToUUID(id)
	d.Kind = Kind(kind)
	d.CreatedAt = createdAt.Time
	return &d, nil
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
